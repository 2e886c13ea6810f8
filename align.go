package luatab

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// padKeys right-pads every encoded key to the display width of the widest
// one, so the " = " that follows lines up across rows.
func padKeys(keys []string) {
	width := 0
	for _, k := range keys {
		if w := runewidth.StringWidth(k); w > width {
			width = w
		}
	}
	for i, k := range keys {
		if pad := width - runewidth.StringWidth(k); pad > 0 {
			keys[i] = k + strings.Repeat(" ", pad)
		}
	}
}
