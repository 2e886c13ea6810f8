// Package page reads and writes the text pages the updater maintains.
package page

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// Store reads and writes pages by title.
type Store interface {
	// Read returns the page text, or "" when the page does not exist.
	Read(ctx context.Context, title string) (string, error)
	// Write replaces the page text and records the edit summary.
	Write(ctx context.Context, title, text, summary string) error
}

// SummaryLog is the file, relative to the store root, that collects one line
// per saved edit.
const SummaryLog = ".summaries.log"

// FileStore keeps each page in its own file under a root directory.
type FileStore struct {
	fs   afero.Fs
	root string
	now  func() time.Time
}

// NewFileStore returns a store rooted at root on fs.
func NewFileStore(fs afero.Fs, root string) *FileStore {
	return &FileStore{fs: fs, root: root, now: time.Now}
}

// Path returns the file that holds title. Slashes become directory levels
// and spaces become underscores as in wiki URLs. Colons, percent signs and
// segments that would leave the root or shadow a page file are
// percent-encoded, so two titles share a file only when the wiki treats them
// as the same page.
func (s *FileStore) Path(title string) string {
	name := strings.ReplaceAll(strings.TrimSpace(title), " ", "_")
	parts := strings.Split(name, "/")
	for i, p := range parts {
		parts[i] = escapeSegment(p, i == len(parts)-1)
	}
	return filepath.Join(append([]string{s.root}, parts...)...) + ".txt"
}

var segmentEscaper = strings.NewReplacer("%", "%25", ":", "%3A", `\`, "%5C")

func escapeSegment(seg string, last bool) string {
	switch seg {
	case "":
		return "%"
	case ".":
		return "%2E"
	case "..":
		return "%2E%2E"
	}
	seg = segmentEscaper.Replace(seg)
	if !last && strings.HasSuffix(seg, ".txt") {
		seg = strings.TrimSuffix(seg, ".txt") + "%2Etxt"
	}
	return seg
}

func (s *FileStore) Read(ctx context.Context, title string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := afero.ReadFile(s.fs, s.Path(title))
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrapf(err, "failed to read page %q", title)
	}
	return string(data), nil
}

func (s *FileStore) Write(ctx context.Context, title, text, summary string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := s.Path(title)
	if err := s.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "failed to create directory for page %q", title)
	}
	if err := afero.WriteFile(s.fs, path, []byte(text), 0o644); err != nil {
		return errors.Wrapf(err, "failed to write page %q", title)
	}
	return s.logSummary(title, summary)
}

func (s *FileStore) logSummary(title, summary string) error {
	f, err := s.fs.OpenFile(filepath.Join(s.root, SummaryLog), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return errors.Wrap(err, "failed to open summary log")
	}
	defer func() { _ = f.Close() }()
	line := fmt.Sprintf("%s\t%s\t%s\n", s.now().UTC().Format(time.RFC3339), title, summary)
	if _, err := f.WriteString(line); err != nil {
		return errors.Wrap(err, "failed to append to summary log")
	}
	return nil
}

// Equal reports whether two page texts match, ignoring trailing whitespace.
func Equal(a, b string) bool {
	return strings.TrimRightFunc(a, unicode.IsSpace) == strings.TrimRightFunc(b, unicode.IsSpace)
}

// TopComment returns the leading block of Lua "--" comment lines and blank
// lines of text, trimmed.
func TopComment(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if !strings.HasPrefix(line, "--") && line != "" {
			break
		}
		lines = append(lines, line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
