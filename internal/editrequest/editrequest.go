// Package editrequest renders the talk-page message asking an administrator
// to copy the sandbox module over the protected live module.
//
// Templates use ${.Field} actions, so the wiki's own {{...}} markup can be
// written literally. The older $data_page placeholder form is not
// substituted; Render rejects it rather than posting it verbatim.
package editrequest

import (
	_ "embed"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"text/template"
	"text/template/parse"
	"time"

	"github.com/spf13/afero"
)

// ErrInvalidTemplate reports a template that does not parse.
var ErrInvalidTemplate = errors.New("invalid template")

// Default is the built-in request text.
//
//go:embed default.tmpl
var Default string

// Fields are the values a template can reference.
type Fields struct {
	CurrentDate      string
	DataPage         string
	DataPageSandbox  string
	TemplateCategory string
}

// Render executes tmpl against f and trims surrounding whitespace.
// Referencing an unknown field is an error.
func Render(tmpl string, f Fields) (string, error) {
	t, err := template.New("editrequest").Delims("${", "}").Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidTemplate, err)
	}
	if t.Tree == nil {
		return "", nil
	}
	if name := legacyPlaceholder(t.Tree.Root); name != "" {
		return "", fmt.Errorf("%w: placeholder %s must be written as ${.Field}", ErrInvalidTemplate, name)
	}
	var b strings.Builder
	if err := t.Execute(&b, f); err != nil {
		return "", err
	}
	return strings.TrimSpace(b.String()), nil
}

var dollarName = regexp.MustCompile(`\$[A-Za-z_][A-Za-z0-9_]*`)

// legacyPlaceholder returns the first $name found in the literal text of the
// template, or "".
func legacyPlaceholder(n parse.Node) string {
	switch n := n.(type) {
	case *parse.TextNode:
		return dollarName.FindString(string(n.Text))
	case *parse.ListNode:
		if n == nil {
			return ""
		}
		for _, c := range n.Nodes {
			if name := legacyPlaceholder(c); name != "" {
				return name
			}
		}
	case *parse.IfNode:
		return firstPlaceholder(n.List, n.ElseList)
	case *parse.RangeNode:
		return firstPlaceholder(n.List, n.ElseList)
	case *parse.WithNode:
		return firstPlaceholder(n.List, n.ElseList)
	}
	return ""
}

func firstPlaceholder(lists ...*parse.ListNode) string {
	for _, l := range lists {
		if name := legacyPlaceholder(l); name != "" {
			return name
		}
	}
	return ""
}

// Load returns the template stored at path on fs, or [Default] when path is
// empty.
func Load(fs afero.Fs, path string) (string, error) {
	if path == "" {
		return Default, nil
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// FormatDate writes t the way English Wikipedia signs dates: "5 March 2024",
// without a leading zero, in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format("2 January 2006")
}
