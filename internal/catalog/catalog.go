// Package catalog holds the list of disambiguation templates and their
// aliases and turns it into the lookup table published on the wiki.
package catalog

import (
	"context"
	"slices"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/bjaus/luatab"
)

// Record is a template and the other titles that redirect to it.
type Record struct {
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases,omitempty"`
}

// Source yields the current records.
type Source interface {
	Records(ctx context.Context) ([]Record, error)
}

// FileSource reads records from a YAML file:
//
//	- name: Dab
//	  aliases: [Disambig, Disambiguation]
//	- name: Hndis
type FileSource struct {
	fs   afero.Fs
	path string
}

// NewFileSource returns a source reading path on fs.
func NewFileSource(fs afero.Fs, path string) *FileSource {
	return &FileSource{fs: fs, path: path}
}

// Records reads and validates the file. Aliases are sorted within each
// record; record order is kept.
func (s *FileSource) Records(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read records from %q", s.path)
	}
	var records []Record
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, errors.Wrapf(err, "failed to parse records in %q", s.path)
	}
	for i, r := range records {
		if r.Name == "" {
			return nil, errors.Errorf("record %d in %q has no name", i, s.path)
		}
		slices.Sort(records[i].Aliases)
	}
	return records, nil
}

// Filter returns the records whose name is not in exclude.
func Filter(records []Record, exclude []string) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if slices.Contains(exclude, r.Name) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// BuildTable maps every name and alias to true, names first and each
// followed by its aliases. A title seen twice keeps its first position.
func BuildTable(records []Record) *luatab.Table {
	t := luatab.NewTable()
	for _, r := range records {
		t.Set(r.Name, luatab.Bool(true))
		for _, a := range r.Aliases {
			t.Set(a, luatab.Bool(true))
		}
	}
	return t
}

// SeparateGroups returns a hook that puts a blank line before each record
// name except the first item, so every template starts a visual group.
func SeparateGroups(records []Record) luatab.Hook {
	names := make(map[string]struct{}, len(records))
	for _, r := range records {
		names[r.Name] = struct{}{}
	}
	return luatab.HookFunc(func(it luatab.Item) string {
		if it.Kind != luatab.TableItem || it.Index == 0 {
			return ""
		}
		if _, ok := names[it.Key]; ok {
			return "\n"
		}
		return ""
	})
}
