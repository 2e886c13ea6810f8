package luatab

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// FromYAML decodes a YAML document into a [Value]. Mapping order is kept, so
// the resulting tables serialize in document order. Aliases are expanded and
// merge keys (<<) copy the entries of the merged mappings that the mapping
// does not set itself. Mapping keys must be strings; other keys, and anchors
// that contain an alias to themselves, fail with [ErrTypeKind]. An empty
// document is [Nil].
func FromYAML(data []byte) (Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	d := nodeDecoder{active: make(map[*yaml.Node]bool)}
	return d.fromNode(&doc)
}

// nodeDecoder tracks the anchored nodes currently being expanded.
type nodeDecoder struct {
	active map[*yaml.Node]bool
}

func (d nodeDecoder) fromNode(n *yaml.Node) (Value, error) {
	if n.Anchor != "" {
		d.active[n] = true
		defer delete(d.active, n)
	}
	switch n.Kind {
	case 0:
		return Nil{}, nil
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Nil{}, nil
		}
		return d.fromNode(n.Content[0])
	case yaml.AliasNode:
		if n.Alias == nil {
			return nil, fmt.Errorf("%w: line %d: unknown anchor %q", ErrTypeKind, n.Line, n.Value)
		}
		if d.active[n.Alias] {
			return nil, fmt.Errorf("%w: line %d: anchor %q refers to itself", ErrTypeKind, n.Line, n.Alias.Anchor)
		}
		return d.fromNode(n.Alias)
	case yaml.SequenceNode:
		seq := make(Sequence, len(n.Content))
		for i, c := range n.Content {
			v, err := d.fromNode(c)
			if err != nil {
				return nil, err
			}
			seq[i] = v
		}
		return seq, nil
	case yaml.MappingNode:
		return d.fromMapping(n)
	case yaml.ScalarNode:
		return fromScalar(n)
	default:
		return nil, fmt.Errorf("%w: line %d: unknown YAML node kind %d", ErrTypeKind, n.Line, n.Kind)
	}
}

func (d nodeDecoder) fromMapping(n *yaml.Node) (Value, error) {
	t := NewTable()
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if k.Kind == yaml.ScalarNode && k.ShortTag() == "!!merge" {
			if err := d.merge(t, v); err != nil {
				return nil, err
			}
			continue
		}
		if k.Kind != yaml.ScalarNode || k.ShortTag() != "!!str" {
			return nil, fmt.Errorf("%w: line %d: mapping key %q has tag %s, want a string", ErrTypeKind, k.Line, k.Value, k.ShortTag())
		}
		val, err := d.fromNode(v)
		if err != nil {
			return nil, err
		}
		t.Set(k.Value, val)
	}
	return t, nil
}

// merge copies into t the entries of the mapping, or sequence of mappings,
// that v holds. Keys already in t win, and earlier mappings win over later
// ones; keys set after the merge key overwrite merged values.
func (d nodeDecoder) merge(t *Table, v *yaml.Node) error {
	val, err := d.fromNode(v)
	if err != nil {
		return err
	}
	var sources []*Table
	switch val := val.(type) {
	case *Table:
		sources = append(sources, val)
	case Sequence:
		for _, item := range val {
			src, ok := item.(*Table)
			if !ok {
				return fmt.Errorf("%w: line %d: merge key needs mappings, got %s", ErrTypeKind, v.Line, item.Kind())
			}
			sources = append(sources, src)
		}
	default:
		return fmt.Errorf("%w: line %d: merge key needs a mapping or a sequence of mappings, got %s", ErrTypeKind, v.Line, val.Kind())
	}
	for _, src := range sources {
		for key, value := range src.All() {
			if _, ok := t.Get(key); !ok {
				t.Set(key, value)
			}
		}
	}
	return nil
}

func fromScalar(n *yaml.Node) (Value, error) {
	switch n.ShortTag() {
	case "!!str", "!!timestamp", "!!binary":
		return Text(n.Value), nil
	case "!!null":
		return Nil{}, nil
	}
	var x any
	if err := n.Decode(&x); err != nil {
		return nil, err
	}
	return FromGo(x)
}
