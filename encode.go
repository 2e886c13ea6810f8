package luatab

import (
	"fmt"
	"slices"
)

func (e *encoder) encode(v Value, depth int) error {
	switch v := v.(type) {
	case Nil:
		e.buf.WriteString("nil")
	case Bool:
		if v {
			e.buf.WriteString("true")
		} else {
			e.buf.WriteString("false")
		}
	case Number:
		e.buf.WriteString(v.String())
	case Text:
		writeQuoted(&e.buf, string(v))
	case Sequence:
		return e.encodeSequence(v, depth)
	case *Table:
		return e.encodeTable(v, depth)
	default:
		return fmt.Errorf("%w: cannot serialize %s", ErrTypeKind, describe(v))
	}
	return nil
}

// oneLine reports whether a container whose direct children are children
// is written on a single line at the given depth. Only direct children are
// inspected.
func (e *encoder) oneLine(children []Value, depth int) bool {
	for _, c := range children {
		if IsContainer(c) {
			return false
		}
	}
	return depth >= e.cfg.flatten
}

// enter marks a container as being written and returns a func that clears
// the mark. A container reached again from inside itself is an error.
func (e *encoder) enter(key any, v Value) (func(), error) {
	if e.active == nil {
		e.active = make(map[any]bool)
	}
	if e.active[key] {
		return nil, fmt.Errorf("%w: cyclic %s", ErrTypeKind, v.Kind())
	}
	e.active[key] = true
	return func() { delete(e.active, key) }, nil
}

type seqKey struct {
	first *Value
	len   int
}

func (e *encoder) encodeSequence(seq Sequence, depth int) error {
	if len(seq) == 0 {
		e.buf.WriteString("{}")
		return nil
	}
	leave, err := e.enter(seqKey{first: &seq[0], len: len(seq)}, seq)
	if err != nil {
		return err
	}
	defer leave()
	oneLine := e.oneLine(seq, depth)
	e.buf.WriteByte('{')
	for i, v := range seq {
		it := Item{Kind: SequenceItem, Value: v, Index: i}
		e.buf.WriteString(e.cfg.before.Item(it))
		if !oneLine {
			e.newline(depth + 1)
		}
		if err := e.encode(v, depth+1); err != nil {
			return err
		}
		e.separator(oneLine, i == len(seq)-1)
		e.buf.WriteString(e.cfg.after.Item(it))
	}
	if !oneLine {
		e.newline(depth)
	}
	e.buf.WriteByte('}')
	return nil
}

func (e *encoder) encodeTable(t *Table, depth int) error {
	if t.Len() == 0 {
		e.buf.WriteString("{}")
		return nil
	}
	leave, err := e.enter(t, t)
	if err != nil {
		return err
	}
	defer leave()
	keys := t.Keys()
	if e.cfg.sortKeys != nil {
		keys = slices.Clone(keys)
		slices.SortStableFunc(keys, e.cfg.sortKeys)
	}
	values := make([]Value, len(keys))
	for i, k := range keys {
		values[i], _ = t.Get(k)
	}
	oneLine := e.oneLine(values, depth)

	encoded := make([]string, len(keys))
	for i, k := range keys {
		encoded[i] = EncodeKey(k, e.cfg.keyFormat)
	}
	if e.cfg.alignedKeys && !oneLine {
		padKeys(encoded)
	}

	e.buf.WriteByte('{')
	for i, k := range keys {
		it := Item{Kind: TableItem, Key: k, Value: values[i], Index: i}
		e.buf.WriteString(e.cfg.before.Item(it))
		if !oneLine {
			e.newline(depth + 1)
		}
		e.buf.WriteString(encoded[i])
		e.buf.WriteString(" = ")
		if err := e.encode(values[i], depth+1); err != nil {
			return err
		}
		e.separator(oneLine, i == len(keys)-1)
		e.buf.WriteString(e.cfg.after.Item(it))
	}
	if !oneLine {
		e.newline(depth)
	}
	e.buf.WriteByte('}')
	return nil
}

func (e *encoder) newline(depth int) {
	e.buf.WriteByte('\n')
	for range depth {
		e.buf.WriteString(e.cfg.indent)
	}
}

// separator writes what follows an item: a comma after every item in
// multi-line mode, ", " between items in single-line mode.
func (e *encoder) separator(oneLine, last bool) {
	switch {
	case !oneLine:
		e.buf.WriteByte(',')
	case !last:
		e.buf.WriteString(", ")
	}
}
