package luatab

import (
	"fmt"
	"iter"
	"math"
	"strconv"

	"github.com/elliotchance/orderedmap/v2"
)

// Value is a serializable datum. The set of implementations is closed:
// [Nil], [Bool], [Number], [Text], [Sequence] and [*Table].
type Value interface {
	// Kind reports which variant the value is.
	Kind() ValueKind
	value()
}

// ValueKind identifies a [Value] variant.
type ValueKind int

const (
	KindNil ValueKind = iota
	KindBool
	KindNumber
	KindText
	KindSequence
	KindTable
)

var kindNames = [...]string{
	KindNil:      "nil",
	KindBool:     "boolean",
	KindNumber:   "number",
	KindText:     "text",
	KindSequence: "sequence",
	KindTable:    "table",
}

// String returns the kind name.
func (k ValueKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "ValueKind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// IsContainer reports whether v is a [Sequence] or a [*Table].
func IsContainer(v Value) bool {
	switch v.(type) {
	case Sequence, *Table:
		return true
	default:
		return false
	}
}

// --- Scalars ---

// Nil is the Lua nil value.
type Nil struct{}

func (Nil) Kind() ValueKind { return KindNil }
func (Nil) value()          {}

// Bool is a Lua boolean.
type Bool bool

func (Bool) Kind() ValueKind { return KindBool }
func (Bool) value()          {}

// Text is a Lua string.
type Text string

func (Text) Kind() ValueKind { return KindText }
func (Text) value()          {}

// Number is an integer or floating point Lua number. The zero value is the
// integer 0.
type Number struct {
	i       int64
	f       float64
	isFloat bool
}

// Int returns an integer Number.
func Int(i int64) Number { return Number{i: i} }

// Float returns a floating point Number.
func Float(f float64) Number { return Number{f: f, isFloat: true} }

func (Number) Kind() ValueKind { return KindNumber }
func (Number) value()          {}

// IsFloat reports whether n holds a float rather than an integer.
func (n Number) IsFloat() bool { return n.isFloat }

// Int64 returns n as an integer, truncating floats.
func (n Number) Int64() int64 {
	if n.isFloat {
		return int64(n.f)
	}
	return n.i
}

// Float64 returns n as a float.
func (n Number) Float64() float64 {
	if n.isFloat {
		return n.f
	}
	return float64(n.i)
}

// String returns the Lua source form of n.
//
// Integers are written in base 10. Floats use the shortest digits that
// round-trip, in plain notation for magnitudes in [1e-4, 1e16) and exponent
// notation otherwise; integral floats keep a ".0" suffix. NaN and the
// infinities become the expressions (0/0), math.huge and -math.huge.
func (n Number) String() string {
	if !n.isFloat {
		return strconv.FormatInt(n.i, 10)
	}
	f := n.f
	switch {
	case math.IsNaN(f):
		return "(0/0)"
	case math.IsInf(f, 1):
		return "math.huge"
	case math.IsInf(f, -1):
		return "-math.huge"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if f == math.Trunc(f) {
		s += ".0"
	}
	return s
}

// --- Containers ---

// Sequence is an ordered list of values, rendered as a Lua array-like table.
type Sequence []Value

func (Sequence) Kind() ValueKind { return KindSequence }
func (Sequence) value()          {}

// SequenceFromSeq collects values from an iterator into a Sequence.
func SequenceFromSeq(seq iter.Seq[Value]) Sequence {
	var out Sequence
	for v := range seq {
		out = append(out, v)
	}
	return out
}

// Table is a string-keyed Lua table that remembers insertion order.
// The zero value and a nil *Table are both empty tables; only Set needs a
// non-nil receiver.
type Table struct {
	m *orderedmap.OrderedMap[string, Value]
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{m: orderedmap.NewOrderedMap[string, Value]()}
}

// TableFromSeq collects key-value pairs into a new table. Later duplicates
// overwrite the value but keep the first position.
func TableFromSeq(seq iter.Seq2[string, Value]) *Table {
	t := NewTable()
	for k, v := range seq {
		t.Set(k, v)
	}
	return t
}

func (*Table) Kind() ValueKind { return KindTable }
func (*Table) value()          {}

// Set stores v under key and returns t for chaining. Setting an existing key
// replaces its value without moving it.
func (t *Table) Set(key string, v Value) *Table {
	if v == nil {
		v = Nil{}
	}
	if t.m == nil {
		t.m = orderedmap.NewOrderedMap[string, Value]()
	}
	t.m.Set(key, v)
	return t
}

// Get returns the value stored under key.
func (t *Table) Get(key string) (Value, bool) {
	if t == nil || t.m == nil {
		return nil, false
	}
	return t.m.Get(key)
}

// Delete removes key and reports whether it was present.
func (t *Table) Delete(key string) bool {
	if t == nil || t.m == nil {
		return false
	}
	return t.m.Delete(key)
}

// Len returns the number of entries.
func (t *Table) Len() int {
	if t == nil || t.m == nil {
		return 0
	}
	return t.m.Len()
}

// Keys returns the keys in insertion order.
func (t *Table) Keys() []string {
	if t == nil || t.m == nil {
		return nil
	}
	return t.m.Keys()
}

// All iterates over the entries in insertion order.
func (t *Table) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if t == nil || t.m == nil {
			return
		}
		for el := t.m.Front(); el != nil; el = el.Next() {
			if !yield(el.Key, el.Value) {
				return
			}
		}
	}
}

// String renders t with the default configuration. Rendering errors are
// reported inline.
func (t *Table) String() string {
	s, err := Marshal(t)
	if err != nil {
		return fmt.Sprintf("%%!(%v)", err)
	}
	return s
}
