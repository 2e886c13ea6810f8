package luatab

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"unsafe"
)

// FromGo converts native Go data into a [Value].
//
// Supported inputs are nil, bool, the integer and float kinds, strings,
// []byte (as text), slices and arrays, maps with string keys, pointers to any
// of these, [json.Number], and values that already implement [Value]. Map keys
// are sorted with [strings.Compare] because Go maps have no order. Anything
// else, and a map, slice or pointer that contains itself, fails with
// [ErrTypeKind].
func FromGo(x any) (Value, error) {
	c := converter{active: make(map[refKey]bool)}
	return c.from(x)
}

// refKey identifies a map, slice or pointer while its contents are being
// converted. Slices also carry their length, since a slice and a prefix of
// it share a pointer.
type refKey struct {
	ptr  unsafe.Pointer
	len  int
	kind reflect.Kind
}

type converter struct {
	active map[refKey]bool
}

func (c converter) from(x any) (Value, error) {
	switch x := x.(type) {
	case nil:
		return Nil{}, nil
	case Value:
		return x, nil
	case json.Number:
		return parseNumber(string(x))
	case []byte:
		return Text(x), nil
	}
	return c.fromReflect(reflect.ValueOf(x))
}

// enter marks rv as being converted and returns a func that clears the mark.
func (c converter) enter(rv reflect.Value) (func(), error) {
	key := refKey{ptr: rv.UnsafePointer(), kind: rv.Kind()}
	if rv.Kind() == reflect.Slice {
		key.len = rv.Len()
	}
	if c.active[key] {
		return nil, fmt.Errorf("%w: cyclic value of type %s", ErrTypeKind, rv.Type())
	}
	c.active[key] = true
	return func() { delete(c.active, key) }, nil
}

func (c converter) fromReflect(rv reflect.Value) (Value, error) {
	switch rv.Kind() {
	case reflect.Invalid:
		return Nil{}, nil
	case reflect.Pointer:
		if rv.IsNil() {
			return Nil{}, nil
		}
		leave, err := c.enter(rv)
		if err != nil {
			return nil, err
		}
		defer leave()
		return c.from(rv.Elem().Interface())
	case reflect.Interface:
		if rv.IsNil() {
			return Nil{}, nil
		}
		return c.from(rv.Elem().Interface())
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return Float(float64(u)), nil
		}
		return Int(int64(u)), nil
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float()), nil
	case reflect.String:
		return Text(rv.String()), nil
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice {
			if rv.IsNil() {
				return Sequence{}, nil
			}
			leave, err := c.enter(rv)
			if err != nil {
				return nil, err
			}
			defer leave()
		}
		seq := make(Sequence, rv.Len())
		for i := range seq {
			v, err := c.from(rv.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			seq[i] = v
		}
		return seq, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("%w: map key type %s is not a string", ErrTypeKind, rv.Type().Key())
		}
		if rv.IsNil() {
			return NewTable(), nil
		}
		leave, err := c.enter(rv)
		if err != nil {
			return nil, err
		}
		defer leave()
		keys := rv.MapKeys()
		slices.SortFunc(keys, func(a, b reflect.Value) int {
			return strings.Compare(a.String(), b.String())
		})
		t := NewTable()
		for _, k := range keys {
			v, err := c.from(rv.MapIndex(k).Interface())
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k.String(), err)
			}
			t.Set(k.String(), v)
		}
		return t, nil
	default:
		return nil, fmt.Errorf("%w: cannot convert %s", ErrTypeKind, rv.Type())
	}
}

// parseNumber reads a decimal number, preferring an integer when s has no
// fraction or exponent and fits in 64 bits.
func parseNumber(s string) (Value, error) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Int(i), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid number %q", ErrTypeKind, s)
	}
	return Float(f), nil
}
