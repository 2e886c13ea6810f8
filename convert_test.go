package luatab_test

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/bjaus/luatab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- FromGo ---

type label string

func TestFromGoScalars(t *testing.T) {
	t.Parallel()
	var nilPtr *int
	seven := 7
	tests := map[string]struct {
		in   any
		want luatab.Value
	}{
		"nil":          {in: nil, want: luatab.Nil{}},
		"nil pointer":  {in: nilPtr, want: luatab.Nil{}},
		"pointer":      {in: &seven, want: luatab.Int(7)},
		"bool":         {in: true, want: luatab.Bool(true)},
		"int":          {in: 42, want: luatab.Int(42)},
		"int8":         {in: int8(-3), want: luatab.Int(-3)},
		"uint16":       {in: uint16(9), want: luatab.Int(9)},
		"huge uint64":  {in: uint64(math.MaxUint64), want: luatab.Float(float64(uint64(math.MaxUint64)))},
		"float32":      {in: float32(1.5), want: luatab.Float(1.5)},
		"string":       {in: "x", want: luatab.Text("x")},
		"named string": {in: label("y"), want: luatab.Text("y")},
		"bytes":        {in: []byte("raw"), want: luatab.Text("raw")},
		"json int":     {in: json.Number("12"), want: luatab.Int(12)},
		"json float":   {in: json.Number("1.25"), want: luatab.Float(1.25)},
		"value":        {in: luatab.Text("v"), want: luatab.Text("v")},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, err := luatab.FromGo(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromGoContainers(t *testing.T) {
	t.Parallel()
	in := map[string]any{
		"b": 1,
		"a": []any{"x", true, nil},
		"c": map[label]float64{"k": 0.5},
		"d": [2]int{4, 5},
	}
	got, err := luatab.MarshalGo(in, luatab.WithFlattenThreshold(0))
	require.NoError(t, err)
	want := "{\n" +
		"\ta = {\"x\", true, nil},\n" +
		"\tb = 1,\n" +
		"\tc = {k = 0.5},\n" +
		"\td = {4, 5},\n" +
		"}"
	assert.Equal(t, want, got)
}

func TestFromGoNilSlice(t *testing.T) {
	t.Parallel()
	var s []string
	got, err := luatab.FromGo(s)
	require.NoError(t, err)
	assert.Equal(t, luatab.Sequence{}, got)
}

func TestFromGoErrors(t *testing.T) {
	t.Parallel()
	tests := map[string]any{
		"struct":          struct{ A int }{A: 1},
		"int keys":        map[int]string{1: "a"},
		"nested struct":   []any{1, struct{}{}},
		"func":            func() {},
		"bad json number": json.Number("1x"),
		"cyclic map":      cyclicMap(),
		"cyclic slice":    cyclicSlice(),
		"cyclic pointer":  cyclicPointer(),
		"deep cycle":      []any{map[string]any{"m": cyclicMap()}},
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := luatab.FromGo(in)
			require.ErrorIs(t, err, luatab.ErrTypeKind)
		})
	}
}

func cyclicMap() map[string]any {
	m := map[string]any{"n": 1}
	m["self"] = m
	return m
}

func cyclicSlice() []any {
	s := make([]any, 2)
	s[0] = "x"
	s[1] = s
	return s
}

func cyclicPointer() any {
	var x any
	x = &x
	return x
}

func TestFromGoCycleMessage(t *testing.T) {
	t.Parallel()
	_, err := luatab.FromGo(cyclicMap())
	require.ErrorIs(t, err, luatab.ErrTypeKind)
	assert.Contains(t, err.Error(), `key "self": `)
	assert.Contains(t, err.Error(), "cyclic value of type map[string]interface {}")
}

func TestFromGoSharedReferences(t *testing.T) {
	t.Parallel()
	inner := []int{1, 2}
	m := map[string]any{"k": "v"}
	v, err := luatab.FromGo(map[string]any{"a": inner, "b": inner, "c": inner[:1], "m1": m, "m2": m})
	require.NoError(t, err)
	got, err := luatab.Marshal(v, luatab.WithFlattenThreshold(0), luatab.WithSortKeys(strings.Compare))
	require.NoError(t, err)
	assert.Equal(t, "{\n\ta = {1, 2},\n\tb = {1, 2},\n\tc = {1},\n\tm1 = {k = \"v\"},\n\tm2 = {k = \"v\"},\n}", got)
}

func TestMarshalGoError(t *testing.T) {
	t.Parallel()
	_, err := luatab.MarshalGo(map[string]any{"ch": make(chan int)})
	require.ErrorIs(t, err, luatab.ErrTypeKind)
	assert.Contains(t, err.Error(), `key "ch"`)
	assert.Contains(t, err.Error(), "chan int")
}

// --- FromYAML ---

func TestFromYAML(t *testing.T) {
	t.Parallel()
	src := []byte("b: 1\na: [x, 2.5, true, ~]\nwhen: 2024-01-02\n")
	v, err := luatab.FromYAML(src)
	require.NoError(t, err)

	tbl, ok := v.(*luatab.Table)
	require.True(t, ok)
	assert.Equal(t, []string{"b", "a", "when"}, tbl.Keys())

	got, err := luatab.Marshal(v, luatab.WithFlattenThreshold(1))
	require.NoError(t, err)
	want := "{\n" +
		"\tb = 1,\n" +
		"\ta = {\"x\", 2.5, true, nil},\n" +
		"\twhen = \"2024-01-02\",\n" +
		"}"
	assert.Equal(t, want, got)
}

func TestFromYAMLAnchors(t *testing.T) {
	t.Parallel()
	src := []byte("base: &b {x: 1}\ncopy: *b\n")
	v, err := luatab.FromYAML(src)
	require.NoError(t, err)
	got, err := luatab.Marshal(v, luatab.WithFlattenThreshold(1))
	require.NoError(t, err)
	assert.Equal(t, "{\n\tbase = {x = 1},\n\tcopy = {x = 1},\n}", got)
}

func TestFromYAMLEmpty(t *testing.T) {
	t.Parallel()
	v, err := luatab.FromYAML(nil)
	require.NoError(t, err)
	assert.Equal(t, luatab.Nil{}, v)
}

func TestFromYAMLMerge(t *testing.T) {
	t.Parallel()
	src := []byte("" +
		"base: &b {x: 1, y: 2}\n" +
		"more: &m {y: 3, z: 4}\n" +
		"one:\n  x: 0\n  <<: *b\n  y: 9\n" +
		"many:\n  <<: [*m, *b]\n")
	v, err := luatab.FromYAML(src)
	require.NoError(t, err)

	tbl := v.(*luatab.Table)
	one, _ := tbl.Get("one")
	assert.Equal(t, "{x = 0, y = 9}", mustMarshal(t, one))
	many, _ := tbl.Get("many")
	assert.Equal(t, "{y = 3, z = 4, x = 1}", mustMarshal(t, many))
}

func TestFromYAMLErrors(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		src  string
		want string
	}{
		"int key":             {src: "1: a\n", want: "mapping key"},
		"self alias":          {src: "a: &x [1, *x]\n", want: `line 1: anchor "x" refers to itself`},
		"nested self alias":   {src: "a: &x\n  b:\n    c: *x\n", want: `anchor "x" refers to itself`},
		"self merge":          {src: "a: &x\n  <<: *x\n", want: `anchor "x" refers to itself`},
		"merge scalar":        {src: "a: &s 1\nb:\n  <<: *s\n", want: "merge key needs a mapping"},
		"merge list of items": {src: "a: &s [1]\nb:\n  <<: [*s]\n", want: "merge key needs mappings"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := luatab.FromYAML([]byte(tt.src))
			require.ErrorIs(t, err, luatab.ErrTypeKind)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := luatab.FromYAML([]byte("a: [1, 2\n"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, luatab.ErrTypeKind)
}

func TestFromYAMLSharedAlias(t *testing.T) {
	t.Parallel()
	src := []byte("l: &l [1]\npair: [*l, *l]\n")
	v, err := luatab.FromYAML(src)
	require.NoError(t, err)
	pair, _ := v.(*luatab.Table).Get("pair")
	one := luatab.Sequence{luatab.Int(1)}
	assert.Equal(t, luatab.Sequence{one, one}, pair)
}

func mustMarshal(t *testing.T, v luatab.Value) string {
	t.Helper()
	s, err := luatab.Marshal(v, luatab.WithFlattenThreshold(0))
	require.NoError(t, err)
	return s
}

// --- FromJSON ---

func TestFromJSON(t *testing.T) {
	t.Parallel()
	src := []byte(`{"z": 1, "a": {"k": "v"}, "f": 1.5, "n": null, "l": [], "big": 12345678901234567890}`)
	v, err := luatab.FromJSON(src)
	require.NoError(t, err)

	tbl, ok := v.(*luatab.Table)
	require.True(t, ok)
	assert.Equal(t, []string{"z", "a", "f", "n", "l", "big"}, tbl.Keys())

	got, err := luatab.Marshal(v, luatab.WithFlattenThreshold(1))
	require.NoError(t, err)
	want := "{\n" +
		"\tz = 1,\n" +
		"\ta = {k = \"v\"},\n" +
		"\tf = 1.5,\n" +
		"\tn = nil,\n" +
		"\tl = {},\n" +
		"\tbig = 1.2345678901234567e+19,\n" +
		"}"
	assert.Equal(t, want, got)
}

func TestFromJSONErrors(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"truncated": `{"a": 1`,
		"trailing":  `{} {}`,
		"empty":     ``,
		"bad token": `{"a": tru}`,
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := luatab.FromJSON([]byte(src))
			require.Error(t, err)
		})
	}
}

// --- Table and iterators ---

func TestTableOperations(t *testing.T) {
	t.Parallel()
	tbl := luatab.NewTable().Set("a", luatab.Int(1)).Set("b", luatab.Int(2))
	tbl.Set("a", luatab.Int(3))
	assert.Equal(t, []string{"a", "b"}, tbl.Keys())
	assert.Equal(t, 2, tbl.Len())

	v, ok := tbl.Get("a")
	require.True(t, ok)
	assert.Equal(t, luatab.Int(3), v)

	assert.True(t, tbl.Delete("a"))
	assert.False(t, tbl.Delete("a"))
	_, ok = tbl.Get("a")
	assert.False(t, ok)

	var zero luatab.Table
	assert.Equal(t, 0, zero.Len())
	assert.Nil(t, zero.Keys())
	zero.Set("k", luatab.Bool(true))
	assert.Equal(t, []string{"k"}, zero.Keys())

	var nilTable *luatab.Table
	assert.Equal(t, 0, nilTable.Len())
	assert.False(t, nilTable.Delete("x"))
	for range nilTable.All() {
		t.Fatal("nil table yielded an entry")
	}
}

func TestTableFromSeq(t *testing.T) {
	t.Parallel()
	src := luatab.NewTable().Set("x", luatab.Int(1)).Set("y", luatab.Int(2)).Set("z", luatab.Int(3))
	var keys []string
	for k := range src.All() {
		keys = append(keys, k)
		if k == "y" {
			break
		}
	}
	assert.Equal(t, []string{"x", "y"}, keys)

	cp := luatab.TableFromSeq(src.All())
	assert.Equal(t, src.Keys(), cp.Keys())

	seq := luatab.SequenceFromSeq(func(yield func(luatab.Value) bool) {
		for _, v := range []luatab.Value{luatab.Int(1), luatab.Text("a")} {
			if !yield(v) {
				return
			}
		}
	})
	assert.Equal(t, luatab.Sequence{luatab.Int(1), luatab.Text("a")}, seq)
}

func TestKinds(t *testing.T) {
	t.Parallel()
	assert.Equal(t, luatab.KindNil, luatab.Nil{}.Kind())
	assert.Equal(t, luatab.KindBool, luatab.Bool(false).Kind())
	assert.Equal(t, luatab.KindNumber, luatab.Int(0).Kind())
	assert.Equal(t, luatab.KindText, luatab.Text("").Kind())
	assert.Equal(t, luatab.KindSequence, luatab.Sequence{}.Kind())
	assert.Equal(t, luatab.KindTable, luatab.NewTable().Kind())
	assert.Equal(t, "table", luatab.KindTable.String())
	assert.Equal(t, "ValueKind(42)", luatab.ValueKind(42).String())

	assert.True(t, luatab.IsContainer(luatab.Sequence{}))
	assert.True(t, luatab.IsContainer(luatab.NewTable()))
	assert.False(t, luatab.IsContainer(luatab.Text("x")))
	assert.False(t, luatab.IsContainer(nil))
}

func TestNumberAccessors(t *testing.T) {
	t.Parallel()
	i := luatab.Int(5)
	assert.False(t, i.IsFloat())
	assert.Equal(t, int64(5), i.Int64())
	assert.InDelta(t, 5.0, i.Float64(), 0)

	f := luatab.Float(2.75)
	assert.True(t, f.IsFloat())
	assert.Equal(t, int64(2), f.Int64())
	assert.InDelta(t, 2.75, f.Float64(), 0)
	assert.Equal(t, "-0.0", luatab.Float(math.Copysign(0, -1)).String())
}
