package luatab

import (
	"errors"
	"io"
	"math"
	"strings"
)

// Sentinel errors for programmatic error handling.
var (
	ErrTypeKind = errors.New("unsupported value type")
)

// KeyFormat controls how table keys are written.
type KeyFormat int

const (
	// KeyShort writes keys as bare identifiers when Lua allows it:
	// {key = "value"}.
	KeyShort KeyFormat = iota
	// KeyFull always writes bracketed string keys: {["key"] = "value"}.
	KeyFull
)

// String returns the format name.
func (f KeyFormat) String() string {
	switch f {
	case KeyShort:
		return "short"
	case KeyFull:
		return "full"
	default:
		return "unknown"
	}
}

// NeverFlatten is the default flatten threshold: no container is ever put on
// a single line.
const NeverFlatten = math.MaxInt

// --- Hooks ---

// ContainerKind says whether an item belongs to a sequence or a table.
type ContainerKind int

const (
	SequenceItem ContainerKind = iota // {"value1", "value2"}
	TableItem                         // {key1 = "value1", key2 = "value2"}
)

// Item describes one element of a container as it is emitted.
type Item struct {
	Kind  ContainerKind
	Key   string // empty for sequence items
	Value Value
	Index int // position within the container, after sorting
}

// HasKey reports whether the item is a table entry.
func (it Item) HasKey() bool { return it.Kind == TableItem }

// Hook returns literal text to splice around an item. Hooks must not modify
// the value being serialized.
type Hook interface {
	Item(Item) string
}

// HookFunc adapts an ordinary function to a [Hook].
type HookFunc func(Item) string

// Item calls f(it).
func (f HookFunc) Item(it Item) string { return f(it) }

// NopHook splices nothing.
var NopHook Hook = HookFunc(func(Item) string { return "" })

// --- Configuration ---

// Config holds the formatting settings for one serialization. Build it with
// [NewConfig]; a Config is never modified afterwards and may be shared
// between goroutines.
type Config struct {
	indent      string
	indentLevel int
	flatten     int
	sortKeys    func(a, b string) int
	keyFormat   KeyFormat
	before      Hook
	after       Hook
	alignedKeys bool
}

// Option configures a [Config].
type Option func(*Config)

// NewConfig returns the default configuration with opts applied.
func NewConfig(opts ...Option) Config {
	cfg := Config{
		indent:    "\t",
		flatten:   NeverFlatten,
		keyFormat: KeyShort,
		before:    NopHook,
		after:     NopHook,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithIndent sets the string written once per nesting level, e.g. "\t" or
// "  ".
func WithIndent(unit string) Option {
	return func(c *Config) { c.indent = unit }
}

// WithIndentLevel sets the starting nesting depth. It shifts indentation and
// the flatten decision; it does not change the structure of the output.
func WithIndentLevel(level int) Option {
	return func(c *Config) { c.indentLevel = level }
}

// WithFlattenThreshold sets the depth at or beyond which a container with no
// nested containers is written on one line. Zero flattens every such
// container.
func WithFlattenThreshold(depth int) Option {
	return func(c *Config) { c.flatten = depth }
}

// WithSortKeys orders table keys with cmp, which follows the [strings.Compare]
// convention. Without it keys are written in insertion order.
func WithSortKeys(cmp func(a, b string) int) Option {
	return func(c *Config) { c.sortKeys = cmp }
}

// WithKeyFormat selects short or full table keys.
func WithKeyFormat(f KeyFormat) Option {
	return func(c *Config) { c.keyFormat = f }
}

// WithBefore sets the hook whose text is written before each item.
func WithBefore(h Hook) Option {
	return func(c *Config) {
		if h == nil {
			h = NopHook
		}
		c.before = h
	}
}

// WithAfter sets the hook whose text is written after each item.
func WithAfter(h Hook) Option {
	return func(c *Config) {
		if h == nil {
			h = NopHook
		}
		c.after = h
	}
}

// WithAlignedKeys pads keys of multi-line tables so their "=" signs line up.
// Padding is measured in terminal display columns.
func WithAlignedKeys() Option {
	return func(c *Config) { c.alignedKeys = true }
}

// Indent returns the indentation unit.
func (c Config) Indent() string { return c.indent }

// IndentLevel returns the starting nesting depth.
func (c Config) IndentLevel() int { return c.indentLevel }

// FlattenThreshold returns the flatten depth.
func (c Config) FlattenThreshold() int { return c.flatten }

// KeyFormat returns the table key format.
func (c Config) KeyFormat() KeyFormat { return c.keyFormat }

// Sorted reports whether table keys are sorted.
func (c Config) Sorted() bool { return c.sortKeys != nil }

// --- Entry points ---

// Write serializes v with the given options and writes the result to w.
func Write(w io.Writer, v Value, opts ...Option) error {
	s, err := MarshalConfig(v, NewConfig(opts...))
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, s)
	return err
}

// Marshal serializes v as a Lua literal. The result has no trailing newline;
// callers add "return " or line endings as they need.
func Marshal(v Value, opts ...Option) (string, error) {
	return MarshalConfig(v, NewConfig(opts...))
}

// MarshalConfig is like [Marshal] with an explicit configuration.
func MarshalConfig(v Value, cfg Config) (string, error) {
	if cfg.before == nil {
		cfg.before = NopHook
	}
	if cfg.after == nil {
		cfg.after = NopHook
	}
	e := encoder{cfg: cfg}
	if err := e.encode(v, cfg.indentLevel); err != nil {
		return "", err
	}
	return e.buf.String(), nil
}

// MarshalGo converts x with [FromGo] and serializes the result.
func MarshalGo(x any, opts ...Option) (string, error) {
	v, err := FromGo(x)
	if err != nil {
		return "", err
	}
	return Marshal(v, opts...)
}

// encoder accumulates output for a single call.
type encoder struct {
	cfg    Config
	buf    strings.Builder
	active map[any]bool
}
