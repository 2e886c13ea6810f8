// Package luatab renders structured data as Lua table literals.
//
// The central entry points are [Marshal] and [Write], which accept a [Value]
// and functional options. Values form a closed set: [Nil], [Bool], [Number],
// [Text], [Sequence] and [*Table]. Tables remember insertion order, so output
// is deterministic without sorting.
//
//	t := luatab.NewTable().
//		Set("name", luatab.Text("Dab")).
//		Set("aliases", luatab.Sequence{luatab.Text("Disambig")})
//	s, err := luatab.Marshal(t, luatab.WithFlattenThreshold(1))
//	// {
//	// 	name = "Dab",
//	// 	aliases = {"Disambig"},
//	// }
//
// # Layout
//
// A container is written on one line only when none of its direct children
// is a container and its depth is at least the flatten threshold
// ([WithFlattenThreshold]). The default threshold, [NeverFlatten], keeps
// every non-empty container multi-line, with one item per line and a
// trailing comma after each. Empty containers are always "{}".
//
// Indentation is controlled by:
//
//   - [WithIndent]: the unit written once per level (default tab)
//   - [WithIndentLevel]: the starting depth
//   - [WithAlignedKeys]: pad keys so "=" signs line up
//
// # Keys
//
// [KeyShort] (the default) writes a key bare when it is a Lua identifier,
// is not a keyword, and is not of the _UPPERCASE form reserved for Lua
// internals. Every other key, and every key under [KeyFull], is written as
// ["key"]. [EncodeKey] exposes the rule directly.
//
// Table keys are emitted in insertion order unless [WithSortKeys] supplies
// a comparator.
//
// # Hooks
//
// [WithBefore] and [WithAfter] install [Hook]s that return literal text to
// splice around every item, for example blank lines between groups:
//
//	sep := luatab.HookFunc(func(it luatab.Item) string {
//		if it.Index > 0 && groupStart[it.Key] {
//			return "\n"
//		}
//		return ""
//	})
//	luatab.Marshal(t, luatab.WithBefore(sep))
//
// # Input
//
// [FromGo] converts native Go values, [FromYAML] and [FromJSON] decode
// documents while keeping mapping order.
//
// # Errors
//
// The package exports a sentinel error for programmatic handling:
//
//   - [ErrTypeKind]: a value outside the supported set, or a non-text
//     argument to [QuoteString]
package luatab
