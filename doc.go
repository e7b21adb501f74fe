// Package valtree validates already-decoded in-memory values (maps, slices,
// scalars) against composable schemas and reports failures as a recursive
// tree of coded errors instead of a single message string.
//
// It provides:
//
//   - A small Schema contract (AllowsNone/Validate plus optional Typecast)
//     and the Process call protocol shared by every schema
//   - A structured error model via Error/ErrorList (code, argument map,
//     nested error tree) with well-defined merge semantics
//   - Leaf and composite schemas under schema/ (Str, Int, Float, Date, Dict,
//     List, AnyOf, ...) built with chainable constructors
//   - A declarative builder under declarative/ that turns plain JSON/YAML
//     compatible maps into live schema trees via a fabric registry
//
// Design policy:
//
//   - Keep only the public contract in the root package; put schema
//     implementations under schema/ and the CLI under cmd/valtree.
//   - Errors are returned and aggregated, never raised mid-walk; only
//     Process converts the final list into an error value.
//   - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	s := schema.Dict().Keys(
//		schema.K("name", schema.Str()).Required(),
//		schema.K("age", schema.Int().GreaterOrEqualTo(0)),
//	)
//	res := valtree.Validate(s, value, true)
//	if !res.IsValid() {
//		out, _ := valtree.NewJSONFormatter(nil).Format(res.Errors)
//		fmt.Println(out)
//	}
package valtree
