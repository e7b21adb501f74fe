// Package schema provides the concrete value schemas of valtree: leaf
// scalars (Any, None, Bool, Str, Int, Float, Date, DateTime, Func) and
// composites (Dict, List, AnyOf). Schemas are built with chainable
// constructors and are immutable once validation starts:
//
//	s := schema.Dict().Keys(
//		schema.K("name", schema.Str()).Required(),
//		schema.K("birthday", schema.Date()),
//	)
package schema
