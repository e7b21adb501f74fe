package valtree

// Context is an open bag of cross-cutting validation hints passed through
// every recursive call. Recognized key: "date_format" (overrides a
// Date/DateTime schema's format option; the context always wins).
type Context map[string]any

// ErrorFactory builds Errors bound to a schema's message collection. It is
// passed explicitly to rules so they can produce well-formed errors without
// reaching into schema internals.
type ErrorFactory interface {
	NewError(code string, args Args, nested Nested) *Error
}

// Rule is a caller-supplied post-validation hook, run after a schema's own
// checks in declaration order. A rule receives (and may replace) the current
// value, enabling validation chained with transformation.
type Rule func(f ErrorFactory, value any, typecast bool, ctx Context) (any, ErrorList)

// Schema is the contract every value schema implements. Concrete schemas
// embed Base, which provides AllowsNone, NewError and ApplyRules.
type Schema interface {
	ErrorFactory

	// AllowsNone reports whether a nil value succeeds immediately.
	AllowsNone() bool

	// Validate checks exact type and domain constraints, runs rules, and
	// returns the (possibly transformed) value or the full error list for
	// this level. It never partially succeeds.
	Validate(value any, typecast bool, ctx Context) (any, ErrorList)
}

// Typecaster is the optional coercion side of a schema: a best-effort,
// type-only conversion of loosely-typed input (typically a string) prior to
// validation. Schemas without a meaningful coercion simply do not implement
// it (AnyOf deliberately does not).
type Typecaster interface {
	Typecast(input any, ctx Context) (any, ErrorList)
}

// Processor lets a schema replace the standard call protocol entirely.
// AnyOf uses this to keep nil handling and typecasting inside its variants.
type Processor interface {
	Process(value any, typecast bool, ctx Context) (any, error)
}

// Process runs the full call protocol against a schema:
//
//  1. nil input fails with cannot_be_none unless the schema allows it, in
//     which case it succeeds immediately (no typecast, no rules);
//  2. with typecast enabled, coercion runs first and a failed cast aborts
//     validation with exactly the cast errors;
//  3. Validate runs on the (possibly cast) value.
//
// The returned error, when non-nil, is always an ErrorList.
func Process(s Schema, value any, typecast bool, ctx Context) (any, error) {
	if p, ok := s.(Processor); ok {
		return p.Process(value, typecast, ctx)
	}
	if ctx == nil {
		ctx = Context{}
	}
	if value == nil {
		if !s.AllowsNone() {
			return nil, ErrorList{s.NewError(CodeCannotBeNone, nil, nil)}
		}
		return nil, nil
	}
	if typecast {
		if tc, ok := s.(Typecaster); ok {
			cast, errs := tc.Typecast(value, ctx)
			if len(errs) > 0 {
				return nil, errs
			}
			value = cast
		}
	}
	out, errs := s.Validate(value, typecast, ctx)
	if len(errs) > 0 {
		return nil, errs
	}
	return out, nil
}

// Base carries the state shared by every schema: the allow-none flag, the
// message collection and the ordered rule list. Concrete schemas embed it by
// value and configure it through the exported setters (their chainable
// constructors wrap these).
type Base struct {
	allowNone bool
	messages  MessageCollection
	rules     []Rule
}

// AllowsNone reports whether nil input is accepted.
func (b *Base) AllowsNone() bool { return b.allowNone }

// SetAllowNone configures nil handling.
func (b *Base) SetAllowNone(allow bool) { b.allowNone = allow }

// SetMessages overrides the error message collection.
func (b *Base) SetMessages(mc MessageCollection) { b.messages = mc }

// AppendRules appends custom validation rules, preserving order.
func (b *Base) AppendRules(rules ...Rule) { b.rules = append(b.rules, rules...) }

// NewError builds an Error bound to this schema's message collection.
func (b *Base) NewError(code string, args Args, nested Nested) *Error {
	return NewError(code, args, nested, b.messages)
}

// ApplyRules runs the rule chain once, threading the value through each rule
// and concatenating their errors.
func (b *Base) ApplyRules(value any, typecast bool, ctx Context) (any, ErrorList) {
	var errs ErrorList
	for _, rule := range b.rules {
		next, ruleErrs := rule(b, value, typecast, ctx)
		errs = append(errs, ruleErrs...)
		value = next
	}
	return value, errs
}
