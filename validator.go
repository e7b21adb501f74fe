package valtree

// Result is the outcome of a Validator run: the transformed value on
// success, or the collected error tree on failure.
type Result struct {
	Value  any
	Errors ErrorList
}

// IsValid reports whether validation succeeded.
func (r Result) IsValid() bool { return len(r.Errors) == 0 }

// FormatErrors renders the collected errors with the given formatter.
func (r Result) FormatErrors(f ErrorFormatter) (string, error) {
	return f.Format(r.Errors)
}

// Validator is the thin facade over a schema tree, the primary external
// entry point into the engine.
type Validator struct {
	schema Schema
}

// NewValidator wraps a schema.
func NewValidator(s Schema) *Validator { return &Validator{schema: s} }

// Validate runs the schema against a value and packages the outcome. The
// context may be nil.
func (v *Validator) Validate(value any, typecast bool, ctx Context) Result {
	out, err := Process(v.schema, value, typecast, ctx)
	if err != nil {
		errs, _ := AsErrorList(err)
		return Result{Errors: errs}
	}
	return Result{Value: out}
}

// Validate is a convenience for one-shot validation without a context.
func Validate(s Schema, value any, typecast bool) Result {
	return NewValidator(s).Validate(value, typecast, nil)
}
