package schema

import (
	"encoding/json"
	"strconv"

	valtree "github.com/reoring/valtree"
)

// IntSchema accepts integer values. All Go integer kinds (and integral
// json.Number values) normalize to int64.
type IntSchema struct {
	valtree.Base
	lessThan         *int64
	lessOrEqualTo    *int64
	greaterThan      *int64
	greaterOrEqualTo *int64
	allowed          []int64
	hasAllowed       bool
}

var _ valtree.Schema = (*IntSchema)(nil)
var _ valtree.Typecaster = (*IntSchema)(nil)

// Int returns a schema accepting integer values.
func Int() *IntSchema { return &IntSchema{} }

// AllowNone permits nil input.
func (s *IntSchema) AllowNone() *IntSchema { s.SetAllowNone(true); return s }

// Messages overrides error messages.
func (s *IntSchema) Messages(mc valtree.MessageCollection) *IntSchema { s.SetMessages(mc); return s }

// Rules appends custom validation rules.
func (s *IntSchema) Rules(rules ...valtree.Rule) *IntSchema { s.AppendRules(rules...); return s }

// LessThan requires value < n.
func (s *IntSchema) LessThan(n int64) *IntSchema { s.lessThan = &n; return s }

// LessOrEqualTo requires value <= n.
func (s *IntSchema) LessOrEqualTo(n int64) *IntSchema { s.lessOrEqualTo = &n; return s }

// GreaterThan requires value > n.
func (s *IntSchema) GreaterThan(n int64) *IntSchema { s.greaterThan = &n; return s }

// GreaterOrEqualTo requires value >= n.
func (s *IntSchema) GreaterOrEqualTo(n int64) *IntSchema { s.greaterOrEqualTo = &n; return s }

// Allowed restricts input to the given values.
func (s *IntSchema) Allowed(values ...int64) *IntSchema {
	s.allowed = values
	s.hasAllowed = true
	return s
}

func (s *IntSchema) Validate(value any, typecast bool, ctx valtree.Context) (any, valtree.ErrorList) {
	n, ok := asInt64(value)
	if !ok {
		return nil, valtree.ErrorList{s.unexpectedType()}
	}
	var errs valtree.ErrorList
	if s.hasAllowed && !containsInt64(s.allowed, n) {
		errs = append(errs, s.NewError(valtree.CodeNotAllowed, valtree.Args{"allowed": s.allowed}, nil))
	}
	if s.lessThan != nil && n >= *s.lessThan {
		errs = append(errs, s.NewError(valtree.CodeGreaterOrEqualTo, valtree.Args{"value": *s.lessThan}, nil))
	}
	if s.lessOrEqualTo != nil && n > *s.lessOrEqualTo {
		errs = append(errs, s.NewError(valtree.CodeGreaterThan, valtree.Args{"value": *s.lessOrEqualTo}, nil))
	}
	if s.greaterThan != nil && n <= *s.greaterThan {
		errs = append(errs, s.NewError(valtree.CodeLessOrEqualTo, valtree.Args{"value": *s.greaterThan}, nil))
	}
	if s.greaterOrEqualTo != nil && n < *s.greaterOrEqualTo {
		errs = append(errs, s.NewError(valtree.CodeLessThan, valtree.Args{"value": *s.greaterOrEqualTo}, nil))
	}
	out, ruleErrs := s.ApplyRules(n, typecast, ctx)
	return out, append(errs, ruleErrs...)
}

func (s *IntSchema) Typecast(input any, ctx valtree.Context) (any, valtree.ErrorList) {
	if n, ok := asInt64(input); ok {
		return n, nil
	}
	str, ok := input.(string)
	if !ok {
		if num, isNum := input.(json.Number); isNum {
			str = num.String()
		} else {
			return nil, valtree.ErrorList{s.unexpectedType()}
		}
	}
	n, err := strconv.ParseInt(str, 10, 64)
	if err != nil {
		return nil, valtree.ErrorList{s.NewError(valtree.CodeInvalidIntFormat, nil, nil)}
	}
	return n, nil
}

func (s *IntSchema) unexpectedType() *valtree.Error {
	return s.NewError(valtree.CodeUnexpectedType, valtree.Args{"expected_type": valtree.TypeName("int")}, nil)
}

// FloatSchema accepts floating-point values; integers widen losslessly to
// float64.
type FloatSchema struct {
	valtree.Base
	lessThan         *float64
	lessOrEqualTo    *float64
	greaterThan      *float64
	greaterOrEqualTo *float64
	allowed          []float64
	hasAllowed       bool
}

var _ valtree.Schema = (*FloatSchema)(nil)
var _ valtree.Typecaster = (*FloatSchema)(nil)

// Float returns a schema accepting floating-point values.
func Float() *FloatSchema { return &FloatSchema{} }

// AllowNone permits nil input.
func (s *FloatSchema) AllowNone() *FloatSchema { s.SetAllowNone(true); return s }

// Messages overrides error messages.
func (s *FloatSchema) Messages(mc valtree.MessageCollection) *FloatSchema { s.SetMessages(mc); return s }

// Rules appends custom validation rules.
func (s *FloatSchema) Rules(rules ...valtree.Rule) *FloatSchema { s.AppendRules(rules...); return s }

// LessThan requires value < n.
func (s *FloatSchema) LessThan(n float64) *FloatSchema { s.lessThan = &n; return s }

// LessOrEqualTo requires value <= n.
func (s *FloatSchema) LessOrEqualTo(n float64) *FloatSchema { s.lessOrEqualTo = &n; return s }

// GreaterThan requires value > n.
func (s *FloatSchema) GreaterThan(n float64) *FloatSchema { s.greaterThan = &n; return s }

// GreaterOrEqualTo requires value >= n.
func (s *FloatSchema) GreaterOrEqualTo(n float64) *FloatSchema { s.greaterOrEqualTo = &n; return s }

// Allowed restricts input to the given values.
func (s *FloatSchema) Allowed(values ...float64) *FloatSchema {
	s.allowed = values
	s.hasAllowed = true
	return s
}

func (s *FloatSchema) Validate(value any, typecast bool, ctx valtree.Context) (any, valtree.ErrorList) {
	f, ok := asFloat64(value)
	if !ok {
		return nil, valtree.ErrorList{s.unexpectedType()}
	}
	var errs valtree.ErrorList
	if s.hasAllowed && !containsFloat64(s.allowed, f) {
		errs = append(errs, s.NewError(valtree.CodeNotAllowed, valtree.Args{"allowed": s.allowed}, nil))
	}
	if s.lessThan != nil && f >= *s.lessThan {
		errs = append(errs, s.NewError(valtree.CodeGreaterOrEqualTo, valtree.Args{"value": *s.lessThan}, nil))
	}
	if s.lessOrEqualTo != nil && f > *s.lessOrEqualTo {
		errs = append(errs, s.NewError(valtree.CodeGreaterThan, valtree.Args{"value": *s.lessOrEqualTo}, nil))
	}
	if s.greaterThan != nil && f <= *s.greaterThan {
		errs = append(errs, s.NewError(valtree.CodeLessOrEqualTo, valtree.Args{"value": *s.greaterThan}, nil))
	}
	if s.greaterOrEqualTo != nil && f < *s.greaterOrEqualTo {
		errs = append(errs, s.NewError(valtree.CodeLessThan, valtree.Args{"value": *s.greaterOrEqualTo}, nil))
	}
	out, ruleErrs := s.ApplyRules(f, typecast, ctx)
	return out, append(errs, ruleErrs...)
}

func (s *FloatSchema) Typecast(input any, ctx valtree.Context) (any, valtree.ErrorList) {
	if f, ok := asFloat64(input); ok {
		return f, nil
	}
	str, ok := input.(string)
	if !ok {
		return nil, valtree.ErrorList{s.unexpectedType()}
	}
	f, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return nil, valtree.ErrorList{s.NewError(valtree.CodeInvalidNumFormat, nil, nil)}
	}
	return f, nil
}

func (s *FloatSchema) unexpectedType() *valtree.Error {
	return s.NewError(valtree.CodeUnexpectedType, valtree.Args{"expected_type": valtree.TypeName("float")}, nil)
}

// asInt64 normalizes any Go integer kind (or an integral json.Number) to
// int64. Floats and bools are not integers.
func asInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// asFloat64 normalizes floats, integer kinds and json.Number to float64.
func asFloat64(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		if n, ok := asInt64(value); ok {
			return float64(n), true
		}
		return 0, false
	}
}

func containsInt64(values []int64, value int64) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

func containsFloat64(values []float64, value float64) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
