package schema

import (
	"reflect"
	"regexp"
	"strings"

	valtree "github.com/reoring/valtree"
)

// AnyValueSchema accepts any value, honoring allow-none and an optional
// allow-list.
type AnyValueSchema struct {
	valtree.Base
	allowed    []any
	hasAllowed bool
}

var _ valtree.Schema = (*AnyValueSchema)(nil)
var _ valtree.Typecaster = (*AnyValueSchema)(nil)

// Any returns a schema accepting any value.
func Any() *AnyValueSchema { return &AnyValueSchema{} }

// AllowNone permits nil input.
func (s *AnyValueSchema) AllowNone() *AnyValueSchema { s.SetAllowNone(true); return s }

// Messages overrides error messages.
func (s *AnyValueSchema) Messages(mc valtree.MessageCollection) *AnyValueSchema {
	s.SetMessages(mc)
	return s
}

// Rules appends custom validation rules.
func (s *AnyValueSchema) Rules(rules ...valtree.Rule) *AnyValueSchema {
	s.AppendRules(rules...)
	return s
}

// Allowed restricts input to the given values (deep equality).
func (s *AnyValueSchema) Allowed(values ...any) *AnyValueSchema {
	s.allowed = values
	s.hasAllowed = true
	return s
}

func (s *AnyValueSchema) Validate(value any, typecast bool, ctx valtree.Context) (any, valtree.ErrorList) {
	if s.hasAllowed && !containsAny(s.allowed, value) {
		return nil, valtree.ErrorList{s.NewError(valtree.CodeNotAllowed, nil, nil)}
	}
	return s.ApplyRules(value, typecast, ctx)
}

func (s *AnyValueSchema) Typecast(input any, ctx valtree.Context) (any, valtree.ErrorList) {
	return input, nil
}

// NoneValueSchema accepts only nil. Type casting is not performed.
type NoneValueSchema struct {
	valtree.Base
}

var _ valtree.Schema = (*NoneValueSchema)(nil)
var _ valtree.Typecaster = (*NoneValueSchema)(nil)

// None returns a schema accepting only nil.
func None() *NoneValueSchema {
	s := &NoneValueSchema{}
	s.SetAllowNone(true)
	return s
}

// Messages overrides error messages.
func (s *NoneValueSchema) Messages(mc valtree.MessageCollection) *NoneValueSchema {
	s.SetMessages(mc)
	return s
}

// Rules appends custom validation rules.
func (s *NoneValueSchema) Rules(rules ...valtree.Rule) *NoneValueSchema {
	s.AppendRules(rules...)
	return s
}

// Validate only ever sees non-nil values (Process short-circuits nil), so a
// reached value is always a must_be_none failure.
func (s *NoneValueSchema) Validate(value any, typecast bool, ctx valtree.Context) (any, valtree.ErrorList) {
	if value != nil {
		return nil, valtree.ErrorList{s.NewError(valtree.CodeMustBeNone, nil, nil)}
	}
	return s.ApplyRules(value, typecast, ctx)
}

func (s *NoneValueSchema) Typecast(input any, ctx valtree.Context) (any, valtree.ErrorList) {
	return input, nil
}

// StrSchema accepts string values.
//
// A blank string short-circuits: only the allow-blank policy applies, no
// other constraint is evaluated. Strings are never type cast, since nearly
// any value can be turned into some string, which would mask real type
// errors.
type StrSchema struct {
	valtree.Base
	allowBlank bool
	minLength  *int
	maxLength  *int
	length     *int
	pattern    *regexp.Regexp
	isRegex    bool
	allowed    []string
	hasAllowed bool
}

var _ valtree.Schema = (*StrSchema)(nil)
var _ valtree.Typecaster = (*StrSchema)(nil)

// Str returns a schema accepting string values.
func Str() *StrSchema { return &StrSchema{} }

// AllowNone permits nil input.
func (s *StrSchema) AllowNone() *StrSchema { s.SetAllowNone(true); return s }

// Messages overrides error messages.
func (s *StrSchema) Messages(mc valtree.MessageCollection) *StrSchema { s.SetMessages(mc); return s }

// Rules appends custom validation rules.
func (s *StrSchema) Rules(rules ...valtree.Rule) *StrSchema { s.AppendRules(rules...); return s }

// AllowBlank permits the empty string.
func (s *StrSchema) AllowBlank() *StrSchema { s.allowBlank = true; return s }

// MinLength requires at least n characters.
func (s *StrSchema) MinLength(n int) *StrSchema { s.minLength = &n; return s }

// MaxLength requires at most n characters.
func (s *StrSchema) MaxLength(n int) *StrSchema { s.maxLength = &n; return s }

// Length requires exactly n characters.
func (s *StrSchema) Length(n int) *StrSchema { s.length = &n; return s }

// Pattern requires the value to match the given regexp. An invalid pattern
// is a programmer error and panics at construction.
func (s *StrSchema) Pattern(pattern string) *StrSchema {
	s.pattern = regexp.MustCompile(pattern)
	return s
}

// IsRegex requires the value itself to be a valid regexp.
func (s *StrSchema) IsRegex() *StrSchema { s.isRegex = true; return s }

// Allowed restricts input to the given values.
func (s *StrSchema) Allowed(values ...string) *StrSchema {
	s.allowed = values
	s.hasAllowed = true
	return s
}

func (s *StrSchema) Validate(value any, typecast bool, ctx valtree.Context) (any, valtree.ErrorList) {
	str, ok := value.(string)
	if !ok {
		return nil, valtree.ErrorList{s.unexpectedType()}
	}
	if str == "" {
		if s.allowBlank {
			return str, nil
		}
		return nil, valtree.ErrorList{s.NewError(valtree.CodeCannotBeBlank, nil, nil)}
	}
	var errs valtree.ErrorList
	if s.hasAllowed && !containsString(s.allowed, str) {
		errs = append(errs, s.NewError(valtree.CodeNotAllowed, valtree.Args{"allowed": s.allowed}, nil))
	}
	n := len([]rune(str))
	if s.minLength != nil && n < *s.minLength {
		errs = append(errs, s.NewError(valtree.CodeStringTooShort, valtree.Args{"value": *s.minLength}, nil))
	}
	if s.maxLength != nil && n > *s.maxLength {
		errs = append(errs, s.NewError(valtree.CodeStringTooLong, valtree.Args{"value": *s.maxLength}, nil))
	}
	if s.length != nil && n != *s.length {
		errs = append(errs, s.NewError(valtree.CodeInvalidStringLength, valtree.Args{"value": *s.length}, nil))
	}
	if s.pattern != nil && !s.pattern.MatchString(str) {
		errs = append(errs, s.NewError(valtree.CodeInvalidStringFormat, nil, nil))
	}
	if s.isRegex {
		if _, err := regexp.Compile(str); err != nil {
			errs = append(errs, s.NewError(valtree.CodeInvalidRegex, nil, nil))
		}
	}
	out, ruleErrs := s.ApplyRules(str, typecast, ctx)
	return out, append(errs, ruleErrs...)
}

func (s *StrSchema) Typecast(input any, ctx valtree.Context) (any, valtree.ErrorList) {
	if str, ok := input.(string); ok {
		return str, nil
	}
	return nil, valtree.ErrorList{s.unexpectedType()}
}

func (s *StrSchema) unexpectedType() *valtree.Error {
	return s.NewError(valtree.CodeUnexpectedType, valtree.Args{"expected_type": valtree.TypeName("str")}, nil)
}

// BoolSchema accepts bool values.
type BoolSchema struct {
	valtree.Base
	onlyTrue     bool
	onlyFalse    bool
	castAnything bool
}

var _ valtree.Schema = (*BoolSchema)(nil)
var _ valtree.Typecaster = (*BoolSchema)(nil)

// Bool returns a schema accepting bool values.
func Bool() *BoolSchema { return &BoolSchema{} }

// AllowNone permits nil input.
func (s *BoolSchema) AllowNone() *BoolSchema { s.SetAllowNone(true); return s }

// Messages overrides error messages.
func (s *BoolSchema) Messages(mc valtree.MessageCollection) *BoolSchema { s.SetMessages(mc); return s }

// Rules appends custom validation rules.
func (s *BoolSchema) Rules(rules ...valtree.Rule) *BoolSchema { s.AppendRules(rules...); return s }

// OnlyTrue allows only true.
func (s *BoolSchema) OnlyTrue() *BoolSchema { s.onlyTrue = true; return s }

// OnlyFalse allows only false.
func (s *BoolSchema) OnlyFalse() *BoolSchema { s.onlyFalse = true; return s }

// CastAnything makes typecast fall back to truthiness coercion for any input
// (zero value means false).
func (s *BoolSchema) CastAnything() *BoolSchema { s.castAnything = true; return s }

func (s *BoolSchema) Validate(value any, typecast bool, ctx valtree.Context) (any, valtree.ErrorList) {
	b, ok := value.(bool)
	if !ok {
		return nil, valtree.ErrorList{s.unexpectedType()}
	}
	var errs valtree.ErrorList
	if s.onlyFalse && b {
		errs = append(errs, s.NewError(valtree.CodeNotAllowed, valtree.Args{"allowed": []any{false}}, nil))
	}
	if s.onlyTrue && !b {
		errs = append(errs, s.NewError(valtree.CodeNotAllowed, valtree.Args{"allowed": []any{true}}, nil))
	}
	out, ruleErrs := s.ApplyRules(b, typecast, ctx)
	return out, append(errs, ruleErrs...)
}

func (s *BoolSchema) Typecast(input any, ctx valtree.Context) (any, valtree.ErrorList) {
	if b, ok := input.(bool); ok {
		return b, nil
	}
	if s.castAnything {
		return truthy(input), nil
	}
	if str, ok := input.(string); ok {
		switch strings.ToLower(str) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
	}
	return nil, valtree.ErrorList{s.unexpectedType()}
}

func (s *BoolSchema) unexpectedType() *valtree.Error {
	return s.NewError(valtree.CodeUnexpectedType, valtree.Args{"expected_type": valtree.TypeName("bool")}, nil)
}

// truthy reports the truthiness of a non-nil value: empty strings and
// containers are false, otherwise zero values are false.
func truthy(value any) bool {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.String, reflect.Map, reflect.Slice, reflect.Array, reflect.Chan:
		return rv.Len() > 0
	default:
		return !rv.IsZero()
	}
}

func containsAny(values []any, value any) bool {
	for _, v := range values {
		if reflect.DeepEqual(v, value) {
			return true
		}
	}
	return false
}

func containsString(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
