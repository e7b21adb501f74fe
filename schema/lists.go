package schema

import (
	"strconv"

	valtree "github.com/reoring/valtree"
)

// ListSchema accepts []any values. Failing elements are reported under a
// value_errors wrapper keyed by their decimal index; the result slice keeps
// only the elements that validated, in input order.
type ListSchema struct {
	valtree.Base
	item      valtree.Schema
	minLength *int
	maxLength *int
	length    *int
}

var _ valtree.Schema = (*ListSchema)(nil)
var _ valtree.Typecaster = (*ListSchema)(nil)

// List returns a schema accepting list values.
func List() *ListSchema { return &ListSchema{} }

// AllowNone permits nil input.
func (s *ListSchema) AllowNone() *ListSchema { s.SetAllowNone(true); return s }

// Messages overrides error messages.
func (s *ListSchema) Messages(mc valtree.MessageCollection) *ListSchema { s.SetMessages(mc); return s }

// Rules appends custom validation rules.
func (s *ListSchema) Rules(rules ...valtree.Rule) *ListSchema { s.AppendRules(rules...); return s }

// Item sets the schema every element is validated against.
func (s *ListSchema) Item(item valtree.Schema) *ListSchema { s.item = item; return s }

// MinLength requires at least n elements.
func (s *ListSchema) MinLength(n int) *ListSchema { s.minLength = &n; return s }

// MaxLength requires at most n elements.
func (s *ListSchema) MaxLength(n int) *ListSchema { s.maxLength = &n; return s }

// Length requires exactly n elements.
func (s *ListSchema) Length(n int) *ListSchema { s.length = &n; return s }

func (s *ListSchema) Validate(value any, typecast bool, ctx valtree.Context) (any, valtree.ErrorList) {
	items, ok := value.([]any)
	if !ok {
		return nil, valtree.ErrorList{s.unexpectedType()}
	}

	var errs valtree.ErrorList
	n := len(items)
	if s.minLength != nil && n < *s.minLength {
		errs = append(errs, s.NewError(valtree.CodeTooShort, valtree.Args{"value": *s.minLength}, nil))
	}
	if s.maxLength != nil && n > *s.maxLength {
		errs = append(errs, s.NewError(valtree.CodeTooLong, valtree.Args{"value": *s.maxLength}, nil))
	}
	if s.length != nil && n != *s.length {
		errs = append(errs, s.NewError(valtree.CodeInvalidLength, valtree.Args{"value": *s.length}, nil))
	}

	result := items
	if s.item != nil {
		result = make([]any, 0, n)
		valueErrs := valtree.Nested{}
		for i, item := range items {
			v, err := valtree.Process(s.item, item, typecast, ctx)
			if err != nil {
				itemErrs, _ := valtree.AsErrorList(err)
				valueErrs[strconv.Itoa(i)] = itemErrs
				continue
			}
			result = append(result, v)
		}
		if len(valueErrs) > 0 {
			errs = append(errs, s.NewError(valtree.CodeValueErrors, nil, valueErrs))
		}
	}

	out, ruleErrs := s.ApplyRules(result, typecast, ctx)
	errs = valtree.MergeStructural(errs, ruleErrs, valtree.CodeValueErrors)
	return out, errs
}

func (s *ListSchema) Typecast(input any, ctx valtree.Context) (any, valtree.ErrorList) {
	return input, nil
}

func (s *ListSchema) unexpectedType() *valtree.Error {
	return s.NewError(valtree.CodeUnexpectedType, valtree.Args{"expected_type": valtree.TypeName("list")}, nil)
}
