package schema

import (
	"reflect"

	valtree "github.com/reoring/valtree"
)

// FuncSchema accepts invokable values (Go functions). No coercion is
// possible.
type FuncSchema struct {
	valtree.Base
}

var _ valtree.Schema = (*FuncSchema)(nil)
var _ valtree.Typecaster = (*FuncSchema)(nil)

// Func returns a schema accepting invokable values.
func Func() *FuncSchema { return &FuncSchema{} }

// AllowNone permits nil input.
func (s *FuncSchema) AllowNone() *FuncSchema { s.SetAllowNone(true); return s }

// Messages overrides error messages.
func (s *FuncSchema) Messages(mc valtree.MessageCollection) *FuncSchema { s.SetMessages(mc); return s }

// Rules appends custom validation rules.
func (s *FuncSchema) Rules(rules ...valtree.Rule) *FuncSchema { s.AppendRules(rules...); return s }

func (s *FuncSchema) Validate(value any, typecast bool, ctx valtree.Context) (any, valtree.ErrorList) {
	if reflect.ValueOf(value).Kind() != reflect.Func {
		return nil, valtree.ErrorList{s.NewError(valtree.CodeNotCallable, nil, nil)}
	}
	return s.ApplyRules(value, typecast, ctx)
}

func (s *FuncSchema) Typecast(input any, ctx valtree.Context) (any, valtree.ErrorList) {
	return input, nil
}
