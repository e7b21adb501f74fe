package schema

import (
	valtree "github.com/reoring/valtree"
)

// AnyOfSchema accepts a value matching any of its variant schemas, first
// match wins. It replaces the standard processing protocol: nil gets no
// special treatment and no type casting happens, each variant decides for
// itself via its own full pipeline.
type AnyOfSchema struct {
	valtree.Base
	schemas []valtree.Schema
}

var _ valtree.Schema = (*AnyOfSchema)(nil)
var _ valtree.Processor = (*AnyOfSchema)(nil)

// AnyOf returns a schema matching the first of the given variants.
func AnyOf(schemas ...valtree.Schema) *AnyOfSchema {
	return &AnyOfSchema{schemas: schemas}
}

// Messages overrides error messages.
func (s *AnyOfSchema) Messages(mc valtree.MessageCollection) *AnyOfSchema { s.SetMessages(mc); return s }

// Rules appends custom validation rules.
func (s *AnyOfSchema) Rules(rules ...valtree.Rule) *AnyOfSchema { s.AppendRules(rules...); return s }

// Process tries the variants in order and returns the first success. On full
// failure the per-variant error lists are collected under the "errors"
// argument, keyed by variant index.
func (s *AnyOfSchema) Process(value any, typecast bool, ctx valtree.Context) (any, error) {
	schemaErrs := map[int]valtree.ErrorList{}
	var errs valtree.ErrorList

	matched := false
	for i, variant := range s.schemas {
		v, err := valtree.Process(variant, value, false, nil)
		if err != nil {
			variantErrs, _ := valtree.AsErrorList(err)
			schemaErrs[i] = variantErrs
			continue
		}
		value = v
		matched = true
		break
	}
	if !matched {
		errs = append(errs, s.NewError(valtree.CodeNoVariantFound, valtree.Args{"errors": schemaErrs}, nil))
	}

	out, ruleErrs := s.ApplyRules(value, typecast, ctx)
	errs = append(errs, ruleErrs...)
	if len(errs) > 0 {
		return nil, errs
	}
	return out, nil
}

// Validate exists to satisfy the Schema interface; Process supersedes it.
func (s *AnyOfSchema) Validate(value any, typecast bool, ctx valtree.Context) (any, valtree.ErrorList) {
	out, err := s.Process(value, typecast, ctx)
	if err != nil {
		errs, _ := valtree.AsErrorList(err)
		return nil, errs
	}
	return out, nil
}
