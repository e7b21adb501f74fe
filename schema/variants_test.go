package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	valtree "github.com/reoring/valtree"
	"github.com/reoring/valtree/schema"
)

func TestAnyOf_FirstMatchWins(t *testing.T) {
	s := schema.AnyOf(schema.Int(), schema.Str())

	out, errs := validate(t, s, int64(42), false)
	require.Empty(t, errs)
	assert.Equal(t, int64(42), out)

	out, errs = validate(t, s, "flux capacitor", false)
	require.Empty(t, errs)
	assert.Equal(t, "flux capacitor", out)
}

func TestAnyOf_MatchedVariantTransformsValue(t *testing.T) {
	pad := func(f valtree.ErrorFactory, value any, typecast bool, ctx valtree.Context) (any, valtree.ErrorList) {
		return "[" + value.(string) + "]", nil
	}
	s := schema.AnyOf(schema.Int(), schema.Str().Rules(pad))

	out, errs := validate(t, s, "x", false)
	require.Empty(t, errs)
	assert.Equal(t, "[x]", out)
}

func TestAnyOf_CollectsPerVariantErrors(t *testing.T) {
	s := schema.AnyOf(schema.Int(), schema.Str())

	_, errs := validate(t, s, true, false)
	require.Len(t, errs, 1)
	assert.Equal(t, valtree.CodeNoVariantFound, errs[0].Code)

	variantErrs, ok := errs[0].Args["errors"].(map[int]valtree.ErrorList)
	require.True(t, ok)
	require.Len(t, variantErrs, 2)
	assert.Equal(t, valtree.CodeUnexpectedType, variantErrs[0][0].Code)
	assert.Equal(t, valtree.CodeUnexpectedType, variantErrs[1][0].Code)
}

func TestAnyOf_NilHandledByVariants(t *testing.T) {
	// No nil shortcut of its own: a nil-accepting variant must match it.
	_, errs := validate(t, schema.AnyOf(schema.Str()), nil, false)
	require.Len(t, errs, 1)
	assert.Equal(t, valtree.CodeNoVariantFound, errs[0].Code)
	variantErrs := errs[0].Args["errors"].(map[int]valtree.ErrorList)
	assert.Equal(t, valtree.CodeCannotBeNone, variantErrs[0][0].Code)

	out, errs := validate(t, schema.AnyOf(schema.Str().AllowNone()), nil, false)
	require.Empty(t, errs)
	assert.Nil(t, out)
}

func TestAnyOf_NoTypecastOfItsOwn(t *testing.T) {
	// Typecast does not reach the variants, so "42" only matches Str.
	s := schema.AnyOf(schema.Int(), schema.Str())

	out, errs := validate(t, s, "42", true)
	require.Empty(t, errs)
	assert.Equal(t, "42", out)
}

func TestAnyOf_RulesRunAfterMatch(t *testing.T) {
	rule := func(f valtree.ErrorFactory, value any, typecast bool, ctx valtree.Context) (any, valtree.ErrorList) {
		if value == "88mph" {
			return value, nil
		}
		return value, valtree.ErrorList{f.NewError("too_slow", nil, nil)}
	}
	s := schema.AnyOf(schema.Str()).Rules(rule)

	_, errs := validate(t, s, "60mph", false)
	assertCodes(t, errs, "too_slow")

	out, errs := validate(t, s, "88mph", false)
	require.Empty(t, errs)
	assert.Equal(t, "88mph", out)
}

func TestAnyOf_RulesRunOnExhaustionToo(t *testing.T) {
	called := false
	rule := func(f valtree.ErrorFactory, value any, typecast bool, ctx valtree.Context) (any, valtree.ErrorList) {
		called = true
		return value, nil
	}
	s := schema.AnyOf(schema.Int()).Rules(rule)

	_, errs := validate(t, s, "nope", false)
	assertCodes(t, errs, valtree.CodeNoVariantFound)
	assert.True(t, called)
}
