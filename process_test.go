package valtree_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	valtree "github.com/reoring/valtree"
	"github.com/reoring/valtree/schema"
)

func processErrors(t *testing.T, err error) valtree.ErrorList {
	t.Helper()
	errs, ok := valtree.AsErrorList(err)
	require.True(t, ok, "expected an ErrorList, got %v", err)
	return errs
}

func TestProcess_NilRejectedByDefault(t *testing.T) {
	_, err := valtree.Process(schema.Str(), nil, false, nil)
	errs := processErrors(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, valtree.CodeCannotBeNone, errs[0].Code)
}

func TestProcess_NilShortCircuitsWhenAllowed(t *testing.T) {
	called := false
	rule := func(f valtree.ErrorFactory, value any, typecast bool, ctx valtree.Context) (any, valtree.ErrorList) {
		called = true
		return value, nil
	}

	out, err := valtree.Process(schema.Str().AllowNone().Rules(rule), nil, true, nil)
	require.NoError(t, err)
	assert.Nil(t, out)
	assert.False(t, called, "rules must not run for an accepted nil")
}

func TestProcess_TypecastFailureAbortsValidation(t *testing.T) {
	s := schema.Int().GreaterOrEqualTo(0)
	_, err := valtree.Process(s, "abc", true, nil)
	errs := processErrors(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, valtree.CodeInvalidIntFormat, errs[0].Code)
}

func TestProcess_NoTypecastWithoutFlag(t *testing.T) {
	_, err := valtree.Process(schema.Int(), "42", false, nil)
	errs := processErrors(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, valtree.CodeUnexpectedType, errs[0].Code)
}

func TestProcess_RulesTransformValue(t *testing.T) {
	trim := func(f valtree.ErrorFactory, value any, typecast bool, ctx valtree.Context) (any, valtree.ErrorList) {
		return strings.TrimSpace(value.(string)), nil
	}
	upper := func(f valtree.ErrorFactory, value any, typecast bool, ctx valtree.Context) (any, valtree.ErrorList) {
		return strings.ToUpper(value.(string)), nil
	}

	out, err := valtree.Process(schema.Str().Rules(trim, upper), "  marty  ", false, nil)
	require.NoError(t, err)
	assert.Equal(t, "MARTY", out)
}

func TestProcess_RuleErrorsUseFactory(t *testing.T) {
	rule := func(f valtree.ErrorFactory, value any, typecast bool, ctx valtree.Context) (any, valtree.ErrorList) {
		return value, valtree.ErrorList{f.NewError("not_a_time_traveler", nil, nil)}
	}
	_, err := valtree.Process(schema.Str().Rules(rule), "Biff", false, nil)
	errs := processErrors(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, "not_a_time_traveler", errs[0].Code)
}

func TestProcess_ProcessorBypassesNilHandling(t *testing.T) {
	// AnyOf replaces the protocol: nil is handed to the variants instead of
	// being rejected up front.
	s := schema.AnyOf(schema.Str().AllowNone())
	out, err := valtree.Process(s, nil, false, nil)
	require.NoError(t, err)
	assert.Nil(t, out)
}
