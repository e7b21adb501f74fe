package declarative_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	valtree "github.com/reoring/valtree"
	"github.com/reoring/valtree/declarative"
	"github.com/reoring/valtree/i18n"
	"github.com/reoring/valtree/schema"
)

func build(t *testing.T, declaration map[string]any) valtree.Schema {
	t.Helper()
	s, err := declarative.Build(declaration)
	require.NoError(t, err)
	return s
}

func check(t *testing.T, s valtree.Schema, value any, typecast bool) (any, valtree.ErrorList) {
	t.Helper()
	out, err := valtree.Process(s, value, typecast, nil)
	if err == nil {
		return out, nil
	}
	errs, ok := valtree.AsErrorList(err)
	require.True(t, ok)
	return out, errs
}

func TestBuild_IntWithBounds(t *testing.T) {
	s := build(t, map[string]any{
		"type":                "int",
		"greater_or_equal_to": 0,
		"less_or_equal_to":    100,
	})

	out, errs := check(t, s, int64(50), false)
	require.Empty(t, errs)
	assert.Equal(t, int64(50), out)

	_, errs = check(t, s, int64(-1), false)
	require.Len(t, errs, 1)
	assert.Equal(t, valtree.CodeLessThan, errs[0].Code)

	_, errs = check(t, s, int64(101), false)
	require.Len(t, errs, 1)
	assert.Equal(t, valtree.CodeGreaterThan, errs[0].Code)
}

func TestBuild_StrOptions(t *testing.T) {
	s := build(t, map[string]any{
		"type":       "str",
		"allow_none": true,
		"max_length": 5,
		"pattern":    "^[a-z]+$",
	})

	out, errs := check(t, s, nil, false)
	require.Empty(t, errs)
	assert.Nil(t, out)

	_, errs = check(t, s, "toolongandloud", false)
	require.Len(t, errs, 1)
	assert.Equal(t, valtree.CodeStringTooLong, errs[0].Code)

	_, errs = check(t, s, "UPPER", false)
	require.Len(t, errs, 1)
	assert.Equal(t, valtree.CodeInvalidStringFormat, errs[0].Code)
}

func TestBuild_DateBoundsAreTypecast(t *testing.T) {
	s := build(t, map[string]any{
		"type":         "date",
		"earlier_than": "2015-10-21",
	})

	past, _ := time.Parse(schema.DateLayout, "1985-10-26")
	_, errs := check(t, s, past, false)
	assert.Empty(t, errs)

	bound, _ := time.Parse(schema.DateLayout, "2015-10-21")
	_, errs = check(t, s, bound, false)
	require.Len(t, errs, 1)
	assert.Equal(t, valtree.CodeLaterOrEqualTo, errs[0].Code)
	assert.Equal(t, bound, errs[0].Args["value"])
}

func TestBuild_DictWithNestedSchemas(t *testing.T) {
	s := build(t, map[string]any{
		"type": "dict",
		"keys": []any{
			map[string]any{"name": "name", "schema": map[string]any{"type": "str"}},
			map[string]any{"name": "age", "schema": map[string]any{"type": "int", "greater_or_equal_to": 0}, "required": false},
			map[string]any{"name": "speed", "schema": map[string]any{"type": "int"}, "default": int64(88)},
		},
	})

	out, errs := check(t, s, map[string]any{"name": "Marty"}, false)
	require.Empty(t, errs)
	assert.Equal(t, map[string]any{"name": "Marty", "speed": int64(88)}, out)

	_, errs = check(t, s, map[string]any{"name": "Marty", "age": int64(-1)}, false)
	require.Len(t, errs, 1)
	assert.Equal(t, valtree.CodeValueErrors, errs[0].Code)
	assert.Equal(t, valtree.CodeLessThan, errs[0].Nested["age"][0].Code)
}

func TestBuild_DictKeyPredicate(t *testing.T) {
	s := build(t, map[string]any{
		"type": "dict",
		"keys": []any{
			map[string]any{"name": "name", "schema": map[string]any{"type": "str"}},
			map[string]any{
				"name":   "birthday",
				"schema": map[string]any{"type": "date"},
				"predicate": func(prior map[string]any) bool {
					return prior["name"] == "Marty"
				},
			},
		},
	})

	_, errs := check(t, s, map[string]any{"name": "Marty"}, false)
	require.Len(t, errs, 1)
	assert.Equal(t, valtree.CodeKeyErrors, errs[0].Code)
	assert.Contains(t, errs[0].Nested, "birthday")

	_, errs = check(t, s, map[string]any{"name": "Doc"}, false)
	assert.Empty(t, errs)
}

func TestBuild_DictDynamicSchemas(t *testing.T) {
	s := build(t, map[string]any{
		"type":         "dict",
		"key_schema":   map[string]any{"type": "str", "max_length": 3},
		"value_schema": map[string]any{"type": "int"},
	})

	out, errs := check(t, s, map[string]any{"a": "1"}, true)
	require.Empty(t, errs)
	assert.Equal(t, map[string]any{"a": int64(1)}, out)
}

func TestBuild_ListWithItem(t *testing.T) {
	s := build(t, map[string]any{
		"type":       "list",
		"item":       map[string]any{"type": "int"},
		"min_length": 1,
	})

	out, errs := check(t, s, []any{int64(1), int64(2)}, false)
	require.Empty(t, errs)
	assert.Equal(t, []any{int64(1), int64(2)}, out)

	_, errs = check(t, s, []any{}, false)
	require.Len(t, errs, 1)
	assert.Equal(t, valtree.CodeTooShort, errs[0].Code)
}

func TestBuild_AnyOf(t *testing.T) {
	s := build(t, map[string]any{
		"type": "any_of",
		"schemas": []any{
			map[string]any{"type": "int"},
			map[string]any{"type": "str"},
		},
	})

	_, errs := check(t, s, int64(1), false)
	assert.Empty(t, errs)
	_, errs = check(t, s, "x", false)
	assert.Empty(t, errs)
	_, errs = check(t, s, true, false)
	require.Len(t, errs, 1)
	assert.Equal(t, valtree.CodeNoVariantFound, errs[0].Code)
}

func TestBuild_MessagesOption(t *testing.T) {
	s := build(t, map[string]any{
		"type": "int",
		"messages": map[string]any{
			"cannot_be_none": "value is required",
			"unexpected_type": map[string]any{
				"default": "wrong type",
				"json":    "wrong JSON type",
			},
		},
	})

	_, errs := check(t, s, nil, false)
	require.Len(t, errs, 1)
	assert.Equal(t, "value is required", errs[0].Message(valtree.FormatDefault, i18n.English))

	_, errs = check(t, s, "x", false)
	require.Len(t, errs, 1)
	assert.Equal(t, "wrong type", errs[0].Message(valtree.FormatDefault, i18n.English))
	assert.Equal(t, "wrong JSON type", errs[0].Message("json", i18n.English))
}

func TestBuild_RulesOption(t *testing.T) {
	even := func(f valtree.ErrorFactory, value any, typecast bool, ctx valtree.Context) (any, valtree.ErrorList) {
		if value.(int64)%2 != 0 {
			return value, valtree.ErrorList{f.NewError("must_be_even", nil, nil)}
		}
		return value, nil
	}
	s := build(t, map[string]any{
		"type":  "int",
		"rules": []any{even},
	})

	_, errs := check(t, s, int64(2), false)
	assert.Empty(t, errs)
	_, errs = check(t, s, int64(3), false)
	require.Len(t, errs, 1)
	assert.Equal(t, "must_be_even", errs[0].Code)
}

func TestBuild_UnknownType(t *testing.T) {
	_, err := declarative.Build(map[string]any{"type": "spaceship"})
	decl, ok := declarative.AsDeclarationError(err)
	require.True(t, ok)
	require.Len(t, decl.Errors, 1)
	assert.Equal(t, valtree.CodeValueErrors, decl.Errors[0].Code)
	assert.Equal(t, valtree.CodeNotAllowed, decl.Errors[0].Nested["type"][0].Code)
}

func TestBuild_OptionOfAnotherTypeIsUnknown(t *testing.T) {
	// min_length belongs to str and list declarations, not int.
	_, err := declarative.Build(map[string]any{"type": "int", "min_length": 3})
	decl, ok := declarative.AsDeclarationError(err)
	require.True(t, ok)
	require.Len(t, decl.Errors, 1)
	assert.Equal(t, valtree.CodeKeyErrors, decl.Errors[0].Code)
	assert.Equal(t, valtree.CodeUnknownKey, decl.Errors[0].Nested["min_length"][0].Code)
}

func TestBuild_InvalidOptionValue(t *testing.T) {
	_, err := declarative.Build(map[string]any{"type": "str", "min_length": -1})
	decl, ok := declarative.AsDeclarationError(err)
	require.True(t, ok)
	assert.Equal(t, valtree.CodeValueErrors, decl.Errors[0].Code)
}

func TestBuild_InvalidPatternWithoutValidationFails(t *testing.T) {
	// With validation skipped a bad pattern arrives as data; it must come
	// back as a build error, never a panic.
	b := declarative.NewBuilder(declarative.DefaultFabrics())
	assert.NotPanics(t, func() {
		_, err := b.Build(map[string]any{"type": "str", "pattern": "(unclosed"}, false, false)
		assert.Error(t, err)
	})
}

func TestBuild_NestedDeclarationErrorsSurface(t *testing.T) {
	_, err := declarative.Build(map[string]any{
		"type": "list",
		"item": map[string]any{"type": "int", "max_length": 3},
	})
	decl, ok := declarative.AsDeclarationError(err)
	require.True(t, ok)
	require.Len(t, decl.Errors, 1)
	assert.Equal(t, valtree.CodeValueErrors, decl.Errors[0].Code)
}

func TestValidate_Idempotent(t *testing.T) {
	b := declarative.NewBuilder(declarative.DefaultFabrics())
	declaration := map[string]any{
		"type": "dict",
		"keys": []any{
			map[string]any{
				"name":   "age",
				"schema": map[string]any{"type": "int", "greater_or_equal_to": 0, "less_or_equal_to": 130},
			},
		},
	}

	once, err := b.Validate(declaration, true)
	require.NoError(t, err)
	twice, err := b.Validate(once, true)
	require.NoError(t, err)
	assert.Equal(t, once, twice)

	s, err := b.Build(once, false, false)
	require.NoError(t, err)
	_, errs := check(t, s, map[string]any{"age": int64(200)}, false)
	require.Len(t, errs, 1)
	assert.Equal(t, valtree.CodeValueErrors, errs[0].Code)
}

func TestDefaultFabrics_ReturnsFreshRegistry(t *testing.T) {
	fabrics := declarative.DefaultFabrics()
	delete(fabrics, "int")
	b := declarative.NewBuilder(fabrics)

	_, err := b.Build(map[string]any{"type": "int"}, true, true)
	_, ok := declarative.AsDeclarationError(err)
	assert.True(t, ok)

	// The default registry is unaffected.
	_, err = declarative.Build(map[string]any{"type": "int"})
	assert.NoError(t, err)
}

func TestNewBuilder_CopiesRegistry(t *testing.T) {
	fabrics := declarative.DefaultFabrics()
	b := declarative.NewBuilder(fabrics)
	delete(fabrics, "str")

	_, err := b.Build(map[string]any{"type": "str"}, true, true)
	assert.NoError(t, err)
}
