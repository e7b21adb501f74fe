package schema_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	valtree "github.com/reoring/valtree"
	"github.com/reoring/valtree/schema"
)

func day(value string) time.Time {
	t, err := time.Parse(schema.DateLayout, value)
	if err != nil {
		panic(err)
	}
	return t
}

func TestDate_TypecastDefaultLayout(t *testing.T) {
	out, errs := validate(t, schema.Date(), "1985-10-26", true)
	require.Empty(t, errs)
	assert.Equal(t, day("1985-10-26"), out)

	_, errs = validate(t, schema.Date(), "26.10.1985", true)
	assertCodes(t, errs, valtree.CodeInvalidDateFormat)
}

func TestDate_FormatOption(t *testing.T) {
	s := schema.Date().Format("02.01.2006")
	out, errs := validate(t, s, "26.10.1985", true)
	require.Empty(t, errs)
	assert.Equal(t, day("1985-10-26"), out)
}

func TestDate_ContextFormatWins(t *testing.T) {
	s := schema.Date().Format("02.01.2006")
	out, err := valtree.Process(s, "1985/10/26", true, valtree.Context{"date_format": "2006/01/02"})
	require.NoError(t, err)
	assert.Equal(t, day("1985-10-26"), out)
}

func TestDate_BoundCodesNameTheViolation(t *testing.T) {
	bound := day("1985-10-26")
	cases := []struct {
		schema *schema.DateSchema
		value  time.Time
		code   string
	}{
		{schema.Date().EarlierThan(bound), bound, valtree.CodeLaterOrEqualTo},
		{schema.Date().EarlierOrEqualTo(bound), day("1985-10-27"), valtree.CodeLaterThan},
		{schema.Date().LaterThan(bound), bound, valtree.CodeEarlierOrEqualTo},
		{schema.Date().LaterOrEqualTo(bound), day("1985-10-25"), valtree.CodeEarlierThan},
	}
	for _, tc := range cases {
		_, errs := validate(t, tc.schema, tc.value, false)
		require.Len(t, errs, 1)
		assert.Equal(t, tc.code, errs[0].Code)
		assert.Equal(t, bound, errs[0].Args["value"])
	}
}

func TestDate_BoundsAtTheEdgeAccept(t *testing.T) {
	bound := day("1985-10-26")
	_, errs := validate(t, schema.Date().EarlierOrEqualTo(bound), bound, false)
	assert.Empty(t, errs)
	_, errs = validate(t, schema.Date().LaterOrEqualTo(bound), bound, false)
	assert.Empty(t, errs)
}

func TestDate_Allowed(t *testing.T) {
	s := schema.Date().Allowed(day("1985-10-26"), day("2015-10-21"))
	_, errs := validate(t, s, day("2015-10-21"), false)
	assert.Empty(t, errs)
	_, errs = validate(t, s, day("1955-11-05"), false)
	assertCodes(t, errs, valtree.CodeNotAllowed)
}

func TestDate_RejectsNonTime(t *testing.T) {
	_, errs := validate(t, schema.Date(), 42, false)
	assertCodes(t, errs, valtree.CodeUnexpectedType)
}

func TestDateTime_TypecastRFC3339(t *testing.T) {
	out, errs := validate(t, schema.DateTime(), "1985-10-26T01:21:00Z", true)
	require.Empty(t, errs)
	assert.Equal(t, time.Date(1985, 10, 26, 1, 21, 0, 0, time.UTC), out)

	// Fractional seconds parse via RFC3339Nano.
	out, errs = validate(t, schema.DateTime(), "1985-10-26T01:21:00.5Z", true)
	require.Empty(t, errs)
	assert.Equal(t, time.Date(1985, 10, 26, 1, 21, 0, 500000000, time.UTC), out)

	_, errs = validate(t, schema.DateTime(), "1985-10-26 01:21", true)
	assertCodes(t, errs, valtree.CodeInvalidDateTimeFormat)
}

func TestDateTime_FormatOption(t *testing.T) {
	s := schema.DateTime().Format("2006-01-02 15:04")
	out, errs := validate(t, s, "1985-10-26 01:21", true)
	require.Empty(t, errs)
	assert.Equal(t, time.Date(1985, 10, 26, 1, 21, 0, 0, time.UTC), out)
}

func TestDateTime_Bounds(t *testing.T) {
	bound := time.Date(1985, 10, 26, 1, 21, 0, 0, time.UTC)
	_, errs := validate(t, schema.DateTime().LaterThan(bound), bound, false)
	assertCodes(t, errs, valtree.CodeEarlierOrEqualTo)

	_, errs = validate(t, schema.DateTime().LaterThan(bound), bound.Add(time.Second), false)
	assert.Empty(t, errs)
}

func TestDateTime_AllowedComparesInstants(t *testing.T) {
	utc := time.Date(1985, 10, 26, 1, 21, 0, 0, time.UTC)
	// Same instant in another zone is still allowed (time.Time.Equal).
	other := utc.In(time.FixedZone("PDT", -7*3600))

	_, errs := validate(t, schema.DateTime().Allowed(utc), other, false)
	assert.Empty(t, errs)
}
