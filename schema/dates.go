package schema

import (
	"time"

	valtree "github.com/reoring/valtree"
)

// DateLayout is the default layout for Date values (ISO 8601 calendar date).
const DateLayout = "2006-01-02"

// dateBounds holds the comparison options shared by Date and DateTime.
type dateBounds struct {
	earlierThan      *time.Time
	earlierOrEqualTo *time.Time
	laterThan        *time.Time
	laterOrEqualTo   *time.Time
	format           string
	allowed          []time.Time
	hasAllowed       bool
}

// validateBounds runs the comparison and allow-list checks for an
// already-type-checked time value. All violated bounds contribute an error.
func (b *dateBounds) validateBounds(f valtree.ErrorFactory, t time.Time) valtree.ErrorList {
	var errs valtree.ErrorList
	if b.hasAllowed && !containsTime(b.allowed, t) {
		errs = append(errs, f.NewError(valtree.CodeNotAllowed, valtree.Args{"allowed": b.allowed}, nil))
	}
	if b.earlierThan != nil && !t.Before(*b.earlierThan) {
		errs = append(errs, f.NewError(valtree.CodeLaterOrEqualTo, valtree.Args{"value": *b.earlierThan}, nil))
	}
	if b.earlierOrEqualTo != nil && t.After(*b.earlierOrEqualTo) {
		errs = append(errs, f.NewError(valtree.CodeLaterThan, valtree.Args{"value": *b.earlierOrEqualTo}, nil))
	}
	if b.laterThan != nil && !t.After(*b.laterThan) {
		errs = append(errs, f.NewError(valtree.CodeEarlierOrEqualTo, valtree.Args{"value": *b.laterThan}, nil))
	}
	if b.laterOrEqualTo != nil && t.Before(*b.laterOrEqualTo) {
		errs = append(errs, f.NewError(valtree.CodeEarlierThan, valtree.Args{"value": *b.laterOrEqualTo}, nil))
	}
	return errs
}

// castLayout resolves the layout for a typecast: a context date_format
// always wins over the schema's format option.
func (b *dateBounds) castLayout(ctx valtree.Context) string {
	if ctx != nil {
		if layout, ok := ctx["date_format"].(string); ok && layout != "" {
			return layout
		}
	}
	return b.format
}

// DateSchema accepts time.Time values representing calendar dates. When type
// casting is enabled, strings are parsed with the format option as a Go
// layout (default ISO 8601, "2006-01-02").
type DateSchema struct {
	valtree.Base
	dateBounds
}

var _ valtree.Schema = (*DateSchema)(nil)
var _ valtree.Typecaster = (*DateSchema)(nil)

// Date returns a schema accepting calendar-date values.
func Date() *DateSchema { return &DateSchema{} }

// AllowNone permits nil input.
func (s *DateSchema) AllowNone() *DateSchema { s.SetAllowNone(true); return s }

// Messages overrides error messages.
func (s *DateSchema) Messages(mc valtree.MessageCollection) *DateSchema { s.SetMessages(mc); return s }

// Rules appends custom validation rules.
func (s *DateSchema) Rules(rules ...valtree.Rule) *DateSchema { s.AppendRules(rules...); return s }

// EarlierThan requires value < t.
func (s *DateSchema) EarlierThan(t time.Time) *DateSchema { s.earlierThan = &t; return s }

// EarlierOrEqualTo requires value <= t.
func (s *DateSchema) EarlierOrEqualTo(t time.Time) *DateSchema { s.earlierOrEqualTo = &t; return s }

// LaterThan requires value > t.
func (s *DateSchema) LaterThan(t time.Time) *DateSchema { s.laterThan = &t; return s }

// LaterOrEqualTo requires value >= t.
func (s *DateSchema) LaterOrEqualTo(t time.Time) *DateSchema { s.laterOrEqualTo = &t; return s }

// Format sets the Go layout used for type casting.
func (s *DateSchema) Format(layout string) *DateSchema { s.format = layout; return s }

// Allowed restricts input to the given values.
func (s *DateSchema) Allowed(values ...time.Time) *DateSchema {
	s.allowed = values
	s.hasAllowed = true
	return s
}

func (s *DateSchema) Validate(value any, typecast bool, ctx valtree.Context) (any, valtree.ErrorList) {
	t, ok := value.(time.Time)
	if !ok {
		return nil, valtree.ErrorList{s.unexpectedType()}
	}
	errs := s.validateBounds(s, t)
	out, ruleErrs := s.ApplyRules(t, typecast, ctx)
	return out, append(errs, ruleErrs...)
}

func (s *DateSchema) Typecast(input any, ctx valtree.Context) (any, valtree.ErrorList) {
	if t, ok := input.(time.Time); ok {
		return t, nil
	}
	str, ok := input.(string)
	if !ok {
		return nil, valtree.ErrorList{s.unexpectedType()}
	}
	layout := s.castLayout(ctx)
	if layout == "" {
		layout = DateLayout
	}
	t, err := time.Parse(layout, str)
	if err != nil {
		return nil, valtree.ErrorList{s.NewError(valtree.CodeInvalidDateFormat, nil, nil)}
	}
	return t, nil
}

func (s *DateSchema) unexpectedType() *valtree.Error {
	return s.NewError(valtree.CodeUnexpectedType, valtree.Args{"expected_type": valtree.TypeName("date")}, nil)
}

// DateTimeSchema accepts time.Time values with a time-of-day component. When
// type casting is enabled, strings are parsed as RFC 3339 by default
// (RFC3339Nano first, then RFC3339) or with the format option as a Go
// layout.
type DateTimeSchema struct {
	valtree.Base
	dateBounds
}

var _ valtree.Schema = (*DateTimeSchema)(nil)
var _ valtree.Typecaster = (*DateTimeSchema)(nil)

// DateTime returns a schema accepting timestamp values.
func DateTime() *DateTimeSchema { return &DateTimeSchema{} }

// AllowNone permits nil input.
func (s *DateTimeSchema) AllowNone() *DateTimeSchema { s.SetAllowNone(true); return s }

// Messages overrides error messages.
func (s *DateTimeSchema) Messages(mc valtree.MessageCollection) *DateTimeSchema {
	s.SetMessages(mc)
	return s
}

// Rules appends custom validation rules.
func (s *DateTimeSchema) Rules(rules ...valtree.Rule) *DateTimeSchema {
	s.AppendRules(rules...)
	return s
}

// EarlierThan requires value < t.
func (s *DateTimeSchema) EarlierThan(t time.Time) *DateTimeSchema { s.earlierThan = &t; return s }

// EarlierOrEqualTo requires value <= t.
func (s *DateTimeSchema) EarlierOrEqualTo(t time.Time) *DateTimeSchema {
	s.earlierOrEqualTo = &t
	return s
}

// LaterThan requires value > t.
func (s *DateTimeSchema) LaterThan(t time.Time) *DateTimeSchema { s.laterThan = &t; return s }

// LaterOrEqualTo requires value >= t.
func (s *DateTimeSchema) LaterOrEqualTo(t time.Time) *DateTimeSchema { s.laterOrEqualTo = &t; return s }

// Format sets the Go layout used for type casting.
func (s *DateTimeSchema) Format(layout string) *DateTimeSchema { s.format = layout; return s }

// Allowed restricts input to the given values.
func (s *DateTimeSchema) Allowed(values ...time.Time) *DateTimeSchema {
	s.allowed = values
	s.hasAllowed = true
	return s
}

func (s *DateTimeSchema) Validate(value any, typecast bool, ctx valtree.Context) (any, valtree.ErrorList) {
	t, ok := value.(time.Time)
	if !ok {
		return nil, valtree.ErrorList{s.unexpectedType()}
	}
	errs := s.validateBounds(s, t)
	out, ruleErrs := s.ApplyRules(t, typecast, ctx)
	return out, append(errs, ruleErrs...)
}

func (s *DateTimeSchema) Typecast(input any, ctx valtree.Context) (any, valtree.ErrorList) {
	if t, ok := input.(time.Time); ok {
		return t, nil
	}
	str, ok := input.(string)
	if !ok {
		return nil, valtree.ErrorList{s.unexpectedType()}
	}
	var t time.Time
	var err error
	if layout := s.castLayout(ctx); layout != "" {
		t, err = time.Parse(layout, str)
	} else {
		t, err = parseRFC3339(str)
	}
	if err != nil {
		return nil, valtree.ErrorList{s.NewError(valtree.CodeInvalidDateTimeFormat, nil, nil)}
	}
	return t, nil
}

func (s *DateTimeSchema) unexpectedType() *valtree.Error {
	return s.NewError(valtree.CodeUnexpectedType, valtree.Args{"expected_type": valtree.TypeName("datetime")}, nil)
}

// parseRFC3339 accepts RFC3339Nano (trailing zeros optional) with a plain
// RFC3339 fallback.
func parseRFC3339(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}

func containsTime(values []time.Time, t time.Time) bool {
	for _, v := range values {
		if v.Equal(t) {
			return true
		}
	}
	return false
}
