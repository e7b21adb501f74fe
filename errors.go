package valtree

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/reoring/valtree/i18n"
)

// Error codes (exported consts for IDE completion and type safety by convention)
const (
	// Absence
	CodeCannotBeNone = "cannot_be_none"
	CodeMustBeNone   = "must_be_none"
	// Type
	CodeUnexpectedType = "unexpected_type"
	CodeNotAllowed     = "not_allowed"
	// Numeric comparisons (the code names the violated relation as seen from
	// the value, so a less_than bound produces greater_or_equal_to)
	CodeLessThan         = "less_than"
	CodeLessOrEqualTo    = "less_or_equal_to"
	CodeGreaterThan      = "greater_than"
	CodeGreaterOrEqualTo = "greater_or_equal_to"
	CodeInvalidIntFormat = "invalid_integer_format"
	CodeInvalidNumFormat = "invalid_numeric_format"
	// Date/DateTime comparisons
	CodeEarlierThan           = "earlier_than"
	CodeEarlierOrEqualTo      = "earlier_or_equal_to"
	CodeLaterThan             = "later_than"
	CodeLaterOrEqualTo        = "later_or_equal_to"
	CodeInvalidDateFormat     = "invalid_date_format"
	CodeInvalidDateTimeFormat = "invalid_datetime_format"
	// String
	CodeCannotBeBlank       = "cannot_be_blank"
	CodeInvalidStringFormat = "invalid_string_format"
	CodeInvalidStringLength = "invalid_string_length"
	CodeStringTooShort      = "string_too_short"
	CodeStringTooLong       = "string_too_long"
	CodeInvalidRegex        = "invalid_regex"
	// Dict
	CodeKeyErrors   = "key_errors"
	CodeValueErrors = "value_errors"
	CodeRequiredKey = "required_key"
	CodeUnknownKey  = "unknown_key"
	// List
	CodeTooShort      = "too_short"
	CodeTooLong       = "too_long"
	CodeInvalidLength = "invalid_length"
	// AnyOf
	CodeNoVariantFound = "no_variant_found"
	// Func
	CodeNotCallable = "not_callable"
)

// Args is the argument map of an Error, used to fill message placeholders.
type Args = map[string]any

// Nested maps a field name or list index (rendered with strconv.Itoa) to the
// child errors collected under it.
type Nested = map[string]ErrorList

// Error describes one validation failure: a code, a flat argument map and a
// map of nested error lists keyed by field name or index. Message text is
// resolved lazily from the code and is not part of equality.
type Error struct {
	Code   string
	Args   Args
	Nested Nested

	messages MessageCollection
}

// NewError builds an Error bound to the given message collection. A zero
// collection falls back to DefaultMessages.
func NewError(code string, args Args, nested Nested, messages MessageCollection) *Error {
	return &Error{Code: code, Args: args, Nested: nested, messages: messages}
}

// MergeNested folds an incoming nested-error map into the receiver: for each
// key the incoming list is appended to the existing one, or created. This is
// the only mutation an Error supports after construction.
func (e *Error) MergeNested(incoming Nested) {
	if len(incoming) == 0 {
		return
	}
	if e.Nested == nil {
		e.Nested = Nested{}
	}
	for key, list := range incoming {
		e.Nested[key] = append(e.Nested[key], list...)
	}
}

// Message resolves the display string for this error: the message looked up
// by code in the error's collection, rendered for the given format with the
// error's args. A nil Translations uses the process default.
func (e *Error) Message(format string, tr i18n.Translations) string {
	return e.messages.Get(e.Code).Render(format, e.Args, tr)
}

// Equal reports whether two errors carry the same code, args and nested
// errors. Message collections are deliberately ignored.
func (e *Error) Equal(other *Error) bool {
	if e == nil || other == nil {
		return e == other
	}
	if e.Code != other.Code {
		return false
	}
	if !argsEqual(e.Args, other.Args) {
		return false
	}
	return nestedEqual(e.Nested, other.Nested)
}

func (e *Error) String() string { return e.Code }

// ErrorList is the failure result of one schema level. It implements error so
// Process can surface it directly (recover it with AsErrorList).
type ErrorList []*Error

// Error summarizes the first few error codes.
func (el ErrorList) Error() string {
	if len(el) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	lim := len(el)
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(el[i].Code)
	}
	if len(el) > lim {
		fmt.Fprintf(b, "; ... (total %d)", len(el))
	}
	return b.String()
}

// Equal compares two error lists element-wise.
func (el ErrorList) Equal(other ErrorList) bool {
	if len(el) != len(other) {
		return false
	}
	for i := range el {
		if !el[i].Equal(other[i]) {
			return false
		}
	}
	return true
}

// AsErrorList extracts an ErrorList from an error using errors.As internally.
func AsErrorList(err error) (ErrorList, bool) {
	if err == nil {
		return nil, false
	}
	var el ErrorList
	if errors.As(err, &el) {
		return el, true
	}
	return nil, false
}

// MergeStructural folds rule-produced errors into dst. An incoming error
// whose code is one of the structural codes merges its nested map into an
// existing sibling of the same code instead of stacking a duplicate wrapper;
// everything else is appended as-is.
func MergeStructural(dst, incoming ErrorList, structuralCodes ...string) ErrorList {
	for _, in := range incoming {
		if !containsCode(structuralCodes, in.Code) {
			dst = append(dst, in)
			continue
		}
		merged := false
		for _, existing := range dst {
			if existing.Code == in.Code {
				existing.MergeNested(in.Nested)
				merged = true
				break
			}
		}
		if !merged {
			dst = append(dst, in)
		}
	}
	return dst
}

func containsCode(codes []string, code string) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}

func argsEqual(a, b Args) bool {
	if len(a) != len(b) {
		return false
	}
	for key, av := range a {
		bv, ok := b[key]
		if !ok || !argValueEqual(av, bv) {
			return false
		}
	}
	return true
}

func argValueEqual(a, b any) bool {
	switch av := a.(type) {
	case *Error:
		bv, ok := b.(*Error)
		return ok && av.Equal(bv)
	case ErrorList:
		bv, ok := b.(ErrorList)
		return ok && av.Equal(bv)
	case Message:
		bv, ok := b.(Message)
		return ok && av.Equal(bv)
	case map[int]ErrorList:
		bv, ok := b.(map[int]ErrorList)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, al := range av {
			bl, ok := bv[k]
			if !ok || !al.Equal(bl) {
				return false
			}
		}
		return true
	default:
		return reflect.DeepEqual(a, b)
	}
}

func nestedEqual(a, b Nested) bool {
	if len(a) != len(b) {
		return false
	}
	for key, al := range a {
		bl, ok := b[key]
		if !ok || !al.Equal(bl) {
			return false
		}
	}
	return true
}

// sortedNestedKeys returns nested-error keys in a stable order for rendering.
func sortedNestedKeys(n Nested) []string {
	keys := make([]string, 0, len(n))
	for k := range n {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
