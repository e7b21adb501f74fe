package valtree

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/reoring/valtree/i18n"
)

// ErrorFormatter serializes an error tree for presentation. Formatters are
// consumed by callers (and the CLI), never by the engine itself.
type ErrorFormatter interface {
	Format(errors ErrorList) (string, error)
}

// NewFormatter returns the named built-in formatter ("json" or "text").
func NewFormatter(name string, tr i18n.Translations) (ErrorFormatter, error) {
	switch name {
	case "json":
		return NewJSONFormatter(tr), nil
	case "text":
		return NewTextFormatter(tr), nil
	default:
		return nil, fmt.Errorf("valtree: unknown error formatter %q", name)
	}
}

// JSONFormatter renders errors as JSON objects {code, message, args?,
// nested_errors?}, with messages resolved in the "json" format.
type JSONFormatter struct {
	translations i18n.Translations
}

// NewJSONFormatter builds a JSONFormatter; nil Translations uses the process
// default.
func NewJSONFormatter(tr i18n.Translations) *JSONFormatter {
	return &JSONFormatter{translations: tr}
}

// Represent produces the JSON-compatible representation of the error list.
// It fails on argument values with no defined representation.
func (f *JSONFormatter) Represent(errors ErrorList) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(errors))
	for _, e := range errors {
		repr, err := f.representError(e)
		if err != nil {
			return nil, err
		}
		out = append(out, repr)
	}
	return out, nil
}

// Format marshals the representation produced by Represent.
func (f *JSONFormatter) Format(errors ErrorList) (string, error) {
	repr, err := f.Represent(errors)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(repr)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (f *JSONFormatter) representError(e *Error) (map[string]any, error) {
	repr := map[string]any{
		"code":    e.Code,
		"message": e.Message("json", f.translations),
	}
	if len(e.Args) > 0 {
		args := make(map[string]any, len(e.Args))
		for name, value := range e.Args {
			rendered, err := f.representArg(value)
			if err != nil {
				return nil, err
			}
			args[name] = rendered
		}
		repr["args"] = args
	}
	if len(e.Nested) > 0 {
		nested, err := f.representNested(e.Nested)
		if err != nil {
			return nil, err
		}
		repr["nested_errors"] = nested
	}
	return repr, nil
}

func (f *JSONFormatter) representNested(nested Nested) (map[string]any, error) {
	out := make(map[string]any, len(nested))
	for key, list := range nested {
		repr, err := f.Represent(list)
		if err != nil {
			return nil, err
		}
		out[key] = repr
	}
	return out, nil
}

func (f *JSONFormatter) representArg(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, json.Number:
		return v, nil
	case time.Time:
		return v.Format(time.RFC3339), nil
	case Message:
		return v.Render("json", nil, f.translations), nil
	case *Error:
		return f.representError(v)
	case ErrorList:
		return f.Represent(v)
	case map[int]ErrorList:
		out := make(map[string]any, len(v))
		for index, list := range v {
			repr, err := f.Represent(list)
			if err != nil {
				return nil, err
			}
			out[strconv.Itoa(index)] = repr
		}
		return out, nil
	case []any:
		out := make([]any, 0, len(v))
		for _, item := range v {
			repr, err := f.representArg(item)
			if err != nil {
				return nil, err
			}
			out = append(out, repr)
		}
		return out, nil
	case []time.Time:
		out := make([]any, 0, len(v))
		for _, item := range v {
			out = append(out, item.Format(time.RFC3339))
		}
		return out, nil
	case []string:
		return v, nil
	case []int64:
		return v, nil
	case []float64:
		return v, nil
	default:
		return nil, fmt.Errorf("valtree: cannot represent error argument of type %T", value)
	}
}

// TextFormatter renders errors as indented plain text, one error per line,
// with nested errors grouped under their key.
type TextFormatter struct {
	translations i18n.Translations
}

// NewTextFormatter builds a TextFormatter; nil Translations uses the process
// default.
func NewTextFormatter(tr i18n.Translations) *TextFormatter {
	return &TextFormatter{translations: tr}
}

func (f *TextFormatter) Format(errors ErrorList) (string, error) {
	b := &strings.Builder{}
	f.write(b, errors, 0)
	return strings.TrimRight(b.String(), "\n"), nil
}

func (f *TextFormatter) write(b *strings.Builder, errors ErrorList, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, e := range errors {
		fmt.Fprintf(b, "%s%s\n", indent, e.Message(FormatDefault, f.translations))
		for _, key := range sortedNestedKeys(e.Nested) {
			fmt.Fprintf(b, "%s  %s:\n", indent, key)
			f.write(b, e.Nested[key], depth+2)
		}
	}
}
