package valtree

import (
	"fmt"
	"strings"

	"github.com/reoring/valtree/i18n"
)

// FormatDefault is the fallback rendering format. It uses native Go-facing
// type names ("dict", "str"); the "json" format maps them to JSON vocabulary
// ("object", "string").
const FormatDefault = "default"

// Message is an error message with per-format patterns. Patterns may contain
// {name} placeholders filled from an Error's args; placeholder values that
// are themselves Messages are rendered with the same format first.
type Message struct {
	formats map[string]string
}

// NewMessage returns a Message with the given default-format pattern.
func NewMessage(pattern string) Message {
	return Message{formats: map[string]string{FormatDefault: pattern}}
}

// WithFormat returns a copy of the message carrying an additional pattern for
// the named format.
func (m Message) WithFormat(format, pattern string) Message {
	formats := make(map[string]string, len(m.formats)+1)
	for k, v := range m.formats {
		formats[k] = v
	}
	formats[format] = pattern
	return Message{formats: formats}
}

// Render produces the display string for a format. Unknown formats fall back
// to the default pattern. The pattern is translated before placeholder
// substitution; a nil Translations uses the process default.
func (m Message) Render(format string, args Args, tr i18n.Translations) string {
	pattern, ok := m.formats[format]
	if !ok {
		pattern = m.formats[FormatDefault]
	}
	if tr == nil {
		tr = i18n.Default()
	}
	out := tr.Gettext(pattern)
	for name, value := range args {
		placeholder := "{" + name + "}"
		if !strings.Contains(out, placeholder) {
			continue
		}
		out = strings.ReplaceAll(out, placeholder, renderArg(value, format, tr))
	}
	return out
}

func renderArg(value any, format string, tr i18n.Translations) string {
	if msg, ok := value.(Message); ok {
		return msg.Render(format, nil, tr)
	}
	return fmt.Sprint(value)
}

// Equal compares the full per-format pattern maps.
func (m Message) Equal(other Message) bool {
	if len(m.formats) != len(other.formats) {
		return false
	}
	for k, v := range m.formats {
		if other.formats[k] != v {
			return false
		}
	}
	return true
}

// MessageCollection maps error codes to Messages with fallback to a parent
// collection. The zero value behaves like DefaultMessages.
type MessageCollection struct {
	messages map[string]Message
	parent   *MessageCollection
}

// NewMessageCollection builds a collection over DefaultMessages.
func NewMessageCollection(messages map[string]Message) MessageCollection {
	return MessageCollection{messages: messages, parent: &defaultMessages}
}

// NewRootMessageCollection builds a collection with no parent; unknown codes
// render as the code itself.
func NewRootMessageCollection(messages map[string]Message) MessageCollection {
	return MessageCollection{messages: messages}
}

// Get returns the message for a code, consulting parents; an unknown code
// yields a Message whose pattern is the code itself.
func (c MessageCollection) Get(code string) Message {
	if c.messages == nil && c.parent == nil {
		return defaultMessages.lookup(code)
	}
	return c.lookup(code)
}

func (c MessageCollection) lookup(code string) Message {
	if msg, ok := c.messages[code]; ok {
		return msg
	}
	if c.parent != nil {
		return c.parent.lookup(code)
	}
	return NewMessage(code)
}

// DefaultMessages returns the built-in messages for every engine error code.
func DefaultMessages() MessageCollection { return defaultMessages }

var defaultMessages = MessageCollection{messages: map[string]Message{
	// Common
	CodeCannotBeNone:   NewMessage("cannot be nil").WithFormat("json", "cannot be null"),
	CodeMustBeNone:     NewMessage("must be nil").WithFormat("json", "must be null"),
	CodeCannotBeBlank:  NewMessage("cannot be blank"),
	CodeUnexpectedType: NewMessage(`expected type is "{expected_type}"`),
	CodeNotAllowed:     NewMessage("value is not allowed"),
	// Date/DateTime
	CodeEarlierOrEqualTo:      NewMessage("must be later than {value}"),
	CodeEarlierThan:           NewMessage("must be later or equal to {value}"),
	CodeLaterOrEqualTo:        NewMessage("must be earlier than {value}"),
	CodeLaterThan:             NewMessage("must be earlier or equal to {value}"),
	CodeInvalidDateFormat:     NewMessage("invalid date format"),
	CodeInvalidDateTimeFormat: NewMessage("invalid date and time format"),
	// Numeric
	CodeGreaterOrEqualTo: NewMessage("must be less than {value}"),
	CodeGreaterThan:      NewMessage("must be less or equal to {value}"),
	CodeLessOrEqualTo:    NewMessage("must be greater than {value}"),
	CodeLessThan:         NewMessage("must be greater or equal to {value}"),
	CodeInvalidIntFormat: NewMessage("invalid integer format"),
	CodeInvalidNumFormat: NewMessage("invalid numeric format"),
	// String
	CodeInvalidStringFormat: NewMessage("invalid string format"),
	CodeInvalidStringLength: NewMessage("must be {value} characters long"),
	CodeStringTooLong:       NewMessage("must be shorter than {value} characters"),
	CodeStringTooShort:      NewMessage("must be longer than {value} characters"),
	CodeInvalidRegex:        NewMessage("must be valid regex"),
	// Dict
	CodeKeyErrors:   NewMessage("key errors"),
	CodeValueErrors: NewMessage("value errors"),
	CodeRequiredKey: NewMessage("key is required"),
	CodeUnknownKey:  NewMessage("unknown key"),
	// List
	CodeInvalidLength: NewMessage("must be {value} items long"),
	CodeTooLong:       NewMessage("must be shorter than {value} items"),
	CodeTooShort:      NewMessage("must be longer than {value} items"),
	// AnyOf
	CodeNoVariantFound: NewMessage("does not match any of the variants"),
	// Func
	CodeNotCallable: NewMessage("value is not callable"),
}}

var typeNames = map[string]Message{
	"dict":     NewMessage("dict").WithFormat("json", "object"),
	"list":     NewMessage("list").WithFormat("json", "array"),
	"str":      NewMessage("str").WithFormat("json", "string"),
	"date":     NewMessage("date").WithFormat("json", "string"),
	"datetime": NewMessage("datetime").WithFormat("json", "string"),
	"int":      NewMessage("int").WithFormat("json", "integer"),
	"float":    NewMessage("float").WithFormat("json", "number"),
	"bool":     NewMessage("bool").WithFormat("json", "boolean"),
	"func":     NewMessage("func"),
}

// TypeName maps an engine type name to a Message carrying its JSON-facing
// spelling, for use as the expected_type argument of unexpected_type errors.
func TypeName(name string) Message {
	if msg, ok := typeNames[name]; ok {
		return msg
	}
	return NewMessage(name)
}
