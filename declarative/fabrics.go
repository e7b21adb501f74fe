package declarative

import (
	"fmt"
	"regexp"
	"time"

	valtree "github.com/reoring/valtree"
	"github.com/reoring/valtree/schema"
)

// Fabric creates schemas of one registered type. OptionKeys contributes the
// tag's option keys to the declaration schema (full is the declaration
// schema itself, for options holding nested declarations); Create receives
// the validated options with the type tag already stripped.
type Fabric interface {
	OptionKeys(tag string, full valtree.Schema) []*schema.Key
	Create(options map[string]any, b *Builder) (valtree.Schema, error)
}

// CreateFunc builds a schema from validated options.
type CreateFunc func(options map[string]any, b *Builder) (valtree.Schema, error)

// SimpleFabric serves schema types whose options never hold nested
// declarations: a fixed key list plus a create function.
type SimpleFabric struct {
	keys   []*schema.Key
	create CreateFunc
}

// NewSimpleFabric builds a SimpleFabric.
func NewSimpleFabric(keys []*schema.Key, create CreateFunc) *SimpleFabric {
	return &SimpleFabric{keys: keys, create: create}
}

func (f *SimpleFabric) OptionKeys(tag string, full valtree.Schema) []*schema.Key {
	return tagKeys(tag, f.keys)
}

func (f *SimpleFabric) Create(options map[string]any, b *Builder) (valtree.Schema, error) {
	return f.create(options, b)
}

// tagKeys predicates keys on the declaration carrying the given type tag, so
// every registered type can contribute its options to the one shared
// declaration schema.
func tagKeys(tag string, keys []*schema.Key) []*schema.Key {
	predicate := func(prior map[string]any) bool {
		return prior[TypeKey] == tag
	}
	out := make([]*schema.Key, 0, len(keys))
	for _, key := range keys {
		out = append(out, key.WithPredicate(predicate))
	}
	return out
}

// DefaultFabrics returns a fresh registry with the built-in schema types.
// Each call returns a new map, so callers can add or replace entries without
// affecting other builders.
func DefaultFabrics() map[string]Fabric {
	return map[string]Fabric{
		"any": NewSimpleFabric(
			[]*schema.Key{
				schema.K("allow_none", schema.Bool()),
				schema.K("messages", messagesSchema()),
				schema.K("rules", rulesSchema()),
				schema.K("allowed", schema.List().Item(schema.Any())),
			},
			func(options map[string]any, b *Builder) (valtree.Schema, error) {
				s := schema.Any()
				if err := applyCommonOptions(s, options); err != nil {
					return nil, err
				}
				if values, ok := sliceOption(options, "allowed"); ok {
					s.Allowed(values...)
				}
				return s, nil
			},
		),
		"none": NewSimpleFabric(
			[]*schema.Key{
				schema.K("messages", messagesSchema()),
				schema.K("rules", rulesSchema()),
			},
			func(options map[string]any, b *Builder) (valtree.Schema, error) {
				s := schema.None()
				if err := applyCommonOptions(s, options); err != nil {
					return nil, err
				}
				return s, nil
			},
		),
		"str": NewSimpleFabric(
			[]*schema.Key{
				schema.K("allow_none", schema.Bool()),
				schema.K("messages", messagesSchema()),
				schema.K("rules", rulesSchema()),
				schema.K("allow_blank", schema.Bool()),
				schema.K("min_length", schema.Int().GreaterOrEqualTo(0)),
				schema.K("max_length", schema.Int().GreaterOrEqualTo(0)),
				schema.K("length", schema.Int().GreaterOrEqualTo(0)),
				schema.K("pattern", schema.Str().IsRegex()),
				schema.K("is_regex", schema.Bool()),
				schema.K("allowed", schema.List().Item(schema.Str())),
			},
			func(options map[string]any, b *Builder) (valtree.Schema, error) {
				s := schema.Str()
				if err := applyCommonOptions(s, options); err != nil {
					return nil, err
				}
				if boolOption(options, "allow_blank") {
					s.AllowBlank()
				}
				if n, ok := intOption(options, "min_length"); ok {
					s.MinLength(n)
				}
				if n, ok := intOption(options, "max_length"); ok {
					s.MaxLength(n)
				}
				if n, ok := intOption(options, "length"); ok {
					s.Length(n)
				}
				if pattern, ok := options["pattern"].(string); ok {
					// Validation catches bad patterns via is_regex, but an
					// unvalidated build must fail as data, not panic.
					if _, err := regexp.Compile(pattern); err != nil {
						return nil, fmt.Errorf("declarative: invalid pattern option: %w", err)
					}
					s.Pattern(pattern)
				}
				if boolOption(options, "is_regex") {
					s.IsRegex()
				}
				if values, ok := sliceOption(options, "allowed"); ok {
					s.Allowed(stringSlice(values)...)
				}
				return s, nil
			},
		),
		"bool": NewSimpleFabric(
			[]*schema.Key{
				schema.K("allow_none", schema.Bool()),
				schema.K("messages", messagesSchema()),
				schema.K("rules", rulesSchema()),
				schema.K("only_false", schema.Bool()),
				schema.K("only_true", schema.Bool()),
				schema.K("cast_anything", schema.Bool()),
			},
			func(options map[string]any, b *Builder) (valtree.Schema, error) {
				s := schema.Bool()
				if err := applyCommonOptions(s, options); err != nil {
					return nil, err
				}
				if boolOption(options, "only_false") {
					s.OnlyFalse()
				}
				if boolOption(options, "only_true") {
					s.OnlyTrue()
				}
				if boolOption(options, "cast_anything") {
					s.CastAnything()
				}
				return s, nil
			},
		),
		"date": NewSimpleFabric(
			[]*schema.Key{
				schema.K("allow_none", schema.Bool()),
				schema.K("messages", messagesSchema()),
				schema.K("rules", rulesSchema()),
				schema.K("earlier_than", schema.Date()),
				schema.K("earlier_or_equal_to", schema.Date()),
				schema.K("later_than", schema.Date()),
				schema.K("later_or_equal_to", schema.Date()),
				schema.K("format", schema.Str()),
				schema.K("allowed", schema.List().Item(schema.Date())),
			},
			func(options map[string]any, b *Builder) (valtree.Schema, error) {
				s := schema.Date()
				if err := applyCommonOptions(s, options); err != nil {
					return nil, err
				}
				if t, ok := timeOption(options, "earlier_than"); ok {
					s.EarlierThan(t)
				}
				if t, ok := timeOption(options, "earlier_or_equal_to"); ok {
					s.EarlierOrEqualTo(t)
				}
				if t, ok := timeOption(options, "later_than"); ok {
					s.LaterThan(t)
				}
				if t, ok := timeOption(options, "later_or_equal_to"); ok {
					s.LaterOrEqualTo(t)
				}
				if layout, ok := options["format"].(string); ok {
					s.Format(layout)
				}
				if values, ok := sliceOption(options, "allowed"); ok {
					s.Allowed(timeSlice(values)...)
				}
				return s, nil
			},
		),
		"datetime": NewSimpleFabric(
			[]*schema.Key{
				schema.K("allow_none", schema.Bool()),
				schema.K("messages", messagesSchema()),
				schema.K("rules", rulesSchema()),
				schema.K("earlier_than", schema.DateTime()),
				schema.K("earlier_or_equal_to", schema.DateTime()),
				schema.K("later_than", schema.DateTime()),
				schema.K("later_or_equal_to", schema.DateTime()),
				schema.K("format", schema.Str()),
				schema.K("allowed", schema.List().Item(schema.DateTime())),
			},
			func(options map[string]any, b *Builder) (valtree.Schema, error) {
				s := schema.DateTime()
				if err := applyCommonOptions(s, options); err != nil {
					return nil, err
				}
				if t, ok := timeOption(options, "earlier_than"); ok {
					s.EarlierThan(t)
				}
				if t, ok := timeOption(options, "earlier_or_equal_to"); ok {
					s.EarlierOrEqualTo(t)
				}
				if t, ok := timeOption(options, "later_than"); ok {
					s.LaterThan(t)
				}
				if t, ok := timeOption(options, "later_or_equal_to"); ok {
					s.LaterOrEqualTo(t)
				}
				if layout, ok := options["format"].(string); ok {
					s.Format(layout)
				}
				if values, ok := sliceOption(options, "allowed"); ok {
					s.Allowed(timeSlice(values)...)
				}
				return s, nil
			},
		),
		"int": NewSimpleFabric(
			[]*schema.Key{
				schema.K("allow_none", schema.Bool()),
				schema.K("messages", messagesSchema()),
				schema.K("rules", rulesSchema()),
				schema.K("less_than", schema.Int()),
				schema.K("less_or_equal_to", schema.Int()),
				schema.K("greater_than", schema.Int()),
				schema.K("greater_or_equal_to", schema.Int()),
				schema.K("allowed", schema.List().Item(schema.Int())),
			},
			func(options map[string]any, b *Builder) (valtree.Schema, error) {
				s := schema.Int()
				if err := applyCommonOptions(s, options); err != nil {
					return nil, err
				}
				if n, ok := int64Option(options, "less_than"); ok {
					s.LessThan(n)
				}
				if n, ok := int64Option(options, "less_or_equal_to"); ok {
					s.LessOrEqualTo(n)
				}
				if n, ok := int64Option(options, "greater_than"); ok {
					s.GreaterThan(n)
				}
				if n, ok := int64Option(options, "greater_or_equal_to"); ok {
					s.GreaterOrEqualTo(n)
				}
				if values, ok := sliceOption(options, "allowed"); ok {
					s.Allowed(int64Slice(values)...)
				}
				return s, nil
			},
		),
		"float": NewSimpleFabric(
			[]*schema.Key{
				schema.K("allow_none", schema.Bool()),
				schema.K("messages", messagesSchema()),
				schema.K("rules", rulesSchema()),
				schema.K("less_than", schema.Float()),
				schema.K("less_or_equal_to", schema.Float()),
				schema.K("greater_than", schema.Float()),
				schema.K("greater_or_equal_to", schema.Float()),
				schema.K("allowed", schema.List().Item(schema.Float())),
			},
			func(options map[string]any, b *Builder) (valtree.Schema, error) {
				s := schema.Float()
				if err := applyCommonOptions(s, options); err != nil {
					return nil, err
				}
				if f, ok := floatOption(options, "less_than"); ok {
					s.LessThan(f)
				}
				if f, ok := floatOption(options, "less_or_equal_to"); ok {
					s.LessOrEqualTo(f)
				}
				if f, ok := floatOption(options, "greater_than"); ok {
					s.GreaterThan(f)
				}
				if f, ok := floatOption(options, "greater_or_equal_to"); ok {
					s.GreaterOrEqualTo(f)
				}
				if values, ok := sliceOption(options, "allowed"); ok {
					s.Allowed(floatSlice(values)...)
				}
				return s, nil
			},
		),
		"dict":   &dictFabric{},
		"list":   &listFabric{},
		"any_of": &anyOfFabric{},
	}
}

// dictFabric builds dict schemas. The "keys" option holds key declarations
// whose "schema" option is a nested schema declaration.
type dictFabric struct{}

func (f *dictFabric) OptionKeys(tag string, full valtree.Schema) []*schema.Key {
	return tagKeys(tag, []*schema.Key{
		schema.K("allow_none", schema.Bool()),
		schema.K("messages", messagesSchema()),
		schema.K("rules", rulesSchema()),
		schema.K("keys", schema.List().Item(
			schema.Dict().Keys(
				schema.K("name", schema.Str()).Required(),
				schema.K("schema", full),
				schema.K("required", schema.Bool().AllowNone()),
				schema.K("default", schema.Any().AllowNone()),
				schema.K("predicate", schema.Func().AllowNone()),
			).KeysRequiredByDefault(false),
		)),
		schema.K("key_schema", full),
		schema.K("value_schema", full),
		schema.K("keys_required_by_default", schema.Bool()),
	})
}

func (f *dictFabric) Create(options map[string]any, b *Builder) (valtree.Schema, error) {
	s := schema.Dict()
	if err := applyCommonOptions(s, options); err != nil {
		return nil, err
	}
	if declarations, ok := sliceOption(options, "keys"); ok {
		keys := make([]*schema.Key, 0, len(declarations))
		for _, raw := range declarations {
			decl, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("declarative: key declaration must be a map, got %T", raw)
			}
			key, err := buildKey(decl, b)
			if err != nil {
				return nil, err
			}
			keys = append(keys, key)
		}
		s.Keys(keys...)
	}
	if raw, ok := options["key_schema"]; ok {
		built, err := buildNested(raw, b)
		if err != nil {
			return nil, err
		}
		keySchema, ok := built.(*schema.StrSchema)
		if !ok {
			return nil, fmt.Errorf("declarative: key_schema must be a str schema, got %T", built)
		}
		s.KeySchema(keySchema)
	}
	if raw, ok := options["value_schema"]; ok {
		built, err := buildNested(raw, b)
		if err != nil {
			return nil, err
		}
		s.ValueSchema(built)
	}
	if raw, ok := options["keys_required_by_default"].(bool); ok {
		s.KeysRequiredByDefault(raw)
	}
	return s, nil
}

func buildKey(decl map[string]any, b *Builder) (*schema.Key, error) {
	name, _ := decl["name"].(string)

	var key *schema.Key
	if raw, ok := decl["schema"]; ok && raw != nil {
		built, err := buildNested(raw, b)
		if err != nil {
			return nil, err
		}
		key = schema.K(name, built)
	} else {
		key = schema.K(name)
	}

	_, hasDefault := decl["default"]
	if raw, ok := decl["required"]; ok && raw != nil {
		required, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("declarative: key %q required flag must be a bool, got %T", name, raw)
		}
		if required {
			if hasDefault {
				return nil, fmt.Errorf("declarative: key %q cannot be required and carry a default", name)
			}
			key.Required()
		} else {
			key.Optional()
		}
	}
	if hasDefault {
		key.Default(decl["default"])
	}
	if raw, ok := decl["predicate"]; ok && raw != nil {
		predicate, err := predicateOption(name, raw)
		if err != nil {
			return nil, err
		}
		key.Predicate(predicate)
	}
	return key, nil
}

// listFabric builds list schemas; the "item" option is a nested declaration.
type listFabric struct{}

func (f *listFabric) OptionKeys(tag string, full valtree.Schema) []*schema.Key {
	return tagKeys(tag, []*schema.Key{
		schema.K("allow_none", schema.Bool()),
		schema.K("messages", messagesSchema()),
		schema.K("rules", rulesSchema()),
		schema.K("item", full),
		schema.K("min_length", schema.Int().GreaterOrEqualTo(0)),
		schema.K("max_length", schema.Int().GreaterOrEqualTo(0)),
		schema.K("length", schema.Int().GreaterOrEqualTo(0)),
	})
}

func (f *listFabric) Create(options map[string]any, b *Builder) (valtree.Schema, error) {
	s := schema.List()
	if err := applyCommonOptions(s, options); err != nil {
		return nil, err
	}
	if raw, ok := options["item"]; ok {
		built, err := buildNested(raw, b)
		if err != nil {
			return nil, err
		}
		s.Item(built)
	}
	if n, ok := intOption(options, "min_length"); ok {
		s.MinLength(n)
	}
	if n, ok := intOption(options, "max_length"); ok {
		s.MaxLength(n)
	}
	if n, ok := intOption(options, "length"); ok {
		s.Length(n)
	}
	return s, nil
}

// anyOfFabric builds any_of schemas; the "schemas" option is a list of
// nested declarations.
type anyOfFabric struct{}

func (f *anyOfFabric) OptionKeys(tag string, full valtree.Schema) []*schema.Key {
	return tagKeys(tag, []*schema.Key{
		schema.K("schemas", schema.List().Item(full)),
		schema.K("messages", messagesSchema()),
		schema.K("rules", rulesSchema()),
	})
}

func (f *anyOfFabric) Create(options map[string]any, b *Builder) (valtree.Schema, error) {
	declarations, _ := sliceOption(options, "schemas")
	variants := make([]valtree.Schema, 0, len(declarations))
	for _, raw := range declarations {
		built, err := buildNested(raw, b)
		if err != nil {
			return nil, err
		}
		variants = append(variants, built)
	}
	s := schema.AnyOf(variants...)
	if err := applyCommonOptions(s, options); err != nil {
		return nil, err
	}
	return s, nil
}

// messagesSchema validates the "messages" option: error codes mapped either
// to a plain pattern or to a per-format pattern map with a required default.
func messagesSchema() *schema.DictSchema {
	return schema.Dict().
		KeySchema(schema.Str()).
		ValueSchema(schema.AnyOf(
			schema.Str(),
			schema.Dict().
				Keys(schema.K("default", schema.Str()).Required()).
				KeySchema(schema.Str()).
				ValueSchema(schema.Str()),
		))
}

// rulesSchema validates the "rules" option: a list of invokable values.
func rulesSchema() *schema.ListSchema {
	return schema.List().Item(schema.Func())
}

// baseOptions is the configuration surface shared by every schema via the
// embedded base.
type baseOptions interface {
	SetAllowNone(allow bool)
	SetMessages(mc valtree.MessageCollection)
	AppendRules(rules ...valtree.Rule)
}

func applyCommonOptions(s baseOptions, options map[string]any) error {
	if boolOption(options, "allow_none") {
		s.SetAllowNone(true)
	}
	if raw, ok := options["messages"]; ok {
		mc, err := messagesOption(raw)
		if err != nil {
			return err
		}
		s.SetMessages(mc)
	}
	if raw, ok := options["rules"]; ok {
		rules, err := rulesOption(raw)
		if err != nil {
			return err
		}
		s.AppendRules(rules...)
	}
	return nil
}

func messagesOption(raw any) (valtree.MessageCollection, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return valtree.MessageCollection{}, fmt.Errorf("declarative: messages option must be a map, got %T", raw)
	}
	messages := make(map[string]valtree.Message, len(m))
	for code, value := range m {
		switch pattern := value.(type) {
		case string:
			messages[code] = valtree.NewMessage(pattern)
		case map[string]any:
			def, ok := pattern[valtree.FormatDefault].(string)
			if !ok {
				return valtree.MessageCollection{}, fmt.Errorf("declarative: message %q needs a default pattern", code)
			}
			msg := valtree.NewMessage(def)
			for format, p := range pattern {
				if format == valtree.FormatDefault {
					continue
				}
				fp, ok := p.(string)
				if !ok {
					return valtree.MessageCollection{}, fmt.Errorf("declarative: message %q format %q must be a string, got %T", code, format, p)
				}
				msg = msg.WithFormat(format, fp)
			}
			messages[code] = msg
		default:
			return valtree.MessageCollection{}, fmt.Errorf("declarative: message %q must be a string or format map, got %T", code, value)
		}
	}
	return valtree.NewMessageCollection(messages), nil
}

func rulesOption(raw any) ([]valtree.Rule, error) {
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("declarative: rules option must be a list, got %T", raw)
	}
	rules := make([]valtree.Rule, 0, len(items))
	for i, item := range items {
		switch rule := item.(type) {
		case valtree.Rule:
			rules = append(rules, rule)
		case func(valtree.ErrorFactory, any, bool, valtree.Context) (any, valtree.ErrorList):
			rules = append(rules, rule)
		default:
			return nil, fmt.Errorf("declarative: rule %d is not a validation rule, got %T", i, item)
		}
	}
	return rules, nil
}

func predicateOption(keyName string, raw any) (schema.Predicate, error) {
	switch predicate := raw.(type) {
	case schema.Predicate:
		return predicate, nil
	case func(map[string]any) bool:
		return predicate, nil
	default:
		return nil, fmt.Errorf("declarative: key %q predicate must be func(map[string]any) bool, got %T", keyName, raw)
	}
}

func buildNested(raw any, b *Builder) (valtree.Schema, error) {
	decl, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("declarative: nested schema declaration must be a map, got %T", raw)
	}
	return b.Build(decl, false, false)
}

func boolOption(options map[string]any, name string) bool {
	v, _ := options[name].(bool)
	return v
}

func int64Option(options map[string]any, name string) (int64, bool) {
	v, ok := options[name].(int64)
	return v, ok
}

func intOption(options map[string]any, name string) (int, bool) {
	v, ok := options[name].(int64)
	return int(v), ok
}

func floatOption(options map[string]any, name string) (float64, bool) {
	v, ok := options[name].(float64)
	return v, ok
}

func timeOption(options map[string]any, name string) (time.Time, bool) {
	v, ok := options[name].(time.Time)
	return v, ok
}

func sliceOption(options map[string]any, name string) ([]any, bool) {
	v, ok := options[name].([]any)
	return v, ok
}

func int64Slice(values []any) []int64 {
	out := make([]int64, 0, len(values))
	for _, v := range values {
		if n, ok := v.(int64); ok {
			out = append(out, n)
		}
	}
	return out
}

func floatSlice(values []any) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if f, ok := v.(float64); ok {
			out = append(out, f)
		}
	}
	return out
}

func stringSlice(values []any) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func timeSlice(values []any) []time.Time {
	out := make([]time.Time, 0, len(values))
	for _, v := range values {
		if t, ok := v.(time.Time); ok {
			out = append(out, t)
		}
	}
	return out
}
