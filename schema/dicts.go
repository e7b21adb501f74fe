package schema

import (
	"sort"

	valtree "github.com/reoring/valtree"
)

// Predicate decides whether a Key applies, given the already-validated
// prior fields of the same object (never the raw input).
type Predicate func(prior map[string]any) bool

// Key describes one declared Dict field: its name, an optional value schema,
// a tri-state required flag (unset asks the Dict default), an optional
// default value or producer, and an optional applicability predicate.
type Key struct {
	name         string
	schema       valtree.Schema
	required     *bool
	defaultValue any
	defaultFunc  func() any
	hasDefault   bool
	predicate    Predicate
}

// K builds a Key. The value schema is optional; passing more than one is a
// programmer error.
func K(name string, valueSchema ...valtree.Schema) *Key {
	k := &Key{name: name}
	switch len(valueSchema) {
	case 0:
	case 1:
		k.schema = valueSchema[0]
	default:
		panic("valtree/schema: K accepts at most one value schema")
	}
	return k
}

// Name returns the key name.
func (k *Key) Name() string { return k.name }

// Required marks the key required regardless of the Dict default.
func (k *Key) Required() *Key {
	if k.hasDefault {
		panic("valtree/schema: key with default value cannot be required")
	}
	t := true
	k.required = &t
	return k
}

// Optional marks the key optional regardless of the Dict default.
func (k *Key) Optional() *Key {
	f := false
	k.required = &f
	return k
}

// Default supplies a value for the key when absent from the input. A
// defaulted key cannot be required.
func (k *Key) Default(value any) *Key {
	if k.required != nil && *k.required {
		panic("valtree/schema: key with default value cannot be required")
	}
	k.defaultValue = value
	k.hasDefault = true
	return k
}

// DefaultFunc supplies a zero-argument producer invoked once per validation
// when the key is absent.
func (k *Key) DefaultFunc(produce func() any) *Key {
	if k.required != nil && *k.required {
		panic("valtree/schema: key with default value cannot be required")
	}
	k.defaultFunc = produce
	k.hasDefault = true
	return k
}

// Predicate restricts the key's applicability; a false result skips the key
// entirely (no required/unknown accounting).
func (k *Key) Predicate(p Predicate) *Key {
	k.predicate = p
	return k
}

// WithPredicate returns a copy of the key carrying the given predicate. Used
// by the declarative builder when tagging option keys with their schema
// type.
func (k *Key) WithPredicate(p Predicate) *Key {
	clone := *k
	clone.predicate = p
	return &clone
}

func (k *Key) applies(prior map[string]any) bool {
	if k.predicate == nil {
		return true
	}
	return k.predicate(prior)
}

func (k *Key) validate(value any, typecast bool, ctx valtree.Context) (any, error) {
	if k.schema == nil {
		return value, nil
	}
	return valtree.Process(k.schema, value, typecast, ctx)
}

func (k *Key) defaulted() any {
	if k.defaultFunc != nil {
		return k.defaultFunc()
	}
	return k.defaultValue
}

// DictSchema accepts map[string]any values. Only string keys are supported.
//
// Declared keys are validated in order; a key's predicate sees the result
// map accumulated so far, so a later key's applicability may depend on an
// earlier key's validated value. Keys not matched by a declared Key are
// resolved by the key/value schemas, or flagged unknown when the schema
// declares keys and no dynamic schemas.
type DictSchema struct {
	valtree.Base
	keys                  []*Key
	hasKeys               bool
	keySchema             *StrSchema
	valueSchema           valtree.Schema
	keysRequiredByDefault bool
}

var _ valtree.Schema = (*DictSchema)(nil)
var _ valtree.Typecaster = (*DictSchema)(nil)

// Dict returns a schema accepting map values. Without Keys, KeySchema or
// ValueSchema every input key is accepted and passed through.
func Dict() *DictSchema {
	return &DictSchema{keysRequiredByDefault: true}
}

// AllowNone permits nil input.
func (s *DictSchema) AllowNone() *DictSchema { s.SetAllowNone(true); return s }

// Messages overrides error messages.
func (s *DictSchema) Messages(mc valtree.MessageCollection) *DictSchema { s.SetMessages(mc); return s }

// Rules appends custom validation rules.
func (s *DictSchema) Rules(rules ...valtree.Rule) *DictSchema { s.AppendRules(rules...); return s }

// Keys declares the allowed keys. Calling Keys with no arguments declares an
// empty key set, which rejects every input key as unknown; a Dict that never
// calls Keys accepts everything.
func (s *DictSchema) Keys(keys ...*Key) *DictSchema {
	if keys == nil {
		keys = []*Key{}
	}
	s.keys = keys
	s.hasKeys = true
	return s
}

// AppendKey adds one declared key. Used by the declarative builder while
// assembling the meta-schema.
func (s *DictSchema) AppendKey(k *Key) *DictSchema {
	s.keys = append(s.keys, k)
	s.hasKeys = true
	return s
}

// KeySchema validates the names of keys not matched by a declared Key.
func (s *DictSchema) KeySchema(ks *StrSchema) *DictSchema { s.keySchema = ks; return s }

// ValueSchema validates the values of keys not matched by a declared Key.
func (s *DictSchema) ValueSchema(vs valtree.Schema) *DictSchema { s.valueSchema = vs; return s }

// KeysRequiredByDefault sets the effective required flag for declared keys
// that leave it unset (defaults to true).
func (s *DictSchema) KeysRequiredByDefault(required bool) *DictSchema {
	s.keysRequiredByDefault = required
	return s
}

func (s *DictSchema) Validate(value any, typecast bool, ctx valtree.Context) (any, valtree.ErrorList) {
	m, ok := value.(map[string]any)
	if !ok {
		return nil, valtree.ErrorList{s.unexpectedType()}
	}

	var result map[string]any
	keyErrs := valtree.Nested{}
	valueErrs := valtree.Nested{}
	var leftover []string

	if s.hasKeys {
		result, leftover = s.validateDeclaredKeys(m, typecast, ctx, keyErrs, valueErrs)
	} else {
		result = make(map[string]any, len(m))
		for name, v := range m {
			result[name] = v
		}
		leftover = sortedKeys(m)
	}

	var unknown []string
	if s.hasKeys && s.keySchema == nil && s.valueSchema == nil {
		unknown = leftover
	}

	valueCandidates := leftover
	if s.keySchema != nil {
		valueCandidates = valueCandidates[:0:0]
		for _, name := range leftover {
			if _, err := valtree.Process(s.keySchema, name, false, ctx); err != nil {
				errs, _ := valtree.AsErrorList(err)
				keyErrs[name] = errs
				continue
			}
			result[name] = m[name]
			valueCandidates = append(valueCandidates, name)
		}
	}

	if s.valueSchema != nil {
		for _, name := range valueCandidates {
			v, err := valtree.Process(s.valueSchema, m[name], typecast, ctx)
			if err != nil {
				errs, _ := valtree.AsErrorList(err)
				valueErrs[name] = errs
				continue
			}
			result[name] = v
		}
	}

	for _, name := range unknown {
		keyErrs[name] = valtree.ErrorList{s.NewError(valtree.CodeUnknownKey, nil, nil)}
	}

	var errs valtree.ErrorList
	if len(keyErrs) > 0 {
		errs = append(errs, s.NewError(valtree.CodeKeyErrors, nil, keyErrs))
	}
	if len(valueErrs) > 0 {
		errs = append(errs, s.NewError(valtree.CodeValueErrors, nil, valueErrs))
	}

	out, ruleErrs := s.ApplyRules(result, typecast, ctx)
	errs = valtree.MergeStructural(errs, ruleErrs, valtree.CodeKeyErrors, valtree.CodeValueErrors)
	return out, errs
}

// validateDeclaredKeys walks the declared keys in order, accumulating the
// result map that later predicates observe, and returns the input keys no
// declared Key matched (sorted for deterministic traversal).
func (s *DictSchema) validateDeclaredKeys(
	m map[string]any, typecast bool, ctx valtree.Context,
	keyErrs, valueErrs valtree.Nested,
) (map[string]any, []string) {
	result := make(map[string]any, len(s.keys))
	remaining := make(map[string]struct{}, len(m))
	for name := range m {
		remaining[name] = struct{}{}
	}

	for _, key := range s.keys {
		if !key.applies(result) {
			continue
		}
		if _, present := remaining[key.name]; present {
			delete(remaining, key.name)
			v, err := key.validate(m[key.name], typecast, ctx)
			if err != nil {
				errs, _ := valtree.AsErrorList(err)
				valueErrs[key.name] = errs
				continue
			}
			result[key.name] = v
			continue
		}
		if key.hasDefault {
			result[key.name] = key.defaulted()
			continue
		}
		required := s.keysRequiredByDefault
		if key.required != nil {
			required = *key.required
		}
		if required {
			keyErrs[key.name] = valtree.ErrorList{s.NewError(valtree.CodeRequiredKey, nil, nil)}
		}
	}

	leftover := make([]string, 0, len(remaining))
	for name := range remaining {
		leftover = append(leftover, name)
	}
	sort.Strings(leftover)
	return result, leftover
}

func (s *DictSchema) Typecast(input any, ctx valtree.Context) (any, valtree.ErrorList) {
	return input, nil
}

func (s *DictSchema) unexpectedType() *valtree.Error {
	return s.NewError(valtree.CodeUnexpectedType, valtree.Args{"expected_type": valtree.TypeName("dict")}, nil)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
