// Package declarative builds schema trees from plain data declarations, the
// kind obtained by parsing a JSON or YAML document. A declaration is a map
// with a "type" tag naming the schema and tag-specific option keys; nested
// declarations describe sub-schemas.
//
// Declarations are themselves validated with a schema assembled from the
// fabric registry, so a malformed declaration is reported with the same
// error tree as any other invalid value.
package declarative

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	valtree "github.com/reoring/valtree"
	"github.com/reoring/valtree/schema"
)

// TypeKey is the declaration key naming the schema type.
const TypeKey = "type"

// DeclarationError reports an invalid declaration, wrapping the error tree
// produced by the declaration schema.
type DeclarationError struct {
	Errors valtree.ErrorList
}

func (e *DeclarationError) Error() string {
	return "invalid schema declaration: " + e.Errors.Error()
}

// AsDeclarationError extracts a *DeclarationError from an error chain.
func AsDeclarationError(err error) (*DeclarationError, bool) {
	var de *DeclarationError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// Builder turns declarations into schemas using an immutable fabric
// registry. A Builder is safe for concurrent use.
type Builder struct {
	fabrics map[string]Fabric

	declOnce   sync.Once
	declSchema *schema.DictSchema
}

// NewBuilder returns a Builder over a copy of the given registry. Later
// changes to the caller's map do not affect the builder.
func NewBuilder(fabrics map[string]Fabric) *Builder {
	copied := make(map[string]Fabric, len(fabrics))
	for tag, fabric := range fabrics {
		copied[tag] = fabric
	}
	return &Builder{fabrics: copied}
}

var defaultBuilder = NewBuilder(DefaultFabrics())

// Build constructs a schema from a declaration using the default registry,
// validating the declaration with type casting enabled.
func Build(declaration map[string]any) (valtree.Schema, error) {
	return defaultBuilder.Build(declaration, true, true)
}

// Build constructs a schema from a declaration. With validate enabled the
// declaration is first checked (and, with typecast, coerced) against the
// declaration schema; failures surface as *DeclarationError. Nested
// declarations inside an already-validated one are built without
// re-validation.
func (b *Builder) Build(declaration map[string]any, validate, typecast bool) (valtree.Schema, error) {
	if validate {
		validated, err := b.Validate(declaration, typecast)
		if err != nil {
			return nil, err
		}
		declaration = validated
	}

	tag, _ := declaration[TypeKey].(string)
	fabric, ok := b.fabrics[tag]
	if !ok {
		return nil, fmt.Errorf("declarative: unknown schema type %q", tag)
	}

	options := make(map[string]any, len(declaration))
	for name, value := range declaration {
		if name != TypeKey {
			options[name] = value
		}
	}
	return fabric.Create(options, b)
}

// Validate checks a declaration against the declaration schema and returns
// the validated (and possibly coerced) copy. Failures are reported as
// *DeclarationError.
func (b *Builder) Validate(declaration map[string]any, typecast bool) (map[string]any, error) {
	out, err := valtree.Process(b.DeclarationSchema(), declaration, typecast, nil)
	if err != nil {
		errs, _ := valtree.AsErrorList(err)
		return nil, &DeclarationError{Errors: errs}
	}
	validated, ok := out.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("declarative: declaration must be a map, got %T", out)
	}
	return validated, nil
}

// DeclarationSchema assembles (once) the schema declarations are validated
// against: a dict with a required "type" key constrained to the registered
// tags, plus every fabric's option keys predicated on their tag.
func (b *Builder) DeclarationSchema() *schema.DictSchema {
	b.declOnce.Do(func() {
		tags := make([]string, 0, len(b.fabrics))
		for tag := range b.fabrics {
			tags = append(tags, tag)
		}
		sort.Strings(tags)

		ds := schema.Dict().
			Keys(schema.K(TypeKey, schema.Str().Allowed(tags...)).Required()).
			KeysRequiredByDefault(false)

		// The option keys of nested-schema options reference ds itself,
		// closing the recursion.
		for _, tag := range tags {
			for _, key := range b.fabrics[tag].OptionKeys(tag, ds) {
				ds.AppendKey(key)
			}
		}
		b.declSchema = ds
	})
	return b.declSchema
}
