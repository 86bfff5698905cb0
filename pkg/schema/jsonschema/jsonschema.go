// Package jsonschema adapts JSON Schema documents, validated with
// xeipuuv/gojsonschema, to the schema contract used by the request pipeline.
//
// Path parameters, query strings and headers always arrive as strings, wrapped
// in a schema.StringBag. Before validating a bag, its values are coerced toward
// the types the definition declares (integer, number, boolean, array), so a
// definition written for JSON works unchanged for those bags. Every other value
// is validated as is.
package jsonschema

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/stlmpp/stapi/internal/jsoncodec"
	"github.com/stlmpp/stapi/pkg/schema"
)

// Definition is a JSON Schema document in its generic Go form.
type Definition map[string]any

var ErrNotObject = errors.New("json schema definition is not of type object")

// Schema validates values against a compiled JSON Schema definition.
type Schema struct {
	def      Definition
	compiled *gojsonschema.Schema
	optional bool
}

var _ schema.Schema = (*Schema)(nil)

// New compiles def. Nested Definition values are flattened to plain maps.
func New(def Definition) (*Schema, error) {
	generic, err := jsoncodec.Normalize(map[string]any(def))
	if err != nil {
		return nil, fmt.Errorf("failed to normalize json schema: %w", err)
	}
	flat, _ := generic.(map[string]any)

	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(flat))
	if err != nil {
		return nil, fmt.Errorf("failed to compile json schema: %w", err)
	}
	return &Schema{def: Definition(flat), compiled: compiled}, nil
}

// MustNew is like New but panics when def does not compile.
func MustNew(def Definition) *Schema {
	s, err := New(def)
	if err != nil {
		panic(err)
	}
	return s
}

// AsOptional returns a copy of the schema that accepts an absent value.
func (s *Schema) AsOptional() *Schema {
	clone := *s
	clone.optional = true
	return &clone
}

func (s *Schema) Optional() bool {
	return s.optional
}

func (s *Schema) JSONSchema() map[string]any {
	return map[string]any(s.def)
}

// SafeParse normalizes value to its JSON form, coerces the string leaves of a
// schema.StringBag and validates the result. The normalized value is returned
// as Data.
func (s *Schema) SafeParse(_ context.Context, value any) schema.Result {
	if value == nil && s.optional {
		return schema.Ok(nil)
	}

	bag, isBag := value.(schema.StringBag)
	if isBag {
		value = map[string]any(bag)
	}
	normalized, err := jsoncodec.Normalize(value)
	if err != nil {
		return schema.Fail(schema.Issue{Code: "invalid_json", Message: err.Error()})
	}
	if isBag {
		normalized = coerce(s.def, normalized)
	}

	result, err := s.compiled.Validate(gojsonschema.NewGoLoader(normalized))
	if err != nil {
		return schema.Fail(schema.Issue{Code: "invalid_json", Message: err.Error()})
	}
	if !result.Valid() {
		return schema.Fail(issuesFrom(result.Errors())...)
	}
	return schema.Ok(normalized)
}

// Object is a Schema whose definition describes an object. It exposes its
// properties as fields.
type Object struct {
	*Schema
}

var _ schema.ObjectSchema = (*Object)(nil)

// NewObject compiles def, which must declare "type": "object".
func NewObject(def Definition) (*Object, error) {
	if def["type"] != "object" {
		return nil, ErrNotObject
	}
	s, err := New(def)
	if err != nil {
		return nil, err
	}
	return &Object{Schema: s}, nil
}

// Properties builds an object schema from its properties and the names of
// the required ones. It panics when a property definition does not compile.
func Properties(props map[string]Definition, required ...string) *Object {
	properties := make(map[string]any, len(props))
	for name, def := range props {
		properties[name] = map[string]any(def)
	}
	def := Definition{"type": "object", "properties": properties}
	if len(required) > 0 {
		def["required"] = required
	}

	obj, err := NewObject(def)
	if err != nil {
		panic(err)
	}
	return obj
}

func (o *Object) AsOptional() *Object {
	return &Object{Schema: o.Schema.AsOptional()}
}

func (o *Object) Fields() []schema.Field {
	props, _ := o.def["properties"].(map[string]any)
	required := requiredSet(o.def["required"])

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]schema.Field, 0, len(names))
	for _, name := range names {
		prop, _ := props[name].(map[string]any)
		fields = append(fields, schema.Field{
			Name:       name,
			Required:   required[name],
			JSONSchema: prop,
		})
	}
	return fields
}

func requiredSet(v any) map[string]bool {
	set := map[string]bool{}
	switch list := v.(type) {
	case []string:
		for _, name := range list {
			set[name] = true
		}
	case []any:
		for _, name := range list {
			if s, ok := name.(string); ok {
				set[s] = true
			}
		}
	}
	return set
}

func issuesFrom(errs []gojsonschema.ResultError) schema.Issues {
	issues := make(schema.Issues, 0, len(errs))
	for _, e := range errs {
		var path []string
		if field := e.Field(); field != "" && field != gojsonschema.STRING_CONTEXT_ROOT {
			path = strings.Split(field, ".")
		}
		issues = append(issues, schema.Issue{
			Path:    path,
			Code:    e.Type(),
			Message: e.Description(),
		})
	}
	return issues
}

// typeOf returns the declared type of def. For a type list the first
// non-null entry wins.
func typeOf(def map[string]any) string {
	switch t := def["type"].(type) {
	case string:
		return t
	case []any:
		for _, entry := range t {
			if s, ok := entry.(string); ok && s != "null" {
				return s
			}
		}
	case []string:
		for _, s := range t {
			if s != "null" {
				return s
			}
		}
	}
	return ""
}

func coerce(def map[string]any, value any) any {
	if def == nil {
		return value
	}

	switch typeOf(def) {
	case "object":
		obj, ok := value.(map[string]any)
		if !ok {
			return value
		}
		props, _ := def["properties"].(map[string]any)
		for key, v := range obj {
			if prop, ok := props[key].(map[string]any); ok {
				obj[key] = coerce(prop, v)
			}
		}
		return obj
	case "array":
		items, _ := def["items"].(map[string]any)
		list, ok := value.([]any)
		if !ok {
			if value == nil {
				return value
			}
			list = []any{value}
		}
		for i, v := range list {
			list[i] = coerce(items, v)
		}
		return list
	}

	// Repeated query keys arrive as lists; a scalar field takes the last one.
	if list, ok := value.([]any); ok && len(list) > 0 {
		value = list[len(list)-1]
	}

	s, ok := value.(string)
	if !ok {
		return value
	}
	switch typeOf(def) {
	case "integer":
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
	case "number":
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			return n
		}
	case "boolean":
		if b, err := strconv.ParseBool(s); err == nil {
			return b
		}
	}
	return value
}
