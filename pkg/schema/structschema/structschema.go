// Package structschema uses plain Go types as schemas.
//
// String bags (path parameters, query strings, headers) are mapped onto the
// target struct with gin's form binding, using the `json` tag for names.
// Any other value is converted through its JSON form. The result is then
// checked with go-playground/validator using `validate` tags.
package structschema

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/stlmpp/stapi/internal/jsoncodec"
	"github.com/stlmpp/stapi/pkg/schema"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func defaultValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(jsonName)
	})
	return validate
}

// Schema parses values into T.
type Schema[T any] struct {
	optional bool
}

var _ schema.ObjectSchema = (*Schema[struct{}])(nil)

// For returns the schema of T.
func For[T any]() *Schema[T] {
	return &Schema[T]{}
}

// AsOptional returns a copy of the schema that accepts an absent value.
func (s *Schema[T]) AsOptional() *Schema[T] {
	return &Schema[T]{optional: true}
}

func (s *Schema[T]) Optional() bool {
	return s.optional
}

func (s *Schema[T]) SafeParse(ctx context.Context, value any) schema.Result {
	if value == nil && s.optional {
		return schema.Ok(nil)
	}

	var out T
	if err := decode(value, &out); err != nil {
		return schema.Fail(schema.Issue{Code: "invalid_type", Message: err.Error()})
	}

	if structType(reflect.TypeFor[T]()) != nil {
		if err := defaultValidator().StructCtx(ctx, out); err != nil {
			return schema.Fail(issuesFrom(err)...)
		}
	}
	return schema.Ok(out)
}

func (s *Schema[T]) JSONSchema() map[string]any {
	return typeSchema(reflect.TypeFor[T]())
}

func (s *Schema[T]) Fields() []schema.Field {
	t := structType(reflect.TypeFor[T]())
	if t == nil {
		return nil
	}

	var fields []schema.Field
	for _, f := range reflect.VisibleFields(t) {
		name := fieldName(f)
		if name == "" || f.Anonymous {
			continue
		}
		fields = append(fields, schema.Field{
			Name:       name,
			Required:   isRequired(f),
			JSONSchema: typeSchema(f.Type),
		})
	}
	return fields
}

func decode(value any, out any) error {
	if form, ok := asForm(value); ok {
		if structType(reflect.TypeOf(out).Elem()) != nil {
			return binding.MapFormWithTag(out, form, "json")
		}
	}
	if value == nil {
		return errors.New("value is required")
	}
	return jsoncodec.Convert(value, out)
}

// asForm flattens the string bags built for params, query and headers.
func asForm(value any) (map[string][]string, bool) {
	bag, ok := value.(schema.StringBag)
	if !ok {
		return nil, false
	}
	form := make(map[string][]string, len(bag))
	for k, v := range bag {
		switch typed := v.(type) {
		case string:
			form[k] = []string{typed}
		case []string:
			form[k] = typed
		default:
			return nil, false
		}
	}
	return form, true
}

func issuesFrom(err error) schema.Issues {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return schema.Issues{{Code: "invalid", Message: err.Error()}}
	}

	issues := make(schema.Issues, 0, len(verrs))
	for _, fe := range verrs {
		path := strings.Split(fe.Namespace(), ".")
		if len(path) > 1 {
			path = path[1:]
		}
		msg := fmt.Sprintf("failed on the '%s' tag", fe.Tag())
		if fe.Param() != "" {
			msg = fmt.Sprintf("failed on the '%s=%s' tag", fe.Tag(), fe.Param())
		}
		issues = append(issues, schema.Issue{Path: path, Code: fe.Tag(), Message: msg})
	}
	return issues
}

func structType(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	return t
}

func jsonName(f reflect.StructField) string {
	name := fieldName(f)
	if name == "" {
		return "-"
	}
	return name
}

func fieldName(f reflect.StructField) string {
	if !f.IsExported() {
		return ""
	}
	tag := f.Tag.Get("json")
	if tag == "-" {
		return ""
	}
	if name, _, _ := strings.Cut(tag, ","); name != "" {
		return name
	}
	return f.Name
}

func isRequired(f reflect.StructField) bool {
	for _, rule := range strings.Split(f.Tag.Get("validate"), ",") {
		if rule == "required" {
			return true
		}
	}
	return false
}

func typeSchema(t reflect.Type) map[string]any {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.String:
		return map[string]any{"type": "string"}
	case reflect.Bool:
		return map[string]any{"type": "boolean"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return map[string]any{"type": "integer"}
	case reflect.Float32, reflect.Float64:
		return map[string]any{"type": "number"}
	case reflect.Slice, reflect.Array:
		return map[string]any{"type": "array", "items": typeSchema(t.Elem())}
	case reflect.Map:
		return map[string]any{"type": "object", "additionalProperties": typeSchema(t.Elem())}
	case reflect.Struct:
		properties := map[string]any{}
		var required []string
		for _, f := range reflect.VisibleFields(t) {
			name := fieldName(f)
			if name == "" || f.Anonymous {
				continue
			}
			properties[name] = typeSchema(f.Type)
			if isRequired(f) {
				required = append(required, name)
			}
		}
		out := map[string]any{"type": "object", "properties": properties}
		if len(required) > 0 {
			out["required"] = required
		}
		return out
	}
	return map[string]any{}
}
