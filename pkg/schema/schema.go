// Package schema defines the contract between the request pipeline and a
// schema validation engine.
//
// The pipeline never inspects how a schema validates. It only asks a Schema
// to parse a raw value and looks at the Result: the success flag, the parsed
// (possibly coerced) value and, on failure, the list of field-level issues.
// Only a StringBag is coerced.
// Engines plug in through adapter packages such as schema/jsonschema and
// schema/structschema.
package schema

import (
	"context"
	"strings"
)

// Schema parses and validates a raw value.
type Schema interface {
	// SafeParse validates value, returning the coerced value on success or
	// the violated constraints on failure. It never panics on bad input.
	SafeParse(ctx context.Context, value any) Result

	// Optional reports whether an absent (nil) value is acceptable.
	Optional() bool

	// JSONSchema returns the JSON Schema description of the schema, used
	// for API documentation.
	JSONSchema() map[string]any
}

// ObjectSchema is a Schema describing an object with named fields. Bindings
// for path parameters, query strings and headers require one.
type ObjectSchema interface {
	Schema

	// Fields returns the object's fields in a stable order.
	Fields() []Field
}

// Field is a single named field of an ObjectSchema.
type Field struct {
	Name       string
	Required   bool
	JSONSchema map[string]any
}

// Result is the outcome of SafeParse.
type Result struct {
	Success bool
	Data    any
	Issues  Issues
}

// Ok builds a successful result.
func Ok(data any) Result {
	return Result{Success: true, Data: data}
}

// Fail builds a failed result.
func Fail(issues ...Issue) Result {
	return Result{Issues: issues}
}

// Issue is a single violated constraint.
type Issue struct {
	Path    []string
	Code    string
	Message string
}

// String formats the issue as "path: message".
func (i Issue) String() string {
	if len(i.Path) == 0 {
		return i.Message
	}
	return strings.Join(i.Path, ".") + ": " + i.Message
}

// Issues is the list of violations of a failed parse.
type Issues []Issue

// Format renders every issue on one line, separated by "; ".
func (is Issues) Format() string {
	parts := make([]string, len(is))
	for i, issue := range is {
		parts[i] = issue.String()
	}
	return strings.Join(parts, "; ")
}

// StringBag holds the values read from the path, the query string or the
// headers. Each value is a string or a []string. Engines coerce the leaves
// of a StringBag toward the declared types. Any other value, such as a JSON
// body or a handler result, is validated in its JSON form unchanged.
type StringBag map[string]any

// BagOf copies m into a StringBag.
func BagOf[V any](m map[string]V) StringBag {
	bag := make(StringBag, len(m))
	for k, v := range m {
		bag[k] = v
	}
	return bag
}
