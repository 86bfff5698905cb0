package jsonschema

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stlmpp/stapi/pkg/schema"
)

func TestObject_CoercesStringBag(t *testing.T) {
	params := Properties(map[string]Definition{
		"id":     {"type": "integer"},
		"ratio":  {"type": "number"},
		"active": {"type": "boolean"},
		"name":   {"type": "string"},
	}, "id")

	result := params.SafeParse(context.Background(), schema.BagOf(map[string]string{
		"id":     "1",
		"ratio":  "0.5",
		"active": "true",
		"name":   "abc",
	}))

	require.True(t, result.Success, result.Issues.Format())
	assert.Equal(t, map[string]any{
		"id":     int64(1),
		"ratio":  0.5,
		"active": true,
		"name":   "abc",
	}, result.Data)
}

func TestObject_DoesNotCoerceJSONValues(t *testing.T) {
	body := Properties(map[string]Definition{
		"id":     {"type": "integer"},
		"active": {"type": "boolean"},
	}, "id")

	result := body.SafeParse(context.Background(), map[string]any{"id": "42", "active": "true"})

	require.False(t, result.Success)
	assert.Len(t, result.Issues, 2)

	result = body.SafeParse(context.Background(), map[string]string{"id": "42"})
	assert.False(t, result.Success)
}

func TestObject_RejectsUncoercibleValue(t *testing.T) {
	params := Properties(map[string]Definition{"id": {"type": "integer"}}, "id")

	result := params.SafeParse(context.Background(), schema.BagOf(map[string]string{"id": "abc"}))

	require.False(t, result.Success)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, []string{"id"}, result.Issues[0].Path)
	assert.Contains(t, result.Issues.Format(), "id: ")
}

func TestObject_MissingRequired(t *testing.T) {
	params := Properties(map[string]Definition{"id": {"type": "integer"}}, "id")

	result := params.SafeParse(context.Background(), schema.StringBag{})

	require.False(t, result.Success)
	assert.Equal(t, "required", result.Issues[0].Code)
}

func TestObject_RepeatedQueryKeys(t *testing.T) {
	query := Properties(map[string]Definition{
		"tag":  {"type": "array", "items": map[string]any{"type": "string"}},
		"page": {"type": "integer"},
	})

	result := query.SafeParse(context.Background(), schema.StringBag{
		"tag":  []string{"a", "b"},
		"page": []string{"1", "2"},
	})

	require.True(t, result.Success, result.Issues.Format())
	assert.Equal(t, map[string]any{
		"tag":  []any{"a", "b"},
		"page": int64(2),
	}, result.Data)
}

func TestObject_SingleValueForArray(t *testing.T) {
	query := Properties(map[string]Definition{
		"tag": {"type": "array", "items": map[string]any{"type": "integer"}},
	})

	result := query.SafeParse(context.Background(), schema.BagOf(map[string]string{"tag": "3"}))

	require.True(t, result.Success, result.Issues.Format())
	assert.Equal(t, map[string]any{"tag": []any{int64(3)}}, result.Data)
}

func TestObject_Fields(t *testing.T) {
	obj := Properties(map[string]Definition{
		"b": {"type": "string"},
		"a": {"type": "integer"},
	}, "a")

	fields := obj.Fields()

	require.Len(t, fields, 2)
	assert.Equal(t, schema.Field{Name: "a", Required: true, JSONSchema: map[string]any{"type": "integer"}}, fields[0])
	assert.Equal(t, schema.Field{Name: "b", Required: false, JSONSchema: map[string]any{"type": "string"}}, fields[1])
}

func TestNewObject_RejectsNonObject(t *testing.T) {
	_, err := NewObject(Definition{"type": "string"})
	assert.ErrorIs(t, err, ErrNotObject)
}

func TestSchema_Body(t *testing.T) {
	body := MustNew(Definition{
		"type":       "object",
		"properties": map[string]any{"name": map[string]any{"type": "string", "minLength": 1}},
		"required":   []string{"name"},
	})

	ok := body.SafeParse(context.Background(), map[string]any{"name": "x"})
	assert.True(t, ok.Success)

	bad := body.SafeParse(context.Background(), map[string]any{"name": ""})
	require.False(t, bad.Success)
	assert.Equal(t, []string{"name"}, bad.Issues[0].Path)
}

func TestSchema_Optional(t *testing.T) {
	s := MustNew(Definition{"type": "object"})

	assert.False(t, s.SafeParse(context.Background(), nil).Success)

	optional := s.AsOptional()
	assert.True(t, optional.Optional())
	assert.False(t, s.Optional())

	result := optional.SafeParse(context.Background(), nil)
	assert.True(t, result.Success)
	assert.Nil(t, result.Data)
}

func TestSchema_StructValue(t *testing.T) {
	type response struct {
		ID int `json:"id"`
	}
	s := Properties(map[string]Definition{"id": {"type": "number"}}, "id")

	result := s.SafeParse(context.Background(), response{ID: 7})

	require.True(t, result.Success)
	assert.Equal(t, map[string]any{"id": float64(7)}, result.Data)
}

func TestSchema_RootTypeMismatch(t *testing.T) {
	s := MustNew(Definition{"type": "string"})

	result := s.SafeParse(context.Background(), 12)

	require.False(t, result.Success)
	assert.Empty(t, result.Issues[0].Path)
}
