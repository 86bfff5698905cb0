package jsoncodec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal_SortsMapKeys(t *testing.T) {
	data, err := Marshal(map[string]int{"b": 2, "a": 1, "c": 3})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1,"b":2,"c":3}`, string(data))
}

func TestConvert_StructToMap(t *testing.T) {
	type payload struct {
		ID   int    `json:"id"`
		Name string `json:"name,omitempty"`
	}

	var out map[string]any
	require.NoError(t, Convert(payload{ID: 42}, &out))
	assert.Equal(t, map[string]any{"id": float64(42)}, out)
}

func TestNormalize(t *testing.T) {
	out, err := Normalize([]int{1, 2})
	require.NoError(t, err)
	assert.Equal(t, []any{float64(1), float64(2)}, out)

	out, err = Normalize(nil)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestEncodeDecode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, map[string]string{"x": "y"}))

	var out map[string]string
	require.NoError(t, Decode(&buf, &out))
	assert.Equal(t, "y", out["x"])
}
