// Package jsoncodec is the JSON codec used for request bodies, response
// bodies and the generated API document.
package jsoncodec

import (
	"io"

	"github.com/bytedance/sonic"
)

// ConfigStd sorts map keys, which keeps serialized documents stable.
var defaultConfig = sonic.ConfigStd

func Marshal(v any) ([]byte, error) {
	return defaultConfig.Marshal(v)
}

func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return defaultConfig.MarshalIndent(v, prefix, indent)
}

func Unmarshal(data []byte, v any) error {
	return defaultConfig.Unmarshal(data, v)
}

func Encode(w io.Writer, v any) error {
	enc := defaultConfig.NewEncoder(w)
	return enc.Encode(v)
}

func Decode(r io.Reader, v any) error {
	dec := defaultConfig.NewDecoder(r)
	return dec.Decode(v)
}

// Convert re-shapes src into dst by encoding and decoding it. dst must be a
// pointer.
func Convert(src any, dst any) error {
	data, err := Marshal(src)
	if err != nil {
		return err
	}
	return Unmarshal(data, dst)
}

// Normalize turns any Go value into its generic JSON form (maps, slices,
// strings, float64, bool, nil).
func Normalize(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	var out any
	if err := Convert(v, &out); err != nil {
		return nil, err
	}
	return out, nil
}
