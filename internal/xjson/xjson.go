package xjson

import (
	stdjson "encoding/json"
	"io"

	gjson "github.com/goccy/go-json"
)

// Single import site for JSON so callers never pick the codec themselves.

func Marshal(v interface{}) ([]byte, error) {
	return gjson.Marshal(v)
}

func Unmarshal(data []byte, v interface{}) error {
	return gjson.Unmarshal(data, v)
}

func Valid(data []byte) bool {
	return gjson.Valid(data)
}

func NewEncoder(w io.Writer) *gjson.Encoder {
	return gjson.NewEncoder(w)
}

// NewDecoder decodes numbers as json.Number so integer ids survive round trips.
func NewDecoder(r io.Reader) *gjson.Decoder {
	dec := gjson.NewDecoder(r)
	dec.UseNumber()
	return dec
}

// RawMessage is kept compatible with encoding/json's RawMessage type.
type RawMessage = stdjson.RawMessage

type Number = stdjson.Number
