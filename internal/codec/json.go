// Package codec is the JSON codec used across the module.
package codec

import (
	"bytes"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// numbers decodes JSON numbers as json.Number so upstream IDs and timestamps
// survive the round trip without float rounding.
var numbers = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

var (
	Marshal       = json.Marshal
	MarshalIndent = json.MarshalIndent
	Unmarshal     = json.Unmarshal
)

// Decode unmarshals data into v keeping numbers as json.Number.
func Decode(data []byte, v any) error {
	return numbers.NewDecoder(bytes.NewReader(data)).Decode(v)
}

// DecodeValue decodes a whole JSON document into a generic value. A document
// that is empty or only whitespace decodes to nil.
func DecodeValue(data []byte) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var v any
	if err := numbers.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}
