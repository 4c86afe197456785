package data

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/goccy/go-json"

	"github.com/VanDung-dev/arrow-message/errors"
	"github.com/VanDung-dev/arrow-message/message"
)

// Converter handles JSON to Arrow conversion of image messages.
type Converter struct {
	allocator memory.Allocator
}

// NewConverter creates a new Converter with the default memory allocator.
func NewConverter() *Converter {
	return &Converter{allocator: memory.DefaultAllocator}
}

// NewConverterWithAllocator creates a Converter that builds arrays with mem.
func NewConverterWithAllocator(mem memory.Allocator) *Converter {
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	return &Converter{allocator: mem}
}

// JSONToImage converts a JSON image document to an encoded Image array.
func (c *Converter) JSONToImage(jsonData []byte) (arrow.Array, error) {
	return EncodeJSON(c.allocator, ImageCodec, jsonData)
}

// ImageToJSON converts an encoded Image array back to JSON bytes.
func (c *Converter) ImageToJSON(arr arrow.Array) ([]byte, error) {
	return DecodeJSON(ImageCodec, arr)
}

// JSONToAnnotation converts a JSON annotation document to an encoded array.
func (c *Converter) JSONToAnnotation(jsonData []byte) (arrow.Array, error) {
	return EncodeJSON(c.allocator, AnnotationCodec, jsonData)
}

// AnnotationToJSON converts an encoded Annotation array back to JSON bytes.
func (c *Converter) AnnotationToJSON(arr arrow.Array) ([]byte, error) {
	return DecodeJSON(AnnotationCodec, arr)
}

// EncodeJSON unmarshals jsonData into a T and encodes it with codec.
func EncodeJSON[T any](mem memory.Allocator, codec message.Codec[T], jsonData []byte) (arrow.Array, error) {
	var v T
	if err := json.Unmarshal(jsonData, &v); err != nil {
		return nil, errors.New(errors.PhaseEncode, errors.KindParse).
			Cause(err).
			Detail("failed to unmarshal JSON").
			Build()
	}
	return codec.Encode(mem, v)
}

// DecodeJSON decodes arr with codec and marshals the result to JSON.
func DecodeJSON[T any](codec message.Codec[T], arr arrow.Array) ([]byte, error) {
	v, err := codec.Decode(arr)
	if err != nil {
		return nil, err
	}
	out, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseDecode, errors.KindParse, err, "failed to marshal JSON")
	}
	return out, nil
}
