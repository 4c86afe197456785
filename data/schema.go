package data

// Descriptors defined here MUST stay in field order: a reader decodes by
// the same order the writer encoded with.

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/VanDung-dev/arrow-message/errors"
	"github.com/VanDung-dev/arrow-message/message"
)

// Encoding is the pixel layout of an image.
type Encoding uint8

// Pixel layouts, 8 bits per channel.
const (
	RGB8 Encoding = iota // red, green, blue
	RGBA8                // red, green, blue, alpha
	BGR8                 // blue, green, red
	BGRA8                // blue, green, red, alpha
)

var encodingLabels = [...]string{
	RGB8:  "RGB8",
	RGBA8: "RGBA8",
	BGR8:  "BGR8",
	BGRA8: "BGRA8",
}

// String returns the label stored on the wire.
func (e Encoding) String() string {
	if int(e) < len(encodingLabels) {
		return encodingLabels[e]
	}
	return fmt.Sprintf("Encoding(%d)", uint8(e))
}

// ParseEncoding returns the Encoding named by label.
func ParseEncoding(label string) (Encoding, error) {
	for i, l := range encodingLabels {
		if l == label {
			return Encoding(i), nil
		}
	}
	return 0, errors.Parse(errors.PhaseDecode, label, "Encoding")
}

// MarshalText implements encoding.TextMarshaler with the wire label.
func (e Encoding) MarshalText() ([]byte, error) {
	if int(e) >= len(encodingLabels) {
		return nil, errors.Parse(errors.PhaseEncode, e.String(), "Encoding")
	}
	return []byte(e.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler; unknown labels are
// parse errors.
func (e *Encoding) UnmarshalText(text []byte) error {
	v, err := ParseEncoding(string(text))
	if err != nil {
		return err
	}
	*e = v
	return nil
}

// Codecs of the message types.
var (
	EncodingCodec   = message.StringEnum(Encoding.String, ParseEncoding)
	MetadataCodec   = message.Of[Metadata]()
	ImageCodec      = message.Of[Image]()
	AnnotationCodec = message.Of[Annotation]()
)

// ArrowField returns the descriptor of an Encoding stored under name.
func (e Encoding) ArrowField(name string) arrow.Field {
	return EncodingCodec.Field(name)
}

// ToArrow encodes e as its label.
func (e Encoding) ToArrow(mem memory.Allocator) (arrow.Array, error) {
	return EncodingCodec.Encode(mem, e)
}

// FromArrow decodes a label written by ToArrow.
func (e *Encoding) FromArrow(arr arrow.Array) error {
	v, err := EncodingCodec.Decode(arr)
	if err != nil {
		return err
	}
	*e = v
	return nil
}

// MetadataField returns the descriptor of Metadata.
//
// Fields:
//   - name: optional utf8 - Human readable image name
//   - width: uint32 - Width in pixels
//   - height: uint32 - Height in pixels
//   - encoding: utf8 - Encoding label
func MetadataField(name string) arrow.Field {
	return message.MakeUnionFields(name, []arrow.Field{
		message.Option(message.String).Field("name"),
		message.Uint32.Field("width"),
		message.Uint32.Field("height"),
		EncodingCodec.Field("encoding"),
	})
}

// ImageField returns the descriptor of Image.
//
// Fields:
//   - data: list<uint8> - Raw pixel bytes
//   - metadata: optional Metadata union
func ImageField(name string) arrow.Field {
	return message.MakeUnionFields(name, []arrow.Field{
		message.Uint8s.Field("data"),
		message.Option(MetadataCodec).Field("metadata"),
	})
}

// AnnotationField returns the descriptor of Annotation. Exactly one variant
// is populated per value.
//
// Variants:
//   - text: utf8
//   - score: float64
//   - label: utf8 (Encoding label)
func AnnotationField(name string) arrow.Field {
	return message.MakeUnionFields(name, []arrow.Field{
		message.String.Field("text"),
		message.Float64.Field("score"),
		EncodingCodec.Field("label"),
	})
}

// ValidateImage checks that arr was encoded with the Image descriptor.
func ValidateImage(arr arrow.Array) error {
	return message.CheckSchema(arr, ImageField(""))
}
