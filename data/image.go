package data

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/VanDung-dev/arrow-message/errors"
	"github.com/VanDung-dev/arrow-message/message"
)

// Metadata describes the pixels of an Image.
type Metadata struct {
	Name     *string  `json:"name,omitempty"`
	Width    uint32   `json:"width"`
	Height   uint32   `json:"height"`
	Encoding Encoding `json:"encoding"`
}

// ArrowField returns MetadataField(name).
func (Metadata) ArrowField(name string) arrow.Field {
	return MetadataField(name)
}

// ToArrow encodes m as a union of its fields.
func (m Metadata) ToArrow(mem memory.Allocator) (arrow.Array, error) {
	return message.PackStruct(mem, MetadataField(""),
		message.EncodeField("name", message.Option(message.String), m.Name),
		message.EncodeField("width", message.Uint32, m.Width),
		message.EncodeField("height", message.Uint32, m.Height),
		message.EncodeField("encoding", EncodingCodec, m.Encoding),
	)
}

// FromArrow decodes an array written by ToArrow, checking the field order
// first.
func (m *Metadata) FromArrow(arr arrow.Array) error {
	if err := message.CheckSchema(arr, MetadataField("")); err != nil {
		return err
	}
	fields, children, err := message.UnpackUnion(arr)
	if err != nil {
		return err
	}

	var out Metadata
	if out.Name, err = message.ExtractUnionData("name", fields, children, message.Option(message.String)); err != nil {
		return err
	}
	if out.Width, err = message.ExtractUnionData("width", fields, children, message.Uint32); err != nil {
		return err
	}
	if out.Height, err = message.ExtractUnionData("height", fields, children, message.Uint32); err != nil {
		return err
	}
	if out.Encoding, err = message.ExtractUnionData("encoding", fields, children, EncodingCodec); err != nil {
		return err
	}
	*m = out
	return nil
}

// Image is a raw pixel buffer with optional metadata.
type Image struct {
	Data     []uint8   `json:"data"`
	Metadata *Metadata `json:"metadata,omitempty"`
}

// ArrowField returns ImageField(name).
func (Image) ArrowField(name string) arrow.Field {
	return ImageField(name)
}

// ToArrow encodes img as a union of its fields.
func (img Image) ToArrow(mem memory.Allocator) (arrow.Array, error) {
	return message.PackStruct(mem, ImageField(""),
		message.EncodeField("data", message.Uint8s, img.Data),
		message.EncodeField("metadata", message.Option(MetadataCodec), img.Metadata),
	)
}

// FromArrow decodes an array written by ToArrow.
func (img *Image) FromArrow(arr arrow.Array) error {
	if err := ValidateImage(arr); err != nil {
		return err
	}
	fields, children, err := message.UnpackUnion(arr)
	if err != nil {
		return err
	}

	var out Image
	if out.Data, err = message.ExtractUnionData("data", fields, children, message.Uint8s); err != nil {
		return err
	}
	if out.Metadata, err = message.ExtractUnionData("metadata", fields, children, message.Option(MetadataCodec)); err != nil {
		return err
	}
	*img = out
	return nil
}

// Annotation is attached to an image by downstream consumers. Exactly one of
// its fields is set.
type Annotation struct {
	Text  *string   `json:"text,omitempty"`
	Score *float64  `json:"score,omitempty"`
	Label *Encoding `json:"label,omitempty"`
}

// Variant type codes of Annotation.
const (
	TextCode arrow.UnionTypeCode = iota
	ScoreCode
	LabelCode
)

// TextAnnotation returns a free text annotation.
func TextAnnotation(s string) Annotation { return Annotation{Text: &s} }

// ScoreAnnotation returns a score annotation.
func ScoreAnnotation(f float64) Annotation { return Annotation{Score: &f} }

// LabelAnnotation returns an annotation naming a pixel layout.
func LabelAnnotation(e Encoding) Annotation { return Annotation{Label: &e} }

func (a Annotation) set() int {
	n := 0
	if a.Text != nil {
		n++
	}
	if a.Score != nil {
		n++
	}
	if a.Label != nil {
		n++
	}
	return n
}

// ArrowField returns AnnotationField(name).
func (Annotation) ArrowField(name string) arrow.Field {
	return AnnotationField(name)
}

// ToArrow encodes the variant that is set. It fails unless exactly one is.
func (a Annotation) ToArrow(mem memory.Allocator) (arrow.Array, error) {
	if n := a.set(); n != 1 {
		return nil, errors.SchemaMismatch(errors.PhaseEncode, "annotation has %d variants set, expected 1", n)
	}

	var (
		code  arrow.UnionTypeCode
		child arrow.Array
		err   error
	)
	switch {
	case a.Text != nil:
		code = TextCode
		child, err = message.String.Encode(mem, *a.Text)
	case a.Score != nil:
		code = ScoreCode
		child, err = message.Float64.Encode(mem, *a.Score)
	default:
		code = LabelCode
		child, err = EncodingCodec.Encode(mem, *a.Label)
	}
	if err != nil {
		return nil, err
	}
	return message.MakeVariantArray(mem, AnnotationField(""), code, child)
}

// FromArrow decodes an array written by ToArrow.
func (a *Annotation) FromArrow(arr arrow.Array) error {
	if err := message.CheckSchema(arr, AnnotationField("")); err != nil {
		return err
	}
	v, err := message.UnpackVariant(arr)
	if err != nil {
		return err
	}
	defer v.Release()

	var out Annotation
	switch v.TypeCode {
	case TextCode:
		var s string
		if s, err = message.String.Decode(v.Values); err == nil {
			out.Text = &s
		}
	case ScoreCode:
		var f float64
		if f, err = message.Float64.Decode(v.Values); err == nil {
			out.Score = &f
		}
	case LabelCode:
		var e Encoding
		if e, err = EncodingCodec.Decode(v.Values); err == nil {
			out.Label = &e
		}
	default:
		return errors.FieldNotFound(errors.PhaseDecode, v.Name)
	}
	if err != nil {
		return errors.WithPath(err, v.Name)
	}
	*a = out
	return nil
}
