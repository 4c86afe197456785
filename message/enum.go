package message

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/VanDung-dev/arrow-message/errors"
)

type stringEnum[E any] struct {
	format func(E) string
	parse  func(string) (E, error)
}

// StringEnum returns a codec storing an enumeration as its textual label
// through the String codec. parse must reject unknown labels; its errors are
// reported as parse errors. Values whose label does not parse back are
// rejected at encode time.
func StringEnum[E any](format func(E) string, parse func(string) (E, error)) Codec[E] {
	return stringEnum[E]{format: format, parse: parse}
}

func (e stringEnum[E]) Field(name string) arrow.Field {
	return String.Field(name)
}

func (e stringEnum[E]) Encode(mem memory.Allocator, v E) (arrow.Array, error) {
	label := e.format(v)
	if _, err := e.parse(label); err != nil {
		return nil, e.parseError(errors.PhaseEncode, label, err)
	}
	return String.Encode(mem, label)
}

func (e stringEnum[E]) Decode(arr arrow.Array) (E, error) {
	var zero E
	label, err := String.Decode(arr)
	if err != nil {
		if errors.KindOf(err) == errors.KindTypeMismatch {
			return zero, typeMismatch[E](arr)
		}
		return zero, err
	}
	v, err := e.parse(label)
	if err != nil {
		return zero, e.parseError(errors.PhaseDecode, label, err)
	}
	return v, nil
}

func (e stringEnum[E]) parseError(phase errors.Phase, label string, cause error) error {
	if errors.KindOf(cause) == errors.KindParse {
		return cause
	}
	pe := errors.Parse(phase, label, goTypeName[E]())
	pe.Cause = cause
	return pe
}
