package message

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/VanDung-dev/arrow-message/errors"
)

// Type codes of the optional union.
const (
	NoneCode arrow.UnionTypeCode = 0
	SomeCode arrow.UnionTypeCode = 1
)

type option[T any] struct {
	inner Codec[T]
}

// Option adapts inner so that a nil *T is representable. The value is stored
// as a one-row union [none: null, some: T]; inner never sees the absent case.
func Option[T any](inner Codec[T]) Codec[*T] {
	return option[T]{inner: inner}
}

func (o option[T]) Field(name string) arrow.Field {
	f := MakeUnionFields(name, []arrow.Field{
		{Name: "none", Type: arrow.Null, Nullable: true},
		o.inner.Field("some"),
	})
	f.Nullable = true
	return f
}

func (o option[T]) Encode(mem memory.Allocator, v *T) (arrow.Array, error) {
	schema := o.Field("")
	if v == nil {
		return MakeVariantArray(mem, schema, NoneCode, array.NewNull(1))
	}

	child, err := o.inner.Encode(mem, *v)
	if err != nil {
		return nil, err
	}
	return MakeVariantArray(mem, schema, SomeCode, child)
}

func (o option[T]) Decode(arr arrow.Array) (*T, error) {
	if !isOptionType(arr) {
		return nil, typeMismatch[*T](arr)
	}

	variant, err := UnpackVariant(arr)
	if err != nil {
		return nil, err
	}
	defer variant.Release()

	switch variant.TypeCode {
	case NoneCode:
		return nil, nil
	case SomeCode:
		v, err := o.inner.Decode(variant.Values)
		if err != nil {
			return nil, err
		}
		return &v, nil
	default:
		return nil, errors.New(errors.PhaseDecode, errors.KindTypeMismatch).
			GoType(goTypeName[*T]()).
			Value(variant.TypeCode).
			Detail("optional union has type code %d", variant.TypeCode).
			Build()
	}
}

// isOptionType reports whether arr has the two-variant shape written by
// Option.Encode: a null variant under NoneCode followed by the value under
// SomeCode.
func isOptionType(arr arrow.Array) bool {
	if arr == nil {
		return false
	}
	ut, ok := arr.DataType().(*arrow.DenseUnionType)
	if !ok {
		return false
	}
	fields, codes := ut.Fields(), ut.TypeCodes()
	return len(fields) == 2 && fields[0].Type.ID() == arrow.NULL &&
		codes[0] == NoneCode && codes[1] == SomeCode
}
