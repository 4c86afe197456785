package message

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/VanDung-dev/arrow-message/errors"
)

type list[T any] struct {
	elem leaf[T]
}

// ListOf returns a codec storing a slice of scalars as one List row. It
// panics if elem is not one of this package's scalar codecs.
func ListOf[T any](elem Codec[T]) Codec[[]T] {
	l, ok := elem.(leaf[T])
	if !ok {
		panic("message: ListOf requires a scalar element codec")
	}
	return list[T]{elem: l}
}

// Scalar array codecs.
var (
	Uint8s   = ListOf(Uint8)
	Uint16s  = ListOf(Uint16)
	Uint32s  = ListOf(Uint32)
	Int32s   = ListOf(Int32)
	Int64s   = ListOf(Int64)
	Float32s = ListOf(Float32)
	Float64s = ListOf(Float64)
	Strings  = ListOf(String)
)

func (l list[T]) Field(name string) arrow.Field {
	return arrow.Field{Name: name, Type: arrow.ListOf(l.elem.dataType())}
}

func (l list[T]) Encode(mem memory.Allocator, vs []T) (arrow.Array, error) {
	b := array.NewListBuilder(allocator(mem), l.elem.dataType())
	defer b.Release()

	b.Append(true)
	vb := b.ValueBuilder()
	vb.Reserve(len(vs))
	for _, v := range vs {
		l.elem.appendTo(vb, v)
	}
	return b.NewArray(), nil
}

// Decode always returns a non-nil slice, empty for an empty list.
func (l list[T]) Decode(arr arrow.Array) ([]T, error) {
	if arr == nil || !arrow.TypeEqual(arr.DataType(), arrow.ListOf(l.elem.dataType())) {
		return nil, typeMismatch[[]T](arr)
	}
	if err := singleRow(arr); err != nil {
		return nil, err
	}

	la := arr.(*array.List)
	start, end := la.ValueOffsets(0)
	values := la.ListValues()

	out := make([]T, 0, end-start)
	for j := start; j < end; j++ {
		if values.IsNull(int(j)) {
			return nil, errors.New(errors.PhaseDecode, errors.KindSchemaMismatch).
				Detail("unexpected null element at %d", j-start).
				Build()
		}
		out = append(out, l.elem.valueAt(values, int(j)))
	}
	return out, nil
}
