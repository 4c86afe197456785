package message

import (
	"bytes"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// leaf is implemented by codecs whose values live in a single Arrow slot and
// can therefore be used as List elements.
type leaf[T any] interface {
	Codec[T]
	dataType() arrow.DataType
	appendTo(b array.Builder, v T)
	valueAt(arr arrow.Array, i int) T
}

// scalar is a leaf codec for one native Arrow type. appendTo and valueAt are
// only called with builders and arrays of dt.
type scalar[T any] struct {
	dt     arrow.DataType
	append func(b array.Builder, v T)
	value  func(arr arrow.Array, i int) T
}

func (s scalar[T]) Field(name string) arrow.Field {
	return arrow.Field{Name: name, Type: s.dt}
}

func (s scalar[T]) Encode(mem memory.Allocator, v T) (arrow.Array, error) {
	b := array.NewBuilder(allocator(mem), s.dt)
	defer b.Release()

	s.append(b, v)
	return b.NewArray(), nil
}

func (s scalar[T]) Decode(arr arrow.Array) (T, error) {
	var zero T
	if arr == nil || !arrow.TypeEqual(arr.DataType(), s.dt) {
		return zero, typeMismatch[T](arr)
	}
	if err := singleRow(arr); err != nil {
		return zero, err
	}
	return s.value(arr, 0), nil
}

func (s scalar[T]) dataType() arrow.DataType { return s.dt }

func (s scalar[T]) appendTo(b array.Builder, v T) { s.append(b, v) }

func (s scalar[T]) valueAt(arr arrow.Array, i int) T { return s.value(arr, i) }

// Scalar codecs.
var (
	Bool Codec[bool] = scalar[bool]{
		dt:     arrow.FixedWidthTypes.Boolean,
		append: func(b array.Builder, v bool) { b.(*array.BooleanBuilder).Append(v) },
		value:  func(a arrow.Array, i int) bool { return a.(*array.Boolean).Value(i) },
	}

	Int8 Codec[int8] = scalar[int8]{
		dt:     arrow.PrimitiveTypes.Int8,
		append: func(b array.Builder, v int8) { b.(*array.Int8Builder).Append(v) },
		value:  func(a arrow.Array, i int) int8 { return a.(*array.Int8).Value(i) },
	}
	Int16 Codec[int16] = scalar[int16]{
		dt:     arrow.PrimitiveTypes.Int16,
		append: func(b array.Builder, v int16) { b.(*array.Int16Builder).Append(v) },
		value:  func(a arrow.Array, i int) int16 { return a.(*array.Int16).Value(i) },
	}
	Int32 Codec[int32] = scalar[int32]{
		dt:     arrow.PrimitiveTypes.Int32,
		append: func(b array.Builder, v int32) { b.(*array.Int32Builder).Append(v) },
		value:  func(a arrow.Array, i int) int32 { return a.(*array.Int32).Value(i) },
	}
	Int64 Codec[int64] = scalar[int64]{
		dt:     arrow.PrimitiveTypes.Int64,
		append: func(b array.Builder, v int64) { b.(*array.Int64Builder).Append(v) },
		value:  func(a arrow.Array, i int) int64 { return a.(*array.Int64).Value(i) },
	}

	Uint8 Codec[uint8] = scalar[uint8]{
		dt:     arrow.PrimitiveTypes.Uint8,
		append: func(b array.Builder, v uint8) { b.(*array.Uint8Builder).Append(v) },
		value:  func(a arrow.Array, i int) uint8 { return a.(*array.Uint8).Value(i) },
	}
	Uint16 Codec[uint16] = scalar[uint16]{
		dt:     arrow.PrimitiveTypes.Uint16,
		append: func(b array.Builder, v uint16) { b.(*array.Uint16Builder).Append(v) },
		value:  func(a arrow.Array, i int) uint16 { return a.(*array.Uint16).Value(i) },
	}
	Uint32 Codec[uint32] = scalar[uint32]{
		dt:     arrow.PrimitiveTypes.Uint32,
		append: func(b array.Builder, v uint32) { b.(*array.Uint32Builder).Append(v) },
		value:  func(a arrow.Array, i int) uint32 { return a.(*array.Uint32).Value(i) },
	}
	Uint64 Codec[uint64] = scalar[uint64]{
		dt:     arrow.PrimitiveTypes.Uint64,
		append: func(b array.Builder, v uint64) { b.(*array.Uint64Builder).Append(v) },
		value:  func(a arrow.Array, i int) uint64 { return a.(*array.Uint64).Value(i) },
	}

	Float32 Codec[float32] = scalar[float32]{
		dt:     arrow.PrimitiveTypes.Float32,
		append: func(b array.Builder, v float32) { b.(*array.Float32Builder).Append(v) },
		value:  func(a arrow.Array, i int) float32 { return a.(*array.Float32).Value(i) },
	}
	Float64 Codec[float64] = scalar[float64]{
		dt:     arrow.PrimitiveTypes.Float64,
		append: func(b array.Builder, v float64) { b.(*array.Float64Builder).Append(v) },
		value:  func(a arrow.Array, i int) float64 { return a.(*array.Float64).Value(i) },
	}

	// String values are copied out of the Arrow buffer.
	String Codec[string] = scalar[string]{
		dt:     arrow.BinaryTypes.String,
		append: func(b array.Builder, v string) { b.(*array.StringBuilder).Append(v) },
		value:  func(a arrow.Array, i int) string { return strings.Clone(a.(*array.String).Value(i)) },
	}
	// Binary stores a byte slice as one opaque value. Use Uint8s for a
	// byte array that other readers should see element by element.
	Binary Codec[[]byte] = scalar[[]byte]{
		dt:     arrow.BinaryTypes.Binary,
		append: func(b array.Builder, v []byte) { b.(*array.BinaryBuilder).Append(v) },
		value: func(a arrow.Array, i int) []byte {
			return bytes.Clone(a.(*array.Binary).Value(i))
		},
	}
)
