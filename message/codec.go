package message

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/VanDung-dev/arrow-message/errors"
)

// Codec converts values of type T to and from Arrow arrays.
//
// Encode returns a new array owned by the caller. Decode only reads arr and
// returns a value that shares no memory with it.
type Codec[T any] interface {
	// Field describes the slot a T occupies when stored under name.
	Field(name string) arrow.Field
	Encode(mem memory.Allocator, v T) (arrow.Array, error)
	Decode(arr arrow.Array) (T, error)
}

// Message is implemented by types that describe and encode themselves.
type Message interface {
	ArrowField(name string) arrow.Field
	ToArrow(mem memory.Allocator) (arrow.Array, error)
}

// MessagePtr is the pointer side of a Message: decoding fills the receiver.
type MessagePtr[T any] interface {
	*T
	Message
	FromArrow(arr arrow.Array) error
}

// Of returns the Codec of a type implementing Message.
//
//	var ImageCodec = message.Of[Image]()
func Of[T any, PT MessagePtr[T]]() Codec[T] {
	return messageCodec[T, PT]{}
}

type messageCodec[T any, PT MessagePtr[T]] struct{}

func (messageCodec[T, PT]) Field(name string) arrow.Field {
	var zero T
	return PT(&zero).ArrowField(name)
}

func (messageCodec[T, PT]) Encode(mem memory.Allocator, v T) (arrow.Array, error) {
	return PT(&v).ToArrow(mem)
}

func (messageCodec[T, PT]) Decode(arr arrow.Array) (T, error) {
	var v T
	if err := PT(&v).FromArrow(arr); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

func allocator(mem memory.Allocator) memory.Allocator {
	if mem == nil {
		return memory.DefaultAllocator
	}
	return mem
}

func arrowTypeName(arr arrow.Array) string {
	if arr == nil {
		return "<nil>"
	}
	return arr.DataType().String()
}

func goTypeName[T any]() string {
	var zero T
	return fmt.Sprintf("%T", zero)
}

func typeMismatch[T any](arr arrow.Array) error {
	return errors.TypeMismatch(errors.PhaseDecode, goTypeName[T](), arrowTypeName(arr))
}

// singleRow checks the row layout shared by every leaf decoder.
func singleRow(arr arrow.Array) error {
	if arr.Len() != 1 {
		return errors.SchemaMismatch(errors.PhaseDecode, "expected 1 row, got %d", arr.Len())
	}
	if arr.IsNull(0) {
		return errors.SchemaMismatch(errors.PhaseDecode, "unexpected null row")
	}
	return nil
}
