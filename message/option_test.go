package message

import (
	"fmt"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VanDung-dev/arrow-message/errors"
)

type color int

const (
	red color = iota
	green
	blue
)

func (c color) String() string {
	switch c {
	case red:
		return "red"
	case green:
		return "green"
	case blue:
		return "blue"
	default:
		return fmt.Sprintf("color(%d)", int(c))
	}
}

func parseColor(s string) (color, error) {
	switch s {
	case "red":
		return red, nil
	case "green":
		return green, nil
	case "blue":
		return blue, nil
	}
	return 0, errors.Parse(errors.PhaseDecode, s, "color")
}

var colorCodec = StringEnum(color.String, parseColor)

func TestOptionField(t *testing.T) {
	f := Option(Uint32).Field("width")
	assert.Equal(t, "width", f.Name)
	assert.True(t, f.Nullable)

	ut, err := UnionFields(f)
	require.NoError(t, err)
	require.Len(t, ut.Fields(), 2)
	assert.Equal(t, "none", ut.Fields()[0].Name)
	assert.Equal(t, arrow.NULL, ut.Fields()[0].Type.ID())
	assert.Equal(t, "some", ut.Fields()[1].Name)
	assert.True(t, arrow.TypeEqual(arrow.PrimitiveTypes.Uint32, ut.Fields()[1].Type))
	assert.Equal(t, []arrow.UnionTypeCode{NoneCode, SomeCode}, ut.TypeCodes())
}

func TestOptionRoundTrip(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	name := "example"
	got := roundTrip(t, mem, Option(String), &name)
	require.NotNil(t, got)
	assert.Equal(t, "example", *got)
	assert.NotSame(t, &name, got)

	assert.Nil(t, roundTrip(t, mem, Option(String), nil))

	p := &point{X: 1, Y: 2, Label: strPtr("nested")}
	assert.Equal(t, p, roundTrip(t, mem, Option[point](pointCodec{}), p))
	assert.Nil(t, roundTrip(t, mem, Option[point](pointCodec{}), nil))

	inner := uint32(7)
	outer := &inner
	twice := roundTrip(t, mem, Option(Option(Uint32)), &outer)
	require.NotNil(t, twice)
	require.NotNil(t, *twice)
	assert.Equal(t, uint32(7), **twice)
}

func TestOptionLayout(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	none, err := Option(String).Encode(mem, nil)
	require.NoError(t, err)
	defer none.Release()

	du := none.(*array.DenseUnion)
	require.Equal(t, 1, du.Len())
	assert.Equal(t, NoneCode, du.TypeCode(0))
	assert.Equal(t, 1, du.Field(0).Len())
	assert.Equal(t, 0, du.Field(1).Len())
	assert.NoError(t, du.ValidateFull())

	v := "x"
	some, err := Option(String).Encode(mem, &v)
	require.NoError(t, err)
	defer some.Release()

	du = some.(*array.DenseUnion)
	require.Equal(t, 1, du.Len())
	assert.Equal(t, SomeCode, du.TypeCode(0))
	assert.Equal(t, 0, du.Field(0).Len())
	assert.Equal(t, 1, du.Field(1).Len())
	assert.NoError(t, du.ValidateFull())
}

func TestOptionDecodeTypeMismatch(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	bare, err := String.Encode(mem, "bare")
	require.NoError(t, err)
	defer bare.Release()

	_, err = Option(String).Decode(bare)
	assert.ErrorIs(t, err, errors.ErrTypeMismatch)

	v := int32(3)
	wrongInner, err := Option(Int32).Encode(mem, &v)
	require.NoError(t, err)
	defer wrongInner.Release()

	_, err = Option(String).Decode(wrongInner)
	assert.ErrorIs(t, err, errors.ErrTypeMismatch)

	// Same shape, but the present variant carries type code 5.
	dt := arrow.DenseUnionOf([]arrow.Field{
		{Name: "none", Type: arrow.Null, Nullable: true},
		{Name: "some", Type: arrow.BinaryTypes.String},
	}, []arrow.UnionTypeCode{0, 5})
	bare.Retain() // consumed by MakeVariantArray
	odd, err := MakeVariantArray(mem, arrow.Field{Name: "odd", Type: dt}, 5, bare)
	require.NoError(t, err)
	defer odd.Release()

	_, err = Option(String).Decode(odd)
	assert.ErrorIs(t, err, errors.ErrTypeMismatch)
}

func TestStringEnum(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	for _, c := range []color{red, green, blue} {
		assert.Equal(t, c, roundTrip(t, mem, colorCodec, c))
	}

	assert.True(t, colorCodec.Field("c").Equal(String.Field("c")))

	label, err := String.Encode(mem, "purple")
	require.NoError(t, err)
	defer label.Release()

	_, err = colorCodec.Decode(label)
	assert.ErrorIs(t, err, errors.ErrParse)

	_, err = colorCodec.Encode(mem, color(9))
	assert.ErrorIs(t, err, errors.ErrParse)

	num, err := Int32.Encode(mem, 1)
	require.NoError(t, err)
	defer num.Release()

	_, err = colorCodec.Decode(num)
	assert.ErrorIs(t, err, errors.ErrTypeMismatch)
}

func TestStringEnumWrapsForeignParseErrors(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	strict := StringEnum(color.String, func(s string) (color, error) {
		return 0, fmt.Errorf("no colors today: %s", s)
	})

	label, err := String.Encode(mem, "red")
	require.NoError(t, err)
	defer label.Release()

	_, err = strict.Decode(label)
	assert.ErrorIs(t, err, errors.ErrParse)
	assert.Contains(t, err.Error(), "no colors today")
}

// shape is a sum type: exactly one of its variants is set.
type shape struct {
	Circle *float64
	Square *int32
	Named  *color
}

var shapeSchema = MakeUnionFields("shape", []arrow.Field{
	Float64.Field("circle"),
	Int32.Field("square"),
	colorCodec.Field("named"),
})

func encodeShape(mem memory.Allocator, s shape) (arrow.Array, error) {
	var (
		child arrow.Array
		code  arrow.UnionTypeCode
		err   error
	)
	switch {
	case s.Circle != nil:
		child, err = Float64.Encode(mem, *s.Circle)
	case s.Square != nil:
		code = 1
		child, err = Int32.Encode(mem, *s.Square)
	case s.Named != nil:
		code = 2
		child, err = colorCodec.Encode(mem, *s.Named)
	default:
		return nil, errors.SchemaMismatch(errors.PhaseEncode, "empty shape")
	}
	if err != nil {
		return nil, err
	}
	return MakeVariantArray(mem, shapeSchema, code, child)
}

func decodeShape(arr arrow.Array) (shape, error) {
	v, err := UnpackVariant(arr)
	if err != nil {
		return shape{}, err
	}
	defer v.Release()

	var s shape
	switch v.Name {
	case "circle":
		r, err := Float64.Decode(v.Values)
		s.Circle = &r
		return s, err
	case "square":
		n, err := Int32.Decode(v.Values)
		s.Square = &n
		return s, err
	case "named":
		c, err := colorCodec.Decode(v.Values)
		s.Named = &c
		return s, err
	}
	return shape{}, errors.FieldNotFound(errors.PhaseDecode, v.Name)
}

func TestVariantRoundTrip(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	r, n, c := 1.5, int32(4), blue
	for _, in := range []shape{{Circle: &r}, {Square: &n}, {Named: &c}} {
		arr, err := encodeShape(mem, in)
		require.NoError(t, err)

		du := arr.(*array.DenseUnion)
		assert.Equal(t, 1, du.Len())
		assert.NoError(t, du.ValidateFull())

		got, err := decodeShape(arr)
		arr.Release()
		require.NoError(t, err)
		assert.Equal(t, in, got)
	}
}

func TestMakeVariantArrayErrors(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	child, err := Int32.Encode(mem, 1)
	require.NoError(t, err)
	_, err = MakeVariantArray(mem, shapeSchema, 0, child)
	assert.ErrorIs(t, err, errors.ErrSchemaMismatch)

	child, err = Int32.Encode(mem, 1)
	require.NoError(t, err)
	_, err = MakeVariantArray(mem, shapeSchema, 9, child)
	assert.ErrorIs(t, err, errors.ErrSchemaMismatch)

	_, err = MakeVariantArray(mem, shapeSchema, 1, nil)
	assert.ErrorIs(t, err, errors.ErrSchemaMismatch)

	arr, err := pointCodec{}.Encode(mem, point{})
	require.NoError(t, err)
	defer arr.Release()

	_, err = UnpackVariant(arr)
	assert.ErrorIs(t, err, errors.ErrSchemaMismatch)
}

func TestOptionDecodeRejectsSwappedCodes(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	// Option layout with the codes flipped: 0 selects "some", 1 selects "none".
	dt := arrow.DenseUnionOf([]arrow.Field{
		{Name: "none", Type: arrow.Null, Nullable: true},
		{Name: "some", Type: arrow.PrimitiveTypes.Uint32},
	}, []arrow.UnionTypeCode{1, 0})

	child, err := Uint32.Encode(mem, 7)
	require.NoError(t, err)
	arr, err := MakeVariantArray(mem, arrow.Field{Name: "flipped", Type: dt, Nullable: true}, 0, child)
	require.NoError(t, err)
	defer arr.Release()

	got, err := Option(Uint32).Decode(arr)
	assert.ErrorIs(t, err, errors.ErrTypeMismatch)
	assert.Nil(t, got)
}

func TestStringEnumSentinelParseError(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	sentinel := StringEnum(color.String, func(string) (color, error) {
		return 0, errors.ErrParse
	})
	schema := MakeUnionFields("swatch", []arrow.Field{sentinel.Field("label")})

	for range 2 {
		arr, err := PackStruct(mem, schema, EncodeField("label", String, "red"))
		require.NoError(t, err)

		fields, children, err := UnpackUnion(arr)
		require.NoError(t, err)
		_, err = ExtractUnionData("label", fields, children, sentinel)
		arr.Release()
		require.ErrorIs(t, err, errors.ErrParse)

		var e *errors.Error
		require.ErrorAs(t, err, &e)
		assert.Equal(t, []string{"label"}, e.Path)
	}
	assert.Empty(t, errors.ErrParse.Path)
}
