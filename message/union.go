package message

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/VanDung-dev/arrow-message/errors"
)

// MaxUnionFields is the number of variants a single union can declare.
const MaxUnionFields = int(arrow.MaxUnionTypeCode) + 1

// MakeUnionFields builds the descriptor of a composite value: a dense union
// with one variant per field, in the given order, using type codes 0..n-1.
// The order is the contract between encoder and decoder.
//
// It panics when given more than MaxUnionFields fields.
func MakeUnionFields(name string, fields []arrow.Field) arrow.Field {
	if len(fields) > MaxUnionFields {
		panic(fmt.Sprintf("message: union %q declares %d fields (max %d)", name, len(fields), MaxUnionFields))
	}

	children := make([]arrow.Field, len(fields))
	copy(children, fields)

	codes := make([]arrow.UnionTypeCode, len(fields))
	for i := range codes {
		codes[i] = arrow.UnionTypeCode(i)
	}

	return arrow.Field{Name: name, Type: arrow.DenseUnionOf(children, codes)}
}

// UnionFields returns the union type of a composite descriptor.
func UnionFields(field arrow.Field) (*arrow.DenseUnionType, error) {
	ut, ok := field.Type.(*arrow.DenseUnionType)
	if !ok {
		return nil, errors.New(errors.PhaseSchema, errors.KindTypeMismatch).
			Path(field.Name).
			ArrowType(field.Type.String()).
			Detail("expected a dense union").
			Build()
	}
	return ut, nil
}

// MakeUnionArray packs one encoded array per field into a single dense union
// of len(children) rows: row i selects child i at offset 0. Children must
// match the schema's variants in count, order and type, and hold at least
// one row each.
//
// MakeUnionArray takes ownership of children and releases them, on success
// and on failure alike.
func MakeUnionArray(mem memory.Allocator, schema arrow.Field, children []arrow.Array) (arrow.Array, error) {
	defer releaseAll(children)

	ut, err := UnionFields(schema)
	if err != nil {
		return nil, errors.SchemaMismatch(errors.PhaseEncode, "%s is not a union schema", schema.Type)
	}

	fields := ut.Fields()
	if err := checkUnionShape(schema.Name, fields, ut.TypeCodes()); err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errors.SchemaMismatch(errors.PhaseEncode, "union %q declares no fields", schema.Name)
	}
	if len(children) != len(fields) {
		return nil, errors.SchemaMismatch(errors.PhaseEncode,
			"union %q expects %d children, got %d", schema.Name, len(fields), len(children))
	}
	for i, child := range children {
		if err := checkChild(fields[i], child); err != nil {
			return nil, err
		}
	}

	codes := ut.TypeCodes()
	typeIDs := make([]int8, len(fields))
	for i := range typeIDs {
		typeIDs[i] = int8(codes[i])
	}
	offsets := make([]int32, len(fields))

	return newDenseUnion(allocator(mem), ut, children, typeIDs, offsets), nil
}

// FieldEncoder encodes one named field of a composite value.
type FieldEncoder struct {
	Name   string
	encode func(mem memory.Allocator) (arrow.Array, error)
}

// EncodeField defers encoding v with codec until PackStruct runs.
func EncodeField[T any](name string, codec Codec[T], v T) FieldEncoder {
	return FieldEncoder{
		Name: name,
		encode: func(mem memory.Allocator) (arrow.Array, error) {
			return codec.Encode(mem, v)
		},
	}
}

// PackStruct encodes fields in order and packs them with MakeUnionArray. The
// first failing field aborts the whole value; nothing partially built is
// returned.
func PackStruct(mem memory.Allocator, schema arrow.Field, fields ...FieldEncoder) (arrow.Array, error) {
	ut, err := UnionFields(schema)
	if err != nil {
		return nil, errors.SchemaMismatch(errors.PhaseEncode, "%s is not a union schema", schema.Type)
	}
	declared := ut.Fields()
	if err := checkUnionShape(schema.Name, declared, ut.TypeCodes()); err != nil {
		return nil, err
	}
	if len(fields) != len(declared) {
		return nil, errors.SchemaMismatch(errors.PhaseEncode,
			"union %q expects %d fields, got %d", schema.Name, len(declared), len(fields))
	}

	children := make([]arrow.Array, 0, len(fields))
	for i, f := range fields {
		if f.Name != declared[i].Name {
			releaseAll(children)
			return nil, errors.New(errors.PhaseEncode, errors.KindSchemaMismatch).
				Path(f.Name).
				Detail("field %d is declared as %q", i, declared[i].Name).
				Build()
		}
		arr, err := f.encode(mem)
		if err != nil {
			releaseAll(children)
			return nil, errors.WithPath(err, f.Name)
		}
		children = append(children, arr)
	}
	return MakeUnionArray(mem, schema, children)
}

// MakeVariantArray packs a one-row union whose row selects the variant with
// the given type code; the other variants are left empty. It takes ownership
// of child.
func MakeVariantArray(mem memory.Allocator, schema arrow.Field, code arrow.UnionTypeCode, child arrow.Array) (arrow.Array, error) {
	if child != nil {
		defer child.Release()
	}

	ut, err := UnionFields(schema)
	if err != nil {
		return nil, errors.SchemaMismatch(errors.PhaseEncode, "%s is not a union schema", schema.Type)
	}
	if err := checkUnionShape(schema.Name, ut.Fields(), ut.TypeCodes()); err != nil {
		return nil, err
	}
	id := childID(ut, code)
	if id < 0 {
		return nil, errors.SchemaMismatch(errors.PhaseEncode, "union %q has no variant with type code %d", schema.Name, code)
	}

	fields := ut.Fields()
	if err := checkChild(fields[id], child); err != nil {
		return nil, err
	}

	mem = allocator(mem)
	children := make([]arrow.Array, len(fields))
	for i, f := range fields {
		if i == id {
			child.Retain()
			children[i] = child
			continue
		}
		b := array.NewBuilder(mem, f.Type)
		children[i] = b.NewArray()
		b.Release()
	}
	defer releaseAll(children)

	return newDenseUnion(mem, ut, children, []int8{int8(code)}, []int32{0}), nil
}

// Slot locates one variant inside an unpacked union.
type Slot struct {
	// Index of the variant in the union's declared children.
	Index    int
	TypeCode arrow.UnionTypeCode
	// Offset of the row's value inside the child.
	Offset int
}

// ChildMap maps variant names to their slot. It only contains variants that
// some row of the union selects.
type ChildMap map[string]Slot

// UnpackUnion splits a dense union into a name lookup and its declared
// children. The children are owned by arr and must not be released; they
// stay valid while arr is.
//
// UnpackUnion does not descend into children: each one is interpreted by the
// codec that ExtractUnionData is given for it.
func UnpackUnion(arr arrow.Array) (ChildMap, []arrow.Array, error) {
	du, err := denseUnion(arr)
	if err != nil {
		return nil, nil, err
	}

	fields := du.UnionType().Fields()
	children := make([]arrow.Array, du.NumFields())
	for i := range children {
		children[i] = du.Field(i)
	}

	m := make(ChildMap, du.Len())
	for row := 0; row < du.Len(); row++ {
		slot, err := rowSlot(du, row)
		if err != nil {
			return nil, nil, err
		}
		name := fields[slot.Index].Name
		if _, dup := m[name]; dup {
			return nil, nil, errors.New(errors.PhaseDecode, errors.KindSchemaMismatch).
				Path(name).
				Detail("variant selected by more than one row").
				Build()
		}
		m[name] = slot
	}
	return m, children, nil
}

// ExtractUnionData decodes the field called name from an unpacked union.
// Errors from codec keep their kind; name is prepended to their path.
func ExtractUnionData[T any](name string, m ChildMap, children []arrow.Array, codec Codec[T]) (T, error) {
	var zero T

	slot, ok := m[name]
	if !ok {
		return zero, errors.FieldNotFound(errors.PhaseDecode, name)
	}
	if slot.Index < 0 || slot.Index >= len(children) {
		return zero, errors.New(errors.PhaseDecode, errors.KindSchemaMismatch).
			Path(name).
			Detail("slot %d out of range (%d children)", slot.Index, len(children)).
			Build()
	}

	child := children[slot.Index]
	if slot.Offset > 0 {
		child = array.NewSlice(child, int64(slot.Offset), int64(child.Len()))
		defer child.Release()
	}

	v, err := codec.Decode(child)
	if err != nil {
		return zero, errors.WithPath(err, name)
	}
	return v, nil
}

// Variant is the active alternative of a one-row union.
type Variant struct {
	Name     string
	TypeCode arrow.UnionTypeCode
	// Values is the selected child from the row's offset on. The caller
	// releases it.
	Values arrow.Array
}

// Release releases the variant's values.
func (v Variant) Release() {
	if v.Values != nil {
		v.Values.Release()
	}
}

// UnpackVariant returns the variant selected by the only row of arr.
func UnpackVariant(arr arrow.Array) (Variant, error) {
	du, err := denseUnion(arr)
	if err != nil {
		return Variant{}, err
	}
	if du.Len() != 1 {
		return Variant{}, errors.SchemaMismatch(errors.PhaseDecode, "variant union holds %d rows, expected 1", du.Len())
	}

	slot, err := rowSlot(du, 0)
	if err != nil {
		return Variant{}, err
	}
	child := du.Field(slot.Index)
	return Variant{
		Name:     du.UnionType().Fields()[slot.Index].Name,
		TypeCode: slot.TypeCode,
		Values:   array.NewSlice(child, int64(slot.Offset), int64(child.Len())),
	}, nil
}

func denseUnion(arr arrow.Array) (*array.DenseUnion, error) {
	du, ok := arr.(*array.DenseUnion)
	if !ok {
		return nil, errors.New(errors.PhaseDecode, errors.KindTypeMismatch).
			ArrowType(arrowTypeName(arr)).
			Detail("expected a dense union").
			Build()
	}
	return du, nil
}

// rowSlot validates the type code and offset of one row.
func rowSlot(du *array.DenseUnion, row int) (Slot, error) {
	code := du.TypeCode(row)
	id := childID(du.UnionType(), code)
	if id < 0 {
		return Slot{}, errors.New(errors.PhaseDecode, errors.KindTypeMismatch).
			Value(code).
			Detail("row %d has undeclared type code %d", row, code).
			Build()
	}

	off := int(du.ValueOffset(row))
	if n := du.Field(id).Len(); off < 0 || off >= n {
		return Slot{}, errors.New(errors.PhaseDecode, errors.KindSchemaMismatch).
			Path(du.UnionType().Fields()[id].Name).
			Detail("row %d offset %d out of bounds (length %d)", row, off, n).
			Build()
	}
	return Slot{Index: id, TypeCode: code, Offset: off}, nil
}

func childID(ut arrow.UnionType, code arrow.UnionTypeCode) int {
	if code < 0 {
		return -1
	}
	ids := ut.ChildIDs()
	if int(code) >= len(ids) {
		return -1
	}
	return ids[code]
}

// checkUnionShape rejects unions that MakeUnionFields could not have built:
// more than MaxUnionFields variants, or a type code used twice.
func checkUnionShape(name string, fields []arrow.Field, codes []arrow.UnionTypeCode) error {
	if len(fields) > MaxUnionFields {
		return errors.SchemaMismatch(errors.PhaseEncode,
			"union %q declares %d fields (max %d)", name, len(fields), MaxUnionFields)
	}
	if len(codes) != len(fields) {
		return errors.SchemaMismatch(errors.PhaseEncode,
			"union %q declares %d type codes for %d fields", name, len(codes), len(fields))
	}
	seen := make(map[arrow.UnionTypeCode]struct{}, len(codes))
	for i, c := range codes {
		if _, dup := seen[c]; dup {
			return errors.New(errors.PhaseEncode, errors.KindSchemaMismatch).
				Path(fields[i].Name).
				Detail("type code %d used twice in union %q", c, name).
				Build()
		}
		seen[c] = struct{}{}
	}
	return nil
}

func checkChild(field arrow.Field, child arrow.Array) error {
	switch {
	case child == nil:
		return errors.New(errors.PhaseEncode, errors.KindSchemaMismatch).
			Path(field.Name).
			Detail("missing child array").
			Build()
	case !arrow.TypeEqual(child.DataType(), field.Type):
		return errors.New(errors.PhaseEncode, errors.KindSchemaMismatch).
			Path(field.Name).
			ArrowType(child.DataType().String()).
			Detail("expected %s", field.Type).
			Build()
	case child.Len() == 0:
		return errors.New(errors.PhaseEncode, errors.KindSchemaMismatch).
			Path(field.Name).
			Detail("child array is empty").
			Build()
	}
	return nil
}

func newDenseUnion(mem memory.Allocator, ut *arrow.DenseUnionType, children []arrow.Array, typeIDs []int8, offsets []int32) *array.DenseUnion {
	ids := newBuffer(mem, arrow.Int8Traits.CastToBytes(typeIDs))
	defer ids.Release()
	offs := newBuffer(mem, arrow.Int32Traits.CastToBytes(offsets))
	defer offs.Release()

	return array.NewDenseUnion(ut, len(typeIDs), children, ids, offs, 0)
}

func newBuffer(mem memory.Allocator, b []byte) *memory.Buffer {
	buf := memory.NewResizableBuffer(mem)
	buf.Resize(len(b))
	copy(buf.Bytes(), b)
	return buf
}

func releaseAll(arrs []arrow.Array) {
	for _, a := range arrs {
		if a != nil {
			a.Release()
		}
	}
}
