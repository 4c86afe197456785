package message

import (
	"github.com/apache/arrow-go/v18/arrow"

	"github.com/VanDung-dev/arrow-message/errors"
)

// CheckSchema checks that arr was encoded with the descriptor want. Union
// variants are compared one by one, in order, so an array whose fields were
// reordered fails here even though every name would still resolve.
//
// A differing physical type is a type mismatch; differing names, order,
// field count, nullability or type codes are a schema mismatch.
func CheckSchema(arr arrow.Array, want arrow.Field) error {
	if arr == nil {
		return errors.New(errors.PhaseDecode, errors.KindTypeMismatch).
			Path(want.Name).
			ArrowType("<nil>").
			Build()
	}
	return checkType(arr.DataType(), want.Type, nil)
}

func checkType(got, want arrow.DataType, path []string) error {
	wu, ok := want.(*arrow.DenseUnionType)
	if !ok {
		if !arrow.TypeEqual(got, want) {
			return errors.New(errors.PhaseDecode, errors.KindTypeMismatch).
				Path(path...).
				ArrowType(got.String()).
				Detail("expected %s", want).
				Build()
		}
		return nil
	}

	gu, ok := got.(*arrow.DenseUnionType)
	if !ok {
		return errors.New(errors.PhaseDecode, errors.KindTypeMismatch).
			Path(path...).
			ArrowType(got.String()).
			Detail("expected a dense union").
			Build()
	}

	gf, wf := gu.Fields(), wu.Fields()
	if len(gf) != len(wf) {
		return errors.New(errors.PhaseDecode, errors.KindSchemaMismatch).
			Path(path...).
			Detail("union has %d fields, expected %d", len(gf), len(wf)).
			Build()
	}

	gc, wc := gu.TypeCodes(), wu.TypeCodes()
	for i := range wf {
		p := append(path[:len(path):len(path)], wf[i].Name)
		switch {
		case gf[i].Name != wf[i].Name:
			return errors.New(errors.PhaseDecode, errors.KindSchemaMismatch).
				Path(p...).
				Detail("field %d is %q, expected %q", i, gf[i].Name, wf[i].Name).
				Build()
		case gf[i].Nullable != wf[i].Nullable:
			return errors.New(errors.PhaseDecode, errors.KindSchemaMismatch).
				Path(p...).
				Detail("nullable=%v, expected %v", gf[i].Nullable, wf[i].Nullable).
				Build()
		case gc[i] != wc[i]:
			return errors.New(errors.PhaseDecode, errors.KindSchemaMismatch).
				Path(p...).
				Detail("type code %d, expected %d", gc[i], wc[i]).
				Build()
		}
		if err := checkType(gf[i].Type, wf[i].Type, p); err != nil {
			return err
		}
	}
	return nil
}
