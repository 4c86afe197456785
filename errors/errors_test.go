package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:     PhaseDecode,
				Kind:      KindTypeMismatch,
				Path:      []string{"metadata", "width"},
				GoType:    "uint32",
				ArrowType: "utf8",
				Detail:    "cannot decode",
			},
			contains: []string{"[decode]", "type_mismatch", "metadata.width", "uint32", "utf8", "cannot decode"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseEncode,
				Kind:  KindSchemaMismatch,
			},
			contains: []string{"[encode]", "schema_mismatch"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseIPC,
				Kind:   KindSchemaMismatch,
				Detail: "bad stream",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[ipc]", "bad stream", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				assert.True(t, strings.Contains(msg, s), "error message %q does not contain %q", msg, s)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(PhaseIPC, KindSchemaMismatch, cause, "reading stream")

	assert.Same(t, cause, errors.Unwrap(err))
	assert.ErrorIs(t, err, cause)
}

func TestError_IsByKind(t *testing.T) {
	err := TypeMismatch(PhaseDecode, "string", "int32")

	assert.ErrorIs(t, err, ErrTypeMismatch)
	assert.NotErrorIs(t, err, ErrSchemaMismatch)
	assert.ErrorIs(t, err, &Error{Kind: KindTypeMismatch, Phase: PhaseDecode})
	assert.NotErrorIs(t, err, &Error{Kind: KindTypeMismatch, Phase: PhaseEncode})

	wrapped := fmt.Errorf("decoding image: %w", err)
	assert.ErrorIs(t, wrapped, ErrTypeMismatch)
	assert.Equal(t, KindTypeMismatch, KindOf(wrapped))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
}

func TestBuilder(t *testing.T) {
	err := New(PhaseDecode, KindParse).
		Path("metadata", "encoding").
		GoType("Encoding").
		Value("YUV").
		Detail("unknown label %q", "YUV").
		Build()

	assert.Equal(t, []string{"metadata", "encoding"}, err.Path)
	assert.Equal(t, "YUV", err.Value)
	assert.Contains(t, err.Error(), `unknown label "YUV"`)
}

func TestConstructors(t *testing.T) {
	p := Parse(PhaseDecode, "YUV", "Encoding")
	assert.ErrorIs(t, p, ErrParse)
	assert.Contains(t, p.Error(), `"YUV"`)

	f := FieldNotFound(PhaseDecode, "missing")
	assert.ErrorIs(t, f, ErrFieldNotFound)
	assert.Equal(t, []string{"missing"}, f.Path)

	s := SchemaMismatch(PhaseEncode, "expected %d children, got %d", 2, 3)
	assert.ErrorIs(t, s, ErrSchemaMismatch)
	assert.Equal(t, "expected 2 children, got 3", s.Detail)
}

func TestWithPath(t *testing.T) {
	err := WithPath(FieldNotFound(PhaseDecode, "width"), "metadata")
	err = WithPath(err, "image")

	var e *Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, []string{"image", "metadata", "width"}, e.Path)
	assert.ErrorIs(t, err, ErrFieldNotFound)

	plain := errors.New("plain")
	assert.Same(t, plain, WithPath(plain, "x"))
}

func TestWithPathCopies(t *testing.T) {
	base := FieldNotFound(PhaseDecode, "width")

	first := WithPath(base, "metadata")
	second := WithPath(base, "image")

	assert.Equal(t, []string{"width"}, base.Path)

	var e *Error
	require.True(t, errors.As(first, &e))
	assert.Equal(t, []string{"metadata", "width"}, e.Path)
	require.True(t, errors.As(second, &e))
	assert.Equal(t, []string{"image", "width"}, e.Path)

	// Sentinels are shared; annotating one must not leak into the next caller.
	for range 2 {
		err := WithPath(ErrParse, "label")
		require.True(t, errors.As(err, &e))
		assert.Equal(t, []string{"label"}, e.Path)
		assert.ErrorIs(t, err, ErrParse)
	}
	assert.Empty(t, ErrParse.Path)

	wrapped := fmt.Errorf("decode: %w", base)
	err := WithPath(wrapped, "metadata")
	require.True(t, errors.As(err, &e))
	assert.Equal(t, []string{"metadata", "width"}, e.Path)
	assert.ErrorIs(t, err, ErrFieldNotFound)
	assert.Contains(t, err.Error(), "width")
}
