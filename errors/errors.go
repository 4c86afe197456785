package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseSchema Phase = "schema" // descriptor construction
	PhaseEncode Phase = "encode" // Go to Arrow
	PhaseDecode Phase = "decode" // Arrow to Go
	PhaseIPC    Phase = "ipc"    // interchange stream
)

// Kind categorizes the error
type Kind string

const (
	KindParse          Kind = "parse_error"
	KindTypeMismatch   Kind = "type_mismatch"
	KindSchemaMismatch Kind = "schema_mismatch"
	KindFieldNotFound  Kind = "field_not_found"
)

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrParse          = &Error{Kind: KindParse}
	ErrTypeMismatch   = &Error{Kind: KindTypeMismatch}
	ErrSchemaMismatch = &Error{Kind: KindSchemaMismatch}
	ErrFieldNotFound  = &Error{Kind: KindFieldNotFound}
)

// Error is the structured error returned by every codec operation
type Error struct {
	Value     any
	Cause     error
	Phase     Phase
	Kind      Kind
	GoType    string
	ArrowType string
	Detail    string
	Path      []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	if e.Phase != "" {
		b.WriteByte('[')
		b.WriteString(string(e.Phase))
		b.WriteString("] ")
	}
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.GoType != "" || e.ArrowType != "" {
		b.WriteString(": ")
		switch {
		case e.GoType != "" && e.ArrowType != "":
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
			b.WriteString(", Arrow type ")
			b.WriteString(e.ArrowType)
		case e.GoType != "":
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		default:
			b.WriteString("Arrow type ")
			b.WriteString(e.ArrowType)
		}
	}

	if e.Detail != "" {
		if e.GoType != "" || e.ArrowType != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. The kinds must agree; the
// phase only has to agree when the target sets one.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.Kind != t.Kind {
		return false
	}
	return t.Phase == "" || e.Phase == t.Phase
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// ArrowType sets the Arrow type name
func (b *Builder) ArrowType(t string) *Builder {
	b.err.ArrowType = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Parse creates a parse error for an unrecognized textual value
func Parse(phase Phase, value, goType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindParse,
		GoType: goType,
		Detail: fmt.Sprintf("invalid %s: %q", goType, value),
		Value:  value,
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, goType, arrowType string) *Error {
	return &Error{
		Phase:     phase,
		Kind:      KindTypeMismatch,
		GoType:    goType,
		ArrowType: arrowType,
	}
}

// SchemaMismatch creates a schema mismatch error
func SchemaMismatch(phase Phase, detail string, args ...any) *Error {
	return New(phase, KindSchemaMismatch).Detail(detail, args...).Build()
}

// FieldNotFound creates a missing field error
func FieldNotFound(phase Phase, fieldName string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindFieldNotFound,
		Path:   []string{fieldName},
		Detail: fmt.Sprintf("field %q not found in union", fieldName),
		Value:  fieldName,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// WithPath returns a copy of a structured error with segment prepended to
// its path. The kind is left untouched so callers still match the original
// cause. A structured error found deeper in the chain is wrapped by the copy.
// Errors of other types are returned as is.
func WithPath(err error, segment string) error {
	var e *Error
	if !stderrors.As(err, &e) {
		return err
	}
	cp := *e
	cp.Path = append([]string{segment}, e.Path...)
	if err != error(e) {
		cp.Cause = err
	}
	return &cp
}

// KindOf returns the kind of a structured error, or "" for other errors.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}
