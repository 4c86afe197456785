// Package errors provides structured error types for the arrow-message codec.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). Every codec failure is one of four kinds:
//   - KindParse: a leaf value's textual form is not recognized
//   - KindTypeMismatch: an array's physical type is not the one a decoder expects
//   - KindSchemaMismatch: child count, order or row layout disagrees with the schema
//   - KindFieldNotFound: a requested field is absent from an unpacked union
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindTypeMismatch).
//		Path("metadata", "width").
//		ArrowType("utf8").
//		GoType("uint32").
//		Build()
//
// All errors support errors.Is against the Err* sentinels, which match any
// error of the same kind.
package errors
