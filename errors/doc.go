// Package errors provides structured error types for structfmt.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: slot path, Go and field type names,
// the offending span of a format string, and the cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhasePack, errors.KindTypeMismatch).
//		Path("[2]", "[0]").
//		GoType("string").
//		Tag("int32").
//		Detail("cannot convert string to integer").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.ValueOutOfRange(errors.PhasePack, path, 300, "int8")
//	err := errors.BufferSizeMismatch(errors.PhaseUnpack, 12, 13)
//
// All errors implement the standard error interface and support errors.Is/As.
// The Err* sentinels match any error of their kind regardless of phase:
//
//	if errors.Is(err, errors.ErrValueOutOfRange) { ... }
package errors
