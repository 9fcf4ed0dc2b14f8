// Package errors provides structured error types for the wasm-programs library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the offending value, a detail message and an optional cause.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindUnknownTag).
//		Value(tag).
//		Detail("tag 0x%02x is not assigned", tag).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.TypeMismatch(errors.PhaseDecode, "integer", "text")
//	err := errors.NotFound(errors.PhaseStorage, key)
//
// Kind sentinels (ErrNotFound, ErrUnknownTag, ...) match any error of the same
// kind regardless of phase:
//
//	if errors.Is(err, errors.ErrNotFound) { ... }
package errors
