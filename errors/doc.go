// Package errors provides structured error types for refkit.
//
// Errors are categorized by Phase (which ownership operation was running) and
// Kind (error category). The Error type carries the Go type involved, a
// detail message and an optional cause.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseCast, errors.KindTypeMismatch).
//		Type("*cache.Entry").
//		Detail("entry is not a Closer").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.TypeMismatch(errors.PhaseCast, "*cache.Entry", "io.Closer")
//	err := errors.Closed(errors.PhaseTable, "resource table")
//
// Invariant errors describe programmer errors. They are never returned; the
// ownership code bails or panics with them.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
