// Package errors provides structured error types for the pdfium bridge.
//
// Errors are categorized by Phase (which surface the call went through) and Kind
// (what went wrong). The Error type carries the offending handle, a detail
// message and an optional cause.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseSink, errors.KindInvalidHandle).
//		Handle(h).
//		Detail("sink already closed").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.InvalidHandle(errors.PhaseForm, "form info", h)
//	err := errors.LifecycleViolation(errors.PhaseForm, "info is bound to an active environment")
//
// Matching works with the standard library. A target with an empty Phase
// matches on Kind alone:
//
//	if errors.Is(err, errors.ErrInvalidHandle) { ... }
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
