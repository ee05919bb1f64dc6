package errors

import (
	"fmt"
	"strings"
)

// Phase indicates which surface the failing call went through
type Phase string

const (
	PhaseInit     Phase = "init"     // bridge and engine bootstrap
	PhaseDocument Phase = "document" // document load/close
	PhaseSink     Phase = "sink"     // memory write sink
	PhaseForm     Phase = "form"     // form-fill info and environment
	PhaseSave     Phase = "save"     // save-as-copy serialization
	PhaseHost     Phase = "host"     // host module and guest calls
	PhaseLoad     Phase = "load"     // engine module loading
	PhaseConfig   Phase = "config"   // configuration loading
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidHandle      Kind = "invalid_handle"
	KindAllocation         Kind = "allocation"
	KindWriteFailure       Kind = "write_failure"
	KindUnboundDocument    Kind = "unbound_document"
	KindLifecycleViolation Kind = "lifecycle_violation"
	KindNotFound           Kind = "not_found"
	KindInvalidInput       Kind = "invalid_input"
	KindInstantiation      Kind = "instantiation"
	KindEngine             Kind = "engine"
	KindConfig             Kind = "config"
)

// Sentinel values for kind-only matching with errors.Is.
var (
	ErrInvalidHandle      = &Error{Kind: KindInvalidHandle}
	ErrAllocation         = &Error{Kind: KindAllocation}
	ErrWriteFailure       = &Error{Kind: KindWriteFailure}
	ErrUnboundDocument    = &Error{Kind: KindUnboundDocument}
	ErrLifecycleViolation = &Error{Kind: KindLifecycleViolation}
	ErrEngine             = &Error{Kind: KindEngine}
)

// Error is the structured error type used throughout the bridge
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Handle string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Handle != "" {
		b.WriteString(" on ")
		b.WriteString(e.Handle)
	}

	if e.Detail != "" {
		b.WriteString(": ")
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

// Is reports whether target matches this error.
// A target without a Phase matches any phase.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase == "" {
		return e.Kind == t.Kind
	}
	return e.Phase == t.Phase && e.Kind == t.Kind
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

// Handle records the offending handle
func (b *Builder) Handle(h fmt.Stringer) *Builder {
	if h != nil {
		b.err.Handle = h.String()
	}
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

// InvalidHandle creates an error for a null, stale or closed handle
func InvalidHandle(phase Phase, what string, h fmt.Stringer) *Error {
	e := &Error{
		Phase:  phase,
		Kind:   KindInvalidHandle,
		Detail: fmt.Sprintf("%s handle is null, stale or closed", what),
	}
	if h != nil {
		e.Handle = h.String()
	}
	return e
}

// AllocationFailed creates an allocation failure error
func AllocationFailed(phase Phase, size int, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("failed to allocate %d bytes", size),
		Value:  size,
		Cause:  cause,
	}
}

// WriteFailed creates a serialization failure caused by a rejected append
func WriteFailed(phase Phase, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindWriteFailure,
		Detail: "write block rejected during serialization",
		Cause:  cause,
	}
}

// UnboundDocument creates an error for an absent or unloaded document
func UnboundDocument(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnboundDocument,
		Detail: detail,
	}
}

// LifecycleViolation creates an error for an out-of-order state transition
func LifecycleViolation(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindLifecycleViolation,
		Detail: detail,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Engine creates an error reported by the document engine.
// code is the engine's own error code, if any.
func Engine(phase Phase, code any, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindEngine,
		Detail: detail,
		Value:  code,
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

// Instantiation creates an instantiation error
func Instantiation(cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInstantiation,
		Detail: "instantiate engine module",
		Cause:  cause,
	}
}

// Load creates a module loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidInput,
		Detail: detail,
		Cause:  cause,
	}
}

// Config creates a configuration error
func Config(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseConfig,
		Kind:   KindConfig,
		Detail: detail,
		Cause:  cause,
	}
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ""
		}
		err = u.Unwrap()
	}
	return ""
}
