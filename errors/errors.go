package errors

import (
	"fmt"
	"strings"
)

// Phase indicates which ownership operation produced the error
type Phase string

const (
	PhaseShare   Phase = "share"   // strong handle creation
	PhaseWeaken  Phase = "weaken"  // weak handle creation
	PhaseLock    Phase = "lock"    // weak to strong promotion
	PhaseCast    Phase = "cast"    // handle type conversion
	PhaseRelease Phase = "release" // strong or weak handle drop
	PhaseDestroy Phase = "destroy" // object teardown
	PhaseTable   Phase = "table"   // resource table operations
	PhaseConfig  Phase = "config"  // configuration loading
	PhaseStress  Phase = "stress"  // stress scenarios
)

// Kind categorizes the error
type Kind string

const (
	KindInvariant    Kind = "invariant"
	KindTypeMismatch Kind = "type_mismatch"
	KindNilHandle    Kind = "nil_handle"
	KindNotFound     Kind = "not_found"
	KindClosed       Kind = "closed"
	KindInvalidInput Kind = "invalid_input"
	KindViolation    Kind = "violation"
	KindAborted      Kind = "aborted"
)

// Error is the structured error type used throughout refkit
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Type   string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Type != "" {
		b.WriteString(" (")
		b.WriteString(e.Type)
		b.WriteByte(')')
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

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
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

// Type sets the Go type name involved
func (b *Builder) Type(t string) *Builder {
	b.err.Type = t
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

// Invariant creates an error for a violated ownership invariant.
// These are programmer errors; callers bail or panic with them.
func Invariant(phase Phase, detail string, args ...any) *Error {
	return New(phase, KindInvariant).Detail(detail, args...).Build()
}

// TypeMismatch creates an error for a conversion between unrelated types
func TypeMismatch(phase Phase, from, to string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Type:   from,
		Detail: fmt.Sprintf("cannot convert %s to %s", from, to),
	}
}

// NilHandle creates an error for an operation on an empty handle
func NilHandle(phase Phase, goType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNilHandle,
		Type:   goType,
		Detail: "handle is null",
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what string, id any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %v not found", what, id),
		Value:  id,
	}
}

// Closed creates an error for an operation on a closed component
func Closed(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindClosed,
		Detail: what + " closed",
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string, args ...any) *Error {
	return New(phase, KindInvalidInput).Detail(detail, args...).Build()
}

// Violation creates an error reporting an observed breach of a lifetime
// guarantee, such as a destroyed object seen alive.
func Violation(phase Phase, detail string, args ...any) *Error {
	return New(phase, KindViolation).Detail(detail, args...).Build()
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
