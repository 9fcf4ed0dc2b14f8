package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseEncode  Phase = "encode"  // value to bytes
	PhaseDecode  Phase = "decode"  // bytes to value
	PhaseStorage Phase = "storage" // host storage round-trips
	PhaseInvoke  Phase = "invoke"  // cross-program calls
	PhaseHost    Phase = "host"    // host function execution
	PhaseLoad    Phase = "load"    // program loading
	PhaseConfig  Phase = "config"  // configuration parsing
)

// Kind categorizes the error
type Kind string

const (
	KindHostStore         Kind = "host_store"
	KindNotFound          Kind = "not_found"
	KindInvalidByteLength Kind = "invalid_byte_length"
	KindInvalidEncoding   Kind = "invalid_encoding"
	KindMalformedPayload  Kind = "malformed_payload"
	KindUnknownTag        Kind = "unknown_tag"
	KindTypeMismatch      Kind = "type_mismatch"
	KindHostInvoke        Kind = "host_invoke"
	KindInvalidInput      Kind = "invalid_input"
	KindInstantiation     Kind = "instantiation"
	KindLoad              Kind = "load"
)

// Kind sentinels. They carry no phase and match any error of the same kind.
var (
	ErrHostStore         = &Error{Kind: KindHostStore}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrInvalidByteLength = &Error{Kind: KindInvalidByteLength}
	ErrInvalidEncoding   = &Error{Kind: KindInvalidEncoding}
	ErrMalformedPayload  = &Error{Kind: KindMalformedPayload}
	ErrUnknownTag        = &Error{Kind: KindUnknownTag}
	ErrTypeMismatch      = &Error{Kind: KindTypeMismatch}
	ErrHostInvoke        = &Error{Kind: KindHostInvoke}
	ErrInvalidInput      = &Error{Kind: KindInvalidInput}
	ErrInstantiation     = &Error{Kind: KindInstantiation}
	ErrLoad              = &Error{Kind: KindLoad}
)

// Error is the structured error type used throughout the library
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
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
// A target without a phase matches on kind alone.
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

// Is is errors.Is from the standard library.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As is errors.As from the standard library.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
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

// TypeMismatch creates a type mismatch error for a variant that is not the one requested
func TypeMismatch(phase Phase, want, got string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Detail: fmt.Sprintf("want %s, got %s", want, got),
	}
}

// UnknownTag creates an error for an unassigned discriminant byte
func UnknownTag(phase Phase, tag byte) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnknownTag,
		Detail: fmt.Sprintf("tag 0x%02x is not assigned", tag),
		Value:  tag,
	}
}

// MalformedPayload creates an error for a payload of the wrong size
func MalformedPayload(phase Phase, what string, want, got int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindMalformedPayload,
		Detail: fmt.Sprintf("%s payload is %d bytes, want %d", what, got, want),
		Value:  got,
	}
}

// InvalidUTF8 creates an invalid encoding error for text that is not UTF-8
func InvalidUTF8(phase Phase, data []byte) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidEncoding,
		Detail: fmt.Sprintf("invalid UTF-8 sequence: %x", preview),
	}
}

// InvalidEncoding creates an invalid encoding error
func InvalidEncoding(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidEncoding,
		Detail: detail,
	}
}

// HostStore creates an error for a nonzero storage write status
func HostStore(status int32) *Error {
	return &Error{
		Phase:  PhaseStorage,
		Kind:   KindHostStore,
		Detail: fmt.Sprintf("host returned status %d", status),
		Value:  status,
	}
}

// NotFound creates a not-found error for a storage key
func NotFound(phase Phase, key []byte) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("key %q not found", key),
	}
}

// InvalidByteLength creates an error for a length the host reported or delivered
func InvalidByteLength(phase Phase, length int64) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidByteLength,
		Detail: fmt.Sprintf("invalid byte length %d", length),
		Value:  length,
	}
}

// HostInvoke creates a cross-program call error
func HostInvoke(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseInvoke,
		Kind:   KindHostInvoke,
		Detail: detail,
		Cause:  cause,
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
		Phase:  PhaseHost,
		Kind:   KindInstantiation,
		Detail: "instantiate program",
		Cause:  cause,
	}
}

// Load creates a program loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindLoad,
		Detail: detail,
		Cause:  cause,
	}
}
