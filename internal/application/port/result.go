package port

import "fmt"

// ErrorKind classifies a failed call to an external service
type ErrorKind string

const (
	KindInvalidInput ErrorKind = "INVALID_INPUT"
	KindTimeout      ErrorKind = "TIMEOUT"
	KindRateLimited  ErrorKind = "RATE_LIMITED"
	KindUnparseable  ErrorKind = "UNPARSEABLE"
	KindUpstream     ErrorKind = "UPSTREAM"
	KindEmpty        ErrorKind = "EMPTY"
)

// Result is the outcome of a boundary call: either a value or an error kind
// with a message.
type Result[T any] struct {
	value   T
	kind    ErrorKind
	message string
	ok      bool
}

// Ok wraps a successful value
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v, ok: true}
}

// Err builds a failed result
func Err[T any](kind ErrorKind, format string, args ...any) Result[T] {
	return Result[T]{kind: kind, message: fmt.Sprintf(format, args...)}
}

// Partial builds a failed result that still carries what the call produced,
// such as model output that could not be decoded
func Partial[T any](v T, kind ErrorKind, format string, args ...any) Result[T] {
	return Result[T]{value: v, kind: kind, message: fmt.Sprintf(format, args...)}
}

// IsOk reports whether the call succeeded
func (r Result[T]) IsOk() bool { return r.ok }

// Value returns the wrapped value; it is the zero value on failure unless
// the result was built with Partial
func (r Result[T]) Value() T { return r.value }

// Kind returns the error kind; it is empty on success
func (r Result[T]) Kind() ErrorKind { return r.kind }

// Message returns the error message; it is empty on success
func (r Result[T]) Message() string { return r.message }

// Unwrap converts the result into Go's value/error pair
func (r Result[T]) Unwrap() (T, error) {
	if r.ok {
		return r.value, nil
	}
	return r.value, &BoundaryError{Kind: r.kind, Message: r.message}
}

// BoundaryError is the error form of a failed Result
type BoundaryError struct {
	Kind    ErrorKind
	Message string
}

func (e *BoundaryError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}
