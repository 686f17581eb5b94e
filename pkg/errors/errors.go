package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	// CodeValidation covers every "bad request" outcome: malformed input,
	// inconsistent order totals, insufficient stock and forbidden status reverts.
	CodeValidation   Code = "VALIDATION_ERROR"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeForbidden    Code = "FORBIDDEN"
	CodeNotFound     Code = "NOT_FOUND"
	CodeConflict     Code = "CONFLICT"
	CodeIdempotency  Code = "IDEMPOTENCY_KEY_REUSED"
	CodeRateLimit    Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal     Code = "INTERNAL_ERROR"
	CodeDependency   Code = "DEPENDENCY_ERROR"
)

// Metadata is how a code surfaces over HTTP. PublicMessage replaces the internal
// message for codes whose messages may leak implementation detail.
type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
}

func meta(status int, public string, retryable, details bool) Metadata {
	return Metadata{HTTPStatus: status, Retryable: retryable, PublicMessage: public, DetailsAllowed: details}
}

var metadataByCode = map[Code]Metadata{
	CodeValidation:   meta(http.StatusBadRequest, "validation failed", false, true),
	CodeUnauthorized: meta(http.StatusUnauthorized, "authentication required", false, false),
	CodeForbidden:    meta(http.StatusForbidden, "access denied", false, false),
	CodeNotFound:     meta(http.StatusNotFound, "resource not found", false, false),
	CodeConflict:     meta(http.StatusConflict, "conflict detected", false, false),
	CodeIdempotency:  meta(http.StatusConflict, "idempotency key reused", false, true),
	CodeRateLimit:    meta(http.StatusTooManyRequests, "rate limit exceeded", true, false),
	CodeInternal:     meta(http.StatusInternalServerError, "internal server error", true, false),
	CodeDependency:   meta(http.StatusServiceUnavailable, "dependency unavailable", true, true),
}

// MetadataFor falls back to CodeInternal for unknown codes.
func MetadataFor(code Code) Metadata {
	if m, ok := metadataByCode[code]; ok {
		return m
	}
	return metadataByCode[CodeInternal]
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

// Error is the typed error every service returns. The cause is kept for logs and
// never rendered to clients.
func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

// Newf is New with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

// Is matches another *Error with the same code, so errors.Is works against
// sentinels such as New(CodeNotFound, "").
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e != nil && t != nil && e.code == t.code
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// IsCode reports whether err carries the given typed code anywhere in its chain.
func IsCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.code == code
}

// StatusFor resolves the HTTP status for any error; untyped errors are internal.
func StatusFor(err error) int {
	if typed := As(err); typed != nil {
		return MetadataFor(typed.code).HTTPStatus
	}
	return MetadataFor(CodeInternal).HTTPStatus
}
