package domain

import (
	"errors"
	"fmt"
	"log/slog"
)

// Kind classifies every failure a caller can observe.
type Kind string

const (
	KindMissingCredential   Kind = "MissingCredential"
	KindMissingArgument     Kind = "MissingArgument"
	KindInvalidArgument     Kind = "InvalidArgument"
	KindUnknownOperation    Kind = "UnknownOperation"
	KindUpstreamError       Kind = "UpstreamError"
	KindUpstreamUnavailable Kind = "UpstreamUnavailable"
	KindInternalError       Kind = "InternalError"
)

// Sentinel values for errors.Is checks. Only Kind is compared.
var (
	ErrMissingCredential   = &Error{Kind: KindMissingCredential}
	ErrMissingArgument     = &Error{Kind: KindMissingArgument}
	ErrInvalidArgument     = &Error{Kind: KindInvalidArgument}
	ErrUnknownOperation    = &Error{Kind: KindUnknownOperation}
	ErrUpstream            = &Error{Kind: KindUpstreamError}
	ErrUpstreamUnavailable = &Error{Kind: KindUpstreamUnavailable}
	ErrInternal            = &Error{Kind: KindInternalError}
)

// Error is the single error type returned by the dispatcher and the upstream
// client.
type Error struct {
	Kind Kind
	// Op is the operation name, when known.
	Op string
	// Field names the offending argument for MissingArgument and InvalidArgument.
	Field string
	// StatusCode and Body carry the upstream response for UpstreamError.
	StatusCode int
	Body       string
	// Timeout marks an UpstreamUnavailable caused by the call deadline.
	Timeout bool
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message())
}

// Message is the human readable part of the error, without the kind prefix.
func (e *Error) Message() string {
	switch e.Kind {
	case KindMissingCredential:
		return "IntakeQ API key is required (pass api_key or configure INTAKEQ_API_KEY)"
	case KindMissingArgument:
		return fmt.Sprintf("missing required argument %q", e.Field)
	case KindInvalidArgument:
		if e.Err != nil {
			return fmt.Sprintf("invalid value for argument %q: %v", e.Field, e.Err)
		}
		return fmt.Sprintf("invalid value for argument %q", e.Field)
	case KindUnknownOperation:
		return fmt.Sprintf("unknown operation %q", e.Op)
	case KindUpstreamError:
		return fmt.Sprintf("IntakeQ API returned HTTP %d: %s", e.StatusCode, e.Body)
	case KindUpstreamUnavailable:
		if e.Timeout {
			return "IntakeQ API request timed out"
		}
		if e.Err != nil {
			return fmt.Sprintf("IntakeQ API unreachable: %v", e.Err)
		}
		return "IntakeQ API unreachable"
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "internal error"
}

func (e *Error) Unwrap() error { return e.Err }

// LogValue implements slog.LogValuer. The upstream body may hold client
// records, so only its length is logged.
func (e *Error) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("kind", string(e.Kind))}
	if e.Op != "" {
		attrs = append(attrs, slog.String("op", e.Op))
	}
	if e.Field != "" {
		attrs = append(attrs, slog.String("field", e.Field))
	}
	if e.Kind == KindUpstreamError {
		attrs = append(attrs, slog.Int("status_code", e.StatusCode), slog.Int("body_bytes", len(e.Body)))
	}
	if e.Timeout {
		attrs = append(attrs, slog.Bool("timeout", true))
	}
	if e.Err != nil {
		attrs = append(attrs, slog.String("cause", e.Err.Error()))
	}
	return slog.GroupValue(attrs...)
}

// Is matches any *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// KindOf returns the Kind of err, or KindInternalError when err is not an *Error.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternalError
}

// AsError returns err as an *Error, wrapping anything unclassified as
// InternalError.
func AsError(err error) *Error {
	var de *Error
	if errors.As(err, &de) {
		return de
	}
	return &Error{Kind: KindInternalError, Err: err}
}

func MissingCredential() *Error { return &Error{Kind: KindMissingCredential} }

func MissingArgument(field string) *Error {
	return &Error{Kind: KindMissingArgument, Field: field}
}

func InvalidArgument(field string, err error) *Error {
	return &Error{Kind: KindInvalidArgument, Field: field, Err: err}
}

func UnknownOperation(name string) *Error {
	return &Error{Kind: KindUnknownOperation, Op: name}
}

func UpstreamError(status int, body string) *Error {
	return &Error{Kind: KindUpstreamError, StatusCode: status, Body: body}
}

func UpstreamUnavailable(err error, timeout bool) *Error {
	return &Error{Kind: KindUpstreamUnavailable, Err: err, Timeout: timeout}
}

func InternalError(err error) *Error {
	return &Error{Kind: KindInternalError, Err: err}
}
