package domain

import (
	"errors"
	"fmt"
)

// Kind enumerates the failure categories a generation attempt can resolve to.
// Every error crossing out of the orchestration core carries exactly one Kind.
type Kind string

const (
	KindInvalidInput     Kind = "INVALID_INPUT"
	KindTemplateNotFound Kind = "TEMPLATE_NOT_FOUND"
	KindTemplateInvalid  Kind = "TEMPLATE_INVALID"
	KindNodeKindMissing  Kind = "NODE_KIND_MISSING"
	KindAdapterNotFound  Kind = "ADAPTER_NOT_FOUND"
	KindConnectionError  Kind = "CONNECTION_ERROR"
	KindGenerationFailed Kind = "GENERATION_FAILED"
	KindTimeout          Kind = "TIMEOUT"
	KindRateLimited      Kind = "RATE_LIMITED"
)

// Error is the typed failure carried inside a generation Outcome.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// E builds a typed error from a format string.
func E(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapE builds a typed error preserving the underlying cause.
func WrapE(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf extracts the failure kind from err. Untyped errors map to
// KindGenerationFailed so no raw error crosses the API boundary unlabeled.
func KindOf(err error) Kind {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Kind
	}
	return KindGenerationFailed
}

// MessageOf returns the human-readable message for err.
func MessageOf(err error) string {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
