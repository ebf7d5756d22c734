package core

import (
	"errors"
	"fmt"
)

// Kind classifies an error for transport mapping. The boundary layer maps
// kinds (plus the code for a few business rules) to HTTP statuses; nothing
// below the boundary ever sees a raw store error.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindAuthRequired
	KindForbidden
	KindRuleViolation
	KindValidation
	KindConflict
	KindInternal
)

// Code is a stable, enumerable reason code carried on every error.
type Code string

const (
	CodeNotFound          Code = "RESOURCE_NOT_FOUND"
	CodeAuthRequired      Code = "AUTH_REQUIRED"
	CodeAccessDenied      Code = "ACCESS_DENIED"
	CodeNotOwner          Code = "NOT_OWNER"
	CodePollInactive      Code = "POLL_INACTIVE"
	CodeOptionNotInPoll   Code = "OPTION_NOT_IN_POLL"
	CodeAlreadyVoted      Code = "ALREADY_VOTED"
	CodeVoteLimitExceeded Code = "VOTE_LIMIT_EXCEEDED"
	CodePollLimitExceeded Code = "POLL_LIMIT_EXCEEDED"
	CodeDuplicateTitle    Code = "DUPLICATE_POLL_TITLE"
	CodeDuplicateOption   Code = "DUPLICATE_OPTION_TEXT"
	CodeDuplicateEmail    Code = "DUPLICATE_EMAIL"
	CodeDuplicateUsername Code = "DUPLICATE_USERNAME"
	CodeValidation        Code = "VALIDATION_ERROR"
	CodeInternal          Code = "INTERNAL_ERROR"
)

type Error struct {
	Kind    Kind
	Code    Code
	Message string

	// Field names the offending field for validation errors.
	Field string

	// Wrapped unexpected cause, kept out of client responses.
	cause error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Code: CodeNotFound, Message: message}
}

func AuthRequired() *Error {
	return &Error{Kind: KindAuthRequired, Code: CodeAuthRequired, Message: "authentication required"}
}

func Denied(code Code, message string) *Error {
	return &Error{Kind: KindForbidden, Code: code, Message: message}
}

func RuleViolation(code Code, message string) *Error {
	return &Error{Kind: KindRuleViolation, Code: code, Message: message}
}

func Invalid(field, message string) *Error {
	return &Error{Kind: KindValidation, Code: CodeValidation, Field: field, Message: message}
}

func Conflict(code Code, message string) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: message}
}

// Internal wraps an unexpected store failure. The cause travels with the
// error for logging but is never serialized to clients.
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Code: CodeInternal, Message: "an unexpected error occurred", cause: cause}
}

// HasCode reports whether err is a core error carrying the given code.
func HasCode(err error, code Code) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Code == code
}
