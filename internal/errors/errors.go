// internal/errors/errors.go
package appErrors

import (
	"errors"
	"fmt"
)

// ValidationError reports missing or inconsistent request input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidation builds a ValidationError for field.
func NewValidation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// MalformedInputError reports a recipient source that cannot be parsed.
type MalformedInputError struct {
	Source string
	Reason string
	Err    error
}

func (e *MalformedInputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed %s: %s: %v", e.Source, e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed %s: %s", e.Source, e.Reason)
}

func (e *MalformedInputError) Unwrap() error { return e.Err }

// NewMalformedInput builds a MalformedInputError.
func NewMalformedInput(source, reason string, err error) error {
	return &MalformedInputError{Source: source, Reason: reason, Err: err}
}

// TransportError wraps a rejection from the credential exchange or the send
// API. Op names the step that failed.
type TransportError struct {
	Op  string
	To  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s for %s: %v", e.Op, e.To, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// NotFoundError reports a missing entity owned by the caller.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Kind, e.ID)
}

// NewNotFound builds a NotFoundError.
func NewNotFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// ConflictError reports a uniqueness violation, e.g. a duplicate template name.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// NewConflict builds a ConflictError.
func NewConflict(message string) error {
	return &ConflictError{Message: message}
}

// AuthError reports a failed sign-in or an unusable session.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AuthError) Unwrap() error { return e.Err }

// IsValidation reports whether err should be surfaced as a client error.
func IsValidation(err error) bool {
	var ve *ValidationError
	var me *MalformedInputError
	var ce *ConflictError
	return errors.As(err, &ve) || errors.As(err, &me) || errors.As(err, &ce)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsAuth reports whether err is an AuthError.
func IsAuth(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}
