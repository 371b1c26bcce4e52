package util

import (
	"errors"
	"fmt"
)

// Error codes for the ticket workflows.
const (
	CodeValidation   = "VALIDATION_FAILED"
	CodeNotATicket   = "NOT_A_TICKET"
	CodePrerequisite = "PREREQUISITE_FETCH_FAILED"
	CodeDelivery     = "DELIVERY_FAILED"
	CodeConflict     = "CONFLICT"
	CodeInternal     = "INTERNAL_ERROR"
)

// DomainError standardizes application errors. Message is safe to show to
// end users; Err carries the underlying cause for logs only.
type DomainError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, Details: details}
}

// NewValidationError flags missing or malformed user input. No mutation has
// happened when this is returned.
func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, details)
}

// NewNotATicket flags ticket operations invoked outside a ticket channel.
func NewNotATicket(channelID string) error {
	return &DomainError{
		Code:    CodeNotATicket,
		Message: "this channel is not a ticket",
		Details: map[string]any{"channel_id": channelID},
	}
}

// NewPrerequisiteFetchError flags a failed prerequisite platform call that
// aborts the surrounding workflow.
func NewPrerequisiteFetchError(stage string, err error) error {
	return &DomainError{
		Code:    CodePrerequisite,
		Message: "could not retrieve the data needed to continue",
		Details: map[string]any{"stage": stage},
		Err:     err,
	}
}

// NewDeliveryFailure wraps a best-effort delivery error. Callers log these
// and move on; they never abort a workflow.
func NewDeliveryFailure(target string, err error) error {
	return &DomainError{
		Code:    CodeDelivery,
		Message: fmt.Sprintf("delivery to %s failed", target),
		Err:     err,
	}
}

// NewConflict flags an operation that lost to an in-flight state transition.
func NewConflict(message string) error {
	return NewDomainError(CodeConflict, message, nil)
}

// NewInternalError wraps unexpected failures.
func NewInternalError(err error) error {
	return &DomainError{Code: CodeInternal, Message: "something went wrong", Err: err}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{Code: CodeInternal, Message: "something went wrong", Err: err}
}

// IsCode reports whether err is a DomainError with the given code.
func IsCode(err error, code string) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
}

// UserMessage returns the short rejection text shown to end users. Internal
// identifiers and stack traces never leak through here.
func UserMessage(err error) string {
	de := ToDomainError(err)
	if de == nil {
		return ""
	}
	return de.Message
}
