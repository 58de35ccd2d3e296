// Package apperr defines the application error taxonomy: validation errors
// that block a transition at the gate, and collaborator failures that are
// logged and swallowed. Simulated business outcomes (declined payments,
// address errors) are regular terminal states, not errors.
package apperr

import "fmt"

// Severity grades how urgently an error needs operator attention.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// AppError carries an operator-facing message plus the generic text shown
// to the user.
type AppError struct {
	Code        string
	Message     string
	UserMessage string
	Severity    Severity
	Retryable   bool
	cause       error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.cause
}

// NewValidationError marks input rejected at a step gate. Never reported
// to Sentry; the message is step-scoped and user-facing.
func NewValidationError(msg string) *AppError {
	return &AppError{
		Code:        "E100",
		Message:     msg,
		UserMessage: msg,
		Severity:    SeverityLow,
		Retryable:   false,
	}
}

// NewDatabaseError wraps a persistence failure.
func NewDatabaseError(cause error) *AppError {
	var underlyingMsg string
	if cause != nil {
		underlyingMsg = cause.Error()
	}

	return &AppError{
		Code:        "E200",
		Message:     fmt.Sprintf("database error: %s", underlyingMsg),
		UserMessage: "Une erreur est survenue. Veuillez réessayer.",
		Severity:    SeverityHigh,
		Retryable:   true,
		cause:       cause,
	}
}

// NewCollaboratorError wraps a failed call to an external collaborator
// (recorder, notifier, auth backend). These never block a step transition.
func NewCollaboratorError(name string, cause error) *AppError {
	return &AppError{
		Code:        "E300",
		Message:     fmt.Sprintf("collaborator call failed: %s", name),
		UserMessage: "Service temporairement indisponible",
		Severity:    SeverityMedium,
		Retryable:   true,
		cause:       cause,
	}
}

// NewStateError marks an action submitted from a step that does not accept
// it.
func NewStateError(msg string) *AppError {
	return &AppError{
		Code:        "E400",
		Message:     msg,
		UserMessage: "Opération impossible à cette étape",
		Severity:    SeverityMedium,
		Retryable:   false,
	}
}
