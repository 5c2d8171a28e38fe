package models

import "errors"

// Sentinel errors shared between the service and HTTP layers.
var (
	ErrDebateNotFound     = errors.New("debate not found")
	ErrDebateFull         = errors.New("debate is full")
	ErrNotParticipant     = errors.New("user is not a participant in this debate")
	ErrDebateCompleted    = errors.New("debate already completed")
	ErrDuplicateRequest   = errors.New("finalization already requested by this participant")
	ErrNotEnoughArguments = errors.New("at least 2 arguments are required to finalize")
	ErrApprovalRequired   = errors.New("finalization requires approval from all participants")
	ErrResultNotFound     = errors.New("no result found for debate")
	ErrUserNotFound       = errors.New("user not found")
)

// ValidationError marks caller mistakes that map to a 4xx response and
// are never retried.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError with a human-readable message.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}
