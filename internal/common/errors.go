package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Recognition error taxonomy. Stage failures that are recoverable
// (a preprocessing variant, a single engine attempt, structure analysis)
// are carried as diagnostics; these sentinels mark the unrecoverable
// cases. Ambiguous extraction and failed validation are not errors at
// all: they surface as low confidence and report entries.
var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrFileTooLarge      = errors.New("file exceeds size limit")
	ErrImageBounds       = errors.New("image dimensions out of bounds")
	ErrTransformFailed   = errors.New("image transform failed")
	ErrEngineFailure     = errors.New("recognition engine failed")
	ErrEnsembleExhausted = errors.New("all recognition attempts failed")
	ErrStructureAnalysis = errors.New("structure analysis failed")
	ErrInvalidInput      = errors.New("invalid input")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
