package analysis

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	ErrInvalidInput = errors.New("invalid input buffer")
	ErrStagePanic   = errors.New("stage panicked")
)

// AnalysisError represents a failure in one analysis stage
type AnalysisError struct {
	Stage   string `json:"stage"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *AnalysisError) Error() string {
	if e.Cause != nil {
		return e.Stage + ": " + e.Message + ": " + e.Cause.Error()
	}
	return e.Stage + ": " + e.Message
}

func (e *AnalysisError) Unwrap() error {
	return e.Cause
}

// Error codes
const (
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeCancelled    = "CANCELLED"
	ErrCodeStageFailed  = "STAGE_FAILED"
	ErrCodeStagePanic   = "STAGE_PANIC"
)

// NewAnalysisError creates a new analysis error
func NewAnalysisError(stage, code, message string, cause error) *AnalysisError {
	return &AnalysisError{
		Stage:   stage,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func invalidInput(format string, args ...any) *AnalysisError {
	return NewAnalysisError(StageValidate, ErrCodeInvalidInput, fmt.Sprintf(format, args...), ErrInvalidInput)
}
