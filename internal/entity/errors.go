package entity

import (
	"fmt"

	"github.com/slipsafe/slipsafe/constants"
)

// OCRError is the taxonomy error attached to an extraction result. It is a
// value the caller renders, not a control-flow error; the pipeline still
// returns its best-effort partial record alongside it.
type OCRError struct {
	Code          constants.ErrorCode `json:"code"`
	Message       string              `json:"message"`
	Suggestion    string              `json:"suggestion"`
	CanRetry      bool                `json:"can_retry"`
	MissingFields []string            `json:"missing_fields,omitempty"`
}

func (e *OCRError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewOCRError builds a taxonomy error with its canonical message, suggestion
// and retry flag.
func NewOCRError(code constants.ErrorCode) *OCRError {
	d := constants.DetailFor(code)
	return &OCRError{
		Code:       code,
		Message:    d.Message,
		Suggestion: d.Suggestion,
		CanRetry:   d.CanRetry,
	}
}

// NewPartialExtractionError reports which of the core fields are missing so
// the caller can prompt for exactly those.
func NewPartialExtractionError(missing []string) *OCRError {
	e := NewOCRError(constants.ErrPartialExtraction)
	e.MissingFields = missing
	return e
}
