package constants

// ErrorCode is the extraction error taxonomy surfaced to callers.
type ErrorCode string

// Stable values (serialized to clients).
const (
	ErrNoTextDetected    ErrorCode = "NO_TEXT_DETECTED"
	ErrLowQualityImage   ErrorCode = "LOW_QUALITY_IMAGE"
	ErrProcessingFailed  ErrorCode = "PROCESSING_FAILED"
	ErrInvalidFormat     ErrorCode = "INVALID_FORMAT"
	ErrPartialExtraction ErrorCode = "PARTIAL_EXTRACTION"
)

// ErrorDetail carries the human-facing metadata for a taxonomy code.
type ErrorDetail struct {
	Message    string
	Suggestion string
	CanRetry   bool
}

var errorDetails = map[ErrorCode]ErrorDetail{
	ErrNoTextDetected: {
		Message:    "no readable text was found on the receipt",
		Suggestion: "retake the photo in better light, holding the camera flat over the slip",
		CanRetry:   false,
	},
	ErrLowQualityImage: {
		Message:    "the receipt image is too low quality to read reliably",
		Suggestion: "retake the photo, or enter the details manually",
		CanRetry:   true,
	},
	ErrProcessingFailed: {
		Message:    "something went wrong while processing the receipt",
		Suggestion: "try again; if it keeps failing, enter the details manually",
		CanRetry:   true,
	},
	ErrInvalidFormat: {
		Message:    "the uploaded file is not a supported receipt format",
		Suggestion: "upload a photo, PDF, or plain-text copy of the receipt",
		CanRetry:   false,
	},
	ErrPartialExtraction: {
		Message:    "some fields could not be read from the receipt",
		Suggestion: "fill in the missing fields manually",
		CanRetry:   false,
	},
}

// DetailFor returns the canonical metadata for a code. Unknown codes map to
// PROCESSING_FAILED so a caller always gets a usable message.
func DetailFor(code ErrorCode) ErrorDetail {
	if d, ok := errorDetails[code]; ok {
		return d
	}
	return errorDetails[ErrProcessingFailed]
}
