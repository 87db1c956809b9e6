package entity

import "errors"

// Domain errors
var (
	// Request validation errors
	ErrDatasetRequired = errors.New("dataset file is required")
	ErrPromptRequired  = errors.New("prompt is required")
	ErrAPIKeyMissing   = errors.New("OPENAI_API_KEY is not configured")

	// File errors
	ErrInvalidFile      = errors.New("invalid file")
	ErrFileTooLarge     = errors.New("file too large")
	ErrInvalidExtension = errors.New("invalid file extension")

	// Dataset errors
	ErrEmptyDataset     = errors.New("dataset contains no rows")
	ErrUnknownColumn    = errors.New("unknown column")
	ErrNotNumeric       = errors.New("column is not numeric")
	ErrUnknownFn        = errors.New("unknown aggregation function")
	ErrUnknownChart     = errors.New("unknown chart kind")
	ErrArtifactNotFound = errors.New("artifact not found")

	// Validation errors
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidParameter = errors.New("invalid parameter")
)

// Canonical user-facing messages for the closed error set. The analysis
// endpoint surfaces these verbatim, so the UI renders failures through the
// same path as successful answers.
const (
	MsgDatasetRequired = "Error: Please upload a CSV file first."
	MsgPromptRequired  = "Error: Please enter a question or instruction."
	MsgAPIKeyMissing   = "Error: OPENAI_API_KEY not found. Please add it to your .env file."
)

// UserMessage maps a domain error to the message shown to the user.
// Anything outside the closed set becomes the generic execution failure.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrDatasetRequired):
		return MsgDatasetRequired
	case errors.Is(err, ErrPromptRequired):
		return MsgPromptRequired
	case errors.Is(err, ErrAPIKeyMissing):
		return MsgAPIKeyMissing
	default:
		return "An unexpected error occurred: " + err.Error()
	}
}
