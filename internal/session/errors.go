package session

import "errors"

// Validation failures, checked before any network call.
var (
	ErrMissingURL      = errors.New("URL is empty")
	ErrMissingText     = errors.New("article text is empty")
	ErrMissingEndpoint = errors.New("summarization endpoint is not configured")
	ErrMissingAPIKey   = errors.New("Q&A API key is not configured")
	ErrMissingModel    = errors.New("Q&A model is not configured")
	ErrMissingQuestion = errors.New("question is empty")
	ErrNoSummary       = errors.New("no summary yet")
	ErrInvalidOptions  = errors.New("max tokens must be within [64, 512] and temperature within [0.1, 1.0]")
)

// ErrEmptyExtraction means the page was fetched but had no usable
// paragraph text.
var ErrEmptyExtraction = errors.New("no article text could be extracted")

// IsValidation reports whether err is a precondition failure rather than
// an external-call failure.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrMissingURL,
		ErrMissingText,
		ErrMissingEndpoint,
		ErrMissingAPIKey,
		ErrMissingModel,
		ErrMissingQuestion,
		ErrNoSummary,
		ErrInvalidOptions,
	} {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}
