package qa

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// FallbackAnswer is returned when the provider produces no text. It reads
// "Cannot answer from this summary." in Khmer.
const FallbackAnswer = "មិនអាចឆ្លើយបានពីសង្ខេបនេះទេ។"

var (
	ErrMissingAPIKey   = errors.New("API key is empty")
	ErrMissingModel    = errors.New("model is empty")
	ErrMissingQuestion = errors.New("question is empty")
	ErrMissingSummary  = errors.New("summary is empty")
)

// TransportError wraps any failure talking to the generative-language
// provider.
type TransportError struct {
	Model string
	Err   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("ask %s: %v", e.Model, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Asker answers a question using only a previously produced summary.
type Asker interface {
	Ask(ctx context.Context, apiKey, model, summary, question string) (string, error)
}

const promptTemplate = `You are a helpful assistant answering questions about the following Khmer news summary.

SUMMARY:
%s

USER QUESTION:
%s

Please answer in Khmer and keep the answer short, clear, and directly related to the summary above.
If the summary doesn't contain enough information to answer, say that you don't know based on this summary.`

// BuildPrompt embeds summary and question verbatim.
func BuildPrompt(summary, question string) string {
	return fmt.Sprintf(promptTemplate, summary, question)
}

func validate(apiKey, model, summary, question string) error {
	switch {
	case strings.TrimSpace(apiKey) == "":
		return ErrMissingAPIKey
	case strings.TrimSpace(model) == "":
		return ErrMissingModel
	case strings.TrimSpace(summary) == "":
		return ErrMissingSummary
	case strings.TrimSpace(question) == "":
		return ErrMissingQuestion
	}

	return nil
}
