package summarizer

import (
	"context"
	"strings"

	"sangkhep/internal/domain"
)

// Request is the payload for one summarize call.
type Request struct {
	Text        string
	MaxTokens   int
	Temperature float64
}

func NewRequest(text string, options domain.Options) Request {
	return Request{
		Text:        text,
		MaxTokens:   options.MaxTokens,
		Temperature: options.Temperature,
	}
}

func (r Request) validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return ErrMissingText
	}

	if !(domain.Options{MaxTokens: r.MaxTokens, Temperature: r.Temperature}).Valid() {
		return ErrInvalidOptions
	}

	return nil
}

// Summarizer produces a summary of an article through a remote backend.
type Summarizer interface {
	Summarize(ctx context.Context, endpointBase string, req Request) (string, error)
}

// Endpoint joins the backend base URL with the summarize path, tolerating
// any number of trailing slashes on the base.
func Endpoint(endpointBase string) string {
	return strings.TrimRight(strings.TrimSpace(endpointBase), "/") + summarizePath
}
