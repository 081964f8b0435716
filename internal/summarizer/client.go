package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultTimeout = 120 * time.Second

	summarizePath    = "/summarize"
	maxResponseBytes = 1 << 20
)

type summarizeRequest struct {
	Text        string  `json:"text"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

type summarizeResponse struct {
	Summary string `json:"summary"`
}

// Client talks to the summarization backend over HTTP.
type Client struct {
	httpClient *http.Client
	log        *slog.Logger
}

func NewClient(timeout time.Duration, log *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// Summarize sends exactly one POST to {endpointBase}/summarize and returns
// the trimmed summary.
func (c *Client) Summarize(ctx context.Context, endpointBase string, req Request) (string, error) {
	if strings.TrimSpace(endpointBase) == "" {
		return "", ErrMissingEndpoint
	}

	if err := req.validate(); err != nil {
		return "", err
	}

	endpoint := Endpoint(endpointBase)

	body, err := json.Marshal(summarizeRequest{
		Text:        req.Text,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &NetworkError{Endpoint: endpoint, Err: fmt.Errorf("create request: %w", err)}
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq) //nolint:gosec // endpoint is operator configuration
	if err != nil {
		return "", &NetworkError{Endpoint: endpoint, Err: err}
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			c.log.ErrorContext(ctx, "Failed to close response body",
				"error", err,
				"endpoint", endpoint,
				"operation", "Summarize")
		}
	}()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", &NetworkError{Endpoint: endpoint, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", &HTTPError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(respBody)),
		}
	}

	var decoded summarizeResponse
	if err = json.Unmarshal(respBody, &decoded); err != nil {
		return "", &DecodeError{Endpoint: endpoint, Body: string(respBody), Err: err}
	}

	summary := strings.TrimSpace(decoded.Summary)
	if summary == "" {
		return "", ErrEmptyResult
	}

	return summary, nil
}
