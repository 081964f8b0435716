package summarizer_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"sangkhep/internal/summarizer"
)

type capturedRequest struct {
	Path        string
	ContentType string
	Body        map[string]any
}

func newBackend(t *testing.T, status int, body string) (*httptest.Server, *capturedRequest, *atomic.Int32) {
	t.Helper()

	captured := &capturedRequest{}
	calls := &atomic.Int32{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)

		captured.Path = r.URL.Path
		captured.ContentType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&captured.Body); err != nil {
			t.Errorf("decode request body: %v", err)
		}

		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv, captured, calls
}

func newClient() *summarizer.Client {
	return summarizer.NewClient(time.Second, slog.Default())
}

func TestEndpoint(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"https://x", "https://x/summarize"},
		{"https://x/", "https://x/summarize"},
		{"https://x//", "https://x/summarize"},
		{" https://x/api/ ", "https://x/api/summarize"},
	}

	for _, test := range tests {
		if got := summarizer.Endpoint(test.base); got != test.want {
			t.Fatalf("Endpoint(%q) = %q, want %q", test.base, got, test.want)
		}
	}
}

func TestClientSummarizeSendsOptionsUnchanged(t *testing.T) {
	srv, captured, _ := newBackend(t, http.StatusOK, `{"summary": "  hello  "}`)

	got, err := newClient().Summarize(context.Background(), srv.URL+"/", summarizer.Request{
		Text:        "អត្ថបទ",
		MaxTokens:   256,
		Temperature: 0.5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got != "hello" {
		t.Fatalf("expected trimmed summary, got %q", got)
	}

	if captured.Path != "/summarize" {
		t.Fatalf("unexpected path: %q", captured.Path)
	}

	if captured.ContentType != "application/json" {
		t.Fatalf("unexpected content type: %q", captured.ContentType)
	}

	if captured.Body["text"] != "អត្ថបទ" {
		t.Fatalf("unexpected text: %v", captured.Body["text"])
	}

	if captured.Body["max_tokens"] != float64(256) {
		t.Fatalf("unexpected max_tokens: %v", captured.Body["max_tokens"])
	}

	if captured.Body["temperature"] != 0.5 {
		t.Fatalf("unexpected temperature: %v", captured.Body["temperature"])
	}
}

func TestClientSummarizeBoundaryOptions(t *testing.T) {
	srv, captured, _ := newBackend(t, http.StatusOK, `{"summary": "ok"}`)

	for _, req := range []summarizer.Request{
		{Text: "text", MaxTokens: 64, Temperature: 0.1},
		{Text: "text", MaxTokens: 512, Temperature: 1.0},
	} {
		if _, err := newClient().Summarize(context.Background(), srv.URL, req); err != nil {
			t.Fatalf("unexpected error for %+v: %v", req, err)
		}

		if captured.Body["max_tokens"] != float64(req.MaxTokens) || captured.Body["temperature"] != req.Temperature {
			t.Fatalf("options changed in transit: %v", captured.Body)
		}
	}
}

func TestClientSummarizeEmptyResult(t *testing.T) {
	for _, body := range []string{`{"summary": ""}`, `{"summary": "   "}`, `{}`, `{"summary": null}`} {
		srv, _, _ := newBackend(t, http.StatusOK, body)

		_, err := newClient().Summarize(context.Background(), srv.URL, summarizer.Request{
			Text:        "text",
			MaxTokens:   128,
			Temperature: 0.3,
		})
		if !errors.Is(err, summarizer.ErrEmptyResult) {
			t.Fatalf("expected ErrEmptyResult for %s, got %v", body, err)
		}
	}
}

func TestClientSummarizeHTTPError(t *testing.T) {
	srv, _, _ := newBackend(t, http.StatusInternalServerError, `{"detail": "CUDA out of memory"}`)

	_, err := newClient().Summarize(context.Background(), srv.URL, summarizer.Request{
		Text:        "text",
		MaxTokens:   256,
		Temperature: 0.5,
	})

	var httpErr *summarizer.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected HTTPError, got %v", err)
	}

	if httpErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("unexpected status: %d", httpErr.StatusCode)
	}

	if httpErr.Body != `{"detail": "CUDA out of memory"}` {
		t.Fatalf("expected response body to be surfaced, got %q", httpErr.Body)
	}
}

func TestClientSummarizeMalformedJSON(t *testing.T) {
	srv, _, _ := newBackend(t, http.StatusOK, `<html>tunnel offline</html>`)

	_, err := newClient().Summarize(context.Background(), srv.URL, summarizer.Request{
		Text:        "text",
		MaxTokens:   256,
		Temperature: 0.5,
	})

	var decodeErr *summarizer.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
}

func TestClientSummarizeNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := srv.URL
	srv.Close()

	_, err := newClient().Summarize(context.Background(), base, summarizer.Request{
		Text:        "text",
		MaxTokens:   256,
		Temperature: 0.5,
	})

	var netErr *summarizer.NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
}

func TestClientSummarizeTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c := summarizer.NewClient(50*time.Millisecond, slog.Default())

	_, err := c.Summarize(context.Background(), srv.URL, summarizer.Request{
		Text:        "text",
		MaxTokens:   256,
		Temperature: 0.5,
	})

	var netErr *summarizer.NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError on timeout, got %v", err)
	}
}

func TestClientSummarizeValidatesBeforeCalling(t *testing.T) {
	srv, _, calls := newBackend(t, http.StatusOK, `{"summary": "unused"}`)

	tests := []struct {
		name     string
		endpoint string
		req      summarizer.Request
		want     error
	}{
		{"blank endpoint", " ", summarizer.Request{Text: "text", MaxTokens: 256, Temperature: 0.5}, summarizer.ErrMissingEndpoint},
		{"blank text", srv.URL, summarizer.Request{Text: " \n ", MaxTokens: 256, Temperature: 0.5}, summarizer.ErrMissingText},
		{"tokens too low", srv.URL, summarizer.Request{Text: "text", MaxTokens: 63, Temperature: 0.5}, summarizer.ErrInvalidOptions},
		{"tokens too high", srv.URL, summarizer.Request{Text: "text", MaxTokens: 513, Temperature: 0.5}, summarizer.ErrInvalidOptions},
		{"temperature too low", srv.URL, summarizer.Request{Text: "text", MaxTokens: 256, Temperature: 0.05}, summarizer.ErrInvalidOptions},
		{"temperature too high", srv.URL, summarizer.Request{Text: "text", MaxTokens: 256, Temperature: 1.5}, summarizer.ErrInvalidOptions},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := newClient().Summarize(context.Background(), test.endpoint, test.req)
			if !errors.Is(err, test.want) {
				t.Fatalf("expected %v, got %v", test.want, err)
			}
		})
	}

	if got := calls.Load(); got != 0 {
		t.Fatalf("expected no backend calls, got %d", got)
	}
}
