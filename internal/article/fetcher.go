package article

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultTimeout = 10 * time.Second

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	acceptHeader         = "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8"
	acceptLanguageHeader = "en-US,en;q=0.9,km;q=0.8"

	maxPageBytes = 10 << 20
)

type Fetcher struct {
	client    *http.Client
	extractor Extractor
	log       *slog.Logger
}

func NewFetcher(timeout time.Duration, extractor Extractor, log *slog.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	if extractor == nil {
		extractor = ParagraphExtractor{}
	}

	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		extractor: extractor,
		log:       log,
	}
}

// ExtractArticleText downloads the page once and returns its article text.
// On failure the text is empty and the error is a *FetchError. A page
// without qualifying paragraphs yields an empty text and a nil error.
func (f *Fetcher) ExtractArticleText(ctx context.Context, rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)

	body, err := f.fetch(ctx, rawURL)
	if err != nil {
		return "", err
	}

	text, err := f.extractor.Extract(body)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: fmt.Errorf("extract: %w", err)}
	}

	return text, nil
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("create request: %w", err)}
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Accept-Language", acceptLanguageHeader)

	resp, err := f.client.Do(req) //nolint:gosec // URL comes from the user on purpose
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("do request: %w", err)}
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			f.log.ErrorContext(ctx, "Failed to close response body",
				"error", err,
				"url", rawURL,
				"operation", "ExtractArticleText")
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &FetchError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("read body: %w", err)}
	}

	return body, nil
}
