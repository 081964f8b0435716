package bot

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"sangkhep/internal/article"
	"sangkhep/internal/domain"
	"sangkhep/internal/qa"
	"sangkhep/internal/session"
	"sangkhep/internal/summarizer"
)

func TestSessionID(t *testing.T) {
	if got := sessionID(-100123); got != "tg:-100123" {
		t.Fatalf("unexpected session ID: %q", got)
	}
}

func TestUserAllowed(t *testing.T) {
	open := &Bot{}
	if !open.userAllowed(1) {
		t.Fatalf("expected everyone to be allowed with empty list")
	}

	restricted := &Bot{allowedUsers: []int64{7}}
	if !restricted.userAllowed(7) || restricted.userAllowed(8) {
		t.Fatalf("unexpected allow list behavior")
	}
}

func TestUpdateBackoffSeconds(t *testing.T) {
	if got := updateBackoffSeconds(initialBackoffSeconds); got != 6 {
		t.Fatalf("expected 6, got %d", got)
	}

	if got := updateBackoffSeconds(48); got != maxBackoffSeconds {
		t.Fatalf("expected cap %d, got %d", maxBackoffSeconds, got)
	}
}

func TestSingleURL(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{text: "https://www.rfa.org/khmer/news/123", want: "https://www.rfa.org/khmer/news/123"},
		{text: "  https://example.com/a  ", want: "https://example.com/a"},
		{text: "read https://example.com/a please", want: ""},
		{text: "http://example.com/a", want: ""},
		{text: "ព័ត៌មានថ្ងៃនេះ", want: ""},
	}

	for _, test := range tests {
		got, err := singleURL(test.text)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got != test.want {
			t.Fatalf("singleURL(%q) = %q, want %q", test.text, got, test.want)
		}
	}
}

func TestErrorText(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "no summary",
			err:  session.ErrNoSummary,
			want: "summarize an article before asking",
		},
		{
			name: "blocked fetch",
			err: fmt.Errorf("extract article text: %w", &article.FetchError{
				URL:        "https://x",
				StatusCode: http.StatusForbidden,
			}),
			want: "HTTP 403",
		},
		{
			name: "empty extraction carries manual paste hint",
			err:  session.ErrEmptyExtraction,
			want: "paste the text manually",
		},
		{
			name: "backend status and body",
			err: fmt.Errorf("summarize: %w", &summarizer.HTTPError{
				StatusCode: http.StatusInternalServerError,
				Body:       "model crashed",
			}),
			want: "model crashed",
		},
		{
			name: "empty summary",
			err:  fmt.Errorf("summarize: %w", summarizer.ErrEmptyResult),
			want: "empty summary",
		},
		{
			name: "provider failure",
			err:  &qa.TransportError{Model: "m", Err: errors.New("quota exceeded")},
			want: "quota exceeded",
		},
		{
			name: "unknown",
			err:  errors.New("boom"),
			want: "Failed",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := errorText(test.err); !strings.Contains(got, test.want) {
				t.Fatalf("expected %q in %q", test.want, got)
			}
		})
	}
}

func TestFormatLongText(t *testing.T) {
	header := "📝 *Summary*\n\n"

	if got := formatLongText(header, ""); len(got) != 1 || got[0] != header {
		t.Fatalf("expected header only, got %q", got)
	}

	body := strings.Repeat(strings.Repeat("ក", 99)+"\n", 100)

	messages := formatLongText(header, body)
	if len(messages) < 3 {
		t.Fatalf("expected the body to be split, got %d messages", len(messages))
	}

	if !strings.HasPrefix(messages[0], header) {
		t.Fatalf("expected header in the first message")
	}

	total := 0
	for _, message := range messages {
		n := utf8.RuneCountInString(message)
		if n > telegramMessageMaxLength {
			t.Fatalf("message exceeds limit: %d", n)
		}

		total += strings.Count(message, "ក")
	}

	if total != 99*100 {
		t.Fatalf("expected no text to be lost, got %d runes", total)
	}
}

func TestFormatFeedItems(t *testing.T) {
	items := []domain.FeedItem{
		{
			Title:     "Article (1)",
			URL:       "https://example.com/a_(1)",
			Published: time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC),
		},
		{Title: "Article 2", URL: "https://example.com/2"},
	}

	messages := formatFeedItems(items)
	if len(messages) != 1 {
		t.Fatalf("expected one message, got %d", len(messages))
	}

	want := "– [Article \\(1\\)](https://example.com/a_(1\\)) 2025\\-05\\-01\n\n"
	if !strings.Contains(messages[0], want) {
		t.Fatalf("expected %q in %q", want, messages[0])
	}

	if formatFeedItems(nil) != nil {
		t.Fatalf("expected no messages for no items")
	}
}

func TestSettingsKeyboard(t *testing.T) {
	keyboard := getSettingsKeyboard()

	var maxTokens, temperatures int
	for _, row := range keyboard {
		if len(row) > settingsKeyboardRowSize {
			t.Fatalf("row is too wide: %d", len(row))
		}

		for _, button := range row {
			data := *button.CallbackData

			if v, ok := strings.CutPrefix(data, settingsMaxTokensCallbackPrefix); ok {
				n, err := strconv.Atoi(v)
				if err != nil {
					t.Fatalf("unexpected max tokens value %q", v)
				}

				if !(domain.Options{MaxTokens: n, Temperature: domain.DefaultTemperature}).Valid() {
					t.Fatalf("max tokens %d is out of range", n)
				}

				maxTokens++
			}

			if v, ok := strings.CutPrefix(data, settingsTemperatureCallbackPrefix); ok {
				f, err := strconv.ParseFloat(v, 64)
				if err != nil {
					t.Fatalf("unexpected temperature value %q", v)
				}

				if !(domain.Options{MaxTokens: domain.DefaultMaxTokens, Temperature: f}).Valid() {
					t.Fatalf("temperature %v is out of range", f)
				}

				temperatures++
			}
		}
	}

	if maxTokens != 15 {
		t.Fatalf("expected 15 max tokens choices, got %d", maxTokens)
	}

	if temperatures != 10 {
		t.Fatalf("expected 10 temperature choices, got %d", temperatures)
	}
}
