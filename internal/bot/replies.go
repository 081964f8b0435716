package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"sangkhep/internal/article"
	"sangkhep/internal/markdown"
	"sangkhep/internal/qa"
	"sangkhep/internal/session"
	"sangkhep/internal/summarizer"
)

const (
	maxErrorBodyLength = 500

	manualPasteHint = "This website may be blocking automated access. " +
		"Please open the article in your browser and paste the text manually."
)

// replyError tells the user what went wrong. Validation errors are the
// user's to fix and are not reported back to the caller.
func (b *Bot) replyError(ctx context.Context, chatID int64, err error) error {
	sendErr := b.sendMessageWithKeyboard(chatID, errorText(err), b.returnKeyboard)
	if sendErr != nil {
		sendErr = fmt.Errorf("send message with keyboard: %w", sendErr)
	}

	if session.IsValidation(err) || errors.Is(err, session.ErrEmptyExtraction) {
		b.log.DebugContext(ctx, "Rejected user action",
			"error", err,
			"chatID", chatID)

		return sendErr
	}

	return errors.Join(err, sendErr)
}

// errorText renders err as a MarkdownV2 message.
func errorText(err error) string {
	var (
		fetchErr     *article.FetchError
		httpErr      *summarizer.HTTPError
		networkErr   *summarizer.NetworkError
		decodeErr    *summarizer.DecodeError
		transportErr *qa.TransportError
	)

	switch {
	case errors.Is(err, session.ErrMissingURL):
		return "⚠️ Please send an article URL, for example `/fetch https://…`\\."
	case errors.Is(err, session.ErrMissingText):
		return "⚠️ There is no article text yet\\. Send a link or paste the article first\\."
	case errors.Is(err, session.ErrMissingEndpoint):
		return "⚠️ Summarization backend URL is not configured\\."
	case errors.Is(err, session.ErrMissingAPIKey):
		return "⚠️ Q&A API key is not configured\\."
	case errors.Is(err, session.ErrMissingModel):
		return "⚠️ Q&A model is not configured\\."
	case errors.Is(err, session.ErrMissingQuestion):
		return "⚠️ Please type a question after /ask\\."
	case errors.Is(err, session.ErrNoSummary):
		return "⚠️ Please summarize an article before asking questions\\."
	case errors.Is(err, session.ErrInvalidOptions):
		return "⚠️ Settings are out of range\\."
	case errors.Is(err, session.ErrEmptyExtraction):
		return "✖️ No article text was found on this page\\.\n\n" + markdown.EscapeV2(manualPasteHint)
	case errors.As(err, &fetchErr):
		text := "❌ Failed to fetch the article"
		if fetchErr.StatusCode != 0 {
			text += fmt.Sprintf(" \\(HTTP %d\\)", fetchErr.StatusCode)
		}

		return text + "\\.\n\n" + markdown.EscapeV2(manualPasteHint)
	case errors.Is(err, summarizer.ErrEmptyResult):
		return "✖️ Backend returned an empty summary\\."
	case errors.As(err, &httpErr):
		text := fmt.Sprintf("❌ Summarization backend error \\(HTTP %d\\)\\.", httpErr.StatusCode)
		if body := truncate(httpErr.Body, maxErrorBodyLength); body != "" {
			text += "\n\n" + markdown.EscapeV2(body)
		}

		return text
	case errors.As(err, &networkErr):
		return "❌ Summarization backend is unreachable\\.\n\n" + markdown.EscapeV2(networkErr.Error())
	case errors.As(err, &decodeErr):
		return "❌ Summarization backend returned an unexpected response\\."
	case errors.As(err, &transportErr):
		return "❌ Q&A provider error\\.\n\n" + markdown.EscapeV2(truncate(transportErr.Error(), maxErrorBodyLength))
	default:
		return "❌ Failed\\."
	}
}

func truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= limit {
		return s
	}

	return string([]rune(s)[:limit]) + "…"
}
