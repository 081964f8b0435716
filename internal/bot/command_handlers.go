package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"sangkhep/internal/article"
	"sangkhep/internal/domain"
	"sangkhep/internal/markdown"
	"sangkhep/internal/session"
)

const previewLength = 300

const welcomeText = `🤖 *Welcome to Sangkhep\!*

I summarize Khmer news articles and answer questions about the summary\.

– Send an article link or use /fetch URL to load an article
– Or paste the article text directly
– /summarize to summarize the loaded text
– /ask QUESTION to ask about the summary
– /summary to show the current summary
– /settings to change summary length and temperature
– /feed URL to list the latest articles of an RSS feed
– /reset to start over`

const settingsText = `*⚙️ Settings*

Max tokens: *%d*
Temperature: *%s*

Choose max tokens \(first rows\) or temperature \(🌡\) below:`

func (b *Bot) handleStartCommand(chatID int64) error {
	return b.sendMessageWithKeyboard(chatID, welcomeText, b.menuKeyboard)
}

func (b *Bot) handleMenuCommand(chatID int64) error {
	return b.sendMessageWithKeyboard(chatID, "❔ *Choose an option:*", b.menuKeyboard)
}

func (b *Bot) handleFetchCommand(ctx context.Context, chatID int64, url string) error {
	text, err := b.sessions.Fetch(ctx, sessionID(chatID), url)
	if err != nil {
		return b.replyError(ctx, chatID, err)
	}

	header := fmt.Sprintf("✅ *Article is loaded* \\(%d characters\\)\n\n", runeCount(text))

	return b.sendMessageWithKeyboard(
		chatID,
		header+markdown.EscapeV2(truncate(text, previewLength)),
		b.articleKeyboard,
	)
}

func (b *Bot) handleSummarizeCommand(ctx context.Context, chatID int64, text string) error {
	summary, err := b.sessions.Summarize(ctx, sessionID(chatID), session.SummarizeParams{Text: text})
	if err != nil {
		return b.replyError(ctx, chatID, err)
	}

	if err = b.sendLongText(chatID, "📝 *Summary*\n\n", summary, b.returnKeyboard); err != nil {
		return fmt.Errorf("send long text: %w", err)
	}

	return nil
}

func (b *Bot) handleAskCommand(ctx context.Context, chatID int64, question string) error {
	answer, err := b.sessions.Ask(ctx, sessionID(chatID), session.AskParams{Question: question})
	if err != nil {
		return b.replyError(ctx, chatID, err)
	}

	header := "💬 *Answer*\n\n"
	if q := strings.TrimSpace(question); q != "" {
		header = fmt.Sprintf("💬 *%s*\n\n", markdown.EscapeV2(truncate(q, previewLength)))
	}

	if err = b.sendLongText(chatID, header, answer, b.returnKeyboard); err != nil {
		return fmt.Errorf("send long text: %w", err)
	}

	return nil
}

func (b *Bot) handleSummaryCommand(ctx context.Context, chatID int64) error {
	sess, err := b.sessions.Get(ctx, sessionID(chatID))
	if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return b.replyError(ctx, chatID, err)
	}

	if sess == nil || strings.TrimSpace(sess.Summary) == "" {
		return b.sendMessageWithKeyboard(chatID, "✖️ There is no summary yet\\.", b.menuKeyboard)
	}

	if err = b.sendLongText(chatID, "📝 *Summary*\n\n", sess.Summary, b.returnKeyboard); err != nil {
		return fmt.Errorf("send long text: %w", err)
	}

	return nil
}

func (b *Bot) handleSettingsCommand(ctx context.Context, chatID int64) error {
	sess, err := b.sessions.Open(ctx, sessionID(chatID))
	if err != nil {
		return b.replyError(ctx, chatID, err)
	}

	if err = b.sendMessageWithKeyboard(
		chatID,
		fmt.Sprintf(settingsText,
			sess.Options.MaxTokens,
			markdown.EscapeV2(formatTemperature(sess.Options.Temperature))),
		b.settingsKeyboard,
	); err != nil {
		return fmt.Errorf("send message with keyboard: %w", err)
	}

	return nil
}

func (b *Bot) handleFeedCommand(ctx context.Context, chatID int64, feedURL string) error {
	feedURL = strings.TrimSpace(feedURL)
	if feedURL == "" {
		return b.sendMessageWithKeyboard(chatID, "⚠️ Please send a feed URL after /feed\\.", b.returnKeyboard)
	}

	items, err := b.feeds.LatestItems(ctx, feedURL, article.DefaultFeedItems)
	if err != nil {
		errs := []error{fmt.Errorf("list feed items: %w", err)}

		sendErr := b.sendMessageWithKeyboard(chatID, "❌ Failed to read the feed\\.", b.returnKeyboard)
		if sendErr != nil {
			errs = append(errs, fmt.Errorf("send message with keyboard: %w", sendErr))
		}

		return errors.Join(errs...)
	}

	if len(items) == 0 {
		return b.sendMessageWithKeyboard(chatID, "✖️ Feed has no articles\\.", b.returnKeyboard)
	}

	var errs []error
	for _, message := range formatFeedItems(items) {
		if err = b.sendMessageWithKeyboard(chatID, message, b.returnKeyboard); err != nil {
			errs = append(errs, fmt.Errorf("send message with keyboard: %w", err))
		}
	}

	return errors.Join(errs...)
}

func (b *Bot) handleResetCommand(ctx context.Context, chatID int64) error {
	if err := b.sessions.Reset(ctx, sessionID(chatID)); err != nil {
		return b.replyError(ctx, chatID, err)
	}

	return b.sendMessageWithKeyboard(chatID, "✅ Session is cleared\\.", b.menuKeyboard)
}

func runeCount(s string) int {
	return utf8.RuneCountInString(s)
}
