package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"mvdan.cc/xurls/v2"
)

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) error {
	return b.withSpinner(ctx, message.Chat.ID, func() error {
		chatID := message.Chat.ID
		args := strings.TrimSpace(message.CommandArguments())

		switch message.Command() {
		case "start", "help":
			return b.handleStartCommand(chatID)
		case "menu":
			return b.handleMenuCommand(chatID)
		case "fetch":
			return b.handleFetchCommand(ctx, chatID, args)
		case "summarize":
			return b.handleSummarizeCommand(ctx, chatID, args)
		case "ask":
			return b.handleAskCommand(ctx, chatID, args)
		case "summary":
			return b.handleSummaryCommand(ctx, chatID)
		case "settings":
			return b.handleSettingsCommand(ctx, chatID)
		case "feed":
			return b.handleFeedCommand(ctx, chatID, args)
		case "reset":
			return b.handleResetCommand(ctx, chatID)
		case "":
			return b.handleRandomText(ctx, chatID, message.Text)
		default:
			return b.sendMessageWithKeyboard(chatID, "✖️ Unknown command\\. See /help\\.", b.menuKeyboard)
		}
	})
}

// handleRandomText fetches the message when it is just a link and keeps it
// as article text otherwise.
func (b *Bot) handleRandomText(ctx context.Context, chatID int64, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	url, err := singleURL(text)
	if err != nil {
		return err
	}

	if url != "" {
		return b.handleFetchCommand(ctx, chatID, url)
	}

	if err = b.sessions.SetInput(ctx, sessionID(chatID), text); err != nil {
		return b.replyError(ctx, chatID, err)
	}

	return b.sendMessageWithKeyboard(
		chatID,
		fmt.Sprintf("✅ Article text is saved \\(%d characters\\)\\.", runeCount(text)),
		b.articleKeyboard,
	)
}

// singleURL returns the https URL when text is nothing but that URL.
func singleURL(text string) (string, error) {
	httpsURLRe, err := xurls.StrictMatchingScheme("https://")
	if err != nil {
		return "", fmt.Errorf("create regexp: %w", err)
	}

	text = strings.TrimSpace(text)

	url := httpsURLRe.FindString(text)
	if url == "" || url != text {
		return "", nil
	}

	return url, nil
}
