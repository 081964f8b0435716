package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"sangkhep/internal/domain"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	chatID := callback.Message.Chat.ID

	return b.withSpinner(ctx, chatID, func() error {
		data := strings.TrimSpace(callback.Data)

		switch data {
		case "menu":
			return b.withEmptyCallbackAnswer(callback, func() error {
				return b.handleMenuCommand(chatID)
			})
		case "menu_summarize":
			return b.withEmptyCallbackAnswer(callback, func() error {
				return b.handleSummarizeCommand(ctx, chatID, "")
			})
		case "menu_summary":
			return b.withEmptyCallbackAnswer(callback, func() error {
				return b.handleSummaryCommand(ctx, chatID)
			})
		case "menu_settings":
			return b.withEmptyCallbackAnswer(callback, func() error {
				return b.handleSettingsCommand(ctx, chatID)
			})
		case "menu_reset":
			return b.withEmptyCallbackAnswer(callback, func() error {
				return b.handleResetCommand(ctx, chatID)
			})
		}

		if value, ok := strings.CutPrefix(data, settingsMaxTokensCallbackPrefix); ok {
			return b.handleSettingsMaxTokensQuery(ctx, value, callback)
		}

		if value, ok := strings.CutPrefix(data, settingsTemperatureCallbackPrefix); ok {
			return b.handleSettingsTemperatureQuery(ctx, value, callback)
		}

		return nil
	})
}

func (b *Bot) handleSettingsMaxTokensQuery(
	ctx context.Context,
	value string,
	callback *tgbotapi.CallbackQuery,
) error {
	maxTokens, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return b.errorCallbackAnswer(callback, fmt.Errorf("parse max tokens: %w", err))
	}

	return b.updateOptions(ctx, callback, func(options *domain.Options) {
		options.MaxTokens = maxTokens
	})
}

func (b *Bot) handleSettingsTemperatureQuery(
	ctx context.Context,
	value string,
	callback *tgbotapi.CallbackQuery,
) error {
	temperature, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return b.errorCallbackAnswer(callback, fmt.Errorf("parse temperature: %w", err))
	}

	return b.updateOptions(ctx, callback, func(options *domain.Options) {
		options.Temperature = temperature
	})
}

func (b *Bot) updateOptions(
	ctx context.Context,
	callback *tgbotapi.CallbackQuery,
	update func(options *domain.Options),
) error {
	chatID := callback.Message.Chat.ID
	id := sessionID(chatID)

	sess, err := b.sessions.Open(ctx, id)
	if err != nil {
		return b.errorCallbackAnswer(callback, fmt.Errorf("open session: %w", err))
	}

	options := sess.Options
	update(&options)

	if err = b.sessions.SetOptions(ctx, id, options); err != nil {
		return b.errorCallbackAnswer(callback, fmt.Errorf("set options: %w", err))
	}

	if _, err = b.rateLimiter.Request(tgbotapi.NewCallback(callback.ID, "✅ Settings are updated.")); err != nil {
		return fmt.Errorf("send request: %w", err)
	}

	return b.handleSettingsCommand(ctx, chatID)
}

func (b *Bot) withEmptyCallbackAnswer(
	callback *tgbotapi.CallbackQuery,
	fn func() error,
) error {
	var errs []error

	if _, err := b.rateLimiter.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		errs = append(errs, b.errorCallbackAnswer(callback, fmt.Errorf("send request: %w", err)))
	}

	err := fn()
	if err != nil {
		errs = append(errs, fmt.Errorf("call fn: %w", err))
	}

	return errors.Join(errs...)
}

func (b *Bot) errorCallbackAnswer(
	callback *tgbotapi.CallbackQuery,
	err error,
) error {
	if _, sendErr := b.rateLimiter.Request(tgbotapi.NewCallback(callback.ID, "❌ Failed.")); sendErr != nil {
		return errors.Join(err, fmt.Errorf("send request: %w", sendErr))
	}
	return err
}
