package bot

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"sangkhep/internal/domain"
	"sangkhep/internal/markdown"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	telegramMessageMaxLength = 4096

	settingsKeyboardRowSize            = 5
	settingsMaxTokensCallbackPrefix    = "settings_max_tokens_"
	settingsTemperatureCallbackPrefix  = "settings_temperature_"
	temperatureTenths                  = 10
	temperatureCallbackFormatPrecision = 1
)

func (b *Bot) sendMessageWithKeyboard(
	chatID int64,
	text string,
	keyboard [][]tgbotapi.InlineKeyboardButton,
) error {
	normalizedText := strings.ToValidUTF8(text, "?")
	if normalizedText != text {
		b.log.Warn("Message text had invalid UTF-8 and was normalized",
			"chatID", chatID,
			"originalLen", len(text),
			"normalizedLen", len(normalizedText))
	}

	message := tgbotapi.NewMessage(chatID, normalizedText)

	// See https://core.telegram.org/bots/api#markdownv2-style.
	message.ParseMode = tgbotapi.ModeMarkdownV2

	message.DisableWebPagePreview = true
	if len(keyboard) > 0 {
		message.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(keyboard...)
	}

	_, err := b.rateLimiter.Send(message)
	return err
}

// sendLongText sends an already escaped header followed by plain body text,
// split to fit Telegram's message limit. Only the last message carries the
// keyboard.
func (b *Bot) sendLongText(
	chatID int64,
	header string,
	body string,
	keyboard [][]tgbotapi.InlineKeyboardButton,
) error {
	messages := formatLongText(header, body)

	for i, message := range messages {
		var kb [][]tgbotapi.InlineKeyboardButton
		if i == len(messages)-1 {
			kb = keyboard
		}

		if err := b.sendMessageWithKeyboard(chatID, message, kb); err != nil {
			return err
		}
	}

	return nil
}

func formatLongText(header string, body string) []string {
	limit := telegramMessageMaxLength - utf8.RuneCountInString(header)

	chunks := markdown.SplitV2(body, limit)
	if len(chunks) == 0 {
		return []string{header}
	}

	messages := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		if i == 0 {
			chunk = header + chunk
		}

		messages = append(messages, chunk)
	}

	return messages
}

func getReturnKeyboard() [][]tgbotapi.InlineKeyboardButton {
	return [][]tgbotapi.InlineKeyboardButton{
		{tgbotapi.NewInlineKeyboardButtonData("⬅️ Return to menu", "menu")},
	}
}

func getMenuKeyboard() [][]tgbotapi.InlineKeyboardButton {
	return [][]tgbotapi.InlineKeyboardButton{
		{
			tgbotapi.NewInlineKeyboardButtonData("📝 Summarize", "menu_summarize"),
			tgbotapi.NewInlineKeyboardButtonData("📄 Summary", "menu_summary"),
		},
		{
			tgbotapi.NewInlineKeyboardButtonData("⚙️ Settings", "menu_settings"),
			tgbotapi.NewInlineKeyboardButtonData("🗑 Reset", "menu_reset"),
		},
	}
}

func getArticleKeyboard() [][]tgbotapi.InlineKeyboardButton {
	return [][]tgbotapi.InlineKeyboardButton{
		{tgbotapi.NewInlineKeyboardButtonData("📝 Summarize", "menu_summarize")},
		{tgbotapi.NewInlineKeyboardButtonData("⬅️ Return to menu", "menu")},
	}
}

func getSettingsKeyboard() [][]tgbotapi.InlineKeyboardButton {
	var maxTokens []tgbotapi.InlineKeyboardButton
	for v := domain.MinMaxTokens; v <= domain.MaxMaxTokens; v += domain.MaxTokensStep {
		value := strconv.Itoa(v)
		maxTokens = append(
			maxTokens,
			tgbotapi.NewInlineKeyboardButtonData(value, settingsMaxTokensCallbackPrefix+value),
		)
	}

	var temperatures []tgbotapi.InlineKeyboardButton
	for tenth := 1; tenth <= temperatureTenths; tenth++ {
		value := formatTemperature(float64(tenth) / temperatureTenths)
		temperatures = append(
			temperatures,
			tgbotapi.NewInlineKeyboardButtonData("🌡 "+value, settingsTemperatureCallbackPrefix+value),
		)
	}

	var keyboard [][]tgbotapi.InlineKeyboardButton
	keyboard = append(keyboard, rows(maxTokens, settingsKeyboardRowSize)...)
	keyboard = append(keyboard, rows(temperatures, settingsKeyboardRowSize)...)
	keyboard = append(keyboard, getReturnKeyboard()...)

	return keyboard
}

func rows(
	buttons []tgbotapi.InlineKeyboardButton,
	size int,
) [][]tgbotapi.InlineKeyboardButton {
	var keyboard [][]tgbotapi.InlineKeyboardButton

	for i := 0; i < len(buttons); i += size {
		keyboard = append(keyboard, buttons[i:min(i+size, len(buttons))])
	}

	return keyboard
}

func formatTemperature(t float64) string {
	return strconv.FormatFloat(t, 'f', temperatureCallbackFormatPrecision, 64)
}
