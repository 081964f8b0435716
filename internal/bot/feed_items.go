package bot

import (
	"fmt"
	"strings"

	"sangkhep/internal/domain"
	"sangkhep/internal/markdown"
)

const (
	feedItemsHeader         = "📰 *Latest articles*\n\n"
	feedItemsContinueHeader = "📰 *Latest articles \\(continue\\)*\n\n"
	feedItemDateLayout      = "2006-01-02"
)

// formatFeedItems renders items as MarkdownV2 messages within Telegram's
// length limit. Sending a listed link back to the bot fetches it.
func formatFeedItems(items []domain.FeedItem) []string {
	var messages []string
	var currentMessage strings.Builder

	currentMessage.WriteString(feedItemsHeader)
	headerLength := currentMessage.Len()

	for _, item := range items {
		bulletPoint := formatFeedItem(item)

		if runeCount(currentMessage.String())+runeCount(bulletPoint) > telegramMessageMaxLength {
			messages = append(messages, currentMessage.String())
			currentMessage.Reset()
			currentMessage.WriteString(feedItemsContinueHeader)
		}

		currentMessage.WriteString(bulletPoint)
	}

	if currentMessage.Len() > headerLength {
		messages = append(messages, currentMessage.String())
	}

	return messages
}

func formatFeedItem(item domain.FeedItem) string {
	title := truncate(item.Title, previewLength)

	line := fmt.Sprintf("– [%s](%s)", markdown.EscapeV2(title), markdown.EscapeLinkURLV2(item.URL))
	if !item.Published.IsZero() {
		line += " " + markdown.EscapeV2(item.Published.UTC().Format(feedItemDateLayout))
	}

	return line + "\n\n"
}
