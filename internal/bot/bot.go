package bot

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"sangkhep/internal/domain"
	"sangkhep/internal/ratelimiter"
	"sangkhep/internal/session"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	maxBackoffSeconds         = 60
	initialBackoffSeconds     = 3
	backoffGrowthFactor       = 2
	resetOffsetBackoffSeconds = 30

	// Covers a full summarization timeout plus fetching and sending.
	updateProcessingTimeout = 5 * time.Minute

	BotUpdateTimeout = 60

	sessionIDPrefix = "tg:"
)

// Sessions is the orchestrator surface the bot drives.
type Sessions interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	Open(ctx context.Context, id string) (*domain.Session, error)
	Reset(ctx context.Context, id string) error
	Fetch(ctx context.Context, id string, url string) (string, error)
	SetInput(ctx context.Context, id string, text string) error
	SetOptions(ctx context.Context, id string, options domain.Options) error
	Summarize(ctx context.Context, id string, params session.SummarizeParams) (string, error)
	Ask(ctx context.Context, id string, params session.AskParams) (string, error)
}

type FeedLister interface {
	LatestItems(ctx context.Context, feedURL string, limit int) ([]domain.FeedItem, error)
}

type Bot struct {
	api              *tgbotapi.BotAPI
	rateLimiter      *ratelimiter.RateLimiter
	sessions         Sessions
	feeds            FeedLister
	allowedUsers     []int64
	returnKeyboard   [][]tgbotapi.InlineKeyboardButton
	menuKeyboard     [][]tgbotapi.InlineKeyboardButton
	settingsKeyboard [][]tgbotapi.InlineKeyboardButton
	articleKeyboard  [][]tgbotapi.InlineKeyboardButton
	wg               sync.WaitGroup
	log              *slog.Logger
}

func New(
	token string,
	sessions Sessions,
	feeds FeedLister,
	allowedUsers []int64,
	log *slog.Logger,
) (*Bot, error) {
	token = strings.TrimSpace(token)

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	rateLimiter := ratelimiter.New(api, log)

	return &Bot{
		api:              api,
		rateLimiter:      rateLimiter,
		sessions:         sessions,
		feeds:            feeds,
		allowedUsers:     allowedUsers,
		returnKeyboard:   getReturnKeyboard(),
		menuKeyboard:     getMenuKeyboard(),
		settingsKeyboard: getSettingsKeyboard(),
		articleKeyboard:  getArticleKeyboard(),
		log:              log,
	}, nil
}

// Start polls updates until ctx is done. Updates are handled concurrently;
// the session service keeps actions of one chat in order.
func (b *Bot) Start(ctx context.Context) {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = BotUpdateTimeout

	backoffSeconds := initialBackoffSeconds

	for {
		select {
		case <-ctx.Done():
			b.log.InfoContext(ctx, "Bot context is done",
				"error", ctx.Err())
			return
		default:
		}

		updates := b.api.GetUpdatesChan(updateConfig)
		updatesClosed := false

		for !updatesClosed {
			select {
			case <-ctx.Done():
				b.api.StopReceivingUpdates()
				b.log.InfoContext(ctx, "Bot context is done",
					"error", ctx.Err())
				return

			case update, ok := <-updates:
				if !ok {
					updatesClosed = true
					continue
				}
				updateConfig.Offset = update.UpdateID + 1

				b.wg.Go(func() {
					b.handleUpdate(ctx, &update)
				})
			}
		}

		if ctx.Err() != nil {
			return
		}

		b.log.WarnContext(ctx, "Update channel is closed, reconnecting...",
			"offset", updateConfig.Offset,
			"backoffSeconds", backoffSeconds)

		time.Sleep(time.Duration(backoffSeconds) * time.Second)

		backoffSeconds = updateBackoffSeconds(backoffSeconds)

		if backoffSeconds >= resetOffsetBackoffSeconds {
			updateConfig.Offset = 0
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update *tgbotapi.Update) {
	updateCtx, cancel := context.WithTimeout(ctx, updateProcessingTimeout)
	defer cancel()

	switch {
	case update.Message != nil && update.Message.From != nil:
		chatID, chatType := chatContext(update.Message.Chat)

		userID := update.Message.From.ID
		if !b.userAllowed(userID) {
			b.log.DebugContext(updateCtx, "User is not allowed",
				"userID", userID,
				"chatID", chatID,
				"username", update.Message.From.UserName,
				"chatType", chatType)

			return
		}

		if err := b.handleMessage(updateCtx, update.Message); err != nil {
			b.log.ErrorContext(updateCtx, "Failed to handle message",
				"error", err,
				"chatID", chatID,
				"userID", userID,
				"chatType", chatType,
				"messageID", update.Message.MessageID)
		}

	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		chatID := callbackChatID(update.CallbackQuery)

		if !b.userAllowed(update.CallbackQuery.From.ID) {
			b.log.DebugContext(updateCtx, "User is not allowed",
				"userID", update.CallbackQuery.From.ID,
				"chatID", chatID,
				"username", update.CallbackQuery.From.UserName,
				"data", update.CallbackQuery.Data)

			return
		}

		if err := b.handleCallbackQuery(updateCtx, update.CallbackQuery); err != nil {
			b.log.ErrorContext(updateCtx, "Failed to handle callback query",
				"error", err,
				"chatID", chatID,
				"userID", update.CallbackQuery.From.ID,
				"data", update.CallbackQuery.Data,
				"messageID", callbackMessageID(update.CallbackQuery))
		}
	}
}

// Stop waits for in-flight updates and stops the outgoing queue.
func (b *Bot) Stop() {
	b.wg.Wait()

	if b.rateLimiter != nil {
		b.rateLimiter.Stop()
	}
}

func (b *Bot) userAllowed(userID int64) bool {
	return len(b.allowedUsers) == 0 || slices.Contains(b.allowedUsers, userID)
}

// sessionID keys the session by chat, so a group shares one article.
func sessionID(chatID int64) string {
	return sessionIDPrefix + strconv.FormatInt(chatID, 10)
}

func chatContext(chat *tgbotapi.Chat) (int64, string) {
	if chat == nil {
		return 0, ""
	}

	return chat.ID, chat.Type
}

func callbackChatID(cb *tgbotapi.CallbackQuery) int64 {
	if cb != nil && cb.Message != nil && cb.Message.Chat != nil {
		return cb.Message.Chat.ID
	}

	return 0
}

func callbackMessageID(cb *tgbotapi.CallbackQuery) int {
	if cb != nil && cb.Message != nil {
		return cb.Message.MessageID
	}

	return 0
}

func updateBackoffSeconds(backoffSeconds int) int {
	if backoffSeconds < maxBackoffSeconds {
		backoffSeconds *= backoffGrowthFactor
		if backoffSeconds > maxBackoffSeconds {
			backoffSeconds = maxBackoffSeconds
		}
	}
	return backoffSeconds
}
