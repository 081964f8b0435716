package ratelimiter

import (
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type fakeSender struct {
	mu     sync.Mutex
	sentAt []time.Time
	err    error
}

func (f *fakeSender) Send(_ tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sentAt = append(f.sentAt, time.Now())

	return tgbotapi.Message{MessageID: len(f.sentAt)}, f.err
}

func (f *fakeSender) Request(_ tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func TestGetRate(t *testing.T) {
	if got := getRate(42); got != privateChatRate {
		t.Fatalf("expected private chat rate, got %s", got)
	}

	if got := getRate(-100); got != groupChatRate {
		t.Fatalf("expected group chat rate, got %s", got)
	}
}

func TestGetDelay(t *testing.T) {
	if got := getDelay(42, time.Now().Add(-time.Minute)); got != 0 {
		t.Fatalf("expected no delay, got %s", got)
	}

	if got := getDelay(-100, time.Now()); got <= groupChatRate-time.Second {
		t.Fatalf("expected close to group chat rate, got %s", got)
	}
}

func TestGetChatID(t *testing.T) {
	if got := getChatID(tgbotapi.NewMessage(7, "hi")); got != 7 {
		t.Fatalf("expected chat 7, got %d", got)
	}

	if got := getChatID(tgbotapi.NewChatAction(-8, tgbotapi.ChatTyping)); got != -8 {
		t.Fatalf("expected chat -8, got %d", got)
	}

	if got := getChatID(tgbotapi.NewCallback("id", "")); got != 0 {
		t.Fatalf("expected zero chat ID, got %d", got)
	}
}

func TestSendKeepsPrivateChatRate(t *testing.T) {
	sender := &fakeSender{}
	rl := New(sender, slog.Default())
	defer rl.Stop()

	for i := range 2 {
		message, err := rl.Send(tgbotapi.NewMessage(1, "hi"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if message.MessageID != i+1 {
			t.Fatalf("unexpected message ID: %d", message.MessageID)
		}
	}

	sender.mu.Lock()
	defer sender.mu.Unlock()

	if gap := sender.sentAt[1].Sub(sender.sentAt[0]); gap < privateChatRate-50*time.Millisecond {
		t.Fatalf("expected messages to be spaced by %s, got %s", privateChatRate, gap)
	}
}

func TestSendReturnsSenderError(t *testing.T) {
	sender := &fakeSender{err: errors.New("bad request")}
	rl := New(sender, slog.Default())
	defer rl.Stop()

	if _, err := rl.Send(tgbotapi.NewMessage(1, "hi")); err == nil {
		t.Fatalf("expected sender error")
	}
}

func TestSendAfterStop(t *testing.T) {
	rl := New(&fakeSender{}, slog.Default())
	rl.Stop()

	if _, err := rl.Send(tgbotapi.NewMessage(1, "hi")); err == nil {
		t.Fatalf("expected error after stop")
	}
}
