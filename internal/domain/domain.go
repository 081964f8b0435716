package domain

import (
	"errors"
	"time"
)

const (
	MinMaxTokens     = 64
	MaxMaxTokens     = 512
	DefaultMaxTokens = 256
	MaxTokensStep    = 32

	MinTemperature     = 0.1
	MaxTemperature     = 1.0
	DefaultTemperature = 0.5
	TemperatureStep    = 0.1
)

var ErrSessionNotFound = errors.New("session not found")

// Options are the generation parameters sent with every summarize call.
type Options struct {
	MaxTokens   int
	Temperature float64
}

// DefaultOptions mirrors the defaults of the interactive sliders.
func DefaultOptions() Options {
	return Options{
		MaxTokens:   DefaultMaxTokens,
		Temperature: DefaultTemperature,
	}
}

func (o Options) Valid() bool {
	return o.MaxTokens >= MinMaxTokens &&
		o.MaxTokens <= MaxMaxTokens &&
		o.Temperature >= MinTemperature-1e-9 &&
		o.Temperature <= MaxTemperature+1e-9
}

// Session holds the state of one interactive user engagement: exactly one
// current article text and one current summary.
type Session struct {
	ID        string
	InputText string
	Summary   string
	Options   Options
	UpdatedAt time.Time
}

func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		Options:   DefaultOptions(),
		UpdatedAt: now,
	}
}

type FeedItem struct {
	Title     string
	URL       string
	Published time.Time
}
