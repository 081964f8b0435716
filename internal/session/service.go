package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"sangkhep/internal/domain"
	"sangkhep/internal/qa"
	"sangkhep/internal/summarizer"
)

// ArticleFetcher extracts article text from a page URL.
type ArticleFetcher interface {
	ExtractArticleText(ctx context.Context, url string) (string, error)
}

// Defaults are operator-configured values used when a caller does not
// provide its own.
type Defaults struct {
	SummarizerURL string
	QAAPIKey      string
	QAModel       string
}

type SummarizeParams struct {
	// Endpoint overrides Defaults.SummarizerURL when not blank.
	Endpoint string
	// Text replaces the stored input text when not blank.
	Text string
	// Options replaces the stored options when not nil.
	Options *domain.Options
}

type AskParams struct {
	Question string
	// APIKey overrides Defaults.QAAPIKey when not blank.
	APIKey string
	// Model overrides Defaults.QAModel when not blank.
	Model string
}

// Service wires user actions to the fetcher, the summarization backend and
// the Q&A provider. All state lives in per-session records; actions on the
// same session never overlap.
type Service struct {
	store      Store
	fetcher    ArticleFetcher
	summarizer summarizer.Summarizer
	asker      qa.Asker
	defaults   Defaults
	locks      *keyedMutex
	now        func() time.Time
	log        *slog.Logger
}

func NewService(
	store Store,
	fetcher ArticleFetcher,
	s summarizer.Summarizer,
	asker qa.Asker,
	defaults Defaults,
	log *slog.Logger,
) *Service {
	return &Service{
		store:      store,
		fetcher:    fetcher,
		summarizer: s,
		asker:      asker,
		defaults:   defaults,
		locks:      newKeyedMutex(),
		now:        time.Now,
		log:        log,
	}
}

// Get returns the session or domain.ErrSessionNotFound.
func (s *Service) Get(ctx context.Context, id string) (*domain.Session, error) {
	return s.store.GetSession(ctx, id)
}

// Open returns the session, creating an empty one when it does not exist.
func (s *Service) Open(ctx context.Context, id string) (*domain.Session, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	return s.load(ctx, id)
}

func (s *Service) Reset(ctx context.Context, id string) error {
	unlock := s.locks.lock(id)
	defer unlock()

	if err := s.store.DeleteSession(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}

// Fetch extracts the article at url and stores it as the session's input
// text.
func (s *Service) Fetch(ctx context.Context, id string, url string) (string, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return "", ErrMissingURL
	}

	unlock := s.locks.lock(id)
	defer unlock()

	sess, err := s.load(ctx, id)
	if err != nil {
		return "", err
	}

	text, err := s.fetcher.ExtractArticleText(ctx, url)
	if err != nil {
		s.log.WarnContext(ctx, "Failed to fetch article",
			"error", err,
			"sessionID", id,
			"url", url)

		return "", fmt.Errorf("extract article text: %w", err)
	}

	if text == "" {
		s.log.InfoContext(ctx, "No article text extracted",
			"sessionID", id,
			"url", url)

		return "", ErrEmptyExtraction
	}

	sess.InputText = text
	if err = s.save(ctx, sess); err != nil {
		return "", err
	}

	s.log.InfoContext(ctx, "Article text is extracted",
		"sessionID", id,
		"url", url,
		"textLen", utf8.RuneCountInString(text))

	return text, nil
}

func (s *Service) SetInput(ctx context.Context, id string, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrMissingText
	}

	unlock := s.locks.lock(id)
	defer unlock()

	sess, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	sess.InputText = text

	return s.save(ctx, sess)
}

func (s *Service) SetOptions(ctx context.Context, id string, options domain.Options) error {
	if !options.Valid() {
		return ErrInvalidOptions
	}

	unlock := s.locks.lock(id)
	defer unlock()

	sess, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	sess.Options = options

	return s.save(ctx, sess)
}

// Summarize sends the session's input text to the backend. A successful
// result overwrites the stored summary; any failure leaves it unchanged.
func (s *Service) Summarize(ctx context.Context, id string, params SummarizeParams) (string, error) {
	endpoint := firstNonBlank(params.Endpoint, s.defaults.SummarizerURL)
	if endpoint == "" {
		return "", ErrMissingEndpoint
	}

	if params.Options != nil && !params.Options.Valid() {
		return "", ErrInvalidOptions
	}

	unlock := s.locks.lock(id)
	defer unlock()

	sess, err := s.load(ctx, id)
	if err != nil {
		return "", err
	}

	text := sess.InputText
	if strings.TrimSpace(params.Text) != "" {
		text = params.Text
	}

	if strings.TrimSpace(text) == "" {
		return "", ErrMissingText
	}

	options := sess.Options
	if params.Options != nil {
		options = *params.Options
	}

	summary, err := s.summarizer.Summarize(ctx, endpoint, summarizer.NewRequest(text, options))
	if err != nil {
		s.log.WarnContext(ctx, "Failed to summarize",
			"error", err,
			"sessionID", id,
			"endpoint", summarizer.Endpoint(endpoint),
			"maxTokens", options.MaxTokens,
			"temperature", options.Temperature)

		return "", fmt.Errorf("summarize: %w", err)
	}

	sess.InputText = text
	sess.Options = options
	sess.Summary = summary
	if err = s.save(ctx, sess); err != nil {
		return "", err
	}

	s.log.InfoContext(ctx, "Summary is stored",
		"sessionID", id,
		"textLen", utf8.RuneCountInString(text),
		"summaryLen", utf8.RuneCountInString(summary))

	return summary, nil
}

// Ask answers a question grounded only in the stored summary. Answers are
// not kept; each question is independent.
func (s *Service) Ask(ctx context.Context, id string, params AskParams) (string, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	sess, err := s.store.GetSession(ctx, id)
	if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return "", fmt.Errorf("get session: %w", err)
	}

	if sess == nil || strings.TrimSpace(sess.Summary) == "" {
		return "", ErrNoSummary
	}

	apiKey := firstNonBlank(params.APIKey, s.defaults.QAAPIKey)
	if apiKey == "" {
		return "", ErrMissingAPIKey
	}

	model := firstNonBlank(params.Model, s.defaults.QAModel)
	if model == "" {
		return "", ErrMissingModel
	}

	if strings.TrimSpace(params.Question) == "" {
		return "", ErrMissingQuestion
	}

	answer, err := s.asker.Ask(ctx, apiKey, model, sess.Summary, params.Question)
	if err != nil {
		s.log.WarnContext(ctx, "Failed to answer question",
			"error", err,
			"sessionID", id,
			"model", model)

		return "", fmt.Errorf("ask: %w", err)
	}

	return answer, nil
}

// EvictIdle deletes sessions not touched within ttl.
func (s *Service) EvictIdle(ctx context.Context, ttl time.Duration) (int64, error) {
	deleted, err := s.store.DeleteIdleSessions(ctx, s.now().Add(-ttl))
	if err != nil {
		return 0, fmt.Errorf("delete idle sessions: %w", err)
	}

	return deleted, nil
}

func (s *Service) load(ctx context.Context, id string) (*domain.Session, error) {
	sess, err := s.store.GetSession(ctx, id)
	if err == nil {
		return sess, nil
	}

	if !errors.Is(err, domain.ErrSessionNotFound) {
		return nil, fmt.Errorf("get session: %w", err)
	}

	sess = domain.NewSession(id, s.now())
	if err = s.save(ctx, sess); err != nil {
		return nil, err
	}

	return sess, nil
}

func (s *Service) save(ctx context.Context, sess *domain.Session) error {
	sess.UpdatedAt = s.now()

	if err := s.store.SaveSession(ctx, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	return nil
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}

	return ""
}
