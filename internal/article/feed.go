package article

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"sangkhep/internal/domain"
)

const DefaultFeedItems = 10

// FeedLister lists the latest articles of an RSS, Atom or JSON feed so the
// user can pick one to summarize.
type FeedLister struct {
	parser *gofeed.Parser
}

func NewFeedLister(timeout time.Duration) *FeedLister {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	parser := gofeed.NewParser()
	parser.UserAgent = userAgent
	parser.Client = &http.Client{Timeout: timeout}

	return &FeedLister{parser: parser}
}

func (l *FeedLister) LatestItems(
	ctx context.Context,
	feedURL string,
	limit int,
) ([]domain.FeedItem, error) {
	feedURL = strings.TrimSpace(feedURL)
	if feedURL == "" {
		return nil, errors.New("feed URL is empty")
	}

	if limit <= 0 {
		limit = DefaultFeedItems
	}

	parsed, err := l.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed (URL = %s): %w", feedURL, err)
	}

	items := make([]domain.FeedItem, 0, min(limit, len(parsed.Items)))

	for _, item := range parsed.Items {
		if len(items) == limit {
			break
		}

		link := strings.TrimSpace(item.Link)
		if link == "" {
			continue
		}

		title := strings.TrimSpace(item.Title)
		if title == "" {
			title = link
		}

		var published time.Time
		if item.PublishedParsed != nil {
			published = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			published = *item.UpdatedParsed
		}

		items = append(items, domain.FeedItem{
			Title:     title,
			URL:       link,
			Published: published,
		})
	}

	return items, nil
}
