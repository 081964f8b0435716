package article_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sangkhep/internal/article"
)

const testRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Khmer News</title>
  <link>https://news.example.com</link>
  <item>
    <title>First story</title>
    <link>https://news.example.com/1</link>
    <pubDate>Mon, 13 Oct 2025 08:00:00 +0000</pubDate>
  </item>
  <item>
    <title>No link</title>
  </item>
  <item>
    <title></title>
    <link>https://news.example.com/2</link>
  </item>
  <item>
    <title>Third story</title>
    <link>https://news.example.com/3</link>
  </item>
</channel>
</rss>`

func TestFeedListerLatestItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(testRSS))
	}))
	defer srv.Close()

	items, err := article.NewFeedLister(time.Second).LatestItems(context.Background(), srv.URL, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	if items[0].Title != "First story" || items[0].URL != "https://news.example.com/1" {
		t.Fatalf("unexpected first item: %+v", items[0])
	}

	if items[0].Published.IsZero() {
		t.Fatalf("expected published time to be parsed")
	}

	if items[1].Title != "https://news.example.com/2" {
		t.Fatalf("expected empty title to fall back to link, got %q", items[1].Title)
	}
}

func TestFeedListerEmptyURL(t *testing.T) {
	if _, err := article.NewFeedLister(time.Second).LatestItems(context.Background(), "  ", 5); err == nil {
		t.Fatalf("expected error for empty feed URL")
	}
}
