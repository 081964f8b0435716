package session

import (
	"context"
	"log/slog"
	"testing"
	"time"
)

func TestServiceEvictIdle(t *testing.T) {
	store := NewMemoryStore()
	s := NewService(store, nil, nil, nil, Defaults{}, slog.Default())

	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	ctx := context.Background()

	s.now = func() time.Time { return now.Add(-48 * time.Hour) }
	if _, err := s.Open(ctx, "old"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s.now = func() time.Time { return now.Add(-time.Hour) }
	if _, err := s.Open(ctx, "fresh"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s.now = func() time.Time { return now }

	deleted, err := s.EvictIdle(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if deleted != 1 {
		t.Fatalf("expected one evicted session, got %d", deleted)
	}

	if _, err = store.GetSession(ctx, "fresh"); err != nil {
		t.Fatalf("expected fresh session to remain: %v", err)
	}
}

func TestKeyedMutexReleasesEntries(t *testing.T) {
	k := newKeyedMutex()

	unlock := k.lock("a")
	if len(k.locks) != 1 {
		t.Fatalf("expected one entry while locked")
	}

	unlock()
	if len(k.locks) != 0 {
		t.Fatalf("expected entry to be released, got %d", len(k.locks))
	}
}
