package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"sangkhep/internal/domain"
)

func (d *Database) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	query := `select id, input_text, summary, max_tokens, temperature, updated_at
	from sessions
	where id = ?`

	var (
		s         domain.Session
		updatedAt int64
	)

	err := d.db.QueryRowContext(ctx, query, id).Scan(
		&s.ID,
		&s.InputText,
		&s.Summary,
		&s.Options.MaxTokens,
		&s.Options.Temperature,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan row: %w", err)
	}

	s.UpdatedAt = time.UnixMilli(updatedAt).UTC()

	return &s, nil
}

// SaveSession overwrites the stored row for s.ID.
func (d *Database) SaveSession(ctx context.Context, s *domain.Session) error {
	if strings.TrimSpace(s.ID) == "" {
		return errors.New("session ID is empty")
	}

	query := `insert into sessions (id, input_text, summary, max_tokens, temperature, updated_at)
	values (?, ?, ?, ?, ?, ?)
	on conflict (id) do update
	set input_text = excluded.input_text,
	summary = excluded.summary,
	max_tokens = excluded.max_tokens,
	temperature = excluded.temperature,
	updated_at = excluded.updated_at`

	_, err := d.db.ExecContext(ctx, query,
		s.ID,
		s.InputText,
		s.Summary,
		s.Options.MaxTokens,
		s.Options.Temperature,
		s.UpdatedAt.UnixMilli(),
	)

	return err
}

func (d *Database) DeleteSession(ctx context.Context, id string) error {
	_, err := d.db.ExecContext(ctx, "delete from sessions where id = ?", id)

	return err
}

func (d *Database) DeleteIdleSessions(ctx context.Context, idleSince time.Time) (int64, error) {
	res, err := d.db.ExecContext(ctx,
		"delete from sessions where updated_at < ?",
		idleSince.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("execute query: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}

	return n, nil
}
