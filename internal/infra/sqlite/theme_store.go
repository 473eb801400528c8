package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"askme-quiz-service/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS preferences (
	client_id  TEXT    NOT NULL,
	name       TEXT    NOT NULL,
	value      TEXT    NOT NULL,
	updated_at INTEGER NOT NULL DEFAULT (strftime('%s','now')),
	PRIMARY KEY (client_id, name)
)`

// ThemeStore persists theme preferences in a local SQLite file, for single-node installs.
type ThemeStore struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and ensures the schema exists.
func Open(ctx context.Context, path string) (*ThemeStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create preferences table: %w", err)
	}
	return &ThemeStore{db: db}, nil
}

func (s *ThemeStore) Close() error {
	return s.db.Close()
}

func (s *ThemeStore) LoadTheme(ctx context.Context, clientID string) (domain.Theme, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM preferences WHERE client_id = ? AND name = ?`,
		clientID, domain.ThemeKey,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load theme: %w", err)
	}
	return domain.Theme(raw), true, nil
}

func (s *ThemeStore) SaveTheme(ctx context.Context, clientID string, theme domain.Theme) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO preferences (client_id, name, value) VALUES (?, ?, ?)
		 ON CONFLICT (client_id, name) DO UPDATE SET value = excluded.value, updated_at = strftime('%s','now')`,
		clientID, domain.ThemeKey, string(theme),
	)
	if err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	return nil
}
