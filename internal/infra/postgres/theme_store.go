package postgres

import (
	"context"
	"errors"
	"fmt"

	"askme-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ThemeStore persists theme preferences in the preferences table.
type ThemeStore struct {
	pool *pgxpool.Pool
}

func NewThemeStore(pool *pgxpool.Pool) *ThemeStore {
	return &ThemeStore{pool: pool}
}

func (s *ThemeStore) LoadTheme(ctx context.Context, clientID string) (domain.Theme, bool, error) {
	var raw string
	err := s.pool.QueryRow(ctx,
		`SELECT value FROM preferences WHERE client_id=$1 AND name=$2`,
		clientID, domain.ThemeKey,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load theme: %w", err)
	}
	return domain.Theme(raw), true, nil
}

func (s *ThemeStore) SaveTheme(ctx context.Context, clientID string, theme domain.Theme) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO preferences (client_id, name, value, updated_at) VALUES ($1, $2, $3, now())
		 ON CONFLICT (client_id, name) DO UPDATE SET value=EXCLUDED.value, updated_at=EXCLUDED.updated_at`,
		clientID, domain.ThemeKey, string(theme),
	)
	if err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	return nil
}
