package app

import (
	"context"
	"log"

	"askme-quiz-service/internal/domain"
)

// ThemeRepository persists the theme preference per client.
type ThemeRepository interface {
	LoadTheme(ctx context.Context, clientID string) (domain.Theme, bool, error)
	SaveTheme(ctx context.Context, clientID string, theme domain.Theme) error
}

// ThemeService owns the light/dark preference. It shares nothing with quiz sessions.
type ThemeService struct {
	repo ThemeRepository
}

func NewThemeService(repo ThemeRepository) *ThemeService {
	return &ThemeService{repo: repo}
}

// Get returns the stored theme, or light when absent, invalid or unreadable.
func (s *ThemeService) Get(ctx context.Context, clientID string) domain.Theme {
	theme, ok, err := s.repo.LoadTheme(ctx, clientID)
	if err != nil {
		log.Printf("load theme for %s: %v", clientID, err)
		return domain.DefaultTheme
	}
	if !ok {
		return domain.DefaultTheme
	}
	return domain.ParseTheme(string(theme))
}

// Set writes the theme on every change.
func (s *ThemeService) Set(ctx context.Context, clientID string, theme domain.Theme) error {
	if !theme.Valid() {
		return domain.ErrInvalidTheme
	}
	return s.repo.SaveTheme(ctx, clientID, theme)
}
