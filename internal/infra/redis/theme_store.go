package redis

import (
	"context"
	"errors"
	"time"

	"askme-quiz-service/internal/app"
	"askme-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// ThemeStore keeps theme preferences in Redis under askme-ui-theme:{clientID}.
// With a backing store it acts as a read-through cache: misses load from the backing
// store (deduplicated per client) and writes go to the backing store first.
// Without one, Redis is the store of record and keys never expire.
type ThemeStore struct {
	client  *redis.Client
	backing app.ThemeRepository
	ttl     time.Duration
	sf      singleflight.Group
}

type themeLookup struct {
	theme domain.Theme
	found bool
}

func NewThemeStore(client *redis.Client, backing app.ThemeRepository, ttl time.Duration) *ThemeStore {
	if backing == nil {
		ttl = 0
	}
	return &ThemeStore{client: client, backing: backing, ttl: ttl}
}

func (s *ThemeStore) LoadTheme(ctx context.Context, clientID string) (domain.Theme, bool, error) {
	key := s.key(clientID)

	raw, err := s.client.Get(ctx, key).Result()
	if err == nil {
		return domain.Theme(raw), true, nil
	}
	if !errors.Is(err, redis.Nil) {
		return "", false, err
	}
	if s.backing == nil {
		return "", false, nil
	}

	result, err, _ := s.sf.Do(clientID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if raw, err := s.client.Get(ctx, key).Result(); err == nil {
			return themeLookup{theme: domain.Theme(raw), found: true}, nil
		}

		theme, found, err := s.backing.LoadTheme(ctx, clientID)
		if err != nil {
			return themeLookup{}, err
		}
		if found {
			_ = s.client.Set(ctx, key, string(theme), s.ttl).Err()
		}
		return themeLookup{theme: theme, found: found}, nil
	})
	if err != nil {
		return "", false, err
	}
	lookup := result.(themeLookup)
	return lookup.theme, lookup.found, nil
}

func (s *ThemeStore) SaveTheme(ctx context.Context, clientID string, theme domain.Theme) error {
	if s.backing != nil {
		if err := s.backing.SaveTheme(ctx, clientID, theme); err != nil {
			return err
		}
	}
	return s.client.Set(ctx, s.key(clientID), string(theme), s.ttl).Err()
}

func (s *ThemeStore) key(clientID string) string {
	return domain.ThemeKey + ":" + clientID
}
