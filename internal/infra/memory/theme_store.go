package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"askme-quiz-service/internal/app"
	"askme-quiz-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// ThemeStore keeps theme preferences in process memory (lost on restart).
type ThemeStore struct {
	mu     sync.RWMutex
	themes map[string]domain.Theme
}

func NewThemeStore() *ThemeStore {
	return &ThemeStore{themes: make(map[string]domain.Theme)}
}

func (s *ThemeStore) LoadTheme(_ context.Context, clientID string) (domain.Theme, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	theme, ok := s.themes[clientID]
	return theme, ok, nil
}

func (s *ThemeStore) SaveTheme(_ context.Context, clientID string, theme domain.Theme) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.themes[clientID] = theme
	return nil
}

// ThemeCache caches a durable theme store with TTL to avoid repeated DB hits.
// Writes go through to the backing store first, then refresh the cache.
type ThemeCache struct {
	backing app.ThemeRepository
	ttl     time.Duration
	clock   func() time.Time
	sf      singleflight.Group
	rnd     *rand.Rand
	rndMu   sync.Mutex

	mu    sync.RWMutex
	cache map[string]cachedTheme
}

type cachedTheme struct {
	theme     domain.Theme
	found     bool
	expiresAt time.Time
}

type themeLookup struct {
	theme domain.Theme
	found bool
}

func NewThemeCache(backing app.ThemeRepository, ttl time.Duration) *ThemeCache {
	return &ThemeCache{
		backing: backing,
		ttl:     ttl,
		clock:   time.Now,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:   make(map[string]cachedTheme),
	}
}

func (c *ThemeCache) LoadTheme(ctx context.Context, clientID string) (domain.Theme, bool, error) {
	if entry, ok := c.fresh(clientID); ok {
		return entry.theme, entry.found, nil
	}

	result, err, _ := c.sf.Do(clientID, func() (interface{}, error) {
		if entry, ok := c.fresh(clientID); ok {
			return themeLookup{theme: entry.theme, found: entry.found}, nil
		}

		theme, found, err := c.backing.LoadTheme(ctx, clientID)
		if err != nil {
			return themeLookup{}, err
		}
		c.store(clientID, theme, found)
		return themeLookup{theme: theme, found: found}, nil
	})
	if err != nil {
		return "", false, err
	}
	lookup := result.(themeLookup)
	return lookup.theme, lookup.found, nil
}

func (c *ThemeCache) SaveTheme(ctx context.Context, clientID string, theme domain.Theme) error {
	if err := c.backing.SaveTheme(ctx, clientID, theme); err != nil {
		return err
	}
	c.store(clientID, theme, true)
	return nil
}

func (c *ThemeCache) fresh(clientID string) (cachedTheme, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[clientID]
	if !ok || !entry.expiresAt.After(c.clock()) {
		return cachedTheme{}, false
	}
	return entry, true
}

func (c *ThemeCache) store(clientID string, theme domain.Theme, found bool) {
	expiresAt := c.clock().Add(c.ttlWithJitter())
	c.mu.Lock()
	c.cache[clientID] = cachedTheme{theme: theme, found: found, expiresAt: expiresAt}
	c.mu.Unlock()
}

func (c *ThemeCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
