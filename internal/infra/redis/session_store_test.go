package redis

import (
	"testing"
	"time"

	"askme-quiz-service/internal/app"
	"askme-quiz-service/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestSessionStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewSessionStore(client, time.Minute)

	m := store.GetOrCreate("tab-1", func() *app.Machine {
		return app.NewMachine("tab-1", domain.ModeList, nil)
	})
	if m == nil {
		t.Fatalf("expected machine")
	}
	if !mr.Exists("askme:tab:tab-1") {
		t.Fatalf("expected redis key to be set")
	}
	if ttl := mr.TTL("askme:tab:tab-1"); ttl != time.Minute {
		t.Fatalf("expected liveness ttl of a minute, got %v", ttl)
	}

	store.Delete("tab-1")
	if mr.Exists("askme:tab:tab-1") {
		t.Fatalf("expected redis key to be removed")
	}
	if _, ok := store.Get("tab-1"); ok {
		t.Fatalf("expected machine removed")
	}
}
