package memory

import (
	"testing"

	"askme-quiz-service/internal/app"
	"askme-quiz-service/internal/domain"
)

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore()

	builds := 0
	build := func() *app.Machine {
		builds++
		return app.NewMachine("tab-1", domain.ModeList, nil)
	}

	first := store.GetOrCreate("tab-1", build)
	if first == nil {
		t.Fatalf("expected machine")
	}
	if again := store.GetOrCreate("tab-1", build); again != first || builds != 1 {
		t.Fatalf("expected existing machine reused, builds=%d", builds)
	}
	if _, ok := store.Get("tab-1"); !ok {
		t.Fatalf("expected machine present")
	}

	store.Delete("tab-1")
	if _, ok := store.Get("tab-1"); ok {
		t.Fatalf("expected machine removed")
	}
	if store.Len() != 0 {
		t.Fatalf("expected empty store, got %d", store.Len())
	}
}
