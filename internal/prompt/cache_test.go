package prompt

import (
	"context"
	"errors"
	"testing"

	"github.com/Killzin1000/quality-eco/internal/logger"
	"github.com/Killzin1000/quality-eco/internal/storage"
)

type stubStore struct {
	prompts map[string]string
	err     error
	calls   int
}

func (s *stubStore) LoadActivePrompts(context.Context) (map[string]string, error) {
	s.calls++
	return s.prompts, s.err
}

func (s *stubStore) SavePrompt(context.Context, *storage.Prompt) error { return nil }

func (s *stubStore) CountPrompts(context.Context) (int, error) { return len(s.prompts), nil }

func TestCacheRefresh(t *testing.T) {
	t.Parallel()

	store := &stubStore{prompts: map[string]string{"persona": "You are an advisor."}}
	cache := NewCache(store, logger.New("error"), nil)

	count, err := cache.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 module, got %d", count)
	}
	if !cache.Loaded() {
		t.Error("expected cache to report loaded")
	}

	content, ok := cache.Get("persona")
	if !ok || content != "You are an advisor." {
		t.Errorf("Get(persona) = (%q, %v)", content, ok)
	}
}

func TestCacheRefreshEmptyStore(t *testing.T) {
	t.Parallel()

	store := &stubStore{prompts: map[string]string{}}
	cache := NewCache(store, logger.New("error"), nil)

	count, err := cache.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 modules, got %d", count)
	}
	if cache.Loaded() {
		t.Error("empty store must not report loaded")
	}
}

func TestCacheRefreshKeepsEntriesOnError(t *testing.T) {
	t.Parallel()

	store := &stubStore{prompts: map[string]string{"persona": "v1"}}
	cache := NewCache(store, logger.New("error"), nil)
	if _, err := cache.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	store.err = errors.New("store down")
	if _, err := cache.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh error")
	}

	if content, ok := cache.Get("persona"); !ok || content != "v1" {
		t.Errorf("previous entries must survive a failed refresh, got (%q, %v)", content, ok)
	}
}

func TestCacheEnsureLazyLoads(t *testing.T) {
	t.Parallel()

	store := &stubStore{prompts: map[string]string{"persona": "v1"}}
	cache := NewCache(store, logger.New("error"), nil)

	if !cache.Ensure(context.Background()) {
		t.Fatal("Ensure should load and report true")
	}
	if !cache.Ensure(context.Background()) {
		t.Fatal("second Ensure should hit the cache")
	}
	if store.calls != 1 {
		t.Errorf("expected one store load, got %d", store.calls)
	}
}

func TestCacheSnapshotIsACopy(t *testing.T) {
	t.Parallel()

	store := &stubStore{prompts: map[string]string{"persona": "v1"}}
	cache := NewCache(store, logger.New("error"), nil)
	if _, err := cache.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	snap := cache.Snapshot()
	snap["persona"] = "mutated"

	if content, _ := cache.Get("persona"); content != "v1" {
		t.Errorf("snapshot mutation leaked into cache: %q", content)
	}
}
