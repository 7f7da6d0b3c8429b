package redis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"tryout-service/internal/domain"
	"tryout-service/internal/infra/memory"
)

func TestTryOutCacheCachesInRedis(t *testing.T) {
	mr, client := newMiniredis(t)
	ctx := context.Background()

	backing := &countingStore{TryOutStore: memory.NewTryOutStore()}
	created, err := backing.CreateTryOut(ctx, sampleTryOut())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	cache := NewTryOutCache(client, backing, time.Minute, zap.NewNop())

	got, err := cache.GetTryOut(ctx, created.ID)
	if err != nil {
		t.Fatalf("get tryout: %v", err)
	}
	if backing.gets != 1 {
		t.Fatalf("expected store called once, got %d", backing.gets)
	}
	if !mr.Exists("tryout:" + created.ID) {
		t.Fatalf("expected redis key to be set")
	}

	// Second call should hit cache, store not incremented.
	again, _ := cache.GetTryOut(ctx, created.ID)
	if backing.gets != 1 {
		t.Fatalf("expected cache hit, store gets=%d", backing.gets)
	}
	if again.Questions[0].CorrectAnswer != got.Questions[0].CorrectAnswer {
		t.Fatalf("cached document differs: %+v", again)
	}
}

func TestTryOutCacheEvicts(t *testing.T) {
	mr, client := newMiniredis(t)
	ctx := context.Background()

	backing := memory.NewTryOutStore()
	created, _ := backing.CreateTryOut(ctx, sampleTryOut())
	cache := NewTryOutCache(client, backing, time.Minute, zap.NewNop())
	_, _ = cache.GetTryOut(ctx, created.ID)

	update := sampleTryOut()
	update.ID = created.ID
	update.Title = "Second edition"
	if _, err := cache.ReplaceTryOut(ctx, update); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if mr.Exists("tryout:" + created.ID) {
		t.Fatalf("expected key dropped on replace")
	}
	got, _ := cache.GetTryOut(ctx, created.ID)
	if got.Title != "Second edition" {
		t.Fatalf("expected fresh title, got %q", got.Title)
	}

	if err := cache.DeleteTryOut(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := cache.GetTryOut(ctx, created.ID); !errors.Is(err, domain.ErrTryOutNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestTryOutCacheSurvivesRedisOutage(t *testing.T) {
	mr, client := newMiniredis(t)
	ctx := context.Background()

	backing := memory.NewTryOutStore()
	created, _ := backing.CreateTryOut(ctx, sampleTryOut())
	cache := NewTryOutCache(client, backing, time.Minute, zap.NewNop())

	mr.Close()
	if _, err := cache.GetTryOut(ctx, created.ID); err != nil {
		t.Fatalf("expected fallback to store, got %v", err)
	}
}

func TestTryOutCacheDropsFillRacingReplace(t *testing.T) {
	mr, client := newMiniredis(t)
	ctx := context.Background()

	backing := newBlockingStore(memory.NewTryOutStore())
	created, _ := backing.CreateTryOut(ctx, sampleTryOut())
	cache := NewTryOutCache(client, backing, time.Minute, zap.NewNop())

	done := make(chan struct{})
	go func() {
		_, _ = cache.GetTryOut(ctx, created.ID)
		close(done)
	}()
	<-backing.loaded

	update := sampleTryOut()
	update.ID = created.ID
	update.Title = "Second edition"
	if _, err := cache.ReplaceTryOut(ctx, update); err != nil {
		t.Fatalf("replace: %v", err)
	}
	close(backing.release)
	<-done

	if mr.Exists("tryout:" + created.ID) {
		t.Fatalf("expected the old document not to be cached after replace")
	}
	got, err := cache.GetTryOut(ctx, created.ID)
	if err != nil {
		t.Fatalf("get after replace: %v", err)
	}
	if got.Title != "Second edition" {
		t.Fatalf("stale document served after replace, got %q", got.Title)
	}
}

func TestTryOutCacheDropsFillRacingDelete(t *testing.T) {
	_, client := newMiniredis(t)
	ctx := context.Background()

	backing := newBlockingStore(memory.NewTryOutStore())
	created, _ := backing.CreateTryOut(ctx, sampleTryOut())
	cache := NewTryOutCache(client, backing, time.Minute, zap.NewNop())

	done := make(chan struct{})
	go func() {
		_, _ = cache.GetTryOut(ctx, created.ID)
		close(done)
	}()
	<-backing.loaded

	if err := cache.DeleteTryOut(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	close(backing.release)
	<-done

	if _, err := cache.GetTryOut(ctx, created.ID); !errors.Is(err, domain.ErrTryOutNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestTryOutCacheZeroTTLSkipsRedis(t *testing.T) {
	mr, client := newMiniredis(t)
	ctx := context.Background()

	backing := memory.NewTryOutStore()
	created, _ := backing.CreateTryOut(ctx, sampleTryOut())
	cache := NewTryOutCache(client, backing, 0, zap.NewNop())

	if _, err := cache.GetTryOut(ctx, created.ID); err != nil {
		t.Fatalf("get tryout: %v", err)
	}
	if mr.Exists("tryout:" + created.ID) {
		t.Fatalf("expected no redis key without a ttl")
	}
}

// blockingStore parks the first GetTryOut after it has read the document,
// until release is closed.
type blockingStore struct {
	*memory.TryOutStore
	loaded  chan struct{}
	release chan struct{}
	once    sync.Once
}

func newBlockingStore(store *memory.TryOutStore) *blockingStore {
	return &blockingStore{TryOutStore: store, loaded: make(chan struct{}), release: make(chan struct{})}
}

func (s *blockingStore) GetTryOut(ctx context.Context, id string) (domain.TryOut, error) {
	t, err := s.TryOutStore.GetTryOut(ctx, id)
	s.once.Do(func() {
		close(s.loaded)
		<-s.release
	})
	return t, err
}

type countingStore struct {
	*memory.TryOutStore
	gets int
}

func (s *countingStore) GetTryOut(ctx context.Context, id string) (domain.TryOut, error) {
	s.gets++
	return s.TryOutStore.GetTryOut(ctx, id)
}

func sampleTryOut() domain.TryOut {
	return domain.TryOut{
		Title:       "Try Out UTBK 2024",
		Description: "Full mock exam",
		Duration:    60,
		Questions: []domain.Question{
			{
				Prompt:        "What is 2 + 2?",
				Options:       []string{"3", "4", "5", "6", "7"},
				CorrectAnswer: "4",
			},
		},
	}
}

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}
