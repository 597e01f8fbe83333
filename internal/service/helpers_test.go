package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/timmy/memeverse/internal/logger"
	"github.com/timmy/memeverse/internal/repository"
	"github.com/timmy/memeverse/internal/source"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type fakeTrending struct {
	items []source.TrendingItem
	err   error
	calls int
}

func (f *fakeTrending) GetSourceID() string    { return "fake" }
func (f *fakeTrending) GetDisplayName() string { return "Fake" }

func (f *fakeTrending) FetchTrending(ctx context.Context) ([]source.TrendingItem, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

var errOffline = errors.New("offline")

func quietLogger() *logger.Logger {
	return logger.New(&logger.Config{Level: "error", Format: "text", Output: io.Discard})
}

func newTestStore(t *testing.T, trending source.TrendingSource) (*MemeStore, repository.KVStore) {
	t.Helper()
	kv := repository.NewMemoryKV()
	store := NewMemeStore(kv, trending, quietLogger(), &MemeStoreConfig{
		Random: NewSeededRandom(42),
		Now:    func() time.Time { return fixedNow },
	})
	return store, kv
}

var errDiskFull = errors.New("disk full")

// failingKV wraps a KVStore and rejects writes to the keys in failKeys.
type failingKV struct {
	repository.KVStore
	failKeys map[string]bool
}

func (f *failingKV) Set(ctx context.Context, key string, value []byte) error {
	if f.failKeys[key] {
		return errDiskFull
	}
	return f.KVStore.Set(ctx, key, value)
}

func newFailingStore(t *testing.T) (*MemeStore, *failingKV) {
	t.Helper()
	kv := &failingKV{KVStore: repository.NewMemoryKV(), failKeys: map[string]bool{}}
	store := NewMemeStore(kv, nil, quietLogger(), &MemeStoreConfig{
		Random: NewSeededRandom(42),
		Now:    func() time.Time { return fixedNow },
	})
	return store, kv
}
