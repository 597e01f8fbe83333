package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timmy/memeverse/internal/config"
	"github.com/timmy/memeverse/internal/domain"
)

func newStores(t *testing.T) map[string]KVStore {
	t.Helper()

	gormKV, err := NewKVStore(&config.DatabaseConfig{
		Driver:      "sqlite",
		Path:        filepath.Join(t.TempDir(), "kv.db"),
		AutoMigrate: true,
	})
	require.NoError(t, err)

	return map[string]KVStore{
		"memory": NewMemoryKV(),
		"gorm":   gormKV,
	}
}

func TestKVStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, kv := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := kv.Get(ctx, "missing")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, kv.Set(ctx, "k", []byte(`{"a":1}`)))
			got, ok, err := kv.Get(ctx, "k")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.JSONEq(t, `{"a":1}`, string(got))

			// Overwrite goes through the upsert path.
			require.NoError(t, kv.Set(ctx, "k", []byte(`{"a":2}`)))
			got, _, err = kv.Get(ctx, "k")
			require.NoError(t, err)
			assert.JSONEq(t, `{"a":2}`, string(got))
		})
	}
}

func TestMemoryKV_CopiesValues(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	value := []byte("abc")
	require.NoError(t, kv.Set(ctx, "k", value))
	value[0] = 'z'

	got, _, _ := kv.Get(ctx, "k")
	assert.Equal(t, "abc", string(got))
}

func TestCollections_CorruptValueIsEmpty(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	require.NoError(t, kv.Set(ctx, KeyMemes, []byte(`[{"id":"a"`)))
	require.NoError(t, kv.Set(ctx, KeyLikes, []byte(`not json`)))

	c := NewCollections(kv, nil)

	memes, err := c.LoadMemes(ctx)
	require.NoError(t, err)
	assert.Empty(t, memes)
	assert.NotNil(t, memes)

	idx, err := c.LoadIndex(ctx, KeyLikes)
	require.NoError(t, err)
	assert.Empty(t, idx)
}

func TestCollections_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewCollections(NewMemoryKV(), nil)

	memes := []domain.Meme{{ID: "m1", Title: "Cat", Category: domain.CategoryNew}}
	require.NoError(t, c.SaveMemes(ctx, memes))

	loaded, err := c.LoadMemes(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "Cat", loaded[0].Title)
	assert.NotNil(t, loaded[0].Comments, "nil comments are normalised to empty")

	idx := Index{}
	idx.Add("u1", "m1")
	idx.Add("u1", "m2")
	require.NoError(t, c.SaveIndex(ctx, KeyLikes, idx))

	got, err := c.LoadIndex(ctx, KeyLikes)
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2"}, got["u1"])
}

func TestIndex_AddRemoveContains(t *testing.T) {
	idx := Index{}
	assert.False(t, idx.Contains("u", "m"))

	idx.Add("u", "m")
	idx.Add("u", "n")
	assert.True(t, idx.Contains("u", "m"))

	idx.Remove("u", "m")
	assert.False(t, idx.Contains("u", "m"))
	assert.Equal(t, []string{"n"}, idx["u"])

	_, ok := idx.Set("u")["n"]
	assert.True(t, ok)
}
