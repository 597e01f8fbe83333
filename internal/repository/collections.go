package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/timmy/memeverse/internal/domain"
	"github.com/timmy/memeverse/internal/logger"
)

// Fixed keys of the four logical namespaces plus the mock user table.
const (
	KeyMemes = "memeverse_memes"
	KeyLikes = "memeverse_likes"
	// KeyComments is reserved: comments are embedded in meme records.
	KeyComments = "memeverse_comments"
	KeyUploads  = "memeverse_uploaded"
	KeyUsers    = "memeverse_users"
)

// Index maps a user ID to an ordered list of meme IDs.
type Index map[string][]string

// Contains reports whether memeID is listed for userID.
func (idx Index) Contains(userID, memeID string) bool {
	for _, id := range idx[userID] {
		if id == memeID {
			return true
		}
	}
	return false
}

// Add appends memeID to userID's list.
func (idx Index) Add(userID, memeID string) {
	idx[userID] = append(idx[userID], memeID)
}

// Remove drops every occurrence of memeID from userID's list.
func (idx Index) Remove(userID, memeID string) {
	ids := idx[userID]
	kept := ids[:0]
	for _, id := range ids {
		if id != memeID {
			kept = append(kept, id)
		}
	}
	idx[userID] = kept
}

// Set returns userID's list as a lookup set.
func (idx Index) Set(userID string) map[string]struct{} {
	set := make(map[string]struct{}, len(idx[userID]))
	for _, id := range idx[userID] {
		set[id] = struct{}{}
	}
	return set
}

// Collections reads and writes whole JSON collections in a KVStore.
// A missing or unparseable value is read as an empty collection.
type Collections struct {
	kv     KVStore
	logger *logger.Logger
}

// NewCollections creates a Collections accessor.
// Parameters:
//   - kv: backing key-value store.
//   - log: logger used to report corrupt values; nil uses the default logger.
//
// Returns:
//   - *Collections: accessor bound to kv.
func NewCollections(kv KVStore, log *logger.Logger) *Collections {
	if log == nil {
		log = logger.GetDefault()
	}
	return &Collections{kv: kv, logger: log}
}

// LoadMemes returns every stored meme in store order.
func (c *Collections) LoadMemes(ctx context.Context) ([]domain.Meme, error) {
	var memes []domain.Meme
	ok, err := c.load(ctx, KeyMemes, &memes)
	if err != nil {
		return nil, err
	}
	if !ok || memes == nil {
		memes = []domain.Meme{}
	}
	for i := range memes {
		if memes[i].Comments == nil {
			memes[i].Comments = []domain.Comment{}
		}
	}
	return memes, nil
}

// SaveMemes replaces the stored meme collection.
func (c *Collections) SaveMemes(ctx context.Context, memes []domain.Meme) error {
	return c.save(ctx, KeyMemes, memes)
}

// LoadIndex returns the like- or upload-index stored under key.
func (c *Collections) LoadIndex(ctx context.Context, key string) (Index, error) {
	var idx Index
	ok, err := c.load(ctx, key, &idx)
	if err != nil {
		return nil, err
	}
	if !ok || idx == nil {
		idx = Index{}
	}
	return idx, nil
}

// SaveIndex replaces the index stored under key.
func (c *Collections) SaveIndex(ctx context.Context, key string, idx Index) error {
	return c.save(ctx, key, idx)
}

// LoadUsers returns the mock user table keyed by user ID.
func (c *Collections) LoadUsers(ctx context.Context) (map[string]domain.User, error) {
	var users map[string]domain.User
	ok, err := c.load(ctx, KeyUsers, &users)
	if err != nil {
		return nil, err
	}
	if !ok || users == nil {
		users = map[string]domain.User{}
	}
	return users, nil
}

// SaveUsers replaces the mock user table.
func (c *Collections) SaveUsers(ctx context.Context, users map[string]domain.User) error {
	return c.save(ctx, KeyUsers, users)
}

// load decodes key into out. It reports false when the key is missing or corrupt,
// in which case out must be discarded.
func (c *Collections) load(ctx context.Context, key string, out interface{}) (bool, error) {
	raw, ok, err := c.kv.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if !ok || len(raw) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.logger.WithFields(logger.Fields{
			"key": key,
		}).WithError(err).Warn("Corrupt collection, treating as empty")
		return false, nil
	}
	return true, nil
}

func (c *Collections) save(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return c.kv.Set(ctx, key, raw)
}
