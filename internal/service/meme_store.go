package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/timmy/memeverse/internal/domain"
	"github.com/timmy/memeverse/internal/logger"
	"github.com/timmy/memeverse/internal/repository"
	"github.com/timmy/memeverse/internal/source"
)

const (
	// DefaultMaxSeedLikes bounds the synthetic like count of ingested trending memes.
	DefaultMaxSeedLikes = 1000
	// RandomSampleSize is the most memes the Random category returns.
	RandomSampleSize = 10
	// DefaultTopLimit is the leaderboard size when no limit is given.
	DefaultTopLimit = 10
)

// MemeStoreConfig holds configuration and injected collaborators for MemeStore.
type MemeStoreConfig struct {
	MaxSeedLikes int
	Random       Random           // nil uses a clock-seeded source
	Now          func() time.Time // nil uses time.Now
}

// MemeStore is the sole authority over memes, comments, the like-index and the upload-index.
// Every call re-reads the whole backing collections; within this process read-modify-write
// cycles are serialised, across processes the last writer wins.
type MemeStore struct {
	collections  *repository.Collections
	trending     source.TrendingSource
	logger       *logger.Logger
	random       Random
	now          func() time.Time
	maxSeedLikes int

	mu sync.RWMutex
}

// LikeResult reports the outcome of ToggleLike.
type LikeResult struct {
	Found bool `json:"found"` // false when the meme ID did not resolve; nothing was written
	Liked bool `json:"liked"` // membership after the toggle
	Likes int  `json:"likes"` // like count after the toggle
}

// NewMemeStore creates a new meme store.
// Parameters:
//   - kv: key-value substrate holding every collection.
//   - trending: external trending source used by IngestTrending.
//   - log: logger instance.
//   - cfg: optional configuration; nil uses defaults.
//
// Returns:
//   - *MemeStore: initialized store.
func NewMemeStore(kv repository.KVStore, trending source.TrendingSource, log *logger.Logger, cfg *MemeStoreConfig) *MemeStore {
	if cfg == nil {
		cfg = &MemeStoreConfig{}
	}
	if log == nil {
		log = logger.GetDefault()
	}
	s := &MemeStore{
		collections:  repository.NewCollections(kv, log),
		trending:     trending,
		logger:       log,
		random:       cfg.Random,
		now:          cfg.Now,
		maxSeedLikes: cfg.MaxSeedLikes,
	}
	if s.random == nil {
		s.random = NewRandom()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.maxSeedLikes <= 0 {
		s.maxSeedLikes = DefaultMaxSeedLikes
	}
	return s
}

// log returns a logger from context if available, otherwise returns the store logger
func (s *MemeStore) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil && l != logger.GetDefault() {
		return l
	}
	return s.logger
}

// IngestTrending pulls the trending source and appends every item as a Trending meme.
// Items are never de-duplicated against earlier ingestions.
// On any failure the previously stored Trending memes are returned instead; the failure is
// only logged.
// Parameters:
//   - ctx: context for cancellation and deadlines of the network call.
//
// Returns:
//   - []domain.Meme: freshly ingested memes, or the cached Trending memes on failure.
func (s *MemeStore) IngestTrending(ctx context.Context) []domain.Meme {
	start := time.Now()

	memes, err := s.IngestFrom(ctx, s.trending)
	if err != nil {
		s.log(ctx).WithFields(logger.Fields{
			logger.FieldSource: s.sourceID(),
		}).WithError(err).Warn("Trending ingestion failed, serving cached trending memes")

		cached, cacheErr := s.QueryByCategory(ctx, domain.CategoryTrending)
		if cacheErr != nil {
			s.log(ctx).WithError(cacheErr).Error("Failed to read cached trending memes")
			return []domain.Meme{}
		}
		return cached
	}

	logger.With(logger.Fields{
		logger.FieldSource:     s.sourceID(),
		logger.FieldCount:      len(memes),
		logger.FieldDurationMs: time.Since(start).Milliseconds(),
	}).Info(ctx, "Trending ingestion completed")

	return memes
}

func (s *MemeStore) sourceID() string {
	if s.trending == nil {
		return ""
	}
	return s.trending.GetSourceID()
}

// IngestFrom pulls src once and appends every item as a Trending meme with a random seed
// like count. Unlike IngestTrending it reports failures to the caller and writes nothing
// on error.
func (s *MemeStore) IngestFrom(ctx context.Context, src source.TrendingSource) ([]domain.Meme, error) {
	if src == nil {
		return nil, fmt.Errorf("no trending source configured")
	}

	items, err := src.FetchTrending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch trending items: %w", err)
	}

	now := s.now().UTC()
	fresh := make([]domain.Meme, 0, len(items))
	for _, item := range items {
		id := item.ID
		if id == "" {
			id = uuid.New().String()
		}
		fresh = append(fresh, domain.Meme{
			ID:        id,
			Title:     item.Name,
			URL:       item.URL,
			Width:     item.Width,
			Height:    item.Height,
			BoxCount:  item.BoxCount,
			Category:  domain.CategoryTrending,
			CreatedAt: now,
			Likes:     s.random.IntN(s.maxSeedLikes),
			Comments:  []domain.Comment{},
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.collections.LoadMemes(ctx)
	if err != nil {
		return nil, err
	}
	all = append(all, fresh...)
	if err := s.collections.SaveMemes(ctx, all); err != nil {
		return nil, fmt.Errorf("failed to store trending memes: %w", err)
	}

	return cloneAll(fresh), nil
}

// AllMemes returns every stored meme in store order.
func (s *MemeStore) AllMemes(ctx context.Context) ([]domain.Meme, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collections.LoadMemes(ctx)
}

// QueryByCategory lists memes of one category in store order.
// The Random category instead returns at most RandomSampleSize memes drawn from a shuffle
// of the whole store.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - category: category to filter by.
//
// Returns:
//   - []domain.Meme: matching memes.
//   - error: non-nil if the backing store cannot be read.
func (s *MemeStore) QueryByCategory(ctx context.Context, category domain.Category) ([]domain.Meme, error) {
	all, err := s.AllMemes(ctx)
	if err != nil {
		return nil, err
	}

	if category == domain.CategoryRandom {
		s.random.Shuffle(len(all), func(i, j int) {
			all[i], all[j] = all[j], all[i]
		})
		if len(all) > RandomSampleSize {
			all = all[:RandomSampleSize]
		}
		return all, nil
	}

	out := []domain.Meme{}
	for _, m := range all {
		if m.Category == category {
			out = append(out, m)
		}
	}
	return out, nil
}

// SearchByTitle returns memes whose title contains query, ignoring case.
// An empty query matches every meme.
func (s *MemeStore) SearchByTitle(ctx context.Context, query string) ([]domain.Meme, error) {
	all, err := s.AllMemes(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	out := []domain.Meme{}
	for _, m := range all {
		if strings.Contains(strings.ToLower(m.Title), needle) {
			out = append(out, m)
		}
	}
	return out, nil
}

// SortMemes returns a sorted copy of memes, leaving the input untouched.
// likes, date and comments all sort descending; an unknown key keeps input order.
func SortMemes(memes []domain.Meme, by domain.SortOption) []domain.Meme {
	out := make([]domain.Meme, len(memes))
	copy(out, memes)

	var less func(a, b domain.Meme) bool
	switch by {
	case domain.SortByLikes:
		less = func(a, b domain.Meme) bool { return a.Likes > b.Likes }
	case domain.SortByDate:
		less = func(a, b domain.Meme) bool { return a.CreatedAt.After(b.CreatedAt) }
	case domain.SortByComments:
		less = func(a, b domain.Meme) bool { return len(a.Comments) > len(b.Comments) }
	default:
		return out
	}

	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// GetByID retrieves a meme by its ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: meme ID.
//
// Returns:
//   - *domain.Meme: meme record, nil if no meme has this ID.
//   - error: non-nil if the backing store cannot be read.
func (s *MemeStore) GetByID(ctx context.Context, id string) (*domain.Meme, error) {
	all, err := s.AllMemes(ctx)
	if err != nil {
		return nil, err
	}
	if i := indexOf(all, id); i >= 0 {
		m := all[i]
		return &m, nil
	}
	return nil, nil
}

// ToggleLike flips userID's like on memeID and moves the like count by exactly one.
// The count has no floor. An unresolved memeID writes nothing and reports Found=false.
func (s *MemeStore) ToggleLike(ctx context.Context, memeID, userID string) (LikeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.collections.LoadMemes(ctx)
	if err != nil {
		return LikeResult{}, err
	}
	i := indexOf(all, memeID)
	if i < 0 {
		return LikeResult{}, nil
	}

	likes, err := s.collections.LoadIndex(ctx, repository.KeyLikes)
	if err != nil {
		return LikeResult{}, err
	}

	liked := likes.Contains(userID, memeID)
	if liked {
		all[i].Likes--
		likes.Remove(userID, memeID)
	} else {
		all[i].Likes++
		likes.Add(userID, memeID)
	}

	if err := s.collections.SaveMemes(ctx, all); err != nil {
		return LikeResult{}, fmt.Errorf("failed to store memes: %w", err)
	}
	if err := s.collections.SaveIndex(ctx, repository.KeyLikes, likes); err != nil {
		if liked {
			all[i].Likes++
		} else {
			all[i].Likes--
		}
		s.rollbackMemes(ctx, all)
		return LikeResult{}, fmt.Errorf("failed to store like index: %w", err)
	}

	s.log(ctx).WithFields(logger.Fields{
		logger.FieldMemeID: memeID,
		logger.FieldUserID: userID,
		"liked":            !liked,
	}).Debug("Like toggled")

	return LikeResult{Found: true, Liked: !liked, Likes: all[i].Likes}, nil
}

// rollbackMemes restores the meme collection when the index write after it fails.
func (s *MemeStore) rollbackMemes(ctx context.Context, memes []domain.Meme) {
	if err := s.collections.SaveMemes(ctx, memes); err != nil {
		s.log(ctx).WithError(err).Error("Failed to roll back meme collection")
	}
}

// IsLikedBy reports whether userID currently likes memeID.
// Missing index entries and unreadable stores read as false.
func (s *MemeStore) IsLikedBy(ctx context.Context, memeID, userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	likes, err := s.collections.LoadIndex(ctx, repository.KeyLikes)
	if err != nil {
		s.log(ctx).WithError(err).Warn("Failed to read like index")
		return false
	}
	return likes.Contains(userID, memeID)
}

// AppendComment appends a new comment to a meme.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - memeID: meme to comment on.
//   - text: comment body, not validated here.
//   - author: display name of the commenter.
//
// Returns:
//   - *domain.Comment: the stored comment, nil if memeID did not resolve.
//   - error: non-nil if the backing store cannot be read or written.
func (s *MemeStore) AppendComment(ctx context.Context, memeID, text, author string) (*domain.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.collections.LoadMemes(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(all, memeID)
	if i < 0 {
		return nil, nil
	}

	comment := domain.Comment{
		ID:        "comment-" + uuid.New().String(),
		Text:      text,
		Author:    author,
		CreatedAt: s.now().UTC(),
	}
	all[i].Comments = append(all[i].Comments, comment)

	if err := s.collections.SaveMemes(ctx, all); err != nil {
		return nil, fmt.Errorf("failed to store comment: %w", err)
	}
	return &comment, nil
}

// Upload materialises draft as a new meme owned by userID and records it in the
// upload-index.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - draft: caller-supplied meme fields.
//   - userID: owner of the upload.
//
// Returns:
//   - *domain.Meme: the stored meme with generated ID, timestamp, zero likes and no comments.
//   - error: non-nil if the backing store cannot be read or written.
func (s *MemeStore) Upload(ctx context.Context, draft domain.MemeDraft, userID string) (*domain.Meme, error) {
	meme := domain.Meme{
		ID:        "meme-" + uuid.New().String(),
		Title:     draft.Title,
		URL:       draft.URL,
		Width:     draft.Width,
		Height:    draft.Height,
		Category:  draft.Category,
		Author:    draft.Author,
		AuthorID:  userID,
		CreatedAt: s.now().UTC(),
		Likes:     0,
		Comments:  []domain.Comment{},
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.collections.LoadMemes(ctx)
	if err != nil {
		return nil, err
	}
	uploads, err := s.collections.LoadIndex(ctx, repository.KeyUploads)
	if err != nil {
		return nil, err
	}
	if err := s.collections.SaveMemes(ctx, append(all, meme)); err != nil {
		return nil, fmt.Errorf("failed to store meme: %w", err)
	}

	uploads.Add(userID, meme.ID)
	if err := s.collections.SaveIndex(ctx, repository.KeyUploads, uploads); err != nil {
		s.rollbackMemes(ctx, all)
		return nil, fmt.Errorf("failed to store upload index: %w", err)
	}

	s.log(ctx).WithFields(logger.Fields{
		logger.FieldMemeID: meme.ID,
		logger.FieldUserID: userID,
	}).Info("Meme uploaded")

	out := meme.Clone()
	return &out, nil
}

// ListUploadedBy returns the memes userID uploaded, in store order.
func (s *MemeStore) ListUploadedBy(ctx context.Context, userID string) ([]domain.Meme, error) {
	return s.listIndexed(ctx, repository.KeyUploads, userID)
}

// ListLikedBy returns the memes userID currently likes, in store order.
func (s *MemeStore) ListLikedBy(ctx context.Context, userID string) ([]domain.Meme, error) {
	return s.listIndexed(ctx, repository.KeyLikes, userID)
}

func (s *MemeStore) listIndexed(ctx context.Context, key, userID string) ([]domain.Meme, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all, err := s.collections.LoadMemes(ctx)
	if err != nil {
		return nil, err
	}
	idx, err := s.collections.LoadIndex(ctx, key)
	if err != nil {
		return nil, err
	}

	members := idx.Set(userID)
	out := []domain.Meme{}
	for _, m := range all {
		if _, ok := members[m.ID]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

// TopByLikes returns the limit most-liked memes; limit <= 0 uses DefaultTopLimit.
func (s *MemeStore) TopByLikes(ctx context.Context, limit int) ([]domain.Meme, error) {
	if limit <= 0 {
		limit = DefaultTopLimit
	}
	all, err := s.AllMemes(ctx)
	if err != nil {
		return nil, err
	}
	sorted := SortMemes(all, domain.SortByLikes)
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted, nil
}

func indexOf(memes []domain.Meme, id string) int {
	for i := range memes {
		if memes[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneAll(memes []domain.Meme) []domain.Meme {
	out := make([]domain.Meme, len(memes))
	for i, m := range memes {
		out[i] = m.Clone()
	}
	return out
}
