package service

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timmy/memeverse/internal/domain"
)

func makeMemes(n int) []domain.Meme {
	out := make([]domain.Meme, n)
	for i := range out {
		out[i] = domain.Meme{ID: fmt.Sprintf("m%d", i)}
	}
	return out
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		page      int
		perPage   int
		wantLen   int
		wantFirst string
		wantMore  bool
	}{
		{"first page", 20, 1, 9, 9, "m0", true},
		{"last partial page", 20, 3, 9, 2, "m18", false},
		{"past the end", 20, 4, 9, 0, "", false},
		{"zero page clamps", 5, 0, 9, 5, "m0", false},
		{"default per page", 12, 1, 0, DefaultPerPage, "m0", true},
		{"exact fit", 9, 1, 9, 9, "m0", false},
		{"empty", 0, 1, 9, 0, "", false},
		{"per page capped", 150, 1, 1000, MaxPerPage, "m0", true},
		{"huge per page", 2, 2, math.MaxInt, 0, "", false},
		{"huge page number", 2, 1 << 62, 4, 0, "", false},
		{"max int page", 30, math.MaxInt, 1, 0, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(makeMemes(tt.total), tt.page, tt.perPage)
			assert.Len(t, p.Items, tt.wantLen)
			assert.Equal(t, tt.total, p.Total)
			assert.Equal(t, tt.wantMore, p.HasMore)
			assert.GreaterOrEqual(t, p.Page, 1)
			assert.Greater(t, p.PerPage, 0)
			assert.LessOrEqual(t, p.PerPage, MaxPerPage)
			if tt.wantFirst != "" {
				assert.Equal(t, tt.wantFirst, p.Items[0].ID)
			}
		})
	}
}

func TestExplore_SearchOverridesCategory(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t, nil)
	_, err := store.Upload(ctx, domain.MemeDraft{Title: "cat new", URL: "u", Category: domain.CategoryNew}, "o")
	require.NoError(t, err)
	_, err = store.Upload(ctx, domain.MemeDraft{Title: "cat classic", URL: "u", Category: domain.CategoryClassic}, "o")
	require.NoError(t, err)
	_, err = store.Upload(ctx, domain.MemeDraft{Title: "dog", URL: "u", Category: domain.CategoryNew}, "o")
	require.NoError(t, err)

	page, err := store.Explore(ctx, ExploreQuery{Category: domain.CategoryNew, Search: "cat"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total, "search spans every category")

	page, err = store.Explore(ctx, ExploreQuery{Category: domain.CategoryNew})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)

	page, err = store.Explore(ctx, ExploreQuery{})
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total, "empty category defaults to Trending")
}

func TestExplore_SortsBeforePaging(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t, nil)
	var last *domain.Meme
	for i := 0; i < 4; i++ {
		m, err := store.Upload(ctx, domain.MemeDraft{Title: fmt.Sprintf("m%d", i), URL: "u", Category: domain.CategoryNew}, "o")
		require.NoError(t, err)
		last = m
	}
	_, err := store.ToggleLike(ctx, last.ID, "u")
	require.NoError(t, err)

	page, err := store.Explore(ctx, ExploreQuery{Category: domain.CategoryNew, Sort: domain.SortByLikes, PerPage: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, last.ID, page.Items[0].ID)
	assert.True(t, page.HasMore)
}
