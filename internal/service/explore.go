package service

import (
	"context"

	"github.com/timmy/memeverse/internal/domain"
)

// DefaultPerPage matches the explore grid: three rows of three.
const DefaultPerPage = 9

// MaxPerPage caps the page size a caller may request.
const MaxPerPage = 100

// Page is one slice of a longer listing.
type Page struct {
	Items   []domain.Meme `json:"items"`
	Page    int           `json:"page"`
	PerPage int           `json:"per_page"`
	Total   int           `json:"total"`
	HasMore bool          `json:"has_more"`
}

// Paginate cuts the 1-based page out of memes. page < 1 is treated as 1,
// perPage <= 0 as DefaultPerPage and perPage > MaxPerPage as MaxPerPage.
// A page past the end is empty.
func Paginate(memes []domain.Meme, page, perPage int) Page {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	// Compare in page units so huge page numbers cannot overflow.
	start := len(memes)
	if page-1 <= len(memes)/perPage {
		start = min((page-1)*perPage, len(memes))
	}
	end := min(start+perPage, len(memes))

	items := make([]domain.Meme, end-start)
	copy(items, memes[start:end])

	return Page{
		Items:   items,
		Page:    page,
		PerPage: perPage,
		Total:   len(memes),
		HasMore: end < len(memes),
	}
}

// ExploreQuery combines the explore screen's filters.
type ExploreQuery struct {
	Category domain.Category
	Search   string
	Sort     domain.SortOption
	Page     int
	PerPage  int
}

// Explore runs the explore pipeline: category filter, then search (which replaces the
// category result when non-empty), then sort, then pagination.
// An empty category means Trending and an empty sort means likes.
func (s *MemeStore) Explore(ctx context.Context, q ExploreQuery) (Page, error) {
	category := q.Category
	if category == "" {
		category = domain.CategoryTrending
	}
	sortBy := q.Sort
	if sortBy == "" {
		sortBy = domain.SortByLikes
	}

	var memes []domain.Meme
	var err error
	if q.Search != "" {
		memes, err = s.SearchByTitle(ctx, q.Search)
	} else {
		memes, err = s.QueryByCategory(ctx, category)
	}
	if err != nil {
		return Page{}, err
	}

	return Paginate(SortMemes(memes, sortBy), q.Page, q.PerPage), nil
}
