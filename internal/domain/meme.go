package domain

import "time"

// Category is the feed a meme belongs to.
// Values include CategoryTrending, CategoryNew, CategoryClassic, and CategoryRandom.
type Category string

const (
	CategoryTrending Category = "Trending"
	CategoryNew      Category = "New"
	CategoryClassic  Category = "Classic"
	// CategoryRandom is a query-only category: it samples the whole store.
	CategoryRandom Category = "Random"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryTrending, CategoryNew, CategoryClassic, CategoryRandom}

// IsValid reports whether c is one of the known categories.
func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Comment is an immutable remark attached to exactly one meme.
type Comment struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
}

// Meme represents one posted meme, either uploaded by a user or ingested from a trending source.
// Comments are stored inline, in insertion order.
type Meme struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Width     int       `json:"width,omitempty"`
	Height    int       `json:"height,omitempty"`
	BoxCount  int       `json:"box_count,omitempty"`
	Category  Category  `json:"category,omitempty"`
	Author    string    `json:"author,omitempty"`
	AuthorID  string    `json:"authorId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	Likes     int       `json:"likes"`
	Comments  []Comment `json:"comments"`
}

// Clone returns a deep copy of the meme so callers cannot alias stored comment slices.
func (m Meme) Clone() Meme {
	out := m
	out.Comments = make([]Comment, len(m.Comments))
	copy(out.Comments, m.Comments)
	return out
}

// MemeDraft carries the caller-supplied fields of a new upload.
// Identity, timestamps, likes, comments and ownership are assigned by the store.
type MemeDraft struct {
	Title    string   `json:"title" binding:"required"`
	URL      string   `json:"url" binding:"required"`
	Width    int      `json:"width"`
	Height   int      `json:"height"`
	Category Category `json:"category"`
	Author   string   `json:"author"`
}

// SortOption selects the ordering of a meme listing.
type SortOption string

const (
	SortByLikes    SortOption = "likes"
	SortByDate     SortOption = "date"
	SortByComments SortOption = "comments"
)
