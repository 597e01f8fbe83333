package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/memeverse/internal/domain"
	"github.com/timmy/memeverse/internal/service"
)

// SearchHandler handles title search, categories and stats.
type SearchHandler struct {
	store    *service.MemeStore
	renderer *CommentRenderer
}

// NewSearchHandler creates a new search handler.
// Parameters:
//   - store: meme store.
//   - renderer: comment renderer for result views.
//
// Returns:
//   - *SearchHandler: initialized handler.
func NewSearchHandler(store *service.MemeStore, renderer *CommentRenderer) *SearchHandler {
	return &SearchHandler{store: store, renderer: renderer}
}

// Search handles GET /api/v1/search?q=&sort=.
func (h *SearchHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter 'q' is required"})
		return
	}

	memes, err := h.store.SearchByTitle(c.Request.Context(), query)
	if err != nil {
		internalError(c, "Search failed", err)
		return
	}
	if sortBy := c.Query("sort"); sortBy != "" {
		memes = service.SortMemes(memes, domain.SortOption(sortBy))
	}

	c.JSON(http.StatusOK, gin.H{
		"query": query,
		"items": h.renderer.memes(memes),
		"total": len(memes),
	})
}

// GetCategories handles GET /api/v1/categories.
func (h *SearchHandler) GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"categories": domain.Categories,
		"total":      len(domain.Categories),
	})
}

// Stats summarises the store.
type Stats struct {
	TotalMemes    int                     `json:"total_memes"`
	TotalLikes    int                     `json:"total_likes"`
	TotalComments int                     `json:"total_comments"`
	ByCategory    map[domain.Category]int `json:"by_category"`
}

// GetStats handles GET /api/v1/stats.
func (h *SearchHandler) GetStats(c *gin.Context) {
	memes, err := h.store.AllMemes(c.Request.Context())
	if err != nil {
		internalError(c, "Failed to get stats", err)
		return
	}

	stats := Stats{TotalMemes: len(memes), ByCategory: map[domain.Category]int{}}
	for _, m := range memes {
		stats.TotalLikes += m.Likes
		stats.TotalComments += len(m.Comments)
		stats.ByCategory[m.Category]++
	}
	c.JSON(http.StatusOK, stats)
}
