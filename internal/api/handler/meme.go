package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/timmy/memeverse/internal/api/middleware"
	"github.com/timmy/memeverse/internal/domain"
	"github.com/timmy/memeverse/internal/service"
)

// MemeHandler handles meme-related endpoints.
type MemeHandler struct {
	store    *service.MemeStore
	media    *service.MediaService
	users    *service.UserService
	renderer *CommentRenderer
}

// NewMemeHandler creates a new meme handler.
// Parameters:
//   - store: meme store.
//   - media: image validation and storage for multipart uploads.
//   - users: user lookup for default author names.
//   - renderer: comment sanitiser and renderer.
//
// Returns:
//   - *MemeHandler: initialized handler.
func NewMemeHandler(store *service.MemeStore, media *service.MediaService, users *service.UserService, renderer *CommentRenderer) *MemeHandler {
	return &MemeHandler{store: store, media: media, users: users, renderer: renderer}
}

// ListMemes handles GET /api/v1/memes.
func (h *MemeHandler) ListMemes(c *gin.Context) {
	category := domain.Category(c.Query("category"))
	if category != "" && !category.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown category: " + string(category)})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(service.DefaultPerPage)))

	result, err := h.store.Explore(c.Request.Context(), service.ExploreQuery{
		Category: category,
		Search:   c.Query("q"),
		Sort:     domain.SortOption(c.Query("sort")),
		Page:     page,
		PerPage:  perPage,
	})
	if err != nil {
		internalError(c, "Failed to list memes", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":    h.renderer.memes(result.Items),
		"page":     result.Page,
		"per_page": result.PerPage,
		"total":    result.Total,
		"has_more": result.HasMore,
	})
}

// Trending handles GET /api/v1/memes/trending. It always answers 200: a failed pull
// falls back to the stored trending memes.
func (h *MemeHandler) Trending(c *gin.Context) {
	memes := h.store.IngestTrending(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"items": h.renderer.memes(memes),
		"total": len(memes),
	})
}

// Top handles GET /api/v1/memes/top.
func (h *MemeHandler) Top(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(service.DefaultTopLimit)))
	memes, err := h.store.TopByLikes(c.Request.Context(), limit)
	if err != nil {
		internalError(c, "Failed to list top memes", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items": h.renderer.memes(memes),
		"total": len(memes),
	})
}

// GetMeme handles GET /api/v1/memes/:id.
func (h *MemeHandler) GetMeme(c *gin.Context) {
	meme, err := h.store.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		internalError(c, "Failed to load meme", err)
		return
	}
	if meme == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Meme not found"})
		return
	}

	view := h.renderer.meme(*meme)
	resp := gin.H{"meme": view}
	if userID := middleware.CurrentUserID(c); userID != "" {
		resp["liked"] = h.store.IsLikedBy(c.Request.Context(), meme.ID, userID)
	}
	c.JSON(http.StatusOK, resp)
}

// CreateMeme handles POST /api/v1/memes with a JSON draft.
func (h *MemeHandler) CreateMeme(c *gin.Context) {
	var draft domain.MemeDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	h.upload(c, draft)
}

// UploadMeme handles POST /api/v1/memes/upload with a multipart form.
// The image comes either as a "file" part, stored through object storage, or as a "url" field.
func (h *MemeHandler) UploadMeme(c *gin.Context) {
	draft := domain.MemeDraft{
		Title:    strings.TrimSpace(c.PostForm("title")),
		URL:      strings.TrimSpace(c.PostForm("url")),
		Category: domain.Category(c.PostForm("category")),
		Author:   strings.TrimSpace(c.PostForm("author")),
	}
	if draft.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}

	fileHeader, err := c.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		if draft.URL == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "A file or url is required"})
			return
		}
	case err != nil:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid upload: " + err.Error()})
		return
	default:
		f, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid upload: " + err.Error()})
			return
		}
		defer f.Close()

		data, err := io.ReadAll(io.LimitReader(f, h.media.MaxBytes()+1))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid upload: " + err.Error()})
			return
		}

		if h.media.StorageEnabled() {
			stored, err := h.media.Store(c.Request.Context(), data)
			if err != nil {
				h.mediaError(c, err)
				return
			}
			draft.URL, draft.Width, draft.Height = stored.URL, stored.Width, stored.Height
		} else {
			if draft.URL == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Object storage is not configured; supply url"})
				return
			}
			info, err := h.media.Probe(data)
			if err != nil {
				h.mediaError(c, err)
				return
			}
			draft.Width, draft.Height = info.Width, info.Height
		}
	}

	h.upload(c, draft)
}

func (h *MemeHandler) mediaError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotImage):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please upload an image file"})
	case errors.Is(err, service.ErrTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("File size should be less than %dMB", h.media.MaxBytes()>>20)})
	default:
		internalError(c, "Failed to store image", err)
	}
}

func (h *MemeHandler) upload(c *gin.Context, draft domain.MemeDraft) {
	ctx := c.Request.Context()
	userID := middleware.CurrentUserID(c)

	if draft.Category == "" {
		draft.Category = domain.CategoryNew
	}
	if !draft.Category.IsValid() || draft.Category == domain.CategoryRandom {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category: " + string(draft.Category)})
		return
	}
	if draft.Width <= 0 || draft.Height <= 0 {
		draft.Width, draft.Height = service.DefaultImageWidth, service.DefaultImageHeight
	}
	if draft.Author == "" {
		user, err := h.users.Get(ctx, userID)
		if err != nil {
			internalError(c, "Failed to load user", err)
			return
		}
		if user != nil {
			draft.Author = user.Name
		}
	}

	meme, err := h.store.Upload(ctx, draft, userID)
	if err != nil {
		internalError(c, "Failed to upload meme", err)
		return
	}
	c.JSON(http.StatusCreated, h.renderer.meme(*meme))
}

// ToggleLike handles POST /api/v1/memes/:id/like.
func (h *MemeHandler) ToggleLike(c *gin.Context) {
	res, err := h.store.ToggleLike(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c))
	if err != nil {
		internalError(c, "Failed to toggle like", err)
		return
	}
	if !res.Found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Meme not found"})
		return
	}
	c.JSON(http.StatusOK, res)
}

// IsLiked handles GET /api/v1/memes/:id/liked.
func (h *MemeHandler) IsLiked(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"liked": h.store.IsLikedBy(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c)),
	})
}

// CommentRequest is the body of POST /api/v1/memes/:id/comments.
type CommentRequest struct {
	Text   string `json:"text" binding:"required"`
	Author string `json:"author"`
}

// AddComment handles POST /api/v1/memes/:id/comments.
func (h *MemeHandler) AddComment(c *gin.Context) {
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	text := h.renderer.Sanitize(req.Text)
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Comment text is required"})
		return
	}
	if len(text) > MaxCommentLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Comment is too long"})
		return
	}

	ctx := c.Request.Context()
	author := strings.TrimSpace(req.Author)
	if author == "" {
		user, err := h.users.Get(ctx, middleware.CurrentUserID(c))
		if err != nil {
			internalError(c, "Failed to load user", err)
			return
		}
		author = "Anonymous"
		if user != nil {
			author = user.Name
		}
	}

	comment, err := h.store.AppendComment(ctx, c.Param("id"), text, h.renderer.Sanitize(author))
	if err != nil {
		internalError(c, "Failed to add comment", err)
		return
	}
	if comment == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Meme not found"})
		return
	}
	c.JSON(http.StatusCreated, h.renderer.comment(*comment))
}
