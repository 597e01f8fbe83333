package handler

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/timmy/memeverse/internal/api/middleware"
	"github.com/timmy/memeverse/internal/domain"
	"github.com/timmy/memeverse/internal/service"
)

// UserHandler handles mock login and profile endpoints.
type UserHandler struct {
	users    *service.UserService
	store    *service.MemeStore
	renderer *CommentRenderer
}

// NewUserHandler creates a new user handler.
func NewUserHandler(users *service.UserService, store *service.MemeStore, renderer *CommentRenderer) *UserHandler {
	return &UserHandler{users: users, store: store, renderer: renderer}
}

// LoginRequest is the body of POST /api/v1/login. Either field is enough.
type LoginRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Login handles POST /api/v1/login.
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if req.Name == "" && req.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name or email is required"})
		return
	}

	user, err := h.users.Login(c.Request.Context(), req.Name, req.Email)
	if err != nil {
		internalError(c, "Failed to log in", err)
		return
	}

	session := sessions.Default(c)
	session.Set(middleware.UserIDKey, user.ID)
	if err := session.Save(); err != nil {
		internalError(c, "Failed to save session", err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// Logout handles POST /api/v1/logout.
func (h *UserHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		internalError(c, "Failed to clear session", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me handles GET /api/v1/me.
func (h *UserHandler) Me(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateMe handles PUT /api/v1/me.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req service.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if req.Bio != nil {
		bio := h.renderer.Sanitize(*req.Bio)
		req.Bio = &bio
	}
	if req.Name != nil {
		name := h.renderer.Sanitize(*req.Name)
		req.Name = &name
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		internalError(c, "Failed to update profile", err)
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// MyUploads handles GET /api/v1/me/uploads.
func (h *UserHandler) MyUploads(c *gin.Context) {
	memes, err := h.store.ListUploadedBy(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		internalError(c, "Failed to list uploads", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": h.renderer.memes(memes), "total": len(memes)})
}

// MyLikes handles GET /api/v1/me/likes.
func (h *UserHandler) MyLikes(c *gin.Context) {
	memes, err := h.store.ListLikedBy(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		internalError(c, "Failed to list likes", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": h.renderer.memes(memes), "total": len(memes)})
}

func (h *UserHandler) currentUser(c *gin.Context) (*domain.User, bool) {
	user, err := h.users.Get(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		internalError(c, "Failed to load user", err)
		return nil, false
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return nil, false
	}
	return user, true
}
