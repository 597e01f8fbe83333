package middleware

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/timmy/memeverse/internal/logger"
)

const (
	// SessionName is the cookie holding the mock login session.
	SessionName = "memeverse_session"
	// UserIDKey is both the session key and the Gin context key for the logged-in user.
	UserIDKey = "user_id"
)

// LoadUser copies the session user ID, if any, into the Gin and request contexts.
func LoadUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, ok := sessions.Default(c).Get(UserIDKey).(string); ok && userID != "" {
			c.Set(UserIDKey, userID)
			c.Request = c.Request.WithContext(logger.SetUserID(c.Request.Context(), userID))
		}
		c.Next()
	}
}

// AuthRequired rejects requests without a logged-in user. It must run after LoadUser.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(UserIDKey) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Login required"})
			return
		}
		c.Next()
	}
}

// CurrentUserID returns the logged-in user's ID, or "" when anonymous.
func CurrentUserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
