package api

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/timmy/memeverse/internal/api/handler"
	"github.com/timmy/memeverse/internal/api/middleware"
	"github.com/timmy/memeverse/internal/config"
	"github.com/timmy/memeverse/internal/logger"
	"github.com/timmy/memeverse/internal/service"
	"github.com/timmy/memeverse/internal/source"
)

// Services bundles everything the router serves.
type Services struct {
	Store    *service.MemeStore
	Media    *service.MediaService
	Users    *service.UserService
	Captions *service.CaptionService
	Sources  map[string]source.TrendingSource
	Backend  string
}

// SetupRouter configures the Gin router with all routes
func SetupRouter(svc Services, cfg config.ServerConfig, log *logger.Logger) *gin.Engine {
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{Path: "/", MaxAge: 30 * 24 * 3600, HttpOnly: true})

	r.Use(gin.Recovery())
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(sessions.Sessions(middleware.SessionName, store))
	r.Use(middleware.LoadUser())

	renderer := handler.NewCommentRenderer()
	healthHandler := handler.NewHealthHandler(svc.Backend, svc.Media.StorageEnabled())
	memeHandler := handler.NewMemeHandler(svc.Store, svc.Media, svc.Users, renderer)
	searchHandler := handler.NewSearchHandler(svc.Store, renderer)
	userHandler := handler.NewUserHandler(svc.Users, svc.Store, renderer)
	captionHandler := handler.NewCaptionHandler(svc.Captions)
	adminHandler := handler.NewAdminHandler(svc.Store, svc.Sources)

	r.GET("/health", healthHandler.Health)

	v1 := r.Group("/api/v1")
	{
		// Memes
		v1.GET("/memes", memeHandler.ListMemes)
		v1.GET("/memes/trending", memeHandler.Trending)
		v1.GET("/memes/top", memeHandler.Top)
		v1.GET("/memes/:id", memeHandler.GetMeme)

		// Search, categories and stats
		v1.GET("/search", searchHandler.Search)
		v1.GET("/categories", searchHandler.GetCategories)
		v1.GET("/stats", searchHandler.GetStats)

		// Captions
		v1.POST("/captions", captionHandler.Suggest)

		// Session
		v1.POST("/login", userHandler.Login)
		v1.POST("/logout", userHandler.Logout)

		auth := v1.Group("", middleware.AuthRequired())
		{
			auth.POST("/memes", memeHandler.CreateMeme)
			auth.POST("/memes/upload", memeHandler.UploadMeme)
			auth.POST("/memes/:id/like", memeHandler.ToggleLike)
			auth.GET("/memes/:id/liked", memeHandler.IsLiked)
			auth.POST("/memes/:id/comments", memeHandler.AddComment)

			auth.GET("/me", userHandler.Me)
			auth.PUT("/me", userHandler.UpdateMe)
			auth.GET("/me/uploads", userHandler.MyUploads)
			auth.GET("/me/likes", userHandler.MyLikes)

			auth.POST("/admin/ingest", adminHandler.TriggerIngest)
			auth.GET("/admin/ingest/status", adminHandler.GetIngestStatus)
		}
	}

	return r
}
