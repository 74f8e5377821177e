package router

import (
	"net/http"
	"time"

	"github.com/certlab/certprep-backend/internal/config"
	"github.com/certlab/certprep-backend/internal/handler"
	"github.com/certlab/certprep-backend/internal/middleware"
	"github.com/certlab/certprep-backend/internal/response"
	"github.com/certlab/certprep-backend/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth     *handler.AuthHandler
	Catalog  *handler.CatalogHandler
	Session  *handler.SessionHandler
	Progress *handler.ProgressHandler
	Stream   *handler.StreamHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 1. Auth Group (Public) ────────────────────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/login", handlers.Auth.Login)

		// Authenticated profile routes
		auth.POST("/logout", middleware.RequireJWT(authService), handlers.Auth.Logout)
		auth.GET("/me", middleware.RequireJWT(authService), handlers.Auth.Me)
	}

	// ─── 2. Catalog + Progress Group (JWT) ─────────────────────────────
	api := router.Group("/api/v1")
	api.Use(middleware.RequireJWT(authService))
	{
		api.GET("/tests", handlers.Catalog.ListTests)
		api.GET("/tests/:test_id", handlers.Catalog.GetTest)

		api.GET("/tests/:test_id/study", handlers.Progress.StudyProgress)
		api.DELETE("/tests/:test_id/study", handlers.Progress.ResetStudy)
		api.GET("/tests/:test_id/results", handlers.Progress.MockHistory)
		api.GET("/results/:result_id", handlers.Progress.MockDetail)
	}

	// ─── 3. Session Group (JWT) ────────────────────────────────────────
	sessions := router.Group("/api/v1/sessions")
	sessions.Use(middleware.RequireJWT(authService))
	{
		sessions.POST("", handlers.Session.Create)
		sessions.GET("/current", handlers.Session.Current)
		sessions.DELETE("/current", handlers.Session.End)
		sessions.POST("/current/start", handlers.Session.Start)
		sessions.POST("/current/answer", handlers.Session.Answer)
		sessions.POST("/current/submit", handlers.Session.Submit)
		sessions.PUT("/current/cursor", handlers.Session.Cursor)
		sessions.POST("/current/next", handlers.Session.Next)
		sessions.POST("/current/previous", handlers.Session.Previous)
		sessions.POST("/current/flag", handlers.Session.Flag)
		sessions.POST("/current/complete", handlers.Session.Complete)
		sessions.POST("/current/review", handlers.Session.Review)
		sessions.POST("/current/summary", handlers.Session.Summary)
		sessions.POST("/current/restart", handlers.Session.Restart)
	}

	// ─── 4. WebSocket Group (WS Auth via query token) ──────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireWSAuth(authService))
	{
		ws.GET("/sessions/stream", handlers.Stream.SessionStream)
	}

	return router
}
