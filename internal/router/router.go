package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ssc-prep/mocktest-backend/internal/config"
	"github.com/ssc-prep/mocktest-backend/internal/handler"
	"github.com/ssc-prep/mocktest-backend/internal/middleware"
	"github.com/ssc-prep/mocktest-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Attempt *handler.AttemptHandler
	History *handler.HistoryHandler
	WS      *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(handlers *Handlers, cfg *config.Config) *gin.Engine {
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
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
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

	// Rate limiter for attempt mutations (120 requests per minute per IP;
	// an answering burst plus the odd reload stays well under this).
	attemptLimiter := middleware.NewRateLimiter(120, time.Minute)

	// ─── 1. Attempt Group (JWT) ────────────────────────────────────────
	attemptAPI := router.Group("/api/v1/attempts")
	attemptAPI.Use(middleware.RequireUserJWT(cfg.JWTSecret))
	{
		attemptAPI.GET("", handlers.History.List)

		test := attemptAPI.Group("/:test_id")
		{
			test.GET("/state", handlers.Attempt.State)
			test.GET("/paper", handlers.Attempt.Paper)
			test.GET("/results", handlers.Attempt.Results)
			test.GET("/results/sections", handlers.Attempt.SectionScores)
			test.GET("/archive", handlers.History.Get)

			mutations := test.Group("")
			mutations.Use(attemptLimiter.Middleware())
			{
				mutations.POST("/start", handlers.Attempt.Start)
				mutations.POST("/pause", handlers.Attempt.Pause)
				mutations.POST("/resume", handlers.Attempt.Resume)
				mutations.POST("/answer", handlers.Attempt.Answer)
				mutations.POST("/goto", handlers.Attempt.GoTo)
				mutations.POST("/next", handlers.Attempt.Next)
				mutations.POST("/previous", handlers.Attempt.Previous)
				mutations.POST("/language", handlers.Attempt.SwitchLanguage)
				mutations.POST("/submit", handlers.Attempt.Submit)
				mutations.POST("/reset", handlers.Attempt.Reset)
				mutations.POST("/review", handlers.Attempt.Review)
			}
		}
	}

	// ─── 2. WebSocket Group (Query-token auth) ─────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireUserWSAuth(cfg.JWTSecret))
	{
		ws.GET("/attempts/:test_id/stream", handlers.WS.AttemptStream)
	}

	return router
}
