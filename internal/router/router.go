package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/repetit/testflow-backend/internal/config"
	"github.com/repetit/testflow-backend/internal/handler"
	"github.com/repetit/testflow-backend/internal/middleware"
	"github.com/repetit/testflow-backend/internal/response"
	"github.com/repetit/testflow-backend/internal/session"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Flow   *handler.FlowHandler
	Stream *handler.StreamHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	ctrl *session.Controller,
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
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID", "X-User-Id"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── Flow Group ────────────────────────────────────────────────────
	// Stage order is enforced by guards, not by trusting the caller:
	// identity needs a checked code, the test stage needs both.
	// Out-of-order requests redirect to code entry without an error.
	flow := router.Group("/api/v1/flow")
	flow.Use(middleware.RequireUserID())
	{
		flow.POST("/code", handlers.Flow.CheckCode)
		flow.GET("/state", handlers.Flow.GetState)
		flow.POST("/reset", handlers.Flow.Reset)

		// Result and retry run off the backup record alone when nothing
		// else survived a restart, so they skip the identity guard.
		flow.GET("/result", handlers.Flow.Result)
		flow.POST("/retry", handlers.Flow.Retry)

		flow.POST("/identity", middleware.RequireCheckedCode(ctrl), handlers.Flow.RecordIdentity)

		guarded := flow.Group("")
		guarded.Use(middleware.RequireIdentity(ctrl))
		{
			guarded.PUT("/answers/:index", handlers.Flow.UpdateAnswer)
			guarded.POST("/submit", handlers.Flow.Submit)
		}
	}

	// ─── WebSocket Group ───────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireUserID(), middleware.RequireIdentity(ctrl))
	{
		ws.GET("/flow/stream", handlers.Stream.SessionStream)
	}

	return router
}
