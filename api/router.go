package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/wikidump-go/api/handlers"
	"github.com/yourusername/wikidump-go/api/middleware"
	"github.com/yourusername/wikidump-go/internal/app"
	"github.com/yourusername/wikidump-go/internal/domain"
	"github.com/yourusername/wikidump-go/pkg/logger"
)

// SetupRouter sets up the HTTP router.
// events may be nil, in which case error responses are only logged to log.
func SetupRouter(
	svc *app.DumpService,
	config *domain.Config,
	events *logger.MultiLogger,
	log *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(log, events))
	router.Use(middleware.Recovery(log, events))

	// Health endpoints
	healthHandler := handlers.NewHealthHandler(svc.LocalDir(), config.Catalog.Enabled)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		dumpHandler := handlers.NewDumpHandler(svc, config.Dump.Descriptor(), log)

		v1.GET("/runs/latest", dumpHandler.LatestRun)

		dumps := v1.Group("/dumps")
		{
			dumps.POST("", dumpHandler.Fetch)
			dumps.POST("/locate", dumpHandler.Locate)
			dumps.GET("", dumpHandler.ListDumps)
			dumps.GET("/stats", dumpHandler.GetStats)
			dumps.GET("/:id", dumpHandler.GetDump)
			dumps.DELETE("/:id", dumpHandler.DeleteDump)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return router
}
