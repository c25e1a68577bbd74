package api

import (
	"github.com/gin-gonic/gin"

	"github.com/llun/fitfeed/internal/api/handler"
	"github.com/llun/fitfeed/internal/api/middleware"
	"github.com/llun/fitfeed/internal/config"
	"github.com/llun/fitfeed/internal/logger"
	"github.com/llun/fitfeed/internal/queue"
	"github.com/llun/fitfeed/internal/service"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(
	imports *service.ImportService,
	importQueue *queue.ImportQueue,
	log *logger.Logger,
	cfg *config.ServerConfig,
) *gin.Engine {
	// Set Gin mode
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:  cfg.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.CORS.AllowAllOrigins,
	}))

	// Create handlers
	healthHandler := handler.NewHealthHandler(importQueue)
	importHandler := handler.NewImportHandler(imports)

	// Health check
	r.GET("/health", healthHandler.Health)

	// API v1 routes
	v1 := r.Group("/api/v1")
	v1.Use(middleware.Actor())
	{
		// Single file import
		v1.POST("/files", importHandler.UploadFile)

		// Archive import jobs
		v1.POST("/imports", importHandler.StartImport)
		v1.GET("/imports/:id", importHandler.GetImport)
		v1.PATCH("/imports/:id", importHandler.PatchImport)
	}

	return r
}
