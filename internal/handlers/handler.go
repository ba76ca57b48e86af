package handlers

import (
	"homeguard/internal/logger"
	"homeguard/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	apiKey   string
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies. An empty
// apiKey disables the shared-secret guard.
func NewHandler(services *service.Service, apiKey string, log *logger.Logger) *Handler {
	return &Handler{services: services, apiKey: apiKey, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Ingestion endpoints consumed by the upstream relay (guarded)
	router.POST("/upload", h.apiKeyMiddleware, h.upload)
	router.GET("/jobs/:id", h.apiKeyMiddleware, h.jobStatus)

	// Versioned API endpoints (guarded)
	h.registerAPIRoutes(router)

	// Live job-status feed (HTTP upgrade on the same port)
	router.GET("/ws", h.wsJobFeed)

	return router
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.apiKeyMiddleware)
	{
		h.registerAlertRoutes(api)
		h.registerReadingRoutes(api)
	}
}

func (h *Handler) registerAlertRoutes(api *gin.RouterGroup) {
	alerts := api.Group("/alerts")
	{
		alerts.GET("/", h.getAlerts)
	}
}

func (h *Handler) registerReadingRoutes(api *gin.RouterGroup) {
	readings := api.Group("/readings")
	{
		readings.GET("/", h.getReadings)
	}
}
