package handlers

import (
	"net/http"

	_ "lightsensord/docs"
	"lightsensord/internal/logger"
	"lightsensord/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	metrics  http.Handler
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies. metrics may be
// nil, in which case /metrics is not registered.
func NewHandler(services *service.Service, metrics http.Handler, log *logger.Logger) *Handler {
	return &Handler{services: services, metrics: metrics, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	if h.metrics != nil {
		router.GET("/metrics", gin.WrapH(h.metrics))
	}

	// Auth endpoints
	h.registerAuthRoutes(router)

	// Versioned API endpoints (protected)
	h.registerAPIRoutes(router)

	// State stream over WebSocket, same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.operatorMiddleware)
	{
		h.registerSensorRoutes(api)
		h.registerReadingRoutes(api)
		h.registerLogRoutes(api)
	}
}

func (h *Handler) registerSensorRoutes(api *gin.RouterGroup) {
	sensor := api.Group("/sensor")
	{
		sensor.POST("/enable", h.enableSensor)
		sensor.POST("/disable", h.disableSensor)
		sensor.POST("/calibrate", h.calibrateSensor)
		sensor.GET("/state", h.getState)
	}
}

func (h *Handler) registerReadingRoutes(api *gin.RouterGroup) {
	api.GET("/readings", h.getReadings)
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("/", h.getLogs)
	}
}
