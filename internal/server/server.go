// Package server owns the HTTP surface: routing, middleware, and the
// translation between service errors and response bodies.
package server

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// New assembles the gin engine with all middleware and routes.
func New(logger *zap.Logger, handler *Handler, maxRequestsPerMin int, production bool) *gin.Engine {
	if production {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(RecoveryMiddleware(logger))
	router.Use(RequestLogMiddleware(logger))
	router.Use(RateLimitMiddleware(logger, maxRequestsPerMin))

	RegisterRoutes(router, handler)
	return router
}

// RegisterRoutes wires the caller-facing endpoints.
func RegisterRoutes(router *gin.Engine, handler *Handler) {
	router.GET("/healthz", handler.Healthz)

	api := router.Group("/api")
	{
		api.GET("/availability", handler.GetAvailability)
		api.POST("/booking", handler.PostBooking)
	}
}
