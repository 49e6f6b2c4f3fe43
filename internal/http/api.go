package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"listing-progress/internal/auth"
	"listing-progress/internal/service"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	progress   service.ProgressService
	properties service.PropertyService
	resolver   *auth.Resolver
	logger     *logrus.Logger
}

func NewHandler(progress service.ProgressService, properties service.PropertyService, resolver *auth.Resolver, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		progress:   progress,
		properties: properties,
		resolver:   resolver,
		logger:     logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(requestLogger(h.logger), corsMiddleware())

	api := router.Group("/api")
	{
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})

		authed := api.Group("", h.requireIdentity())
		authed.GET("/progress", h.getProgress)
		authed.PUT("/progress", h.updateProgress)
		authed.GET("/listing/properties", h.listProperties)
		authed.GET("/properties", h.listProperties)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, PUT, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
