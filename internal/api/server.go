// internal/api/server.go
package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"travel-assistant/internal/common/config"
	"travel-assistant/internal/common/logger"
)

// NewRouter wires the HTTP surface: trip chat and plan endpoints plus
// health and metrics.
func NewRouter(cfg *config.Config, h *Handler, log logger.Logger) *gin.Engine {
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestID())
	r.Use(requestLogger(log))

	corsCfg := cors.DefaultConfig()
	if len(cfg.Server.CORSAllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.Server.CORSAllowedOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	r.Use(cors.New(corsCfg))

	r.GET("/healthz", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := r.Group("/api")
	{
		apiGroup.POST("/trips/:tripId/chat", h.Chat)
		apiGroup.POST("/trips/:tripId/plan", h.Plan)
		apiGroup.GET("/trips/:tripId/messages", h.Messages)
	}

	return r
}

// requestID tags every request with an ID, honoring one supplied by the
// caller so traces line up across services.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("requestId", id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

func requestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		log.Info("http request", map[string]interface{}{
			"method":    c.Request.Method,
			"path":      c.FullPath(),
			"status":    c.Writer.Status(),
			"requestId": c.GetString("requestId"),
		})
	}
}
