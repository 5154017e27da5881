package api

import (
	"context"
	"net/http"
	"time"

	"betroom/metrics"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// HealthCheck reports whether a dependency is reachable
type HealthCheck func(ctx context.Context) error

// NewRouter builds the gin engine with every route registered
func NewRouter(h *Handler, health HealthCheck) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(), metrics.GinMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		if health != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := health(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", metrics.Handler())

	r.GET("/game-types", h.ListGameTypes)

	users := r.Group("/users")
	users.GET("", h.ListUsers)
	users.POST("", h.CreateUser)
	users.GET("/:id", h.GetUser)
	users.GET("/:id/history", h.GetUserHistory)
	users.GET("/:id/balance-history", h.GetBalanceHistory)

	rooms := r.Group("/rooms")
	rooms.GET("/:code", h.GetRoom)
	rooms.POST("/:code/wagers", h.PlaceWager)

	admin := r.Group("/admin")
	admin.POST("/rooms", h.CreateRoom)
	admin.POST("/rooms/:code/close", h.CloseRoom)

	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()

		log.WithFields(log.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(started).String(),
		}).Debug("HTTP request")
	}
}
