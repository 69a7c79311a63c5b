package controllers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"landslide-monitor/services"
)

// Handlers binds the HTTP surface to the services.
type Handlers struct {
	Sensors    *services.SensorRegistry
	History    *services.HistoryAggregator
	Reports    *services.ReportIntake
	Education  *services.EducationCatalog
	Moderators *services.Moderators
	Hub        *Hub
	Log        *zap.Logger

	// Ping reports database health for /health. Optional.
	Ping func(ctx context.Context) error
}

// respondError maps a service error to its status code under key. Storage
// failures are logged and answered with generic instead of the cause.
func (h *Handlers) respondError(c *gin.Context, err error, key, generic string) {
	se, ok := services.AsError(err)
	if ok {
		switch se.Kind {
		case services.KindValidation:
			c.JSON(http.StatusBadRequest, gin.H{key: se.Message})
			return
		case services.KindNotFound:
			c.JSON(http.StatusNotFound, gin.H{key: se.Message})
			return
		case services.KindUnauthorized:
			c.JSON(http.StatusUnauthorized, gin.H{key: se.Message})
			return
		}
	}
	h.Log.Error(generic,
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err))
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{key: generic})
}

func (h *Handlers) fail(c *gin.Context, err error, generic string) {
	h.respondError(c, err, "message", generic)
}

// idParam parses the :id path segment. It answers 400 itself on failure.
func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid ID."})
		return 0, false
	}
	return uint(id), true
}

// Health reports liveness and, when configured, database reachability.
func (h *Handlers) Health(c *gin.Context) {
	if h.Ping != nil {
		if err := h.Ping(c.Request.Context()); err != nil {
			h.Log.Warn("health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
