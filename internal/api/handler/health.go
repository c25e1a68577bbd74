package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/llun/fitfeed/internal/queue"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	queue *queue.ImportQueue
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(q *queue.ImportQueue) *HealthHandler {
	return &HealthHandler{queue: q}
}

// Health returns the health status of the service
func (h *HealthHandler) Health(c *gin.Context) {
	status := "ok"
	code := http.StatusOK
	if h.queue != nil && !h.queue.Healthy() {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	resp := gin.H{"status": status}
	if h.queue != nil {
		stats := h.queue.Stats()
		resp["queue"] = gin.H{
			"length":    stats.Length,
			"capacity":  stats.Capacity,
			"workers":   stats.WorkerCount,
			"processed": stats.Processed,
			"failed":    stats.Failed,
		}
	}
	c.JSON(code, resp)
}
