package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/solterra/ventas-api/internal/jobs"
)

type HealthHandler struct {
	worker    *jobs.Worker
	startedAt time.Time
}

func NewHealthHandler(worker *jobs.Worker) *HealthHandler {
	return &HealthHandler{worker: worker, startedAt: time.Now()}
}

// @Summary Health Check
// @Description Service liveness plus background worker statistics
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"uptime":  time.Since(h.startedAt).String(),
		"workers": h.worker.GetStats(),
	})
}
