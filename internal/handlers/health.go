package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// HealthCheck handles health check requests
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Database:  "disabled",
		Scheduler: "stopped",
		Details:   make(map[string]string),
	}

	if h.history != nil {
		response.Database = "ok"
		if err := h.history.Ping(c.Request.Context()); err != nil {
			response.Status = "error"
			response.Database = "error"
			logrus.Errorf("Database health check failed: %v", err)
		}
	}

	if h.scheduler.IsRunning() {
		response.Scheduler = "running"
		response.Details["next_run"] = h.scheduler.GetNextRun().Format(time.RFC3339)
	}
	if last := h.scheduler.LastReport(); last != nil {
		response.Details["last_batch"] = last.FinishedAt.Format(time.RFC3339)
	}

	statusCode := http.StatusOK
	if response.Status == "error" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, response)
}
