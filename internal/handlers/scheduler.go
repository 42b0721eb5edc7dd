package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"group-lead-scraper-go/internal/scheduler"
)

// StartScheduler starts the batch scheduler
func (h *Handlers) StartScheduler(c *gin.Context) {
	if err := h.scheduler.Start(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusOK)
}

// StopScheduler stops the batch scheduler
func (h *Handlers) StopScheduler(c *gin.Context) {
	if err := h.scheduler.Stop(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusOK)
}

// RunOnce runs a batch now and returns its report
func (h *Handlers) RunOnce(c *gin.Context) {
	report, err := h.scheduler.RunOnce(context.WithoutCancel(c.Request.Context()))
	if errors.Is(err, scheduler.ErrBatchInProgress) {
		c.JSON(http.StatusConflict, ErrorResponse{Error: "batch_in_progress", Message: err.Error(), Code: http.StatusConflict})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetSchedulerStatus returns scheduler status
func (h *Handlers) GetSchedulerStatus(c *gin.Context) {
	status := "stopped"
	if h.scheduler.IsRunning() {
		status = "running"
	}
	c.JSON(http.StatusOK, SchedulerStatus{
		Status:          status,
		IntervalMinutes: h.scheduler.Interval(),
		NextRun:         h.scheduler.GetNextRun(),
		LastRun:         h.scheduler.GetLastRun(),
		Groups:          len(h.scheduler.Groups()),
	})
}
