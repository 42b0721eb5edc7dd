package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const defaultListLimit = 50

// GetGroups returns the configured groups
func (h *Handlers) GetGroups(c *gin.Context) {
	c.JSON(http.StatusOK, h.scheduler.Groups())
}

// GetLastRun returns the report of the latest batch in this process
func (h *Handlers) GetLastRun(c *gin.Context) {
	last := h.scheduler.LastReport()
	if last == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not_found", Message: "No batch has run yet", Code: http.StatusNotFound})
		return
	}
	c.JSON(http.StatusOK, last)
}

// GetRuns returns persisted group run logs
func (h *Handlers) GetRuns(c *gin.Context) {
	if !h.requireHistory(c) {
		return
	}
	limit, ok := parseLimit(c)
	if !ok {
		return
	}
	runs, err := h.history.RecentRuns(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "database_error", Message: "Failed to fetch runs", Code: http.StatusInternalServerError})
		return
	}
	c.JSON(http.StatusOK, runs)
}

// GetLeads returns persisted classifications, only relevant ones unless all=true
func (h *Handlers) GetLeads(c *gin.Context) {
	if !h.requireHistory(c) {
		return
	}
	limit, ok := parseLimit(c)
	if !ok {
		return
	}
	relevantOnly := c.Query("all") != "true"
	rows, err := h.history.RecentClassifications(c.Request.Context(), relevantOnly, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "database_error", Message: "Failed to fetch leads", Code: http.StatusInternalServerError})
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *Handlers) requireHistory(c *gin.Context) bool {
	if h.history == nil {
		c.JSON(http.StatusNotImplemented, ErrorResponse{Error: "not_available", Message: "Run history requires the sql storage backend", Code: http.StatusNotImplemented})
		return false
	}
	return true
}

func parseLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return defaultListLimit, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_limit", Message: "limit must be a positive integer", Code: http.StatusBadRequest})
		return 0, false
	}
	return limit, true
}
