package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"group-lead-scraper-go/internal/models"
	"group-lead-scraper-go/internal/scheduler"
)

// History is the query side of the SQL store. It is nil for the CSV backend.
type History interface {
	RecentRuns(ctx context.Context, limit int) ([]models.RunLog, error)
	RecentClassifications(ctx context.Context, relevantOnly bool, limit int) ([]models.PostClassification, error)
	Ping(ctx context.Context) error
}

// Handlers contains all HTTP handlers
type Handlers struct {
	scheduler *scheduler.Scheduler
	history   History
	gatherer  prometheus.Gatherer
}

// NewHandlers creates new HTTP handlers
func NewHandlers(s *scheduler.Scheduler, history History, gatherer prometheus.Gatherer) *Handlers {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Handlers{scheduler: s, history: history, gatherer: gatherer}
}

// SetupRoutes sets up all HTTP routes
func (h *Handlers) SetupRoutes(router *gin.Engine) {
	router.GET("/healthz", h.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))

	api := router.Group("/api/v1")
	{
		api.GET("/groups", h.GetGroups)

		api.GET("/runs", h.GetRuns)
		api.GET("/runs/last", h.GetLastRun)
		api.GET("/leads", h.GetLeads)

		api.POST("/scheduler/start", h.StartScheduler)
		api.POST("/scheduler/stop", h.StopScheduler)
		api.POST("/scheduler/run-once", h.RunOnce)
		api.GET("/scheduler/status", h.GetSchedulerStatus)
	}
}
