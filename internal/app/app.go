package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"group-lead-scraper-go/internal/classifier"
	"group-lead-scraper-go/internal/config"
	"group-lead-scraper-go/internal/db"
	"group-lead-scraper-go/internal/handlers"
	"group-lead-scraper-go/internal/metrics"
	"group-lead-scraper-go/internal/notify"
	"group-lead-scraper-go/internal/pipeline"
	"group-lead-scraper-go/internal/scheduler"
	"group-lead-scraper-go/internal/scraper"
	"group-lead-scraper-go/internal/server"
	"group-lead-scraper-go/internal/storage"
)

// Components holds the wired pipeline and the resources it owns
type Components struct {
	Pipeline *pipeline.Pipeline
	Store    storage.Store
	Notifier notify.Notifier
	Metrics  *metrics.Metrics
	History  handlers.History
}

// Close releases the store and notifier
func (c *Components) Close() {
	c.Notifier.Close()
	if err := c.Store.Close(); err != nil {
		logrus.Errorf("Failed to close store: %v", err)
	}
}

// SetupLogging configures the global logger
func SetupLogging(level string) {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.Warnf("Unknown log level %q, using info", level)
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
}

// Build wires the pipeline from configuration, registering metrics with reg
func Build(cfg *config.Config, reg prometheus.Registerer) (*Components, error) {
	m := metrics.NewMetrics(reg)

	var fetcher scraper.Fetcher
	switch cfg.Scraper.Source {
	case "sample":
		fetcher = scraper.NewSampleFetcher(cfg.Scraper.SampleFile)
		logrus.Info("Using sample scraper response, no scraping credits are spent")
	default:
		fetcher = scraper.NewApifyClient(scraper.ApifyConfig{
			BaseURL:       cfg.Scraper.BaseURL,
			Token:         cfg.Scraper.APIKey,
			ActorID:       cfg.Scraper.ActorID,
			WaitForFinish: cfg.Scraper.WaitForFinish,
			PageSize:      cfg.Scraper.PageSize,
			Timeout:       cfg.Scraper.Timeout,
		})
	}

	c := &Components{Metrics: m}

	switch cfg.Storage.Backend {
	case "sql":
		dbConn, err := db.Init(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		sqlStore := storage.NewSQLStore(dbConn)
		c.Store = sqlStore
		c.History = sqlStore.Repository()
	default:
		c.Store = storage.NewCSVStore(storage.CSVFiles{
			Posts:     cfg.Storage.PostsFile,
			Processed: cfg.Storage.ProcessedFile,
			Images:    cfg.Storage.ImagesFile,
		})
	}

	c.Notifier = notify.Nop{}
	if cfg.Notify.NATSURL != "" {
		n, err := notify.Connect(cfg.Notify.NATSURL, cfg.Notify.Subject)
		if err != nil {
			logrus.Warnf("Lead notifications disabled: %v", err)
		} else {
			c.Notifier = n
		}
	}

	c.Pipeline = pipeline.New(pipeline.Options{
		Fetcher:      fetcher,
		Store:        c.Store,
		Classifier:   classifier.NewFromConfig(cfg.LLM),
		Notifier:     c.Notifier,
		Metrics:      m,
		SnapshotPath: cfg.Scraper.SnapshotFile,
		CutoffDays:   cfg.Scraper.CutoffDays,
	})
	return c, nil
}

// RunBatch runs one batch over the configured groups.
// Group failures are reported in the returned report, not as an error.
func RunBatch(ctx context.Context, cfg *config.Config) (pipeline.BatchReport, error) {
	c, err := Build(cfg, prometheus.NewRegistry())
	if err != nil {
		return pipeline.BatchReport{}, err
	}
	defer c.Close()

	c.Metrics.ConfiguredGroups.Set(float64(len(cfg.Groups)))
	return c.Pipeline.RunBatch(ctx, cfg.Groups), nil
}

// Serve runs the scheduler and HTTP API until SIGINT or SIGTERM
func Serve(cfg *config.Config) error {
	logrus.Info("Starting group lead scraper service")

	c, err := Build(cfg, prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}
	defer c.Close()

	sched := scheduler.NewScheduler(&cfg.Scheduler, c.Pipeline, cfg.Groups, c.Metrics)
	cfg.Watch(func(next *config.Config) {
		sched.SetGroups(next.Groups)
		logrus.Infof("Group list reloaded with %d groups", len(next.Groups))
	})

	h := handlers.NewHandlers(sched, c.History, prometheus.DefaultGatherer)
	router := server.SetupRouter(h)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	if cfg.Scheduler.Enabled {
		if err := sched.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
	}

	go func() {
		logrus.Infof("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("HTTP server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := sched.Stop(); err != nil {
		logrus.Errorf("Failed to stop scheduler: %v", err)
	}
	sched.Wait()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("HTTP server shutdown error: %v", err)
	}

	logrus.Info("Server stopped gracefully")
	return nil
}
