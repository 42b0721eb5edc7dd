package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"group-lead-scraper-go/internal/app"
	"group-lead-scraper-go/internal/config"
)

func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("Configuration validation failed: %v", err)
	}
	app.SetupLogging(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := app.RunBatch(ctx, cfg)
	if err != nil {
		logrus.Fatalf("Batch failed to start: %v", err)
	}

	for _, g := range report.Groups {
		if g.Error != "" {
			logrus.Warnf("Group %s failed: %s", g.GroupURL, g.Error)
		}
	}
}
