package main

import (
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

	if err := app.Serve(cfg); err != nil {
		logrus.Fatalf("Service error: %v", err)
	}
}
