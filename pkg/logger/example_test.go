package logger_test

import (
	"errors"

	"github.com/wonny/stogger/pkg/config"
	"github.com/wonny/stogger/pkg/logger"
)

// Example_withFields demonstrates structured logging with fields
func Example_withFields() {
	cfg := &config.Config{
		Env:       "production",
		LogLevel:  "info",
		LogFormat: "json",
	}

	log := logger.New(cfg)

	log.WithTicker("AMZN").Info("Analysis started")

	log.WithFields(map[string]interface{}{
		"news_count": 12,
		"window":     "24h",
	}).Info("Analysis completed")
}

// Example_withError demonstrates error logging
func Example_withError() {
	cfg := &config.Config{
		Env:       "production",
		LogLevel:  "error",
		LogFormat: "json",
	}

	log := logger.New(cfg)

	err := errors.New("unexpected status code: 403")
	log.WithError(err).WithTicker("AMZN").Error("Failed to fetch news table")
}
