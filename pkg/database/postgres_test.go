package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/wonny/stogger/pkg/config"
)

func TestNewRequiresURL(t *testing.T) {
	_, err := New(context.Background(), &config.Config{})
	if err == nil {
		t.Error("Expected error without DATABASE_URL")
	}
}

func TestNewInvalidURL(t *testing.T) {
	cfg := &config.Config{Database: config.DatabaseConfig{URL: "://not-a-url"}}
	_, err := New(context.Background(), cfg)
	if err == nil {
		t.Error("Expected error for malformed DATABASE_URL")
	}
}

func TestHealthCheck(t *testing.T) {
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	db, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	status, err := db.HealthCheck(ctx)
	if err != nil {
		t.Fatalf("HealthCheck failed: %v", err)
	}

	if !status.Healthy {
		t.Error("Expected database to be healthy")
	}

	if status.Stats.MaxConns != int32(cfg.Database.MaxConns) {
		t.Errorf("Expected MaxConns=%d, got %d", cfg.Database.MaxConns, status.Stats.MaxConns)
	}
}
