package main

import (
	"context"
	"fmt"

	"github.com/regulapm/nexus/internal/config"
	"github.com/regulapm/nexus/internal/db"
	"github.com/regulapm/nexus/internal/llm"
	"github.com/regulapm/nexus/internal/stages"
)

// loadConfig loads the optional JSON config file and merges environment
// variables over it. Env values win; defaults fill the rest.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.FromEnv().MergeWithEnv(), nil
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg.MergeWithEnv(), nil
}

// connectDB opens the Postgres pool and ensures the schema exists.
func connectDB(ctx context.Context, cfg *config.Config) (*db.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return database, nil
}

// newCaller builds the model adapter from config.
func newCaller(ctx context.Context, cfg *config.Config) (stages.Caller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	llmConfig := llm.DefaultConfig().WithModels(cfg.Models)
	client, err := llm.NewClient(ctx, llmConfig, cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create model client: %w", err)
	}
	return llm.NewAdapter(client, llmConfig), nil
}
