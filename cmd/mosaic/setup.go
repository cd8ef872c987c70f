package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/mosaicflow/mosaic/internal/config"
	"github.com/mosaicflow/mosaic/internal/logging"
	"github.com/mosaicflow/mosaic/pkg/adapters/file"
	"github.com/mosaicflow/mosaic/pkg/adapters/httpgen"
	"github.com/mosaicflow/mosaic/pkg/adapters/memory"
	"github.com/mosaicflow/mosaic/pkg/adapters/openai"
	"github.com/mosaicflow/mosaic/pkg/adapters/postgres"
	"github.com/mosaicflow/mosaic/pkg/adapters/redis"
	"github.com/mosaicflow/mosaic/pkg/domain"
	"github.com/mosaicflow/mosaic/pkg/ports"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.LoadOrDefault(path)
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	return logging.New(level)
}

func buildGenerator(cfg *config.Config) (ports.Generator, error) {
	switch strings.ToLower(cfg.Generator.Provider) {
	case "", "none":
		return nil, nil
	case "dry-run":
		return dryRunGenerator(), nil
	case "openai":
		var opts []openai.Option
		if cfg.Generator.Model != "" {
			opts = append(opts, openai.WithModel(cfg.Generator.Model))
		}
		return openai.NewGenerator(cfg.Generator.APIKey, cfg.Generator.BaseURL, opts...), nil
	case "http":
		if cfg.Generator.Endpoint == "" {
			return nil, fmt.Errorf("http generator requires an endpoint")
		}
		var opts []httpgen.Option
		if cfg.Generator.APIKey != "" {
			opts = append(opts, httpgen.WithAPIKey(cfg.Generator.APIKey))
		}
		return httpgen.NewGenerator(cfg.Generator.Endpoint, opts...), nil
	default:
		return nil, fmt.Errorf("unknown generator provider %q", cfg.Generator.Provider)
	}
}

// dryRunGenerator produces placeholder references so a pipeline can be
// exercised end to end without a backend.
func dryRunGenerator() ports.Generator {
	return ports.GeneratorFunc(func(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error) {
		res := &domain.GenerationResult{
			AspectRatio: req.AspectRatio,
			Seed:        time.Now().UnixNano() % 1_000_000,
		}
		if req.Kind == domain.KindImageGen {
			res.ImageURL = fmt.Sprintf("dry-run://image/%s", req.Kind)
		} else {
			res.VideoURL = fmt.Sprintf("dry-run://video/%s", req.Kind)
		}
		return res, nil
	})
}

func buildStore(cfg *config.Config) (ports.WorkflowStore, error) {
	switch strings.ToLower(cfg.Store.Backend) {
	case "", "memory":
		return memory.NewStore(), nil
	case "file":
		dir := cfg.Store.Dir
		if dir == "" {
			dir = "workflows"
		}
		return file.NewStore(dir)
	case "redis":
		if cfg.Store.RedisURL == "" {
			return nil, fmt.Errorf("redis store requires redis_url")
		}
		return redis.NewStore(cfg.Store.RedisURL), nil
	case "postgres":
		if cfg.Store.Postgres == "" {
			return nil, fmt.Errorf("postgres store requires a connection string")
		}
		store, err := postgres.Connect(context.Background(), cfg.Store.Postgres)
		if err != nil {
			return nil, err
		}
		if err := store.CreateSchema(context.Background()); err != nil {
			return nil, fmt.Errorf("create schema: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func loadWorkflowFile(path string) (*domain.Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workflow file: %w", err)
	}
	var wf domain.Workflow
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("parse workflow file: %w", err)
	}
	return &wf, nil
}
