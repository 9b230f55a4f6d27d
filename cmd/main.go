package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/agentq/agentq/config"
	"github.com/agentq/agentq/core"
	"github.com/agentq/agentq/memory"
	"github.com/agentq/agentq/middleware"
	"github.com/agentq/agentq/retry"
	"github.com/agentq/agentq/safety"
	"github.com/agentq/agentq/storage"
	"github.com/agentq/agentq/types"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		cfg = loaded
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	store, err := openStorage(cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("open storage")
	}
	defer store.Close()

	ctx := context.Background()

	registry := core.NewRegistry(logger)
	scheduler := core.NewScheduler(store, retry.AttemptLimit{Max: cfg.Queue.MaxRetries}, logger)
	runner := core.NewRunner(logger,
		middleware.Logging(logger),
		middleware.Recovery(),
		middleware.Deadline(cfg.Queue.DefaultTimeout()),
	)
	guard := safety.NewGuard(safety.Limits{
		MaxPayloadBytes: cfg.Safety.MaxPayloadBytes,
		MaxStringLen:    cfg.Safety.MaxStringLen,
	}, logger)
	cache := memory.NewCache(cfg.Cache.MaxSize)

	coordinator, err := core.NewCoordinator(core.CoordinatorConfig{
		Registry:  registry,
		Scheduler: scheduler,
		Runner:    runner,
		Store:     store,
		Validator: guard,
		Cache:     cache,
		Logger:    logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("build coordinator")
	}
	if err := coordinator.Initialize(ctx); err != nil {
		logger.Fatal().Err(err).Msg("initialize coordinator")
	}

	if err := registerAgents(coordinator); err != nil {
		logger.Fatal().Err(err).Msg("register agents")
	}

	taskID, err := coordinator.Submit(ctx, "wordstats_001", map[string]any{
		"text": "the quick brown fox jumps over the lazy dog",
	}, 0)
	if err != nil {
		logger.Fatal().Err(err).Msg("submit task")
	}

	status, _ := coordinator.Status(taskID)
	fmt.Printf("task %s: %s\n", taskID, status)
	if result, ok := coordinator.Result(taskID); ok {
		fmt.Printf("output: %v\n", result.Output)
	}

	// Flaky executor: fails once, then succeeds on the retry.
	flakyID, err := coordinator.Submit(ctx, "flaky_001", map[string]any{"n": 1}, 5)
	if err != nil {
		logger.Fatal().Err(err).Msg("submit flaky task")
	}
	coordinator.DispatchNext(ctx) // drain the retry

	status, _ = coordinator.Status(flakyID)
	fmt.Printf("task %s: %s\n", flakyID, status)

	health := coordinator.HealthCheck()
	fmt.Printf("agents: %d, queued: %d, results: %d\n",
		health.Agents.Total, health.Queue.PendingCount, health.Queue.ResultCount)
}

func openStorage(cfg config.StorageConfig) (storage.Storage, error) {
	switch cfg.Backend {
	case "memory":
		return storage.NewMemoryStorage(), nil
	case "sqlite":
		return storage.NewSQLiteStorage(cfg.Path)
	case "bolt":
		return storage.NewBoltStorage(cfg.Path)
	case "redis":
		return storage.NewRedisStorage(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

func registerAgents(coordinator *core.Coordinator) error {
	wordstats, err := core.NewAgent("wordstats_001", "WordStats", "statistics",
		core.ExecutorFunc(func(ctx context.Context, input map[string]any) (*types.Result, error) {
			text, _ := input["text"].(string)
			words := strings.Fields(text)
			return &types.Result{
				Output: map[string]any{
					"words": len(words),
					"chars": len(text),
				},
			}, nil
		}))
	if err != nil {
		return err
	}
	if err := coordinator.RegisterAgent(wordstats); err != nil {
		return err
	}

	attempts := 0
	flaky, err := core.NewAgent("flaky_001", "Flaky", "demo",
		core.ExecutorFunc(func(ctx context.Context, input map[string]any) (*types.Result, error) {
			attempts++
			if attempts == 1 {
				return nil, fmt.Errorf("transient failure on attempt %d", attempts)
			}
			return &types.Result{Output: map[string]any{"attempts": attempts}}, nil
		}))
	if err != nil {
		return err
	}
	return coordinator.RegisterAgent(flaky)
}
