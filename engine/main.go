package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/austral-labs/snippet-engine-go/internal/assetstore"
	"github.com/austral-labs/snippet-engine-go/internal/engineconfig"
	"github.com/austral-labs/snippet-engine-go/internal/gateway"
	"github.com/austral-labs/snippet-engine-go/internal/language"
	"github.com/austral-labs/snippet-engine-go/internal/orchestrator"
	"github.com/austral-labs/snippet-engine-go/internal/platform/httpserver"
	"github.com/austral-labs/snippet-engine-go/internal/platform/objectstore"
	"github.com/austral-labs/snippet-engine-go/internal/runner"
	"github.com/austral-labs/snippet-engine-go/internal/runner/remote"
	"github.com/austral-labs/snippet-engine-go/internal/stateclient"
	"github.com/austral-labs/snippet-engine-go/internal/stream"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	ctx := context.Background()
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(2)
	}

	assets, readyChecks, err := buildAssetStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("asset store init failed", "error", err)
		os.Exit(1)
	}

	registry := runner.NewRegistry()
	engineClient := remote.NewHTTPClient()
	for _, v := range language.Known() {
		registry.Register(v, remote.Factory(cfg.EngineURL, v, engineClient))
	}
	gw := gateway.New(registry)
	resolver := engineconfig.NewResolver()

	service := orchestrator.New(assets, gw, resolver, logger)
	if service == nil {
		logger.Error("orchestrator init failed")
		os.Exit(2)
	}

	var wg sync.WaitGroup
	if cfg.ConsumersEnabled {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer func() { _ = rdb.Close() }()
		readyChecks = append(readyChecks, httpserver.ReadinessCheck{
			Name: "redis",
			Check: func(ctx context.Context) error {
				checkCtx, cancel := context.WithTimeout(ctx, 750*time.Millisecond)
				defer cancel()
				return rdb.Ping(checkCtx).Err()
			},
		})

		broker, err := stream.NewRedisBroker(rdb)
		if err != nil {
			logger.Error("broker init failed", "error", err)
			os.Exit(2)
		}
		states, err := stateclient.New(cfg.StateServiceURL, nil, logger)
		if err != nil {
			logger.Error("state client init failed", "error", err)
			os.Exit(2)
		}

		lintWorker := stream.NewLintWorker(resolver, gw, assets, states, logger)
		formatWorker := stream.NewFormatWorker(resolver, gw, assets, logger)
		consumers := []*stream.Consumer{
			stream.NewConsumer(broker, cfg.Stream.Linter, cfg.Groups.Linter, lintWorker.Handle, logger),
			stream.NewConsumer(broker, cfg.Stream.Formatter, cfg.Groups.Formatter, formatWorker.Handle, logger),
		}
		for _, c := range consumers {
			if c == nil {
				logger.Error("consumer init failed")
				os.Exit(2)
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := c.Run(ctx); err != nil {
					logger.Error("consumer exited", "error", err)
				}
			}()
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", httpserver.Healthz("engine"))
	mux.HandleFunc("/readyz", httpserver.ReadyzWithChecks("engine", readyChecks...))

	api := newEngineAPI(logger, service)
	api.register(mux)

	handler := httpserver.Wrap(logger, "engine", mux)
	if err := httpserver.Run(ctx, logger, httpserver.Config{
		Service:         "engine",
		Addr:            cfg.HTTPAddr,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, handler); err != nil {
		logger.Error("http server failed", "error", err)
		stop()
		wg.Wait()
		os.Exit(1)
	}

	wg.Wait()
}

func buildAssetStore(ctx context.Context, cfg serviceConfig, logger *slog.Logger) (assetstore.Store, []httpserver.ReadinessCheck, error) {
	if cfg.AssetBackend == "minio" {
		storeCfg, err := objectstore.ConfigFromEnv()
		if err != nil {
			return nil, nil, err
		}
		client, err := objectstore.NewMinIOClient(storeCfg)
		if err != nil {
			return nil, nil, err
		}
		startupCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := objectstore.EnsureBucket(startupCtx, client, storeCfg); err != nil {
			return nil, nil, err
		}
		store, err := assetstore.NewMinioStore(client, storeCfg.BucketSnippets)
		if err != nil {
			return nil, nil, err
		}
		check := httpserver.ReadinessCheck{
			Name: "minio",
			Check: func(ctx context.Context) error {
				checkCtx, cancel := context.WithTimeout(ctx, 750*time.Millisecond)
				defer cancel()
				return objectstore.CheckBucket(checkCtx, client, storeCfg)
			},
		}
		return store, []httpserver.ReadinessCheck{check}, nil
	}

	store, err := assetstore.NewHTTPStore(cfg.AssetServiceURL, nil, logger)
	if err != nil {
		return nil, nil, err
	}
	return store, nil, nil
}
