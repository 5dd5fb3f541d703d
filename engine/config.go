package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/austral-labs/snippet-engine-go/internal/platform/env"
)

// serviceConfig is loaded from an optional YAML file (ENGINE_CONFIG_FILE)
// with env-var overrides on top. The YAML mirrors the stream/group layout
// the producers already use.
type serviceConfig struct {
	HTTPAddr string `yaml:"httpAddr"`
	// env-only: yaml.v3 has no native duration decoding
	ShutdownTimeout time.Duration `yaml:"-"`

	EngineURL       string `yaml:"engineUrl"`
	StateServiceURL string `yaml:"stateServiceUrl"`

	AssetBackend    string `yaml:"assetBackend"` // "http" or "minio"
	AssetServiceURL string `yaml:"assetServiceUrl"`

	RedisAddr        string `yaml:"redisAddr"`
	ConsumersEnabled bool   `yaml:"consumersEnabled"`

	Stream struct {
		Linter    string `yaml:"linter"`
		Formatter string `yaml:"formatter"`
	} `yaml:"stream"`
	Groups struct {
		Linter    string `yaml:"linter"`
		Formatter string `yaml:"formatter"`
	} `yaml:"groups"`
}

func defaultConfig() serviceConfig {
	cfg := serviceConfig{
		HTTPAddr:         ":8080",
		ShutdownTimeout:  10 * time.Second,
		EngineURL:        "http://engine-daemon:8081",
		StateServiceURL:  "http://manager-service:8080",
		AssetBackend:     "http",
		AssetServiceURL:  "http://asset-service:8080",
		RedisAddr:        "localhost:6379",
		ConsumersEnabled: true,
	}
	cfg.Stream.Linter = "snippet-lint-stream"
	cfg.Stream.Formatter = "snippet-format-stream"
	cfg.Groups.Linter = "snippet-lint-group"
	cfg.Groups.Formatter = "snippet-format-group"
	return cfg
}

func loadConfig() (serviceConfig, error) {
	cfg := defaultConfig()

	if path := env.String("ENGINE_CONFIG_FILE", ""); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return serviceConfig{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return serviceConfig{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.HTTPAddr = env.String("ENGINE_HTTP_ADDR", cfg.HTTPAddr)
	shutdown, err := env.Duration("ENGINE_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return serviceConfig{}, err
	}
	cfg.ShutdownTimeout = shutdown

	cfg.EngineURL = env.String("ENGINE_DAEMON_URL", cfg.EngineURL)
	cfg.StateServiceURL = env.String("ENGINE_STATE_SERVICE_URL", cfg.StateServiceURL)
	cfg.AssetBackend = env.String("ENGINE_ASSET_BACKEND", cfg.AssetBackend)
	cfg.AssetServiceURL = env.String("ENGINE_ASSET_SERVICE_URL", cfg.AssetServiceURL)
	cfg.RedisAddr = env.String("ENGINE_REDIS_ADDR", cfg.RedisAddr)
	consumers, err := env.Bool("ENGINE_CONSUMERS_ENABLED", cfg.ConsumersEnabled)
	if err != nil {
		return serviceConfig{}, err
	}
	cfg.ConsumersEnabled = consumers
	cfg.Stream.Linter = env.String("ENGINE_LINT_STREAM", cfg.Stream.Linter)
	cfg.Stream.Formatter = env.String("ENGINE_FORMAT_STREAM", cfg.Stream.Formatter)
	cfg.Groups.Linter = env.String("ENGINE_LINT_GROUP", cfg.Groups.Linter)
	cfg.Groups.Formatter = env.String("ENGINE_FORMAT_GROUP", cfg.Groups.Formatter)

	return cfg, cfg.validate()
}

func (c serviceConfig) validate() error {
	switch strings.TrimSpace(c.AssetBackend) {
	case "http", "minio":
	default:
		return fmt.Errorf("unknown asset backend %q", c.AssetBackend)
	}
	if strings.TrimSpace(c.EngineURL) == "" {
		return fmt.Errorf("engine url is required")
	}
	if strings.TrimSpace(c.RedisAddr) == "" && c.ConsumersEnabled {
		return fmt.Errorf("redis addr is required when consumers are enabled")
	}
	return nil
}
