// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type ComputeConfig struct {
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"` // ceiling for one compute call
}

type WorkerConfig struct {
	Workers        int           `yaml:"workers"`
	LeaseTTL       time.Duration `yaml:"lease_ttl"`
	ReaperInterval time.Duration `yaml:"reaper_interval"`
}

type PollConfig struct {
	Interval    time.Duration `yaml:"interval"`
	MaxAttempts int           `yaml:"max_attempts"`
}

// CostConfig is the fixed credit price per job type.
type CostConfig struct {
	ImageGeneration int64 `yaml:"image_generation"`
	ProductSearch   int64 `yaml:"product_search"`
	AutoSelect      int64 `yaml:"auto_select"`
}

type Config struct {
	Log      LogConfig      `yaml:"log"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Compute  ComputeConfig  `yaml:"compute"`
	Worker   WorkerConfig   `yaml:"worker"`
	Poll     PollConfig     `yaml:"poll"`
	Costs    CostConfig     `yaml:"costs"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// env overrides for secrets and connection strings
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("COMPUTE_API_KEY"); v != "" {
		cfg.Compute.APIKey = v
	}

	// defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = time.Hour
	}
	if cfg.Compute.Timeout <= 0 {
		cfg.Compute.Timeout = 5 * time.Minute
	}
	if cfg.Worker.Workers <= 0 {
		cfg.Worker.Workers = 8
	}
	if cfg.Worker.LeaseTTL <= 0 {
		cfg.Worker.LeaseTTL = cfg.Compute.Timeout + time.Minute
	}
	if cfg.Worker.ReaperInterval <= 0 {
		cfg.Worker.ReaperInterval = time.Minute
	}
	if cfg.Poll.Interval <= 0 {
		cfg.Poll.Interval = 5 * time.Second
	}
	if cfg.Poll.MaxAttempts <= 0 {
		cfg.Poll.MaxAttempts = 120
	}
	if cfg.Costs.ImageGeneration == 0 {
		cfg.Costs.ImageGeneration = 10
	}
	if cfg.Costs.ProductSearch == 0 {
		cfg.Costs.ProductSearch = 15
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Compute.BaseURL == "" && !dev {
		return nil, errors.New("compute.base_url is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
