// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Logging    LoggingConfig    `yaml:"logging"`
	Repository RepositoryConfig `yaml:"repository"`
	Worker     WorkerConfig     `yaml:"worker"`
	CORS       CORSConfig       `yaml:"cors"`
}

type ServerConfig struct {
	Port           string        `yaml:"port"`
	Host           string        `yaml:"host"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	RateLimitRPM   int           `yaml:"rate_limit_rpm"`
}

type DatabaseConfig struct {
	URL            string `yaml:"url"`
	MigrationsPath string `yaml:"migrations_path"`
}

type LoggingConfig struct {
	Development bool `yaml:"development"`
}

type RepositoryConfig struct {
	Type string `yaml:"type"` // "postgres" или "inmemory"
}

type WorkerConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Schedule  string        `yaml:"schedule"` // cron-выражение
	DueWindow time.Duration `yaml:"due_window"`
	BatchSize int           `yaml:"batch_size"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("не могу открыть %s: %w", path, err)
	}
	defer file.Close()

	var cfg Config
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка парсинга %s: %w", path, err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 30 * time.Second
	}
	if cfg.Server.RateLimitRPM == 0 {
		cfg.Server.RateLimitRPM = 100
	}
	if cfg.Repository.Type == "" {
		cfg.Repository.Type = "inmemory"
	}
	if cfg.Worker.Schedule == "" {
		cfg.Worker.Schedule = "@every 15m"
	}
	if cfg.Worker.DueWindow == 0 {
		cfg.Worker.DueWindow = 24 * time.Hour
	}
	if cfg.Worker.BatchSize == 0 {
		cfg.Worker.BatchSize = 100
	}
	if cfg.Database.MigrationsPath == "" {
		cfg.Database.MigrationsPath = "internal/migrations"
	}
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}
