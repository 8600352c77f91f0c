package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "LOCALKV_"

// Backend kinds accepted in Config.Backend.
const (
	BackendMemory = "memory"
	BackendBolt   = "bolt"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendRaft   = "raft"
)

type Config struct {
	NodeID     string `yaml:"node_id" env:"NODE_ID"`
	Backend    string `yaml:"backend" env:"BACKEND"`
	DataPath   string `yaml:"data_path" env:"DATA_PATH"`
	QuotaBytes int    `yaml:"quota_bytes" env:"QUOTA_BYTES"`

	HTTPAddr      string        `yaml:"http_addr" env:"HTTP_ADDR"`
	GRPCAddr      string        `yaml:"grpc_addr" env:"GRPC_ADDR"`
	SweepInterval time.Duration `yaml:"sweep_interval" env:"SWEEP_INTERVAL"`

	RaftAddr   string `yaml:"raft_addr" env:"RAFT_ADDR"`
	RaftData   string `yaml:"raft_data" env:"RAFT_DATA"`
	RaftLeader bool   `yaml:"raft_leader" env:"RAFT_LEADER"`

	RedisAddr     string `yaml:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword string `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db" env:"REDIS_DB"`

	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`
	LogJSON  bool   `yaml:"log_json" env:"LOG_JSON"`
}

// LoadConfig loads configuration from a YAML file if path is provided,
// then applies LOCALKV_* environment overrides, defaults and validation.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Unset variables leave the YAML values in place.
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.NodeID == "" {
		c.NodeID = "node1"
	}
	if c.Backend == "" {
		c.Backend = BackendMemory
	}
	if c.HTTPAddr == "" {
		c.HTTPAddr = ":8080"
	}
	if c.GRPCAddr == "" {
		c.GRPCAddr = ":9090"
	}
	if c.DataPath == "" {
		switch c.Backend {
		case BackendBolt:
			c.DataPath = "./localkv.db"
		case BackendSQLite:
			c.DataPath = "./localkv.sqlite"
		}
	}
	if c.RaftData == "" {
		c.RaftData = fmt.Sprintf("./localkv/%s", c.NodeID)
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendMemory, BackendBolt, BackendSQLite:
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis backend (set via environment or config file)")
		}
	case BackendRaft:
		if c.RaftAddr == "" {
			return fmt.Errorf("RAFT_ADDR is required for the raft backend (set via environment or config file)")
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.QuotaBytes < 0 {
		return fmt.Errorf("quota_bytes must be non-negative, got %d", c.QuotaBytes)
	}
	if c.SweepInterval < 0 {
		return fmt.Errorf("sweep_interval must be non-negative, got %v", c.SweepInterval)
	}
	return nil
}
