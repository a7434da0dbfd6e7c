package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures the settings required to boot an agent process.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	LLM       LLMConfig       `yaml:"llm"`
	Policy    PolicyConfig    `yaml:"policy"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Search    SearchConfig    `yaml:"search"`
	Store     StoreConfig     `yaml:"store"`
	Warehouse WarehouseConfig `yaml:"warehouse"`
	Cluster   ClusterConfig   `yaml:"cluster"`
	Bus       BusConfig       `yaml:"bus"`
	Cache     CacheConfig     `yaml:"cache"`
	Rules     RulesConfig     `yaml:"rules"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
}

// ServerConfig controls the RPC and card listeners. Empty addresses
// fall back to the fixed per-agent port scheme.
type ServerConfig struct {
	RPCAddress      string        `yaml:"rpcAddress"`
	CardAddress     string        `yaml:"cardAddress"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// LLMConfig configures the external reasoning command.
type LLMConfig struct {
	Command string        `yaml:"command"`
	Args    []string      `yaml:"args"`
	Timeout time.Duration `yaml:"timeout"`
	Enabled bool          `yaml:"enabled"`
}

// PolicyConfig configures the policy evaluation endpoint.
type PolicyConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// WebhookConfig configures the chat escalation webhook.
type WebhookConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// SearchConfig configures the vector search backend for grounding.
type SearchConfig struct {
	Endpoint   string        `yaml:"endpoint"`
	APIKey     string        `yaml:"apiKey"`
	Timeout    time.Duration `yaml:"timeout"`
	SnippetTTL time.Duration `yaml:"snippetTTL"`
	Limit      int           `yaml:"limit"`
}

// StoreConfig selects the envelope store backend.
type StoreConfig struct {
	Driver   string        `yaml:"driver"` // "http" or "sqlite"
	Endpoint string        `yaml:"endpoint"`
	Timeout  time.Duration `yaml:"timeout"`
	Path     string        `yaml:"path"`
}

// WarehouseConfig configures the validator's warehouse query endpoint.
type WarehouseConfig struct {
	Endpoint string        `yaml:"endpoint"`
	Timeout  time.Duration `yaml:"timeout"`
}

// ClusterConfig configures the validator's cluster state probe.
type ClusterConfig struct {
	Endpoint string        `yaml:"endpoint"`
	Timeout  time.Duration `yaml:"timeout"`
}

// BusConfig selects the message source for the watcher's streaming
// mode.
type BusConfig struct {
	Driver  string   `yaml:"driver"` // "nats" or "kafka"
	URL     string   `yaml:"url"`
	Subject string   `yaml:"subject"`
	Durable string   `yaml:"durable"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
	GroupID string   `yaml:"groupID"`
}

// CacheConfig controls the Valkey-backed snippet cache.
type CacheConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Addr         string        `yaml:"addr"`
	Username     string        `yaml:"username"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	DialTimeout  time.Duration `yaml:"dialTimeout"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	MaxRetries   int           `yaml:"maxRetries"`
	TLS          bool          `yaml:"tls"`
}

// RulesConfig controls the classifier rule pack.
type RulesConfig struct {
	Path string `yaml:"path"`
}

// PipelineConfig bounds a full incident flow.
type PipelineConfig struct {
	FlowTimeout time.Duration `yaml:"flowTimeout"`
}

// Load initialises Config from a YAML file and environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("SENTINEL_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	return &cfg, nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			GracefulTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{Level: "info", JSON: false},
		LLM: LLMConfig{
			Command: "gemini",
			Args:    []string{"prompt"},
			Timeout: 30 * time.Second,
			Enabled: true,
		},
		Policy:    PolicyConfig{Timeout: 5 * time.Second},
		Webhook:   WebhookConfig{Timeout: 5 * time.Second},
		Search:    SearchConfig{Timeout: 5 * time.Second, SnippetTTL: 2 * time.Minute, Limit: 5},
		Store:     StoreConfig{Driver: "http", Timeout: 5 * time.Second, Path: "envelopes.db"},
		Warehouse: WarehouseConfig{Timeout: 5 * time.Second},
		Cluster:   ClusterConfig{Timeout: 5 * time.Second},
		Bus: BusConfig{
			Driver:  "nats",
			URL:     "nats://localhost:4222",
			Subject: "incidents.alerts",
			Durable: "watcher",
			Topic:   "incidents.alerts",
			GroupID: "watcher",
		},
		Cache: CacheConfig{
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
			MaxRetries:   2,
		},
		Pipeline: PipelineConfig{FlowTimeout: 2 * time.Minute},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SENTINEL_RPC_ADDRESS"); v != "" {
		cfg.Server.RPCAddress = v
	}
	if v := os.Getenv("SENTINEL_CARD_ADDRESS"); v != "" {
		cfg.Server.CardAddress = v
	}
	if v := os.Getenv("SENTINEL_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SENTINEL_LOG_FORMAT"); v == "json" {
		cfg.Logging.JSON = true
	}
	if v := os.Getenv("SENTINEL_LLM_COMMAND"); v != "" {
		cfg.LLM.Command = v
	}
	if v := os.Getenv("SENTINEL_LLM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.LLM.Timeout = d
		}
	}
	if v := os.Getenv("SENTINEL_LLM_ENABLED"); v != "" {
		cfg.LLM.Enabled = isTrue(v)
	}
	if v := os.Getenv("SENTINEL_POLICY_URL"); v != "" {
		cfg.Policy.URL = v
	}
	if v := os.Getenv("SENTINEL_WEBHOOK_URL"); v != "" {
		cfg.Webhook.URL = v
	}
	if v := os.Getenv("SENTINEL_SEARCH_ENDPOINT"); v != "" {
		cfg.Search.Endpoint = v
	}
	if v := os.Getenv("SENTINEL_SEARCH_API_KEY"); v != "" {
		cfg.Search.APIKey = v
	}
	if v := os.Getenv("SENTINEL_STORE_DRIVER"); v != "" {
		cfg.Store.Driver = v
	}
	if v := os.Getenv("SENTINEL_STORE_ENDPOINT"); v != "" {
		cfg.Store.Endpoint = v
	}
	if v := os.Getenv("SENTINEL_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("SENTINEL_WAREHOUSE_ENDPOINT"); v != "" {
		cfg.Warehouse.Endpoint = v
	}
	if v := os.Getenv("SENTINEL_CLUSTER_ENDPOINT"); v != "" {
		cfg.Cluster.Endpoint = v
	}
	if v := os.Getenv("SENTINEL_BUS_DRIVER"); v != "" {
		cfg.Bus.Driver = v
	}
	if v := os.Getenv("SENTINEL_BUS_URL"); v != "" {
		cfg.Bus.URL = v
	}
	if v := os.Getenv("SENTINEL_BUS_SUBJECT"); v != "" {
		cfg.Bus.Subject = v
	}
	if v := os.Getenv("SENTINEL_BUS_BROKERS"); v != "" {
		cfg.Bus.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("SENTINEL_BUS_TOPIC"); v != "" {
		cfg.Bus.Topic = v
	}
	if v := os.Getenv("SENTINEL_CACHE_ENABLED"); v != "" {
		cfg.Cache.Enabled = isTrue(v)
	}
	if v := os.Getenv("SENTINEL_CACHE_ADDR"); v != "" {
		cfg.Cache.Addr = v
	}
	if v := os.Getenv("SENTINEL_CACHE_USERNAME"); v != "" {
		cfg.Cache.Username = v
	}
	if v := os.Getenv("SENTINEL_CACHE_PASSWORD"); v != "" {
		cfg.Cache.Password = v
	}
	if v := os.Getenv("SENTINEL_CACHE_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Cache.DB = db
		}
	}
	if v := os.Getenv("SENTINEL_CACHE_TLS"); isTrue(v) {
		cfg.Cache.TLS = true
	}
	if v := os.Getenv("SENTINEL_RULES_PATH"); v != "" {
		cfg.Rules.Path = v
	}
	if v := os.Getenv("SENTINEL_FLOW_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Pipeline.FlowTimeout = d
		}
	}
}

func isTrue(v string) bool {
	return strings.EqualFold(v, "true") || v == "1"
}
