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

// Config captures the settings required to boot the engine daemon.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Topology    TopologyConfig    `yaml:"topology"`
	Simulation  SimulationConfig  `yaml:"simulation"`
	Remediation RemediationConfig `yaml:"remediation"`
	Narrative   NarrativeConfig   `yaml:"narrative"`
	Publish     PublishConfig     `yaml:"publish"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// ServerConfig controls the metrics sidecar listener and shutdown behaviour.
type ServerConfig struct {
	MetricsAddress  string        `yaml:"metricsAddress"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout"`
}

// TopologyConfig selects where the service topology comes from.
type TopologyConfig struct {
	// Source is one of "demo", "file", or "http".
	Source       string        `yaml:"source"`
	Path         string        `yaml:"path"`
	BaseURL      string        `yaml:"baseURL"`
	TopologyPath string        `yaml:"topologyPath"`
	FetchTimeout time.Duration `yaml:"fetchTimeout"`
}

// SimulationConfig controls the load-propagation cycle.
type SimulationConfig struct {
	GrowthFactor   float64       `yaml:"growthFactor"`
	Interval       time.Duration `yaml:"interval"`
	RetentionHours int           `yaml:"retentionHours"`
}

// RemediationConfig controls the rule engine.
type RemediationConfig struct {
	RulesPath      string        `yaml:"rulesPath"`
	DryRun         bool          `yaml:"dryRun"`
	ExecutionDelay time.Duration `yaml:"executionDelay"`
}

// NarrativeConfig selects the text-generation provider.
type NarrativeConfig struct {
	// Provider is "template" or "openai".
	Provider string        `yaml:"provider"`
	Model    string        `yaml:"model"`
	Timeout  time.Duration `yaml:"timeout"`
}

// PublishConfig controls the Redis output publisher.
type PublishConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Addr        string        `yaml:"addr"`
	Username    string        `yaml:"username"`
	Password    string        `yaml:"password"`
	DB          int           `yaml:"db"`
	TTL         time.Duration `yaml:"ttl"`
	DialTimeout time.Duration `yaml:"dialTimeout"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Load initialises Config from a YAML file and optional environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("SCALEGUARD_CONFIG")
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

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			MetricsAddress:  ":2112",
			GracefulTimeout: 10 * time.Second,
		},
		Topology: TopologyConfig{
			Source:       "demo",
			TopologyPath: "/api/v1/topology",
			FetchTimeout: 5 * time.Second,
		},
		Simulation: SimulationConfig{
			GrowthFactor:   1.0,
			Interval:       time.Minute,
			RetentionHours: 48,
		},
		Remediation: RemediationConfig{
			DryRun:         true,
			ExecutionDelay: 2 * time.Second,
		},
		Narrative: NarrativeConfig{
			Provider: "template",
			Timeout:  20 * time.Second,
		},
		Publish: PublishConfig{
			Enabled:     false,
			TTL:         time.Hour,
			DialTimeout: 2 * time.Second,
		},
		Logging: LoggingConfig{Level: "info", JSON: false},
	}
}

func validate(cfg *Config) error {
	switch cfg.Topology.Source {
	case "demo":
	case "file":
		if cfg.Topology.Path == "" {
			return fmt.Errorf("topology source %q requires topology.path", cfg.Topology.Source)
		}
	case "http":
		if cfg.Topology.BaseURL == "" {
			return fmt.Errorf("topology source %q requires topology.baseURL", cfg.Topology.Source)
		}
	default:
		return fmt.Errorf("unknown topology source %q", cfg.Topology.Source)
	}
	if cfg.Simulation.GrowthFactor <= 0 {
		return fmt.Errorf("simulation.growthFactor must be positive, got %v", cfg.Simulation.GrowthFactor)
	}
	if cfg.Simulation.Interval <= 0 {
		return fmt.Errorf("simulation.interval must be positive, got %v", cfg.Simulation.Interval)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SCALEGUARD_METRICS_ADDRESS"); v != "" {
		cfg.Server.MetricsAddress = v
	}
	if v := os.Getenv("SCALEGUARD_TOPOLOGY_SOURCE"); v != "" {
		cfg.Topology.Source = v
	}
	if v := os.Getenv("SCALEGUARD_TOPOLOGY_PATH"); v != "" {
		cfg.Topology.Path = v
	}
	if v := os.Getenv("SCALEGUARD_TOPOLOGY_BASE_URL"); v != "" {
		cfg.Topology.BaseURL = v
	}
	if v := os.Getenv("SCALEGUARD_GROWTH_FACTOR"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Simulation.GrowthFactor = f
		}
	}
	if v := os.Getenv("SCALEGUARD_CYCLE_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Simulation.Interval = d
		}
	}
	if v := os.Getenv("SCALEGUARD_RETENTION_HOURS"); v != "" {
		if h, err := strconv.Atoi(v); err == nil {
			cfg.Simulation.RetentionHours = h
		}
	}
	if v := os.Getenv("SCALEGUARD_RULES_PATH"); v != "" {
		cfg.Remediation.RulesPath = v
	}
	if v := os.Getenv("SCALEGUARD_REMEDIATION_DRY_RUN"); v != "" {
		cfg.Remediation.DryRun = strings.EqualFold(v, "true") || v == "1"
	}
	if v := os.Getenv("SCALEGUARD_NARRATIVE_PROVIDER"); v != "" {
		cfg.Narrative.Provider = v
	}
	if v := os.Getenv("SCALEGUARD_NARRATIVE_MODEL"); v != "" {
		cfg.Narrative.Model = v
	}
	if v := os.Getenv("SCALEGUARD_PUBLISH_ENABLED"); v != "" {
		cfg.Publish.Enabled = strings.EqualFold(v, "true") || v == "1"
	}
	if v := os.Getenv("SCALEGUARD_PUBLISH_ADDR"); v != "" {
		cfg.Publish.Addr = v
	}
	if v := os.Getenv("SCALEGUARD_PUBLISH_USERNAME"); v != "" {
		cfg.Publish.Username = v
	}
	if v := os.Getenv("SCALEGUARD_PUBLISH_PASSWORD"); v != "" {
		cfg.Publish.Password = v
	}
	if v := os.Getenv("SCALEGUARD_PUBLISH_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Publish.DB = db
		}
	}
	if v := os.Getenv("SCALEGUARD_PUBLISH_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Publish.TTL = d
		}
	}
	if v := os.Getenv("SCALEGUARD_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SCALEGUARD_LOG_FORMAT"); v == "json" {
		cfg.Logging.JSON = true
	}
}
