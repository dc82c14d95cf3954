package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is the namespace prefix for all interviewd environment variables.
const EnvPrefix = "INTERVIEWD_"

// Config holds all application configuration.
type Config struct {
	ListenAddr    string   `yaml:"listen_addr"`
	EngineURL     string   `yaml:"engine_url"`
	EngineTimeout string   `yaml:"engine_timeout"`
	ArchiveDBPath string   `yaml:"archive_db_path"`
	KafkaEnabled  bool     `yaml:"kafka_enabled"`
	KafkaBrokers  []string `yaml:"kafka_brokers"`
	KafkaTopic    string   `yaml:"kafka_topic"`
	LogLevel      string   `yaml:"log_level"`
	LogFormat     string   `yaml:"log_format"`
}

func defaults() Config {
	return Config{
		ListenAddr:    ":8080",
		EngineURL:     "http://localhost:8000",
		EngineTimeout: "30s",
		ArchiveDBPath: "data/interviewd.db",
		KafkaTopic:    "interview.audio-intake",
		LogLevel:      "info",
		LogFormat:     "json",
	}
}

// Load reads configuration from a YAML file (if it exists), applies
// environment variable overrides, and validates the result. It returns the
// config, any validation warnings, and an error if the file exists but
// cannot be read or parsed.
func Load(path string) (Config, []string, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, nil, fmt.Errorf("read config file: %w", err)
			}
		} else {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	applyEnvOverrides(&cfg)

	warnings := validate(&cfg)
	return cfg, warnings, nil
}

// ParsedEngineTimeout returns EngineTimeout as a time.Duration, falling back
// to 30s if the value is invalid.
func (c *Config) ParsedEngineTimeout() time.Duration {
	d, err := time.ParseDuration(c.EngineTimeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvPrefix + "LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv(EnvPrefix + "ENGINE_URL"); v != "" {
		cfg.EngineURL = v
	}
	if v := os.Getenv(EnvPrefix + "ENGINE_TIMEOUT"); v != "" {
		cfg.EngineTimeout = v
	}
	if v := os.Getenv(EnvPrefix + "ARCHIVE_DB_PATH"); v != "" {
		cfg.ArchiveDBPath = v
	}
	if v := os.Getenv(EnvPrefix + "KAFKA_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			cfg.KafkaEnabled = enabled
		}
	}
	if v := os.Getenv(EnvPrefix + "KAFKA_BROKERS"); v != "" {
		cfg.KafkaBrokers = parseList(v)
	}
	if v := os.Getenv(EnvPrefix + "KAFKA_TOPIC"); v != "" {
		cfg.KafkaTopic = v
	}
	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvPrefix + "LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
}

func validate(cfg *Config) []string {
	var warnings []string

	if strings.TrimSpace(cfg.EngineURL) == "" {
		warnings = append(warnings, "Engine URL not configured; every interview will run in fallback mode. Set "+EnvPrefix+"ENGINE_URL.")
	}
	if _, err := time.ParseDuration(cfg.EngineTimeout); err != nil {
		warnings = append(warnings, fmt.Sprintf("Invalid engine_timeout %q, using default 30s.", cfg.EngineTimeout))
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		warnings = append(warnings, "Kafka enabled but no brokers configured; audio intake markers are log-only.")
	}

	return warnings
}

func parseList(raw string) []string {
	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		result = append(result, trimmed)
	}
	return result
}
