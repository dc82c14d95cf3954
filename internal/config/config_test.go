package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, warnings, err := Load("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("listen addr = %q, want :8080", cfg.ListenAddr)
	}
	if cfg.EngineURL != "http://localhost:8000" {
		t.Errorf("engine url = %q", cfg.EngineURL)
	}
	if cfg.EngineTimeout != "30s" {
		t.Errorf("engine timeout = %q, want 30s", cfg.EngineTimeout)
	}
	if cfg.KafkaEnabled {
		t.Error("kafka should default to disabled")
	}
	if cfg.KafkaTopic != "interview.audio-intake" {
		t.Errorf("kafka topic = %q", cfg.KafkaTopic)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
listen_addr: ":9090"
engine_url: "http://engine:8000"
engine_timeout: "45s"
kafka_enabled: true
kafka_brokers:
  - "kafka-1:9092"
  - "kafka-2:9092"
log_level: debug
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, warnings, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if cfg.ListenAddr != ":9090" {
		t.Errorf("listen addr = %q", cfg.ListenAddr)
	}
	if cfg.EngineURL != "http://engine:8000" {
		t.Errorf("engine url = %q", cfg.EngineURL)
	}
	if !cfg.KafkaEnabled || len(cfg.KafkaBrokers) != 2 {
		t.Errorf("kafka config not applied: %+v", cfg)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level = %q", cfg.LogLevel)
	}
	if cfg.ArchiveDBPath != "data/interviewd.db" {
		t.Errorf("unset field lost its default: %q", cfg.ArchiveDBPath)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("listen addr = %q", cfg.ListenAddr)
	}
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("listen_addr: [unclosed"), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	if _, _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvPrefix+"LISTEN_ADDR", ":7070")
	t.Setenv(EnvPrefix+"ENGINE_URL", "http://override:8000")
	t.Setenv(EnvPrefix+"KAFKA_ENABLED", "true")
	t.Setenv(EnvPrefix+"KAFKA_BROKERS", "a:9092, b:9092, ")

	cfg, warnings, err := Load("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if cfg.ListenAddr != ":7070" {
		t.Errorf("listen addr = %q", cfg.ListenAddr)
	}
	if cfg.EngineURL != "http://override:8000" {
		t.Errorf("engine url = %q", cfg.EngineURL)
	}
	if !cfg.KafkaEnabled {
		t.Error("kafka enabled override not applied")
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[0] != "a:9092" || cfg.KafkaBrokers[1] != "b:9092" {
		t.Errorf("brokers = %v", cfg.KafkaBrokers)
	}
}

func TestValidationWarnings(t *testing.T) {
	t.Setenv(EnvPrefix+"ENGINE_TIMEOUT", "banana")
	t.Setenv(EnvPrefix+"KAFKA_ENABLED", "true")

	_, warnings, err := Load("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %v", warnings)
	}
}

func TestParsedEngineTimeout(t *testing.T) {
	cfg := Config{EngineTimeout: "45s"}
	if got := cfg.ParsedEngineTimeout(); got != 45*time.Second {
		t.Errorf("timeout = %v, want 45s", got)
	}

	for _, bad := range []string{"", "banana", "-5s"} {
		cfg := Config{EngineTimeout: bad}
		if got := cfg.ParsedEngineTimeout(); got != 30*time.Second {
			t.Errorf("timeout for %q = %v, want 30s fallback", bad, got)
		}
	}
}
