package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestNewConfigAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "name: breadth-test\nport: 9000\n")

	cfg, err := NewConfig(path)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}

	if cfg.Port != 9000 {
		t.Errorf("port = %d, want 9000", cfg.Port)
	}
	ds := cfg.DataSource
	if ds.BatchSize != 500 || ds.Workers != 10 {
		t.Errorf("batch/workers = %d/%d, want 500/10", ds.BatchSize, ds.Workers)
	}
	if ds.BatchTimeoutSeconds != 15 || ds.IndexTimeoutSeconds != 5 {
		t.Errorf("timeouts = %d/%d, want 15/5", ds.BatchTimeoutSeconds, ds.IndexTimeoutSeconds)
	}
	if ds.Thresholds.SmallMove != 3 || ds.Thresholds.LargeMove != 5 || ds.Thresholds.Limit != 9.9 {
		t.Errorf("thresholds = %+v", ds.Thresholds)
	}
	if !ds.IndexRequired() {
		t.Error("index should be required by default")
	}
	if cfg.Poller.IntervalSeconds != 10 || cfg.Poller.LivePoints != 100 {
		t.Errorf("poller = %+v", cfg.Poller)
	}
	if cfg.Storage.DBType != "excel" {
		t.Errorf("storage type = %q, want excel", cfg.Storage.DBType)
	}
}

func TestRequireIndexCanBeDisabled(t *testing.T) {
	path := writeConfig(t, "data_source:\n  require_index: false\n")
	cfg, err := NewConfig(path)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	if cfg.DataSource.IndexRequired() {
		t.Error("require_index: false was ignored")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]func(c *Config){
		"port":       func(c *Config) { c.Port = 80 },
		"interval":   func(c *Config) { c.Poller.IntervalSeconds = 7 },
		"storage":    func(c *Config) { c.Storage.DBType = "mongo" },
		"postgres":   func(c *Config) { c.Storage.DBType = "postgres" },
		"thresholds": func(c *Config) { c.DataSource.Thresholds.LargeMove = 1 },
		"kafka":      func(c *Config) { c.Sinks.Kafka.Enabled = true },
		"batch":      func(c *Config) { c.DataSource.BatchSize = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := Default()
			mutate(c)
			if err := c.Validate(); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"BREADTH_PORT":          "9100",
		"BREADTH_DB_TYPE":       "sqlite",
		"BREADTH_KAFKA_BROKERS": "a:9092,b:9092",
		"BREADTH_BATCH_SIZE":    "250",
	}
	c := Default()
	if err := c.ApplyEnv(func(k string) string { return env[k] }); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if c.Port != 9100 || c.Storage.DBType != "sqlite" || c.DataSource.BatchSize != 250 {
		t.Errorf("overrides not applied: port=%d db=%s batch=%d", c.Port, c.Storage.DBType, c.DataSource.BatchSize)
	}
	if len(c.Sinks.Kafka.Brokers) != 2 {
		t.Errorf("brokers = %v", c.Sinks.Kafka.Brokers)
	}

	bad := func(k string) string {
		if k == "BREADTH_PORT" {
			return "abc"
		}
		return ""
	}
	if err := Default().ApplyEnv(bad); err == nil {
		t.Error("expected error for non-numeric port")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	c := Default()
	c.Poller.IntervalSeconds = 30
	path := filepath.Join(t.TempDir(), "saved.yaml")
	if err := c.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := NewConfig(path)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	if loaded.Poller.IntervalSeconds != 30 {
		t.Errorf("interval = %d, want 30", loaded.Poller.IntervalSeconds)
	}
}
