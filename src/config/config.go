package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"market-breadth/src/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const envPrefix = "BREADTH_"

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new Config from a YAML file. A .env file in the working
// directory, if present, is loaded first so BREADTH_* overrides can live there.
func NewConfig(configPath string) (*Config, error) {
	// 1. Optional .env
	_ = godotenv.Load()

	// 2. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 3. Unmarshal data into the models struct
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}
	config.ApplyDefaults()
	if err := config.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}

	// 4. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// Default returns a validated config built only from defaults.
func Default() *Config {
	c := &Config{MConfig: &models.MConfig{}}
	c.ApplyDefaults()
	return c
}

// -----------------------------------------------------------------------------

// ApplyDefaults fills every zero value with its documented default.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "market-breadth"
	}
	if c.Host == "" {
		c.Host = "127.0.0.1"
	}
	if c.Port == 0 {
		c.Port = 8765
	}
	if c.LogLevel == "" {
		c.LogLevel = "INFO"
	}
	if c.GrpcHost == "" {
		c.GrpcHost = "127.0.0.1"
	}

	st := &c.Storage
	if st.DBType == "" {
		st.DBType = "excel"
	}
	if st.DataDir == "" {
		st.DataDir = "data"
	}
	if st.FilePrefix == "" {
		st.FilePrefix = "market_stats"
	}
	if st.DBPath == "" {
		st.DBPath = "data/market_breadth.db"
	}

	ds := &c.DataSource
	if ds.Endpoint == "" {
		ds.Endpoint = "https://qt.gtimg.cn/q="
	}
	if ds.IndexSymbol == "" {
		ds.IndexSymbol = "sh000001"
	}
	if ds.BatchSize == 0 {
		ds.BatchSize = 500
	}
	if ds.Workers == 0 {
		ds.Workers = 10
	}
	if ds.BatchTimeoutSeconds == 0 {
		ds.BatchTimeoutSeconds = 15
	}
	if ds.IndexTimeoutSeconds == 0 {
		ds.IndexTimeoutSeconds = 5
	}
	if ds.Thresholds.SmallMove == 0 {
		ds.Thresholds.SmallMove = 3
	}
	if ds.Thresholds.LargeMove == 0 {
		ds.Thresholds.LargeMove = 5
	}
	if ds.Thresholds.Limit == 0 {
		ds.Thresholds.Limit = 9.9
	}

	p := &c.Poller
	if len(p.AllowedIntervals) == 0 {
		p.AllowedIntervals = []int{5, 10, 15, 30, 60}
	}
	if p.IntervalSeconds == 0 {
		p.IntervalSeconds = 10
	}
	if p.ClosedRecheckSeconds == 0 {
		p.ClosedRecheckSeconds = 60
	}
	if p.LivePoints == 0 {
		p.LivePoints = 100
	}

	if c.Sinks.Redis.Addr == "" {
		c.Sinks.Redis.Addr = "127.0.0.1:6379"
	}
	if c.Sinks.Redis.Key == "" {
		c.Sinks.Redis.Key = "breadth:latest"
	}
	if c.Sinks.Redis.Channel == "" {
		c.Sinks.Redis.Channel = "breadth.snapshots"
	}
	if c.Sinks.Kafka.Topic == "" {
		c.Sinks.Kafka.Topic = "market-breadth"
	}
}

// -----------------------------------------------------------------------------

// ApplyEnv overrides selected keys from BREADTH_* variables.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := getenv(envPrefix + key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v := getenv(envPrefix + key)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s%s=%q: %w", envPrefix, key, v, err)
		}
		*dst = n
		return nil
	}

	str("LOG_LEVEL", &c.LogLevel)
	str("HOST", &c.Host)
	str("DB_TYPE", &c.Storage.DBType)
	str("DB_PATH", &c.Storage.DBPath)
	str("DB_DSN", &c.Storage.DBConnectionString)
	str("DATA_DIR", &c.Storage.DataDir)
	str("REDIS_ADDR", &c.Sinks.Redis.Addr)
	str("REDIS_PASSWORD", &c.Sinks.Redis.Password)

	if v := getenv(envPrefix + "KAFKA_BROKERS"); v != "" {
		c.Sinks.Kafka.Brokers = strings.Split(v, ",")
	}

	for key, dst := range map[string]*int{
		"PORT":             &c.Port,
		"GRPC_PORT":        &c.GrpcPort,
		"INTERVAL_SECONDS": &c.Poller.IntervalSeconds,
		"BATCH_SIZE":       &c.DataSource.BatchSize,
		"WORKERS":          &c.DataSource.Workers,
	} {
		if err := num(key, dst); err != nil {
			return err
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	// Server
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}
	if c.GrpcPort != 0 && (c.GrpcPort <= 1024 || c.GrpcPort > 65535) {
		return fmt.Errorf("invalid grpc port number: %d", c.GrpcPort)
	}

	// Storage
	switch c.Storage.DBType {
	case "excel":
		if c.Storage.DataDir == "" {
			return fmt.Errorf("data directory cannot be empty for excel storage")
		}
	case "sqlite":
		if c.Storage.DBPath == "" {
			return fmt.Errorf("database path cannot be empty for sqlite")
		}
	case "postgres":
		if c.Storage.DBConnectionString == "" {
			return fmt.Errorf("connection string cannot be empty for postgres")
		}
	default:
		return fmt.Errorf("unsupported storage type: %q", c.Storage.DBType)
	}
	if c.Storage.DataRetentionDays < 0 {
		return fmt.Errorf("data retention days cannot be negative")
	}

	// Network
	if c.Network.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}

	// Data source
	ds := c.DataSource
	if ds.BatchSize <= 0 {
		return fmt.Errorf("batch size must be greater than 0")
	}
	if ds.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0")
	}
	if ds.BatchTimeoutSeconds <= 0 || ds.IndexTimeoutSeconds <= 0 {
		return fmt.Errorf("request timeouts must be greater than 0")
	}
	th := ds.Thresholds
	if th.SmallMove <= 0 || th.LargeMove < th.SmallMove || th.Limit < th.LargeMove {
		return fmt.Errorf("thresholds must satisfy 0 < small_move <= large_move <= limit (got %v/%v/%v)",
			th.SmallMove, th.LargeMove, th.Limit)
	}

	// Poller
	if !c.IntervalAllowed(c.Poller.IntervalSeconds) {
		return fmt.Errorf("interval %ds is not one of %v", c.Poller.IntervalSeconds, c.Poller.AllowedIntervals)
	}
	if c.Poller.LivePoints <= 0 {
		return fmt.Errorf("live points must be greater than 0")
	}

	// Sinks
	if c.Sinks.Kafka.Enabled && len(c.Sinks.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka sink enabled without brokers")
	}

	return nil
}

// -----------------------------------------------------------------------------

// IntervalAllowed reports whether seconds is one of the allowed poll intervals.
func (c *Config) IntervalAllowed(seconds int) bool {
	for _, s := range c.Poller.AllowedIntervals {
		if s == seconds {
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
