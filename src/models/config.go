package models

// MConfig Structure
type MConfig struct {
	Name       string            `yaml:"name"`
	Host       string            `yaml:"host"`
	Port       int               `yaml:"port"`
	LogLevel   string            `yaml:"log_level"`
	GrpcHost   string            `yaml:"grpc_host"`
	GrpcPort   int               `yaml:"grpc_port"`
	Storage    MStorageConfig    `yaml:"storage"`
	Network    MNetworkConfig    `yaml:"network"`
	DataSource MDataSourceConfig `yaml:"data_source"`
	Poller     MPollerConfig     `yaml:"poller"`
	Sinks      MSinksConfig      `yaml:"sinks"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"` // excel, sqlite, postgres
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
	DataDir            string `yaml:"data_dir"`
	FilePrefix         string `yaml:"file_prefix"`
	DataRetentionDays  int    `yaml:"data_retention_days"` // 0 keeps everything
}

type MNetworkConfig struct {
	Enabled    bool     `yaml:"enabled"`
	Proxies    []string `yaml:"proxies"`
	MaxRetries int      `yaml:"retries"`
	UserAgent  string   `yaml:"user_agent"`
}

type MThresholds struct {
	SmallMove float64 `yaml:"small_move" json:"small_move"`
	LargeMove float64 `yaml:"large_move" json:"large_move"`
	Limit     float64 `yaml:"limit" json:"limit"`
}

type MDataSourceConfig struct {
	Endpoint            string      `yaml:"endpoint"`
	IndexSymbol         string      `yaml:"index_symbol"`
	BatchSize           int         `yaml:"batch_size"`
	Workers             int         `yaml:"workers"`
	BatchTimeoutSeconds int         `yaml:"batch_timeout_seconds"`
	IndexTimeoutSeconds int         `yaml:"index_timeout_seconds"`
	RequireIndex        *bool       `yaml:"require_index"`
	Thresholds          MThresholds `yaml:"thresholds"`
}

type MPollerConfig struct {
	IntervalSeconds      int   `yaml:"interval_seconds"`
	AllowedIntervals     []int `yaml:"allowed_intervals"`
	MarketHoursOnly      bool  `yaml:"market_hours_only"`
	ClosedRecheckSeconds int   `yaml:"closed_recheck_seconds"`
	LivePoints           int   `yaml:"live_points"`
}

type MRedisSinkConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Key      string `yaml:"key"`
	Channel  string `yaml:"channel"`
}

type MKafkaSinkConfig struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type MSinksConfig struct {
	Redis MRedisSinkConfig `yaml:"redis"`
	Kafka MKafkaSinkConfig `yaml:"kafka"`
}

// IndexRequired reports whether a cycle without index data yields no snapshot.
func (c MDataSourceConfig) IndexRequired() bool {
	return c.RequireIndex == nil || *c.RequireIndex
}
