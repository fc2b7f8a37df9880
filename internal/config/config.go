package config

import (
	"fmt"
	"time"
)

// Default service configuration values.
const (
	defaultServiceName    = "prospect-pipeline"
	defaultServiceVersion = "1.0.0"
	defaultServicePort    = 8082
	defaultLogLevel       = "info"
	defaultLogFormat      = "json"
)

// Default database configuration values.
const (
	defaultDBHost          = "localhost"
	defaultDBPort          = 5432
	defaultDBUser          = "postgres"
	defaultDBName          = "prospect"
	defaultDBSSLMode       = "disable"
	defaultDBMaxConns      = 25
	defaultDBMaxIdleConns  = 5
	defaultDBConnLifetimeH = 1
)

// Default stage-processor configuration values.
const (
	defaultProcessorTimeout = 10 * time.Second
	defaultBatchLimit       = 50
)

// Default progress poller configuration values.
const (
	defaultPollInterval    = 3 * time.Second
	defaultPollMaxAttempts = 20
)

// Config holds the application configuration.
type Config struct {
	Service    ServiceConfig    `yaml:"service"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Processors ProcessorsConfig `yaml:"processors"`
	Poller     PollerConfig     `yaml:"poller"`
	Auth       AuthConfig       `yaml:"auth"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServiceConfig holds service identity and runtime settings.
type ServiceConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Port    int    `env:"PROSPECT_PORT" yaml:"port"`
	Debug   bool   `env:"APP_DEBUG"     yaml:"debug"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host                  string        `env:"POSTGRES_PROSPECT_HOST"     yaml:"host"`
	Port                  int           `env:"POSTGRES_PROSPECT_PORT"     yaml:"port"`
	User                  string        `env:"POSTGRES_PROSPECT_USER"     yaml:"user"`
	Password              string        `env:"POSTGRES_PROSPECT_PASSWORD" yaml:"password"`
	Database              string        `env:"POSTGRES_PROSPECT_DB"       yaml:"database"`
	SSLMode               string        `yaml:"sslmode"`
	MaxConnections        int           `yaml:"max_connections"`
	MaxIdleConns          int           `yaml:"max_idle_connections"`
	ConnectionMaxLifetime time.Duration `yaml:"connection_max_lifetime"`
}

// RedisConfig holds the optional event-stream settings. When disabled the
// service runs without lifecycle event publishing.
type RedisConfig struct {
	Enabled  bool   `env:"REDIS_ENABLED"  yaml:"enabled"`
	Address  string `env:"REDIS_ADDRESS"  yaml:"address"`
	Password string `env:"REDIS_PASSWORD" yaml:"password"`
	DB       int    `env:"REDIS_DB"       yaml:"db"`
}

// ProcessorsConfig holds the endpoints of the four external stage services.
// An empty URL disables that stage's remote calls (no-op client).
type ProcessorsConfig struct {
	DiscoveryURL         string        `env:"PROCESSOR_DISCOVERY_URL"          yaml:"discovery_url"`
	EnrichmentURL        string        `env:"PROCESSOR_ENRICHMENT_URL"         yaml:"enrichment_url"`
	QualificationURL     string        `env:"PROCESSOR_QUALIFICATION_URL"      yaml:"qualification_url"`
	MessageGenerationURL string        `env:"PROCESSOR_MESSAGE_GENERATION_URL" yaml:"message_generation_url"`
	Timeout              time.Duration `yaml:"timeout"`
	// DefaultBatchLimit caps a single stage invocation when the campaign has
	// no goal to derive a limit from.
	DefaultBatchLimit int64 `yaml:"default_batch_limit"`
}

// PollerConfig holds the progress poller settings.
type PollerConfig struct {
	Interval    time.Duration `yaml:"interval"`
	MaxAttempts int           `yaml:"max_attempts"`
}

// AuthConfig holds authentication settings.
type AuthConfig struct {
	JWTSecret string `env:"AUTH_JWT_SECRET" yaml:"jwt_secret"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"  yaml:"level"`
	Format string `env:"LOG_FORMAT" yaml:"format"`
}

// Load loads configuration from a YAML file, applies defaults, then env overrides.
func Load(path string) (*Config, error) {
	var cfg Config
	if loadErr := load(path, &cfg); loadErr != nil {
		return nil, fmt.Errorf("load config: %w", loadErr)
	}

	if validateErr := cfg.Validate(); validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Service.Port <= 0 || c.Service.Port > 65535 {
		return &ValidationError{Field: "service.port", Message: "must be between 1 and 65535"}
	}

	if c.Database.Host == "" {
		return &ValidationError{Field: "database.host", Message: "is required"}
	}

	if c.Database.Database == "" {
		return &ValidationError{Field: "database.database", Message: "is required"}
	}

	if c.Poller.Interval <= 0 {
		return &ValidationError{Field: "poller.interval", Message: "must be positive"}
	}

	if c.Poller.MaxAttempts <= 0 {
		return &ValidationError{Field: "poller.max_attempts", Message: "must be positive"}
	}

	return nil
}

// setDefaults applies default values to all configuration sections.
func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setDatabaseDefaults(&cfg.Database)
	setProcessorDefaults(&cfg.Processors)
	setPollerDefaults(&cfg.Poller)
	setLoggingDefaults(&cfg.Logging)
}

func setServiceDefaults(s *ServiceConfig) {
	if s.Name == "" {
		s.Name = defaultServiceName
	}

	if s.Version == "" {
		s.Version = defaultServiceVersion
	}

	if s.Port == 0 {
		s.Port = defaultServicePort
	}
}

func setDatabaseDefaults(d *DatabaseConfig) {
	if d.Host == "" {
		d.Host = defaultDBHost
	}

	if d.Port == 0 {
		d.Port = defaultDBPort
	}

	if d.User == "" {
		d.User = defaultDBUser
	}

	if d.Database == "" {
		d.Database = defaultDBName
	}

	if d.SSLMode == "" {
		d.SSLMode = defaultDBSSLMode
	}

	if d.MaxConnections == 0 {
		d.MaxConnections = defaultDBMaxConns
	}

	if d.MaxIdleConns == 0 {
		d.MaxIdleConns = defaultDBMaxIdleConns
	}

	if d.ConnectionMaxLifetime == 0 {
		d.ConnectionMaxLifetime = defaultDBConnLifetimeH * time.Hour
	}
}

func setProcessorDefaults(p *ProcessorsConfig) {
	if p.Timeout == 0 {
		p.Timeout = defaultProcessorTimeout
	}

	if p.DefaultBatchLimit == 0 {
		p.DefaultBatchLimit = defaultBatchLimit
	}
}

func setPollerDefaults(p *PollerConfig) {
	if p.Interval == 0 {
		p.Interval = defaultPollInterval
	}

	if p.MaxAttempts == 0 {
		p.MaxAttempts = defaultPollMaxAttempts
	}
}

func setLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = defaultLogLevel
	}

	if l.Format == "" {
		l.Format = defaultLogFormat
	}
}
