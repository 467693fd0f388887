package config

import (
	"context"
	"time"
)

// Config represents the complete configuration for the Floworx configuration service.
type Config struct {
	Server     ServerConfig     `koanf:"server"     validate:"required"`
	Store      StoreConfig      `koanf:"store"      validate:"required"`
	Database   DatabaseConfig   `koanf:"database"`
	Redis      RedisConfig      `koanf:"redis"`
	Runtime    RuntimeConfig    `koanf:"runtime"    validate:"required"`
	Monitoring MonitoringConfig `koanf:"monitoring"`
	Pipeline   PipelineConfig   `koanf:"pipeline"   validate:"required"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Host              string        `koanf:"host"                validate:"required"        env:"FLOWORX_SERVER_HOST"`
	Port              int           `koanf:"port"                validate:"min=1,max=65535" env:"FLOWORX_SERVER_PORT"`
	ReadTimeout       time.Duration `koanf:"read_timeout"                                   env:"FLOWORX_SERVER_READ_TIMEOUT"`
	WriteTimeout      time.Duration `koanf:"write_timeout"                                  env:"FLOWORX_SERVER_WRITE_TIMEOUT"`
	IdleTimeout       time.Duration `koanf:"idle_timeout"                                   env:"FLOWORX_SERVER_IDLE_TIMEOUT"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"                               env:"FLOWORX_SERVER_SHUTDOWN_TIMEOUT"`
	MaxBodyBytes      int64         `koanf:"max_body_bytes"      validate:"min=1"           env:"FLOWORX_SERVER_MAX_BODY_BYTES"`
	CORS              CORSConfig    `koanf:"cors"`
	DefaultActorLabel string        `koanf:"default_actor"                                  env:"FLOWORX_SERVER_DEFAULT_ACTOR"`
}

// CORSConfig contains CORS configuration.
type CORSConfig struct {
	AllowedOrigins   []string `koanf:"allowed_origins"   env:"FLOWORX_SERVER_CORS_ALLOWED_ORIGINS"`
	AllowCredentials bool     `koanf:"allow_credentials" env:"FLOWORX_SERVER_CORS_ALLOW_CREDENTIALS"`
	MaxAge           int      `koanf:"max_age"           env:"FLOWORX_SERVER_CORS_MAX_AGE"`
}

// StoreConfig selects the persistence backend for client configurations.
type StoreConfig struct {
	Driver string `koanf:"driver" validate:"required,oneof=memory postgres redis" env:"FLOWORX_STORE_DRIVER"`
}

// DatabaseConfig contains database connection configuration.
type DatabaseConfig struct {
	ConnString      string          `koanf:"conn_string"       env:"FLOWORX_DB_CONN_STRING"`
	Host            string          `koanf:"host"              env:"FLOWORX_DB_HOST"`
	Port            string          `koanf:"port"              env:"FLOWORX_DB_PORT"`
	User            string          `koanf:"user"              env:"FLOWORX_DB_USER"`
	Password        SensitiveString `koanf:"password"          env:"FLOWORX_DB_PASSWORD"          sensitive:"true"`
	DBName          string          `koanf:"name"              env:"FLOWORX_DB_NAME"`
	SSLMode         string          `koanf:"ssl_mode"          env:"FLOWORX_DB_SSL_MODE"`
	MaxOpenConns    int             `koanf:"max_open_conns"    env:"FLOWORX_DB_MAX_OPEN_CONNS"    validate:"min=0"`
	MaxIdleConns    int             `koanf:"max_idle_conns"    env:"FLOWORX_DB_MAX_IDLE_CONNS"    validate:"min=0"`
	ConnMaxLifetime time.Duration   `koanf:"conn_max_lifetime" env:"FLOWORX_DB_CONN_MAX_LIFETIME"`
	ConnMaxIdleTime time.Duration   `koanf:"conn_max_idle_time" env:"FLOWORX_DB_CONN_MAX_IDLE_TIME"`
	PingTimeout     time.Duration   `koanf:"ping_timeout"      env:"FLOWORX_DB_PING_TIMEOUT"`
	AutoMigrate     bool            `koanf:"auto_migrate"      env:"FLOWORX_DB_AUTO_MIGRATE"`
}

// RedisConfig contains Redis connection configuration.
type RedisConfig struct {
	URL         string          `koanf:"url"          env:"FLOWORX_REDIS_URL"`
	Addr        string          `koanf:"addr"         env:"FLOWORX_REDIS_ADDR"`
	Password    SensitiveString `koanf:"password"     env:"FLOWORX_REDIS_PASSWORD"     sensitive:"true"`
	DB          int             `koanf:"db"           env:"FLOWORX_REDIS_DB"           validate:"min=0"`
	Prefix      string          `koanf:"prefix"       env:"FLOWORX_REDIS_PREFIX"`
	PingTimeout time.Duration   `koanf:"ping_timeout" env:"FLOWORX_REDIS_PING_TIMEOUT"`
}

// RuntimeConfig contains process-level settings.
type RuntimeConfig struct {
	Environment string `koanf:"environment" validate:"required"                             env:"FLOWORX_ENV"`
	LogLevel    string `koanf:"log_level"   validate:"oneof=debug info warn error disabled" env:"FLOWORX_LOG_LEVEL"`
	LogJSON     bool   `koanf:"log_json"                                                    env:"FLOWORX_LOG_JSON"`
	LogSource   bool   `koanf:"log_source"                                                  env:"FLOWORX_LOG_SOURCE"`
}

// MonitoringConfig toggles the Prometheus metrics endpoint.
type MonitoringConfig struct {
	Enabled bool   `koanf:"enabled" env:"FLOWORX_MONITORING_ENABLED"`
	Path    string `koanf:"path"    env:"FLOWORX_MONITORING_PATH"`
}

// PipelineConfig tunes the configuration write pipeline.
type PipelineConfig struct {
	ConflictRetries int           `koanf:"conflict_retries" validate:"min=0,max=20"  env:"FLOWORX_PIPELINE_CONFLICT_RETRIES"`
	RetryBaseDelay  time.Duration `koanf:"retry_base_delay"                          env:"FLOWORX_PIPELINE_RETRY_BASE_DELAY"`
	HistoryLimit    int           `koanf:"history_limit"    validate:"min=1,max=100" env:"FLOWORX_PIPELINE_HISTORY_LIMIT"`
}

// Service defines the configuration management service interface.
type Service interface {
	// Load loads configuration from the specified sources with precedence order.
	Load(ctx context.Context, sources ...Source) (*Config, error)
	// Validate checks if the configuration meets all validation requirements.
	Validate(config *Config) error
	// GetSource returns the source type for a specific configuration key.
	GetSource(key string) SourceType
}

// Source defines the interface for configuration sources.
type Source interface {
	// Load reads configuration from the source.
	Load() (map[string]any, error)
	// Type returns the source type identifier.
	Type() SourceType
}

// SourceType identifies the type of configuration source.
type SourceType string

const (
	SourceCLI     SourceType = "cli"
	SourceYAML    SourceType = "yaml"
	SourceEnv     SourceType = "env"
	SourceDefault SourceType = "default"
)

// Metadata contains metadata about configuration sources.
type Metadata struct {
	Sources  map[string]SourceType `json:"sources"`
	LoadedAt time.Time             `json:"loaded_at"`
}

// Load loads configuration using the default service.
func Load(ctx context.Context, sources ...Source) (*Config, error) {
	return NewService().Load(ctx, sources...)
}

// Default returns a Config with default values for development.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              5080,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			MaxBodyBytes:      1 << 20,
			DefaultActorLabel: "api",
			CORS: CORSConfig{
				AllowedOrigins: []string{},
				MaxAge:         600,
			},
		},
		Store: StoreConfig{Driver: "memory"},
		Database: DatabaseConfig{
			Host:         "localhost",
			Port:         "5432",
			User:         "postgres",
			DBName:       "floworx",
			SSLMode:      "disable",
			MaxOpenConns: 20,
			MaxIdleConns: 2,
			PingTimeout:  3 * time.Second,
			AutoMigrate:  true,
		},
		Redis: RedisConfig{
			Addr:        "localhost:6379",
			Prefix:      "floworx",
			PingTimeout: 2 * time.Second,
		},
		Runtime: RuntimeConfig{
			Environment: "development",
			LogLevel:    "info",
		},
		Monitoring: MonitoringConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Pipeline: PipelineConfig{
			ConflictRetries: 3,
			RetryBaseDelay:  50 * time.Millisecond,
			HistoryLimit:    20,
		},
	}
}
