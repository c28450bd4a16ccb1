package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable, e.g. BIKEDASH_SERVER_PORT
const EnvPrefix = "BIKEDASH"

// ConfigFileEnv names the variable that points at an explicit YAML file
const ConfigFileEnv = "BIKEDASH_CONFIG_FILE"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Upload    UploadConfig    `yaml:"upload" envconfig:"UPLOAD"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	WebSocket WebSocketConfig `yaml:"websocket" envconfig:"WEBSOCKET"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"HOST" default:"localhost"`
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// UploadConfig limits dataset uploads
type UploadConfig struct {
	MaxBytes int64 `yaml:"max_bytes" envconfig:"MAX_BYTES" default:"33554432"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format      string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output      string `yaml:"output" envconfig:"OUTPUT" default:"stdout"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/bikedash.log"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT" default:"false"`
}

// TelemetryConfig controls tracing and metrics export
type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name" envconfig:"SERVICE_NAME" default:"bikedash"`
	Environment    string `yaml:"environment" envconfig:"ENVIRONMENT" default:"development"`
	TracesExporter string `yaml:"traces_exporter" envconfig:"TRACES_EXPORTER" default:"none"`
	MetricsEnabled bool   `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED" default:"true"`
}

// WebSocketConfig contains WebSocket configuration
type WebSocketConfig struct {
	ReadBufferSize  int           `yaml:"read_buffer_size" envconfig:"READ_BUFFER_SIZE" default:"1024"`
	WriteBufferSize int           `yaml:"write_buffer_size" envconfig:"WRITE_BUFFER_SIZE" default:"1024"`
	PingPeriod      time.Duration `yaml:"ping_period" envconfig:"PING_PERIOD" default:"30s"`
	PongWait        time.Duration `yaml:"pong_wait" envconfig:"PONG_WAIT" default:"60s"`
}

// Load loads configuration from environment variables and an optional
// YAML file. Values set in the environment win over the file.
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom is Load with an explicit file path. An empty path skips the file.
func LoadFrom(configFile string) (*Config, error) {
	var cfg Config

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if configFile != "" {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from YAML file on top of the defaults
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// pick keeps the env value unless it still equals the default
func pick[T comparable](env, file, def T) T {
	if env != def {
		return env
	}
	return file
}

// mergeConfigs merges file config with env config. The env config already
// carries defaults, so a field left at its default takes the file value.
func mergeConfigs(fileConfig, envConfig Config) Config {
	def := Default()
	out := envConfig

	out.Server.Host = pick(envConfig.Server.Host, fileConfig.Server.Host, def.Server.Host)
	out.Server.Port = pick(envConfig.Server.Port, fileConfig.Server.Port, def.Server.Port)
	out.Server.ReadTimeout = pick(envConfig.Server.ReadTimeout, fileConfig.Server.ReadTimeout, def.Server.ReadTimeout)
	out.Server.WriteTimeout = pick(envConfig.Server.WriteTimeout, fileConfig.Server.WriteTimeout, def.Server.WriteTimeout)
	out.Server.IdleTimeout = pick(envConfig.Server.IdleTimeout, fileConfig.Server.IdleTimeout, def.Server.IdleTimeout)
	out.Server.RequestTimeout = pick(envConfig.Server.RequestTimeout, fileConfig.Server.RequestTimeout, def.Server.RequestTimeout)
	out.Server.ShutdownTimeout = pick(envConfig.Server.ShutdownTimeout, fileConfig.Server.ShutdownTimeout, def.Server.ShutdownTimeout)

	out.Upload.MaxBytes = pick(envConfig.Upload.MaxBytes, fileConfig.Upload.MaxBytes, def.Upload.MaxBytes)

	if slices.Equal(envConfig.Security.AllowedOrigins, def.Security.AllowedOrigins) {
		out.Security.AllowedOrigins = fileConfig.Security.AllowedOrigins
	}
	out.Security.EnableCORS = pick(envConfig.Security.EnableCORS, fileConfig.Security.EnableCORS, def.Security.EnableCORS)
	out.Security.RateLimit.Enabled = pick(envConfig.Security.RateLimit.Enabled, fileConfig.Security.RateLimit.Enabled, def.Security.RateLimit.Enabled)
	out.Security.RateLimit.RPS = pick(envConfig.Security.RateLimit.RPS, fileConfig.Security.RateLimit.RPS, def.Security.RateLimit.RPS)
	out.Security.RateLimit.Burst = pick(envConfig.Security.RateLimit.Burst, fileConfig.Security.RateLimit.Burst, def.Security.RateLimit.Burst)

	out.Logging.Level = pick(envConfig.Logging.Level, fileConfig.Logging.Level, def.Logging.Level)
	out.Logging.Format = pick(envConfig.Logging.Format, fileConfig.Logging.Format, def.Logging.Format)
	out.Logging.Output = pick(envConfig.Logging.Output, fileConfig.Logging.Output, def.Logging.Output)
	out.Logging.FilePath = pick(envConfig.Logging.FilePath, fileConfig.Logging.FilePath, def.Logging.FilePath)
	out.Logging.Development = pick(envConfig.Logging.Development, fileConfig.Logging.Development, def.Logging.Development)

	out.Telemetry.ServiceName = pick(envConfig.Telemetry.ServiceName, fileConfig.Telemetry.ServiceName, def.Telemetry.ServiceName)
	out.Telemetry.Environment = pick(envConfig.Telemetry.Environment, fileConfig.Telemetry.Environment, def.Telemetry.Environment)
	out.Telemetry.TracesExporter = pick(envConfig.Telemetry.TracesExporter, fileConfig.Telemetry.TracesExporter, def.Telemetry.TracesExporter)
	out.Telemetry.MetricsEnabled = pick(envConfig.Telemetry.MetricsEnabled, fileConfig.Telemetry.MetricsEnabled, def.Telemetry.MetricsEnabled)

	out.WebSocket.ReadBufferSize = pick(envConfig.WebSocket.ReadBufferSize, fileConfig.WebSocket.ReadBufferSize, def.WebSocket.ReadBufferSize)
	out.WebSocket.WriteBufferSize = pick(envConfig.WebSocket.WriteBufferSize, fileConfig.WebSocket.WriteBufferSize, def.WebSocket.WriteBufferSize)
	out.WebSocket.PingPeriod = pick(envConfig.WebSocket.PingPeriod, fileConfig.WebSocket.PingPeriod, def.WebSocket.PingPeriod)
	out.WebSocket.PongWait = pick(envConfig.WebSocket.PongWait, fileConfig.WebSocket.PongWait, def.WebSocket.PongWait)

	return out
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("upload max bytes must be positive, got %d", c.Upload.MaxBytes)
	}

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	if c.Security.RateLimit.Enabled && c.Security.RateLimit.RPS <= 0 {
		return fmt.Errorf("rate limit rps must be positive")
	}

	if c.WebSocket.PingPeriod >= c.WebSocket.PongWait {
		return fmt.Errorf("websocket ping period (%s) must be shorter than pong wait (%s)",
			c.WebSocket.PingPeriod, c.WebSocket.PongWait)
	}

	switch strings.ToLower(c.Logging.Output) {
	case "stdout", "file", "both":
	default:
		return fmt.Errorf("unknown logging output %q", c.Logging.Output)
	}

	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}

	switch strings.ToLower(c.Telemetry.TracesExporter) {
	case "none", "stdout":
	default:
		return fmt.Errorf("unknown traces exporter %q", c.Telemetry.TracesExporter)
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if path := os.Getenv(ConfigFileEnv); path != "" {
		return path
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Upload: UploadConfig{
			MaxBytes: DefaultMaxUploadBytes,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "stdout",
			FilePath: "logs/bikedash.log",
		},
		Telemetry: TelemetryConfig{
			ServiceName:    AppName,
			Environment:    "development",
			TracesExporter: "none",
			MetricsEnabled: true,
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			PingPeriod:      30 * time.Second,
			PongWait:        60 * time.Second,
		},
	}
}
