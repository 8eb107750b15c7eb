// Package config loads the application configuration from environment
// variables (with an optional .env file) layered over an optional YAML file.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Database DatabaseConfig `yaml:"database" envconfig:"DATABASE"`
	Security SecurityConfig `yaml:"security" envconfig:"SECURITY"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Cache    CacheConfig    `yaml:"cache" envconfig:"CACHE"`
	Upload   UploadConfig   `yaml:"upload" envconfig:"UPLOAD"`
	AI       AIConfig       `yaml:"ai" envconfig:"AI"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"30s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"60s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

// DatabaseConfig contains the uploads store configuration
type DatabaseConfig struct {
	URL             string        `yaml:"url" envconfig:"URL"`
	MaxConns        int32         `yaml:"max_conns" envconfig:"MAX_CONNS" default:"10"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout" envconfig:"CONNECT_TIMEOUT" default:"10s"`
	StartupAttempts int           `yaml:"startup_attempts" envconfig:"STARTUP_ATTEMPTS" default:"7"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://127.0.0.1:5173"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"50"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"25"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output string `yaml:"output" envconfig:"OUTPUT" default:"console"`
}

// CacheConfig bounds the extraction/KPI result cache
type CacheConfig struct {
	MaxEntries int           `yaml:"max_entries" envconfig:"MAX_ENTRIES" default:"200"`
	ResultTTL  time.Duration `yaml:"result_ttl" envconfig:"RESULT_TTL" default:"30m"`
	KPITTL     time.Duration `yaml:"kpi_ttl" envconfig:"KPI_TTL" default:"15m"`
}

// UploadConfig bounds incoming spreadsheet uploads
type UploadConfig struct {
	MaxFileSize int64 `yaml:"max_file_size" envconfig:"MAX_FILE_SIZE" default:"26214400"`
}

// AIConfig configures the report-analysis model. An empty API key disables
// the AI path; report text then comes from the templated fallback.
type AIConfig struct {
	APIKey  string        `yaml:"api_key" envconfig:"API_KEY"`
	Model   string        `yaml:"model" envconfig:"MODEL" default:"gemini-2.0-flash"`
	Timeout time.Duration `yaml:"timeout" envconfig:"TIMEOUT" default:"60s"`
}

// Load loads configuration from a .env file (when present), environment
// variables and an optional YAML config file. Environment wins over file.
func Load() (*Config, error) {
	// Missing .env is the normal production case.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("OPSDIARY", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if path := configFilePath(); path != "" {
		if _, err := os.Stat(path); err == nil {
			fileCfg, err := loadFromFile(path)
			if err != nil {
				return nil, fmt.Errorf("failed to load config from file: %w", err)
			}
			cfg = mergeConfigs(*fileCfg, cfg)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func configFilePath() string {
	if path := os.Getenv("OPSDIARY_CONFIG"); path != "" {
		return path
	}
	return "config.yaml"
}

func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// mergeConfigs overlays env-provided values on top of file values. envconfig
// has already applied defaults, so only non-zero env values win.
func mergeConfigs(file, env Config) Config {
	merged := file

	if env.Server.Port != 0 {
		merged.Server.Port = env.Server.Port
	}
	if env.Server.ReadTimeout != 0 {
		merged.Server.ReadTimeout = env.Server.ReadTimeout
	}
	if env.Server.WriteTimeout != 0 {
		merged.Server.WriteTimeout = env.Server.WriteTimeout
	}
	if env.Server.IdleTimeout != 0 {
		merged.Server.IdleTimeout = env.Server.IdleTimeout
	}
	if env.Server.ShutdownTimeout != 0 {
		merged.Server.ShutdownTimeout = env.Server.ShutdownTimeout
	}
	if env.Database.URL != "" {
		merged.Database.URL = env.Database.URL
	}
	if env.Database.MaxConns != 0 {
		merged.Database.MaxConns = env.Database.MaxConns
	}
	if env.Database.ConnectTimeout != 0 {
		merged.Database.ConnectTimeout = env.Database.ConnectTimeout
	}
	if env.Database.StartupAttempts != 0 {
		merged.Database.StartupAttempts = env.Database.StartupAttempts
	}
	if len(env.Security.AllowedOrigins) > 0 {
		merged.Security.AllowedOrigins = env.Security.AllowedOrigins
	}
	merged.Security.EnableCORS = env.Security.EnableCORS
	merged.Security.RateLimit = env.Security.RateLimit
	if env.Logging.Level != "" {
		merged.Logging.Level = env.Logging.Level
	}
	if env.Logging.Format != "" {
		merged.Logging.Format = env.Logging.Format
	}
	if env.Logging.Output != "" {
		merged.Logging.Output = env.Logging.Output
	}
	if env.Cache.MaxEntries != 0 {
		merged.Cache.MaxEntries = env.Cache.MaxEntries
	}
	if env.Cache.ResultTTL != 0 {
		merged.Cache.ResultTTL = env.Cache.ResultTTL
	}
	if env.Cache.KPITTL != 0 {
		merged.Cache.KPITTL = env.Cache.KPITTL
	}
	if env.Upload.MaxFileSize != 0 {
		merged.Upload.MaxFileSize = env.Upload.MaxFileSize
	}
	if env.AI.APIKey != "" {
		merged.AI.APIKey = env.AI.APIKey
	}
	if env.AI.Model != "" {
		merged.AI.Model = env.AI.Model
	}
	if env.AI.Timeout != 0 {
		merged.AI.Timeout = env.AI.Timeout
	}

	return merged
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level: %s", c.Logging.Level)
	}
	if c.Cache.MaxEntries < 0 {
		return fmt.Errorf("invalid cache max entries: %d", c.Cache.MaxEntries)
	}
	if c.Upload.MaxFileSize <= 0 {
		return fmt.Errorf("invalid upload max file size: %d", c.Upload.MaxFileSize)
	}
	return nil
}
