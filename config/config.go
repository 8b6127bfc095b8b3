// Package config handles loading and validation of application configuration
// from environment variables.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/NomadCrew/feedback-backend/logger"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Environment represents the application's running environment (development or production).
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

// Storage backends selectable through STORAGE.BACKEND.
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendSupabase = "supabase"
)

const defaultDataDirName = "feedback-data"

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Environment    Environment `mapstructure:"ENVIRONMENT" yaml:"environment"`
	Port           string      `mapstructure:"PORT" yaml:"port"`
	AllowedOrigins []string    `mapstructure:"ALLOWED_ORIGINS" yaml:"allowed_origins"`
	Version        string      `mapstructure:"VERSION" yaml:"version"`
	// TrustedProxies is a list of CIDR ranges or IPs of trusted reverse proxies.
	// If empty, X-Forwarded-For headers are ignored entirely.
	TrustedProxies         []string `mapstructure:"TRUSTED_PROXIES" yaml:"trusted_proxies"`
	ShutdownTimeoutSeconds int      `mapstructure:"SHUTDOWN_TIMEOUT_SECONDS" yaml:"shutdown_timeout_seconds"`
}

// StorageConfig selects and configures the feedback store.
type StorageConfig struct {
	Backend  string `mapstructure:"BACKEND" yaml:"backend"`
	DataDir  string `mapstructure:"DATA_DIR" yaml:"data_dir"`
	FileName string `mapstructure:"FILE_NAME" yaml:"file_name"`
	// SerializeWrites guards read-modify-write cycles on the data file with a
	// process-wide mutex.
	SerializeWrites bool `mapstructure:"SERIALIZE_WRITES" yaml:"serialize_writes"`
}

// DatabaseConfig holds PostgreSQL database connection details.
type DatabaseConfig struct {
	Host         string `mapstructure:"HOST" yaml:"host"`
	Port         int    `mapstructure:"PORT" yaml:"port"`
	User         string `mapstructure:"USER" yaml:"user"`
	Password     string `mapstructure:"PASSWORD" yaml:"password"`
	Name         string `mapstructure:"NAME" yaml:"name"`
	SSLMode      string `mapstructure:"SSL_MODE" yaml:"ssl_mode"`
	MaxOpenConns int    `mapstructure:"MAX_OPEN_CONNS" yaml:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"MAX_IDLE_CONNS" yaml:"max_idle_conns"`
	ConnMaxLife  string `mapstructure:"CONN_MAX_LIFE" yaml:"conn_max_life"`
}

// URL returns a postgres:// connection URL.
func (c *DatabaseConfig) URL() string {
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(c.User),
		url.QueryEscape(c.Password),
		c.Host,
		c.Port,
		c.Name,
		sslmode,
	)
}

// RedisConfig holds Redis connection details. Redis backs the submission rate limiter.
type RedisConfig struct {
	Enabled      bool   `mapstructure:"ENABLED" yaml:"enabled"`
	Address      string `mapstructure:"ADDRESS" yaml:"address"`
	Password     string `mapstructure:"PASSWORD" yaml:"password"`
	DB           int    `mapstructure:"DB" yaml:"db"`
	UseTLS       bool   `mapstructure:"USE_TLS" yaml:"use_tls"`
	PoolSize     int    `mapstructure:"POOL_SIZE" yaml:"pool_size"`
	MinIdleConns int    `mapstructure:"MIN_IDLE_CONNS" yaml:"min_idle_conns"`
}

// SupabaseConfig holds the REST endpoint used by the supabase backend.
type SupabaseConfig struct {
	URL        string `mapstructure:"URL" yaml:"url"`
	ServiceKey string `mapstructure:"SERVICE_KEY" yaml:"service_key"`
	Table      string `mapstructure:"TABLE" yaml:"table"`
}

// EmailConfig holds configuration for new-feedback notification mails.
type EmailConfig struct {
	Enabled       bool   `mapstructure:"ENABLED" yaml:"enabled"`
	FromAddress   string `mapstructure:"FROM_ADDRESS" yaml:"from_address"`
	FromName      string `mapstructure:"FROM_NAME" yaml:"from_name"`
	NotifyAddress string `mapstructure:"NOTIFY_ADDRESS" yaml:"notify_address"`
	ResendAPIKey  string `mapstructure:"RESEND_API_KEY" yaml:"resend_api_key"`
}

// RateLimitConfig holds configuration for rate limiting submissions.
type RateLimitConfig struct {
	// Maximum submissions per client IP within one window
	SubmitRequestsPerWindow int `mapstructure:"SUBMIT_REQUESTS_PER_WINDOW" yaml:"submit_requests_per_window"`
	WindowSeconds           int `mapstructure:"WINDOW_SECONDS" yaml:"window_seconds"`
}

// FeedbackConfig holds submission policy.
type FeedbackConfig struct {
	RequireRating bool `mapstructure:"REQUIRE_RATING" yaml:"require_rating"`
}

// BackupConfig points feedbackctl backup at an S3-compatible bucket.
type BackupConfig struct {
	Bucket          string `mapstructure:"BUCKET" yaml:"bucket"`
	Region          string `mapstructure:"REGION" yaml:"region"`
	Endpoint        string `mapstructure:"ENDPOINT" yaml:"endpoint"`
	AccessKeyID     string `mapstructure:"ACCESS_KEY_ID" yaml:"access_key_id"`
	SecretAccessKey string `mapstructure:"SECRET_ACCESS_KEY" yaml:"secret_access_key"`
}

// Config aggregates all application configuration sections.
type Config struct {
	Server    ServerConfig    `mapstructure:"SERVER" yaml:"server"`
	Storage   StorageConfig   `mapstructure:"STORAGE" yaml:"storage"`
	Database  DatabaseConfig  `mapstructure:"DATABASE" yaml:"database"`
	Redis     RedisConfig     `mapstructure:"REDIS" yaml:"redis"`
	Supabase  SupabaseConfig  `mapstructure:"SUPABASE" yaml:"supabase"`
	Email     EmailConfig     `mapstructure:"EMAIL" yaml:"email"`
	RateLimit RateLimitConfig `mapstructure:"RATE_LIMIT" yaml:"rate_limit"`
	Feedback  FeedbackConfig  `mapstructure:"FEEDBACK" yaml:"feedback"`
	Backup    BackupConfig    `mapstructure:"BACKUP" yaml:"backup"`
}

// IsDevelopment returns true if the application is running in development environment.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == EnvDevelopment
}

// IsProduction returns true if the application is running in production environment.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == EnvProduction
}

// bindEnvVars binds multiple environment variables to config keys.
// Format: []{configKey, envVar}
func bindEnvVars(v *viper.Viper, bindings [][2]string) error {
	for _, b := range bindings {
		if err := v.BindEnv(b[0], b[1]); err != nil {
			return fmt.Errorf("failed to bind %s: %w", b[0], err)
		}
	}
	return nil
}

// DefaultDataDir returns $HOME/feedback-data, falling back to a relative
// directory when the home directory cannot be resolved.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return defaultDataDirName
	}
	return filepath.Join(home, defaultDataDirName)
}

// LoadConfig loads configuration from environment variables using Viper,
// sets default values, unmarshals the configuration, and validates it.
func LoadConfig() (*Config, error) {
	v := viper.New()
	log := logger.GetLogger()

	v.SetDefault("SERVER.ENVIRONMENT", EnvDevelopment)
	v.SetDefault("SERVER.PORT", "3001")
	v.SetDefault("SERVER.ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("SERVER.TRUSTED_PROXIES", []string{})
	v.SetDefault("SERVER.VERSION", "dev")
	v.SetDefault("SERVER.SHUTDOWN_TIMEOUT_SECONDS", 10)
	v.SetDefault("STORAGE.BACKEND", BackendFile)
	v.SetDefault("STORAGE.DATA_DIR", DefaultDataDir())
	v.SetDefault("STORAGE.FILE_NAME", "feedbacks.json")
	v.SetDefault("STORAGE.SERIALIZE_WRITES", false)
	v.SetDefault("DATABASE.HOST", "localhost")
	v.SetDefault("DATABASE.PORT", 5432)
	v.SetDefault("DATABASE.USER", "postgres")
	v.SetDefault("DATABASE.PASSWORD", "")
	v.SetDefault("DATABASE.NAME", "feedback")
	v.SetDefault("DATABASE.SSL_MODE", "disable")
	v.SetDefault("DATABASE.MAX_OPEN_CONNS", 5)
	v.SetDefault("DATABASE.MAX_IDLE_CONNS", 1)
	v.SetDefault("DATABASE.CONN_MAX_LIFE", "1h")
	v.SetDefault("REDIS.ENABLED", false)
	v.SetDefault("REDIS.ADDRESS", "localhost:6379")
	v.SetDefault("REDIS.PASSWORD", "")
	v.SetDefault("REDIS.DB", 0)
	v.SetDefault("REDIS.USE_TLS", false)
	v.SetDefault("REDIS.POOL_SIZE", 3)
	v.SetDefault("REDIS.MIN_IDLE_CONNS", 1)
	v.SetDefault("SUPABASE.TABLE", "feedbacks")
	v.SetDefault("EMAIL.ENABLED", false)
	v.SetDefault("EMAIL.FROM_NAME", "Feedback")
	v.SetDefault("RATE_LIMIT.SUBMIT_REQUESTS_PER_WINDOW", 5)
	v.SetDefault("RATE_LIMIT.WINDOW_SECONDS", 60)
	v.SetDefault("FEEDBACK.REQUIRE_RATING", false)
	v.SetDefault("BACKUP.REGION", "auto")
	v.SetDefault("LOG_LEVEL", "info")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envBindings := [][2]string{
		// Server config
		{"SERVER.ENVIRONMENT", "SERVER_ENVIRONMENT"},
		{"SERVER.PORT", "PORT"},
		{"SERVER.ALLOWED_ORIGINS", "ALLOWED_ORIGINS"},
		{"SERVER.TRUSTED_PROXIES", "TRUSTED_PROXIES"},
		{"SERVER.VERSION", "VERSION"},
		// Storage config
		{"STORAGE.BACKEND", "STORAGE_BACKEND"},
		{"STORAGE.DATA_DIR", "FEEDBACK_DATA_DIR"},
		{"STORAGE.FILE_NAME", "FEEDBACK_FILE_NAME"},
		{"STORAGE.SERIALIZE_WRITES", "STORAGE_SERIALIZE_WRITES"},
		// Database config
		{"DATABASE.HOST", "DB_HOST"},
		{"DATABASE.PORT", "DB_PORT"},
		{"DATABASE.USER", "DB_USER"},
		{"DATABASE.PASSWORD", "DB_PASSWORD"},
		{"DATABASE.NAME", "DB_NAME"},
		{"DATABASE.SSL_MODE", "DB_SSL_MODE"},
		// Redis config
		{"REDIS.ENABLED", "REDIS_ENABLED"},
		{"REDIS.ADDRESS", "REDIS_ADDRESS"},
		{"REDIS.PASSWORD", "REDIS_PASSWORD"},
		{"REDIS.DB", "REDIS_DB"},
		{"REDIS.USE_TLS", "REDIS_USE_TLS"},
		// Supabase config
		{"SUPABASE.URL", "SUPABASE_URL"},
		{"SUPABASE.SERVICE_KEY", "SUPABASE_SERVICE_KEY"},
		{"SUPABASE.TABLE", "SUPABASE_TABLE"},
		// Email config
		{"EMAIL.ENABLED", "EMAIL_ENABLED"},
		{"EMAIL.FROM_ADDRESS", "EMAIL_FROM_ADDRESS"},
		{"EMAIL.FROM_NAME", "EMAIL_FROM_NAME"},
		{"EMAIL.NOTIFY_ADDRESS", "EMAIL_NOTIFY_ADDRESS"},
		{"EMAIL.RESEND_API_KEY", "RESEND_API_KEY"},
		// Rate limit config
		{"RATE_LIMIT.SUBMIT_REQUESTS_PER_WINDOW", "RATE_LIMIT_SUBMIT_REQUESTS_PER_WINDOW"},
		{"RATE_LIMIT.WINDOW_SECONDS", "RATE_LIMIT_WINDOW_SECONDS"},
		// Feedback policy
		{"FEEDBACK.REQUIRE_RATING", "FEEDBACK_REQUIRE_RATING"},
		// Backup config
		{"BACKUP.BUCKET", "BACKUP_BUCKET"},
		{"BACKUP.REGION", "BACKUP_REGION"},
		{"BACKUP.ENDPOINT", "BACKUP_ENDPOINT"},
		{"BACKUP.ACCESS_KEY_ID", "BACKUP_ACCESS_KEY_ID"},
		{"BACKUP.SECRET_ACCESS_KEY", "BACKUP_SECRET_ACCESS_KEY"},
	}

	if err := bindEnvVars(v, envBindings); err != nil {
		return nil, err
	}

	log.Infow("Configuration loaded",
		"environment", v.GetString("SERVER.ENVIRONMENT"),
		"server_port", v.GetString("SERVER.PORT"),
		"storage_backend", v.GetString("STORAGE.BACKEND"),
		"data_dir", v.GetString("STORAGE.DATA_DIR"),
		"allowed_origins", v.GetStringSlice("SERVER.ALLOWED_ORIGINS"),
		"redis_enabled", v.GetBool("REDIS.ENABLED"),
	)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal failed: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	log.Info("Configuration validated successfully")
	return &cfg, nil
}

// validateConfig checks if the loaded configuration values are valid.
func validateConfig(cfg *Config) error {
	log := logger.GetLogger()

	if cfg.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if !containsWildcard(cfg.Server.AllowedOrigins) {
		for _, origin := range cfg.Server.AllowedOrigins {
			if _, err := url.ParseRequestURI(origin); err != nil {
				return fmt.Errorf("invalid allowed origin '%s': %w", origin, err)
			}
		}
	}

	if err := validateStorage(cfg); err != nil {
		return err
	}

	if cfg.Redis.Enabled {
		if cfg.Redis.Address == "" {
			return fmt.Errorf("redis address is required when redis is enabled")
		}
		if cfg.RateLimit.SubmitRequestsPerWindow <= 0 {
			return fmt.Errorf("rate limit submit requests per window must be positive")
		}
		if cfg.RateLimit.WindowSeconds <= 0 {
			return fmt.Errorf("rate limit window seconds must be positive")
		}
	}

	return validateEmailConfig(&cfg.Email, log)
}

func validateStorage(cfg *Config) error {
	switch cfg.Storage.Backend {
	case BackendFile:
		if cfg.Storage.DataDir == "" {
			return fmt.Errorf("storage data dir is required for the file backend")
		}
		if cfg.Storage.FileName == "" {
			return fmt.Errorf("storage file name is required for the file backend")
		}
	case BackendPostgres:
		if cfg.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if cfg.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if cfg.Database.Name == "" {
			return fmt.Errorf("database name is required")
		}
	case BackendSupabase:
		if cfg.Supabase.URL == "" {
			return fmt.Errorf("supabase URL is required")
		}
		if cfg.Supabase.ServiceKey == "" {
			return fmt.Errorf("supabase service key is required")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
	return nil
}

// validateEmailConfig auto-disables notification mails when the Resend key or
// recipient is missing.
func validateEmailConfig(cfg *EmailConfig, log *zap.SugaredLogger) error {
	if !cfg.Enabled {
		return nil
	}
	if cfg.ResendAPIKey == "" || cfg.NotifyAddress == "" {
		log.Warn("Resend API key or notify address not set, auto-disabling feedback notifications")
		cfg.Enabled = false
		return nil
	}
	if cfg.FromAddress == "" {
		return fmt.Errorf("email from address is required when notifications are enabled")
	}
	return nil
}

// containsWildcard checks if the list of allowed origins contains the wildcard "*".
func containsWildcard(origins []string) bool {
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}
