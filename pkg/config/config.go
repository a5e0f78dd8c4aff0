package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the console gateway
type Config struct {
	App      AppConfig
	Server   ServerConfig
	Session  SessionConfig
	Upstream UpstreamConfig
	Redis    RedisConfig
	Audit    AuditConfig
	Events   EventsConfig
	OTel     OTelConfig
}

// AppConfig holds application-level settings
type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Version     string
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// SessionConfig holds the credential storage settings.
//
// The console keeps the bearer token in two cookies: an HttpOnly one the
// gatekeeper reads on every navigation, and a script-readable one the
// browser UI uses to build Authorization headers for API calls. Hardened
// deployments shorten the lifetime from seven days to one.
type SessionConfig struct {
	TokenCookie   string
	ClientCookie  string
	RecordCookie  string
	DeviceCookie  string
	CookieDomain  string
	SecureCookies bool
	Hardened      bool
	TTL           time.Duration
	HardenedTTL   time.Duration
}

// EffectiveTTL returns the cookie lifetime honoring the hardened variant.
func (s *SessionConfig) EffectiveTTL() time.Duration {
	if s.Hardened {
		return s.HardenedTTL
	}
	return s.TTL
}

// UpstreamConfig holds settings for the remote attendance/user REST API
type UpstreamConfig struct {
	BaseURL      string
	AuthEndpoint string
	Timeout      time.Duration
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host         string
	Port         int
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Addr returns the Redis address
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// AuditConfig holds settings for the authorization decision audit log
type AuditConfig struct {
	Enabled       bool
	Database      DatabaseConfig
	QueueSize     int
	FlushInterval time.Duration
	Retention     time.Duration
	SweepSchedule string // cron spec for the retention sweep
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// EventsConfig holds settings for session lifecycle event publishing
type EventsConfig struct {
	Enabled  bool
	Brokers  []string
	ClientID string
	Topic    string
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled       bool
	CollectorAddr string
	SampleRatio   float64
}

// Load loads configuration from environment variables and an optional .env file
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")

	// .env is optional; environment variables alone are fine
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			_ = err
		}
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	cfg := bindConfig(v)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "rh-console")
	v.SetDefault("APP_ENVIRONMENT", "development")
	v.SetDefault("APP_VERSION", "1.0.0")

	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 3000)
	v.SetDefault("SERVER_READ_TIMEOUT", "30s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "30s")
	v.SetDefault("SERVER_IDLE_TIMEOUT", "120s")

	// Cookie names match the keys the previous console generation used, so
	// an in-flight session survives the cutover.
	v.SetDefault("SESSION_TOKEN_COOKIE", "adp_rh_auth_token")
	v.SetDefault("SESSION_CLIENT_COOKIE", "adp_rh_auth_client")
	v.SetDefault("SESSION_RECORD_COOKIE", "adp_rh_user_data")
	v.SetDefault("SESSION_DEVICE_COOKIE", "adp_rh_device_id")
	v.SetDefault("SESSION_COOKIE_DOMAIN", "")
	v.SetDefault("SESSION_SECURE_COOKIES", false)
	v.SetDefault("SESSION_HARDENED", false)
	v.SetDefault("SESSION_TTL", "168h")         // 7 days
	v.SetDefault("SESSION_HARDENED_TTL", "24h") // 1 day

	v.SetDefault("UPSTREAM_BASE_URL", "http://localhost:8080")
	v.SetDefault("UPSTREAM_AUTH_ENDPOINT", "/auth")
	v.SetDefault("UPSTREAM_TIMEOUT", "15s")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_POOL_SIZE", 50)
	v.SetDefault("REDIS_MIN_IDLE_CONNS", 5)
	v.SetDefault("REDIS_DIAL_TIMEOUT", "5s")
	v.SetDefault("REDIS_READ_TIMEOUT", "3s")
	v.SetDefault("REDIS_WRITE_TIMEOUT", "3s")

	v.SetDefault("AUDIT_ENABLED", true)
	v.SetDefault("AUDIT_DATABASE_HOST", "localhost")
	v.SetDefault("AUDIT_DATABASE_PORT", 5432)
	v.SetDefault("AUDIT_DATABASE_USER", "postgres")
	v.SetDefault("AUDIT_DATABASE_PASSWORD", "postgres")
	v.SetDefault("AUDIT_DATABASE_DBNAME", "rh_console")
	v.SetDefault("AUDIT_DATABASE_SSLMODE", "disable")
	v.SetDefault("AUDIT_QUEUE_SIZE", 1024)
	v.SetDefault("AUDIT_FLUSH_INTERVAL", "2s")
	v.SetDefault("AUDIT_RETENTION", "2160h") // 90 days
	v.SetDefault("AUDIT_SWEEP_SCHEDULE", "0 3 * * *")

	v.SetDefault("EVENTS_ENABLED", false)
	v.SetDefault("EVENTS_BROKERS", "localhost:9092")
	v.SetDefault("EVENTS_CLIENT_ID", "rh-console")
	v.SetDefault("EVENTS_TOPIC", "rh.session.events")

	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_COLLECTOR_ADDR", "localhost:4317")
	v.SetDefault("OTEL_SAMPLE_RATIO", 1.0)
}

func bindConfig(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.App.Name = v.GetString("APP_NAME")
	cfg.App.Environment = v.GetString("APP_ENVIRONMENT")
	cfg.App.Version = v.GetString("APP_VERSION")

	cfg.Server.Host = v.GetString("SERVER_HOST")
	cfg.Server.Port = v.GetInt("SERVER_PORT")
	cfg.Server.ReadTimeout = v.GetDuration("SERVER_READ_TIMEOUT")
	cfg.Server.WriteTimeout = v.GetDuration("SERVER_WRITE_TIMEOUT")
	cfg.Server.IdleTimeout = v.GetDuration("SERVER_IDLE_TIMEOUT")

	cfg.Session.TokenCookie = v.GetString("SESSION_TOKEN_COOKIE")
	cfg.Session.ClientCookie = v.GetString("SESSION_CLIENT_COOKIE")
	cfg.Session.RecordCookie = v.GetString("SESSION_RECORD_COOKIE")
	cfg.Session.DeviceCookie = v.GetString("SESSION_DEVICE_COOKIE")
	cfg.Session.CookieDomain = v.GetString("SESSION_COOKIE_DOMAIN")
	cfg.Session.SecureCookies = v.GetBool("SESSION_SECURE_COOKIES")
	cfg.Session.Hardened = v.GetBool("SESSION_HARDENED")
	cfg.Session.TTL = v.GetDuration("SESSION_TTL")
	cfg.Session.HardenedTTL = v.GetDuration("SESSION_HARDENED_TTL")

	cfg.Upstream.BaseURL = v.GetString("UPSTREAM_BASE_URL")
	cfg.Upstream.AuthEndpoint = v.GetString("UPSTREAM_AUTH_ENDPOINT")
	cfg.Upstream.Timeout = v.GetDuration("UPSTREAM_TIMEOUT")

	cfg.Redis.Host = v.GetString("REDIS_HOST")
	cfg.Redis.Port = v.GetInt("REDIS_PORT")
	cfg.Redis.Password = v.GetString("REDIS_PASSWORD")
	cfg.Redis.DB = v.GetInt("REDIS_DB")
	cfg.Redis.PoolSize = v.GetInt("REDIS_POOL_SIZE")
	cfg.Redis.MinIdleConns = v.GetInt("REDIS_MIN_IDLE_CONNS")
	cfg.Redis.DialTimeout = v.GetDuration("REDIS_DIAL_TIMEOUT")
	cfg.Redis.ReadTimeout = v.GetDuration("REDIS_READ_TIMEOUT")
	cfg.Redis.WriteTimeout = v.GetDuration("REDIS_WRITE_TIMEOUT")

	cfg.Audit.Enabled = v.GetBool("AUDIT_ENABLED")
	cfg.Audit.Database.Host = v.GetString("AUDIT_DATABASE_HOST")
	cfg.Audit.Database.Port = v.GetInt("AUDIT_DATABASE_PORT")
	cfg.Audit.Database.User = v.GetString("AUDIT_DATABASE_USER")
	cfg.Audit.Database.Password = v.GetString("AUDIT_DATABASE_PASSWORD")
	cfg.Audit.Database.DBName = v.GetString("AUDIT_DATABASE_DBNAME")
	cfg.Audit.Database.SSLMode = v.GetString("AUDIT_DATABASE_SSLMODE")
	cfg.Audit.QueueSize = v.GetInt("AUDIT_QUEUE_SIZE")
	cfg.Audit.FlushInterval = v.GetDuration("AUDIT_FLUSH_INTERVAL")
	cfg.Audit.Retention = v.GetDuration("AUDIT_RETENTION")
	cfg.Audit.SweepSchedule = v.GetString("AUDIT_SWEEP_SCHEDULE")

	cfg.Events.Enabled = v.GetBool("EVENTS_ENABLED")
	cfg.Events.Brokers = strings.Split(v.GetString("EVENTS_BROKERS"), ",")
	cfg.Events.ClientID = v.GetString("EVENTS_CLIENT_ID")
	cfg.Events.Topic = v.GetString("EVENTS_TOPIC")

	cfg.OTel.Enabled = v.GetBool("OTEL_ENABLED")
	cfg.OTel.CollectorAddr = v.GetString("OTEL_COLLECTOR_ADDR")
	cfg.OTel.SampleRatio = v.GetFloat64("OTEL_SAMPLE_RATIO")

	return cfg
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("upstream base URL is required")
	}
	if c.Session.TTL <= 0 || c.Session.HardenedTTL <= 0 {
		return fmt.Errorf("session TTLs must be positive")
	}
	if c.Session.HardenedTTL > c.Session.TTL {
		return fmt.Errorf("hardened session TTL must not exceed the default TTL")
	}
	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}
