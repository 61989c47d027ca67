package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Session  SessionConfig  `mapstructure:"session"`
	GitHub   GitHubConfig   `mapstructure:"github"`
	Crypto   CryptoConfig   `mapstructure:"crypto"`
	Sync     SyncConfig     `mapstructure:"sync"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"` // debug, release, test
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	// LoginURL is where failed OAuth flows redirect, with an opaque error code
	LoginURL string `mapstructure:"login_url"`
	// SecureCookies controls the Secure attribute on session/identity cookies
	SecureCookies bool `mapstructure:"secure_cookies"`
	CookieDomain  string `mapstructure:"cookie_domain"`
}

// DatabaseConfig holds PostgreSQL database configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN returns the database connection string
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// RedisConfig holds the session store connection configuration
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SessionConfig holds session cookie and expiry configuration
type SessionConfig struct {
	// TTLMinutes is the server-side session lifetime
	TTLMinutes int `mapstructure:"ttl_minutes"`
	// CookieName is the name of the opaque session id cookie
	CookieName string `mapstructure:"cookie_name"`
	// IdentityCookieName is the name of the signed identity cookie
	IdentityCookieName string `mapstructure:"identity_cookie_name"`
	// JWTSecret signs the identity cookie
	JWTSecret string `mapstructure:"jwt_secret"`
}

// TTL returns the session lifetime as a duration
func (s *SessionConfig) TTL() time.Duration {
	return time.Duration(s.TTLMinutes) * time.Minute
}

// GitHubConfig holds GitHub OAuth and API configuration
type GitHubConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_url"`
	// APIBaseURL is overridable for tests against a stub server
	APIBaseURL string `mapstructure:"api_base_url"`
	// TimeoutSeconds bounds outbound calls to GitHub
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// Enabled reports whether the GitHub OAuth strategy is configured
func (g *GitHubConfig) Enabled() bool {
	return g.ClientID != "" && g.ClientSecret != ""
}

// Timeout returns the outbound request timeout
func (g *GitHubConfig) Timeout() time.Duration {
	if g.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(g.TimeoutSeconds) * time.Second
}

// CryptoConfig holds token encryption configuration
type CryptoConfig struct {
	// TokenKey is a hex-encoded 32-byte AES key for OAuth token encryption
	TokenKey string `mapstructure:"token_key"`
}

// SyncConfig holds repository metadata refresh configuration
type SyncConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Schedule is a cron expression for the periodic metadata refresh
	Schedule string `mapstructure:"schedule"`
	// StaleAfterMinutes marks cache rows eligible for refresh
	StaleAfterMinutes int `mapstructure:"stale_after_minutes"`
}

// StaleAfter returns the staleness threshold as a duration
func (s *SyncConfig) StaleAfter() time.Duration {
	if s.StaleAfterMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(s.StaleAfterMinutes) * time.Minute
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"` // debug, info, warn, error
	Output     string `mapstructure:"output"` // console, file
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"` // json, console
}

// Load reads configuration from file and environment variables.
// Environment variables use the DEVBOARD_ prefix with dots replaced by
// underscores (DEVBOARD_DATABASE_HOST) and always override file values.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigType("yaml")
	v.SetEnvPrefix("DEVBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/devboard")

		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			// Config file not found; rely on defaults and env vars
		}
	}

	overrideFromEnv(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.login_url", "/login")
	v.SetDefault("server.secure_cookies", true)

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "devboard")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.dbname", "devboard")
	v.SetDefault("database.sslmode", "disable")

	// Redis defaults
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	// Session defaults
	v.SetDefault("session.ttl_minutes", 60*24)
	v.SetDefault("session.cookie_name", "devboard_session")
	v.SetDefault("session.identity_cookie_name", "devboard_identity")

	// GitHub defaults
	v.SetDefault("github.api_base_url", "https://api.github.com")
	v.SetDefault("github.timeout_seconds", 10)

	// Sync defaults
	v.SetDefault("sync.enabled", false)
	v.SetDefault("sync.schedule", "@every 30m")
	v.SetDefault("sync.stale_after_minutes", 60)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.output", "console")
	v.SetDefault("logging.output_path", "./logs/devboard.log")
	v.SetDefault("logging.format", "json")
}

// overrideFromEnv handles special environment variable overrides for
// secrets that should not live in the config file.
func overrideFromEnv(v *viper.Viper) {
	if dbPass := os.Getenv("DEVBOARD_DB_PASSWORD"); dbPass != "" {
		v.Set("database.password", dbPass)
	}
	if secret := os.Getenv("DEVBOARD_GITHUB_CLIENT_SECRET"); secret != "" {
		v.Set("github.client_secret", secret)
	}
	if key := os.Getenv("DEVBOARD_TOKEN_KEY"); key != "" {
		v.Set("crypto.token_key", key)
	}
	if secret := os.Getenv("DEVBOARD_JWT_SECRET"); secret != "" {
		v.Set("session.jwt_secret", secret)
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Redis.Addr == "" {
		return fmt.Errorf("redis address is required")
	}

	if c.Session.TTLMinutes <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}
	if c.Session.JWTSecret == "" {
		return fmt.Errorf("session jwt secret is required")
	}

	if c.Crypto.TokenKey == "" {
		return fmt.Errorf("crypto token key is required")
	}

	if c.GitHub.Enabled() && c.GitHub.RedirectURL == "" {
		return fmt.Errorf("github redirect url is required when oauth is configured")
	}

	return nil
}

// ServerAddress returns the HTTP server address
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Mode == "debug" || c.Server.Mode == "development"
}
