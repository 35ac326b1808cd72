// Package config handles the XDG configuration directory, config.toml and
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	// AppName is the application directory name.
	AppName = "todoboard"

	// ConfigFile is the TOML settings filename.
	ConfigFile = "config.toml"

	// EnvFile is the optional dotenv filename in the config directory.
	EnvFile = ".env"

	// OAuthClientFile is the Google OAuth client credentials filename.
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored Google OAuth token filename.
	TokenFile = "token.json"

	// SessionFile holds the signed session token.
	SessionFile = "session.jwt"

	// SessionKeyFile holds the generated session signing key.
	SessionKeyFile = "session.key"

	// SQLiteFile is the default local database filename.
	SQLiteFile = "todoboard.db"
)

// Backend names.
const (
	BackendSQLite      = "sqlite"
	BackendPostgres    = "postgres"
	BackendGoogleTasks = "googletasks"
)

// Environment variables that override config.toml.
const (
	EnvBackend       = "TODOBOARD_BACKEND"
	EnvPostgresDSN   = "TODOBOARD_POSTGRES_DSN"
	EnvSQLitePath    = "TODOBOARD_SQLITE_PATH"
	EnvAddr          = "TODOBOARD_ADDR"
	EnvSessionSecret = "TODOBOARD_SESSION_SECRET"
	EnvServerKey     = "TODOBOARD_SERVER_KEY"
)

// DefaultAddr is the listen address of the HTTP API.
const DefaultAddr = "127.0.0.1:8080"

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string `toml:"-"`

	// Debug enables debug logging.
	Debug bool `toml:"-"`

	// Quiet suppresses informational output.
	Quiet bool `toml:"-"`

	// Backend selects the store: sqlite, postgres or googletasks.
	Backend string `toml:"backend"`

	// DurableOrder persists same-list reorders.
	DurableOrder bool `toml:"durable_order"`

	// LogLevel is a charmbracelet/log level name.
	LogLevel string `toml:"log_level"`

	SQLite   SQLiteConfig   `toml:"sqlite"`
	Postgres PostgresConfig `toml:"postgres"`
	Server   ServerConfig   `toml:"server"`
	Session  SessionConfig  `toml:"session"`

	// SessionSecret signs session tokens. Only settable from the environment.
	SessionSecret string `toml:"-"`
}

// SQLiteConfig configures the local database.
type SQLiteConfig struct {
	Path string `toml:"path"`
}

// PostgresConfig configures the server database.
type PostgresConfig struct {
	DSN string `toml:"dsn"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr           string   `toml:"addr"`
	AllowedOrigins []string `toml:"allowed_origins"`

	// AccessKey is required by POST /session. serve generates one when empty.
	AccessKey string `toml:"access_key"`
}

// SessionConfig configures session tokens.
type SessionConfig struct {
	// TTL is a Go duration string such as "720h".
	TTL string `toml:"ttl"`
}

// New creates a new Config with the default or specified config directory
// and default settings. It does not read any files.
// If configDir is empty, uses XDG_CONFIG_HOME/todoboard or $HOME/.config/todoboard.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{
		Dir:      dir,
		Backend:  BackendSQLite,
		LogLevel: "warn",
		Server:   ServerConfig{Addr: DefaultAddr},
	}, nil
}

// Load creates a Config for configDir, then applies config.toml, the
// dotenv file and the process environment, in that order of precedence
// (environment wins). Missing files are skipped.
func Load(configDir string) (*Config, error) {
	cfg, err := New(configDir)
	if err != nil {
		return nil, err
	}

	if _, err := toml.DecodeFile(cfg.ConfigPath(), cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("parse %s: %w", cfg.ConfigPath(), err)
	}

	// godotenv.Load never overrides variables already set in the environment.
	if err := godotenv.Load(filepath.Join(cfg.Dir, EnvFile)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", EnvFile, err)
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvBackend); v != "" {
		c.Backend = v
	}
	if v := os.Getenv(EnvPostgresDSN); v != "" {
		c.Postgres.DSN = v
	}
	if v := os.Getenv(EnvSQLitePath); v != "" {
		c.SQLite.Path = v
	}
	if v := os.Getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(EnvSessionSecret); v != "" {
		c.SessionSecret = v
	}
	if v := os.Getenv(EnvServerKey); v != "" {
		c.Server.AccessKey = v
	}
}

// Validate checks the settings that cannot be checked lazily.
func (c *Config) Validate() error {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	switch c.Backend {
	case "":
		c.Backend = BackendSQLite
	case BackendSQLite, BackendGoogleTasks:
	case BackendPostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("backend %q requires [postgres] dsn or %s", BackendPostgres, EnvPostgresDSN)
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if _, err := c.SessionTTL(); err != nil {
		return err
	}
	return nil
}

// SessionTTL returns the configured session lifetime, or 0 for the default.
func (c *Config) SessionTTL() (time.Duration, error) {
	if c.Session.TTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Session.TTL)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid [session] ttl %q", c.Session.TTL)
	}
	return d, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// ConfigPath returns the path to config.toml.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// SQLitePath returns the database path, defaulting to the config dir.
func (c *Config) SQLitePath() string {
	if c.SQLite.Path != "" {
		return c.SQLite.Path
	}
	return filepath.Join(c.Dir, SQLiteFile)
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// SessionPath returns the path to the stored session token.
func (c *Config) SessionPath() string {
	return filepath.Join(c.Dir, SessionFile)
}

// SessionKeyPath returns the path to the generated signing key.
func (c *Config) SessionKeyPath() string {
	return filepath.Join(c.Dir, SessionKeyFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasToken checks if the OAuth token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// RemoveToken deletes the OAuth token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}
