// Package config loads process settings from the environment and an
// optional .env file
package config

import (
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/KirkDiggler/rpg-saga/internal/errors"
)

// Environment variables read by Load
const (
	EnvAPIKey       = "GEMINI_API_KEY"
	EnvPublicAPIKey = "NEXT_PUBLIC_GEMINI_API_KEY"
	EnvModel        = "GEMINI_MODEL"
	EnvProviderRPS  = "GEMINI_RPS"
	EnvRedisAddr    = "REDIS_ADDR"
	EnvSessionDB    = "SESSION_DB"
	EnvRelayURL     = "RELAY_URL"
	EnvPort         = "PORT"
)

const (
	// DefaultModel is the provider model when GEMINI_MODEL is unset
	DefaultModel = "gemini-1.5-flash"

	// DefaultPort is the relay listen port
	DefaultPort = 3000

	// DefaultSessionDB is where the CLI keeps its session record
	DefaultSessionDB = ".rpg-saga/session.db"
)

// Config holds the settings shared by the relay server and the CLI
type Config struct {
	APIKey string
	Model  string

	// ProviderRPS paces outbound provider calls; zero disables pacing
	ProviderRPS float64

	// RedisAddr selects the Redis backends when set. Accepts host:port or a
	// redis:// URL.
	RedisAddr string
	SessionDB string

	// RelayURL points the client at a running relay
	RelayURL string
	Port     int
}

// Load reads the given .env files, or ./.env when none are named, and
// builds a Config from the environment. Variables already set in the
// environment win over file values. Missing files are ignored.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(err, "failed to read env file")
		}
		slog.Debug("No env file loaded", "files", files)
	}

	return FromEnv(os.Getenv)
}

// FromEnv builds a Config through getenv
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		APIKey:    getenv(EnvAPIKey),
		Model:     getenv(EnvModel),
		RedisAddr: getenv(EnvRedisAddr),
		SessionDB: getenv(EnvSessionDB),
		RelayURL:  getenv(EnvRelayURL),
	}

	// the browser-era variable name is still honored
	if cfg.APIKey == "" {
		cfg.APIKey = getenv(EnvPublicAPIKey)
	}

	vb := errors.NewValidationBuilder()

	if v := getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			vb.InvalidField(EnvPort, "must be a number")
		}
		cfg.Port = port
	}
	if v := getenv(EnvProviderRPS); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			vb.InvalidField(EnvProviderRPS, "must be a number")
		}
		cfg.ProviderRPS = rps
	}

	if err := vb.Build(); err != nil {
		return nil, errors.Wrap(err, "invalid environment")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return cfg, nil
}

// Validate checks ranges and fills in defaults
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Port < 0 || c.Port > 65535 {
		vb.InvalidField("Port", "must be between 0 and 65535")
	}
	if c.ProviderRPS < 0 {
		vb.InvalidField("ProviderRPS", "must not be negative")
	}
	if c.RelayURL != "" {
		u, err := url.Parse(c.RelayURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			vb.InvalidField("RelayURL", "must be an absolute URL")
		}
	}

	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.SessionDB == "" {
		c.SessionDB = DefaultSessionDB
	}

	return vb.Build()
}

// HasAPIKey reports whether direct provider calls are possible
func (c *Config) HasAPIKey() bool {
	return c.APIKey != ""
}

// UsesRedis reports whether the shared backends are configured
func (c *Config) UsesRedis() bool {
	return c.RedisAddr != ""
}
