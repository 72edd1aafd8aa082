package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// EnvPrefix is prepended to every environment override, e.g. TUNESYNC_SPOTIFY_CLIENT_ID.
const EnvPrefix = "TUNESYNC_"

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Sync        SyncConfig        `toml:"sync" envPrefix:"SYNC_"`
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database" envPrefix:"DATABASE_"`
	Tokens      TokensConfig      `toml:"tokens" envPrefix:"TOKENS_"`
	Server      ServerConfig      `toml:"server" envPrefix:"SERVER_"`
	Limits      LimitsConfig      `toml:"limits" envPrefix:"LIMITS_"`
}

// SyncConfig controls which platforms take part in a sync and how records are read.
type SyncConfig struct {
	User                 string        `toml:"user" env:"USER"`
	Platforms            []string      `toml:"platforms" env:"PLATFORMS"`
	YouTubePreferChannel bool          `toml:"youtube_prefer_channel" env:"YOUTUBE_PREFER_CHANNEL"`
	FetchTimeout         time.Duration `toml:"fetch_timeout" env:"FETCH_TIMEOUT"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify OAuthConfig  `toml:"spotify" envPrefix:"SPOTIFY_"`
	YouTube OAuthConfig  `toml:"youtube" envPrefix:"YOUTUBE_"`
	Deezer  DeezerConfig `toml:"deezer" envPrefix:"DEEZER_"`
}

// OAuthConfig contains OAuth2 client credentials for Spotify or YouTube.
type OAuthConfig struct {
	ClientID     string `toml:"client_id" env:"CLIENT_ID"`
	ClientSecret string `toml:"client_secret" env:"CLIENT_SECRET"`
	RedirectURI  string `toml:"redirect_uri" env:"REDIRECT_URI"`
}

// Map returns the credentials in the form accepted by service constructors.
func (c OAuthConfig) Map() map[string]string {
	return map[string]string{
		"client_id":     c.ClientID,
		"client_secret": c.ClientSecret,
		"redirect_uri":  c.RedirectURI,
	}
}

// DeezerConfig holds a Deezer access token obtained out of band.
type DeezerConfig struct {
	AccessToken string `toml:"access_token" env:"ACCESS_TOKEN"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path" env:"PATH"`
	MaxOpenConns int    `toml:"max_open_conns" env:"MAX_OPEN_CONNS"`
	MaxIdleConns int    `toml:"max_idle_conns" env:"MAX_IDLE_CONNS"`
}

// TokensConfig selects where OAuth tokens are persisted.
type TokensConfig struct {
	Backend       string `toml:"backend" env:"BACKEND"`
	RedisAddr     string `toml:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword string `toml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int    `toml:"redis_db" env:"REDIS_DB"`
	KeyPrefix     string `toml:"key_prefix" env:"KEY_PREFIX"`
}

// ServerConfig contains the OAuth callback server settings.
type ServerConfig struct {
	Host string `toml:"host" env:"HOST"`
	Port int    `toml:"port" env:"PORT"`
}

// Addr returns host:port for the callback listener.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LimitsConfig sets the minimum interval between requests per platform.
// A zero interval keeps the adapter default.
type LimitsConfig struct {
	SpotifyInterval time.Duration `toml:"spotify_interval" env:"SPOTIFY_INTERVAL"`
	YouTubeInterval time.Duration `toml:"youtube_interval" env:"YOUTUBE_INTERVAL"`
	DeezerInterval  time.Duration `toml:"deezer_interval" env:"DEEZER_INTERVAL"`
	Burst           int           `toml:"burst" env:"BURST"`
}

// Interval returns the configured interval for a platform tag.
func (l LimitsConfig) Interval(platform string) time.Duration {
	switch platform {
	case "spotify":
		return l.SpotifyInterval
	case "youtube":
		return l.YouTubeInterval
	case "deezer":
		return l.DeezerInterval
	default:
		return 0
	}
}

var (
	knownPlatforms = []string{"spotify", "youtube", "deezer"}
	tokenBackends  = []string{"sqlite", "redis"}
)

// LoadConfig reads a TOML configuration file on top of the embedded defaults, then applies
// TUNESYNC_ environment overrides.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.ApplyEnv(); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadEnvFile loads variables from a dotenv file into the process environment.
// A missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from TUNESYNC_ prefixed environment variables.
func (c *Config) ApplyEnv() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Validate checks platform tags, the token backend and numeric settings.
func (c *Config) Validate() error {
	if len(c.Sync.Platforms) == 0 {
		return fmt.Errorf("%w: sync.platforms is empty", ErrInvalidConfig)
	}
	seen := make(map[string]bool, len(c.Sync.Platforms))
	for _, p := range c.Sync.Platforms {
		if !slices.Contains(knownPlatforms, p) {
			return fmt.Errorf("%w: unknown platform %q", ErrInvalidConfig, p)
		}
		if seen[p] {
			return fmt.Errorf("%w: duplicate platform %q", ErrInvalidConfig, p)
		}
		seen[p] = true
	}

	if c.Sync.FetchTimeout < 0 {
		return fmt.Errorf("%w: sync.fetch_timeout cannot be negative", ErrInvalidConfig)
	}

	if c.Database.Path == "" {
		return fmt.Errorf("%w: database.path is required", ErrInvalidConfig)
	}

	if !slices.Contains(tokenBackends, c.Tokens.Backend) {
		return fmt.Errorf("%w: unknown token backend %q", ErrInvalidConfig, c.Tokens.Backend)
	}
	if c.Tokens.Backend == "redis" && c.Tokens.RedisAddr == "" {
		return fmt.Errorf("%w: tokens.redis_addr is required for the redis backend", ErrInvalidConfig)
	}

	if c.Limits.Burst < 0 {
		return fmt.Errorf("%w: limits.burst cannot be negative", ErrInvalidConfig)
	}
	return nil
}

// Encode writes the configuration as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
