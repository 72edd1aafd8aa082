package shared

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "tunesync.db" {
			t.Errorf("expected database path tunesync.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 8080 {
			t.Errorf("expected server port 8080, got %d", config.Server.Port)
		}

		if got := strings.Join(config.Sync.Platforms, ","); got != "spotify,youtube" {
			t.Errorf("expected platforms spotify,youtube, got %s", got)
		}

		if config.Sync.FetchTimeout != 2*time.Minute {
			t.Errorf("expected fetch timeout 2m, got %s", config.Sync.FetchTimeout)
		}

		if config.Tokens.Backend != "sqlite" {
			t.Errorf("expected sqlite token backend, got %s", config.Tokens.Backend)
		}

		if config.Limits.Interval("spotify") != 100*time.Millisecond {
			t.Errorf("expected spotify interval 100ms, got %s", config.Limits.Interval("spotify"))
		}

		if err := config.Validate(); err != nil {
			t.Errorf("expected default config to be valid, got %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[sync]
platforms = ["deezer", "spotify"]
fetch_timeout = "30s"

[database]
path = "/custom/path.db"

[credentials.spotify]
client_id = "test_client_id"
client_secret = "test_secret"

[credentials.deezer]
access_token = "dz-token"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 8080 {
			t.Errorf("expected default server port 8080, got %d", config.Server.Port)
		}

		if config.Sync.Platforms[0] != "deezer" {
			t.Errorf("expected deezer first, got %v", config.Sync.Platforms)
		}

		if config.Sync.FetchTimeout != 30*time.Second {
			t.Errorf("expected fetch timeout 30s, got %s", config.Sync.FetchTimeout)
		}

		creds := config.Credentials.Spotify.Map()
		if creds["client_id"] != "test_client_id" {
			t.Errorf("expected spotify client_id test_client_id, got %s", creds["client_id"])
		}

		if config.Credentials.Deezer.AccessToken != "dz-token" {
			t.Errorf("expected deezer token dz-token, got %s", config.Credentials.Deezer.AccessToken)
		}
	})

	t.Run("Environment Overrides", func(t *testing.T) {
		t.Setenv("TUNESYNC_SPOTIFY_CLIENT_ID", "env_client")
		t.Setenv("TUNESYNC_SYNC_PLATFORMS", "youtube,deezer")
		t.Setenv("TUNESYNC_TOKENS_BACKEND", "redis")
		t.Setenv("TUNESYNC_SERVER_PORT", "9999")

		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Credentials.Spotify.ClientID != "env_client" {
			t.Errorf("expected env_client, got %s", config.Credentials.Spotify.ClientID)
		}
		if got := strings.Join(config.Sync.Platforms, ","); got != "youtube,deezer" {
			t.Errorf("expected youtube,deezer, got %s", got)
		}
		if config.Tokens.Backend != "redis" {
			t.Errorf("expected redis backend, got %s", config.Tokens.Backend)
		}
		if config.Server.Addr() != "localhost:9999" {
			t.Errorf("expected localhost:9999, got %s", config.Server.Addr())
		}
	})

	t.Run("Invalid Environment Value", func(t *testing.T) {
		t.Setenv("TUNESYNC_SERVER_PORT", "not-a-port")

		config := DefaultConfig()
		if err := config.ApplyEnv(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("Encode", func(t *testing.T) {
		var b strings.Builder
		if err := DefaultConfig().Encode(&b); err != nil {
			t.Fatalf("failed to encode config: %v", err)
		}
		if !strings.Contains(b.String(), "[sync]") {
			t.Errorf("expected [sync] section in output, got %s", b.String())
		}
	})
}

func TestConfigValidate(t *testing.T) {
	tc := []struct {
		name   string
		modify func(c *Config)
	}{
		{name: "no platforms", modify: func(c *Config) { c.Sync.Platforms = nil }},
		{name: "unknown platform", modify: func(c *Config) { c.Sync.Platforms = []string{"tidal"} }},
		{name: "duplicate platform", modify: func(c *Config) { c.Sync.Platforms = []string{"spotify", "spotify"} }},
		{name: "negative timeout", modify: func(c *Config) { c.Sync.FetchTimeout = -time.Second }},
		{name: "missing database path", modify: func(c *Config) { c.Database.Path = "" }},
		{name: "unknown token backend", modify: func(c *Config) { c.Tokens.Backend = "file" }},
		{name: "redis without address", modify: func(c *Config) { c.Tokens.Backend = "redis"; c.Tokens.RedisAddr = "" }},
		{name: "negative burst", modify: func(c *Config) { c.Limits.Burst = -1 }},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modify(config)
			if err := config.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		if err := LoadEnvFile(filepath.Join(t.TempDir(), ".env")); err != nil {
			t.Errorf("expected nil for missing file, got %v", err)
		}
	})

	t.Run("loads values", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(path, []byte("TUNESYNC_TEST_DOTENV=loaded\n"), 0644); err != nil {
			t.Fatalf("failed to write env file: %v", err)
		}
		t.Setenv("TUNESYNC_TEST_DOTENV", "")
		os.Unsetenv("TUNESYNC_TEST_DOTENV")

		if err := LoadEnvFile(path); err != nil {
			t.Fatalf("failed to load env file: %v", err)
		}
		if got := os.Getenv("TUNESYNC_TEST_DOTENV"); got != "loaded" {
			t.Errorf("expected loaded, got %q", got)
		}
	})
}
