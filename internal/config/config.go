package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// minScanInterval bounds SCAN_INTERVAL from below so a typo cannot turn
// the daemon into a busy loop against the media folders and the API.
const minScanInterval = 30 * time.Second

// Config holds all environment-based configuration for camera-sync.
type Config struct {
	// Cloud API endpoint and credentials (required).
	APIBaseURL string `env:"API_BASE_URL"`
	APIToken   string `env:"API_TOKEN"`

	// Home directory for state and settings. Defaults to ~/.camera-sync.
	Home string `env:"CAMERA_SYNC_HOME"`

	// StatePath is the bbolt database. Defaults to <home>/state.db.
	StatePath string `env:"STATE_PATH"`

	// SettingsPath is the camera upload settings YAML file. Defaults to
	// <home>/settings.yaml. Re-read on every upload run.
	SettingsPath string `env:"SETTINGS_PATH"`

	// TransferFeedURL is the websocket URL of the transfer engine's event
	// feed. When empty, transfer event handling is disabled.
	TransferFeedURL string `env:"TRANSFER_FEED_URL"`

	// SDCardCacheDir is where the engine stages downloads destined for
	// removable storage before they are moved into place.
	SDCardCacheDir string `env:"SDCARD_CACHE_DIR"`

	// ScanInterval is how often the upload pipeline runs without a
	// filesystem trigger.
	ScanInterval time.Duration `env:"SCAN_INTERVAL" envDefault:"15m"`

	// WatchFolders enables fsnotify triggers on the local media folders.
	WatchFolders bool `env:"WATCH_FOLDERS" envDefault:"true"`

	// MCP status server. The bearer token is stored as a bcrypt hash,
	// generate one with `camera-sync hash-token`.
	EnableMCP     bool   `env:"ENABLE_MCP" envDefault:"false"`
	MCPListenAddr string `env:"MCP_LISTEN_ADDR" envDefault:":8090"`
	MCPTokenHash  string `env:"MCP_TOKEN_HASH"`

	// Environment controls log format
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL"`
}

// warnInsecureEnvFile checks whether the .env file (if present) has
// overly permissive permissions. On Unix systems, group or world
// readable files risk exposing the API token to other users.
func warnInsecureEnvFile() {
	if runtime.GOOS == "windows" {
		return
	}

	info, err := os.Stat(".env")
	if err != nil {
		return // file does not exist, nothing to check
	}

	mode := info.Mode().Perm()
	if mode&0o077 != 0 {
		log.Printf("WARNING: .env file has insecure permissions %04o; recommended 0600", mode)
	}
}

// Load reads configuration from environment variables.
// It first attempts to load a .env file if present, then parses env vars.
func Load() (*Config, error) {
	_ = godotenv.Load()

	warnInsecureEnvFile()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.resolvePaths(); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// resolvePaths fills path defaults from Home and makes every path
// absolute. The SD card cache check compares path prefixes, which only
// works reliably with absolute paths.
func (c *Config) resolvePaths() error {
	if c.Home == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("determining home directory: %w", err)
		}

		c.Home = filepath.Join(home, ".camera-sync")
	}

	if c.StatePath == "" {
		c.StatePath = filepath.Join(c.Home, "state.db")
	}

	if c.SettingsPath == "" {
		c.SettingsPath = filepath.Join(c.Home, "settings.yaml")
	}

	for _, p := range []*string{&c.Home, &c.StatePath, &c.SettingsPath, &c.SDCardCacheDir} {
		if *p == "" {
			continue
		}

		abs, err := filepath.Abs(*p)
		if err != nil {
			return fmt.Errorf("resolving %s to absolute path: %w", *p, err)
		}

		*p = abs
	}

	return nil
}

func (c *Config) validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}

	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("API_BASE_URL must be an absolute http(s) URL")
	}

	if c.APIToken == "" {
		return fmt.Errorf("API_TOKEN is required")
	}

	if c.TransferFeedURL != "" {
		u, err := url.Parse(c.TransferFeedURL)
		if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") || u.Host == "" {
			return fmt.Errorf("TRANSFER_FEED_URL must be a ws:// or wss:// URL")
		}

		if c.SDCardCacheDir == "" {
			return fmt.Errorf("SDCARD_CACHE_DIR is required when TRANSFER_FEED_URL is set")
		}
	}

	if c.EnableMCP {
		if c.MCPTokenHash == "" {
			return fmt.Errorf("MCP_TOKEN_HASH is required when ENABLE_MCP is true")
		}

		if _, err := bcrypt.Cost([]byte(c.MCPTokenHash)); err != nil {
			return fmt.Errorf("MCP_TOKEN_HASH is not a bcrypt hash: %w", err)
		}
	}

	if c.ScanInterval < minScanInterval {
		return fmt.Errorf("SCAN_INTERVAL must be at least %s", minScanInterval)
	}

	return nil
}

// IsProduction returns true when the environment is set to production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// TransfersEnabled reports whether the transfer event feed is configured.
func (c *Config) TransfersEnabled() bool {
	return strings.TrimSpace(c.TransferFeedURL) != ""
}
