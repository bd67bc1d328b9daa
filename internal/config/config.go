// Package config handles the XDG configuration directory, the optional
// config.yaml and environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// AppName is the application directory name.
	AppName = "teamsync"

	// ConfigFile is the optional settings filename.
	ConfigFile = "config.yaml"

	// EnvFile is the optional dotenv filename.
	EnvFile = ".env"

	// SessionFile is the persisted session database filename.
	SessionFile = "session.db"

	// DefaultAPIURL is the TeamSync API base URL used when none is configured.
	DefaultAPIURL = "http://localhost:8000/api"

	// DefaultTimeout bounds a single API call.
	DefaultTimeout = 10 * time.Second

	// DefaultCallbackPort is the first port tried for the OAuth callback server.
	DefaultCallbackPort = 8085
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// APIURL is the TeamSync API base URL, without a trailing slash.
	APIURL string

	// Timeout bounds each API call.
	Timeout time.Duration

	// CallbackPort is the first port tried for the login callback server.
	CallbackPort int

	// Workspace is the fallback workspace when the session has none.
	Workspace string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// Color enables ANSI colors in tables and notices. NO_COLOR turns it off.
	Color bool
}

// fileConfig is the on-disk shape of config.yaml.
type fileConfig struct {
	APIURL       string `yaml:"api_url"`
	Timeout      string `yaml:"timeout"`
	CallbackPort int    `yaml:"callback_port"`
	Workspace    string `yaml:"workspace"`
	Color        bool   `yaml:"color"`
}

// New creates a Config for the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/teamsync or $HOME/.config/teamsync.
// Settings are layered: defaults, config.yaml, then environment (including .env files).
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{
		Dir:          dir,
		APIURL:       DefaultAPIURL,
		Timeout:      DefaultTimeout,
		CallbackPort: DefaultCallbackPort,
	}

	if err := cfg.loadFile(); err != nil {
		return nil, err
	}

	// Existing environment wins over .env; the config dir file wins over ./.env.
	_ = godotenv.Load(filepath.Join(dir, EnvFile))
	_ = godotenv.Load(EnvFile)
	cfg.applyEnv()

	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	return cfg, nil
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

func (c *Config) loadFile() error {
	data, err := os.ReadFile(c.FilePath())
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", ConfigFile, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("invalid %s: %w", ConfigFile, err)
	}

	if fc.APIURL != "" {
		c.APIURL = fc.APIURL
	}
	if fc.Timeout != "" {
		d, err := time.ParseDuration(fc.Timeout)
		if err != nil {
			return fmt.Errorf("invalid %s: timeout: %w", ConfigFile, err)
		}
		c.Timeout = d
	}
	if fc.CallbackPort > 0 {
		c.CallbackPort = fc.CallbackPort
	}
	if fc.Workspace != "" {
		c.Workspace = fc.Workspace
	}
	c.Color = fc.Color
	return nil
}

func (c *Config) applyEnv() {
	c.APIURL = getString("TEAMSYNC_API_URL", c.APIURL)
	c.Timeout = getDuration("TEAMSYNC_TIMEOUT", c.Timeout)
	c.CallbackPort = getInt("TEAMSYNC_CALLBACK_PORT", c.CallbackPort)
	c.Workspace = getString("TEAMSYNC_WORKSPACE", c.Workspace)
	c.Color = getBool("TEAMSYNC_COLOR", c.Color)
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		c.Color = false
	}
}

// FilePath returns the path to config.yaml.
func (c *Config) FilePath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// SessionPath returns the path to the persisted session database.
func (c *Config) SessionPath() string {
	return filepath.Join(c.Dir, SessionFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}
