package shared

import (
	_ "embed"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Links     LinksConfig     `toml:"links"`
	Entries   EntriesConfig   `toml:"entries"`
	Devices   DevicesConfig   `toml:"devices"`
	Downloads DownloadsConfig `toml:"downloads"`
	HTTP      HTTPConfig      `toml:"http"`
	Database  DatabaseConfig  `toml:"database"`
	Log       LogConfig       `toml:"log"`
}

// LinksConfig points at the link-tree service.
type LinksConfig struct {
	BaseURL       string `toml:"base_url"`
	ReorderMethod string `toml:"reorder_method"`
	ExportDir     string `toml:"export_dir"`
}

// EntriesConfig points at the older server-rendered link page.
type EntriesConfig struct {
	BaseURL string `toml:"base_url"`
}

// DevicesConfig points at the Wake-on-LAN service and its push channel.
type DevicesConfig struct {
	BaseURL             string `toml:"base_url"`
	WSURL               string `toml:"ws_url"`
	ReorderMethod       string `toml:"reorder_method"`
	PingIntervalSeconds int    `toml:"ping_interval_seconds"`
}

// DownloadsConfig points at the score download service.
type DownloadsConfig struct {
	BaseURL        string  `toml:"base_url"`
	PollIntervalMS int     `toml:"poll_interval_ms"`
	DefaultScale   float64 `toml:"default_scale"`
	DefaultSharpen int     `toml:"default_sharpen"`
}

// HTTPConfig controls the shared HTTP client.
type HTTPConfig struct {
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LogConfig sets the log level and the file the TUI logs to.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// PollInterval returns the download status interval, 1s when unset.
func (c DownloadsConfig) PollInterval() time.Duration {
	if c.PollIntervalMS <= 0 {
		return time.Second
	}
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

// PingInterval returns the push channel keepalive interval.
func (c DevicesConfig) PingInterval() time.Duration {
	if c.PingIntervalSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.PingIntervalSeconds) * time.Second
}

// Timeout returns the per-request timeout.
func (c HTTPConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Validate checks that every base URL parses and reorder methods are PUT or POST.
func (c *Config) Validate() error {
	for name, raw := range map[string]string{
		"links.base_url":     c.Links.BaseURL,
		"entries.base_url":   c.Entries.BaseURL,
		"devices.base_url":   c.Devices.BaseURL,
		"downloads.base_url": c.Downloads.BaseURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: %s %q is not an absolute url", ErrInvalidConfig, name, raw)
		}
	}

	if c.Devices.WSURL != "" {
		u, err := url.Parse(c.Devices.WSURL)
		if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") {
			return fmt.Errorf("%w: devices.ws_url %q must use ws or wss", ErrInvalidConfig, c.Devices.WSURL)
		}
	}

	for name, m := range map[string]string{
		"links.reorder_method":   c.Links.ReorderMethod,
		"devices.reorder_method": c.Devices.ReorderMethod,
	} {
		switch strings.ToUpper(m) {
		case "", http.MethodPut, http.MethodPost:
		default:
			return fmt.Errorf("%w: %s must be PUT or POST, got %q", ErrInvalidConfig, name, m)
		}
	}
	return nil
}

// LoadConfig reads a TOML file over the embedded defaults, so missing keys keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
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
