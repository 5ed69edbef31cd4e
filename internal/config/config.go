// Package config loads and saves the budgetviz TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds all budgetviz configuration.
type Config struct {
	Sources    SourcesConfig         `toml:"sources"`
	Chart      ChartConfig           `toml:"chart"`
	Views      map[string]ViewConfig `toml:"views,omitempty"`
	Colors     map[string]string     `toml:"colors,omitempty"`
	Appearance AppearanceConfig      `toml:"appearance"`
	Server     ServerConfig          `toml:"server"`
}

// SourcesConfig lists where each dataset is loaded from.
// Entries may be http(s) URLs or local file paths. An empty entry means
// the topic is not loaded.
type SourcesConfig struct {
	Overview   string `toml:"overview"`
	Spending   string `toml:"spending,omitempty"`
	Revenue    string `toml:"revenue,omitempty"`
	TimeoutSec int    `toml:"timeout_sec"`
}

// ChartConfig holds the drawing surface geometry and chart behavior.
type ChartConfig struct {
	Width         int          `toml:"width"`
	Height        int          `toml:"height"`
	Margin        MarginConfig `toml:"margin"`
	ReferenceYear int          `toml:"reference_year"`
	TooltipHideMS int          `toml:"tooltip_hide_ms"`
	RevealMS      int          `toml:"reveal_ms"`
	DefaultView   string       `toml:"default_view"`
}

// MarginConfig holds the plot margins in pixels.
type MarginConfig struct {
	Left   int `toml:"left"`
	Right  int `toml:"right"`
	Top    int `toml:"top"`
	Bottom int `toml:"bottom"`
}

// ViewConfig overrides the ordered category filter list of one view.
type ViewConfig struct {
	Categories []string `toml:"categories"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Sources: SourcesConfig{
			Overview:   "data/overview.json",
			Spending:   "data/spending.json",
			Revenue:    "data/revenue.json",
			TimeoutSec: 10,
		},
		Chart: ChartConfig{
			Width:  960,
			Height: 600,
			Margin: MarginConfig{
				Left:   75,
				Right:  50,
				Top:    50,
				Bottom: 75,
			},
			ReferenceYear: 2019,
			TooltipHideMS: 500,
			RevealMS:      1500,
			DefaultView:   "Overview",
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8788",
		},
	}
}

var pathOverride string

// SetPath points Load and Save at an explicit file instead of the XDG location.
func SetPath(p string) {
	pathOverride = strings.TrimSpace(p)
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "budgetviz")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "budgetviz")
}

// Path returns the full path to the config file.
func Path() string {
	if pathOverride != "" {
		return pathOverride
	}
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(Path())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	cfg.normalize()

	return cfg, nil
}

// normalize repairs values that would make the chart geometry degenerate.
func (c *Config) normalize() {
	def := DefaultConfig()
	if c.Chart.Width <= 0 {
		c.Chart.Width = def.Chart.Width
	}
	if c.Chart.Height <= 0 {
		c.Chart.Height = def.Chart.Height
	}
	if c.Chart.Margin.Left+c.Chart.Margin.Right >= c.Chart.Width {
		c.Chart.Margin = def.Chart.Margin
	}
	if c.Chart.Margin.Top+c.Chart.Margin.Bottom >= c.Chart.Height {
		c.Chart.Margin = def.Chart.Margin
	}
	if c.Chart.TooltipHideMS < 0 {
		c.Chart.TooltipHideMS = 0
	}
	if c.Chart.RevealMS < 0 {
		c.Chart.RevealMS = 0
	}
	if c.Sources.TimeoutSec <= 0 {
		c.Sources.TimeoutSec = def.Sources.TimeoutSec
	}
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := filepath.Dir(Path())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(Path(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}
