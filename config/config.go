package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/spektr-org/pulse/dataset"
	"github.com/spektr-org/pulse/engine"
)

// Defaults match the file names of the cleaned exports.
const (
	DefaultMembersCSV    = "member_cleaned_from_export.csv"
	DefaultChannelsCSV   = "channel_cleaned_from_export.csv"
	DefaultWorkspaceCSV  = "workspace_daily_from_export.csv"
	DefaultAddr          = ":8080"
	DefaultTopN          = 20
	DefaultHistogramBins = 50
	DefaultTheme         = "light"
)

// Config is the runtime configuration shared by the CLI and the server.
type Config struct {
	Sources       dataset.Paths `yaml:"sources"`
	Addr          string        `yaml:"addr"`
	Watch         bool          `yaml:"watch"`
	TopN          int           `yaml:"top_n"`
	HistogramBins int           `yaml:"histogram_bins"`
	Theme         string        `yaml:"theme"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Sources: dataset.Paths{
			Members:   DefaultMembersCSV,
			Channels:  DefaultChannelsCSV,
			Workspace: DefaultWorkspaceCSV,
		},
		Addr:          DefaultAddr,
		TopN:          DefaultTopN,
		HistogramBins: DefaultHistogramBins,
		Theme:         DefaultTheme,
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// path is set), then .env files, then PULSE_* environment variables.
// envFiles defaults to ".env"; missing env files are ignored.
func Load(path string, envFiles ...string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Printf("⚠️ pulse: ignoring %s: %v", f, err)
		}
	}

	cfg.Sources.Members = getEnv("PULSE_MEMBERS_CSV", cfg.Sources.Members)
	cfg.Sources.Channels = getEnv("PULSE_CHANNELS_CSV", cfg.Sources.Channels)
	cfg.Sources.Workspace = getEnv("PULSE_WORKSPACE_CSV", cfg.Sources.Workspace)
	cfg.Addr = getEnv("PULSE_ADDR", cfg.Addr)
	cfg.Watch = boolEnv("PULSE_WATCH", cfg.Watch)
	cfg.TopN = intEnv("PULSE_TOP_N", cfg.TopN)
	cfg.HistogramBins = intEnv("PULSE_HISTOGRAM_BINS", cfg.HistogramBins)
	cfg.Theme = getEnv("PULSE_THEME", cfg.Theme)

	return cfg, cfg.Validate()
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	for _, p := range c.Sources.List() {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("all three source paths are required")
		}
	}
	if c.TopN <= 0 {
		return fmt.Errorf("top_n must be positive, got %d", c.TopN)
	}
	if c.HistogramBins <= 0 {
		return fmt.Errorf("histogram_bins must be positive, got %d", c.HistogramBins)
	}
	switch strings.ToLower(c.Theme) {
	case "light", "dark":
	default:
		return fmt.Errorf("theme must be light or dark, got %q", c.Theme)
	}
	return nil
}

// Paths returns the source file locations.
func (c Config) Paths() dataset.Paths { return c.Sources }

// Palette resolves the configured theme.
func (c Config) Palette() engine.Palette { return engine.PaletteByName(c.Theme) }

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func intEnv(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("invalid %s=%q, using fallback %d", name, raw, fallback)
		return fallback
	}
	return value
}

func boolEnv(name string, fallback bool) bool {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("invalid %s=%q, using fallback %t", name, raw, fallback)
		return fallback
	}
	return value
}
