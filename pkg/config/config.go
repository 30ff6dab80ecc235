// Package config loads and saves the worldclock YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/codeGROOVE-dev/worldclock/pkg/locations"
	"github.com/codeGROOVE-dev/worldclock/pkg/validation"
	"github.com/codeGROOVE-dev/worldclock/pkg/worldclock"
)

// EnvPath names the environment variable that overrides the config location.
const EnvPath = "WORLDCLOCK_CONFIG"

const (
	defaultListen        = "127.0.0.1:8080"
	defaultReferenceZone = "UTC"
	defaultRefresh       = "@every 1s"
)

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address of worldclock-server.
	Listen string `yaml:"listen" json:"listen" validate:"required"`

	// ReferenceZone is the IANA zone differences and meeting hours are measured against.
	ReferenceZone string `yaml:"reference_zone" json:"reference_zone" validate:"required,timezone"`

	BusinessHours worldclock.HourWindow `yaml:"business_hours" json:"business_hours"`
	Daytime       worldclock.HourWindow `yaml:"daytime" json:"daytime"`

	// SameTimeThreshold is the hour difference below which two zones read as the
	// same time. Zero keeps the engine default.
	SameTimeThreshold float64 `yaml:"same_time_threshold,omitempty" json:"same_time_threshold,omitempty" validate:"gte=0,lte=1"`

	// RefreshCron is the schedule `worldclock watch` redraws on, e.g. "@every 1s".
	RefreshCron string `yaml:"refresh" json:"refresh" validate:"required"`

	// CacheDir holds the geocoding response cache. Empty means the user cache dir.
	CacheDir string `yaml:"cache_dir,omitempty" json:"cache_dir,omitempty"`

	Locations []locations.Location `yaml:"locations" json:"locations" validate:"dive"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:        defaultListen,
		ReferenceZone: defaultReferenceZone,
		BusinessHours: worldclock.DefaultBusinessHours(),
		Daytime:       worldclock.DefaultDaytime(),
		RefreshCron:   defaultRefresh,
		Locations:     locations.Defaults(),
	}
}

// Normalize fills in missing values so partially written files still work.
// An explicitly empty location list is kept; an absent one gets the defaults.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.ReferenceZone == "" {
		c.ReferenceZone = defaultReferenceZone
	}
	if c.BusinessHours == (worldclock.HourWindow{}) {
		c.BusinessHours = worldclock.DefaultBusinessHours()
	}
	if c.Daytime == (worldclock.HourWindow{}) {
		c.Daytime = worldclock.DefaultDaytime()
	}
	if c.RefreshCron == "" {
		c.RefreshCron = defaultRefresh
	}
	if c.Locations == nil {
		c.Locations = locations.Defaults()
	}
}

// Validate checks tags, windows and the refresh schedule.
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return err
	}
	if err := c.BusinessHours.Validate(); err != nil {
		return fmt.Errorf("business_hours: %w", err)
	}
	if err := c.Daytime.Validate(); err != nil {
		return fmt.Errorf("daytime: %w", err)
	}
	if _, err := cron.ParseStandard(c.RefreshCron); err != nil {
		return fmt.Errorf("refresh %q: %w", c.RefreshCron, err)
	}
	return nil
}

// EngineOptions returns the engine settings carried by the config.
func (c *Config) EngineOptions() []worldclock.Option {
	opts := []worldclock.Option{
		worldclock.WithBusinessHours(c.BusinessHours),
		worldclock.WithDaytime(c.Daytime),
	}
	if c.SameTimeThreshold > 0 {
		opts = append(opts, worldclock.WithSameTimeThreshold(c.SameTimeThreshold))
	}
	return opts
}

// Path resolves the config file location: the explicit value if set, then
// $WORLDCLOCK_CONFIG, then <user config dir>/worldclock/config.yaml.
func Path(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if p := os.Getenv(EnvPath); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "worldclock", "config.yaml"), nil
}

// Load reads configuration from path. On first run the file does not exist;
// the defaults are written there with 0600 permissions and returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes cfg to path atomically through a temp file in the same directory.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}
	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".worldclock-config-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // gone after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck,gosec // write error takes precedence
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close() //nolint:errcheck,gosec // sync error takes precedence
		return fmt.Errorf("sync config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close config: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return fmt.Errorf("chmod config: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename config: %w", err)
	}
	return nil
}

// Save writes c to path.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
