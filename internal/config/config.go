// Package config loads the site configuration. A missing file is
// synthesized from built-in defaults and persisted, so a fresh checkout
// builds without ceremony. Environment variables override the stored
// short-link service settings.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment overrides. The service URL override takes precedence over
// the stored configuration value.
const (
	EnvShortLinkURL   = "BLOGSMITH_SHORTLINK_URL"
	EnvShortLinkToken = "SHORTLINK_TOKEN"
)

// Config is one build's immutable input.
type Config struct {
	Title   string        `yaml:"title"`
	BaseURL string        `yaml:"baseUrl"`
	SiteURL string        `yaml:"siteUrl"`
	Profile ProfileConfig `yaml:"profile"`

	Content  ContentConfig  `yaml:"content"`
	Output   OutputConfig   `yaml:"output"`
	Theme    ThemeConfig    `yaml:"theme"`
	Services ServicesConfig `yaml:"services"`
	Build    BuildConfig    `yaml:"build"`
}

// ProfileConfig is the display identity shown in the sidebar.
type ProfileConfig struct {
	Name   string `yaml:"name"`
	Avatar string `yaml:"avatar,omitempty"`
	Bio    string `yaml:"bio,omitempty"`
}

// ContentConfig locates the source documents.
type ContentConfig struct {
	Dir string `yaml:"dir"`
	// AboutFile is rendered on the home page instead of the post list
	// detail; it is excluded from the article index.
	AboutFile string `yaml:"aboutFile"`
}

// OutputConfig locates the generated site.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// ThemeConfig tunes rendering details.
type ThemeConfig struct {
	// Dir holds optional static assets copied into the output tree.
	Dir string `yaml:"dir,omitempty"`
	// HideTip is the default hover hint for hidden-text spans without a
	// label of their own.
	HideTip          string `yaml:"hideTip"`
	CustomBackground string `yaml:"customBackground,omitempty"`
}

// ServicesConfig configures external collaborators.
type ServicesConfig struct {
	ShortLink ShortLinkConfig `yaml:"shortLink"`
	Analytics AnalyticsConfig `yaml:"analytics"`
}

// ShortLinkConfig configures the link-shortening service.
type ShortLinkConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url,omitempty"`
	Token   string `yaml:"token,omitempty"`
}

// AnalyticsConfig toggles an analytics snippet on generated pages.
type AnalyticsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Snippet string `yaml:"snippet,omitempty"`
}

// BuildConfig tunes the rebuild machinery.
type BuildConfig struct {
	// Schedule enables a periodic full rebuild while serving, on top of
	// the filesystem watch (e.g. "30m"). Empty disables it.
	Schedule string `yaml:"schedule,omitempty"`
	// HistoryDB is the path of the sqlite build-history database. Empty
	// disables history recording.
	HistoryDB string `yaml:"historyDb,omitempty"`
}

// ScheduleInterval parses Build.Schedule; zero means disabled.
func (c *Config) ScheduleInterval() (time.Duration, error) {
	if c.Build.Schedule == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Build.Schedule)
	if err != nil {
		return 0, fmt.Errorf("invalid build schedule %q: %w", c.Build.Schedule, err)
	}
	return d, nil
}

// Load reads the configuration file, synthesizing and persisting the
// defaults when it does not exist.
func Load(path string) (*Config, error) {
	// .env files never override the process environment.
	_ = godotenv.Load(".env", ".env.local")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := Default()
		if err := write(path, cfg); err != nil {
			return nil, fmt.Errorf("persist default config: %w", err)
		}
		applyEnvOverrides(cfg)
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config %s: %w", path, err)
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)
	return cfg, nil
}

// Init writes the default configuration file.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
	}
	return write(path, Default())
}

func write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvShortLinkURL); v != "" {
		cfg.Services.ShortLink.URL = v
	}
	if v := os.Getenv(EnvShortLinkToken); v != "" && cfg.Services.ShortLink.Token == "" {
		cfg.Services.ShortLink.Token = v
	}
}
