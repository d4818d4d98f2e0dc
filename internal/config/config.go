package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// CalendarConfig describes a single ICS subscription shown on the panel.
type CalendarConfig struct {
	// URL is the ICS subscription endpoint.
	URL string `yaml:"url" json:"url"`
	// ID is an internal identifier used for de-dup and logging.
	ID string `yaml:"id" json:"id"`
	// Name is a human-friendly label.
	Name string `yaml:"name" json:"name"`
	// Symbol is the glyph prefixed to every event title from this calendar.
	Symbol string `yaml:"symbol" json:"symbol"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the web endpoints.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// WeatherConfig selects the forecast location.
type WeatherConfig struct {
	Latitude  float64 `yaml:"latitude" json:"latitude"`
	Longitude float64 `yaml:"longitude" json:"longitude"`
	// BaseURL is the Open-Meteo forecast endpoint.
	BaseURL string `yaml:"base_url" json:"base_url"`
}

// FunFactConfig configures the OpenRouter chat completion collaborator.
type FunFactConfig struct {
	APIKey  string   `yaml:"api_key" json:"-"`
	BaseURL string   `yaml:"base_url" json:"base_url"`
	Models  []string `yaml:"models" json:"models"`
}

// IllustrationConfig configures the ImageRouter image collaborator and the
// static assets used around it.
type IllustrationConfig struct {
	APIKey  string   `yaml:"api_key" json:"-"`
	BaseURL string   `yaml:"base_url" json:"base_url"`
	Models  []string `yaml:"models" json:"models"`
	// Mode is "events", "fact" or "auto".
	Mode string `yaml:"mode" json:"mode"`
	// FallbackPath is used whenever generation fails.
	FallbackPath string `yaml:"fallback_path" json:"fallback_path"`

	// Secondary toggles the decorative bottom-right image.
	Secondary     bool   `yaml:"secondary" json:"secondary"`
	SecondaryPath string `yaml:"secondary_path" json:"secondary_path"`
}

// FontConfig points at TrueType/OpenType files. Empty paths fall back to
// system font discovery and finally to the bundled Go fonts.
type FontConfig struct {
	Regular string `yaml:"regular" json:"regular"`
	Bold    string `yaml:"bold" json:"bold"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the image endpoint and status UI.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone used as canonical display zone.
	Timezone string `yaml:"timezone" json:"timezone"`

	// Locale selects month and weekday names ("da" or "en").
	Locale string `yaml:"locale" json:"locale"`

	// RefreshCron is a cron-style schedule string for regeneration.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// OutputPath is where the rendered BMP is written.
	OutputPath string `yaml:"output_path" json:"output_path"`

	// CacheDir holds the ICS HTTP cache.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	LogLevel string `yaml:"log_level" json:"log_level"`

	Calendars    []CalendarConfig   `yaml:"calendars" json:"calendars"`
	Weather      WeatherConfig      `yaml:"weather" json:"weather"`
	FunFact      FunFactConfig      `yaml:"fun_fact" json:"fun_fact"`
	Illustration IllustrationConfig `yaml:"illustration" json:"illustration"`
	Fonts        FontConfig         `yaml:"fonts" json:"fonts"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

const (
	defaultListen      = "0.0.0.0:8000"
	defaultTimezone    = "Europe/Copenhagen"
	defaultLocale      = "da"
	defaultRefreshCron = "0 0 * * *"
	defaultOutputPath  = "output/illustrated_calendar.bmp"
	defaultCacheDir    = "cache/ics-cache"
	defaultLogLevel    = "info"

	defaultWeatherURL      = "https://api.open-meteo.com/v1/forecast"
	defaultFunFactURL      = "https://openrouter.ai/api/v1/chat/completions"
	defaultIllustrationURL = "https://api.imagerouter.io/v1/openai/images/generations"
	defaultFallbackImage   = "assets/dog.png"
	defaultIllustrationMod = "events"
)

func defaultFunFactModels() []string {
	return []string{
		"google/gemma-3-27b-it:free",
		"meta-llama/llama-3.2-3b-instruct:free",
		"microsoft/phi-3-mini-128k-instruct:free",
	}
}

func defaultIllustrationModels() []string {
	return []string{
		"google/gemini-2.0-flash-exp",
		"HiDream-ai/HiDream-I1-Dev",
	}
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:      defaultListen,
		Timezone:    defaultTimezone,
		Locale:      defaultLocale,
		RefreshCron: defaultRefreshCron,
		OutputPath:  defaultOutputPath,
		CacheDir:    defaultCacheDir,
		LogLevel:    defaultLogLevel,
		Calendars:   []CalendarConfig{},
		Weather: WeatherConfig{
			// Copenhagen.
			Latitude:  55.68,
			Longitude: 12.57,
			BaseURL:   defaultWeatherURL,
		},
		FunFact: FunFactConfig{
			BaseURL: defaultFunFactURL,
			Models:  defaultFunFactModels(),
		},
		Illustration: IllustrationConfig{
			BaseURL:       defaultIllustrationURL,
			Models:        defaultIllustrationModels(),
			Mode:          defaultIllustrationMod,
			FallbackPath:  defaultFallbackImage,
			Secondary:     true,
			SecondaryPath: defaultFallbackImage,
		},
		BasicAuth: nil,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	switch c.Locale {
	case "da", "en":
	default:
		c.Locale = defaultLocale
	}
	if c.RefreshCron == "" {
		c.RefreshCron = defaultRefreshCron
	}
	if c.OutputPath == "" {
		c.OutputPath = defaultOutputPath
	}
	if c.CacheDir == "" {
		c.CacheDir = defaultCacheDir
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if c.Calendars == nil {
		c.Calendars = []CalendarConfig{}
	}
	for i := range c.Calendars {
		cal := &c.Calendars[i]
		if cal.Symbol == "" {
			cal.Symbol = "●"
		}
		if cal.ID == "" {
			if cal.Name != "" {
				cal.ID = cal.Name
			} else {
				cal.ID = cal.URL
			}
		}
	}
	if c.Weather.BaseURL == "" {
		c.Weather.BaseURL = defaultWeatherURL
	}
	if c.FunFact.BaseURL == "" {
		c.FunFact.BaseURL = defaultFunFactURL
	}
	if len(c.FunFact.Models) == 0 {
		c.FunFact.Models = defaultFunFactModels()
	}
	if c.Illustration.BaseURL == "" {
		c.Illustration.BaseURL = defaultIllustrationURL
	}
	if len(c.Illustration.Models) == 0 {
		c.Illustration.Models = defaultIllustrationModels()
	}
	switch c.Illustration.Mode {
	case "events", "fact", "auto":
	default:
		c.Illustration.Mode = defaultIllustrationMod
	}
	if c.Illustration.FallbackPath == "" {
		c.Illustration.FallbackPath = defaultFallbackImage
	}
	if c.Illustration.SecondaryPath == "" {
		c.Illustration.SecondaryPath = defaultFallbackImage
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
//
// Environment overrides are not applied here; see ApplyEnv.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
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
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".inkcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
