package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/alkime/radiopanel/internal/panel"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	// EnvPrefix prefixes every environment variable, e.g. RADIOPANEL_ENV.
	EnvPrefix = "RADIOPANEL"
	// EnvProduction represents the production environment.
	EnvProduction = "production"
	// EnvDevelopment represents the development environment.
	EnvDevelopment = "development"
)

// Config holds all application configuration.
type Config struct {
	Env string `envconfig:"ENV" default:"development"`

	// Logging settings
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	LogFile  string `envconfig:"LOG_FILE" default:"radiopanel.log"`

	// Panel settings
	Profile      string  `envconfig:"PROFILE"`
	CellAspect   float64 `envconfig:"CELL_ASPECT" default:"2.0"`
	PixelsPerRow float64 `envconfig:"PIXELS_PER_ROW" default:"15"`

	// Audio settings
	Audio      bool `envconfig:"AUDIO" default:"true"`
	SampleRate int  `envconfig:"SAMPLE_RATE" default:"44100"`

	// Monitor settings; the monitor is off unless MonitorAddr is set.
	MonitorAddr      string   `envconfig:"MONITOR_ADDR"`
	MonitorStaticDir string   `envconfig:"MONITOR_STATIC_DIR"`
	TrustedProxies   []string `envconfig:"TRUSTED_PROXIES" default:"127.0.0.1"`
	HSTSMaxAge       int      `envconfig:"HSTS_MAX_AGE" default:"31536000"`
	CSPMode          string   `envconfig:"CSP_MODE" default:"relaxed"`
}

// LoadConfig loads configuration from .env file and environment variables.
func LoadConfig() (*Config, error) {
	// Try to load .env file (optional for development)
	if err := godotenv.Load(); err != nil {
		// Not an error if file doesn't exist
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	}

	var config Config
	if err := envconfig.Process(EnvPrefix, &config); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate rejects values the panel cannot work with.
func (c *Config) Validate() error {
	if c.CellAspect <= 0 {
		return fmt.Errorf("cell aspect must be positive, got %v", c.CellAspect)
	}

	if c.PixelsPerRow <= 0 {
		return fmt.Errorf("pixels per row must be positive, got %v", c.PixelsPerRow)
	}

	if c.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", c.SampleRate)
	}

	return nil
}

// MonitorEnabled reports whether the state monitor should run.
func (c *Config) MonitorEnabled() bool { return c.MonitorAddr != "" }

// LoadProfile reads the panel profile at path. An empty path returns the
// default profile. Keys the file leaves out keep their defaults; a presets
// table in the file replaces the default table as a whole.
func LoadProfile(path string) (panel.Profile, error) {
	if path == "" {
		return panel.DefaultProfile(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return panel.Profile{}, fmt.Errorf("failed to open profile: %w", err)
	}
	defer f.Close()

	profile, err := ParseProfile(f)
	if err != nil {
		return panel.Profile{}, fmt.Errorf("profile %s: %w", path, err)
	}

	return profile, nil
}

// ParseProfile decodes a YAML panel profile over the defaults and
// validates the result.
func ParseProfile(r io.Reader) (panel.Profile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return panel.Profile{}, fmt.Errorf("failed to read profile: %w", err)
	}

	profile := panel.DefaultProfile()

	var raw struct {
		Presets yaml.Node `yaml:"presets"`
	}

	if err := yaml.Unmarshal(data, &raw); err != nil {
		return panel.Profile{}, fmt.Errorf("failed to parse profile: %w", err)
	}

	if raw.Presets.Kind != 0 {
		profile.Presets = nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&profile); err != nil && !errors.Is(err, io.EOF) {
		return panel.Profile{}, fmt.Errorf("failed to parse profile: %w", err)
	}

	if err := profile.Validate(); err != nil {
		return panel.Profile{}, err
	}

	return profile, nil
}

// BuildCSP constructs Content Security Policy based on mode.
func BuildCSP(mode string) string {
	if mode == "strict" {
		return "default-src 'self'; " +
			"style-src 'self' 'unsafe-inline'; " +
			"script-src 'self'; " +
			"connect-src 'self'; " +
			"img-src 'self' data:; " +
			"object-src 'none'; " +
			"base-uri 'self'; " +
			"form-action 'self'"
	}

	// Development/relaxed CSP; ws: lets a page on another port reach /ws
	return "default-src 'self'; " +
		"style-src 'self' 'unsafe-inline'; " +
		"script-src 'self' 'unsafe-inline'; " +
		"connect-src 'self' ws: wss:; " +
		"img-src 'self' data:"
}
