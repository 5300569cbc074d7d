package app

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config controls runtime behavior for the TUI app.
type Config struct {
	APIKey          string        `env:"SCOUT_API_KEY"`
	BaseURL         string        `env:"SCOUT_API_BASE_URL"`
	Model           string        `env:"SCOUT_MODEL"`
	RequestTimeout  time.Duration `env:"SCOUT_REQUEST_TIMEOUT"`
	LogPath         string        `env:"SCOUT_LOG_PATH"`
	LessonsDir      string        `env:"SCOUT_LESSONS_DIR"`
	XPToastDuration time.Duration `env:"SCOUT_XP_TOAST_DURATION"`
	ASCIIOnly       bool          `env:"SCOUT_ASCII_ONLY"`
	DebugLayout     bool          `env:"SCOUT_DEBUG_LAYOUT"`
	UI              UIConfig      `envPrefix:"SCOUT_UI_"`
}

type UIConfig struct {
	StyleVariant string `env:"STYLE"`
	MotionLevel  string `env:"MOTION"`
}

func DefaultConfig() Config {
	return Config{
		BaseURL:         "https://generativelanguage.googleapis.com",
		Model:           "gemini-3-flash-preview",
		RequestTimeout:  30 * time.Second,
		XPToastDuration: 2500 * time.Millisecond,
		UI: UIConfig{
			StyleVariant: "modern_arcade",
			MotionLevel:  "full",
		},
	}
}

// FromEnv layers SCOUT_* environment variables over the defaults.
func FromEnv() (Config, error) {
	cfg := DefaultConfig()
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.BaseURL == "" {
		c.BaseURL = "https://generativelanguage.googleapis.com"
	}
	if c.Model == "" {
		c.Model = "gemini-3-flash-preview"
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 30 * time.Second
	}
	if c.XPToastDuration <= 0 {
		c.XPToastDuration = 2500 * time.Millisecond
	}
	switch c.UI.StyleVariant {
	case "", "modern_arcade", "cozy_clean", "retro_terminal":
	default:
		return fmt.Errorf("invalid ui style variant %q", c.UI.StyleVariant)
	}
	if c.UI.StyleVariant == "" {
		c.UI.StyleVariant = "modern_arcade"
	}
	switch c.UI.MotionLevel {
	case "", "off", "reduced", "full":
	default:
		return fmt.Errorf("invalid ui motion level %q", c.UI.MotionLevel)
	}
	if c.UI.MotionLevel == "" {
		c.UI.MotionLevel = "full"
	}
	return nil
}
