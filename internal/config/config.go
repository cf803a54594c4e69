package config

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dshills/blockpad/internal/config/loader"
)

// Classifier names accepted by detection.classifier.
const (
	ClassifierNone      = "none"
	ClassifierChroma    = "chroma"
	ClassifierLua       = "lua"
	ClassifierAnthropic = "anthropic"
	ClassifierOpenAI    = "openai"
)

var classifiers = []string{ClassifierNone, ClassifierChroma, ClassifierLua, ClassifierAnthropic, ClassifierOpenAI}

var logLevels = []string{"debug", "info", "warn", "error"}

// Config is the complete blockpad configuration.
type Config struct {
	Editor    EditorConfig
	Detection DetectionConfig
	Render    RenderConfig
	Logging   LoggingConfig
}

// EditorConfig holds editing settings.
type EditorConfig struct {
	// IndentUnit is inserted for one level of indentation.
	IndentUnit string

	// TabWidth is the number of columns a tab advances to.
	TabWidth int

	// MaxUndo bounds the number of undo entries.
	MaxUndo int
}

// DetectionConfig holds language auto-detection settings.
type DetectionConfig struct {
	// Enabled turns detection of auto blocks on.
	Enabled bool

	// Classifier selects the classifier: none, chroma, lua, anthropic or openai.
	Classifier string

	// Script is the Lua classifier script. Empty uses the built-in rules.
	Script string

	// MinRelevance is the lowest relevance that changes a block's language.
	MinRelevance float64

	// MinContentLength is the shortest trimmed content submitted.
	MinContentLength int

	// Workers is the number of detector goroutines.
	Workers int

	// QueueSize bounds pending detection requests.
	QueueSize int

	// Timeout bounds one classification. Zero disables it.
	Timeout time.Duration

	// Model is the model name for remote classifiers.
	Model string

	// BaseURL overrides the remote API endpoint.
	BaseURL string

	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string
}

// RenderConfig holds terminal rendering settings.
type RenderConfig struct {
	// Theme is "dark" or "light".
	Theme string

	// Background overrides the theme background, as "#rrggbb".
	Background string

	// AlternateShift is the lightness difference of alternate blocks.
	AlternateShift float64

	// MarkerGlyph is drawn in place of delimiters.
	MarkerGlyph string
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is debug, info, warn or error.
	Level string
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Editor: EditorConfig{
			IndentUnit: "    ",
			TabWidth:   4,
			MaxUndo:    1000,
		},
		Detection: DetectionConfig{
			Enabled:          true,
			Classifier:       ClassifierChroma,
			MinRelevance:     0.3,
			MinContentLength: 8,
			Workers:          2,
			QueueSize:        64,
			Timeout:          5 * time.Second,
		},
		Render: RenderConfig{
			Theme:          "dark",
			AlternateShift: 0.04,
			MarkerGlyph:    "∞",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks every setting and returns all problems joined.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, path string, value any, format string, args ...any) {
		if !ok {
			errs = append(errs, invalid(path, value, format, args...))
		}
	}

	check(c.Editor.IndentUnit != "", "editor.indentUnit", c.Editor.IndentUnit, "must not be empty")
	check(c.Editor.TabWidth >= 1 && c.Editor.TabWidth <= 16, "editor.tabWidth", c.Editor.TabWidth, "must be between 1 and 16")
	check(c.Editor.MaxUndo >= 1, "editor.maxUndo", c.Editor.MaxUndo, "must be positive")

	d := c.Detection
	check(slices.Contains(classifiers, d.Classifier), "detection.classifier", d.Classifier, "must be one of %v", classifiers)
	check(d.MinRelevance >= 0 && d.MinRelevance <= 1, "detection.minRelevance", d.MinRelevance, "must be between 0 and 1")
	check(d.MinContentLength >= 0, "detection.minContentLength", d.MinContentLength, "must not be negative")
	check(d.Workers >= 1, "detection.workers", d.Workers, "must be positive")
	check(d.QueueSize >= 1, "detection.queueSize", d.QueueSize, "must be positive")
	check(d.Timeout >= 0, "detection.timeout", d.Timeout, "must not be negative")
	remote := d.Classifier == ClassifierAnthropic || d.Classifier == ClassifierOpenAI
	check(!d.Enabled || !remote || d.Model != "", "detection.model", d.Model, "required for %s", d.Classifier)

	check(c.Render.Theme == "dark" || c.Render.Theme == "light", "render.theme", c.Render.Theme, "must be dark or light")
	check(c.Render.AlternateShift >= 0 && c.Render.AlternateShift <= 0.5, "render.alternateShift", c.Render.AlternateShift, "must be between 0 and 0.5")
	check(c.Render.MarkerGlyph != "", "render.markerGlyph", c.Render.MarkerGlyph, "must not be empty")

	check(slices.Contains(logLevels, c.Logging.Level), "logging.level", c.Logging.Level, "must be one of %v", logLevels)

	return errors.Join(errs...)
}

// Apply sets every leaf of m, a nested map keyed by section and setting
// name. With strict set, unknown paths are errors; otherwise they are
// skipped.
func (c *Config) Apply(m map[string]any, strict bool) error {
	var errs []error
	for path, value := range loader.Flatten(m) {
		s, ok := settings[path]
		if !ok {
			if strict {
				errs = append(errs, fmt.Errorf("%s: %w", path, ErrUnknownSetting))
			}
			continue
		}
		if err := s(c, value); err != nil {
			errs = append(errs, invalid(path, value, "%v", err))
		}
	}
	return errors.Join(errs...)
}

// Load returns the defaults overlaid with the file at path, when path is
// not empty, and with the process environment. A missing file is not an
// error.
func Load(path string) (*Config, error) {
	return LoadFrom(path, loader.NewEnvLoader(loader.EnvPrefix))
}

// LoadFrom is Load with an explicit environment loader; a nil env skips
// the environment layer.
func LoadFrom(path string, env loader.Loader) (*Config, error) {
	cfg := Default()

	if path != "" {
		l, err := loader.ForPath(path)
		if err != nil {
			return nil, err
		}
		m, err := l.Load()
		if err != nil {
			return nil, err
		}
		if err := cfg.Apply(m, true); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}

	if env != nil {
		m, err := env.Load()
		if err != nil {
			return nil, fmt.Errorf("environment: %w", err)
		}
		if err := cfg.Apply(m, false); err != nil {
			return nil, fmt.Errorf("environment: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
