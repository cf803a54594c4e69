package config

import (
	"fmt"
	"math"
	"time"
)

// setter converts a decoded value and stores it in a Config.
type setter func(c *Config, v any) error

// settings maps each setting path to its setter.
var settings = map[string]setter{
	"editor.indentUnit": stringSetter(func(c *Config) *string { return &c.Editor.IndentUnit }),
	"editor.tabWidth":   intSetter(func(c *Config) *int { return &c.Editor.TabWidth }),
	"editor.maxUndo":    intSetter(func(c *Config) *int { return &c.Editor.MaxUndo }),

	"detection.enabled":          boolSetter(func(c *Config) *bool { return &c.Detection.Enabled }),
	"detection.classifier":       stringSetter(func(c *Config) *string { return &c.Detection.Classifier }),
	"detection.script":           stringSetter(func(c *Config) *string { return &c.Detection.Script }),
	"detection.minRelevance":     floatSetter(func(c *Config) *float64 { return &c.Detection.MinRelevance }),
	"detection.minContentLength": intSetter(func(c *Config) *int { return &c.Detection.MinContentLength }),
	"detection.workers":          intSetter(func(c *Config) *int { return &c.Detection.Workers }),
	"detection.queueSize":        intSetter(func(c *Config) *int { return &c.Detection.QueueSize }),
	"detection.timeout":          durationSetter(func(c *Config) *time.Duration { return &c.Detection.Timeout }),
	"detection.model":            stringSetter(func(c *Config) *string { return &c.Detection.Model }),
	"detection.baseUrl":          stringSetter(func(c *Config) *string { return &c.Detection.BaseURL }),
	"detection.apiKeyEnv":        stringSetter(func(c *Config) *string { return &c.Detection.APIKeyEnv }),

	"render.theme":          stringSetter(func(c *Config) *string { return &c.Render.Theme }),
	"render.background":     stringSetter(func(c *Config) *string { return &c.Render.Background }),
	"render.alternateShift": floatSetter(func(c *Config) *float64 { return &c.Render.AlternateShift }),
	"render.markerGlyph":    stringSetter(func(c *Config) *string { return &c.Render.MarkerGlyph }),

	"logging.level": stringSetter(func(c *Config) *string { return &c.Logging.Level }),
}

// Paths returns every known setting path.
func Paths() []string {
	out := make([]string, 0, len(settings))
	for p := range settings {
		out = append(out, p)
	}
	return out
}

func stringSetter(field func(*Config) *string) setter {
	return func(c *Config, v any) error {
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", v)
		}
		*field(c) = s
		return nil
	}
}

func boolSetter(field func(*Config) *bool) setter {
	return func(c *Config, v any) error {
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("expected bool, got %T", v)
		}
		*field(c) = b
		return nil
	}
}

func intSetter(field func(*Config) *int) setter {
	return func(c *Config, v any) error {
		switch n := v.(type) {
		case int:
			*field(c) = n
		case int64:
			*field(c) = int(n)
		case float64:
			if n != math.Trunc(n) {
				return fmt.Errorf("expected integer, got %v", n)
			}
			*field(c) = int(n)
		default:
			return fmt.Errorf("expected integer, got %T", v)
		}
		return nil
	}
}

func floatSetter(field func(*Config) *float64) setter {
	return func(c *Config, v any) error {
		switch n := v.(type) {
		case float64:
			*field(c) = n
		case int:
			*field(c) = float64(n)
		case int64:
			*field(c) = float64(n)
		default:
			return fmt.Errorf("expected number, got %T", v)
		}
		return nil
	}
}

// durationSetter accepts a Go duration string or a number of seconds.
func durationSetter(field func(*Config) *time.Duration) setter {
	return func(c *Config, v any) error {
		switch d := v.(type) {
		case string:
			parsed, err := time.ParseDuration(d)
			if err != nil {
				return err
			}
			*field(c) = parsed
		case int:
			*field(c) = time.Duration(d) * time.Second
		case int64:
			*field(c) = time.Duration(d) * time.Second
		case float64:
			*field(c) = time.Duration(d * float64(time.Second))
		default:
			return fmt.Errorf("expected duration, got %T", v)
		}
		return nil
	}
}
