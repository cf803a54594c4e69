package app

import (
	"fmt"
	"os"
	"time"

	"github.com/dshills/blockpad/internal/config"
	"github.com/dshills/blockpad/internal/detect"
	"github.com/dshills/blockpad/internal/editor"
	"github.com/dshills/blockpad/internal/render"
	"github.com/dshills/blockpad/internal/syntax/highlight"
)

// remoteRetries is the retry count of remote classifiers.
const remoteRetries = 2

// NewClassifier builds the classifier named by cfg. The returned release
// function frees its resources and is never nil. A nil classifier means
// detection is off.
func NewClassifier(cfg config.DetectionConfig, logger *Logger) (detect.Classifier, func(), error) {
	noop := func() {}
	if !cfg.Enabled {
		return nil, noop, nil
	}

	switch cfg.Classifier {
	case config.ClassifierNone:
		return nil, noop, nil

	case config.ClassifierChroma:
		return detect.NewChromaClassifier(), noop, nil

	case config.ClassifierLua:
		var (
			c   *detect.LuaClassifier
			err error
		)
		if cfg.Script != "" {
			c, err = detect.LoadLuaClassifier(cfg.Script, logger.WithComponent("lua"))
		} else {
			c, err = detect.NewLuaClassifier(detect.DefaultScript, logger.WithComponent("lua"))
		}
		if err != nil {
			return nil, noop, err
		}
		return c, c.Close, nil

	case config.ClassifierAnthropic:
		return detect.NewAnthropicClassifier(remoteConfig(cfg)), noop, nil

	case config.ClassifierOpenAI:
		return detect.NewOpenAIClassifier(remoteConfig(cfg)), noop, nil

	default:
		return nil, noop, fmt.Errorf("classifier %q: %w", cfg.Classifier, config.ErrInvalidValue)
	}
}

func remoteConfig(cfg config.DetectionConfig) detect.RemoteConfig {
	rc := detect.RemoteConfig{
		Model:      cfg.Model,
		BaseURL:    cfg.BaseURL,
		MaxRetries: remoteRetries,
	}
	if cfg.APIKeyEnv != "" {
		rc.APIKey = os.Getenv(cfg.APIKeyEnv)
	}
	return rc
}

// NewDetector builds a stopped detector for cfg, or nil when detection is
// off. release frees the classifier after the detector has stopped.
func NewDetector(cfg config.DetectionConfig, logger *Logger) (d *detect.Detector, release func(), err error) {
	classifier, release, err := NewClassifier(cfg, logger)
	if err != nil || classifier == nil {
		return nil, release, err
	}
	d = detect.New(classifier,
		detect.WithWorkers(cfg.Workers),
		detect.WithQueueSize(cfg.QueueSize),
		detect.WithTimeout(cfg.Timeout),
		detect.WithLogger(logger.WithComponent("detect")),
	)
	return d, release, nil
}

// Policy returns the detection thresholds of cfg.
func Policy(cfg config.DetectionConfig) detect.Policy {
	return detect.Policy{
		MinRelevance:     cfg.MinRelevance,
		MinContentLength: cfg.MinContentLength,
	}
}

// SessionOptions returns the editor options for cfg. d may be nil.
func SessionOptions(cfg *config.Config, logger *Logger, d *detect.Detector) []editor.Option {
	opts := []editor.Option{
		editor.WithIndentUnit(cfg.Editor.IndentUnit),
		editor.WithMaxUndoEntries(cfg.Editor.MaxUndo),
		editor.WithPolicy(Policy(cfg.Detection)),
		editor.WithLogger(logger.WithComponent("editor")),
	}
	if d != nil {
		opts = append(opts, editor.WithDetector(d))
		if expiry := detectionExpiry(cfg.Detection); expiry > 0 {
			opts = append(opts, editor.WithDetectionExpiry(expiry))
		}
	}
	return opts
}

// detectionExpiry allows a request to wait behind a full queue and still
// run to its timeout. It is zero when classification has no timeout.
func detectionExpiry(cfg config.DetectionConfig) time.Duration {
	if cfg.Timeout <= 0 {
		return 0
	}
	workers := max(cfg.Workers, 1)
	return cfg.Timeout * time.Duration(cfg.QueueSize/workers+2)
}

// RenderOptions returns the painter options and theme for cfg.
func RenderOptions(cfg *config.Config) (render.Options, *highlight.Theme, error) {
	opts := render.DefaultOptions()
	opts.TabWidth = cfg.Editor.TabWidth
	opts.MarkerGlyph = cfg.Render.MarkerGlyph
	opts.AlternateShift = cfg.Render.AlternateShift
	if cfg.Render.Background != "" {
		bg, err := render.ParseColor(cfg.Render.Background)
		if err != nil {
			return opts, nil, fmt.Errorf("render.background: %w", err)
		}
		opts.Background = bg
	}
	return opts, highlight.ThemeByName(cfg.Render.Theme), nil
}
