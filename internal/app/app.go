// Package app wires the blockpad components into a terminal editor: it
// loads configuration, builds the editor session and the language
// detector, paints the document and routes terminal events to editor
// commands.
package app

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/blockpad/internal/config"
	"github.com/dshills/blockpad/internal/config/loader"
	"github.com/dshills/blockpad/internal/config/watcher"
	"github.com/dshills/blockpad/internal/detect"
	"github.com/dshills/blockpad/internal/editor"
	"github.com/dshills/blockpad/internal/render"
)

// Options configures the application.
type Options struct {
	// ConfigPath is the path to the configuration file. Empty uses the
	// defaults and the environment only.
	ConfigPath string

	// File is the document to edit. A missing file starts empty and is
	// created on save.
	File string

	// LogLevel overrides logging.level when not empty.
	LogLevel string

	// LogOutput receives log lines. Defaults to io.Discard, since the
	// terminal belongs to the editor.
	LogOutput io.Writer

	// Env overrides the environment layer of the configuration.
	Env loader.Loader

	// Screen is the terminal to draw on. Nil opens the real terminal in
	// Run.
	Screen tcell.Screen

	// WatchConfig reloads the configuration file when it changes.
	WatchConfig bool
}

// Application is the running editor.
type Application struct {
	mu sync.Mutex

	opts    Options
	cfg     *config.Config
	logger  *Logger
	metrics *Metrics

	session  *editor.Session
	detector *detect.Detector
	release  func()

	screen  tcell.Screen
	painter *render.Painter
	top     int
	status  string

	path  string
	saved string

	watcher *watcher.Watcher
	reloads chan *config.Config

	quitArmed bool
	running   atomic.Bool
}

// New loads the configuration and document and builds every component.
// The detector is started; the screen is not touched until Run.
func New(opts Options) (*Application, error) {
	if opts.LogOutput == nil {
		opts.LogOutput = io.Discard
	}
	if opts.Env == nil {
		opts.Env = loader.NewEnvLoader(loader.EnvPrefix)
	}
	app := &Application{
		opts:    opts,
		metrics: NewMetrics(),
		screen:  opts.Screen,
		reloads: make(chan *config.Config, 1),
	}
	if err := app.bootstrap(); err != nil {
		app.stopComponents()
		return nil, err
	}
	return app, nil
}

// bootstrap initializes components in dependency order.
func (app *Application) bootstrap() error {
	cfg, err := config.LoadFrom(app.opts.ConfigPath, app.opts.Env)
	if err != nil {
		return &InitError{Component: "config", Err: err}
	}
	if app.opts.LogLevel != "" {
		cfg.Logging.Level = app.opts.LogLevel
	}
	app.cfg = cfg

	app.logger = NewLogger(LoggerConfig{
		Level:  ParseLogLevel(cfg.Logging.Level),
		Output: app.opts.LogOutput,
		Prefix: "blockpad",
	})

	app.detector, app.release, err = NewDetector(cfg.Detection, app.logger)
	if err != nil {
		return &InitError{Component: "detector", Err: err}
	}
	if app.detector != nil {
		if err := app.detector.Start(); err != nil {
			return &InitError{Component: "detector", Err: err}
		}
	}

	text, err := readDocument(app.opts.File)
	if err != nil {
		return err
	}
	app.path = app.opts.File
	app.saved = text
	app.session = editor.New(text, SessionOptions(cfg, app.logger, app.detector)...)
	app.logger.Info("opened %q: %d blocks", app.path, app.session.Index().Len())

	if app.opts.WatchConfig && app.opts.ConfigPath != "" {
		app.watcher, err = config.Watch(app.opts.ConfigPath, app.opts.Env, app.onReload,
			watcher.WithErrorHandler(func(err error) {
				app.logger.WithComponent("config").Warn("watch: %v", err)
			}))
		if err != nil {
			return &InitError{Component: "config watcher", Err: err}
		}
	}
	return nil
}

// Config returns the active configuration.
func (app *Application) Config() *config.Config {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.cfg
}

// Session returns the editor session.
func (app *Application) Session() *editor.Session {
	return app.session
}

// Logger returns the application logger.
func (app *Application) Logger() *Logger {
	return app.logger
}

// Metrics returns the application metrics.
func (app *Application) Metrics() *Metrics {
	return app.metrics
}

// Status returns the status line message.
func (app *Application) Status() string {
	return app.status
}

func (app *Application) setStatus(format string, args ...any) {
	app.status = fmt.Sprintf(format, args...)
}
