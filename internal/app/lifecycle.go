package app

import (
	"context"
	"errors"
	"time"

	"github.com/dshills/blockpad/internal/config"
	"github.com/dshills/blockpad/internal/detect"
	"github.com/dshills/blockpad/internal/render"
)

// DefaultShutdownTimeout bounds how long Shutdown waits for the detector.
const DefaultShutdownTimeout = 2 * time.Second

// onReload runs on the watcher goroutine. Only the newest configuration
// is kept for the event loop.
func (app *Application) onReload(cfg *config.Config, err error) {
	if err != nil {
		app.logger.WithComponent("config").Warn("reload: %v", err)
		return
	}
	for {
		select {
		case app.reloads <- cfg:
			return
		default:
		}
		select {
		case <-app.reloads:
		default:
		}
	}
}

// ApplyConfig makes cfg the active configuration. Logging and rendering
// change immediately; editor and detection settings apply to the next
// session.
func (app *Application) ApplyConfig(cfg *config.Config) {
	app.mu.Lock()
	prev := app.cfg
	if app.opts.LogLevel != "" {
		cfg.Logging.Level = app.opts.LogLevel
	}
	app.cfg = cfg
	app.mu.Unlock()

	app.logger.SetLevel(ParseLogLevel(cfg.Logging.Level))
	if app.screen != nil {
		if err := app.buildPainter(); err != nil {
			app.logger.Warn("apply render settings: %v", err)
		}
	}
	if prev != nil && (prev.Editor != cfg.Editor || prev.Detection != cfg.Detection) {
		app.logger.Info("editor and detection settings take effect on restart")
	}
	app.setStatus("configuration reloaded")
}

func (app *Application) buildPainter() error {
	opts, theme, err := RenderOptions(app.Config())
	if err != nil {
		return err
	}
	app.painter = render.NewPainter(app.screen, theme, opts)
	return nil
}

// Shutdown stops the detector and the config watcher and frees the
// classifier. It does not touch the screen.
func (app *Application) Shutdown(ctx context.Context) error {
	var errs []error
	if app.watcher != nil {
		errs = append(errs, app.watcher.Close())
		app.watcher = nil
	}
	app.stopDetector(ctx, &errs)
	return errors.Join(errs...)
}

func (app *Application) stopDetector(ctx context.Context, errs *[]error) {
	if app.detector != nil && app.detector.IsRunning() {
		if err := app.detector.Stop(ctx); err != nil && !errors.Is(err, detect.ErrNotRunning) {
			*errs = append(*errs, err)
		}
	}
	if app.release != nil {
		app.release()
		app.release = nil
	}
}

// stopComponents releases whatever bootstrap started before failing.
func (app *Application) stopComponents() {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()
	if err := app.Shutdown(ctx); err != nil && app.logger != nil {
		app.logger.Warn("shutdown: %v", err)
	}
}
