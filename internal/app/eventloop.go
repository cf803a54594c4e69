package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/blockpad/internal/detect"
	"github.com/dshills/blockpad/internal/engine/buffer"
	"github.com/dshills/blockpad/internal/render"
)

// Run opens the screen and processes terminal events, detection results
// and configuration reloads until the user quits or ctx ends. The screen
// is finalized and the detector stopped before Run returns.
func (app *Application) Run(ctx context.Context) error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	if app.screen == nil {
		screen, err := tcell.NewScreen()
		if err != nil {
			return &InitError{Component: "screen", Err: err}
		}
		app.screen = screen
	}
	if err := app.screen.Init(); err != nil {
		return &InitError{Component: "screen", Err: err}
	}
	defer app.screen.Fini()

	if err := app.buildPainter(); err != nil {
		return &InitError{Component: "painter", Err: err}
	}

	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
		if serr := app.Shutdown(sctx); serr != nil {
			app.logger.Warn("shutdown: %v", serr)
		}
	}()

	done := make(chan struct{})
	defer close(done)
	events := app.startInputPolling(done)

	var results <-chan detect.Response
	if app.detector != nil {
		results = app.detector.Results()
	}

	app.Draw()
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := app.HandleEvent(ev); err != nil {
				if errors.Is(err, ErrQuit) {
					return nil
				}
				return err
			}

		case resp, ok := <-results:
			if !ok {
				results = nil
				continue
			}
			app.handleDetection(resp)

		case cfg := <-app.reloads:
			app.ApplyConfig(cfg)
		}
		app.Draw()
	}
}

// startInputPolling forwards screen events until the screen is finalized
// or done is closed. PollEvent returns nil once Fini has run.
func (app *Application) startInputPolling(done <-chan struct{}) <-chan tcell.Event {
	events := make(chan tcell.Event, 100)
	screen := app.screen

	go func() {
		defer close(events)
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()
	return events
}

func (app *Application) handleDetection(resp detect.Response) {
	applied := app.session.HandleDetection(resp)
	app.metrics.RecordDetection(applied)
	if applied {
		app.setStatus("detected %s", resp.Language.Tag())
	}
}

// Draw paints the document and the status line and shows the screen.
func (app *Application) Draw() {
	if app.screen == nil || app.painter == nil {
		return
	}
	timer := StartTimer()

	width, height := app.screen.Size()
	textHeight := max(height-1, 1)
	ix := app.session.Index()
	sel := app.session.Selection()
	rows := render.Layout(ix)
	app.scrollTo(render.RowOf(rows, sel.Primary().Head), textHeight)

	app.painter.Paint(render.Frame{
		Index:     ix,
		Tokens:    app.session.Tokens(buffer.NewRange(0, len(ix.Text()))),
		Selection: sel,
		Top:       app.top,
	})
	if height > 1 {
		app.drawStatus(width, height-1)
	}
	app.screen.Show()

	app.metrics.RecordFrame(timer.Elapsed())
}

// scrollTo keeps row visible in a window of height rows.
func (app *Application) scrollTo(row, height int) {
	switch {
	case row < app.top:
		app.top = row
	case row >= app.top+height:
		app.top = row - height + 1
	}
}

func (app *Application) drawStatus(width, y int) {
	style := tcell.StyleDefault.Reverse(true)
	for x := 0; x < width; x++ {
		app.screen.SetContent(x, y, ' ', nil, style)
	}
	for x, r := range []rune(app.statusLine()) {
		if x >= width {
			break
		}
		app.screen.SetContent(x, y, r, nil, style)
	}
}

func (app *Application) statusLine() string {
	b := app.session.Index().BlockAt(app.session.Selection().Primary().Head)
	name := app.path
	if name == "" {
		name = "[scratch]"
	}
	if app.Modified() {
		name += " *"
	}
	mode := ""
	if b.Auto {
		mode = " auto"
	}
	line := fmt.Sprintf(" %s  block %d/%d %s%s", name, b.Index+1, app.session.Index().Len(), b.Language.Tag(), mode)
	if app.status != "" {
		line += "  " + app.status
	}
	return line
}
