package app

import (
	"errors"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/blockpad/internal/document/enforce"
	"github.com/dshills/blockpad/internal/document/index"
	"github.com/dshills/blockpad/internal/editor"
	"github.com/dshills/blockpad/internal/engine/cursor"
	"github.com/dshills/blockpad/internal/lang"
)

// HandleEvent routes one terminal event. It returns ErrQuit when the
// user asked to exit.
func (app *Application) HandleEvent(ev tcell.Event) error {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		if app.screen != nil {
			app.screen.Sync()
		}
		return nil
	case *tcell.EventKey:
		return app.handleKey(ev)
	default:
		return nil
	}
}

// arrowMotions maps arrow and navigation keys to cursor motions.
var arrowMotions = map[tcell.Key]editor.Motion{
	tcell.KeyLeft:  editor.MoveLeft,
	tcell.KeyRight: editor.MoveRight,
	tcell.KeyUp:    editor.MoveUp,
	tcell.KeyDown:  editor.MoveDown,
	tcell.KeyHome:  editor.MoveLineStart,
	tcell.KeyEnd:   editor.MoveLineEnd,
}

func (app *Application) handleKey(ev *tcell.EventKey) error {
	s := app.session
	mods := ev.Modifiers()
	k := ev.Key()

	if k != tcell.KeyCtrlQ {
		app.quitArmed = false
	}

	switch {
	case k == tcell.KeyCtrlQ:
		if app.Modified() && !app.quitArmed {
			app.quitArmed = true
			app.setStatus("unsaved changes, press Ctrl+Q again to quit")
			return nil
		}
		return ErrQuit

	case k == tcell.KeyCtrlS:
		if err := app.Save(); err != nil {
			app.setStatus("%v", err)
		} else {
			app.setStatus("saved %s", app.path)
		}

	case k == tcell.KeyCtrlZ:
		app.report(s.Undo())
	case k == tcell.KeyCtrlY:
		app.report(s.Redo())
	case k == tcell.KeyCtrlA:
		s.SelectAll()
	case k == tcell.KeyEscape:
		s.SetSelection(cursor.NewSetAt(s.Selection().Primary().Head))

	case k == tcell.KeyCtrlN:
		app.edit(s.AddBlockAfterCurrent(lang.Plain, true))
	case k == tcell.KeyCtrlE:
		app.edit(s.AddBlockAfterLast(lang.Plain, true))
	case k == tcell.KeyCtrlK:
		app.edit(s.SplitBlock())
	case k == tcell.KeyCtrlD:
		app.edit(s.DeleteBlock())
	case k == tcell.KeyCtrlF:
		app.edit(s.FormatBlock())
	case k == tcell.KeyCtrlL:
		b := app.currentBlock()
		app.edit(s.ChangeLanguage(nextLanguage(b.Language), false))
	case k == tcell.KeyCtrlT:
		b := app.currentBlock()
		app.edit(s.ChangeLanguage(b.Language, !b.Auto))

	case k == tcell.KeyUp && mods&tcell.ModAlt != 0:
		moved, err := s.MoveLineUp()
		if err == nil && !moved {
			app.setStatus("cannot move above the first line")
		}
		app.report(err)
	case k == tcell.KeyPgUp, k == tcell.KeyUp && mods&tcell.ModCtrl != 0:
		s.GotoPreviousBlock()
	case k == tcell.KeyPgDn, k == tcell.KeyDown && mods&tcell.ModCtrl != 0:
		s.GotoNextBlock()
	case k == tcell.KeyHome && mods&tcell.ModCtrl != 0:
		s.Move(editor.MoveDocumentStart, mods&tcell.ModShift != 0)
	case k == tcell.KeyEnd && mods&tcell.ModCtrl != 0:
		s.Move(editor.MoveDocumentEnd, mods&tcell.ModShift != 0)

	case k == tcell.KeyEnter:
		app.edit(s.InsertNewline())
	case k == tcell.KeyBackspace || k == tcell.KeyBackspace2:
		app.edit(s.DeleteBackward())
	case k == tcell.KeyDelete:
		app.edit(s.DeleteForward())
	case k == tcell.KeyTab:
		app.edit(s.InsertText(app.Config().Editor.IndentUnit))
	case k == tcell.KeyRune:
		app.edit(s.InsertText(string(ev.Rune())))

	default:
		if m, ok := arrowMotions[k]; ok {
			s.Move(m, mods&tcell.ModShift != 0)
		}
	}
	return nil
}

func (app *Application) currentBlock() index.Block {
	ix := app.session.Index()
	head := app.session.Selection().Primary().Head
	if b, ok := ix.ContentBlockAt(head); ok {
		return b
	}
	return ix.BlockAt(head)
}

// nextLanguage cycles through the registered languages.
func nextLanguage(l lang.Language) lang.Language {
	all := lang.All()
	for i, cand := range all {
		if cand == l {
			return all[(i+1)%len(all)]
		}
	}
	return lang.Plain
}

// edit records the outcome of an editing command.
func (app *Application) edit(v enforce.Verdict, err error) {
	if err != nil {
		app.report(err)
		return
	}
	app.metrics.RecordVerdict(v)
	if v.Action == enforce.Rejected {
		app.setStatus("edit not allowed here")
	}
}

// report shows a command error on the status line.
func (app *Application) report(err error) {
	switch {
	case err == nil:
	case errors.Is(err, editor.ErrNotJSON):
		app.setStatus("block is not JSON")
	default:
		app.setStatus("%v", err)
	}
}
