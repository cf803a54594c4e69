package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/dshills/blockpad/internal/app"
	"github.com/dshills/blockpad/internal/config"
	"github.com/dshills/blockpad/internal/document"
	"github.com/dshills/blockpad/internal/editor"
	"github.com/dshills/blockpad/internal/engine/buffer"
	"github.com/dshills/blockpad/internal/engine/cursor"
	"github.com/dshills/blockpad/internal/lang"
	"github.com/dshills/blockpad/internal/render"
	"github.com/dshills/blockpad/internal/syntax/highlight"
)

// command is one blockpad subcommand.
type command struct {
	summary string
	run     func(args []string, stdout, stderr io.Writer) int
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"index":     {"print the block list as JSON", runIndex},
		"highlight": {"print the highlight tokens of every block", runHighlight},
		"folds":     {"print the foldable ranges", runFolds},
		"detect":    {"detect the language of auto blocks", runDetect},
		"format":    {"pretty-print the JSON blocks", runFormat},
		"view":      {"render the document as plain text rows", runView},
	}
}

func commandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// commandEnv is what every subcommand starts from.
type commandEnv struct {
	fs         *flag.FlagSet
	configPath string
	stderr     io.Writer
}

func newCommandEnv(name string, stderr io.Writer) *commandEnv {
	env := &commandEnv{fs: flag.NewFlagSet("blockpad "+name, flag.ContinueOnError), stderr: stderr}
	env.fs.SetOutput(stderr)
	env.fs.StringVar(&env.configPath, "config", "", "Path to configuration file (.toml or .yaml)")
	env.fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: blockpad %s [options] file\n\n", name)
		fmt.Fprintf(stderr, "A file of \"-\" reads standard input.\n\nOptions:\n")
		env.fs.PrintDefaults()
	}
	return env
}

// parse parses args and loads the configuration and the one file
// argument. It returns an exit code when the command should stop.
func (env *commandEnv) parse(args []string) (cfg *config.Config, path, text string, code int) {
	if err := env.fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, "", "", 0
		}
		return nil, "", "", 2
	}
	if env.fs.NArg() != 1 {
		env.fs.Usage()
		return nil, "", "", 2
	}

	cfg, err := config.Load(env.configPath)
	if err != nil {
		fmt.Fprintf(env.stderr, "Error: %v\n", err)
		return nil, "", "", 1
	}

	path = env.fs.Arg(0)
	var data []byte
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		fmt.Fprintf(env.stderr, "Error: %v\n", err)
		return nil, "", "", 1
	}
	return cfg, path, buffer.NormalizeNewlines(string(data)), -1
}

func (env *commandEnv) logger(cfg *config.Config) *app.Logger {
	return app.NewLogger(app.LoggerConfig{
		Level:  app.ParseLogLevel(cfg.Logging.Level),
		Output: env.stderr,
		Prefix: "blockpad",
	})
}

// runIndex prints the blocks of a document as JSON. The text is indexed
// as it is, without seeding a first delimiter.
func runIndex(args []string, stdout, stderr io.Writer) int {
	env := newCommandEnv("index", stderr)
	_, _, text, code := env.parse(args)
	if code >= 0 {
		return code
	}

	ix := document.New(text).Index()
	out := `{"blocks":[],"markers":[],"bands":[]}`
	var err error
	set := func(path string, value any) {
		if err == nil {
			out, err = sjson.Set(out, path, value)
		}
	}
	for _, b := range ix.Blocks() {
		p := fmt.Sprintf("blocks.%d.", b.Index)
		set(p+"index", b.Index)
		set(p+"language", b.Language.Tag())
		set(p+"auto", b.Auto)
		set(p+"implicit", b.Implicit)
		if !b.Implicit {
			set(p+"delimiter", []int{b.Delimiter.Start, b.Delimiter.End})
		}
		set(p+"content", []int{b.Content.Start, b.Content.End})
		set(p+"text", ix.Content(b.Index))
	}
	deco := ix.Decorations()
	for i, m := range deco.Markers {
		p := fmt.Sprintf("markers.%d.", i)
		set(p+"kind", m.Kind.String())
		set(p+"block", m.Block)
		set(p+"range", []int{m.Range.Start, m.Range.End})
	}
	for i, band := range deco.Bands {
		p := fmt.Sprintf("bands.%d.", i)
		set(p+"block", band.Block)
		set(p+"parity", band.Parity)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	_, _ = stdout.Write(pretty.Pretty([]byte(out)))
	return 0
}

// runHighlight prints one line per token: range, type and text.
func runHighlight(args []string, stdout, stderr io.Writer) int {
	env := newCommandEnv("highlight", stderr)
	_, _, text, code := env.parse(args)
	if code >= 0 {
		return code
	}

	s := editor.New(text)
	ix := s.Index()
	for _, b := range ix.Blocks() {
		fmt.Fprintf(stdout, "# %s\n", b)
		for _, tok := range s.Tokens(b.Content) {
			if tok.Type == highlight.TokenNone {
				continue
			}
			fmt.Fprintf(stdout, "%d-%d\t%s\t%q\n", tok.Range.Start, tok.Range.End, tok.Type, s.Text()[tok.Range.Start:tok.Range.End])
		}
	}
	return 0
}

// runFolds prints the foldable ranges with their line spans.
func runFolds(args []string, stdout, stderr io.Writer) int {
	env := newCommandEnv("folds", stderr)
	_, _, text, code := env.parse(args)
	if code >= 0 {
		return code
	}

	s := editor.New(text)
	lines := s.Snapshot().Lines()
	for _, r := range s.Folds() {
		fmt.Fprintf(stdout, "%d-%d\tlines %d-%d\n", r.Start, r.End, lines.LineAt(r.Start)+1, lines.LineAt(r.End)+1)
	}
	return 0
}

// runDetect runs the configured detector over every auto block and prints
// the resulting languages. With -w the retagged document is written back.
func runDetect(args []string, stdout, stderr io.Writer) int {
	env := newCommandEnv("detect", stderr)
	write := env.fs.Bool("w", false, "Write the retagged document back to the file")
	timeout := env.fs.Duration("timeout", 30*time.Second, "Give up waiting for detections after this long")
	cfg, path, text, code := env.parse(args)
	if code >= 0 {
		return code
	}

	logger := env.logger(cfg)
	cfg.Detection.Enabled = true
	if cfg.Detection.Classifier == config.ClassifierNone {
		cfg.Detection.Classifier = config.ClassifierChroma
	}
	d, release, err := app.NewDetector(cfg.Detection, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer release()
	if d == nil {
		fmt.Fprintf(stderr, "Error: detection is disabled\n")
		return 1
	}
	if err := d.Start(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer d.Stop(context.Background())

	before := editor.New(text).Index()
	s := editor.New(text, app.SessionOptions(cfg, logger, d)...)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	for s.PendingDetections() > 0 {
		if _, err := s.NextDetection(ctx); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}

	for _, b := range s.Index().Blocks() {
		if !b.Auto {
			continue
		}
		was := before.Block(b.Index).Language
		mark := "="
		if was != b.Language {
			mark = "->"
		}
		fmt.Fprintf(stdout, "block %d\t%s %s %s\n", b.Index+1, was.Tag(), mark, b.Language.Tag())
	}
	return writeResult(s, path, *write, stdout, stderr)
}

// runFormat pretty-prints every JSON block.
func runFormat(args []string, stdout, stderr io.Writer) int {
	env := newCommandEnv("format", stderr)
	write := env.fs.Bool("w", false, "Write the result back to the file instead of standard output")
	cfg, path, text, code := env.parse(args)
	if code >= 0 {
		return code
	}

	s := editor.New(text, editor.WithIndentUnit(cfg.Editor.IndentUnit), editor.WithLogger(env.logger(cfg)))
	failed := 0
	for i := range s.Index().Len() {
		b := s.Index().Block(i)
		if b.Language != lang.JSON {
			continue
		}
		s.SetSelection(cursor.NewSetAt(b.Content.Start))
		if _, err := s.FormatBlock(); err != nil {
			fmt.Fprintf(stderr, "block %d: %v\n", i+1, err)
			failed++
		}
	}
	if !*write {
		_, _ = io.WriteString(stdout, s.Text())
	}
	if code := writeResult(s, path, *write, stdout, stderr); code != 0 {
		return code
	}
	if failed > 0 {
		return 1
	}
	return 0
}

// runView paints the whole document onto an off-screen terminal and prints
// every row, so markers and layout can be inspected without a tty.
func runView(args []string, stdout, stderr io.Writer) int {
	env := newCommandEnv("view", stderr)
	width := env.fs.Int("width", 80, "Render width in columns")
	cfg, _, text, code := env.parse(args)
	if code >= 0 {
		return code
	}
	if *width < 1 {
		fmt.Fprintf(stderr, "Error: invalid width %d\n", *width)
		return 2
	}

	opts, theme, err := app.RenderOptions(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer screen.Fini()

	s := editor.New(text)
	ix := s.Index()
	rows := render.Layout(ix)
	screen.SetSize(*width, max(len(rows), 1))
	render.NewPainter(screen, theme, opts).Paint(render.Frame{
		Index:     ix,
		Tokens:    s.Tokens(buffer.NewRange(0, len(ix.Text()))),
		Selection: s.Selection(),
	})

	cells, w, h := screen.GetContents()
	for y := 0; y < h; y++ {
		var line strings.Builder
		for x := 0; x < w; x++ {
			line.WriteString(string(cells[y*w+x].Runes))
		}
		fmt.Fprintln(stdout, strings.TrimRight(line.String(), " "))
	}
	return 0
}

// writeResult writes the session text back to path when write is set. A
// path of "-" writes to stdout instead.
func writeResult(s *editor.Session, path string, write bool, stdout, stderr io.Writer) int {
	if !write {
		return 0
	}
	if path == "-" {
		_, _ = io.WriteString(stdout, s.Text())
		return 0
	}
	if err := os.WriteFile(path, []byte(s.Text()), 0o644); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
