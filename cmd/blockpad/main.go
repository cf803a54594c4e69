// Package main is the entry point for blockpad, a block-structured note
// editor.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/blockpad/internal/app"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 {
		if cmd, ok := commands[args[0]]; ok {
			return cmd.run(args[1:], stdout, stderr)
		}
	}
	return runEditor(args, stdout, stderr)
}

func runEditor(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("blockpad", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		opts        app.Options
		logFile     string
		showVersion bool
	)
	fs.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file (.toml or .yaml)")
	fs.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	fs.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&logFile, "log", "", "Write logs to this file")
	fs.BoolVar(&opts.WatchConfig, "watch-config", true, "Reload the configuration file when it changes")
	fs.BoolVar(&showVersion, "version", false, "Show version information")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "blockpad - block-structured notes\n\n")
		fmt.Fprintf(stderr, "Usage: blockpad [options] [file]\n")
		fmt.Fprintf(stderr, "       blockpad <command> [options] file\n\n")
		fmt.Fprintf(stderr, "Commands:\n")
		for _, name := range commandNames() {
			fmt.Fprintf(stderr, "  %-10s %s\n", name, commands[name].summary)
		}
		fmt.Fprintf(stderr, "\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	if showVersion {
		fmt.Fprintf(stdout, "blockpad %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return 0
	}

	switch opts.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		fmt.Fprintf(stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.LogLevel)
		return 2
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return 2
	}
	opts.File = fs.Arg(0)

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		defer f.Close()
		opts.LogOutput = f
	}

	application, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if application.Modified() {
		fmt.Fprintf(stderr, "blockpad: quit with unsaved changes\n")
	}
	return 0
}
