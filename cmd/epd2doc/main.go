package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Version is set at build time via ldflags.
var Version = "0.4.0"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run dispatches to a subcommand and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 {
		switch args[0] {
		case "inspect":
			return report(runInspect(args[1:], stdout, stderr), stderr)
		case "serve":
			return report(runServe(args[1:], stdout, stderr), stderr)
		case "version":
			fmt.Fprintln(stdout, Version)
			return ExitSuccess
		}
	}
	return report(runConvert(args, stdout, stderr), stderr)
}

func report(err error, stderr io.Writer) int {
	code := exitCodeFor(err)
	if code != ExitSuccess {
		fmt.Fprintf(stderr, "epd2doc: %v\n", err)
	}
	return code
}

// cliLogger logs text to stderr at the level chosen by --quiet/--verbose.
func cliLogger(f commonFlags, stderr io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case f.verbose:
		level = slog.LevelDebug
	case f.quiet:
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
}
