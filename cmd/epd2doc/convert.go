package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dgallion1/epd2doc/internal/board"
	"github.com/dgallion1/epd2doc/internal/document"
	"github.com/dgallion1/epd2doc/internal/pipeline"
	flag "github.com/spf13/pflag"
)

// lockedMessage is printed when the output could not be written because it is
// open elsewhere. The run still succeeds.
const lockedMessage = "Error in saving the output. Please close the file if it is open."

// newRenderer and newSaver are replaced in tests.
var (
	newRenderer = func(size int) board.Renderer { return board.NewBridge(size) }
	newSaver    = func() document.Saver { return document.Saver{} }
)

func runConvert(args []string, stdout, stderr io.Writer) error {
	flags, err := parseConvertFlags(args, stderr)
	if err != nil {
		return usageErr(err)
	}
	if flags.version {
		fmt.Fprintln(stdout, Version)
		return nil
	}

	cfg, err := flags.resolveConfig()
	if err != nil {
		return err
	}
	log := cliLogger(flags.common, stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	driver := pipeline.NewDriver(newRenderer(cfg.BoardPixelSize), log).WithSaver(newSaver())
	res, err := driver.Run(ctx, cfg)
	if err != nil {
		return err
	}
	if !res.Save.Saved() {
		fmt.Fprintln(stderr, lockedMessage)
	}
	return nil
}

// usageErr tags flag parsing failures so they map to ExitUsage.
func usageErr(err error) error {
	if errors.Is(err, flag.ErrHelp) || errors.Is(err, ErrUsage) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUsage, err)
}
