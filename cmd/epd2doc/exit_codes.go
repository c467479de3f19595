package main

import (
	"errors"
	"os"

	"github.com/dgallion1/epd2doc/internal/epd"
	"github.com/dgallion1/epd2doc/internal/loader"
	flag "github.com/spf13/pflag"
)

// Exit codes for the epd2doc CLI.
const (
	ExitSuccess = 0 // Conversion finished, including a skipped save on a locked output
	ExitGeneral = 1 // General/unexpected error, including render failures
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // Input missing or unreadable, output not writable
	ExitParse   = 4 // Malformed EPD/FEN record
)

// ErrUsage marks invalid invocations.
var ErrUsage = errors.New("usage error")

// exitCodeFor returns the appropriate exit code for an error.
func exitCodeFor(err error) int {
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}

	var parseErr *epd.ParseError
	if errors.As(err, &parseErr) {
		return ExitParse
	}

	var accessErr *loader.InputAccessError
	if errors.As(err, &accessErr) ||
		errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) {
		return ExitIO
	}

	if errors.Is(err, ErrUsage) {
		return ExitUsage
	}

	return ExitGeneral
}
