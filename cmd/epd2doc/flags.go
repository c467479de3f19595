package main

import (
	"fmt"
	"io"

	"github.com/dgallion1/epd2doc/internal/config"
	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// convertFlags holds the conversion flags. Only flags set on the command
// line override the environment and config file.
type convertFlags struct {
	common  commonFlags
	version bool

	epdFile     string
	outputFile  string
	orientation string
	maxPos      int
	pixelSize   int
	inchSize    float64
	header      string
	showFEN     bool
	showBM      bool
	showID      bool
	showC0      bool
	randomize   bool
	workers     int

	set *flag.FlagSet
}

func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "YAML config file")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only log warnings and errors")
	fs.BoolVar(&f.verbose, "verbose", false, "log every page")
}

func parseConvertFlags(args []string, stderr io.Writer) (*convertFlags, error) {
	fs := flag.NewFlagSet("epd2doc", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SortFlags = false
	f := &convertFlags{set: fs}

	// I/O flags
	fs.StringVar(&f.epdFile, "epd-file", "", "file with one EPD or FEN position per line (required)")
	fs.StringVar(&f.outputFile, "output-file", "", "output document, .docx or .html (required)")

	// Layout flags
	fs.StringVar(&f.orientation, "board-orientation", config.OrientSide, "diagram orientation: side, white or black")
	fs.IntVar(&f.maxPos, "max-pos", 1000, "maximum number of positions to embed (min 1, max 1e6)")
	fs.IntVar(&f.pixelSize, "board-image-pixel-size", 0, "board image size in pixels (0 = renderer default)")
	fs.Float64Var(&f.inchSize, "doc-image-inch-size", 3.0, "board image width in the document, in inches")
	fs.StringVar(&f.header, "header", "Chess Positions", "text at the top of the document")

	// Annotation flags
	fs.BoolVar(&f.showFEN, "show-fen", false, "print the FEN under each diagram")
	fs.BoolVar(&f.showBM, "show-bm", false, "print the best moves under each diagram")
	fs.BoolVar(&f.showID, "show-id", false, "print the id opcode under each diagram")
	fs.BoolVar(&f.showC0, "show-c0", false, "print the c0 comment under each diagram")

	fs.BoolVar(&f.randomize, "randomize-position", false, "shuffle positions before embedding")
	fs.IntVar(&f.workers, "render-workers", 1, "boards rendered concurrently")
	fs.BoolVarP(&f.version, "version", "v", false, "print the version and exit")
	addCommonFlags(fs, &f.common)

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: epd2doc --epd-file FILE --output-file FILE [flags]\n")
		fmt.Fprintf(stderr, "       epd2doc inspect FILE.docx\n")
		fmt.Fprintf(stderr, "       epd2doc serve\n\nFlags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected argument %q", ErrUsage, fs.Arg(0))
	}
	return f, nil
}

// resolveConfig layers env, then the config file, then explicitly set flags.
func (f *convertFlags) resolveConfig() (config.Config, error) {
	cfg := config.Load()
	if f.common.config != "" {
		var err error
		if cfg, err = config.LoadFile(cfg, f.common.config); err != nil {
			return cfg, fmt.Errorf("%w: %v", ErrUsage, err)
		}
	}

	f.set.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "epd-file":
			cfg.EPDFile = f.epdFile
		case "output-file":
			cfg.OutputFile = f.outputFile
		case "board-orientation":
			cfg.BoardOrientation = f.orientation
		case "max-pos":
			cfg.MaxPositions = f.maxPos
		case "board-image-pixel-size":
			cfg.BoardPixelSize = f.pixelSize
		case "doc-image-inch-size":
			cfg.DocImageInches = f.inchSize
		case "header":
			cfg.Header = f.header
		case "show-fen":
			cfg.ShowFEN = f.showFEN
		case "show-bm":
			cfg.ShowBM = f.showBM
		case "show-id":
			cfg.ShowID = f.showID
		case "show-c0":
			cfg.ShowC0 = f.showC0
		case "randomize-position":
			cfg.RandomizePosition = f.randomize
		case "render-workers":
			cfg.RenderWorkers = max(1, f.workers)
		}
	})

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return cfg, nil
}
