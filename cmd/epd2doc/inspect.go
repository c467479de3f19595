package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/epd2doc/internal/document"
	flag "github.com/spf13/pflag"
)

// runInspect prints the heading and per-page annotation of a generated .docx.
func runInspect(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	fs.SetOutput(stderr)
	asJSON := fs.Bool("json", false, "print the document tree as JSON")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: epd2doc inspect [--json] FILE.docx\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return usageErr(err)
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: inspect takes exactly one file", ErrUsage)
	}

	tree, err := document.Inspect(fs.Arg(0))
	if err != nil {
		return err
	}

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(tree)
	}

	fmt.Fprintf(stdout, "%s\n", tree.Title)
	for _, page := range tree.Children {
		fmt.Fprintf(stdout, "\npage %d", page.Page)
		if page.Image != nil {
			fmt.Fprintf(stdout, " (%.2fin)", float64(page.Image.WidthEMU)/document.EMUPerInch)
		}
		fmt.Fprintln(stdout)
		for _, line := range page.Lines() {
			fmt.Fprintf(stdout, "  %s\n", strings.TrimSpace(line))
		}
	}
	return nil
}
