// Package document assembles position pages into an output document.
package document

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/dgallion1/epd2doc/internal/annotate"
	"github.com/dgallion1/epd2doc/internal/board"
	"github.com/dgallion1/epd2doc/internal/markup"
)

// EMUPerInch converts inches to English Metric Units.
const EMUPerInch = 914400

// Writer receives document content in order and encodes it once complete.
type Writer interface {
	AddHeading(spans []markup.Span)
	AddImage(img board.Image, widthInches float64) error
	AddParagraph(p annotate.Paragraph)
	Encode(w io.Writer) error
}

// Format names an output document format.
type Format string

const (
	FormatDOCX Format = "docx"
	FormatHTML Format = "html"
)

// FormatFor picks the output format from a file name. Anything that is not
// .html or .htm is written as docx.
func FormatFor(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".html", ".htm":
		return FormatHTML
	default:
		return FormatDOCX
	}
}

// New returns an empty writer for format.
func New(format Format) (Writer, error) {
	switch format {
	case FormatDOCX, "":
		return NewDocx(), nil
	case FormatHTML:
		return NewHTML(), nil
	default:
		return nil, fmt.Errorf("unsupported document format: %s", format)
	}
}

// ForFile returns an empty writer matching filename's extension.
func ForFile(filename string) Writer {
	w, _ := New(FormatFor(filename))
	return w
}

// ContentType returns the MIME type of format.
func ContentType(format Format) string {
	if format == FormatHTML {
		return "text/html; charset=utf-8"
	}
	return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}

// SaveStatus is the outcome of persisting a document.
type SaveStatus string

const (
	StatusSaved  SaveStatus = "saved"
	StatusLocked SaveStatus = "locked"
)

// SaveResult tells a caller whether the document reached disk. A locked or
// permission-denied destination is reported here rather than as an error.
type SaveResult struct {
	Status SaveStatus
	Path   string
	Err    error // cause of a StatusLocked result
}

func (r SaveResult) Saved() bool { return r.Status == StatusSaved }

// Saver writes documents to the filesystem.
type Saver struct {
	// Create opens the destination; nil means os.Create.
	Create func(path string) (io.WriteCloser, error)
}

// Save encodes w to path. Errors other than a locked destination are
// returned as errors.
func (s Saver) Save(w Writer, path string) (SaveResult, error) {
	create := s.Create
	if create == nil {
		create = func(p string) (io.WriteCloser, error) { return os.Create(p) }
	}

	f, err := create(path)
	if err != nil {
		if IsLocked(err) {
			return SaveResult{Status: StatusLocked, Path: path, Err: err}, nil
		}
		return SaveResult{Path: path}, fmt.Errorf("create %s: %w", path, err)
	}
	if err := w.Encode(f); err != nil {
		f.Close()
		return SaveResult{Path: path}, fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return SaveResult{Path: path}, fmt.Errorf("close %s: %w", path, err)
	}
	return SaveResult{Status: StatusSaved, Path: path}, nil
}

// Save encodes w to path with the default Saver.
func Save(w Writer, path string) (SaveResult, error) {
	return Saver{}.Save(w, path)
}

// IsLocked reports whether err means the destination is in use by another
// process or not writable by this one.
func IsLocked(err error) bool {
	return errors.Is(err, fs.ErrPermission) ||
		errors.Is(err, syscall.EBUSY) ||
		errors.Is(err, syscall.ETXTBSY) ||
		isSharingViolation(err)
}
