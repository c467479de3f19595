package loader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"
	"unicode"

	"github.com/dgallion1/epd2doc/internal/epd"
)

// MaxRecordBytes bounds a single line of input.
const MaxRecordBytes = 1 << 20

// InputAccessError reports that the position file could not be read.
type InputAccessError struct {
	Path string
	Err  error
}

func (e *InputAccessError) Error() string {
	return fmt.Sprintf("read positions %s: %v", e.Path, e.Err)
}

func (e *InputAccessError) Unwrap() error { return e.Err }

// Shuffler permutes n elements through swap. *rand.Rand satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// Load reads one position record per line from path. When shuffle is true
// the records are permuted with the global random source.
func Load(path string, shuffle bool) ([]string, error) {
	var s Shuffler
	if shuffle {
		s = globalShuffler{}
	}
	return LoadWith(path, s)
}

// LoadWith is Load with an explicit shuffler; a nil shuffler keeps file order.
func LoadWith(path string, s Shuffler) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &InputAccessError{Path: path, Err: err}
	}
	defer f.Close()

	records, err := Read(f)
	var parseErr *epd.ParseError
	if errors.As(err, &parseErr) {
		return nil, err
	}
	if err != nil {
		return nil, &InputAccessError{Path: path, Err: err}
	}
	if s != nil {
		ShuffleWith(records, s)
	}
	return records, nil
}

// Shuffle permutes records in place with the global random source.
func Shuffle(records []string) { ShuffleWith(records, globalShuffler{}) }

// ShuffleWith permutes records in place with s.
func ShuffleWith(records []string, s Shuffler) {
	s.Shuffle(len(records), func(i, j int) {
		records[i], records[j] = records[j], records[i]
	})
}

// Read splits r into records. Trailing whitespace is stripped from every
// line; lines left empty are skipped. A line longer than MaxRecordBytes is
// reported as an *epd.ParseError.
func Read(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxRecordBytes)

	var records []string
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRightFunc(scanner.Text(), unicode.IsSpace)
		if line == "" {
			continue
		}
		records = append(records, line)
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, &epd.ParseError{
				Record: fmt.Sprintf("line %d", lineNo+1),
				Err:    fmt.Errorf("record exceeds %d bytes", MaxRecordBytes),
			}
		}
		return nil, err
	}
	return records, nil
}

type globalShuffler struct{}

func (globalShuffler) Shuffle(n int, swap func(i, j int)) { rand.Shuffle(n, swap) }
