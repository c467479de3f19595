package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/epd2doc/internal/annotate"
	"github.com/dgallion1/epd2doc/internal/board"
	"github.com/dgallion1/epd2doc/internal/config"
	"github.com/dgallion1/epd2doc/internal/document"
	"github.com/dgallion1/epd2doc/internal/epd"
	"github.com/dgallion1/epd2doc/internal/loader"
	"github.com/dgallion1/epd2doc/internal/markup"
)

// Recorder receives pipeline measurements. A nil Recorder is allowed.
type Recorder interface {
	RecordRender(seconds float64)
	RecordRun(status string, pages int)
}

// Options are the per-run document settings.
type Options struct {
	Header      string
	Orientation string
	Flags       annotate.Flags
	Limit       int
	ImageInches float64
	Workers     int
}

// OptionsFrom derives run options from cfg, clamping the position limit.
func OptionsFrom(cfg config.Config) Options {
	return Options{
		Header:      cfg.Header,
		Orientation: cfg.BoardOrientation,
		Flags: annotate.Flags{
			FEN:     cfg.ShowFEN,
			BM:      cfg.ShowBM,
			ID:      cfg.ShowID,
			Comment: cfg.ShowC0,
		},
		Limit:       cfg.EffectiveLimit(),
		ImageInches: cfg.DocImageInches,
		Workers:     max(1, cfg.RenderWorkers),
	}
}

// Result describes a finished run.
type Result struct {
	RunID string
	Pages int
	Save  document.SaveResult
}

// Driver turns position records into a document.
type Driver struct {
	renderer board.Renderer
	saver    document.Saver
	metrics  Recorder
	log      *slog.Logger
}

// NewDriver creates a driver that renders diagrams with renderer.
func NewDriver(renderer board.Renderer, log *slog.Logger) *Driver {
	return &Driver{renderer: renderer, log: log}
}

// WithSaver replaces the filesystem saver used by Run.
func (d *Driver) WithSaver(s document.Saver) *Driver {
	d.saver = s
	return d
}

// WithMetrics attaches a measurement recorder.
func (d *Driver) WithMetrics(m Recorder) *Driver {
	d.metrics = m
	return d
}

// Run loads cfg.EPDFile, builds the document and saves it to cfg.OutputFile.
// A locked destination is not an error; check Result.Save.
func (d *Driver) Run(ctx context.Context, cfg config.Config) (Result, error) {
	run := NewRun()
	log := d.log.With("run_id", run.ID)
	res := Result{RunID: run.ID}

	run.SetStatus(StatusLoading, "loading")
	records, err := loader.Load(cfg.EPDFile, cfg.RandomizePosition)
	if err != nil {
		log.Error("load failed", "path", cfg.EPDFile, "error", err)
		d.Finish(run, "loading", err, 0)
		return res, err
	}
	log.Info("loaded positions", "path", cfg.EPDFile, "records", len(records), "shuffled", cfg.RandomizePosition)

	w := document.ForFile(cfg.OutputFile)
	pages, err := d.Build(ctx, run, records, OptionsFrom(cfg), w)
	res.Pages = pages
	if err != nil {
		return res, err
	}

	run.SetStatus(StatusPersisting, "persisting")
	saved, err := d.saver.Save(w, cfg.OutputFile)
	res.Save = saved
	if err != nil {
		log.Error("save failed", "path", cfg.OutputFile, "error", err)
		d.Finish(run, "persisting", err, pages)
		return res, err
	}
	if !saved.Saved() {
		log.Warn("output not saved, destination is locked", "path", cfg.OutputFile, "error", saved.Err)
	} else {
		log.Info("saved document", "path", cfg.OutputFile, "pages", pages)
	}
	d.Finish(run, "done", nil, pages)
	return res, nil
}

// Build appends the heading and one page per record to w, stopping after
// opts.Limit records. Records are parsed in order and the first parse or
// render error aborts the build.
func (d *Driver) Build(ctx context.Context, run *Run, records []string, opts Options, w document.Writer) (int, error) {
	log := d.log.With("run_id", run.ID)
	limit := max(1, opts.Limit)
	n := min(limit, len(records))
	run.SetLoaded(len(records), limit)

	w.AddHeading(markup.Parse(opts.Header))

	run.SetStatus(StatusRendering, "rendering")
	workers := max(1, opts.Workers)
	processed := 0
	for start := 0; start < n; start += workers {
		if err := ctx.Err(); err != nil {
			d.Finish(run, "rendering", err, processed)
			return processed, err
		}
		end := min(n, start+workers)

		positions := make([]*epd.Position, 0, end-start)
		for i := start; i < end; i++ {
			pos, err := epd.Parse(records[i])
			if err != nil {
				log.Error("parse failed", "index", i, "error", err)
				d.Finish(run, "parsing", err, processed)
				return processed, err
			}
			positions = append(positions, pos)
		}

		images, err := d.renderBatch(positions, opts.Orientation)
		if err != nil {
			log.Error("render failed", "index", start, "error", err)
			d.Finish(run, "rendering", err, processed)
			return processed, err
		}

		for i, pos := range positions {
			if err := w.AddImage(images[i], opts.ImageInches); err != nil {
				err = fmt.Errorf("position %d: %w", start+i, err)
				d.Finish(run, "rendering", err, processed)
				return processed, err
			}
			w.AddParagraph(annotate.Compose(pos, opts.Flags))
			processed++
			run.IncrProcessed()
			log.Debug("page added", "index", start+i, "fen", pos.FEN)
		}
	}
	return processed, nil
}

// renderBatch renders positions concurrently into their own buffers and
// returns the images in input order.
func (d *Driver) renderBatch(positions []*epd.Position, mode string) ([]board.Image, error) {
	images := make([]board.Image, len(positions))
	if len(positions) == 1 {
		img, err := d.render(positions[0], mode)
		images[0] = img
		return images, err
	}

	type renderResult struct {
		img board.Image
		err error
		idx int
	}
	results := make(chan renderResult, len(positions))
	var wg sync.WaitGroup
	for i, pos := range positions {
		wg.Add(1)
		go func(i int, pos *epd.Position) {
			defer wg.Done()
			img, err := d.render(pos, mode)
			results <- renderResult{img: img, err: err, idx: i}
		}(i, pos)
	}
	wg.Wait()
	close(results)

	errs := make([]error, len(positions))
	for r := range results {
		images[r.idx] = r.img
		errs[r.idx] = r.err
	}
	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("render position %d of batch: %w", i, err)
		}
	}
	return images, nil
}

func (d *Driver) render(pos *epd.Position, mode string) (board.Image, error) {
	start := time.Now()
	img, err := d.renderer.Render(pos.Board(), board.Resolve(mode, pos.Turn()))
	if d.metrics != nil && err == nil {
		d.metrics.RecordRender(time.Since(start).Seconds())
	}
	return img, err
}

// Finish closes out run, recording err when it is non-nil.
func (d *Driver) Finish(run *Run, phase string, err error, pages int) {
	status := StatusDone
	if err != nil {
		run.Fail(phase, err)
		status = StatusFailed
	} else {
		run.SetStatus(StatusDone, phase)
	}
	if d.metrics != nil {
		d.metrics.RecordRun(string(status), pages)
	}
}
