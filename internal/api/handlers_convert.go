package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dgallion1/epd2doc/internal/config"
	"github.com/dgallion1/epd2doc/internal/document"
	"github.com/dgallion1/epd2doc/internal/epd"
	"github.com/dgallion1/epd2doc/internal/loader"
	"github.com/dgallion1/epd2doc/internal/pipeline"
)

// handleConvert turns an uploaded EPD file into a document. The body is
// either the raw EPD text or a multipart form with a "file" field; query
// parameters override the server's conversion settings.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	cfg, format, err := convertConfig(s.cfg, r.URL.Query())
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, filename, err := s.readUpload(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge), errors.Is(err, errUploadTooLarge):
			jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		default:
			jsonError(w, err.Error(), http.StatusBadRequest)
		}
		return
	}

	records, err := loader.Read(bytes.NewReader(data))
	if err != nil {
		jsonError(w, "failed to read positions: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(records) == 0 {
		jsonError(w, "no positions in upload", http.StatusBadRequest)
		return
	}
	if cfg.RandomizePosition {
		loader.Shuffle(records)
	}

	out, err := document.New(format)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	run := pipeline.NewRun()
	s.runs.add(run)
	log := s.log.With("run_id", run.ID)
	driver := pipeline.NewDriver(s.renderer(cfg.BoardPixelSize), s.log)
	if s.metrics != nil {
		driver.WithMetrics(s.metrics)
	}

	pages, err := driver.Build(r.Context(), run, records, pipeline.OptionsFrom(cfg), out)
	if err != nil {
		var parseErr *epd.ParseError
		if errors.As(err, &parseErr) {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Error("conversion failed", "error", err)
		jsonError(w, "conversion failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	run.SetStatus(pipeline.StatusPersisting, "persisting")
	var buf bytes.Buffer
	if err := out.Encode(&buf); err != nil {
		driver.Finish(run, "persisting", err, pages)
		log.Error("encode failed", "error", err)
		jsonError(w, "failed to encode document", http.StatusInternalServerError)
		return
	}
	driver.Finish(run, "done", nil, pages)
	log.Info("converted upload", "filename", filename, "records", len(records), "pages", pages, "format", format)

	w.Header().Set("Content-Type", document.ContentType(format))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": outputName(filename, format),
	}))
	w.Header().Set("X-Run-ID", run.ID)
	w.Header().Set("X-Page-Count", strconv.Itoa(pages))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

var errUploadTooLarge = errors.New("upload too large")

// readUpload returns the EPD payload and the client's file name, if any.
func (s *Server) readUpload(r *http.Request) ([]byte, string, error) {
	var (
		src      io.Reader = r.Body
		filename           = "positions.epd"
	)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			return nil, "", fmt.Errorf("invalid multipart form: %w", err)
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, "", fmt.Errorf("file is required: %w", err)
		}
		defer file.Close()
		src = file
		filename = sanitizeFilename(header.Filename)
	}

	data, err := io.ReadAll(io.LimitReader(src, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, "", errUploadTooLarge
	}
	return data, filename, nil
}

// convertConfig overlays query parameters onto base. Parameter names match
// the command-line flags.
func convertConfig(base config.Config, q url.Values) (config.Config, document.Format, error) {
	cfg := base
	format := document.FormatDOCX

	for key, vals := range q {
		v := vals[len(vals)-1]
		var err error
		switch key {
		case "header":
			cfg.Header = v
		case "orientation", "board_orientation":
			cfg.BoardOrientation = v
		case "max_pos":
			cfg.MaxPositions, err = strconv.Atoi(v)
		case "size", "board_image_pixel_size":
			cfg.BoardPixelSize, err = strconv.Atoi(v)
		case "inches", "doc_image_inch_size":
			cfg.DocImageInches, err = strconv.ParseFloat(v, 64)
		case "randomize", "randomize_position":
			cfg.RandomizePosition, err = strconv.ParseBool(v)
		case "show_fen":
			cfg.ShowFEN, err = strconv.ParseBool(v)
		case "show_bm":
			cfg.ShowBM, err = strconv.ParseBool(v)
		case "show_id":
			cfg.ShowID, err = strconv.ParseBool(v)
		case "show_c0":
			cfg.ShowC0, err = strconv.ParseBool(v)
		case "format":
			format = document.Format(strings.ToLower(v))
			if format != document.FormatDOCX && format != document.FormatHTML {
				return cfg, format, fmt.Errorf("unsupported format %q", v)
			}
		default:
			continue
		}
		if err != nil {
			return cfg, format, fmt.Errorf("invalid %s: %q", key, v)
		}
	}

	if err := cfg.ValidateLayout(); err != nil {
		return cfg, format, err
	}
	return cfg, format, nil
}

func outputName(upload string, format document.Format) string {
	base := strings.TrimSuffix(upload, filepath.Ext(upload))
	if base == "" {
		base = "positions"
	}
	return base + "." + string(format)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
