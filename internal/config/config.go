package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/goccy/go-yaml"
)

// Position limit bounds. A requested limit outside this range is clamped, so
// asking for zero positions still emits one page.
const (
	MinPositions = 1
	MaxPositions = 1_000_000
)

// Board orientation modes. Any other value behaves like OrientSide.
const (
	OrientSide  = "side"
	OrientWhite = "white"
	OrientBlack = "black"
)

// Layout bounds. A board is rasterized in memory at BoardPixelSize squared,
// and the image extent is stored in EMUs as an int64.
const (
	MaxBoardPixels = 4096
	MaxImageInches = 20.0
)

// MaxConfigBytes bounds the size of a YAML config file.
const MaxConfigBytes = 1 << 20

type Config struct {
	// Input and output
	EPDFile    string `yaml:"epd_file"`
	OutputFile string `yaml:"output_file"`

	// Document layout
	Header           string  `yaml:"header"`
	BoardOrientation string  `yaml:"board_orientation"`
	BoardPixelSize   int     `yaml:"board_image_pixel_size"` // 0 = renderer default
	DocImageInches   float64 `yaml:"doc_image_inch_size"`

	// Selection
	MaxPositions      int  `yaml:"max_pos"`
	RandomizePosition bool `yaml:"randomize_position"`

	// Annotation
	ShowFEN bool `yaml:"show_fen"`
	ShowBM  bool `yaml:"show_bm"`
	ShowID  bool `yaml:"show_id"`
	ShowC0  bool `yaml:"show_c0"`

	// Rendering
	RenderWorkers int `yaml:"render_workers"`

	// Server
	Port           string `yaml:"port"`
	APIKey         string `yaml:"-"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

func Load() Config {
	cfg := Config{
		EPDFile:    os.Getenv("EPD2DOC_EPD_FILE"),
		OutputFile: os.Getenv("EPD2DOC_OUTPUT_FILE"),

		Header:           envOr("EPD2DOC_HEADER", "Chess Positions"),
		BoardOrientation: envOr("EPD2DOC_BOARD_ORIENTATION", OrientSide),
		BoardPixelSize:   envInt("EPD2DOC_BOARD_IMAGE_PIXEL_SIZE", 0),
		DocImageInches:   envFloat("EPD2DOC_DOC_IMAGE_INCH_SIZE", 3.0),

		MaxPositions:      envInt("EPD2DOC_MAX_POS", 1000),
		RandomizePosition: envBool("EPD2DOC_RANDOMIZE_POSITION", false),

		ShowFEN: envBool("EPD2DOC_SHOW_FEN", false),
		ShowBM:  envBool("EPD2DOC_SHOW_BM", false),
		ShowID:  envBool("EPD2DOC_SHOW_ID", false),
		ShowC0:  envBool("EPD2DOC_SHOW_C0", false),

		RenderWorkers: envInt("EPD2DOC_RENDER_WORKERS", 1),

		Port:           envOr("PORT", "8090"),
		APIKey:         os.Getenv("EPD2DOC_API_KEY"),
		MaxUploadBytes: envInt64("EPD2DOC_MAX_UPLOAD_BYTES", 10485760), // 10MB
	}

	cfg.applyDefaults()
	return cfg
}

// LoadFile overlays the YAML document at path onto cfg. Keys absent from the
// file keep their current values.
func LoadFile(cfg Config, path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if len(data) > MaxConfigBytes {
		return cfg, fmt.Errorf("config %s exceeds %d bytes", path, MaxConfigBytes)
	}
	if err := yaml.UnmarshalWithOptions(data, &cfg, yaml.Strict()); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DocImageInches <= 0 {
		c.DocImageInches = 3.0
	}
	if c.RenderWorkers <= 0 {
		c.RenderWorkers = 1
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = 10485760
	}
	if c.BoardOrientation == "" {
		c.BoardOrientation = OrientSide
	}
}

// Validate checks the settings needed for a file-to-file conversion.
func (c Config) Validate() error {
	if c.EPDFile == "" {
		return fmt.Errorf("epd file is required")
	}
	if c.OutputFile == "" {
		return fmt.Errorf("output file is required")
	}
	return c.ValidateLayout()
}

// ValidateLayout checks the settings shared by every conversion, including
// ones served over HTTP where no paths are involved.
func (c Config) ValidateLayout() error {
	if c.BoardPixelSize < 0 || c.BoardPixelSize > MaxBoardPixels {
		return fmt.Errorf("board image pixel size must be in [0, %d], got %d", MaxBoardPixels, c.BoardPixelSize)
	}
	if !(c.DocImageInches > 0 && c.DocImageInches <= MaxImageInches) {
		return fmt.Errorf("doc image inch size must be in (0, %g], got %g", MaxImageInches, c.DocImageInches)
	}
	return nil
}

// EffectiveLimit clamps MaxPositions into [MinPositions, MaxPositions].
func (c Config) EffectiveLimit() int {
	return max(MinPositions, min(MaxPositions, c.MaxPositions))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
