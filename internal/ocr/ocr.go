// Package ocr turns receipt files into plain text using external tools
// (pdftotext, pdftoppm, tesseract). Plain-text files pass through directly.
package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/oduya/receipt-tracker/constants"
)

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng"
	DPI           int    // rasterization DPI for scanned PDFs, default 300
	MaxPages      int    // 0 = no limit

	TessdataDir         string
	EnableTSVConfidence bool

	PSM int // e.g., 6 is good for uniform block of text
	OEM int // 1 = LSTM; leave 0 to use default

	// MinPDFTextLength decides when the PDF text layer is too sparse and
	// the pages should be rasterized and OCRed instead. Default 20.
	MinPDFTextLength int
}

type ExtractionResult struct {
	Text       string
	Pages      int
	SourceType string // constants.PDF | constants.IMAGE | constants.TXT
	Method     string // "pdf-text" | "pdf-ocr" | "image-ocr" | "plain-text"
	Language   string
	Duration   time.Duration
	Warnings   []string
	Confidence float32
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.MinPDFTextLength <= 0 {
		cfg.MinPDFTextLength = 20
	}
	return &Extractor{cfg: cfg, runner: newExecRunner(logger), logger: logger}
}

// Extract picks a strategy based on file extension.
func (e *Extractor) Extract(ctx context.Context, path string) (ExtractionResult, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	e.logger.Debug("starting text extraction", "path", path, "ext", ext)

	switch constants.MapExtToFormat(ext) {
	case constants.PDF:
		res, err := e.extractPDF(ctx, path)
		res.Duration = time.Since(start)
		return res, err
	case constants.IMAGE:
		res, err := e.extractImage(ctx, path)
		res.Duration = time.Since(start)
		return res, err
	case constants.TXT:
		res, err := e.extractPlainText(path)
		res.Duration = time.Since(start)
		return res, err
	default:
		e.logger.Error("unsupported extension", "extension", ext)
		return ExtractionResult{}, fmt.Errorf("unsupported extension: %q", ext)
	}
}

// extractPlainText reads the file as-is; no external tools involved.
func (e *Extractor) extractPlainText(path string) (ExtractionResult, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return ExtractionResult{SourceType: constants.TXT}, err
	}
	txt := Normalize(string(b))
	return ExtractionResult{
		Text:       txt,
		Pages:      1,
		SourceType: constants.TXT,
		Method:     "plain-text",
		Language:   e.cfg.TesseractLang,
		Confidence: 1.0,
	}, nil
}
