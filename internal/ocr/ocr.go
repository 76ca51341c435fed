package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"time"

	"github.com/backoffice-tools/receipt-ocr/constants"
)

// Config controls how tesseract is invoked.
type Config struct {
	Tesseract     string // binary name or absolute path; if empty -> "tesseract"
	TesseractLang string // default "jpn"
	TessdataDir   string

	PSM int // 6 = uniform block of text, right for receipts
	OEM int // 3 = default engine (LSTM where available)

	EnableTSVConfidence bool
}

// ExtractionResult is the OCR output handed to the parsing stage.
type ExtractionResult struct {
	Text       string
	Method     string // "image-ocr"
	Language   string
	Duration   time.Duration
	Warnings   []string
	Confidence float64
}

// Extractor runs tesseract over receipt images. The raw bytes never enter
// this process; tesseract reads the file directly.
type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "jpn"
	}
	if cfg.PSM == 0 {
		cfg.PSM = 6
	}
	if cfg.OEM == 0 {
		cfg.OEM = 3
	}
	return &Extractor{cfg: cfg, runner: execRunner{}, logger: logger}
}

// Extract OCRs a single receipt image and returns cleaned text plus a
// confidence in 0..1.
func (e *Extractor) Extract(ctx context.Context, path string) (ExtractionResult, error) {
	start := time.Now()
	ext := filepath.Ext(path)
	if !constants.IsImageExt(ext) {
		e.logger.Error("unsupported ocr extension", "extension", ext)
		return ExtractionResult{}, fmt.Errorf("unsupported extension: %q", ext)
	}

	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, e.args(path)...)
	if err != nil {
		return ExtractionResult{Warnings: []string{string(errb)}}, fmt.Errorf("tesseract: %w", err)
	}
	txt := CleanText(string(out))

	var warns []string
	ocrConf := 0.0
	if e.cfg.EnableTSVConfidence {
		c, err2 := e.tsvConfidence(ctx, path)
		if err2 != nil {
			warns = append(warns, err2.Error())
		} else {
			ocrConf = c
		}
	}
	heurConf := heuristicConfidence(txt)

	// blend: weight the engine's own confidence higher when available
	conf := heurConf
	if ocrConf > 0 {
		conf = 0.7*ocrConf + 0.3*heurConf
	}
	if conf > 1.0 {
		conf = 1.0
	}

	res := ExtractionResult{
		Text:       txt,
		Method:     "image-ocr",
		Language:   e.cfg.TesseractLang,
		Duration:   time.Since(start),
		Warnings:   warns,
		Confidence: conf,
	}
	e.logger.Debug("ocr extraction done",
		"path", path,
		"chars", len(txt),
		"confidence", conf,
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

func (e *Extractor) args(path string, extra ...string) []string {
	args := []string{path, "stdout", "-l", e.cfg.TesseractLang}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(e.cfg.PSM))
	}
	if e.cfg.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(e.cfg.OEM))
	}
	return append(args, extra...)
}
