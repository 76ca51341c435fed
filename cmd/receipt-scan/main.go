package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/backoffice-tools/receipt-ocr/internal/common"
	"github.com/backoffice-tools/receipt-ocr/internal/ocr"
	"github.com/backoffice-tools/receipt-ocr/internal/parser"
	"github.com/backoffice-tools/receipt-ocr/internal/pipeline"
	"github.com/backoffice-tools/receipt-ocr/internal/sheets"
)

// receipt-scan runs the OCR and structuring stages over a single image and
// prints the structured record as JSON. With -write it also appends the
// record to the month sheet of the workbook.
func main() {
	write := flag.Bool("write", false, "append the parsed record to the workbook")
	debug := flag.Bool("debug", false, "log at debug level")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if flag.NArg() != 1 {
		logger.Error("usage", "cmd", "receipt-scan [-write] [-debug] <image-path>")
		os.Exit(2)
	}
	imagePath := flag.Arg(0)

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("loading .env", "error", err)
	}
	cfg := common.LoadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	p := parser.New(parser.Config{}, logger)
	extractor := ocr.NewExtractor(ocr.Config{
		Tesseract:           cfg.OCR.Tesseract,
		TesseractLang:       cfg.OCR.TesseractLang,
		TessdataDir:         cfg.OCR.TessdataDir,
		PSM:                 cfg.OCR.PSM,
		OEM:                 cfg.OCR.OEM,
		EnableTSVConfidence: true,
	}, logger)
	processor := pipeline.NewProcessor(logger, extractor, p, nil, cfg.OCR.MinConfidence)

	start := time.Now()
	res, err := processor.ProcessImage(ctx, imagePath)
	if err != nil {
		logger.Error("processing failed", "path", imagePath, "error", err)
		os.Exit(1)
	}
	logger.Info("processed",
		"path", imagePath,
		"confidence", res.Confidence,
		"needs_review", res.NeedsReview,
		"duration", time.Since(start).String(),
	)

	if *write {
		store := sheets.NewStore(
			cfg.Sheets.WorkbookPath,
			sheets.NewExistenceCache(cfg.Sheets.CacheSize),
			logger,
		)
		appended, err := store.Append(res.Receipt)
		if err != nil {
			logger.Error("workbook append failed", "error", err)
			os.Exit(1)
		}
		logger.Info("appended",
			"sheet", appended.SheetName,
			"row", appended.RowNumber,
			"workbook", cfg.Sheets.WorkbookPath,
		)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res.Receipt); err != nil {
		logger.Error("encode result", "error", err)
		os.Exit(1)
	}
}
