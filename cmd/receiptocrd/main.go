package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/backoffice-tools/receipt-ocr/internal/common"
	"github.com/backoffice-tools/receipt-ocr/internal/ocr"
	"github.com/backoffice-tools/receipt-ocr/internal/parser"
	"github.com/backoffice-tools/receipt-ocr/internal/pipeline"
	"github.com/backoffice-tools/receipt-ocr/internal/repository"
	"github.com/backoffice-tools/receipt-ocr/internal/server"
	"github.com/backoffice-tools/receipt-ocr/internal/sheets"
)

func main() {
	// Logger
	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()
	log := logger.Sugar()

	// Env
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warnf("loading .env: %v", err)
	}
	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	// Context with signal
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slogger := newSlogger()

	// Optional audit DB. An empty DB_URL runs the API without auditing.
	var audit repository.ExtractLogRepository
	if cfg.Database.DSN != "" {
		pool, err := repository.Open(ctx, repository.Config{
			DSN:             cfg.Database.DSN,
			MaxConns:        cfg.Database.MaxConns,
			MaxConnLifetime: cfg.Database.MaxConnLifetime,
			MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
			DialTimeout:     cfg.Database.DialTimeout,
		}, slogger)
		if err != nil {
			log.Fatalf("creating DB pool: %v", err)
		}
		defer pool.Close()
		if err := repository.HealthCheck(ctx, pool, cfg.Database.DialTimeout); err != nil {
			log.Fatalf("DB health failed: %v", err)
		}
		log.Infow("DB health OK")
		audit = repository.NewExtractLogRepository(pool)
	}

	// Wiring
	p := parser.New(parser.Config{}, slogger)
	extractor := ocr.NewExtractor(ocr.Config{
		Tesseract:           cfg.OCR.Tesseract,
		TesseractLang:       cfg.OCR.TesseractLang,
		TessdataDir:         cfg.OCR.TessdataDir,
		PSM:                 cfg.OCR.PSM,
		OEM:                 cfg.OCR.OEM,
		EnableTSVConfidence: true,
	}, slogger)
	processor := pipeline.NewProcessor(slogger, extractor, p, audit, cfg.OCR.MinConfidence)
	store := sheets.NewStore(
		cfg.Sheets.WorkbookPath,
		sheets.NewExistenceCache(cfg.Sheets.CacheSize),
		slogger,
	)

	srv := server.New(server.Config{
		FrontendDir:    cfg.Server.FrontendDir,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
	}, p, extractor, processor, store, logger)

	httpSrv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: srv.Handler(),
	}

	go func() {
		log.Infof("HTTP serving on %s", cfg.Server.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http serve: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("shutdown: %v", err)
	}
}

// newSlogger builds the slog logger handed to the internal packages.
// The HTTP edge logs through zap; everything below it uses slog.
func newSlogger() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
