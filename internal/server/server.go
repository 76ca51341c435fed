package server

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/backoffice-tools/receipt-ocr/internal/common"
	"github.com/backoffice-tools/receipt-ocr/internal/parser"
	"github.com/backoffice-tools/receipt-ocr/internal/pipeline"
	"github.com/backoffice-tools/receipt-ocr/internal/sheets"
)

const serviceVersion = "1.0.0"

// Server is the JSON API the frontend talks to.
type Server struct {
	logger      *zap.Logger
	router      *mux.Router
	parser      *parser.Parser
	extractor   pipeline.TextExtractor
	processor   *pipeline.Processor
	store       *sheets.Store
	maxUpload   int64
	frontendDir string
}

type Config struct {
	FrontendDir    string
	MaxUploadBytes int64
}

func New(cfg Config, p *parser.Parser, extractor pipeline.TextExtractor, processor *pipeline.Processor, store *sheets.Store, logger *zap.Logger) *Server {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
	}
	s := &Server{
		logger:      logger,
		parser:      p,
		extractor:   extractor,
		processor:   processor,
		store:       store,
		maxUpload:   cfg.MaxUploadBytes,
		frontendDir: cfg.FrontendDir,
	}
	s.router = s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.corsMiddleware, s.loggingMiddleware)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/ocr/process", s.handleOCRProcess).Methods(http.MethodPost)
	api.HandleFunc("/ai/structure", s.handleStructure).Methods(http.MethodPost)
	api.HandleFunc("/receipt/process", s.handleReceiptProcess).Methods(http.MethodPost)
	api.HandleFunc("/sheets/write", s.handleSheetsWrite).Methods(http.MethodPost)
	api.HandleFunc("/sheets/history", s.handleSheetsHistory).Methods(http.MethodGet)

	// preflight for every API route
	api.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		s.writeError(w, http.StatusNotFound, "not found")
	})

	if s.frontendDir != "" {
		if _, err := os.Stat(s.frontendDir); err == nil {
			r.PathPrefix("/").Handler(http.FileServer(http.Dir(s.frontendDir)))
		}
	}
	return r
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r.WithContext(common.WithRequestID(r.Context(), requestID)))

		s.logger.Info("request",
			zap.String("request_id", requestID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", sw.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write response failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, message string) {
	s.writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"message":    message,
			"statusCode": code,
		},
	})
}
