package pipeline

import (
	"context"
	"log/slog"

	"github.com/backoffice-tools/receipt-ocr/constants"
	"github.com/backoffice-tools/receipt-ocr/internal/entity"
	"github.com/backoffice-tools/receipt-ocr/internal/ocr"
	"github.com/backoffice-tools/receipt-ocr/internal/parser"
	"github.com/backoffice-tools/receipt-ocr/internal/repository"
)

// TextExtractor is the OCR stage; satisfied by *ocr.Extractor.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (ocr.ExtractionResult, error)
}

// Result is the combined outcome of OCR plus structuring for one image.
type Result struct {
	Text        string          `json:"text"`
	Confidence  float64         `json:"confidence"`
	NeedsReview bool            `json:"needsReview"`
	Receipt     *entity.Receipt `json:"receipt"`
}

// Processor coordinates OCR (text extract) then rule-based field parsing,
// and records an audit row per run when a repository is configured.
type Processor struct {
	logger        *slog.Logger
	extractor     TextExtractor
	parser        *parser.Parser
	audit         repository.ExtractLogRepository // nil disables auditing
	minConfidence float64
}

func NewProcessor(logger *slog.Logger, extractor TextExtractor, p *parser.Parser, audit repository.ExtractLogRepository, minConfidence float64) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if minConfidence <= 0 {
		minConfidence = 0.60
	}
	return &Processor{
		logger:        logger,
		extractor:     extractor,
		parser:        p,
		audit:         audit,
		minConfidence: minConfidence,
	}
}

// ProcessImage runs OCR on the image at path, parses the text into a
// structured receipt and flags low-confidence runs for review.
func (p *Processor) ProcessImage(ctx context.Context, path string) (*Result, error) {
	ocrRes, err := p.extractor.Extract(ctx, path)
	if err != nil {
		p.logger.Error("processor.ocr.failed", "path", path, "err", err)
		p.recordFailure(ctx, ocrRes, err)
		return nil, err
	}
	p.logger.Debug("processor ocr success",
		"path", path,
		"method", ocrRes.Method,
		"confidence", ocrRes.Confidence,
	)

	rec, err := p.parser.Parse(ocrRes.Text)
	if err != nil {
		p.logger.Error("processor.parse.failed", "path", path, "err", err)
		p.recordFailure(ctx, ocrRes, err)
		return nil, err
	}

	needsReview := ocrRes.Confidence > 0 && ocrRes.Confidence < p.minConfidence
	if needsReview {
		p.logger.Warn("ocr confidence low; needs review",
			"path", path, "confidence", ocrRes.Confidence)
	}

	p.recordSuccess(ctx, ocrRes, rec, needsReview)
	return &Result{
		Text:        ocrRes.Text,
		Confidence:  ocrRes.Confidence,
		NeedsReview: needsReview,
		Receipt:     rec,
	}, nil
}

func (p *Processor) recordSuccess(ctx context.Context, ocrRes ocr.ExtractionResult, rec *entity.Receipt, needsReview bool) {
	if p.audit == nil {
		return
	}
	entry := &repository.ExtractLogEntry{
		Status:        constants.JobStatusParsed,
		Method:        ocrRes.Method,
		Confidence:    ocrRes.Confidence,
		StoreName:     rec.StoreName,
		TxDate:        rec.Date,
		AmountInclTax: rec.AmountInclTax,
		Tax:           rec.Tax,
		NeedsReview:   needsReview,
	}
	if err := p.audit.Insert(ctx, entry); err != nil {
		p.logger.Warn("audit insert failed", "err", err)
	}
}

func (p *Processor) recordFailure(ctx context.Context, ocrRes ocr.ExtractionResult, cause error) {
	if p.audit == nil {
		return
	}
	entry := &repository.ExtractLogEntry{
		Status:       constants.JobStatusFailed,
		Method:       ocrRes.Method,
		Confidence:   ocrRes.Confidence,
		ErrorMessage: cause.Error(),
	}
	if err := p.audit.Insert(ctx, entry); err != nil {
		p.logger.Warn("audit insert failed", "err", err)
	}
}
