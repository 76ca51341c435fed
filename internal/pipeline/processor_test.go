package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/backoffice-tools/receipt-ocr/constants"
	"github.com/backoffice-tools/receipt-ocr/internal/ocr"
	"github.com/backoffice-tools/receipt-ocr/internal/parser"
	"github.com/backoffice-tools/receipt-ocr/internal/repository"
)

type stubExtractor struct {
	res ocr.ExtractionResult
	err error
}

func (s stubExtractor) Extract(context.Context, string) (ocr.ExtractionResult, error) {
	return s.res, s.err
}

type memAudit struct {
	entries []*repository.ExtractLogEntry
}

func (m *memAudit) Insert(_ context.Context, e *repository.ExtractLogEntry) error {
	m.entries = append(m.entries, e)
	return nil
}

func (m *memAudit) ListRecent(context.Context, int) ([]*repository.ExtractLogEntry, error) {
	return m.entries, nil
}

func TestProcessImage(t *testing.T) {
	audit := &memAudit{}
	p := NewProcessor(nil, stubExtractor{res: ocr.ExtractionResult{
		Text:       "ABC Mart\n2025年1月15日\n合計 ¥1,200",
		Method:     "image-ocr",
		Confidence: 0.85,
	}}, parser.New(parser.Config{}, nil), audit, 0.60)

	res, err := p.ProcessImage(context.Background(), "receipt.jpg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.NeedsReview {
		t.Error("high-confidence run flagged for review")
	}
	if res.Receipt.StoreName != "ABC Mart" {
		t.Errorf("storeName = %q", res.Receipt.StoreName)
	}
	if res.Receipt.AmountInclTax == nil || *res.Receipt.AmountInclTax != 1200 {
		t.Errorf("amountInclTax = %v, want 1200", res.Receipt.AmountInclTax)
	}

	if len(audit.entries) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(audit.entries))
	}
	if audit.entries[0].Status != constants.JobStatusParsed {
		t.Errorf("audit status = %q, want PARSED", audit.entries[0].Status)
	}
}

func TestProcessImageFlagsLowConfidence(t *testing.T) {
	p := NewProcessor(nil, stubExtractor{res: ocr.ExtractionResult{
		Text:       "合計 990円",
		Confidence: 0.30,
	}}, parser.New(parser.Config{}, nil), nil, 0.60)

	res, err := p.ProcessImage(context.Background(), "receipt.jpg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.NeedsReview {
		t.Error("low-confidence run not flagged for review")
	}
}

func TestProcessImageOCRFailure(t *testing.T) {
	audit := &memAudit{}
	wantErr := errors.New("tesseract: exit 1")
	p := NewProcessor(nil, stubExtractor{err: wantErr}, parser.New(parser.Config{}, nil), audit, 0.60)

	if _, err := p.ProcessImage(context.Background(), "receipt.jpg"); !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
	if len(audit.entries) != 1 || audit.entries[0].Status != constants.JobStatusFailed {
		t.Fatalf("expected one FAILED audit entry, got %+v", audit.entries)
	}
}

func TestProcessImageEmptyTextFails(t *testing.T) {
	p := NewProcessor(nil, stubExtractor{res: ocr.ExtractionResult{Text: "   "}},
		parser.New(parser.Config{}, nil), nil, 0.60)

	if _, err := p.ProcessImage(context.Background(), "receipt.jpg"); err == nil {
		t.Error("expected error for empty ocr text")
	}
}
