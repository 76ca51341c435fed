package parser

import (
	"log/slog"

	"github.com/backoffice-tools/receipt-ocr/constants"
	"github.com/backoffice-tools/receipt-ocr/internal/common"
	"github.com/backoffice-tools/receipt-ocr/internal/entity"
)

// Parser turns raw OCR text into a structured receipt record. It holds no
// mutable state and is safe for concurrent use.
type Parser struct {
	taxRate float64
	logger  *slog.Logger
}

// Config tunes the parser.
type Config struct {
	// TaxRate is the consumption-tax rate assumed when deriving the
	// tax-exclusive amount from a tax-included total with no tax line.
	TaxRate float64
}

func New(cfg Config, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.TaxRate <= 0 {
		cfg.TaxRate = constants.DefaultTaxRate
	}
	return &Parser{taxRate: cfg.TaxRate, logger: logger}
}

// Parse extracts the receipt fields from raw OCR text. The only rejected
// input is text that normalizes to zero lines; every individual extractor
// treats "nothing plausible found" as a normal outcome, reflected as a
// null/empty field for downstream human review.
func (p *Parser) Parse(text string) (*entity.Receipt, error) {
	text = foldWidthDigits(text)
	lines := NormalizeLines(text)
	if len(lines) == 0 {
		return nil, common.NewAppError("EMPTY_INPUT", "ocr text is empty", common.ErrEmptyInput)
	}

	rec := &entity.Receipt{
		StoreName:     ExtractStoreName(lines),
		PaymentMethod: constants.DefaultPaymentMethod,
	}
	if date, ok := ExtractDate(text); ok {
		rec.Date = &date
	}
	if total, ok := ExtractTotalAmount(lines); ok {
		rec.AmountInclTax = &total
	}
	if tax, ok := ExtractTaxAmount(lines); ok {
		rec.Tax = &tax
	}

	switch {
	case rec.AmountInclTax != nil && rec.Tax != nil:
		excl := *rec.AmountInclTax - *rec.Tax
		rec.AmountExclTax = &excl
	case rec.AmountInclTax != nil:
		// no tax line: strip the assumed tax rate from the total
		excl := int(float64(*rec.AmountInclTax) / (1 + p.taxRate))
		rec.AmountExclTax = &excl
	}

	p.logger.Debug("receipt parsed",
		"store_name", rec.StoreName,
		"date", strOrEmpty(rec.Date),
		"amount_incl_tax", intOrZero(rec.AmountInclTax),
		"tax", intOrZero(rec.Tax),
	)
	return rec, nil
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
