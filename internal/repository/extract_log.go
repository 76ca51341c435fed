package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/backoffice-tools/receipt-ocr/constants"
)

// ExtractLogEntry is one audit row per pipeline run. The full OCR text is
// not stored; the workbook row is the system of record.
type ExtractLogEntry struct {
	ID            uuid.UUID
	CreatedAt     time.Time
	Status        constants.JobStatus
	Method        string
	Confidence    float64
	StoreName     string
	TxDate        *string
	AmountInclTax *int
	Tax           *int
	NeedsReview   bool
	ErrorMessage  string
}

// ExtractLogRepository records pipeline outcomes for later inspection.
type ExtractLogRepository interface {
	Insert(ctx context.Context, entry *ExtractLogEntry) error
	ListRecent(ctx context.Context, limit int) ([]*ExtractLogEntry, error)
}

type pgExtractLogRepository struct {
	pool *pgxpool.Pool
}

func NewExtractLogRepository(pool *pgxpool.Pool) ExtractLogRepository {
	return &pgExtractLogRepository{pool: pool}
}

func (r *pgExtractLogRepository) Insert(ctx context.Context, entry *ExtractLogEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO extract_log
			(id, created_at, status, method, confidence, store_name,
			 tx_date, amount_incl_tax, tax, needs_review, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		entry.ID, entry.CreatedAt, string(entry.Status), entry.Method,
		entry.Confidence, entry.StoreName, entry.TxDate,
		entry.AmountInclTax, entry.Tax, entry.NeedsReview, entry.ErrorMessage,
	)
	return err
}

func (r *pgExtractLogRepository) ListRecent(ctx context.Context, limit int) ([]*ExtractLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, created_at, status, method, confidence, store_name,
		       tx_date, amount_incl_tax, tax, needs_review, error_message
		FROM extract_log
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*ExtractLogEntry
	for rows.Next() {
		var e ExtractLogEntry
		var status string
		if err := rows.Scan(&e.ID, &e.CreatedAt, &status, &e.Method,
			&e.Confidence, &e.StoreName, &e.TxDate, &e.AmountInclTax,
			&e.Tax, &e.NeedsReview, &e.ErrorMessage); err != nil {
			return nil, err
		}
		e.Status = constants.JobStatus(status)
		out = append(out, &e)
	}
	return out, rows.Err()
}
