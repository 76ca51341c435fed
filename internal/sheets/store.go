package sheets

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/backoffice-tools/receipt-ocr/internal/entity"
)

// Store appends receipt records to a local XLSX workbook, one sheet per
// month. It stands in for the spreadsheet backend the reviewer works in.
type Store struct {
	mu     sync.Mutex
	path   string
	cache  *ExistenceCache
	logger *slog.Logger
}

// AppendResult reports where a record landed.
type AppendResult struct {
	RowNumber int    `json:"rowNumber"`
	SheetName string `json:"sheetName"`
}

func NewStore(path string, cache *ExistenceCache, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if cache == nil {
		cache = NewExistenceCache(0)
	}
	return &Store{path: path, cache: cache, logger: logger}
}

// SheetNameForDate derives the month sheet name (YYYY_MM) from an ISO date.
// An empty or malformed date falls back to the current month.
func SheetNameForDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		t = time.Now()
	}
	return fmt.Sprintf("%d_%02d", t.Year(), int(t.Month()))
}

// SheetNameForMonth converts a YYYY-MM month filter to a sheet name; empty
// means the current month.
func SheetNameForMonth(month string) string {
	if month == "" {
		return SheetNameForDate("")
	}
	return strings.ReplaceAll(month, "-", "_")
}

// Append writes the receipt as one row at the bottom of its month sheet,
// creating the sheet (with header) on first use.
func (s *Store) Append(rec *entity.Receipt) (AppendResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, fresh, err := s.open()
	if err != nil {
		return AppendResult{}, err
	}
	defer func() { _ = f.Close() }()

	date := ""
	if rec.Date != nil {
		date = *rec.Date
	}
	sheet := SheetNameForDate(date)

	if err := s.ensureSheet(f, sheet); err != nil {
		return AppendResult{}, err
	}
	if fresh {
		// drop the workbook's default sheet once a real one exists
		if sheet != "Sheet1" {
			_ = f.DeleteSheet("Sheet1")
		}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return AppendResult{}, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	rowNum := len(rows) + 1

	cell, _ := excelize.CoordinatesToCellName(1, rowNum)
	row := rec.Row()
	if err := f.SetSheetRow(sheet, cell, &row); err != nil {
		return AppendResult{}, fmt.Errorf("write row: %w", err)
	}
	if err := s.save(f); err != nil {
		return AppendResult{}, err
	}
	// sheet existence is only recorded once the save is on disk
	s.cache.Add(s.cacheKey(sheet))

	s.logger.Info("receipt appended",
		"sheet", sheet,
		"row", rowNum,
		"store_name", rec.StoreName,
	)
	return AppendResult{RowNumber: rowNum, SheetName: sheet}, nil
}

// History reads back up to limit receipts from the sheet for the given
// YYYY-MM month (current month when empty). A missing sheet is an empty
// history, not an error.
func (s *Store) History(month string, limit int) ([]*entity.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, fresh, err := s.open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	if fresh {
		return []*entity.Receipt{}, nil
	}

	sheet := SheetNameForMonth(month)
	if idx, _ := f.GetSheetIndex(sheet); idx == -1 {
		s.logger.Info("month sheet not found", "sheet", sheet)
		return []*entity.Receipt{}, nil
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}

	receipts := make([]*entity.Receipt, 0, limit)
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		if len(receipts) >= limit {
			break
		}
		if len(row) == 0 || row[0] == "" {
			continue
		}
		receipts = append(receipts, rowToReceipt(row))
	}
	return receipts, nil
}

func (s *Store) open() (f *excelize.File, fresh bool, err error) {
	f, err = excelize.OpenFile(s.path)
	if err == nil {
		return f, false, nil
	}
	if os.IsNotExist(err) {
		return excelize.NewFile(), true, nil
	}
	return nil, false, fmt.Errorf("open workbook %s: %w", s.path, err)
}

// ensureSheet creates the month sheet with its header row if the open
// workbook lacks it. The open file is authoritative: a cache hit for a sheet
// the workbook no longer carries means a save was lost or the file was
// replaced, and the sheet is recreated.
func (s *Store) ensureSheet(f *excelize.File, sheet string) error {
	if idx, _ := f.GetSheetIndex(sheet); idx != -1 {
		return nil
	}
	if s.cache.Has(s.cacheKey(sheet)) {
		s.logger.Warn("month sheet missing despite earlier creation; recreating",
			"sheet", sheet)
	} else {
		s.logger.Info("creating month sheet", "sheet", sheet)
	}
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}
	header := make([]any, len(entity.SheetHeader))
	for i, h := range entity.SheetHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	return nil
}

func (s *Store) cacheKey(sheet string) string {
	return s.path + "#" + sheet
}

func (s *Store) save(f *excelize.File) error {
	if dir := filepath.Dir(s.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create workbook dir: %w", err)
		}
	}
	if err := f.SaveAs(s.path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func rowToReceipt(row []string) *entity.Receipt {
	col := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}
	num := func(i int) *int {
		v, err := strconv.Atoi(strings.TrimSpace(col(i)))
		if err != nil {
			return nil
		}
		return &v
	}

	rec := &entity.Receipt{
		StoreName:       col(1),
		Payer:           col(2),
		AmountExclTax:   num(3),
		AmountInclTax:   num(4),
		Tax:             num(5),
		PaymentMethod:   col(6),
		ExpenseCategory: col(7),
		ProjectName:     col(8),
		Notes:           col(9),
		ReceiptImageURL: col(10),
	}
	if d := col(0); d != "" {
		rec.Date = &d
	}
	return rec
}
