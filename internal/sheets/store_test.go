package sheets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/backoffice-tools/receipt-ocr/internal/entity"
)

func intPtr(v int) *int       { return &v }
func strPtr(s string) *string { return &s }

func testReceipt(date string, incl int) *entity.Receipt {
	return &entity.Receipt{
		Date:          strPtr(date),
		StoreName:     "ABC Mart",
		AmountExclTax: intPtr(incl - incl/11),
		AmountInclTax: intPtr(incl),
		PaymentMethod: "cash",
	}
}

func TestSheetNameForDate(t *testing.T) {
	tests := []struct {
		date string
		want string
	}{
		{"2025-01-15", "2025_01"},
		{"2024-12-01", "2024_12"},
		{"2025-09-30", "2025_09"},
	}
	for _, tt := range tests {
		if got := SheetNameForDate(tt.date); got != tt.want {
			t.Errorf("SheetNameForDate(%q) = %q, want %q", tt.date, got, tt.want)
		}
	}
}

func TestSheetNameForMonth(t *testing.T) {
	if got := SheetNameForMonth("2025-01"); got != "2025_01" {
		t.Errorf("got %q, want 2025_01", got)
	}
}

func TestAppendAndHistoryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "receipts.xlsx")
	store := NewStore(path, NewExistenceCache(8), nil)

	res, err := store.Append(testReceipt("2025-01-15", 1200))
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if res.SheetName != "2025_01" {
		t.Errorf("sheetName = %q, want 2025_01", res.SheetName)
	}
	if res.RowNumber != 2 {
		t.Errorf("rowNumber = %d, want 2 (first data row under header)", res.RowNumber)
	}

	res, err = store.Append(testReceipt("2025-01-20", 990))
	if err != nil {
		t.Fatalf("append second: %v", err)
	}
	if res.RowNumber != 3 {
		t.Errorf("rowNumber = %d, want 3", res.RowNumber)
	}

	got, err := store.History("2025-01", 50)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("history returned %d rows, want 2", len(got))
	}
	if got[0].Date == nil || *got[0].Date != "2025-01-15" {
		t.Errorf("date = %v, want 2025-01-15", got[0].Date)
	}
	if got[0].StoreName != "ABC Mart" {
		t.Errorf("storeName = %q", got[0].StoreName)
	}
	if got[1].AmountInclTax == nil || *got[1].AmountInclTax != 990 {
		t.Errorf("amountInclTax = %v, want 990", got[1].AmountInclTax)
	}
}

func TestAppendSplitsMonths(t *testing.T) {
	path := filepath.Join(t.TempDir(), "receipts.xlsx")
	store := NewStore(path, NewExistenceCache(8), nil)

	if _, err := store.Append(testReceipt("2025-01-15", 1200)); err != nil {
		t.Fatalf("append: %v", err)
	}
	res, err := store.Append(testReceipt("2025-02-01", 500))
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if res.SheetName != "2025_02" {
		t.Errorf("sheetName = %q, want 2025_02", res.SheetName)
	}
	if res.RowNumber != 2 {
		t.Errorf("rowNumber = %d, want 2 (new sheet, fresh header)", res.RowNumber)
	}

	jan, err := store.History("2025-01", 50)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(jan) != 1 {
		t.Errorf("january has %d rows, want 1", len(jan))
	}
}

func TestHistoryMissingMonthIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "receipts.xlsx")
	store := NewStore(path, NewExistenceCache(8), nil)

	if _, err := store.Append(testReceipt("2025-01-15", 1200)); err != nil {
		t.Fatalf("append: %v", err)
	}
	got, err := store.History("1999-12", 50)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d rows, want 0", len(got))
	}
}

func TestAppendRecoversAfterWorkbookLoss(t *testing.T) {
	path := filepath.Join(t.TempDir(), "receipts.xlsx")
	store := NewStore(path, NewExistenceCache(8), nil)

	if _, err := store.Append(testReceipt("2025-01-15", 1200)); err != nil {
		t.Fatalf("append: %v", err)
	}
	// the workbook disappears underneath the store (lost save, external
	// cleanup); the cached month sheet must not be trusted over the file
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove workbook: %v", err)
	}

	res, err := store.Append(testReceipt("2025-01-20", 990))
	if err != nil {
		t.Fatalf("append after workbook loss: %v", err)
	}
	if res.SheetName != "2025_01" || res.RowNumber != 2 {
		t.Errorf("res = %+v, want fresh sheet 2025_01 row 2", res)
	}

	got, err := store.History("2025-01", 50)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("history returned %d rows, want 1", len(got))
	}
	if got[0].AmountInclTax == nil || *got[0].AmountInclTax != 990 {
		t.Errorf("amountInclTax = %v, want 990", got[0].AmountInclTax)
	}
}

func TestHistoryNoWorkbookIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "receipts.xlsx")
	store := NewStore(path, NewExistenceCache(8), nil)

	got, err := store.History("2025-01", 50)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d rows, want 0", len(got))
	}
}

func TestHistoryHonorsLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "receipts.xlsx")
	store := NewStore(path, NewExistenceCache(8), nil)

	for i := 0; i < 5; i++ {
		if _, err := store.Append(testReceipt("2025-01-15", 1000+i)); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	got, err := store.History("2025-01", 3)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("got %d rows, want 3", len(got))
	}
}
