package entity

// Receipt is the structured record produced by the extraction engine and
// consumed verbatim by the spreadsheet store. Field names are the wire
// contract shared with the frontend and must not change.
type Receipt struct {
	Date            *string `json:"date"`
	StoreName       string  `json:"storeName"`
	Payer           string  `json:"payer"`
	AmountExclTax   *int    `json:"amountExclTax"`
	AmountInclTax   *int    `json:"amountInclTax"`
	Tax             *int    `json:"tax"`
	PaymentMethod   string  `json:"paymentMethod"`
	ExpenseCategory string  `json:"expenseCategory"`
	ProjectName     string  `json:"projectName"`
	Notes           string  `json:"notes"`
	ReceiptImageURL string  `json:"receiptImageUrl"`
}

// SheetHeader is the column order receipts occupy in a month sheet (A..K).
var SheetHeader = []string{
	"Date",
	"Store name",
	"Payer",
	"Amount (tax excluded)",
	"Amount (tax included)",
	"Tax",
	"Payment method",
	"Expense category",
	"Project / client name",
	"Notes",
	"Receipt image URL",
}

// Row flattens the receipt into the sheet column order. Unknown numeric
// fields become empty cells, not zeros.
func (r *Receipt) Row() []any {
	cell := func(v *int) any {
		if v == nil {
			return ""
		}
		return *v
	}
	date := ""
	if r.Date != nil {
		date = *r.Date
	}
	return []any{
		date,
		r.StoreName,
		r.Payer,
		cell(r.AmountExclTax),
		cell(r.AmountInclTax),
		cell(r.Tax),
		r.PaymentMethod,
		r.ExpenseCategory,
		r.ProjectName,
		r.Notes,
		r.ReceiptImageURL,
	}
}
