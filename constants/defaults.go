package constants

// Defaults filled into a receipt when extraction has nothing better.
// Payment method detection is a likely follow-up; until then every receipt
// is recorded as cash and corrected by the reviewer.
const (
	DefaultPaymentMethod = "cash"

	// DefaultTaxRate is the consumption-tax rate assumed when a receipt
	// carries a tax-included total but no explicit tax line.
	DefaultTaxRate = 0.10
)
