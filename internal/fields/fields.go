// Package fields turns consensus receipt text into a typed record by
// applying ordered pattern rule tables, then scores and validates the
// result. Rules are data: new locales and currencies are added by
// appending rules, not by branching logic.
package fields

import (
	"time"

	"github.com/joseph-ayodele/receipt-recognizer/constants"
)

// DefaultStoreName marks a record whose store could not be identified.
// Validation treats it as an absent store, never as a real name.
const DefaultStoreName = "Unknown Store"

// Extraction method tags recorded on the final record.
const (
	MethodRegex            = "regex"
	MethodStructured       = "structured"
	MethodStructuredTables = "structured+tables"
)

// LineItem is one purchased item line.
type LineItem struct {
	Quantity    int     `json:"quantity"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// Record is the final typed extraction output. Amount defaults to zero
// when no monetary value was found; it is never negative. A record is
// created once per pipeline run and not mutated afterwards.
type Record struct {
	InvoiceNumber    string                  `json:"invoice_number"`
	StoreName        string                  `json:"store_name"`
	Amount           float64                 `json:"amount"`
	Currency         string                  `json:"currency"`
	Date             time.Time               `json:"date"`
	PaymentMethod    constants.PaymentMethod `json:"payment_method"`
	Items            []LineItem              `json:"items,omitempty"`
	TaxInfo          map[string]float64      `json:"tax_info,omitempty"`
	Confidence       float64                 `json:"confidence"`
	ExtractionMethod string                  `json:"extraction_method"`
}

// Options carries structure-derived data into extraction. When Items is
// non-empty those items are used as-is instead of line scanning; TableCount
// notes how many tables the structure pass found so the extraction method
// tag reflects it. Prices holds bare price lines; those matching a
// breakdown label (subtotal, discount, change, ...) merge into TaxInfo.
type Options struct {
	Items      []LineItem
	TableCount int
	Prices     []LineItem
}
