// Package structure classifies lines of recognized receipt text into
// structural roles and groups tabular runs into tables. It operates on
// text alone and never re-invokes recognition.
package structure

// Role is the structural classification of one line. Exactly one role is
// assigned per line.
type Role string

const (
	RolePricedItem   Role = "PRICED_ITEM"  // quantity + description + price
	RoleBarePrice    Role = "BARE_PRICE"   // description + price, no quantity
	RoleListItem     Role = "LIST_ITEM"    // quantity + description, no price
	RoleTableRow     Role = "TABLE_ROW"    // columnar line, at least one numeric token
	RoleUnclassified Role = "UNCLASSIFIED" // nothing recognizable
)

// Per-role confidence reflects how much extractable data the line carried.
const (
	confPricedItem   = 0.9
	confBarePrice    = 0.75
	confListItem     = 0.7
	confTableRow     = 0.6
	confUnclassified = 0.1
)

// Element is one classified line. Field presence depends on the role:
// Quantity is zero when no leading count was found, Price is meaningful
// only when HasPrice is set.
type Element struct {
	LineIndex      int
	Raw            string
	Role           Role
	Quantity       int
	Description    string
	Price          float64
	HasPrice       bool
	Currency       string // ISO code when a glyph or code appeared on the line
	RoleConfidence float64
}

// Table is a maximal contiguous run of tabular lines. Rows is never empty;
// grouping that would produce an empty table produces no table at all.
type Table struct {
	Rows        []Element
	StartLine   int
	EndLine     int
	ColumnCount int // statistical mode of per-row token counts
	Confidence  float64
}

// Analysis is the full structural read of one text, with elements bucketed
// by role. Elements holds every non-blank line in order; the buckets alias
// into the same values.
type Analysis struct {
	Elements []Element
	Tables   []Table
	Items    []Element // PricedItem lines
	Prices   []Element // BarePrice lines
	Lists    []Element // ListItem lines
	Mixed    []Element // Unclassified lines
}

// ItemCount reports how many item-like lines were found across roles.
func (a Analysis) ItemCount() int {
	return len(a.Items) + len(a.Lists)
}
