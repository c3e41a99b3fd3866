package fields

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/joseph-ayodele/receipt-recognizer/constants"
)

// storeScanLines bounds how deep into the header the store name search goes.
const storeScanLines = 8

// Extractor applies the rule tables to consensus text. Stateless apart
// from its clock; safe for concurrent use.
type Extractor struct {
	logger *slog.Logger
	now    func() time.Time
}

func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger, now: time.Now}
}

// Extract assembles a typed record from text. It never fails: missing
// fields lower the composite confidence and surface as diagnostics, and
// the amount defaults to zero. Structure-derived items in opts take
// precedence over the line scan.
func (e *Extractor) Extract(text string, opts Options) (Record, []string) {
	var diags []string
	rec := Record{
		StoreName:        DefaultStoreName,
		PaymentMethod:    constants.PaymentUnknown,
		ExtractionMethod: MethodRegex,
	}

	rec.InvoiceNumber = extractInvoice(text)

	ts, dateFound := parseDate(text, e.now())
	rec.Date = ts
	if !dateFound {
		diags = append(diags, "date not found; defaulted to current time")
	}

	rec.Amount, rec.Currency = extractAmount(text)
	if rec.Currency == "" {
		if sym := reCurrencyScan.FindString(text); sym != "" {
			if iso, ok := constants.CurrencyForSymbol(sym); ok {
				rec.Currency = iso
			}
		}
	}
	if rec.Amount <= 0 {
		diags = append(diags, "no monetary amount found")
	}

	lines := strings.Split(text, "\n")
	if store := extractStore(lines); store != "" {
		rec.StoreName = store
	}
	rec.PaymentMethod = extractPayment(text)

	if len(opts.Items) > 0 {
		rec.Items = opts.Items
		rec.ExtractionMethod = MethodStructured
		if opts.TableCount > 0 {
			rec.ExtractionMethod = MethodStructuredTables
		}
	} else {
		rec.Items = scanItems(lines)
	}

	rec.TaxInfo = extractTax(text)
	mergeBreakdown(&rec, opts.Prices)

	if sum := itemsTotal(rec.Items); sum > 0 && rec.Amount > 0 {
		if math.Abs(sum-rec.Amount) > rec.Amount*0.01+0.005 {
			diags = append(diags, fmt.Sprintf("line items sum %.2f differs from total %.2f", sum, rec.Amount))
		}
	}

	rec.Confidence = compositeConfidence(&rec, dateFound)

	e.logger.Debug("fields.extracted",
		"store", rec.StoreName,
		"amount", rec.Amount,
		"currency", rec.Currency,
		"payment", rec.PaymentMethod,
		"items", len(rec.Items),
		"confidence", rec.Confidence,
		"method", rec.ExtractionMethod)
	return rec, diags
}

func extractInvoice(text string) string {
	for _, re := range invoiceRules {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}

// extractAmount walks the ordered amount rules; the first rule yielding a
// positive value wins and fixes the currency.
func extractAmount(text string) (float64, string) {
	for _, rule := range amountRules {
		m := rule.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if v, ok := parseDecimal(m[1]); ok && v > 0 {
			return v, rule.currency
		}
	}
	return 0, ""
}

// extractStore returns the first plausible header line: within the first
// storeScanLines non-blank lines, not matching any skip pattern, carrying
// at least three letters.
func extractStore(lines []string) string {
	seen := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		seen++
		if seen > storeScanLines {
			break
		}
		if len(reAnyLetter.FindAllString(trimmed, 3)) < 3 {
			continue
		}
		skip := false
		for _, re := range storeSkipPatterns {
			if re.MatchString(trimmed) {
				skip = true
				break
			}
		}
		if skip {
			continue
		}
		return strings.Join(strings.Fields(trimmed), " ")
	}
	return ""
}

// extractPayment resolves the first recognized payment token through the
// canonical mapping.
func extractPayment(text string) constants.PaymentMethod {
	for _, tok := range rePaymentToken.FindAllString(text, -1) {
		normalized := strings.Join(strings.Fields(tok), " ")
		if pm, ok := constants.CanonicalizePayment(normalized); ok {
			return pm
		}
	}
	return constants.PaymentUnknown
}

func scanItems(lines []string) []LineItem {
	var items []LineItem
	for _, line := range lines {
		m := reItemLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		qty := atoi(m[1])
		price, ok := parseDecimal(m[3])
		if qty <= 0 || !ok {
			continue
		}
		items = append(items, LineItem{
			Quantity:    qty,
			Description: strings.TrimSpace(m[2]),
			Price:       price,
		})
	}
	return items
}

// mergeBreakdown folds recognized price-breakdown lines into TaxInfo.
// Entries already present from the tax rules keep their value.
func mergeBreakdown(rec *Record, prices []LineItem) {
	for _, p := range prices {
		label, ok := breakdownLabel(p.Description)
		if !ok || p.Price <= 0 {
			continue
		}
		if rec.TaxInfo == nil {
			rec.TaxInfo = make(map[string]float64)
		}
		if _, exists := rec.TaxInfo[label]; !exists {
			rec.TaxInfo[label] = p.Price
		}
	}
}

func extractTax(text string) map[string]float64 {
	var taxes map[string]float64
	for _, rule := range taxRules {
		m := rule.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v, ok := parseDecimal(m[1])
		if !ok {
			continue
		}
		if taxes == nil {
			taxes = make(map[string]float64)
		}
		if _, exists := taxes[rule.name]; !exists {
			taxes[rule.name] = v
		}
	}
	return taxes
}

func itemsTotal(items []LineItem) float64 {
	var sum float64
	for _, it := range items {
		sum += it.Price
	}
	return sum
}
