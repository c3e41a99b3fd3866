package structure

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/receipt-recognizer/constants"
)

// Line field patterns, applied in fixed order: leading integer is a
// quantity, trailing decimal number is a price, an embedded currency
// glyph or code sets the currency, and whatever text remains is the
// description.
var (
	// Quantity must be followed by whitespace (optionally an "x"
	// multiplier) so dates like 05/03/2024 never read as counts.
	reLeadingQty = regexp.MustCompile(`^\s*(\d{1,3})\s*[xX]?\s+`)

	// Brazilian 1.234,56, US 1,234.56, and plain 45,90 / 45.90 shapes,
	// anchored to the end of the line.
	reTrailingPrice = regexp.MustCompile(`(\d{1,3}(?:\.\d{3})*,\d{2}|\d{1,3}(?:,\d{3})*\.\d{2}|\d+[.,]\d{2})\s*$`)

	reCurrencyToken = regexp.MustCompile(`(?i)R\$|US\$|[$€£]|\b(?:BRL|USD|EUR|GBP|ARS|MXN|REAIS|REAL)\b`)

	reNumericToken = regexp.MustCompile(`^[\d.,]+$`)
	reLetter       = regexp.MustCompile(`\p{L}`)
)

// Classify assigns a structural role to one line. It is a pure function:
// the same input always yields the same element, and classifying an
// element's Raw text again reproduces it.
func Classify(lineIndex int, line string) Element {
	el := Element{
		LineIndex: lineIndex,
		Raw:       line,
		Role:      RoleUnclassified,
	}

	rest := line
	if m := reLeadingQty.FindStringSubmatch(rest); m != nil {
		if q, err := strconv.Atoi(m[1]); err == nil && q > 0 {
			el.Quantity = q
			rest = rest[len(m[0]):]
		}
	}
	if m := reTrailingPrice.FindStringSubmatch(rest); m != nil {
		if p, ok := parsePrice(m[1]); ok {
			el.Price = p
			el.HasPrice = true
			rest = rest[:len(rest)-len(m[0])]
		}
	}
	if m := reCurrencyToken.FindString(line); m != "" {
		if iso, ok := constants.CurrencyForSymbol(m); ok {
			el.Currency = iso
		}
	}
	el.Description = descriptionOf(rest)

	switch {
	case el.Quantity > 0 && el.Description != "" && el.HasPrice:
		el.Role = RolePricedItem
		el.RoleConfidence = confPricedItem
	case el.Description != "" && el.HasPrice:
		el.Role = RoleBarePrice
		el.RoleConfidence = confBarePrice
	case el.Quantity > 0 && el.Description != "":
		el.Role = RoleListItem
		el.RoleConfidence = confListItem
	case looksTabular(line):
		el.Role = RoleTableRow
		el.RoleConfidence = confTableRow
	default:
		el.RoleConfidence = confUnclassified
	}
	return el
}

// descriptionOf strips currency tokens and residual separators, returning
// empty when no letters remain.
func descriptionOf(rest string) string {
	desc := reCurrencyToken.ReplaceAllString(rest, " ")
	desc = strings.Trim(desc, " \t-–:|.")
	desc = strings.Join(strings.Fields(desc), " ")
	if !reLetter.MatchString(desc) {
		return ""
	}
	return desc
}

// looksTabular reports whether a line reads as a table row: at least three
// whitespace-separated tokens, at least one purely numeric.
func looksTabular(line string) bool {
	toks := strings.Fields(line)
	if len(toks) < 3 {
		return false
	}
	for _, t := range toks {
		if reNumericToken.MatchString(t) {
			return true
		}
	}
	return false
}

// parsePrice converts a matched price token to a float. Comma decimals are
// normalized to dots; thousands separators are removed.
func parsePrice(tok string) (float64, bool) {
	lastComma := strings.LastIndex(tok, ",")
	lastDot := strings.LastIndex(tok, ".")
	switch {
	case lastComma > lastDot:
		// Comma is the decimal separator; dots group thousands.
		tok = strings.ReplaceAll(tok, ".", "")
		tok = strings.Replace(tok, ",", ".", 1)
	default:
		// Dot is the decimal separator; commas group thousands.
		tok = strings.ReplaceAll(tok, ",", "")
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}
