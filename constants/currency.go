package constants

import "strings"

// knownCurrencies holds the ISO 4217 codes recognition can emit.
var knownCurrencies = map[string]struct{}{
	"BRL": {},
	"USD": {},
	"EUR": {},
	"GBP": {},
	"ARS": {},
	"MXN": {},
}

// IsKnownCurrency reports whether code is an ISO 4217 code the extractor emits.
func IsKnownCurrency(code string) bool {
	_, ok := knownCurrencies[strings.ToUpper(strings.TrimSpace(code))]
	return ok
}

// CurrencyForSymbol maps a currency glyph or keyword found on a receipt to its ISO code.
func CurrencyForSymbol(symbol string) (string, bool) {
	switch strings.ToUpper(strings.TrimSpace(symbol)) {
	case "R$", "RS$", "BRL", "REAIS", "REAL":
		return "BRL", true
	case "US$", "USD", "DOLLAR", "DOLLARS":
		return "USD", true
	case "$":
		// bare dollar sign is ambiguous; USD is the documented default
		return "USD", true
	case "€", "EUR", "EURO", "EUROS":
		return "EUR", true
	case "£", "GBP":
		return "GBP", true
	case "ARS":
		return "ARS", true
	case "MXN":
		return "MXN", true
	default:
		return "", false
	}
}
