package fields

import (
	"regexp"
	"strconv"
	"strings"
)

// Decimal number shapes: Brazilian 1.234,56, US 1,234.56, plain 45,90 or
// 45.90. Bare integers are accepted only where a currency symbol anchors
// the amount.
const (
	numDecimal = `\d{1,3}(?:\.\d{3})*,\d{2}|\d{1,3}(?:,\d{3})*\.\d{2}|\d+[.,]\d{2}`
	numAny     = numDecimal + `|\d+`
)

// amountRules are tried in order; the first match wins. Keyword+symbol
// rules outrank bare-symbol rules so a labeled total beats an item price.
type amountRule struct {
	name     string
	currency string // ISO code implied by the rule, empty when unknown
	re       *regexp.Regexp
}

var amountRules = []amountRule{
	{name: "total_brl", currency: "BRL", re: regexp.MustCompile(`(?i)\btotal\b[^0-9\n]*r\$\s*(` + numAny + `)`)},
	{name: "total_usd", currency: "USD", re: regexp.MustCompile(`(?i)\btotal\b[^0-9\n]*(?:us\$|\$)\s*(` + numAny + `)`)},
	{name: "total_eur", currency: "EUR", re: regexp.MustCompile(`(?i)\btotal\b[^0-9\n]*€\s*(` + numAny + `)`)},
	{name: "total_gbp", currency: "GBP", re: regexp.MustCompile(`(?i)\btotal\b[^0-9\n]*£\s*(` + numAny + `)`)},
	{name: "total_keyword", currency: "", re: regexp.MustCompile(`(?i)\b(?:total(?:\s+(?:geral|a\s+pagar))?|valor\s+total|amount\s+due|importe\s+total)\b[^0-9\n]*(` + numDecimal + `)`)},
	{name: "brl_anywhere", currency: "BRL", re: regexp.MustCompile(`(?i)r\$\s*(` + numAny + `)`)},
	{name: "usd_anywhere", currency: "USD", re: regexp.MustCompile(`(?i)us\$\s*(` + numAny + `)`)},
	{name: "dollar_anywhere", currency: "USD", re: regexp.MustCompile(`\$\s*(` + numAny + `)`)},
	{name: "eur_anywhere", currency: "EUR", re: regexp.MustCompile(`€\s*(` + numAny + `)`)},
	{name: "gbp_anywhere", currency: "GBP", re: regexp.MustCompile(`£\s*(` + numAny + `)`)},
}

// invoiceRules match fiscal document numbers; Brazilian coupon formats
// first, generic invoice/receipt wording after.
var invoiceRules = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:cupom|coo|ccf|extrato)\s*:?\s*n?[ºo°]?\s*[:.]?\s*(\d{4,})`),
	regexp.MustCompile(`(?i)\b(?:nota\s+fiscal|nfc-?e|nf-?e|danfe)\s*:?\s*n?[ºo°]?\s*[:.]?\s*(\d{4,})`),
	regexp.MustCompile(`(?i)\b(?:invoice|receipt|ticket|factura)\s*(?:no|num|number)?\s*[:.#]?\s*#?\s*([A-Z0-9][A-Z0-9-]{3,})`),
	regexp.MustCompile(`(?i)\bn[ºo°]\s*[:.]?\s*(\d{4,})`),
}

// storeSkipPatterns disqualify a header line from being the store name:
// tax ids, fiscal wording, addresses, phones, operational metadata.
var storeSkipPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:cnpj|cpf|insc(?:ricao|rição)?)\b`),
	regexp.MustCompile(`^[\s\d./-]+$`),
	regexp.MustCompile(`(?i)\b(?:cupom\s+fiscal|nota\s+fiscal|nfc-?e|nf-?e|danfe|sat\b|extrato|documento)\b`),
	regexp.MustCompile(`(?i)\b(?:rua|av|avenida|alameda|travessa|rodovia|estrada|praca|praça|bairro|cep)\b`),
	regexp.MustCompile(`(?i)\b(?:tel|fone|telefone|whatsapp|fax)\b`),
	regexp.MustCompile(`(?i)\b(?:data|date|fecha|hora|caixa|pdv|operador|consumidor|via)\b`),
}

// rePaymentToken lists every payment synonym the canonical mapping knows;
// matched tokens are resolved through constants.CanonicalizePayment.
var rePaymentToken = regexp.MustCompile(`(?i)\b(cart[aã]o|tarjeta|cr[eé]dito|d[eé]bito|credit(?:\s+card)?|debit(?:\s+card)?|visa|mastercard|amex|elo|contactless|pix|boleto|dinheiro|efectivo|cash|money|transfer[eê]ncia|ted|doc|wire|vale(?:\s+refei[cç][aã]o)?|vr|va|ticket|cheque|check)\b`)

// taxRules name the tax labels recognized across pt/en/es receipts.
var taxRules = []struct {
	name string
	re   *regexp.Regexp
}{
	{name: "ICMS", re: regexp.MustCompile(`(?i)\bicms\b[^0-9\n]*(` + numDecimal + `)`)},
	{name: "ISS", re: regexp.MustCompile(`(?i)\biss\b[^0-9\n]*(` + numDecimal + `)`)},
	{name: "TRIBUTOS", re: regexp.MustCompile(`(?i)\btrib(?:utos)?\b[^0-9\n]*(` + numDecimal + `)`)},
	{name: "IMPOSTO", re: regexp.MustCompile(`(?i)\bimpostos?\b[^0-9\n]*(` + numDecimal + `)`)},
	{name: "IVA", re: regexp.MustCompile(`(?i)\biva\b[^0-9\n]*(` + numDecimal + `)`)},
	{name: "VAT", re: regexp.MustCompile(`(?i)\bvat\b[^0-9\n]*(` + numDecimal + `)`)},
	{name: "TAX", re: regexp.MustCompile(`(?i)\btax\b[^0-9\n]*(` + numDecimal + `)`)},
}

// breakdownRules resolve price-breakdown lines found by structure
// analysis (subtotals, discounts, change, fees) to canonical labels.
// Plain total lines are not a breakdown; they stay out of this table.
var breakdownRules = []struct {
	label string
	re    *regexp.Regexp
}{
	{label: "SUBTOTAL", re: regexp.MustCompile(`(?i)\bsub\s*-?\s*total\b`)},
	{label: "DESCONTO", re: regexp.MustCompile(`(?i)\b(?:desconto|discount|descuento)\b`)},
	{label: "TROCO", re: regexp.MustCompile(`(?i)\b(?:troco|change|cambio)\b`)},
	{label: "TAXA", re: regexp.MustCompile(`(?i)\b(?:taxa|tarifa|fee)\b`)},
	{label: "ACRESCIMO", re: regexp.MustCompile(`(?i)\b(?:acr[eé]scimo|surcharge)\b`)},
	{label: "SERVICO", re: regexp.MustCompile(`(?i)\b(?:servi[cç]o|service)\b`)},
	{label: "GORJETA", re: regexp.MustCompile(`(?i)\b(?:gorjeta|tip|propina)\b`)},
}

func breakdownLabel(desc string) (string, bool) {
	for _, rule := range breakdownRules {
		if rule.re.MatchString(desc) {
			return rule.label, true
		}
	}
	return "", false
}

// reItemLine matches "qty description price" purchase lines during the
// unstructured scan.
var reItemLine = regexp.MustCompile(`(?i)^\s*(\d{1,3})\s*x?\s+(.{3,}?)\s+(?:r\$|us\$|[$€£])?\s*(` + numDecimal + `)\s*$`)

// reCurrencyScan finds a currency mention anywhere in the text when no
// amount rule implied one.
var reCurrencyScan = regexp.MustCompile(`(?i)R\$|US\$|[$€£]|\b(?:BRL|USD|EUR|GBP|ARS|MXN|REAIS|REAL)\b`)

var reAnyLetter = regexp.MustCompile(`\p{L}`)

// parseDecimal converts a matched numeric token to a float, normalizing
// comma decimal separators to dot.
func parseDecimal(tok string) (float64, bool) {
	lastComma := strings.LastIndex(tok, ",")
	lastDot := strings.LastIndex(tok, ".")
	if lastComma > lastDot {
		tok = strings.ReplaceAll(tok, ".", "")
		tok = strings.Replace(tok, ",", ".", 1)
	} else {
		tok = strings.ReplaceAll(tok, ",", "")
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}
