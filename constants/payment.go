package constants

import (
	"strings"
)

type PaymentMethod string

const (
	PaymentCard         PaymentMethod = "card"
	PaymentCash         PaymentMethod = "cash"
	PaymentPix          PaymentMethod = "pix"
	PaymentBoleto       PaymentMethod = "boleto"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentVoucher      PaymentMethod = "voucher"
	PaymentCheck        PaymentMethod = "check"
	PaymentUnknown      PaymentMethod = "unknown"
)

var allPaymentMethods = []PaymentMethod{
	PaymentCard,
	PaymentCash,
	PaymentPix,
	PaymentBoleto,
	PaymentBankTransfer,
	PaymentVoucher,
	PaymentCheck,
}

func PaymentMethods() []string {
	result := make([]string, len(allPaymentMethods))
	for i, pm := range allPaymentMethods {
		result[i] = string(pm)
	}
	return result
}

// CanonicalizePayment maps free text from a receipt to a known payment method.
func CanonicalizePayment(input string) (PaymentMethod, bool) {
	if input == "" {
		return PaymentUnknown, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	// synonyms map (pt/en/es receipt wording)
	synonyms := map[string]PaymentMethod{
		"credit":        PaymentCard,
		"credit card":   PaymentCard,
		"debit":         PaymentCard,
		"debit card":    PaymentCard,
		"credito":       PaymentCard,
		"crédito":       PaymentCard,
		"debito":        PaymentCard,
		"débito":        PaymentCard,
		"cartao":        PaymentCard,
		"cartão":        PaymentCard,
		"tarjeta":       PaymentCard,
		"visa":          PaymentCard,
		"mastercard":    PaymentCard,
		"amex":          PaymentCard,
		"elo":           PaymentCard,
		"contactless":   PaymentCard,
		"dinheiro":      PaymentCash,
		"efectivo":      PaymentCash,
		"money":         PaymentCash,
		"transferencia": PaymentBankTransfer,
		"transferência": PaymentBankTransfer,
		"ted":           PaymentBankTransfer,
		"doc":           PaymentBankTransfer,
		"wire":          PaymentBankTransfer,
		"vale":          PaymentVoucher,
		"vale refeicao": PaymentVoucher,
		"vale refeição": PaymentVoucher,
		"vr":            PaymentVoucher,
		"va":            PaymentVoucher,
		"ticket":        PaymentVoucher,
		"cheque":        PaymentCheck,
	}

	if pm, ok := synonyms[normalized]; ok {
		return pm, true
	}

	// check if it matches any method string
	for _, pm := range allPaymentMethods {
		if normalized == string(pm) {
			return pm, true
		}
	}

	return PaymentUnknown, false
}
