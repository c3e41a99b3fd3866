package fields

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/receipt-recognizer/constants"
)

const cleanReceipt = `MERCADO BOM PRECO LTDA
CNPJ 12.345.678/0001-90
CUPOM FISCAL COO: 048657
Data: 05/03/2024 14:30
2x Coca Cola Lata 7,50
1 Pao Frances 12,90
Val Aprox Tributos R$ 7,43
TOTAL R$ 45,90
Pagamento: cartao de credito`

func testExtractor() *Extractor {
	e := NewExtractor(slog.Default())
	e.now = func() time.Time { return fallbackTime }
	return e
}

func TestExtractCleanReceipt(t *testing.T) {
	rec, diags := testExtractor().Extract(cleanReceipt, Options{})

	assert.Equal(t, "048657", rec.InvoiceNumber)
	assert.Equal(t, "MERCADO BOM PRECO LTDA", rec.StoreName)
	assert.InDelta(t, 45.90, rec.Amount, 1e-9)
	assert.Equal(t, "BRL", rec.Currency)
	assert.Equal(t, 5, rec.Date.Day())
	assert.Equal(t, time.March, rec.Date.Month())
	assert.Equal(t, 2024, rec.Date.Year())
	assert.Equal(t, constants.PaymentCard, rec.PaymentMethod)
	require.Len(t, rec.Items, 2)
	assert.Equal(t, "Coca Cola Lata", rec.Items[0].Description)
	assert.InDelta(t, 7.43, rec.TaxInfo["TRIBUTOS"], 1e-9)
	assert.Equal(t, MethodRegex, rec.ExtractionMethod)
	// every confidence component present
	assert.InDelta(t, 1.0, rec.Confidence, 1e-9)
	assert.NotContains(t, strings.Join(diags, "; "), "date not found")
}

func TestExtractAmountRules(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		amount   float64
		currency string
	}{
		{name: "brl total", text: "TOTAL R$ 45,90", amount: 45.90, currency: "BRL"},
		{name: "brl thousands", text: "TOTAL R$ 1.234,56", amount: 1234.56, currency: "BRL"},
		{name: "usd total", text: "Total: $12.99", amount: 12.99, currency: "USD"},
		{name: "eur total", text: "TOTAL € 10,00", amount: 10.00, currency: "EUR"},
		{name: "keyword only", text: "VALOR TOTAL 89,90", amount: 89.90, currency: ""},
		{name: "symbol only", text: "R$ 7,50", amount: 7.50, currency: "BRL"},
		{name: "total beats item price", text: "R$ 9,99 Cerveja\nTOTAL R$ 45,90", amount: 45.90, currency: "BRL"},
		{name: "integer with symbol", text: "TOTAL R$ 46", amount: 46, currency: "BRL"},
		{name: "nothing", text: "obrigado pela preferencia", amount: 0, currency: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, currency := extractAmount(tt.text)
			assert.InDelta(t, tt.amount, amount, 1e-9)
			assert.Equal(t, tt.currency, currency)
		})
	}
}

func TestExtractCurrencyFallbackScan(t *testing.T) {
	// No amount anywhere, but a currency mention still sets the code.
	rec, _ := testExtractor().Extract("pagamento em reais\nvalor a definir", Options{})

	assert.Zero(t, rec.Amount)
	assert.Equal(t, "BRL", rec.Currency)
}

func TestExtractDateDefaultsToNow(t *testing.T) {
	rec, diags := testExtractor().Extract("TOTAL R$ 10,00", Options{})

	assert.True(t, rec.Date.Equal(fallbackTime))
	assert.Contains(t, strings.Join(diags, "; "), "date not found")
}

func TestExtractStoreSkipsMetadataLines(t *testing.T) {
	text := `CNPJ 12.345.678/0001-90
AV PAULISTA 1000 BAIRRO CENTRO
SUPERMERCADO PRECO BAIXO
TOTAL R$ 5,00`

	rec, _ := testExtractor().Extract(text, Options{})

	assert.Equal(t, "SUPERMERCADO PRECO BAIXO", rec.StoreName)
}

func TestExtractStoreUnknownWhenHeaderIsMetadata(t *testing.T) {
	text := "CNPJ 12.345.678/0001-90\n12345\nTel: 11 5555-0000"

	rec, _ := testExtractor().Extract(text, Options{})

	assert.Equal(t, DefaultStoreName, rec.StoreName)
}

func TestExtractPayment(t *testing.T) {
	tests := []struct {
		text string
		want constants.PaymentMethod
	}{
		{text: "Pagamento: cartao de credito", want: constants.PaymentCard},
		{text: "pago via PIX", want: constants.PaymentPix},
		{text: "DINHEIRO TROCO 4,10", want: constants.PaymentCash},
		{text: "BOLETO bancario", want: constants.PaymentBoleto},
		{text: "TED enviada", want: constants.PaymentBankTransfer},
		{text: "VALE REFEICAO", want: constants.PaymentVoucher},
		{text: "pago em cheque", want: constants.PaymentCheck},
		{text: "obrigado e volte sempre", want: constants.PaymentUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extractPayment(tt.text), "text %q", tt.text)
	}
}

func TestExtractInvoiceNumber(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{text: "CUPOM FISCAL COO: 048657", want: "048657"},
		{text: "Extrato No. 123456", want: "123456"},
		{text: "NFC-e nº 7781", want: "7781"},
		{text: "Invoice #INV-2024-001", want: "INV-2024-001"},
		{text: "sem numero aqui", want: ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extractInvoice(tt.text), "text %q", tt.text)
	}
}

func TestExtractStructuredItemsTakePrecedence(t *testing.T) {
	structured := []LineItem{{Quantity: 2, Description: "Picanha Bovina", Price: 89.90}}

	rec, _ := testExtractor().Extract(cleanReceipt, Options{Items: structured})

	assert.Equal(t, structured, rec.Items)
	assert.Equal(t, MethodStructured, rec.ExtractionMethod)

	rec, _ = testExtractor().Extract(cleanReceipt, Options{Items: structured, TableCount: 1})
	assert.Equal(t, MethodStructuredTables, rec.ExtractionMethod)
}

func TestExtractItemSumMismatchDiagnostic(t *testing.T) {
	structured := []LineItem{{Quantity: 1, Description: "Picanha", Price: 10.00}}

	_, diags := testExtractor().Extract(cleanReceipt, Options{Items: structured})

	assert.Contains(t, strings.Join(diags, "; "), "differs from total")
}

func TestExtractBreakdownMergesIntoTaxInfo(t *testing.T) {
	prices := []LineItem{
		{Quantity: 1, Description: "SUBTOTAL R$", Price: 24.72},
		{Quantity: 1, Description: "TROCO", Price: 4.10},
		{Quantity: 1, Description: "TROCO conferido", Price: 99.99}, // first value wins
		{Quantity: 1, Description: "DESCONTO", Price: 0},            // no value, skipped
		{Quantity: 1, Description: "CODIGO 7781", Price: 3.50},      // not a breakdown line
	}

	rec, _ := testExtractor().Extract(cleanReceipt, Options{Prices: prices})

	assert.InDelta(t, 24.72, rec.TaxInfo["SUBTOTAL"], 1e-9)
	assert.InDelta(t, 4.10, rec.TaxInfo["TROCO"], 1e-9)
	assert.InDelta(t, 7.43, rec.TaxInfo["TRIBUTOS"], 1e-9)
	assert.NotContains(t, rec.TaxInfo, "DESCONTO")
	assert.Len(t, rec.TaxInfo, 3)
	// Prices alone do not change how items were extracted.
	assert.Equal(t, MethodRegex, rec.ExtractionMethod)
}

func TestExtractEmptyText(t *testing.T) {
	rec, diags := testExtractor().Extract("", Options{})

	assert.Zero(t, rec.Amount)
	assert.Equal(t, DefaultStoreName, rec.StoreName)
	assert.Equal(t, constants.PaymentUnknown, rec.PaymentMethod)
	assert.InDelta(t, confFloor, rec.Confidence, 1e-9)
	assert.NotEmpty(t, diags)
}
