package fields

import "github.com/joseph-ayodele/receipt-recognizer/constants"

// Composite confidence weights. The floor keeps confidence from reading
// as exactly zero, which downstream would be indistinguishable from an
// unprocessed record.
const (
	confInvoiceWeight = 0.2
	confDateWeight    = 0.2
	confAmountWeight  = 0.3
	confStoreWeight   = 0.15
	confPaymentWeight = 0.1
	confItemsWeight   = 0.05

	confFloor = 0.1
)

// compositeConfidence scores how much of the record was actually
// extracted. A defaulted date earns nothing.
func compositeConfidence(rec *Record, dateFound bool) float64 {
	conf := 0.0
	if rec.InvoiceNumber != "" {
		conf += confInvoiceWeight
	}
	if dateFound {
		conf += confDateWeight
	}
	if rec.Amount > 0 {
		conf += confAmountWeight
	}
	if rec.StoreName != "" && rec.StoreName != DefaultStoreName {
		conf += confStoreWeight
	}
	if rec.PaymentMethod != constants.PaymentUnknown {
		conf += confPaymentWeight
	}
	if len(rec.Items) > 0 {
		conf += confItemsWeight
	}
	if conf > 1 {
		conf = 1
	}
	if conf < confFloor {
		conf = confFloor
	}
	return conf
}
