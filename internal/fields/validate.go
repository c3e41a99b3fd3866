package fields

import (
	"fmt"
	"time"

	"github.com/joseph-ayodele/receipt-recognizer/constants"
	"github.com/joseph-ayodele/receipt-recognizer/internal/common"
)

// Receipt-likelihood gate: of the six indicators, at least this many must
// hold or the record is rejected as non-receipt content.
const minReceiptIndicators = 3

// Report is the outcome of validating one record. Errors make the record
// invalid; warnings only flag reduced trust. Validation never panics and
// never mutates the record.
type Report struct {
	IsValid  bool     `json:"is_valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Validator checks extracted records against configured bounds.
type Validator struct {
	cfg common.ValidationConfig
	now func() time.Time
}

// NewValidator builds a validator; zero config fields fall back to the
// documented defaults.
func NewValidator(cfg common.ValidationConfig) *Validator {
	if cfg.MinAmount <= 0 {
		cfg.MinAmount = 0.01
	}
	if cfg.MaxAmount <= 0 {
		cfg.MaxAmount = 100000
	}
	if cfg.MaxAgeDays <= 0 {
		cfg.MaxAgeDays = 365 * 3
	}
	if cfg.MaxFutureDays <= 0 {
		cfg.MaxFutureDays = 1
	}
	if cfg.MinConfidence <= 0 {
		cfg.MinConfidence = 0.3
	}
	return &Validator{cfg: cfg, now: time.Now}
}

// Validate runs the receipt-likelihood gate, the field sanity checks, and
// the record schema layer.
func (v *Validator) Validate(rec Record) Report {
	var rep Report

	indicators := 0
	if rec.Amount >= v.cfg.MinAmount && rec.Amount <= v.cfg.MaxAmount {
		indicators++
	}
	if rec.StoreName != "" && rec.StoreName != DefaultStoreName {
		indicators++
	}
	if rec.Confidence > 0.2 {
		indicators++
	}
	if constants.IsKnownCurrency(rec.Currency) {
		indicators++
	}
	if len(rec.Items) > 0 {
		indicators++
	}
	if rec.PaymentMethod != "" && rec.PaymentMethod != constants.PaymentUnknown {
		indicators++
	}
	if indicators < minReceiptIndicators {
		rep.Errors = append(rep.Errors,
			fmt.Sprintf("content does not appear to be a receipt (%d of 6 indicators present)", indicators))
	}

	switch {
	case rec.Amount <= 0:
		rep.Warnings = append(rep.Warnings, "no amount extracted")
	case rec.Amount < v.cfg.MinAmount:
		rep.Errors = append(rep.Errors, fmt.Sprintf("amount %.2f below minimum %.2f", rec.Amount, v.cfg.MinAmount))
	case rec.Amount > v.cfg.MaxAmount:
		rep.Errors = append(rep.Errors, fmt.Sprintf("amount %.2f exceeds maximum %.2f", rec.Amount, v.cfg.MaxAmount))
	}

	now := v.now()
	switch {
	case rec.Date.IsZero():
		rep.Warnings = append(rep.Warnings, "no date extracted")
	case rec.Date.After(now.AddDate(0, 0, v.cfg.MaxFutureDays)):
		rep.Errors = append(rep.Errors, fmt.Sprintf("receipt date %s is in the future", rec.Date.Format("2006-01-02")))
	case rec.Date.Before(now.AddDate(0, 0, -v.cfg.MaxAgeDays)):
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("receipt date %s is older than %d days", rec.Date.Format("2006-01-02"), v.cfg.MaxAgeDays))
	}

	if rec.Confidence < v.cfg.MinConfidence {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("extraction confidence %.2f below threshold %.2f", rec.Confidence, v.cfg.MinConfidence))
	}

	if err := CheckRecordSchema(rec); err != nil {
		rep.Errors = append(rep.Errors, err.Error())
	}

	rep.IsValid = len(rep.Errors) == 0
	return rep
}
