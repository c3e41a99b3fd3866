// Package engine provides OCR engine adapters behind a uniform interface,
// plus the result cache and bounded worker pool recognition runs share.
package engine

import (
	"context"
	"strings"
	"time"
)

// Providers known to the registry.
const (
	ProviderGosseract    = "gosseract"
	ProviderTesseractCLI = "tesseract-cli"
)

// Result is one engine attempt on one image variant. A failed attempt
// carries Err and is treated as absent data by the ensemble, never as
// a run-level failure.
type Result struct {
	Text       string
	Confidence float64 // always in [0,1]
	EngineID   string
	Technique  string // stamped by the caller that chose the variant
	Duration   time.Duration
	Err        error
}

// Failed reports whether this attempt produced no usable data.
func (r Result) Failed() bool { return r.Err != nil }

// Blank reports whether the attempt succeeded but recognized nothing.
func (r Result) Blank() bool { return strings.TrimSpace(r.Text) == "" }

// Engine recognizes text in a single image file. Implementations must be
// safe for concurrent use; per-call state (such as a tesseract client)
// belongs inside Recognize.
type Engine interface {
	ID() string
	Recognize(ctx context.Context, imagePath string) (Result, error)
}

// clampConf keeps engine confidences inside [0,1].
func clampConf(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
