package engine

import (
	"regexp"
	"strings"
)

var (
	reDate   = regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{2,4}\b|\b20\d{2}-\d{2}-\d{2}\b`)
	reCurr   = regexp.MustCompile(`\b(usd|eur|gbp|brl|reais?)\b|r\$|us\$|[$£€]`)
	reAmount = regexp.MustCompile(`\b\d{1,3}(\.\d{3})*,\d{2}\b|\b\d{1,3}(,\d{3})*\.\d{2}\b|\b\d+[.,]\d{2}\b`)
)

func hasDatePattern(s string) bool     { return reDate.MatchString(s) }
func hasCurrencyPattern(s string) bool { return reCurr.MatchString(s) }
func hasAmountPattern(s string) bool   { return reAmount.MatchString(s) }

// heuristicConfidence scores decoded text by how receipt-like it looks.
// Used to shade native engine confidence, and as the whole signal for
// engines that report none.
func heuristicConfidence(txt string) float64 {
	txtL := strings.ToLower(txt)
	score := 0.2 // base
	if hasDatePattern(txtL) {
		score += 0.2
	}
	if hasCurrencyPattern(txtL) {
		score += 0.15
	}
	if hasAmountPattern(txtL) {
		score += 0.15
	}
	if len(txt) > 120 {
		score += 0.1
	} // enough content
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// blendConfidence weights native OCR confidence against the text heuristic.
// Zero native confidence means the engine reported nothing usable and the
// heuristic stands alone.
func blendConfidence(native, heuristic float64) float64 {
	if native <= 0 {
		return clampConf(heuristic)
	}
	return clampConf(0.7*native + 0.3*heuristic)
}
