package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeuristicConfidenceReceiptText(t *testing.T) {
	txt := strings.ToLower("MERCADO BOM PRECO\nData: 05/03/2024\nTOTAL R$ 45,90")

	// base 0.2 + date 0.2 + currency 0.15 + amount 0.15
	assert.InDelta(t, 0.7, heuristicConfidence(txt), 1e-9)
}

func TestHeuristicConfidenceBareText(t *testing.T) {
	assert.InDelta(t, 0.2, heuristicConfidence("random words, no receipt signals"), 1e-9)
}

func TestHeuristicConfidenceLongText(t *testing.T) {
	long := strings.Repeat("lorem ipsum ", 20) // >120 chars
	assert.InDelta(t, 0.3, heuristicConfidence(long), 1e-9)
}

func TestHeuristicPatterns(t *testing.T) {
	assert.True(t, hasDatePattern("data: 05/03/2024"))
	assert.True(t, hasDatePattern("date 2024-03-05"))
	assert.False(t, hasDatePattern("no dates here"))

	assert.True(t, hasCurrencyPattern("total r$ 45,90"))
	assert.True(t, hasCurrencyPattern("total $12.00"))
	assert.True(t, hasCurrencyPattern("paid in brl"))
	assert.False(t, hasCurrencyPattern("just words"))

	assert.True(t, hasAmountPattern("45,90"))
	assert.True(t, hasAmountPattern("1.234,56"))
	assert.True(t, hasAmountPattern("1,234.56"))
	assert.False(t, hasAmountPattern("12345"))
}

func TestBlendConfidence(t *testing.T) {
	assert.InDelta(t, 0.7*0.8+0.3*0.5, blendConfidence(0.8, 0.5), 1e-9)
	// no native signal: heuristic stands alone
	assert.InDelta(t, 0.45, blendConfidence(0, 0.45), 1e-9)
	// clamped
	assert.LessOrEqual(t, blendConfidence(1.5, 1.2), 1.0)
}
