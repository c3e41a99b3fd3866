package ensemble_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/receipt-recognizer/internal/engine"
	"github.com/joseph-ayodele/receipt-recognizer/internal/ensemble"
)

const receiptText = "TOTAL R$ 45,90\nData: 05/03/2024 14:30\nPagamento: cartão de crédito"

func TestCombineEmptyInput(t *testing.T) {
	cons := ensemble.Combine(nil, nil)

	assert.Empty(t, cons.Text)
	assert.Zero(t, cons.Confidence)
	assert.Zero(t, cons.Agreement)
	assert.Empty(t, cons.Contributing)
}

func TestCombineFiltersFailedAndBlank(t *testing.T) {
	results := []engine.Result{
		{EngineID: "a", Err: errors.New("boom")},
		{EngineID: "b", Text: "   \n "},
		{EngineID: "c", Text: receiptText, Confidence: 0.7},
	}

	cons := ensemble.Combine(results, nil)

	require.Len(t, cons.Contributing, 1)
	assert.Equal(t, "c", cons.EngineID)
	assert.Equal(t, receiptText, cons.Text)
}

func TestCombineSingleResultVerbatim(t *testing.T) {
	results := []engine.Result{
		{EngineID: "a", Technique: "standard", Text: receiptText, Confidence: 0.7},
	}

	cons := ensemble.Combine(results, map[string]float64{"a": 0.4})

	assert.Equal(t, receiptText, cons.Text)
	assert.Equal(t, "a", cons.EngineID)
	assert.Equal(t, "standard", cons.Technique)
	assert.InDelta(t, 1.0, cons.Agreement, 1e-9)
	assert.InDelta(t, 0.7, cons.Confidence, 1e-9)
}

func TestCombineIdenticalResultsAgreement(t *testing.T) {
	results := []engine.Result{
		{EngineID: "a", Text: receiptText, Confidence: 0.8},
		{EngineID: "b", Text: receiptText, Confidence: 0.8},
		{EngineID: "c", Text: receiptText, Confidence: 0.8},
	}

	cons := ensemble.Combine(results, nil)

	// similarity 1, length ratio 1, mean confidence 0.8.
	assert.InDelta(t, 0.4+0.3+0.3*0.8, cons.Agreement, 1e-9)
	assert.InDelta(t, 0.8, cons.Confidence, 1e-9)
	assert.Len(t, cons.Contributing, 3)
}

func TestCombineDisagreementLowersScore(t *testing.T) {
	agree := ensemble.Combine([]engine.Result{
		{EngineID: "a", Text: receiptText, Confidence: 0.8},
		{EngineID: "b", Text: receiptText, Confidence: 0.8},
	}, nil)
	disagree := ensemble.Combine([]engine.Result{
		{EngineID: "a", Text: receiptText, Confidence: 0.8},
		{EngineID: "b", Text: "qqpl zzt 11x@# 9", Confidence: 0.8},
	}, nil)

	assert.Greater(t, agree.Agreement, disagree.Agreement)
}

func TestCombinePrefersKeywordRichText(t *testing.T) {
	noise := strings.Repeat("lorem ipsum dolor sit amet ", 40)
	results := []engine.Result{
		{EngineID: "long", Text: noise, Confidence: 0.9},
		{EngineID: "keywords", Text: "TOTAL R$ 45,90 Data: 05/03/2024 Pagamento: cartão de crédito Cupom Fiscal", Confidence: 0.6},
	}

	cons := ensemble.Combine(results, nil)

	assert.Equal(t, "keywords", cons.EngineID)
}

func TestCombineConfidenceCapped(t *testing.T) {
	results := []engine.Result{
		{EngineID: "a", Text: receiptText, Confidence: 1.0},
		{EngineID: "b", Text: receiptText, Confidence: 1.0},
	}

	cons := ensemble.Combine(results, nil)

	assert.InDelta(t, 0.95, cons.Confidence, 1e-9)
}

func TestCombineTrustWeightedConfidence(t *testing.T) {
	results := []engine.Result{
		{EngineID: "a", Text: receiptText, Confidence: 1.0},
		{EngineID: "b", Text: receiptText, Confidence: 0.5},
	}
	trust := map[string]float64{"a": 0.75, "b": 0.25}

	cons := ensemble.Combine(results, trust)

	assert.InDelta(t, 0.875, cons.Confidence, 1e-9)
}

func TestCombineUnknownEngineCountsAtFullWeight(t *testing.T) {
	results := []engine.Result{
		{EngineID: "known", Text: receiptText, Confidence: 0.5},
		{EngineID: "stranger", Text: receiptText, Confidence: 1.0},
	}
	trust := map[string]float64{"known": 0.4}

	cons := ensemble.Combine(results, trust)

	// (0.4*0.5 + 1.0*1.0) / 1.4
	assert.InDelta(t, 1.2/1.4, cons.Confidence, 1e-9)
}

func TestCombineScoresStayInUnitRange(t *testing.T) {
	pool := []engine.Result{
		{EngineID: "a", Text: receiptText, Confidence: 1.0},
		{EngineID: "b", Text: "TOTAL 12.00", Confidence: 0.1},
		{EngineID: "c", Text: strings.Repeat("x", 5000), Confidence: 0.9},
		{EngineID: "d", Text: "r$ 1,00", Confidence: 0.0},
	}
	for i := 1; i < len(pool); i++ {
		cons := ensemble.Combine(pool[:i+1], map[string]float64{"a": 0.4, "b": 0.3, "c": 0.3})

		assert.GreaterOrEqual(t, cons.Confidence, 0.0)
		assert.LessOrEqual(t, cons.Confidence, 1.0)
		assert.GreaterOrEqual(t, cons.Agreement, 0.0)
		assert.LessOrEqual(t, cons.Agreement, 1.0)
	}
}
