// Package ensemble votes across the OCR attempts of every engine/variant
// pair and settles on a single consensus text with a calibrated confidence.
package ensemble

import (
	"strings"

	"github.com/joseph-ayodele/receipt-recognizer/internal/engine"
)

// Agreement score weights: token overlap dominates, text length and native
// confidence split the rest.
const (
	agreementSimilarityWeight = 0.4
	agreementLengthWeight     = 0.3
	agreementConfidenceWeight = 0.3
)

// Selection score weights for picking the consensus text out of the
// surviving results.
const (
	selectionLengthWeight     = 0.3
	selectionConfidenceWeight = 0.4
	selectionKeywordWeight    = 0.3

	// Length saturates at 300 chars of credit: a longer dump of garbage
	// must not outrank a shorter, keyword-dense read.
	selectionLengthCap = 0.3
)

// consensusConfidenceCap keeps the ensemble from ever reporting certainty.
const consensusConfidenceCap = 0.95

// receiptKeywords are the terms a plausible receipt read should contain,
// in Portuguese, English, and Spanish. Stored diacritic-free; candidate
// text is folded before matching.
var receiptKeywords = []string{
	"total", "subtotal", "valor", "importe", "amount",
	"data", "date", "fecha",
	"pagamento", "pago", "payment",
	"cartao", "tarjeta", "card", "dinheiro", "efectivo", "cash", "pix", "troco",
	"cupom", "fiscal", "recibo", "receipt", "nota", "factura", "cnpj",
}

// keywordHitsForFull is the distinct-keyword count that earns a full
// keyword score.
const keywordHitsForFull = 6

// Consensus is the settled output of one ensemble round.
type Consensus struct {
	// Text is the winning candidate, verbatim.
	Text string
	// Confidence is the trust-weighted mean confidence of the surviving
	// results, capped below 1.
	Confidence float64
	// Agreement measures how much the survivors told the same story.
	Agreement float64
	// EngineID and Technique identify where Text came from.
	EngineID  string
	Technique string
	// Contributing lists every result that survived filtering, in
	// arrival order.
	Contributing []engine.Result
}

// Combine filters out failed and blank results, then votes. Zero survivors
// yield a zero Consensus; a single survivor is returned verbatim with full
// agreement. Combine never mutates its input and is safe to call from
// multiple goroutines.
func Combine(results []engine.Result, trust map[string]float64) Consensus {
	valid := make([]engine.Result, 0, len(results))
	for _, r := range results {
		if r.Failed() || r.Blank() {
			continue
		}
		valid = append(valid, r)
	}
	if len(valid) == 0 {
		return Consensus{}
	}

	cons := Consensus{
		Agreement:    agreementScore(valid),
		Confidence:   consensusConfidence(valid, trust),
		Contributing: valid,
	}

	best := valid[0]
	bestScore := selectionScore(best)
	for _, r := range valid[1:] {
		if s := selectionScore(r); s > bestScore {
			best, bestScore = r, s
		}
	}
	cons.Text = best.Text
	cons.EngineID = best.EngineID
	cons.Technique = best.Technique
	return cons
}

// agreementScore blends mean pairwise token overlap, length uniformity,
// and mean native confidence. A lone result trivially agrees with itself.
func agreementScore(valid []engine.Result) float64 {
	if len(valid) == 1 {
		return 1
	}

	sets := make([]map[string]struct{}, len(valid))
	for i, r := range valid {
		sets[i] = tokenSet(r.Text)
	}
	var simSum float64
	pairs := 0
	for i := 0; i < len(sets); i++ {
		for j := i + 1; j < len(sets); j++ {
			simSum += jaccard(sets[i], sets[j])
			pairs++
		}
	}
	similarity := simSum / float64(pairs)

	var lenSum, confSum, maxLen float64
	for _, r := range valid {
		l := float64(len(r.Text))
		lenSum += l
		if l > maxLen {
			maxLen = l
		}
		confSum += r.Confidence
	}
	lengthScore := 0.0
	if maxLen > 0 {
		lengthScore = (lenSum / float64(len(valid))) / maxLen
	}
	meanConf := confSum / float64(len(valid))

	return agreementSimilarityWeight*similarity +
		agreementLengthWeight*lengthScore +
		agreementConfidenceWeight*meanConf
}

// selectionScore ranks one candidate for the consensus text.
func selectionScore(r engine.Result) float64 {
	lengthScore := float64(len(r.Text)) / 1000
	if lengthScore > selectionLengthCap {
		lengthScore = selectionLengthCap
	}
	return selectionLengthWeight*lengthScore +
		selectionConfidenceWeight*r.Confidence +
		selectionKeywordWeight*keywordScore(r.Text)
}

// keywordScore is the fraction of a full keyword quota the text hits.
func keywordScore(text string) float64 {
	folded := foldDiacritics(strings.ToLower(text))
	hits := 0
	for _, kw := range receiptKeywords {
		if strings.Contains(folded, kw) {
			hits++
		}
	}
	score := float64(hits) / keywordHitsForFull
	if score > 1 {
		return 1
	}
	return score
}

// consensusConfidence is the trust-weighted mean confidence over the
// survivors. Trust weights are renormalized over whichever engines are
// actually present; engines missing from the trust map count at weight 1.
func consensusConfidence(valid []engine.Result, trust map[string]float64) float64 {
	var weighted, total float64
	for _, r := range valid {
		w, ok := trust[r.EngineID]
		if !ok {
			w = 1
		}
		weighted += w * r.Confidence
		total += w
	}
	var conf float64
	if total > 0 {
		conf = weighted / total
	} else {
		// All known engines configured at zero trust: fall back to a
		// plain mean rather than reporting nothing.
		for _, r := range valid {
			conf += r.Confidence
		}
		conf /= float64(len(valid))
	}
	if conf > consensusConfidenceCap {
		return consensusConfidenceCap
	}
	return conf
}
