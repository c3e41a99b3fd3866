package engine_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/receipt-recognizer/internal/common"
	"github.com/joseph-ayodele/receipt-recognizer/internal/engine"
)

// stubRunner answers the text pass and the tsv pass from canned output.
type stubRunner struct {
	text    string
	tsv     string
	failAll bool
	calls   [][]string
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.calls = append(s.calls, append([]string{name}, args...))
	if s.failAll {
		return nil, []byte("tesseract: cannot read image"), errors.New("exit status 1")
	}
	if len(args) > 0 && args[len(args)-1] == "tsv" {
		return []byte(s.tsv), nil, nil
	}
	return []byte(s.text), nil, nil
}

const sampleTSV = "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n" +
	"5\t1\t1\t1\t1\t1\t10\t10\t50\t12\t80\tTOTAL\n" +
	"5\t1\t1\t1\t1\t2\t70\t10\t40\t12\t90\t45,90\n" +
	"5\t1\t1\t1\t1\t3\t70\t30\t40\t12\t-1\t\n"

func cliEngine(r engine.Runner) *engine.TesseractCLIEngine {
	return engine.NewTesseractCLIEngine(common.EngineConfig{
		ID:        "tesseract-sparse",
		Provider:  "tesseract-cli",
		Languages: []string{"por", "eng"},
		PSM:       11,
	}, r, nil)
}

func TestTesseractCLIRecognize(t *testing.T) {
	runner := &stubRunner{
		text: "MERCADO BOM PRECO\r\nData: 05/03/2024\r\nTOTAL  R$ 45,90\r\n",
		tsv:  sampleTSV,
	}
	e := cliEngine(runner)

	res, err := e.Recognize(context.Background(), "/tmp/variant.png")
	require.NoError(t, err)

	assert.Equal(t, "tesseract-sparse", res.EngineID)
	assert.Equal(t, "MERCADO BOM PRECO\nData: 05/03/2024\nTOTAL R$ 45,90", res.Text)

	// tsv words 80 and 90 average to 0.85 native; heuristic for this text
	// is 0.7; blended 0.7*0.85 + 0.3*0.7.
	assert.InDelta(t, 0.805, res.Confidence, 1e-9)

	require.Len(t, runner.calls, 2)
	first := strings.Join(runner.calls[0], " ")
	assert.Contains(t, first, "-l por+eng")
	assert.Contains(t, first, "--psm 11")
	assert.Equal(t, "tsv", runner.calls[1][len(runner.calls[1])-1])
}

func TestTesseractCLIProvisionalConfidence(t *testing.T) {
	runner := &stubRunner{
		text: "MERCADO BOM PRECO\nData: 05/03/2024\nTOTAL R$ 45,90",
		tsv:  "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n",
	}
	e := cliEngine(runner)

	res, err := e.Recognize(context.Background(), "/tmp/variant.png")
	require.NoError(t, err)

	// no tsv rows: provisional 0.55 native, heuristic 0.7
	assert.InDelta(t, 0.7*0.55+0.3*0.7, res.Confidence, 1e-9)
}

func TestTesseractCLIFailure(t *testing.T) {
	runner := &stubRunner{failAll: true}
	e := cliEngine(runner)

	res, err := e.Recognize(context.Background(), "/tmp/variant.png")
	require.Error(t, err)

	assert.True(t, res.Failed())
	assert.ErrorIs(t, err, common.ErrEngineFailure)
	assert.Contains(t, err.Error(), "cannot read image")
}

func TestTesseractCLIDefaults(t *testing.T) {
	e := engine.NewTesseractCLIEngine(common.EngineConfig{ID: "bare"}, &stubRunner{text: "x y z"}, nil)

	res, err := e.Recognize(context.Background(), "/tmp/v.png")
	require.NoError(t, err)
	assert.Equal(t, "bare", res.EngineID)
	assert.Equal(t, "x y z", res.Text)
}
