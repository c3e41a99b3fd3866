package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/receipt-recognizer/internal/common"
)

// provisionalCLIConf stands in when the TSV pass yields no word rows.
const provisionalCLIConf = 0.55

// TesseractCLIEngine shells out to the tesseract binary. Useful where
// linking libtesseract is not an option, and for sparse-text page
// segmentation modes that behave differently across versions.
type TesseractCLIEngine struct {
	id          string
	binary      string
	languages   []string
	psm         int
	oem         int
	dpi         int
	tessdataDir string
	runner      Runner
	logger      *slog.Logger
}

func NewTesseractCLIEngine(cfg common.EngineConfig, runner Runner, logger *slog.Logger) *TesseractCLIEngine {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	binary := cfg.Binary
	if binary == "" {
		binary = "tesseract"
	}
	langs := cfg.Languages
	if len(langs) == 0 {
		langs = []string{"eng"}
	}
	return &TesseractCLIEngine{
		id:          cfg.ID,
		binary:      binary,
		languages:   langs,
		psm:         cfg.PSM,
		oem:         cfg.OEM,
		dpi:         cfg.DPI,
		tessdataDir: cfg.TessdataDir,
		runner:      runner,
		logger:      logger,
	}
}

func (e *TesseractCLIEngine) ID() string { return e.id }

func (e *TesseractCLIEngine) Recognize(ctx context.Context, imagePath string) (Result, error) {
	start := time.Now()
	res := Result{EngineID: e.id}

	out, errb, err := e.runner.Run(ctx, e.binary, e.args(imagePath)...)
	if err != nil {
		res.Err = fmt.Errorf("%w: %s: %v: %s", common.ErrEngineFailure, e.id, err, truncate(string(errb), 512))
		return res, res.Err
	}
	res.Text = Normalize(string(out))

	native, tsvErr := e.tsvConfidence(ctx, imagePath)
	if tsvErr != nil {
		e.logger.Debug("tsv confidence unavailable", "engine", e.id, "error", tsvErr)
		native = 0
	}
	if native <= 0 {
		native = provisionalCLIConf
	}
	res.Confidence = blendConfidence(native, heuristicConfidence(res.Text))
	res.Duration = time.Since(start)

	e.logger.Debug("tesseract cli ok",
		"engine", e.id, "chars", len(res.Text), "confidence", res.Confidence,
		"duration_ms", res.Duration.Milliseconds())
	return res, nil
}

func (e *TesseractCLIEngine) args(imagePath string) []string {
	args := []string{imagePath, "stdout", "-l", strings.Join(e.languages, "+")}
	if e.psm > 0 {
		args = append(args, "--psm", strconv.Itoa(e.psm))
	}
	if e.oem > 0 {
		args = append(args, "--oem", strconv.Itoa(e.oem))
	}
	if e.dpi > 0 {
		args = append(args, "--dpi", strconv.Itoa(e.dpi))
	}
	if e.tessdataDir != "" {
		args = append(args, "--tessdata-dir", e.tessdataDir)
	}
	return args
}

// tsvConfidence runs tesseract in TSV mode and returns mean word conf in 0..1.
func (e *TesseractCLIEngine) tsvConfidence(ctx context.Context, imagePath string) (float64, error) {
	args := append(e.args(imagePath), "tsv")
	out, errb, err := e.runner.Run(ctx, e.binary, args...)
	if err != nil {
		return 0, fmt.Errorf("tesseract tsv: %w: %s", err, truncate(string(errb), 512))
	}

	lines := strings.Split(string(out), "\n")
	// conf is column 11 of 12; the last column is the recognized text
	var sum, n float64
	for i, ln := range lines {
		if i == 0 || len(ln) == 0 {
			continue
		} // skip header
		cols := strings.Split(ln, "\t")
		if len(cols) < 12 {
			continue
		} // tsv data rows have 12 columns
		confStr := cols[10]
		if confStr == "" || confStr == "-1" {
			continue
		}
		if v, err := strconv.ParseFloat(confStr, 64); err == nil {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	mean := sum / n // 0..100
	return mean / 100.0, nil
}
