package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/otiai10/gosseract/v2"

	"github.com/joseph-ayodele/receipt-recognizer/internal/common"
)

// provisionalGosseractConf stands in when tesseract returns no word boxes.
const provisionalGosseractConf = 0.50

// GosseractEngine runs tesseract in-process through libtesseract. A fresh
// client is created per call; the Engine itself holds only configuration
// and is safe to share.
type GosseractEngine struct {
	id            string
	languages     []string
	psm           int
	dpi           int
	tessdataDir   string
	clientFactory func() *gosseract.Client
	logger        *slog.Logger
}

func NewGosseractEngine(cfg common.EngineConfig, logger *slog.Logger) *GosseractEngine {
	if logger == nil {
		logger = slog.Default()
	}
	langs := cfg.Languages
	if len(langs) == 0 {
		langs = []string{"eng"}
	}
	return &GosseractEngine{
		id:            cfg.ID,
		languages:     langs,
		psm:           cfg.PSM,
		dpi:           cfg.DPI,
		tessdataDir:   cfg.TessdataDir,
		clientFactory: gosseract.NewClient,
		logger:        logger,
	}
}

func (e *GosseractEngine) ID() string { return e.id }

func (e *GosseractEngine) Recognize(ctx context.Context, imagePath string) (Result, error) {
	start := time.Now()
	res := Result{EngineID: e.id}

	if err := ctx.Err(); err != nil {
		res.Err = err
		return res, err
	}

	c := e.clientFactory()
	defer c.Close()

	if err := c.SetImage(imagePath); err != nil {
		res.Err = fmt.Errorf("set image: %w", err)
		return res, res.Err
	}
	if err := c.SetLanguage(e.languages...); err != nil {
		res.Err = fmt.Errorf("set languages: %w", err)
		return res, res.Err
	}
	if e.psm > 0 {
		if err := c.SetPageSegMode(gosseract.PageSegMode(e.psm)); err != nil {
			res.Err = fmt.Errorf("set psm: %w", err)
			return res, res.Err
		}
	}
	if e.dpi > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(e.dpi)); err != nil {
			res.Err = fmt.Errorf("set dpi: %w", err)
			return res, res.Err
		}
	}
	if e.tessdataDir != "" {
		if err := c.SetTessdataPrefix(e.tessdataDir); err != nil {
			res.Err = fmt.Errorf("set tessdata prefix: %w", err)
			return res, res.Err
		}
	}

	native := wordBoxConfidence(c)

	text, err := c.Text()
	if err != nil {
		res.Err = fmt.Errorf("%w: %s: %v", common.ErrEngineFailure, e.id, err)
		return res, res.Err
	}

	res.Text = Normalize(text)
	if native <= 0 {
		native = provisionalGosseractConf
	}
	res.Confidence = blendConfidence(native, heuristicConfidence(res.Text))
	res.Duration = time.Since(start)

	e.logger.Debug("gosseract recognize ok",
		"engine", e.id, "chars", len(res.Text), "confidence", res.Confidence,
		"duration_ms", res.Duration.Milliseconds())
	return res, nil
}

// wordBoxConfidence returns the mean word confidence in 0..1, or 0 when
// boxes are unavailable.
func wordBoxConfidence(c *gosseract.Client) float64 {
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return 0
	}
	var sum float64
	for _, b := range boxes {
		sum += b.Confidence / 100.0
	}
	return sum / float64(len(boxes))
}
