package imaging

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/receipt-recognizer/internal/common"
)

// sharpenKernel is the 3x3 sharpening convolution used by the denoised
// technique after its blur pass.
var sharpenKernel = [9]float64{0, -1, 0, -1, 5, -1, 0, -1, 0}

// Preprocessor renders preprocessing technique variants of a source image.
type Preprocessor struct {
	cfg    Config
	logger *slog.Logger
}

func NewPreprocessor(cfg Config, logger *slog.Logger) *Preprocessor {
	if logger == nil {
		logger = slog.Default()
	}
	cfg.setDefaults()
	return &Preprocessor{cfg: cfg, logger: logger}
}

// ArtifactDir returns the per-run directory Variants writes into. The run
// owns it and removes it on every exit path.
func (p *Preprocessor) ArtifactDir(runID string) string {
	return filepath.Join(p.cfg.ArtifactDir, runID)
}

// Variants renders the configured techniques into per-run PNG files.
// A failing technique drops only its own variant; when every technique
// fails the original image is written as a single fallback variant so
// recognition still has input. The returned diagnostics describe drops.
func (p *Preprocessor) Variants(ctx context.Context, src *Source, runID string) ([]Variant, []string, error) {
	dir := p.ArtifactDir(runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create artifact dir: %w", err)
	}

	var variants []Variant
	var diags []string
	for _, technique := range p.cfg.Techniques {
		if err := ctx.Err(); err != nil {
			return variants, diags, err
		}
		img, err := p.apply(technique, src.Img)
		if err != nil {
			p.logger.Warn("preprocess technique failed", "technique", technique, "error", err)
			diags = append(diags, fmt.Sprintf("preprocess %s: %v", technique, err))
			continue
		}
		v, err := writeVariant(dir, technique, img)
		if err != nil {
			p.logger.Warn("variant write failed", "technique", technique, "error", err)
			diags = append(diags, fmt.Sprintf("preprocess %s: %v", technique, err))
			continue
		}
		variants = append(variants, v)
	}

	if len(variants) == 0 {
		v, err := writeVariant(dir, TechniqueOriginal, src.Img)
		if err != nil {
			return nil, diags, fmt.Errorf("%w: fallback to original: %v", common.ErrTransformFailed, err)
		}
		diags = append(diags, "all preprocessing techniques failed; recognizing original image")
		variants = append(variants, v)
	}

	p.logger.Debug("variants ready", "run_id", runID, "count", len(variants), "dropped", len(diags))
	return variants, diags, nil
}

// Original writes the source image unmodified, for profiles that skip
// preprocessing.
func (p *Preprocessor) Original(src *Source, runID string) (Variant, error) {
	dir := p.ArtifactDir(runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Variant{}, fmt.Errorf("create artifact dir: %w", err)
	}
	return writeVariant(dir, TechniqueOriginal, src.Img)
}

func (p *Preprocessor) apply(technique string, img image.Image) (image.Image, error) {
	switch technique {
	case TechniqueStandard:
		return sharpen(normalize(toGray(img)), 0.6), nil
	case TechniqueContrast:
		return sharpen(stretchContrast(clippedNormalize(toGray(img), 2.0), 1.2), 1.2), nil
	case TechniqueDenoised:
		return convolve3x3(boxBlur3(normalize(toGray(img))), sharpenKernel), nil
	case TechniqueUpscaled:
		return sharpen(normalize(upscale(toGray(img), p.cfg.UpscaleFactor)), 0.6), nil
	default:
		return nil, fmt.Errorf("unknown preprocessing technique %q", technique)
	}
}

func writeVariant(dir, technique string, img image.Image) (Variant, error) {
	path := filepath.Join(dir, technique+".png")
	f, err := os.Create(path)
	if err != nil {
		return Variant{}, fmt.Errorf("create variant: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return Variant{}, fmt.Errorf("encode variant: %w", err)
	}
	if err := f.Close(); err != nil {
		return Variant{}, fmt.Errorf("close variant: %w", err)
	}
	b := img.Bounds()
	return Variant{Path: path, Technique: technique, Width: b.Dx(), Height: b.Dy()}, nil
}
