package imaging_test

import (
	"context"
	"crypto/sha256"
	"image"
	"image/color"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/receipt-recognizer/internal/imaging"
)

func testSource(w, h int) *imaging.Source {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(60)
			if (x/4+y/4)%2 == 0 {
				v = 180
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return &imaging.Source{Path: "mem.png", Format: "IMAGE", Img: img, Hash: "feedbeef"}
}

func TestVariantsProducesConfiguredTechniques(t *testing.T) {
	p := imaging.NewPreprocessor(imaging.Config{ArtifactDir: t.TempDir()}, nil)
	src := testSource(64, 96)

	variants, diags, err := p.Variants(context.Background(), src, "run-1")
	require.NoError(t, err)
	assert.Empty(t, diags)
	require.Len(t, variants, 4)

	wantOrder := []string{"standard", "contrast", "denoised", "upscaled"}
	for i, v := range variants {
		assert.Equal(t, wantOrder[i], v.Technique)
		info, err := os.Stat(v.Path)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}

	// upscaled doubles both dimensions by default
	assert.Equal(t, 128, variants[3].Width)
	assert.Equal(t, 192, variants[3].Height)
}

func TestVariantsDeterministic(t *testing.T) {
	p := imaging.NewPreprocessor(imaging.Config{ArtifactDir: t.TempDir()}, nil)
	src := testSource(64, 64)

	first, _, err := p.Variants(context.Background(), src, "run-a")
	require.NoError(t, err)
	second, _, err := p.Variants(context.Background(), src, "run-b")
	require.NoError(t, err)
	require.Len(t, second, len(first))

	for i := range first {
		a, err := os.ReadFile(first[i].Path)
		require.NoError(t, err)
		b, err := os.ReadFile(second[i].Path)
		require.NoError(t, err)
		assert.Equal(t, sha256.Sum256(a), sha256.Sum256(b), "technique %s", first[i].Technique)
	}
}

func TestVariantsDropsUnknownTechnique(t *testing.T) {
	p := imaging.NewPreprocessor(imaging.Config{
		ArtifactDir: t.TempDir(),
		Techniques:  []string{"standard", "posterize"},
	}, nil)

	variants, diags, err := p.Variants(context.Background(), testSource(48, 48), "run-1")
	require.NoError(t, err)

	require.Len(t, variants, 1)
	assert.Equal(t, "standard", variants[0].Technique)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0], "posterize")
}

func TestVariantsAllFailFallsBackToOriginal(t *testing.T) {
	p := imaging.NewPreprocessor(imaging.Config{
		ArtifactDir: t.TempDir(),
		Techniques:  []string{"posterize", "solarize"},
	}, nil)

	variants, diags, err := p.Variants(context.Background(), testSource(48, 48), "run-1")
	require.NoError(t, err)

	require.Len(t, variants, 1)
	assert.Equal(t, imaging.TechniqueOriginal, variants[0].Technique)
	assert.NotEmpty(t, diags)

	_, err = os.Stat(variants[0].Path)
	assert.NoError(t, err)
}

func TestVariantsCancelledContext(t *testing.T) {
	p := imaging.NewPreprocessor(imaging.Config{ArtifactDir: t.TempDir()}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := p.Variants(ctx, testSource(48, 48), "run-1")
	assert.ErrorIs(t, err, context.Canceled)
}
