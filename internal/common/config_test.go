package common_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/receipt-recognizer/internal/common"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := common.LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Pool.Size)
	assert.Equal(t, "BALANCED", cfg.Profiles.Default)
	assert.False(t, cfg.Profiles.FastPreprocess)
	assert.Equal(t, int64(20), cfg.Files.MaxSizeMB)
	assert.Equal(t, []string{"standard", "contrast", "denoised", "upscaled"}, cfg.Preprocess.Techniques)
	assert.Equal(t, 300, cfg.Preprocess.PDFRenderDPI)

	require.Len(t, cfg.Engines, 3)
	assert.Equal(t, "tesseract-auto", cfg.Engines[0].ID)
	assert.Equal(t, "gosseract", cfg.Engines[0].Provider)
	assert.InDelta(t, 0.4, cfg.Engines[0].Weight, 1e-9)
	assert.InDelta(t, 0.3, cfg.Engines[1].Weight, 1e-9)
	assert.InDelta(t, 0.3, cfg.Engines[2].Weight, 1e-9)
	assert.Equal(t, "tesseract-cli", cfg.Engines[2].Provider)

	require.NoError(t, cfg.Validate())
}

func TestLoadConfigFromFile(t *testing.T) {
	yaml := `
pool:
  size: 2
profiles:
  default: ACCURATE
  fast_preprocess: true
validation:
  min_amount: 1.5
engines:
  - id: only
    provider: gosseract
    languages: [eng]
    psm: 6
    weight: 1.0
    enabled: true
`
	path := filepath.Join(t.TempDir(), "recognizer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := common.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Pool.Size)
	assert.Equal(t, "ACCURATE", cfg.Profiles.Default)
	assert.True(t, cfg.Profiles.FastPreprocess)
	assert.InDelta(t, 1.5, cfg.Validation.MinAmount, 1e-9)

	require.Len(t, cfg.Engines, 1)
	assert.Equal(t, "only", cfg.Engines[0].ID)
	assert.Equal(t, []string{"eng"}, cfg.Engines[0].Languages)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := common.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("RECOGNIZER_POOL_SIZE", "9")
	t.Setenv("RECOGNIZER_PROFILES_DEFAULT", "FAST")

	cfg, err := common.LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 9, cfg.Pool.Size)
	assert.Equal(t, "FAST", cfg.Profiles.Default)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*common.Config)
		wantErr bool
	}{
		{name: "defaults pass", mutate: func(*common.Config) {}, wantErr: false},
		{name: "zero pool", mutate: func(c *common.Config) { c.Pool.Size = 0 }, wantErr: true},
		{name: "no enabled engine", mutate: func(c *common.Config) {
			for i := range c.Engines {
				c.Engines[i].Enabled = false
			}
		}, wantErr: true},
		{name: "negative weight", mutate: func(c *common.Config) { c.Engines[0].Weight = -0.1 }, wantErr: true},
		{name: "missing engine id", mutate: func(c *common.Config) { c.Engines[0].ID = "" }, wantErr: true},
		{name: "upscale below one", mutate: func(c *common.Config) { c.Preprocess.UpscaleFactor = 0.5 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := common.LoadConfig("")
			require.NoError(t, err)
			tt.mutate(cfg)

			err = cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
