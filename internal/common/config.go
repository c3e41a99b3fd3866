package common

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all recognizer configuration
type Config struct {
	Log        LogConfig
	Files      FilesConfig
	Artifacts  ArtifactsConfig
	Preprocess PreprocessConfig
	Engines    []EngineConfig
	Pool       PoolConfig
	Profiles   ProfilesConfig
	Validation ValidationConfig
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// FilesConfig holds the input boundary limits enforced before any processing.
type FilesConfig struct {
	MaxSizeMB int64 `mapstructure:"max_size_mb"`
	MinWidth  int   `mapstructure:"min_width"`
	MinHeight int   `mapstructure:"min_height"`
	MaxWidth  int   `mapstructure:"max_width"`
	MaxHeight int   `mapstructure:"max_height"`
}

// ArtifactsConfig holds where intermediate variant images are written.
// The directory is per-run scoped; runs remove their own files.
type ArtifactsConfig struct {
	Dir string `mapstructure:"dir"`
}

// PreprocessConfig holds preprocessing technique settings.
type PreprocessConfig struct {
	Techniques    []string `mapstructure:"techniques"`
	UpscaleFactor float64  `mapstructure:"upscale_factor"`
	PDFRenderDPI  int      `mapstructure:"pdf_render_dpi"`
}

// EngineConfig holds settings for a single recognition engine instance.
// The same provider may back several instances with different modes.
type EngineConfig struct {
	ID          string   `mapstructure:"id"`
	Provider    string   `mapstructure:"provider"`
	Languages   []string `mapstructure:"languages"`
	PSM         int      `mapstructure:"psm"`
	OEM         int      `mapstructure:"oem"`
	DPI         int      `mapstructure:"dpi"`
	Weight      float64  `mapstructure:"weight"`
	Enabled     bool     `mapstructure:"enabled"`
	Binary      string   `mapstructure:"binary"`
	TessdataDir string   `mapstructure:"tessdata_dir"`
}

// PoolConfig holds worker pool settings.
type PoolConfig struct {
	Size int `mapstructure:"size"`
}

// ProfilesConfig holds processing profile settings.
type ProfilesConfig struct {
	Default        string  `mapstructure:"default"`
	FastPreprocess bool    `mapstructure:"fast_preprocess"`
	MinConfidence  float64 `mapstructure:"min_confidence"`
}

// ValidationConfig holds thresholds for validating extracted records.
type ValidationConfig struct {
	MinAmount     float64 `mapstructure:"min_amount"`
	MaxAmount     float64 `mapstructure:"max_amount"`
	MaxAgeDays    int     `mapstructure:"max_age_days"`
	MaxFutureDays int     `mapstructure:"max_future_days"`
	MinConfidence float64 `mapstructure:"min_confidence"`
}

// DefaultEngines returns the engine set used when none is configured:
// two in-process tesseract modes plus one CLI sparse-text pass.
func DefaultEngines() []EngineConfig {
	return []EngineConfig{
		{ID: "tesseract-auto", Provider: "gosseract", Languages: []string{"por", "eng"}, PSM: 3, Weight: 0.4, Enabled: true},
		{ID: "tesseract-block", Provider: "gosseract", Languages: []string{"por", "eng"}, PSM: 6, Weight: 0.3, Enabled: true},
		{ID: "tesseract-sparse", Provider: "tesseract-cli", Languages: []string{"por", "eng"}, PSM: 11, Weight: 0.3, Enabled: true},
	}
}

// LoadConfig reads configuration from an optional YAML file plus environment
// variables with the RECOGNIZER_ prefix. An empty path means file loading is
// skipped and defaults + environment apply.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("RECOGNIZER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// File boundary defaults
	v.SetDefault("files.max_size_mb", 20)
	v.SetDefault("files.min_width", 32)
	v.SetDefault("files.min_height", 32)
	v.SetDefault("files.max_width", 10000)
	v.SetDefault("files.max_height", 10000)

	// Artifact defaults
	v.SetDefault("artifacts.dir", "./tmp")

	// Preprocess defaults
	v.SetDefault("preprocess.techniques", []string{"standard", "contrast", "denoised", "upscaled"})
	v.SetDefault("preprocess.upscale_factor", 2.0)
	v.SetDefault("preprocess.pdf_render_dpi", 300)

	// Pool defaults
	v.SetDefault("pool.size", 4)

	// Profile defaults
	v.SetDefault("profiles.default", "BALANCED")
	v.SetDefault("profiles.fast_preprocess", false)
	v.SetDefault("profiles.min_confidence", 0.6)

	// Validation defaults
	v.SetDefault("validation.min_amount", 0.01)
	v.SetDefault("validation.max_amount", 100000)
	v.SetDefault("validation.max_age_days", 365*3)
	v.SetDefault("validation.max_future_days", 1)
	v.SetDefault("validation.min_confidence", 0.3)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"log.level":                  "RECOGNIZER_LOG_LEVEL",
		"log.format":                 "RECOGNIZER_LOG_FORMAT",
		"files.max_size_mb":          "RECOGNIZER_FILES_MAX_SIZE_MB",
		"files.min_width":            "RECOGNIZER_FILES_MIN_WIDTH",
		"files.min_height":           "RECOGNIZER_FILES_MIN_HEIGHT",
		"files.max_width":            "RECOGNIZER_FILES_MAX_WIDTH",
		"files.max_height":           "RECOGNIZER_FILES_MAX_HEIGHT",
		"artifacts.dir":              "RECOGNIZER_ARTIFACTS_DIR",
		"preprocess.upscale_factor":  "RECOGNIZER_PREPROCESS_UPSCALE_FACTOR",
		"preprocess.pdf_render_dpi":  "RECOGNIZER_PREPROCESS_PDF_RENDER_DPI",
		"pool.size":                  "RECOGNIZER_POOL_SIZE",
		"profiles.default":           "RECOGNIZER_PROFILES_DEFAULT",
		"profiles.fast_preprocess":   "RECOGNIZER_PROFILES_FAST_PREPROCESS",
		"profiles.min_confidence":    "RECOGNIZER_PROFILES_MIN_CONFIDENCE",
		"validation.min_amount":      "RECOGNIZER_VALIDATION_MIN_AMOUNT",
		"validation.max_amount":      "RECOGNIZER_VALIDATION_MAX_AMOUNT",
		"validation.max_age_days":    "RECOGNIZER_VALIDATION_MAX_AGE_DAYS",
		"validation.max_future_days": "RECOGNIZER_VALIDATION_MAX_FUTURE_DAYS",
		"validation.min_confidence":  "RECOGNIZER_VALIDATION_MIN_CONFIDENCE",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}

	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.Files = FilesConfig{
		MaxSizeMB: v.GetInt64("files.max_size_mb"),
		MinWidth:  v.GetInt("files.min_width"),
		MinHeight: v.GetInt("files.min_height"),
		MaxWidth:  v.GetInt("files.max_width"),
		MaxHeight: v.GetInt("files.max_height"),
	}
	cfg.Artifacts = ArtifactsConfig{
		Dir: v.GetString("artifacts.dir"),
	}
	cfg.Preprocess = PreprocessConfig{
		Techniques:    v.GetStringSlice("preprocess.techniques"),
		UpscaleFactor: v.GetFloat64("preprocess.upscale_factor"),
		PDFRenderDPI:  v.GetInt("preprocess.pdf_render_dpi"),
	}
	cfg.Pool = PoolConfig{
		Size: v.GetInt("pool.size"),
	}
	cfg.Profiles = ProfilesConfig{
		Default:        v.GetString("profiles.default"),
		FastPreprocess: v.GetBool("profiles.fast_preprocess"),
		MinConfidence:  v.GetFloat64("profiles.min_confidence"),
	}
	cfg.Validation = ValidationConfig{
		MinAmount:     v.GetFloat64("validation.min_amount"),
		MaxAmount:     v.GetFloat64("validation.max_amount"),
		MaxAgeDays:    v.GetInt("validation.max_age_days"),
		MaxFutureDays: v.GetInt("validation.max_future_days"),
		MinConfidence: v.GetFloat64("validation.min_confidence"),
	}

	if err := v.UnmarshalKey("engines", &cfg.Engines); err != nil {
		return nil, fmt.Errorf("parse engines config: %w", err)
	}
	if len(cfg.Engines) == 0 {
		cfg.Engines = DefaultEngines()
	}

	return cfg, nil
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Pool.Size <= 0 {
		return NewAppError("CONFIG_ERROR", "pool.size must be positive", ErrInvalidInput)
	}
	if c.Files.MaxSizeMB <= 0 {
		return NewAppError("CONFIG_ERROR", "files.max_size_mb must be positive", ErrInvalidInput)
	}
	if c.Preprocess.UpscaleFactor < 1.0 {
		return NewAppError("CONFIG_ERROR", "preprocess.upscale_factor must be >= 1.0", ErrInvalidInput)
	}
	enabled := 0
	for i := range c.Engines {
		e := &c.Engines[i]
		if e.ID == "" {
			return NewAppError("CONFIG_ERROR", "engine id is required", ErrInvalidInput)
		}
		if e.Weight < 0 {
			return NewAppError("CONFIG_ERROR", fmt.Sprintf("engine %s weight must not be negative", e.ID), ErrInvalidInput)
		}
		if e.Enabled {
			enabled++
		}
	}
	if enabled == 0 {
		return NewAppError("CONFIG_ERROR", "at least one engine must be enabled", ErrInvalidInput)
	}
	return nil
}
