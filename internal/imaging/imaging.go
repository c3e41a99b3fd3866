// Package imaging decodes receipt sources and produces the preprocessed
// image variants recognition engines consume.
package imaging

import (
	"image"
	"time"
)

// Config holds input boundary limits and preprocessing settings.
type Config struct {
	MaxSizeMB int64 // reject files larger than this, default 20
	MinWidth  int   // default 32
	MinHeight int   // default 32
	MaxWidth  int   // default 10000
	MaxHeight int   // default 10000

	PDFRenderDPI  int     // rasterization DPI for PDF input, default 300
	UpscaleFactor float64 // for the upscaled technique, default 2.0

	Techniques  []string // subset of standard|contrast|denoised|upscaled
	ArtifactDir string   // variant PNGs are written under <dir>/<run id>/
}

func (c *Config) setDefaults() {
	if c.MaxSizeMB <= 0 {
		c.MaxSizeMB = 20
	}
	if c.MinWidth <= 0 {
		c.MinWidth = 32
	}
	if c.MinHeight <= 0 {
		c.MinHeight = 32
	}
	if c.MaxWidth <= 0 {
		c.MaxWidth = 10000
	}
	if c.MaxHeight <= 0 {
		c.MaxHeight = 10000
	}
	if c.PDFRenderDPI <= 0 {
		c.PDFRenderDPI = 300
	}
	if c.UpscaleFactor < 1.0 {
		c.UpscaleFactor = 2.0
	}
	if len(c.Techniques) == 0 {
		c.Techniques = []string{TechniqueStandard, TechniqueContrast, TechniqueDenoised, TechniqueUpscaled}
	}
	if c.ArtifactDir == "" {
		c.ArtifactDir = "./tmp"
	}
}

// Source is a decoded receipt input ready for preprocessing.
type Source struct {
	Path        string
	Format      string // "PDF" | "IMAGE"
	Img         image.Image
	Hash        string // sha256 of the raw file bytes, hex encoded
	Size        int64
	ModTime     time.Time
	Diagnostics []string // capture metadata, orientation fixes, render notes
}

// Variant is one preprocessed rendition of a source, written to disk
// so engines that shell out can read it. The producing run owns the
// file and removes it when done.
type Variant struct {
	Path      string
	Technique string
	Width     int
	Height    int
}

// Technique names, applied in this order.
const (
	TechniqueStandard = "standard"
	TechniqueContrast = "contrast"
	TechniqueDenoised = "denoised"
	TechniqueUpscaled = "upscaled"
	TechniqueOriginal = "original" // fallback when every technique fails
)
