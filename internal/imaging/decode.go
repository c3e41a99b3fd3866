package imaging

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder

	"github.com/joseph-ayodele/receipt-recognizer/constants"
	"github.com/joseph-ayodele/receipt-recognizer/internal/common"
)

// LoadSource enforces the input boundary and decodes a receipt file into
// memory. PDFs are rendered to an image (first page; receipts are almost
// always single page). EXIF orientation is applied before any preprocessing.
func LoadSource(ctx context.Context, path string, cfg Config, logger *slog.Logger) (*Source, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg.setDefaults()

	ext := constants.NormalizeExt(filepath.Ext(path))
	format, ok := constants.FormatFromExt(ext)
	if !ok {
		return nil, fmt.Errorf("%w: %q", common.ErrUnsupportedFormat, ext)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat input: %w", err)
	}
	if maxBytes := cfg.MaxSizeMB << 20; info.Size() > maxBytes {
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", common.ErrFileTooLarge, info.Size(), maxBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h := sha256.Sum256(data)
	src := &Source{
		Path:    path,
		Format:  format,
		Hash:    hex.EncodeToString(h[:]),
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}

	var img image.Image
	switch {
	case format == "PDF":
		img, err = renderPDFPage(data, cfg.PDFRenderDPI)
		if err != nil {
			return nil, err
		}
		src.Diagnostics = append(src.Diagnostics, "pdf rendered at first page")
	case isHEIC(data):
		img, err = heic.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode heic: %w", err)
		}
	default:
		img, _, err = image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: decode image: %v", common.ErrUnsupportedFormat, err)
		}
	}

	// EXIF applies to camera formats only; PDFs carry none.
	if format == "IMAGE" {
		if orient := orientationOf(data); orient > 1 {
			img = applyOrientation(img, orient)
			src.Diagnostics = append(src.Diagnostics, fmt.Sprintf("exif orientation %d applied", orient))
		}
		src.Diagnostics = append(src.Diagnostics, captureMetadata(data)...)
	}

	b := img.Bounds()
	w, ht := b.Dx(), b.Dy()
	if w < cfg.MinWidth || ht < cfg.MinHeight || w > cfg.MaxWidth || ht > cfg.MaxHeight {
		return nil, fmt.Errorf("%w: %dx%d", common.ErrImageBounds, w, ht)
	}

	src.Img = img
	logger.Debug("source decoded", "path", path, "format", format, "width", w, "height", ht, "hash", src.Hash[:12])
	return src, nil
}

// renderPDFPage rasterizes the first page of a PDF.
func renderPDFPage(data []byte, dpi int) (image.Image, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return nil, fmt.Errorf("open pdf: no pages")
	}
	img, err := doc.ImageDPI(0, float64(dpi))
	if err != nil {
		return nil, fmt.Errorf("render pdf page: %w", err)
	}
	return img, nil
}

// isHEIC checks the ftyp box brand; the stdlib decoder does not know HEIC.
func isHEIC(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heif", "mif1", "msf1":
		return true
	}
	return false
}
