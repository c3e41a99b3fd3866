package imaging

import (
	"fmt"
	"image"
	"strconv"

	exif "github.com/dsoprea/go-exif/v3"
)

// orientationOf reads the EXIF orientation tag (1..8). Returns 0 when the
// file carries no EXIF data or no orientation.
func orientationOf(data []byte) int {
	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil || rawExif == nil {
		return 0
	}
	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return 0
	}
	for _, entry := range entries {
		if entry.TagName != "Orientation" {
			continue
		}
		if v, err := strconv.Atoi(entry.Formatted); err == nil && v >= 1 && v <= 8 {
			return v
		}
	}
	return 0
}

// captureMetadata surfaces camera capture tags as diagnostics. Receipts
// photographed on phones usually carry these; scans usually do not.
func captureMetadata(data []byte) []string {
	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil || rawExif == nil {
		return nil
	}
	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return nil
	}
	var notes []string
	for _, entry := range entries {
		switch entry.TagName {
		case "Make", "Model", "DateTimeOriginal", "Software":
			notes = append(notes, fmt.Sprintf("exif %s: %s", entry.TagName, entry.Formatted))
		}
	}
	return notes
}

// applyOrientation bakes an EXIF orientation into pixel data so every
// downstream transform sees the image upright.
func applyOrientation(img image.Image, orient int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	var dst *image.RGBA
	switch orient {
	case 2, 3, 4:
		dst = image.NewRGBA(image.Rect(0, 0, w, h))
	case 5, 6, 7, 8:
		dst = image.NewRGBA(image.Rect(0, 0, h, w))
	default:
		return img
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := img.At(b.Min.X+x, b.Min.Y+y)
			switch orient {
			case 2: // mirrored horizontally
				dst.Set(w-1-x, y, c)
			case 3: // rotated 180
				dst.Set(w-1-x, h-1-y, c)
			case 4: // mirrored vertically
				dst.Set(x, h-1-y, c)
			case 5: // mirrored then rotated 270 CW
				dst.Set(y, x, c)
			case 6: // rotated 90 CW to display upright
				dst.Set(h-1-y, x, c)
			case 7: // mirrored then rotated 90 CW
				dst.Set(h-1-y, w-1-x, c)
			case 8: // rotated 270 CW to display upright
				dst.Set(y, w-1-x, c)
			}
		}
	}
	return dst
}
