package constants

import "strings"

// FileTypes holds the allowed source types for recognition input.
var FileTypes = []string{"PDF", "IMAGE"}

// AllowedExtensions holds the default allowed file extensions for receipt recognition.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"tif":  {},
	"tiff": {},
	"webp": {},
	"heic": {},
	"heif": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsAllowedExt reports whether a file extension (with or without dot) is recognizable input.
func IsAllowedExt(ext string) bool {
	_, ok := AllowedExtensions[NormalizeExt(ext)]
	return ok
}

// FormatFromExt maps a normalized extension to its source type.
func FormatFromExt(ext string) (string, bool) {
	switch NormalizeExt(ext) {
	case "pdf":
		return "PDF", true
	case "jpg", "jpeg", "png", "tif", "tiff", "webp", "heic", "heif":
		return "IMAGE", true
	default:
		return "", false
	}
}
