package constants

import "strings"

// AllowedImageExtensions holds the image formats the vision supplier accepts.
var AllowedImageExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"webp": {},
}

// AllowedTextExtensions holds the plain-text formats the batch CLI ingests
// directly, bypassing OCR.
var AllowedTextExtensions = map[string]struct{}{
	"txt": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsImageExt reports whether ext names an accepted image format.
func IsImageExt(ext string) bool {
	_, ok := AllowedImageExtensions[NormalizeExt(ext)]
	return ok
}

// IsTextExt reports whether ext names an accepted plain-text format.
func IsTextExt(ext string) bool {
	_, ok := AllowedTextExtensions[NormalizeExt(ext)]
	return ok
}
