package constants

import "strings"

// AllowedExtensions holds the default allowed file extensions for inbox scanning.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// Fallback names used when metadata fields are empty at placement time.
const (
	UnknownCorrespondent = "Unbekannt"
	DefaultDocumentType  = "Dokument"
	UnnamedComponent     = "Unbenannt"
)
