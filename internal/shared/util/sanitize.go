package util

import (
	"errors"
	"strings"
)

var errBadFileName = errors.New("invalid file name")

// SanitizeFileName normalizes an uploaded file name before it is used in a
// storage key: traversal sequences are rejected outright and path separators
// are flattened to underscores.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errBadFileName
	}
	cleaned := strings.TrimSpace(name)
	cleaned = strings.ReplaceAll(cleaned, "/", "_")
	cleaned = strings.ReplaceAll(cleaned, `\`, "_")
	if cleaned == "" {
		return "", errBadFileName
	}
	return cleaned, nil
}
