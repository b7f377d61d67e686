package util

import (
	"errors"
	"strings"
)

// SanitizeFileName removes path separators and rejects traversal patterns.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errors.New("invalid file name")
	}
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	if s == "" {
		return "", errors.New("invalid file name")
	}
	return s, nil
}

// AttachmentName builds a download filename from a stored display name,
// normalizing to the given extension. Empty names fall back to "document".
func AttachmentName(name, ext string) string {
	s := strings.TrimSpace(name)
	if s == "" {
		s = "document"
	}
	s = strings.TrimSuffix(s, ext)
	if sanitized, err := SanitizeFileName(s); err == nil {
		s = sanitized
	} else {
		s = "document"
	}
	return s + ext
}
