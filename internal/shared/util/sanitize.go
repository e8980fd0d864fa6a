package util

import (
	"errors"
	"path"
	"strings"
)

// SanitizeFileName removes path separators and rejects ".." path segments.
// Dots inside a name, as in "John..Smith.pdf", are kept.
func SanitizeFileName(name string) (string, error) {
	for _, seg := range strings.FieldsFunc(name, func(r rune) bool { return r == '/' || r == '\\' }) {
		if strings.TrimSpace(seg) == ".." {
			return "", errors.New("invalid file name")
		}
	}
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.Map(func(r rune) rune {
		if r < 0x20 || r == '"' {
			return -1
		}
		return r
	}, s)
	if s == "" || s == "." {
		return "", errors.New("invalid file name")
	}
	return s, nil
}

// BaseName returns the final segment of a slash or backslash separated path.
func BaseName(name string) string {
	return path.Base(strings.ReplaceAll(name, "\\", "/"))
}
