package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateNodeID validates a node or cluster identifier from an input graph.
//
// The validation rules are intentionally conservative:
//   - No empty ids
//   - No control characters
//   - Maximum length of 256 characters
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "id cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidInput, "id too long (max 256 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "id contains invalid control characters")
		}
	}

	return nil
}

// ValidatePath validates a relative output path for safety.
// It prevents path traversal and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// runIDRegex matches canonical UUID strings as produced by github.com/google/uuid.
var runIDRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// ValidateRunID validates a stored run identifier.
func ValidateRunID(id string) error {
	if !runIDRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid run id: %q", id)
	}
	return nil
}
