package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateArchiveEntry validates a path read from a repository archive before it
// is extracted. It rejects names that would escape the extraction directory.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal segments (..)
//   - No backslashes (Windows-style paths)
func ValidateArchiveEntry(path string) error {
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

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	// Only whole ".." segments are traversal; "foo..bar" is a legal file name.
	for _, seg := range strings.Split(path, "/") {
		if seg == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

// artifactIDRegex matches valid Maven artifact ids.
var artifactIDRegex = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9._-]*$`)

// ValidateArtifactID validates a Maven artifact id, as used in skip lists and
// extension manifests.
func ValidateArtifactID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidCoordinate, "artifact id cannot be empty")
	}
	if len(id) > 256 {
		return New(ErrCodeInvalidCoordinate, "artifact id too long (max 256 characters)")
	}
	if !artifactIDRegex.MatchString(id) {
		return New(ErrCodeInvalidCoordinate, "invalid artifact id: %q", id)
	}
	return nil
}
