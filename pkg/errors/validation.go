package errors

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

// ValidateInputPath validates a profile file path given on the command line
// or in a config file.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidateInputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}

// profileIDRegex matches identifiers handed out by the HTTP host.
var profileIDRegex = regexp.MustCompile(`^[a-f0-9-]{1,64}$`)

// ValidateProfileID validates a profile identifier taken from a URL.
func ValidateProfileID(id string) error {
	if !profileIDRegex.MatchString(strings.ToLower(id)) {
		return New(ErrCodeInvalidInput, "invalid profile id: %q", id)
	}
	return nil
}

// ValidateViewport checks that a requested viewport is finite and has a
// non-negative size. Clamping into the chart bounds is the controller's job.
func ValidateViewport(left, width, top float64) error {
	for _, v := range []float64{left, width, top} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return New(ErrCodeInvalidView, "viewport values must be finite")
		}
	}
	if width < 0 {
		return New(ErrCodeInvalidView, "viewport width must not be negative")
	}
	return nil
}

// ValidateQuery validates a search query.
func ValidateQuery(q string) error {
	if len(q) > 1024 {
		return New(ErrCodeInvalidQuery, "query too long (max 1024 characters)")
	}
	for _, r := range q {
		if r == '\x00' {
			return New(ErrCodeInvalidQuery, "query contains invalid characters")
		}
	}
	return nil
}
