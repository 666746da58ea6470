package errors

import (
	"unicode"
)

// Limits applied to routing problems accepted from untrusted sources.
const (
	// MaxGridCells bounds rows×cols so a single request cannot allocate
	// unbounded grid layers.
	MaxGridCells = 4 << 20

	// MaxNetNameLength bounds net names.
	MaxNetNameLength = 256
)

// ValidateDimensions checks that a grid of rows×cols is non-empty and
// within MaxGridCells.
func ValidateDimensions(rows, cols int) error {
	if rows <= 0 || cols <= 0 {
		return New(ErrCodeInvalidInput, "grid dimensions must be positive, got %d×%d", rows, cols)
	}
	if rows > MaxGridCells/cols {
		return New(ErrCodeInvalidInput, "grid %d×%d exceeds %d cells", rows, cols, MaxGridCells)
	}
	return nil
}

// ValidateNetName checks that a net name is a single printable token, so
// the name survives a round trip through the whitespace-separated output
// format.
func ValidateNetName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "net name cannot be empty")
	}
	if len(name) > MaxNetNameLength {
		return New(ErrCodeInvalidInput, "net name too long (max %d characters)", MaxNetNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "net name %q contains whitespace or control characters", name)
		}
	}
	return nil
}

// ValidateCount checks a record count read from input.
func ValidateCount(what string, n int) error {
	if n < 0 {
		return New(ErrCodeInvalidInput, "%s count must not be negative, got %d", what, n)
	}
	return nil
}
