package errors

import (
	"strings"
	"unicode"
)

// maxNameLength bounds focus names (component, memory system, bank).
const maxNameLength = 256

// ValidateName validates a focus name such as a component, memory system
// or bank name. kind is used in the message only ("component", "bank", ...).
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters or null bytes
//   - Maximum length of 256 characters
//   - No leading or trailing whitespace (names are matched exactly)
func ValidateName(kind, name string) error {
	if name == "" {
		return New(ErrCodeInvalidFocus, "%s name cannot be empty", kind)
	}

	if len(name) > maxNameLength {
		return New(ErrCodeInvalidFocus, "%s name too long (max %d characters)", kind, maxNameLength)
	}

	for _, r := range name {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidFocus, "%s name contains invalid control characters", kind)
		}
	}

	if strings.TrimSpace(name) != name {
		return New(ErrCodeInvalidFocus, "%s name %q has surrounding whitespace", kind, name)
	}

	return nil
}

// ValidateNames validates every entry of names with ValidateName and
// rejects duplicates.
func ValidateNames(kind string, names []string) error {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if err := ValidateName(kind, n); err != nil {
			return err
		}
		if seen[n] {
			return New(ErrCodeInvalidFocus, "%s %q listed twice", kind, n)
		}
		seen[n] = true
	}
	return nil
}
