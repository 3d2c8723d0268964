package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxNameLength bounds net identifiers and design names.
const maxNameLength = 64

// ValidateNetID validates a net identifier as it appears in design files,
// API requests and rendered legends.
//
// The rules are intentionally conservative:
//   - No empty identifiers
//   - No control characters or whitespace
//   - Maximum length of 64 characters
func ValidateNetID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "net id cannot be empty")
	}
	if len(id) > maxNameLength {
		return New(ErrCodeInvalidInput, "net id too long (max %d characters)", maxNameLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "net id %q contains whitespace or control characters", id)
		}
	}
	return nil
}

// designNameRegex matches design names: letters, digits, dot, dash, underscore.
var designNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateDesignName validates the optional name of a design.
// An empty name is allowed; callers substitute a default.
func ValidateDesignName(name string) error {
	if name == "" {
		return nil
	}
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidInput, "design name too long (max %d characters)", maxNameLength)
	}
	if strings.Contains(name, "..") || !designNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid design name: %q", name)
	}
	return nil
}

// ValidateUniqueNetIDs reports the first duplicated identifier in ids.
func ValidateUniqueNetIDs(ids []string) error {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if err := ValidateNetID(id); err != nil {
			return err
		}
		if _, dup := seen[id]; dup {
			return New(ErrCodeInvalidInput, "duplicate net id %q", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
