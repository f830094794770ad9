// Package validation holds the input format checks shared by the HTTP
// handlers.
package validation

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrNameRequired is returned when a board name is empty
	ErrNameRequired = errors.New("name is required")

	// ErrNameTooLong is returned when a board name exceeds the limit
	ErrNameTooLong = errors.New("name must be at most 120 characters")

	// ErrInvalidColor is returned when a color is not #RRGGBB
	ErrInvalidColor = errors.New("color must be a #RRGGBB hex value")

	// ErrInvalidFontWeight is returned for unknown font weights
	ErrInvalidFontWeight = errors.New("font weight must be normal or bold")

	hexColorRegex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
)

// ValidateBoardName checks a board display name: non-empty after
// trimming, at most 120 characters.
func ValidateBoardName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameRequired
	}
	if len(name) > 120 {
		return ErrNameTooLong
	}
	return nil
}

// ValidateHexColor checks a text element color for #RRGGBB form.
func ValidateHexColor(color string) error {
	if !hexColorRegex.MatchString(color) {
		return ErrInvalidColor
	}
	return nil
}

// ValidateFontWeight checks a text element font weight.
func ValidateFontWeight(weight string) error {
	switch weight {
	case "normal", "bold":
		return nil
	default:
		return ErrInvalidFontWeight
	}
}
