package validation

import (
	"strings"
	"unicode/utf8"
)

// Validator provides common validation utilities
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// IsNonEmptyString checks if a string is not empty after trimming whitespace
func (v *Validator) IsNonEmptyString(s string) bool {
	return strings.TrimSpace(s) != ""
}

// IsValidStringLength checks if a string's rune count is within the specified range.
// A max of zero or less disables the upper bound.
func (v *Validator) IsValidStringLength(s string, min, max int) bool {
	length := utf8.RuneCountInString(strings.TrimSpace(s))
	if length < min {
		return false
	}
	return max <= 0 || length <= max
}

// ContainsFieldDelimiter reports whether s contains the list file's field separator.
func (v *Validator) ContainsFieldDelimiter(s string) bool {
	return strings.Contains(s, FieldDelimiter)
}

// ContainsLineBreak reports whether s would split a record across lines.
func (v *Validator) ContainsLineBreak(s string) bool {
	return strings.ContainsAny(s, "\r\n")
}

// TrimAndValidateString trims whitespace and returns the cleaned string
func (v *Validator) TrimAndValidateString(s string) string {
	return strings.TrimSpace(s)
}
