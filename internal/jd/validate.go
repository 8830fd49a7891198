package jd

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const (
	// MaxTextLength bounds short text fields such as names.
	MaxTextLength = 500

	// MaxLongTextLength bounds descriptions, keywords and notes.
	MaxLongTextLength = 5000
)

var (
	controlChars    = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)
	htmlChars       = regexp.MustCompile(`[<>]`)
	anyWhitespace   = regexp.MustCompile(`\s+`)
	inlineSpace     = regexp.MustCompile(`[^\S\n]+`)
	extraBlankLines = regexp.MustCompile(`\n{3,}`)
	colorPattern    = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
)

// SanitizeText cleans a single-line field: NFC-normalised, trimmed, with
// angle brackets and control characters removed and whitespace collapsed.
func SanitizeText(s string) string {
	s = norm.NFC.String(strings.TrimSpace(s))
	s = htmlChars.ReplaceAllString(s, "")
	s = controlChars.ReplaceAllString(s, "")
	return anyWhitespace.ReplaceAllString(s, " ")
}

// SanitizeDescription cleans a multi-line field. Line breaks survive, runs
// of blank lines collapse to one.
func SanitizeDescription(s string) string {
	s = norm.NFC.String(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = htmlChars.ReplaceAllString(s, "")
	s = controlChars.ReplaceAllString(s, "")
	s = extraBlankLines.ReplaceAllString(s, "\n\n")
	return inlineSpace.ReplaceAllString(s, " ")
}

// RequiredText sanitizes a required single-line field.
func RequiredText(field, s string) (string, error) {
	clean := SanitizeText(s)
	if clean == "" {
		return "", NewValidationError(field, field+" is required")
	}
	if utf8.RuneCountInString(clean) > MaxTextLength {
		return "", NewValidationError(field,
			fmt.Sprintf("%s cannot exceed %d characters", field, MaxTextLength))
	}
	return clean, nil
}

// OptionalText sanitizes an optional single-line field. Empty is allowed.
func OptionalText(field, s string) (string, error) {
	clean := SanitizeText(s)
	if utf8.RuneCountInString(clean) > MaxTextLength {
		return "", NewValidationError(field,
			fmt.Sprintf("%s cannot exceed %d characters", field, MaxTextLength))
	}
	return clean, nil
}

// LongText sanitizes an optional multi-line field.
func LongText(field, s string) (string, error) {
	clean := SanitizeDescription(s)
	if utf8.RuneCountInString(clean) > MaxLongTextLength {
		return "", NewValidationError(field,
			fmt.Sprintf("%s cannot exceed %d characters", field, MaxLongTextLength))
	}
	return clean, nil
}

// ValidateColor accepts #rrggbb. Empty yields DefaultAreaColor.
func ValidateColor(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultAreaColor, nil
	}
	if !colorPattern.MatchString(s) {
		return "", NewValidationError("color", fmt.Sprintf("color must be #rrggbb, got %q", s))
	}
	return strings.ToLower(s), nil
}

// ValidateAreaRange checks both bounds lie in 0..MaxCategoryNumber and
// start does not exceed end. Overlap with other areas is not checked here.
func ValidateAreaRange(start, end int) error {
	if start < 0 || start > MaxCategoryNumber {
		return NewValidationError("range_start",
			fmt.Sprintf("range_start must be between 0 and %d, got %d", MaxCategoryNumber, start))
	}
	if end < 0 || end > MaxCategoryNumber {
		return NewValidationError("range_end",
			fmt.Sprintf("range_end must be between 0 and %d, got %d", MaxCategoryNumber, end))
	}
	if start > end {
		return NewValidationError("range_end",
			fmt.Sprintf("range_end %d is before range_start %d", end, start))
	}
	return nil
}

// ValidateFileSize rejects negative sizes. Nil means unknown.
func ValidateFileSize(size *int64) error {
	if size != nil && *size < 0 {
		return NewValidationError("file_size", fmt.Sprintf("file_size cannot be negative, got %d", *size))
	}
	return nil
}

// ValidateID rejects non-positive surrogate keys.
func ValidateID(field string, id int64) error {
	if id <= 0 {
		return NewValidationError(field, fmt.Sprintf("%s must be a positive integer, got %d", field, id))
	}
	return nil
}

// AreasOverlap reports whether two inclusive ranges intersect.
func AreasOverlap(a, b Area) bool {
	return a.RangeStart <= b.RangeEnd && b.RangeStart <= a.RangeEnd
}
