package jd

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	// MaxCategoryNumber is the largest category number the CC format holds.
	MaxCategoryNumber = 99

	// MaxSequence is the largest per-parent sequence the SS format holds.
	MaxSequence = 99
)

var (
	folderNumberPattern = regexp.MustCompile(`^\d{2}\.\d{2}$`)
	itemNumberPattern   = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{2}$`)
)

// FormatCategoryNumber renders a category number as CC.
func FormatCategoryNumber(n int) string {
	return fmt.Sprintf("%02d", n)
}

// FormatFolderNumber renders CC.SS.
func FormatFolderNumber(category, seq int) string {
	return fmt.Sprintf("%02d.%02d", category, seq)
}

// FormatItemNumber renders <folder_number>.SS, reusing the folder's
// already-formatted number as the prefix.
func FormatItemNumber(folderNumber string, seq int) string {
	return fmt.Sprintf("%s.%02d", folderNumber, seq)
}

// NextSequence returns max+1, or ErrCodeExhausted once the two-digit
// space is used up. maxSeq is 0 when the parent has no children.
func NextSequence(entity EntityType, parentNumber string, maxSeq int) (int, error) {
	next := maxSeq + 1
	if next > MaxSequence {
		return 0, NewExhaustedError(entity, parentNumber)
	}
	return next, nil
}

// ValidateCategoryNumber checks 0..MaxCategoryNumber.
func ValidateCategoryNumber(n int) error {
	if n < 0 || n > MaxCategoryNumber {
		return NewValidationError("number",
			fmt.Sprintf("category number must be between 0 and %d, got %d", MaxCategoryNumber, n))
	}
	return nil
}

// ValidateSequence checks 1..MaxSequence.
func ValidateSequence(n int) error {
	if n < 1 || n > MaxSequence {
		return NewValidationError("sequence",
			fmt.Sprintf("sequence must be between 1 and %d, got %d", MaxSequence, n))
	}
	return nil
}

// ValidateFolderNumber checks the XX.XX format and returns the trimmed value.
func ValidateFolderNumber(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", NewValidationError("folder_number", "folder number is required")
	}
	if !folderNumberPattern.MatchString(s) {
		return "", NewValidationError("folder_number",
			fmt.Sprintf("folder number must be in XX.XX format (e.g. 11.01), got %q", s))
	}
	return s, nil
}

// ValidateItemNumber checks the XX.XX.XX format and returns the trimmed value.
func ValidateItemNumber(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", NewValidationError("item_number", "item number is required")
	}
	if !itemNumberPattern.MatchString(s) {
		return "", NewValidationError("item_number",
			fmt.Sprintf("item number must be in XX.XX.XX format (e.g. 11.01.01), got %q", s))
	}
	return s, nil
}

// LastSegment returns the trailing SS of a folder or item number.
func LastSegment(number string) (int, error) {
	i := strings.LastIndexByte(number, '.')
	if i < 0 {
		return 0, fmt.Errorf("number %q has no sequence segment", number)
	}
	return strconv.Atoi(number[i+1:])
}

// CheckFolderNumber verifies a caller-supplied folder number belongs to the
// category and agrees with the sequence.
func CheckFolderNumber(number string, category, seq int) error {
	want := FormatFolderNumber(category, seq)
	if number != want {
		return NewValidationError("folder_number",
			fmt.Sprintf("folder number %q does not match category %s sequence %d (want %s)",
				number, FormatCategoryNumber(category), seq, want))
	}
	return nil
}

// CheckItemNumber verifies a caller-supplied item number belongs to the
// folder and agrees with the sequence.
func CheckItemNumber(number, folderNumber string, seq int) error {
	want := FormatItemNumber(folderNumber, seq)
	if number != want {
		return NewValidationError("item_number",
			fmt.Sprintf("item number %q does not match folder %s sequence %d (want %s)",
				number, folderNumber, seq, want))
	}
	return nil
}
