package jd

import "fmt"

// Sensitivity is a confidentiality tier.
type Sensitivity string

const (
	SensitivityInherit   Sensitivity = "inherit"
	SensitivityStandard  Sensitivity = "standard"
	SensitivitySensitive Sensitivity = "sensitive"
	SensitivityWork      Sensitivity = "work"
)

// FolderTiers are the tiers a folder may carry. Folders never inherit.
var FolderTiers = []Sensitivity{SensitivityStandard, SensitivitySensitive, SensitivityWork}

// ItemTiers are the tiers an item may carry.
var ItemTiers = []Sensitivity{SensitivityInherit, SensitivityStandard, SensitivitySensitive, SensitivityWork}

// ValidFolderSensitivity reports whether s is a concrete tier.
func ValidFolderSensitivity(s Sensitivity) bool {
	return s == SensitivityStandard || s == SensitivitySensitive || s == SensitivityWork
}

// ValidItemSensitivity reports whether s is a concrete tier or inherit.
func ValidItemSensitivity(s Sensitivity) bool {
	return s == SensitivityInherit || ValidFolderSensitivity(s)
}

// Effective resolves an item's tier against its direct parent folder's tier.
// Resolution never recurses: folders always hold a concrete tier.
func Effective(item, folder Sensitivity) Sensitivity {
	if item == SensitivityInherit || item == "" {
		return folder
	}
	return item
}

// ParseFolderSensitivity validates a folder tier. Empty means standard.
func ParseFolderSensitivity(s string) (Sensitivity, error) {
	if s == "" {
		return SensitivityStandard, nil
	}
	v := Sensitivity(s)
	if !ValidFolderSensitivity(v) {
		return "", NewValidationError("sensitivity",
			fmt.Sprintf("folder sensitivity must be one of %v, got %q", FolderTiers, s))
	}
	return v, nil
}

// ParseItemSensitivity validates an item tier. Empty means inherit.
func ParseItemSensitivity(s string) (Sensitivity, error) {
	if s == "" {
		return SensitivityInherit, nil
	}
	v := Sensitivity(s)
	if !ValidItemSensitivity(v) {
		return "", NewValidationError("sensitivity",
			fmt.Sprintf("item sensitivity must be one of %v, got %q", ItemTiers, s))
	}
	return v, nil
}
