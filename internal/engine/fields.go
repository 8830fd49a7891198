package engine

import (
	"github.com/jmeg8r/jdex/internal/jd"
)

// fieldKind selects how one patch value is coerced and validated.
type fieldKind int

const (
	kindName            fieldKind = iota // required single-line text
	kindText                             // optional single-line text, "" stored as NULL
	kindLongText                         // optional multi-line text, "" stored as NULL
	kindInt                              // plain integer (area bounds)
	kindID                               // positive surrogate key
	kindCategoryNumber                   // 0..99
	kindSequence                         // 1..99
	kindFileSize                         // optional non-negative integer
	kindBool                             // flag
	kindColor                            // #rrggbb
	kindFolderSensitivity                // standard|sensitive|work
	kindItemSensitivity                  // inherit|standard|sensitive|work
	kindFolderNumber                     // CC.SS
	kindItemNumber                       // CC.SS.SS
)

var (
	areaKinds = map[string]fieldKind{
		"range_start": kindInt,
		"range_end":   kindInt,
		"name":        kindName,
		"description": kindLongText,
		"color":       kindColor,
	}
	categoryKinds = map[string]fieldKind{
		"number":      kindCategoryNumber,
		"area_id":     kindID,
		"name":        kindName,
		"description": kindLongText,
	}
	folderKinds = map[string]fieldKind{
		"folder_number": kindFolderNumber,
		"category_id":   kindID,
		"sequence":      kindSequence,
		"name":          kindName,
		"description":   kindLongText,
		"sensitivity":   kindFolderSensitivity,
		"location":      kindText,
		"storage_path":  kindText,
		"keywords":      kindLongText,
		"notes":         kindLongText,
	}
	itemKinds = map[string]fieldKind{
		"item_number":  kindItemNumber,
		"folder_id":    kindID,
		"sequence":     kindSequence,
		"name":         kindName,
		"description":  kindLongText,
		"file_type":    kindText,
		"sensitivity":  kindItemSensitivity,
		"location":     kindText,
		"storage_path": kindText,
		"file_size":    kindFileSize,
		"keywords":     kindLongText,
		"notes":        kindLongText,
	}
	locationKinds = map[string]fieldKind{
		"name":         kindName,
		"type":         kindName,
		"path":         kindText,
		"is_encrypted": kindBool,
		"notes":        kindLongText,
	}
)

// normalize coerces and validates allow-listed fields. Values come back
// in the shape the store binds: strings, ints, bools, or nil for a
// cleared optional column.
func normalize(fields []jd.Field, kinds map[string]fieldKind) ([]jd.Field, error) {
	out := make([]jd.Field, 0, len(fields))
	for _, f := range fields {
		v, err := normalizeValue(f.Column, kinds[f.Column], f.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, jd.Field{Column: f.Column, Value: v})
	}
	return out, nil
}

func normalizeValue(col string, kind fieldKind, raw any) (any, error) {
	switch kind {
	case kindName, kindText, kindLongText, kindColor,
		kindFolderSensitivity, kindItemSensitivity, kindFolderNumber, kindItemNumber:
		s, err := jd.AsString(col, raw)
		if err != nil {
			return nil, err
		}
		return normalizeString(col, kind, s)

	case kindInt:
		return jd.AsInt(col, raw)

	case kindID:
		id, err := jd.AsInt64(col, raw)
		if err != nil {
			return nil, err
		}
		if err := jd.ValidateID(col, id); err != nil {
			return nil, err
		}
		return id, nil

	case kindCategoryNumber:
		n, err := jd.AsInt(col, raw)
		if err != nil {
			return nil, err
		}
		if err := jd.ValidateCategoryNumber(n); err != nil {
			return nil, err
		}
		return n, nil

	case kindSequence:
		n, err := jd.AsInt(col, raw)
		if err != nil {
			return nil, err
		}
		if err := jd.ValidateSequence(n); err != nil {
			return nil, err
		}
		return n, nil

	case kindFileSize:
		size, err := jd.AsOptionalInt64(col, raw)
		if err != nil {
			return nil, err
		}
		if err := jd.ValidateFileSize(size); err != nil {
			return nil, err
		}
		if size == nil {
			return nil, nil
		}
		return *size, nil

	case kindBool:
		return jd.AsBool(col, raw)
	}
	return nil, jd.NewValidationError(col, col+" cannot be set")
}

func normalizeString(col string, kind fieldKind, s string) (any, error) {
	var (
		clean string
		err   error
	)
	switch kind {
	case kindName:
		clean, err = jd.RequiredText(col, s)
	case kindText:
		clean, err = jd.OptionalText(col, s)
	case kindLongText:
		clean, err = jd.LongText(col, s)
	case kindColor:
		clean, err = jd.ValidateColor(s)
	case kindFolderSensitivity:
		var sens jd.Sensitivity
		sens, err = jd.ParseFolderSensitivity(s)
		clean = string(sens)
	case kindItemSensitivity:
		var sens jd.Sensitivity
		sens, err = jd.ParseItemSensitivity(s)
		clean = string(sens)
	case kindFolderNumber:
		clean, err = jd.ValidateFolderNumber(s)
	case kindItemNumber:
		clean, err = jd.ValidateItemNumber(s)
	}
	if err != nil {
		return nil, err
	}
	if clean == "" && (kind == kindText || kind == kindLongText) {
		return nil, nil
	}
	return clean, nil
}

// lookup returns the value assigned to col, if any.
func lookup(fields []jd.Field, col string) (any, bool) {
	for _, f := range fields {
		if f.Column == col {
			return f.Value, true
		}
	}
	return nil, false
}

// touches reports whether any of cols is assigned.
func touches(fields []jd.Field, cols ...string) bool {
	for _, c := range cols {
		if _, ok := lookup(fields, c); ok {
			return true
		}
	}
	return false
}

// set replaces or appends the assignment for col.
func set(fields []jd.Field, col string, v any) []jd.Field {
	for i := range fields {
		if fields[i].Column == col {
			fields[i].Value = v
			return fields
		}
	}
	return append(fields, jd.Field{Column: col, Value: v})
}

func stringField(fields []jd.Field, col, fallback string) string {
	if v, ok := lookup(fields, col); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return fallback
}

func intField(fields []jd.Field, col string, fallback int) int {
	if v, ok := lookup(fields, col); ok {
		if n, ok := v.(int); ok {
			return n
		}
	}
	return fallback
}

func idField(fields []jd.Field, col string, fallback int64) int64 {
	if v, ok := lookup(fields, col); ok {
		if n, ok := v.(int64); ok {
			return n
		}
	}
	return fallback
}
