package jd

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Patch is a sparse update: column name to new value. Keys outside the
// entity's allow-list are dropped without error.
type Patch map[string]any

// Allow-lists of client-settable columns per entity kind. id and the
// timestamps never appear here.
var (
	AreaFields     = []string{"range_start", "range_end", "name", "description", "color"}
	CategoryFields = []string{"number", "area_id", "name", "description"}
	FolderFields   = []string{
		"folder_number", "category_id", "sequence", "name", "description",
		"sensitivity", "location", "storage_path", "keywords", "notes",
	}
	ItemFields = []string{
		"item_number", "folder_id", "sequence", "name", "description", "file_type",
		"sensitivity", "location", "storage_path", "file_size", "keywords", "notes",
	}
	LocationFields = []string{"name", "type", "path", "is_encrypted", "notes"}
)

// Field is one allow-listed assignment.
type Field struct {
	Column string
	Value  any
}

// Allowed returns the assignments whose column is in allow, in allow-list
// order so generated statements are deterministic.
func (p Patch) Allowed(allow []string) []Field {
	var fields []Field
	for _, col := range allow {
		if v, ok := p[col]; ok {
			fields = append(fields, Field{Column: col, Value: v})
		}
	}
	return fields
}

// Dropped returns the keys Allowed would ignore, sorted.
func (p Patch) Dropped(allow []string) []string {
	var out []string
	for k := range p {
		if !slices.Contains(allow, k) {
			out = append(out, k)
		}
	}
	slices.Sort(out)
	return out
}

// AsString coerces a patch value to a string. Nil becomes "".
func AsString(field string, v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case json.Number:
		return x.String(), nil
	case fmt.Stringer:
		return x.String(), nil
	case int, int64, float64, bool:
		return fmt.Sprint(x), nil
	default:
		return "", NewValidationError(field, fmt.Sprintf("%s must be text, got %T", field, v))
	}
}

// AsInt64 coerces a patch value to an integer. Strings are parsed;
// fractional numbers are rejected.
func AsInt64(field string, v any) (int64, error) {
	bad := func() (int64, error) {
		return 0, NewValidationError(field, fmt.Sprintf("%s must be a whole number, got %v", field, v))
	}
	switch x := v.(type) {
	case int:
		return int64(x), nil
	case int64:
		return x, nil
	case int32:
		return int64(x), nil
	case float64:
		if x != math.Trunc(x) || math.IsInf(x, 0) || math.IsNaN(x) {
			return bad()
		}
		return int64(x), nil
	case json.Number:
		n, err := x.Int64()
		if err != nil {
			return bad()
		}
		return n, nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return bad()
		}
		return n, nil
	default:
		return bad()
	}
}

// AsInt is AsInt64 narrowed to int.
func AsInt(field string, v any) (int, error) {
	n, err := AsInt64(field, v)
	if err != nil {
		return 0, err
	}
	if n > math.MaxInt32 || n < math.MinInt32 {
		return 0, NewValidationError(field, fmt.Sprintf("%s is out of range: %d", field, n))
	}
	return int(n), nil
}

// AsOptionalInt64 is AsInt64 where nil or "" clear the value.
func AsOptionalInt64(field string, v any) (*int64, error) {
	if v == nil {
		return nil, nil
	}
	if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
		return nil, nil
	}
	n, err := AsInt64(field, v)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// AsBool coerces a patch value to a boolean. Accepts 0/1 and the strings
// strconv.ParseBool understands.
func AsBool(field string, v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case nil:
		return false, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(x))
		if err != nil {
			return false, NewValidationError(field, fmt.Sprintf("%s must be true or false, got %q", field, x))
		}
		return b, nil
	default:
		n, err := AsInt64(field, v)
		if err != nil || (n != 0 && n != 1) {
			return false, NewValidationError(field, fmt.Sprintf("%s must be true or false, got %v", field, v))
		}
		return n == 1, nil
	}
}
