package harness

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/jmeg8r/jdex/internal/store"
)

// activityColumns are the keys an activity assertion entry may use.
var activityColumns = []string{"action", "entity_type", "entity_number", "details", "timestamp"}

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("assertion failed: %s: expected %s, got %s", e.Type, e.Expected, e.Actual)
}

// AssertionContext carries what assertions read from.
type AssertionContext struct {
	Store *store.Store
	Ctx   context.Context
}

// EvaluateAssertions runs every assertion and returns one message per
// failure, prefixed with its index.
func EvaluateAssertions(assertions []Assertion, actx *AssertionContext) []string {
	if actx == nil || actx.Store == nil {
		return []string{"assertions need a store"}
	}
	if actx.Ctx == nil {
		actx.Ctx = context.Background()
	}

	var errs []string

	var activity []map[string]any
	if needsActivity(assertions) {
		var err error
		activity, err = loadActivity(actx)
		if err != nil {
			return []string{fmt.Sprintf("read activity log: %v", err)}
		}
	}

	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertActivityContains:
			err = assertActivityContains(activity, a)
		case AssertActivityOrder:
			err = assertActivityOrder(activity, a)
		case AssertActivityCount:
			err = assertActivityCount(activity, a)
		case AssertFinalState:
			err = assertFinalState(actx, a)
		case AssertRowCount:
			err = assertRowCount(actx, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}

	return errs
}

func needsActivity(assertions []Assertion) bool {
	for _, a := range assertions {
		if strings.HasPrefix(a.Type, "activity_") {
			return true
		}
	}
	return false
}

// loadActivity reads the whole activity log, oldest first.
func loadActivity(actx *AssertionContext) ([]map[string]any, error) {
	var out []map[string]any
	err := actx.Store.View(actx.Ctx, func(tx *store.Tx) error {
		rows, err := tx.Query(actx.Ctx,
			"SELECT action, entity_type, entity_number, details, timestamp FROM activity_log ORDER BY id")
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var vals [5]sql.NullString
			if err := rows.Scan(&vals[0], &vals[1], &vals[2], &vals[3], &vals[4]); err != nil {
				return err
			}
			row := make(map[string]any, len(vals))
			for i, col := range activityColumns {
				row[col] = vals[i].String
			}
			out = append(out, row)
		}
		return rows.Err()
	})
	return out, err
}

// matchEntry reports whether row contains every key of want. Values are
// compared as text.
func matchEntry(row map[string]any, want map[string]any) bool {
	for k, v := range want {
		if fmt.Sprint(row[k]) != fmt.Sprint(v) {
			return false
		}
	}
	return true
}

func assertActivityContains(activity []map[string]any, a Assertion) error {
	if err := checkEntryKeys(a.Entry); err != nil {
		return err
	}
	for _, row := range activity {
		if matchEntry(row, a.Entry) {
			return nil
		}
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: "entry " + formatWhere(a.Entry),
		Actual:   fmt.Sprintf("no match in %d entries", len(activity)),
	}
}

// assertActivityOrder checks that entries match in the given order.
// Other entries may come between them.
func assertActivityOrder(activity []map[string]any, a Assertion) error {
	pos := 0
	for i, want := range a.Entries {
		if err := checkEntryKeys(want); err != nil {
			return err
		}
		found := false
		for pos < len(activity) {
			row := activity[pos]
			pos++
			if matchEntry(row, want) {
				found = true
				break
			}
		}
		if !found {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("entries[%d] %s after entries[%d]", i, formatWhere(want), i-1),
				Actual:   "not found in order",
			}
		}
	}
	return nil
}

// assertActivityCount counts entries matching Entry; an empty Entry
// counts the whole log.
func assertActivityCount(activity []map[string]any, a Assertion) error {
	if err := checkEntryKeys(a.Entry); err != nil {
		return err
	}
	n := 0
	for _, row := range activity {
		if matchEntry(row, a.Entry) {
			n++
		}
	}
	if n != a.Count {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%d entries matching %s", a.Count, formatWhere(a.Entry)),
			Actual:   fmt.Sprintf("%d", n),
		}
	}
	return nil
}

func checkEntryKeys(entry map[string]any) error {
	for k := range entry {
		found := false
		for _, col := range activityColumns {
			if k == col {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("unknown activity field %q", k)
		}
	}
	return nil
}

// assertFinalState checks the single row matching Where against Expect.
// Table names are checked against the schema and column names against
// the table's own columns, so nothing from the scenario is interpolated
// unchecked.
func assertFinalState(actx *AssertionContext, a Assertion) error {
	var (
		rows []map[string]any
		cols []string
	)
	err := actx.Store.View(actx.Ctx, func(tx *store.Tx) error {
		var err error
		rows, cols, err = selectRows(actx.Ctx, tx, a.Table, a.Where)
		return err
	})
	if err != nil {
		return err
	}

	switch len(rows) {
	case 0:
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("row in %s where %s", a.Table, formatWhere(a.Where)),
			Actual:   "row not found",
		}
	case 1:
	default:
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("exactly one row in %s where %s", a.Table, formatWhere(a.Where)),
			Actual:   fmt.Sprintf("%d rows matched", len(rows)),
		}
	}

	row := rows[0]
	for _, key := range sortedKeys(a.Expect) {
		actual, ok := row[key]
		if !ok {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("column %q", key),
				Actual:   fmt.Sprintf("columns %v", cols),
			}
		}
		if !stateValuesEqual(a.Expect[key], actual) {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%s = %v", key, a.Expect[key]),
				Actual:   fmt.Sprintf("%s = %v", key, actual),
			}
		}
	}
	return nil
}

func assertRowCount(actx *AssertionContext, a Assertion) error {
	var rows []map[string]any
	err := actx.Store.View(actx.Ctx, func(tx *store.Tx) error {
		var err error
		rows, _, err = selectRows(actx.Ctx, tx, a.Table, a.Where)
		return err
	})
	if err != nil {
		return err
	}
	if len(rows) != a.Count {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%d rows in %s where %s", a.Count, a.Table, formatWhere(a.Where)),
			Actual:   fmt.Sprintf("%d", len(rows)),
		}
	}
	return nil
}

// selectRows returns every row of table matching where. Where keys must
// be columns of table.
func selectRows(ctx context.Context, tx *store.Tx, table string, where map[string]any) ([]map[string]any, []string, error) {
	if !store.IsTable(table) {
		return nil, nil, fmt.Errorf("unknown table %q", table)
	}

	cols, err := tableColumns(ctx, tx, table)
	if err != nil {
		return nil, nil, err
	}

	query := "SELECT * FROM " + table
	var args []any
	if len(where) > 0 {
		clauses := make([]string, 0, len(where))
		for _, key := range sortedKeys(where) {
			if !contains(cols, key) {
				return nil, nil, fmt.Errorf("table %s has no column %q", table, key)
			}
			clauses = append(clauses, key+" = ?")
			args = append(args, where[key])
		}
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY rowid"

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var out []map[string]any
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, fmt.Errorf("scan row: %w", err)
		}
		row := make(map[string]any, len(cols))
		for i, col := range cols {
			if b, ok := values[i].([]byte); ok {
				values[i] = string(b)
			}
			row[col] = values[i]
		}
		out = append(out, row)
	}
	return out, cols, rows.Err()
}

func tableColumns(ctx context.Context, tx *store.Tx, table string) ([]string, error) {
	rows, err := tx.Query(ctx, "SELECT * FROM "+table+" LIMIT 0")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return rows.Columns()
}

// stateValuesEqual compares a YAML expectation with a SQLite value.
// SQLite returns integers as int64 and stores booleans as 0/1; a nil
// expectation matches NULL.
func stateValuesEqual(expected, actual any) bool {
	if expected == nil || actual == nil {
		return expected == nil && actual == nil
	}

	switch exp := expected.(type) {
	case string:
		s, ok := actual.(string)
		return ok && exp == s
	case int:
		n, ok := actual.(int64)
		return ok && int64(exp) == n
	case int64:
		n, ok := actual.(int64)
		return ok && exp == n
	case float64:
		switch n := actual.(type) {
		case float64:
			return exp == n
		case int64:
			return exp == float64(n)
		}
		return false
	case bool:
		if b, ok := actual.(bool); ok {
			return exp == b
		}
		n, ok := actual.(int64)
		return ok && exp == (n != 0)
	}
	return fmt.Sprint(expected) == fmt.Sprint(actual)
}

func formatWhere(where map[string]any) string {
	if len(where) == 0 {
		return "(no conditions)"
	}
	parts := make([]string, 0, len(where))
	for _, k := range sortedKeys(where) {
		parts = append(parts, fmt.Sprintf("%s=%v", k, where[k]))
	}
	return strings.Join(parts, " AND ")
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
