package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmeg8r/jdex/internal/jd"
)

// Tx is a transaction handle passed to Update and View callbacks.
// It must not be retained after the callback returns.
type Tx struct {
	tx *sql.Tx
}

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// nullString stores empty optional text as NULL, matching rows written
// by earlier installations.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt64(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

// insert runs an INSERT and returns the new row id.
func (t *Tx) insert(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// update applies fields to one row of table by id and reports the number
// of rows changed. Column names come from the jd allow-lists; values are
// always bound. A non-empty touch also sets updated_at.
func (t *Tx) update(ctx context.Context, table string, id int64, fields []jd.Field, touch string) (int64, error) {
	sets := make([]string, 0, len(fields)+1)
	args := make([]any, 0, len(fields)+2)
	for _, f := range fields {
		sets = append(sets, f.Column+" = ?")
		args = append(args, f.Value)
	}
	if touch != "" {
		sets = append(sets, "updated_at = ?")
		args = append(args, touch)
	}
	if len(sets) == 0 {
		return t.count(ctx, "SELECT COUNT(*) FROM "+table+" WHERE id = ?", id)
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", table, strings.Join(sets, ", "))
	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// deleteByID removes one row of table and reports the number removed.
func (t *Tx) deleteByID(ctx context.Context, table string, id int64) (int64, error) {
	res, err := t.tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func (t *Tx) count(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	if err := t.tx.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Exec runs a statement inside the transaction. Reserved for the
// console; domain code uses the typed primitives.
func (t *Tx) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return t.tx.ExecContext(ctx, query, args...)
}

// Query runs a query inside the transaction. Callers close the rows.
func (t *Tx) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return t.tx.QueryContext(ctx, query, args...)
}

// IsEmpty reports whether every application table is empty, which only
// holds for a database nobody has written to yet.
func (t *Tx) IsEmpty(ctx context.Context) (bool, error) {
	for _, table := range Tables {
		n, err := t.count(ctx, "SELECT COUNT(*) FROM (SELECT 1 FROM "+table+" LIMIT 1)")
		if err != nil {
			return false, fmt.Errorf("check %s: %w", table, err)
		}
		if n > 0 {
			return false, nil
		}
	}
	return true, nil
}
