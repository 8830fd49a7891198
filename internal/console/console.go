// Package console is the privileged raw-SQL escape hatch.
//
// Nothing here goes through the engine: statements run directly against
// the store with none of the numbering, containment or allow-list guards,
// and no activity is logged. Failures come back inside the Result, never
// as a Go error, so a bad statement cannot abort the caller.
package console

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/jmeg8r/jdex/internal/store"
)

// Result is the outcome of one console call.
//
// Sets holds the rows of every statement that produced a result set, in
// order. Columns and Rows repeat the last of them, and RowsAffected
// totals the statements that did not.
type Result struct {
	Success      bool        `json:"success"`
	Columns      []string    `json:"columns"`
	Rows         [][]any     `json:"rows"`
	Sets         []ResultSet `json:"sets"`
	RowsAffected int64       `json:"rows_affected"`
	Error        string      `json:"error,omitempty"`
}

// ResultSet is the output of one row-producing statement.
type ResultSet struct {
	Statement string   `json:"statement"`
	Columns   []string `json:"columns"`
	Rows      [][]any  `json:"rows"`
}

// Console executes caller-supplied SQL.
type Console struct {
	store *store.Store
	log   zerolog.Logger
}

// New creates a Console over an open store.
func New(st *store.Store, log zerolog.Logger) *Console {
	return &Console{store: st, log: log}
}

// Exec runs src in its own transaction and commits it. src may hold
// several statements separated by semicolons; they run in order and the
// first failure rolls all of them back.
//
// Each statement is prepared as a query. One that reports result columns
// is drained into a ResultSet (running it, RETURNING clauses included);
// one that reports none is executed for its affected-row count.
func (c *Console) Exec(ctx context.Context, src string) Result {
	stmts := splitStatements(src)
	if len(stmts) == 0 {
		return Result{Error: "empty statement"}
	}

	res := Result{Columns: []string{}, Rows: [][]any{}, Sets: []ResultSet{}}
	err := c.store.Update(ctx, func(tx *store.Tx) error {
		for _, stmt := range stmts {
			if err := run(ctx, tx, stmt, &res); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.log.Warn().Err(err).Msg("console statement failed")
		return Result{Error: err.Error()}
	}

	if n := len(res.Sets); n > 0 {
		res.Columns, res.Rows = res.Sets[n-1].Columns, res.Sets[n-1].Rows
	}
	res.Success = true
	c.log.Info().
		Int("statements", len(stmts)).
		Int("sets", len(res.Sets)).
		Int64("affected", res.RowsAffected).
		Msg("console statement executed")
	return res
}

// run executes one statement inside tx and adds its output to res.
func run(ctx context.Context, tx *store.Tx, stmt string, res *Result) error {
	rows, err := tx.Query(ctx, stmt)
	if err != nil {
		return err
	}
	cols, err := rows.Columns()
	if err != nil {
		rows.Close()
		return err
	}
	if len(cols) > 0 {
		names, out, err := collect(rows)
		if err != nil {
			return err
		}
		res.Sets = append(res.Sets, ResultSet{Statement: stmt, Columns: names, Rows: out})
		return nil
	}

	// No result columns: the prepared query has not stepped yet, so
	// closing it leaves the statement unexecuted.
	if err := rows.Close(); err != nil {
		return err
	}
	r, err := tx.Exec(ctx, stmt)
	if err != nil {
		return err
	}
	n, _ := r.RowsAffected()
	res.RowsAffected += n
	return nil
}

// Tables lists every table in the database, including SQLite's own and
// any not owned by the application.
func (c *Console) Tables(ctx context.Context) ([]string, error) {
	var names []string
	err := c.store.View(ctx, func(tx *store.Tx) error {
		rows, err := tx.Query(ctx, "SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name")
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				return err
			}
			names = append(names, name)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

// TableData returns every row of one application table. Any other name
// yields an empty result; the name is never interpolated unless it is on
// the list.
func (c *Console) TableData(ctx context.Context, name string) (Result, error) {
	res := Result{Columns: []string{}, Rows: [][]any{}, Sets: []ResultSet{}}
	if !store.IsTable(name) {
		return res, nil
	}
	err := c.store.View(ctx, func(tx *store.Tx) error {
		rows, err := tx.Query(ctx, "SELECT * FROM "+name)
		if err != nil {
			return err
		}
		res.Columns, res.Rows, err = collect(rows)
		return err
	})
	if err != nil {
		return Result{}, err
	}
	res.Success = true
	return res, nil
}

// collect drains rows into display values. Blobs and text both arrive as
// strings.
func collect(rows *sql.Rows) ([]string, [][]any, error) {
	defer rows.Close()
	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}
	out := [][]any{}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		out = append(out, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	if cols == nil {
		cols = []string{}
	}
	return cols, out, nil
}
