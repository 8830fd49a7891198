package store

import (
	"context"
	"fmt"

	"github.com/jmeg8r/jdex/internal/jd"
)

// Sequence high-water marks. A parent's mark is the largest child
// sequence it has ever held, so numbers freed by a delete are never
// issued again. Parents are keyed by entity type: categories for folder
// sequences, folders for item sequences.

// HighWater returns the recorded mark for a parent, 0 if none.
func (t *Tx) HighWater(ctx context.Context, parent jd.EntityType, parentID int64) (int, error) {
	n, err := t.count(ctx, `
		SELECT IFNULL(MAX(high_water), 0) FROM sequence_counters
		WHERE parent_type = ? AND parent_id = ?
	`, string(parent), parentID)
	if err != nil {
		return 0, fmt.Errorf("read high water for %s %d: %w", parent, parentID, err)
	}
	return int(n), nil
}

// RaiseHighWater records seq for a parent unless a higher mark exists.
func (t *Tx) RaiseHighWater(ctx context.Context, parent jd.EntityType, parentID int64, seq int) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO sequence_counters (parent_type, parent_id, high_water) VALUES (?, ?, ?)
		ON CONFLICT (parent_type, parent_id) DO UPDATE SET high_water = MAX(high_water, excluded.high_water)
	`, string(parent), parentID, seq)
	if err != nil {
		return fmt.Errorf("raise high water for %s %d: %w", parent, parentID, err)
	}
	return nil
}

// ClearHighWater forgets a deleted parent's mark. Category ids can be
// reused by SQLite, and a new category must start from 01.
func (t *Tx) ClearHighWater(ctx context.Context, parent jd.EntityType, parentID int64) error {
	_, err := t.tx.ExecContext(ctx,
		"DELETE FROM sequence_counters WHERE parent_type = ? AND parent_id = ?", string(parent), parentID)
	if err != nil {
		return fmt.Errorf("clear high water for %s %d: %w", parent, parentID, err)
	}
	return nil
}
