package store

import (
	"context"
	"fmt"

	"github.com/jmeg8r/jdex/internal/jd"
)

// AppendActivity records one audit entry. An empty Timestamp takes the
// database clock.
func (t *Tx) AppendActivity(ctx context.Context, e jd.ActivityEntry) (int64, error) {
	id, err := t.insert(ctx, `
		INSERT INTO activity_log (action, entity_type, entity_number, details, timestamp)
		VALUES (?, ?, ?, ?, COALESCE(?, CURRENT_TIMESTAMP))
	`, string(e.Action), string(e.EntityType), e.EntityNumber, nullString(e.Details), nullString(e.Timestamp))
	if err != nil {
		return 0, fmt.Errorf("append activity: %w", err)
	}
	return id, nil
}

// RecentActivity returns up to limit entries, newest first. Entries that
// share a timestamp are ordered by insertion, newest first.
func (t *Tx) RecentActivity(ctx context.Context, limit int) ([]jd.ActivityEntry, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT id, action, IFNULL(entity_type, ''), IFNULL(entity_number, ''),
			IFNULL(details, ''), IFNULL(timestamp, '')
		FROM activity_log
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query activity: %w", err)
	}
	defer rows.Close()

	entries := []jd.ActivityEntry{}
	for rows.Next() {
		var e jd.ActivityEntry
		if err := rows.Scan(&e.ID, &e.Action, &e.EntityType, &e.EntityNumber, &e.Details, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activity: %w", err)
	}
	return entries, nil
}
