package store

import (
	"context"
	"fmt"

	"github.com/jmeg8r/jdex/internal/jd"
)

const locationColumns = `id, name, type, IFNULL(path, ''), IFNULL(is_encrypted, 0), IFNULL(notes, '')`

func scanLocation(s scanner) (jd.StorageLocation, error) {
	var l jd.StorageLocation
	err := s.Scan(&l.ID, &l.Name, &l.Type, &l.Path, &l.IsEncrypted, &l.Notes)
	return l, err
}

// InsertLocation writes a storage location. A zero ID lets SQLite
// assign one.
func (t *Tx) InsertLocation(ctx context.Context, l jd.StorageLocation) (int64, error) {
	var id any
	if l.ID != 0 {
		id = l.ID
	}
	newID, err := t.insert(ctx, `
		INSERT INTO storage_locations (id, name, type, path, is_encrypted, notes)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, l.Name, l.Type, nullString(l.Path), l.IsEncrypted, nullString(l.Notes))
	if err != nil {
		return 0, fmt.Errorf("insert storage location: %w", err)
	}
	return newID, nil
}

// GetLocation returns a storage location.
// Returns sql.ErrNoRows if not found.
func (t *Tx) GetLocation(ctx context.Context, id int64) (jd.StorageLocation, error) {
	l, err := scanLocation(t.tx.QueryRowContext(ctx,
		"SELECT "+locationColumns+" FROM storage_locations WHERE id = ?", id))
	if err != nil {
		return jd.StorageLocation{}, fmt.Errorf("get storage location %d: %w", id, err)
	}
	return l, nil
}

// ListLocations returns all storage locations ordered by name.
func (t *Tx) ListLocations(ctx context.Context) ([]jd.StorageLocation, error) {
	rows, err := t.tx.QueryContext(ctx,
		"SELECT "+locationColumns+" FROM storage_locations ORDER BY name, id")
	if err != nil {
		return nil, fmt.Errorf("query storage locations: %w", err)
	}
	defer rows.Close()

	locs := []jd.StorageLocation{}
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan storage location: %w", err)
		}
		locs = append(locs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate storage locations: %w", err)
	}
	return locs, nil
}

// UpdateLocation applies fields to a storage location.
func (t *Tx) UpdateLocation(ctx context.Context, id int64, fields []jd.Field) (int64, error) {
	n, err := t.update(ctx, "storage_locations", id, fields, "")
	if err != nil {
		return 0, fmt.Errorf("update storage location %d: %w", id, err)
	}
	return n, nil
}

// DeleteLocation removes a storage location. Nothing references it by key.
func (t *Tx) DeleteLocation(ctx context.Context, id int64) (int64, error) {
	n, err := t.deleteByID(ctx, "storage_locations", id)
	if err != nil {
		return 0, fmt.Errorf("delete storage location %d: %w", id, err)
	}
	return n, nil
}
