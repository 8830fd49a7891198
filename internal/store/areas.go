package store

import (
	"context"
	"fmt"

	"github.com/jmeg8r/jdex/internal/jd"
)

const areaColumns = `id, range_start, range_end, name, IFNULL(description, ''),
	IFNULL(color, ''), IFNULL(created_at, '')`

func scanArea(s scanner) (jd.Area, error) {
	var a jd.Area
	err := s.Scan(&a.ID, &a.RangeStart, &a.RangeEnd, &a.Name, &a.Description, &a.Color, &a.CreatedAt)
	return a, err
}

// InsertArea writes a new area. A zero ID lets SQLite assign one; seed
// and import paths pass explicit IDs.
func (t *Tx) InsertArea(ctx context.Context, a jd.Area) (int64, error) {
	var id any
	if a.ID != 0 {
		id = a.ID
	}
	newID, err := t.insert(ctx, `
		INSERT INTO areas (id, range_start, range_end, name, description, color, created_at)
		VALUES (?, ?, ?, ?, ?, ?, COALESCE(?, CURRENT_TIMESTAMP))
	`, id, a.RangeStart, a.RangeEnd, a.Name, nullString(a.Description), a.Color, nullString(a.CreatedAt))
	if err != nil {
		return 0, fmt.Errorf("insert area: %w", err)
	}
	return newID, nil
}

// GetArea returns the area with the given id.
// Returns sql.ErrNoRows if not found.
func (t *Tx) GetArea(ctx context.Context, id int64) (jd.Area, error) {
	row := t.tx.QueryRowContext(ctx, "SELECT "+areaColumns+" FROM areas WHERE id = ?", id)
	a, err := scanArea(row)
	if err != nil {
		return jd.Area{}, fmt.Errorf("get area %d: %w", id, err)
	}
	return a, nil
}

// ListAreas returns all areas ordered by range start.
// Returns empty slice (not nil) if there are none.
func (t *Tx) ListAreas(ctx context.Context) ([]jd.Area, error) {
	rows, err := t.tx.QueryContext(ctx, "SELECT "+areaColumns+" FROM areas ORDER BY range_start, id")
	if err != nil {
		return nil, fmt.Errorf("query areas: %w", err)
	}
	defer rows.Close()

	areas := []jd.Area{}
	for rows.Next() {
		a, err := scanArea(rows)
		if err != nil {
			return nil, fmt.Errorf("scan area: %w", err)
		}
		areas = append(areas, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate areas: %w", err)
	}
	return areas, nil
}

// UpdateArea applies fields to an area and reports rows changed.
func (t *Tx) UpdateArea(ctx context.Context, id int64, fields []jd.Field) (int64, error) {
	n, err := t.update(ctx, "areas", id, fields, "")
	if err != nil {
		return 0, fmt.Errorf("update area %d: %w", id, err)
	}
	return n, nil
}

// DeleteArea removes an area and reports rows removed.
func (t *Tx) DeleteArea(ctx context.Context, id int64) (int64, error) {
	n, err := t.deleteByID(ctx, "areas", id)
	if err != nil {
		return 0, fmt.Errorf("delete area %d: %w", id, err)
	}
	return n, nil
}

// CountCategoriesInArea counts categories referencing an area.
func (t *Tx) CountCategoriesInArea(ctx context.Context, areaID int64) (int, error) {
	n, err := t.count(ctx, "SELECT COUNT(*) FROM categories WHERE area_id = ?", areaID)
	if err != nil {
		return 0, fmt.Errorf("count categories in area %d: %w", areaID, err)
	}
	return int(n), nil
}
