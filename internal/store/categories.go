package store

import (
	"context"
	"fmt"

	"github.com/jmeg8r/jdex/internal/jd"
)

const categoryViewSelect = `
	SELECT c.id, c.number, c.area_id, c.name, IFNULL(c.description, ''), IFNULL(c.created_at, ''),
		a.name, IFNULL(a.color, '')
	FROM categories c
	JOIN areas a ON c.area_id = a.id`

func scanCategoryView(s scanner) (jd.CategoryView, error) {
	var v jd.CategoryView
	err := s.Scan(&v.ID, &v.Number, &v.AreaID, &v.Name, &v.Description, &v.CreatedAt,
		&v.AreaName, &v.AreaColor)
	return v, err
}

// InsertCategory writes a new category. A zero ID lets SQLite assign one.
func (t *Tx) InsertCategory(ctx context.Context, c jd.Category) (int64, error) {
	var id any
	if c.ID != 0 {
		id = c.ID
	}
	newID, err := t.insert(ctx, `
		INSERT INTO categories (id, number, area_id, name, description, created_at)
		VALUES (?, ?, ?, ?, ?, COALESCE(?, CURRENT_TIMESTAMP))
	`, id, c.Number, c.AreaID, c.Name, nullString(c.Description), nullString(c.CreatedAt))
	if err != nil {
		return 0, fmt.Errorf("insert category: %w", err)
	}
	return newID, nil
}

// GetCategory returns a category with its area's display fields.
// Returns sql.ErrNoRows if not found.
func (t *Tx) GetCategory(ctx context.Context, id int64) (jd.CategoryView, error) {
	v, err := scanCategoryView(t.tx.QueryRowContext(ctx, categoryViewSelect+" WHERE c.id = ?", id))
	if err != nil {
		return jd.CategoryView{}, fmt.Errorf("get category %d: %w", id, err)
	}
	return v, nil
}

// ListCategories returns categories ordered by number, optionally
// restricted to one area. areaID 0 means all.
func (t *Tx) ListCategories(ctx context.Context, areaID int64) ([]jd.CategoryView, error) {
	query := categoryViewSelect
	var args []any
	if areaID != 0 {
		query += " WHERE c.area_id = ?"
		args = append(args, areaID)
	}
	query += " ORDER BY c.number"

	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	cats := []jd.CategoryView{}
	for rows.Next() {
		v, err := scanCategoryView(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return cats, nil
}

// UpdateCategory applies fields to a category and reports rows changed.
func (t *Tx) UpdateCategory(ctx context.Context, id int64, fields []jd.Field) (int64, error) {
	n, err := t.update(ctx, "categories", id, fields, "")
	if err != nil {
		return 0, fmt.Errorf("update category %d: %w", id, err)
	}
	return n, nil
}

// DeleteCategory removes a category and reports rows removed.
func (t *Tx) DeleteCategory(ctx context.Context, id int64) (int64, error) {
	n, err := t.deleteByID(ctx, "categories", id)
	if err != nil {
		return 0, fmt.Errorf("delete category %d: %w", id, err)
	}
	return n, nil
}

// CountFoldersInCategory counts folders referencing a category.
func (t *Tx) CountFoldersInCategory(ctx context.Context, categoryID int64) (int, error) {
	n, err := t.count(ctx, "SELECT COUNT(*) FROM folders WHERE category_id = ?", categoryID)
	if err != nil {
		return 0, fmt.Errorf("count folders in category %d: %w", categoryID, err)
	}
	return int(n), nil
}

// CategoryNumberTaken reports whether another category already uses
// number. excludeID skips the row being updated.
func (t *Tx) CategoryNumberTaken(ctx context.Context, number int, excludeID int64) (bool, error) {
	n, err := t.count(ctx, "SELECT COUNT(*) FROM categories WHERE number = ? AND id != ?", number, excludeID)
	if err != nil {
		return false, fmt.Errorf("check category number %d: %w", number, err)
	}
	return n > 0, nil
}

// RenumberCategory rewrites the CC prefix of every folder in a category,
// and of their items, to a new category number.
func (t *Tx) RenumberCategory(ctx context.Context, categoryID int64, number int, now string) error {
	prefix := jd.FormatCategoryNumber(number)
	if _, err := t.tx.ExecContext(ctx, `
		UPDATE items SET item_number = ? || substr(item_number, 3), updated_at = ?
		WHERE folder_id IN (SELECT id FROM folders WHERE category_id = ?)
	`, prefix, now, categoryID); err != nil {
		return fmt.Errorf("renumber items in category %d: %w", categoryID, err)
	}
	if _, err := t.tx.ExecContext(ctx, `
		UPDATE folders SET folder_number = ? || substr(folder_number, 3), updated_at = ?
		WHERE category_id = ?
	`, prefix, now, categoryID); err != nil {
		return fmt.Errorf("renumber folders in category %d: %w", categoryID, err)
	}
	return nil
}
