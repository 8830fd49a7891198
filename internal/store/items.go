package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmeg8r/jdex/internal/jd"
)

const itemViewSelect = `
	SELECT i.id, i.item_number, i.folder_id, i.sequence, i.name, IFNULL(i.description, ''),
		IFNULL(i.file_type, ''), IFNULL(i.sensitivity, 'inherit'), IFNULL(i.location, ''),
		IFNULL(i.storage_path, ''), i.file_size, IFNULL(i.keywords, ''), IFNULL(i.notes, ''),
		IFNULL(i.created_at, ''), IFNULL(i.updated_at, ''),
		f.folder_number, f.name, IFNULL(f.sensitivity, 'standard'),
		c.number, c.name, a.name, IFNULL(a.color, '')
	FROM items i
	JOIN folders f ON i.folder_id = f.id
	JOIN categories c ON f.category_id = c.id
	JOIN areas a ON c.area_id = a.id`

// scanItemView scans a joined item row and resolves its effective
// sensitivity.
func scanItemView(s scanner) (jd.ItemView, error) {
	var v jd.ItemView
	var size sql.NullInt64
	err := s.Scan(&v.ID, &v.ItemNumber, &v.FolderID, &v.Sequence, &v.Name, &v.Description,
		&v.FileType, &v.Sensitivity, &v.Location,
		&v.StoragePath, &size, &v.Keywords, &v.Notes,
		&v.CreatedAt, &v.UpdatedAt,
		&v.FolderNumber, &v.FolderName, &v.FolderSensitivity,
		&v.CategoryNumber, &v.CategoryName, &v.AreaName, &v.AreaColor)
	if err != nil {
		return jd.ItemView{}, err
	}
	if size.Valid {
		v.FileSize = &size.Int64
	}
	v.Resolve()
	return v, nil
}

// InsertItem writes a new item. A zero ID lets SQLite assign one.
func (t *Tx) InsertItem(ctx context.Context, it jd.Item) (int64, error) {
	var id any
	if it.ID != 0 {
		id = it.ID
	}
	newID, err := t.insert(ctx, `
		INSERT INTO items (id, item_number, folder_id, sequence, name, description, file_type,
			sensitivity, location, storage_path, file_size, keywords, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
			COALESCE(?, CURRENT_TIMESTAMP), COALESCE(?, CURRENT_TIMESTAMP))
	`, id, it.ItemNumber, it.FolderID, it.Sequence, it.Name, nullString(it.Description),
		nullString(it.FileType), string(it.Sensitivity), nullString(it.Location),
		nullString(it.StoragePath), nullInt64(it.FileSize), nullString(it.Keywords), nullString(it.Notes),
		nullString(it.CreatedAt), nullString(it.UpdatedAt))
	if err != nil {
		return 0, fmt.Errorf("insert item: %w", err)
	}
	return newID, nil
}

// GetItem returns an item with its full ancestor chain.
// Returns sql.ErrNoRows if not found.
func (t *Tx) GetItem(ctx context.Context, id int64) (jd.ItemView, error) {
	v, err := scanItemView(t.tx.QueryRowContext(ctx, itemViewSelect+" WHERE i.id = ?", id))
	if err != nil {
		return jd.ItemView{}, fmt.Errorf("get item %d: %w", id, err)
	}
	return v, nil
}

// ListItems returns items ordered by item number, optionally restricted
// to one folder. folderID 0 means all.
func (t *Tx) ListItems(ctx context.Context, folderID int64) ([]jd.ItemView, error) {
	query := itemViewSelect
	var args []any
	if folderID != 0 {
		query += " WHERE i.folder_id = ?"
		args = append(args, folderID)
	}
	query += " ORDER BY i.item_number"
	return t.queryItems(ctx, query, args...)
}

func (t *Tx) queryItems(ctx context.Context, query string, args ...any) ([]jd.ItemView, error) {
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	items := []jd.ItemView{}
	for rows.Next() {
		v, err := scanItemView(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

// UpdateItem applies fields to an item, stamps updated_at, and reports
// rows changed.
func (t *Tx) UpdateItem(ctx context.Context, id int64, fields []jd.Field, now string) (int64, error) {
	n, err := t.update(ctx, "items", id, fields, now)
	if err != nil {
		return 0, fmt.Errorf("update item %d: %w", id, err)
	}
	return n, nil
}

// DeleteItem removes an item and reports rows removed.
func (t *Tx) DeleteItem(ctx context.Context, id int64) (int64, error) {
	n, err := t.deleteByID(ctx, "items", id)
	if err != nil {
		return 0, fmt.Errorf("delete item %d: %w", id, err)
	}
	return n, nil
}

// MaxItemSequence returns the highest item sequence in a folder, or 0
// when it has none.
func (t *Tx) MaxItemSequence(ctx context.Context, folderID int64) (int, error) {
	n, err := t.count(ctx, "SELECT IFNULL(MAX(sequence), 0) FROM items WHERE folder_id = ?", folderID)
	if err != nil {
		return 0, fmt.Errorf("max item sequence in folder %d: %w", folderID, err)
	}
	return int(n), nil
}

// ItemNumberTaken reports whether another item already uses number.
func (t *Tx) ItemNumberTaken(ctx context.Context, number string, excludeID int64) (bool, error) {
	n, err := t.count(ctx, "SELECT COUNT(*) FROM items WHERE item_number = ? AND id != ?", number, excludeID)
	if err != nil {
		return false, fmt.Errorf("check item number %s: %w", number, err)
	}
	return n > 0, nil
}
