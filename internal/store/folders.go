package store

import (
	"context"
	"fmt"

	"github.com/jmeg8r/jdex/internal/jd"
)

const folderViewSelect = `
	SELECT f.id, f.folder_number, f.category_id, f.sequence, f.name, IFNULL(f.description, ''),
		IFNULL(f.sensitivity, 'standard'), IFNULL(f.location, ''), IFNULL(f.storage_path, ''),
		IFNULL(f.keywords, ''), IFNULL(f.notes, ''), IFNULL(f.created_at, ''), IFNULL(f.updated_at, ''),
		c.number, c.name, a.name, IFNULL(a.color, '')
	FROM folders f
	JOIN categories c ON f.category_id = c.id
	JOIN areas a ON c.area_id = a.id`

func scanFolderView(s scanner) (jd.FolderView, error) {
	var v jd.FolderView
	err := s.Scan(&v.ID, &v.FolderNumber, &v.CategoryID, &v.Sequence, &v.Name, &v.Description,
		&v.Sensitivity, &v.Location, &v.StoragePath,
		&v.Keywords, &v.Notes, &v.CreatedAt, &v.UpdatedAt,
		&v.CategoryNumber, &v.CategoryName, &v.AreaName, &v.AreaColor)
	return v, err
}

// InsertFolder writes a new folder. A zero ID lets SQLite assign one.
func (t *Tx) InsertFolder(ctx context.Context, f jd.Folder) (int64, error) {
	var id any
	if f.ID != 0 {
		id = f.ID
	}
	newID, err := t.insert(ctx, `
		INSERT INTO folders (id, folder_number, category_id, sequence, name, description,
			sensitivity, location, storage_path, keywords, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
			COALESCE(?, CURRENT_TIMESTAMP), COALESCE(?, CURRENT_TIMESTAMP))
	`, id, f.FolderNumber, f.CategoryID, f.Sequence, f.Name, nullString(f.Description),
		string(f.Sensitivity), nullString(f.Location), nullString(f.StoragePath),
		nullString(f.Keywords), nullString(f.Notes), nullString(f.CreatedAt), nullString(f.UpdatedAt))
	if err != nil {
		return 0, fmt.Errorf("insert folder: %w", err)
	}
	return newID, nil
}

// GetFolder returns a folder with its category and area display fields.
// Returns sql.ErrNoRows if not found.
func (t *Tx) GetFolder(ctx context.Context, id int64) (jd.FolderView, error) {
	v, err := scanFolderView(t.tx.QueryRowContext(ctx, folderViewSelect+" WHERE f.id = ?", id))
	if err != nil {
		return jd.FolderView{}, fmt.Errorf("get folder %d: %w", id, err)
	}
	return v, nil
}

// ListFolders returns folders ordered by folder number, optionally
// restricted to one category. categoryID 0 means all.
func (t *Tx) ListFolders(ctx context.Context, categoryID int64) ([]jd.FolderView, error) {
	query := folderViewSelect
	var args []any
	if categoryID != 0 {
		query += " WHERE f.category_id = ?"
		args = append(args, categoryID)
	}
	query += " ORDER BY f.folder_number"
	return t.queryFolders(ctx, query, args...)
}

func (t *Tx) queryFolders(ctx context.Context, query string, args ...any) ([]jd.FolderView, error) {
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query folders: %w", err)
	}
	defer rows.Close()

	folders := []jd.FolderView{}
	for rows.Next() {
		v, err := scanFolderView(rows)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}
	return folders, nil
}

// UpdateFolder applies fields to a folder, stamps updated_at, and
// reports rows changed.
func (t *Tx) UpdateFolder(ctx context.Context, id int64, fields []jd.Field, now string) (int64, error) {
	n, err := t.update(ctx, "folders", id, fields, now)
	if err != nil {
		return 0, fmt.Errorf("update folder %d: %w", id, err)
	}
	return n, nil
}

// DeleteFolder removes a folder and reports rows removed.
func (t *Tx) DeleteFolder(ctx context.Context, id int64) (int64, error) {
	n, err := t.deleteByID(ctx, "folders", id)
	if err != nil {
		return 0, fmt.Errorf("delete folder %d: %w", id, err)
	}
	return n, nil
}

// CountItemsInFolder counts items referencing a folder.
func (t *Tx) CountItemsInFolder(ctx context.Context, folderID int64) (int, error) {
	n, err := t.count(ctx, "SELECT COUNT(*) FROM items WHERE folder_id = ?", folderID)
	if err != nil {
		return 0, fmt.Errorf("count items in folder %d: %w", folderID, err)
	}
	return int(n), nil
}

// MaxFolderSequence returns the highest folder sequence in a category,
// or 0 when it has none.
func (t *Tx) MaxFolderSequence(ctx context.Context, categoryID int64) (int, error) {
	n, err := t.count(ctx, "SELECT IFNULL(MAX(sequence), 0) FROM folders WHERE category_id = ?", categoryID)
	if err != nil {
		return 0, fmt.Errorf("max folder sequence in category %d: %w", categoryID, err)
	}
	return int(n), nil
}

// FolderNumberTaken reports whether another folder already uses number.
func (t *Tx) FolderNumberTaken(ctx context.Context, number string, excludeID int64) (bool, error) {
	n, err := t.count(ctx, "SELECT COUNT(*) FROM folders WHERE folder_number = ? AND id != ?", number, excludeID)
	if err != nil {
		return false, fmt.Errorf("check folder number %s: %w", number, err)
	}
	return n > 0, nil
}

// RenumberFolderItems rewrites the CC.SS prefix of every item in a folder
// to match the folder's new number. Item sequences are kept.
func (t *Tx) RenumberFolderItems(ctx context.Context, folderID int64, folderNumber string, now string) (int64, error) {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE items SET item_number = ? || substr(item_number, 6), updated_at = ?
		WHERE folder_id = ?
	`, folderNumber, now, folderID)
	if err != nil {
		return 0, fmt.Errorf("renumber items in folder %d: %w", folderID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
