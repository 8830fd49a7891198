package store

import (
	"context"
	"fmt"

	"github.com/jmeg8r/jdex/internal/jd"
)

// SearchFolders and SearchItems match a substring with SQLite LIKE
// (ASCII case-insensitive) against the entity's own text columns and the
// name of every ancestor. The term is bound, never formatted, so % and _
// keep their LIKE meaning and nothing else does.

// SearchFolders matches the folder's number, name, description,
// keywords, notes, location and storage path, plus category and area
// names.
func (t *Tx) SearchFolders(ctx context.Context, term string) ([]jd.FolderView, error) {
	p := "%" + term + "%"
	folders, err := t.queryFolders(ctx, folderViewSelect+`
		WHERE f.folder_number LIKE ? OR f.name LIKE ? OR f.description LIKE ?
			OR f.keywords LIKE ? OR f.notes LIKE ? OR f.location LIKE ? OR f.storage_path LIKE ?
			OR c.name LIKE ? OR a.name LIKE ?
		ORDER BY f.folder_number`, p, p, p, p, p, p, p, p, p)
	if err != nil {
		return nil, fmt.Errorf("search folders: %w", err)
	}
	return folders, nil
}

// SearchItems matches the item's number, name, description, keywords,
// notes, location, storage path and file type, plus folder, category and
// area names.
func (t *Tx) SearchItems(ctx context.Context, term string) ([]jd.ItemView, error) {
	p := "%" + term + "%"
	items, err := t.queryItems(ctx, itemViewSelect+`
		WHERE i.item_number LIKE ? OR i.name LIKE ? OR i.description LIKE ?
			OR i.keywords LIKE ? OR i.notes LIKE ? OR i.location LIKE ? OR i.storage_path LIKE ?
			OR i.file_type LIKE ? OR f.name LIKE ? OR c.name LIKE ? OR a.name LIKE ?
		ORDER BY i.item_number`, p, p, p, p, p, p, p, p, p, p, p)
	if err != nil {
		return nil, fmt.Errorf("search items: %w", err)
	}
	return items, nil
}
