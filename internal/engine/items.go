package engine

import (
	"context"

	"github.com/jmeg8r/jdex/internal/jd"
	"github.com/jmeg8r/jdex/internal/store"
)

// ListItems returns items ordered by item number with their ancestor
// chain and effective sensitivity. folderID 0 lists all.
func (e *Engine) ListItems(ctx context.Context, folderID int64) ([]jd.ItemView, error) {
	var items []jd.ItemView
	err := e.read(ctx, "list items", func(tx *store.Tx) error {
		var err error
		items, err = tx.ListItems(ctx, folderID)
		return err
	})
	return items, err
}

// GetItem returns one item.
func (e *Engine) GetItem(ctx context.Context, id int64) (jd.ItemView, error) {
	var it jd.ItemView
	err := e.read(ctx, "get item", func(tx *store.Tx) error {
		var err error
		it, err = tx.GetItem(ctx, id)
		return notFound(err, jd.EntityItem, id)
	})
	return it, err
}

// CreateItem validates and inserts an item, returning its id. Numbering
// follows CreateFolder one level down, with the folder's stored number
// as the prefix.
func (e *Engine) CreateItem(ctx context.Context, in jd.Item) (int64, error) {
	if err := jd.ValidateID("folder_id", in.FolderID); err != nil {
		return 0, err
	}
	if err := jd.ValidateFileSize(in.FileSize); err != nil {
		return 0, err
	}
	clean, err := normalize([]jd.Field{
		{Column: "name", Value: in.Name},
		{Column: "description", Value: in.Description},
		{Column: "file_type", Value: in.FileType},
		{Column: "sensitivity", Value: string(in.Sensitivity)},
		{Column: "location", Value: in.Location},
		{Column: "storage_path", Value: in.StoragePath},
		{Column: "keywords", Value: in.Keywords},
		{Column: "notes", Value: in.Notes},
	}, itemKinds)
	if err != nil {
		return 0, err
	}
	number, seq, err := requestedNumber(in.ItemNumber, in.Sequence, jd.ValidateItemNumber)
	if err != nil {
		return 0, err
	}

	it := jd.Item{
		FolderID:    in.FolderID,
		Name:        stringField(clean, "name", ""),
		Description: stringField(clean, "description", ""),
		FileType:    stringField(clean, "file_type", ""),
		Sensitivity: jd.Sensitivity(stringField(clean, "sensitivity", "")),
		Location:    stringField(clean, "location", ""),
		StoragePath: stringField(clean, "storage_path", ""),
		FileSize:    in.FileSize,
		Keywords:    stringField(clean, "keywords", ""),
		Notes:       stringField(clean, "notes", ""),
	}

	var id int64
	err = e.write(ctx, "create item", func(tx *store.Tx) error {
		if number == "" && seq == 0 {
			alloc, _, err := nextItem(ctx, tx, in.FolderID)
			if err != nil {
				return err
			}
			it.ItemNumber, it.Sequence = alloc.Number, alloc.Sequence
		} else {
			folder, err := tx.GetFolder(ctx, in.FolderID)
			if err != nil {
				return notFound(err, jd.EntityFolder, in.FolderID)
			}
			if number == "" {
				number = jd.FormatItemNumber(folder.FolderNumber, seq)
			}
			if err := jd.CheckItemNumber(number, folder.FolderNumber, seq); err != nil {
				return err
			}
			it.ItemNumber, it.Sequence = number, seq
		}

		if err := checkItemNumberFree(ctx, tx, it.ItemNumber, 0); err != nil {
			return err
		}
		if err := e.record(ctx, tx, jd.ActionCreate, jd.EntityItem, it.ItemNumber, "Created item: "+it.Name); err != nil {
			return err
		}
		now := e.now()
		it.CreatedAt, it.UpdatedAt = now, now
		var err error
		id, err = tx.InsertItem(ctx, it)
		if err != nil {
			return constraintError(err, jd.EntityItem, "item_number", it.ItemNumber)
		}
		return tx.RaiseHighWater(ctx, jd.EntityFolder, in.FolderID, it.Sequence)
	})
	if err != nil {
		return 0, err
	}
	e.logMutation(jd.ActionCreate, jd.EntityItem, id, it.ItemNumber)
	return id, nil
}

// UpdateItem applies the allow-listed fields of p and refreshes
// updated_at. Touching item_number, folder_id or sequence re-checks the
// number against the (possibly new) folder the way UpdateFolder does.
func (e *Engine) UpdateItem(ctx context.Context, id int64, p jd.Patch) error {
	fields, err := e.prepare(jd.EntityItem, id, p, jd.ItemFields, itemKinds)
	if err != nil || len(fields) == 0 {
		return err
	}

	var number string
	err = e.write(ctx, "update item", func(tx *store.Tx) error {
		cur, err := tx.GetItem(ctx, id)
		if err != nil {
			return notFound(err, jd.EntityItem, id)
		}
		number = cur.ItemNumber

		if touches(fields, "item_number", "folder_id", "sequence") {
			folderID := idField(fields, "folder_id", cur.FolderID)
			folder, err := tx.GetFolder(ctx, folderID)
			if err != nil {
				return notFound(err, jd.EntityFolder, folderID)
			}
			number, fields, err = reconcileNumber(fields, "item_number", cur.Sequence,
				func(seq int) string { return jd.FormatItemNumber(folder.FolderNumber, seq) },
				func(n string, seq int) error { return jd.CheckItemNumber(n, folder.FolderNumber, seq) })
			if err != nil {
				return err
			}
			if err := checkItemNumberFree(ctx, tx, number, id); err != nil {
				return err
			}
			seq := intField(fields, "sequence", cur.Sequence)
			if err := tx.RaiseHighWater(ctx, jd.EntityFolder, folderID, seq); err != nil {
				return err
			}
		}

		if _, err := tx.UpdateItem(ctx, id, fields, e.now()); err != nil {
			return constraintError(err, jd.EntityItem, "item_number", number)
		}
		name := stringField(fields, "name", cur.Name)
		return e.record(ctx, tx, jd.ActionUpdate, jd.EntityItem, number, "Updated item: "+name)
	})
	if err != nil {
		return err
	}
	e.logMutation(jd.ActionUpdate, jd.EntityItem, id, number)
	return nil
}

// DeleteItem removes an item. Items are leaves, so nothing can block it.
func (e *Engine) DeleteItem(ctx context.Context, id int64) error {
	if err := jd.ValidateID("id", id); err != nil {
		return err
	}

	var number string
	err := e.write(ctx, "delete item", func(tx *store.Tx) error {
		cur, err := tx.GetItem(ctx, id)
		if err != nil {
			return notFound(err, jd.EntityItem, id)
		}
		if err := tx.RaiseHighWater(ctx, jd.EntityFolder, cur.FolderID, cur.Sequence); err != nil {
			return err
		}
		number = cur.ItemNumber
		if err := e.record(ctx, tx, jd.ActionDelete, jd.EntityItem, number, "Deleted item: "+cur.Name); err != nil {
			return err
		}
		_, err = tx.DeleteItem(ctx, id)
		return err
	})
	if err != nil {
		return err
	}
	e.logMutation(jd.ActionDelete, jd.EntityItem, id, number)
	return nil
}

func checkItemNumberFree(ctx context.Context, tx *store.Tx, number string, excludeID int64) error {
	taken, err := tx.ItemNumberTaken(ctx, number, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return jd.NewDuplicateError(jd.EntityItem, "item_number", number)
	}
	return nil
}
