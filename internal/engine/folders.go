package engine

import (
	"context"

	"github.com/jmeg8r/jdex/internal/jd"
	"github.com/jmeg8r/jdex/internal/store"
)

// ListFolders returns folders ordered by folder number with their
// category and area display fields. categoryID 0 lists all.
func (e *Engine) ListFolders(ctx context.Context, categoryID int64) ([]jd.FolderView, error) {
	var folders []jd.FolderView
	err := e.read(ctx, "list folders", func(tx *store.Tx) error {
		var err error
		folders, err = tx.ListFolders(ctx, categoryID)
		return err
	})
	return folders, err
}

// GetFolder returns one folder.
func (e *Engine) GetFolder(ctx context.Context, id int64) (jd.FolderView, error) {
	var f jd.FolderView
	err := e.read(ctx, "get folder", func(tx *store.Tx) error {
		var err error
		f, err = tx.GetFolder(ctx, id)
		return notFound(err, jd.EntityFolder, id)
	})
	return f, err
}

// CreateFolder validates and inserts a folder, returning its id.
//
// With an empty FolderNumber and zero Sequence the number is allocated in
// the same transaction. A caller-supplied number must carry the
// category's CC prefix and agree with Sequence; a zero Sequence is then
// read from the number.
func (e *Engine) CreateFolder(ctx context.Context, in jd.Folder) (int64, error) {
	if err := jd.ValidateID("category_id", in.CategoryID); err != nil {
		return 0, err
	}
	clean, err := normalize([]jd.Field{
		{Column: "name", Value: in.Name},
		{Column: "description", Value: in.Description},
		{Column: "sensitivity", Value: string(in.Sensitivity)},
		{Column: "location", Value: in.Location},
		{Column: "storage_path", Value: in.StoragePath},
		{Column: "keywords", Value: in.Keywords},
		{Column: "notes", Value: in.Notes},
	}, folderKinds)
	if err != nil {
		return 0, err
	}
	number, seq, err := requestedNumber(in.FolderNumber, in.Sequence, jd.ValidateFolderNumber)
	if err != nil {
		return 0, err
	}

	f := jd.Folder{
		CategoryID:  in.CategoryID,
		Name:        stringField(clean, "name", ""),
		Description: stringField(clean, "description", ""),
		Sensitivity: jd.Sensitivity(stringField(clean, "sensitivity", "")),
		Location:    stringField(clean, "location", ""),
		StoragePath: stringField(clean, "storage_path", ""),
		Keywords:    stringField(clean, "keywords", ""),
		Notes:       stringField(clean, "notes", ""),
	}

	var id int64
	err = e.write(ctx, "create folder", func(tx *store.Tx) error {
		if number == "" && seq == 0 {
			alloc, _, err := nextFolder(ctx, tx, in.CategoryID)
			if err != nil {
				return err
			}
			f.FolderNumber, f.Sequence = alloc.Number, alloc.Sequence
		} else {
			// An explicit number may fill a gap even in a full category.
			cat, err := tx.GetCategory(ctx, in.CategoryID)
			if err != nil {
				return notFound(err, jd.EntityCategory, in.CategoryID)
			}
			if number == "" {
				number = jd.FormatFolderNumber(cat.Number, seq)
			}
			if err := jd.CheckFolderNumber(number, cat.Number, seq); err != nil {
				return err
			}
			f.FolderNumber, f.Sequence = number, seq
		}

		if err := checkFolderNumberFree(ctx, tx, f.FolderNumber, 0); err != nil {
			return err
		}
		if err := e.record(ctx, tx, jd.ActionCreate, jd.EntityFolder, f.FolderNumber, "Created folder: "+f.Name); err != nil {
			return err
		}
		now := e.now()
		f.CreatedAt, f.UpdatedAt = now, now
		var err error
		id, err = tx.InsertFolder(ctx, f)
		if err != nil {
			return constraintError(err, jd.EntityFolder, "folder_number", f.FolderNumber)
		}
		return tx.RaiseHighWater(ctx, jd.EntityCategory, in.CategoryID, f.Sequence)
	})
	if err != nil {
		return 0, err
	}
	e.logMutation(jd.ActionCreate, jd.EntityFolder, id, f.FolderNumber)
	return id, nil
}

// UpdateFolder applies the allow-listed fields of p and refreshes
// updated_at.
//
// Touching folder_number, category_id or sequence re-checks the number
// against the (possibly new) category: a missing folder_number is derived
// from category and sequence, a missing sequence is read from the number.
// A changed number is carried down to the folder's items.
func (e *Engine) UpdateFolder(ctx context.Context, id int64, p jd.Patch) error {
	fields, err := e.prepare(jd.EntityFolder, id, p, jd.FolderFields, folderKinds)
	if err != nil || len(fields) == 0 {
		return err
	}

	var number string
	err = e.write(ctx, "update folder", func(tx *store.Tx) error {
		cur, err := tx.GetFolder(ctx, id)
		if err != nil {
			return notFound(err, jd.EntityFolder, id)
		}
		number = cur.FolderNumber

		if touches(fields, "folder_number", "category_id", "sequence") {
			catID := idField(fields, "category_id", cur.CategoryID)
			cat, err := tx.GetCategory(ctx, catID)
			if err != nil {
				return notFound(err, jd.EntityCategory, catID)
			}
			number, fields, err = reconcileNumber(fields, "folder_number", cur.Sequence,
				func(seq int) string { return jd.FormatFolderNumber(cat.Number, seq) },
				func(n string, seq int) error { return jd.CheckFolderNumber(n, cat.Number, seq) })
			if err != nil {
				return err
			}
			if err := checkFolderNumberFree(ctx, tx, number, id); err != nil {
				return err
			}
			seq := intField(fields, "sequence", cur.Sequence)
			if err := tx.RaiseHighWater(ctx, jd.EntityCategory, catID, seq); err != nil {
				return err
			}
		}

		now := e.now()
		if _, err := tx.UpdateFolder(ctx, id, fields, now); err != nil {
			return constraintError(err, jd.EntityFolder, "folder_number", number)
		}
		if number != cur.FolderNumber {
			if _, err := tx.RenumberFolderItems(ctx, id, number, now); err != nil {
				return constraintError(err, jd.EntityItem, "item_number", number)
			}
		}
		name := stringField(fields, "name", cur.Name)
		return e.record(ctx, tx, jd.ActionUpdate, jd.EntityFolder, number, "Updated folder: "+name)
	})
	if err != nil {
		return err
	}
	e.logMutation(jd.ActionUpdate, jd.EntityFolder, id, number)
	return nil
}

// DeleteFolder removes a folder. It fails with HAS_CHILDREN while any
// item references it. The folder's sequence is not reissued afterwards.
func (e *Engine) DeleteFolder(ctx context.Context, id int64) error {
	if err := jd.ValidateID("id", id); err != nil {
		return err
	}

	var number string
	err := e.write(ctx, "delete folder", func(tx *store.Tx) error {
		cur, err := tx.GetFolder(ctx, id)
		if err != nil {
			return notFound(err, jd.EntityFolder, id)
		}
		n, err := tx.CountItemsInFolder(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return e.refuse(jd.NewHasChildrenError(jd.EntityFolder, id, jd.EntityItem, n))
		}

		// The category keeps this sequence as spent.
		if err := tx.RaiseHighWater(ctx, jd.EntityCategory, cur.CategoryID, cur.Sequence); err != nil {
			return err
		}
		number = cur.FolderNumber
		if err := e.record(ctx, tx, jd.ActionDelete, jd.EntityFolder, number, "Deleted folder: "+cur.Name); err != nil {
			return err
		}
		if _, err := tx.DeleteFolder(ctx, id); err != nil {
			return err
		}
		return tx.ClearHighWater(ctx, jd.EntityFolder, id)
	})
	if err != nil {
		return err
	}
	e.logMutation(jd.ActionDelete, jd.EntityFolder, id, number)
	return nil
}

func checkFolderNumberFree(ctx context.Context, tx *store.Tx, number string, excludeID int64) error {
	taken, err := tx.FolderNumberTaken(ctx, number, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return jd.NewDuplicateError(jd.EntityFolder, "folder_number", number)
	}
	return nil
}

// requestedNumber validates an optional caller-supplied number and
// sequence. An empty number with a zero sequence asks for allocation.
func requestedNumber(number string, seq int, validate func(string) (string, error)) (string, int, error) {
	if seq != 0 {
		if err := jd.ValidateSequence(seq); err != nil {
			return "", 0, err
		}
	}
	if number == "" {
		return "", seq, nil
	}
	clean, err := validate(number)
	if err != nil {
		return "", 0, err
	}
	if seq == 0 {
		last, err := jd.LastSegment(clean)
		if err != nil {
			return "", 0, jd.NewValidationError("sequence", err.Error())
		}
		if err := jd.ValidateSequence(last); err != nil {
			return "", 0, err
		}
		seq = last
	}
	return clean, seq, nil
}

// reconcileNumber fills whichever of the number column and sequence the
// patch left out, then checks the pair. It returns the resulting number
// and the completed field list.
func reconcileNumber(fields []jd.Field, col string, curSeq int,
	format func(seq int) string, check func(number string, seq int) error,
) (string, []jd.Field, error) {
	_, hasNumber := lookup(fields, col)
	_, hasSeq := lookup(fields, "sequence")

	seq := intField(fields, "sequence", curSeq)
	var number string
	switch {
	case hasNumber:
		number = stringField(fields, col, "")
		if !hasSeq {
			last, err := jd.LastSegment(number)
			if err != nil {
				return "", nil, jd.NewValidationError("sequence", err.Error())
			}
			if err := jd.ValidateSequence(last); err != nil {
				return "", nil, err
			}
			seq = last
			fields = set(fields, "sequence", seq)
		}
	default:
		number = format(seq)
		fields = set(fields, col, number)
	}

	if err := check(number, seq); err != nil {
		return "", nil, err
	}
	return number, fields, nil
}
