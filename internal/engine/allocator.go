package engine

import (
	"context"

	"github.com/jmeg8r/jdex/internal/jd"
	"github.com/jmeg8r/jdex/internal/store"
)

// NextFolderNumber returns the next CC.SS under a category without
// writing anything. Repeated calls with no intervening create return the
// same answer.
//
// categoryID 0 means no category is selected yet: ok is false and err is
// nil. A non-zero id that does not exist is NOT_FOUND. A category whose
// highest sequence is already 99 is SEQUENCE_EXHAUSTED.
func (e *Engine) NextFolderNumber(ctx context.Context, categoryID int64) (alloc jd.Allocation, ok bool, err error) {
	if categoryID == 0 {
		return jd.Allocation{}, false, nil
	}
	if err := jd.ValidateID("category_id", categoryID); err != nil {
		return jd.Allocation{}, false, err
	}
	err = e.read(ctx, "next folder number", func(tx *store.Tx) error {
		alloc, _, err = nextFolder(ctx, tx, categoryID)
		return err
	})
	if err != nil {
		return jd.Allocation{}, false, err
	}
	return alloc, true, nil
}

// NextItemNumber returns the next CC.SS.SS under a folder, with the same
// contract as NextFolderNumber.
func (e *Engine) NextItemNumber(ctx context.Context, folderID int64) (alloc jd.Allocation, ok bool, err error) {
	if folderID == 0 {
		return jd.Allocation{}, false, nil
	}
	if err := jd.ValidateID("folder_id", folderID); err != nil {
		return jd.Allocation{}, false, err
	}
	err = e.read(ctx, "next item number", func(tx *store.Tx) error {
		alloc, _, err = nextItem(ctx, tx, folderID)
		return err
	})
	if err != nil {
		return jd.Allocation{}, false, err
	}
	return alloc, true, nil
}

// nextFolder is one past the larger of the category's live maximum and
// its high-water mark, so a deleted folder's sequence is never reissued,
// even when it was the highest.
func nextFolder(ctx context.Context, tx *store.Tx, categoryID int64) (jd.Allocation, jd.CategoryView, error) {
	cat, err := tx.GetCategory(ctx, categoryID)
	if err != nil {
		return jd.Allocation{}, jd.CategoryView{}, notFound(err, jd.EntityCategory, categoryID)
	}
	maxSeq, err := highestSequence(ctx, tx, jd.EntityCategory, categoryID)
	if err != nil {
		return jd.Allocation{}, jd.CategoryView{}, err
	}
	seq, err := jd.NextSequence(jd.EntityFolder, jd.FormatCategoryNumber(cat.Number), maxSeq)
	if err != nil {
		return jd.Allocation{}, jd.CategoryView{}, err
	}
	return jd.Allocation{Number: jd.FormatFolderNumber(cat.Number, seq), Sequence: seq}, cat, nil
}

// nextItem is nextFolder one level down. The prefix is the folder's
// stored number, not recomputed from its category.
func nextItem(ctx context.Context, tx *store.Tx, folderID int64) (jd.Allocation, jd.FolderView, error) {
	folder, err := tx.GetFolder(ctx, folderID)
	if err != nil {
		return jd.Allocation{}, jd.FolderView{}, notFound(err, jd.EntityFolder, folderID)
	}
	maxSeq, err := highestSequence(ctx, tx, jd.EntityFolder, folderID)
	if err != nil {
		return jd.Allocation{}, jd.FolderView{}, err
	}
	seq, err := jd.NextSequence(jd.EntityItem, folder.FolderNumber, maxSeq)
	if err != nil {
		return jd.Allocation{}, jd.FolderView{}, err
	}
	return jd.Allocation{Number: jd.FormatItemNumber(folder.FolderNumber, seq), Sequence: seq}, folder, nil
}

// highestSequence returns max(live children, high-water mark) for a parent.
// The live maximum covers rows written by the console or by snapshots
// taken before the mark existed.
func highestSequence(ctx context.Context, tx *store.Tx, parent jd.EntityType, parentID int64) (int, error) {
	var live int
	var err error
	if parent == jd.EntityCategory {
		live, err = tx.MaxFolderSequence(ctx, parentID)
	} else {
		live, err = tx.MaxItemSequence(ctx, parentID)
	}
	if err != nil {
		return 0, err
	}
	mark, err := tx.HighWater(ctx, parent, parentID)
	if err != nil {
		return 0, err
	}
	return max(live, mark), nil
}
