package engine

import (
	"context"

	"github.com/jmeg8r/jdex/internal/jd"
	"github.com/jmeg8r/jdex/internal/store"
)

// ListCategories returns categories ordered by number with their area's
// name and color. areaID 0 lists all.
func (e *Engine) ListCategories(ctx context.Context, areaID int64) ([]jd.CategoryView, error) {
	var cats []jd.CategoryView
	err := e.read(ctx, "list categories", func(tx *store.Tx) error {
		var err error
		cats, err = tx.ListCategories(ctx, areaID)
		return err
	})
	return cats, err
}

// GetCategory returns one category.
func (e *Engine) GetCategory(ctx context.Context, id int64) (jd.CategoryView, error) {
	var c jd.CategoryView
	err := e.read(ctx, "get category", func(tx *store.Tx) error {
		var err error
		c, err = tx.GetCategory(ctx, id)
		return notFound(err, jd.EntityCategory, id)
	})
	return c, err
}

// CreateCategory validates and inserts a category, returning its id.
// The number must be free across all areas.
func (e *Engine) CreateCategory(ctx context.Context, in jd.Category) (int64, error) {
	if err := jd.ValidateCategoryNumber(in.Number); err != nil {
		return 0, err
	}
	if err := jd.ValidateID("area_id", in.AreaID); err != nil {
		return 0, err
	}
	name, err := jd.RequiredText("name", in.Name)
	if err != nil {
		return 0, err
	}
	desc, err := jd.LongText("description", in.Description)
	if err != nil {
		return 0, err
	}

	number := jd.FormatCategoryNumber(in.Number)
	var id int64
	err = e.write(ctx, "create category", func(tx *store.Tx) error {
		if _, err := tx.GetArea(ctx, in.AreaID); err != nil {
			return notFound(err, jd.EntityArea, in.AreaID)
		}
		if err := e.checkCategoryNumber(ctx, tx, in.Number, 0); err != nil {
			return err
		}
		if err := e.record(ctx, tx, jd.ActionCreate, jd.EntityCategory, number, "Created category: "+name); err != nil {
			return err
		}
		var err error
		id, err = tx.InsertCategory(ctx, jd.Category{
			Number:      in.Number,
			AreaID:      in.AreaID,
			Name:        name,
			Description: desc,
			CreatedAt:   e.now(),
		})
		return constraintError(err, jd.EntityCategory, "number", number)
	})
	if err != nil {
		return 0, err
	}
	e.logMutation(jd.ActionCreate, jd.EntityCategory, id, number)
	return id, nil
}

// UpdateCategory applies the allow-listed fields of p. Changing the
// number renumbers every folder and item beneath the category in the same
// transaction.
func (e *Engine) UpdateCategory(ctx context.Context, id int64, p jd.Patch) error {
	fields, err := e.prepare(jd.EntityCategory, id, p, jd.CategoryFields, categoryKinds)
	if err != nil || len(fields) == 0 {
		return err
	}

	var number string
	err = e.write(ctx, "update category", func(tx *store.Tx) error {
		cur, err := tx.GetCategory(ctx, id)
		if err != nil {
			return notFound(err, jd.EntityCategory, id)
		}
		if areaID := idField(fields, "area_id", cur.AreaID); areaID != cur.AreaID {
			if _, err := tx.GetArea(ctx, areaID); err != nil {
				return notFound(err, jd.EntityArea, areaID)
			}
		}
		newNumber := intField(fields, "number", cur.Number)
		number = jd.FormatCategoryNumber(newNumber)
		if newNumber != cur.Number {
			if err := e.checkCategoryNumber(ctx, tx, newNumber, id); err != nil {
				return err
			}
		}

		if _, err := tx.UpdateCategory(ctx, id, fields); err != nil {
			return constraintError(err, jd.EntityCategory, "number", number)
		}
		if newNumber != cur.Number {
			if err := tx.RenumberCategory(ctx, id, newNumber, e.now()); err != nil {
				return constraintError(err, jd.EntityFolder, "folder_number", number)
			}
		}
		name := stringField(fields, "name", cur.Name)
		return e.record(ctx, tx, jd.ActionUpdate, jd.EntityCategory, number, "Updated category: "+name)
	})
	if err != nil {
		return err
	}
	e.logMutation(jd.ActionUpdate, jd.EntityCategory, id, number)
	return nil
}

// DeleteCategory removes a category. It fails with HAS_CHILDREN while any
// folder references it.
func (e *Engine) DeleteCategory(ctx context.Context, id int64) error {
	if err := jd.ValidateID("id", id); err != nil {
		return err
	}

	var number string
	err := e.write(ctx, "delete category", func(tx *store.Tx) error {
		cur, err := tx.GetCategory(ctx, id)
		if err != nil {
			return notFound(err, jd.EntityCategory, id)
		}
		n, err := tx.CountFoldersInCategory(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return e.refuse(jd.NewHasChildrenError(jd.EntityCategory, id, jd.EntityFolder, n))
		}

		number = jd.FormatCategoryNumber(cur.Number)
		if err := e.record(ctx, tx, jd.ActionDelete, jd.EntityCategory, number, "Deleted category: "+cur.Name); err != nil {
			return err
		}
		if _, err := tx.DeleteCategory(ctx, id); err != nil {
			return err
		}
		return tx.ClearHighWater(ctx, jd.EntityCategory, id)
	})
	if err != nil {
		return err
	}
	e.logMutation(jd.ActionDelete, jd.EntityCategory, id, number)
	return nil
}

func (e *Engine) checkCategoryNumber(ctx context.Context, tx *store.Tx, number int, excludeID int64) error {
	taken, err := tx.CategoryNumberTaken(ctx, number, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return jd.NewDuplicateError(jd.EntityCategory, "number", jd.FormatCategoryNumber(number))
	}
	return nil
}
