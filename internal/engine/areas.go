package engine

import (
	"context"
	"fmt"

	"github.com/jmeg8r/jdex/internal/jd"
	"github.com/jmeg8r/jdex/internal/store"
)

func areaNumber(start, end int) string {
	return fmt.Sprintf("%d-%d", start, end)
}

// ListAreas returns all areas ordered by range start.
func (e *Engine) ListAreas(ctx context.Context) ([]jd.Area, error) {
	var areas []jd.Area
	err := e.read(ctx, "list areas", func(tx *store.Tx) error {
		var err error
		areas, err = tx.ListAreas(ctx)
		return err
	})
	return areas, err
}

// GetArea returns one area.
func (e *Engine) GetArea(ctx context.Context, id int64) (jd.Area, error) {
	var a jd.Area
	err := e.read(ctx, "get area", func(tx *store.Tx) error {
		var err error
		a, err = tx.GetArea(ctx, id)
		return notFound(err, jd.EntityArea, id)
	})
	return a, err
}

// CreateArea validates and inserts an area, returning its id. Range
// overlap with other areas is allowed; see AreaOverlaps.
func (e *Engine) CreateArea(ctx context.Context, in jd.Area) (int64, error) {
	name, err := jd.RequiredText("name", in.Name)
	if err != nil {
		return 0, err
	}
	desc, err := jd.LongText("description", in.Description)
	if err != nil {
		return 0, err
	}
	color, err := jd.ValidateColor(in.Color)
	if err != nil {
		return 0, err
	}
	if err := jd.ValidateAreaRange(in.RangeStart, in.RangeEnd); err != nil {
		return 0, err
	}

	number := areaNumber(in.RangeStart, in.RangeEnd)
	var id int64
	err = e.write(ctx, "create area", func(tx *store.Tx) error {
		if err := e.record(ctx, tx, jd.ActionCreate, jd.EntityArea, number, "Created area: "+name); err != nil {
			return err
		}
		var err error
		id, err = tx.InsertArea(ctx, jd.Area{
			RangeStart:  in.RangeStart,
			RangeEnd:    in.RangeEnd,
			Name:        name,
			Description: desc,
			Color:       color,
			CreatedAt:   e.now(),
		})
		return err
	})
	if err != nil {
		return 0, err
	}
	e.logMutation(jd.ActionCreate, jd.EntityArea, id, number)
	return id, nil
}

// UpdateArea applies the allow-listed fields of p. Unknown keys are
// dropped; an empty intersection returns nil without writing.
func (e *Engine) UpdateArea(ctx context.Context, id int64, p jd.Patch) error {
	fields, err := e.prepare(jd.EntityArea, id, p, jd.AreaFields, areaKinds)
	if err != nil || len(fields) == 0 {
		return err
	}

	var number string
	err = e.write(ctx, "update area", func(tx *store.Tx) error {
		cur, err := tx.GetArea(ctx, id)
		if err != nil {
			return notFound(err, jd.EntityArea, id)
		}
		start := intField(fields, "range_start", cur.RangeStart)
		end := intField(fields, "range_end", cur.RangeEnd)
		if err := jd.ValidateAreaRange(start, end); err != nil {
			return err
		}

		if _, err := tx.UpdateArea(ctx, id, fields); err != nil {
			return err
		}
		number = areaNumber(start, end)
		name := stringField(fields, "name", cur.Name)
		return e.record(ctx, tx, jd.ActionUpdate, jd.EntityArea, number, "Updated area: "+name)
	})
	if err != nil {
		return err
	}
	e.logMutation(jd.ActionUpdate, jd.EntityArea, id, number)
	return nil
}

// DeleteArea removes an area. It fails with HAS_CHILDREN while any
// category references it.
func (e *Engine) DeleteArea(ctx context.Context, id int64) error {
	if err := jd.ValidateID("id", id); err != nil {
		return err
	}

	var number string
	err := e.write(ctx, "delete area", func(tx *store.Tx) error {
		cur, err := tx.GetArea(ctx, id)
		if err != nil {
			return notFound(err, jd.EntityArea, id)
		}
		n, err := tx.CountCategoriesInArea(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return e.refuse(jd.NewHasChildrenError(jd.EntityArea, id, jd.EntityCategory, n))
		}

		number = areaNumber(cur.RangeStart, cur.RangeEnd)
		if err := e.record(ctx, tx, jd.ActionDelete, jd.EntityArea, number, "Deleted area: "+cur.Name); err != nil {
			return err
		}
		_, err = tx.DeleteArea(ctx, id)
		return err
	})
	if err != nil {
		return err
	}
	e.logMutation(jd.ActionDelete, jd.EntityArea, id, number)
	return nil
}

// prepare validates the target id and normalizes the allow-listed part of
// p. Dropped keys are logged, never reported as errors.
func (e *Engine) prepare(entity jd.EntityType, id int64, p jd.Patch, allow []string, kinds map[string]fieldKind) ([]jd.Field, error) {
	if err := jd.ValidateID("id", id); err != nil {
		return nil, err
	}
	if dropped := p.Dropped(allow); len(dropped) > 0 {
		e.log.Debug().Str("entity", string(entity)).Int64("id", id).Strs("fields", dropped).Msg("ignoring fields outside allow-list")
	}
	return normalize(p.Allowed(allow), kinds)
}

// refuse logs a guarded refusal and returns it.
func (e *Engine) refuse(err *jd.Error) error {
	e.log.Info().Str("code", string(err.Code)).Str("entity", string(err.Entity)).Int64("id", err.ID).Msg(err.Message)
	return err
}
