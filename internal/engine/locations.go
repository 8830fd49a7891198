package engine

import (
	"context"

	"github.com/jmeg8r/jdex/internal/jd"
	"github.com/jmeg8r/jdex/internal/store"
)

// ListLocations returns the storage location catalog ordered by name.
func (e *Engine) ListLocations(ctx context.Context) ([]jd.StorageLocation, error) {
	var locs []jd.StorageLocation
	err := e.read(ctx, "list storage locations", func(tx *store.Tx) error {
		var err error
		locs, err = tx.ListLocations(ctx)
		return err
	})
	return locs, err
}

// GetLocation returns one storage location.
func (e *Engine) GetLocation(ctx context.Context, id int64) (jd.StorageLocation, error) {
	var l jd.StorageLocation
	err := e.read(ctx, "get storage location", func(tx *store.Tx) error {
		var err error
		l, err = tx.GetLocation(ctx, id)
		return notFound(err, jd.EntityStorageLocation, id)
	})
	return l, err
}

// CreateLocation inserts a catalog entry. Folders and items name
// locations in free text, so nothing is checked against them.
func (e *Engine) CreateLocation(ctx context.Context, in jd.StorageLocation) (int64, error) {
	clean, err := normalize([]jd.Field{
		{Column: "name", Value: in.Name},
		{Column: "type", Value: in.Type},
		{Column: "path", Value: in.Path},
		{Column: "notes", Value: in.Notes},
	}, locationKinds)
	if err != nil {
		return 0, err
	}
	l := jd.StorageLocation{
		Name:        stringField(clean, "name", ""),
		Type:        stringField(clean, "type", ""),
		Path:        stringField(clean, "path", ""),
		IsEncrypted: in.IsEncrypted,
		Notes:       stringField(clean, "notes", ""),
	}

	var id int64
	err = e.write(ctx, "create storage location", func(tx *store.Tx) error {
		if err := e.record(ctx, tx, jd.ActionCreate, jd.EntityStorageLocation, l.Name, "Created storage location: "+l.Name); err != nil {
			return err
		}
		var err error
		id, err = tx.InsertLocation(ctx, l)
		return err
	})
	if err != nil {
		return 0, err
	}
	e.logMutation(jd.ActionCreate, jd.EntityStorageLocation, id, l.Name)
	return id, nil
}

// UpdateLocation applies the allow-listed fields of p.
func (e *Engine) UpdateLocation(ctx context.Context, id int64, p jd.Patch) error {
	fields, err := e.prepare(jd.EntityStorageLocation, id, p, jd.LocationFields, locationKinds)
	if err != nil || len(fields) == 0 {
		return err
	}

	var name string
	err = e.write(ctx, "update storage location", func(tx *store.Tx) error {
		cur, err := tx.GetLocation(ctx, id)
		if err != nil {
			return notFound(err, jd.EntityStorageLocation, id)
		}
		if _, err := tx.UpdateLocation(ctx, id, fields); err != nil {
			return err
		}
		name = stringField(fields, "name", cur.Name)
		return e.record(ctx, tx, jd.ActionUpdate, jd.EntityStorageLocation, name, "Updated storage location: "+name)
	})
	if err != nil {
		return err
	}
	e.logMutation(jd.ActionUpdate, jd.EntityStorageLocation, id, name)
	return nil
}

// DeleteLocation removes a catalog entry. Free-text references to it on
// folders and items are left as they are.
func (e *Engine) DeleteLocation(ctx context.Context, id int64) error {
	if err := jd.ValidateID("id", id); err != nil {
		return err
	}

	var name string
	err := e.write(ctx, "delete storage location", func(tx *store.Tx) error {
		cur, err := tx.GetLocation(ctx, id)
		if err != nil {
			return notFound(err, jd.EntityStorageLocation, id)
		}
		name = cur.Name
		if err := e.record(ctx, tx, jd.ActionDelete, jd.EntityStorageLocation, name, "Deleted storage location: "+name); err != nil {
			return err
		}
		_, err = tx.DeleteLocation(ctx, id)
		return err
	})
	if err != nil {
		return err
	}
	e.logMutation(jd.ActionDelete, jd.EntityStorageLocation, id, name)
	return nil
}
