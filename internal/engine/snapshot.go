package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jmeg8r/jdex/internal/jd"
	"github.com/jmeg8r/jdex/internal/seed"
	"github.com/jmeg8r/jdex/internal/store"
)

const (
	// DocumentVersion is written into every export document.
	DocumentVersion = "2.0"
	// DocumentSchema describes the hierarchy an export document carries.
	DocumentSchema = "4-level (Area > Category > Folder > Item)"
)

// Document is the logical export: every entity as the denormalized rows
// the list operations return.
type Document struct {
	ExportID         string               `json:"export_id"`
	ExportedAt       string               `json:"exported_at"`
	Version          string               `json:"version"`
	Schema           string               `json:"schema"`
	Areas            []jd.Area            `json:"areas"`
	Categories       []jd.CategoryView    `json:"categories"`
	Folders          []jd.FolderView      `json:"folders"`
	Items            []jd.ItemView        `json:"items"`
	StorageLocations []jd.StorageLocation `json:"storage_locations"`
}

// Encode writes the document as indented JSON followed by a newline.
// HTML characters are written as-is.
func (d Document) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

// ExportSnapshot returns the byte image of the whole store.
func (e *Engine) ExportSnapshot(ctx context.Context) ([]byte, error) {
	data, err := e.store.Snapshot(ctx)
	if err != nil {
		return nil, jd.NewPersistenceError("export snapshot", err)
	}
	e.log.Info().Int("bytes", len(data)).Msg("snapshot exported")
	return data, nil
}

// ImportSnapshot replaces the whole store with a snapshot image. There is
// no merge and no schema check beyond the SQLite header; the previous
// contents are gone once it returns nil.
func (e *Engine) ImportSnapshot(ctx context.Context, data []byte) error {
	err := e.store.Replace(ctx, data)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotSQLite):
		return jd.NewValidationError("snapshot", "file is not a SQLite database")
	default:
		return jd.NewPersistenceError("import snapshot", err)
	}
	e.log.Info().Int("bytes", len(data)).Msg("snapshot imported")
	return nil
}

// ExportDocument collects the logical export in one read transaction.
func (e *Engine) ExportDocument(ctx context.Context) (Document, error) {
	doc := Document{
		ExportID:   e.ids.Generate(),
		ExportedAt: e.clock.Now().UTC().Format(time.RFC3339),
		Version:    DocumentVersion,
		Schema:     DocumentSchema,
	}
	err := e.read(ctx, "export document", func(tx *store.Tx) error {
		var err error
		if doc.Areas, err = tx.ListAreas(ctx); err != nil {
			return err
		}
		if doc.Categories, err = tx.ListCategories(ctx, 0); err != nil {
			return err
		}
		if doc.Folders, err = tx.ListFolders(ctx, 0); err != nil {
			return err
		}
		if doc.Items, err = tx.ListItems(ctx, 0); err != nil {
			return err
		}
		doc.StorageLocations, err = tx.ListLocations(ctx)
		return err
	})
	if err != nil {
		return Document{}, err
	}
	return doc, nil
}

// Reset drops everything, recreates the schema and writes the seed
// dataset, all in one transaction. Reset itself is not logged as
// activity.
func (e *Engine) Reset(ctx context.Context) error {
	ds, err := e.dataset()
	if err != nil {
		return err
	}
	err = e.write(ctx, "reset", func(tx *store.Tx) error {
		if err := tx.Recreate(ctx); err != nil {
			return err
		}
		return e.seedTx(ctx, tx, ds)
	})
	if err != nil {
		return err
	}
	e.log.Info().Int("areas", len(ds.Areas)).Int("categories", ds.CategoryCount()).Msg("store reset to seed data")
	return nil
}

// EnsureSeeded writes the seed dataset when the store has never been
// written to. It reports whether it seeded.
func (e *Engine) EnsureSeeded(ctx context.Context) (bool, error) {
	ds, err := e.dataset()
	if err != nil {
		return false, err
	}
	seeded := false
	err = e.write(ctx, "seed", func(tx *store.Tx) error {
		empty, err := tx.IsEmpty(ctx)
		if err != nil || !empty {
			return err
		}
		seeded = true
		return e.seedTx(ctx, tx, ds)
	})
	if err != nil {
		return false, err
	}
	if seeded {
		e.log.Info().Int("areas", len(ds.Areas)).Int("categories", ds.CategoryCount()).Msg("seeded empty store")
	}
	return seeded, nil
}

func (e *Engine) dataset() (*seed.Dataset, error) {
	if e.seed != nil {
		return e.seed, nil
	}
	ds, err := seed.Default()
	if err != nil {
		return nil, fmt.Errorf("load seed: %w", err)
	}
	return ds, nil
}

// seedTx writes ds into an empty schema. Area ids follow dataset order.
func (e *Engine) seedTx(ctx context.Context, tx *store.Tx, ds *seed.Dataset) error {
	now := e.now()
	for _, a := range ds.Areas {
		color, err := jd.ValidateColor(a.Color)
		if err != nil {
			return err
		}
		areaID, err := tx.InsertArea(ctx, jd.Area{
			RangeStart:  a.RangeStart,
			RangeEnd:    a.RangeEnd,
			Name:        a.Name,
			Description: a.Description,
			Color:       color,
			CreatedAt:   now,
		})
		if err != nil {
			return err
		}
		for _, c := range a.Categories {
			_, err := tx.InsertCategory(ctx, jd.Category{
				Number:      c.Number,
				AreaID:      areaID,
				Name:        c.Name,
				Description: c.Description,
				CreatedAt:   now,
			})
			if err != nil {
				return constraintError(err, jd.EntityCategory, "number", jd.FormatCategoryNumber(c.Number))
			}
		}
	}
	for _, l := range ds.Locations {
		_, err := tx.InsertLocation(ctx, jd.StorageLocation{
			Name:        l.Name,
			Type:        l.Type,
			Path:        l.Path,
			IsEncrypted: l.IsEncrypted,
			Notes:       l.Notes,
		})
		if err != nil {
			return err
		}
	}
	return nil
}
