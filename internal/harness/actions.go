package harness

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/jmeg8r/jdex/internal/engine"
	"github.com/jmeg8r/jdex/internal/jd"
)

// operation runs one engine call with scenario arguments and returns a
// JSON-marshalable result.
type operation func(ctx context.Context, eng *engine.Engine, args map[string]any) (any, error)

var operations = map[string]operation{
	"area.create":   createOp(func(e *engine.Engine) func(context.Context, jd.Area) (int64, error) { return e.CreateArea }),
	"area.get":      getOp(func(e *engine.Engine) func(context.Context, int64) (jd.Area, error) { return e.GetArea }),
	"area.list":     func(ctx context.Context, e *engine.Engine, _ map[string]any) (any, error) { return e.ListAreas(ctx) },
	"area.update":   updateOp(func(e *engine.Engine) func(context.Context, int64, jd.Patch) error { return e.UpdateArea }),
	"area.delete":   deleteOp(func(e *engine.Engine) func(context.Context, int64) error { return e.DeleteArea }),
	"area.overlaps": func(ctx context.Context, e *engine.Engine, _ map[string]any) (any, error) { return e.AreaOverlaps(ctx) },

	"category.create": createOp(func(e *engine.Engine) func(context.Context, jd.Category) (int64, error) { return e.CreateCategory }),
	"category.get":    getOp(func(e *engine.Engine) func(context.Context, int64) (jd.CategoryView, error) { return e.GetCategory }),
	"category.list":   listOp("area_id", func(e *engine.Engine) func(context.Context, int64) ([]jd.CategoryView, error) { return e.ListCategories }),
	"category.update": updateOp(func(e *engine.Engine) func(context.Context, int64, jd.Patch) error { return e.UpdateCategory }),
	"category.delete": deleteOp(func(e *engine.Engine) func(context.Context, int64) error { return e.DeleteCategory }),

	"folder.create": createOp(func(e *engine.Engine) func(context.Context, jd.Folder) (int64, error) { return e.CreateFolder }),
	"folder.get":    getOp(func(e *engine.Engine) func(context.Context, int64) (jd.FolderView, error) { return e.GetFolder }),
	"folder.list":   listOp("category_id", func(e *engine.Engine) func(context.Context, int64) ([]jd.FolderView, error) { return e.ListFolders }),
	"folder.update": updateOp(func(e *engine.Engine) func(context.Context, int64, jd.Patch) error { return e.UpdateFolder }),
	"folder.delete": deleteOp(func(e *engine.Engine) func(context.Context, int64) error { return e.DeleteFolder }),
	"folder.next":   nextOp("category_id", func(e *engine.Engine) nextFunc { return e.NextFolderNumber }),

	"item.create": createOp(func(e *engine.Engine) func(context.Context, jd.Item) (int64, error) { return e.CreateItem }),
	"item.get":    getOp(func(e *engine.Engine) func(context.Context, int64) (jd.ItemView, error) { return e.GetItem }),
	"item.list":   listOp("folder_id", func(e *engine.Engine) func(context.Context, int64) ([]jd.ItemView, error) { return e.ListItems }),
	"item.update": updateOp(func(e *engine.Engine) func(context.Context, int64, jd.Patch) error { return e.UpdateItem }),
	"item.delete": deleteOp(func(e *engine.Engine) func(context.Context, int64) error { return e.DeleteItem }),
	"item.next":   nextOp("folder_id", func(e *engine.Engine) nextFunc { return e.NextItemNumber }),

	"location.create": createOp(func(e *engine.Engine) func(context.Context, jd.StorageLocation) (int64, error) { return e.CreateLocation }),
	"location.get":    getOp(func(e *engine.Engine) func(context.Context, int64) (jd.StorageLocation, error) { return e.GetLocation }),
	"location.list":   func(ctx context.Context, e *engine.Engine, _ map[string]any) (any, error) { return e.ListLocations(ctx) },
	"location.update": updateOp(func(e *engine.Engine) func(context.Context, int64, jd.Patch) error { return e.UpdateLocation }),
	"location.delete": deleteOp(func(e *engine.Engine) func(context.Context, int64) error { return e.DeleteLocation }),

	"search":   searchOp,
	"stats":    func(ctx context.Context, e *engine.Engine, _ map[string]any) (any, error) { return e.Stats(ctx) },
	"activity": activityOp,
	"reset":    func(ctx context.Context, e *engine.Engine, _ map[string]any) (any, error) { return nil, e.Reset(ctx) },
	"snapshot": snapshotOp,
}

// Operations returns the operation names a scenario step may use, sorted.
func Operations() []string {
	names := make([]string, 0, len(operations))
	for name := range operations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// createOp decodes args into the entity struct. Unknown keys are errors
// so a misspelled field fails the scenario instead of being ignored.
func createOp[T any](method func(*engine.Engine) func(context.Context, T) (int64, error)) operation {
	return func(ctx context.Context, e *engine.Engine, args map[string]any) (any, error) {
		var in T
		if err := decodeArgs(args, &in); err != nil {
			return nil, err
		}
		id, err := method(e)(ctx, in)
		if err != nil {
			return nil, err
		}
		return map[string]any{"id": id}, nil
	}
}

func getOp[T any](method func(*engine.Engine) func(context.Context, int64) (T, error)) operation {
	return func(ctx context.Context, e *engine.Engine, args map[string]any) (any, error) {
		id, err := argID(args, "id")
		if err != nil {
			return nil, err
		}
		return method(e)(ctx, id)
	}
}

func listOp[T any](parent string, method func(*engine.Engine) func(context.Context, int64) ([]T, error)) operation {
	return func(ctx context.Context, e *engine.Engine, args map[string]any) (any, error) {
		id, err := argID(args, parent)
		if err != nil {
			return nil, err
		}
		return method(e)(ctx, id)
	}
}

// updateOp takes {id, set}. Keys in set outside the entity's editable
// fields are dropped by the engine.
func updateOp(method func(*engine.Engine) func(context.Context, int64, jd.Patch) error) operation {
	return func(ctx context.Context, e *engine.Engine, args map[string]any) (any, error) {
		id, err := argID(args, "id")
		if err != nil {
			return nil, err
		}
		set, ok := args["set"].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("update needs a set map, got %T", args["set"])
		}
		return nil, method(e)(ctx, id, jd.Patch(set))
	}
}

func deleteOp(method func(*engine.Engine) func(context.Context, int64) error) operation {
	return func(ctx context.Context, e *engine.Engine, args map[string]any) (any, error) {
		id, err := argID(args, "id")
		if err != nil {
			return nil, err
		}
		return nil, method(e)(ctx, id)
	}
}

type nextFunc func(context.Context, int64) (jd.Allocation, bool, error)

func nextOp(parent string, method func(*engine.Engine) nextFunc) operation {
	return func(ctx context.Context, e *engine.Engine, args map[string]any) (any, error) {
		id, err := argID(args, parent)
		if err != nil {
			return nil, err
		}
		alloc, ok, err := method(e)(ctx, id)
		if err != nil {
			return nil, err
		}
		return map[string]any{"number": alloc.Number, "sequence": alloc.Sequence, "ok": ok}, nil
	}
}

func searchOp(ctx context.Context, e *engine.Engine, args map[string]any) (any, error) {
	q, err := jd.AsString("query", args["query"])
	if err != nil {
		return nil, err
	}
	return e.Search(ctx, q)
}

func activityOp(ctx context.Context, e *engine.Engine, args map[string]any) (any, error) {
	limit := 0
	if v, ok := args["limit"]; ok {
		n, err := jd.AsInt("limit", v)
		if err != nil {
			return nil, err
		}
		limit = n
	}
	return e.RecentActivity(ctx, limit)
}

// snapshotOp exports the store image and imports it straight back,
// exercising the full round trip. The result carries no bytes so traces
// stay stable.
func snapshotOp(ctx context.Context, e *engine.Engine, _ map[string]any) (any, error) {
	data, err := e.ExportSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	return nil, e.ImportSnapshot(ctx, data)
}

func argID(args map[string]any, key string) (int64, error) {
	v, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("missing argument %q", key)
	}
	return jd.AsInt64(key, v)
}

func decodeArgs(args map[string]any, out any) error {
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode args: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode args: %w", err)
	}
	return nil
}

// normalize round-trips v through JSON so results compare the same way
// whether they came from an engine struct or a YAML expectation.
func normalize(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
