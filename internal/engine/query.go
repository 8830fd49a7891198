package engine

import (
	"context"
	"strings"

	"github.com/jmeg8r/jdex/internal/jd"
	"github.com/jmeg8r/jdex/internal/store"
)

const (
	// DefaultActivityLimit is used when RecentActivity gets a limit <= 0.
	DefaultActivityLimit = 20
	// MaxActivityLimit caps RecentActivity.
	MaxActivityLimit = 1000
)

// Search matches q as a substring against folders and items, including
// their ancestors' names. The two result sets are independent: an item
// match does not pull in its folder. A blank query matches nothing.
func (e *Engine) Search(ctx context.Context, q string) (jd.SearchResult, error) {
	res := jd.SearchResult{Folders: []jd.FolderView{}, Items: []jd.ItemView{}}
	term := strings.TrimSpace(q)
	if term == "" {
		return res, nil
	}
	err := e.read(ctx, "search", func(tx *store.Tx) error {
		var err error
		if res.Folders, err = tx.SearchFolders(ctx, term); err != nil {
			return err
		}
		res.Items, err = tx.SearchItems(ctx, term)
		return err
	})
	if err != nil {
		return jd.SearchResult{}, err
	}
	e.log.Debug().Str("query", term).Int("folders", len(res.Folders)).Int("items", len(res.Items)).Msg("search")
	return res, nil
}

// Stats returns aggregate counts over the hierarchy.
func (e *Engine) Stats(ctx context.Context) (jd.Stats, error) {
	var st jd.Stats
	err := e.read(ctx, "stats", func(tx *store.Tx) error {
		var err error
		st, err = tx.Stats(ctx)
		return err
	})
	return st, err
}

// RecentActivity returns up to limit activity entries, newest first.
func (e *Engine) RecentActivity(ctx context.Context, limit int) ([]jd.ActivityEntry, error) {
	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	limit = min(limit, MaxActivityLimit)

	var entries []jd.ActivityEntry
	err := e.read(ctx, "recent activity", func(tx *store.Tx) error {
		var err error
		entries, err = tx.RecentActivity(ctx, limit)
		return err
	})
	return entries, err
}

// Overlap is a pair of areas whose category ranges intersect.
type Overlap struct {
	A jd.Area `json:"a"`
	B jd.Area `json:"b"`
}

// AreaOverlaps reports every pair of areas with intersecting ranges, in
// range order. Overlap is permitted; this is a diagnostic.
func (e *Engine) AreaOverlaps(ctx context.Context) ([]Overlap, error) {
	areas, err := e.ListAreas(ctx)
	if err != nil {
		return nil, err
	}
	var out []Overlap
	for i := range areas {
		for j := i + 1; j < len(areas); j++ {
			if jd.AreasOverlap(areas[i], areas[j]) {
				out = append(out, Overlap{A: areas[i], B: areas[j]})
			}
		}
	}
	return out, nil
}
