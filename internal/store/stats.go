package store

import (
	"context"
	"fmt"

	"github.com/jmeg8r/jdex/internal/jd"
)

// Stats counts the hierarchy. Folders and items with no explicit tier
// are counted under their column default, so each breakdown sums to its
// total.
func (t *Tx) Stats(ctx context.Context) (jd.Stats, error) {
	var s jd.Stats

	if err := t.tx.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM areas), (SELECT COUNT(*) FROM categories)
	`).Scan(&s.TotalAreas, &s.TotalCategories); err != nil {
		return jd.Stats{}, fmt.Errorf("count areas and categories: %w", err)
	}

	if err := t.tx.QueryRowContext(ctx, `
		SELECT COUNT(*),
			IFNULL(SUM(sensitivity = 'sensitive'), 0),
			IFNULL(SUM(sensitivity = 'work'), 0)
		FROM folders
	`).Scan(&s.TotalFolders, &s.SensitiveFolders, &s.WorkFolders); err != nil {
		return jd.Stats{}, fmt.Errorf("count folders: %w", err)
	}
	s.StandardFolders = s.TotalFolders - s.SensitiveFolders - s.WorkFolders

	if err := t.tx.QueryRowContext(ctx, `
		SELECT COUNT(*),
			IFNULL(SUM(sensitivity = 'standard'), 0),
			IFNULL(SUM(sensitivity = 'sensitive'), 0),
			IFNULL(SUM(sensitivity = 'work'), 0)
		FROM items
	`).Scan(&s.TotalItems, &s.StandardItems, &s.SensitiveItems, &s.WorkItems); err != nil {
		return jd.Stats{}, fmt.Errorf("count items: %w", err)
	}
	s.InheritItems = s.TotalItems - s.StandardItems - s.SensitiveItems - s.WorkItems

	return s, nil
}
