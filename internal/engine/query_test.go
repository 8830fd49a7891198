package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmeg8r/jdex/internal/jd"
)

func TestSearch_Completeness(t *testing.T) {
	f := newTestEngine(t)
	ctx := context.Background()
	folder := f.taxFolder(t)
	f.createItem(t, folder, "W-2")
	f.createFolder(t, identityCategory, "Passports")

	tests := []struct {
		query       string
		wantFolders []string
		wantItems   []string
	}{
		{"1099", []string{"13.01"}, nil},
		{"irs", []string{"13.01"}, nil},
		{"3.0", []string{"13.01"}, []string{"13.01.01"}},
		{"Finance", []string{"13.01"}, []string{"13.01.01"}},
		{"Personal", []string{"11.01", "13.01"}, []string{"13.01.01"}},
		{"W-2", nil, []string{"13.01.01"}},
		{"Tax Documents", []string{"13.01"}, []string{"13.01.01"}},
		{"nothing like this", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			res, err := f.eng.Search(ctx, tt.query)
			require.NoError(t, err)

			var folders, items []string
			for _, fv := range res.Folders {
				folders = append(folders, fv.FolderNumber)
			}
			for _, iv := range res.Items {
				items = append(items, iv.ItemNumber)
			}
			assert.Equal(t, tt.wantFolders, folders)
			assert.Equal(t, tt.wantItems, items)
		})
	}
}

func TestSearch_BlankQuery(t *testing.T) {
	f := newTestEngine(t)
	f.taxFolder(t)

	res, err := f.eng.Search(context.Background(), "   ")
	require.NoError(t, err)
	assert.NotNil(t, res.Folders)
	assert.NotNil(t, res.Items)
	assert.Empty(t, res.Folders)
	assert.Empty(t, res.Items)
}

func TestSearch_ItemsCarryEffectiveSensitivity(t *testing.T) {
	f := newTestEngine(t)
	folder := f.taxFolder(t)
	f.createItem(t, folder, "W-2")

	res, err := f.eng.Search(context.Background(), "W-2")
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, jd.SensitivitySensitive, res.Items[0].EffectiveSensitivity)
}

func TestStats(t *testing.T) {
	f := newTestEngine(t)
	ctx := context.Background()
	tax := f.taxFolder(t)
	f.createFolder(t, identityCategory, "Passports")
	f.createItem(t, tax, "W-2")
	_, err := f.eng.CreateItem(ctx, jd.Item{FolderID: tax, Name: "Payroll", Sensitivity: jd.SensitivityWork})
	require.NoError(t, err)

	st, err := f.eng.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, jd.Stats{
		TotalAreas:       2,
		TotalCategories:  3,
		TotalFolders:     2,
		TotalItems:       2,
		StandardFolders:  1,
		SensitiveFolders: 1,
		InheritItems:     1,
		WorkItems:        1,
	}, st)
}

func TestRecentActivity(t *testing.T) {
	f := newTestEngine(t)
	ctx := context.Background()

	entries, err := f.eng.RecentActivity(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, entries, "seeding is not activity")

	folder := f.taxFolder(t)
	item := f.createItem(t, folder, "W-2")
	require.NoError(t, f.eng.UpdateItem(ctx, item, jd.Patch{"name": "W-2 2023"}))
	require.NoError(t, f.eng.DeleteItem(ctx, item))

	entries, err = f.eng.RecentActivity(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	type row struct {
		action  jd.Action
		entity  jd.EntityType
		number  string
		details string
	}
	var got []row
	for _, e := range entries {
		got = append(got, row{e.Action, e.EntityType, e.EntityNumber, e.Details})
		assert.Equal(t, "2024-01-15 10:00:00", e.Timestamp)
	}
	assert.Equal(t, []row{
		{jd.ActionDelete, jd.EntityItem, "13.01.01", "Deleted item: W-2 2023"},
		{jd.ActionUpdate, jd.EntityItem, "13.01.01", "Updated item: W-2 2023"},
		{jd.ActionCreate, jd.EntityItem, "13.01.01", "Created item: W-2"},
		{jd.ActionCreate, jd.EntityFolder, "13.01", "Created folder: Tax Documents"},
	}, got)

	entries, err = f.eng.RecentActivity(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
