package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmeg8r/jdex/internal/jd"
)

func TestCreateArea(t *testing.T) {
	f := newTestEngine(t)
	ctx := context.Background()

	id, err := f.eng.CreateArea(ctx, jd.Area{RangeStart: 30, RangeEnd: 39, Name: "  Side  Projects ", Color: "#ABCDEF"})
	require.NoError(t, err)

	a, err := f.eng.GetArea(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Side Projects", a.Name)
	assert.Equal(t, "#abcdef", a.Color)
	assert.Equal(t, "2024-01-15 10:00:00", a.CreatedAt)

	tests := []struct {
		name string
		in   jd.Area
	}{
		{"missing name", jd.Area{RangeStart: 40, RangeEnd: 49}},
		{"reversed range", jd.Area{RangeStart: 49, RangeEnd: 40, Name: "Backwards"}},
		{"range above 99", jd.Area{RangeStart: 90, RangeEnd: 100, Name: "Too far"}},
		{"bad color", jd.Area{RangeStart: 40, RangeEnd: 49, Name: "Teal", Color: "teal"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.eng.CreateArea(ctx, tt.in)
			assert.True(t, jd.IsValidation(err), "got %v", err)
		})
	}
}

func TestAreaOverlaps(t *testing.T) {
	f := newTestEngine(t)
	ctx := context.Background()

	overlaps, err := f.eng.AreaOverlaps(ctx)
	require.NoError(t, err)
	assert.Empty(t, overlaps)

	_, err = f.eng.CreateArea(ctx, jd.Area{RangeStart: 15, RangeEnd: 24, Name: "Straddle"})
	require.NoError(t, err, "overlap is allowed")

	overlaps, err = f.eng.AreaOverlaps(ctx)
	require.NoError(t, err)
	require.Len(t, overlaps, 2)
	assert.Equal(t, "Personal", overlaps[0].A.Name)
	assert.Equal(t, "Straddle", overlaps[0].B.Name)
	assert.Equal(t, "Straddle", overlaps[1].A.Name)
	assert.Equal(t, "Home", overlaps[1].B.Name)
}

func TestUpdateArea_RangeRevalidated(t *testing.T) {
	f := newTestEngine(t)
	ctx := context.Background()

	err := f.eng.UpdateArea(ctx, personalAreaID, jd.Patch{"range_start": 25})
	assert.True(t, jd.IsValidation(err), "start past the stored end: got %v", err)

	require.NoError(t, f.eng.UpdateArea(ctx, personalAreaID, jd.Patch{"range_end": 18, "color": ""}))
	a, err := f.eng.GetArea(ctx, personalAreaID)
	require.NoError(t, err)
	assert.Equal(t, 18, a.RangeEnd)
	assert.Equal(t, jd.DefaultAreaColor, a.Color)
}

func TestCreateCategory(t *testing.T) {
	f := newTestEngine(t)
	ctx := context.Background()

	id, err := f.eng.CreateCategory(ctx, jd.Category{Number: 7, AreaID: homeAreaID, Name: "Misc"})
	require.NoError(t, err, "numbers outside the area range are accepted")

	c, err := f.eng.GetCategory(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Home", c.AreaName)
	assert.Equal(t, "#64748b", c.AreaColor)

	_, err = f.eng.CreateCategory(ctx, jd.Category{Number: 13, AreaID: personalAreaID, Name: "Finance again"})
	assert.True(t, jd.IsDuplicate(err), "got %v", err)

	_, err = f.eng.CreateCategory(ctx, jd.Category{Number: 14, AreaID: 42, Name: "Orphan"})
	assert.True(t, jd.IsNotFound(err), "got %v", err)

	_, err = f.eng.CreateCategory(ctx, jd.Category{Number: 100, AreaID: personalAreaID, Name: "Too big"})
	assert.True(t, jd.IsValidation(err), "got %v", err)
}

func TestCreateFolder_Defaults(t *testing.T) {
	f := newTestEngine(t)
	ctx := context.Background()

	id := f.createFolder(t, financeCategory, "Receipts")
	got, err := f.eng.GetFolder(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, "13.01", got.FolderNumber)
	assert.Equal(t, 1, got.Sequence)
	assert.Equal(t, jd.SensitivityStandard, got.Sensitivity)
	assert.Equal(t, 13, got.CategoryNumber)
	assert.Equal(t, "Finance", got.CategoryName)
	assert.Equal(t, "Personal", got.AreaName)
	assert.Equal(t, "2024-01-15 10:00:00", got.CreatedAt)
	assert.Equal(t, got.CreatedAt, got.UpdatedAt)
}

func TestCreateFolder_Rejects(t *testing.T) {
	f := newTestEngine(t)
	ctx := context.Background()
	f.taxFolder(t)

	tests := []struct {
		name  string
		in    jd.Folder
		check func(error) bool
	}{
		{"missing name", jd.Folder{CategoryID: financeCategory}, jd.IsValidation},
		{"missing category", jd.Folder{Name: "x"}, jd.IsValidation},
		{"unknown category", jd.Folder{CategoryID: 77, Name: "x"}, jd.IsNotFound},
		{"folder cannot inherit", jd.Folder{CategoryID: financeCategory, Name: "x", Sensitivity: jd.SensitivityInherit}, jd.IsValidation},
		{"malformed number", jd.Folder{CategoryID: financeCategory, FolderNumber: "13.1", Name: "x"}, jd.IsValidation},
		{"wrong category prefix", jd.Folder{CategoryID: financeCategory, FolderNumber: "11.02", Name: "x"}, jd.IsValidation},
		{"sequence disagrees", jd.Folder{CategoryID: financeCategory, FolderNumber: "13.02", Sequence: 3, Name: "x"}, jd.IsValidation},
		{"sequence out of range", jd.Folder{CategoryID: financeCategory, Sequence: 100, Name: "x"}, jd.IsValidation},
		{"duplicate number", jd.Folder{CategoryID: financeCategory, FolderNumber: "13.01", Name: "x"}, jd.IsDuplicate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.eng.CreateFolder(ctx, tt.in)
			assert.True(t, tt.check(err), "got %v", err)
		})
	}

	folders, err := f.eng.ListFolders(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, folders, 1, "rejected creates write nothing")
}

func TestUpdateFolder_AllowList(t *testing.T) {
	f := newTestEngine(t)
	ctx := context.Background()
	id := f.taxFolder(t)
	f.clock.Advance(time.Hour)

	err := f.eng.UpdateFolder(ctx, id, jd.Patch{
		"id":         999,
		"created_at": "1999-01-01 00:00:00",
		"bogus":      "ignored",
		"name":       "Taxes",
	})
	require.NoError(t, err)

	got, err := f.eng.GetFolder(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "Taxes", got.Name)
	assert.Equal(t, "2024-01-15 10:00:00", got.CreatedAt)
	assert.Equal(t, "2024-01-15 11:00:00", got.UpdatedAt)

	before, err := f.eng.RecentActivity(ctx, 0)
	require.NoError(t, err)

	// Nothing allow-listed: no write, no activity.
	require.NoError(t, f.eng.UpdateFolder(ctx, id, jd.Patch{"id": 5, "updated_at": "x"}))
	after, err := f.eng.RecentActivity(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestUpdateFolder_NotFound(t *testing.T) {
	f := newTestEngine(t)

	err := f.eng.UpdateFolder(context.Background(), 404, jd.Patch{"name": "Ghost"})
	assert.True(t, jd.IsNotFound(err), "got %v", err)
}

func TestUpdateFolder_ClearsOptionalText(t *testing.T) {
	f := newTestEngine(t)
	ctx := context.Background()
	id := f.taxFolder(t)

	require.NoError(t, f.eng.UpdateFolder(ctx, id, jd.Patch{"keywords": "", "location": "ProtonDrive"}))
	got, err := f.eng.GetFolder(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, got.Keywords)
	assert.Equal(t, "ProtonDrive", got.Location)

	err = f.eng.UpdateFolder(ctx, id, jd.Patch{"name": "   "})
	assert.True(t, jd.IsValidation(err), "name is required: got %v", err)
}

func TestUpdateFolder_RenumberCascadesToItems(t *testing.T) {
	f := newTestEngine(t)
	ctx := context.Background()
	folder := f.taxFolder(t)
	first := f.createItem(t, folder, "W-2")
	second := f.createItem(t, folder, "1099-INT")

	require.NoError(t, f.eng.UpdateFolder(ctx, folder, jd.Patch{"sequence": 7}))

	got, err := f.eng.GetFolder(ctx, folder)
	require.NoError(t, err)
	assert.Equal(t, "13.07", got.FolderNumber)

	for id, want := range map[int64]string{first: "13.07.01", second: "13.07.02"} {
		it, err := f.eng.GetItem(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, it.ItemNumber)
		assert.Equal(t, "13.07", it.FolderNumber)
	}

	alloc, _, err := f.eng.NextFolderNumber(ctx, financeCategory)
	require.NoError(t, err)
	assert.Equal(t, "13.08", alloc.Number)
}

func TestUpdateFolder_MoveCategory(t *testing.T) {
	f := newTestEngine(t)
	ctx := context.Background()
	folder := f.taxFolder(t)
	item := f.createItem(t, folder, "W-2")

	require.NoError(t, f.eng.UpdateFolder(ctx, folder, jd.Patch{"category_id": houseCategory}))

	got, err := f.eng.GetFolder(ctx, folder)
	require.NoError(t, err)
	assert.Equal(t, "21.01", got.FolderNumber)
	assert.Equal(t, "House", got.CategoryName)

	it, err := f.eng.GetItem(ctx, item)
	require.NoError(t, err)
	assert.Equal(t, "21.01.01", it.ItemNumber)
	assert.Equal(t, "Home", it.AreaName)
}

func TestUpdateFolder_NumberChecks(t *testing.T) {
	f := newTestEngine(t)
	ctx := context.Background()
	folder := f.taxFolder(t)
	f.createFolder(t, financeCategory, "Receipts")

	err := f.eng.UpdateFolder(ctx, folder, jd.Patch{"folder_number": "11.05"})
	assert.True(t, jd.IsValidation(err), "prefix must match category: got %v", err)

	err = f.eng.UpdateFolder(ctx, folder, jd.Patch{"folder_number": "13.02"})
	assert.True(t, jd.IsDuplicate(err), "got %v", err)

	err = f.eng.UpdateFolder(ctx, folder, jd.Patch{"category_id": 404})
	assert.True(t, jd.IsNotFound(err), "got %v", err)

	require.NoError(t, f.eng.UpdateFolder(ctx, folder, jd.Patch{"folder_number": "13.10"}))
	got, err := f.eng.GetFolder(ctx, folder)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Sequence, "sequence follows an explicit number")
}

func TestUpdateCategory_RenumberCascades(t *testing.T) {
	f := newTestEngine(t)
	ctx := context.Background()
	folder := f.taxFolder(t)
	item := f.createItem(t, folder, "W-2")

	err := f.eng.UpdateCategory(ctx, financeCategory, jd.Patch{"number": 11})
	assert.True(t, jd.IsDuplicate(err), "got %v", err)

	require.NoError(t, f.eng.UpdateCategory(ctx, financeCategory, jd.Patch{"number": 14}))

	got, err := f.eng.GetFolder(ctx, folder)
	require.NoError(t, err)
	assert.Equal(t, "14.01", got.FolderNumber)
	assert.Equal(t, 14, got.CategoryNumber)

	it, err := f.eng.GetItem(ctx, item)
	require.NoError(t, err)
	assert.Equal(t, "14.01.01", it.ItemNumber)
}

func TestDelete_ContainmentBlocks(t *testing.T) {
	f := newTestEngine(t)
	ctx := context.Background()
	folder := f.taxFolder(t)
	item := f.createItem(t, folder, "W-2")

	err := f.eng.DeleteArea(ctx, personalAreaID)
	assert.True(t, jd.IsHasChildren(err), "area with categories: got %v", err)

	err = f.eng.DeleteCategory(ctx, financeCategory)
	assert.True(t, jd.IsHasChildren(err), "category with folders: got %v", err)

	err = f.eng.DeleteFolder(ctx, folder)
	assert.True(t, jd.IsHasChildren(err), "folder with items: got %v", err)

	var jerr *jd.Error
	require.ErrorAs(t, err, &jerr)
	assert.Equal(t, jd.EntityFolder, jerr.Entity)
	assert.Equal(t, folder, jerr.ID)

	// Refusals leave no activity behind.
	entries, err := f.eng.RecentActivity(ctx, 0)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotEqual(t, jd.ActionDelete, e.Action)
	}

	// Bottom-up deletion succeeds.
	require.NoError(t, f.eng.DeleteItem(ctx, item))
	require.NoError(t, f.eng.DeleteFolder(ctx, folder))
	require.NoError(t, f.eng.DeleteCategory(ctx, financeCategory))
	require.NoError(t, f.eng.DeleteCategory(ctx, identityCategory))
	require.NoError(t, f.eng.DeleteArea(ctx, personalAreaID))

	_, err = f.eng.GetArea(ctx, personalAreaID)
	assert.True(t, jd.IsNotFound(err), "got %v", err)
}

func TestDelete_NotFound(t *testing.T) {
	f := newTestEngine(t)
	ctx := context.Background()

	assert.True(t, jd.IsNotFound(f.eng.DeleteArea(ctx, 404)))
	assert.True(t, jd.IsNotFound(f.eng.DeleteCategory(ctx, 404)))
	assert.True(t, jd.IsNotFound(f.eng.DeleteFolder(ctx, 404)))
	assert.True(t, jd.IsNotFound(f.eng.DeleteItem(ctx, 404)))
	assert.True(t, jd.IsNotFound(f.eng.DeleteLocation(ctx, 404)))
	assert.True(t, jd.IsValidation(f.eng.DeleteItem(ctx, 0)))
}

func TestDeleteCategory_RecreatedStartsAtOne(t *testing.T) {
	f := newTestEngine(t)
	ctx := context.Background()

	id := f.createFolder(t, identityCategory, "Passports")
	require.NoError(t, f.eng.DeleteFolder(ctx, id))
	require.NoError(t, f.eng.DeleteCategory(ctx, identityCategory))

	cat, err := f.eng.CreateCategory(ctx, jd.Category{Number: 12, AreaID: personalAreaID, Name: "Health"})
	require.NoError(t, err)

	alloc, _, err := f.eng.NextFolderNumber(ctx, cat)
	require.NoError(t, err)
	assert.Equal(t, "12.01", alloc.Number)
}

func TestItem_SensitivityInheritance(t *testing.T) {
	f := newTestEngine(t)
	ctx := context.Background()
	folder := f.taxFolder(t)

	inherit := f.createItem(t, folder, "W-2")
	work, err := f.eng.CreateItem(ctx, jd.Item{FolderID: folder, Name: "Payroll export", Sensitivity: jd.SensitivityWork})
	require.NoError(t, err)

	it, err := f.eng.GetItem(ctx, inherit)
	require.NoError(t, err)
	assert.Equal(t, jd.SensitivityInherit, it.Sensitivity)
	assert.Equal(t, jd.SensitivitySensitive, it.EffectiveSensitivity)

	require.NoError(t, f.eng.UpdateFolder(ctx, folder, jd.Patch{"sensitivity": "standard"}))

	it, err = f.eng.GetItem(ctx, inherit)
	require.NoError(t, err)
	assert.Equal(t, jd.SensitivityStandard, it.EffectiveSensitivity, "inherit follows the folder")

	it, err = f.eng.GetItem(ctx, work)
	require.NoError(t, err)
	assert.Equal(t, jd.SensitivityWork, it.EffectiveSensitivity, "explicit tier wins")

	err = f.eng.UpdateItem(ctx, inherit, jd.Patch{"sensitivity": "secret"})
	assert.True(t, jd.IsValidation(err), "got %v", err)
}

func TestCreateItem_ExplicitNumberAndSize(t *testing.T) {
	f := newTestEngine(t)
	ctx := context.Background()
	folder := f.taxFolder(t)

	id, err := f.eng.CreateItem(ctx, jd.Item{
		FolderID:   folder,
		ItemNumber: "13.01.04",
		Name:       "Scan",
		FileType:   "pdf",
		FileSize:   int64Ptr(48213),
	})
	require.NoError(t, err)

	it, err := f.eng.GetItem(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 4, it.Sequence)
	require.NotNil(t, it.FileSize)
	assert.Equal(t, int64(48213), *it.FileSize)

	_, err = f.eng.CreateItem(ctx, jd.Item{FolderID: folder, ItemNumber: "13.02.01", Name: "x"})
	assert.True(t, jd.IsValidation(err), "wrong folder prefix: got %v", err)

	_, err = f.eng.CreateItem(ctx, jd.Item{FolderID: folder, ItemNumber: "13.01.04", Name: "x"})
	assert.True(t, jd.IsDuplicate(err), "got %v", err)

	_, err = f.eng.CreateItem(ctx, jd.Item{FolderID: folder, Name: "x", FileSize: int64Ptr(-1)})
	assert.True(t, jd.IsValidation(err), "got %v", err)

	next, _, err := f.eng.NextItemNumber(ctx, folder)
	require.NoError(t, err)
	assert.Equal(t, "13.01.05", next.Number)
}

func TestUpdateItem(t *testing.T) {
	f := newTestEngine(t)
	ctx := context.Background()
	folder := f.taxFolder(t)
	other := f.createFolder(t, financeCategory, "Receipts")
	item := f.createItem(t, folder, "W-2")

	require.NoError(t, f.eng.UpdateItem(ctx, item, jd.Patch{"file_size": "1024", "file_type": "pdf"}))
	it, err := f.eng.GetItem(ctx, item)
	require.NoError(t, err)
	require.NotNil(t, it.FileSize)
	assert.Equal(t, int64(1024), *it.FileSize)

	require.NoError(t, f.eng.UpdateItem(ctx, item, jd.Patch{"file_size": nil}))
	it, err = f.eng.GetItem(ctx, item)
	require.NoError(t, err)
	assert.Nil(t, it.FileSize)

	require.NoError(t, f.eng.UpdateItem(ctx, item, jd.Patch{"folder_id": other}))
	it, err = f.eng.GetItem(ctx, item)
	require.NoError(t, err)
	assert.Equal(t, "13.02.01", it.ItemNumber)
	assert.Equal(t, "Receipts", it.FolderName)
	assert.Equal(t, jd.SensitivityStandard, it.EffectiveSensitivity)

	err = f.eng.UpdateItem(ctx, item, jd.Patch{"folder_id": 404})
	assert.True(t, jd.IsNotFound(err), "got %v", err)
}

func TestLocations(t *testing.T) {
	f := newTestEngine(t)
	ctx := context.Background()

	id, err := f.eng.CreateLocation(ctx, jd.StorageLocation{Name: "Archive Box", Type: "physical", IsEncrypted: false})
	require.NoError(t, err)

	_, err = f.eng.CreateLocation(ctx, jd.StorageLocation{Name: "No type"})
	assert.True(t, jd.IsValidation(err), "got %v", err)

	require.NoError(t, f.eng.UpdateLocation(ctx, id, jd.Patch{"is_encrypted": "true", "path": "Closet"}))
	l, err := f.eng.GetLocation(ctx, id)
	require.NoError(t, err)
	assert.True(t, l.IsEncrypted)
	assert.Equal(t, "Closet", l.Path)

	locs, err := f.eng.ListLocations(ctx)
	require.NoError(t, err)
	require.Len(t, locs, 2)
	assert.Equal(t, "Archive Box", locs[0].Name)
	assert.Equal(t, "Home NAS", locs[1].Name)

	require.NoError(t, f.eng.DeleteLocation(ctx, id))

	entries, err := f.eng.RecentActivity(ctx, 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, jd.ActionDelete, entries[0].Action)
	assert.Equal(t, jd.EntityStorageLocation, entries[0].EntityType)
	assert.Equal(t, "Archive Box", entries[0].EntityNumber)
}
