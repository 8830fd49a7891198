package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/jmeg8r/jdex/internal/jd"
)

func TestAreas_ListOrderedByRangeStart(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	err := s.Update(ctx, func(tx *Tx) error {
		for _, a := range []jd.Area{
			{RangeStart: 90, RangeEnd: 99, Name: "Archive", Color: "#78716c"},
			{RangeStart: 0, RangeEnd: 9, Name: "System", Color: "#6b7280"},
			{RangeStart: 40, RangeEnd: 49, Name: "Development", Color: "#8b5cf6"},
		} {
			if _, err := tx.InsertArea(ctx, a); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("insert areas: %v", err)
	}

	var areas []jd.Area
	if err := s.View(ctx, func(tx *Tx) error {
		areas, err = tx.ListAreas(ctx)
		return err
	}); err != nil {
		t.Fatalf("ListAreas() failed: %v", err)
	}

	want := []int{0, 40, 90}
	if len(areas) != len(want) {
		t.Fatalf("got %d areas, want %d", len(areas), len(want))
	}
	for i, a := range areas {
		if a.RangeStart != want[i] {
			t.Errorf("areas[%d].RangeStart = %d, want %d", i, a.RangeStart, want[i])
		}
		if a.CreatedAt == "" {
			t.Errorf("areas[%d].CreatedAt empty, want database default", i)
		}
	}
}

func TestAreas_ExplicitID(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	var id int64
	err := s.Update(ctx, func(tx *Tx) error {
		var err error
		id, err = tx.InsertArea(ctx, jd.Area{ID: 7, RangeStart: 60, RangeEnd: 69, Name: "Learning"})
		return err
	})
	if err != nil {
		t.Fatalf("InsertArea() failed: %v", err)
	}
	if id != 7 {
		t.Errorf("id = %d, want 7", id)
	}
}

func TestGet_MissingRowIsErrNoRows(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	err := s.View(ctx, func(tx *Tx) error {
		if _, err := tx.GetArea(ctx, 42); !errors.Is(err, sql.ErrNoRows) {
			t.Errorf("GetArea: %v, want sql.ErrNoRows", err)
		}
		if _, err := tx.GetCategory(ctx, 42); !errors.Is(err, sql.ErrNoRows) {
			t.Errorf("GetCategory: %v, want sql.ErrNoRows", err)
		}
		if _, err := tx.GetFolder(ctx, 42); !errors.Is(err, sql.ErrNoRows) {
			t.Errorf("GetFolder: %v, want sql.ErrNoRows", err)
		}
		if _, err := tx.GetItem(ctx, 42); !errors.Is(err, sql.ErrNoRows) {
			t.Errorf("GetItem: %v, want sql.ErrNoRows", err)
		}
		if _, err := tx.GetLocation(ctx, 42); !errors.Is(err, sql.ErrNoRows) {
			t.Errorf("GetLocation: %v, want sql.ErrNoRows", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View() failed: %v", err)
	}
}

func TestCategories_ViewAndFilter(t *testing.T) {
	s := createTestStore(t)
	tree := createTestTree(t, s)
	ctx := context.Background()

	err := s.Update(ctx, func(tx *Tx) error {
		other, err := tx.InsertArea(ctx, jd.Area{RangeStart: 40, RangeEnd: 49, Name: "Development", Color: "#8b5cf6"})
		if err != nil {
			return err
		}
		_, err = tx.InsertCategory(ctx, jd.Category{Number: 41, AreaID: other, Name: "KlockThingy"})
		if err != nil {
			return err
		}
		_, err = tx.InsertCategory(ctx, jd.Category{Number: 11, AreaID: tree.areaID, Name: "Identity and Legal"})
		return err
	})
	if err != nil {
		t.Fatalf("insert categories: %v", err)
	}

	err = s.View(ctx, func(tx *Tx) error {
		all, err := tx.ListCategories(ctx, 0)
		if err != nil {
			return err
		}
		if len(all) != 3 {
			t.Fatalf("all categories = %d, want 3", len(all))
		}
		if all[0].Number != 11 || all[1].Number != 13 || all[2].Number != 41 {
			t.Errorf("order = %d,%d,%d, want 11,13,41", all[0].Number, all[1].Number, all[2].Number)
		}

		personal, err := tx.ListCategories(ctx, tree.areaID)
		if err != nil {
			return err
		}
		if len(personal) != 2 {
			t.Errorf("personal categories = %d, want 2", len(personal))
		}
		for _, c := range personal {
			if c.AreaName != "Personal" || c.AreaColor != "#0d9488" {
				t.Errorf("category %d area = %q %q", c.Number, c.AreaName, c.AreaColor)
			}
		}

		none, err := tx.ListCategories(ctx, 9999)
		if err != nil {
			return err
		}
		if none == nil || len(none) != 0 {
			t.Errorf("unknown area filter = %#v, want empty non-nil", none)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View() failed: %v", err)
	}
}

func TestFolders_ViewCountsAndSequence(t *testing.T) {
	s := createTestStore(t)
	tree := createTestTree(t, s)
	ctx := context.Background()
	insertTestItem(t, s, tree.folderID, "13.01.01", 1, jd.SensitivityInherit)
	insertTestItem(t, s, tree.folderID, "13.01.04", 4, jd.SensitivityWork)

	err := s.View(ctx, func(tx *Tx) error {
		f, err := tx.GetFolder(ctx, tree.folderID)
		if err != nil {
			return err
		}
		if f.CategoryNumber != 13 || f.CategoryName != "Finance" || f.AreaName != "Personal" {
			t.Errorf("folder ancestors = %d %q %q", f.CategoryNumber, f.CategoryName, f.AreaName)
		}
		if f.Sensitivity != jd.SensitivitySensitive {
			t.Errorf("Sensitivity = %q, want sensitive", f.Sensitivity)
		}

		n, err := tx.CountItemsInFolder(ctx, tree.folderID)
		if err != nil {
			return err
		}
		if n != 2 {
			t.Errorf("CountItemsInFolder = %d, want 2", n)
		}

		seq, err := tx.MaxItemSequence(ctx, tree.folderID)
		if err != nil {
			return err
		}
		if seq != 4 {
			t.Errorf("MaxItemSequence = %d, want 4", seq)
		}

		seq, err = tx.MaxFolderSequence(ctx, tree.categoryID)
		if err != nil {
			return err
		}
		if seq != 1 {
			t.Errorf("MaxFolderSequence = %d, want 1", seq)
		}

		seq, err = tx.MaxFolderSequence(ctx, 9999)
		if err != nil {
			return err
		}
		if seq != 0 {
			t.Errorf("MaxFolderSequence(empty) = %d, want 0", seq)
		}

		taken, err := tx.FolderNumberTaken(ctx, "13.01", 0)
		if err != nil {
			return err
		}
		if !taken {
			t.Error("FolderNumberTaken(13.01) = false")
		}
		taken, err = tx.FolderNumberTaken(ctx, "13.01", tree.folderID)
		if err != nil {
			return err
		}
		if taken {
			t.Error("FolderNumberTaken(13.01, self) = true")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View() failed: %v", err)
	}
}

func TestItems_EffectiveSensitivity(t *testing.T) {
	s := createTestStore(t)
	tree := createTestTree(t, s)
	ctx := context.Background()
	inheritID := insertTestItem(t, s, tree.folderID, "13.01.01", 1, jd.SensitivityInherit)
	workID := insertTestItem(t, s, tree.folderID, "13.01.02", 2, jd.SensitivityWork)

	err := s.View(ctx, func(tx *Tx) error {
		it, err := tx.GetItem(ctx, inheritID)
		if err != nil {
			return err
		}
		if it.EffectiveSensitivity != jd.SensitivitySensitive {
			t.Errorf("inherit item effective = %q, want sensitive", it.EffectiveSensitivity)
		}
		if it.FolderNumber != "13.01" || it.FolderName != "Tax Documents" {
			t.Errorf("folder fields = %q %q", it.FolderNumber, it.FolderName)
		}
		if it.FileSize != nil {
			t.Errorf("FileSize = %v, want nil", *it.FileSize)
		}

		it, err = tx.GetItem(ctx, workID)
		if err != nil {
			return err
		}
		if it.EffectiveSensitivity != jd.SensitivityWork {
			t.Errorf("work item effective = %q, want work", it.EffectiveSensitivity)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View() failed: %v", err)
	}
}

func TestItems_FileSizeRoundTrip(t *testing.T) {
	s := createTestStore(t)
	tree := createTestTree(t, s)
	ctx := context.Background()
	size := int64(2048)

	var id int64
	err := s.Update(ctx, func(tx *Tx) error {
		var err error
		id, err = tx.InsertItem(ctx, jd.Item{
			ItemNumber: "13.01.01", FolderID: tree.folderID, Sequence: 1,
			Name: "W-2", Sensitivity: jd.SensitivityInherit, FileSize: &size, FileType: "pdf",
		})
		return err
	})
	if err != nil {
		t.Fatalf("InsertItem() failed: %v", err)
	}

	err = s.View(ctx, func(tx *Tx) error {
		it, err := tx.GetItem(ctx, id)
		if err != nil {
			return err
		}
		if it.FileSize == nil || *it.FileSize != 2048 {
			t.Errorf("FileSize = %v, want 2048", it.FileSize)
		}
		if it.FileType != "pdf" {
			t.Errorf("FileType = %q, want pdf", it.FileType)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View() failed: %v", err)
	}
}

func TestUpdate_FieldsAndTouch(t *testing.T) {
	s := createTestStore(t)
	tree := createTestTree(t, s)
	ctx := context.Background()

	err := s.Update(ctx, func(tx *Tx) error {
		n, err := tx.UpdateFolder(ctx, tree.folderID, []jd.Field{
			{Column: "name", Value: "Taxes"},
			{Column: "notes", Value: nil},
		}, "2030-01-02 03:04:05")
		if err != nil {
			return err
		}
		if n != 1 {
			t.Errorf("rows = %d, want 1", n)
		}

		n, err = tx.UpdateFolder(ctx, 9999, []jd.Field{{Column: "name", Value: "x"}}, "2030-01-02 03:04:05")
		if err != nil {
			return err
		}
		if n != 0 {
			t.Errorf("missing folder rows = %d, want 0", n)
		}

		// No fields and no touch still reports whether the row exists.
		n, err = tx.UpdateArea(ctx, tree.areaID, nil)
		if err != nil {
			return err
		}
		if n != 1 {
			t.Errorf("empty area update rows = %d, want 1", n)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}

	err = s.View(ctx, func(tx *Tx) error {
		f, err := tx.GetFolder(ctx, tree.folderID)
		if err != nil {
			return err
		}
		if f.Name != "Taxes" {
			t.Errorf("Name = %q, want Taxes", f.Name)
		}
		if f.UpdatedAt != "2030-01-02 03:04:05" {
			t.Errorf("UpdatedAt = %q", f.UpdatedAt)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View() failed: %v", err)
	}
}

func TestSearch_Completeness(t *testing.T) {
	s := createTestStore(t)
	tree := createTestTree(t, s)
	ctx := context.Background()
	insertTestItem(t, s, tree.folderID, "13.01.01", 1, jd.SensitivityInherit)

	tests := []struct {
		term        string
		wantFolders int
		wantItems   int
	}{
		{"1099", 1, 0},          // folder keywords
		{"3.0", 1, 1},           // folder_number and item_number substrings
		{"tax documents", 1, 1}, // case-insensitive name, item via folder name
		{"Finance", 1, 1},       // category name
		{"Personal", 1, 1},      // area name
		{"13.01.01", 0, 1},
		{"nothing-matches", 0, 0},
		{"'; DROP TABLE folders; --", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			err := s.View(ctx, func(tx *Tx) error {
				folders, err := tx.SearchFolders(ctx, tt.term)
				if err != nil {
					return err
				}
				items, err := tx.SearchItems(ctx, tt.term)
				if err != nil {
					return err
				}
				if len(folders) != tt.wantFolders {
					t.Errorf("folders = %d, want %d", len(folders), tt.wantFolders)
				}
				if len(items) != tt.wantItems {
					t.Errorf("items = %d, want %d", len(items), tt.wantItems)
				}
				return nil
			})
			if err != nil {
				t.Fatalf("search failed: %v", err)
			}
		})
	}

	// The injection attempt must leave the table intact.
	var n int
	if err := s.DB().QueryRow("SELECT COUNT(*) FROM folders").Scan(&n); err != nil {
		t.Fatalf("folders table gone: %v", err)
	}
}

func TestStats(t *testing.T) {
	s := createTestStore(t)
	tree := createTestTree(t, s)
	ctx := context.Background()
	insertTestItem(t, s, tree.folderID, "13.01.01", 1, jd.SensitivityInherit)
	insertTestItem(t, s, tree.folderID, "13.01.02", 2, jd.SensitivityInherit)
	insertTestItem(t, s, tree.folderID, "13.01.03", 3, jd.SensitivityWork)

	var got jd.Stats
	if err := s.View(ctx, func(tx *Tx) error {
		var err error
		got, err = tx.Stats(ctx)
		return err
	}); err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}

	want := jd.Stats{
		TotalAreas: 1, TotalCategories: 1, TotalFolders: 1, TotalItems: 3,
		SensitiveFolders: 1,
		InheritItems: 2, WorkItems: 1,
	}
	if got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}
}

func TestActivity_NewestFirst(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	err := s.Update(ctx, func(tx *Tx) error {
		entries := []jd.ActivityEntry{
			{Action: jd.ActionCreate, EntityType: jd.EntityFolder, EntityNumber: "13.01", Details: "Created folder: A", Timestamp: "2030-01-01 00:00:00"},
			{Action: jd.ActionUpdate, EntityType: jd.EntityFolder, EntityNumber: "13.01", Details: "Updated: A", Timestamp: "2030-01-01 00:00:01"},
			{Action: jd.ActionDelete, EntityType: jd.EntityFolder, EntityNumber: "13.01", Details: "Deleted: A", Timestamp: "2030-01-01 00:00:01"},
		}
		for _, e := range entries {
			if _, err := tx.AppendActivity(ctx, e); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	var got []jd.ActivityEntry
	if err := s.View(ctx, func(tx *Tx) error {
		got, err = tx.RecentActivity(ctx, 2)
		return err
	}); err != nil {
		t.Fatalf("RecentActivity() failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}
	if got[0].Action != jd.ActionDelete || got[1].Action != jd.ActionUpdate {
		t.Errorf("order = %s,%s, want delete,update", got[0].Action, got[1].Action)
	}
}

func TestLocations_CRUD(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	var id int64
	err := s.Update(ctx, func(tx *Tx) error {
		var err error
		id, err = tx.InsertLocation(ctx, jd.StorageLocation{
			Name: "ProtonDrive", Type: "cloud", Path: "~/ProtonDrive/JohnnyDecimal", IsEncrypted: true,
		})
		if err != nil {
			return err
		}
		_, err = tx.InsertLocation(ctx, jd.StorageLocation{Name: "Dropbox", Type: "cloud"})
		return err
	})
	if err != nil {
		t.Fatalf("insert locations: %v", err)
	}

	err = s.Update(ctx, func(tx *Tx) error {
		_, err := tx.UpdateLocation(ctx, id, []jd.Field{{Column: "notes", Value: "Encrypted"}})
		return err
	})
	if err != nil {
		t.Fatalf("UpdateLocation() failed: %v", err)
	}

	err = s.View(ctx, func(tx *Tx) error {
		locs, err := tx.ListLocations(ctx)
		if err != nil {
			return err
		}
		if len(locs) != 2 || locs[0].Name != "Dropbox" {
			t.Fatalf("ListLocations() = %+v", locs)
		}
		l, err := tx.GetLocation(ctx, id)
		if err != nil {
			return err
		}
		if !l.IsEncrypted || l.Notes != "Encrypted" {
			t.Errorf("location = %+v", l)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View() failed: %v", err)
	}

	err = s.Update(ctx, func(tx *Tx) error {
		n, err := tx.DeleteLocation(ctx, id)
		if err == nil && n != 1 {
			t.Errorf("deleted %d rows, want 1", n)
		}
		return err
	})
	if err != nil {
		t.Fatalf("DeleteLocation() failed: %v", err)
	}
}

func TestRenumber_Cascades(t *testing.T) {
	s := createTestStore(t)
	tree := createTestTree(t, s)
	ctx := context.Background()
	insertTestItem(t, s, tree.folderID, "13.01.01", 1, jd.SensitivityInherit)
	insertTestItem(t, s, tree.folderID, "13.01.02", 2, jd.SensitivityInherit)
	now := "2030-01-01 00:00:00"

	err := s.Update(ctx, func(tx *Tx) error {
		if _, err := tx.UpdateFolder(ctx, tree.folderID, []jd.Field{{Column: "folder_number", Value: "13.05"}, {Column: "sequence", Value: 5}}, now); err != nil {
			return err
		}
		n, err := tx.RenumberFolderItems(ctx, tree.folderID, "13.05", now)
		if err != nil {
			return err
		}
		if n != 2 {
			t.Errorf("renumbered %d items, want 2", n)
		}
		if _, err := tx.UpdateCategory(ctx, tree.categoryID, []jd.Field{{Column: "number", Value: 18}}); err != nil {
			return err
		}
		return tx.RenumberCategory(ctx, tree.categoryID, 18, now)
	})
	if err != nil {
		t.Fatalf("renumber failed: %v", err)
	}

	err = s.View(ctx, func(tx *Tx) error {
		items, err := tx.ListItems(ctx, tree.folderID)
		if err != nil {
			return err
		}
		if len(items) != 2 || items[0].ItemNumber != "18.05.01" || items[1].ItemNumber != "18.05.02" {
			t.Errorf("items = %+v", items)
		}
		f, err := tx.GetFolder(ctx, tree.folderID)
		if err != nil {
			return err
		}
		if f.FolderNumber != "18.05" || f.CategoryNumber != 18 {
			t.Errorf("folder = %s in %d, want 18.05 in 18", f.FolderNumber, f.CategoryNumber)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View() failed: %v", err)
	}
}

func TestIsEmpty(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	check := func(want bool) {
		t.Helper()
		var got bool
		if err := s.View(ctx, func(tx *Tx) error {
			var err error
			got, err = tx.IsEmpty(ctx)
			return err
		}); err != nil {
			t.Fatalf("IsEmpty() failed: %v", err)
		}
		if got != want {
			t.Errorf("IsEmpty() = %v, want %v", got, want)
		}
	}

	check(true)

	// An activity entry alone marks the database as used.
	if err := s.Update(ctx, func(tx *Tx) error {
		_, err := tx.AppendActivity(ctx, jd.ActivityEntry{Action: jd.ActionDelete, EntityType: jd.EntityArea, EntityNumber: "10-19"})
		return err
	}); err != nil {
		t.Fatalf("append: %v", err)
	}
	check(false)
}

func TestHighWater(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	err := s.Update(ctx, func(tx *Tx) error {
		n, err := tx.HighWater(ctx, jd.EntityCategory, 5)
		if err != nil {
			return err
		}
		if n != 0 {
			t.Errorf("unset high water = %d, want 0", n)
		}

		for _, seq := range []int{3, 7, 2} {
			if err := tx.RaiseHighWater(ctx, jd.EntityCategory, 5, seq); err != nil {
				return err
			}
		}
		n, err = tx.HighWater(ctx, jd.EntityCategory, 5)
		if err != nil {
			return err
		}
		if n != 7 {
			t.Errorf("high water = %d, want 7", n)
		}

		// Parent kinds are independent.
		n, err = tx.HighWater(ctx, jd.EntityFolder, 5)
		if err != nil {
			return err
		}
		if n != 0 {
			t.Errorf("folder high water = %d, want 0", n)
		}

		if err := tx.ClearHighWater(ctx, jd.EntityCategory, 5); err != nil {
			return err
		}
		n, err = tx.HighWater(ctx, jd.EntityCategory, 5)
		if err != nil {
			return err
		}
		if n != 0 {
			t.Errorf("cleared high water = %d, want 0", n)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
}
