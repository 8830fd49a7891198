package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmeg8r/jdex/internal/jd"
)

// createTestStore creates a new file-backed store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// testTree holds the ids of a minimal area > category > folder chain.
type testTree struct {
	areaID     int64
	categoryID int64
	folderID   int64
}

// createTestTree writes area 10-19 "Personal", category 13 "Finance" and
// folder 13.01 "Tax Documents" marked sensitive.
func createTestTree(t *testing.T, s *Store) testTree {
	t.Helper()
	var tree testTree
	err := s.Update(context.Background(), func(tx *Tx) error {
		var err error
		tree.areaID, err = tx.InsertArea(context.Background(), jd.Area{
			RangeStart: 10, RangeEnd: 19, Name: "Personal", Color: "#0d9488",
		})
		if err != nil {
			return err
		}
		tree.categoryID, err = tx.InsertCategory(context.Background(), jd.Category{
			Number: 13, AreaID: tree.areaID, Name: "Finance",
		})
		if err != nil {
			return err
		}
		tree.folderID, err = tx.InsertFolder(context.Background(), jd.Folder{
			FolderNumber: "13.01", CategoryID: tree.categoryID, Sequence: 1,
			Name: "Tax Documents", Sensitivity: jd.SensitivitySensitive, Keywords: "IRS, 1099",
		})
		return err
	})
	if err != nil {
		t.Fatalf("createTestTree failed: %v", err)
	}
	return tree
}

// insertTestItem adds an item under folderID inside its own transaction.
func insertTestItem(t *testing.T, s *Store, folderID int64, number string, seq int, sens jd.Sensitivity) int64 {
	t.Helper()
	var id int64
	err := s.Update(context.Background(), func(tx *Tx) error {
		var err error
		id, err = tx.InsertItem(context.Background(), jd.Item{
			ItemNumber: number, FolderID: folderID, Sequence: seq,
			Name: "Item " + number, Sensitivity: sens,
		})
		return err
	})
	if err != nil {
		t.Fatalf("insertTestItem(%s) failed: %v", number, err)
	}
	return id
}
