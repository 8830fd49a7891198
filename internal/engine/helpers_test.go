package engine

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jmeg8r/jdex/internal/jd"
	"github.com/jmeg8r/jdex/internal/seed"
	"github.com/jmeg8r/jdex/internal/store"
	"github.com/jmeg8r/jdex/internal/testutil"
)

var testTime = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

const testExportID = "01890a5d-ac96-774b-bcce-b302099a8057"

// Ids assigned by seeding testDataset into an empty store.
const (
	personalAreaID   int64 = 1
	homeAreaID       int64 = 2
	identityCategory int64 = 1 // 11
	financeCategory  int64 = 2 // 13
	houseCategory    int64 = 3 // 21
)

func testDataset() *seed.Dataset {
	return &seed.Dataset{
		Areas: []seed.Area{
			{
				RangeStart:  10,
				RangeEnd:    19,
				Name:        "Personal",
				Description: "Personal life administration",
				Color:       "#0d9488",
				Categories: []seed.Category{
					{Number: 11, Name: "Identity and Legal", Description: "Passports, IDs, legal documents"},
					{Number: 13, Name: "Finance", Description: "Banking, taxes, receipts"},
				},
			},
			{
				RangeStart: 20,
				RangeEnd:   29,
				Name:       "Home",
				Categories: []seed.Category{
					{Number: 21, Name: "House"},
				},
			},
		},
		Locations: []seed.Location{
			{Name: "Home NAS", Type: "nas", Path: "/volume1/jdex"},
		},
	}
}

type fixture struct {
	eng   *Engine
	store *store.Store
	clock *testutil.FixedClock
}

// newTestEngine opens a file-backed store seeded with testDataset.
func newTestEngine(t *testing.T) *fixture {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "jdex.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	clock := testutil.NewFixedClock(testTime)
	eng := New(st,
		WithClock(clock),
		WithIDGenerator(testutil.NewFixedIDs(testExportID)),
		WithSeed(testDataset()),
	)
	seeded, err := eng.EnsureSeeded(context.Background())
	require.NoError(t, err)
	require.True(t, seeded)
	return &fixture{eng: eng, store: st, clock: clock}
}

func (f *fixture) createFolder(t *testing.T, categoryID int64, name string) int64 {
	t.Helper()
	id, err := f.eng.CreateFolder(context.Background(), jd.Folder{CategoryID: categoryID, Name: name})
	require.NoError(t, err)
	return id
}

func (f *fixture) createItem(t *testing.T, folderID int64, name string) int64 {
	t.Helper()
	id, err := f.eng.CreateItem(context.Background(), jd.Item{FolderID: folderID, Name: name})
	require.NoError(t, err)
	return id
}

// taxFolder creates 13.01 "Tax Documents", marked sensitive.
func (f *fixture) taxFolder(t *testing.T) int64 {
	t.Helper()
	id, err := f.eng.CreateFolder(context.Background(), jd.Folder{
		CategoryID:  financeCategory,
		Name:        "Tax Documents",
		Sensitivity: jd.SensitivitySensitive,
		Keywords:    "IRS, 1099",
	})
	require.NoError(t, err)
	return id
}

func int64Ptr(n int64) *int64 { return &n }
