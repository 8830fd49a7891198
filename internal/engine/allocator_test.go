package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmeg8r/jdex/internal/jd"
)

func TestNextFolderNumber_NoSelection(t *testing.T) {
	f := newTestEngine(t)

	alloc, ok, err := f.eng.NextFolderNumber(context.Background(), 0)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, jd.Allocation{}, alloc)
}

func TestNextFolderNumber_InvalidAndMissing(t *testing.T) {
	f := newTestEngine(t)
	ctx := context.Background()

	_, ok, err := f.eng.NextFolderNumber(ctx, -3)
	assert.True(t, jd.IsValidation(err), "got %v", err)
	assert.False(t, ok)

	_, ok, err = f.eng.NextFolderNumber(ctx, 999)
	assert.True(t, jd.IsNotFound(err), "got %v", err)
	assert.False(t, ok)
}

func TestNextFolderNumber_Idempotent(t *testing.T) {
	f := newTestEngine(t)
	ctx := context.Background()

	first, ok, err := f.eng.NextFolderNumber(ctx, financeCategory)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, jd.Allocation{Number: "13.01", Sequence: 1}, first)

	second, _, err := f.eng.NextFolderNumber(ctx, financeCategory)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestNextFolderNumber_Monotonic(t *testing.T) {
	f := newTestEngine(t)
	ctx := context.Background()

	for want := 1; want <= 3; want++ {
		alloc, _, err := f.eng.NextFolderNumber(ctx, financeCategory)
		require.NoError(t, err)
		assert.Equal(t, want, alloc.Sequence)

		id := f.createFolder(t, financeCategory, "Folder")
		got, err := f.eng.GetFolder(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, alloc.Number, got.FolderNumber)
	}

	// Other categories are independent.
	alloc, _, err := f.eng.NextFolderNumber(ctx, identityCategory)
	require.NoError(t, err)
	assert.Equal(t, "11.01", alloc.Number)
}

func TestNextFolderNumber_NoReuseAfterDelete(t *testing.T) {
	f := newTestEngine(t)
	ctx := context.Background()

	first := f.createFolder(t, financeCategory, "First")
	second := f.createFolder(t, financeCategory, "Second")

	require.NoError(t, f.eng.DeleteFolder(ctx, second))
	alloc, _, err := f.eng.NextFolderNumber(ctx, financeCategory)
	require.NoError(t, err)
	assert.Equal(t, "13.03", alloc.Number, "13.02 was issued once and must not come back")

	require.NoError(t, f.eng.DeleteFolder(ctx, first))
	alloc, _, err = f.eng.NextFolderNumber(ctx, financeCategory)
	require.NoError(t, err)
	assert.Equal(t, "13.03", alloc.Number, "an empty category keeps its history")
}

func TestNextFolderNumber_Exhausted(t *testing.T) {
	f := newTestEngine(t)
	ctx := context.Background()

	_, err := f.eng.CreateFolder(ctx, jd.Folder{CategoryID: financeCategory, Sequence: 99, Name: "Last"})
	require.NoError(t, err)

	_, ok, err := f.eng.NextFolderNumber(ctx, financeCategory)
	assert.True(t, jd.IsExhausted(err), "got %v", err)
	assert.False(t, ok)

	_, err = f.eng.CreateFolder(ctx, jd.Folder{CategoryID: financeCategory, Name: "Overflow"})
	assert.True(t, jd.IsExhausted(err), "got %v", err)

	// Explicit numbers can still fill gaps.
	_, err = f.eng.CreateFolder(ctx, jd.Folder{CategoryID: financeCategory, FolderNumber: "13.05", Name: "Gap"})
	assert.NoError(t, err)
}

func TestNextItemNumber(t *testing.T) {
	f := newTestEngine(t)
	ctx := context.Background()
	folder := f.taxFolder(t)

	_, ok, err := f.eng.NextItemNumber(ctx, 0)
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = f.eng.NextItemNumber(ctx, 999)
	assert.True(t, jd.IsNotFound(err), "got %v", err)

	alloc, ok, err := f.eng.NextItemNumber(ctx, folder)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, jd.Allocation{Number: "13.01.01", Sequence: 1}, alloc)

	f.createItem(t, folder, "W-2")
	last := f.createItem(t, folder, "1099-INT")

	require.NoError(t, f.eng.DeleteItem(ctx, last))
	alloc, _, err = f.eng.NextItemNumber(ctx, folder)
	require.NoError(t, err)
	assert.Equal(t, "13.01.03", alloc.Number)
}

func TestNextItemNumber_UsesStoredFolderPrefix(t *testing.T) {
	f := newTestEngine(t)
	ctx := context.Background()

	// A folder moved to another category keeps items under its new number.
	folder := f.taxFolder(t)
	require.NoError(t, f.eng.UpdateFolder(ctx, folder, jd.Patch{"category_id": identityCategory}))

	alloc, _, err := f.eng.NextItemNumber(ctx, folder)
	require.NoError(t, err)
	assert.Equal(t, "11.01.01", alloc.Number)
}

func TestNextFolderNumber_ExplicitUpdateRaisesHighWater(t *testing.T) {
	f := newTestEngine(t)
	ctx := context.Background()
	folder := f.createFolder(t, financeCategory, "Taxes")

	// Renumbering to 13.99 counts as using 99, so the moved-away 13.01 and
	// everything in between stay unallocated.
	require.NoError(t, f.eng.UpdateFolder(ctx, folder, jd.Patch{"sequence": 99}))

	_, ok, err := f.eng.NextFolderNumber(ctx, financeCategory)
	assert.True(t, jd.IsExhausted(err), "got %v", err)
	assert.False(t, ok)

	id, err := f.eng.CreateFolder(ctx, jd.Folder{CategoryID: financeCategory, FolderNumber: "13.01", Name: "Receipts"})
	require.NoError(t, err)
	got, err := f.eng.GetFolder(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "13.01", got.FolderNumber)
}
