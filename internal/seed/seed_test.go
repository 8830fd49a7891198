package seed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	ds, err := Default()
	require.NoError(t, err)

	assert.Len(t, ds.Areas, 8)
	assert.Equal(t, 43, ds.CategoryCount())
	assert.Len(t, ds.Locations, 8)

	first := ds.Areas[0]
	assert.Equal(t, "System", first.Name)
	assert.Equal(t, 0, first.RangeStart)
	assert.Equal(t, 9, first.RangeEnd)
	assert.Equal(t, "#6b7280", first.Color)
	assert.Equal(t, "Index", first.Categories[0].Name)

	last := ds.Areas[len(ds.Areas)-1]
	assert.Equal(t, "Archive", last.Name)
	assert.Equal(t, 90, last.RangeStart)

	proton := ds.Locations[1]
	assert.Equal(t, "ProtonDrive", proton.Name)
	assert.True(t, proton.IsEncrypted)

	email := ds.Locations[6]
	assert.Equal(t, "Proton Email", email.Name)
	assert.Empty(t, email.Path)
}

func TestDefault_CategoriesInsideAreaRanges(t *testing.T) {
	ds, err := Default()
	require.NoError(t, err)

	for _, a := range ds.Areas {
		for _, c := range a.Categories {
			assert.GreaterOrEqual(t, c.Number, a.RangeStart, "category %d in %s", c.Number, a.Name)
			assert.LessOrEqual(t, c.Number, a.RangeEnd, "category %d in %s", c.Number, a.Name)
		}
	}
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "unknown field",
			yaml: `
areas:
  - range_start: 10
    range_end: 19
    name: Personal
    colour: "#0d9488"
`,
		},
		{
			name: "category outside area range",
			yaml: `
areas:
  - range_start: 10
    range_end: 19
    name: Personal
    categories:
      - { number: 21, name: Misplaced }
`,
		},
		{
			name: "inverted range",
			yaml: `
areas:
  - range_start: 19
    range_end: 10
    name: Personal
`,
		},
		{
			name: "bad color",
			yaml: `
areas:
  - range_start: 10
    range_end: 19
    name: Personal
    color: teal
`,
		},
		{
			name: "empty category name",
			yaml: `
areas:
  - range_start: 10
    range_end: 19
    name: Personal
    categories:
      - { number: 11, name: "" }
`,
		},
		{
			name: "duplicate category across areas",
			yaml: `
areas:
  - range_start: 10
    range_end: 19
    name: Personal
    categories:
      - { number: 15, name: Home }
  - range_start: 10
    range_end: 19
    name: Personal Two
    categories:
      - { number: 15, name: Home Again }
`,
		},
		{
			name: "no areas",
			yaml: `
storage_locations:
  - { name: Dropbox, type: cloud }
`,
		},
		{
			name: "location without type",
			yaml: `
areas:
  - { range_start: 0, range_end: 9, name: System }
storage_locations:
  - { name: Dropbox }
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestParse_Minimal(t *testing.T) {
	ds, err := Parse([]byte(`
areas:
  - range_start: 10
    range_end: 19
    name: Personal
    categories:
      - { number: 13, name: Finance }
`))
	require.NoError(t, err)
	require.Len(t, ds.Areas, 1)
	assert.Empty(t, ds.Areas[0].Color)
	assert.Empty(t, ds.Locations)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, defaultYAML, 0o644))

	ds, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 43, ds.CategoryCount())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
