// Package seed holds the default JDex hierarchy written on first open and
// on reset, and loads replacement datasets from YAML files.
package seed

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

//go:embed schema.cue
var schemaCUE string

// Dataset is a complete default hierarchy: areas owning their categories,
// plus the storage location catalog.
type Dataset struct {
	Areas     []Area     `yaml:"areas" json:"areas"`
	Locations []Location `yaml:"storage_locations" json:"storage_locations"`
}

// Area is a seeded area and its categories.
type Area struct {
	RangeStart  int        `yaml:"range_start" json:"range_start"`
	RangeEnd    int        `yaml:"range_end" json:"range_end"`
	Name        string     `yaml:"name" json:"name"`
	Description string     `yaml:"description" json:"description"`
	Color       string     `yaml:"color" json:"color"`
	Categories  []Category `yaml:"categories" json:"categories"`
}

// Category is a seeded category. Its area is the enclosing Area.
type Category struct {
	Number      int    `yaml:"number" json:"number"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
}

// Location is a seeded storage location.
type Location struct {
	Name        string `yaml:"name" json:"name"`
	Type        string `yaml:"type" json:"type"`
	Path        string `yaml:"path" json:"path"`
	IsEncrypted bool   `yaml:"is_encrypted" json:"is_encrypted"`
	Notes       string `yaml:"notes" json:"notes"`
}

// CategoryCount returns the number of categories across all areas.
func (d *Dataset) CategoryCount() int {
	n := 0
	for _, a := range d.Areas {
		n += len(a.Categories)
	}
	return n
}

// Default returns the embedded default dataset.
func Default() (*Dataset, error) {
	ds, err := Parse(defaultYAML)
	if err != nil {
		return nil, fmt.Errorf("default dataset: %w", err)
	}
	return ds, nil
}

// Load reads and validates a dataset file.
func Load(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	ds, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// Parse decodes a YAML dataset and validates it. Unknown keys are
// rejected so typos surface instead of silently seeding defaults.
func Parse(data []byte) (*Dataset, error) {
	var ds Dataset
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&ds); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := Validate(&ds); err != nil {
		return nil, fmt.Errorf("invalid dataset: %w", err)
	}
	return &ds, nil
}

// Validate checks ds against the dataset schema (ranges, colors,
// category numbers inside their area) and then for category numbers
// reused across areas, which the schema cannot see.
func Validate(ds *Dataset) error {
	// Nil slices encode as null; the schema wants lists.
	if ds.Areas == nil {
		ds.Areas = []Area{}
	}
	if ds.Locations == nil {
		ds.Locations = []Location{}
	}
	for i := range ds.Areas {
		if ds.Areas[i].Categories == nil {
			ds.Areas[i].Categories = []Category{}
		}
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile dataset schema: %w", err)
	}

	def := schema.LookupPath(cue.ParsePath("#Dataset"))
	v := def.Unify(ctx.Encode(ds))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%s", cueerrors.Details(err, nil))
	}

	seen := make(map[int]string)
	for _, a := range ds.Areas {
		for _, c := range a.Categories {
			if prev, ok := seen[c.Number]; ok {
				return fmt.Errorf("category %02d appears in both %q and %q", c.Number, prev, a.Name)
			}
			seen[c.Number] = a.Name
		}
	}
	return nil
}
