package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jmeg8r/jdex/internal/store"
)

// Scenario is one conformance scenario: a seeded index, a sequence of
// engine operations with expected outcomes, and assertions over the
// activity log and the final tables.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Seed is a dataset file written before setup, relative to the
	// scenario file. Empty means the built-in default dataset.
	Seed string `yaml:"seed,omitempty"`

	// Clock is the fixed RFC3339 instant every timestamp is taken from.
	// Empty means DefaultClock.
	Clock string `yaml:"clock,omitempty"`

	// Setup contains operations run before the flow. Setup steps must
	// succeed.
	Setup []Step `yaml:"setup,omitempty"`

	// Flow contains the operations under test.
	Flow []Step `yaml:"flow"`

	// Assertions validate the activity log and final state.
	Assertions []Assertion `yaml:"assertions"`
}

// DefaultClock is the instant scenarios run at unless they set clock.
const DefaultClock = "2024-01-15T10:00:00Z"

// Step is one engine operation.
type Step struct {
	// Op names the operation, e.g. "folder.create". See Operations.
	Op string `yaml:"op"`

	// Args are the operation's arguments.
	Args map[string]any `yaml:"args"`

	// Expect specifies the expected outcome. Nil means the step must
	// succeed and its result is not checked.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect specifies a step's expected outcome. Error and Result are
// mutually exclusive.
type Expect struct {
	// Error is the expected error code, e.g. "HAS_CHILDREN".
	Error string `yaml:"error,omitempty"`

	// Result holds expected result fields (subset match).
	Result map[string]any `yaml:"result,omitempty"`
}

// Assertion validates the activity log or a table.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Entry is the activity entry to look for (activity_contains) or the
	// filter to count with (activity_count). Subset match on action,
	// entity_type, entity_number and details.
	Entry map[string]any `yaml:"entry,omitempty"`

	// Entries are activity entries expected in this order, oldest
	// first (activity_order). Other entries may come between them.
	Entries []map[string]any `yaml:"entries,omitempty"`

	// Count is the expected number of matches (activity_count, row_count).
	Count int `yaml:"count,omitempty"`

	// Table is the table to query (final_state, row_count).
	Table string `yaml:"table,omitempty"`

	// Where filters rows by column equality (final_state, row_count).
	Where map[string]any `yaml:"where,omitempty"`

	// Expect holds expected column values of the single matching row
	// (final_state). Subset match.
	Expect map[string]any `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertActivityContains = "activity_contains"
	AssertActivityOrder    = "activity_order"
	AssertActivityCount    = "activity_count"
	AssertFinalState       = "final_state"
	AssertRowCount         = "row_count"
)

// LoadScenario reads and parses a scenario YAML file. The seed path is
// resolved relative to the scenario file. Unknown fields and missing
// required fields are errors.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict decoding catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Seed != "" && !filepath.IsAbs(scenario.Seed) {
		scenario.Seed = filepath.Join(filepath.Dir(path), scenario.Seed)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Clock != "" {
		if _, err := time.Parse(time.RFC3339, s.Clock); err != nil {
			return fmt.Errorf("clock must be RFC3339: %w", err)
		}
	}

	if s.Seed != "" {
		if _, err := os.Stat(s.Seed); err != nil {
			return fmt.Errorf("seed file not found: %s", s.Seed)
		}
	}

	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Setup {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("setup[%d]: %w", i, err)
		}
		if step.Expect != nil && step.Expect.Error != "" {
			return fmt.Errorf("setup[%d]: setup steps cannot expect an error", i)
		}
	}

	for i, step := range s.Flow {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("flow[%d]: %w", i, err)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(step Step) error {
	if step.Op == "" {
		return fmt.Errorf("op is required")
	}
	if _, ok := operations[step.Op]; !ok {
		return fmt.Errorf("unknown op %q", step.Op)
	}
	if step.Args == nil {
		return fmt.Errorf("args is required (use empty map if no args)")
	}
	if step.Expect != nil && step.Expect.Error != "" && step.Expect.Result != nil {
		return fmt.Errorf("expect: error and result are mutually exclusive")
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertActivityContains:
		if len(a.Entry) == 0 {
			return fmt.Errorf("assertions[%d]: entry is required for activity_contains", index)
		}
	case AssertActivityOrder:
		if len(a.Entries) == 0 {
			return fmt.Errorf("assertions[%d]: entries list is required for activity_order", index)
		}
	case AssertActivityCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for activity_count", index)
		}
	case AssertFinalState:
		if !store.IsTable(a.Table) {
			return fmt.Errorf("assertions[%d]: final_state needs one of the index tables, got %q", index, a.Table)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	case AssertRowCount:
		if !store.IsTable(a.Table) {
			return fmt.Errorf("assertions[%d]: row_count needs one of the index tables, got %q", index, a.Table)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for row_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
