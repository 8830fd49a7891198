package harness

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_FolderNumbering(t *testing.T) {
	scenario := &Scenario{
		Name:        "folder_numbering",
		Description: "Allocate, create, then refuse to delete the parent",
		Flow: []Step{
			{Op: "folder.next", Args: map[string]any{"category_id": 7}},
			{Op: "folder.create", Args: map[string]any{"category_id": 7, "name": "Taxes"}},
			{Op: "category.delete", Args: map[string]any{"id": 7}, Expect: &Expect{Error: "HAS_CHILDREN"}},
		},
		Assertions: []Assertion{{Type: AssertRowCount, Table: "folders", Count: 1}},
	}

	result, err := RunWithGolden(t, scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestTraceSnapshot_EncodeIsStable(t *testing.T) {
	snap := TraceSnapshot{
		ScenarioName: "stable",
		Trace: []TraceEvent{{
			Seq:     1,
			Op:      "search",
			Phase:   "flow",
			Args:    map[string]any{"query": "<tax>", "b": 1, "a": 2},
			Outcome: OutcomeOK,
		}},
	}

	first, err := snap.Encode()
	require.NoError(t, err)
	second, err := snap.Encode()
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Contains(t, string(first), `"query": "<tax>"`)
	assert.Less(t, strings.Index(string(first), `"a"`), strings.Index(string(first), `"b"`))
}
