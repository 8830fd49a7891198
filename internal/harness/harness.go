package harness

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/jmeg8r/jdex/internal/engine"
	"github.com/jmeg8r/jdex/internal/jd"
	"github.com/jmeg8r/jdex/internal/seed"
	"github.com/jmeg8r/jdex/internal/store"
	"github.com/jmeg8r/jdex/internal/testutil"
)

// ExportID is the export document id every scenario engine generates.
const ExportID = "00000000-0000-7000-8000-000000000000"

// Harness runs scenarios against a real engine over a private store in a
// temporary directory, with a fixed clock and fixed export ids. The store
// is file-backed so snapshot import works.
type Harness struct {
	dir    string
	store  *store.Store
	engine *engine.Engine
	clock  *testutil.FixedClock
	log    zerolog.Logger
}

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Open a fresh store and seed it
//  2. Execute setup steps, any failure aborts the run
//  3. Execute flow steps, checking each against its expect clause
//  4. Evaluate assertions against the activity log and final tables
//
// The returned error covers harness failures only. Unmet expectations
// and assertions land in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario, zerolog.Nop())
}

// RunContext is Run with a caller context and logger.
func RunContext(ctx context.Context, scenario *Scenario, log zerolog.Logger) (*Result, error) {
	h, err := newHarness(ctx, scenario, log)
	if err != nil {
		return nil, err
	}
	defer h.close()

	result := NewResult()
	if err := h.executeSetup(ctx, scenario.Setup, result); err != nil {
		return nil, fmt.Errorf("failed to execute setup: %w", err)
	}

	if err := h.executeFlow(ctx, scenario.Flow, result); err != nil {
		return nil, fmt.Errorf("failed to execute flow: %w", err)
	}

	actx := &AssertionContext{Store: h.store, Ctx: ctx}
	for _, msg := range EvaluateAssertions(scenario.Assertions, actx) {
		result.AddError(msg)
	}

	h.log.Debug().Str("scenario", scenario.Name).Bool("pass", result.Pass).Int("steps", len(result.Trace)).Msg("scenario finished")
	return result, nil
}

func newHarness(ctx context.Context, scenario *Scenario, log zerolog.Logger) (*Harness, error) {
	at := scenario.Clock
	if at == "" {
		at = DefaultClock
	}
	start, err := time.Parse(time.RFC3339, at)
	if err != nil {
		return nil, fmt.Errorf("invalid clock %q: %w", at, err)
	}

	opts := []engine.Option{
		engine.WithLogger(log),
		engine.WithIDGenerator(testutil.NewFixedIDs(ExportID)),
	}
	if scenario.Seed != "" {
		ds, err := seed.Load(scenario.Seed)
		if err != nil {
			return nil, err
		}
		opts = append(opts, engine.WithSeed(ds))
	}

	dir, err := os.MkdirTemp("", "jdex-scenario-")
	if err != nil {
		return nil, fmt.Errorf("failed to create scenario dir: %w", err)
	}
	st, err := store.Open(filepath.Join(dir, "jdex.db"))
	if err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	clock := testutil.NewFixedClock(start)
	opts = append(opts, engine.WithClock(clock))
	eng := engine.New(st, opts...)
	h := &Harness{dir: dir, store: st, engine: eng, clock: clock, log: log}
	if _, err := eng.EnsureSeeded(ctx); err != nil {
		h.close()
		return nil, fmt.Errorf("failed to seed store: %w", err)
	}
	return h, nil
}

func (h *Harness) close() {
	if err := h.store.Close(); err != nil {
		h.log.Warn().Err(err).Msg("close scenario store")
	}
	os.RemoveAll(h.dir)
}

// executeSetup runs setup steps in order. Setup establishes state the
// flow depends on, so the first failure stops the run.
func (h *Harness) executeSetup(ctx context.Context, setup []Step, result *Result) error {
	for i, step := range setup {
		ev, err := h.execute(ctx, "setup", step)
		if err != nil {
			return fmt.Errorf("setup step %d (%s): %w", i, step.Op, err)
		}
		result.addTrace(ev)
		if ev.Outcome != OutcomeOK {
			return fmt.Errorf("setup step %d (%s) failed with %s", i, step.Op, ev.Outcome)
		}
		if step.Expect != nil {
			if msg := checkResult(step.Expect.Result, ev.Result); msg != "" {
				return fmt.Errorf("setup step %d (%s): %s", i, step.Op, msg)
			}
		}
	}
	return nil
}

// executeFlow runs flow steps and checks each against its expect clause.
// A step without an expect clause must succeed.
func (h *Harness) executeFlow(ctx context.Context, flow []Step, result *Result) error {
	for i, step := range flow {
		ev, err := h.execute(ctx, "flow", step)
		if err != nil {
			return fmt.Errorf("flow step %d (%s): %w", i, step.Op, err)
		}
		result.addTrace(ev)

		want := Expect{}
		if step.Expect != nil {
			want = *step.Expect
		}
		wantOutcome := OutcomeOK
		if want.Error != "" {
			wantOutcome = want.Error
		}

		if ev.Outcome != wantOutcome {
			result.AddError(fmt.Sprintf("flow[%d] %s: expected outcome %s, got %s", i, step.Op, wantOutcome, ev.Outcome))
			continue
		}
		if msg := checkResult(want.Result, ev.Result); msg != "" {
			result.AddError(fmt.Sprintf("flow[%d] %s: %s", i, step.Op, msg))
		}
	}
	return nil
}

// execute runs one step. Engine errors become the event's outcome; any
// other error (bad arguments, encoding) is returned. The clock advances
// one second per step so timestamps order the way steps ran.
func (h *Harness) execute(ctx context.Context, phase string, step Step) (TraceEvent, error) {
	defer h.clock.Advance(time.Second)

	ev := TraceEvent{Op: step.Op, Phase: phase, Args: step.Args, Outcome: OutcomeOK}
	op, ok := operations[step.Op]
	if !ok {
		return ev, fmt.Errorf("unknown op %q", step.Op)
	}

	out, err := op(ctx, h.engine, step.Args)
	if err != nil {
		code := jd.CodeOf(err)
		if code == "" {
			return ev, err
		}
		ev.Outcome = string(code)
		h.log.Debug().Str("op", step.Op).Str("code", ev.Outcome).Msg("step refused")
		return ev, nil
	}

	ev.Result, err = normalize(out)
	if err != nil {
		return ev, fmt.Errorf("normalize result: %w", err)
	}
	return ev, nil
}

// checkResult reports how actual fails to contain want, or "" when it
// does. want is normalized first so YAML integers compare equal to JSON
// numbers.
func checkResult(want map[string]any, actual any) string {
	if len(want) == 0 {
		return ""
	}
	norm, err := normalize(want)
	if err != nil {
		return fmt.Sprintf("cannot normalize expected result: %v", err)
	}
	if !subsetMatch(norm, actual) {
		return fmt.Sprintf("result mismatch (-want +got):\n%s", cmp.Diff(norm, actual))
	}
	return ""
}

// subsetMatch reports whether every key in want appears in actual with a
// matching value. Maps match as subsets at every level; arrays match
// element-wise and must have the same length.
func subsetMatch(want, actual any) bool {
	switch w := want.(type) {
	case map[string]any:
		a, ok := actual.(map[string]any)
		if !ok {
			return false
		}
		for k, wv := range w {
			av, ok := a[k]
			if !ok || !subsetMatch(wv, av) {
				return false
			}
		}
		return true
	case []any:
		a, ok := actual.([]any)
		if !ok || len(a) != len(w) {
			return false
		}
		for i := range w {
			if !subsetMatch(w[i], a[i]) {
				return false
			}
		}
		return true
	default:
		return cmp.Equal(want, actual)
	}
}

// DirResult is the outcome of every scenario in a directory.
type DirResult struct {
	Scenarios map[string]*Result
	Failed    []string
}

// Pass reports whether every scenario passed.
func (d *DirResult) Pass() bool {
	return len(d.Failed) == 0
}

// Summary renders one line per failed scenario with its errors.
func (d *DirResult) Summary() string {
	if d.Pass() {
		return fmt.Sprintf("%d scenario(s) passed", len(d.Scenarios))
	}
	var b strings.Builder
	for _, name := range d.Failed {
		fmt.Fprintf(&b, "%s:\n", name)
		for _, e := range d.Scenarios[name].Errors {
			fmt.Fprintf(&b, "  - %s\n", e)
		}
	}
	return b.String()
}

// RunDir loads and runs every *.yaml scenario in dir, in name order.
// Load or harness failures abort; scenario failures are collected.
func RunDir(dir string) (*DirResult, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("scenario directory: %w", err)
		}
		return nil, fmt.Errorf("no scenarios in %s", dir)
	}
	sort.Strings(paths)

	out := &DirResult{Scenarios: make(map[string]*Result, len(paths))}
	for _, path := range paths {
		sc, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if _, dup := out.Scenarios[sc.Name]; dup {
			return nil, fmt.Errorf("%s: duplicate scenario name %q", path, sc.Name)
		}
		res, err := Run(sc)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		out.Scenarios[sc.Name] = res
		if !res.Pass {
			out.Failed = append(out.Failed, sc.Name)
		}
	}
	return out, nil
}
