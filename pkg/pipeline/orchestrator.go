package pipeline

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dominikbraun/graph"
)

// Phase is one named pipeline phase. After lists phases that must run
// earlier; Run produces the phase's aggregated result.
type Phase struct {
	Name  string
	After []string
	Run   func() SeriesResult
}

// Verdict is the pipeline's final pass/fail decision.
type Verdict struct {
	Results   []SeriesResult
	Passed    []string
	Threshold int
	OK        bool
}

// Orchestrator runs all phases in dependency order and computes the final
// verdict from a minimum-passed-phases threshold. Phases run unconditionally:
// a failed phase never blocks the ones after it, because every phase operates
// on whatever tree state exists and is independently idempotent. The
// threshold, rather than an all-phases rule, keeps advisory phases (toolchain
// setup, verification) from sinking an otherwise successful build.
type Orchestrator struct {
	phases    []Phase
	threshold int
}

// NewOrchestrator creates an orchestrator for the given phases.
func NewOrchestrator(threshold int, phases []Phase) *Orchestrator {
	return &Orchestrator{phases: phases, threshold: threshold}
}

// Run executes every phase and returns the verdict. An error is returned
// only for an unsatisfiable phase order (a dependency cycle), never for
// phase failures.
func (o *Orchestrator) Run() (Verdict, error) {
	ordered, err := o.sortPhases()
	if err != nil {
		return Verdict{}, err
	}

	verdict := Verdict{Threshold: o.threshold}

	for _, phase := range ordered {
		slog.Info("running phase", "phase", phase.Name)
		result := phase.Run()
		verdict.Results = append(verdict.Results, result)
		if result.Passed {
			verdict.Passed = append(verdict.Passed, phase.Name)
		}
	}

	verdict.OK = len(verdict.Passed) >= o.threshold

	slog.Info("pipeline finished",
		"completed", strings.Join(verdict.Passed, ", "),
		"passed", len(verdict.Passed),
		"threshold", o.threshold,
		"ok", verdict.OK)
	return verdict, nil
}

// sortPhases orders phases by their declared dependencies, keeping the
// declaration order as tiebreak.
func (o *Orchestrator) sortPhases() ([]Phase, error) {
	byName := make(map[string]Phase, len(o.phases))
	declIndex := make(map[string]int, len(o.phases))

	g := graph.New(graph.StringHash, graph.Directed(), graph.PreventCycles())
	for i, phase := range o.phases {
		byName[phase.Name] = phase
		declIndex[phase.Name] = i
		if err := g.AddVertex(phase.Name); err != nil {
			return nil, fmt.Errorf("adding phase %q: %w", phase.Name, err)
		}
	}

	for _, phase := range o.phases {
		for _, dep := range phase.After {
			if err := g.AddEdge(dep, phase.Name); err != nil {
				return nil, fmt.Errorf("ordering phase %q after %q: %w", phase.Name, dep, err)
			}
		}
	}

	order, err := graph.StableTopologicalSort(g, func(a, b string) bool {
		return declIndex[a] < declIndex[b]
	})
	if err != nil {
		return nil, fmt.Errorf("sorting phases: %w", err)
	}

	ordered := make([]Phase, 0, len(order))
	for _, name := range order {
		ordered = append(ordered, byName[name])
	}
	return ordered, nil
}
