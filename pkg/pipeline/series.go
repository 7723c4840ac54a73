package pipeline

import (
	"log/slog"

	"github.com/crbuild/sourceprep/pkg/api"
	"github.com/crbuild/sourceprep/pkg/steps"
)

// StepOutcome pairs one executed step with its result.
type StepOutcome struct {
	Step    string
	Outcome steps.Outcome
}

// SeriesResult aggregates the outcomes of one named step series.
type SeriesResult struct {
	Name        string
	Criticality string
	Outcomes    []StepOutcome
	Succeeded   int
	Total       int
	Passed      bool
}

// RunSeries executes the steps in order and aggregates their outcomes.
//
// An all-or-nothing series aborts on the first failure: later patches in a
// tightly coupled series assume the earlier ones landed, so attempting them
// would only produce noise. A best-effort series runs every step and passes
// when at least one succeeded. Partial successes count as succeeded either
// way.
func RunSeries(name, criticality string, list []steps.Step, sctx steps.StepContext) SeriesResult {
	result := SeriesResult{
		Name:        name,
		Criticality: criticality,
		Total:       len(list),
	}

	for _, step := range list {
		outcome := step.Run(sctx)
		result.Outcomes = append(result.Outcomes, StepOutcome{Step: step.Name(), Outcome: outcome})

		switch outcome.Status {
		case steps.Success:
			slog.Info("step succeeded", "series", name, "step", step.Name())
		case steps.PartialSuccess:
			slog.Warn("step partially succeeded", "series", name, "step", step.Name(), "diagnostic", outcome.Diagnostic)
		case steps.Failure:
			slog.Error("step failed", "series", name, "step", step.Name(), "diagnostic", outcome.Diagnostic)
		}

		if outcome.Counted() {
			result.Succeeded++
		} else if criticality == api.CriticalityAllOrNothing {
			slog.Error("aborting series after failure", "series", name, "step", step.Name())
			break
		}
	}

	switch criticality {
	case api.CriticalityAllOrNothing:
		result.Passed = result.Succeeded == result.Total
	default:
		result.Passed = result.Succeeded > 0
	}

	slog.Info("series finished",
		"series", name,
		"succeeded", result.Succeeded,
		"total", result.Total,
		"passed", result.Passed)
	return result
}

// failedSeries builds the result for a series whose inputs could not be
// loaded at all.
func failedSeries(name, criticality, diagnostic string) SeriesResult {
	slog.Error("series could not be prepared", "series", name, "diagnostic", diagnostic)
	return SeriesResult{
		Name:        name,
		Criticality: criticality,
		Outcomes: []StepOutcome{{
			Step:    name,
			Outcome: steps.Outcome{Status: steps.Failure, Diagnostic: diagnostic},
		}},
		Total:  1,
		Passed: false,
	}
}
