package steps

import "time"

// Status is the tri-state result of one step.
type Status int

const (
	Success Status = iota
	PartialSuccess
	Failure
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case PartialSuccess:
		return "partial-success"
	case Failure:
		return "failure"
	default:
		return "unknown"
	}
}

// Outcome is the result of running one step. Diagnostic carries the
// underlying tool or I/O error text when Status is not Success.
type Outcome struct {
	Status     Status
	Diagnostic string
}

// Counted reports whether the outcome counts toward a series' succeeded
// total. Partial application is a soft success.
func (o Outcome) Counted() bool {
	return o.Status == Success || o.Status == PartialSuccess
}

func success() Outcome {
	return Outcome{Status: Success}
}

func partial(diagnostic string) Outcome {
	return Outcome{Status: PartialSuccess, Diagnostic: diagnostic}
}

func failure(diagnostic string) Outcome {
	return Outcome{Status: Failure, Diagnostic: diagnostic}
}

// StepContext provides the runtime context for a step.
type StepContext struct {
	// SourceDir is the root of the tree being transformed.
	SourceDir string
	// Timeout bounds each external tool invocation. Zero means no limit.
	Timeout time.Duration
}

// Step is the interface all transformation steps implement. Run never
// returns an error: every underlying failure is converted into a Failure
// outcome so one bad step cannot abort the enclosing run.
type Step interface {
	Name() string
	Run(ctx StepContext) Outcome
}
