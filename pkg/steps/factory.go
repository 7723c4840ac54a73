package steps

import (
	"fmt"

	"github.com/crbuild/sourceprep/pkg/api"
)

// NewStep creates a Step implementation from a step definition.
func NewStep(def api.Step) (Step, error) {
	switch def.Kind {
	case api.StepKindPatchApply:
		if def.Patch == nil {
			return nil, fmt.Errorf("step %q: patch payload is required", def.Name)
		}
		return NewPatchStep(def.Name, def.Patch), nil
	case api.StepKindSubstitute:
		if def.Substitute == nil {
			return nil, fmt.Errorf("step %q: substitute payload is required", def.Name)
		}
		return NewSubstituteStep(def.Name, def.Substitute), nil
	case api.StepKindPrune:
		if def.Prune == nil {
			return nil, fmt.Errorf("step %q: prune payload is required", def.Name)
		}
		return NewPruneStep(def.Name, def.Prune), nil
	case api.StepKindFlagInject:
		if def.Flags == nil {
			return nil, fmt.Errorf("step %q: flags payload is required", def.Name)
		}
		return NewFlagInjectStep(def.Name, def.Flags), nil
	case api.StepKindToolRun:
		if def.Tool == nil {
			return nil, fmt.Errorf("step %q: tool payload is required", def.Name)
		}
		return NewToolRunStep(def.Name, def.Tool), nil
	default:
		return nil, fmt.Errorf("unknown step kind: %s", def.Kind)
	}
}
