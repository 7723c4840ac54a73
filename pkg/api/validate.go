package api

import "fmt"

var validPhaseKinds = map[string]bool{
	PhaseKindPatchSeries:  true,
	PhaseKindSubstitution: true,
	PhaseKindPruning:      true,
	PhaseKindFlags:        true,
	PhaseKindToolchain:    true,
	PhaseKindVerify:       true,
}

var validCriticalities = map[string]bool{
	CriticalityAllOrNothing: true,
	CriticalityBestEffort:   true,
}

// Validate checks the profile for structural errors.
func (p *Profile) Validate() error {
	if len(p.Phases) == 0 {
		return fmt.Errorf("profile has no phases")
	}
	if p.Threshold <= 0 {
		return fmt.Errorf("threshold must be positive, got %d", p.Threshold)
	}
	if p.Threshold > len(p.Phases) {
		return fmt.Errorf("threshold %d exceeds phase count %d", p.Threshold, len(p.Phases))
	}

	names := make(map[string]int)
	for i, phase := range p.Phases {
		if phase.Name == "" {
			return fmt.Errorf("phase %d: name is required", i)
		}
		if prev, exists := names[phase.Name]; exists {
			return fmt.Errorf("phase %d: duplicate phase name %q (first defined at phase %d)", i, phase.Name, prev)
		}
		names[phase.Name] = i

		if !validPhaseKinds[phase.Kind] {
			return fmt.Errorf("phase %q: unknown kind %q", phase.Name, phase.Kind)
		}
		if phase.Criticality != "" && !validCriticalities[phase.Criticality] {
			return fmt.Errorf("phase %q: unknown criticality %q", phase.Name, phase.Criticality)
		}

		if err := validatePhaseConfig(phase); err != nil {
			return fmt.Errorf("phase %q: %w", phase.Name, err)
		}
	}

	for _, phase := range p.Phases {
		for _, dep := range phase.After {
			if _, exists := names[dep]; !exists {
				return fmt.Errorf("phase %q: after references undeclared phase %q", phase.Name, dep)
			}
			if dep == phase.Name {
				return fmt.Errorf("phase %q: after references itself", phase.Name)
			}
		}
	}

	return nil
}

func validatePhaseConfig(phase PhaseConfig) error {
	switch phase.Kind {
	case PhaseKindPatchSeries:
		if phase.Dir == "" {
			return fmt.Errorf("dir is required")
		}
	case PhaseKindSubstitution:
		if phase.TargetsFile == "" {
			return fmt.Errorf("targetsFile is required")
		}
		if phase.RegexFile == "" {
			return fmt.Errorf("regexFile is required")
		}
	case PhaseKindPruning:
		if phase.ListFile == "" {
			return fmt.Errorf("listFile is required")
		}
	case PhaseKindFlags:
		if phase.FlagsFile == "" && !phase.Generate {
			return fmt.Errorf("either flagsFile or generate is required")
		}
		if phase.FlagsFile != "" && phase.Generate {
			return fmt.Errorf("flagsFile and generate are mutually exclusive")
		}
	case PhaseKindToolchain:
		if phase.Script == "" {
			return fmt.Errorf("script is required")
		}
	}
	return nil
}
