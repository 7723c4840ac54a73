package pipeline

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/crbuild/sourceprep/pkg/api"
	"github.com/crbuild/sourceprep/pkg/gnargs"
	"github.com/crbuild/sourceprep/pkg/steps"
)

// Config carries the run-wide settings shared by all phases.
type Config struct {
	// ConfigDir holds the input specifications (patch dirs, list files).
	ConfigDir string
	// SourceDir is the tree being transformed.
	SourceDir string
	// Arch selects architecture-specific patches and generated flags.
	Arch string
	// Timeout bounds each external tool invocation.
	Timeout time.Duration
}

// BuildPhases turns a validated profile into executable phases. Each phase
// loads its own inputs when it runs, so a missing patch directory or list
// file fails that phase only and the rest of the pipeline still runs.
func BuildPhases(profile *api.Profile, cfg Config) []Phase {
	phases := make([]Phase, 0, len(profile.Phases))
	for _, pc := range profile.Phases {
		phases = append(phases, Phase{
			Name:  pc.Name,
			After: pc.After,
			Run:   phaseRun(pc, profile, cfg),
		})
	}
	return phases
}

func phaseRun(pc api.PhaseConfig, profile *api.Profile, cfg Config) func() SeriesResult {
	switch pc.Kind {
	case api.PhaseKindPatchSeries:
		return patchSeriesRun(pc, cfg)
	case api.PhaseKindSubstitution:
		return substitutionRun(pc, cfg)
	case api.PhaseKindPruning:
		return pruningRun(pc, cfg)
	case api.PhaseKindFlags:
		return flagsRun(pc, profile, cfg)
	case api.PhaseKindToolchain:
		return toolchainRun(pc, cfg)
	default:
		markers := expandMarkers(profile.Verify, cfg.Arch)
		return func() SeriesResult {
			return Probe(pc.Name, criticality(pc), cfg.SourceDir, profile.BuildDir, markers)
		}
	}
}

// expandMarkers substitutes ${arch} in marker text so a profile can verify
// architecture-specific output.
func expandMarkers(markers []api.Marker, arch string) []api.Marker {
	out := make([]api.Marker, len(markers))
	for i, m := range markers {
		m.Contains = api.ExpandArchString(m.Contains, arch)
		out[i] = m
	}
	return out
}

func patchSeriesRun(pc api.PhaseConfig, cfg Config) func() SeriesResult {
	crit := criticality(pc)
	return func() SeriesResult {
		dir := filepath.Join(cfg.ConfigDir, pc.Dir)
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return failedSeries(pc.Name, crit, fmt.Sprintf("patch directory not found: %s", pc.Dir))
		}

		names, err := api.LoadSeries(dir)
		if err != nil {
			return failedSeries(pc.Name, crit, fmt.Sprintf("loading series: %v", err))
		}

		selected := selectPatches(names, api.ExpandArch(pc.Include, cfg.Arch), pc.Exclude)

		defs := make([]api.Step, 0, len(selected))
		for _, name := range selected {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err != nil {
				slog.Warn("patch file not found, skipping", "series", pc.Name, "patch", name)
				continue
			}
			// The patch tools run with the source tree as their working
			// directory, so a config-relative path would resolve against the
			// wrong root.
			abs, err := filepath.Abs(path)
			if err != nil {
				return failedSeries(pc.Name, crit, fmt.Sprintf("resolving patch path: %v", err))
			}
			defs = append(defs, api.Step{
				Name:  name,
				Kind:  api.StepKindPatchApply,
				Patch: &api.PatchSpec{File: abs},
			})
		}

		list, err := buildSteps(defs)
		if err != nil {
			return failedSeries(pc.Name, crit, err.Error())
		}

		slog.Info("loaded patch series", "series", pc.Name, "patches", len(list))
		return RunSeries(pc.Name, crit, list, stepContext(cfg))
	}
}

// selectPatches applies the phase's include/exclude patterns to the series
// filenames. Include patterns pick architecture-specific patches, applied
// first; the rest of the series follows with any exclude matches dropped.
func selectPatches(names, includes, excludes []string) []string {
	if len(includes) == 0 && len(excludes) == 0 {
		return names
	}

	var archSpecific, general []string
	for _, name := range names {
		switch {
		case matchAny(includes, name):
			archSpecific = append(archSpecific, name)
		case !matchAny(excludes, name):
			general = append(general, name)
		}
	}
	return append(archSpecific, general...)
}

func matchAny(patterns []string, name string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

func substitutionRun(pc api.PhaseConfig, cfg Config) func() SeriesResult {
	crit := criticality(pc)
	return func() SeriesResult {
		targets, err := api.LoadList(filepath.Join(cfg.ConfigDir, pc.TargetsFile))
		if err != nil {
			return failedSeries(pc.Name, crit, fmt.Sprintf("loading substitution targets: %v", err))
		}
		pairs, err := api.LoadRegexPairs(filepath.Join(cfg.ConfigDir, pc.RegexFile))
		if err != nil {
			return failedSeries(pc.Name, crit, fmt.Sprintf("loading substitution patterns: %v", err))
		}

		defs := make([]api.Step, 0, len(targets))
		for _, target := range targets {
			defs = append(defs, api.Step{
				Name:       target,
				Kind:       api.StepKindSubstitute,
				Substitute: &api.SubstituteSpec{Target: target, Pairs: pairs},
			})
		}

		list, err := buildSteps(defs)
		if err != nil {
			return failedSeries(pc.Name, crit, err.Error())
		}

		slog.Info("loaded substitution targets", "series", pc.Name, "targets", len(list), "patterns", len(pairs))
		return RunSeries(pc.Name, crit, list, stepContext(cfg))
	}
}

func pruningRun(pc api.PhaseConfig, cfg Config) func() SeriesResult {
	crit := criticality(pc)
	return func() SeriesResult {
		paths, err := api.LoadList(filepath.Join(cfg.ConfigDir, pc.ListFile))
		if err != nil {
			return failedSeries(pc.Name, crit, fmt.Sprintf("loading pruning list: %v", err))
		}

		defs := make([]api.Step, 0, len(paths))
		for _, path := range paths {
			defs = append(defs, api.Step{
				Name:  path,
				Kind:  api.StepKindPrune,
				Prune: &api.PruneSpec{Target: path},
			})
		}

		list, err := buildSteps(defs)
		if err != nil {
			return failedSeries(pc.Name, crit, err.Error())
		}

		slog.Info("loaded pruning list", "series", pc.Name, "paths", len(list))
		return RunSeries(pc.Name, crit, list, stepContext(cfg))
	}
}

func flagsRun(pc api.PhaseConfig, profile *api.Profile, cfg Config) func() SeriesResult {
	crit := criticality(pc)
	return func() SeriesResult {
		var text string
		if pc.Generate {
			generated, err := gnargs.Generate(cfg.Arch)
			if err != nil {
				return failedSeries(pc.Name, crit, fmt.Sprintf("generating flags: %v", err))
			}
			text = generated
		} else {
			raw, err := os.ReadFile(filepath.Join(cfg.ConfigDir, pc.FlagsFile))
			if err != nil {
				return failedSeries(pc.Name, crit, fmt.Sprintf("reading flags file: %v", err))
			}
			text = string(raw)
		}

		dest := filepath.Join(profile.BuildDir, "args.gn")
		list, err := buildSteps([]api.Step{{
			Name: dest,
			Kind: api.StepKindFlagInject,
			Flags: &api.FlagSpec{
				Dest:         dest,
				Text:         text,
				CreateHeader: pc.CreateHeader,
				AppendHeader: pc.AppendHeader,
			},
		}})
		if err != nil {
			return failedSeries(pc.Name, crit, err.Error())
		}
		return RunSeries(pc.Name, crit, list, stepContext(cfg))
	}
}

func toolchainRun(pc api.PhaseConfig, cfg Config) func() SeriesResult {
	crit := criticality(pc)
	return func() SeriesResult {
		command := append([]string{"python3", pc.Script}, pc.Args...)
		if _, err := exec.LookPath("llvm-bolt"); err == nil {
			command = append(command, "--bolt")
		}

		list, err := buildSteps([]api.Step{{
			Name: filepath.Base(pc.Script),
			Kind: api.StepKindToolRun,
			Tool: &api.ToolSpec{Command: command, OptionalPath: pc.Script},
		}})
		if err != nil {
			return failedSeries(pc.Name, crit, err.Error())
		}
		return RunSeries(pc.Name, crit, list, stepContext(cfg))
	}
}

// buildSteps turns step definitions into executors via the step factory.
func buildSteps(defs []api.Step) ([]steps.Step, error) {
	list := make([]steps.Step, 0, len(defs))
	for _, def := range defs {
		step, err := steps.NewStep(def)
		if err != nil {
			return nil, fmt.Errorf("creating step %q: %w", def.Name, err)
		}
		list = append(list, step)
	}
	return list, nil
}

func criticality(pc api.PhaseConfig) string {
	if pc.Criticality == "" {
		return api.CriticalityBestEffort
	}
	return pc.Criticality
}

func stepContext(cfg Config) steps.StepContext {
	return steps.StepContext{SourceDir: cfg.SourceDir, Timeout: cfg.Timeout}
}
