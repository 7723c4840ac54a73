package api

import "regexp"

const (
	StepKindPatchApply = "patch-apply"
	StepKindSubstitute = "substitute"
	StepKindPrune      = "prune"
	StepKindFlagInject = "flag-inject"
	StepKindToolRun    = "tool-run"

	PhaseKindPatchSeries  = "patch-series"
	PhaseKindSubstitution = "substitution"
	PhaseKindPruning      = "pruning"
	PhaseKindFlags        = "flags"
	PhaseKindToolchain    = "toolchain"
	PhaseKindVerify       = "verify"

	CriticalityAllOrNothing = "all-or-nothing"
	CriticalityBestEffort   = "best-effort"

	// DefaultBuildDir is where args.gn lives relative to the source tree.
	DefaultBuildDir = "out/Ultimate"

	// SeriesManifestName is the ordering manifest inside a patch directory.
	SeriesManifestName = "series"
)

// Step is one transformation unit. Exactly one kind-specific payload is set,
// matching Kind. Steps are immutable once loaded from their list files.
type Step struct {
	Name       string
	Kind       string
	Patch      *PatchSpec
	Substitute *SubstituteSpec
	Prune      *PruneSpec
	Flags      *FlagSpec
	Tool       *ToolSpec
}

// PatchSpec points at one patch file to apply against the source tree.
type PatchSpec struct {
	File string
}

// SubstituteSpec rewrites one file in the source tree using ordered regex
// pairs. Target is relative to the source tree root.
type SubstituteSpec struct {
	Target string
	Pairs  []RegexPair
}

// RegexPair is one compiled pattern@replacement entry.
type RegexPair struct {
	Pattern     *regexp.Regexp
	Replacement string
}

// PruneSpec removes one path (file or directory) from the source tree.
type PruneSpec struct {
	Target string
}

// FlagSpec appends raw GN text to a configuration file in the source tree.
// CreateHeader is written when Dest does not exist yet, AppendHeader when it
// does.
type FlagSpec struct {
	Dest         string
	Text         string
	CreateHeader string
	AppendHeader string
}

// ToolSpec invokes an external helper command inside the source tree.
// OptionalPath, when set, names a file relative to the source tree that must
// exist for the command to be attempted; an absent file is not a failure.
type ToolSpec struct {
	Command      []string
	OptionalPath string
}

// Profile is the YAML pipeline definition: which phases run, in what
// dependency order, and how many must pass.
type Profile struct {
	Name      string        `yaml:"name"`
	Threshold int           `yaml:"threshold"`
	BuildDir  string        `yaml:"buildDir"`
	Phases    []PhaseConfig `yaml:"phases"`
	Verify    []Marker      `yaml:"verify"`
}

// PhaseConfig declares a single named phase.
type PhaseConfig struct {
	Name        string   `yaml:"name"`
	Kind        string   `yaml:"kind"`
	Criticality string   `yaml:"criticality"`
	After       []string `yaml:"after,omitempty"`

	// patch-series
	Dir     string   `yaml:"dir,omitempty"`
	Include []string `yaml:"include,omitempty"`
	Exclude []string `yaml:"exclude,omitempty"`

	// substitution
	TargetsFile string `yaml:"targetsFile,omitempty"`
	RegexFile   string `yaml:"regexFile,omitempty"`

	// pruning
	ListFile string `yaml:"listFile,omitempty"`

	// flags
	FlagsFile    string `yaml:"flagsFile,omitempty"`
	Generate     bool   `yaml:"generate,omitempty"`
	CreateHeader string `yaml:"createHeader,omitempty"`
	AppendHeader string `yaml:"appendHeader,omitempty"`

	// toolchain
	Script string   `yaml:"script,omitempty"`
	Args   []string `yaml:"args,omitempty"`
}

// Marker is one verification probe entry. When ExpectChanged is set the
// probe only checks that File exists (the weak "should be modified" check);
// otherwise it checks that File contains Contains. InBuildDir resolves File
// against the build output directory instead of the source tree root.
type Marker struct {
	File          string `yaml:"file"`
	Contains      string `yaml:"contains,omitempty"`
	ExpectChanged bool   `yaml:"expectChanged,omitempty"`
	InBuildDir    bool   `yaml:"inBuildDir,omitempty"`
}
