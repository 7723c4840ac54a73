package steps

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/crbuild/sourceprep/pkg/api"
)

type toolRunStep struct {
	name string
	cfg  *api.ToolSpec
}

// NewToolRunStep creates a step that invokes an external helper command
// inside the source tree. Toolchain setup is advisory: a command that runs
// but exits nonzero is a partial success, not a failure, so it cannot sink
// an otherwise functional build.
func NewToolRunStep(name string, cfg *api.ToolSpec) Step {
	return &toolRunStep{name: name, cfg: cfg}
}

func (s *toolRunStep) Name() string { return s.name }

func (s *toolRunStep) Run(ctx StepContext) Outcome {
	if len(s.cfg.Command) == 0 {
		return failure("tool-run step has no command")
	}

	if s.cfg.OptionalPath != "" {
		if _, err := os.Stat(filepath.Join(ctx.SourceDir, s.cfg.OptionalPath)); err != nil {
			slog.Warn("helper script not found, skipping", "step", s.name, "path", s.cfg.OptionalPath)
			return Outcome{Status: Success, Diagnostic: fmt.Sprintf("%s not found, using defaults", s.cfg.OptionalPath)}
		}
	}

	slog.Debug("running helper command", "step", s.name, "command", s.cfg.Command[0])

	stdout, stderr, err := runCommand(ctx, s.cfg.Command[0], s.cfg.Command[1:]...)
	if err != nil {
		diag := commandDiagnostic(s.cfg.Command[0], err, stdout, stderr)
		slog.Warn("helper command had issues, continuing", "step", s.name, "error", diag)
		return partial(diag)
	}
	return success()
}
