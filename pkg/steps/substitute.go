package steps

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/crbuild/sourceprep/pkg/api"
)

type substituteStep struct {
	name string
	cfg  *api.SubstituteSpec
}

// NewSubstituteStep creates a domain substitution step for one target file.
// The regex pairs are applied in list order across the whole file content;
// the file is written back only when something changed. A target that is
// missing or not plain text is skipped, not failed.
func NewSubstituteStep(name string, cfg *api.SubstituteSpec) Step {
	return &substituteStep{name: name, cfg: cfg}
}

func (s *substituteStep) Name() string { return s.name }

func (s *substituteStep) Run(ctx StepContext) Outcome {
	target := filepath.Join(ctx.SourceDir, s.cfg.Target)

	info, err := os.Stat(target)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Debug("substitution target not found", "step", s.name, "target", s.cfg.Target)
			return success()
		}
		return failure(fmt.Sprintf("stat %s: %v", s.cfg.Target, err))
	}

	content, err := os.ReadFile(target)
	if err != nil {
		return failure(fmt.Sprintf("reading %s: %v", s.cfg.Target, err))
	}

	if bytes.IndexByte(content, 0) >= 0 {
		slog.Debug("skipping binary substitution target", "step", s.name, "target", s.cfg.Target)
		return success()
	}

	updated := content
	for _, pair := range s.cfg.Pairs {
		updated = pair.Pattern.ReplaceAll(updated, []byte(pair.Replacement))
	}

	if bytes.Equal(updated, content) {
		return success()
	}

	if err := os.WriteFile(target, updated, info.Mode()); err != nil {
		return failure(fmt.Sprintf("writing %s: %v", s.cfg.Target, err))
	}

	slog.Debug("substituted domains", "step", s.name, "target", s.cfg.Target)
	return success()
}
