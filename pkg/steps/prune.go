package steps

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/crbuild/sourceprep/pkg/api"
)

type pruneStep struct {
	name string
	cfg  *api.PruneSpec
}

// NewPruneStep creates a step that removes one path from the source tree.
// Removal is recursive for directories and idempotent: an already absent
// target is a success.
func NewPruneStep(name string, cfg *api.PruneSpec) Step {
	return &pruneStep{name: name, cfg: cfg}
}

func (s *pruneStep) Name() string { return s.name }

func (s *pruneStep) Run(ctx StepContext) Outcome {
	target := filepath.Join(ctx.SourceDir, s.cfg.Target)

	info, err := os.Stat(target)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Debug("prune target already absent", "step", s.name, "target", s.cfg.Target)
			return success()
		}
		return failure(fmt.Sprintf("stat %s: %v", s.cfg.Target, err))
	}

	if err := os.RemoveAll(target); err != nil {
		return failure(fmt.Sprintf("removing %s: %v", s.cfg.Target, err))
	}

	if info.IsDir() {
		slog.Debug("removed directory", "step", s.name, "target", s.cfg.Target)
	} else {
		slog.Debug("removed file", "step", s.name, "target", s.cfg.Target)
	}
	return success()
}
