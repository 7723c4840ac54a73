package steps

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/crbuild/sourceprep/pkg/api"
)

type flagInjectStep struct {
	name string
	cfg  *api.FlagSpec
}

// NewFlagInjectStep creates a step that appends raw GN flag text to the
// build configuration file, creating parent directories and the file itself
// when absent.
func NewFlagInjectStep(name string, cfg *api.FlagSpec) Step {
	return &flagInjectStep{name: name, cfg: cfg}
}

func (s *flagInjectStep) Name() string { return s.name }

func (s *flagInjectStep) Run(ctx StepContext) Outcome {
	dest := filepath.Join(ctx.SourceDir, s.cfg.Dest)

	if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
		return failure(fmt.Sprintf("creating parent directories for %s: %v", s.cfg.Dest, err))
	}

	_, statErr := os.Stat(dest)
	exists := statErr == nil

	f, err := os.OpenFile(dest, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return failure(fmt.Sprintf("opening %s: %v", s.cfg.Dest, err))
	}

	header := s.cfg.CreateHeader
	if exists {
		header = s.cfg.AppendHeader
	}

	writeErr := writeFlagBlock(f, header, s.cfg.Text)
	if closeErr := f.Close(); writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		return failure(fmt.Sprintf("writing %s: %v", s.cfg.Dest, writeErr))
	}

	slog.Debug("appended build flags", "step", s.name, "dest", s.cfg.Dest, "existing", exists)
	return success()
}

func writeFlagBlock(f *os.File, header, text string) error {
	if header != "" {
		if _, err := fmt.Fprintf(f, "%s\n", header); err != nil {
			return err
		}
	}
	_, err := f.WriteString(text)
	return err
}
