package steps

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/crbuild/sourceprep/pkg/api"
)

type patchStep struct {
	name string
	cfg  *api.PatchSpec
}

// NewPatchStep creates a patch application step. The primary strategy is
// git-apply (whitespace-insensitive but atomic); on a nonzero exit the step
// falls back to the more permissive patch tool, which may leave some hunks
// rejected. A fallback run that reports rejected hunks is a partial success.
func NewPatchStep(name string, cfg *api.PatchSpec) Step {
	return &patchStep{name: name, cfg: cfg}
}

func (s *patchStep) Name() string { return s.name }

func (s *patchStep) Run(ctx StepContext) Outcome {
	primaryErr := s.gitApply(ctx)
	if primaryErr == "" {
		slog.Debug("patch applied", "step", s.name, "patch", filepath.Base(s.cfg.File))
		return success()
	}

	slog.Debug("primary apply failed, trying fallback", "step", s.name, "patch", filepath.Base(s.cfg.File))
	return s.patchFallback(ctx, primaryErr)
}

func (s *patchStep) gitApply(ctx StepContext) string {
	stdout, stderr, err := runCommand(ctx,
		"git", "apply", "--ignore-whitespace", "--ignore-space-change", s.cfg.File)
	if err == nil {
		return ""
	}
	return commandDiagnostic("git apply", err, stdout, stderr)
}

func (s *patchStep) patchFallback(ctx StepContext, primaryErr string) Outcome {
	stdout, stderr, err := runCommand(ctx,
		"patch", "-p1", "-i", s.cfg.File, "--ignore-whitespace", "--reject-file=-")
	if err == nil {
		return success()
	}

	// patch exits nonzero when hunks were rejected; its output reports how
	// many. A patch where at least one hunk landed is a partial success.
	if someHunksApplied(stdout) {
		slog.Warn("patch applied partially", "step", s.name, "patch", filepath.Base(s.cfg.File))
		return partial(commandDiagnostic("patch", err, stdout, stderr))
	}

	fallbackErr := commandDiagnostic("patch", err, stdout, stderr)
	return failure(primaryErr + "; " + fallbackErr)
}

var hunksFailedRe = regexp.MustCompile(`(\d+) out of (\d+) hunks? FAILED`)

// someHunksApplied inspects the patch tool's output after a nonzero exit.
// "N out of M hunks FAILED" with N < M means the rest landed; hunks applied
// at an offset are reported as "succeeded".
func someHunksApplied(stdout string) bool {
	matches := hunksFailedRe.FindAllStringSubmatch(stdout, -1)
	for _, m := range matches {
		rejected, _ := strconv.Atoi(m[1])
		total, _ := strconv.Atoi(m[2])
		if rejected < total {
			return true
		}
	}
	if len(matches) == 0 {
		return false
	}
	return strings.Contains(strings.ToLower(stdout), "succeeded")
}

// runCommand executes an external tool inside the source tree, bounded by
// the step timeout.
func runCommand(sctx StepContext, name string, args ...string) (stdout, stderr string, err error) {
	ctx := context.Background()
	if sctx.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, sctx.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = sctx.SourceDir

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err = cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = fmt.Errorf("timed out after %s", sctx.Timeout)
	}
	return outBuf.String(), errBuf.String(), err
}

func commandDiagnostic(tool string, err error, stdout, stderr string) string {
	msg := strings.TrimSpace(stderr)
	if msg == "" {
		msg = strings.TrimSpace(stdout)
	}
	if msg == "" {
		return fmt.Sprintf("%s: %v", tool, err)
	}
	return fmt.Sprintf("%s: %v: %s", tool, err, msg)
}
