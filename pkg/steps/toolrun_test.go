package steps

import (
	"strings"
	"testing"
	"time"

	"github.com/crbuild/sourceprep/pkg/api"
)

func TestToolRunStep_OptionalScriptMissing(t *testing.T) {
	step := NewToolRunStep("update.py", &api.ToolSpec{
		Command:      []string{"python3", "tools/clang/scripts/update.py"},
		OptionalPath: "tools/clang/scripts/update.py",
	})

	outcome := step.Run(StepContext{SourceDir: t.TempDir()})
	if outcome.Status != Success {
		t.Fatalf("missing optional script should succeed, got %v", outcome.Status)
	}
	if !strings.Contains(outcome.Diagnostic, "not found") {
		t.Errorf("expected diagnostic to mention the missing script, got %q", outcome.Diagnostic)
	}
}

func TestToolRunStep_CommandSucceeds(t *testing.T) {
	skipWithoutTools(t, "sh")

	step := NewToolRunStep("noop", &api.ToolSpec{
		Command: []string{"sh", "-c", "exit 0"},
	})

	outcome := step.Run(StepContext{SourceDir: t.TempDir(), Timeout: time.Minute})
	if outcome.Status != Success {
		t.Fatalf("expected success, got %v (%s)", outcome.Status, outcome.Diagnostic)
	}
}

func TestToolRunStep_CommandFailureIsPartial(t *testing.T) {
	skipWithoutTools(t, "sh")

	step := NewToolRunStep("broken", &api.ToolSpec{
		Command: []string{"sh", "-c", "echo bootstrap trouble >&2; exit 3"},
	})

	outcome := step.Run(StepContext{SourceDir: t.TempDir(), Timeout: time.Minute})
	if outcome.Status != PartialSuccess {
		t.Fatalf("advisory tool failure should be partial, got %v", outcome.Status)
	}
	if !strings.Contains(outcome.Diagnostic, "bootstrap trouble") {
		t.Errorf("expected stderr in diagnostic, got %q", outcome.Diagnostic)
	}
}

func TestToolRunStep_Timeout(t *testing.T) {
	skipWithoutTools(t, "sh")

	step := NewToolRunStep("slow", &api.ToolSpec{
		Command: []string{"sh", "-c", "sleep 5"},
	})

	outcome := step.Run(StepContext{SourceDir: t.TempDir(), Timeout: 50 * time.Millisecond})
	if outcome.Status != PartialSuccess {
		t.Fatalf("expected partial for timed-out advisory tool, got %v", outcome.Status)
	}
	if !strings.Contains(outcome.Diagnostic, "timed out") {
		t.Errorf("expected timeout diagnostic, got %q", outcome.Diagnostic)
	}
}

func TestToolRunStep_EmptyCommand(t *testing.T) {
	step := NewToolRunStep("empty", &api.ToolSpec{})
	outcome := step.Run(StepContext{SourceDir: t.TempDir()})
	if outcome.Status != Failure {
		t.Fatalf("expected failure for empty command, got %v", outcome.Status)
	}
}
