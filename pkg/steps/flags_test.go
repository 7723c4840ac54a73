package steps

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/crbuild/sourceprep/pkg/api"
)

func ungoogledFlagSpec(text string) *api.FlagSpec {
	return &api.FlagSpec{
		Dest:         "out/Ultimate/args.gn",
		Text:         text,
		CreateHeader: "# Ungoogled-Chromium build flags",
		AppendHeader: "\n\n# Ungoogled-Chromium specific flags",
	}
}

func TestFlagInjectStep_CreatesFileAndParents(t *testing.T) {
	src := t.TempDir()

	step := NewFlagInjectStep("args.gn", ungoogledFlagSpec("enable_reporting = false\n"))
	outcome := step.Run(StepContext{SourceDir: src})

	if outcome.Status != Success {
		t.Fatalf("expected success, got %v (%s)", outcome.Status, outcome.Diagnostic)
	}

	content := readTestFile(t, filepath.Join(src, "out", "Ultimate", "args.gn"))
	if !strings.HasPrefix(content, "# Ungoogled-Chromium build flags\n") {
		t.Errorf("expected create header, got:\n%s", content)
	}
	if !strings.Contains(content, "enable_reporting = false") {
		t.Errorf("flag text missing:\n%s", content)
	}
}

func TestFlagInjectStep_AppendsToExisting(t *testing.T) {
	src := t.TempDir()

	first := NewFlagInjectStep("args.gn", ungoogledFlagSpec("enable_reporting = false\n"))
	if outcome := first.Run(StepContext{SourceDir: src}); outcome.Status != Success {
		t.Fatalf("first write: %v", outcome.Status)
	}

	second := NewFlagInjectStep("args.gn", ungoogledFlagSpec("enable_mdns = false\n"))
	if outcome := second.Run(StepContext{SourceDir: src}); outcome.Status != Success {
		t.Fatalf("second write: %v", outcome.Status)
	}

	content := readTestFile(t, filepath.Join(src, "out", "Ultimate", "args.gn"))
	if !strings.Contains(content, "\n\n# Ungoogled-Chromium specific flags\nenable_mdns = false") {
		t.Errorf("expected append header before second block:\n%s", content)
	}
	if !strings.Contains(content, "enable_reporting = false") {
		t.Errorf("first block lost:\n%s", content)
	}
}
