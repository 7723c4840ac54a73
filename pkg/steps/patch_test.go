package steps

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/crbuild/sourceprep/pkg/api"
)

const patchTarget = `alpha
beta
gamma
delta
epsilon
zeta
eta
theta
iota
kappa
`

func patchContext(dir string) StepContext {
	return StepContext{SourceDir: dir, Timeout: time.Minute}
}

func TestPatchStep_Success(t *testing.T) {
	skipWithoutTools(t, "git")

	src := t.TempDir()
	writeTestFile(t, src, "a.txt", patchTarget)

	patchDir := t.TempDir()
	patchFile := writeTestFile(t, patchDir, "good.patch", `--- a/a.txt
+++ b/a.txt
@@ -1,3 +1,3 @@
 alpha
-beta
+BETA
 gamma
`)

	step := NewPatchStep("good.patch", &api.PatchSpec{File: patchFile})
	outcome := step.Run(patchContext(src))

	if outcome.Status != Success {
		t.Fatalf("expected success, got %v (%s)", outcome.Status, outcome.Diagnostic)
	}
	content := readTestFile(t, filepath.Join(src, "a.txt"))
	if !strings.Contains(content, "BETA") {
		t.Errorf("patch did not apply:\n%s", content)
	}
}

func TestPatchStep_FallbackPartial(t *testing.T) {
	skipWithoutTools(t, "git", "patch")

	src := t.TempDir()
	writeTestFile(t, src, "a.txt", patchTarget)

	// Hunk 1 applies cleanly; hunk 2 deletes a line that does not exist, so
	// it is rejected regardless of fuzz.
	patchDir := t.TempDir()
	patchFile := writeTestFile(t, patchDir, "partial.patch", `--- a/a.txt
+++ b/a.txt
@@ -1,3 +1,3 @@
 alpha
-beta
+BETA
 gamma
@@ -8,3 +8,3 @@
 theta
-missingline
+IOTA
 kappa
`)

	step := NewPatchStep("partial.patch", &api.PatchSpec{File: patchFile})
	outcome := step.Run(patchContext(src))

	if outcome.Status != PartialSuccess {
		t.Fatalf("expected partial success, got %v (%s)", outcome.Status, outcome.Diagnostic)
	}
	if !outcome.Counted() {
		t.Error("partial success should count as succeeded")
	}
	content := readTestFile(t, filepath.Join(src, "a.txt"))
	if !strings.Contains(content, "BETA") {
		t.Errorf("applied hunk missing:\n%s", content)
	}
}

func TestPatchStep_BothStrategiesFail(t *testing.T) {
	skipWithoutTools(t, "git", "patch")

	src := t.TempDir()
	writeTestFile(t, src, "a.txt", patchTarget)

	patchDir := t.TempDir()
	patchFile := writeTestFile(t, patchDir, "bad.patch", `--- a/a.txt
+++ b/a.txt
@@ -1,3 +1,3 @@
 nothing
-here
+matches
 anything
`)

	step := NewPatchStep("bad.patch", &api.PatchSpec{File: patchFile})
	outcome := step.Run(patchContext(src))

	if outcome.Status != Failure {
		t.Fatalf("expected failure, got %v (%s)", outcome.Status, outcome.Diagnostic)
	}
	if !strings.Contains(outcome.Diagnostic, "git apply") || !strings.Contains(outcome.Diagnostic, "patch") {
		t.Errorf("expected both strategies in diagnostic, got %q", outcome.Diagnostic)
	}
}

func TestSomeHunksApplied(t *testing.T) {
	tests := []struct {
		name   string
		stdout string
		want   bool
	}{
		{"partial", "patching file a.txt\nHunk #2 FAILED at 8.\n1 out of 2 hunks FAILED\n", true},
		{"all rejected", "patching file a.txt\nHunk #1 FAILED at 1.\n1 out of 1 hunk FAILED\n", false},
		{"no hunk report", "patch: **** malformed patch\n", false},
		{"fuzzed plus rejected", "Hunk #1 succeeded at 3 with fuzz 2.\n2 out of 2 hunks FAILED\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := someHunksApplied(tt.stdout); got != tt.want {
				t.Errorf("someHunksApplied(%q) = %v, want %v", tt.stdout, got, tt.want)
			}
		})
	}
}
