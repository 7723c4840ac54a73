package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/crbuild/sourceprep/pkg/api"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
}

func TestProbe_CountsMarkers(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{
		"chrome/browser/chrome_browser_main.cc": "// ungoogled-chromium: disabled\n",
		"chrome/browser/about_flags.cc":         "// nothing notable\n",
		"google_apis/BUILD.gn":                  "source_set\n",
	})

	markers := []api.Marker{
		{File: "chrome/browser/chrome_browser_main.cc", Contains: "ungoogled-chromium"},
		{File: "chrome/browser/about_flags.cc", Contains: "ungoogled-chromium"},
		{File: "google_apis/BUILD.gn", ExpectChanged: true},
	}

	result := Probe("verification", api.CriticalityBestEffort, src, api.DefaultBuildDir, markers)

	if result.Succeeded != 2 {
		t.Errorf("expected confidence 2, got %d", result.Succeeded)
	}
	if !result.Passed {
		t.Error("nonzero confidence must pass")
	}
	if result.Total != 3 {
		t.Errorf("expected 3 markers, got %d", result.Total)
	}
}

func TestProbe_MissingFilesScoreNothing(t *testing.T) {
	markers := []api.Marker{
		{File: "gone.cc", Contains: "marker"},
		{File: "also-gone.gn", ExpectChanged: true},
	}

	result := Probe("verification", api.CriticalityBestEffort, t.TempDir(), api.DefaultBuildDir, markers)

	if result.Succeeded != 0 {
		t.Errorf("expected zero confidence, got %d", result.Succeeded)
	}
	if result.Passed {
		t.Error("zero confidence must not pass")
	}
}

func TestProbe_BuildDirMarkers(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{
		"out/Ultimate/args.gn": "use_thin_lto = true\nuse_polly = true\n",
	})

	markers := []api.Marker{
		{File: "args.gn", Contains: "use_thin_lto", InBuildDir: true},
		{File: "args.gn", Contains: "use_polly", InBuildDir: true},
	}

	result := Probe("verification", api.CriticalityBestEffort, src, "out/Ultimate", markers)
	if result.Succeeded != 2 {
		t.Errorf("expected confidence 2, got %d", result.Succeeded)
	}
}
