package pipeline

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/crbuild/sourceprep/pkg/api"
	"github.com/crbuild/sourceprep/pkg/steps"
)

// Probe scans the tree for the expected textual markers and reports one
// outcome per marker. This is a smoke test, not a correctness oracle: a
// marker that should be "modified" counts as soon as the file exists, and a
// textually plausible but wrong transformation passes undetected. The probe
// passes when the confidence count is nonzero.
func Probe(name, criticality, sourceDir, buildDir string, markers []api.Marker) SeriesResult {
	result := SeriesResult{
		Name:        name,
		Criticality: criticality,
		Total:       len(markers),
	}

	for _, marker := range markers {
		outcome := probeMarker(sourceDir, buildDir, marker)
		result.Outcomes = append(result.Outcomes, StepOutcome{Step: marker.File, Outcome: outcome})
		if outcome.Counted() {
			result.Succeeded++
			slog.Debug("verified marker", "file", marker.File)
		} else {
			slog.Debug("marker not found", "file", marker.File, "diagnostic", outcome.Diagnostic)
		}
	}

	result.Passed = result.Succeeded > 0
	slog.Info("verification finished",
		"series", name,
		"confidence", result.Succeeded,
		"markers", result.Total,
		"passed", result.Passed)
	return result
}

func probeMarker(sourceDir, buildDir string, marker api.Marker) steps.Outcome {
	path := filepath.Join(sourceDir, marker.File)
	if marker.InBuildDir {
		path = filepath.Join(sourceDir, buildDir, marker.File)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return steps.Outcome{Status: steps.Failure, Diagnostic: fmt.Sprintf("reading %s: %v", marker.File, err)}
	}

	if marker.ExpectChanged {
		// The file being present at all is taken as evidence that the
		// transformation touched it. Deliberately weak.
		return steps.Outcome{Status: steps.Success}
	}

	// Build files mix cases for the same token (lto vs LTO, avx512 vs
	// AVX512), so the marker comparison is case-insensitive.
	if strings.Contains(strings.ToLower(string(content)), strings.ToLower(marker.Contains)) {
		return steps.Outcome{Status: steps.Success}
	}
	return steps.Outcome{
		Status:     steps.Failure,
		Diagnostic: fmt.Sprintf("%s does not contain %q", marker.File, marker.Contains),
	}
}
