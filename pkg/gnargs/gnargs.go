// Package gnargs renders the GN optimization flag blocks appended to the
// build configuration by the clang optimization pipeline.
package gnargs

import (
	"fmt"
	"slices"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// Archs is the fixed set of supported target architectures.
var Archs = []string{"avx", "avx2", "avx512"}

// ValidArch reports whether arch is a supported target architecture.
func ValidArch(arch string) bool {
	return slices.Contains(Archs, arch)
}

const flagsTemplate = `# Link Time Optimization
use_thin_lto = true
use_lld = true
thin_lto_enable_optimizations = true
use_text_section_splitting = true

# Profile Guided Optimization
chrome_pgo_phase = 2
pgo_data_path = ""

# Polly High-level Optimizations
use_polly = true
{{ if eq .Arch "avx512" }}
# {{ .Arch | upper }} Optimization Flags
common_optimize_on_cflags = [
  "-march=skylake-avx512",
  "-mtune=skylake-avx512",
  "-mavx512f",
  "-mavx512cd",
  "-mavx512vl",
  "-mavx512bw",
  "-mavx512dq",
  "-mfma",
]
{{ end }}
# Fast-math Optimizations
common_optimize_on_cflags += [
  "-ffast-math",
  "-funsafe-math-optimizations",
  "-ffinite-math-only",
  "-fno-signed-zeros",
  "-fno-trapping-math",
  "-fassociative-math",
  "-freciprocal-math",
]

# Vectorization Optimizations
common_optimize_on_cflags += [
  "-ftree-vectorize",
  "-ftree-slp-vectorize",
  "-fvectorize",
  "-fslp-vectorize",
]

# Advanced Linker Optimizations
common_optimize_on_ldflags = [
  "-fuse-ld=lld",
  "-Wl,--lto-O3",
  "-Wl,--icf=all",
  "-Wl,--gc-sections",
]

# V8 Engine Optimizations
v8_enable_builtins_optimization = true
v8_enable_fast_torque = true
v8_enable_turbofan = true
`

// Generate renders the optimization flag text for the given target
// architecture.
func Generate(arch string) (string, error) {
	if !ValidArch(arch) {
		return "", fmt.Errorf("unsupported target architecture %q (valid: %s)", arch, strings.Join(Archs, ", "))
	}

	tmpl, err := template.New("gnargs").Funcs(sprig.FuncMap()).Parse(flagsTemplate)
	if err != nil {
		return "", fmt.Errorf("parsing flags template: %w", err)
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, struct{ Arch string }{Arch: arch}); err != nil {
		return "", fmt.Errorf("rendering flags template: %w", err)
	}
	return buf.String(), nil
}
