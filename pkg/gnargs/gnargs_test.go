package gnargs

import (
	"strings"
	"testing"
)

func TestGenerate_AVX512(t *testing.T) {
	out, err := Generate("avx512")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		"# Link Time Optimization",
		"use_thin_lto = true",
		"chrome_pgo_phase = 2",
		"use_polly = true",
		"# AVX512 Optimization Flags",
		"-march=skylake-avx512",
		"-ffast-math",
		"-fuse-ld=lld",
		"v8_enable_turbofan = true",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestGenerate_AVX2OmitsArchBlock(t *testing.T) {
	out, err := Generate("avx2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(out, "-march=skylake-avx512") {
		t.Error("avx2 output must not carry the avx512 flag block")
	}
	if !strings.Contains(out, "use_thin_lto = true") {
		t.Error("common blocks missing")
	}
}

func TestGenerate_InvalidArch(t *testing.T) {
	if _, err := Generate("sse2"); err == nil {
		t.Fatal("expected error for unsupported arch")
	}
}

func TestValidArch(t *testing.T) {
	for _, arch := range Archs {
		if !ValidArch(arch) {
			t.Errorf("%s should be valid", arch)
		}
	}
	if ValidArch("armv9") {
		t.Error("armv9 should not be valid")
	}
}
