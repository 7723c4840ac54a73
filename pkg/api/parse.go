package api

import (
	"bufio"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed profiles/*.yaml
var builtinProfiles embed.FS

// BuiltinProfile returns one of the embedded pipeline profiles by name
// ("ungoogled" or "clang").
func BuiltinProfile(name string) (*Profile, error) {
	data, err := builtinProfiles.ReadFile("profiles/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("unknown built-in profile %q", name)
	}
	return parseProfile(data, "builtin:"+name)
}

// LoadProfile reads and validates a pipeline profile from a YAML file.
func LoadProfile(filename string) (*Profile, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading profile file: %w", err)
	}
	return parseProfile(data, filename)
}

func parseProfile(data []byte, source string) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing profile %s: %w", source, err)
	}

	if p.BuildDir == "" {
		p.BuildDir = DefaultBuildDir
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("validating profile %s: %w", source, err)
	}
	return &p, nil
}

// LoadList reads a generic one-entry-per-line list file. Blank lines and
// #-prefixed comment lines are ignored.
func LoadList(filename string) ([]string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening list file: %w", err)
	}
	defer f.Close()

	var entries []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entries = append(entries, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading list file %s: %w", filename, err)
	}
	return entries, nil
}

// LoadRegexPairs reads a pattern@replacement list file and compiles each
// pattern. A line without a separator or with an invalid pattern is an error.
func LoadRegexPairs(filename string) ([]RegexPair, error) {
	lines, err := LoadList(filename)
	if err != nil {
		return nil, err
	}

	pairs := make([]RegexPair, 0, len(lines))
	for _, line := range lines {
		pattern, replacement, ok := strings.Cut(line, "@")
		if !ok {
			return nil, fmt.Errorf("%s: malformed substitution line %q (want pattern@replacement)", filename, line)
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid pattern %q: %w", filename, pattern, err)
		}
		pairs = append(pairs, RegexPair{Pattern: re, Replacement: replacement})
	}
	return pairs, nil
}

// LoadSeries returns the ordered patch filenames for one patch directory.
// A "series" manifest defines the order when present; otherwise all *.patch
// files sorted lexicographically. Manifest entries naming files that do not
// exist are returned as-is — the caller decides how to treat them.
func LoadSeries(dir string) ([]string, error) {
	manifest := filepath.Join(dir, SeriesManifestName)
	if _, err := os.Stat(manifest); err == nil {
		return LoadList(manifest)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*.patch"))
	if err != nil {
		return nil, fmt.Errorf("globbing %s: %w", dir, err)
	}

	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, filepath.Base(m))
	}
	slices.Sort(names)
	return names, nil
}

// ExpandArch substitutes ${arch} in each pattern.
func ExpandArch(patterns []string, arch string) []string {
	expanded := make([]string, 0, len(patterns))
	for _, p := range patterns {
		expanded = append(expanded, ExpandArchString(p, arch))
	}
	return expanded
}

// ExpandArchString substitutes ${arch} in a single value.
func ExpandArchString(s, arch string) string {
	return os.Expand(s, func(key string) string {
		if key == "arch" {
			return arch
		}
		return ""
	})
}
