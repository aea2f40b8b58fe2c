package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// PatternKind names the filename shape a base package is matched
// against. Two axes: whether the filename pins a component version
// next to the base name, and whether it carries a GPU architecture
// family token.
type PatternKind int

const (
	// PatternPlain: base + optional underscore + numeric version.
	// Example: rocminfo_7.0.0.70000_amd64.deb
	PatternPlain PatternKind = iota
	// PatternPlainArch: base + family token + numeric version.
	// Example: rocblas-gfx94x_7.0.0.70000_amd64.deb
	PatternPlainArch
	// PatternVersioned: base + semantic version + build version.
	// Example: roctracer7.0.0_7.0.0.70000_amd64.deb
	PatternVersioned
	// PatternVersionedArch: semantic version, family token, build version.
	// Example: hipsolver7.0.0-gfx94x_7.0.0.70000_amd64.deb
	PatternVersionedArch
)

func (k PatternKind) String() string {
	switch k {
	case PatternPlain:
		return "plain"
	case PatternPlainArch:
		return "plain+arch"
	case PatternVersioned:
		return "versioned"
	case PatternVersionedArch:
		return "versioned+arch"
	}
	return "unknown"
}

// NormalizeFamily reduces a full GPU family token such as
// "gfx94x-dcgpu" to the bare architecture family embedded in
// filenames.
func NormalizeFamily(family string) string {
	if i := strings.Index(family, "-"); i >= 0 {
		return family[:i]
	}
	return family
}

// archSuffixAllowed: devel packages never carry a family suffix, in
// either the metadata spelling or the rewritten Debian one.
func archSuffixAllowed(base string) bool {
	lower := strings.ToLower(base)
	return !strings.Contains(lower, "devel") && !strings.HasSuffix(lower, "-dev")
}

// Candidate is one directory entry judged to belong to a base
// package.
type Candidate struct {
	Path          string
	IsVersioned   bool
	HasArchSuffix bool
}

// Matcher binds one logical base name to the compiled filename
// patterns identifying its built artifacts. Patterns are compiled once
// per base, not re-derived per candidate file.
type Matcher struct {
	base       string
	withSuffix bool
	versioned  *regexp.Regexp
	plain      *regexp.Regexp
}

// NewMatcher builds the matcher for a base package. The family suffix
// participates only when the package metadata marks the artifact
// filename arch sensitive, a family token is active and the base is
// not a devel package.
func NewMatcher(base string, gfxArchSensitive bool, family string) *Matcher {
	baseEsc := regexp.QuoteMeta(base)

	suffix := ""
	if gfxArchSensitive && family != "" && archSuffixAllowed(base) {
		suffix = regexp.QuoteMeta(NormalizeFamily(family))
	}

	var versioned, plain string
	if suffix != "" {
		versioned = `^` + baseEsc + `\d+\.\d+\.\d+-` + suffix + `_\d+\.\d+\.\d+`
		plain = `^` + baseEsc + `-` + suffix + `_?\d+\.\d+\.\d+`
	} else {
		versioned = `^` + baseEsc + `\d+\.\d+\.\d+_\d+\.\d+\.\d+`
		plain = `^` + baseEsc + `_?\d+\.\d+\.\d+`
	}

	return &Matcher{
		base:       base,
		withSuffix: suffix != "",
		versioned:  regexp.MustCompile(versioned),
		plain:      regexp.MustCompile(plain),
	}
}

// Base returns the logical package name the matcher was built for.
func (m *Matcher) Base() string { return m.base }

// Kind reports which pattern variant applies for the given version
// selection.
func (m *Matcher) Kind(versioned bool) PatternKind {
	switch {
	case versioned && m.withSuffix:
		return PatternVersionedArch
	case versioned:
		return PatternVersioned
	case m.withSuffix:
		return PatternPlainArch
	}
	return PatternPlain
}

// Match classifies a single filename. With versionOnly true only the
// versioned shape is accepted; otherwise both shapes are, so that a
// default selection still surfaces version-carrying artifacts.
func (m *Matcher) Match(name string, versionOnly bool) (Candidate, bool) {
	if !strings.HasPrefix(name, m.base) {
		return Candidate{}, false
	}
	isVersioned := m.versioned.MatchString(name)
	if versionOnly {
		if !isVersioned {
			return Candidate{}, false
		}
	} else if !isVersioned && !m.plain.MatchString(name) {
		return Candidate{}, false
	}
	return Candidate{Path: name, IsVersioned: isVersioned, HasArchSuffix: m.withSuffix}, true
}

// Scan walks destDir for .deb/.rpm entries belonging to the base
// package. Versioned candidates sort before plain ones, ties broken by
// filename, so a pinned package always installs ahead of a same-named
// generic fallback.
func (m *Matcher) Scan(destDir string, versionOnly bool) ([]Candidate, error) {
	entries, err := os.ReadDir(destDir)
	if err != nil {
		return nil, fmt.Errorf("reading artifacts directory %s: %w", destDir, err)
	}

	var matched []Candidate
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".deb") && !strings.HasSuffix(name, ".rpm") {
			continue
		}
		if c, ok := m.Match(name, versionOnly); ok {
			c.Path = filepath.Join(destDir, name)
			matched = append(matched, c)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].IsVersioned != matched[j].IsVersioned {
			return matched[i].IsVersioned
		}
		return matched[i].Path < matched[j].Path
	})
	return matched, nil
}
