package planner

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/rocm-systems/package-planner/internal/artifact"
	"github.com/rocm-systems/package-planner/internal/depgraph"
	"github.com/rocm-systems/package-planner/internal/manifest"
	"github.com/rocm-systems/package-planner/internal/utils/logger"
	"github.com/rocm-systems/package-planner/internal/utils/system"
)

// Severity grades a planning diagnostic.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Diagnostic is a non-fatal planning finding carried with the plan, so
// the caller can decide whether a partial plan is acceptable.
type Diagnostic struct {
	Severity Severity `json:"severity" yaml:"severity"`
	Package  string   `json:"package" yaml:"package"`
	Message  string   `json:"message" yaml:"message"`
}

// Plan is the ordered install list of one planning run. It is handed
// to an external installer; nothing in this package executes anything.
type Plan struct {
	RunID       string          `json:"runId" yaml:"runId"`
	OSFamily    system.OSFamily `json:"osFamily" yaml:"osFamily"`
	Artifacts   []string        `json:"artifacts" yaml:"artifacts"`
	Missing     []string        `json:"missing,omitempty" yaml:"missing,omitempty"`
	Diagnostics []Diagnostic    `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
	Cycles      [][]string      `json:"cycles,omitempty" yaml:"cycles,omitempty"`
}

// Request carries everything one planning run needs. A run is a pure
// function of the manifest, the directory snapshot and these flags.
type Request struct {
	Store        *manifest.Store
	ArtifactsDir string
	OSFamily     system.OSFamily
	Versioned    bool   // select only version-pinned artifacts
	Composite    bool   // plan the composite set instead of the leaf set
	GPUFamily    string // raw family token, e.g. "gfx94x-dcgpu"
}

// A leaf package normally yields at most a versioned artifact plus a
// generic fallback; anything beyond that hints at a manifest drift.
const maxLeafMatches = 2

// BuildPlan computes the ordered artifact list for the request.
// Missing artifacts are recorded as gaps, not failures: planning is
// best-effort and yields a partial plan for an incomplete directory.
func BuildPlan(req Request) (*Plan, error) {
	log := logger.Logger()

	if info, err := os.Stat(req.ArtifactsDir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("artifacts directory not found: %s", req.ArtifactsDir)
	}

	nonComposite, composite := req.Store.Classify()
	names := nonComposite
	if req.Composite {
		names = composite
	}
	log.Infof("planning %d %s packages", len(names), setLabel(req.Composite))

	format := manifest.FormatRPM
	if req.OSFamily == system.FamilyDebian {
		format = manifest.FormatDeb
	}

	records := req.Store.Subset(names)
	graph, keys := depgraph.Build(records, format)
	sorted := depgraph.Sort(graph, keys)

	bases := sorted.Order
	if req.OSFamily == system.FamilyDebian {
		bases = RewriteDevelSuffix(bases)
	}

	plan := &Plan{
		RunID:    uuid.NewString(),
		OSFamily: req.OSFamily,
		Cycles:   sorted.Cycles,
	}
	for _, cycle := range sorted.Cycles {
		log.Warnf("dependency cycle detected: %s", strings.Join(cycle, " -> "))
		plan.Diagnostics = append(plan.Diagnostics, Diagnostic{
			Severity: SeverityWarning,
			Package:  cycle[0],
			Message:  fmt.Sprintf("dependency cycle: %s", strings.Join(cycle, " -> ")),
		})
	}

	for i, base := range bases {
		// Metadata is keyed by the pre-rewrite name.
		rec, _ := req.Store.ByName(sorted.Order[i])

		m := artifact.NewMatcher(base, rec.GfxArchSensitive(), req.GPUFamily)
		candidates, err := m.Scan(req.ArtifactsDir, req.Versioned)
		if err != nil {
			return nil, err
		}

		if len(candidates) == 0 {
			log.Errorf("no matching package found for: %s", base)
			plan.Missing = append(plan.Missing, base)
			plan.Diagnostics = append(plan.Diagnostics, Diagnostic{
				Severity: SeverityError,
				Package:  base,
				Message:  "no matching artifact in directory",
			})
			continue
		}
		if !req.Composite && len(candidates) > maxLeafMatches {
			log.Warnf("more than %d matching packages found for: %s", maxLeafMatches, base)
			plan.Diagnostics = append(plan.Diagnostics, Diagnostic{
				Severity: SeverityWarning,
				Package:  base,
				Message:  fmt.Sprintf("%d artifacts matched, expected at most %d", len(candidates), maxLeafMatches),
			})
		}
		for _, c := range candidates {
			plan.Artifacts = append(plan.Artifacts, c.Path)
		}
	}

	log.Infof("final install list count: %d", len(plan.Artifacts))
	return plan, nil
}

func setLabel(composite bool) string {
	if composite {
		return "composite"
	}
	return "non-composite"
}

var develSuffix = regexp.MustCompile(`-devel$`)

// RewriteDevelSuffix maps the metadata "-devel" naming onto the Debian
// "-dev" convention. The transform is pure and idempotent: a name
// already ending in "-dev" comes back unchanged.
func RewriteDevelSuffix(names []string) []string {
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = develSuffix.ReplaceAllString(name, "-dev")
	}
	return out
}
