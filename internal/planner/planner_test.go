package planner_test

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/rocm-systems/package-planner/internal/manifest"
	"github.com/rocm-systems/package-planner/internal/planner"
	"github.com/rocm-systems/package-planner/internal/utils/system"
)

func parseStore(t *testing.T, doc string) *manifest.Store {
	t.Helper()
	store, err := manifest.Parse("inline", []byte(doc))
	if err != nil {
		t.Fatalf("parsing manifest fixture: %v", err)
	}
	return store
}

func artifactsDir(t *testing.T, files ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatalf("writing artifact fixture %s: %v", name, err)
		}
	}
	return dir
}

func baseNames(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.Base(p)
	}
	return out
}

func TestPlanOrdersDependenciesFirst(t *testing.T) {
	store := parseStore(t, `[
	  {"Package": "core", "DEBDepends": ["base"]},
	  {"Package": "base"}
	]`)
	dir := artifactsDir(t, "base_1.0.0.deb", "core_1.0.0.deb")

	plan, err := planner.BuildPlan(planner.Request{
		Store:        store,
		ArtifactsDir: dir,
		OSFamily:     system.FamilyDebian,
	})
	if err != nil {
		t.Fatalf("BuildPlan failed: %v", err)
	}

	expected := []string{"base_1.0.0.deb", "core_1.0.0.deb"}
	if !reflect.DeepEqual(baseNames(plan.Artifacts), expected) {
		t.Errorf("plan order = %v, want %v", baseNames(plan.Artifacts), expected)
	}
	if len(plan.Missing) != 0 {
		t.Errorf("unexpected missing packages: %v", plan.Missing)
	}
	if plan.RunID == "" {
		t.Error("plan should carry a run ID")
	}
}

func TestPlanRecordsGapAndContinues(t *testing.T) {
	store := parseStore(t, `[
	  {"Package": "core", "DEBDepends": ["base"]},
	  {"Package": "base"}
	]`)
	dir := artifactsDir(t, "core_1.0.0.deb")

	plan, err := planner.BuildPlan(planner.Request{
		Store:        store,
		ArtifactsDir: dir,
		OSFamily:     system.FamilyDebian,
	})
	if err != nil {
		t.Fatalf("BuildPlan failed: %v", err)
	}

	if !reflect.DeepEqual(baseNames(plan.Artifacts), []string{"core_1.0.0.deb"}) {
		t.Errorf("plan should carry the resolvable remainder, got %v", baseNames(plan.Artifacts))
	}
	if !reflect.DeepEqual(plan.Missing, []string{"base"}) {
		t.Errorf("missing = %v, want [base]", plan.Missing)
	}
	errDiags := 0
	for _, d := range plan.Diagnostics {
		if d.Severity == planner.SeverityError && d.Package == "base" {
			errDiags++
		}
	}
	if errDiags != 1 {
		t.Errorf("expected exactly one missing-package diagnostic for base, got %d", errDiags)
	}
}

func TestPlanVersionedArchSelection(t *testing.T) {
	store := parseStore(t, `[
	  {"Package": "hipsolver", "Gfxarch": "True"}
	]`)
	dir := artifactsDir(t,
		"hipsolver7.0.0-gfx94x_7.0.0.70000_amd64.deb",
		"hipsolver-gfx94x_7.0.0.70000_amd64.deb",
	)

	plan, err := planner.BuildPlan(planner.Request{
		Store:        store,
		ArtifactsDir: dir,
		OSFamily:     system.FamilyDebian,
		Versioned:    true,
		GPUFamily:    "gfx94x-dcgpu",
	})
	if err != nil {
		t.Fatalf("BuildPlan failed: %v", err)
	}

	expected := []string{"hipsolver7.0.0-gfx94x_7.0.0.70000_amd64.deb"}
	if !reflect.DeepEqual(baseNames(plan.Artifacts), expected) {
		t.Errorf("plan = %v, want %v", baseNames(plan.Artifacts), expected)
	}
}

func TestPlanCycleTerminatesAndReports(t *testing.T) {
	store := parseStore(t, `[
	  {"Package": "a", "DEBDepends": ["b"]},
	  {"Package": "b", "DEBDepends": ["a"]}
	]`)
	dir := artifactsDir(t, "a_1.0.0.deb", "b_1.0.0.deb")

	plan, err := planner.BuildPlan(planner.Request{
		Store:        store,
		ArtifactsDir: dir,
		OSFamily:     system.FamilyDebian,
	})
	if err != nil {
		t.Fatalf("BuildPlan must terminate on cyclic manifests: %v", err)
	}

	if len(plan.Artifacts) != 2 {
		t.Errorf("every cyclic package must still be planned once, got %v", baseNames(plan.Artifacts))
	}
	if len(plan.Cycles) == 0 {
		t.Error("cycle should surface as a reported diagnostic")
	}
}

func TestPlanDebianDevelRewrite(t *testing.T) {
	store := parseStore(t, `[
	  {"Package": "rocblas-devel", "DEBDepends": ["rocblas"]},
	  {"Package": "rocblas"}
	]`)
	dir := artifactsDir(t, "rocblas_1.0.0_amd64.deb", "rocblas-dev_1.0.0_amd64.deb")

	plan, err := planner.BuildPlan(planner.Request{
		Store:        store,
		ArtifactsDir: dir,
		OSFamily:     system.FamilyDebian,
	})
	if err != nil {
		t.Fatalf("BuildPlan failed: %v", err)
	}

	expected := []string{"rocblas_1.0.0_amd64.deb", "rocblas-dev_1.0.0_amd64.deb"}
	if !reflect.DeepEqual(baseNames(plan.Artifacts), expected) {
		t.Errorf("plan = %v, want %v", baseNames(plan.Artifacts), expected)
	}
}

func TestPlanRedHatKeepsDevelNaming(t *testing.T) {
	store := parseStore(t, `[
	  {"Package": "rocblas-devel", "RPMRequires": ["rocblas"]},
	  {"Package": "rocblas"}
	]`)
	dir := artifactsDir(t, "rocblas_1.0.0.x86_64.rpm", "rocblas-devel_1.0.0.x86_64.rpm")

	plan, err := planner.BuildPlan(planner.Request{
		Store:        store,
		ArtifactsDir: dir,
		OSFamily:     system.FamilyRedHat,
	})
	if err != nil {
		t.Fatalf("BuildPlan failed: %v", err)
	}

	expected := []string{"rocblas_1.0.0.x86_64.rpm", "rocblas-devel_1.0.0.x86_64.rpm"}
	if !reflect.DeepEqual(baseNames(plan.Artifacts), expected) {
		t.Errorf("plan = %v, want %v", baseNames(plan.Artifacts), expected)
	}
}

func TestPlanCompositeSelection(t *testing.T) {
	store := parseStore(t, `[
	  {"Package": "rocm", "Composite": "Yes", "Includes": ["rocm-core"]},
	  {"Package": "rocm-core"}
	]`)
	dir := artifactsDir(t, "rocm_1.0.0_amd64.deb", "rocm-core_1.0.0_amd64.deb")

	plan, err := planner.BuildPlan(planner.Request{
		Store:        store,
		ArtifactsDir: dir,
		OSFamily:     system.FamilyDebian,
		Composite:    true,
	})
	if err != nil {
		t.Fatalf("BuildPlan failed: %v", err)
	}
	if !reflect.DeepEqual(baseNames(plan.Artifacts), []string{"rocm_1.0.0_amd64.deb"}) {
		t.Errorf("composite plan = %v, want only the composite artifact", baseNames(plan.Artifacts))
	}
}

func TestPlanWarnsOnExcessLeafMatches(t *testing.T) {
	store := parseStore(t, `[{"Package": "rocblas"}]`)
	dir := artifactsDir(t,
		"rocblas_1.0.0_amd64.deb",
		"rocblas1.0.0_1.0.0.100_amd64.deb",
		"rocblas1.1.0_1.1.0.110_amd64.deb",
	)

	plan, err := planner.BuildPlan(planner.Request{
		Store:        store,
		ArtifactsDir: dir,
		OSFamily:     system.FamilyDebian,
	})
	if err != nil {
		t.Fatalf("BuildPlan failed: %v", err)
	}

	if len(plan.Artifacts) != 3 {
		t.Fatalf("excess matches must not be dropped, got %v", baseNames(plan.Artifacts))
	}
	warned := false
	for _, d := range plan.Diagnostics {
		if d.Severity == planner.SeverityWarning && strings.Contains(d.Message, "expected at most") {
			warned = true
		}
	}
	if !warned {
		t.Error("expected a too-many-matches warning diagnostic")
	}
}

func TestPlanMissingArtifactsDirFatal(t *testing.T) {
	store := parseStore(t, `[{"Package": "rocblas"}]`)
	_, err := planner.BuildPlan(planner.Request{
		Store:        store,
		ArtifactsDir: filepath.Join(t.TempDir(), "absent"),
		OSFamily:     system.FamilyDebian,
	})
	if err == nil {
		t.Fatal("expected fatal error for missing artifacts directory")
	}
}

func TestRewriteDevelSuffixIdempotent(t *testing.T) {
	once := planner.RewriteDevelSuffix([]string{"foo-devel", "foo-dev", "foo", "develtools"})
	expected := []string{"foo-dev", "foo-dev", "foo", "develtools"}
	if !reflect.DeepEqual(once, expected) {
		t.Fatalf("first rewrite = %v, want %v", once, expected)
	}
	twice := planner.RewriteDevelSuffix(once)
	if !reflect.DeepEqual(twice, expected) {
		t.Errorf("second rewrite mutated names: %v", twice)
	}
}
