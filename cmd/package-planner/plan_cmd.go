package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rocm-systems/package-planner/internal/manifest"
	"github.com/rocm-systems/package-planner/internal/planner"
	"github.com/rocm-systems/package-planner/internal/utils/logger"
	"github.com/rocm-systems/package-planner/internal/utils/system"
)

// Planning command flags, shared with install and inspect.
var (
	manifestPath  string
	artifactsDir  string
	versionedOnly bool
	compositeOnly bool
	gpuFamily     string
	osOverride    string
	planFormat    string
)

// addPlanningFlags registers the flags every planning-based command
// takes.
func addPlanningFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&manifestPath, "manifest", "",
		"Path to the package manifest (JSON or YAML, optionally .gz/.xz compressed)")
	cmd.Flags().StringVar(&artifactsDir, "artifacts-dir", "",
		"Directory containing the built .deb/.rpm packages")
	cmd.Flags().BoolVar(&versionedOnly, "versioned", false,
		"Select only version-pinned artifacts (e.g. roctracer7.0.0_7.0.0.70000...)")
	cmd.Flags().BoolVar(&compositeOnly, "composite", false,
		"Plan the composite package set instead of the leaf set")
	cmd.Flags().StringVar(&gpuFamily, "amdgpu-family", "",
		"GPU architecture family token, e.g. gfx94x or gfx94x-dcgpu")
	cmd.Flags().StringVar(&osOverride, "os", "",
		"Override OS family detection: debian, redhat or suse")
	_ = cmd.MarkFlagRequired("manifest")
	_ = cmd.MarkFlagRequired("artifacts-dir")
}

// createPlanCommand creates the plan subcommand
func createPlanCommand() *cobra.Command {
	planCmd := &cobra.Command{
		Use:   "plan",
		Short: "computes the ordered install list for built packages",
		Long: `Plan loads the package manifest, orders packages by their declared
		dependencies and matches each one against the built artifacts
		directory. The resulting list is printed; nothing is installed.`,
		Args: cobra.NoArgs,
		RunE: executePlan,
	}

	addPlanningFlags(planCmd)
	planCmd.Flags().StringVar(&planFormat, "format", "text",
		"Output format: text, json or yaml")
	return planCmd
}

func executePlan(cmd *cobra.Command, args []string) error {
	plan, err := buildRequestedPlan()
	if err != nil {
		return err
	}
	return renderPlan(cmd.OutOrStdout(), plan, planFormat)
}

// buildRequestedPlan turns the shared flag set into one planning run.
func buildRequestedPlan() (*planner.Plan, error) {
	log := logger.Logger()

	store, err := manifest.Load(manifestPath)
	if err != nil {
		return nil, err
	}

	family := system.DetectOSFamily()
	if osOverride != "" {
		family = system.ParseFamily(osOverride)
	}
	log.Infof("detected or provided OS family: %s", family)
	log.Infof("using artifacts from: %s", artifactsDir)

	return planner.BuildPlan(planner.Request{
		Store:        store,
		ArtifactsDir: artifactsDir,
		OSFamily:     family,
		Versioned:    versionedOnly,
		Composite:    compositeOnly,
		GPUFamily:    gpuFamily,
	})
}

func renderPlan(w io.Writer, plan *planner.Plan, format string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(plan)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(plan)
	case "text":
		fmt.Fprintf(w, "plan %s (%s)\n", plan.RunID, plan.OSFamily)
		for _, path := range plan.Artifacts {
			fmt.Fprintln(w, path)
		}
		for _, name := range plan.Missing {
			fmt.Fprintf(w, "missing: %s\n", name)
		}
		for _, d := range plan.Diagnostics {
			fmt.Fprintf(w, "%s: %s: %s\n", d.Severity, d.Package, d.Message)
		}
		return nil
	}
	return fmt.Errorf("invalid --format %q (expected text|json|yaml)", format)
}
