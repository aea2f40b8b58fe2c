package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rocm-systems/package-planner/internal/artifact"
	"github.com/rocm-systems/package-planner/internal/utils/logger"
)

// createInspectCommand creates the inspect subcommand
func createInspectCommand() *cobra.Command {
	inspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "prints header metadata for the artifacts a plan matched",
		Long: `Inspect computes the install plan, then reads the package header of
		every matched .rpm artifact and prints its name, version, release
		and architecture next to the file path. Useful for spotting
		manifest/artifact drift before an install run.`,
		Args: cobra.NoArgs,
		RunE: executeInspect,
	}

	addPlanningFlags(inspectCmd)
	return inspectCmd
}

func executeInspect(cmd *cobra.Command, args []string) error {
	log := logger.Logger()

	plan, err := buildRequestedPlan()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, path := range plan.Artifacts {
		if !strings.HasSuffix(path, ".rpm") {
			fmt.Fprintf(out, "%s\n", path)
			continue
		}
		nevra, err := artifact.InspectRPM(path)
		if err != nil {
			log.Errorf("inspecting %s: %v", path, err)
			continue
		}
		fmt.Fprintf(out, "%s  %s\n", path, nevra)
	}
	for _, name := range plan.Missing {
		fmt.Fprintf(out, "missing: %s\n", name)
	}
	return nil
}
