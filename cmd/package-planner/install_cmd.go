package main

import (
	"github.com/spf13/cobra"

	"github.com/rocm-systems/package-planner/internal/installer"
)

// createInstallCommand creates the install subcommand
func createInstallCommand() *cobra.Command {
	installCmd := &cobra.Command{
		Use:   "install",
		Short: "plans and installs built packages in dependency order",
		Long: `Install computes the ordered install list the way plan does, then
		hands every artifact to the package manager of the detected OS
		family. Individual install failures are logged and the remaining
		plan continues.`,
		Args: cobra.NoArgs,
		RunE: executeInstall,
	}

	addPlanningFlags(installCmd)
	return installCmd
}

func executeInstall(cmd *cobra.Command, args []string) error {
	plan, err := buildRequestedPlan()
	if err != nil {
		return err
	}
	return installer.Install(plan)
}
