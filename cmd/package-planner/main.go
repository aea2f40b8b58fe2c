package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rocm-systems/package-planner/internal/utils/logger"
)

var logLevel string

func main() {
	root := createRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// createRootCommand assembles the CLI tree
func createRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "package-planner",
		Short: "plans and installs built distribution packages",
		Long: `package-planner resolves a package manifest into a dependency-ordered
		install list, matches each logical package against the built .deb/.rpm
		artifacts of a build run and optionally hands the ordered list to the
		native package manager of the host.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level: debug, info, warn or error")
	root.PersistentFlags().BoolP("verbose", "v", false,
		"Shorthand for --log-level debug")

	root.AddCommand(createPlanCommand())
	root.AddCommand(createInstallCommand())
	root.AddCommand(createInspectCommand())
	attachLoggingHooks(root)
	return root
}

// resolveRequestedLogLevel prefers an explicit --log-level and falls
// back to the --verbose shorthand when that flag was actually set.
func resolveRequestedLogLevel(cmd *cobra.Command) string {
	if logLevel != "" {
		return logLevel
	}
	if cmd == nil {
		return ""
	}
	if flag := cmd.Flags().Lookup("verbose"); flag != nil && flag.Changed {
		return "debug"
	}
	return ""
}

// attachLoggingHooks wires logger setup into every subcommand so the
// global logger exists before any RunE fires.
func attachLoggingHooks(root *cobra.Command) {
	for _, cmd := range root.Commands() {
		cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
			return logger.Setup(resolveRequestedLogLevel(cmd))
		}
	}
}
