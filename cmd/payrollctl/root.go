package main

import "github.com/spf13/cobra"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "payrollctl",
		Short:        "Operate the payroll engine from the command line",
		SilenceUsage: true,
	}
	cmd.AddCommand(
		newRatesCmd(),
		newCalculateCmd(),
		newRunCmd(),
		newMigrateCmd(),
		newTokenCmd(),
	)
	return cmd
}
