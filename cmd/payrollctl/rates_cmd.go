package main

import (
	"fmt"

	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/ratetable"
	"github.com/spf13/cobra"
)

func newRatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rates",
		Short: "Inspect statutory rate tables",
	}
	cmd.AddCommand(newRatesValidateCmd())
	return cmd
}

func newRatesValidateCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load and validate every rate table version",
		RunE: func(cmd *cobra.Command, args []string) error {
			versions, err := ratetable.LoadFile(file)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, t := range versions {
				fmt.Fprintf(out, "%s\teffective from %s\t%d brackets\n", t.Version, t.EffectiveFrom, len(t.TaxBrackets))
			}
			fmt.Fprintf(out, "ok: %d version(s)\n", len(versions))
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Rate table YAML (default: embedded tables)")
	return cmd
}
