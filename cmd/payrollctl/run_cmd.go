package main

import (
	"github.com/cmlabs-hris/payroll-engine-go/internal/app"
	"github.com/cmlabs-hris/payroll-engine-go/internal/config"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var companyID, periodID string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Calculate and store every active employee of a period",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := app.NewLogger(cfg)

			application, err := app.New(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer application.Close()

			report, err := application.Payroll.RunPeriodForCompany(cmd.Context(), companyID, periodID)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), payroll.NewBatchReportResponse(report))
		},
	}

	cmd.Flags().StringVar(&companyID, "company", "", "Company ID (required)")
	cmd.Flags().StringVar(&periodID, "period", "", "Payroll period ID (required)")
	_ = cmd.MarkFlagRequired("company")
	_ = cmd.MarkFlagRequired("period")
	return cmd
}
