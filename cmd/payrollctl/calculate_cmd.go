package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/ratetable"
	payrollService "github.com/cmlabs-hris/payroll-engine-go/internal/service/payroll"
	"github.com/spf13/cobra"
)

func newCalculateCmd() *cobra.Command {
	var (
		input     string
		ratesFile string
		companyID string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "calculate",
		Short: "Calculate one payslip offline from a JSON request",
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if input != "-" {
				f, err := os.Open(input)
				if err != nil {
					return fmt.Errorf("open input: %w", err)
				}
				defer f.Close()
				r = f
			}

			var req payroll.PreviewRequest
			if err := json.NewDecoder(r).Decode(&req); err != nil {
				return fmt.Errorf("decode input: %w", err)
			}
			if err := req.Validate(); err != nil {
				return err
			}

			versions, err := ratetable.LoadFile(ratesFile)
			if err != nil {
				return err
			}
			in := req.ToInput(companyID)
			table, err := versions.TableFor(in.Period.EndDate)
			if err != nil {
				return err
			}

			result, err := payrollService.NewOrchestrator(table).Calculate(in)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, payroll.NewPayrollResultResponse(result))
			}
			fmt.Fprintf(out, "employee %s  period %s..%s  rates %s\n",
				result.EmployeeID, req.Period.StartDate, req.Period.EndDate, result.RateVersion)
			return writeRows(out, payslipRows(result))
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "-", "Request JSON file, - for stdin")
	cmd.Flags().StringVar(&ratesFile, "rates", "", "Rate table YAML (default: embedded tables)")
	cmd.Flags().StringVar(&companyID, "company", "offline", "Company ID stamped on the result")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full breakdown as JSON")
	return cmd
}

func payslipRows(r payroll.PayrollResult) []row {
	return []row{
		{"Basic salary", r.BasicSalary},
		{"Allowances", r.TotalAllowances},
		{"Overtime", r.OvertimePay},
		{"THR", r.HolidayAllowance},
		{"Gross", r.GrossSalary},
		{"BPJS Kesehatan", r.HealthDeduction},
		{"BPJS JHT", r.JHTDeduction},
		{"BPJS JP", r.JPDeduction},
		{"PPh 21", r.IncomeTax},
		{"Loan", r.LoanDeduction},
		{"Other deductions", r.OtherDeductions},
		{"Total deductions", r.TotalDeductions},
		{"Net salary", r.NetSalary},
	}
}
