package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type payrollResultRepository struct {
	db *database.DB
}

func NewPayrollResultRepository(db *database.DB) payroll.ResultRepository {
	return &payrollResultRepository{db: db}
}

// resultBreakdown is stored as JSONB next to the flat money columns.
type resultBreakdown struct {
	Tax            payroll.TaxCalculationResult    `json:"tax"`
	SocialSecurity payroll.SocialSecurityResult    `json:"social_security"`
	Overtime       payroll.OvertimeResult          `json:"overtime"`
	Holiday        *payroll.HolidayAllowanceResult `json:"holiday,omitempty"`
}

const resultColumns = `
	id, company_id, employee_id, period_id, period_code, status, rate_version,
	basic_salary, total_allowances, overtime_pay, holiday_allowance, gross_salary,
	health_deduction, jht_deduction, jp_deduction, income_tax,
	loan_deduction, other_deductions, total_deductions, net_salary,
	breakdown, calculated_at, created_at, updated_at`

// Upsert keeps the original id and created_at of an existing row. The
// conflict update only fires while the stored status is still
// recalculable; otherwise no row comes back.
func (r *payrollResultRepository) Upsert(ctx context.Context, result payroll.PayrollResult) (payroll.PayrollResult, error) {
	q := GetQuerier(ctx, r.db)

	breakdown, err := json.Marshal(resultBreakdown{
		Tax:            result.Tax,
		SocialSecurity: result.SocialSecurity,
		Overtime:       result.Overtime,
		Holiday:        result.Holiday,
	})
	if err != nil {
		return payroll.PayrollResult{}, fmt.Errorf("failed to encode payroll breakdown: %w", err)
	}

	query := `
		INSERT INTO payroll_results (
			id, company_id, employee_id, period_id, period_code, status, rate_version,
			basic_salary, total_allowances, overtime_pay, holiday_allowance, gross_salary,
			health_deduction, jht_deduction, jp_deduction, income_tax,
			loan_deduction, other_deductions, total_deductions, net_salary,
			breakdown, calculated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
		ON CONFLICT (employee_id, period_id) DO UPDATE SET
			period_code = EXCLUDED.period_code,
			status = EXCLUDED.status,
			rate_version = EXCLUDED.rate_version,
			basic_salary = EXCLUDED.basic_salary,
			total_allowances = EXCLUDED.total_allowances,
			overtime_pay = EXCLUDED.overtime_pay,
			holiday_allowance = EXCLUDED.holiday_allowance,
			gross_salary = EXCLUDED.gross_salary,
			health_deduction = EXCLUDED.health_deduction,
			jht_deduction = EXCLUDED.jht_deduction,
			jp_deduction = EXCLUDED.jp_deduction,
			income_tax = EXCLUDED.income_tax,
			loan_deduction = EXCLUDED.loan_deduction,
			other_deductions = EXCLUDED.other_deductions,
			total_deductions = EXCLUDED.total_deductions,
			net_salary = EXCLUDED.net_salary,
			breakdown = EXCLUDED.breakdown,
			calculated_at = EXCLUDED.calculated_at,
			updated_at = NOW()
		WHERE payroll_results.status IN ('DRAFT', 'CALCULATED', 'VERIFIED')
		RETURNING id, created_at, updated_at
	`

	stored := result
	err = q.QueryRow(ctx, query,
		result.ID, result.CompanyID, result.EmployeeID, result.PeriodID, result.PeriodCode, result.Status, result.RateVersion,
		result.BasicSalary, result.TotalAllowances, result.OvertimePay, result.HolidayAllowance, result.GrossSalary,
		result.HealthDeduction, result.JHTDeduction, result.JPDeduction, result.IncomeTax,
		result.LoanDeduction, result.OtherDeductions, result.TotalDeductions, result.NetSalary,
		breakdown, result.CalculatedAt,
	).Scan(&stored.ID, &stored.CreatedAt, &stored.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollResult{}, payroll.ErrResultLocked
		}
		return payroll.PayrollResult{}, fmt.Errorf("failed to upsert payroll result: %w", err)
	}

	return stored, nil
}

func (r *payrollResultRepository) GetResult(ctx context.Context, companyID, employeeID, periodID string) (payroll.PayrollResult, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + resultColumns + `
		FROM payroll_results
		WHERE company_id = $1 AND employee_id = $2 AND period_id = $3
	`

	var (
		res       payroll.PayrollResult
		breakdown []byte
	)
	err := q.QueryRow(ctx, query, companyID, employeeID, periodID).Scan(
		&res.ID, &res.CompanyID, &res.EmployeeID, &res.PeriodID, &res.PeriodCode, &res.Status, &res.RateVersion,
		&res.BasicSalary, &res.TotalAllowances, &res.OvertimePay, &res.HolidayAllowance, &res.GrossSalary,
		&res.HealthDeduction, &res.JHTDeduction, &res.JPDeduction, &res.IncomeTax,
		&res.LoanDeduction, &res.OtherDeductions, &res.TotalDeductions, &res.NetSalary,
		&breakdown, &res.CalculatedAt, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollResult{}, payroll.ErrResultNotFound
		}
		return payroll.PayrollResult{}, fmt.Errorf("failed to get payroll result: %w", err)
	}

	var b resultBreakdown
	if err := json.Unmarshal(breakdown, &b); err != nil {
		return payroll.PayrollResult{}, fmt.Errorf("failed to decode payroll breakdown: %w", err)
	}
	res.Tax = b.Tax
	res.SocialSecurity = b.SocialSecurity
	res.Overtime = b.Overtime
	res.Holiday = b.Holiday

	return res, nil
}
