package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type payrollAdjustmentRepository struct {
	db *database.DB
}

func NewPayrollAdjustmentRepository(db *database.DB) payroll.AdjustmentRepository {
	return &payrollAdjustmentRepository{db: db}
}

func (r *payrollAdjustmentRepository) GetAdjustments(ctx context.Context, companyID, employeeID, periodID string) (payroll.Adjustments, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT loan_deduction, other_deductions
		FROM payroll_adjustments
		WHERE company_id = $1 AND employee_id = $2 AND period_id = $3
	`

	var a payroll.Adjustments
	err := q.QueryRow(ctx, query, companyID, employeeID, periodID).Scan(&a.LoanDeduction, &a.OtherDeductions)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Adjustments{LoanDeduction: decimal.Zero, OtherDeductions: decimal.Zero}, nil
		}
		return payroll.Adjustments{}, fmt.Errorf("failed to get payroll adjustments: %w", err)
	}
	return a, nil
}
