package payroll

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/ratetable"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/validator"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Orchestrator turns one employee's inputs into an itemized gross-to-net
// result. It does no I/O and is safe for concurrent use.
type Orchestrator struct {
	table    ratetable.Table
	tax      TaxCalculator
	social   SocialSecurityCalculator
	overtime OvertimeCalculator
	holiday  HolidayAllowanceCalculator
	now      func() time.Time
	newID    func() (uuid.UUID, error)
}

type OrchestratorOption func(*Orchestrator)

// WithClock sets the source of CalculatedAt.
func WithClock(now func() time.Time) OrchestratorOption {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// WithIDGenerator sets the source of result IDs.
func WithIDGenerator(newID func() (uuid.UUID, error)) OrchestratorOption {
	return func(o *Orchestrator) {
		o.newID = newID
	}
}

func NewOrchestrator(table ratetable.Table, opts ...OrchestratorOption) Orchestrator {
	o := Orchestrator{
		table:    table,
		tax:      NewTaxCalculator(table),
		social:   NewSocialSecurityCalculator(table),
		overtime: NewOvertimeCalculator(table),
		holiday:  NewHolidayAllowanceCalculator(),
		now:      time.Now,
		newID:    uuid.NewV7,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Table returns the rate table this orchestrator calculates with.
func (o Orchestrator) Table() ratetable.Table {
	return o.table
}

func (o Orchestrator) Calculate(in payroll.CalculationInput) (payroll.PayrollResult, error) {
	if err := validateInput(in); err != nil {
		return payroll.PayrollResult{}, err
	}
	profile := in.Profile
	period := in.Period

	overtime, err := o.overtime.Calculate(in.ApprovedOvertime, profile.BasicSalary, period)
	if err != nil {
		return payroll.PayrollResult{}, fmt.Errorf("overtime: %w", err)
	}

	var holiday *payroll.HolidayAllowanceResult
	holidayAmount := decimal.Zero
	if period.HolidayAllowance {
		asOf := period.PaymentDate
		if asOf.IsZero() {
			asOf = period.EndDate
		}
		var thr payroll.HolidayAllowanceResult
		if profile.LeavesWithin(period) {
			thr, err = o.holiday.CalculateOnResignation(HolidayAllowanceInputFrom(profile),
				profile.EmploymentStart, profile.LastHolidayAllowancePaidAt, *profile.EmploymentEnd, period.HolidayKind)
		} else {
			thr, err = o.holiday.Calculate(HolidayAllowanceInputFrom(profile), profile.EmploymentStart, asOf, period.HolidayKind)
		}
		if err != nil {
			return payroll.PayrollResult{}, fmt.Errorf("holiday allowance: %w", err)
		}
		holiday = &thr
		holidayAmount = thr.Amount
	}

	totalAllowances := profile.TotalAllowances()
	gross := profile.BasicSalary.Add(totalAllowances).Add(overtime.TotalPay).Add(holidayAmount)

	social, err := o.social.CalculateContributions(profile.BasicSalary, totalAllowances, profile.HasCoveredFamily)
	if err != nil {
		return payroll.PayrollResult{}, fmt.Errorf("social security: %w", err)
	}
	employer, err := o.social.CalculateEmployerContributions(profile.BasicSalary, totalAllowances, profile.RiskCategory)
	if err != nil {
		return payroll.PayrollResult{}, fmt.Errorf("employer contributions: %w", err)
	}
	social.Employer = &employer

	// Without a year-to-date feed the current month stands in for the year.
	annualIncome := gross.Mul(monthsPerYear)
	if in.YearToDateIncome != nil {
		annualIncome = *in.YearToDateIncome
	}
	tax, err := o.tax.CalculateMonthlyTax(annualIncome, profile.TaxStatus)
	if err != nil {
		return payroll.PayrollResult{}, fmt.Errorf("income tax: %w", err)
	}

	deductions := social.EmployeeTotal().
		Add(tax.MonthlyTax).
		Add(in.Adjustments.LoanDeduction).
		Add(in.Adjustments.OtherDeductions)
	net := gross.Sub(deductions)
	if net.IsNegative() {
		return payroll.PayrollResult{}, validator.ValidationErrors{{
			Field:   "net_salary",
			Message: fmt.Sprintf("deductions %s exceed gross salary %s", deductions, gross),
		}}
	}

	id, err := o.newID()
	if err != nil {
		return payroll.PayrollResult{}, fmt.Errorf("failed to generate result id: %w", err)
	}
	now := o.now()

	return payroll.PayrollResult{
		ID:          id.String(),
		EmployeeID:  in.EmployeeID,
		CompanyID:   profile.CompanyID,
		PeriodID:    in.PeriodID,
		PeriodCode:  period.Code,
		Status:      payroll.PayrollStatusCalculated,
		RateVersion: o.table.Version,

		BasicSalary:      profile.BasicSalary,
		TotalAllowances:  totalAllowances,
		OvertimePay:      overtime.TotalPay,
		HolidayAllowance: holidayAmount,
		GrossSalary:      gross,

		HealthDeduction: social.HealthTotal(),
		JHTDeduction:    social.JHTEmployee,
		JPDeduction:     social.JPEmployee,
		IncomeTax:       tax.MonthlyTax,
		LoanDeduction:   in.Adjustments.LoanDeduction,
		OtherDeductions: in.Adjustments.OtherDeductions,
		TotalDeductions: deductions,
		NetSalary:       net,

		Tax:            tax,
		SocialSecurity: social,
		Overtime:       overtime,
		Holiday:        holiday,

		CalculatedAt: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func validateInput(in payroll.CalculationInput) error {
	var errs validator.ValidationErrors
	p := in.Profile

	if validator.IsEmpty(in.EmployeeID) {
		errs.Add("employee_id", "is required")
	}
	if p.BasicSalary.IsNegative() {
		errs.Add("basic_salary", "must be non-negative")
	}
	if p.FixedAllowances.IsNegative() {
		errs.Add("fixed_allowances", "must be non-negative")
	}
	if p.VariableAllowances.IsNegative() {
		errs.Add("variable_allowances", "must be non-negative")
	}
	if p.EmploymentStart.IsZero() {
		errs.Add("employment_start", "is required")
	}
	if !p.TaxStatus.Marital.Valid() || p.TaxStatus.Dependents < 0 {
		errs.Add("tax_status", "is invalid")
	}
	if in.Period.StartDate.IsZero() || in.Period.EndDate.IsZero() {
		errs.Add("period", "start and end dates are required")
	} else if in.Period.EndDate.Before(in.Period.StartDate) {
		errs.Add("period.end_date", "must not be before start_date")
	}
	if in.Adjustments.LoanDeduction.IsNegative() {
		errs.Add("loan_deduction", "must be non-negative")
	}
	if in.Adjustments.OtherDeductions.IsNegative() {
		errs.Add("other_deductions", "must be non-negative")
	}
	if in.YearToDateIncome != nil && in.YearToDateIncome.IsNegative() {
		errs.Add("year_to_date_income", "must be non-negative")
	}

	return errs.Err()
}
