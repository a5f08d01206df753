package payroll

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/money"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

const fullServiceMonths = 12

var hundred = decimal.NewFromInt(100)

// HolidayAllowanceInput is the THR base. Variable allowances have no field
// here, so they cannot leak into the base.
type HolidayAllowanceInput struct {
	BasicSalary     decimal.Decimal
	FixedAllowances decimal.Decimal
}

func (in HolidayAllowanceInput) Base() decimal.Decimal {
	return in.BasicSalary.Add(in.FixedAllowances)
}

// HolidayAllowanceInputFrom picks the THR base out of a profile.
func HolidayAllowanceInputFrom(p payroll.CompensationProfile) HolidayAllowanceInput {
	return HolidayAllowanceInput{BasicSalary: p.BasicSalary, FixedAllowances: p.FixedAllowances}
}

// HolidayAllowanceCalculator computes THR, prorated linearly below a year of service.
type HolidayAllowanceCalculator struct{}

func NewHolidayAllowanceCalculator() HolidayAllowanceCalculator {
	return HolidayAllowanceCalculator{}
}

func (c HolidayAllowanceCalculator) Calculate(in HolidayAllowanceInput, employmentStart, asOf time.Time, kind payroll.HolidayKind) (payroll.HolidayAllowanceResult, error) {
	if err := validateHolidayAllowance(in, employmentStart, asOf, kind); err != nil {
		return payroll.HolidayAllowanceResult{}, err
	}
	return c.prorate(in, monthsBetween(employmentStart, asOf), kind), nil
}

// CalculateOnResignation counts service from the later of the last THR
// payment and the employment start, so an already paid stretch is not paid twice.
func (c HolidayAllowanceCalculator) CalculateOnResignation(in HolidayAllowanceInput, employmentStart time.Time, lastPaidAt *time.Time, resignationDate time.Time, kind payroll.HolidayKind) (payroll.HolidayAllowanceResult, error) {
	from := employmentStart
	if lastPaidAt != nil && lastPaidAt.After(from) {
		from = *lastPaidAt
	}
	if err := validateHolidayAllowance(in, from, resignationDate, kind); err != nil {
		return payroll.HolidayAllowanceResult{}, err
	}
	return c.prorate(in, monthsBetween(from, resignationDate), kind), nil
}

func (c HolidayAllowanceCalculator) prorate(in HolidayAllowanceInput, months int, kind payroll.HolidayKind) payroll.HolidayAllowanceResult {
	base := in.Base()
	result := payroll.HolidayAllowanceResult{
		Kind:            kind,
		MonthsOfService: months,
		Base:            base,
		Percentage:      decimal.Zero,
		Amount:          decimal.Zero,
	}

	switch {
	case months < 1:
		return result
	case months >= fullServiceMonths:
		result.Eligible = true
		result.Percentage = hundred
		result.Amount = base
	default:
		ratio := decimal.NewFromInt(int64(months)).Div(decimal.NewFromInt(fullServiceMonths))
		result.Eligible = true
		result.Percentage = ratio.Mul(hundred).Round(2)
		result.Amount = money.RoundHalfUp(base.Mul(decimal.NewFromInt(int64(months))).Div(decimal.NewFromInt(fullServiceMonths)))
	}
	return result
}

func validateHolidayAllowance(in HolidayAllowanceInput, from, asOf time.Time, kind payroll.HolidayKind) error {
	var errs validator.ValidationErrors
	if in.BasicSalary.IsNegative() {
		errs.Add("basic_salary", "must be non-negative")
	}
	if in.FixedAllowances.IsNegative() {
		errs.Add("fixed_allowances", "must be non-negative")
	}
	if from.IsZero() {
		errs.Add("employment_start", "is required")
	}
	if asOf.IsZero() {
		errs.Add("as_of", "is required")
	}
	if !kind.Valid() {
		errs.Add("holiday_kind", fmt.Sprintf("unknown holiday kind %q", kind))
	}
	return errs.Err()
}

// monthsBetween counts whole calendar months, one less when the
// anniversary day of the last month has not been reached yet.
func monthsBetween(start, asOf time.Time) int {
	years := asOf.Year() - start.Year()
	months := int(asOf.Month()) - int(start.Month())

	total := years*12 + months
	if asOf.Day() < start.Day() {
		total--
	}
	if total < 0 {
		total = 0
	}
	return total
}
