package payroll

import (
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/money"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/ratetable"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// SocialSecurityCalculator computes BPJS Kesehatan and Ketenagakerjaan.
// Health is based on basic salary, employment schemes on basic plus allowances,
// each capped by the rate table.
type SocialSecurityCalculator struct {
	table ratetable.Table
}

func NewSocialSecurityCalculator(table ratetable.Table) SocialSecurityCalculator {
	return SocialSecurityCalculator{table: table}
}

func (c SocialSecurityCalculator) CalculateContributions(basic, totalAllowances decimal.Decimal, hasCoveredFamily bool) (payroll.SocialSecurityResult, error) {
	if err := validateContributionBase(basic, totalAllowances); err != nil {
		return payroll.SocialSecurityResult{}, err
	}

	healthBase := money.Min(basic, c.table.Health.Cap)
	employmentBase := money.Min(basic.Add(totalAllowances), c.table.Employment.Cap)

	result := payroll.SocialSecurityResult{
		HealthCapApplied:     healthBase,
		EmploymentCapApplied: employmentBase,
		HealthEmployee:       money.RoundHalfUp(healthBase.Mul(c.table.Health.EmployeeRate)),
		HealthFamilyEmployee: decimal.Zero,
		JHTEmployee:          money.RoundHalfUp(employmentBase.Mul(c.table.Employment.JHTEmployee)),
		JPEmployee:           money.RoundHalfUp(employmentBase.Mul(c.table.Employment.JPEmployee)),
	}
	if hasCoveredFamily {
		result.HealthFamilyEmployee = money.RoundHalfUp(healthBase.Mul(c.table.Health.FamilyRate))
	}
	return result, nil
}

// CalculateEmployerContributions is informational; it never changes net pay.
func (c SocialSecurityCalculator) CalculateEmployerContributions(basic, totalAllowances decimal.Decimal, rc payroll.RiskCategory) (payroll.EmployerContributions, error) {
	if err := validateContributionBase(basic, totalAllowances); err != nil {
		return payroll.EmployerContributions{}, err
	}

	healthBase := money.Min(basic, c.table.Health.Cap)
	employmentBase := money.Min(basic.Add(totalAllowances), c.table.Employment.Cap)

	return payroll.EmployerContributions{
		RiskCategory: rc,
		Health:       money.RoundHalfUp(healthBase.Mul(c.table.Health.EmployerRate)),
		JHT:          money.RoundHalfUp(employmentBase.Mul(c.table.Employment.JHTEmployer)),
		JP:           money.RoundHalfUp(employmentBase.Mul(c.table.Employment.JPEmployer)),
		JKK:          money.RoundHalfUp(employmentBase.Mul(c.table.WorkAccidentRate(rc))),
		JKM:          money.RoundHalfUp(employmentBase.Mul(c.table.Employment.JKM)),
	}, nil
}

func validateContributionBase(basic, totalAllowances decimal.Decimal) error {
	var errs validator.ValidationErrors
	if basic.IsNegative() {
		errs.Add("basic_salary", "must be non-negative")
	}
	if totalAllowances.IsNegative() {
		errs.Add("total_allowances", "must be non-negative")
	}
	return errs.Err()
}
