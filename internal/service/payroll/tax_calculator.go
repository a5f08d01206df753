package payroll

import (
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/money"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/ratetable"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

var monthsPerYear = decimal.NewFromInt(12)

// TaxCalculator computes monthly PPh 21 from annual income.
type TaxCalculator struct {
	table ratetable.Table
}

func NewTaxCalculator(table ratetable.Table) TaxCalculator {
	return TaxCalculator{table: table}
}

// CalculateMonthlyTax applies PTKP, floors PKP to the thousand and runs the
// progressive brackets. Each bracket is rounded on its own before summing.
func (c TaxCalculator) CalculateMonthlyTax(grossAnnualIncome decimal.Decimal, status payroll.TaxStatus) (payroll.TaxCalculationResult, error) {
	var errs validator.ValidationErrors
	if grossAnnualIncome.IsNegative() {
		errs.Add("gross_annual_income", "must be non-negative")
	}
	if !status.Marital.Valid() {
		errs.Add("tax_status", "unknown marital status "+string(status.Marital))
	}
	if status.Dependents < 0 {
		errs.Add("tax_status", "dependents must be non-negative")
	}
	if err := errs.Err(); err != nil {
		return payroll.TaxCalculationResult{}, err
	}

	ptkp, err := c.table.TaxFreeAllowance(status)
	if err != nil {
		return payroll.TaxCalculationResult{}, err
	}

	pkp := money.FloorToThousand(money.NonNegative(grossAnnualIncome.Sub(ptkp)))

	bracketTaxes := make([]decimal.Decimal, 0, len(c.table.TaxBrackets))
	annualTax := decimal.Zero
	lower := decimal.Zero
	for _, b := range c.table.TaxBrackets {
		portion := decimal.Zero
		if pkp.GreaterThan(lower) {
			upper := pkp
			if b.UpTo != nil {
				upper = money.Min(pkp, *b.UpTo)
			}
			portion = upper.Sub(lower)
		}
		tax := money.RoundHalfUp(portion.Mul(b.Rate))
		bracketTaxes = append(bracketTaxes, tax)
		annualTax = annualTax.Add(tax)

		if b.UpTo != nil {
			lower = *b.UpTo
		}
	}

	return payroll.TaxCalculationResult{
		TaxStatus:            status,
		GrossAnnualIncome:    grossAnnualIncome,
		TaxFreeAllowance:     ptkp,
		AnnualTaxableIncome:  pkp,
		MonthlyTaxableIncome: money.RoundHalfUp(pkp.Div(monthsPerYear)),
		BracketTaxes:         bracketTaxes,
		AnnualTax:            annualTax,
		MonthlyTax:           money.RoundHalfUp(annualTax.Div(monthsPerYear)),
	}, nil
}
