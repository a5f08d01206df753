package payroll

import (
	"errors"
	"testing"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	statusTK0 = payroll.TaxStatus{Marital: payroll.MaritalSingle, Dependents: 0}
	statusK1  = payroll.TaxStatus{Marital: payroll.MaritalMarried, Dependents: 1}
)

func TestCalculateMonthlyTax_AnnualizedTwentyMillion(t *testing.T) {
	calc := NewTaxCalculator(table2024(t))

	got, err := calc.CalculateMonthlyTax(idr(240000000), statusTK0)
	require.NoError(t, err)

	assertAmount(t, 54000000, got.TaxFreeAllowance)
	assertAmount(t, 186000000, got.AnnualTaxableIncome)
	assertAmount(t, 15500000, got.MonthlyTaxableIncome)
	require.Len(t, got.BracketTaxes, 5)
	assertAmount(t, 3000000, got.BracketTaxes[0])
	assertAmount(t, 18900000, got.BracketTaxes[1])
	assertAmount(t, 0, got.BracketTaxes[2])
	assertAmount(t, 21900000, got.AnnualTax)
	assertAmount(t, 1825000, got.MonthlyTax)
}

func TestCalculateMonthlyTax_AllBrackets(t *testing.T) {
	calc := NewTaxCalculator(table2024(t))

	got, err := calc.CalculateMonthlyTax(idr(6054000000), statusTK0)
	require.NoError(t, err)

	assertAmount(t, 6000000000, got.AnnualTaxableIncome)
	want := []int64{3000000, 28500000, 62500000, 1350000000, 350000000}
	for i, w := range want {
		assertAmount(t, w, got.BracketTaxes[i])
	}
	assertAmount(t, 1794000000, got.AnnualTax)
	assertAmount(t, 149500000, got.MonthlyTax)
}

func TestCalculateMonthlyTax_FloorsTaxableIncome(t *testing.T) {
	calc := NewTaxCalculator(table2024(t))

	cases := []struct {
		gross      int64
		wantPKP    int64
		wantAnnual int64
		wantMonth  int64
	}{
		{gross: 54000999, wantPKP: 0, wantAnnual: 0, wantMonth: 0},
		{gross: 55000999, wantPKP: 1000000, wantAnnual: 50000, wantMonth: 4167},
		{gross: 55001000, wantPKP: 1001000, wantAnnual: 50050, wantMonth: 4171},
	}
	for _, c := range cases {
		got, err := calc.CalculateMonthlyTax(idr(c.gross), statusTK0)
		require.NoError(t, err)
		assertAmount(t, c.wantPKP, got.AnnualTaxableIncome)
		assertAmount(t, c.wantAnnual, got.AnnualTax)
		assertAmount(t, c.wantMonth, got.MonthlyTax)
	}
}

func TestCalculateMonthlyTax_BelowTaxFreeAllowance(t *testing.T) {
	calc := NewTaxCalculator(table2024(t))

	got, err := calc.CalculateMonthlyTax(idr(40000000), statusK1)
	require.NoError(t, err)

	assert.True(t, got.AnnualTaxableIncome.IsZero())
	assert.True(t, got.MonthlyTax.IsZero())
}

func TestCalculateMonthlyTax_RejectsNegativeIncome(t *testing.T) {
	calc := NewTaxCalculator(table2024(t))

	_, err := calc.CalculateMonthlyTax(idr(-1), statusTK0)

	var errs validator.ValidationErrors
	require.True(t, errors.As(err, &errs))
	assert.Equal(t, "must be non-negative", errs.ToMap()["gross_annual_income"])
}

func TestCalculateMonthlyTax_RejectsUnknownStatus(t *testing.T) {
	calc := NewTaxCalculator(table2024(t))

	_, err := calc.CalculateMonthlyTax(idr(100000000), payroll.TaxStatus{Marital: "HB", Dependents: 0})

	var errs validator.ValidationErrors
	assert.True(t, errors.As(err, &errs))
}

func TestCalculateMonthlyTax_NonDecreasingInIncome(t *testing.T) {
	calc := NewTaxCalculator(table2024(t))
	step := idr(37500000)

	prev := decimal.Zero
	for gross := decimal.Zero; gross.LessThan(idr(6000000000)); gross = gross.Add(step) {
		got, err := calc.CalculateMonthlyTax(gross, statusTK0)
		require.NoError(t, err)
		assert.False(t, got.AnnualTax.LessThan(prev), "tax dropped at gross %s", gross)
		prev = got.AnnualTax
	}
}

func TestCalculateMonthlyTax_MoreDependentsNeverRaiseTax(t *testing.T) {
	table := table2024(t)
	calc := NewTaxCalculator(table)
	gross := idr(300000000)

	for _, m := range payroll.MaritalStatuses {
		prevPTKP := decimal.Zero
		prevTax := decimal.Zero
		for deps := 0; deps <= payroll.MaxCountedDependents; deps++ {
			status := payroll.TaxStatus{Marital: m, Dependents: deps}
			got, err := calc.CalculateMonthlyTax(gross, status)
			require.NoError(t, err)

			if deps > 0 {
				assert.True(t, got.TaxFreeAllowance.GreaterThan(prevPTKP), "%s PTKP must increase", status)
				assert.False(t, got.AnnualTax.GreaterThan(prevTax), "%s tax must not increase", status)
			}
			prevPTKP = got.TaxFreeAllowance
			prevTax = got.AnnualTax
		}
	}
}

func TestCalculateMonthlyTax_DependentsCappedAtThree(t *testing.T) {
	calc := NewTaxCalculator(table2024(t))

	three, err := calc.CalculateMonthlyTax(idr(300000000), payroll.TaxStatus{Marital: payroll.MaritalMarriedCombined, Dependents: 3})
	require.NoError(t, err)
	six, err := calc.CalculateMonthlyTax(idr(300000000), payroll.TaxStatus{Marital: payroll.MaritalMarriedCombined, Dependents: 6})
	require.NoError(t, err)

	assertAmount(t, 126000000, six.TaxFreeAllowance)
	assert.True(t, three.AnnualTax.Equal(six.AnnualTax))
}
