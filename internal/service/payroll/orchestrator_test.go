package payroll

import (
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/validator"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	fixedNow = time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC)
	fixedID  = uuid.MustParse("0190a6b2-7c1e-7d3a-9f00-1234567890ab")
)

func newTestOrchestrator(t *testing.T) Orchestrator {
	return NewOrchestrator(table2024(t),
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() (uuid.UUID, error) { return fixedID, nil }),
	)
}

func baseInput() payroll.CalculationInput {
	period := march2024()
	return payroll.CalculationInput{
		EmployeeID: "emp-1",
		PeriodID:   period.ID,
		Profile: payroll.CompensationProfile{
			EmployeeID:      "emp-1",
			CompanyID:       "company-1",
			BasicSalary:     idr(10000000),
			FixedAllowances: decimal.Zero,
			TaxStatus:       statusTK0,
			EmploymentStart: date(2022, 3, 1),
			RiskCategory:    payroll.RiskLow,
		},
		Period: period,
	}
}

func TestOrchestrator_HolidayPeriodWithFullAllowance(t *testing.T) {
	in := baseInput()
	in.Period.HolidayAllowance = true
	in.Period.HolidayKind = payroll.HolidayIdulFitri

	got, err := newTestOrchestrator(t).Calculate(in)
	require.NoError(t, err)

	require.NotNil(t, got.Holiday)
	assert.Equal(t, 24, got.Holiday.MonthsOfService)
	assertAmount(t, 10000000, got.HolidayAllowance)
	assertAmount(t, 20000000, got.GrossSalary)

	assertAmount(t, 240000000, got.Tax.GrossAnnualIncome)
	assertAmount(t, 54000000, got.Tax.TaxFreeAllowance)
	assertAmount(t, 1825000, got.IncomeTax)

	assertAmount(t, 400000, got.HealthDeduction)
	assertAmount(t, 200000, got.JHTDeduction)
	assertAmount(t, 100000, got.JPDeduction)
	assertAmount(t, 2525000, got.TotalDeductions)
	assertAmount(t, 17475000, got.NetSalary)

	assert.Equal(t, payroll.PayrollStatusCalculated, got.Status)
	assert.Equal(t, fixedID.String(), got.ID)
	assert.Equal(t, fixedNow, got.CalculatedAt)
	assert.Equal(t, "2024.1", got.RateVersion)
	assert.Equal(t, "company-1", got.CompanyID)
	require.NotNil(t, got.SocialSecurity.Employer)
	assertAmount(t, 54000, got.SocialSecurity.Employer.JKK) // 0.54% of 10,000,000
}

func TestOrchestrator_LeaverCountsFromLastHolidayPayment(t *testing.T) {
	in := baseInput()
	in.Period.HolidayAllowance = true
	in.Period.HolidayKind = payroll.HolidayIdulFitri
	lastPaid := date(2023, 4, 10)
	leaving := date(2024, 3, 15)
	in.Profile.LastHolidayAllowancePaidAt = &lastPaid
	in.Profile.EmploymentEnd = &leaving

	got, err := newTestOrchestrator(t).Calculate(in)
	require.NoError(t, err)

	require.NotNil(t, got.Holiday)
	assert.Equal(t, 11, got.Holiday.MonthsOfService)
	assertAmount(t, 9166667, got.HolidayAllowance)
}

func TestOrchestrator_RegularMonth(t *testing.T) {
	got, err := newTestOrchestrator(t).Calculate(baseInput())
	require.NoError(t, err)

	assert.Nil(t, got.Holiday)
	assertAmount(t, 10000000, got.GrossSalary)
	// 120M - 54M = 66M: 3,000,000 + 900,000
	assertAmount(t, 325000, got.IncomeTax)
	assertAmount(t, 8975000, got.NetSalary)
}

func TestOrchestrator_YearToDateOverride(t *testing.T) {
	in := baseInput()
	ytd := idr(54000000)
	in.YearToDateIncome = &ytd

	got, err := newTestOrchestrator(t).Calculate(in)
	require.NoError(t, err)

	assertAmount(t, 54000000, got.Tax.GrossAnnualIncome)
	assert.True(t, got.IncomeTax.IsZero())
}

func TestOrchestrator_OvertimeAndAdjustments(t *testing.T) {
	in := baseInput()
	in.Profile.BasicSalary = basicFor50k
	in.Profile.FixedAllowances = idr(1000000)
	in.Profile.VariableAllowances = idr(500000)
	in.ApprovedOvertime = []payroll.OvertimeEntry{
		approved("ot-1", date(2024, 3, 4), payroll.DayTypeWeekday, "2.5"),
	}
	in.Adjustments = payroll.Adjustments{LoanDeduction: idr(750000), OtherDeductions: idr(50000)}

	got, err := newTestOrchestrator(t).Calculate(in)
	require.NoError(t, err)

	assertAmount(t, 1500000, got.TotalAllowances)
	assertAmount(t, 225000, got.OvertimePay)
	assertAmount(t, 10125000, got.GrossSalary)
	assertAmount(t, 750000, got.LoanDeduction)
	assertAmount(t, 50000, got.OtherDeductions)
	assert.True(t, got.GrossSalary.Sub(got.TotalDeductions).Equal(got.NetSalary))
}

func TestOrchestrator_VariableAllowancesOutsideHolidayBase(t *testing.T) {
	in := baseInput()
	in.Profile.FixedAllowances = idr(2000000)
	in.Profile.VariableAllowances = idr(3000000)
	in.Period.HolidayAllowance = true
	in.Period.HolidayKind = payroll.HolidayChristmas

	got, err := newTestOrchestrator(t).Calculate(in)
	require.NoError(t, err)

	assertAmount(t, 12000000, got.HolidayAllowance)
	assertAmount(t, 5000000, got.TotalAllowances)
	assertAmount(t, 27000000, got.GrossSalary)
}

func TestOrchestrator_NetEqualsGrossMinusDeductions(t *testing.T) {
	o := newTestOrchestrator(t)
	statuses := []payroll.TaxStatus{statusTK0, statusK1, {Marital: payroll.MaritalMarriedCombined, Dependents: 3}}

	for i, basic := range []int64{4800000, 7777777, 12345678, 25000000, 99999999} {
		in := baseInput()
		in.Profile.BasicSalary = idr(basic)
		in.Profile.FixedAllowances = idr(basic / 7)
		in.Profile.VariableAllowances = idr(basic / 13)
		in.Profile.HasCoveredFamily = i%2 == 0
		in.Profile.TaxStatus = statuses[i%len(statuses)]
		in.Period.HolidayAllowance = i%2 == 1
		in.Period.HolidayKind = payroll.HolidayVesak
		in.ApprovedOvertime = []payroll.OvertimeEntry{
			approved("x", date(2024, 3, 2), payroll.DayTypeRestDay, "9.25"),
		}

		got, err := o.Calculate(in)
		require.NoError(t, err)
		assert.True(t, got.GrossSalary.Sub(got.TotalDeductions).Equal(got.NetSalary), "basic %d", basic)
		assert.False(t, got.NetSalary.IsNegative())
		sum := got.HealthDeduction.Add(got.JHTDeduction).Add(got.JPDeduction).Add(got.IncomeTax).
			Add(got.LoanDeduction).Add(got.OtherDeductions)
		assert.True(t, sum.Equal(got.TotalDeductions), "basic %d", basic)
	}
}

func TestOrchestrator_NegativeNetFails(t *testing.T) {
	in := baseInput()
	in.Adjustments.LoanDeduction = idr(30000000)

	_, err := newTestOrchestrator(t).Calculate(in)

	var errs validator.ValidationErrors
	require.True(t, errors.As(err, &errs))
	assert.Contains(t, errs.ToMap(), "net_salary")
}

func TestOrchestrator_RejectsInvalidInput(t *testing.T) {
	in := baseInput()
	in.EmployeeID = ""
	in.Profile.BasicSalary = idr(-1)
	in.Adjustments.OtherDeductions = idr(-1)
	in.Period.EndDate = date(2024, 2, 1)

	_, err := newTestOrchestrator(t).Calculate(in)

	var errs validator.ValidationErrors
	require.True(t, errors.As(err, &errs))
	fields := errs.ToMap()
	assert.Contains(t, fields, "employee_id")
	assert.Contains(t, fields, "basic_salary")
	assert.Contains(t, fields, "other_deductions")
	assert.Contains(t, fields, "period.end_date")
}

func TestOrchestrator_OvertimeErrorsAreWrapped(t *testing.T) {
	in := baseInput()
	in.ApprovedOvertime = []payroll.OvertimeEntry{approved("late", date(2024, 4, 2), payroll.DayTypeWeekday, "1")}

	_, err := newTestOrchestrator(t).Calculate(in)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "overtime:")
	var errs validator.ValidationErrors
	assert.True(t, errors.As(err, &errs))
}

func TestOrchestrator_DefaultIDIsUUIDv7(t *testing.T) {
	got, err := NewOrchestrator(table2024(t)).Calculate(baseInput())
	require.NoError(t, err)

	assert.True(t, validator.IsValidUUID(got.ID))
}
