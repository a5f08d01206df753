package payroll

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTaxStatus(t *testing.T) {
	cases := []struct {
		code       string
		want       TaxStatus
		wantCode   string
		shouldFail bool
	}{
		{code: "TK/0", want: TaxStatus{MaritalSingle, 0}, wantCode: "TK/0"},
		{code: "k/2", want: TaxStatus{MaritalMarried, 2}, wantCode: "K/2"},
		{code: "K/I/1", want: TaxStatus{MaritalMarriedCombined, 1}, wantCode: "K/I/1"},
		{code: "K/5", want: TaxStatus{MaritalMarried, 5}, wantCode: "K/3"},
		{code: "HB/0", shouldFail: true},
		{code: "TK", shouldFail: true},
		{code: "TK/-1", shouldFail: true},
		{code: "TK/x", shouldFail: true},
		{code: "", shouldFail: true},
	}

	for _, c := range cases {
		t.Run(c.code, func(t *testing.T) {
			got, err := ParseTaxStatus(c.code)
			if c.shouldFail {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
			assert.Equal(t, c.wantCode, got.Code())
		})
	}
}

func TestCountedDependentsCappedAtThree(t *testing.T) {
	assert.Equal(t, 0, TaxStatus{MaritalSingle, 0}.CountedDependents())
	assert.Equal(t, 3, TaxStatus{MaritalSingle, 3}.CountedDependents())
	assert.Equal(t, 3, TaxStatus{MaritalSingle, 7}.CountedDependents())
}

func TestPayrollStatusTransitions(t *testing.T) {
	assert.True(t, PayrollStatusDraft.CanTransitionTo(PayrollStatusCalculated))
	assert.True(t, PayrollStatusCalculated.CanTransitionTo(PayrollStatusVerified))
	assert.True(t, PayrollStatusVerified.CanTransitionTo(PayrollStatusApproved))
	assert.True(t, PayrollStatusApproved.CanTransitionTo(PayrollStatusPaid))

	assert.False(t, PayrollStatusCalculated.CanTransitionTo(PayrollStatusApproved), "no skipping")
	assert.False(t, PayrollStatusPaid.CanTransitionTo(PayrollStatusDraft), "no going back")
	assert.False(t, PayrollStatusPaid.CanTransitionTo(PayrollStatusPaid))
	assert.False(t, PayrollStatus("UNKNOWN").CanTransitionTo(PayrollStatusCalculated))
}

func TestPayrollStatusRecalculable(t *testing.T) {
	assert.True(t, PayrollStatusDraft.Recalculable())
	assert.True(t, PayrollStatusCalculated.Recalculable())
	assert.True(t, PayrollStatusVerified.Recalculable())
	assert.False(t, PayrollStatusApproved.Recalculable())
	assert.False(t, PayrollStatusPaid.Recalculable())
}

func TestWeekBounds(t *testing.T) {
	// 2025-03-12 is a Wednesday.
	monday, sunday := WeekBounds(time.Date(2025, 3, 12, 15, 30, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), monday)
	assert.Equal(t, time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC), sunday)

	// Sunday belongs to the week that started the previous Monday.
	monday, _ = WeekBounds(time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), monday)
}

func TestPeriodContains(t *testing.T) {
	p := PayrollPeriod{
		StartDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
	}
	assert.True(t, p.Contains(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, p.Contains(time.Date(2025, 3, 31, 23, 0, 0, 0, time.UTC)))
	assert.False(t, p.Contains(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, p.Contains(time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)))
}

func TestSocialSecurityTotals(t *testing.T) {
	r := SocialSecurityResult{
		HealthEmployee:       decimal.NewFromInt(400000),
		HealthFamilyEmployee: decimal.NewFromInt(100000),
		JHTEmployee:          decimal.NewFromInt(200000),
		JPEmployee:           decimal.NewFromInt(100000),
	}
	assert.True(t, r.HealthTotal().Equal(decimal.NewFromInt(500000)))
	assert.True(t, r.EmployeeTotal().Equal(decimal.NewFromInt(800000)))
}

func validPreviewRequest() PreviewRequest {
	return PreviewRequest{
		Profile: ProfileRequest{
			EmployeeID:      "emp-1",
			BasicSalary:     amountPtr(decimal.NewFromInt(15000000)),
			FixedAllowances: decimal.NewFromInt(5000000),
			TaxStatus:       "K/1",
			EmploymentStart: "2020-01-15",
		},
		Period: PeriodRequest{
			StartDate: "2025-03-01",
			EndDate:   "2025-03-31",
		},
		Overtime: []OvertimeEntryRequest{
			{ID: "ot-1", Date: "2025-03-10", DayType: "weekday", Hours: amountPtr(decimal.NewFromFloat(2.5))},
		},
	}
}

func TestPreviewRequestValidate(t *testing.T) {
	req := validPreviewRequest()
	require.NoError(t, req.Validate())

	input := req.ToInput("company-1")
	assert.Equal(t, "emp-1", input.EmployeeID)
	assert.Equal(t, TaxStatus{MaritalMarried, 1}, input.Profile.TaxStatus)
	assert.Equal(t, input.Period.EndDate, input.Period.PaymentDate, "payment date defaults to end date")
	require.Len(t, input.ApprovedOvertime, 1)
	assert.Equal(t, OvertimeStatusApproved, input.ApprovedOvertime[0].Status)
}

func TestPreviewRequestValidateRejects(t *testing.T) {
	req := validPreviewRequest()
	req.Profile.BasicSalary = amountPtr(decimal.NewFromInt(-1))
	req.Profile.TaxStatus = "X/1"
	req.Period.EndDate = "2025-02-01"
	req.Period.HolidayAllowance = true
	req.Overtime[0].Hours = amountPtr(decimal.Zero)

	err := req.Validate()

	var errs validator.ValidationErrors
	require.True(t, errors.As(err, &errs))
	fields := errs.ToMap()
	assert.Contains(t, fields, "profile.basic_salary")
	assert.Contains(t, fields, "profile.tax_status")
	assert.Contains(t, fields, "period.end_date")
	assert.Contains(t, fields, "period.holiday_kind")
	assert.Contains(t, fields, "overtime[0].hours")
}

func TestPreviewRequestValidateTags(t *testing.T) {
	req := validPreviewRequest()
	req.Overtime[0].DayType = "holiday"

	err := req.Validate()

	var errs validator.ValidationErrors
	require.True(t, errors.As(err, &errs))
	assert.Contains(t, errs.ToMap(), "overtime[0].day_type")
}

func TestComplianceCheckRequestValidate(t *testing.T) {
	ok := ComplianceCheckRequest{EmployeeID: "emp-1", Date: "2025-03-10", ProposedHours: amountPtr(decimal.NewFromInt(2))}
	assert.NoError(t, ok.Validate())

	bad := ComplianceCheckRequest{EmployeeID: "emp-1", Date: "2025-03-10"}
	var errs validator.ValidationErrors
	require.True(t, errors.As(bad.Validate(), &errs))
	assert.Equal(t, "is required", errs.ToMap()["proposed_hours"])

	bad.ProposedHours = amountPtr(decimal.Zero)
	require.True(t, errors.As(bad.Validate(), &errs))
	assert.Equal(t, "must be positive", errs.ToMap()["proposed_hours"])
}

func TestPreviewRequestRequiresAmounts(t *testing.T) {
	body := `{
		"profile": {"employee_id": "emp-1", "tax_status": "TK/0", "employment_start": "2020-01-15"},
		"period": {"start_date": "2025-03-01", "end_date": "2025-03-31"},
		"overtime": [{"id": "ot-1", "date": "2025-03-10", "day_type": "weekday"}]
	}`
	var req PreviewRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	err := req.Validate()

	var errs validator.ValidationErrors
	require.True(t, errors.As(err, &errs))
	fields := errs.ToMap()
	assert.Equal(t, "is required", fields["profile.basic_salary"])
	assert.Equal(t, "is required", fields["overtime[0].hours"])
	assert.NotContains(t, fields, "profile.fixed_allowances", "optional amounts default to zero")
}

func TestPreviewRequestAcceptsZeroBasicSalary(t *testing.T) {
	req := validPreviewRequest()
	req.Profile.BasicSalary = amountPtr(decimal.Zero)

	assert.NoError(t, req.Validate())
}

func amountPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

func TestResultBreakdownJSONKeys(t *testing.T) {
	result := PayrollResult{
		Tax: TaxCalculationResult{TaxStatus: TaxStatus{MaritalMarried, 1}, MonthlyTax: decimal.NewFromInt(325000)},
		SocialSecurity: SocialSecurityResult{
			JHTEmployee: decimal.NewFromInt(200000),
			Employer:    &EmployerContributions{RiskCategory: RiskLow, JKK: decimal.NewFromInt(24000)},
		},
		Overtime: OvertimeResult{WeeklyLimitExceeded: true},
		Holiday:  &HolidayAllowanceResult{Kind: HolidayChristmas, MonthsOfService: 7},
	}

	raw, err := json.Marshal(struct {
		Tax            TaxCalculationResult    `json:"tax"`
		SocialSecurity SocialSecurityResult    `json:"social_security"`
		Overtime       OvertimeResult          `json:"overtime"`
		Holiday        *HolidayAllowanceResult `json:"holiday"`
	}{result.Tax, result.SocialSecurity, result.Overtime, result.Holiday})
	require.NoError(t, err)

	var doc map[string]map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "325000", doc["tax"]["monthly_tax"])
	assert.Equal(t, map[string]any{"marital": "K", "dependents": float64(1)}, doc["tax"]["tax_status"])
	assert.Equal(t, "200000", doc["social_security"]["jht_employee"])
	assert.Contains(t, doc["social_security"]["employer"], "jkk")
	assert.Equal(t, true, doc["overtime"]["weekly_limit_exceeded"])
	assert.Equal(t, float64(7), doc["holiday"]["months_of_service"])
	assert.NotContains(t, doc["tax"], "MonthlyTax")
}

func TestNotFoundSentinels(t *testing.T) {
	assert.True(t, errors.Is(ErrEmployeeNotFound, ErrNotFound))
	assert.True(t, errors.Is(ErrPeriodNotFound, ErrNotFound))
	assert.True(t, errors.Is(ErrResultNotFound, ErrNotFound))
	assert.False(t, errors.Is(ErrResultLocked, ErrNotFound))
}
