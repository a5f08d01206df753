package payroll

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// ========== PREVIEW DTOs ==========

type ProfileRequest struct {
	EmployeeID         string           `json:"employee_id" validate:"required"`
	BasicSalary        *decimal.Decimal `json:"basic_salary"`
	FixedAllowances    decimal.Decimal  `json:"fixed_allowances"`
	VariableAllowances decimal.Decimal  `json:"variable_allowances"`
	TaxStatus          string           `json:"tax_status" validate:"required"`
	EmploymentStart    string           `json:"employment_start" validate:"required,datetime=2006-01-02"`
	HasCoveredFamily   bool             `json:"has_covered_family"`
	RiskCategory       string           `json:"risk_category" validate:"omitempty,oneof=very_low low medium high very_high"`
}

type PeriodRequest struct {
	ID               string `json:"id"`
	Code             string `json:"code"`
	StartDate        string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate          string `json:"end_date" validate:"required,datetime=2006-01-02"`
	PaymentDate      string `json:"payment_date" validate:"omitempty,datetime=2006-01-02"`
	HolidayAllowance bool   `json:"holiday_allowance"`
	HolidayKind      string `json:"holiday_kind" validate:"omitempty,oneof=idul_fitri christmas nyepi vesak chinese_new_year"`
}

type OvertimeEntryRequest struct {
	ID      string           `json:"id" validate:"required"`
	Date    string           `json:"date" validate:"required,datetime=2006-01-02"`
	DayType string           `json:"day_type" validate:"required,oneof=weekday rest_day"`
	Hours   *decimal.Decimal `json:"hours"`
	Status  string           `json:"status" validate:"omitempty,oneof=pending approved rejected"`
}

// PreviewRequest is a stateless calculation, nothing is stored.
type PreviewRequest struct {
	Profile          ProfileRequest         `json:"profile"`
	Period           PeriodRequest          `json:"period"`
	Overtime         []OvertimeEntryRequest `json:"overtime" validate:"dive"`
	LoanDeduction    decimal.Decimal        `json:"loan_deduction"`
	OtherDeductions  decimal.Decimal        `json:"other_deductions"`
	YearToDateIncome *decimal.Decimal       `json:"year_to_date_income,omitempty"`
}

func (r *PreviewRequest) Validate() error {
	if err := validator.Struct(r); err != nil {
		return err
	}

	var errs validator.ValidationErrors
	requiredNonNegative(&errs, "profile.basic_salary", r.Profile.BasicSalary)
	nonNegative(&errs, "profile.fixed_allowances", r.Profile.FixedAllowances)
	nonNegative(&errs, "profile.variable_allowances", r.Profile.VariableAllowances)
	nonNegative(&errs, "loan_deduction", r.LoanDeduction)
	nonNegative(&errs, "other_deductions", r.OtherDeductions)
	if r.YearToDateIncome != nil {
		nonNegative(&errs, "year_to_date_income", *r.YearToDateIncome)
	}
	if _, err := ParseTaxStatus(r.Profile.TaxStatus); err != nil {
		errs.Add("profile.tax_status", "must be TK, K or K/I followed by /<dependents>")
	}
	for i, e := range r.Overtime {
		requiredPositive(&errs, "overtime["+validator.Itoa(i)+"].hours", e.Hours)
	}
	start, _ := time.Parse(dateLayout, r.Period.StartDate)
	end, _ := time.Parse(dateLayout, r.Period.EndDate)
	if end.Before(start) {
		errs.Add("period.end_date", "must not be before start_date")
	}
	if r.Period.HolidayAllowance && r.Period.HolidayKind == "" {
		errs.Add("period.holiday_kind", "is required when holiday_allowance is set")
	}

	return errs.Err()
}

// ToInput converts a validated request into engine input.
func (r *PreviewRequest) ToInput(companyID string) CalculationInput {
	status, _ := ParseTaxStatus(r.Profile.TaxStatus)
	profile := CompensationProfile{
		EmployeeID:         r.Profile.EmployeeID,
		CompanyID:          companyID,
		BasicSalary:        *r.Profile.BasicSalary,
		FixedAllowances:    r.Profile.FixedAllowances,
		VariableAllowances: r.Profile.VariableAllowances,
		TaxStatus:          status,
		EmploymentStart:    mustDate(r.Profile.EmploymentStart),
		HasCoveredFamily:   r.Profile.HasCoveredFamily,
		RiskCategory:       RiskCategory(r.Profile.RiskCategory),
	}

	period := PayrollPeriod{
		ID:               r.Period.ID,
		CompanyID:        companyID,
		Code:             r.Period.Code,
		StartDate:        mustDate(r.Period.StartDate),
		EndDate:          mustDate(r.Period.EndDate),
		HolidayAllowance: r.Period.HolidayAllowance,
		HolidayKind:      HolidayKind(r.Period.HolidayKind),
	}
	period.PaymentDate = period.EndDate
	if r.Period.PaymentDate != "" {
		period.PaymentDate = mustDate(r.Period.PaymentDate)
	}

	entries := make([]OvertimeEntry, 0, len(r.Overtime))
	for _, e := range r.Overtime {
		status := OvertimeStatus(e.Status)
		if status == "" {
			status = OvertimeStatusApproved
		}
		entries = append(entries, OvertimeEntry{
			ID:         e.ID,
			EmployeeID: profile.EmployeeID,
			Date:       mustDate(e.Date),
			DayType:    DayType(e.DayType),
			Hours:      *e.Hours,
			Status:     status,
		})
	}

	return CalculationInput{
		EmployeeID:       profile.EmployeeID,
		PeriodID:         period.ID,
		Profile:          profile,
		Period:           period,
		ApprovedOvertime: entries,
		Adjustments: Adjustments{
			LoanDeduction:   r.LoanDeduction,
			OtherDeductions: r.OtherDeductions,
		},
		YearToDateIncome: r.YearToDateIncome,
	}
}

// ========== CALCULATE DTOs ==========

type CalculateEmployeeRequest struct {
	YearToDateIncome *decimal.Decimal `json:"year_to_date_income,omitempty"`
}

func (r *CalculateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors
	if r.YearToDateIncome != nil {
		nonNegative(&errs, "year_to_date_income", *r.YearToDateIncome)
	}
	return errs.Err()
}

// ========== COMPLIANCE DTOs ==========

type ComplianceCheckRequest struct {
	EmployeeID    string           `json:"employee_id" validate:"required"`
	Date          string           `json:"date" validate:"required,datetime=2006-01-02"`
	ProposedHours *decimal.Decimal `json:"proposed_hours"`
}

func (r *ComplianceCheckRequest) Validate() error {
	if err := validator.Struct(r); err != nil {
		return err
	}
	var errs validator.ValidationErrors
	requiredPositive(&errs, "proposed_hours", r.ProposedHours)
	return errs.Err()
}

func (r *ComplianceCheckRequest) ParsedDate() time.Time {
	return mustDate(r.Date)
}

type ComplianceWarningResponse struct {
	Code    ComplianceWarningCode `json:"code"`
	Limit   decimal.Decimal       `json:"limit"`
	Actual  decimal.Decimal       `json:"actual"`
	Message string                `json:"message"`
}

type ComplianceReportResponse struct {
	EmployeeID    string                      `json:"employee_id"`
	Date          string                      `json:"date"`
	ProposedHours decimal.Decimal             `json:"proposed_hours"`
	DayHours      decimal.Decimal             `json:"day_hours"`
	WeekStart     string                      `json:"week_start"`
	WeekEnd       string                      `json:"week_end"`
	WeekHours     decimal.Decimal             `json:"week_hours"`
	Compliant     bool                        `json:"compliant"`
	Warnings      []ComplianceWarningResponse `json:"warnings"`
}

func NewComplianceReportResponse(r ComplianceReport) ComplianceReportResponse {
	warnings := make([]ComplianceWarningResponse, 0, len(r.Warnings))
	for _, w := range r.Warnings {
		warnings = append(warnings, ComplianceWarningResponse{
			Code:    w.Code,
			Limit:   w.Limit,
			Actual:  w.Actual,
			Message: w.Message,
		})
	}
	return ComplianceReportResponse{
		EmployeeID:    r.EmployeeID,
		Date:          r.Date.Format(dateLayout),
		ProposedHours: r.ProposedHours,
		DayHours:      r.DayHours,
		WeekStart:     r.WeekStart.Format(dateLayout),
		WeekEnd:       r.WeekEnd.Format(dateLayout),
		WeekHours:     r.WeekHours,
		Compliant:     r.Compliant(),
		Warnings:      warnings,
	}
}

// ========== RESULT DTOs ==========

type TaxBreakdownResponse struct {
	TaxStatus            string            `json:"tax_status"`
	GrossAnnualIncome    decimal.Decimal   `json:"gross_annual_income"`
	TaxFreeAllowance     decimal.Decimal   `json:"tax_free_allowance"`
	AnnualTaxableIncome  decimal.Decimal   `json:"annual_taxable_income"`
	MonthlyTaxableIncome decimal.Decimal   `json:"monthly_taxable_income"`
	BracketTaxes         []decimal.Decimal `json:"bracket_taxes"`
	AnnualTax            decimal.Decimal   `json:"annual_tax"`
	MonthlyTax           decimal.Decimal   `json:"monthly_tax"`
}

type EmployerContributionResponse struct {
	RiskCategory RiskCategory    `json:"risk_category"`
	Health       decimal.Decimal `json:"health"`
	JHT          decimal.Decimal `json:"jht"`
	JP           decimal.Decimal `json:"jp"`
	JKK          decimal.Decimal `json:"jkk"`
	JKM          decimal.Decimal `json:"jkm"`
	Total        decimal.Decimal `json:"total"`
}

type OvertimeBreakdownResponse struct {
	HourlyRate          decimal.Decimal `json:"hourly_rate"`
	TotalHours          decimal.Decimal `json:"total_hours"`
	TotalPay            decimal.Decimal `json:"total_pay"`
	EffectiveMultiplier decimal.Decimal `json:"effective_multiplier"`
	DailyLimitExceeded  bool            `json:"daily_limit_exceeded"`
	WeeklyLimitExceeded bool            `json:"weekly_limit_exceeded"`
}

type HolidayAllowanceResponse struct {
	Kind            HolidayKind     `json:"kind"`
	Eligible        bool            `json:"eligible"`
	MonthsOfService int             `json:"months_of_service"`
	Base            decimal.Decimal `json:"base"`
	Percentage      decimal.Decimal `json:"percentage"`
	Amount          decimal.Decimal `json:"amount"`
}

type PayrollResultResponse struct {
	ID          string        `json:"id,omitempty"`
	EmployeeID  string        `json:"employee_id"`
	PeriodID    string        `json:"period_id,omitempty"`
	PeriodCode  string        `json:"period_code,omitempty"`
	Status      PayrollStatus `json:"status"`
	RateVersion string        `json:"rate_version"`

	BasicSalary      decimal.Decimal `json:"basic_salary"`
	TotalAllowances  decimal.Decimal `json:"total_allowances"`
	OvertimePay      decimal.Decimal `json:"overtime_pay"`
	HolidayAllowance decimal.Decimal `json:"holiday_allowance"`
	GrossSalary      decimal.Decimal `json:"gross_salary"`

	HealthDeduction decimal.Decimal `json:"bpjs_kesehatan"`
	JHTDeduction    decimal.Decimal `json:"bpjs_jht"`
	JPDeduction     decimal.Decimal `json:"bpjs_jp"`
	IncomeTax       decimal.Decimal `json:"pph21"`
	LoanDeduction   decimal.Decimal `json:"loan_deduction"`
	OtherDeductions decimal.Decimal `json:"other_deductions"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	NetSalary       decimal.Decimal `json:"net_salary"`

	Tax                   TaxBreakdownResponse          `json:"tax"`
	EmployerContributions *EmployerContributionResponse `json:"employer_contributions,omitempty"`
	Overtime              OvertimeBreakdownResponse     `json:"overtime"`
	Holiday               *HolidayAllowanceResponse     `json:"holiday_allowance_detail,omitempty"`

	CalculatedAt time.Time `json:"calculated_at"`
}

func NewPayrollResultResponse(r PayrollResult) PayrollResultResponse {
	resp := PayrollResultResponse{
		ID:               r.ID,
		EmployeeID:       r.EmployeeID,
		PeriodID:         r.PeriodID,
		PeriodCode:       r.PeriodCode,
		Status:           r.Status,
		RateVersion:      r.RateVersion,
		BasicSalary:      r.BasicSalary,
		TotalAllowances:  r.TotalAllowances,
		OvertimePay:      r.OvertimePay,
		HolidayAllowance: r.HolidayAllowance,
		GrossSalary:      r.GrossSalary,
		HealthDeduction:  r.HealthDeduction,
		JHTDeduction:     r.JHTDeduction,
		JPDeduction:      r.JPDeduction,
		IncomeTax:        r.IncomeTax,
		LoanDeduction:    r.LoanDeduction,
		OtherDeductions:  r.OtherDeductions,
		TotalDeductions:  r.TotalDeductions,
		NetSalary:        r.NetSalary,
		Tax: TaxBreakdownResponse{
			TaxStatus:            r.Tax.TaxStatus.Code(),
			GrossAnnualIncome:    r.Tax.GrossAnnualIncome,
			TaxFreeAllowance:     r.Tax.TaxFreeAllowance,
			AnnualTaxableIncome:  r.Tax.AnnualTaxableIncome,
			MonthlyTaxableIncome: r.Tax.MonthlyTaxableIncome,
			BracketTaxes:         r.Tax.BracketTaxes,
			AnnualTax:            r.Tax.AnnualTax,
			MonthlyTax:           r.Tax.MonthlyTax,
		},
		Overtime: OvertimeBreakdownResponse{
			HourlyRate:          r.Overtime.HourlyRate,
			TotalHours:          r.Overtime.TotalHours,
			TotalPay:            r.Overtime.TotalPay,
			EffectiveMultiplier: r.Overtime.EffectiveMultiplier,
			DailyLimitExceeded:  r.Overtime.DailyLimitExceeded,
			WeeklyLimitExceeded: r.Overtime.WeeklyLimitExceeded,
		},
		CalculatedAt: r.CalculatedAt,
	}

	if e := r.SocialSecurity.Employer; e != nil {
		resp.EmployerContributions = &EmployerContributionResponse{
			RiskCategory: e.RiskCategory,
			Health:       e.Health,
			JHT:          e.JHT,
			JP:           e.JP,
			JKK:          e.JKK,
			JKM:          e.JKM,
			Total:        e.Total(),
		}
	}
	if h := r.Holiday; h != nil {
		resp.Holiday = &HolidayAllowanceResponse{
			Kind:            h.Kind,
			Eligible:        h.Eligible,
			MonthsOfService: h.MonthsOfService,
			Base:            h.Base,
			Percentage:      h.Percentage,
			Amount:          h.Amount,
		}
	}
	return resp
}

type EmployeeFailureResponse struct {
	EmployeeID string `json:"employee_id"`
	Error      string `json:"error"`
}

type BatchReportResponse struct {
	PeriodID    string                    `json:"period_id"`
	RateVersion string                    `json:"rate_version"`
	Total       int                       `json:"total"`
	Succeeded   int                       `json:"succeeded"`
	Failed      []EmployeeFailureResponse `json:"failed"`
	TotalNet    decimal.Decimal           `json:"total_net"`
	StartedAt   time.Time                 `json:"started_at"`
	FinishedAt  time.Time                 `json:"finished_at"`
}

func NewBatchReportResponse(r BatchReport) BatchReportResponse {
	failed := make([]EmployeeFailureResponse, 0, len(r.Failed))
	for _, f := range r.Failed {
		failed = append(failed, EmployeeFailureResponse{EmployeeID: f.EmployeeID, Error: f.Err.Error()})
	}
	totalNet := decimal.Zero
	for _, s := range r.Succeeded {
		if s.Result != nil {
			totalNet = totalNet.Add(s.Result.NetSalary)
		}
	}
	return BatchReportResponse{
		PeriodID:    r.PeriodID,
		RateVersion: r.RateVersion,
		Total:       r.Total(),
		Succeeded:   len(r.Succeeded),
		Failed:      failed,
		TotalNet:    totalNet,
		StartedAt:   r.StartedAt,
		FinishedAt:  r.FinishedAt,
	}
}

func nonNegative(errs *validator.ValidationErrors, field string, d decimal.Decimal) {
	if d.IsNegative() {
		errs.Add(field, "must be non-negative")
	}
}

// requiredNonNegative reports an absent amount instead of reading it as zero.
func requiredNonNegative(errs *validator.ValidationErrors, field string, d *decimal.Decimal) {
	if d == nil {
		errs.Add(field, "is required")
		return
	}
	nonNegative(errs, field, *d)
}

func requiredPositive(errs *validator.ValidationErrors, field string, d *decimal.Decimal) {
	switch {
	case d == nil:
		errs.Add(field, "is required")
	case !d.IsPositive():
		errs.Add(field, "must be positive")
	}
}

// mustDate parses a date already checked by the datetime validate tag.
func mustDate(s string) time.Time {
	t, _ := validator.IsValidDate(s)
	return t
}
