package payroll

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MaritalStatus enum (PTKP marital axis)
type MaritalStatus string

const (
	MaritalSingle          MaritalStatus = "TK"
	MaritalMarried         MaritalStatus = "K"
	MaritalMarriedCombined MaritalStatus = "K/I" // spouse income combined with the employee's
)

// MaxCountedDependents is the statutory cap on dependents for PTKP.
const MaxCountedDependents = 3

// MaritalStatuses lists every recognised marital status.
var MaritalStatuses = []MaritalStatus{MaritalSingle, MaritalMarried, MaritalMarriedCombined}

func (m MaritalStatus) Valid() bool {
	switch m {
	case MaritalSingle, MaritalMarried, MaritalMarriedCombined:
		return true
	}
	return false
}

// TaxStatus - PTKP status, marital status x dependent count
type TaxStatus struct {
	Marital    MaritalStatus `json:"marital"`
	Dependents int           `json:"dependents"`
}

// CountedDependents caps dependents at MaxCountedDependents.
func (s TaxStatus) CountedDependents() int {
	if s.Dependents > MaxCountedDependents {
		return MaxCountedDependents
	}
	return s.Dependents
}

// Code renders the status the way PTKP tables key it, e.g. "TK/0", "K/I/2".
func (s TaxStatus) Code() string {
	return fmt.Sprintf("%s/%d", s.Marital, s.CountedDependents())
}

func (s TaxStatus) String() string {
	return s.Code()
}

// ParseTaxStatus parses codes such as "TK/0", "K/3" or "K/I/1".
func ParseTaxStatus(code string) (TaxStatus, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	idx := strings.LastIndex(code, "/")
	if idx <= 0 {
		return TaxStatus{}, fmt.Errorf("invalid tax status %q", code)
	}
	marital := MaritalStatus(code[:idx])
	if !marital.Valid() {
		return TaxStatus{}, fmt.Errorf("invalid marital status in tax status %q", code)
	}
	dependents, err := strconv.Atoi(code[idx+1:])
	if err != nil || dependents < 0 {
		return TaxStatus{}, fmt.Errorf("invalid dependent count in tax status %q", code)
	}
	return TaxStatus{Marital: marital, Dependents: dependents}, nil
}

// DayType enum
type DayType string

const (
	DayTypeWeekday DayType = "weekday"
	DayTypeRestDay DayType = "rest_day" // weekend or public holiday
)

var DayTypes = []DayType{DayTypeWeekday, DayTypeRestDay}

func (d DayType) Valid() bool {
	return d == DayTypeWeekday || d == DayTypeRestDay
}

// HolidayKind enum, the religious holiday a THR payment is tied to
type HolidayKind string

const (
	HolidayIdulFitri      HolidayKind = "idul_fitri"
	HolidayChristmas      HolidayKind = "christmas"
	HolidayNyepi          HolidayKind = "nyepi"
	HolidayVesak          HolidayKind = "vesak"
	HolidayChineseNewYear HolidayKind = "chinese_new_year"
)

var HolidayKinds = []HolidayKind{HolidayIdulFitri, HolidayChristmas, HolidayNyepi, HolidayVesak, HolidayChineseNewYear}

func (k HolidayKind) Valid() bool {
	for _, known := range HolidayKinds {
		if k == known {
			return true
		}
	}
	return false
}

// RiskCategory enum, JKK work-accident risk tier of the workplace
type RiskCategory string

const (
	RiskVeryLow  RiskCategory = "very_low"
	RiskLow      RiskCategory = "low"
	RiskMedium   RiskCategory = "medium"
	RiskHigh     RiskCategory = "high"
	RiskVeryHigh RiskCategory = "very_high"
)

var RiskCategories = []RiskCategory{RiskVeryLow, RiskLow, RiskMedium, RiskHigh, RiskVeryHigh}

// OvertimeStatus enum
type OvertimeStatus string

const (
	OvertimeStatusPending  OvertimeStatus = "pending"
	OvertimeStatusApproved OvertimeStatus = "approved"
	OvertimeStatusRejected OvertimeStatus = "rejected"
)

// PayrollStatus enum
type PayrollStatus string

const (
	PayrollStatusDraft      PayrollStatus = "DRAFT"
	PayrollStatusCalculated PayrollStatus = "CALCULATED"
	PayrollStatusVerified   PayrollStatus = "VERIFIED"
	PayrollStatusApproved   PayrollStatus = "APPROVED"
	PayrollStatusPaid       PayrollStatus = "PAID"
)

var statusOrder = map[PayrollStatus]int{
	PayrollStatusDraft:      0,
	PayrollStatusCalculated: 1,
	PayrollStatusVerified:   2,
	PayrollStatusApproved:   3,
	PayrollStatusPaid:       4,
}

// CanTransitionTo reports whether next is the single forward step after s.
func (s PayrollStatus) CanTransitionTo(next PayrollStatus) bool {
	from, ok := statusOrder[s]
	if !ok {
		return false
	}
	to, ok := statusOrder[next]
	if !ok {
		return false
	}
	return to == from+1
}

// Recalculable reports whether a stored result in this status may be overwritten.
func (s PayrollStatus) Recalculable() bool {
	return s != PayrollStatusApproved && s != PayrollStatusPaid
}

// CompensationProfile - read-only HR input for one employee
type CompensationProfile struct {
	EmployeeID         string
	CompanyID          string
	BasicSalary        decimal.Decimal
	FixedAllowances    decimal.Decimal
	VariableAllowances decimal.Decimal // excluded from the THR base
	TaxStatus          TaxStatus
	EmploymentStart    time.Time
	EmploymentEnd      *time.Time // last working day, nil while employed
	HasCoveredFamily   bool
	RiskCategory       RiskCategory

	// Set when a THR payment was already made; used by the resignation variant.
	LastHolidayAllowancePaidAt *time.Time
}

// LeavesWithin reports whether the last working day falls inside p.
func (p CompensationProfile) LeavesWithin(period PayrollPeriod) bool {
	if p.EmploymentEnd == nil {
		return false
	}
	return !p.EmploymentEnd.Before(period.StartDate) && !p.EmploymentEnd.After(period.EndDate)
}

// TotalAllowances is fixed plus variable allowances.
func (p CompensationProfile) TotalAllowances() decimal.Decimal {
	return p.FixedAllowances.Add(p.VariableAllowances)
}

// PayrollPeriod - one payroll cycle
type PayrollPeriod struct {
	ID               string
	CompanyID        string
	Code             string // e.g. "2025-03"
	StartDate        time.Time
	EndDate          time.Time
	PaymentDate      time.Time
	HolidayAllowance bool
	HolidayKind      HolidayKind
}

// Contains reports whether date falls on a calendar day inside the period.
func (p PayrollPeriod) Contains(date time.Time) bool {
	d := DateOf(date)
	return !d.Before(DateOf(p.StartDate)) && !d.After(DateOf(p.EndDate))
}

// OvertimeWindow spans the Monday of the first week to the Sunday of the
// last week the period touches. Weekly overtime limits are measured over it.
func (p PayrollPeriod) OvertimeWindow() (from, to time.Time) {
	from, _ = WeekBounds(p.StartDate)
	_, to = WeekBounds(p.EndDate)
	return from, to
}

// OvertimeEntry - one approved (or pending) overtime submission
type OvertimeEntry struct {
	ID         string
	EmployeeID string
	Date       time.Time
	DayType    DayType
	Hours      decimal.Decimal
	Status     OvertimeStatus
}

// Adjustments - externally supplied pass-through deductions
type Adjustments struct {
	LoanDeduction   decimal.Decimal
	OtherDeductions decimal.Decimal
}

// TaxCalculationResult - PPh 21 breakdown
type TaxCalculationResult struct {
	TaxStatus            TaxStatus         `json:"tax_status"`
	GrossAnnualIncome    decimal.Decimal   `json:"gross_annual_income"`
	TaxFreeAllowance     decimal.Decimal   `json:"tax_free_allowance"`
	AnnualTaxableIncome  decimal.Decimal   `json:"annual_taxable_income"`
	MonthlyTaxableIncome decimal.Decimal   `json:"monthly_taxable_income"`
	BracketTaxes         []decimal.Decimal `json:"bracket_taxes"`
	AnnualTax            decimal.Decimal   `json:"annual_tax"`
	MonthlyTax           decimal.Decimal   `json:"monthly_tax"`
}

// SocialSecurityResult - BPJS contributions
type SocialSecurityResult struct {
	HealthCapApplied     decimal.Decimal `json:"health_cap_applied"`
	EmploymentCapApplied decimal.Decimal `json:"employment_cap_applied"`

	// Employee side
	HealthEmployee       decimal.Decimal `json:"health_employee"`
	HealthFamilyEmployee decimal.Decimal `json:"health_family_employee"`
	JHTEmployee          decimal.Decimal `json:"jht_employee"`
	JPEmployee           decimal.Decimal `json:"jp_employee"`

	// Employer side, informational only
	Employer *EmployerContributions `json:"employer,omitempty"`
}

// HealthTotal is the BPJS Kesehatan deduction (employee + family).
func (r SocialSecurityResult) HealthTotal() decimal.Decimal {
	return r.HealthEmployee.Add(r.HealthFamilyEmployee)
}

// EmployeeTotal is every employee-side contribution.
func (r SocialSecurityResult) EmployeeTotal() decimal.Decimal {
	return r.HealthTotal().Add(r.JHTEmployee).Add(r.JPEmployee)
}

// EmployerContributions - employer-side BPJS, never part of net pay
type EmployerContributions struct {
	RiskCategory RiskCategory    `json:"risk_category"`
	Health       decimal.Decimal `json:"health"`
	JHT          decimal.Decimal `json:"jht"`
	JP           decimal.Decimal `json:"jp"`
	JKK          decimal.Decimal `json:"jkk"`
	JKM          decimal.Decimal `json:"jkm"`
}

func (e EmployerContributions) Total() decimal.Decimal {
	return e.Health.Add(e.JHT).Add(e.JP).Add(e.JKK).Add(e.JKM)
}

// OvertimeDay - overtime for one calendar day after merging entries
type OvertimeDay struct {
	Date    time.Time       `json:"date"`
	DayType DayType         `json:"day_type"`
	Hours   decimal.Decimal `json:"hours"`
	Pay     decimal.Decimal `json:"pay"`
}

// OvertimeResult - overtime pay for a period
type OvertimeResult struct {
	HourlyRate          decimal.Decimal `json:"hourly_rate"`
	TotalHours          decimal.Decimal `json:"total_hours"`
	TotalPay            decimal.Decimal `json:"total_pay"`
	EffectiveMultiplier decimal.Decimal `json:"effective_multiplier"`
	Days                []OvertimeDay   `json:"days"`
	DailyLimitExceeded  bool            `json:"daily_limit_exceeded"`
	WeeklyLimitExceeded bool            `json:"weekly_limit_exceeded"`
	MaxDailyHours       decimal.Decimal `json:"max_daily_hours"`
	MaxWeeklyHours      decimal.Decimal `json:"max_weekly_hours"`
	ExcludedEntries     int             `json:"excluded_entries"` // entries dropped as unapproved or duplicate
}

// HolidayAllowanceResult - THR
type HolidayAllowanceResult struct {
	Kind            HolidayKind     `json:"kind"`
	Eligible        bool            `json:"eligible"`
	MonthsOfService int             `json:"months_of_service"`
	Base            decimal.Decimal `json:"base"`
	Percentage      decimal.Decimal `json:"percentage"` // 0..100
	Amount          decimal.Decimal `json:"amount"`
}

// ComplianceWarningCode enum
type ComplianceWarningCode string

const (
	WarningDailyLimitExceeded    ComplianceWarningCode = "daily_limit_exceeded"
	WarningExtendedLimitExceeded ComplianceWarningCode = "extended_daily_limit_exceeded"
	WarningWeeklyLimitExceeded   ComplianceWarningCode = "weekly_limit_exceeded"
)

// ComplianceWarning - advisory overtime limit signal, not an error
type ComplianceWarning struct {
	Code    ComplianceWarningCode
	Limit   decimal.Decimal
	Actual  decimal.Decimal
	Message string
}

// ComplianceReport - result of checking a proposed overtime submission
type ComplianceReport struct {
	EmployeeID    string
	Date          time.Time
	ProposedHours decimal.Decimal
	DayHours      decimal.Decimal // already approved + proposed, same day
	WeekStart     time.Time
	WeekEnd       time.Time
	WeekHours     decimal.Decimal // already approved + proposed, same Monday-Sunday week
	Warnings      []ComplianceWarning
}

func (r ComplianceReport) Compliant() bool {
	return len(r.Warnings) == 0
}

// HasWarning reports whether code was raised.
func (r ComplianceReport) HasWarning(code ComplianceWarningCode) bool {
	for _, w := range r.Warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}

// PayrollResult - itemized gross-to-net result, one per (employee, period)
type PayrollResult struct {
	ID          string
	EmployeeID  string
	CompanyID   string
	PeriodID    string
	PeriodCode  string
	Status      PayrollStatus
	RateVersion string

	BasicSalary      decimal.Decimal
	TotalAllowances  decimal.Decimal
	OvertimePay      decimal.Decimal
	HolidayAllowance decimal.Decimal
	GrossSalary      decimal.Decimal

	HealthDeduction decimal.Decimal // BPJS Kesehatan
	JHTDeduction    decimal.Decimal
	JPDeduction     decimal.Decimal
	IncomeTax       decimal.Decimal // PPh 21, monthly
	LoanDeduction   decimal.Decimal
	OtherDeductions decimal.Decimal
	TotalDeductions decimal.Decimal
	NetSalary       decimal.Decimal

	Tax            TaxCalculationResult
	SocialSecurity SocialSecurityResult
	Overtime       OvertimeResult
	Holiday        *HolidayAllowanceResult

	CalculatedAt time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DateOf truncates t to its calendar date in t's location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// WeekBounds returns the Monday and Sunday of the week containing t.
func WeekBounds(t time.Time) (monday, sunday time.Time) {
	d := DateOf(t)
	offset := (int(d.Weekday()) + 6) % 7 // Monday = 0
	monday = d.AddDate(0, 0, -offset)
	sunday = monday.AddDate(0, 0, 6)
	return monday, sunday
}

// CalculationInput - everything the orchestrator needs for one employee
type CalculationInput struct {
	EmployeeID       string
	PeriodID         string
	Profile          CompensationProfile
	Period           PayrollPeriod
	ApprovedOvertime []OvertimeEntry
	Adjustments      Adjustments

	// Overrides the gross x 12 annualisation when set.
	YearToDateIncome *decimal.Decimal
}

// EmployeeOutcome - one employee's share of a batch run
type EmployeeOutcome struct {
	EmployeeID string
	Result     *PayrollResult
	Err        error
}

// BatchReport - result of a period run, partial failure allowed
type BatchReport struct {
	PeriodID    string
	RateVersion string
	Succeeded   []EmployeeOutcome
	Failed      []EmployeeOutcome
	StartedAt   time.Time
	FinishedAt  time.Time
}

func (r BatchReport) Total() int {
	return len(r.Succeeded) + len(r.Failed)
}
