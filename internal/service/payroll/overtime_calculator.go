package payroll

import (
	"fmt"
	"sort"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/money"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/ratetable"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

const dateKeyLayout = "2006-01-02"

// OvertimeCalculator prices overtime hours with tiered multipliers and
// checks submissions against the daily and weekly limits.
type OvertimeCalculator struct {
	table ratetable.Table
}

func NewOvertimeCalculator(table ratetable.Table) OvertimeCalculator {
	return OvertimeCalculator{table: table}
}

// HourlyRate is basic salary over standard working days x hours per day.
func (c OvertimeCalculator) HourlyRate(basic decimal.Decimal) (decimal.Decimal, error) {
	if basic.IsNegative() {
		return decimal.Zero, validator.ValidationErrors{{Field: "basic_salary", Message: "must be non-negative"}}
	}
	hours := c.table.MonthlyWorkingHours()
	if !hours.IsPositive() {
		return decimal.Zero, &ratetable.ConfigurationError{
			Version:  c.table.Version,
			Problems: []string{"standard working hours must be positive"},
		}
	}
	return basic.Div(hours), nil
}

// CalculatePay prices one day's hours. Tiers are applied on marginal hour
// ranges and the total is rounded once.
func (c OvertimeCalculator) CalculatePay(hours decimal.Decimal, dayType payroll.DayType, hourlyRate decimal.Decimal) (decimal.Decimal, error) {
	var errs validator.ValidationErrors
	if hours.IsNegative() {
		errs.Add("hours", "must be non-negative")
	}
	if hourlyRate.IsNegative() {
		errs.Add("hourly_rate", "must be non-negative")
	}
	tiers, ok := c.table.OvertimeTiers(dayType)
	if !ok {
		errs.Add("day_type", fmt.Sprintf("unknown day type %q", dayType))
	}
	if err := errs.Err(); err != nil {
		return decimal.Zero, err
	}

	weightedHours := decimal.Zero
	lower := decimal.Zero
	for _, tier := range tiers {
		if !hours.GreaterThan(lower) {
			break
		}
		upper := hours
		if tier.UpTo != nil {
			upper = money.Min(hours, *tier.UpTo)
		}
		weightedHours = weightedHours.Add(upper.Sub(lower).Mul(tier.Multiplier))
		if tier.UpTo == nil {
			break
		}
		lower = *tier.UpTo
	}

	return money.RoundHalfUp(weightedHours.Mul(hourlyRate)), nil
}

// Calculate aggregates a period's overtime. Only approved entries count,
// duplicates by ID are counted once and hours are tiered per calendar day.
// Entries outside the period but inside its OvertimeWindow are not paid;
// they only count toward the weekly totals of the boundary weeks.
func (c OvertimeCalculator) Calculate(entries []payroll.OvertimeEntry, basic decimal.Decimal, period payroll.PayrollPeriod) (payroll.OvertimeResult, error) {
	hourlyRate, err := c.HourlyRate(basic)
	if err != nil {
		return payroll.OvertimeResult{}, err
	}

	eligible, excluded := eligibleEntries(entries)

	var errs validator.ValidationErrors
	type dayBucket struct {
		date    time.Time
		dayType payroll.DayType
		hours   decimal.Decimal
	}
	byDay := make(map[string]*dayBucket)
	weekly := make(map[string]decimal.Decimal)
	windowFrom, windowTo := period.OvertimeWindow()
	for i, e := range eligible {
		field := fmt.Sprintf("overtime[%d]", i)
		if e.ID != "" {
			field = fmt.Sprintf("overtime[%s]", e.ID)
		}
		if !e.Hours.IsPositive() {
			errs.Add(field+".hours", "must be positive")
			continue
		}
		if !e.DayType.Valid() {
			errs.Add(field+".day_type", fmt.Sprintf("unknown day type %q", e.DayType))
			continue
		}
		if !period.Contains(e.Date) {
			d := payroll.DateOf(e.Date)
			if d.Before(windowFrom) || d.After(windowTo) {
				errs.Add(field+".date", fmt.Sprintf("%s is outside period %s", e.Date.Format(dateKeyLayout), period.Code))
				continue
			}
			monday, _ := payroll.WeekBounds(d)
			weekKey := monday.Format(dateKeyLayout)
			weekly[weekKey] = weekly[weekKey].Add(e.Hours)
			continue
		}

		key := e.Date.Format(dateKeyLayout)
		bucket, ok := byDay[key]
		if !ok {
			byDay[key] = &dayBucket{date: payroll.DateOf(e.Date), dayType: e.DayType, hours: e.Hours}
			continue
		}
		if bucket.dayType != e.DayType {
			errs.Add(field+".day_type", fmt.Sprintf("%s already has %s overtime", key, bucket.dayType))
			continue
		}
		bucket.hours = bucket.hours.Add(e.Hours)
	}
	if err := errs.Err(); err != nil {
		return payroll.OvertimeResult{}, err
	}

	result := payroll.OvertimeResult{
		HourlyRate:          hourlyRate,
		TotalHours:          decimal.Zero,
		TotalPay:            decimal.Zero,
		EffectiveMultiplier: decimal.Zero,
		MaxDailyHours:       decimal.Zero,
		MaxWeeklyHours:      decimal.Zero,
		Days:                make([]payroll.OvertimeDay, 0, len(byDay)),
		ExcludedEntries:     excluded,
	}

	for _, b := range byDay {
		pay, err := c.CalculatePay(b.hours, b.dayType, hourlyRate)
		if err != nil {
			return payroll.OvertimeResult{}, err
		}
		result.Days = append(result.Days, payroll.OvertimeDay{
			Date:    b.date,
			DayType: b.dayType,
			Hours:   b.hours,
			Pay:     pay,
		})
		result.TotalHours = result.TotalHours.Add(b.hours)
		result.TotalPay = result.TotalPay.Add(pay)

		if b.hours.GreaterThan(result.MaxDailyHours) {
			result.MaxDailyHours = b.hours
		}
		monday, _ := payroll.WeekBounds(b.date)
		weekKey := monday.Format(dateKeyLayout)
		weekly[weekKey] = weekly[weekKey].Add(b.hours)
	}
	for _, hours := range weekly {
		if hours.GreaterThan(result.MaxWeeklyHours) {
			result.MaxWeeklyHours = hours
		}
	}
	sort.Slice(result.Days, func(i, j int) bool {
		return result.Days[i].Date.Before(result.Days[j].Date)
	})

	result.DailyLimitExceeded = result.MaxDailyHours.GreaterThan(c.table.Overtime.DailyLimit)
	result.WeeklyLimitExceeded = result.MaxWeeklyHours.GreaterThan(c.table.Overtime.WeeklyLimit)

	base := result.TotalHours.Mul(hourlyRate)
	if base.IsPositive() {
		result.EffectiveMultiplier = result.TotalPay.Div(base).Round(4)
	}
	return result, nil
}

// CheckCompliance measures a proposed submission against the approved
// entries of the same Monday-Sunday week. Warnings are advisory.
func (c OvertimeCalculator) CheckCompliance(employeeID string, date time.Time, proposedHours decimal.Decimal, sameWeekEntries []payroll.OvertimeEntry) (payroll.ComplianceReport, error) {
	if !proposedHours.IsPositive() {
		return payroll.ComplianceReport{}, validator.ValidationErrors{{Field: "proposed_hours", Message: "must be positive"}}
	}

	day := payroll.DateOf(date)
	monday, sunday := payroll.WeekBounds(day)

	report := payroll.ComplianceReport{
		EmployeeID:    employeeID,
		Date:          day,
		ProposedHours: proposedHours,
		DayHours:      proposedHours,
		WeekStart:     monday,
		WeekEnd:       sunday,
		WeekHours:     proposedHours,
	}

	eligible, _ := eligibleEntries(sameWeekEntries)
	for _, e := range eligible {
		if e.EmployeeID != "" && e.EmployeeID != employeeID {
			continue
		}
		d := payroll.DateOf(e.Date)
		if d.Before(monday) || d.After(sunday) {
			continue
		}
		report.WeekHours = report.WeekHours.Add(e.Hours)
		if d.Equal(day) {
			report.DayHours = report.DayHours.Add(e.Hours)
		}
	}

	limits := c.table.Overtime
	if report.DayHours.GreaterThan(limits.DailyLimit) {
		report.Warnings = append(report.Warnings, payroll.ComplianceWarning{
			Code:    payroll.WarningDailyLimitExceeded,
			Limit:   limits.DailyLimit,
			Actual:  report.DayHours,
			Message: fmt.Sprintf("%s hours on %s exceeds the daily limit of %s", report.DayHours, day.Format(dateKeyLayout), limits.DailyLimit),
		})
	}
	if report.DayHours.GreaterThan(limits.ExtendedDailyLimit) {
		report.Warnings = append(report.Warnings, payroll.ComplianceWarning{
			Code:    payroll.WarningExtendedLimitExceeded,
			Limit:   limits.ExtendedDailyLimit,
			Actual:  report.DayHours,
			Message: fmt.Sprintf("%s hours on %s exceeds the extended daily ceiling of %s", report.DayHours, day.Format(dateKeyLayout), limits.ExtendedDailyLimit),
		})
	}
	if report.WeekHours.GreaterThan(limits.WeeklyLimit) {
		report.Warnings = append(report.Warnings, payroll.ComplianceWarning{
			Code:    payroll.WarningWeeklyLimitExceeded,
			Limit:   limits.WeeklyLimit,
			Actual:  report.WeekHours,
			Message: fmt.Sprintf("%s hours in week of %s exceeds the weekly limit of %s", report.WeekHours, monday.Format(dateKeyLayout), limits.WeeklyLimit),
		})
	}
	return report, nil
}

// CompliancePolicy decides whether warnings stop a submission.
type CompliancePolicy struct {
	HardBlock bool
}

// Blocks reports whether report must be rejected. Only the extended
// ceiling and the weekly limit can block; the plain daily limit never does.
func (p CompliancePolicy) Blocks(report payroll.ComplianceReport) bool {
	if !p.HardBlock {
		return false
	}
	return report.HasWarning(payroll.WarningExtendedLimitExceeded) ||
		report.HasWarning(payroll.WarningWeeklyLimitExceeded)
}

// eligibleEntries keeps approved entries, first occurrence per ID.
func eligibleEntries(entries []payroll.OvertimeEntry) ([]payroll.OvertimeEntry, int) {
	seen := make(map[string]bool, len(entries))
	eligible := make([]payroll.OvertimeEntry, 0, len(entries))
	for _, e := range entries {
		if e.Status != payroll.OvertimeStatusApproved {
			continue
		}
		if e.ID != "" {
			if seen[e.ID] {
				continue
			}
			seen[e.ID] = true
		}
		eligible = append(eligible, e)
	}
	return eligible, len(entries) - len(eligible)
}
