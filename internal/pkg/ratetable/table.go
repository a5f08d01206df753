// Package ratetable holds the statutory rates the payroll engine reads:
// PTKP, PPh 21 brackets, BPJS caps and rates, JKK tiers, overtime tiers
// and compliance limits. Tables are versioned by effective date.
package ratetable

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const dateLayout = "2006-01-02"

// Date is a calendar date written as YYYY-MM-DD.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	t, err := time.Parse(dateLayout, value.Value)
	if err != nil {
		return fmt.Errorf("line %d: effective_from must be YYYY-MM-DD: %w", value.Line, err)
	}
	d.Time = t
	return nil
}

func (d Date) MarshalYAML() (interface{}, error) {
	return d.Format(dateLayout), nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// Bracket is one PPh 21 layer. A nil UpTo marks the open-ended top bracket.
type Bracket struct {
	UpTo *decimal.Decimal `yaml:"up_to,omitempty"`
	Rate decimal.Decimal  `yaml:"rate"`
}

// Tier is one overtime multiplier band, measured in hours worked that day.
// A nil UpTo marks the open-ended last tier.
type Tier struct {
	UpTo       *decimal.Decimal `yaml:"up_to,omitempty"`
	Multiplier decimal.Decimal  `yaml:"multiplier"`
}

type HealthRates struct {
	Cap          decimal.Decimal `yaml:"cap"`
	EmployeeRate decimal.Decimal `yaml:"employee_rate"`
	FamilyRate   decimal.Decimal `yaml:"family_rate"`
	EmployerRate decimal.Decimal `yaml:"employer_rate"`
}

type EmploymentRates struct {
	Cap         decimal.Decimal `yaml:"cap"`
	JHTEmployee decimal.Decimal `yaml:"jht_employee_rate"`
	JHTEmployer decimal.Decimal `yaml:"jht_employer_rate"`
	JPEmployee  decimal.Decimal `yaml:"jp_employee_rate"`
	JPEmployer  decimal.Decimal `yaml:"jp_employer_rate"`
	JKM         decimal.Decimal `yaml:"jkm_rate"`
}

type OvertimeRules struct {
	StandardWorkingDays int                        `yaml:"standard_working_days"`
	HoursPerDay         int                        `yaml:"hours_per_day"`
	Tiers               map[payroll.DayType][]Tier `yaml:"tiers"`
	DailyLimit          decimal.Decimal            `yaml:"daily_limit_hours"`
	ExtendedDailyLimit  decimal.Decimal            `yaml:"extended_daily_limit_hours"`
	WeeklyLimit         decimal.Decimal            `yaml:"weekly_limit_hours"`
}

// Table is one version of the rates. Treat it as read-only once loaded.
type Table struct {
	Version           string                                   `yaml:"version"`
	EffectiveFrom     Date                                     `yaml:"effective_from"`
	TaxFreeAllowances map[string]decimal.Decimal               `yaml:"ptkp"`
	TaxBrackets       []Bracket                                `yaml:"tax_brackets"`
	Health            HealthRates                              `yaml:"health"`
	Employment        EmploymentRates                          `yaml:"employment"`
	WorkAccident      map[payroll.RiskCategory]decimal.Decimal `yaml:"work_accident"`
	Overtime          OvertimeRules                            `yaml:"overtime"`
}

// TaxFreeAllowance returns the annual PTKP for status, dependents capped at 3.
func (t Table) TaxFreeAllowance(status payroll.TaxStatus) (decimal.Decimal, error) {
	amount, ok := t.TaxFreeAllowances[status.Code()]
	if !ok {
		return decimal.Zero, &ConfigurationError{
			Version:  t.Version,
			Problems: []string{fmt.Sprintf("no PTKP entry for %s", status.Code())},
		}
	}
	return amount, nil
}

// WorkAccidentRate returns the JKK rate for rc. An unknown or empty
// category falls back to the lowest non-zero tier.
func (t Table) WorkAccidentRate(rc payroll.RiskCategory) decimal.Decimal {
	if rate, ok := t.WorkAccident[rc]; ok && rate.IsPositive() {
		return rate
	}
	lowest := decimal.Zero
	for _, rate := range t.WorkAccident {
		if rate.IsPositive() && (lowest.IsZero() || rate.LessThan(lowest)) {
			lowest = rate
		}
	}
	return lowest
}

// OvertimeTiers returns the multiplier bands for a day type.
func (t Table) OvertimeTiers(dt payroll.DayType) ([]Tier, bool) {
	tiers, ok := t.Overtime.Tiers[dt]
	return tiers, ok && len(tiers) > 0
}

// MonthlyWorkingHours is standard working days times hours per day.
func (t Table) MonthlyWorkingHours() decimal.Decimal {
	return decimal.NewFromInt(int64(t.Overtime.StandardWorkingDays * t.Overtime.HoursPerDay))
}

// Provider selects the table in effect on a date.
type Provider interface {
	TableFor(date time.Time) (Table, error)
}

// Versions is every known table, sorted by EffectiveFrom ascending.
type Versions []Table

// TableFor returns the latest version effective on or before date.
func (v Versions) TableFor(date time.Time) (Table, error) {
	y, m, d := date.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	for i := len(v) - 1; i >= 0; i-- {
		if !v[i].EffectiveFrom.After(day) {
			return v[i], nil
		}
	}
	return Table{}, &ConfigurationError{
		Problems: []string{fmt.Sprintf("no rate table effective on %s", day.Format(dateLayout))},
	}
}

// Latest returns the most recent version.
func (v Versions) Latest() (Table, bool) {
	if len(v) == 0 {
		return Table{}, false
	}
	return v[len(v)-1], true
}

// Static serves a single table for every date.
type Static Table

func (s Static) TableFor(time.Time) (Table, error) {
	return Table(s), nil
}
