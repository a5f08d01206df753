package ratetable

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed default_rates.yaml
var defaultRates []byte

type document struct {
	Versions []Table `yaml:"versions"`
}

// Default returns the embedded statutory tables.
func Default() (Versions, error) {
	return Load(bytes.NewReader(defaultRates))
}

// LoadFile reads versions from a YAML file. An empty path means Default.
func LoadFile(path string) (Versions, error) {
	if path == "" {
		return Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open rate table %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes, validates and sorts every version in r.
func Load(r io.Reader) (Versions, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, &ConfigurationError{Problems: []string{fmt.Sprintf("decode: %v", err)}}
	}
	if len(doc.Versions) == 0 {
		return nil, &ConfigurationError{Problems: []string{"no versions defined"}}
	}

	seen := make(map[string]bool, len(doc.Versions))
	effective := make(map[string]string, len(doc.Versions))
	for _, t := range doc.Versions {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if seen[t.Version] {
			return nil, &ConfigurationError{Version: t.Version, Problems: []string{"duplicate version"}}
		}
		seen[t.Version] = true

		day := t.EffectiveFrom.String()
		if other, ok := effective[day]; ok {
			return nil, &ConfigurationError{
				Version:  t.Version,
				Problems: []string{fmt.Sprintf("effective_from %s already used by %s", day, other)},
			}
		}
		effective[day] = t.Version
	}

	versions := Versions(doc.Versions)
	sort.Slice(versions, func(i, j int) bool {
		return versions[i].EffectiveFrom.Before(versions[j].EffectiveFrom.Time)
	})
	return versions, nil
}

var one = decimal.NewFromInt(1)

// TaxBracketCount is the number of progressive PPh21 layers a table must carry.
const TaxBracketCount = 5

// Validate checks the table is complete and internally consistent.
func (t Table) Validate() error {
	cerr := &ConfigurationError{Version: t.Version}

	if t.Version == "" {
		cerr.add("version is required")
	}
	if t.EffectiveFrom.IsZero() {
		cerr.add("effective_from is required")
	}

	for _, m := range payroll.MaritalStatuses {
		for deps := 0; deps <= payroll.MaxCountedDependents; deps++ {
			code := payroll.TaxStatus{Marital: m, Dependents: deps}.Code()
			amount, ok := t.TaxFreeAllowances[code]
			if !ok {
				cerr.add("ptkp: missing %s", code)
				continue
			}
			if !amount.IsPositive() {
				cerr.add("ptkp: %s must be positive", code)
			}
		}
	}

	validateBrackets(cerr, t.TaxBrackets)

	positive(cerr, "health.cap", t.Health.Cap)
	fraction(cerr, "health.employee_rate", t.Health.EmployeeRate)
	fraction(cerr, "health.family_rate", t.Health.FamilyRate)
	fraction(cerr, "health.employer_rate", t.Health.EmployerRate)

	positive(cerr, "employment.cap", t.Employment.Cap)
	fraction(cerr, "employment.jht_employee_rate", t.Employment.JHTEmployee)
	fraction(cerr, "employment.jht_employer_rate", t.Employment.JHTEmployer)
	fraction(cerr, "employment.jp_employee_rate", t.Employment.JPEmployee)
	fraction(cerr, "employment.jp_employer_rate", t.Employment.JPEmployer)
	fraction(cerr, "employment.jkm_rate", t.Employment.JKM)

	for _, rc := range payroll.RiskCategories {
		rate, ok := t.WorkAccident[rc]
		if !ok {
			cerr.add("work_accident: missing %s", rc)
			continue
		}
		fraction(cerr, "work_accident."+string(rc), rate)
	}

	validateOvertime(cerr, t.Overtime)

	return cerr.errOrNil()
}

func validateBrackets(cerr *ConfigurationError, brackets []Bracket) {
	if len(brackets) != TaxBracketCount {
		cerr.add("tax_brackets: exactly %d brackets are required, got %d", TaxBracketCount, len(brackets))
		if len(brackets) == 0 {
			return
		}
	}
	prev := decimal.Zero
	for i, b := range brackets {
		fraction(cerr, fmt.Sprintf("tax_brackets[%d].rate", i), b.Rate)
		if i > 0 && !b.Rate.GreaterThan(brackets[i-1].Rate) {
			cerr.add("tax_brackets[%d]: rate must be strictly increasing", i)
		}
		last := i == len(brackets)-1
		switch {
		case last && b.UpTo != nil:
			cerr.add("tax_brackets: last bracket must be open-ended")
		case !last && b.UpTo == nil:
			cerr.add("tax_brackets[%d]: only the last bracket may be open-ended", i)
		case b.UpTo != nil && !b.UpTo.GreaterThan(prev):
			cerr.add("tax_brackets[%d]: up_to must be strictly increasing", i)
		}
		if b.UpTo != nil {
			prev = *b.UpTo
		}
	}
}

func validateOvertime(cerr *ConfigurationError, o OvertimeRules) {
	if o.StandardWorkingDays <= 0 {
		cerr.add("overtime.standard_working_days must be positive")
	}
	if o.HoursPerDay <= 0 {
		cerr.add("overtime.hours_per_day must be positive")
	}
	positive(cerr, "overtime.daily_limit_hours", o.DailyLimit)
	positive(cerr, "overtime.weekly_limit_hours", o.WeeklyLimit)
	if o.ExtendedDailyLimit.LessThan(o.DailyLimit) {
		cerr.add("overtime.extended_daily_limit_hours must not be below daily_limit_hours")
	}

	for _, dt := range payroll.DayTypes {
		tiers := o.Tiers[dt]
		if len(tiers) == 0 {
			cerr.add("overtime.tiers: missing %s", dt)
			continue
		}
		prev := decimal.Zero
		for i, tier := range tiers {
			field := fmt.Sprintf("overtime.tiers.%s[%d]", dt, i)
			positive(cerr, field+".multiplier", tier.Multiplier)
			if i > 0 && tier.Multiplier.LessThan(tiers[i-1].Multiplier) {
				cerr.add("%s: multiplier must not decrease", field)
			}
			last := i == len(tiers)-1
			switch {
			case last && tier.UpTo != nil:
				cerr.add("%s: last tier must be open-ended", field)
			case !last && tier.UpTo == nil:
				cerr.add("%s: only the last tier may be open-ended", field)
			case tier.UpTo != nil && !tier.UpTo.GreaterThan(prev):
				cerr.add("%s: up_to must be strictly increasing", field)
			}
			if tier.UpTo != nil {
				prev = *tier.UpTo
			}
		}
	}
}

func positive(cerr *ConfigurationError, field string, d decimal.Decimal) {
	if !d.IsPositive() {
		cerr.add("%s must be positive", field)
	}
}

func fraction(cerr *ConfigurationError, field string, d decimal.Decimal) {
	if d.IsNegative() || d.GreaterThan(one) {
		cerr.add("%s must be between 0 and 1", field)
	}
}
