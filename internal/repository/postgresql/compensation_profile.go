package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type compensationProfileRepository struct {
	db *database.DB
}

func NewCompensationProfileRepository(db *database.DB) payroll.ProfileRepository {
	return &compensationProfileRepository{db: db}
}

const profileColumns = `
	employee_id, company_id, basic_salary, fixed_allowances, variable_allowances,
	marital_status, dependents, employment_start, employment_end, has_covered_family, risk_category,
	last_holiday_allowance_paid_at`

func scanProfile(row pgx.Row) (payroll.CompensationProfile, error) {
	var p payroll.CompensationProfile
	err := row.Scan(
		&p.EmployeeID, &p.CompanyID, &p.BasicSalary, &p.FixedAllowances, &p.VariableAllowances,
		&p.TaxStatus.Marital, &p.TaxStatus.Dependents, &p.EmploymentStart, &p.EmploymentEnd, &p.HasCoveredFamily, &p.RiskCategory,
		&p.LastHolidayAllowancePaidAt,
	)
	return p, err
}

func (r *compensationProfileRepository) GetProfile(ctx context.Context, companyID, employeeID string) (payroll.CompensationProfile, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + profileColumns + `
		FROM compensation_profiles
		WHERE company_id = $1 AND employee_id = $2
	`

	p, err := scanProfile(q.QueryRow(ctx, query, companyID, employeeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.CompensationProfile{}, payroll.ErrEmployeeNotFound
		}
		return payroll.CompensationProfile{}, fmt.Errorf("failed to get compensation profile: %w", err)
	}
	return p, nil
}

func (r *compensationProfileRepository) ListActiveProfiles(ctx context.Context, companyID string, from, to time.Time) ([]payroll.CompensationProfile, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + profileColumns + `
		FROM compensation_profiles
		WHERE company_id = $1
			AND employment_start <= $3
			AND (employment_end IS NULL OR employment_end >= $2)
		ORDER BY employee_id
	`

	rows, err := q.Query(ctx, query, companyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list compensation profiles: %w", err)
	}
	defer rows.Close()

	var profiles []payroll.CompensationProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan compensation profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate compensation profiles: %w", err)
	}

	return profiles, nil
}
