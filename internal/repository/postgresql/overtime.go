package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/database"
)

type overtimeRepository struct {
	db *database.DB
}

func NewOvertimeRepository(db *database.DB) payroll.OvertimeRepository {
	return &overtimeRepository{db: db}
}

func (r *overtimeRepository) ListApproved(ctx context.Context, companyID, employeeID string, from, to time.Time) ([]payroll.OvertimeEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, work_date, day_type, hours, status
		FROM overtime_entries
		WHERE company_id = $1 AND employee_id = $2
			AND status = 'approved'
			AND work_date BETWEEN $3 AND $4
		ORDER BY work_date, id
	`

	rows, err := q.Query(ctx, query, companyID, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list overtime entries: %w", err)
	}
	defer rows.Close()

	var entries []payroll.OvertimeEntry
	for rows.Next() {
		var e payroll.OvertimeEntry
		if err := rows.Scan(&e.ID, &e.EmployeeID, &e.Date, &e.DayType, &e.Hours, &e.Status); err != nil {
			return nil, fmt.Errorf("failed to scan overtime entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate overtime entries: %w", err)
	}

	return entries, nil
}
