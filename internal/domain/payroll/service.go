package payroll

import (
	"context"
	"time"
)

// PayrollService wraps the calculation engine with loading, storage and
// publishing. companyID comes from the JWT unless stated otherwise.
type PayrollService interface {
	// Preview calculates from the request body alone; nothing is stored
	Preview(ctx context.Context, req PreviewRequest) (PayrollResultResponse, error)

	// CalculateEmployee recalculates and stores one employee's result for a period
	CalculateEmployee(ctx context.Context, periodID, employeeID string, req CalculateEmployeeRequest) (PayrollResultResponse, error)

	// RunPeriod recalculates every active employee of the company for a period
	RunPeriod(ctx context.Context, periodID string) (BatchReportResponse, error)

	GetResult(ctx context.Context, periodID, employeeID string) (PayrollResultResponse, error)

	// CheckOvertimeCompliance measures a proposed submission against the same week
	CheckOvertimeCompliance(ctx context.Context, req ComplianceCheckRequest) (ComplianceReportResponse, error)
}

// PeriodRunner is used by background jobs, which carry no JWT.
type PeriodRunner interface {
	RunPeriodForCompany(ctx context.Context, companyID, periodID string) (BatchReport, error)
	// RunDuePeriods runs every period paid within [from, to].
	RunDuePeriods(ctx context.Context, from, to time.Time) ([]BatchReport, error)
}
