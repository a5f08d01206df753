package payroll

import (
	"context"
	"time"
)

// Every repository method takes companyID to prevent cross-company data access.

// ProfileRepository reads compensation profiles maintained by HR.
type ProfileRepository interface {
	GetProfile(ctx context.Context, companyID, employeeID string) (CompensationProfile, error)
	// ListActiveProfiles returns profiles of employees employed on any day of [from, to].
	ListActiveProfiles(ctx context.Context, companyID string, from, to time.Time) ([]CompensationProfile, error)
}

// PeriodRepository reads payroll periods.
type PeriodRepository interface {
	GetPeriod(ctx context.Context, companyID, periodID string) (PayrollPeriod, error)
	// ListDuePeriods returns periods of every company paid within [from, to].
	ListDuePeriods(ctx context.Context, from, to time.Time) ([]PayrollPeriod, error)
}

// OvertimeRepository reads overtime submissions.
type OvertimeRepository interface {
	// ListApproved returns approved entries dated within [from, to].
	ListApproved(ctx context.Context, companyID, employeeID string, from, to time.Time) ([]OvertimeEntry, error)
}

// AdjustmentRepository reads pass-through deductions. Missing rows mean zero.
type AdjustmentRepository interface {
	GetAdjustments(ctx context.Context, companyID, employeeID, periodID string) (Adjustments, error)
}

// ResultRepository stores one result per (employee, period).
type ResultRepository interface {
	// Upsert replaces the stored result unless it is approved or paid,
	// in which case ErrResultLocked is returned.
	Upsert(ctx context.Context, result PayrollResult) (PayrollResult, error)
	GetResult(ctx context.Context, companyID, employeeID, periodID string) (PayrollResult, error)
}

// ResultPublisher announces stored results to downstream consumers.
type ResultPublisher interface {
	PublishCalculated(ctx context.Context, result PayrollResult) error
}
