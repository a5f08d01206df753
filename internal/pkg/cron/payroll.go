package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
)

// PayrollJobs recalculates periods that are about to be paid.
type PayrollJobs struct {
	runner   payroll.PeriodRunner
	interval time.Duration
	leadDays int
	logger   *slog.Logger
	now      func() time.Time
}

func NewPayrollJobs(runner payroll.PeriodRunner, interval time.Duration, leadDays int, logger *slog.Logger) *PayrollJobs {
	if logger == nil {
		logger = slog.Default()
	}
	return &PayrollJobs{
		runner:   runner,
		interval: interval,
		leadDays: leadDays,
		logger:   logger,
		now:      time.Now,
	}
}

func (j *PayrollJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("payroll_auto_run", j.interval, j.RunDuePeriods)
}

// RunDuePeriods runs every period whose payment date falls between today
// and today plus the lead window.
func (j *PayrollJobs) RunDuePeriods(ctx context.Context) error {
	y, m, d := j.now().Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, j.leadDays)

	reports, err := j.runner.RunDuePeriods(ctx, from, to)
	for _, r := range reports {
		j.logger.Info("Scheduled payroll run finished",
			"period_id", r.PeriodID,
			"rate_version", r.RateVersion,
			"succeeded", len(r.Succeeded),
			"failed", len(r.Failed),
		)
	}
	return err
}
