package payroll

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/ratetable"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/validator"
	"golang.org/x/sync/errgroup"
)

const defaultBatchWorkers = 8

// ResultSink receives every calculated result, usually to store it.
// An error fails that employee only.
type ResultSink func(ctx context.Context, result payroll.PayrollResult) (payroll.PayrollResult, error)

// BatchRunner calculates many employees in parallel with a bounded pool.
type BatchRunner struct {
	workers int
	logger  *slog.Logger
	opts    []OrchestratorOption
}

func NewBatchRunner(workers int, logger *slog.Logger, opts ...OrchestratorOption) *BatchRunner {
	if workers <= 0 {
		workers = defaultBatchWorkers
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchRunner{workers: workers, logger: logger, opts: opts}
}

// Run validates table, then calculates every input. A bad table aborts
// before any employee is touched; per-employee failures land in
// BatchReport.Failed and never stop the others. Cancelling ctx stops
// scheduling, employees already running still finish.
func (r *BatchRunner) Run(ctx context.Context, periodID string, table ratetable.Table, inputs []payroll.CalculationInput, sink ResultSink) (payroll.BatchReport, error) {
	if err := table.Validate(); err != nil {
		return payroll.BatchReport{}, err
	}

	orchestrator := r.Orchestrator(table)
	report := payroll.BatchReport{
		PeriodID:    periodID,
		RateVersion: table.Version,
		StartedAt:   time.Now(),
	}

	outcomes := make([]payroll.EmployeeOutcome, len(inputs))
	var g errgroup.Group
	g.SetLimit(r.workers)

	for i, in := range inputs {
		if err := ctx.Err(); err != nil {
			outcomes[i] = payroll.EmployeeOutcome{EmployeeID: in.EmployeeID, Err: err}
			continue
		}
		g.Go(func() error {
			outcomes[i] = r.runOne(ctx, orchestrator, in, sink)
			return nil
		})
	}
	_ = g.Wait()

	for _, o := range outcomes {
		if o.Err != nil {
			report.Failed = append(report.Failed, o)
			r.logger.Warn("payroll calculation failed",
				slog.String("period_id", periodID),
				slog.String("employee_id", o.EmployeeID),
				slog.String("error", o.Err.Error()),
			)
			continue
		}
		report.Succeeded = append(report.Succeeded, o)
	}
	report.FinishedAt = time.Now()

	metrics.ObserveBatch(table.Version, report.FinishedAt.Sub(report.StartedAt), len(report.Succeeded), len(report.Failed))
	r.logger.Info("payroll batch finished",
		slog.String("period_id", periodID),
		slog.String("rate_version", table.Version),
		slog.Int("succeeded", len(report.Succeeded)),
		slog.Int("failed", len(report.Failed)),
		slog.Duration("elapsed", report.FinishedAt.Sub(report.StartedAt)),
	)
	return report, nil
}

func (r *BatchRunner) runOne(ctx context.Context, o Orchestrator, in payroll.CalculationInput, sink ResultSink) payroll.EmployeeOutcome {
	outcome := payroll.EmployeeOutcome{EmployeeID: in.EmployeeID}

	result, err := o.Calculate(in)
	if err != nil {
		metrics.ObserveCalculation("batch", resultLabel(err))
		outcome.Err = err
		return outcome
	}
	if sink != nil {
		result, err = sink(ctx, result)
		if err != nil {
			metrics.ObserveCalculation("batch", resultLabel(err))
			outcome.Err = err
			return outcome
		}
	}

	metrics.ObserveCalculation("batch", metrics.ResultSuccess)
	outcome.Result = &result
	return outcome
}

func resultLabel(err error) string {
	var verrs validator.ValidationErrors
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.As(err, &verrs):
		return metrics.ResultValidation
	case errors.Is(err, payroll.ErrNotFound):
		return metrics.ResultNotFound
	case errors.Is(err, payroll.ErrResultLocked):
		return metrics.ResultLocked
	default:
		return metrics.ResultError
	}
}

// Orchestrator returns an orchestrator for table carrying the runner's options.
func (r *BatchRunner) Orchestrator(table ratetable.Table) Orchestrator {
	return NewOrchestrator(table, r.opts...)
}
