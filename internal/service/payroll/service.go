package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/ratetable"
	"github.com/go-chi/jwtauth/v5"
)

// Transactor runs fn inside a database transaction carried by ctx.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Dependencies struct {
	Rates       ratetable.Provider
	Profiles    payroll.ProfileRepository
	Periods     payroll.PeriodRepository
	Overtime    payroll.OvertimeRepository
	Adjustments payroll.AdjustmentRepository
	Results     payroll.ResultRepository
	Tx          Transactor

	// Optional. Without a publisher results are only stored.
	Publisher payroll.ResultPublisher

	Runner *BatchRunner
	Policy CompliancePolicy
	Logger *slog.Logger
}

type PayrollServiceImpl struct {
	rates       ratetable.Provider
	profiles    payroll.ProfileRepository
	periods     payroll.PeriodRepository
	overtime    payroll.OvertimeRepository
	adjustments payroll.AdjustmentRepository
	results     payroll.ResultRepository
	tx          Transactor
	publisher   payroll.ResultPublisher
	runner      *BatchRunner
	policy      CompliancePolicy
	logger      *slog.Logger
}

func NewPayrollService(deps Dependencies) *PayrollServiceImpl {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Runner == nil {
		deps.Runner = NewBatchRunner(0, deps.Logger)
	}
	return &PayrollServiceImpl{
		rates:       deps.Rates,
		profiles:    deps.Profiles,
		periods:     deps.Periods,
		overtime:    deps.Overtime,
		adjustments: deps.Adjustments,
		results:     deps.Results,
		tx:          deps.Tx,
		publisher:   deps.Publisher,
		runner:      deps.Runner,
		policy:      deps.Policy,
		logger:      deps.Logger,
	}
}

var (
	_ payroll.PayrollService = (*PayrollServiceImpl)(nil)
	_ payroll.PeriodRunner   = (*PayrollServiceImpl)(nil)
)

// Helper to get company_id and user_id from JWT context
func getClaimsFromContext(ctx context.Context) (companyID, userID string, err error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return "", "", payroll.ErrMissingCompanyClaim
	}

	userID, _ = claims["user_id"].(string)

	return companyID, userID, nil
}

func (s *PayrollServiceImpl) Preview(ctx context.Context, req payroll.PreviewRequest) (payroll.PayrollResultResponse, error) {
	if err := req.Validate(); err != nil {
		metrics.ObserveCalculation("preview", metrics.ResultValidation)
		return payroll.PayrollResultResponse{}, err
	}

	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.PayrollResultResponse{}, err
	}

	in := req.ToInput(companyID)
	table, err := s.rates.TableFor(in.Period.EndDate)
	if err != nil {
		return payroll.PayrollResultResponse{}, err
	}

	result, err := s.runner.Orchestrator(table).Calculate(in)
	metrics.ObserveCalculation("preview", resultLabel(err))
	if err != nil {
		return payroll.PayrollResultResponse{}, err
	}
	return payroll.NewPayrollResultResponse(result), nil
}

func (s *PayrollServiceImpl) CalculateEmployee(ctx context.Context, periodID, employeeID string, req payroll.CalculateEmployeeRequest) (payroll.PayrollResultResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollResultResponse{}, err
	}

	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.PayrollResultResponse{}, err
	}

	period, err := s.periods.GetPeriod(ctx, companyID, periodID)
	if err != nil {
		return payroll.PayrollResultResponse{}, err
	}
	table, err := s.rates.TableFor(period.EndDate)
	if err != nil {
		return payroll.PayrollResultResponse{}, err
	}
	profile, err := s.profiles.GetProfile(ctx, companyID, employeeID)
	if err != nil {
		return payroll.PayrollResultResponse{}, err
	}

	in, err := s.loadInput(ctx, period, profile)
	if err != nil {
		return payroll.PayrollResultResponse{}, err
	}
	in.YearToDateIncome = req.YearToDateIncome

	result, err := s.runner.Orchestrator(table).Calculate(in)
	if err != nil {
		metrics.ObserveCalculation("employee", resultLabel(err))
		return payroll.PayrollResultResponse{}, err
	}

	stored, err := s.store(ctx, result)
	metrics.ObserveCalculation("employee", resultLabel(err))
	if err != nil {
		return payroll.PayrollResultResponse{}, err
	}
	return payroll.NewPayrollResultResponse(stored), nil
}

func (s *PayrollServiceImpl) RunPeriod(ctx context.Context, periodID string) (payroll.BatchReportResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.BatchReportResponse{}, err
	}

	report, err := s.RunPeriodForCompany(ctx, companyID, periodID)
	if err != nil {
		return payroll.BatchReportResponse{}, err
	}
	return payroll.NewBatchReportResponse(report), nil
}

// RunPeriodForCompany loads every active employee and hands them to the
// batch runner. Employees whose inputs cannot be loaded are reported as
// failed alongside the calculation failures.
func (s *PayrollServiceImpl) RunPeriodForCompany(ctx context.Context, companyID, periodID string) (payroll.BatchReport, error) {
	period, err := s.periods.GetPeriod(ctx, companyID, periodID)
	if err != nil {
		return payroll.BatchReport{}, err
	}
	table, err := s.rates.TableFor(period.EndDate)
	if err != nil {
		return payroll.BatchReport{}, err
	}

	profiles, err := s.profiles.ListActiveProfiles(ctx, companyID, period.StartDate, period.EndDate)
	if err != nil {
		return payroll.BatchReport{}, fmt.Errorf("list active profiles: %w", err)
	}

	inputs := make([]payroll.CalculationInput, 0, len(profiles))
	var loadFailures []payroll.EmployeeOutcome
	for _, profile := range profiles {
		in, err := s.loadInput(ctx, period, profile)
		if err != nil {
			loadFailures = append(loadFailures, payroll.EmployeeOutcome{EmployeeID: profile.EmployeeID, Err: err})
			continue
		}
		inputs = append(inputs, in)
	}

	report, err := s.runner.Run(ctx, period.ID, table, inputs, s.store)
	if err != nil {
		return payroll.BatchReport{}, err
	}
	if len(loadFailures) > 0 {
		report.Failed = append(loadFailures, report.Failed...)
	}
	return report, nil
}

// RunDuePeriods runs every period of every company paid within [from, to].
// One failing period does not stop the rest; their errors are joined.
func (s *PayrollServiceImpl) RunDuePeriods(ctx context.Context, from, to time.Time) ([]payroll.BatchReport, error) {
	periods, err := s.periods.ListDuePeriods(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list due periods: %w", err)
	}

	var (
		reports []payroll.BatchReport
		errs    []error
	)
	for _, period := range periods {
		report, err := s.RunPeriodForCompany(ctx, period.CompanyID, period.ID)
		if err != nil {
			s.logger.Error("scheduled payroll run failed",
				slog.String("company_id", period.CompanyID),
				slog.String("period_id", period.ID),
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Errorf("period %s: %w", period.ID, err))
			continue
		}
		reports = append(reports, report)
	}
	return reports, errors.Join(errs...)
}

func (s *PayrollServiceImpl) GetResult(ctx context.Context, periodID, employeeID string) (payroll.PayrollResultResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.PayrollResultResponse{}, err
	}

	result, err := s.results.GetResult(ctx, companyID, employeeID, periodID)
	if err != nil {
		return payroll.PayrollResultResponse{}, err
	}
	return payroll.NewPayrollResultResponse(result), nil
}

// CheckOvertimeCompliance always returns the report. When the policy hard
// blocks, ErrComplianceBlocked is returned with it.
func (s *PayrollServiceImpl) CheckOvertimeCompliance(ctx context.Context, req payroll.ComplianceCheckRequest) (payroll.ComplianceReportResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.ComplianceReportResponse{}, err
	}

	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.ComplianceReportResponse{}, err
	}

	date := req.ParsedDate()
	table, err := s.rates.TableFor(date)
	if err != nil {
		return payroll.ComplianceReportResponse{}, err
	}

	monday, sunday := payroll.WeekBounds(date)
	entries, err := s.overtime.ListApproved(ctx, companyID, req.EmployeeID, monday, sunday)
	if err != nil {
		return payroll.ComplianceReportResponse{}, fmt.Errorf("list overtime: %w", err)
	}

	report, err := NewOvertimeCalculator(table).CheckCompliance(req.EmployeeID, date, *req.ProposedHours, entries)
	if err != nil {
		return payroll.ComplianceReportResponse{}, err
	}
	for _, w := range report.Warnings {
		metrics.ObserveComplianceWarning(string(w.Code))
	}

	resp := payroll.NewComplianceReportResponse(report)
	if s.policy.Blocks(report) {
		return resp, payroll.ErrComplianceBlocked
	}
	return resp, nil
}

func (s *PayrollServiceImpl) loadInput(ctx context.Context, period payroll.PayrollPeriod, profile payroll.CompensationProfile) (payroll.CalculationInput, error) {
	from, to := period.OvertimeWindow()
	entries, err := s.overtime.ListApproved(ctx, period.CompanyID, profile.EmployeeID, from, to)
	if err != nil {
		return payroll.CalculationInput{}, fmt.Errorf("list overtime: %w", err)
	}
	adjustments, err := s.adjustments.GetAdjustments(ctx, period.CompanyID, profile.EmployeeID, period.ID)
	if err != nil {
		return payroll.CalculationInput{}, fmt.Errorf("get adjustments: %w", err)
	}

	return payroll.CalculationInput{
		EmployeeID:       profile.EmployeeID,
		PeriodID:         period.ID,
		Profile:          profile,
		Period:           period,
		ApprovedOvertime: entries,
		Adjustments:      adjustments,
	}, nil
}

// store is the batch ResultSink. Publishing happens after commit and a
// broker failure never fails the employee.
func (s *PayrollServiceImpl) store(ctx context.Context, result payroll.PayrollResult) (payroll.PayrollResult, error) {
	var stored payroll.PayrollResult
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		stored, err = s.results.Upsert(ctx, result)
		return err
	})
	if err != nil {
		return payroll.PayrollResult{}, err
	}

	if s.publisher != nil {
		if err := s.publisher.PublishCalculated(ctx, stored); err != nil {
			s.logger.Warn("failed to publish payroll result",
				slog.String("employee_id", stored.EmployeeID),
				slog.String("period_id", stored.PeriodID),
				slog.String("error", err.Error()),
			)
		}
	}
	return stored, nil
}
