// Package app wires configuration into the payroll service for both the
// API server and payrollctl.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/cmlabs-hris/payroll-engine-go/internal/config"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/messaging/kafka"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/ratetable"
	"github.com/cmlabs-hris/payroll-engine-go/internal/repository/postgresql"
	payrollService "github.com/cmlabs-hris/payroll-engine-go/internal/service/payroll"
)

type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	DB      *database.DB
	Rates   ratetable.Versions
	Payroll *payrollService.PayrollServiceImpl

	closers []func() error
}

func NewLogger(cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel()})).With(
		slog.String("app", cfg.App.Name),
		slog.String("env", cfg.App.Env),
	)
}

// LoadRates loads and validates every rate table version.
func LoadRates(cfg *config.Config) (ratetable.Versions, error) {
	versions, err := ratetable.LoadFile(cfg.Payroll.RateTablePath)
	if err != nil {
		return nil, fmt.Errorf("load rate tables: %w", err)
	}
	return versions, nil
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	rates, err := LoadRates(cfg)
	if err != nil {
		return nil, err
	}

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolConfig{MaxConns: cfg.Database.MaxConns})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	a := &App{Config: cfg, Logger: logger, DB: db, Rates: rates}
	a.closers = append(a.closers, func() error { db.Close(); return nil })

	var publisher payroll.ResultPublisher
	if cfg.Kafka.Enabled {
		writer := kafka.NewWriter(cfg.Kafka.Brokers)
		a.closers = append(a.closers, writer.Close)
		publisher = kafka.NewResultPublisher(writer, cfg.Kafka.Topic)
	}

	a.Payroll = payrollService.NewPayrollService(payrollService.Dependencies{
		Rates:       rates,
		Profiles:    postgresql.NewCompensationProfileRepository(db),
		Periods:     postgresql.NewPayrollPeriodRepository(db),
		Overtime:    postgresql.NewOvertimeRepository(db),
		Adjustments: postgresql.NewPayrollAdjustmentRepository(db),
		Results:     postgresql.NewPayrollResultRepository(db),
		Tx:          postgresql.NewTxManager(db),
		Publisher:   publisher,
		Runner:      payrollService.NewBatchRunner(cfg.Payroll.BatchWorkers, logger),
		Policy:      payrollService.CompliancePolicy{HardBlock: cfg.Payroll.OvertimeHardBlock},
		Logger:      logger,
	})

	logger.Info("payroll engine ready",
		slog.Int("rate_versions", len(rates)),
		slog.Bool("kafka_enabled", cfg.Kafka.Enabled),
		slog.Int("batch_workers", cfg.Payroll.BatchWorkers),
	)
	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Logger.Warn("close failed", slog.String("error", err.Error()))
		}
	}
}
