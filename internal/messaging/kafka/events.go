package kafka

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PayrollResultCalculatedTopic = "payroll.result.calculated.v1"
	PayrollResultCalculatedType  = "payroll.result.calculated"
)

type PayrollResultCalculatedEvent struct {
	EventType       string          `json:"event_type"`
	ResultID        string          `json:"result_id"`
	CompanyID       string          `json:"company_id"`
	EmployeeID      string          `json:"employee_id"`
	PeriodID        string          `json:"period_id"`
	PeriodCode      string          `json:"period_code"`
	RateVersion     string          `json:"rate_version"`
	GrossSalary     decimal.Decimal `json:"gross_salary"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	NetSalary       decimal.Decimal `json:"net_salary"`
	IncomeTax       decimal.Decimal `json:"income_tax"`
	CalculatedAt    time.Time       `json:"calculated_at"`
	OccurredAt      time.Time       `json:"occurred_at"`
}
