package payroll

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/ratetable"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// table2024 is the 2024.1 version: employment cap 10,042,300.
func table2024(t *testing.T) ratetable.Table {
	t.Helper()
	versions, err := ratetable.Default()
	require.NoError(t, err)
	table, err := versions.TableFor(date(2024, 6, 1))
	require.NoError(t, err)
	require.Equal(t, "2024.1", table.Version)
	return table
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func idr(n int64) decimal.Decimal {
	return decimal.NewFromInt(n)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func amountPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

func assertAmount(t *testing.T, want int64, got decimal.Decimal) {
	t.Helper()
	assert.True(t, got.Equal(idr(want)), "want %d, got %s", want, got.String())
}

func march2024() payroll.PayrollPeriod {
	return payroll.PayrollPeriod{
		ID:          "period-2024-03",
		CompanyID:   "company-1",
		Code:        "2024-03",
		StartDate:   date(2024, 3, 1),
		EndDate:     date(2024, 3, 31),
		PaymentDate: date(2024, 3, 25),
	}
}

func approved(id string, day time.Time, dt payroll.DayType, hours string) payroll.OvertimeEntry {
	return payroll.OvertimeEntry{
		ID:         id,
		EmployeeID: "emp-1",
		Date:       day,
		DayType:    dt,
		Hours:      dec(hours),
		Status:     payroll.OvertimeStatusApproved,
	}
}
