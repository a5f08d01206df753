package payroll

import (
	"errors"
	"fmt"
)

// ErrNotFound is matched by every not-found error of this domain.
var ErrNotFound = errors.New("not found")

var (
	ErrEmployeeNotFound = fmt.Errorf("compensation profile %w", ErrNotFound)
	ErrPeriodNotFound   = fmt.Errorf("payroll period %w", ErrNotFound)
	ErrResultNotFound   = fmt.Errorf("payroll result %w", ErrNotFound)
)

var (
	ErrResultLocked        = errors.New("payroll result is approved or paid, cannot recalculate")
	ErrComplianceBlocked   = errors.New("overtime exceeds a hard compliance limit")
	ErrMissingCompanyClaim = errors.New("company_id claim is missing or invalid")
)
