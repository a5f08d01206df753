package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/ratetable"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var configErr *ratetable.ConfigurationError
	if errors.As(err, &configErr) {
		slog.Error("rate table configuration error", slog.String("error", err.Error()))
		InternalServerError(w, CodeRateTable, "Payroll rate configuration is invalid")
		return
	}

	switch {
	case errors.Is(err, payroll.ErrEmployeeNotFound):
		NotFound(w, "Compensation profile not found")
	case errors.Is(err, payroll.ErrPeriodNotFound):
		NotFound(w, "Payroll period not found")
	case errors.Is(err, payroll.ErrResultNotFound):
		NotFound(w, "Payroll result not found")
	case errors.Is(err, payroll.ErrNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, payroll.ErrResultLocked):
		Conflict(w, CodeResultLocked, "Payroll result is approved or paid and cannot be recalculated")
	case errors.Is(err, payroll.ErrComplianceBlocked):
		Conflict(w, CodeOvertimeLimits, err.Error())
	case errors.Is(err, payroll.ErrMissingCompanyClaim):
		Forbidden(w, "Company access required")

	// Default
	default:
		slog.Error("unhandled error", slog.String("error", err.Error()))
		InternalServerError(w, CodeInternal, "An unexpected error occurred")
	}
}
