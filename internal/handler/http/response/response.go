package response

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Error codes returned in ErrorDetail.Code.
const (
	CodeBadRequest     = "BAD_REQUEST"
	CodeValidation     = "VALIDATION_ERROR"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeForbidden      = "FORBIDDEN"
	CodeNotFound       = "NOT_FOUND"
	CodeInternal       = "INTERNAL_SERVER_ERROR"
	CodeRateTable      = "RATE_TABLE_INVALID"
	CodeResultLocked   = "RESULT_LOCKED"
	CodeOvertimeLimits = "OVERTIME_LIMIT_EXCEEDED"
)

type Response struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    interface{}  `json:"data,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

func writeError(w http.ResponseWriter, statusCode int, detail ErrorDetail, data interface{}) {
	writeJSON(w, statusCode, Response{Data: data, Error: &detail})
}

func Success(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, Response{Success: true, Data: data})
}

func SuccessWithMessage(w http.ResponseWriter, message string, data interface{}) {
	writeJSON(w, http.StatusOK, Response{Success: true, Message: message, Data: data})
}

func BadRequest(w http.ResponseWriter, message string, details map[string]string) {
	writeError(w, http.StatusBadRequest, ErrorDetail{Code: CodeBadRequest, Message: message, Details: details}, nil)
}

func ValidationError(w http.ResponseWriter, details map[string]string) {
	writeError(w, http.StatusUnprocessableEntity, ErrorDetail{Code: CodeValidation, Message: "Validation failed", Details: details}, nil)
}

func Unauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, ErrorDetail{Code: CodeUnauthorized, Message: message}, nil)
}

func Forbidden(w http.ResponseWriter, message string) {
	writeError(w, http.StatusForbidden, ErrorDetail{Code: CodeForbidden, Message: message}, nil)
}

func NotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrorDetail{Code: CodeNotFound, Message: message}, nil)
}

// Conflict uses code to tell a locked result from a blocked overtime request.
func Conflict(w http.ResponseWriter, code, message string) {
	writeError(w, http.StatusConflict, ErrorDetail{Code: code, Message: message}, nil)
}

// ConflictWithData also returns the payload behind the conflict, e.g. the
// compliance report of a hard block.
func ConflictWithData(w http.ResponseWriter, code, message string, data interface{}) {
	writeError(w, http.StatusConflict, ErrorDetail{Code: code, Message: message}, data)
}

func InternalServerError(w http.ResponseWriter, code, message string) {
	writeError(w, http.StatusInternalServerError, ErrorDetail{Code: code, Message: message}, nil)
}
