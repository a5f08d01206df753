package validator

import (
	"errors"
	"testing"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidUUID(t *testing.T) {
	valid := []string{
		"0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b",
		"0188D0F2-7B8C-7B4A-8A2B-6B8B8B8B8B8B",
	}
	invalid := []string{
		"123e4567-e89b-12d3-a456-426614174000", // v1
		"0188d0f27b8c7b4a8a2b6b8b8b8b8b8b",
		"g188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b",
		"",
	}
	for _, uuid := range valid {
		if !IsValidUUID(uuid) {
			t.Errorf("IsValidUUID(%q) = false, want true", uuid)
		}
	}
	for _, uuid := range invalid {
		if IsValidUUID(uuid) {
			t.Errorf("IsValidUUID(%q) = true, want false", uuid)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	valid := []string{"2025-01-01", "2024-02-29"}
	invalid := []string{"2025-13-01", "2025-02-29", "2025/01/01", "01-01-2025", ""}
	for _, s := range valid {
		if _, ok := IsValidDate(s); !ok {
			t.Errorf("IsValidDate(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if _, ok := IsValidDate(s); ok {
			t.Errorf("IsValidDate(%q) = true, want false", s)
		}
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "basic_salary", Message: "must be non-negative"},
		{Field: "tax_status", Message: "is required"},
	}
	got := errs.Error()
	want := "basic_salary: must be non-negative; tax_status: is required"
	if got != want {
		t.Errorf("ValidationErrors.Error() = %q, want %q", got, want)
	}
}

func TestValidationErrors_ToMap(t *testing.T) {
	errs := ValidationErrors{
		{Field: "basic_salary", Message: "must be non-negative"},
		{Field: "tax_status", Message: "is required"},
	}
	got := errs.ToMap()
	if len(got) != 2 {
		t.Errorf("ValidationErrors.ToMap() length = %d, want 2", len(got))
	}
	if got["tax_status"] != "is required" {
		t.Errorf("ValidationErrors.ToMap()[tax_status] = %q", got["tax_status"])
	}
}

func TestValidationErrors_Err(t *testing.T) {
	var errs ValidationErrors
	if errs.Err() != nil {
		t.Errorf("empty ValidationErrors.Err() = %v, want nil", errs.Err())
	}
	errs.Add("hours", "must be positive")
	if errs.Err() == nil {
		t.Errorf("ValidationErrors.Err() = nil, want error")
	}
}

type overtimeLine struct {
	Date  string `json:"date" validate:"required,datetime=2006-01-02"`
	Hours int    `json:"hours" validate:"gte=1,lte=24"`
}

type overtimeRequest struct {
	EmployeeID string         `json:"employee_id" validate:"required"`
	DayType    string         `json:"day_type" validate:"required,oneof=weekday rest_day"`
	Lines      []overtimeLine `json:"lines" validate:"dive"`
	Ignored    string         `json:"-"`
}

func TestStruct(t *testing.T) {
	ok := overtimeRequest{
		EmployeeID: "emp-1",
		DayType:    "weekday",
		Lines:      []overtimeLine{{Date: "2025-03-10", Hours: 2}},
	}
	if err := Struct(ok); err != nil {
		t.Fatalf("Struct(valid) = %v, want nil", err)
	}

	bad := overtimeRequest{
		DayType: "holiday",
		Lines:   []overtimeLine{{Date: "10/03/2025", Hours: 30}},
	}
	err := Struct(bad)

	var errs ValidationErrors
	if !errors.As(err, &errs) {
		t.Fatalf("Struct(invalid) error type = %T, want ValidationErrors", err)
	}
	got := errs.ToMap()
	want := map[string]string{
		"employee_id":    "is required",
		"day_type":       "must be one of: weekday rest_day",
		"lines[0].date":  "must be a date in 2006-01-02 format",
		"lines[0].hours": "must be less than or equal to 24",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("Struct(invalid)[%q] = %q, want %q", k, got[k], v)
		}
	}
}
