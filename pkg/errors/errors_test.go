package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestConstructors(t *testing.T) {
	cause := errors.New("database error")

	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
		wantMsg    string
	}{
		{"not found", NotFound("Facility"), CodeNotFound, http.StatusNotFound, "Facility not found"},
		{"validation", Validation("validation failed", nil), CodeValidation, http.StatusUnprocessableEntity, "validation failed"},
		{"invalid input", InvalidInput("bad id"), CodeInvalidInput, http.StatusBadRequest, "bad id"},
		{"missing parameters", MissingParameters(), CodeMissingParameters, http.StatusBadRequest, "Missing required parameters"},
		{"conflict", Conflict("already decided"), CodeConflict, http.StatusConflict, "already decided"},
		{"too many requests", TooManyRequests("slow down"), CodeTooManyRequests, http.StatusTooManyRequests, "slow down"},
		{"internal", Internal("boom", cause), CodeInternal, http.StatusInternalServerError, "boom"},
		{"timeout", Timeout("request timed out"), CodeTimeout, http.StatusGatewayTimeout, "request timed out"},
		{"unavailable", Unavailable("Kafka"), CodeUnavailable, http.StatusServiceUnavailable, "Kafka is temporarily unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, tt.err.Code)
			}
			if tt.err.StatusCode() != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, tt.err.StatusCode())
			}
			if tt.err.Message != tt.wantMsg {
				t.Errorf("expected message %q, got %q", tt.wantMsg, tt.err.Message)
			}
		})
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without underlying error",
			appErr:   &AppError{Code: CodeNotFound, Message: "resource not found"},
			expected: "NOT_FOUND: resource not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeInternal,
				Message: "internal error",
				Err:     errors.New("database connection failed"),
			},
			expected: "INTERNAL_ERROR: internal error (caused by: database connection failed)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appErr.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("original error")
	appErr := Wrap(cause, CodeInternal, "wrapped", http.StatusInternalServerError)

	if !errors.Is(appErr, cause) {
		t.Error("errors.Is should reach the wrapped cause")
	}
}

func TestAppError_StatusCodeDefaultsToInternal(t *testing.T) {
	err := &AppError{Code: CodeInternal, Message: "no status"}
	if err.StatusCode() != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", err.StatusCode())
	}
}

func TestNotFoundWithID(t *testing.T) {
	err := NotFoundWithID("Subfacility", "12345")

	if err.Details["id"] != "12345" {
		t.Errorf("expected id '12345', got %v", err.Details["id"])
	}
	if err.Details["resource"] != "Subfacility" {
		t.Errorf("expected resource 'Subfacility', got %v", err.Details["resource"])
	}
}

func TestMissingParameters_Details(t *testing.T) {
	err := MissingParameters("facility_id", "date")

	missing, ok := err.Details["missing"].([]string)
	if !ok || len(missing) != 2 {
		t.Fatalf("expected two missing names, got %v", err.Details["missing"])
	}
}

func TestAsAppError(t *testing.T) {
	appErr := NotFound("Event")
	regularErr := errors.New("regular error")

	if AsAppError(appErr) != appErr {
		t.Error("AsAppError() should return same AppError")
	}

	wrapped := fmt.Errorf("context: %w", appErr)
	if !IsAppError(wrapped) || AsAppError(wrapped) != appErr {
		t.Error("AsAppError() should unwrap wrapped AppError")
	}

	result := AsAppError(regularErr)
	if result.Code != CodeInternal {
		t.Error("AsAppError() should wrap regular error as internal error")
	}
	if result.Err != regularErr {
		t.Error("AsAppError() should keep the original error")
	}
	if IsAppError(regularErr) {
		t.Error("IsAppError() should return false for regular error")
	}
}

func TestAppError_ToJSON(t *testing.T) {
	body := string(NotFoundWithID("Facility", "12345").ToJSON())

	if !strings.Contains(body, "NOT_FOUND") {
		t.Error("ToJSON() should contain error code")
	}
	if !strings.Contains(body, "Facility not found") {
		t.Error("ToJSON() should contain error message")
	}
}
