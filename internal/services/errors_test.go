package services

import (
	"errors"
	"testing"
)

func TestServiceError_Error(t *testing.T) {
	err := NewServiceError(CodeUnknownSensor, "unknown sensor: co2")
	if err.Error() != "unknown sensor: co2" {
		t.Errorf("Expected 'unknown sensor: co2', got '%s'", err.Error())
	}
	if err.Details != nil {
		t.Errorf("Expected nil details, got %v", err.Details)
	}
}

func TestNewServiceErrorWithDetails(t *testing.T) {
	err := NewServiceErrorWithDetails(CodeMissingFields, "Missing required fields",
		map[string]interface{}{"fields": []string{"humidity"}})

	if err.Code != CodeMissingFields {
		t.Errorf("Expected code %s, got %s", CodeMissingFields, err.Code)
	}
	fields, ok := err.Details["fields"].([]string)
	if !ok || len(fields) != 1 || fields[0] != "humidity" {
		t.Errorf("Unexpected details: %v", err.Details)
	}
}

func TestWrapStoreError(t *testing.T) {
	cause := errors.New("connection refused")
	err := wrapStoreError(cause)

	if err.Code != CodeStoreUnavailable {
		t.Errorf("Expected code %s, got %s", CodeStoreUnavailable, err.Code)
	}
	if err.Message != "Database error" {
		t.Errorf("Expected generic message, got '%s'", err.Message)
	}
	if !errors.Is(err, cause) {
		t.Error("Expected wrapped cause to be reachable through errors.Is")
	}
	if err.Error() != "Database error: connection refused" {
		t.Errorf("Unexpected Error(): %s", err.Error())
	}

	var svcErr *ServiceError
	var wrapped error = err
	if !errors.As(wrapped, &svcErr) {
		t.Error("Expected errors.As to find ServiceError")
	}
}
