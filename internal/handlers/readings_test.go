package handlers

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/soltixdb/greenhouse/internal/logging"
	"github.com/soltixdb/greenhouse/internal/models"
	"github.com/soltixdb/greenhouse/internal/services"
	"github.com/soltixdb/greenhouse/internal/storage"
)

func readingsApp(h *Handler) *fiber.App {
	app := fiber.New()
	app.Post("/api/data", h.CreateReading)
	app.Get("/api/data", h.LatestReadings)
	app.Get("/api/history", h.History)
	return app
}


func TestHandler_CreateReading(t *testing.T) {
	store := seededStore(t, 0)
	app := readingsApp(newTestHandler(store, false))

	tests := []struct {
		name         string
		body         string
		expectedCode int
		errorCode    string
	}{
		{
			name:         "all fields",
			body:         `{"temperature": 24.5, "humidity": 61, "soil_moisture": 44, "light_intensity": 70}`,
			expectedCode: fiber.StatusCreated,
		},
		{
			name:         "numeric strings are coerced",
			body:         `{"temperature": "24.5", "humidity": "61"}`,
			expectedCode: fiber.StatusCreated,
		},
		{
			name:         "missing humidity",
			body:         `{"temperature": 24.5}`,
			expectedCode: fiber.StatusBadRequest,
			errorCode:    services.CodeMissingFields,
		},
		{
			name:         "null temperature",
			body:         `{"temperature": null, "humidity": 61}`,
			expectedCode: fiber.StatusBadRequest,
			errorCode:    services.CodeMissingFields,
		},
		{
			name:         "bad timestamp",
			body:         `{"temperature": 24.5, "humidity": 61, "created_at": "yesterday"}`,
			expectedCode: fiber.StatusBadRequest,
			errorCode:    services.CodeInvalidReading,
		},
		{
			name:         "malformed json",
			body:         `{"temperature":`,
			expectedCode: fiber.StatusBadRequest,
			errorCode:    "INVALID_JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/data", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("Failed to perform request: %v", err)
			}

			if resp.StatusCode != tt.expectedCode {
				t.Errorf("Expected status %d, got %d", tt.expectedCode, resp.StatusCode)
			}

			if tt.errorCode == "" {
				var created models.CreateReadingResponse
				decodeBody(t, resp, &created)
				if created.Message != "Data inserted successfully" {
					t.Errorf("Unexpected message %q", created.Message)
				}
				if created.ID <= 0 {
					t.Errorf("Expected positive id, got %d", created.ID)
				}
				return
			}

			var errResp models.ErrorResponse
			decodeBody(t, resp, &errResp)
			if errResp.Error.Code != tt.errorCode {
				t.Errorf("Expected error code %s, got %s", tt.errorCode, errResp.Error.Code)
			}
		})
	}

	if store.Len() != 2 {
		t.Errorf("Expected 2 stored readings, got %d", store.Len())
	}
}

func TestHandler_CreateReading_MissingFieldsDetails(t *testing.T) {
	app := readingsApp(newTestHandler(seededStore(t, 0), false))

	req := httptest.NewRequest("POST", "/api/data", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to perform request: %v", err)
	}

	var errResp models.ErrorResponse
	decodeBody(t, resp, &errResp)
	if errResp.Error.Message != "Missing required fields" {
		t.Errorf("Unexpected message %q", errResp.Error.Message)
	}
	fields, ok := errResp.Error.Details["fields"].([]interface{})
	if !ok || len(fields) != 2 {
		t.Fatalf("Expected two missing fields, got %v", errResp.Error.Details["fields"])
	}
	if fields[0] != "temperature" || fields[1] != "humidity" {
		t.Errorf("Unexpected missing fields %v", fields)
	}
}

func TestHandler_CreateReading_StoreDown(t *testing.T) {
	app := readingsApp(newTestHandler(brokenStore{storage.NewMemoryStore(0, logging.NewNop())}, false))

	req := httptest.NewRequest("POST", "/api/data", strings.NewReader(`{"temperature": 20, "humidity": 50}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to perform request: %v", err)
	}

	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Errorf("Expected status %d, got %d", fiber.StatusInternalServerError, resp.StatusCode)
	}

	var errResp models.ErrorResponse
	decodeBody(t, resp, &errResp)
	if errResp.Error.Code != services.CodeStoreUnavailable {
		t.Errorf("Expected error code %s, got %s", services.CodeStoreUnavailable, errResp.Error.Code)
	}
}

func TestHandler_LatestReadings(t *testing.T) {
	app := readingsApp(newTestHandler(seededStore(t, 30), false))

	tests := []struct {
		name      string
		query     string
		wantCount int
		wantFirst float64
	}{
		{"default limit", "", 1, 49},
		{"explicit limit", "?limit=5", 5, 49},
		{"garbage limit falls back", "?limit=abc", 1, 49},
		{"negative limit falls back", "?limit=-3", 1, 49},
		{"limit beyond data", "?limit=500", 30, 49},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", "/api/data"+tt.query, nil))
			if err != nil {
				t.Fatalf("Failed to perform request: %v", err)
			}
			if resp.StatusCode != fiber.StatusOK {
				t.Fatalf("Expected status 200, got %d", resp.StatusCode)
			}

			var records []storage.Record
			decodeBody(t, resp, &records)
			if len(records) != tt.wantCount {
				t.Fatalf("Expected %d records, got %d", tt.wantCount, len(records))
			}
			if records[0].Temperature != tt.wantFirst {
				t.Errorf("Expected newest temperature %v first, got %v", tt.wantFirst, records[0].Temperature)
			}
		})
	}
}

func TestHandler_History(t *testing.T) {
	app := readingsApp(newTestHandler(seededStore(t, 30), false))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/history", nil))
	if err != nil {
		t.Fatalf("Failed to perform request: %v", err)
	}

	var records []storage.Record
	decodeBody(t, resp, &records)
	if len(records) != 20 {
		t.Fatalf("Expected default of 20 records, got %d", len(records))
	}
	// newest 20 of temps 20..49, oldest first
	if records[0].Temperature != 30 || records[19].Temperature != 49 {
		t.Errorf("Expected temperatures 30..49, got %v..%v", records[0].Temperature, records[19].Temperature)
	}
	for i := 1; i < len(records); i++ {
		if records[i].CreatedAt.Before(records[i-1].CreatedAt) {
			t.Fatalf("History not chronological at %d", i)
		}
	}
}
