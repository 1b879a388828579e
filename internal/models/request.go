package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/soltixdb/greenhouse/internal/analytics"
	"github.com/soltixdb/greenhouse/internal/utils"
)

// ReadingRequest is the payload a field device posts or publishes.
// Sensor fields stay untyped so firmware sending "23.5" or 23.5 is accepted alike.
type ReadingRequest struct {
	Temperature    interface{} `json:"temperature"`
	Humidity       interface{} `json:"humidity"`
	SoilMoisture   interface{} `json:"soil_moisture"`
	LightIntensity interface{} `json:"light_intensity"`
	CreatedAt      string      `json:"created_at,omitempty"` // RFC3339, defaults to receive time
}

// MissingFields lists required fields that are absent or null
func (r *ReadingRequest) MissingFields() []string {
	var missing []string
	if r.Temperature == nil {
		missing = append(missing, "temperature")
	}
	if r.Humidity == nil {
		missing = append(missing, "humidity")
	}
	return missing
}

// CoercedFields lists present sensor fields that are not numeric and will read as 0
func (r *ReadingRequest) CoercedFields() []string {
	var coerced []string
	for _, f := range []struct {
		name  string
		value interface{}
	}{
		{"temperature", r.Temperature},
		{"humidity", r.Humidity},
		{"soil_moisture", r.SoilMoisture},
		{"light_intensity", r.LightIntensity},
	} {
		if f.value != nil && !utils.IsNumeric(f.value) {
			coerced = append(coerced, f.name)
		}
	}
	return coerced
}

// Validate checks required fields and the optional timestamp
func (r *ReadingRequest) Validate() error {
	if missing := r.MissingFields(); len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	if r.CreatedAt != "" {
		if _, err := time.Parse(time.RFC3339, r.CreatedAt); err != nil {
			return fmt.Errorf("invalid created_at: %w", err)
		}
	}
	return nil
}

// ToReading coerces the payload into a reading.
// Unparseable sensor values become 0; an empty or invalid timestamp becomes now.
func (r *ReadingRequest) ToReading(now time.Time) analytics.Reading {
	createdAt := now
	if r.CreatedAt != "" {
		if t, err := time.Parse(time.RFC3339, r.CreatedAt); err == nil {
			createdAt = t
		}
	}

	return analytics.Reading{
		Temperature:    utils.ParseFloatOrZero(r.Temperature),
		Humidity:       utils.ParseFloatOrZero(r.Humidity),
		SoilMoisture:   utils.ParseFloatOrZero(r.SoilMoisture),
		LightIntensity: utils.ParseFloatOrZero(r.LightIntensity),
		CreatedAt:      createdAt.UTC(),
	}
}
