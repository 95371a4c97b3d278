package models

import (
	"encoding/json"
	"time"
)

// Measurement представляет мерки клиента. Набор полей мерок свободный
// и хранится в jsonb, так как он отличается от ателье к ателье.
type Measurement struct {
	ID         int             `json:"id"`
	UserPhone  string          `json:"-"`
	CustomerID int             `json:"customer_id"`
	Fields     json.RawMessage `json:"fields"`
	PhotoURL   string          `json:"photo_url,omitempty"`
	PhotoKey   string          `json:"-"`
	CreatedAt  time.Time       `json:"created_at"`
}

// DummyMeasurement используется для приёма мерок из JSON‑запроса.
type DummyMeasurement struct {
	CustomerID int             `json:"customer_id" validate:"required,gt=0"`
	Fields     json.RawMessage `json:"fields" validate:"required"`
}
