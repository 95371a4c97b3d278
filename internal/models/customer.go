package models

import "time"

// Customer представляет клиента ателье. Поле UserPhone заполняется только
// сервером из аутентифицированного контекста и никогда не принимается из
// тела запроса.
type Customer struct {
	ID        int       `json:"id"`
	UserPhone string    `json:"-"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	PhotoURL  string    `json:"photo_url,omitempty"`
	PhotoKey  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// DummyCustomer используется для приёма данных клиента из JSON‑запроса.
type DummyCustomer struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone,omitempty" validate:"omitempty"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
}
