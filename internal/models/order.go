package models

import "time"

// Статусы заказа.
const (
	OrderPending    = "pending"
	OrderInProgress = "in_progress"
	OrderCompleted  = "completed"
	OrderDelivered  = "delivered"
)

// Order представляет заказ на пошив. Эскиз хранится как пара URL/ключ,
// дополнительные фотографии фасонов лежат в OrderImages.
type Order struct {
	ID          int        `json:"id"`
	UserPhone   string     `json:"-"`
	CustomerID  int        `json:"customer_id"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	SketchURL   string     `json:"sketch_url,omitempty"`
	SketchKey   string     `json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// OrderImage — фотография фасона, прикрепленная к заказу.
type OrderImage struct {
	ID         int    `json:"id"`
	OrderID    int    `json:"order_id"`
	UserPhone  string `json:"-"`
	URL        string `json:"url"`
	StorageKey string `json:"-"`
}

// DummyOrder используется для приёма данных заказа из JSON‑запроса.
type DummyOrder struct {
	CustomerID  int    `json:"customer_id" validate:"required,gt=0"`
	Description string `json:"description" validate:"required"`
	DueDate     string `json:"due_date,omitempty" validate:"omitempty"`
}
