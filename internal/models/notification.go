package models

import "time"

// Типы уведомлений.
const (
	NotificationBroadcast = "broadcast"
	NotificationReminder  = "delivery_reminder"
)

// Notification представляет уведомление арендатора внутри приложения.
// Доставка push — отдельный, необязательный канал: её сбой не откатывает
// созданную запись.
type Notification struct {
	ID        int       `json:"id"`
	UserPhone string    `json:"-"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// DummyBroadcast используется для приёма административной рассылки.
// Criterion выбирает подмножество арендаторов; нераспознанное значение
// означает рассылку всем, кроме администраторов.
type DummyBroadcast struct {
	Criterion string `json:"criterion,omitempty"`
	Title     string `json:"title" validate:"required"`
	Message   string `json:"message" validate:"required"`
}

// BroadcastResult — итог рассылки: сколько записей создано и как прошла
// push‑доставка.
type BroadcastResult struct {
	NotifiedCount int `json:"notified_count"`
	PushSuccess   int `json:"push_success"`
	PushFailed    int `json:"push_failed"`
}

// ReminderEvent — событие напоминания о доставке, публикуемое воркером
// обхода заказов в очередь и потребляемое отправителем уведомлений.
type ReminderEvent struct {
	UserPhone    string `json:"user_phone"`
	OrderID      int    `json:"order_id"`
	CustomerName string `json:"customer_name"`
}
