// Package models содержит доменную модель владельца ателье (арендатора),
// включающую учетные данные и состояние подписки.
// Структуры используются в бизнес‑логике и при работе с хранилищем.
package models

import "time"

// Типы подписки арендатора.
const (
	SubscriptionTrial     = "trial"
	SubscriptionMonthly   = "monthly"
	SubscriptionQuarterly = "quarterly"
	SubscriptionYearly    = "yearly"
)

// Статусы подписки арендатора.
const (
	StatusActive    = "active"
	StatusExpired   = "expired"
	StatusCancelled = "cancelled"
)

// Роли пользователей.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// TrialDays длительность пробного периода, предоставляемого при регистрации.
const TrialDays = 30

// User представляет владельца ателье — арендатора системы.
// Идентификатором служит нормализованный телефон из 11 цифр, он никогда
// не изменяется. Заполнена всегда ровно одна пара дат: пробного периода
// либо оплаченной подписки; вторая пара очищается при переходе.
type User struct {
	Phone                 string     // Нормализованный телефон, идентификатор арендатора
	PasswordHash          string     // bcrypt‑хэш пароля
	BusinessName          string     // Название ателье
	Role                  string     // admin или user
	SubscriptionType      string     // trial, monthly, quarterly, yearly
	SubscriptionStatus    string     // active, expired, cancelled
	TrialStartDate        *time.Time // Начало пробного периода (только на trial)
	TrialEndDate          *time.Time // Конец пробного периода (только на trial)
	SubscriptionStartDate *time.Time // Начало оплаченной подписки
	SubscriptionEndDate   *time.Time // Конец оплаченной подписки
	PendingPaymentRef     *string    // Ссылка на незавершенную транзакцию, не более одной
	PushEnabled           bool       // Согласие на push‑уведомления
	DeviceToken           string     // Токен устройства для push
	ProfileImageURL       string     // Публичный URL изображения профиля
	ProfileImageKey       string     // Канонический ключ изображения в хранилище
	CreatedAt             time.Time  // Дата регистрации
}

// SubscriptionWindow — производное состояние подписки, вычисляемое на чтении
// из сохраненных дат и текущего времени. Не хранится в базе.
type SubscriptionWindow struct {
	SubscriptionType      string     `json:"subscription_type"`
	SubscriptionStatus    string     `json:"subscription_status"`
	DaysRemaining         int        `json:"days_remaining"`
	TrialStartDate        *time.Time `json:"trial_start_date,omitempty"`
	TrialEndDate          *time.Time `json:"trial_end_date,omitempty"`
	SubscriptionStartDate *time.Time `json:"subscription_start_date,omitempty"`
	SubscriptionEndDate   *time.Time `json:"subscription_end_date,omitempty"`
}

// DummyRegister используется для приёма данных регистрации из JSON‑запроса.
type DummyRegister struct {
	Phone        string `json:"phone" validate:"required"`
	Password     string `json:"password" validate:"required,min=6"`
	BusinessName string `json:"business_name" validate:"required"`
}

// DummyLogin используется для приёма данных входа из JSON‑запроса.
type DummyLogin struct {
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required"`
}
