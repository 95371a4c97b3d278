package models

import "time"

// Статусы платежей в истории.
const (
	PaymentSuccessful = "successful"
	PaymentFailed     = "failed"
	PaymentPending    = "pending"
	PaymentCancelled  = "cancelled"
)

// Payment представляет рассчитанную транзакцию в истории платежей арендатора.
// История только дополняется; уникальность TxRef обеспечивает идемпотентность
// повторных подтверждений одной и той же транзакции.
type Payment struct {
	ID        int       `json:"id"`
	UserPhone string    `json:"user_phone"`
	TxRef     string    `json:"tx_ref"`
	Amount    float64   `json:"amount"`
	Tier      string    `json:"tier"`
	Status    string    `json:"status"`
	SettledAt time.Time `json:"settled_at"`
}

// DummyInitializePayment используется для приёма запроса на оплату тарифа.
type DummyInitializePayment struct {
	Tier string `json:"tier" validate:"required,oneof=monthly quarterly yearly"`
}

// DummyWebhook используется для приёма уведомления платежного шлюза.
// Статус из тела не учитывается: транзакция перепроверяется у шлюза.
type DummyWebhook struct {
	TxRef string `json:"tx_ref" validate:"required"`
}

// DummyOverride используется для приёма административной правки подписки.
// Даты в формате 2006-01-02; пустые значения означают «от текущего момента».
type DummyOverride struct {
	Phone     string `json:"phone" validate:"required"`
	Tier      string `json:"tier" validate:"required,oneof=monthly quarterly yearly"`
	StartDate string `json:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}
