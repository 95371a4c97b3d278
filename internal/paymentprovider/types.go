package paymentprovider

// InitializeRequest — запрос на создание платежа у шлюза.
type InitializeRequest struct {
	TxRef       string            `json:"tx_ref"`
	Amount      float64           `json:"amount"`
	Currency    string            `json:"currency"`
	RedirectURL string            `json:"redirect_url,omitempty"`
	Customer    CustomerInfo      `json:"customer"`
	Meta        map[string]string `json:"meta,omitempty"`
}

// CustomerInfo — данные плательщика, передаваемые шлюзу.
type CustomerInfo struct {
	PhoneNumber string `json:"phone_number"`
	Name        string `json:"name,omitempty"`
}

// InitializeResponse — ответ шлюза на создание платежа.
type InitializeResponse struct {
	Status string `json:"status"`
	Data   struct {
		Link string `json:"link"` // Страница оплаты для редиректа
	} `json:"data"`
}

// VerifyResponse — ответ шлюза на проверку транзакции.
// Status транзакции: successful, failed, pending или cancelled.
type VerifyResponse struct {
	Status string `json:"status"`
	Data   struct {
		TxRef    string            `json:"tx_ref"`
		Status   string            `json:"status"`
		Amount   float64           `json:"amount"`
		Currency string            `json:"currency"`
		Meta     map[string]string `json:"meta,omitempty"`
	} `json:"data"`
}
