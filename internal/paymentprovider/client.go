// Package paymentprovider реализует HTTP-клиент платежного шлюза.
// Шлюз создает платеж и возвращает ссылку на страницу оплаты; подтверждение
// приходит вебхуком, после чего транзакция проверяется методом Verify.
// Недоступность шлюза всегда всплывает к вызывающему как ошибка — она
// никогда не трактуется как успешная оплата.
package paymentprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/magabrotheeeer/atelier-backoffice/internal/errs"
)

// Client — клиент платежного шлюза.
type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

// NewClient создаёт клиент шлюза с заданным адресом API и секретным ключом.
func NewClient(baseURL, secretKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		secretKey:  secretKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// Initialize создает платеж у шлюза и возвращает ссылку на страницу оплаты.
func (c *Client) Initialize(ctx context.Context, reqParams InitializeRequest) (*InitializeResponse, error) {
	const op = "paymentprovider.Initialize"

	req, err := c.newRequest(ctx, http.MethodPost, "/payments", reqParams)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, errs.ErrUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("%s: %w: unexpected status %s", op, errs.ErrUpstream, resp.Status)
	}

	var initResp InitializeResponse
	if err := json.NewDecoder(resp.Body).Decode(&initResp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &initResp, nil
}

// Verify запрашивает у шлюза состояние транзакции по её ссылке.
func (c *Client) Verify(ctx context.Context, txRef string) (*VerifyResponse, error) {
	const op = "paymentprovider.Verify"

	req, err := c.newRequest(ctx, http.MethodGet, "/transactions/verify_by_reference?tx_ref="+url.QueryEscape(txRef), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, errs.ErrUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: %w: unexpected status %s", op, errs.ErrUpstream, resp.Status)
	}

	var verifyResp VerifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&verifyResp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &verifyResp, nil
}
