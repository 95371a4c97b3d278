// Package push реализует HTTP-клиент сервиса push-уведомлений.
// Доставка выполняется одним батч-запросом на весь список токенов;
// сервис терпит частичные отказы и возвращает счетчики по токенам.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/magabrotheeeer/atelier-backoffice/internal/errs"
)

// Client — клиент push-сервиса.
type Client struct {
	endpoint   string
	serverKey  string
	httpClient *http.Client
}

// NewClient создаёт клиент push-сервиса.
func NewClient(endpoint, serverKey string) *Client {
	return &Client{
		endpoint:   endpoint,
		serverKey:  serverKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// SendRequest — батч-запрос на доставку одного сообщения списку устройств.
type SendRequest struct {
	Tokens []string          `json:"tokens"`
	Title  string            `json:"title"`
	Body   string            `json:"body"`
	Data   map[string]string `json:"data,omitempty"`
}

// SendResult — итог батч-доставки с ошибками по отдельным токенам.
type SendResult struct {
	SuccessCount   int             `json:"success_count"`
	FailedCount    int             `json:"failed_count"`
	PerTokenErrors []PerTokenError `json:"per_token_errors,omitempty"`
}

// PerTokenError — ошибка доставки на конкретное устройство.
type PerTokenError struct {
	Token string `json:"token"`
	Error string `json:"error"`
}

// Send отправляет одно сообщение на все переданные токены одним запросом.
// Пустой список токенов — no-op с нулевым результатом.
func (c *Client) Send(ctx context.Context, tokens []string, title, body string, data map[string]string) (*SendResult, error) {
	const op = "push.Send"

	if len(tokens) == 0 {
		return &SendResult{}, nil
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(SendRequest{
		Tokens: tokens,
		Title:  title,
		Body:   body,
		Data:   data,
	}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Authorization", "key="+c.serverKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, errs.ErrUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: %w: unexpected status %s", op, errs.ErrUpstream, resp.Status)
	}

	var result SendResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}
