// Package webhook реализует прием уведомления платежного шлюза об оплате.
//
// Статусу из тела запроса сервер не доверяет: транзакция всегда
// перепроверяется у шлюза, и только successful применяет платеж.
package webhook

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/atelier-backoffice/internal/http/response"
	"github.com/magabrotheeeer/atelier-backoffice/internal/lib/sl"
	"github.com/magabrotheeeer/atelier-backoffice/internal/models"
)

// Handler управляет HTTP-запросами платежного шлюза.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс подтверждения платежа.
type Service interface {
	ConfirmPayment(ctx context.Context, txRef string, now time.Time) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Вебхук платежного шлюза
// @Description Перепроверяет транзакцию у шлюза и применяет оплату подписки.
// @Tags Payments
// @Accept  json
// @Produce  json
// @Param request body models.DummyWebhook true "Ссылка транзакции"
// @Success 200 {object} response.Response "Платеж применен"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 502 {object} response.ErrorResponse "Платежный шлюз недоступен или платеж не успешен"
// @Router /payments/webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.webhook"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyWebhook
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	if err := h.service.ConfirmPayment(r.Context(), req.TxRef, time.Now()); err != nil {
		log.Error("failed to confirm payment", sl.Err(err),
			slog.String("tx_ref", req.TxRef))
		w.WriteHeader(response.ErrStatus(err))
		render.JSON(w, r, response.Error("could not confirm payment"))
		return
	}

	log.Info("payment confirmed", slog.String("tx_ref", req.TxRef))
	render.JSON(w, r, response.OKWithData(nil))
}
