// Package pay реализует HTTP-обработчик начала оплаты подписки.
//
// Обработчик доступен и арендаторам с истекшей подпиской, иначе они
// не смогли бы продлиться.
package pay

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/atelier-backoffice/internal/http/middlewarectx"
	"github.com/magabrotheeeer/atelier-backoffice/internal/http/response"
	"github.com/magabrotheeeer/atelier-backoffice/internal/lib/sl"
	"github.com/magabrotheeeer/atelier-backoffice/internal/models"
)

// Handler управляет HTTP-запросами начала оплаты.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс создания платежа у шлюза.
type Service interface {
	InitializePayment(ctx context.Context, phone, tier string) (string, string, error)
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
// @Summary Начать оплату подписки
// @Description Создает платеж у платежного шлюза и возвращает ссылку на страницу оплаты.
// @Tags Subscription
// @Accept  json
// @Produce  json
// @Param request body models.DummyInitializePayment true "Выбранный тариф"
// @Success 200 {object} map[string]any "Ссылка на оплату и ссылка транзакции"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Неизвестный тариф"
// @Failure 502 {object} response.ErrorResponse "Платежный шлюз недоступен"
// @Router /subscription/pay [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.pay"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	phone, ok := r.Context().Value(middlewarectx.UserPhone).(string)
	if !ok || phone == "" {
		log.Error("user phone not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	var req models.DummyInitializePayment
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

	link, txRef, err := h.service.InitializePayment(r.Context(), phone, req.Tier)
	if err != nil {
		log.Error("failed to initialize payment", sl.Err(err))
		w.WriteHeader(response.ErrStatus(err))
		render.JSON(w, r, response.Error("could not initialize payment"))
		return
	}

	log.Info("payment initialized", slog.String("tx_ref", txRef))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"payment_link": link,
		"tx_ref":       txRef,
	}))
}
