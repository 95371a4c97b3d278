// Package send реализует административную рассылку уведомлений.
package send

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

// Handler управляет HTTP-запросами рассылки.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс рассылки уведомлений.
type Service interface {
	Broadcast(ctx context.Context, req models.DummyBroadcast, now time.Time) (*models.BroadcastResult, error)
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
// @Summary Разослать уведомление
// @Description Создает уведомление каждому арендатору по критерию и шлет пакетный push.
// @Tags Broadcast
// @Accept  json
// @Produce  json
// @Param request body models.DummyBroadcast true "Критерий, заголовок и текст"
// @Success 200 {object} models.BroadcastResult "Итоги рассылки"
// @Failure 403 {object} response.ErrorResponse "Требуется роль администратора"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /broadcast [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.broadcast.send"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyBroadcast
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

	result, err := h.service.Broadcast(r.Context(), req, time.Now())
	if err != nil {
		log.Error("failed to broadcast", sl.Err(err))
		w.WriteHeader(response.ErrStatus(err))
		render.JSON(w, r, response.Error("could not broadcast"))
		return
	}

	log.Info("broadcast sent",
		slog.String("criterion", req.Criterion),
		slog.Int("notified", result.NotifiedCount))
	render.JSON(w, r, response.OKWithData(result))
}
