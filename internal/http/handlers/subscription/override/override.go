// Package override реализует административную правку подписки арендатора.
package override

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
	"github.com/magabrotheeeer/atelier-backoffice/internal/lib/phone"
	"github.com/magabrotheeeer/atelier-backoffice/internal/lib/sl"
	"github.com/magabrotheeeer/atelier-backoffice/internal/models"
)

// Handler управляет HTTP-запросами правки подписки.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс административной правки подписки.
type Service interface {
	AdminOverride(ctx context.Context, phone, tier string, start, end *time.Time, now time.Time) error
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
// @Summary Править подписку арендатора
// @Description Административно назначает тариф и даты подписки, минуя оплату.
// @Tags Subscription
// @Accept  json
// @Produce  json
// @Param request body models.DummyOverride true "Телефон, тариф и даты"
// @Success 200 {object} response.Response "Подписка обновлена"
// @Failure 403 {object} response.ErrorResponse "Требуется роль администратора"
// @Failure 404 {object} response.ErrorResponse "Арендатор не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /subscription/override [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.override"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyOverride
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

	normalized, err := phone.Normalize(req.Phone)
	if err != nil {
		log.Error("bad phone", sl.Err(err))
		w.WriteHeader(response.ErrStatus(err))
		render.JSON(w, r, response.Error("phone must contain exactly 11 digits"))
		return
	}

	var start, end *time.Time
	if req.StartDate != "" {
		parsed, _ := time.Parse("2006-01-02", req.StartDate)
		start = &parsed
	}
	if req.EndDate != "" {
		parsed, _ := time.Parse("2006-01-02", req.EndDate)
		end = &parsed
	}

	if err := h.service.AdminOverride(r.Context(), normalized, req.Tier, start, end, time.Now()); err != nil {
		log.Error("failed to override subscription", sl.Err(err))
		w.WriteHeader(response.ErrStatus(err))
		render.JSON(w, r, response.Error("could not override subscription"))
		return
	}

	log.Info("subscription overridden", slog.String("user_phone", normalized))
	render.JSON(w, r, response.OKWithData(nil))
}
