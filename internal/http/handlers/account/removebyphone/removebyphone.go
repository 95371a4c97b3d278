// Package removebyphone реализует удаление аккаунта по одному номеру
// телефона, без пароля. Маршрут существует для сценария удаления в один
// клик; пониженный барьер аутентификации — осознанно принятый риск.
package removebyphone

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/atelier-backoffice/internal/http/response"
	"github.com/magabrotheeeer/atelier-backoffice/internal/lib/phone"
	"github.com/magabrotheeeer/atelier-backoffice/internal/lib/sl"
)

// Handler управляет HTTP-запросами удаления аккаунта по телефону.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс каскадного удаления аккаунта.
type Service interface {
	DeleteByPhone(ctx context.Context, phone string) error
}

// Request — тело запроса удаления по телефону.
type Request struct {
	Phone string `json:"phone" validate:"required"`
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
// @Summary Удалить аккаунт по телефону
// @Description Каскадно удаляет аккаунт по номеру телефона без подтверждения паролем.
// @Tags Account
// @Accept  json
// @Produce  json
// @Param request body Request true "Телефон арендатора"
// @Success 200 {object} response.Response "Аккаунт удален"
// @Failure 404 {object} response.ErrorResponse "Аккаунт не найден"
// @Failure 422 {object} response.ErrorResponse "Некорректный телефон"
// @Router /account/by-phone [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.account.removebyphone"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
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

	if err := h.service.DeleteByPhone(r.Context(), normalized); err != nil {
		log.Error("failed to delete account", sl.Err(err))
		w.WriteHeader(response.ErrStatus(err))
		render.JSON(w, r, response.Error("could not delete account"))
		return
	}

	log.Info("account deleted", slog.String("user_phone", normalized))
	render.JSON(w, r, response.OKWithData(nil))
}
