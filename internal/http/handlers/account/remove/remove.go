// Package remove реализует удаление аккаунта текущего арендатора
// с подтверждением паролем.
package remove

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
)

// Handler управляет HTTP-запросами удаления аккаунта.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс каскадного удаления аккаунта.
type Service interface {
	DeleteWithPassword(ctx context.Context, phone, password string) error
}

// Request — тело запроса удаления с подтверждением паролем.
type Request struct {
	Password string `json:"password" validate:"required"`
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
// @Summary Удалить аккаунт
// @Description Каскадно удаляет аккаунт текущего арендатора: файлы, записи, кэш. Требует пароль.
// @Tags Account
// @Accept  json
// @Produce  json
// @Param request body Request true "Пароль для подтверждения"
// @Success 200 {object} response.Response "Аккаунт удален"
// @Failure 401 {object} response.ErrorResponse "Неверный пароль"
// @Failure 404 {object} response.ErrorResponse "Аккаунт не найден"
// @Router /account [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.account.remove"
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

	if err := h.service.DeleteWithPassword(r.Context(), phone, req.Password); err != nil {
		log.Error("failed to delete account", sl.Err(err))
		w.WriteHeader(response.ErrStatus(err))
		render.JSON(w, r, response.Error("could not delete account"))
		return
	}

	log.Info("account deleted", slog.String("user_phone", phone))
	render.JSON(w, r, response.OKWithData(nil))
}
