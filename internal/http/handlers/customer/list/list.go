// Package list реализует чтение страницы клиентов арендатора.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/atelier-backoffice/internal/http/middlewarectx"
	"github.com/magabrotheeeer/atelier-backoffice/internal/http/response"
	"github.com/magabrotheeeer/atelier-backoffice/internal/lib/sl"
	"github.com/magabrotheeeer/atelier-backoffice/internal/models"
)

// Handler управляет HTTP-запросами списка клиентов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики списка клиентов.
type Service interface {
	List(ctx context.Context, userPhone string, limit, offset int) ([]*models.Customer, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Список клиентов
// @Description Возвращает страницу клиентов текущего арендатора.
// @Tags Customers
// @Produce  json
// @Param limit query int false "Размер страницы" default(20)
// @Param offset query int false "Смещение" default(0)
// @Success 200 {array} models.Customer "Клиенты арендатора"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Router /customers [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.customer.list"
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

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 20
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	customers, err := h.service.List(r.Context(), phone, limit, offset)
	if err != nil {
		log.Error("failed to list customers", sl.Err(err))
		w.WriteHeader(response.ErrStatus(err))
		render.JSON(w, r, response.Error("could not list customers"))
		return
	}

	render.JSON(w, r, response.OKWithData(customers))
}
