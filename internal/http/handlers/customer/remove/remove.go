// Package remove реализует удаление клиента арендатора.
package remove

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/atelier-backoffice/internal/http/middlewarectx"
	"github.com/magabrotheeeer/atelier-backoffice/internal/http/response"
	"github.com/magabrotheeeer/atelier-backoffice/internal/lib/sl"
)

// Handler управляет HTTP-запросами удаления клиента.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики удаления клиента.
type Service interface {
	Remove(ctx context.Context, id int, userPhone string) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удалить клиента
// @Description Удаляет клиента, его фото в хранилище и кэшированную запись.
// @Tags Customers
// @Produce  json
// @Param id path int true "Идентификатор клиента"
// @Success 200 {object} response.Response "Клиент удален"
// @Failure 404 {object} response.ErrorResponse "Клиент не найден или принадлежит другому арендатору"
// @Router /customers/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.customer.remove"
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

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		log.Error("bad customer id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid customer id"))
		return
	}

	if err := h.service.Remove(r.Context(), id, phone); err != nil {
		log.Error("failed to remove customer", sl.Err(err))
		w.WriteHeader(response.ErrStatus(err))
		render.JSON(w, r, response.Error("could not remove customer"))
		return
	}

	log.Info("customer removed", slog.Int("id", id))
	render.JSON(w, r, response.OKWithData(nil))
}
