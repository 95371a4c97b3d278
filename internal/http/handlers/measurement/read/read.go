// Package read реализует чтение одной записи мерок арендатора.
package read

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
	"github.com/magabrotheeeer/atelier-backoffice/internal/models"
)

// Handler управляет HTTP-запросами чтения мерок.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения мерок.
type Service interface {
	Read(ctx context.Context, id int, userPhone string) (*models.Measurement, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Прочитать мерки
// @Description Возвращает запись мерок по идентификатору в пределах текущего арендатора.
// @Tags Measurements
// @Produce  json
// @Param id path int true "Идентификатор записи мерок"
// @Success 200 {object} models.Measurement "Мерки"
// @Failure 404 {object} response.ErrorResponse "Запись не найдена или принадлежит другому арендатору"
// @Router /measurements/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.measurement.read"
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
		log.Error("bad measurement id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid measurement id"))
		return
	}

	measurement, err := h.service.Read(r.Context(), id, phone)
	if err != nil {
		log.Error("failed to read measurement", sl.Err(err))
		w.WriteHeader(response.ErrStatus(err))
		render.JSON(w, r, response.Error("could not read measurement"))
		return
	}

	render.JSON(w, r, response.OKWithData(measurement))
}
