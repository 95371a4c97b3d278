// Package create реализует HTTP-обработчик сохранения мерок клиента.
//
// Обработчик принимает либо обычный JSON, либо multipart-форму с полем
// data (JSON) и файлом photo.
package create

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/atelier-backoffice/internal/http/middlewarectx"
	"github.com/magabrotheeeer/atelier-backoffice/internal/http/response"
	"github.com/magabrotheeeer/atelier-backoffice/internal/http/upload"
	"github.com/magabrotheeeer/atelier-backoffice/internal/lib/sl"
	"github.com/magabrotheeeer/atelier-backoffice/internal/models"
)

// Handler управляет HTTP-запросами сохранения мерок.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики сохранения мерок.
type Service interface {
	Create(ctx context.Context, userPhone string, req models.DummyMeasurement, photo []byte, contentType string) (*models.Measurement, error)
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
// @Summary Сохранить мерки
// @Description Сохраняет свободный набор мерок клиента, при наличии файла photo загружает фото.
// @Tags Measurements
// @Accept  json
// @Produce  json
// @Param request body models.DummyMeasurement true "Мерки клиента"
// @Success 200 {object} models.Measurement "Сохраненные мерки"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 502 {object} response.ErrorResponse "Хранилище файлов недоступно"
// @Router /measurements [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.measurement.create"
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

	var req models.DummyMeasurement
	photo, contentType, err := upload.Decode(r, &req, "photo")
	if err != nil {
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

	m, err := h.service.Create(r.Context(), phone, req, photo, contentType)
	if err != nil {
		log.Error("failed to create measurement", sl.Err(err))
		w.WriteHeader(response.ErrStatus(err))
		render.JSON(w, r, response.Error("could not create measurement"))
		return
	}

	log.Info("measurement created", slog.Int("id", m.ID))
	render.JSON(w, r, response.OKWithData(m))
}
