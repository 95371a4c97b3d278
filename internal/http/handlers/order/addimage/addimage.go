// Package addimage реализует прикрепление фотографии фасона к заказу.
//
// Обработчик принимает multipart-форму с файлом image.
package addimage

import (
	"context"
	"io"
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

// maxMemory — порог буферизации multipart-формы в памяти.
const maxMemory = 10 << 20

// Handler управляет HTTP-запросами прикрепления фотографий.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики прикрепления фотографий.
type Service interface {
	AddImage(ctx context.Context, orderID int, userPhone string, image []byte, contentType string) (*models.OrderImage, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Прикрепить фотографию к заказу
// @Description Загружает фотографию фасона в хранилище и привязывает к заказу.
// @Tags Orders
// @Accept  mpfd
// @Produce  json
// @Param id path int true "Идентификатор заказа"
// @Param image formData file true "Файл фотографии"
// @Success 200 {object} models.OrderImage "Прикрепленная фотография"
// @Failure 404 {object} response.ErrorResponse "Заказ не найден или принадлежит другому арендатору"
// @Failure 502 {object} response.ErrorResponse "Хранилище файлов недоступно"
// @Router /orders/{id}/images [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.order.addimage"
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
		log.Error("bad order id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid order id"))
		return
	}

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		log.Error("failed to parse multipart form", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid multipart form"))
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		log.Error("image file missing", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("image file is required"))
		return
	}
	defer func() { _ = file.Close() }()

	content, err := io.ReadAll(file)
	if err != nil {
		log.Error("failed to read image file", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("could not read image file"))
		return
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	img, err := h.service.AddImage(r.Context(), id, phone, content, contentType)
	if err != nil {
		log.Error("failed to add order image", sl.Err(err))
		w.WriteHeader(response.ErrStatus(err))
		render.JSON(w, r, response.Error("could not add order image"))
		return
	}

	log.Info("order image added", slog.Int("order_id", id), slog.Int("image_id", img.ID))
	render.JSON(w, r, response.OKWithData(img))
}
