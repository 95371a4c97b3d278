// Package order реализует операции над заказами на пошив: создание с
// эскизом, смена статуса и прикрепление фотографий фасонов.
package order

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/atelier-backoffice/internal/errs"
	"github.com/magabrotheeeer/atelier-backoffice/internal/models"
)

// Repository описывает операции хранилища над заказами.
type Repository interface {
	CreateOrder(ctx context.Context, o models.Order) (int, error)
	ReadOrder(ctx context.Context, id int, userPhone string) (*models.Order, error)
	ListOrders(ctx context.Context, userPhone string, limit, offset int) ([]*models.Order, error)
	UpdateOrderStatus(ctx context.Context, id int, userPhone, status string) (int, error)
	AddOrderImage(ctx context.Context, img models.OrderImage) (int, error)
}

// BlobStore загружает файлы заказа в файловое хранилище.
type BlobStore interface {
	Put(ctx context.Context, data []byte, logicalPath, contentType string) (string, string, error)
}

// Service — сервис заказов.
type Service struct {
	repo  Repository
	blobs BlobStore
	log   *slog.Logger
}

// New создает сервис заказов.
func New(repo Repository, blobs BlobStore, log *slog.Logger) *Service {
	return &Service{repo: repo, blobs: blobs, log: log}
}

// Create сохраняет заказ в статусе pending. Эскиз, если передан,
// загружается до записи; неудачная загрузка фатальна.
func (s *Service) Create(ctx context.Context, userPhone string, req models.DummyOrder, sketch []byte, contentType string) (*models.Order, error) {
	const op = "services.order.Create"

	order := models.Order{
		UserPhone:   userPhone,
		CustomerID:  req.CustomerID,
		Description: req.Description,
		Status:      models.OrderPending,
	}
	if req.DueDate != "" {
		due, err := time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			return nil, fmt.Errorf("%s: bad due_date: %w", op, errs.ErrValidation)
		}
		order.DueDate = &due
	}
	if len(sketch) > 0 {
		key, url, err := s.blobs.Put(ctx, sketch, "orders/sketches", contentType)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		order.SketchKey = key
		order.SketchURL = url
	}

	id, err := s.repo.CreateOrder(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	order.ID = id
	return &order, nil
}

// List возвращает страницу заказов арендатора.
func (s *Service) List(ctx context.Context, userPhone string, limit, offset int) ([]*models.Order, error) {
	const op = "services.order.List"

	orders, err := s.repo.ListOrders(ctx, userPhone, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return orders, nil
}

// UpdateStatus переводит заказ в новый статус. Чужой или отсутствующий
// заказ дает ErrNotFound.
func (s *Service) UpdateStatus(ctx context.Context, id int, userPhone, status string) error {
	const op = "services.order.UpdateStatus"

	switch status {
	case models.OrderPending, models.OrderInProgress, models.OrderCompleted, models.OrderDelivered:
	default:
		return fmt.Errorf("%s: unknown status %q: %w", op, status, errs.ErrValidation)
	}
	n, err := s.repo.UpdateOrderStatus(ctx, id, userPhone, status)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, errs.ErrNotFound)
	}
	return nil
}

// AddImage прикрепляет фотографию фасона к заказу арендатора.
// Чужой или несуществующий заказ дает NotFound до загрузки файла.
func (s *Service) AddImage(ctx context.Context, orderID int, userPhone string, image []byte, contentType string) (*models.OrderImage, error) {
	const op = "services.order.AddImage"

	if _, err := s.repo.ReadOrder(ctx, orderID, userPhone); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	key, url, err := s.blobs.Put(ctx, image, "orders/images", contentType)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	img := models.OrderImage{
		OrderID:    orderID,
		UserPhone:  userPhone,
		URL:        url,
		StorageKey: key,
	}
	id, err := s.repo.AddOrderImage(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	img.ID = id
	return &img, nil
}
