// Package measurement реализует операции над мерками клиентов.
package measurement

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/atelier-backoffice/internal/models"
)

// Repository описывает операции хранилища над мерками.
type Repository interface {
	CreateMeasurement(ctx context.Context, m models.Measurement) (int, error)
	ReadMeasurement(ctx context.Context, id int, userPhone string) (*models.Measurement, error)
	ListMeasurements(ctx context.Context, userPhone string, limit, offset int) ([]*models.Measurement, error)
}

// BlobStore загружает фото мерок в файловое хранилище.
type BlobStore interface {
	Put(ctx context.Context, data []byte, logicalPath, contentType string) (string, string, error)
}

// Service — сервис мерок.
type Service struct {
	repo  Repository
	blobs BlobStore
	log   *slog.Logger
}

// New создает сервис мерок.
func New(repo Repository, blobs BlobStore, log *slog.Logger) *Service {
	return &Service{repo: repo, blobs: blobs, log: log}
}

// Create сохраняет мерки. Фото, если передано, загружается до записи;
// неудачная загрузка фатальна.
func (s *Service) Create(ctx context.Context, userPhone string, req models.DummyMeasurement, photo []byte, contentType string) (*models.Measurement, error) {
	const op = "services.measurement.Create"

	m := models.Measurement{
		UserPhone:  userPhone,
		CustomerID: req.CustomerID,
		Fields:     req.Fields,
	}
	if len(photo) > 0 {
		key, url, err := s.blobs.Put(ctx, photo, "measurements", contentType)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		m.PhotoKey = key
		m.PhotoURL = url
	}

	id, err := s.repo.CreateMeasurement(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	m.ID = id
	return &m, nil
}

// Read возвращает мерки по идентификатору в пределах арендатора.
func (s *Service) Read(ctx context.Context, id int, userPhone string) (*models.Measurement, error) {
	const op = "services.measurement.Read"

	m, err := s.repo.ReadMeasurement(ctx, id, userPhone)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return m, nil
}

// List возвращает страницу мерок арендатора.
func (s *Service) List(ctx context.Context, userPhone string, limit, offset int) ([]*models.Measurement, error) {
	const op = "services.measurement.List"

	ms, err := s.repo.ListMeasurements(ctx, userPhone, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ms, nil
}
