// Package customer реализует операции над клиентами ателье с кэшированием
// чтений в redis и загрузкой фото в файловое хранилище.
package customer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/atelier-backoffice/internal/errs"
	"github.com/magabrotheeeer/atelier-backoffice/internal/lib/sl"
	"github.com/magabrotheeeer/atelier-backoffice/internal/models"
)

// cacheTTL — время жизни кэшированной записи клиента.
const cacheTTL = time.Hour

// Repository описывает операции хранилища над клиентами.
type Repository interface {
	CreateCustomer(ctx context.Context, c models.Customer) (int, error)
	ReadCustomer(ctx context.Context, id int, userPhone string) (*models.Customer, error)
	UpdateCustomer(ctx context.Context, c models.Customer, id int, userPhone string) (int, error)
	RemoveCustomer(ctx context.Context, id int, userPhone string) (int, error)
	ListCustomers(ctx context.Context, userPhone string, limit, offset int) ([]*models.Customer, error)
}

// BlobStore загружает и удаляет файлы клиента.
type BlobStore interface {
	Put(ctx context.Context, data []byte, logicalPath, contentType string) (string, string, error)
	Delete(ctx context.Context, key string) error
}

// CacheClient — клиент кэша для записей клиентов.
type CacheClient interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Service — сервис клиентов ателье.
type Service struct {
	repo  Repository
	blobs BlobStore
	cache CacheClient
	log   *slog.Logger
}

// New создает сервис клиентов.
func New(repo Repository, blobs BlobStore, cache CacheClient, log *slog.Logger) *Service {
	return &Service{repo: repo, blobs: blobs, cache: cache, log: log}
}

func cacheKey(userPhone string, id int) string {
	return fmt.Sprintf("customer:%s:%d", userPhone, id)
}

// Create сохраняет клиента. При наличии фото сначала загружает его в
// хранилище; неудачная загрузка фатальна.
func (s *Service) Create(ctx context.Context, userPhone string, req models.DummyCustomer, photo []byte, contentType string) (*models.Customer, error) {
	const op = "services.customer.Create"

	customer := models.Customer{
		UserPhone: userPhone,
		Name:      req.Name,
		Phone:     req.Phone,
		Email:     req.Email,
	}
	if len(photo) > 0 {
		key, url, err := s.blobs.Put(ctx, photo, "customers", contentType)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		customer.PhotoKey = key
		customer.PhotoURL = url
	}

	id, err := s.repo.CreateCustomer(ctx, customer)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	customer.ID = id
	return &customer, nil
}

// Read возвращает клиента, сначала пробуя кэш.
func (s *Service) Read(ctx context.Context, id int, userPhone string) (*models.Customer, error) {
	const op = "services.customer.Read"

	key := cacheKey(userPhone, id)
	var cached models.Customer
	found, err := s.cache.Get(key, &cached)
	if err != nil {
		s.log.Warn("cache read failed", slog.String("key", key), sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	customer, err := s.repo.ReadCustomer(ctx, id, userPhone)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.cache.Set(key, customer, cacheTTL); err != nil {
		s.log.Warn("cache write failed", slog.String("key", key), sl.Err(err))
	}
	return customer, nil
}

// Update изменяет данные клиента и сбрасывает кэш. Фото при обновлении
// сохраняется: ссылки берутся из текущей записи. Чужой или отсутствующий
// клиент дает ErrNotFound.
func (s *Service) Update(ctx context.Context, id int, userPhone string, req models.DummyCustomer) error {
	const op = "services.customer.Update"

	current, err := s.repo.ReadCustomer(ctx, id, userPhone)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	updated := models.Customer{
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		PhotoURL: current.PhotoURL,
		PhotoKey: current.PhotoKey,
	}
	n, err := s.repo.UpdateCustomer(ctx, updated, id, userPhone)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, errs.ErrNotFound)
	}
	if err := s.cache.Invalidate(cacheKey(userPhone, id)); err != nil {
		s.log.Warn("cache invalidation failed", sl.Err(err))
	}
	return nil
}

// Remove удаляет клиента, его фото из хранилища (ошибка не фатальна)
// и кэшированную запись.
func (s *Service) Remove(ctx context.Context, id int, userPhone string) error {
	const op = "services.customer.Remove"

	customer, err := s.repo.ReadCustomer(ctx, id, userPhone)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := s.repo.RemoveCustomer(ctx, id, userPhone); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if customer.PhotoKey != "" {
		if err := s.blobs.Delete(ctx, customer.PhotoKey); err != nil {
			s.log.Warn("failed to delete customer photo",
				slog.String("key", customer.PhotoKey), sl.Err(err))
		}
	}
	if err := s.cache.Invalidate(cacheKey(userPhone, id)); err != nil {
		s.log.Warn("cache invalidation failed", sl.Err(err))
	}
	return nil
}

// List возвращает страницу клиентов арендатора.
func (s *Service) List(ctx context.Context, userPhone string, limit, offset int) ([]*models.Customer, error) {
	const op = "services.customer.List"

	customers, err := s.repo.ListCustomers(ctx, userPhone, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return customers, nil
}
