// Package account реализует каскадное удаление аккаунта арендатора:
// файлы в хранилище, все записи в базе и кэш.
package account

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/atelier-backoffice/internal/errs"
	"github.com/magabrotheeeer/atelier-backoffice/internal/lib/password"
	"github.com/magabrotheeeer/atelier-backoffice/internal/lib/sl"
	"github.com/magabrotheeeer/atelier-backoffice/internal/models"
)

// Repository описывает операции хранилища, нужные для каскадного удаления.
type Repository interface {
	ReadUser(ctx context.Context, phone string) (*models.User, error)
	ListCustomerPhotoKeys(ctx context.Context, userPhone string) ([]string, error)
	ListMeasurementPhotoKeys(ctx context.Context, userPhone string) ([]string, error)
	ListOrderBlobKeys(ctx context.Context, userPhone string) ([]string, error)
	RemoveAllNotifications(ctx context.Context, userPhone string) (int, error)
	RemoveAllOrders(ctx context.Context, userPhone string) (int, error)
	RemoveAllMeasurements(ctx context.Context, userPhone string) (int, error)
	RemoveAllCustomers(ctx context.Context, userPhone string) (int, error)
	RemoveUser(ctx context.Context, phone string) error
}

// BlobRemover удаляет объект из файлового хранилища по ключу.
type BlobRemover interface {
	Delete(ctx context.Context, key string) error
}

// CacheInvalidator сбрасывает кэшированные записи арендатора.
type CacheInvalidator interface {
	InvalidateByPattern(pattern string) error
}

// Service — оркестратор удаления аккаунта.
type Service struct {
	repo  Repository
	blobs BlobRemover
	cache CacheInvalidator
	log   *slog.Logger
}

// New создает сервис удаления аккаунта.
func New(repo Repository, blobs BlobRemover, cache CacheInvalidator, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		blobs: blobs,
		cache: cache,
		log:   log,
	}
}

// DeleteWithPassword удаляет аккаунт после проверки пароля владельца.
func (s *Service) DeleteWithPassword(ctx context.Context, phone, rawPassword string) error {
	const op = "services.account.DeleteWithPassword"

	user, err := s.repo.ReadUser(ctx, phone)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := password.Compare(user.PasswordHash, rawPassword); err != nil {
		return fmt.Errorf("%s: %w", op, errs.ErrUnauthorized)
	}
	return s.delete(ctx, user)
}

// DeleteByPhone удаляет аккаунт по номеру телефона без проверки пароля.
// Используется административной операцией удаления.
func (s *Service) DeleteByPhone(ctx context.Context, phone string) error {
	const op = "services.account.DeleteByPhone"

	user, err := s.repo.ReadUser(ctx, phone)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return s.delete(ctx, user)
}

// delete выполняет каскад: сначала файлы (ошибки не прерывают процесс),
// затем записи в базе (ошибки фатальны), в конце кэш.
func (s *Service) delete(ctx context.Context, user *models.User) error {
	const op = "services.account.delete"
	phone := user.Phone

	keys, err := s.collectBlobKeys(ctx, user)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	removed := 0
	for _, key := range keys {
		if err := s.blobs.Delete(ctx, key); err != nil {
			s.log.Warn("failed to delete blob, continuing",
				slog.String("key", key), sl.Err(err))
			continue
		}
		removed++
	}
	s.log.Info("blob cleanup finished",
		slog.String("user_phone", phone),
		slog.Int("deleted", removed),
		slog.Int("total", len(keys)))

	if _, err := s.repo.RemoveAllNotifications(ctx, phone); err != nil {
		return fmt.Errorf("%s: remove notifications: %w", op, err)
	}
	if _, err := s.repo.RemoveAllOrders(ctx, phone); err != nil {
		return fmt.Errorf("%s: remove orders: %w", op, err)
	}
	if _, err := s.repo.RemoveAllMeasurements(ctx, phone); err != nil {
		return fmt.Errorf("%s: remove measurements: %w", op, err)
	}
	if _, err := s.repo.RemoveAllCustomers(ctx, phone); err != nil {
		return fmt.Errorf("%s: remove customers: %w", op, err)
	}
	if err := s.repo.RemoveUser(ctx, phone); err != nil {
		return fmt.Errorf("%s: remove user: %w", op, err)
	}

	if err := s.cache.InvalidateByPattern("customer:" + phone + ":*"); err != nil {
		s.log.Warn("failed to invalidate cache after account deletion",
			slog.String("user_phone", phone), sl.Err(err))
	}

	s.log.Info("account deleted", slog.String("user_phone", phone))
	return nil
}

// collectBlobKeys собирает ключи всех файлов арендатора: фото профиля,
// фото клиентов, фото мерок, эскизы и снимки заказов.
func (s *Service) collectBlobKeys(ctx context.Context, user *models.User) ([]string, error) {
	const op = "services.account.collectBlobKeys"

	var keys []string
	if user.ProfileImageKey != "" {
		keys = append(keys, user.ProfileImageKey)
	}
	customerKeys, err := s.repo.ListCustomerPhotoKeys(ctx, user.Phone)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	keys = append(keys, customerKeys...)

	measurementKeys, err := s.repo.ListMeasurementPhotoKeys(ctx, user.Phone)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	keys = append(keys, measurementKeys...)

	orderKeys, err := s.repo.ListOrderBlobKeys(ctx, user.Phone)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	keys = append(keys, orderKeys...)
	return keys, nil
}
