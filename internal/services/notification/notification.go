// Package notification реализует чтение ленты уведомлений арендатора.
package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/atelier-backoffice/internal/errs"
	"github.com/magabrotheeeer/atelier-backoffice/internal/models"
)

// Repository описывает операции хранилища над уведомлениями.
type Repository interface {
	ListNotifications(ctx context.Context, userPhone string, limit, offset int) ([]*models.Notification, error)
	MarkNotificationRead(ctx context.Context, id int, userPhone string) (int, error)
}

// Service — сервис уведомлений.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создает сервис уведомлений.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// List возвращает страницу уведомлений, новые первыми.
func (s *Service) List(ctx context.Context, userPhone string, limit, offset int) ([]*models.Notification, error) {
	const op = "services.notification.List"

	ns, err := s.repo.ListNotifications(ctx, userPhone, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ns, nil
}

// MarkRead помечает уведомление прочитанным в пределах арендатора.
// Чужое или отсутствующее уведомление неотличимы: обе ситуации дают
// ErrNotFound.
func (s *Service) MarkRead(ctx context.Context, id int, userPhone string) error {
	const op = "services.notification.MarkRead"

	n, err := s.repo.MarkNotificationRead(ctx, id, userPhone)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, errs.ErrNotFound)
	}
	return nil
}
