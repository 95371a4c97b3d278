// Package sweeper реализует периодический обход заказов: зависшие в
// pending заказы переводятся в in_progress, по каждому публикуется
// событие напоминания в очередь.
package sweeper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/atelier-backoffice/internal/lib/sl"
	"github.com/magabrotheeeer/atelier-backoffice/internal/models"
)

// staleAfter — возраст pending-заказа, после которого он считается зависшим.
const staleAfter = 48 * time.Hour

// Repository описывает операции хранилища для обхода заказов.
type Repository interface {
	FindStalePendingOrders(ctx context.Context, cutoff time.Time) ([]*models.ReminderEvent, error)
	UpdateOrderStatus(ctx context.Context, id int, userPhone, status string) (int, error)
}

// Publisher публикует события напоминаний в очередь.
type Publisher interface {
	Publish(event models.ReminderEvent) error
}

// Service — сервис обхода заказов.
type Service struct {
	repo      Repository
	publisher Publisher
	log       *slog.Logger
}

// New создает сервис обхода.
func New(repo Repository, publisher Publisher, log *slog.Logger) *Service {
	return &Service{repo: repo, publisher: publisher, log: log}
}

// Sweep выполняет один проход: находит зависшие заказы, переводит их в
// in_progress и публикует событие на каждый. Возвращает число
// обработанных заказов.
func (s *Service) Sweep(ctx context.Context, now time.Time) (int, error) {
	const op = "services.sweeper.Sweep"

	cutoff := now.Add(-staleAfter)
	events, err := s.repo.FindStalePendingOrders(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	processed := 0
	for _, event := range events {
		_, err := s.repo.UpdateOrderStatus(ctx, event.OrderID, event.UserPhone, models.OrderInProgress)
		if err != nil {
			s.log.Error("failed to promote stale order",
				slog.Int("order_id", event.OrderID), sl.Err(err))
			continue
		}
		if err := s.publisher.Publish(*event); err != nil {
			// Заказ уже переведен; напоминание догонит на следующем проходе
			// следующего зависшего заказа, терять весь проход не нужно.
			s.log.Error("failed to publish reminder",
				slog.Int("order_id", event.OrderID), sl.Err(err))
			continue
		}
		processed++
	}

	s.log.Info("sweep finished",
		slog.Int("stale_found", len(events)),
		slog.Int("processed", processed))
	return processed, nil
}

// Run запускает обход с заданным интервалом до отмены контекста.
// Первый проход выполняется сразу.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := s.Sweep(ctx, time.Now()); err != nil {
			s.log.Error("sweep failed", sl.Err(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
