// Package sender потребляет события напоминаний из очереди, создает
// уведомление арендатору и отправляет push на его устройство.
package sender

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/atelier-backoffice/internal/errs"
	"github.com/magabrotheeeer/atelier-backoffice/internal/lib/sl"
	"github.com/magabrotheeeer/atelier-backoffice/internal/models"
	"github.com/magabrotheeeer/atelier-backoffice/internal/push"
)

// Repository описывает операции хранилища для отправителя напоминаний.
type Repository interface {
	ReadUser(ctx context.Context, phone string) (*models.User, error)
	CreateNotification(ctx context.Context, n models.Notification) (int, error)
}

// Pusher отправляет push-уведомления на устройства.
type Pusher interface {
	Send(ctx context.Context, tokens []string, title, body string, data map[string]string) (*push.SendResult, error)
}

// Service — обработчик событий напоминаний.
type Service struct {
	repo   Repository
	pusher Pusher
	log    *slog.Logger
}

// New создает обработчик напоминаний.
func New(repo Repository, pusher Pusher, log *slog.Logger) *Service {
	return &Service{repo: repo, pusher: pusher, log: log}
}

// HandleMessage обрабатывает одно событие из очереди. Возвращаемая ошибка
// означает, что сообщение нужно вернуть в очередь; события удаленных
// арендаторов подтверждаются без обработки.
func (s *Service) HandleMessage(ctx context.Context, body []byte) error {
	const op = "services.sender.HandleMessage"

	var event models.ReminderEvent
	if err := json.Unmarshal(body, &event); err != nil {
		// Битое сообщение не станет валидным при повторе.
		s.log.Error("dropping malformed reminder event", sl.Err(err))
		return nil
	}

	user, err := s.repo.ReadUser(ctx, event.UserPhone)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			s.log.Warn("reminder for deleted tenant, dropping",
				slog.String("user_phone", event.UserPhone))
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	title := "Delivery reminder"
	message := fmt.Sprintf("Order #%d for %s has been waiting for 2 days and was moved to in progress.",
		event.OrderID, event.CustomerName)
	_, err = s.repo.CreateNotification(ctx, models.Notification{
		UserPhone: user.Phone,
		Title:     title,
		Message:   message,
		Type:      models.NotificationReminder,
		Read:      false,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if user.PushEnabled && user.DeviceToken != "" {
		_, err := s.pusher.Send(ctx, []string{user.DeviceToken}, title, message,
			map[string]string{"type": models.NotificationReminder})
		if err != nil {
			// Запись уже создана, push — необязательный канал.
			s.log.Warn("reminder push failed",
				slog.String("user_phone", user.Phone), sl.Err(err))
		}
	}

	s.log.Info("reminder delivered",
		slog.String("user_phone", user.Phone),
		slog.Int("order_id", event.OrderID))
	return nil
}
