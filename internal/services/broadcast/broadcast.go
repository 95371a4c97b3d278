// Package broadcast отвечает за массовую рассылку уведомлений арендаторам:
// выборка получателей по критерию, создание записей и пакетная push-доставка.
package broadcast

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/atelier-backoffice/internal/lib/sl"
	"github.com/magabrotheeeer/atelier-backoffice/internal/models"
	"github.com/magabrotheeeer/atelier-backoffice/internal/push"
)

// Критерии выборки получателей.
const (
	CriterionExpiringSoon = "expiring_soon"
	CriterionExpired      = "expired"
	CriterionTrialUsers   = "trial_users"
)

// expiringWindow — горизонт критерия expiring_soon.
const expiringWindow = 7 * 24 * time.Hour

// Repository описывает операции хранилища для рассылки.
type Repository interface {
	ListUsers(ctx context.Context) ([]*models.User, error)
	CreateNotification(ctx context.Context, n models.Notification) (int, error)
}

// Pusher отправляет пакет push-уведомлений на устройства.
type Pusher interface {
	Send(ctx context.Context, tokens []string, title, body string, data map[string]string) (*push.SendResult, error)
}

// Service — сервис рассылки уведомлений.
type Service struct {
	repo   Repository
	pusher Pusher
	log    *slog.Logger
}

// New создает сервис рассылки.
func New(repo Repository, pusher Pusher, log *slog.Logger) *Service {
	return &Service{repo: repo, pusher: pusher, log: log}
}

// SelectTargets возвращает арендаторов, подпадающих под критерий.
// Администраторы исключаются всегда; нераспознанный или пустой критерий
// означает всех арендаторов.
func (s *Service) SelectTargets(ctx context.Context, criterion string, now time.Time) ([]*models.User, error) {
	const op = "services.broadcast.SelectTargets"

	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// trial_user — частая опечатка в админке, принимаем как синоним.
	if criterion == "trial_user" {
		criterion = CriterionTrialUsers
	}

	var targets []*models.User
	for _, u := range users {
		if u.Role == models.RoleAdmin {
			continue
		}
		if matchesCriterion(u, criterion, now) {
			targets = append(targets, u)
		}
	}
	return targets, nil
}

func matchesCriterion(u *models.User, criterion string, now time.Time) bool {
	switch criterion {
	case CriterionExpiringSoon:
		end := relevantEndDate(u)
		if u.SubscriptionStatus != models.StatusActive || end == nil {
			return false
		}
		// Окно включительное с обеих сторон.
		return !end.Before(now) && !end.After(now.Add(expiringWindow))
	case CriterionExpired:
		if u.SubscriptionStatus == models.StatusExpired {
			return true
		}
		// Арендаторы, чей срок истёк, но ленивое обновление статуса ещё
		// не сработало, тоже попадают в выборку.
		end := relevantEndDate(u)
		return u.SubscriptionStatus == models.StatusActive && end != nil && end.Before(now)
	case CriterionTrialUsers:
		return u.SubscriptionType == models.SubscriptionTrial &&
			u.SubscriptionStatus == models.StatusActive
	default:
		return true
	}
}

// relevantEndDate возвращает действующую дату окончания: пробную, если
// она задана, иначе оплаченную. Приоритет совпадает с вычислением окна
// подписки при чтении.
func relevantEndDate(u *models.User) *time.Time {
	if u.TrialEndDate != nil {
		return u.TrialEndDate
	}
	return u.SubscriptionEndDate
}

// Broadcast создает уведомление каждому получателю и отправляет один
// пакетный push тем, у кого включены уведомления и привязано устройство.
// Сбой push-доставки не откатывает созданные записи.
func (s *Service) Broadcast(ctx context.Context, req models.DummyBroadcast, now time.Time) (*models.BroadcastResult, error) {
	const op = "services.broadcast.Broadcast"

	targets, err := s.SelectTargets(ctx, req.Criterion, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := &models.BroadcastResult{}
	var tokens []string
	for _, u := range targets {
		_, err := s.repo.CreateNotification(ctx, models.Notification{
			UserPhone: u.Phone,
			Title:     req.Title,
			Message:   req.Message,
			Type:      models.NotificationBroadcast,
			Read:      false,
		})
		if err != nil {
			s.log.Warn("failed to create notification, continuing",
				slog.String("user_phone", u.Phone), sl.Err(err))
			continue
		}
		result.NotifiedCount++
		if u.PushEnabled && u.DeviceToken != "" {
			tokens = append(tokens, u.DeviceToken)
		}
	}

	if len(tokens) > 0 {
		pushResult, err := s.pusher.Send(ctx, tokens, req.Title, req.Message,
			map[string]string{"type": models.NotificationBroadcast})
		if err != nil {
			s.log.Warn("push dispatch failed", sl.Err(err))
			result.PushFailed = len(tokens)
		} else {
			result.PushSuccess = pushResult.SuccessCount
			result.PushFailed = pushResult.FailedCount
		}
	}

	s.log.Info("broadcast finished",
		slog.String("criterion", req.Criterion),
		slog.Int("notified", result.NotifiedCount),
		slog.Int("push_success", result.PushSuccess),
		slog.Int("push_failed", result.PushFailed))
	return result, nil
}
