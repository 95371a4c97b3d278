// Package auth реализует регистрацию и вход арендаторов по номеру телефона.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/atelier-backoffice/internal/errs"
	"github.com/magabrotheeeer/atelier-backoffice/internal/lib/jwt"
	"github.com/magabrotheeeer/atelier-backoffice/internal/lib/password"
	"github.com/magabrotheeeer/atelier-backoffice/internal/lib/phone"
	"github.com/magabrotheeeer/atelier-backoffice/internal/models"
)

// UserRepository описывает операции хранилища для аутентификации.
type UserRepository interface {
	CreateUser(ctx context.Context, u models.User) error
	ReadUser(ctx context.Context, phone string) (*models.User, error)
}

// Service — сервис регистрации и входа.
type Service struct {
	users UserRepository
	maker jwt.Maker
	log   *slog.Logger
}

// New создает сервис аутентификации.
func New(users UserRepository, maker jwt.Maker, log *slog.Logger) *Service {
	return &Service{users: users, maker: maker, log: log}
}

// Register создает аккаунт арендатора с пробной подпиской на 30 дней
// и возвращает JWT. Телефон нормализуется до 11 цифр.
func (s *Service) Register(ctx context.Context, req models.DummyRegister, now time.Time) (string, error) {
	const op = "services.auth.Register"

	normalized, err := phone.Normalize(req.Phone)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if _, err := s.users.ReadUser(ctx, normalized); err == nil {
		return "", fmt.Errorf("%s: account already exists: %w", op, errs.ErrValidation)
	} else if !errors.Is(err, errs.ErrNotFound) {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	trialEnd := now.AddDate(0, 0, models.TrialDays)
	user := models.User{
		Phone:              normalized,
		PasswordHash:       hash,
		BusinessName:       req.BusinessName,
		Role:               models.RoleUser,
		SubscriptionType:   models.SubscriptionTrial,
		SubscriptionStatus: models.StatusActive,
		TrialStartDate:     &now,
		TrialEndDate:       &trialEnd,
		PushEnabled:        true,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("tenant registered", slog.String("user_phone", normalized))

	token, err := s.maker.GenerateToken(normalized, models.RoleUser)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

// Login проверяет пароль и возвращает JWT.
func (s *Service) Login(ctx context.Context, req models.DummyLogin) (string, error) {
	const op = "services.auth.Login"

	normalized, err := phone.Normalize(req.Phone)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	user, err := s.users.ReadUser(ctx, normalized)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return "", fmt.Errorf("%s: %w", op, errs.ErrUnauthorized)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := password.Compare(user.PasswordHash, req.Password); err != nil {
		return "", fmt.Errorf("%s: %w", op, errs.ErrUnauthorized)
	}

	token, err := s.maker.GenerateToken(user.Phone, user.Role)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}
