// Package subscription реализует движок жизненного цикла подписки арендатора.
// Состояние вычисляется лениво на чтении: единственная запись — однократный
// переход active → expired, когда текущее время перешло дату окончания.
// Вывести арендатора из expired может только подтвержденная оплата тарифа.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/atelier-backoffice/internal/errs"
	"github.com/magabrotheeeer/atelier-backoffice/internal/lib/dateutil"
	"github.com/magabrotheeeer/atelier-backoffice/internal/lib/sl"
	"github.com/magabrotheeeer/atelier-backoffice/internal/models"
	"github.com/magabrotheeeer/atelier-backoffice/internal/paymentprovider"
)

// Стоимость тарифов в основных единицах валюты.
var tierAmounts = map[string]float64{
	models.SubscriptionMonthly:   5000,
	models.SubscriptionQuarterly: 13500,
	models.SubscriptionYearly:    48000,
}

// UserRepository определяет методы хранилища для состояния подписки арендатора.
type UserRepository interface {
	ReadUser(ctx context.Context, phone string) (*models.User, error)
	InitTrialSubscription(ctx context.Context, phone string, start, end time.Time) error
	UpdateSubscriptionStatus(ctx context.Context, phone, status string) error
	ApplyPaidSubscription(ctx context.Context, phone, tier string, start, end time.Time) error
	SetPendingPayment(ctx context.Context, phone, txRef string) error
}

// PaymentRepository определяет методы хранилища для истории платежей.
type PaymentRepository interface {
	FindPaymentByTxRef(ctx context.Context, txRef string) (*models.Payment, bool, error)
	AppendPayment(ctx context.Context, p models.Payment) (int, error)
	ListPayments(ctx context.Context, userPhone string) ([]*models.Payment, error)
}

// Gateway описывает платежный шлюз.
type Gateway interface {
	Initialize(ctx context.Context, req paymentprovider.InitializeRequest) (*paymentprovider.InitializeResponse, error)
	Verify(ctx context.Context, txRef string) (*paymentprovider.VerifyResponse, error)
}

// Service реализует операции жизненного цикла подписки.
type Service struct {
	users    UserRepository
	payments PaymentRepository
	gateway  Gateway
	currency string
	redirect string
	log      *slog.Logger
}

// New создает новый Service.
func New(users UserRepository, payments PaymentRepository, gateway Gateway,
	currency, redirectURL string, log *slog.Logger) *Service {
	return &Service{
		users:    users,
		payments: payments,
		gateway:  gateway,
		currency: currency,
		redirect: redirectURL,
		log:      log,
	}
}

// Evaluate вычисляет актуальное окно подписки арендатора на момент now.
// Записи без типа подписки инициализируются 30-дневным триалом от даты
// регистрации. Если арендатор с активным статусом пережил дату окончания,
// статус однократно переводится в expired; повторные вызовы на уже
// истекшем статусе записей не делают. Арендатор с активным статусом и без
// даты окончания считается активным бессрочно.
func (s *Service) Evaluate(ctx context.Context, phone string, now time.Time) (*models.SubscriptionWindow, error) {
	const op = "subscription.Evaluate"

	user, err := s.users.ReadUser(ctx, phone)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if user.SubscriptionType == "" {
		start := user.CreatedAt
		if start.IsZero() {
			start = now
		}
		end := start.AddDate(0, 0, models.TrialDays)
		if err := s.users.InitTrialSubscription(ctx, phone, start, end); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		s.log.Info("initialized trial for legacy account", slog.String("phone", phone))
		user.SubscriptionType = models.SubscriptionTrial
		user.SubscriptionStatus = models.StatusActive
		user.TrialStartDate = &start
		user.TrialEndDate = &end
		user.SubscriptionStartDate = nil
		user.SubscriptionEndDate = nil
	}

	// При одновременном наличии обеих пар дат приоритет у даты триала.
	end := user.TrialEndDate
	if end == nil {
		end = user.SubscriptionEndDate
	}

	if end != nil && now.After(*end) && user.SubscriptionStatus == models.StatusActive {
		if err := s.users.UpdateSubscriptionStatus(ctx, phone, models.StatusExpired); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		s.log.Info("subscription lazily expired",
			slog.String("phone", phone), slog.String("type", user.SubscriptionType))
		user.SubscriptionStatus = models.StatusExpired
	}

	daysRemaining := 0
	if end != nil {
		daysRemaining = dateutil.DaysRemaining(*end, now)
	}

	return &models.SubscriptionWindow{
		SubscriptionType:      user.SubscriptionType,
		SubscriptionStatus:    user.SubscriptionStatus,
		DaysRemaining:         daysRemaining,
		TrialStartDate:        user.TrialStartDate,
		TrialEndDate:          user.TrialEndDate,
		SubscriptionStartDate: user.SubscriptionStartDate,
		SubscriptionEndDate:   user.SubscriptionEndDate,
	}, nil
}

// GetSubscriptionStatus возвращает актуальный статус подписки.
// Используется middleware доступа.
func (s *Service) GetSubscriptionStatus(ctx context.Context, phone string) (string, error) {
	window, err := s.Evaluate(ctx, phone, time.Now())
	if err != nil {
		return "", err
	}
	return window.SubscriptionStatus, nil
}

// ApplyPayment переводит арендатора на оплаченный тариф по подтвержденной
// транзакции. Идемпотентен по ссылке транзакции: повторное подтверждение
// того же tx_ref не дублирует запись истории и не сдвигает даты.
func (s *Service) ApplyPayment(ctx context.Context, phone, tier, txRef string, amount float64, now time.Time) error {
	const op = "subscription.ApplyPayment"

	_, found, err := s.payments.FindPaymentByTxRef(ctx, txRef)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if found {
		s.log.Info("duplicate payment confirmation ignored", slog.String("tx_ref", txRef))
		return nil
	}

	end, err := dateutil.AddTier(now, tier)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, errs.ErrValidation, err)
	}

	if err := s.users.ApplyPaidSubscription(ctx, phone, tier, now, end); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.payments.AppendPayment(ctx, models.Payment{
		UserPhone: phone,
		TxRef:     txRef,
		Amount:    amount,
		Tier:      tier,
		Status:    models.PaymentSuccessful,
		SettledAt: now,
	}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("payment applied",
		slog.String("phone", phone), slog.String("tier", tier), slog.String("tx_ref", txRef))
	return nil
}

// AdminOverride меняет тариф арендатора от имени администратора.
// Даты рассчитываются по тем же правилам, что и при оплате, но могут быть
// явно переопределены.
func (s *Service) AdminOverride(ctx context.Context, phone, tier string, start, end *time.Time, now time.Time) error {
	const op = "subscription.AdminOverride"

	from := now
	if start != nil {
		from = *start
	}
	to, err := dateutil.AddTier(from, tier)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, errs.ErrValidation, err)
	}
	if end != nil {
		to = *end
	}

	if err := s.users.ApplyPaidSubscription(ctx, phone, tier, from, to); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("admin override applied", slog.String("phone", phone), slog.String("tier", tier))
	return nil
}

// InitializePayment создает платеж у шлюза и запоминает ссылку незавершенной
// транзакции. Возвращает страницу оплаты для редиректа и tx_ref.
func (s *Service) InitializePayment(ctx context.Context, phone, tier string) (string, string, error) {
	const op = "subscription.InitializePayment"

	amount, ok := tierAmounts[tier]
	if !ok {
		return "", "", fmt.Errorf("%s: unknown tier %q: %w", op, tier, errs.ErrValidation)
	}

	user, err := s.users.ReadUser(ctx, phone)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}

	txRef := "atelier-" + uuid.New().String()
	resp, err := s.gateway.Initialize(ctx, paymentprovider.InitializeRequest{
		TxRef:       txRef,
		Amount:      amount,
		Currency:    s.currency,
		RedirectURL: s.redirect,
		Customer: paymentprovider.CustomerInfo{
			PhoneNumber: user.Phone,
			Name:        user.BusinessName,
		},
		Meta: map[string]string{
			"user_phone": user.Phone,
			"tier":       tier,
		},
	})
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}

	if err := s.users.SetPendingPayment(ctx, phone, txRef); err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("payment initialized", slog.String("phone", phone), slog.String("tx_ref", txRef))
	return resp.Data.Link, txRef, nil
}

// ConfirmPayment проверяет транзакцию у шлюза и применяет оплату.
// Любой статус, кроме successful, всплывает ошибкой; недоступность шлюза
// никогда не трактуется как успех.
func (s *Service) ConfirmPayment(ctx context.Context, txRef string, now time.Time) error {
	const op = "subscription.ConfirmPayment"

	resp, err := s.gateway.Verify(ctx, txRef)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if resp.Data.Status != models.PaymentSuccessful {
		s.log.Warn("payment verification not successful",
			slog.String("tx_ref", txRef), slog.String("status", resp.Data.Status))
		return fmt.Errorf("%s: transaction %s has status %s: %w", op, txRef, resp.Data.Status, errs.ErrUpstream)
	}

	phone := resp.Data.Meta["user_phone"]
	tier := resp.Data.Meta["tier"]
	if phone == "" || tier == "" {
		return fmt.Errorf("%s: transaction %s is missing metadata: %w", op, txRef, errs.ErrUpstream)
	}

	if err := s.ApplyPayment(ctx, phone, tier, txRef, resp.Data.Amount, now); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			s.log.Error("payment confirmed for unknown tenant",
				slog.String("tx_ref", txRef), sl.Err(err))
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListPayments возвращает историю платежей арендатора, новые первыми.
func (s *Service) ListPayments(ctx context.Context, phone string) ([]*models.Payment, error) {
	const op = "subscription.ListPayments"

	payments, err := s.payments.ListPayments(ctx, phone)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return payments, nil
}
