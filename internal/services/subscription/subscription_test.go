package subscription

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/atelier-backoffice/internal/errs"
	"github.com/magabrotheeeer/atelier-backoffice/internal/models"
	"github.com/magabrotheeeer/atelier-backoffice/internal/paymentprovider"
)

type UsersMock struct{ mock.Mock }

func (m *UsersMock) ReadUser(ctx context.Context, phone string) (*models.User, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *UsersMock) InitTrialSubscription(ctx context.Context, phone string, start, end time.Time) error {
	return m.Called(ctx, phone, start, end).Error(0)
}
func (m *UsersMock) UpdateSubscriptionStatus(ctx context.Context, phone, status string) error {
	return m.Called(ctx, phone, status).Error(0)
}
func (m *UsersMock) ApplyPaidSubscription(ctx context.Context, phone, tier string, start, end time.Time) error {
	return m.Called(ctx, phone, tier, start, end).Error(0)
}
func (m *UsersMock) SetPendingPayment(ctx context.Context, phone, txRef string) error {
	return m.Called(ctx, phone, txRef).Error(0)
}

type PaymentsMock struct{ mock.Mock }

func (m *PaymentsMock) FindPaymentByTxRef(ctx context.Context, txRef string) (*models.Payment, bool, error) {
	args := m.Called(ctx, txRef)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Payment), args.Bool(1), args.Error(2)
}
func (m *PaymentsMock) AppendPayment(ctx context.Context, p models.Payment) (int, error) {
	args := m.Called(ctx, p)
	return args.Int(0), args.Error(1)
}
func (m *PaymentsMock) ListPayments(ctx context.Context, userPhone string) ([]*models.Payment, error) {
	args := m.Called(ctx, userPhone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Payment), args.Error(1)
}

type GatewayMock struct{ mock.Mock }

func (m *GatewayMock) Initialize(ctx context.Context, req paymentprovider.InitializeRequest) (*paymentprovider.InitializeResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.InitializeResponse), args.Error(1)
}
func (m *GatewayMock) Verify(ctx context.Context, txRef string) (*paymentprovider.VerifyResponse, error) {
	args := m.Called(ctx, txRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.VerifyResponse), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func newService(users *UsersMock, payments *PaymentsMock, gateway *GatewayMock) *Service {
	return New(users, payments, gateway, "NGN", "https://app.test/paid", newNoopLogger())
}

const testPhone = "08031234567"

func datePtr(t time.Time) *time.Time { return &t }

func TestService_Evaluate(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		user       *models.User
		setupMocks func(u *UsersMock)
		wantStatus string
		wantType   string
		wantDays   int
		wantErr    bool
	}{
		{
			name: "active trial with five days left",
			user: &models.User{
				Phone:              testPhone,
				SubscriptionType:   models.SubscriptionTrial,
				SubscriptionStatus: models.StatusActive,
				TrialStartDate:     datePtr(now.AddDate(0, 0, -25)),
				TrialEndDate:       datePtr(now.AddDate(0, 0, 5)),
			},
			setupMocks: func(_ *UsersMock) {},
			wantStatus: models.StatusActive,
			wantType:   models.SubscriptionTrial,
			wantDays:   5,
		},
		{
			name: "trial past end date is lazily expired",
			user: &models.User{
				Phone:              testPhone,
				SubscriptionType:   models.SubscriptionTrial,
				SubscriptionStatus: models.StatusActive,
				TrialStartDate:     datePtr(now.AddDate(0, 0, -31)),
				TrialEndDate:       datePtr(now.AddDate(0, 0, -1)),
			},
			setupMocks: func(u *UsersMock) {
				u.On("UpdateSubscriptionStatus", mock.Anything, testPhone, models.StatusExpired).
					Return(nil).Once()
			},
			wantStatus: models.StatusExpired,
			wantType:   models.SubscriptionTrial,
			wantDays:   0,
		},
		{
			name: "already expired performs no write",
			user: &models.User{
				Phone:              testPhone,
				SubscriptionType:   models.SubscriptionTrial,
				SubscriptionStatus: models.StatusExpired,
				TrialStartDate:     datePtr(now.AddDate(0, 0, -40)),
				TrialEndDate:       datePtr(now.AddDate(0, 0, -10)),
			},
			setupMocks: func(_ *UsersMock) {},
			wantStatus: models.StatusExpired,
			wantType:   models.SubscriptionTrial,
			wantDays:   0,
		},
		{
			name: "paid subscription past end date is lazily expired",
			user: &models.User{
				Phone:                 testPhone,
				SubscriptionType:      models.SubscriptionMonthly,
				SubscriptionStatus:    models.StatusActive,
				SubscriptionStartDate: datePtr(now.AddDate(0, -2, 0)),
				SubscriptionEndDate:   datePtr(now.AddDate(0, -1, 0)),
			},
			setupMocks: func(u *UsersMock) {
				u.On("UpdateSubscriptionStatus", mock.Anything, testPhone, models.StatusExpired).
					Return(nil).Once()
			},
			wantStatus: models.StatusExpired,
			wantType:   models.SubscriptionMonthly,
			wantDays:   0,
		},
		{
			name: "no end date means active indefinitely",
			user: &models.User{
				Phone:              testPhone,
				SubscriptionType:   models.SubscriptionMonthly,
				SubscriptionStatus: models.StatusActive,
			},
			setupMocks: func(_ *UsersMock) {},
			wantStatus: models.StatusActive,
			wantType:   models.SubscriptionMonthly,
			wantDays:   0,
		},
		{
			name: "missing type initialized as trial from created_at",
			user: &models.User{
				Phone:     testPhone,
				CreatedAt: now.AddDate(0, 0, -3),
			},
			setupMocks: func(u *UsersMock) {
				u.On("InitTrialSubscription", mock.Anything, testPhone,
					now.AddDate(0, 0, -3), now.AddDate(0, 0, -3).AddDate(0, 0, 30)).
					Return(nil).Once()
			},
			wantStatus: models.StatusActive,
			wantType:   models.SubscriptionTrial,
			wantDays:   27,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(UsersMock)
			payments := new(PaymentsMock)
			gateway := new(GatewayMock)
			users.On("ReadUser", mock.Anything, testPhone).Return(tt.user, nil).Once()
			tt.setupMocks(users)

			svc := newService(users, payments, gateway)
			window, err := svc.Evaluate(context.Background(), testPhone, now)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, window.SubscriptionStatus)
			assert.Equal(t, tt.wantType, window.SubscriptionType)
			assert.Equal(t, tt.wantDays, window.DaysRemaining)
			users.AssertExpectations(t)
		})
	}
}

func TestService_Evaluate_TrialScenario(t *testing.T) {
	// Арендатор зарегистрирован в T0; через 31 день статус должен быть
	// expired с нулевым остатком дней.
	t0 := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	trialEnd := t0.AddDate(0, 0, models.TrialDays)
	user := &models.User{
		Phone:              testPhone,
		SubscriptionType:   models.SubscriptionTrial,
		SubscriptionStatus: models.StatusActive,
		TrialStartDate:     &t0,
		TrialEndDate:       &trialEnd,
		CreatedAt:          t0,
	}

	users := new(UsersMock)
	users.On("ReadUser", mock.Anything, testPhone).Return(user, nil).Once()
	users.On("UpdateSubscriptionStatus", mock.Anything, testPhone, models.StatusExpired).
		Return(nil).Once()

	svc := newService(users, new(PaymentsMock), new(GatewayMock))
	window, err := svc.Evaluate(context.Background(), testPhone, t0.AddDate(0, 0, 31))
	require.NoError(t, err)

	assert.Equal(t, models.StatusExpired, window.SubscriptionStatus)
	assert.Equal(t, 0, window.DaysRemaining)
	users.AssertExpectations(t)
}

func TestService_Evaluate_NotFound(t *testing.T) {
	users := new(UsersMock)
	users.On("ReadUser", mock.Anything, testPhone).Return(nil, errs.ErrNotFound).Once()

	svc := newService(users, new(PaymentsMock), new(GatewayMock))
	_, err := svc.Evaluate(context.Background(), testPhone, time.Now())
	assert.True(t, errors.Is(err, errs.ErrNotFound))
}

func TestService_ApplyPayment(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	t.Run("yearly tier sets end one calendar year ahead", func(t *testing.T) {
		users := new(UsersMock)
		payments := new(PaymentsMock)
		payments.On("FindPaymentByTxRef", mock.Anything, "tx-1").Return(nil, false, nil).Once()
		users.On("ApplyPaidSubscription", mock.Anything, testPhone, models.SubscriptionYearly,
			now, now.AddDate(1, 0, 0)).Return(nil).Once()
		payments.On("AppendPayment", mock.Anything, mock.MatchedBy(func(p models.Payment) bool {
			return p.TxRef == "tx-1" && p.Tier == models.SubscriptionYearly &&
				p.Status == models.PaymentSuccessful && p.SettledAt.Equal(now)
		})).Return(1, nil).Once()

		svc := newService(users, payments, new(GatewayMock))
		err := svc.ApplyPayment(context.Background(), testPhone, models.SubscriptionYearly, "tx-1", 48000, now)
		require.NoError(t, err)
		users.AssertExpectations(t)
		payments.AssertExpectations(t)
	})

	t.Run("leap day start rolls over per calendar rule", func(t *testing.T) {
		leap := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
		users := new(UsersMock)
		payments := new(PaymentsMock)
		payments.On("FindPaymentByTxRef", mock.Anything, "tx-leap").Return(nil, false, nil).Once()
		users.On("ApplyPaidSubscription", mock.Anything, testPhone, models.SubscriptionYearly,
			leap, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)).Return(nil).Once()
		payments.On("AppendPayment", mock.Anything, mock.Anything).Return(1, nil).Once()

		svc := newService(users, payments, new(GatewayMock))
		err := svc.ApplyPayment(context.Background(), testPhone, models.SubscriptionYearly, "tx-leap", 48000, leap)
		require.NoError(t, err)
		users.AssertExpectations(t)
	})

	t.Run("duplicate tx_ref is ignored", func(t *testing.T) {
		users := new(UsersMock)
		payments := new(PaymentsMock)
		payments.On("FindPaymentByTxRef", mock.Anything, "tx-dup").
			Return(&models.Payment{TxRef: "tx-dup"}, true, nil).Once()

		svc := newService(users, payments, new(GatewayMock))
		err := svc.ApplyPayment(context.Background(), testPhone, models.SubscriptionMonthly, "tx-dup", 5000, now)
		require.NoError(t, err)

		users.AssertNotCalled(t, "ApplyPaidSubscription",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		payments.AssertNotCalled(t, "AppendPayment", mock.Anything, mock.Anything)
	})

	t.Run("unknown tier fails validation", func(t *testing.T) {
		users := new(UsersMock)
		payments := new(PaymentsMock)
		payments.On("FindPaymentByTxRef", mock.Anything, "tx-bad").Return(nil, false, nil).Once()

		svc := newService(users, payments, new(GatewayMock))
		err := svc.ApplyPayment(context.Background(), testPhone, "weekly", "tx-bad", 100, now)
		assert.True(t, errors.Is(err, errs.ErrValidation))
	})
}

func initResp(link string) *paymentprovider.InitializeResponse {
	resp := &paymentprovider.InitializeResponse{Status: "success"}
	resp.Data.Link = link
	return resp
}

func TestService_InitializePayment(t *testing.T) {
	user := &models.User{Phone: testPhone, BusinessName: "Ade Stitches"}

	t.Run("success", func(t *testing.T) {
		users := new(UsersMock)
		gateway := new(GatewayMock)
		users.On("ReadUser", mock.Anything, testPhone).Return(user, nil).Once()
		gateway.On("Initialize", mock.Anything, mock.MatchedBy(func(req paymentprovider.InitializeRequest) bool {
			return req.Amount == 5000 && req.Currency == "NGN" &&
				req.Meta["user_phone"] == testPhone && req.Meta["tier"] == models.SubscriptionMonthly
		})).Return(initResp("https://gateway.test/pay/123"), nil).Once()
		users.On("SetPendingPayment", mock.Anything, testPhone, mock.Anything).Return(nil).Once()

		svc := newService(users, new(PaymentsMock), gateway)
		link, txRef, err := svc.InitializePayment(context.Background(), testPhone, models.SubscriptionMonthly)
		require.NoError(t, err)
		assert.Equal(t, "https://gateway.test/pay/123", link)
		assert.NotEmpty(t, txRef)
		users.AssertExpectations(t)
		gateway.AssertExpectations(t)
	})

	t.Run("unknown tier", func(t *testing.T) {
		svc := newService(new(UsersMock), new(PaymentsMock), new(GatewayMock))
		_, _, err := svc.InitializePayment(context.Background(), testPhone, "lifetime")
		assert.True(t, errors.Is(err, errs.ErrValidation))
	})

	t.Run("gateway unreachable surfaces upstream failure", func(t *testing.T) {
		users := new(UsersMock)
		gateway := new(GatewayMock)
		users.On("ReadUser", mock.Anything, testPhone).Return(user, nil).Once()
		gateway.On("Initialize", mock.Anything, mock.Anything).
			Return(nil, errs.ErrUpstream).Once()

		svc := newService(users, new(PaymentsMock), gateway)
		_, _, err := svc.InitializePayment(context.Background(), testPhone, models.SubscriptionMonthly)
		assert.True(t, errors.Is(err, errs.ErrUpstream))
	})
}

func TestService_ConfirmPayment(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	verifyResp := func(status string) *paymentprovider.VerifyResponse {
		resp := &paymentprovider.VerifyResponse{Status: "success"}
		resp.Data.TxRef = "tx-1"
		resp.Data.Status = status
		resp.Data.Amount = 13500
		resp.Data.Meta = map[string]string{
			"user_phone": testPhone,
			"tier":       models.SubscriptionQuarterly,
		}
		return resp
	}

	t.Run("successful verification applies payment", func(t *testing.T) {
		users := new(UsersMock)
		payments := new(PaymentsMock)
		gateway := new(GatewayMock)
		gateway.On("Verify", mock.Anything, "tx-1").Return(verifyResp(models.PaymentSuccessful), nil).Once()
		payments.On("FindPaymentByTxRef", mock.Anything, "tx-1").Return(nil, false, nil).Once()
		users.On("ApplyPaidSubscription", mock.Anything, testPhone, models.SubscriptionQuarterly,
			now, now.AddDate(0, 3, 0)).Return(nil).Once()
		payments.On("AppendPayment", mock.Anything, mock.Anything).Return(1, nil).Once()

		svc := newService(users, payments, gateway)
		require.NoError(t, svc.ConfirmPayment(context.Background(), "tx-1", now))
		users.AssertExpectations(t)
	})

	t.Run("failed status is surfaced as upstream error", func(t *testing.T) {
		gateway := new(GatewayMock)
		gateway.On("Verify", mock.Anything, "tx-1").Return(verifyResp(models.PaymentFailed), nil).Once()

		svc := newService(new(UsersMock), new(PaymentsMock), gateway)
		err := svc.ConfirmPayment(context.Background(), "tx-1", now)
		assert.True(t, errors.Is(err, errs.ErrUpstream))
	})

	t.Run("gateway error is never treated as success", func(t *testing.T) {
		gateway := new(GatewayMock)
		gateway.On("Verify", mock.Anything, "tx-1").Return(nil, errs.ErrUpstream).Once()

		svc := newService(new(UsersMock), new(PaymentsMock), gateway)
		err := svc.ConfirmPayment(context.Background(), "tx-1", now)
		assert.True(t, errors.Is(err, errs.ErrUpstream))
	})
}
