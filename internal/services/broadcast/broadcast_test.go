package broadcast

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

	"github.com/magabrotheeeer/atelier-backoffice/internal/models"
	"github.com/magabrotheeeer/atelier-backoffice/internal/push"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) ListUsers(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}
func (m *RepoMock) CreateNotification(ctx context.Context, n models.Notification) (int, error) {
	args := m.Called(ctx, n)
	return args.Int(0), args.Error(1)
}

type PusherMock struct{ mock.Mock }

func (m *PusherMock) Send(ctx context.Context, tokens []string, title, body string, data map[string]string) (*push.SendResult, error) {
	args := m.Called(ctx, tokens, title, body, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*push.SendResult), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func datePtr(t time.Time) *time.Time { return &t }

func TestService_SelectTargets(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	expiringIn3 := &models.User{
		Phone:               "08030000001",
		SubscriptionType:    models.SubscriptionMonthly,
		SubscriptionStatus:  models.StatusActive,
		SubscriptionEndDate: datePtr(now.AddDate(0, 0, 3)),
	}
	expiringIn10 := &models.User{
		Phone:               "08030000002",
		SubscriptionType:    models.SubscriptionMonthly,
		SubscriptionStatus:  models.StatusActive,
		SubscriptionEndDate: datePtr(now.AddDate(0, 0, 10)),
	}
	storedExpired := &models.User{
		Phone:              "08030000003",
		SubscriptionType:   models.SubscriptionTrial,
		SubscriptionStatus: models.StatusExpired,
		TrialEndDate:       datePtr(now.AddDate(0, 0, -20)),
	}
	lazilyExpired := &models.User{
		Phone:               "08030000004",
		SubscriptionType:    models.SubscriptionMonthly,
		SubscriptionStatus:  models.StatusActive,
		SubscriptionEndDate: datePtr(now.AddDate(0, 0, -1)),
	}
	activeTrial := &models.User{
		Phone:              "08030000005",
		SubscriptionType:   models.SubscriptionTrial,
		SubscriptionStatus: models.StatusActive,
		TrialEndDate:       datePtr(now.AddDate(0, 0, 20)),
	}
	admin := &models.User{
		Phone:              "08030000009",
		Role:               models.RoleAdmin,
		SubscriptionStatus: models.StatusActive,
	}
	all := []*models.User{expiringIn3, expiringIn10, storedExpired, lazilyExpired, activeTrial, admin}

	phones := func(users []*models.User) []string {
		var out []string
		for _, u := range users {
			out = append(out, u.Phone)
		}
		return out
	}

	tests := []struct {
		name       string
		criterion  string
		wantPhones []string
	}{
		{
			name:       "expiring_soon includes +3d and excludes +10d",
			criterion:  CriterionExpiringSoon,
			wantPhones: []string{expiringIn3.Phone},
		},
		{
			name:       "expired unions stored and lazily expired",
			criterion:  CriterionExpired,
			wantPhones: []string{storedExpired.Phone, lazilyExpired.Phone},
		},
		{
			name:       "trial_users selects active trials only",
			criterion:  CriterionTrialUsers,
			wantPhones: []string{activeTrial.Phone},
		},
		{
			name:       "trial_user typo selects the same set",
			criterion:  "trial_user",
			wantPhones: []string{activeTrial.Phone},
		},
		{
			name:      "unknown criterion selects everyone but admins",
			criterion: "everyone-please",
			wantPhones: []string{
				expiringIn3.Phone, expiringIn10.Phone, storedExpired.Phone,
				lazilyExpired.Phone, activeTrial.Phone,
			},
		},
		{
			name:      "empty criterion selects everyone but admins",
			criterion: "",
			wantPhones: []string{
				expiringIn3.Phone, expiringIn10.Phone, storedExpired.Phone,
				lazilyExpired.Phone, activeTrial.Phone,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			repo.On("ListUsers", mock.Anything).Return(all, nil).Once()

			svc := New(repo, new(PusherMock), newNoopLogger())
			targets, err := svc.SelectTargets(context.Background(), tt.criterion, now)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPhones, phones(targets))
		})
	}
}

func TestService_SelectTargets_EndDateBoundaries(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	endsToday := &models.User{
		Phone:               "08030000010",
		SubscriptionStatus:  models.StatusActive,
		SubscriptionEndDate: datePtr(now),
	}
	endsInExactly7 := &models.User{
		Phone:               "08030000011",
		SubscriptionStatus:  models.StatusActive,
		SubscriptionEndDate: datePtr(now.Add(7 * 24 * time.Hour)),
	}
	noEndDate := &models.User{
		Phone:              "08030000012",
		SubscriptionStatus: models.StatusActive,
	}

	repo := new(RepoMock)
	repo.On("ListUsers", mock.Anything).
		Return([]*models.User{endsToday, endsInExactly7, noEndDate}, nil).Once()

	svc := New(repo, new(PusherMock), newNoopLogger())
	targets, err := svc.SelectTargets(context.Background(), CriterionExpiringSoon, now)
	require.NoError(t, err)

	require.Len(t, targets, 2)
	assert.Equal(t, endsToday.Phone, targets[0].Phone)
	assert.Equal(t, endsInExactly7.Phone, targets[1].Phone)
}

func TestService_SelectTargets_TrialDatePrecedence(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	// Обе пары дат заполнены: действует пробная, как и при вычислении
	// окна подписки.
	bothDates := &models.User{
		Phone:               "08030000013",
		SubscriptionStatus:  models.StatusActive,
		TrialEndDate:        datePtr(now.AddDate(0, 0, 3)),
		SubscriptionEndDate: datePtr(now.AddDate(0, 0, 30)),
	}

	repo := new(RepoMock)
	repo.On("ListUsers", mock.Anything).Return([]*models.User{bothDates}, nil).Once()

	svc := New(repo, new(PusherMock), newNoopLogger())
	targets, err := svc.SelectTargets(context.Background(), CriterionExpiringSoon, now)
	require.NoError(t, err)

	require.Len(t, targets, 1)
	assert.Equal(t, bothDates.Phone, targets[0].Phone)
}

func TestService_Broadcast(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	req := models.DummyBroadcast{Title: "Sale", Message: "20% off this week"}

	withPush := &models.User{Phone: "08030000001", PushEnabled: true, DeviceToken: "tok-1"}
	withoutToken := &models.User{Phone: "08030000002", PushEnabled: true}
	pushDisabled := &models.User{Phone: "08030000003", PushEnabled: false, DeviceToken: "tok-3"}

	t.Run("records for everyone, push only for registered devices", func(t *testing.T) {
		repo := new(RepoMock)
		pusher := new(PusherMock)
		repo.On("ListUsers", mock.Anything).
			Return([]*models.User{withPush, withoutToken, pushDisabled}, nil).Once()
		repo.On("CreateNotification", mock.Anything, mock.MatchedBy(func(n models.Notification) bool {
			return n.Title == "Sale" && n.Type == models.NotificationBroadcast && !n.Read
		})).Return(1, nil).Times(3)
		pusher.On("Send", mock.Anything, []string{"tok-1"}, "Sale", "20% off this week",
			map[string]string{"type": models.NotificationBroadcast}).
			Return(&push.SendResult{SuccessCount: 1}, nil).Once()

		svc := New(repo, pusher, newNoopLogger())
		result, err := svc.Broadcast(context.Background(), req, now)
		require.NoError(t, err)
		assert.Equal(t, 3, result.NotifiedCount)
		assert.Equal(t, 1, result.PushSuccess)
		assert.Equal(t, 0, result.PushFailed)
		repo.AssertExpectations(t)
		pusher.AssertExpectations(t)
	})

	t.Run("push failure does not undo created records", func(t *testing.T) {
		repo := new(RepoMock)
		pusher := new(PusherMock)
		repo.On("ListUsers", mock.Anything).Return([]*models.User{withPush}, nil).Once()
		repo.On("CreateNotification", mock.Anything, mock.Anything).Return(1, nil).Once()
		pusher.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, errors.New("push endpoint unreachable")).Once()

		svc := New(repo, pusher, newNoopLogger())
		result, err := svc.Broadcast(context.Background(), req, now)
		require.NoError(t, err)
		assert.Equal(t, 1, result.NotifiedCount)
		assert.Equal(t, 1, result.PushFailed)
	})

	t.Run("no registered devices skips push entirely", func(t *testing.T) {
		repo := new(RepoMock)
		pusher := new(PusherMock)
		repo.On("ListUsers", mock.Anything).Return([]*models.User{withoutToken}, nil).Once()
		repo.On("CreateNotification", mock.Anything, mock.Anything).Return(1, nil).Once()

		svc := New(repo, pusher, newNoopLogger())
		result, err := svc.Broadcast(context.Background(), req, now)
		require.NoError(t, err)
		assert.Equal(t, 1, result.NotifiedCount)
		pusher.AssertNotCalled(t, "Send",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("record failure is skipped, the rest proceed", func(t *testing.T) {
		repo := new(RepoMock)
		pusher := new(PusherMock)
		repo.On("ListUsers", mock.Anything).
			Return([]*models.User{withoutToken, pushDisabled}, nil).Once()
		repo.On("CreateNotification", mock.Anything, mock.MatchedBy(func(n models.Notification) bool {
			return n.UserPhone == withoutToken.Phone
		})).Return(0, errors.New("connection reset")).Once()
		repo.On("CreateNotification", mock.Anything, mock.MatchedBy(func(n models.Notification) bool {
			return n.UserPhone == pushDisabled.Phone
		})).Return(2, nil).Once()

		svc := New(repo, pusher, newNoopLogger())
		result, err := svc.Broadcast(context.Background(), req, now)
		require.NoError(t, err)
		assert.Equal(t, 1, result.NotifiedCount)
	})
}
