package notification

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/atelier-backoffice/internal/errs"
	"github.com/magabrotheeeer/atelier-backoffice/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) ListNotifications(ctx context.Context, userPhone string, limit, offset int) ([]*models.Notification, error) {
	args := m.Called(ctx, userPhone, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Notification), args.Error(1)
}
func (m *RepoMock) MarkNotificationRead(ctx context.Context, id int, userPhone string) (int, error) {
	args := m.Called(ctx, id, userPhone)
	return args.Int(0), args.Error(1)
}

func newTestService(repo *RepoMock) *Service {
	return New(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestService_List(t *testing.T) {
	repo := new(RepoMock)
	svc := newTestService(repo)

	stored := []*models.Notification{
		{ID: 2, Title: "Delivery reminder", Type: models.NotificationReminder},
		{ID: 1, Title: "New tariffs", Type: models.NotificationBroadcast, Read: true},
	}
	repo.On("ListNotifications", mock.Anything, "08031234567", 20, 0).Return(stored, nil)

	got, err := svc.List(context.Background(), "08031234567", 20, 0)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "Delivery reminder", got[0].Title)
}

func TestService_MarkRead(t *testing.T) {
	t.Run("own notification", func(t *testing.T) {
		repo := new(RepoMock)
		svc := newTestService(repo)

		repo.On("MarkNotificationRead", mock.Anything, 2, "08031234567").Return(1, nil)

		require.NoError(t, svc.MarkRead(context.Background(), 2, "08031234567"))
	})

	t.Run("foreign notification is reported as missing", func(t *testing.T) {
		repo := new(RepoMock)
		svc := newTestService(repo)

		repo.On("MarkNotificationRead", mock.Anything, 2, "08099999999").Return(0, nil)

		err := svc.MarkRead(context.Background(), 2, "08099999999")
		assert.ErrorIs(t, err, errs.ErrNotFound)
	})
}
