package account

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/atelier-backoffice/internal/errs"
	"github.com/magabrotheeeer/atelier-backoffice/internal/lib/password"
	"github.com/magabrotheeeer/atelier-backoffice/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) ReadUser(ctx context.Context, phone string) (*models.User, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *RepoMock) ListCustomerPhotoKeys(ctx context.Context, userPhone string) ([]string, error) {
	args := m.Called(ctx, userPhone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
func (m *RepoMock) ListMeasurementPhotoKeys(ctx context.Context, userPhone string) ([]string, error) {
	args := m.Called(ctx, userPhone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
func (m *RepoMock) ListOrderBlobKeys(ctx context.Context, userPhone string) ([]string, error) {
	args := m.Called(ctx, userPhone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
func (m *RepoMock) RemoveAllNotifications(ctx context.Context, userPhone string) (int, error) {
	args := m.Called(ctx, userPhone)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) RemoveAllOrders(ctx context.Context, userPhone string) (int, error) {
	args := m.Called(ctx, userPhone)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) RemoveAllMeasurements(ctx context.Context, userPhone string) (int, error) {
	args := m.Called(ctx, userPhone)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) RemoveAllCustomers(ctx context.Context, userPhone string) (int, error) {
	args := m.Called(ctx, userPhone)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) RemoveUser(ctx context.Context, phone string) error {
	return m.Called(ctx, phone).Error(0)
}

type BlobsMock struct{ mock.Mock }

func (m *BlobsMock) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) InvalidateByPattern(pattern string) error {
	return m.Called(pattern).Error(0)
}

const testPhone = "08031234567"

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func expectRecordRemoval(repo *RepoMock) {
	repo.On("RemoveAllNotifications", mock.Anything, testPhone).Return(2, nil).Once()
	repo.On("RemoveAllOrders", mock.Anything, testPhone).Return(3, nil).Once()
	repo.On("RemoveAllMeasurements", mock.Anything, testPhone).Return(1, nil).Once()
	repo.On("RemoveAllCustomers", mock.Anything, testPhone).Return(4, nil).Once()
	repo.On("RemoveUser", mock.Anything, testPhone).Return(nil).Once()
}

func TestService_DeleteByPhone(t *testing.T) {
	user := &models.User{Phone: testPhone, ProfileImageKey: "profiles/abc"}

	t.Run("full cascade", func(t *testing.T) {
		repo := new(RepoMock)
		blobs := new(BlobsMock)
		cache := new(CacheMock)

		repo.On("ReadUser", mock.Anything, testPhone).Return(user, nil).Once()
		repo.On("ListCustomerPhotoKeys", mock.Anything, testPhone).Return([]string{"customers/a"}, nil).Once()
		repo.On("ListMeasurementPhotoKeys", mock.Anything, testPhone).Return([]string{}, nil).Once()
		repo.On("ListOrderBlobKeys", mock.Anything, testPhone).Return([]string{"orders/s1", "orders/i1"}, nil).Once()
		for _, key := range []string{"profiles/abc", "customers/a", "orders/s1", "orders/i1"} {
			blobs.On("Delete", mock.Anything, key).Return(nil).Once()
		}
		expectRecordRemoval(repo)
		cache.On("InvalidateByPattern", "customer:"+testPhone+":*").Return(nil).Once()

		svc := New(repo, blobs, cache, newNoopLogger())
		require.NoError(t, svc.DeleteByPhone(context.Background(), testPhone))
		repo.AssertExpectations(t)
		blobs.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("blob failure does not abort cascade", func(t *testing.T) {
		repo := new(RepoMock)
		blobs := new(BlobsMock)
		cache := new(CacheMock)

		repo.On("ReadUser", mock.Anything, testPhone).Return(user, nil).Once()
		repo.On("ListCustomerPhotoKeys", mock.Anything, testPhone).Return([]string{"customers/a"}, nil).Once()
		repo.On("ListMeasurementPhotoKeys", mock.Anything, testPhone).Return([]string{}, nil).Once()
		repo.On("ListOrderBlobKeys", mock.Anything, testPhone).Return([]string{}, nil).Once()
		blobs.On("Delete", mock.Anything, "profiles/abc").Return(errs.ErrUpstream).Once()
		blobs.On("Delete", mock.Anything, "customers/a").Return(nil).Once()
		expectRecordRemoval(repo)
		cache.On("InvalidateByPattern", mock.Anything).Return(nil).Once()

		svc := New(repo, blobs, cache, newNoopLogger())
		require.NoError(t, svc.DeleteByPhone(context.Background(), testPhone))
		repo.AssertExpectations(t)
	})

	t.Run("record removal failure is fatal", func(t *testing.T) {
		repo := new(RepoMock)
		blobs := new(BlobsMock)
		cache := new(CacheMock)

		repo.On("ReadUser", mock.Anything, testPhone).Return(user, nil).Once()
		repo.On("ListCustomerPhotoKeys", mock.Anything, testPhone).Return([]string{}, nil).Once()
		repo.On("ListMeasurementPhotoKeys", mock.Anything, testPhone).Return([]string{}, nil).Once()
		repo.On("ListOrderBlobKeys", mock.Anything, testPhone).Return([]string{}, nil).Once()
		blobs.On("Delete", mock.Anything, "profiles/abc").Return(nil).Once()
		repo.On("RemoveAllNotifications", mock.Anything, testPhone).
			Return(0, errors.New("connection reset")).Once()

		svc := New(repo, blobs, cache, newNoopLogger())
		err := svc.DeleteByPhone(context.Background(), testPhone)
		assert.Error(t, err)
		repo.AssertNotCalled(t, "RemoveUser", mock.Anything, mock.Anything)
		cache.AssertNotCalled(t, "InvalidateByPattern", mock.Anything)
	})

	t.Run("second delete reports not found", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("ReadUser", mock.Anything, testPhone).Return(nil, errs.ErrNotFound).Once()

		svc := New(repo, new(BlobsMock), new(CacheMock), newNoopLogger())
		err := svc.DeleteByPhone(context.Background(), testPhone)
		assert.True(t, errors.Is(err, errs.ErrNotFound))
	})
}

func TestService_DeleteWithPassword(t *testing.T) {
	hash, err := password.Hash("correct-horse")
	require.NoError(t, err)
	user := &models.User{Phone: testPhone, PasswordHash: hash}

	t.Run("wrong password is rejected before any deletion", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("ReadUser", mock.Anything, testPhone).Return(user, nil).Once()

		svc := New(repo, new(BlobsMock), new(CacheMock), newNoopLogger())
		err := svc.DeleteWithPassword(context.Background(), testPhone, "battery-staple")
		assert.True(t, errors.Is(err, errs.ErrUnauthorized))
		repo.AssertNotCalled(t, "RemoveUser", mock.Anything, mock.Anything)
	})

	t.Run("correct password runs the cascade", func(t *testing.T) {
		repo := new(RepoMock)
		blobs := new(BlobsMock)
		cache := new(CacheMock)

		repo.On("ReadUser", mock.Anything, testPhone).Return(user, nil).Once()
		repo.On("ListCustomerPhotoKeys", mock.Anything, testPhone).Return([]string{}, nil).Once()
		repo.On("ListMeasurementPhotoKeys", mock.Anything, testPhone).Return([]string{}, nil).Once()
		repo.On("ListOrderBlobKeys", mock.Anything, testPhone).Return([]string{}, nil).Once()
		expectRecordRemoval(repo)
		cache.On("InvalidateByPattern", mock.Anything).Return(nil).Once()

		svc := New(repo, blobs, cache, newNoopLogger())
		require.NoError(t, svc.DeleteWithPassword(context.Background(), testPhone, "correct-horse"))
		repo.AssertExpectations(t)
	})
}
