package order

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
	"github.com/magabrotheeeer/atelier-backoffice/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreateOrder(ctx context.Context, o models.Order) (int, error) {
	args := m.Called(ctx, o)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) ReadOrder(ctx context.Context, id int, userPhone string) (*models.Order, error) {
	args := m.Called(ctx, id, userPhone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}
func (m *RepoMock) ListOrders(ctx context.Context, userPhone string, limit, offset int) ([]*models.Order, error) {
	args := m.Called(ctx, userPhone, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Order), args.Error(1)
}
func (m *RepoMock) UpdateOrderStatus(ctx context.Context, id int, userPhone, status string) (int, error) {
	args := m.Called(ctx, id, userPhone, status)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) AddOrderImage(ctx context.Context, img models.OrderImage) (int, error) {
	args := m.Called(ctx, img)
	return args.Int(0), args.Error(1)
}

type BlobsMock struct{ mock.Mock }

func (m *BlobsMock) Put(ctx context.Context, data []byte, logicalPath, contentType string) (string, string, error) {
	args := m.Called(ctx, data, logicalPath, contentType)
	return args.String(0), args.String(1), args.Error(2)
}

const testPhone = "08031234567"

func newService(repo *RepoMock, blobs *BlobsMock) *Service {
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	return New(repo, blobs, log)
}

func TestService_Create(t *testing.T) {
	t.Run("pending with parsed due date", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("CreateOrder", mock.Anything, mock.MatchedBy(func(o models.Order) bool {
			return o.Status == models.OrderPending &&
				o.UserPhone == testPhone &&
				o.DueDate != nil && o.DueDate.Format("2006-01-02") == "2025-07-01"
		})).Return(12, nil).Once()

		svc := newService(repo, new(BlobsMock))
		order, err := svc.Create(context.Background(), testPhone, models.DummyOrder{
			CustomerID:  3,
			Description: "Agbada, navy",
			DueDate:     "2025-07-01",
		}, nil, "")
		require.NoError(t, err)
		assert.Equal(t, 12, order.ID)
	})

	t.Run("bad due date fails validation", func(t *testing.T) {
		svc := newService(new(RepoMock), new(BlobsMock))
		_, err := svc.Create(context.Background(), testPhone, models.DummyOrder{
			CustomerID:  3,
			Description: "Agbada",
			DueDate:     "01/07/2025",
		}, nil, "")
		assert.True(t, errors.Is(err, errs.ErrValidation))
	})

	t.Run("sketch upload failure is fatal", func(t *testing.T) {
		repo := new(RepoMock)
		blobs := new(BlobsMock)
		blobs.On("Put", mock.Anything, mock.Anything, "orders/sketches", mock.Anything).
			Return("", "", errs.ErrUpstream).Once()

		svc := newService(repo, blobs)
		_, err := svc.Create(context.Background(), testPhone, models.DummyOrder{
			CustomerID:  3,
			Description: "Agbada",
		}, []byte("sketch"), "image/png")
		assert.True(t, errors.Is(err, errs.ErrUpstream))
		repo.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
	})
}

func TestService_UpdateStatus(t *testing.T) {
	t.Run("valid transition", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("UpdateOrderStatus", mock.Anything, 12, testPhone, models.OrderCompleted).
			Return(1, nil).Once()

		svc := newService(repo, new(BlobsMock))
		require.NoError(t, svc.UpdateStatus(context.Background(), 12, testPhone, models.OrderCompleted))
	})

	t.Run("unknown status rejected before any query", func(t *testing.T) {
		repo := new(RepoMock)
		svc := newService(repo, new(BlobsMock))
		err := svc.UpdateStatus(context.Background(), 12, testPhone, "shipped")
		assert.True(t, errors.Is(err, errs.ErrValidation))
		repo.AssertNotCalled(t, "UpdateOrderStatus",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("foreign order reports not found", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("UpdateOrderStatus", mock.Anything, 12, testPhone, models.OrderDelivered).
			Return(0, errs.ErrNotFound).Once()

		svc := newService(repo, new(BlobsMock))
		err := svc.UpdateStatus(context.Background(), 12, testPhone, models.OrderDelivered)
		assert.True(t, errors.Is(err, errs.ErrNotFound))
	})

	t.Run("zero affected rows report not found", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("UpdateOrderStatus", mock.Anything, 12, testPhone, models.OrderDelivered).
			Return(0, nil).Once()

		svc := newService(repo, new(BlobsMock))
		err := svc.UpdateStatus(context.Background(), 12, testPhone, models.OrderDelivered)
		assert.True(t, errors.Is(err, errs.ErrNotFound))
	})
}

func TestService_AddImage(t *testing.T) {
	t.Run("ownership checked before upload", func(t *testing.T) {
		repo := new(RepoMock)
		blobs := new(BlobsMock)
		repo.On("ReadOrder", mock.Anything, 12, testPhone).Return(nil, errs.ErrNotFound).Once()

		svc := newService(repo, blobs)
		_, err := svc.AddImage(context.Background(), 12, testPhone, []byte("img"), "image/jpeg")
		assert.True(t, errors.Is(err, errs.ErrNotFound))
		blobs.AssertNotCalled(t, "Put",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("stores key next to public url", func(t *testing.T) {
		repo := new(RepoMock)
		blobs := new(BlobsMock)
		repo.On("ReadOrder", mock.Anything, 12, testPhone).
			Return(&models.Order{ID: 12, UserPhone: testPhone}, nil).Once()
		blobs.On("Put", mock.Anything, []byte("img"), "orders/images", "image/jpeg").
			Return("orders/images/u9", "https://cdn.test/orders/images/u9", nil).Once()
		repo.On("AddOrderImage", mock.Anything, mock.MatchedBy(func(img models.OrderImage) bool {
			return img.OrderID == 12 && img.StorageKey == "orders/images/u9"
		})).Return(4, nil).Once()

		svc := newService(repo, blobs)
		img, err := svc.AddImage(context.Background(), 12, testPhone, []byte("img"), "image/jpeg")
		require.NoError(t, err)
		assert.Equal(t, 4, img.ID)
		assert.Equal(t, "https://cdn.test/orders/images/u9", img.URL)
	})
}
