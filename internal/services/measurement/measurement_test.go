package measurement

import (
	"context"
	"encoding/json"
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

func (m *RepoMock) CreateMeasurement(ctx context.Context, ms models.Measurement) (int, error) {
	args := m.Called(ctx, ms)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) ReadMeasurement(ctx context.Context, id int, userPhone string) (*models.Measurement, error) {
	args := m.Called(ctx, id, userPhone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Measurement), args.Error(1)
}
func (m *RepoMock) ListMeasurements(ctx context.Context, userPhone string, limit, offset int) ([]*models.Measurement, error) {
	args := m.Called(ctx, userPhone, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Measurement), args.Error(1)
}

type BlobsMock struct{ mock.Mock }

func (m *BlobsMock) Put(ctx context.Context, data []byte, logicalPath, contentType string) (string, string, error) {
	args := m.Called(ctx, data, logicalPath, contentType)
	return args.String(0), args.String(1), args.Error(2)
}

func newTestService(repo *RepoMock, blobs *BlobsMock) *Service {
	return New(repo, blobs, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestService_Create(t *testing.T) {
	fields := json.RawMessage(`{"bust": 36, "waist": 29, "hips": 40}`)

	t.Run("without photo", func(t *testing.T) {
		repo := new(RepoMock)
		blobs := new(BlobsMock)
		svc := newTestService(repo, blobs)

		repo.On("CreateMeasurement", mock.Anything, mock.MatchedBy(func(m models.Measurement) bool {
			return m.UserPhone == "08031234567" && m.CustomerID == 7 && m.PhotoKey == ""
		})).Return(11, nil)

		got, err := svc.Create(context.Background(), "08031234567",
			models.DummyMeasurement{CustomerID: 7, Fields: fields}, nil, "")
		require.NoError(t, err)
		assert.Equal(t, 11, got.ID)
		blobs.AssertNotCalled(t, "Put")
	})

	t.Run("photo is uploaded before the row", func(t *testing.T) {
		repo := new(RepoMock)
		blobs := new(BlobsMock)
		svc := newTestService(repo, blobs)

		blobs.On("Put", mock.Anything, []byte("jpeg"), "measurements", "image/jpeg").
			Return("measurements/abc", "https://cdn/measurements/abc", nil)
		repo.On("CreateMeasurement", mock.Anything, mock.MatchedBy(func(m models.Measurement) bool {
			return m.PhotoKey == "measurements/abc" && m.PhotoURL == "https://cdn/measurements/abc"
		})).Return(12, nil)

		got, err := svc.Create(context.Background(), "08031234567",
			models.DummyMeasurement{CustomerID: 7, Fields: fields}, []byte("jpeg"), "image/jpeg")
		require.NoError(t, err)
		assert.Equal(t, "https://cdn/measurements/abc", got.PhotoURL)
	})

	t.Run("failed upload aborts creation", func(t *testing.T) {
		repo := new(RepoMock)
		blobs := new(BlobsMock)
		svc := newTestService(repo, blobs)

		blobs.On("Put", mock.Anything, mock.Anything, "measurements", mock.Anything).
			Return("", "", errors.New("s3 unavailable"))

		_, err := svc.Create(context.Background(), "08031234567",
			models.DummyMeasurement{CustomerID: 7, Fields: fields}, []byte("jpeg"), "image/jpeg")
		require.Error(t, err)
		repo.AssertNotCalled(t, "CreateMeasurement")
	})
}

func TestService_Read(t *testing.T) {
	repo := new(RepoMock)
	svc := newTestService(repo, new(BlobsMock))

	repo.On("ReadMeasurement", mock.Anything, 5, "08099999999").
		Return(nil, errs.ErrNotFound)

	_, err := svc.Read(context.Background(), 5, "08099999999")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestService_List(t *testing.T) {
	repo := new(RepoMock)
	svc := newTestService(repo, new(BlobsMock))

	stored := []*models.Measurement{{ID: 1, CustomerID: 7}, {ID: 2, CustomerID: 8}}
	repo.On("ListMeasurements", mock.Anything, "08031234567", 20, 0).Return(stored, nil)

	got, err := svc.List(context.Background(), "08031234567", 20, 0)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
