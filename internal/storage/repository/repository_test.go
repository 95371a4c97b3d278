package repository

import (
	"context"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/atelier-backoffice/internal/errs"
	"github.com/magabrotheeeer/atelier-backoffice/internal/migrations"
	"github.com/magabrotheeeer/atelier-backoffice/internal/models"
)

func setupStorage(t *testing.T) *Storage {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort(nat.Port("5432/tcp")).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx)
	require.NoError(t, err)

	storage, err := New(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.DB.Close() })

	require.NoError(t, migrations.Run(storage.DB, "../../../migrations"))
	return storage
}

func createTenant(t *testing.T, s *Storage, phone string) {
	t.Helper()
	now := time.Now().UTC()
	end := now.AddDate(0, 0, models.TrialDays)
	err := s.CreateUser(context.Background(), models.User{
		Phone:              phone,
		PasswordHash:       "hash",
		BusinessName:       "Iya Moria Stitches",
		Role:               models.RoleUser,
		SubscriptionType:   models.SubscriptionTrial,
		SubscriptionStatus: models.StatusActive,
		TrialStartDate:     &now,
		TrialEndDate:       &end,
	})
	require.NoError(t, err)
}

func TestCustomerOwnership(t *testing.T) {
	s := setupStorage(t)
	ctx := context.Background()
	createTenant(t, s, "08031234567")
	createTenant(t, s, "08099999999")

	id, err := s.CreateCustomer(ctx, models.Customer{
		UserPhone: "08031234567",
		Name:      "Amaka",
	})
	require.NoError(t, err)

	// Владелец видит своего клиента
	got, err := s.ReadCustomer(ctx, id, "08031234567")
	require.NoError(t, err)
	require.Equal(t, "Amaka", got.Name)

	// Чужой арендатор не видит клиента и не может его изменить
	_, err = s.ReadCustomer(ctx, id, "08099999999")
	require.ErrorIs(t, err, errs.ErrNotFound)

	n, err := s.UpdateCustomer(ctx, models.Customer{Name: "Hacked"}, id, "08099999999")
	require.NoError(t, err)
	require.Zero(t, n)

	n, err = s.RemoveCustomer(ctx, id, "08099999999")
	require.NoError(t, err)
	require.Zero(t, n)

	// Запись осталась нетронутой
	got, err = s.ReadCustomer(ctx, id, "08031234567")
	require.NoError(t, err)
	require.Equal(t, "Amaka", got.Name)
}

func TestRemoveAllCustomers(t *testing.T) {
	s := setupStorage(t)
	ctx := context.Background()
	createTenant(t, s, "08031234567")
	createTenant(t, s, "08099999999")

	for _, name := range []string{"Amaka", "Chidi", "Ifeoma"} {
		_, err := s.CreateCustomer(ctx, models.Customer{UserPhone: "08031234567", Name: name})
		require.NoError(t, err)
	}
	_, err := s.CreateCustomer(ctx, models.Customer{UserPhone: "08099999999", Name: "Bola"})
	require.NoError(t, err)

	n, err := s.RemoveAllCustomers(ctx, "08031234567")
	require.NoError(t, err)
	require.Equal(t, 3, n)

	// Повторный вызов — no-op
	n, err = s.RemoveAllCustomers(ctx, "08031234567")
	require.NoError(t, err)
	require.Zero(t, n)

	// Чужие данные не задеты
	others, err := s.ListCustomers(ctx, "08099999999", 20, 0)
	require.NoError(t, err)
	require.Len(t, others, 1)
}

func TestFindStalePendingOrders(t *testing.T) {
	s := setupStorage(t)
	ctx := context.Background()
	createTenant(t, s, "08031234567")

	customerID, err := s.CreateCustomer(ctx, models.Customer{
		UserPhone: "08031234567",
		Name:      "Amaka",
	})
	require.NoError(t, err)

	staleID, err := s.CreateOrder(ctx, models.Order{
		UserPhone:   "08031234567",
		CustomerID:  customerID,
		Description: "Aso ebi gown",
		Status:      models.OrderPending,
	})
	require.NoError(t, err)
	freshID, err := s.CreateOrder(ctx, models.Order{
		UserPhone:   "08031234567",
		CustomerID:  customerID,
		Description: "Agbada set",
		Status:      models.OrderPending,
	})
	require.NoError(t, err)
	doneID, err := s.CreateOrder(ctx, models.Order{
		UserPhone:   "08031234567",
		CustomerID:  customerID,
		Description: "School uniform",
		Status:      models.OrderDelivered,
	})
	require.NoError(t, err)

	// Состариваем два заказа, но только один из них pending
	for _, id := range []int{staleID, doneID} {
		_, err = s.DB.ExecContext(ctx,
			`UPDATE orders SET created_at = now() - interval '3 days' WHERE id = $1`, id)
		require.NoError(t, err)
	}

	events, err := s.FindStalePendingOrders(ctx, time.Now().Add(-48*time.Hour))
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, staleID, events[0].OrderID)
	require.Equal(t, "Amaka", events[0].CustomerName)
	require.Equal(t, "08031234567", events[0].UserPhone)
	require.NotEqual(t, freshID, events[0].OrderID)
}

func TestAppendPaymentIdempotency(t *testing.T) {
	s := setupStorage(t)
	ctx := context.Background()
	createTenant(t, s, "08031234567")

	p := models.Payment{
		UserPhone: "08031234567",
		TxRef:     "atelier-tx-001",
		Amount:    1500,
		Tier:      models.SubscriptionMonthly,
		Status:    models.PaymentSuccessful,
		SettledAt: time.Now().UTC(),
	}
	_, err := s.AppendPayment(ctx, p)
	require.NoError(t, err)

	// Повторная вставка того же tx_ref не создает новой записи
	_, err = s.AppendPayment(ctx, p)
	require.NoError(t, err)

	list, err := s.ListPayments(ctx, "08031234567")
	require.NoError(t, err)
	require.Len(t, list, 1)

	found, ok, err := s.FindPaymentByTxRef(ctx, "atelier-tx-001")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "08031234567", found.UserPhone)

	_, ok, err = s.FindPaymentByTxRef(ctx, "atelier-tx-missing")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestReadUserNotFound(t *testing.T) {
	s := setupStorage(t)

	_, err := s.ReadUser(context.Background(), "08000000000")
	require.ErrorIs(t, err, errs.ErrNotFound)
}
