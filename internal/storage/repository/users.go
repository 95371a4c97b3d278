package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/atelier-backoffice/internal/errs"
	"github.com/magabrotheeeer/atelier-backoffice/internal/models"
)

const userColumns = `phone, password_hash, business_name, role,
				subscription_type, subscription_status,
				trial_start_date, trial_end_date,
				subscription_start_date, subscription_end_date,
				pending_payment_ref, push_enabled, device_token,
				profile_image_url, profile_image_key, created_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	var subType, subStatus, deviceToken, profileURL, profileKey sql.NullString
	err := row.Scan(&u.Phone, &u.PasswordHash, &u.BusinessName, &u.Role,
		&subType, &subStatus,
		&u.TrialStartDate, &u.TrialEndDate,
		&u.SubscriptionStartDate, &u.SubscriptionEndDate,
		&u.PendingPaymentRef, &u.PushEnabled, &deviceToken,
		&profileURL, &profileKey, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	u.SubscriptionType = subType.String
	u.SubscriptionStatus = subStatus.String
	u.DeviceToken = deviceToken.String
	u.ProfileImageURL = profileURL.String
	u.ProfileImageKey = profileKey.String
	return &u, nil
}

// CreateUser регистрирует нового арендатора.
func (s *Storage) CreateUser(ctx context.Context, u models.User) error {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO users (phone, password_hash, business_name, role,
				  subscription_type, subscription_status,
				  trial_start_date, trial_end_date, push_enabled, device_token)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := s.DB.ExecContext(ctx, query,
		u.Phone, u.PasswordHash, u.BusinessName, u.Role,
		u.SubscriptionType, u.SubscriptionStatus,
		u.TrialStartDate, u.TrialEndDate, u.PushEnabled, u.DeviceToken)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ReadUser возвращает арендатора по нормализованному телефону.
func (s *Storage) ReadUser(ctx context.Context, phone string) (*models.User, error) {
	const op = "storage.ReadUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE phone = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, phone))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, errs.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// ListUsers возвращает всех арендаторов, кроме администраторов.
// Используется селектором рассылки.
func (s *Storage) ListUsers(ctx context.Context) ([]*models.User, error) {
	const op = "storage.ListUsers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE role <> 'admin' ORDER BY phone`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var result []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// InitTrialSubscription переводит арендатора на пробный период: заполняет
// даты триала и очищает пару дат оплаченной подписки.
func (s *Storage) InitTrialSubscription(ctx context.Context, phone string, start, end time.Time) error {
	const op = "storage.InitTrialSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET subscription_type = 'trial', subscription_status = 'active',
			      trial_start_date = $1, trial_end_date = $2,
			      subscription_start_date = NULL, subscription_end_date = NULL
			  WHERE phone = $3`
	res, err := s.DB.ExecContext(ctx, query, start, end, phone)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", op, errs.ErrNotFound)
	}
	return nil
}

// UpdateSubscriptionStatus меняет только статус подписки. Повторная запись
// того же статуса безопасна.
func (s *Storage) UpdateSubscriptionStatus(ctx context.Context, phone, status string) error {
	const op = "storage.UpdateSubscriptionStatus"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET subscription_status = $1 WHERE phone = $2`
	res, err := s.DB.ExecContext(ctx, query, status, phone)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", op, errs.ErrNotFound)
	}
	return nil
}

// ApplyPaidSubscription переводит арендатора на оплаченный тариф: выставляет
// тип, статус active и пару дат подписки, очищает даты триала и ссылку на
// незавершенную транзакцию.
func (s *Storage) ApplyPaidSubscription(ctx context.Context, phone, tier string, start, end time.Time) error {
	const op = "storage.ApplyPaidSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET subscription_type = $1, subscription_status = 'active',
			      subscription_start_date = $2, subscription_end_date = $3,
			      trial_start_date = NULL, trial_end_date = NULL,
			      pending_payment_ref = NULL
			  WHERE phone = $4`
	res, err := s.DB.ExecContext(ctx, query, tier, start, end, phone)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", op, errs.ErrNotFound)
	}
	return nil
}

// SetPendingPayment сохраняет ссылку незавершенной транзакции. У арендатора
// может быть не более одной: новая перезаписывает предыдущую.
func (s *Storage) SetPendingPayment(ctx context.Context, phone, txRef string) error {
	const op = "storage.SetPendingPayment"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET pending_payment_ref = $1 WHERE phone = $2`
	res, err := s.DB.ExecContext(ctx, query, txRef, phone)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", op, errs.ErrNotFound)
	}
	return nil
}

// UpdatePushSettings сохраняет согласие на push и токен устройства.
func (s *Storage) UpdatePushSettings(ctx context.Context, phone string, enabled bool, deviceToken string) error {
	const op = "storage.UpdatePushSettings"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET push_enabled = $1, device_token = $2 WHERE phone = $3`
	res, err := s.DB.ExecContext(ctx, query, enabled, deviceToken, phone)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", op, errs.ErrNotFound)
	}
	return nil
}

// RemoveUser удаляет арендатора. История платежей удаляется каскадно.
func (s *Storage) RemoveUser(ctx context.Context, phone string) error {
	const op = "storage.RemoveUser"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM users WHERE phone = $1`
	res, err := s.DB.ExecContext(ctx, query, phone)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", op, errs.ErrNotFound)
	}
	return nil
}
