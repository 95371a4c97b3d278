package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/atelier-backoffice/internal/models"
)

// FindPaymentByTxRef ищет рассчитанный платеж по ссылке транзакции.
// Второе возвращаемое значение false означает, что платежа с такой ссылкой
// в истории нет.
func (s *Storage) FindPaymentByTxRef(ctx context.Context, txRef string) (*models.Payment, bool, error) {
	const op = "storage.FindPaymentByTxRef"
	select {
	case <-ctx.Done():
		return nil, false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_phone, tx_ref, amount, tier, status, settled_at
			  FROM payments WHERE tx_ref = $1`
	var p models.Payment
	err := s.DB.QueryRowContext(ctx, query, txRef).Scan(
		&p.ID, &p.UserPhone, &p.TxRef, &p.Amount, &p.Tier, &p.Status, &p.SettledAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	return &p, true, nil
}

// AppendPayment дописывает рассчитанный платеж в историю арендатора.
// Уникальный индекс по tx_ref не допускает дубликатов при гонке двух
// подтверждений одной транзакции.
func (s *Storage) AppendPayment(ctx context.Context, p models.Payment) (int, error) {
	const op = "storage.AppendPayment"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO payments (user_phone, tx_ref, amount, tier, status, settled_at)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  ON CONFLICT (tx_ref) DO NOTHING
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		p.UserPhone, p.TxRef, p.Amount, p.Tier, p.Status, p.SettledAt).Scan(&newID)
	if errors.Is(err, sql.ErrNoRows) {
		// Запись с таким tx_ref уже есть, вставка не выполнялась.
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListPayments возвращает историю платежей арендатора, новые первыми.
func (s *Storage) ListPayments(ctx context.Context, userPhone string) ([]*models.Payment, error) {
	const op = "storage.ListPayments"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_phone, tx_ref, amount, tier, status, settled_at
			  FROM payments
			  WHERE user_phone = $1
			  ORDER BY id DESC`
	rows, err := s.DB.QueryContext(ctx, query, userPhone)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var result []*models.Payment
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.ID, &p.UserPhone, &p.TxRef, &p.Amount,
			&p.Tier, &p.Status, &p.SettledAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
