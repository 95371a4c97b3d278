package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/atelier-backoffice/internal/errs"
	"github.com/magabrotheeeer/atelier-backoffice/internal/models"
)

// CreateCustomer вставляет нового клиента арендатора и возвращает его ID.
func (s *Storage) CreateCustomer(ctx context.Context, c models.Customer) (int, error) {
	const op = "storage.CreateCustomer"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO customers (user_phone, name, phone, email, photo_url, photo_key)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		c.UserPhone, c.Name, c.Phone, c.Email, c.PhotoURL, c.PhotoKey).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ReadCustomer возвращает клиента по паре (id, user_phone).
func (s *Storage) ReadCustomer(ctx context.Context, id int, userPhone string) (*models.Customer, error) {
	const op = "storage.ReadCustomer"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_phone, name, phone, email, photo_url, photo_key, created_at
			  FROM customers WHERE id = $1 AND user_phone = $2`
	var c models.Customer
	err := s.DB.QueryRowContext(ctx, query, id, userPhone).Scan(
		&c.ID, &c.UserPhone, &c.Name, &c.Phone, &c.Email, &c.PhotoURL, &c.PhotoKey, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, errs.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &c, nil
}

// UpdateCustomer обновляет клиента по паре (id, user_phone) и возвращает
// количество изменённых строк.
func (s *Storage) UpdateCustomer(ctx context.Context, c models.Customer, id int, userPhone string) (int, error) {
	const op = "storage.UpdateCustomer"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE customers
			  SET name = $1, phone = $2, email = $3, photo_url = $4, photo_key = $5
			  WHERE id = $6 AND user_phone = $7`
	result, err := s.DB.ExecContext(ctx, query,
		c.Name, c.Phone, c.Email, c.PhotoURL, c.PhotoKey, id, userPhone)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RemoveCustomer удаляет клиента по паре (id, user_phone) и возвращает
// количество удалённых строк.
func (s *Storage) RemoveCustomer(ctx context.Context, id int, userPhone string) (int, error) {
	const op = "storage.RemoveCustomer"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM customers WHERE id = $1 AND user_phone = $2`
	result, err := s.DB.ExecContext(ctx, query, id, userPhone)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ListCustomers возвращает клиентов арендатора с пагинацией.
func (s *Storage) ListCustomers(ctx context.Context, userPhone string, limit, offset int) ([]*models.Customer, error) {
	const op = "storage.ListCustomers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_phone, name, phone, email, photo_url, photo_key, created_at
			  FROM customers
			  WHERE user_phone = $1
			  ORDER BY id
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, userPhone, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var result []*models.Customer
	for rows.Next() {
		var c models.Customer
		if err := rows.Scan(&c.ID, &c.UserPhone, &c.Name, &c.Phone, &c.Email,
			&c.PhotoURL, &c.PhotoKey, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListCustomerPhotoKeys возвращает ключи фотографий всех клиентов арендатора.
// Используется оркестратором удаления аккаунта.
func (s *Storage) ListCustomerPhotoKeys(ctx context.Context, userPhone string) ([]string, error) {
	const op = "storage.ListCustomerPhotoKeys"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT photo_key FROM customers WHERE user_phone = $1 AND photo_key <> ''`
	rows, err := s.DB.QueryContext(ctx, query, userPhone)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return keys, nil
}

// RemoveAllCustomers удаляет всех клиентов арендатора и возвращает количество
// удалённых строк. Повторный вызов на пустом арендаторе — no-op.
func (s *Storage) RemoveAllCustomers(ctx context.Context, userPhone string) (int, error) {
	const op = "storage.RemoveAllCustomers"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM customers WHERE user_phone = $1`, userPhone)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
