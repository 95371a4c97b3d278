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

// CreateOrder вставляет новый заказ арендатора и возвращает его ID.
func (s *Storage) CreateOrder(ctx context.Context, o models.Order) (int, error) {
	const op = "storage.CreateOrder"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO orders (user_phone, customer_id, description, status,
				  due_date, sketch_url, sketch_key)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		o.UserPhone, o.CustomerID, o.Description, o.Status,
		o.DueDate, o.SketchURL, o.SketchKey).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ReadOrder возвращает заказ по паре (id, user_phone).
func (s *Storage) ReadOrder(ctx context.Context, id int, userPhone string) (*models.Order, error) {
	const op = "storage.ReadOrder"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_phone, customer_id, description, status, due_date,
				sketch_url, sketch_key, created_at, updated_at
			  FROM orders WHERE id = $1 AND user_phone = $2`
	var o models.Order
	err := s.DB.QueryRowContext(ctx, query, id, userPhone).Scan(
		&o.ID, &o.UserPhone, &o.CustomerID, &o.Description, &o.Status, &o.DueDate,
		&o.SketchURL, &o.SketchKey, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, errs.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &o, nil
}

// ListOrders возвращает заказы арендатора с пагинацией.
func (s *Storage) ListOrders(ctx context.Context, userPhone string, limit, offset int) ([]*models.Order, error) {
	const op = "storage.ListOrders"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_phone, customer_id, description, status, due_date,
				sketch_url, sketch_key, created_at, updated_at
			  FROM orders
			  WHERE user_phone = $1
			  ORDER BY id
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, userPhone, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var result []*models.Order
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.UserPhone, &o.CustomerID, &o.Description, &o.Status,
			&o.DueDate, &o.SketchURL, &o.SketchKey, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateOrderStatus меняет статус заказа по паре (id, user_phone)
// и возвращает количество изменённых строк.
func (s *Storage) UpdateOrderStatus(ctx context.Context, id int, userPhone, status string) (int, error) {
	const op = "storage.UpdateOrderStatus"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE orders SET status = $1, updated_at = now()
			  WHERE id = $2 AND user_phone = $3`
	result, err := s.DB.ExecContext(ctx, query, status, id, userPhone)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// AddOrderImage прикрепляет фотографию фасона к заказу арендатора.
func (s *Storage) AddOrderImage(ctx context.Context, img models.OrderImage) (int, error) {
	const op = "storage.AddOrderImage"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO order_images (order_id, user_phone, url, storage_key)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		img.OrderID, img.UserPhone, img.URL, img.StorageKey).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListOrderBlobKeys возвращает ключи всех изображений заказов арендатора:
// эскизы и фотографии фасонов. Используется оркестратором удаления аккаунта.
func (s *Storage) ListOrderBlobKeys(ctx context.Context, userPhone string) ([]string, error) {
	const op = "storage.ListOrderBlobKeys"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT sketch_key AS key FROM orders
			  WHERE user_phone = $1 AND sketch_key <> ''
			  UNION ALL
			  SELECT storage_key FROM order_images
			  WHERE user_phone = $1 AND storage_key <> ''`
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

// RemoveAllOrders удаляет все заказы арендатора вместе с привязанными
// фотографиями фасонов и возвращает количество удалённых заказов.
func (s *Storage) RemoveAllOrders(ctx context.Context, userPhone string) (int, error) {
	const op = "storage.RemoveAllOrders"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM order_images WHERE user_phone = $1`, userPhone); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	result, err := s.DB.ExecContext(ctx, `DELETE FROM orders WHERE user_phone = $1`, userPhone)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// FindStalePendingOrders возвращает события напоминаний для заказов,
// созданных раньше cutoff и всё ещё находящихся в статусе pending.
// Используется периодическим обходом заказов.
func (s *Storage) FindStalePendingOrders(ctx context.Context, cutoff time.Time) ([]*models.ReminderEvent, error) {
	const op = "storage.FindStalePendingOrders"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT o.user_phone, o.id, c.name
			  FROM orders o
			  JOIN customers c ON c.id = o.customer_id AND c.user_phone = o.user_phone
			  WHERE o.status = 'pending' AND o.created_at < $1
			  ORDER BY o.id`
	rows, err := s.DB.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var result []*models.ReminderEvent
	for rows.Next() {
		var ev models.ReminderEvent
		if err := rows.Scan(&ev.UserPhone, &ev.OrderID, &ev.CustomerName); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
