package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/atelier-backoffice/internal/errs"
	"github.com/magabrotheeeer/atelier-backoffice/internal/models"
)

// CreateMeasurement вставляет мерки клиента и возвращает их ID.
func (s *Storage) CreateMeasurement(ctx context.Context, m models.Measurement) (int, error) {
	const op = "storage.CreateMeasurement"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO measurements (user_phone, customer_id, fields, photo_url, photo_key)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		m.UserPhone, m.CustomerID, m.Fields, m.PhotoURL, m.PhotoKey).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ReadMeasurement возвращает мерки по паре (id, user_phone).
func (s *Storage) ReadMeasurement(ctx context.Context, id int, userPhone string) (*models.Measurement, error) {
	const op = "storage.ReadMeasurement"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_phone, customer_id, fields, photo_url, photo_key, created_at
			  FROM measurements WHERE id = $1 AND user_phone = $2`
	var m models.Measurement
	err := s.DB.QueryRowContext(ctx, query, id, userPhone).Scan(
		&m.ID, &m.UserPhone, &m.CustomerID, &m.Fields, &m.PhotoURL, &m.PhotoKey, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, errs.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &m, nil
}

// ListMeasurements возвращает мерки всех клиентов арендатора с пагинацией.
func (s *Storage) ListMeasurements(ctx context.Context, userPhone string, limit, offset int) ([]*models.Measurement, error) {
	const op = "storage.ListMeasurements"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_phone, customer_id, fields, photo_url, photo_key, created_at
			  FROM measurements
			  WHERE user_phone = $1
			  ORDER BY id
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, userPhone, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var result []*models.Measurement
	for rows.Next() {
		var m models.Measurement
		if err := rows.Scan(&m.ID, &m.UserPhone, &m.CustomerID, &m.Fields,
			&m.PhotoURL, &m.PhotoKey, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListMeasurementPhotoKeys возвращает ключи фотографий мерок арендатора.
// Используется оркестратором удаления аккаунта.
func (s *Storage) ListMeasurementPhotoKeys(ctx context.Context, userPhone string) ([]string, error) {
	const op = "storage.ListMeasurementPhotoKeys"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT photo_key FROM measurements WHERE user_phone = $1 AND photo_key <> ''`
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

// RemoveAllMeasurements удаляет все мерки арендатора и возвращает количество
// удалённых строк.
func (s *Storage) RemoveAllMeasurements(ctx context.Context, userPhone string) (int, error) {
	const op = "storage.RemoveAllMeasurements"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM measurements WHERE user_phone = $1`, userPhone)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
