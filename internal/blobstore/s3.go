// Package blobstore реализует хранилище изображений поверх S3-совместимого
// сервиса (MinIO в разработке). Каждая загрузка получает устойчивый к
// коллизиям ключ; канонический ключ сохраняется в базе рядом с публичным URL,
// поэтому при удалении ключ никогда не восстанавливается из URL.
package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/atelier-backoffice/internal/config"
	"github.com/magabrotheeeer/atelier-backoffice/internal/errs"
)

// Store инкапсулирует клиент S3 и настройки бакета.
type Store struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
}

// New создаёт клиент S3 по настройкам из конфига.
func New(ctx context.Context, cfg config.BlobStore) (*Store, error) {
	const op = "blobstore.New"

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKey,
			cfg.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return &Store{
		client:        client,
		bucket:        cfg.S3Bucket,
		publicBaseURL: strings.TrimSuffix(cfg.PublicBaseURL, "/"),
	}, nil
}

// Put загружает изображение и возвращает канонический ключ и публичный URL.
// Ключ формируется из logicalPath и uuid, коллизии исключены. Ошибка загрузки
// фатальна для вызывающей операции.
func (s *Store) Put(ctx context.Context, data []byte, logicalPath, contentType string) (string, string, error) {
	const op = "blobstore.Put"

	key := fmt.Sprintf("%s/%s", strings.Trim(logicalPath, "/"), uuid.New())
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", "", fmt.Errorf("%s: %w: %w", op, errs.ErrUpstream, err)
	}

	publicURL := fmt.Sprintf("%s/%s/%s", s.publicBaseURL, s.bucket, key)
	return key, publicURL, nil
}

// Delete удаляет объект по каноническому ключу. Вызывающие стороны
// рассматривают ошибку как некритичную: логируют и продолжают.
func (s *Store) Delete(ctx context.Context, key string) error {
	const op = "blobstore.Delete"

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, errs.ErrUpstream, err)
	}
	return nil
}
