// Package sender собирает фоновое приложение доставки напоминаний:
// потребляет события из очереди, пишет уведомления и шлёт push.
package sender

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/atelier-backoffice/internal/config"
	"github.com/magabrotheeeer/atelier-backoffice/internal/push"
	"github.com/magabrotheeeer/atelier-backoffice/internal/rabbitmq"
	senderservice "github.com/magabrotheeeer/atelier-backoffice/internal/services/sender"
	"github.com/magabrotheeeer/atelier-backoffice/internal/storage/repository"
)

// App представляет приложение доставки напоминаний.
type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.Service
	logger        *slog.Logger
}

// New создает новый экземпляр приложения доставки.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}

	conn, err := rabbitmq.Connect(cfg.AMQPURL, cfg.ConnectRetries, cfg.ConnectDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	ch, err := rabbitmq.SetupChannel(conn)
	if err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			logger.Error("failed to close connection", slog.Any("err", closeErr))
		}
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	pushClient := push.NewClient(cfg.PushEndpoint, cfg.PushServerKey)
	senderService := senderservice.New(db, pushClient, logger)

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderService,
		logger:        logger,
	}, nil
}

// Run запускает потребителя очереди напоминаний и блокируется до
// отмены контекста.
func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumeMessages(ctx, a.ch, rabbitmq.ReminderQueue, func(body []byte) error {
		return a.senderService.HandleMessage(ctx, body)
	})
	if err != nil {
		a.logger.Error("failed to start reminder queue consumer", slog.Any("err", err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("notification sender shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}

	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}

	return nil
}
