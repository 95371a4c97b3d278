// Package sweeper собирает фоновое приложение обхода заказов:
// подключение к брокеру, хранилищу и периодический запуск прохода.
package sweeper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/atelier-backoffice/internal/config"
	"github.com/magabrotheeeer/atelier-backoffice/internal/models"
	"github.com/magabrotheeeer/atelier-backoffice/internal/rabbitmq"
	sweeperservice "github.com/magabrotheeeer/atelier-backoffice/internal/services/sweeper"
	"github.com/magabrotheeeer/atelier-backoffice/internal/storage/repository"
)

// sweepInterval — период между проходами по зависшим заказам.
const sweepInterval = time.Hour

// App представляет приложение обхода заказов.
type App struct {
	sweeperService *sweeperservice.Service
	conn           *amqp.Connection
	ch             *amqp.Channel
	logger         *slog.Logger
}

// reminderPublisher публикует события напоминаний в обмен уведомлений.
type reminderPublisher struct {
	ch *amqp.Channel
}

func (p *reminderPublisher) Publish(event models.ReminderEvent) error {
	return rabbitmq.PublishMessage(p.ch, rabbitmq.Exchange, rabbitmq.ReminderRoutingKey, event)
}

func waitForDB(ctx context.Context, db *repository.Storage) error {
	for range 10 {
		if err := db.CheckDatabaseReady(ctx); err == nil {
			return nil
		}
		time.Sleep(3 * time.Second)
	}
	return fmt.Errorf("database not ready after retries")
}

// New создает новый экземпляр приложения обхода.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.AMQPURL, cfg.ConnectRetries, cfg.ConnectDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	ch, err := rabbitmq.SetupChannel(conn)
	if err != nil {
		closeResources(nil, conn, logger)
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}

	if err := waitForDB(ctx, db); err != nil {
		closeResources(ch, conn, logger)
		return nil, err
	}

	sweeperService := sweeperservice.New(db, &reminderPublisher{ch: ch}, logger)

	return &App{
		sweeperService: sweeperService,
		conn:           conn,
		ch:             ch,
		logger:         logger,
	}, nil
}

func closeResources(ch *amqp.Channel, conn *amqp.Connection, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", "error", err)
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", "error", err)
		}
	}
}

// Run запускает периодический обход и блокируется до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	go a.sweeperService.Run(ctx, sweepInterval)

	<-ctx.Done()

	a.logger.Info("shutting down order sweeper")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}

	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}

	return nil
}
