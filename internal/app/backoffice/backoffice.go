package backoffice

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/atelier-backoffice/internal/blobstore"
	"github.com/magabrotheeeer/atelier-backoffice/internal/cache"
	"github.com/magabrotheeeer/atelier-backoffice/internal/config"
	"github.com/magabrotheeeer/atelier-backoffice/internal/lib/jwt"
	"github.com/magabrotheeeer/atelier-backoffice/internal/migrations"
	"github.com/magabrotheeeer/atelier-backoffice/internal/paymentprovider"
	"github.com/magabrotheeeer/atelier-backoffice/internal/push"
	accountservice "github.com/magabrotheeeer/atelier-backoffice/internal/services/account"
	authservice "github.com/magabrotheeeer/atelier-backoffice/internal/services/auth"
	broadcastservice "github.com/magabrotheeeer/atelier-backoffice/internal/services/broadcast"
	customerservice "github.com/magabrotheeeer/atelier-backoffice/internal/services/customer"
	measurementservice "github.com/magabrotheeeer/atelier-backoffice/internal/services/measurement"
	notificationservice "github.com/magabrotheeeer/atelier-backoffice/internal/services/notification"
	orderservice "github.com/magabrotheeeer/atelier-backoffice/internal/services/order"
	subservice "github.com/magabrotheeeer/atelier-backoffice/internal/services/subscription"
	"github.com/magabrotheeeer/atelier-backoffice/internal/storage/repository"
)

// App — HTTP-приложение бэк-офиса.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
}

// New собирает приложение: хранилище, миграции, кэш, внешние клиенты,
// сервисы и маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	blobs, err := blobstore.New(ctx, cfg.BlobStore)
	if err != nil {
		return nil, err
	}

	providerClient := paymentprovider.NewClient(cfg.GatewayBaseURL, cfg.GatewaySecret)
	pushClient := push.NewClient(cfg.PushEndpoint, cfg.PushServerKey)
	maker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	svc := Services{
		Auth:         authservice.New(db, maker, logger),
		Subscription: subservice.New(db, db, providerClient, cfg.Currency, cfg.RedirectURL, logger),
		Account:      accountservice.New(db, blobs, cacheRedis, logger),
		Broadcast:    broadcastservice.New(db, pushClient, logger),
		Customer:     customerservice.New(db, blobs, cacheRedis, logger),
		Order:        orderservice.New(db, blobs, logger),
		Measurement:  measurementservice.New(db, blobs, logger),
		Notification: notificationservice.New(db, logger),
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, svc, maker, db)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его по отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if closeErr := a.db.DB.Close(); closeErr != nil {
			a.logger.Error("failed to close database", slog.Any("err", closeErr))
		}
		return err
	}
}
