// Package backoffice собирает HTTP-приложение бэк-офиса ателье:
// маршруты, middleware и зависимости всех обработчиков.
package backoffice

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	accountremove "github.com/magabrotheeeer/atelier-backoffice/internal/http/handlers/account/remove"
	"github.com/magabrotheeeer/atelier-backoffice/internal/http/handlers/account/removebyphone"
	"github.com/magabrotheeeer/atelier-backoffice/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/atelier-backoffice/internal/http/handlers/auth/register"
	broadcastsend "github.com/magabrotheeeer/atelier-backoffice/internal/http/handlers/broadcast/send"
	customercreate "github.com/magabrotheeeer/atelier-backoffice/internal/http/handlers/customer/create"
	customerlist "github.com/magabrotheeeer/atelier-backoffice/internal/http/handlers/customer/list"
	customerread "github.com/magabrotheeeer/atelier-backoffice/internal/http/handlers/customer/read"
	customerremove "github.com/magabrotheeeer/atelier-backoffice/internal/http/handlers/customer/remove"
	customerupdate "github.com/magabrotheeeer/atelier-backoffice/internal/http/handlers/customer/update"
	"github.com/magabrotheeeer/atelier-backoffice/internal/http/handlers/health"
	measurementcreate "github.com/magabrotheeeer/atelier-backoffice/internal/http/handlers/measurement/create"
	measurementlist "github.com/magabrotheeeer/atelier-backoffice/internal/http/handlers/measurement/list"
	measurementread "github.com/magabrotheeeer/atelier-backoffice/internal/http/handlers/measurement/read"
	notificationlist "github.com/magabrotheeeer/atelier-backoffice/internal/http/handlers/notification/list"
	"github.com/magabrotheeeer/atelier-backoffice/internal/http/handlers/notification/markread"
	"github.com/magabrotheeeer/atelier-backoffice/internal/http/handlers/order/addimage"
	ordercreate "github.com/magabrotheeeer/atelier-backoffice/internal/http/handlers/order/create"
	orderlist "github.com/magabrotheeeer/atelier-backoffice/internal/http/handlers/order/list"
	"github.com/magabrotheeeer/atelier-backoffice/internal/http/handlers/order/updatestatus"
	paymentlist "github.com/magabrotheeeer/atelier-backoffice/internal/http/handlers/payment/list"
	"github.com/magabrotheeeer/atelier-backoffice/internal/http/handlers/payment/webhook"
	"github.com/magabrotheeeer/atelier-backoffice/internal/http/handlers/subscription/override"
	"github.com/magabrotheeeer/atelier-backoffice/internal/http/handlers/subscription/pay"
	"github.com/magabrotheeeer/atelier-backoffice/internal/http/handlers/subscription/status"
	"github.com/magabrotheeeer/atelier-backoffice/internal/http/middlewarectx"
	"github.com/magabrotheeeer/atelier-backoffice/internal/lib/jwt"
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

// Services объединяет сервисы, которые нужны маршрутам приложения.
type Services struct {
	Auth          *authservice.Service
	Subscription  *subservice.Service
	Account       *accountservice.Service
	Broadcast     *broadcastservice.Service
	Customer      *customerservice.Service
	Order         *orderservice.Service
	Measurement   *measurementservice.Service
	Notification  *notificationservice.Service
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, svc Services, maker jwt.Maker, db *repository.Storage) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, svc.Auth).ServeHTTP)
		r.Post("/login", login.New(logger, svc.Auth).ServeHTTP)
		r.Post("/payments/webhook", webhook.New(logger, svc.Subscription).ServeHTTP)
		// Удаление по номеру без аутентификации: канал поддержки для
		// пользователей, потерявших доступ к аккаунту.
		r.Delete("/account/by-phone", removebyphone.New(logger, svc.Account).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(maker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger, 10, 20))

			// Доступно и с истекшей подпиской: статус, оплата,
			// история платежей и удаление аккаунта.
			r.Get("/subscription/status", status.New(logger, svc.Subscription).ServeHTTP)
			r.Post("/subscription/pay", pay.New(logger, svc.Subscription).ServeHTTP)
			r.Get("/payments", paymentlist.New(logger, svc.Subscription).ServeHTTP)
			r.Delete("/account", accountremove.New(logger, svc.Account).ServeHTTP)

			// Только для администраторов
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.AdminOnlyMiddleware(logger))
				r.Post("/broadcast", broadcastsend.New(logger, svc.Broadcast).ServeHTTP)
				r.Post("/subscription/override", override.New(logger, svc.Subscription).ServeHTTP)
			})

			// Рабочие данные ателье закрыты проверкой подписки
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.SubscriptionStatusMiddleware(logger, svc.Subscription))

				r.Post("/customers", customercreate.New(logger, svc.Customer).ServeHTTP)
				r.Get("/customers", customerlist.New(logger, svc.Customer).ServeHTTP)
				r.Get("/customers/{id}", customerread.New(logger, svc.Customer).ServeHTTP)
				r.Put("/customers/{id}", customerupdate.New(logger, svc.Customer).ServeHTTP)
				r.Delete("/customers/{id}", customerremove.New(logger, svc.Customer).ServeHTTP)

				r.Post("/orders", ordercreate.New(logger, svc.Order).ServeHTTP)
				r.Get("/orders", orderlist.New(logger, svc.Order).ServeHTTP)
				r.Post("/orders/{id}/status", updatestatus.New(logger, svc.Order).ServeHTTP)
				r.Post("/orders/{id}/images", addimage.New(logger, svc.Order).ServeHTTP)

				r.Post("/measurements", measurementcreate.New(logger, svc.Measurement).ServeHTTP)
				r.Get("/measurements", measurementlist.New(logger, svc.Measurement).ServeHTTP)
				r.Get("/measurements/{id}", measurementread.New(logger, svc.Measurement).ServeHTTP)

				r.Get("/notifications", notificationlist.New(logger, svc.Notification).ServeHTTP)
				r.Post("/notifications/{id}/read", markread.New(logger, svc.Notification).ServeHTTP)
			})
		})
	})

	r.Get("/health", health.New(logger, db).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
