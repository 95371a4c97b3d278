package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/atelier-backoffice/internal/http/response"
	"github.com/magabrotheeeer/atelier-backoffice/internal/lib/sl"
	"github.com/magabrotheeeer/atelier-backoffice/internal/models"
)

// SubscriptionService описывает интерфейс для проверки статуса подписки.
type SubscriptionService interface {
	GetSubscriptionStatus(ctx context.Context, phone string) (string, error)
}

// SubscriptionStatusMiddleware создает middleware, закрывающее маршруты
// от арендаторов с истекшей подпиской. Маршруты оплаты и статуса под это
// middleware не ставятся, иначе истекший арендатор не сможет продлиться.
func SubscriptionStatusMiddleware(log *slog.Logger, subService SubscriptionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			phone, ok := r.Context().Value(UserPhone).(string)
			if !ok || phone == "" {
				log.Error("user identification missing")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("user identification missing"))
				return
			}

			status, err := subService.GetSubscriptionStatus(r.Context(), phone)
			if err != nil {
				log.Error("failed to get subscription status", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal service error"))
				return
			}

			if status == models.StatusExpired {
				log.Warn("subscription expired, access denied",
					slog.String("user_phone", phone))
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("subscription expired, access denied"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AdminOnlyMiddleware пропускает только запросы с ролью администратора.
func AdminOnlyMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := r.Context().Value(Role).(string)
			if !ok || role != models.RoleAdmin {
				log.Warn("admin-only route denied", slog.String("role", role))
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("admin access required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
