package middleware

import (
	"context"
	"net/http"
	"strings"

	apierrors "github.com/the-dramaturgy/dramaturgy-service/internal/errors"
	"github.com/the-dramaturgy/dramaturgy-service/internal/models"
)

// TokenValidator проверяет access-токен и восстанавливает актора.
type TokenValidator interface {
	ValidateAccessToken(token string) (models.Actor, error)
}

// AuthBearer извлекает Bearer-токен из Authorization, валидирует его
// и кладёт models.Actor в контекст по ключу CtxActor.
//
// Запрос без заголовка проходит дальше анонимным: решение о том,
// обязательна ли аутентификация, принимает сервисный слой per-операция.
// Предъявленный, но битый/просроченный токен отклоняется сразу (401) —
// молчаливый даунгрейд до анонима скрывал бы протухшую сессию от клиента.
func AuthBearer(v TokenValidator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				next.ServeHTTP(w, r)
				return
			}

			const prefix = "Bearer "
			if !strings.HasPrefix(auth, prefix) || len(auth) <= len(prefix) {
				next.ServeHTTP(w, r)
				return
			}

			token := strings.TrimSpace(auth[len(prefix):])
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			actor, err := v.ValidateAccessToken(token)
			if err != nil {
				apierrors.WriteError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), CtxActor, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorFromContext возвращает актора запроса; нулевое значение — аноним.
func ActorFromContext(ctx context.Context) models.Actor {
	if a, ok := ctx.Value(CtxActor).(models.Actor); ok {
		return a
	}
	return models.Actor{}
}
