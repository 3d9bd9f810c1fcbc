package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
)

type actorKey struct{}

// Auth извлекает вызывающего из заголовков X-User-ID и X-User-Role.
// Роль system через HTTP недоступна.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.Header.Get(HeaderUserID), 10, 64)
		if err != nil || id <= 0 {
			handlers.RespondUnauthorized(w)
			return
		}

		role := domain.ActorRole(r.Header.Get(HeaderUserRole))
		switch role {
		case domain.RolePatient, domain.RolePractitioner:
		default:
			handlers.RespondUnauthorized(w)
			return
		}

		ctx := WithActor(r.Context(), domain.Actor{ID: id, Role: role})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithActor кладёт вызывающего в контекст
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// GetActor возвращает вызывающего из контекста
func GetActor(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(domain.Actor)
	return actor, ok
}

// IsPractitionerSelf сообщает, что вызывающий является указанным специалистом
func IsPractitionerSelf(ctx context.Context, practitionerID int64) bool {
	actor, ok := GetActor(ctx)
	return ok && actor.Role == domain.RolePractitioner && actor.ID == practitionerID
}
