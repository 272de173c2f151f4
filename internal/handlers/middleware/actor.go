// internal/handlers/middleware/actor.go
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ammerola/fieldstock-be/internal/core/domain"
	"github.com/ammerola/fieldstock-be/internal/pkg/logger"
)

// Identity headers set by the upstream gateway after authentication
const (
	HeaderActorID           = "X-Actor-ID"
	HeaderActorCenterID     = "X-Actor-Center-ID"
	HeaderActorCapabilities = "X-Actor-Capabilities"
)

type actorCtxKey struct{}

// WithActor stores actor in ctx
func WithActor(ctx context.Context, actor *domain.Actor) context.Context {
	return context.WithValue(ctx, actorCtxKey{}, actor)
}

// ActorFromContext returns the actor resolved by the Actor middleware
func ActorFromContext(ctx context.Context) (*domain.Actor, bool) {
	actor, ok := ctx.Value(actorCtxKey{}).(*domain.Actor)
	return actor, ok && actor != nil
}

// Actor resolves the calling actor from the identity headers once per
// request. Requests without a usable identity are rejected with 401.
func Actor(slogger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, reason := parseActor(r)
			if actor == nil {
				slogger.WarnContext(r.Context(), "request rejected without actor",
					slog.String("reason", reason),
					slog.String("path", r.URL.Path))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"success":false,"error":"` + reason + `","code":"UNAUTHENTICATED"}`))
				return
			}

			ctx := WithActor(r.Context(), actor)
			ctx = context.WithValue(ctx, logger.ContextKeyActorID, actor.ID)
			if actor.CenterID != uuid.Nil {
				ctx = context.WithValue(ctx, logger.ContextKeyCenterID, actor.CenterID.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func parseActor(r *http.Request) (*domain.Actor, string) {
	id := strings.TrimSpace(r.Header.Get(HeaderActorID))
	if id == "" {
		return nil, "actor identity required"
	}

	center := uuid.Nil
	if raw := strings.TrimSpace(r.Header.Get(HeaderActorCenterID)); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return nil, "invalid actor center"
		}
		center = parsed
	}

	grants, err := domain.ParseGrants(r.Header.Get(HeaderActorCapabilities))
	if err != nil {
		return nil, "invalid actor capabilities"
	}

	return domain.NewActor(id, center, grants), ""
}
