package auth

import (
	"context"
	"fmt"
	"net/http"

	"ms-registration/internal/logger"
)

type contextKey string

const (
	userIDKey contextKey = "user_id"
	actorKey  contextKey = "actor"
)

// Middleware authenticates operator requests. With a nil verifier every
// request passes and acts as defaultActor.
func Middleware(v Verifier, defaultActor string, l *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if v == nil {
				next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), "", defaultActor)))
				return
			}

			rawToken, err := ExtractTokenFromRequest(r)
			if err != nil {
				l.LogSecurity("AUTH", fmt.Sprintf("%s %s rejected: %v", r.Method, r.URL.Path, err))
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}

			claims, err := v.Verify(r.Context(), rawToken)
			if err != nil {
				l.LogSecurity("AUTH", fmt.Sprintf("%s %s invalid token: %v", r.Method, r.URL.Path, err))
				http.Error(w, fmt.Sprintf("invalid token: %v", err), http.StatusUnauthorized)
				return
			}

			actor := claims.Actor()
			if actor == "" {
				actor = defaultActor
			}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), claims.Subject, actor)))
		})
	}
}

func WithActor(ctx context.Context, userID, actor string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, actorKey, actor)
}

func UserID(ctx context.Context) string {
	if uid, ok := ctx.Value(userIDKey).(string); ok {
		return uid
	}
	return ""
}

// Actor returns the operator name for ctx, or fallback outside authenticated routes.
func Actor(ctx context.Context, fallback string) string {
	if actor, ok := ctx.Value(actorKey).(string); ok && actor != "" {
		return actor
	}
	return fallback
}
