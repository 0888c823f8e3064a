package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/caretrack/hospital-backend/internal/apperr"
)

const actorIDKey contextKey = "actor_id"

// AuthMiddleware verifies the gateway-issued HS256 bearer token and puts the
// token subject on the context as the acting user. Token issuance lives in
// the gateway; this layer only checks signature and expiry.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			const prefix = "Bearer "
			if !strings.HasPrefix(header, prefix) {
				writeError(w, apperr.Unauthorized("missing_token", "missing bearer token"))
				return
			}

			token, err := jwt.Parse(strings.TrimPrefix(header, prefix), func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				writeError(w, apperr.Unauthorized("invalid_token", "invalid or expired token"))
				return
			}

			subject, _ := token.Claims.GetSubject()
			ctx := context.WithValue(r.Context(), actorIDKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorID retrieves the authenticated subject from context.
func ActorID(ctx context.Context) string {
	if id, ok := ctx.Value(actorIDKey).(string); ok {
		return id
	}
	return ""
}
