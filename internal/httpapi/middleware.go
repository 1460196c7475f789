package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"roomapi/internal/services/auth"
)

var (
	ErrMissingToken        = errors.New("authorization header is missing")
	ErrMalformedAuthHeader = errors.New("authorization header must be: Bearer <token>")
)

const bearerPrefix = "bearer "

type identityKeyType struct{}

var identityKey = identityKeyType{}

// TokenValidator is the slice of the auth service the request gate needs.
type TokenValidator interface {
	Validate(ctx context.Context, signed string) (auth.Identity, error)
}

// RequireAuth gates protected routes: it extracts the bearer token, asks the
// validator, and attaches the caller identity to the request context. Every
// failure answers 401; the envelope message carries the specific reason.
func RequireAuth(log *slog.Logger, validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := extractBearer(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			}

			identity, err := validator.Validate(r.Context(), token)
			if err != nil {
				log.Info("rejected request",
					slog.String("path", r.URL.Path),
					slog.String("reason", authReason(err)),
				)
				writeError(w, http.StatusUnauthorized, authReason(err))
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext returns the caller attached by RequireAuth.
func IdentityFromContext(ctx context.Context) (auth.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(auth.Identity)
	return identity, ok
}

func extractBearer(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", ErrMissingToken
	}
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", ErrMalformedAuthHeader
	}

	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" {
		return "", ErrMalformedAuthHeader
	}

	return token, nil
}

// authReason maps validation failures onto stable caller-facing messages
// while keeping the outward signal uniformly unauthenticated.
func authReason(err error) string {
	switch {
	case errors.Is(err, auth.ErrMalformedToken):
		return "token is malformed"
	case errors.Is(err, auth.ErrTokenExpired):
		return "token has expired"
	case errors.Is(err, auth.ErrTokenRevoked):
		return "token has been revoked"
	case errors.Is(err, auth.ErrTokenNotFound):
		return "token is not known to this server"
	default:
		return "unauthenticated"
	}
}
