package httpapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomapi/internal/services/auth"
)

type fakeValidator struct {
	identity auth.Identity
	err      error
}

func (v *fakeValidator) Validate(ctx context.Context, signed string) (auth.Identity, error) {
	if v.err != nil {
		return auth.Identity{}, v.err
	}
	return v.identity, nil
}

func gateRequest(t *testing.T, validator TokenValidator, header string) (*httptest.ResponseRecorder, bool) {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	reached := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, reached = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/rooms", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()

	RequireAuth(log, validator)(next).ServeHTTP(rec, req)

	return rec, reached
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	rec, reached := gateRequest(t, &fakeValidator{}, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, reached)
	assert.Contains(t, rec.Body.String(), "authorization header is missing")
}

func TestRequireAuth_MalformedHeader(t *testing.T) {
	for _, header := range []string{"Token abc", "Bearer", "Bearer   "} {
		rec, reached := gateRequest(t, &fakeValidator{}, header)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
		assert.False(t, reached, header)
	}
}

func TestRequireAuth_InvalidToken(t *testing.T) {
	cases := map[error]string{
		auth.ErrMalformedToken: "token is malformed",
		auth.ErrTokenExpired:   "token has expired",
		auth.ErrTokenRevoked:   "token has been revoked",
		auth.ErrTokenNotFound:  "token is not known to this server",
	}

	for sentinel, reason := range cases {
		rec, reached := gateRequest(t, &fakeValidator{err: sentinel}, "Bearer some-token")

		require.Equal(t, http.StatusUnauthorized, rec.Code, reason)
		assert.False(t, reached)
		assert.Contains(t, rec.Body.String(), reason)
	}
}

func TestRequireAuth_AttachesIdentity(t *testing.T) {
	validator := &fakeValidator{identity: auth.Identity{Owner: "u1", DisplayName: "User One"}}

	rec, reached := gateRequest(t, validator, "bearer some-token") // prefix is case-insensitive

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, reached)
}

func TestRequireAuth_WrappedError(t *testing.T) {
	wrapped := errors.New("storage exploded")
	rec, _ := gateRequest(t, &fakeValidator{err: wrapped}, "Bearer some-token")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "unauthenticated")
}
