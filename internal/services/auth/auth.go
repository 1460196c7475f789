package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"roomapi/internal/domain/models"
	"roomapi/internal/lib/clockwork"
	"roomapi/internal/lib/jwt"
	"roomapi/internal/lib/logger/sl"
	"roomapi/internal/storage"
)

var (
	ErrMalformedToken = errors.New("token is malformed or has a bad signature")
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenRevoked   = errors.New("token has been revoked")
	ErrTokenNotFound  = errors.New("token is not known to this server")
)

// Identity is the validated caller attached to downstream requests.
type Identity struct {
	Owner       string
	DisplayName string
}

type TokenStore interface {
	Issue(owner, displayName string, ttl time.Duration) models.SessionToken
	Find(id string) (models.SessionToken, error)
	Revoke(id string) error
}

// Auth issues, validates, and revokes signed session tokens. The signing
// secret is fixed for the process lifetime.
type Auth struct {
	log    *slog.Logger
	store  TokenStore
	clock  clockwork.Clock
	secret []byte
	ttl    time.Duration
}

func New(log *slog.Logger, store TokenStore, clock clockwork.Clock, secret []byte, ttl time.Duration) *Auth {
	return &Auth{
		log:    log,
		store:  store,
		clock:  clock,
		secret: secret,
		ttl:    ttl,
	}
}

// Login issues a new session token for owner and returns its signed form.
// It always succeeds; distinct logins for the same owner are independent.
func (a *Auth) Login(ctx context.Context, owner, displayName string) (string, time.Time, error) {
	const op = "auth.Login"

	log := a.log.With(
		slog.String("op", op),
		slog.String("owner", owner),
	)

	record := a.store.Issue(owner, displayName, a.ttl)

	signed, err := jwt.NewToken(record, a.secret)
	if err != nil {
		log.Error("failed to sign token", sl.Err(err))
		return "", time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("session token issued", slog.String("token_id", record.ID))

	return signed, record.ExpiresAt, nil
}

// Validate checks the signature, expiry, and revocation status of a signed
// token and returns the caller it was issued for.
func (a *Auth) Validate(ctx context.Context, signed string) (Identity, error) {
	const op = "auth.Validate"

	record, err := a.check(signed)
	if err != nil {
		return Identity{}, fmt.Errorf("%s: %w", op, err)
	}

	return Identity{Owner: record.Owner, DisplayName: record.DisplayName}, nil
}

// Logout validates the token and revokes it. Logging out twice fails on the
// second call with ErrTokenRevoked: validation rejects the already-revoked
// token before the store is touched again.
func (a *Auth) Logout(ctx context.Context, signed string) error {
	const op = "auth.Logout"

	log := a.log.With(slog.String("op", op))

	record, err := a.check(signed)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := a.store.Revoke(record.ID); err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			return fmt.Errorf("%s: %w", op, ErrTokenNotFound)
		}
		log.Error("failed to revoke token", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("session token revoked", slog.String("token_id", record.ID))

	return nil
}

// check runs the full validation chain and returns the live store record.
//
// Expiry is checked against both the decoded claims and the store record:
// the claims are canonical, the store additionally carries revocation state.
func (a *Auth) check(signed string) (models.SessionToken, error) {
	claims, err := jwt.ParseToken(signed, a.secret)
	if err != nil {
		a.log.Info("rejected malformed token", sl.Err(err))
		return models.SessionToken{}, ErrMalformedToken
	}

	now := a.clock.Now()
	if !now.Before(claims.Expires()) {
		return models.SessionToken{}, ErrTokenExpired
	}

	record, err := a.store.Find(claims.ID)
	if err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			return models.SessionToken{}, ErrTokenNotFound
		}
		a.log.Error("failed to look up token", sl.Err(err))
		return models.SessionToken{}, err
	}

	if record.Revoked {
		return models.SessionToken{}, ErrTokenRevoked
	}
	if record.Expired(now) {
		return models.SessionToken{}, ErrTokenExpired
	}

	return record, nil
}

// NewSecret generates a signing secret for processes started without an
// explicit one. Tokens do not survive a restart either way.
func NewSecret() ([]byte, error) {
	const secretSize = 32
	secret := make([]byte, secretSize)

	if _, err := rand.Read(secret); err != nil {
		return nil, err
	}

	out := make([]byte, base64.URLEncoding.EncodedLen(secretSize))
	base64.URLEncoding.Encode(out, secret)

	return out, nil
}
