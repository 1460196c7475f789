// Package livekit mints LiveKit access tokens locally. Join credentials are
// HMAC-signed with the platform API secret; no network call is involved.
package livekit

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"roomapi/internal/lib/clockwork"
)

// VideoGrant mirrors the LiveKit video grant claim.
type VideoGrant struct {
	RoomJoin     bool   `json:"roomJoin"`
	Room         string `json:"room"`
	CanPublish   bool   `json:"canPublish"`
	CanSubscribe bool   `json:"canSubscribe"`
}

type accessClaims struct {
	Name  string     `json:"name,omitempty"`
	Video VideoGrant `json:"video"`
	jwt.RegisteredClaims
}

type Config struct {
	URL       string
	APIKey    string
	APISecret string
	TokenTTL  time.Duration
}

// Minter issues join tokens for rooms hosted on a LiveKit server.
type Minter struct {
	log    *slog.Logger
	clock  clockwork.Clock
	url    string
	key    string
	secret string
	ttl    time.Duration
}

func New(log *slog.Logger, clock clockwork.Clock, cfg Config) (*Minter, error) {
	if err := validate(log, cfg); err != nil {
		return nil, err
	}

	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &Minter{
		log:    log,
		clock:  clock,
		url:    cfg.URL,
		key:    cfg.APIKey,
		secret: cfg.APISecret,
		ttl:    ttl,
	}, nil
}

func validate(log *slog.Logger, cfg Config) error {
	if cfg.URL == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return errors.New("livekit url, api key and api secret are required")
	}
	if !strings.HasPrefix(cfg.URL, "wss://") && !strings.HasPrefix(cfg.URL, "ws://") && !strings.HasPrefix(cfg.URL, "https://") {
		return fmt.Errorf("livekit url must start with wss:// or https://, got %q", cfg.URL)
	}
	if len(cfg.APISecret) < 32 {
		log.Warn("livekit api secret is shorter than the recommended 32 bytes",
			slog.Int("length", len(cfg.APISecret)))
	}
	return nil
}

// MintJoinToken mints a join token scoped to a single room for identity.
func (m *Minter) MintJoinToken(room, identity, name string, canPublish, canSubscribe bool) (string, error) {
	now := m.clock.Now()

	claims := accessClaims{
		Name: name,
		Video: VideoGrant{
			RoomJoin:     true,
			Room:         room,
			CanPublish:   canPublish,
			CanSubscribe: canSubscribe,
		},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.key,
			Subject:   identity,
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.secret))
	if err != nil {
		return "", fmt.Errorf("livekit: sign join token: %w", err)
	}

	return signed, nil
}

// WSURL is the websocket endpoint clients connect to with a join token.
func (m *Minter) WSURL() string {
	return m.url
}
