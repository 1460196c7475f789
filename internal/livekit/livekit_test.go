package livekit

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomapi/internal/lib/clockwork"
)

var testConfig = Config{
	URL:       "wss://livekit.example",
	APIKey:    "APIxyz",
	APISecret: "0123456789abcdef0123456789abcdef",
	TokenTTL:  time.Hour,
}

func newMinter(t *testing.T) (*Minter, *clockwork.Fake) {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := clockwork.NewFake(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	minter, err := New(log, clock, testConfig)
	require.NoError(t, err)

	return minter, clock
}

func TestNew_Validation(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := clockwork.Real()

	_, err := New(log, clock, Config{})
	require.Error(t, err)

	bad := testConfig
	bad.URL = "ftp://livekit.example"
	_, err = New(log, clock, bad)
	require.Error(t, err)

	// short secret only warns
	short := testConfig
	short.APISecret = "short"
	_, err = New(log, clock, short)
	require.NoError(t, err)
}

func TestMintJoinToken(t *testing.T) {
	minter, clock := newMinter(t)

	signed, err := minter.MintJoinToken("room-1", "u1", "User One", true, false)
	require.NoError(t, err)

	var claims accessClaims
	parsed, err := jwt.ParseWithClaims(signed, &claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(testConfig.APISecret), nil
	}, jwt.WithTimeFunc(clock.Now))
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	assert.Equal(t, testConfig.APIKey, claims.Issuer)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "User One", claims.Name)
	assert.True(t, claims.Video.RoomJoin)
	assert.Equal(t, "room-1", claims.Video.Room)
	assert.True(t, claims.Video.CanPublish)
	assert.False(t, claims.Video.CanSubscribe)
	assert.True(t, claims.ExpiresAt.Time.Equal(clock.Now().Add(time.Hour)))
}

func TestWSURL(t *testing.T) {
	minter, _ := newMinter(t)
	assert.Equal(t, "wss://livekit.example", minter.WSURL())
}
