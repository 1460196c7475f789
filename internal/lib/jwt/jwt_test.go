package jwt

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomapi/internal/domain/models"
)

var secret = []byte("0123456789abcdef0123456789abcdef")

func record() models.SessionToken {
	issued := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return models.SessionToken{
		ID:          "tok-1",
		Owner:       "u1",
		DisplayName: "User One",
		IssuedAt:    issued,
		ExpiresAt:   issued.Add(time.Hour),
	}
}

func TestNewTokenAndParse(t *testing.T) {
	signed, err := NewToken(record(), secret)
	require.NoError(t, err)

	claims, err := ParseToken(signed, secret)
	require.NoError(t, err)

	assert.Equal(t, "tok-1", claims.ID)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "User One", claims.DisplayName)
	assert.True(t, claims.Expires().Equal(record().ExpiresAt))
}

func TestNewToken_IncompleteRecord(t *testing.T) {
	_, err := NewToken(models.SessionToken{}, secret)
	require.Error(t, err)
}

func TestParseToken_TamperedPayload(t *testing.T) {
	signed, err := NewToken(record(), secret)
	require.NoError(t, err)

	parts := strings.Split(signed, ".")
	require.Len(t, parts, 3)

	// flip a byte in the payload segment
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	_, err = ParseToken(tampered, secret)
	require.Error(t, err)
}

func TestParseToken_WrongSecret(t *testing.T) {
	signed, err := NewToken(record(), secret)
	require.NoError(t, err)

	_, err = ParseToken(signed, []byte("another-secret-another-secret-00"))
	require.Error(t, err)
}

func TestParseToken_ExpiredStillParses(t *testing.T) {
	expired := record()
	expired.IssuedAt = time.Now().Add(-2 * time.Hour)
	expired.ExpiresAt = time.Now().Add(-time.Hour)

	signed, err := NewToken(expired, secret)
	require.NoError(t, err)

	// expiry is the auth service's call, not the codec's
	claims, err := ParseToken(signed, secret)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", claims.ID)
}
