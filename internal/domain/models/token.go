package models

import "time"

// SessionToken is the stored record behind a signed API token. The ID doubles
// as the lookup key and the JWT jti claim.
type SessionToken struct {
	ID          string
	Owner       string
	DisplayName string
	IssuedAt    time.Time
	ExpiresAt   time.Time
	Revoked     bool
}

func (t SessionToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
