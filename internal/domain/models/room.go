package models

import "time"

type RoomStatus string

const (
	RoomActive  RoomStatus = "active"
	RoomExpired RoomStatus = "expired"
)

// Room is a named, time-bounded resource. Expiry is derived from the
// timestamps at read time; nothing depends on the sweeper having run.
type Room struct {
	Name      string
	AgentName string
	Owner     string
	CreatedAt time.Time
	TTL       time.Duration
	ExpiresAt time.Time
}

func (r Room) Status(now time.Time) RoomStatus {
	if !now.Before(r.ExpiresAt) {
		return RoomExpired
	}
	return RoomActive
}

func (r Room) Expired(now time.Time) bool {
	return r.Status(now) == RoomExpired
}
