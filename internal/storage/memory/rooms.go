package memory

import (
	"fmt"
	"sync"
	"time"

	"roomapi/internal/domain/models"
	"roomapi/internal/lib/clockwork"
	"roomapi/internal/storage"
)

// RoomRegistry holds active rooms keyed by name. A room whose expiry has
// passed behaves as absent on every read path even before the sweeper has
// physically removed it.
type RoomRegistry struct {
	clock clockwork.Clock
	mu    sync.RWMutex
	rooms map[string]*models.Room
}

func NewRoomRegistry(clock clockwork.Clock) *RoomRegistry {
	return &RoomRegistry{
		clock: clock,
		rooms: make(map[string]*models.Room),
	}
}

// Create inserts a room under name. An Active room under the same name fails
// with ErrRoomExists; an expired one is silently replaced.
func (r *RoomRegistry) Create(name, agentName, owner string, ttl time.Duration) (models.Room, error) {
	const op = "storage.memory.RoomRegistry.Create"

	if ttl <= 0 {
		return models.Room{}, fmt.Errorf("%s: %w", op, storage.ErrInvalidTTL)
	}

	now := r.clock.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.rooms[name]; ok && !existing.Expired(now) {
		return models.Room{}, fmt.Errorf("%s: %w", op, storage.ErrRoomExists)
	}

	room := models.Room{
		Name:      name,
		AgentName: agentName,
		Owner:     owner,
		CreatedAt: now,
		TTL:       ttl,
		ExpiresAt: now.Add(ttl),
	}
	r.rooms[name] = &room

	return room, nil
}

func (r *RoomRegistry) Get(name string) (models.Room, error) {
	const op = "storage.memory.RoomRegistry.Get"

	now := r.clock.Now()

	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[name]
	if !ok || room.Expired(now) {
		return models.Room{}, fmt.Errorf("%s: %w", op, storage.ErrRoomNotFound)
	}

	return *room, nil
}

// Delete removes the entry unconditionally if present, expired or not.
func (r *RoomRegistry) Delete(name string) error {
	const op = "storage.memory.RoomRegistry.Delete"

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[name]; !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrRoomNotFound)
	}
	delete(r.rooms, name)

	return nil
}

// List returns a snapshot of all Active rooms.
func (r *RoomRegistry) List() []models.Room {
	now := r.clock.Now()

	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := make([]models.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		if !room.Expired(now) {
			rooms = append(rooms, *room)
		}
	}

	return rooms
}

// Sweep physically removes expired entries. Memory reclamation only;
// Get and Create never depend on it having run.
func (r *RoomRegistry) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for name, room := range r.rooms {
		if room.Expired(now) {
			delete(r.rooms, name)
			removed++
		}
	}

	return removed
}

func (r *RoomRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
