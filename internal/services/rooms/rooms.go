package rooms

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"roomapi/internal/domain/models"
	"roomapi/internal/lib/logger/sl"
	"roomapi/internal/services/auth"
	"roomapi/internal/storage"
)

var (
	ErrRoomNameTaken = errors.New("room name is already taken")
	ErrRoomNotFound  = errors.New("room not found")
	ErrInvalidTTL    = errors.New("room ttl must be positive")
	ErrUnknownAgent  = errors.New("unknown agent")
	ErrNotRoomOwner  = errors.New("caller does not own this room")

	// ErrJoinTokenMint means the room was committed but the join credential
	// could not be issued. Retrying token issuance alone is safe.
	ErrJoinTokenMint = errors.New("failed to issue join token")
)

type Registry interface {
	Create(name, agentName, owner string, ttl time.Duration) (models.Room, error)
	Get(name string) (models.Room, error)
	Delete(name string) error
	List() []models.Room
}

type JoinTokenMinter interface {
	MintJoinToken(room, identity, name string, canPublish, canSubscribe bool) (string, error)
	WSURL() string
}

// RoomInfo is the public view of a created room plus its join credential.
type RoomInfo struct {
	Room      models.Room
	JoinToken string
	WSURL     string
}

// JoinCredential is a standalone join token for an existing room.
type JoinCredential struct {
	Token    string
	WSURL    string
	RoomName string
	UserID   string
}

// Rooms is the authenticated, business-level facade over the room registry
// and the media platform. Callers reach it only through the request gate, so
// every identity it receives has already been validated.
type Rooms struct {
	log          *slog.Logger
	registry     Registry
	minter       JoinTokenMinter
	agents       map[string]models.Agent
	defaultTTL   time.Duration
	requireOwner bool
}

func New(
	log *slog.Logger,
	registry Registry,
	minter JoinTokenMinter,
	agents []models.Agent,
	defaultTTL time.Duration,
	requireOwner bool,
) *Rooms {
	byName := make(map[string]models.Agent, len(agents))
	for _, agent := range agents {
		byName[agent.Name] = agent
	}

	return &Rooms{
		log:          log,
		registry:     registry,
		minter:       minter,
		agents:       byName,
		defaultTTL:   defaultTTL,
		requireOwner: requireOwner,
	}
}

// CreateRoom registers a room for agentName owned by the caller and mints a
// join token for them. When roomName is empty a name is derived as
// room-{agent}-{8 hex chars}. A zero ttl falls back to the configured
// default; negative values are rejected.
//
// If the join token cannot be minted the room stays committed and the error
// wraps ErrJoinTokenMint.
func (r *Rooms) CreateRoom(ctx context.Context, caller auth.Identity, agentName, roomName string, ttl time.Duration) (RoomInfo, error) {
	const op = "rooms.CreateRoom"

	log := r.log.With(
		slog.String("op", op),
		slog.String("owner", caller.Owner),
		slog.String("agent", agentName),
	)

	if _, ok := r.agents[agentName]; !ok {
		return RoomInfo{}, fmt.Errorf("%s: %w", op, ErrUnknownAgent)
	}

	if roomName == "" {
		roomName = fmt.Sprintf("room-%s-%s", agentName, shortID())
	}
	if ttl == 0 {
		ttl = r.defaultTTL
	}

	room, err := r.registry.Create(roomName, agentName, caller.Owner, ttl)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrRoomExists):
			return RoomInfo{}, fmt.Errorf("%s: %w", op, ErrRoomNameTaken)
		case errors.Is(err, storage.ErrInvalidTTL):
			return RoomInfo{}, fmt.Errorf("%s: %w", op, ErrInvalidTTL)
		default:
			log.Error("failed to create room", sl.Err(err))
			return RoomInfo{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	log.Info("room created",
		slog.String("room", room.Name),
		slog.Duration("ttl", room.TTL),
	)

	joinToken, err := r.minter.MintJoinToken(room.Name, caller.Owner, caller.DisplayName, true, true)
	if err != nil {
		log.Error("failed to mint join token", sl.Err(err), slog.String("room", room.Name))
		return RoomInfo{Room: room}, fmt.Errorf("%s: %w", op, ErrJoinTokenMint)
	}

	return RoomInfo{
		Room:      room,
		JoinToken: joinToken,
		WSURL:     r.minter.WSURL(),
	}, nil
}

func (r *Rooms) GetRoom(ctx context.Context, caller auth.Identity, name string) (models.Room, error) {
	const op = "rooms.GetRoom"

	room, err := r.registry.Get(name)
	if err != nil {
		if errors.Is(err, storage.ErrRoomNotFound) {
			return models.Room{}, fmt.Errorf("%s: %w", op, ErrRoomNotFound)
		}
		r.log.Error("failed to get room", slog.String("op", op), sl.Err(err))
		return models.Room{}, fmt.Errorf("%s: %w", op, err)
	}

	return room, nil
}

// DeleteRoom removes the room regardless of its expiry status. When the
// owner policy is enabled only the creating owner may delete it.
func (r *Rooms) DeleteRoom(ctx context.Context, caller auth.Identity, name string) error {
	const op = "rooms.DeleteRoom"

	log := r.log.With(
		slog.String("op", op),
		slog.String("owner", caller.Owner),
		slog.String("room", name),
	)

	if r.requireOwner {
		room, err := r.registry.Get(name)
		if err != nil {
			if errors.Is(err, storage.ErrRoomNotFound) {
				return fmt.Errorf("%s: %w", op, ErrRoomNotFound)
			}
			log.Error("failed to get room", sl.Err(err))
			return fmt.Errorf("%s: %w", op, err)
		}
		if room.Owner != caller.Owner {
			return fmt.Errorf("%s: %w", op, ErrNotRoomOwner)
		}
	}

	if err := r.registry.Delete(name); err != nil {
		if errors.Is(err, storage.ErrRoomNotFound) {
			return fmt.Errorf("%s: %w", op, ErrRoomNotFound)
		}
		log.Error("failed to delete room", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("room deleted")

	return nil
}

func (r *Rooms) ListRooms(ctx context.Context, caller auth.Identity) []models.Room {
	return r.registry.List()
}

// MintJoinToken issues a join credential for an existing Active room. When
// userID is empty one is generated as user-{8 hex chars}.
func (r *Rooms) MintJoinToken(ctx context.Context, caller auth.Identity, roomName, userID string, canPublish, canSubscribe bool) (JoinCredential, error) {
	const op = "rooms.MintJoinToken"

	log := r.log.With(
		slog.String("op", op),
		slog.String("room", roomName),
	)

	room, err := r.registry.Get(roomName)
	if err != nil {
		if errors.Is(err, storage.ErrRoomNotFound) {
			return JoinCredential{}, fmt.Errorf("%s: %w", op, ErrRoomNotFound)
		}
		log.Error("failed to get room", sl.Err(err))
		return JoinCredential{}, fmt.Errorf("%s: %w", op, err)
	}

	if userID == "" {
		userID = "user-" + shortID()
	}

	token, err := r.minter.MintJoinToken(room.Name, userID, "User-"+userID, canPublish, canSubscribe)
	if err != nil {
		log.Error("failed to mint join token", sl.Err(err))
		return JoinCredential{}, fmt.Errorf("%s: %w", op, ErrJoinTokenMint)
	}

	return JoinCredential{
		Token:    token,
		WSURL:    r.minter.WSURL(),
		RoomName: room.Name,
		UserID:   userID,
	}, nil
}

func (r *Rooms) Agents() []models.Agent {
	agents := make([]models.Agent, 0, len(r.agents))
	for _, agent := range r.agents {
		agents = append(agents, agent)
	}
	return agents
}

func shortID() string {
	return fmt.Sprintf("%x", uuid.New())[:8]
}
