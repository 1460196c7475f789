package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"roomapi/internal/domain/models"
	"roomapi/internal/lib/logger/sl"
	"roomapi/internal/services/auth"
	"roomapi/internal/services/rooms"
)

type AuthService interface {
	TokenValidator
	Login(ctx context.Context, owner, displayName string) (string, time.Time, error)
	Logout(ctx context.Context, signed string) error
}

type RoomService interface {
	CreateRoom(ctx context.Context, caller auth.Identity, agentName, roomName string, ttl time.Duration) (rooms.RoomInfo, error)
	GetRoom(ctx context.Context, caller auth.Identity, name string) (models.Room, error)
	DeleteRoom(ctx context.Context, caller auth.Identity, name string) error
	ListRooms(ctx context.Context, caller auth.Identity) []models.Room
	MintJoinToken(ctx context.Context, caller auth.Identity, roomName, userID string, canPublish, canSubscribe bool) (rooms.JoinCredential, error)
	Agents() []models.Agent
}

// Server holds the HTTP handlers. Request bodies decode into typed structs;
// unknown fields are ignored.
type Server struct {
	log   *slog.Logger
	auth  AuthService
	rooms RoomService
}

func NewServer(log *slog.Logger, authService AuthService, roomService RoomService) *Server {
	return &Server{
		log:   log,
		auth:  authService,
		rooms: roomService,
	}
}

type loginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
	UserID    string `json:"user_id"`
}

type logoutRequest struct {
	Token string `json:"token"`
}

type createRoomRequest struct {
	AgentName      string `json:"agent_name"`
	RoomName       string `json:"room_name"`
	TimeoutMinutes int    `json:"timeout_minutes"`
}

type roomView struct {
	RoomName       string `json:"room_name"`
	AgentName      string `json:"agent_name"`
	Owner          string `json:"owner,omitempty"`
	CreatedAt      string `json:"created_at"`
	TimeoutMinutes int    `json:"timeout_minutes"`
	ExpiresAt      string `json:"expires_at"`
}

type createRoomResponse struct {
	roomView
	JoinToken string `json:"join_token,omitempty"`
	WSURL     string `json:"ws_url,omitempty"`
}

type mintTokenRequest struct {
	RoomName     string `json:"room_name"`
	UserID       string `json:"user_id"`
	CanPublish   *bool  `json:"can_publish"`
	CanSubscribe *bool  `json:"can_subscribe"`
}

type mintTokenResponse struct {
	Token    string `json:"token"`
	WSURL    string `json:"ws_url"`
	RoomName string `json:"room_name"`
	UserID   string `json:"user_id"`
}

type agentView struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

// Login issues a session token for the caller named by the userId header.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	owner := r.Header.Get("userId")
	if owner == "" {
		writeError(w, http.StatusBadRequest, "userId header is required")
		return
	}
	displayName := r.Header.Get("displayName")

	token, expiresAt, err := s.auth.Login(r.Context(), owner, displayName)
	if err != nil {
		s.log.Error("login failed", sl.Err(err))
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	writeSuccess(w, loginResponse{
		Token:     token,
		ExpiresAt: expiresAt.Format(time.RFC3339),
		UserID:    owner,
	}, "login successful")
}

// Logout revokes the token carried in the request body.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	var req logoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		writeError(w, http.StatusUnauthorized, "token is required")
		return
	}

	if err := s.auth.Logout(r.Context(), req.Token); err != nil {
		writeError(w, http.StatusUnauthorized, authReason(err))
		return
	}

	writeSuccess(w, nil, "logout successful")
}

func (s *Server) CreateRoom(w http.ResponseWriter, r *http.Request) {
	caller, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ttl := time.Duration(req.TimeoutMinutes) * time.Minute

	info, err := s.rooms.CreateRoom(r.Context(), caller, req.AgentName, req.RoomName, ttl)
	if err != nil {
		s.writeRoomError(w, err)
		return
	}

	writeSuccess(w, createRoomResponse{
		roomView:  viewOf(info.Room),
		JoinToken: info.JoinToken,
		WSURL:     info.WSURL,
	}, "room created")
}

func (s *Server) GetRoom(w http.ResponseWriter, r *http.Request) {
	caller, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	room, err := s.rooms.GetRoom(r.Context(), caller, chi.URLParam(r, "roomName"))
	if err != nil {
		s.writeRoomError(w, err)
		return
	}

	writeSuccess(w, viewOf(room), "room found")
}

func (s *Server) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	caller, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	name := chi.URLParam(r, "roomName")
	if err := s.rooms.DeleteRoom(r.Context(), caller, name); err != nil {
		s.writeRoomError(w, err)
		return
	}

	writeSuccess(w, map[string]string{"room_name": name}, "room deleted")
}

func (s *Server) ListRooms(w http.ResponseWriter, r *http.Request) {
	caller, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	list := s.rooms.ListRooms(r.Context(), caller)
	views := make([]roomView, 0, len(list))
	for _, room := range list {
		views = append(views, viewOf(room))
	}

	writeSuccess(w, map[string]any{"rooms": views}, "rooms listed")
}

func (s *Server) MintToken(w http.ResponseWriter, r *http.Request) {
	caller, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	var req mintTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RoomName == "" {
		writeError(w, http.StatusBadRequest, "room_name is required")
		return
	}

	canPublish := req.CanPublish == nil || *req.CanPublish
	canSubscribe := req.CanSubscribe == nil || *req.CanSubscribe

	cred, err := s.rooms.MintJoinToken(r.Context(), caller, req.RoomName, req.UserID, canPublish, canSubscribe)
	if err != nil {
		s.writeRoomError(w, err)
		return
	}

	writeSuccess(w, mintTokenResponse{
		Token:    cred.Token,
		WSURL:    cred.WSURL,
		RoomName: cred.RoomName,
		UserID:   cred.UserID,
	}, "token minted")
}

func (s *Server) ListAgents(w http.ResponseWriter, r *http.Request) {
	agents := s.rooms.Agents()
	views := make([]agentView, 0, len(agents))
	for _, agent := range agents {
		views = append(views, agentView{Name: agent.Name, DisplayName: agent.DisplayName})
	}

	writeSuccess(w, map[string]any{"agents": views}, "agents listed")
}

// Health reports liveness and the number of active rooms. Unauthenticated.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, map[string]any{
		"status":       "healthy",
		"active_rooms": len(s.rooms.ListRooms(r.Context(), auth.Identity{})),
	}, "service is up")
}

func (s *Server) writeRoomError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, rooms.ErrRoomNameTaken):
		writeError(w, http.StatusConflict, "room name is already taken")
	case errors.Is(err, rooms.ErrRoomNotFound):
		writeError(w, http.StatusNotFound, "room not found")
	case errors.Is(err, rooms.ErrInvalidTTL):
		writeError(w, http.StatusBadRequest, "timeout_minutes must be positive")
	case errors.Is(err, rooms.ErrUnknownAgent):
		writeError(w, http.StatusBadRequest, "unknown agent name")
	case errors.Is(err, rooms.ErrNotRoomOwner):
		writeError(w, http.StatusForbidden, "only the room owner may do this")
	case errors.Is(err, rooms.ErrJoinTokenMint):
		writeError(w, http.StatusBadGateway, "room was created but the join token could not be issued; retry token issuance")
	default:
		s.log.Error("room operation failed", sl.Err(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func viewOf(room models.Room) roomView {
	return roomView{
		RoomName:       room.Name,
		AgentName:      room.AgentName,
		Owner:          room.Owner,
		CreatedAt:      room.CreatedAt.Format(time.RFC3339),
		TimeoutMinutes: int(room.TTL / time.Minute),
		ExpiresAt:      room.ExpiresAt.Format(time.RFC3339),
	}
}
