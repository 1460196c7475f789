package app

import (
	"context"
	"log/slog"

	"roomapi/config"
	httpapp "roomapi/internal/app/http"
	"roomapi/internal/domain/models"
	"roomapi/internal/httpapi"
	"roomapi/internal/lib/clockwork"
	"roomapi/internal/livekit"
	"roomapi/internal/services/auth"
	"roomapi/internal/services/rooms"
	"roomapi/internal/storage/memory"
)

type App struct {
	HTTPServer *httpapp.App

	sweeper     *memory.Sweeper
	stopSweeper context.CancelFunc
}

func New(log *slog.Logger, cfg *config.Config, clock clockwork.Clock) (*App, error) {
	secret := []byte(cfg.TokenSecret)
	if len(secret) == 0 {
		generated, err := auth.NewSecret()
		if err != nil {
			return nil, err
		}
		secret = generated
		log.Warn("no token secret configured, generated an ephemeral one")
	}

	tokenStore := memory.NewTokenStore(clock)
	roomRegistry := memory.NewRoomRegistry(clock)

	minter, err := livekit.New(log, clock, livekit.Config{
		URL:       cfg.LiveKit.URL,
		APIKey:    cfg.LiveKit.APIKey,
		APISecret: cfg.LiveKit.APISecret,
		TokenTTL:  cfg.LiveKit.TokenTTL,
	})
	if err != nil {
		return nil, err
	}

	agents := make([]models.Agent, 0, len(cfg.Agents))
	for _, agent := range cfg.Agents {
		agents = append(agents, models.Agent{Name: agent.Name, DisplayName: agent.DisplayName})
	}

	authService := auth.New(log, tokenStore, clock, secret, cfg.TokenTTL)
	roomService := rooms.New(log, roomRegistry, minter, agents, cfg.RoomTTL, cfg.RoomsRequireOwner)

	server := httpapi.NewServer(log, authService, roomService)
	router := httpapi.NewRouter(log, server, authService)

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	sweeper := memory.NewSweeper(log, clock, cfg.SweepInterval, tokenStore, roomRegistry)
	go sweeper.Run(sweepCtx)

	return &App{
		HTTPServer:  httpapp.New(log, router, cfg.HTTP.Port, cfg.HTTP.Timeout),
		sweeper:     sweeper,
		stopSweeper: stopSweeper,
	}, nil
}

// Stop shuts down the background sweeper. The HTTP server is stopped
// separately so callers control the drain timeout.
func (a *App) Stop() {
	a.stopSweeper()
}
