package hub

import (
	"context"
	"ctchen222/reversi/internal/bot"
	"ctchen222/reversi/internal/events"
	"ctchen222/reversi/internal/hub/types"
	"ctchen222/reversi/internal/match"
	"ctchen222/reversi/internal/player"
	"ctchen222/reversi/internal/repository"
	"ctchen222/reversi/internal/room"
	"log/slog"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("hub")

// Hub manages the players connected to this node and the rooms they play in.
// All of its maps are owned by the Run goroutine.
type Hub struct {
	serverID       string
	gameRepo       repository.GameRepository
	playerRepo     repository.PlayerRepository
	bus            events.Bus
	moveCalculator room.MoveCalculator
	settings       room.Settings

	localPlayers map[string]*player.Player
	localRooms   map[string]*room.Room
	playerRooms  map[string]string

	register     chan *types.RegistrationRequest
	unregister   chan *player.Player
	matchManager *match.MatchManager
}

// NewHub creates a new hub.
func NewHub(serverID string, gameRepo repository.GameRepository, playerRepo repository.PlayerRepository, bus events.Bus, settings room.Settings) *Hub {
	return &Hub{
		serverID:       serverID,
		gameRepo:       gameRepo,
		playerRepo:     playerRepo,
		bus:            bus,
		moveCalculator: bot.BotMoveCalculator{},
		settings:       settings,
		localPlayers:   make(map[string]*player.Player),
		localRooms:     make(map[string]*room.Room),
		playerRooms:    make(map[string]string),
		register:       make(chan *types.RegistrationRequest),
		unregister:     make(chan *player.Player),
		matchManager:   match.NewMatchManager(),
	}
}

// Run starts the hub and blocks until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	go h.matchManager.Run(ctx)

	incoming, stop := h.bus.Subscribe(ctx)
	defer func() {
		if err := stop(); err != nil {
			slog.WarnContext(ctx, "Failed to stop event subscription", "error", err)
		}
	}()

	slog.InfoContext(ctx, "Hub started", "server.id", h.serverID)
	for {
		select {
		case <-ctx.Done():
			h.closeRooms()
			slog.Info("Hub stopped", "server.id", h.serverID)
			return

		case req := <-h.register:
			h.handleRegistration(req)

		case p := <-h.unregister:
			h.handleUnregister(ctx, p)

		case pair := <-h.matchManager.MatchedPair():
			h.handleMatchedPair(ctx, pair)

		case ev, ok := <-incoming:
			if !ok {
				slog.WarnContext(ctx, "Event subscription closed")
				incoming = nil
				continue
			}
			h.handleEvent(ctx, ev)
		}
	}
}

// Register returns the register channel.
func (h *Hub) Register() chan<- *types.RegistrationRequest {
	return h.register
}
