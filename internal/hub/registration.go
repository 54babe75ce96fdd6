package hub

import (
	"context"
	"ctchen222/reversi/internal/bot"
	"ctchen222/reversi/internal/hub/types"
	"ctchen222/reversi/internal/room"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Registration modes.
const (
	ModeHuman = "human"
	ModeBot   = "bot"
)

func (h *Hub) handleRegistration(req *types.RegistrationRequest) {
	ctx := req.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := tracer.Start(ctx, "hub.handleRegistration", trace.WithAttributes(
		attribute.String("player.id", req.Player.ID),
		attribute.String("game.mode", req.Mode),
	))
	defer span.End()

	p := req.Player
	presence, err := h.playerRepo.Find(ctx, p.ID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to look up player presence", "player.id", p.ID, "error", err)
		span.RecordError(err)
	}
	if _, local := h.localPlayers[p.ID]; local || presence.InGame() {
		slog.WarnContext(ctx, "Rejecting player already connected", "player.id", p.ID, "room.id", presence.RoomID)
		span.SetStatus(codes.Error, "Player already connected")
		p.Conn.Close()
		return
	}

	if err := h.playerRepo.SetInitialState(ctx, p.ID, h.serverID); err != nil {
		slog.ErrorContext(ctx, "Failed to set initial player state", "player.id", p.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to set initial player state")
	}
	h.localPlayers[p.ID] = p

	if req.Mode == ModeBot {
		h.registerBotGame(ctx, req)
		return
	}
	h.queuePlayerForMatchmaking(ctx, req)
}

func (h *Hub) registerBotGame(ctx context.Context, req *types.RegistrationRequest) {
	ctx, span := tracer.Start(ctx, "hub.registerBotGame", trace.WithAttributes(
		attribute.String("player.id", req.Player.ID),
		attribute.String("bot.difficulty", req.Difficulty),
	))
	defer span.End()

	slog.InfoContext(ctx, "Creating bot match", "player.id", req.Player.ID, "difficulty", req.Difficulty)

	roomID := uuid.New().String()
	newRoom := room.NewRoom(roomID, h.gameRepo, h.playerRepo, h.bus, h.moveCalculator, h.settings)

	human := req.Player
	botPlayer := bot.NewBotPlayer(req.Difficulty, newRoom.IncomingMoves())

	if err := h.gameRepo.Create(ctx, roomID, human.ID, botPlayer.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to create bot game", "room.id", roomID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create bot game")
		h.dropPlayer(ctx, human)
		return
	}
	if err := h.playerRepo.UpdateForMatch(ctx, human.ID, roomID); err != nil {
		slog.ErrorContext(ctx, "Failed to update player state for match", "player.id", human.ID, "error", err)
		span.RecordError(err)
	}

	newRoom.AddPlayer(human)
	newRoom.AddPlayer(botPlayer)
	h.startRoom(ctx, newRoom)
	slog.InfoContext(ctx, "Local room handler created for bot match", "room.id", roomID, "bot.id", botPlayer.ID)
}

func (h *Hub) queuePlayerForMatchmaking(ctx context.Context, req *types.RegistrationRequest) {
	_, span := tracer.Start(ctx, "hub.queuePlayerForMatchmaking", trace.WithAttributes(
		attribute.String("player.id", req.Player.ID),
	))
	defer span.End()

	h.matchManager.AddPlayer(req.Player)
	slog.InfoContext(ctx, "Player added to matchmaking queue", "player.id", req.Player.ID)
}
