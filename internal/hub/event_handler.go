package hub

import (
	"context"
	"ctchen222/reversi/internal/events"
	"ctchen222/reversi/internal/player"
	"ctchen222/reversi/internal/room"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

func (h *Hub) handleEvent(ctx context.Context, ev events.Event) {
	ctx, span := tracer.Start(ctx, "hub.handleEvent", trace.WithAttributes(
		attribute.String("event.channel", events.EventsChannel),
		attribute.String("event.type", ev.Type),
	))
	defer span.End()

	switch ev.Type {
	case events.TypeMatchMade:
		var payload events.MatchMadePayload
		if err := ev.Decode(&payload); err != nil {
			slog.ErrorContext(ctx, "Could not decode match_made payload", "error", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "Could not decode match_made payload")
			return
		}
		h.handleMatchMade(ctx, &payload)

	case events.TypePlayerDisconnected:
		var payload events.PlayerDisconnectedPayload
		if err := ev.Decode(&payload); err != nil {
			slog.ErrorContext(ctx, "Could not decode player_disconnected payload", "error", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "Could not decode player_disconnected payload")
			return
		}
		h.handlePlayerDisconnected(ctx, &payload)

	default:
		slog.WarnContext(ctx, "Ignoring unknown event", "event.type", ev.Type)
	}
}

func (h *Hub) handleMatchMade(ctx context.Context, payload *events.MatchMadePayload) {
	ctx, span := tracer.Start(ctx, "hub.handleMatchMade", trace.WithAttributes(
		attribute.String("room.id", payload.RoomID),
		attribute.Int("player.count", len(payload.PlayerIDs)),
	))
	defer span.End()

	slog.InfoContext(ctx, "Received match_made event", "room.id", payload.RoomID)

	if _, exists := h.localRooms[payload.RoomID]; exists {
		return
	}

	var localPlayersInRoom []*player.Player
	for _, playerID := range payload.PlayerIDs {
		if p, isLocal := h.localPlayers[playerID]; isLocal {
			localPlayersInRoom = append(localPlayersInRoom, p)
		}
	}

	if len(localPlayersInRoom) > 0 {
		slog.InfoContext(ctx, "Found local players for room, creating handler", "local_players.count", len(localPlayersInRoom), "room.id", payload.RoomID)
		h.createAndStartRoom(ctx, payload.RoomID, localPlayersInRoom)
	}
}

func (h *Hub) handlePlayerDisconnected(ctx context.Context, payload *events.PlayerDisconnectedPayload) {
	ctx, span := tracer.Start(ctx, "hub.handlePlayerDisconnected", trace.WithAttributes(
		attribute.String("room.id", payload.RoomID),
		attribute.String("player.id", payload.PlayerID),
	))
	defer span.End()

	slog.InfoContext(ctx, "Received player_disconnected event", "player.id", payload.PlayerID, "room.id", payload.RoomID)

	if r, ok := h.localRooms[payload.RoomID]; ok {
		r.HandleOpponentDisconnected(ctx, payload.PlayerID)
	}
}

// createAndStartRoom is a helper to create a room and start its goroutines.
func (h *Hub) createAndStartRoom(ctx context.Context, roomID string, localPlayers []*player.Player) {
	ctx, span := tracer.Start(ctx, "hub.createAndStartRoom", trace.WithAttributes(
		attribute.String("room.id", roomID),
		attribute.Int("local_players.count", len(localPlayers)),
	))
	defer span.End()

	newRoom := room.NewRoom(roomID, h.gameRepo, h.playerRepo, h.bus, h.moveCalculator, h.settings)
	for _, p := range localPlayers {
		newRoom.AddPlayer(p)
	}
	h.startRoom(ctx, newRoom)
}

// startRoom registers r, starts its loops and sends every player its color
// and the opening position.
func (h *Hub) startRoom(ctx context.Context, r *room.Room) {
	h.localRooms[r.ID] = r
	for _, p := range r.Players {
		if !p.IsBot {
			h.playerRooms[p.ID] = r.ID
		}
	}
	r.Start(h.unregister)

	if err := r.SendAssignments(ctx); err != nil {
		slog.ErrorContext(ctx, "Could not send initial room state", "room.id", r.ID, "error", err)
	}
}
