package hub

import (
	"context"
	"ctchen222/reversi/internal/player"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// handleUnregister forgets a player whose connection ended. A room left
// without humans is closed and its match deleted.
func (h *Hub) handleUnregister(ctx context.Context, p *player.Player) {
	ctx, span := tracer.Start(ctx, "hub.handleUnregister", trace.WithAttributes(
		attribute.String("player.id", p.ID),
	))
	defer span.End()

	if h.localPlayers[p.ID] != p {
		return
	}
	h.dropPlayer(ctx, p)

	roomID, ok := h.playerRooms[p.ID]
	if !ok {
		return
	}
	delete(h.playerRooms, p.ID)

	r, ok := h.localRooms[roomID]
	if !ok {
		return
	}
	if r.RemovePlayer(p.ID) {
		slog.InfoContext(ctx, "Player removed from room", "player.id", p.ID, "room.id", roomID)
		return
	}

	r.Close()
	delete(h.localRooms, roomID)
	if err := h.gameRepo.Delete(ctx, roomID); err != nil {
		slog.ErrorContext(ctx, "Failed to delete finished room", "room.id", roomID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to delete room")
	}
	slog.InfoContext(ctx, "Room closed due to no players", "room.id", roomID)
}

// dropPlayer removes p from matchmaking and marks it offline.
func (h *Hub) dropPlayer(ctx context.Context, p *player.Player) {
	h.matchManager.RemovePlayer(p.ID)
	delete(h.localPlayers, p.ID)
	p.Conn.Close()

	if err := h.playerRepo.SetOffline(ctx, p.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to set player offline", "player.id", p.ID, "error", err)
	}
	slog.InfoContext(ctx, "Player disconnected", "player.id", p.ID)
}

func (h *Hub) closeRooms() {
	for id, r := range h.localRooms {
		r.Close()
		delete(h.localRooms, id)
	}
	for id, p := range h.localPlayers {
		p.Conn.Close()
		delete(h.localPlayers, id)
	}
}
