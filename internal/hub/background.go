package hub

import (
	"context"
	"ctchen222/reversi/internal/events"
	"ctchen222/reversi/internal/player"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// handleMatchedPair stores a new match for a pair from the matchmaker and
// announces it. The first player of the pair plays Black.
func (h *Hub) handleMatchedPair(ctx context.Context, pair [2]*player.Player) {
	black, white := pair[0], pair[1]
	roomID := uuid.New().String()
	ctx, span := tracer.Start(ctx, "hub.handleMatchedPair", trace.WithAttributes(
		attribute.String("room.id", roomID),
		attribute.String("black.id", black.ID),
		attribute.String("white.id", white.ID),
	))
	defer span.End()

	if err := h.gameRepo.Create(ctx, roomID, black.ID, white.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to create new game, re-queuing players", "room.id", roomID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create game")
		h.matchManager.AddPlayer(black)
		h.matchManager.AddPlayer(white)
		return
	}

	for _, p := range pair {
		if err := h.playerRepo.UpdateForMatch(ctx, p.ID, roomID); err != nil {
			slog.ErrorContext(ctx, "Failed to update player state for match", "player.id", p.ID, "error", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "Failed to update player for match")
		}
	}

	payload := events.MatchMadePayload{RoomID: roomID, PlayerIDs: []string{black.ID, white.ID}}
	ev, err := events.New(events.TypeMatchMade, payload)
	if err == nil {
		err = h.bus.Publish(ctx, ev)
	}
	if err != nil {
		// The players are ours; start the room without the round trip.
		slog.ErrorContext(ctx, "Failed to publish match_made event", "room.id", roomID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to publish match_made event")
		h.handleMatchMade(ctx, &payload)
		return
	}
	slog.InfoContext(ctx, "Room created, event published", "room.id", roomID, "black.id", black.ID, "white.id", white.ID)
}
