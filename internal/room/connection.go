package room

import (
	"context"
	"ctchen222/reversi/internal/events"
	"ctchen222/reversi/internal/hub/types"
	"ctchen222/reversi/internal/player"
	"ctchen222/reversi/pkg/proto"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Broadcast sends a message to all connected players in the room. r.mu must
// be held.
func (r *Room) Broadcast(ctx context.Context, msg proto.Message) {
	_, span := tracer.Start(ctx, "room.Broadcast", trace.WithAttributes(
		attribute.String("room.id", r.ID),
		attribute.String("message.type", string(msg.Kind)),
	))
	defer span.End()

	line := msg.String()
	for _, p := range r.Players {
		if p.Status != player.StatusConnected {
			continue
		}
		if err := p.Send(line); err != nil {
			slog.ErrorContext(ctx, "error writing message to player", "player.id", p.ID, "error", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "Error writing message to player")
		}
	}
}

// ReadPump pumps lines from the player's connection to the room's incoming
// queue until the connection ends.
func (r *Room) ReadPump(p *player.Player) {
	ctx, span := tracer.Start(context.Background(), "room.ReadPump", trace.WithAttributes(
		attribute.String("player.id", p.ID),
		attribute.String("room.id", r.ID),
	))
	defer span.End()

	defer r.disconnect(ctx, p)

	for {
		line, err := p.Conn.Receive()
		if err != nil {
			slog.WarnContext(ctx, "Player connection error", "player.id", p.ID, "room.id", r.ID, "error", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "Player connection error")
			return
		}
		select {
		case r.incomingMoves <- &types.PlayerMove{Player: p, Line: line}:
		case <-r.Done:
			return
		}
	}
}

// disconnect marks p as gone, tells the other hubs and hands p back to the
// hub for cleanup.
func (r *Room) disconnect(ctx context.Context, p *player.Player) {
	p.Conn.Close()

	r.mu.Lock()
	p.Status = player.StatusDisconnected
	r.mu.Unlock()

	ctx, span := tracer.Start(ctx, "room.ReadPump.disconnectHandler", trace.WithAttributes(
		attribute.String("player.id", p.ID),
		attribute.String("room.id", r.ID),
	))
	defer span.End()

	if err := r.playerRepo.UpdateConnectionStatus(ctx, p.ID, player.StatusDisconnected); err != nil {
		slog.ErrorContext(ctx, "Failed to set player status to disconnected", "player.id", p.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to set player status to disconnected")
	}

	ev, err := events.New(events.TypePlayerDisconnected, events.PlayerDisconnectedPayload{
		RoomID:   r.ID,
		PlayerID: p.ID,
	})
	if err == nil {
		err = r.publisher.Publish(ctx, ev)
	}
	if err != nil {
		slog.ErrorContext(ctx, "Failed to publish player_disconnected event", "player.id", p.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to publish player_disconnected event")
	}
	slog.InfoContext(ctx, "Player disconnected. Updated status and published event.", "player.id", p.ID)

	if r.leave == nil {
		return
	}
	select {
	case r.leave <- p:
	case <-r.Done:
	}
}
