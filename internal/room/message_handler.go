package room

import (
	"context"
	"ctchen222/reversi/internal/game"
	"ctchen222/reversi/internal/player"
	"ctchen222/reversi/internal/repository"
	"ctchen222/reversi/pkg/proto"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// HandleMessage handles a line from a player. It acts as a dispatcher.
func (r *Room) HandleMessage(ctx context.Context, p *player.Player, line string) {
	ctx, span := tracer.Start(ctx, "room.HandleMessage", trace.WithAttributes(
		attribute.String("player.id", p.ID),
		attribute.String("room.id", r.ID),
	))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	p.LastSeen = time.Now()

	msg, err := proto.Parse(line)
	if err != nil {
		slog.WarnContext(ctx, "invalid message from player", "player.id", p.ID, "line", line, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid message format")
		if strings.HasPrefix(line, string(proto.KindMove)) {
			r.reply(ctx, p, proto.InvalidMove)
		}
		return
	}

	span.SetAttributes(attribute.String("message.type", string(msg.Kind)))

	switch msg.Kind {
	case proto.KindMove:
		r.handleMove(ctx, p, msg.Move)
	case proto.KindPing:
		r.reply(ctx, p, proto.Pong)
	case proto.KindPong:
	case proto.KindDisconnect:
		slog.InfoContext(ctx, "Player asked to disconnect", "player.id", p.ID, "room.id", r.ID)
		if p.Conn != nil {
			p.Conn.Close()
		}
	default:
		slog.WarnContext(ctx, "unexpected message from player", "player.id", p.ID, "kind", msg.Kind)
	}
}

// handleMove processes a player's move. r.mu must be held.
func (r *Room) handleMove(ctx context.Context, p *player.Player, m game.Move) {
	ctx, moveSpan := tracer.Start(ctx, "room.handleMove", trace.WithAttributes(
		attribute.String("player.id", p.ID),
		attribute.String("room.id", r.ID),
		attribute.Int("move.x", m.X),
		attribute.Int("move.y", m.Y),
	))
	defer moveSpan.End()

	current, err := r.gameRepo.FindByID(ctx, r.ID)
	if err != nil {
		slog.ErrorContext(ctx, "handleMove could not find game state for room", "room.id", r.ID, "error", err)
		moveSpan.RecordError(err)
		moveSpan.SetStatus(codes.Error, "Could not find game state")
		return
	}

	c, ok := current.ColorOf(p.ID)
	if !ok {
		slog.WarnContext(ctx, "player is not part of room", "player.id", p.ID, "room.id", r.ID)
		moveSpan.SetStatus(codes.Error, "Player not part of room")
		return
	}

	state, err := r.gameRepo.Update(ctx, r.ID, c, m)
	if err != nil {
		slog.WarnContext(ctx, "invalid move from player", "player.id", p.ID, "move", m.String(), "error", err)
		moveSpan.SetAttributes(attribute.Bool("move.valid", false))
		moveSpan.RecordError(err)
		moveSpan.SetStatus(codes.Error, "Invalid move")
		if errors.Is(err, repository.ErrNotYourTurn) || errors.Is(err, game.ErrGameOver) {
			r.reply(ctx, p, proto.NotYourTurn)
		} else {
			r.reply(ctx, p, proto.InvalidMove)
		}
		return
	}
	moveSpan.SetAttributes(attribute.Bool("move.valid", true))
	if movesCounter != nil {
		movesCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("color", c.String())))
	}

	r.broadcastState(ctx, state)
}

func (r *Room) reply(ctx context.Context, p *player.Player, msg proto.Message) {
	if err := p.Send(msg.String()); err != nil {
		slog.WarnContext(ctx, "error writing message to player", "player.id", p.ID, "kind", msg.Kind, "error", err)
	}
}
