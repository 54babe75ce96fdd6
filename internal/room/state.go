package room

import (
	"context"
	"ctchen222/reversi/internal/game"
	"ctchen222/reversi/internal/player"
	"ctchen222/reversi/internal/repository"
	"ctchen222/reversi/pkg/proto"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SendAssignments sends WELCOME with each local player's color followed by
// the current position.
func (r *Room) SendAssignments(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "room.SendAssignments", trace.WithAttributes(
		attribute.String("room.id", r.ID),
	))
	defer span.End()

	state, err := r.gameRepo.FindByID(ctx, r.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Could not find game state")
		return fmt.Errorf("failed to load room %s: %w", r.ID, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.Players {
		c, ok := state.ColorOf(p.ID)
		if !ok {
			continue
		}
		p.Color = c
		r.reply(ctx, p, proto.Welcome(c))
	}
	r.broadcastState(ctx, state)
	return nil
}

// broadcastState sends the board and either the result or whose turn it is.
// r.mu must be held.
func (r *Room) broadcastState(ctx context.Context, state *repository.MatchState) {
	board, err := game.DecodeBoard(state.Snapshot.Board)
	if err != nil {
		slog.ErrorContext(ctx, "stored board is corrupt", "room.id", r.ID, "error", err)
		return
	}
	r.Broadcast(ctx, proto.BoardSnapshot(board))

	if state.Snapshot.Over {
		black, white := board.Score()
		r.Broadcast(ctx, proto.GameEnd(state.Snapshot.Result, black, white))
		return
	}

	for _, p := range r.Players {
		if p.Status != player.StatusConnected {
			continue
		}
		c, ok := state.ColorOf(p.ID)
		if !ok {
			continue
		}
		if c == state.Snapshot.Turn {
			r.reply(ctx, p, proto.YourTurn)
		} else {
			r.reply(ctx, p, proto.WaitTurn)
		}
	}
}

// HandleOpponentDisconnected ends the game in favor of the players still
// connected and tells them their opponent left.
func (r *Room) HandleOpponentDisconnected(ctx context.Context, playerID string) {
	ctx, span := tracer.Start(ctx, "room.HandleOpponentDisconnected", trace.WithAttributes(
		attribute.String("room.id", r.ID),
		attribute.String("player.id", playerID),
	))
	defer span.End()

	state, err := r.gameRepo.FindByID(ctx, r.ID)
	if err != nil {
		slog.WarnContext(ctx, "could not load game for disconnected player", "room.id", r.ID, "error", err)
		span.RecordError(err)
	} else if c, ok := state.ColorOf(playerID); ok {
		if _, err := r.gameRepo.Forfeit(ctx, r.ID, c); err != nil && !errors.Is(err, game.ErrGameOver) {
			slog.ErrorContext(ctx, "failed to forfeit game", "room.id", r.ID, "player.id", playerID, "error", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "Failed to forfeit game")
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.Players {
		if p.ID == playerID || p.Status != player.StatusConnected {
			continue
		}
		r.reply(ctx, p, proto.OpponentDisconnected)
	}
}
