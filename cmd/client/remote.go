package main

import (
	"context"
	"ctchen222/reversi/internal/bot"
	"ctchen222/reversi/internal/config"
	"ctchen222/reversi/internal/network"
	"ctchen222/reversi/pkg/proto"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// eventBuffer holds a full game of events if the engine is slow to drain them.
const eventBuffer = 256

// playRemote joins matchmaking and lets the engine pick every move until the
// game ends or the connection drops.
func playRemote(ctx context.Context, cfg config.Client, engine *bot.Engine, out io.Writer) error {
	session, err := network.Dial(ctx, network.Config{
		Addr:      cfg.ServerAddr,
		Transport: cfg.Transport,
		Path:      cfg.Path,
		Timeout:   cfg.ConnectTimeout,
	}, network.WithHeartbeat(cfg.HeartbeatInterval, cfg.HeartbeatTick), network.WithEventBuffer(eventBuffer))
	if err != nil {
		var dialErr *network.DialError
		if errors.As(err, &dialErr) {
			return errors.New(dialErr.Status())
		}
		return err
	}
	defer session.Close()

	fmt.Fprintf(out, "%s as %s, waiting for an opponent...\n", network.StatusConnected, cfg.Name)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-session.Events():
			if !ok {
				return nil
			}
			if done := showEvent(out, ev); done {
				return nil
			}
			if ev.View.State == network.StateMyTurn {
				play(ctx, session, engine, out)
			}
		}
	}
}

func showEvent(out io.Writer, ev network.Event) bool {
	v := ev.View
	switch {
	case ev.Message.Kind == proto.KindWelcome:
		fmt.Fprintf(out, "You play %s\n", v.Color)
	case ev.Message.Kind == proto.KindBoard:
		fmt.Fprintf(out, "%sBlack %d  White %d\n", v.Board.String(), v.Black, v.White)
	case v.State == network.StateGameOver:
		fmt.Fprintln(out, v.Status)
		return true
	case v.State == network.StateDisconnected:
		fmt.Fprintln(out, v.Status)
		return true
	}
	return false
}

func play(ctx context.Context, session *network.Session, engine *bot.Engine, out io.Writer) {
	v := session.Snapshot()
	if !v.MyTurn {
		return
	}
	board := v.Board
	move := engine.NextMove(ctx, &board, v.Color)
	if move.IsNone() {
		return
	}
	if err := session.SendMove(move.X, move.Y); err != nil {
		slog.WarnContext(ctx, "Failed to send move", "move", move.String(), "error", err)
		return
	}
	fmt.Fprintf(out, "Played %s\n", move)
}
