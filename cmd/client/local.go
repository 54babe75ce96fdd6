package main

import (
	"bufio"
	"context"
	"ctchen222/reversi/internal/bot"
	"ctchen222/reversi/internal/config"
	"ctchen222/reversi/internal/game"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

const computerName = "computer"

// playLocal runs a game against the engine on this terminal. The human plays
// Black and types moves as x,y. "undo" takes back the last move pair and
// "quit" resigns. Running out of turn time costs one chance.
func playLocal(ctx context.Context, cfg *config.Config, engine *bot.Engine, in io.Reader, out io.Writer) error {
	g := game.NewGame(game.Settings{
		Names:      [2]string{cfg.Client.Name, computerName},
		VsAI:       true,
		AIColor:    game.White,
		Difficulty: engine.Difficulty().String(),
		Chances:    cfg.Game.Chances,
	})
	lines := readLines(in)

	for !g.Over() {
		render(out, g)
		if g.Turn() == g.AIColor() {
			move, err := g.AITurn(ctx, engine)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s plays %s\n", computerName, move)
			continue
		}

		fmt.Fprintf(out, "%s (%s), your move: ", g.Name(g.Turn()), g.Turn())
		quit, err := humanTurn(ctx, g, lines, cfg.Game.TurnTimeLimit, out)
		if err != nil || quit {
			return err
		}
	}

	render(out, g)
	black, white := g.Score()
	fmt.Fprintf(out, "Game over: %s (%d-%d)\n", g.Result(), black, white)
	return nil
}

// humanTurn waits for one command. It reports quit when input ends or the
// context is cancelled.
func humanTurn(ctx context.Context, g *game.Game, lines <-chan string, limit time.Duration, out io.Writer) (bool, error) {
	timer := time.NewTimer(limit)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return true, nil
	case <-timer.C:
		c := g.Turn()
		if err := g.Timeout(); err != nil {
			return false, err
		}
		fmt.Fprintf(out, "\nTime's up! %d chances left\n", g.Chances(c))
		return false, nil
	case line, ok := <-lines:
		if !ok {
			return true, nil
		}
		return false, command(g, strings.TrimSpace(line), out)
	}
}

func command(g *game.Game, line string, out io.Writer) error {
	switch strings.ToLower(line) {
	case "":
		return nil
	case "undo":
		if err := g.Undo(); err != nil {
			fmt.Fprintln(out, err)
		}
		return nil
	case "quit":
		return g.Forfeit(g.Turn())
	}

	var x, y int
	if _, err := fmt.Sscanf(line, "%d,%d", &x, &y); err != nil {
		fmt.Fprintln(out, "Enter a move as x,y")
		return nil
	}
	if err := g.Play(x, y); err != nil {
		if errors.Is(err, game.ErrIllegalMove) {
			fmt.Fprintln(out, "Invalid move! Please try again.")
			return nil
		}
		return err
	}
	return nil
}

func render(out io.Writer, g *game.Game) {
	b := g.Board()
	black, white := g.Score()
	fmt.Fprintf(out, "\n%sBlack %d  White %d\n", b.String(), black, white)
	if g.Passed() {
		fmt.Fprintln(out, "No legal moves, turn passed")
	}
}

func readLines(in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return lines
}
