package bot

import (
	"context"
	"ctchen222/reversi/internal/game"
	"ctchen222/reversi/internal/hub/types"
	"ctchen222/reversi/internal/player"
	"ctchen222/reversi/internal/transport"
	"ctchen222/reversi/pkg/proto"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// defaultThinkTime delays each bot move so humans can follow the game.
const defaultThinkTime = time.Second

// BotConnection stands in for a network connection of a bot player. Lines
// the room sends are interpreted directly; moves go straight into the room's
// incoming queue.
type BotConnection struct {
	playerID      string
	difficulty    string
	engine        *Engine
	player        *player.Player
	incomingMoves chan<- *types.PlayerMove
	thinkTime     time.Duration

	mu    sync.Mutex
	color game.Color
	board *game.Board

	done      chan struct{}
	closeOnce sync.Once
}

// NewBotConnection creates a connection for a bot playing p.
func NewBotConnection(playerID string, difficulty string, p *player.Player, incomingMoves chan<- *types.PlayerMove) *BotConnection {
	d, err := ParseDifficulty(difficulty)
	if err != nil {
		slog.Warn("Unknown bot difficulty, using default", "player.id", playerID, "difficulty", difficulty)
		d = DefaultDifficulty
	}
	return &BotConnection{
		playerID:      playerID,
		difficulty:    d.String(),
		engine:        NewEngine(d),
		player:        p,
		incomingMoves: incomingMoves,
		thinkTime:     defaultThinkTime,
		done:          make(chan struct{}),
	}
}

// Send is called by the room with each protocol line for the bot.
func (bc *BotConnection) Send(line string) error {
	msg, err := proto.Parse(line)
	if err != nil {
		return err
	}

	bc.mu.Lock()
	defer bc.mu.Unlock()

	switch msg.Kind {
	case proto.KindWelcome:
		bc.color = msg.Color
		slog.Info("Bot assigned color", "player.id", bc.playerID, "color", bc.color.String())

	case proto.KindBoard:
		bc.board = msg.Board

	case proto.KindYourTurn:
		if !bc.color.Valid() || bc.board == nil {
			return nil
		}
		go bc.play(bc.board.Clone(), bc.color)
	}
	return nil
}

// play searches for a move and queues it for the room.
func (bc *BotConnection) play(b *game.Board, c game.Color) {
	select {
	case <-time.After(bc.thinkTime):
	case <-bc.done:
		return
	}

	move := bc.engine.NextMove(context.Background(), b, c)
	if move.IsNone() {
		return
	}
	slog.Info("Bot chose move", "player.id", bc.playerID, "move", move.String())

	select {
	case bc.incomingMoves <- &types.PlayerMove{Player: bc.player, Line: proto.MoveTo(move.X, move.Y).String()}:
	case <-bc.done:
	}
}

// Receive blocks until the connection is closed. The bot never reads from a
// wire; its moves are queued by play.
func (bc *BotConnection) Receive() (string, error) {
	<-bc.done
	return "", transport.ErrClosed
}

// Close stops any pending move.
func (bc *BotConnection) Close() error {
	bc.closeOnce.Do(func() { close(bc.done) })
	return nil
}

// NewBotPlayer creates a bot player whose moves are queued on incomingMoves.
func NewBotPlayer(difficulty string, incomingMoves chan<- *types.PlayerMove) *player.Player {
	botID := "bot-" + uuid.New().String()[:8]
	p := player.NewPlayer(botID, nil)
	p.IsBot = true
	p.Conn = NewBotConnection(botID, difficulty, p, incomingMoves)
	return p
}
