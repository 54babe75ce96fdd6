package room

import (
	"context"
	"ctchen222/reversi/internal/events"
	"ctchen222/reversi/internal/game"
	"ctchen222/reversi/internal/hub/types"
	"ctchen222/reversi/internal/player"
	"ctchen222/reversi/internal/repository"
	"ctchen222/reversi/pkg/proto"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// proxyDifficulty plays for a player whose move timer ran out.
const proxyDifficulty = "medium"

// disconnectedMoveDelay is how long a disconnected player's turn is held
// before a proxy move is made.
const disconnectedMoveDelay = time.Second

var (
	tracer = otel.Tracer("room")
	meter  = otel.Meter("room")

	movesCounter metric.Int64Counter
)

func init() {
	var err error
	movesCounter, err = meter.Int64Counter("reversi.room.moves",
		metric.WithDescription("Moves accepted by game rooms"),
	)
	if err != nil {
		otel.Handle(err)
	}
}

// MoveCalculator defines an interface for an agent that can calculate a game move.
type MoveCalculator interface {
	CalculateNextMove(ctx context.Context, board *game.Board, c game.Color, difficulty string) game.Move
}

// Settings are the timing parameters of a room.
type Settings struct {
	MoveTimeout       time.Duration
	HeartbeatInterval time.Duration
}

// Room represents a game room.
type Room struct {
	ID             string
	gameRepo       repository.GameRepository
	playerRepo     repository.PlayerRepository
	publisher      events.Publisher
	Players        []*player.Player
	mu             sync.Mutex
	incomingMoves  chan *types.PlayerMove
	leave          chan<- *player.Player
	moveCalculator MoveCalculator
	settings       Settings
	Done           chan struct{}
	closeOnce      sync.Once
}

// NewRoom creates a new game room.
func NewRoom(id string, gameRepo repository.GameRepository, playerRepo repository.PlayerRepository, publisher events.Publisher, calculator MoveCalculator, s Settings) *Room {
	return &Room{
		ID:             id,
		gameRepo:       gameRepo,
		playerRepo:     playerRepo,
		publisher:      publisher,
		Players:        make([]*player.Player, 0, 2),
		incomingMoves:  make(chan *types.PlayerMove, 10),
		moveCalculator: calculator,
		settings:       s,
		Done:           make(chan struct{}),
	}
}

// Start launches a read pump for every human player and the game loop.
// Players whose connection ends are sent on leave.
func (r *Room) Start(leave chan<- *player.Player) {
	r.leave = leave
	for _, p := range r.Players {
		if !p.IsBot {
			go r.ReadPump(p)
		}
	}
	go r.run()
}

// Close stops the room and its bots. Later calls are no-ops.
func (r *Room) Close() {
	r.closeOnce.Do(func() {
		close(r.Done)
		r.mu.Lock()
		defer r.mu.Unlock()
		for _, p := range r.Players {
			if p.IsBot && p.Conn != nil {
				p.Conn.Close()
			}
		}
	})
}

// turnKey identifies a position and the color to move; the move timer is
// restarted only when it changes.
type turnKey struct {
	board string
	turn  game.Color
}

// run is the main game loop for the room.
func (r *Room) run() {
	ctx := context.Background()
	moveTimer := time.NewTimer(r.settings.MoveTimeout)
	moveTimer.Stop()
	pingTicker := time.NewTicker(r.settings.HeartbeatInterval)

	defer func() {
		moveTimer.Stop()
		pingTicker.Stop()
	}()

	var lastKey turnKey
	var lastStatus player.PlayerStatus
	for {
		state, err := r.gameRepo.FindByID(ctx, r.ID)
		if err != nil {
			slog.ErrorContext(ctx, "run loop cannot get game state, closing room", "room.id", r.ID, "error", err)
			r.Close()
			return
		}

		current := r.playerFor(state.PlayerID(state.Snapshot.Turn))
		key := turnKey{board: state.Snapshot.Board, turn: state.Snapshot.Turn}
		status := player.StatusDisconnected
		if current != nil {
			status = r.statusOf(current)
		}

		switch {
		case state.Snapshot.Over || current == nil:
			moveTimer.Stop()
		case key != lastKey || status != lastStatus:
			if status == player.StatusConnected {
				moveTimer.Reset(r.settings.MoveTimeout)
			} else {
				moveTimer.Reset(disconnectedMoveDelay)
			}
		}
		lastKey, lastStatus = key, status

		select {
		case <-r.Done:
			slog.Info("Room run goroutine stopping.", "room.id", r.ID)
			return

		case move := <-r.incomingMoves:
			r.HandleMessage(ctx, move.Player, move.Line)

		case <-moveTimer.C:
			if current == nil || state.Snapshot.Over {
				continue
			}
			board, err := game.DecodeBoard(state.Snapshot.Board)
			if err != nil {
				slog.ErrorContext(ctx, "stored board is corrupt", "room.id", r.ID, "error", err)
				continue
			}
			slog.InfoContext(ctx, "Player timed out", "player.id", current.ID, "room.id", r.ID)
			m := r.moveCalculator.CalculateNextMove(ctx, board, state.Snapshot.Turn, proxyDifficulty)
			if m.IsNone() {
				continue
			}
			slog.InfoContext(ctx, "Proxy move for player", "player.id", current.ID, "move", m.String())
			r.HandleMessage(ctx, current, proto.MoveTo(m.X, m.Y).String())
			// The same position may come back if the proxy move was refused.
			lastKey = turnKey{}

		case <-pingTicker.C:
			r.mu.Lock()
			for _, p := range r.Players {
				if p.IsBot || p.Status != player.StatusConnected {
					continue
				}
				if err := p.Send(proto.Ping.String()); err != nil {
					slog.Warn("Failed to send ping to player, assuming disconnect", "player.id", p.ID, "error", err)
				}
			}
			r.mu.Unlock()
		}
	}
}

func (r *Room) statusOf(p *player.Player) player.PlayerStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return p.Status
}
