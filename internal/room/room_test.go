package room

import (
	"context"
	"ctchen222/reversi/internal/events"
	"ctchen222/reversi/internal/game"
	"ctchen222/reversi/internal/player"
	"ctchen222/reversi/internal/repository"
	"ctchen222/reversi/internal/transport"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// client is the remote end of a player's connection.
type client struct {
	conn  *transport.LineConn
	lines chan string
}

func (c *client) send(t *testing.T, line string) {
	t.Helper()
	require.NoError(t, c.conn.Send(line))
}

func (c *client) expect(t *testing.T, want ...string) {
	t.Helper()
	for _, w := range want {
		select {
		case got := <-c.lines:
			assert.Equal(t, w, got)
		case <-time.After(2 * time.Second):
			t.Fatalf("client did not receive %q", w)
		}
	}
}

func (c *client) expectNothing(t *testing.T) {
	t.Helper()
	select {
	case got := <-c.lines:
		t.Fatalf("unexpected line %q", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func pipePlayer(t *testing.T, id string) (*player.Player, *client) {
	t.Helper()
	a, b := net.Pipe()
	c := &client{conn: transport.NewLineConn(b), lines: make(chan string, 64)}
	go func() {
		defer close(c.lines)
		for {
			line, err := c.conn.Receive()
			if err != nil {
				return
			}
			c.lines <- line
		}
	}()
	t.Cleanup(func() { c.conn.Close() })
	return player.NewPlayer(id, transport.NewLineConn(a)), c
}

// fixedCalculator always proposes the same move.
type fixedCalculator struct {
	move game.Move
}

func (f fixedCalculator) CalculateNextMove(context.Context, *game.Board, game.Color, string) game.Move {
	return f.move
}

type fixture struct {
	room       *Room
	gameRepo   repository.GameRepository
	playerRepo repository.PlayerRepository
	bus        *events.LocalBus
	leave      chan *player.Player
	black      *client
	white      *client
}

func newFixture(t *testing.T, s Settings, calc MoveCalculator) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{
		gameRepo:   repository.NewMemoryGameRepository(),
		playerRepo: repository.NewMemoryPlayerRepository(),
		bus:        events.NewLocalBus(),
		leave:      make(chan *player.Player, 2),
	}
	require.NoError(t, f.gameRepo.Create(ctx, "room-1", "alice", "bob"))

	alice, black := pipePlayer(t, "alice")
	bob, white := pipePlayer(t, "bob")
	f.black, f.white = black, white

	f.room = NewRoom("room-1", f.gameRepo, f.playerRepo, f.bus, calc, s)
	f.room.AddPlayer(alice)
	f.room.AddPlayer(bob)
	f.room.Start(f.leave)
	t.Cleanup(f.room.Close)

	require.NoError(t, f.room.SendAssignments(ctx))
	initial := "BOARD:" + game.NewBoard().Encode()
	f.black.expect(t, "WELCOME:BLACK", initial, "YOUR_TURN")
	f.white.expect(t, "WELCOME:WHITE", initial, "WAIT_TURN")
	return f
}

func defaultSettings() Settings {
	return Settings{MoveTimeout: time.Minute, HeartbeatInterval: time.Minute}
}

func boardAfter(moves ...game.Move) string {
	b := game.NewBoard()
	c := game.Black
	for _, m := range moves {
		b.ComputeLegalMoves(c)
		b.ApplyMove(m.X, m.Y, c)
		c = c.Opponent()
	}
	return "BOARD:" + b.Encode()
}

func TestRoom_MoveIsBroadcast(t *testing.T) {
	f := newFixture(t, defaultSettings(), fixedCalculator{move: game.NoMove})

	// When: Black plays a legal move
	f.black.send(t, "MOVE:2,3")

	// Then: both players see the new board and the turn passes to White
	board := boardAfter(game.Move{X: 2, Y: 3})
	f.black.expect(t, board, "WAIT_TURN")
	f.white.expect(t, board, "YOUR_TURN")

	state, err := f.gameRepo.FindByID(context.Background(), "room-1")
	require.NoError(t, err)
	assert.Equal(t, game.White, state.Snapshot.Turn)
}

func TestRoom_RejectedMoves(t *testing.T) {
	f := newFixture(t, defaultSettings(), fixedCalculator{move: game.NoMove})

	tests := []struct {
		name   string
		client func() *client
		line   string
		reply  string
	}{
		{name: "out of turn", client: func() *client { return f.white }, line: "MOVE:4,2", reply: "NOT_YOUR_TURN"},
		{name: "illegal square", client: func() *client { return f.black }, line: "MOVE:0,0", reply: "INVALID_MOVE"},
		{name: "off the board", client: func() *client { return f.black }, line: "MOVE:8,1", reply: "INVALID_MOVE"},
		{name: "garbled", client: func() *client { return f.black }, line: "MOVE:x", reply: "INVALID_MOVE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.client()
			c.send(t, tt.line)
			c.expect(t, tt.reply)
		})
	}

	// The position is untouched.
	state, err := f.gameRepo.FindByID(context.Background(), "room-1")
	require.NoError(t, err)
	assert.Equal(t, game.NewBoard().Encode(), state.Snapshot.Board)
	f.white.expectNothing(t)
}

func TestRoom_PingIsAnswered(t *testing.T) {
	f := newFixture(t, defaultSettings(), fixedCalculator{move: game.NoMove})

	f.white.send(t, "PING")
	f.white.expect(t, "PONG")

	f.white.send(t, "PONG")
	f.white.send(t, "HELLO")
	f.white.expectNothing(t)
}

func TestRoom_HeartbeatPingsPlayers(t *testing.T) {
	gameRepo := repository.NewMemoryGameRepository()
	require.NoError(t, gameRepo.Create(context.Background(), "room-1", "alice", "bob"))
	alice, black := pipePlayer(t, "alice")
	bob, white := pipePlayer(t, "bob")

	r := NewRoom("room-1", gameRepo, repository.NewMemoryPlayerRepository(), events.NewLocalBus(),
		fixedCalculator{move: game.NoMove}, Settings{MoveTimeout: time.Minute, HeartbeatInterval: 20 * time.Millisecond})
	r.AddPlayer(alice)
	r.AddPlayer(bob)
	r.Start(make(chan *player.Player, 2))
	t.Cleanup(r.Close)

	black.expect(t, "PING")
	white.expect(t, "PING")
}

func TestRoom_MoveTimeoutPlaysProxyMove(t *testing.T) {
	s := defaultSettings()
	s.MoveTimeout = 50 * time.Millisecond
	f := newFixture(t, s, fixedCalculator{move: game.Move{X: 3, Y: 2}})

	// Given: Black does not move in time
	// Then: the proxy move (3,2) is played for Black
	board := boardAfter(game.Move{X: 3, Y: 2})
	f.black.expect(t, board, "WAIT_TURN")
	f.white.expect(t, board, "YOUR_TURN")
}

func TestRoom_DisconnectForfeits(t *testing.T) {
	f := newFixture(t, defaultSettings(), fixedCalculator{move: game.NoMove})
	ctx := context.Background()
	sub, stop := f.bus.Subscribe(ctx)
	defer stop()

	// When: White's connection drops
	f.white.send(t, "DISCONNECT")

	// Then: White leaves the room and the event is published
	select {
	case p := <-f.leave:
		assert.Equal(t, "bob", p.ID)
		assert.Equal(t, player.StatusDisconnected, p.Status)
	case <-time.After(2 * time.Second):
		t.Fatal("player was not handed back")
	}

	var ev events.Event
	select {
	case ev = <-sub:
	case <-time.After(2 * time.Second):
		t.Fatal("player_disconnected not published")
	}
	var payload events.PlayerDisconnectedPayload
	require.NoError(t, ev.Decode(&payload))
	assert.Equal(t, events.PlayerDisconnectedPayload{RoomID: "room-1", PlayerID: "bob"}, payload)

	presence, err := f.playerRepo.Find(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, player.StatusDisconnected, presence.ConnectionStatus)

	// When: the hub reports the disconnect to the room
	f.room.HandleOpponentDisconnected(ctx, payload.PlayerID)

	// Then: Black is told and wins by forfeit
	f.black.expect(t, "OPPONENT_DISCONNECTED")
	state, err := f.gameRepo.FindByID(ctx, "room-1")
	require.NoError(t, err)
	assert.True(t, state.Snapshot.Over)
	assert.Equal(t, game.ResultBlackWins, state.Snapshot.Result)

	// A finished game refuses further moves.
	f.black.send(t, "MOVE:2,3")
	f.black.expect(t, "NOT_YOUR_TURN")
}

func TestRoom_RemovePlayer(t *testing.T) {
	r := NewRoom("r", nil, nil, nil, nil, defaultSettings())
	human := player.NewPlayer("alice", nil)
	bot := player.NewPlayer("bot-1", nil)
	bot.IsBot = true
	r.AddPlayer(human)
	r.AddPlayer(bot)

	assert.False(t, r.RemovePlayer("alice"))
	assert.Len(t, r.Players, 1)
	assert.False(t, r.RemovePlayer("nobody"))
}
