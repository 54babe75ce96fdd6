package network

import (
	"context"
	"ctchen222/reversi/internal/game"
	"ctchen222/reversi/internal/transport"
	"ctchen222/reversi/pkg/proto"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	DefaultHeartbeatInterval = 30 * time.Second
	DefaultHeartbeatTick     = time.Second
	DefaultEventBuffer       = 64
)

var (
	tracer = otel.Tracer("network")
	meter  = otel.Meter("network")

	heartbeats metric.Int64Counter
)

func init() {
	var err error
	heartbeats, err = meter.Int64Counter("reversi.session.heartbeats",
		metric.WithDescription("PING lines sent by idle client sessions"),
	)
	if err != nil {
		otel.Handle(err)
	}
}

// Option configures a Session.
type Option func(*Session)

// WithClock replaces time.Now for heartbeat bookkeeping.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithHeartbeat sets how long the session may stay silent before sending
// PING and how often that is checked.
func WithHeartbeat(interval, tick time.Duration) Option {
	return func(s *Session) {
		if interval > 0 {
			s.heartbeatInterval = interval
		}
		if tick > 0 {
			s.heartbeatTick = tick
		}
	}
}

// WithEventBuffer sets the capacity of the Events channel.
func WithEventBuffer(n int) Option {
	return func(s *Session) {
		if n >= 0 {
			s.eventBuffer = n
		}
	}
}

// Session mirrors a game hosted by a remote authority. A receive loop and a
// heartbeat loop run in the background once Start is called; the foreground
// drains Events and reads Snapshot.
type Session struct {
	conn              transport.Conn
	now               func() time.Time
	heartbeatInterval time.Duration
	heartbeatTick     time.Duration
	eventBuffer       int

	mu       sync.RWMutex
	color    game.Color
	board    game.Board
	black    int
	white    int
	status   string
	outcome  Outcome
	scores   *proto.Scores
	lastSend time.Time

	sendMu    sync.Mutex
	started   atomic.Bool
	connected atomic.Bool
	myTurn    atomic.Bool
	over      atomic.Bool
	stopping  atomic.Bool

	events       chan Event
	eventsMu     sync.RWMutex
	eventsClosed bool

	done      chan struct{}
	haltOnce  sync.Once
	closeOnce sync.Once
	closeErr  error
	wg        sync.WaitGroup
}

// New wraps an established connection. Call Start to begin the protocol.
func New(conn transport.Conn, opts ...Option) *Session {
	s := &Session{
		conn:              conn,
		now:               time.Now,
		heartbeatInterval: DefaultHeartbeatInterval,
		heartbeatTick:     DefaultHeartbeatTick,
		eventBuffer:       DefaultEventBuffer,
		status:            StatusConnecting,
		done:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.events = make(chan Event, s.eventBuffer)
	return s
}

// Start enters the connected state and launches the receive and heartbeat
// loops. Later calls are no-ops.
func (s *Session) Start() {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	s.mu.Lock()
	s.lastSend = s.now()
	s.status = StatusConnected
	s.mu.Unlock()
	s.connected.Store(true)

	s.wg.Add(2)
	go s.receiveLoop()
	go s.heartbeatLoop()
}

// Events delivers handled messages in arrival order. It is closed by Close.
func (s *Session) Events() <-chan Event {
	return s.events
}

// State returns the current protocol state.
func (s *Session) State() State {
	switch {
	case s.over.Load():
		return StateGameOver
	case !s.started.Load():
		return StateConnecting
	case !s.connected.Load():
		return StateDisconnected
	}

	s.mu.RLock()
	assigned := s.color.Valid()
	s.mu.RUnlock()
	switch {
	case !assigned:
		return StateConnected
	case s.myTurn.Load():
		return StateMyTurn
	default:
		return StateWaitingForOpponent
	}
}

// Snapshot returns a copy of the session state.
func (s *Session) Snapshot() View {
	state := s.State()
	s.mu.RLock()
	defer s.mu.RUnlock()

	v := View{
		State:   state,
		Color:   s.color,
		MyTurn:  s.myTurn.Load(),
		Board:   s.board,
		Black:   s.black,
		White:   s.white,
		Status:  s.status,
		Outcome: s.outcome,
	}
	if s.scores != nil {
		scores := *s.scores
		v.Scores = &scores
	}
	return v
}

// LegalMoves returns the moves open to this client on the mirrored board.
// It is empty unless it is this client's turn.
func (s *Session) LegalMoves() []game.Move {
	if s.State() != StateMyTurn {
		return nil
	}
	s.mu.RLock()
	b := s.board
	c := s.color
	s.mu.RUnlock()

	b.ComputeLegalMoves(c)
	return b.LegalMoves()
}

// SendMove submits a move to the authority. The move must be legal on the
// mirrored board. The turn is given up before the write; INVALID_MOVE or
// NOT_YOUR_TURN from the authority corrects it.
func (s *Session) SendMove(x, y int) error {
	if !s.connected.Load() {
		return ErrNotConnected
	}
	if s.over.Load() {
		return ErrGameOver
	}
	if !s.isLegal(x, y) {
		return fmt.Errorf("%w: (%d,%d)", game.ErrIllegalMove, x, y)
	}
	if !s.myTurn.CompareAndSwap(true, false) {
		return ErrNotYourTurn
	}

	if err := s.send(proto.MoveTo(x, y).String()); err != nil {
		s.drop(err)
		return fmt.Errorf("send move: %w", err)
	}
	s.setStatus(StatusMoveSent)
	return nil
}

func (s *Session) isLegal(x, y int) bool {
	for _, m := range s.LegalMoves() {
		if m.X == x && m.Y == y {
			return true
		}
	}
	return false
}

// Close says goodbye to the authority, closes the transport and waits for
// both loops to finish. It is safe to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.stopping.Store(true)
		wasConnected := s.connected.Swap(false)
		s.myTurn.Store(false)
		s.halt()

		if wasConnected {
			if err := s.send(proto.Disconnect.String()); err != nil {
				slog.Debug("Goodbye not delivered", "error", err)
			}
		}
		s.closeErr = s.conn.Close()
		s.wg.Wait()

		s.eventsMu.Lock()
		s.eventsClosed = true
		close(s.events)
		s.eventsMu.Unlock()
	})
	return s.closeErr
}

func (s *Session) receiveLoop() {
	defer s.wg.Done()

	for {
		line, err := s.conn.Receive()
		if err != nil {
			if !s.stopping.Load() {
				s.drop(err)
			}
			return
		}

		msg, err := proto.Parse(line)
		if err != nil {
			slog.Warn("Dropping server message", "line", line, "error", err)
			continue
		}
		s.handle(msg)
		s.post(Event{Message: msg, View: s.Snapshot()})
	}
}

func (s *Session) heartbeatLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.heartbeatTick)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if s.now().Sub(s.lastSent()) < s.heartbeatInterval {
				continue
			}
			if err := s.send(proto.Ping.String()); err != nil {
				if !s.stopping.Load() {
					s.drop(err)
				}
				return
			}
			if heartbeats != nil {
				heartbeats.Add(context.Background(), 1)
			}
		}
	}
}

// handle applies one message to the session state.
func (s *Session) handle(msg proto.Message) {
	switch msg.Kind {
	case proto.KindWelcome:
		s.mu.Lock()
		if s.color.Valid() {
			s.mu.Unlock()
			slog.Warn("Ignoring repeated color assignment", "color", msg.Color.String())
			return
		}
		s.color = msg.Color
		s.mu.Unlock()
		s.myTurn.Store(msg.Color == game.Black)
		slog.Info("Assigned color", "color", msg.Color.String())

	case proto.KindBoard:
		s.mu.Lock()
		s.board = *msg.Board
		s.black, s.white = s.board.Score()
		s.mu.Unlock()

	case proto.KindYourTurn:
		s.myTurn.Store(true)

	case proto.KindWaitTurn:
		s.myTurn.Store(false)

	case proto.KindGameEnd:
		s.mu.Lock()
		outcome := outcomeFor(msg.Result, s.color)
		s.scores = msg.Scores
		s.mu.Unlock()
		s.finish(outcome, fmt.Sprintf(StatusGameOverTemplate, outcome))

	case proto.KindOpponentDisconnected:
		s.finish(OutcomeWin, StatusOpponentLeft)

	case proto.KindInvalidMove:
		s.myTurn.Store(true)
		s.setStatus(StatusInvalidMove)

	case proto.KindNotYourTurn:
		s.myTurn.Store(false)
		s.setStatus(StatusNotYourTurn)

	case proto.KindPing:
		if err := s.send(proto.Pong.String()); err != nil && !s.stopping.Load() {
			s.drop(err)
		}
	}
}

func (s *Session) finish(o Outcome, status string) {
	s.mu.Lock()
	s.outcome = o
	s.status = status
	s.mu.Unlock()
	s.myTurn.Store(false)
	s.over.Store(true)
	slog.Info("Game over", "outcome", o.String())
}

// send writes a line and records the time of the write.
func (s *Session) send(line string) error {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if err := s.conn.Send(line); err != nil {
		return err
	}
	s.mu.Lock()
	s.lastSend = s.now()
	s.mu.Unlock()
	return nil
}

func (s *Session) lastSent() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSend
}

func (s *Session) setStatus(status string) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
}

// drop moves the session to Disconnected after a transport failure.
func (s *Session) drop(err error) {
	if !s.connected.CompareAndSwap(true, false) {
		return
	}
	s.myTurn.Store(false)
	if !s.over.Load() {
		s.setStatus(StatusDisconnected)
	}
	slog.Warn("Disconnected from server", "error", err)

	// Halt first so a caller on the foreground goroutine, such as SendMove,
	// never waits on its own unread events.
	s.halt()
	s.tryPost(Event{View: s.Snapshot()})
	_ = s.conn.Close()
}

func (s *Session) halt() {
	s.haltOnce.Do(func() { close(s.done) })
}

// post hands an event to the foreground, giving up once the session halts.
func (s *Session) post(ev Event) {
	s.eventsMu.RLock()
	defer s.eventsMu.RUnlock()
	if s.eventsClosed {
		return
	}
	select {
	case s.events <- ev:
	case <-s.done:
	}
}

// tryPost delivers ev only if the buffer has room.
func (s *Session) tryPost(ev Event) {
	s.eventsMu.RLock()
	defer s.eventsMu.RUnlock()
	if s.eventsClosed {
		return
	}
	select {
	case s.events <- ev:
	default:
	}
}
