package network

import (
	"ctchen222/reversi/internal/game"
	"ctchen222/reversi/pkg/proto"
	"errors"
)

var (
	ErrNotConnected = errors.New("not connected to server")
	ErrNotYourTurn  = errors.New("not your turn")
	ErrGameOver     = errors.New("game is over")
)

// Status texts shown to the player.
const (
	StatusConnecting       = "Connecting..."
	StatusConnected        = "Connected to server"
	StatusResolveFailed    = "Can't resolve server address"
	StatusTimeout          = "Connection timeout"
	StatusConnectError     = "Connection error"
	StatusDisconnected     = "Disconnected from server"
	StatusInvalidMove      = "Invalid move! Please try again."
	StatusNotYourTurn      = "Not your turn! Please wait."
	StatusMoveSent         = "Move sent, waiting for confirmation..."
	StatusOpponentLeft     = "Opponent disconnected"
	StatusGameOverTemplate = "Game over: %s"
)

// State is the protocol state of a session.
type State int

const (
	StateConnecting State = iota
	StateConnected
	StateMyTurn
	StateWaitingForOpponent
	StateGameOver
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateMyTurn:
		return "my_turn"
	case StateWaitingForOpponent:
		return "waiting_for_opponent"
	case StateGameOver:
		return "game_over"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Outcome is the end of a game from this client's point of view.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeWin
	OutcomeLoss
	OutcomeTie
)

func (o Outcome) String() string {
	switch o {
	case OutcomeWin:
		return "You win"
	case OutcomeLoss:
		return "Opponent wins"
	case OutcomeTie:
		return "Tie"
	default:
		return ""
	}
}

// outcomeFor resolves a result against the client's own color.
func outcomeFor(r game.Result, own game.Color) Outcome {
	if r == game.ResultTie {
		return OutcomeTie
	}
	winner, ok := r.Winner()
	if !ok || !own.Valid() {
		return OutcomeNone
	}
	if winner == own {
		return OutcomeWin
	}
	return OutcomeLoss
}

// View is a consistent copy of the session state for the foreground.
type View struct {
	State   State
	Color   game.Color
	MyTurn  bool
	Board   game.Board
	Black   int
	White   int
	Status  string
	Outcome Outcome
	Scores  *proto.Scores
}

// Event is posted for every message handled by the receive loop and once
// when the connection drops. Message is zero in the latter case.
type Event struct {
	Message proto.Message
	View    View
}
