package proto

import (
	"ctchen222/reversi/internal/game"
	"ctchen222/reversi/internal/validator"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrUnknownMessage = errors.New("unknown message")
	ErrMalformed      = errors.New("malformed message")
)

// Kind is the keyword that starts every line.
type Kind string

const (
	KindWelcome              Kind = "WELCOME"
	KindBoard                Kind = "BOARD"
	KindYourTurn             Kind = "YOUR_TURN"
	KindWaitTurn             Kind = "WAIT_TURN"
	KindGameEnd              Kind = "GAME_END"
	KindInvalidMove          Kind = "INVALID_MOVE"
	KindNotYourTurn          Kind = "NOT_YOUR_TURN"
	KindPing                 Kind = "PING"
	KindPong                 Kind = "PONG"
	KindOpponentDisconnected Kind = "OPPONENT_DISCONNECTED"
	KindDisconnect           Kind = "DISCONNECT"
	KindMove                 Kind = "MOVE"
)

const sep = ":"

// Scores are the final disc counts carried by GAME_END, player one (Black)
// first.
type Scores struct {
	Black int
	White int
}

// Message is one protocol line. Only the fields belonging to Kind are set.
type Message struct {
	Kind   Kind
	Color  game.Color  // WELCOME
	Board  *game.Board // BOARD
	Result game.Result // GAME_END
	Scores *Scores     // GAME_END, optional
	Move   game.Move   // MOVE
}

// Bare messages carry no payload.
var (
	YourTurn             = Message{Kind: KindYourTurn}
	WaitTurn             = Message{Kind: KindWaitTurn}
	InvalidMove          = Message{Kind: KindInvalidMove}
	NotYourTurn          = Message{Kind: KindNotYourTurn}
	Ping                 = Message{Kind: KindPing}
	Pong                 = Message{Kind: KindPong}
	OpponentDisconnected = Message{Kind: KindOpponentDisconnected}
	Disconnect           = Message{Kind: KindDisconnect}
)

// Welcome assigns a color to a client.
func Welcome(c game.Color) Message {
	return Message{Kind: KindWelcome, Color: c}
}

// BoardSnapshot carries the authoritative position.
func BoardSnapshot(b *game.Board) Message {
	return Message{Kind: KindBoard, Board: b.Clone()}
}

// GameEnd announces the result with final disc counts.
func GameEnd(r game.Result, black, white int) Message {
	return Message{Kind: KindGameEnd, Result: r, Scores: &Scores{Black: black, White: white}}
}

// MoveTo is a client's move attempt.
func MoveTo(x, y int) Message {
	return Message{Kind: KindMove, Move: game.Move{X: x, Y: y}}
}

// String formats the message as a protocol line without a trailing newline.
func (m Message) String() string {
	switch m.Kind {
	case KindWelcome:
		return string(m.Kind) + sep + m.Color.String()
	case KindBoard:
		if m.Board == nil {
			return string(m.Kind) + sep + game.NewBoard().Encode()
		}
		return string(m.Kind) + sep + m.Board.Encode()
	case KindGameEnd:
		line := string(m.Kind) + sep + m.Result.String()
		if m.Scores != nil {
			line += sep + strconv.Itoa(m.Scores.Black) + sep + strconv.Itoa(m.Scores.White)
		}
		return line
	case KindMove:
		return fmt.Sprintf("%s%s%d,%d", m.Kind, sep, m.Move.X, m.Move.Y)
	default:
		return string(m.Kind)
	}
}

// movePayload bounds MOVE coordinates to the board.
type movePayload struct {
	X int `validate:"min=0,max=7"`
	Y int `validate:"min=0,max=7"`
}

// Parse decodes one protocol line. Trailing CR/LF is ignored.
func Parse(line string) (Message, error) {
	line = strings.TrimRight(line, "\r\n")
	head, payload, hasPayload := strings.Cut(line, sep)
	kind := Kind(head)

	switch kind {
	case KindYourTurn, KindWaitTurn, KindInvalidMove, KindNotYourTurn,
		KindPing, KindPong, KindOpponentDisconnected, KindDisconnect:
		if hasPayload {
			return Message{}, fmt.Errorf("%w: %s takes no payload", ErrMalformed, kind)
		}
		return Message{Kind: kind}, nil

	case KindWelcome:
		c, err := game.ParseColor(payload)
		if err != nil {
			return Message{}, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		return Welcome(c), nil

	case KindBoard:
		b, err := game.DecodeBoard(payload)
		if err != nil {
			return Message{}, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		return Message{Kind: KindBoard, Board: b}, nil

	case KindGameEnd:
		return parseGameEnd(payload)

	case KindMove:
		return parseMove(payload)
	}
	return Message{}, fmt.Errorf("%w: %q", ErrUnknownMessage, head)
}

func parseGameEnd(payload string) (Message, error) {
	fields := strings.Split(payload, sep)
	// Some servers report an abandoned game as GAME_END:OPPONENT_DISCONNECTED.
	if fields[0] == string(KindOpponentDisconnected) {
		return OpponentDisconnected, nil
	}

	r, err := game.ParseResult(fields[0])
	if err != nil {
		return Message{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	msg := Message{Kind: KindGameEnd, Result: r}

	switch len(fields) {
	case 1:
		return msg, nil
	case 3:
		black, errB := strconv.Atoi(fields[1])
		white, errW := strconv.Atoi(fields[2])
		if errB != nil || errW != nil {
			return Message{}, fmt.Errorf("%w: scores %q", ErrMalformed, payload)
		}
		msg.Scores = &Scores{Black: black, White: white}
		return msg, nil
	default:
		return Message{}, fmt.Errorf("%w: game end %q", ErrMalformed, payload)
	}
}

func parseMove(payload string) (Message, error) {
	xs, ys, ok := strings.Cut(payload, ",")
	if !ok {
		return Message{}, fmt.Errorf("%w: move %q", ErrMalformed, payload)
	}
	x, errX := strconv.Atoi(strings.TrimSpace(xs))
	y, errY := strconv.Atoi(strings.TrimSpace(ys))
	if errX != nil || errY != nil {
		return Message{}, fmt.Errorf("%w: move %q", ErrMalformed, payload)
	}
	if err := validator.GetValidator().Struct(movePayload{X: x, Y: y}); err != nil {
		return Message{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return MoveTo(x, y), nil
}
