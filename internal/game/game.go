package game

import (
	"context"
	"fmt"
)

// Result is the outcome of a finished game.
type Result uint8

const (
	ResultNone Result = iota
	ResultBlackWins
	ResultWhiteWins
	ResultTie
)

func (r Result) String() string {
	switch r {
	case ResultBlackWins:
		return "BLACK_WINS"
	case ResultWhiteWins:
		return "WHITE_WINS"
	case ResultTie:
		return "TIE"
	default:
		return ""
	}
}

// Winner returns the winning color, or false for a tie or an unfinished game.
func (r Result) Winner() (Color, bool) {
	switch r {
	case ResultBlackWins:
		return Black, true
	case ResultWhiteWins:
		return White, true
	default:
		return 0, false
	}
}

// MarshalText encodes the result as its wire name.
func (r Result) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText decodes a wire name. An empty value is ResultNone.
func (r *Result) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*r = ResultNone
		return nil
	}
	parsed, err := ParseResult(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ParseResult parses BLACK_WINS, WHITE_WINS or TIE.
func ParseResult(s string) (Result, error) {
	switch s {
	case "BLACK_WINS":
		return ResultBlackWins, nil
	case "WHITE_WINS":
		return ResultWhiteWins, nil
	case "TIE":
		return ResultTie, nil
	}
	return ResultNone, fmt.Errorf("%w: %q", ErrInvalidResult, s)
}

// ResultFromScore decides a finished game by disc count.
func ResultFromScore(black, white int) Result {
	switch {
	case black > white:
		return ResultBlackWins
	case white > black:
		return ResultWhiteWins
	default:
		return ResultTie
	}
}

func forfeit(loser Color) Result {
	if loser == Black {
		return ResultWhiteWins
	}
	return ResultBlackWins
}

// DefaultChances is how many turn timeouts a player may spend before forfeiting.
const DefaultChances = 3

// Mover picks a move for a color. The search engine implements it.
type Mover interface {
	NextMove(ctx context.Context, b *Board, c Color) Move
}

// Settings configures a new local game.
type Settings struct {
	Names      [2]string
	VsAI       bool
	AIColor    Color
	Difficulty string
	Chances    int
}

// Game is a local match: board, turn, pass and end detection, undo and turn
// timeouts. Black moves first and is player one.
type Game struct {
	board      Board
	turn       Color
	names      [2]string
	vsAI       bool
	aiColor    Color
	difficulty string
	chances    [2]int
	result     Result
	over       bool
	passed     bool
	history    []Snapshot
}

// NewGame starts a game from the initial position with Black to move.
func NewGame(s Settings) *Game {
	chances := s.Chances
	if chances <= 0 {
		chances = DefaultChances
	}
	aiColor := s.AIColor
	if s.VsAI && !aiColor.Valid() {
		aiColor = White
	}

	g := &Game{
		turn:       Black,
		names:      s.Names,
		vsAI:       s.VsAI,
		aiColor:    aiColor,
		difficulty: s.Difficulty,
		chances:    [2]int{chances, chances},
	}
	g.board.Initialize()
	g.board.ComputeLegalMoves(g.turn)
	return g
}

// Board returns a copy of the board, including the current side's markers.
func (g *Game) Board() Board {
	return g.board
}

// Turn returns the side to move.
func (g *Game) Turn() Color {
	return g.turn
}

// LegalMoves lists the moves available to the side to move.
func (g *Game) LegalMoves() []Move {
	if g.over {
		return nil
	}
	return g.board.LegalMoves()
}

// Score returns the disc count for both sides.
func (g *Game) Score() (black, white int) {
	return g.board.Score()
}

// Over reports whether the game has finished.
func (g *Game) Over() bool {
	return g.over
}

// Result returns the outcome, ResultNone while the game is running.
func (g *Game) Result() Result {
	return g.result
}

// Passed reports whether the last ply skipped the opponent's turn because it
// had no legal move.
func (g *Game) Passed() bool {
	return g.passed
}

// Chances returns the remaining timeouts of the given side.
func (g *Game) Chances(c Color) int {
	return g.chances[c.index()]
}

// Name returns the display name of the given side.
func (g *Game) Name(c Color) string {
	return g.names[c.index()]
}

// VsAI reports whether one side is played by the computer.
func (g *Game) VsAI() bool {
	return g.vsAI
}

// AIColor returns the computer's color in a vs-AI game.
func (g *Game) AIColor() Color {
	return g.aiColor
}

// Difficulty returns the stored difficulty name.
func (g *Game) Difficulty() string {
	return g.difficulty
}

// Play places a disc for the side to move.
func (g *Game) Play(x, y int) error {
	if g.over {
		return ErrGameOver
	}
	if !g.board.IsLegal(x, y) {
		return fmt.Errorf("%w: %s cannot play (%d,%d)", ErrIllegalMove, g.turn, x, y)
	}

	g.history = append(g.history, g.Snapshot())
	g.board.ApplyMove(x, y, g.turn)
	g.advance(g.turn.Opponent())
	return nil
}

// AITurn asks m for the computer's move and plays it.
func (g *Game) AITurn(ctx context.Context, m Mover) (Move, error) {
	if g.over {
		return NoMove, ErrGameOver
	}
	if !g.vsAI || g.turn != g.aiColor {
		return NoMove, ErrNotAITurn
	}

	scratch := g.board.Clone()
	move := m.NextMove(ctx, scratch, g.turn)
	if move.IsNone() {
		// Unreachable while advance skips sides without moves.
		g.advance(g.turn.Opponent())
		return NoMove, nil
	}
	if err := g.Play(move.X, move.Y); err != nil {
		return NoMove, err
	}
	return move, nil
}

// Timeout charges the side to move one chance for running out of time and
// passes its turn. A side with no chances left forfeits.
func (g *Game) Timeout() error {
	if g.over {
		return ErrGameOver
	}

	g.history = append(g.history, g.Snapshot())
	i := g.turn.index()
	g.chances[i]--
	if g.chances[i] <= 0 {
		g.chances[i] = 0
		g.finish(forfeit(g.turn))
		return nil
	}
	g.advance(g.turn.Opponent())
	return nil
}

// Forfeit ends the game in the opponent's favor.
func (g *Game) Forfeit(loser Color) error {
	if g.over {
		return ErrGameOver
	}
	if !loser.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidColor, loser)
	}
	g.history = append(g.history, g.Snapshot())
	g.finish(forfeit(loser))
	return nil
}

// Undo steps back one ply. In a vs-AI game it keeps stepping back until the
// human is to move again.
func (g *Game) Undo() error {
	if len(g.history) == 0 {
		return ErrNothingToUndo
	}
	for {
		last := g.history[len(g.history)-1]
		g.history = g.history[:len(g.history)-1]
		if err := g.restore(last); err != nil {
			return err
		}
		if !g.vsAI || g.turn != g.aiColor || len(g.history) == 0 {
			return nil
		}
	}
}

// advance hands the turn to next, passing back when next has no move and
// finishing the game when neither side can move.
func (g *Game) advance(next Color) {
	g.passed = false
	if g.board.ComputeLegalMoves(next) > 0 {
		g.turn = next
		return
	}
	if g.board.ComputeLegalMoves(next.Opponent()) > 0 {
		g.turn = next.Opponent()
		g.passed = true
		return
	}
	g.finish(ResultFromScore(g.board.Score()))
}

func (g *Game) finish(r Result) {
	g.board.ClearMarkers()
	g.result = r
	g.over = true
}
