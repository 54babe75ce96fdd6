package game

import "fmt"

// Snapshot is the persistable state of a Game. Legal-move markers are not part
// of it; they are recomputed on restore.
type Snapshot struct {
	Board      string    `json:"board" validate:"len=64"`
	Turn       Color     `json:"turn" validate:"required"`
	Names      [2]string `json:"names"`
	VsAI       bool      `json:"vs_ai"`
	AIColor    Color     `json:"ai_color,omitempty"`
	Difficulty string    `json:"difficulty,omitempty" validate:"omitempty,difficulty"`
	Chances    [2]int    `json:"chances"`
	Result     Result    `json:"result,omitempty"`
	Over       bool      `json:"over"`
}

// Snapshot captures the game state.
func (g *Game) Snapshot() Snapshot {
	return Snapshot{
		Board:      g.board.Encode(),
		Turn:       g.turn,
		Names:      g.names,
		VsAI:       g.vsAI,
		AIColor:    g.aiColor,
		Difficulty: g.difficulty,
		Chances:    g.chances,
		Result:     g.result,
		Over:       g.over,
	}
}

// Restore rebuilds a game from a snapshot. Undo history starts empty.
func Restore(s Snapshot) (*Game, error) {
	g := &Game{}
	if err := g.restore(s); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Game) restore(s Snapshot) error {
	board, err := DecodeBoard(s.Board)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	if !s.Turn.Valid() {
		return fmt.Errorf("%w: turn %d", ErrInvalidSnapshot, s.Turn)
	}
	if s.VsAI && !s.AIColor.Valid() {
		return fmt.Errorf("%w: vs-AI game without a computer color", ErrInvalidSnapshot)
	}
	for _, c := range s.Chances {
		if c < 0 {
			return fmt.Errorf("%w: negative chances", ErrInvalidSnapshot)
		}
	}

	g.board = *board
	g.turn = s.Turn
	g.names = s.Names
	g.vsAI = s.VsAI
	g.aiColor = s.AIColor
	g.difficulty = s.Difficulty
	g.chances = s.Chances
	g.result = s.Result
	g.over = s.Over
	g.passed = false
	if g.over || g.board.ComputeLegalMoves(g.turn) > 0 {
		return nil
	}
	// The side to move is stuck: it passes, or the game ends.
	if g.board.ComputeLegalMoves(g.turn.Opponent()) > 0 {
		g.turn = g.turn.Opponent()
		g.passed = true
		return nil
	}
	g.finish(ResultFromScore(g.board.Score()))
	return nil
}
