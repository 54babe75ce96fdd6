package bot

import (
	"ctchen222/reversi/internal/game"
	"math"
)

// SelectMove returns the best move for c looking depth plies ahead, or
// game.NoMove when c has no legal move. The board, markers included, is not
// modified.
func SelectMove(b *game.Board, c game.Color, depth int) game.Move {
	s := &search{}
	return s.selectMove(b, c, depth)
}

// search carries the per-call node count.
type search struct {
	nodes int64
}

// polarity maps Evaluate onto the mover's point of view. Evaluate is always
// White minus Black, so a Black root negates it.
func polarity(c game.Color) int {
	if c == game.Black {
		return -1
	}
	return 1
}

func (s *search) selectMove(b *game.Board, c game.Color, depth int) game.Move {
	root := b.Clone()
	if root.ComputeLegalMoves(c) == 0 {
		return game.NoMove
	}

	sign := polarity(c)
	best := game.NoMove
	bestScore := math.MinInt
	for _, m := range root.LegalMoves() {
		child := root.Clone()
		child.ApplyMove(m.X, m.Y, c)
		score := sign * s.minimax(child, depth-1, c.Opponent(), math.MinInt, math.MaxInt)
		// Strictly greater keeps the first of equal moves.
		if best.IsNone() || score > bestScore {
			best, bestScore = m, score
		}
	}
	return best
}

// minimax searches b with toMove to play. White's layers maximize and Black's
// minimize. A side with no legal move is treated as a leaf, whether or not its
// opponent could still move.
func (s *search) minimax(b *game.Board, depth int, toMove game.Color, alpha, beta int) int {
	s.nodes++
	if depth <= 0 || b.ComputeLegalMoves(toMove) == 0 {
		return Evaluate(b)
	}

	maximizing := toMove == game.White
	value := math.MaxInt
	if maximizing {
		value = math.MinInt
	}

	for _, m := range b.LegalMoves() {
		child := b.Clone()
		child.ApplyMove(m.X, m.Y, toMove)
		score := s.minimax(child, depth-1, toMove.Opponent(), alpha, beta)

		if maximizing {
			value = max(value, score)
			alpha = max(alpha, value)
		} else {
			value = min(value, score)
			beta = min(beta, value)
		}
		if beta <= alpha {
			break
		}
	}
	return value
}
