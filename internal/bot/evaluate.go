package bot

import "ctchen222/reversi/internal/game"

const (
	cornerBonus = 10
	edgeBonus   = 2
)

// weights holds the positional value of a disc on each square.
var weights = func() (w [game.Size][game.Size]int) {
	last := game.Size - 1
	for y := 0; y < game.Size; y++ {
		for x := 0; x < game.Size; x++ {
			w[y][x] = 1
			onEdgeX := x == 0 || x == last
			onEdgeY := y == 0 || y == last
			switch {
			case onEdgeX && onEdgeY:
				w[y][x] += cornerBonus
			case onEdgeX || onEdgeY:
				w[y][x] += edgeBonus
			}
		}
	}
	return w
}()

// Evaluate scores a position as White's weighted disc total minus Black's.
// Legal-move markers are ignored.
func Evaluate(b *game.Board) int {
	score := 0
	for y := 0; y < game.Size; y++ {
		for x := 0; x < game.Size; x++ {
			switch b.At(x, y) {
			case game.CellWhite:
				score += weights[y][x]
			case game.CellBlack:
				score -= weights[y][x]
			}
		}
	}
	return score
}
