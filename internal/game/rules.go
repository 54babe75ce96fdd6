package game

import "fmt"

var directions = [8]struct{ dx, dy int }{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// ComputeLegalMoves clears all markers and marks every square the given color
// may play. It returns the number of markers placed; zero means the color must
// pass.
func (b *Board) ComputeLegalMoves(c Color) int {
	b.ClearMarkers()

	own, opp := c.Cell(), c.Opponent().Cell()
	marked := 0
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			if b.cells[y][x] != own {
				continue
			}
			for _, d := range directions {
				cx, cy := x+d.dx, y+d.dy
				run := 0
				for InBounds(cx, cy) && b.cells[cy][cx] == opp {
					cx, cy = cx+d.dx, cy+d.dy
					run++
				}
				// A square reached twice is already CellLegal and counted once.
				if run > 0 && InBounds(cx, cy) && b.cells[cy][cx] == CellEmpty {
					b.cells[cy][cx] = CellLegal
					marked++
				}
			}
		}
	}
	return marked
}

// LegalMoves lists the marked squares in row-major order.
func (b *Board) LegalMoves() []Move {
	var moves []Move
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			if b.cells[y][x] == CellLegal {
				moves = append(moves, Move{X: x, Y: y})
			}
		}
	}
	return moves
}

// IsLegal reports whether (x, y) currently carries a legal-move marker.
func (b *Board) IsLegal(x, y int) bool {
	return b.At(x, y) == CellLegal
}

// CanMove reports whether the color has any legal move. The receiver's
// markers are left untouched.
func (b *Board) CanMove(c Color) bool {
	return b.Clone().ComputeLegalMoves(c) > 0
}

// ApplyMove places a disc of color c at (x, y) and flips every opposing run
// anchored by one of c's discs. The square must carry a legal-move marker from
// ComputeLegalMoves(c); anything else is a caller bug and panics with
// ErrIllegalMove. Markers elsewhere are left as they are. It returns the number
// of flipped discs.
func (b *Board) ApplyMove(x, y int, c Color) int {
	if !b.IsLegal(x, y) {
		panic(fmt.Errorf("%w: %s at (%d,%d)", ErrIllegalMove, c, x, y))
	}

	own, opp := c.Cell(), c.Opponent().Cell()
	b.cells[y][x] = own

	flipped := 0
	for _, d := range directions {
		cx, cy := x+d.dx, y+d.dy
		run := 0
		for InBounds(cx, cy) && b.cells[cy][cx] == opp {
			cx, cy = cx+d.dx, cy+d.dy
			run++
		}
		if run == 0 || !InBounds(cx, cy) || b.cells[cy][cx] != own {
			continue
		}
		for i := 1; i <= run; i++ {
			b.cells[y+i*d.dy][x+i*d.dx] = own
		}
		flipped += run
	}
	return flipped
}
