package game

import (
	"fmt"
	"strings"
)

// Size is the width and height of a Reversi board.
const Size = 8

// Cell is the state of a single square.
type Cell uint8

const (
	CellEmpty Cell = iota
	CellBlack
	CellWhite
	// CellLegal marks an empty square the queried color may play. It is derived
	// state and is never persisted.
	CellLegal
)

// String returns a one-character rendering of the cell.
func (c Cell) String() string {
	switch c {
	case CellBlack:
		return "B"
	case CellWhite:
		return "W"
	case CellLegal:
		return "*"
	default:
		return "."
	}
}

// Color identifies a side.
type Color uint8

const (
	Black Color = Color(CellBlack)
	White Color = Color(CellWhite)
)

// Valid reports whether c is Black or White.
func (c Color) Valid() bool {
	return c == Black || c == White
}

// Opponent returns the other side.
func (c Color) Opponent() Color {
	if c == Black {
		return White
	}
	return Black
}

// Cell returns the cell value of a disc of this color.
func (c Color) Cell() Cell {
	return Cell(c)
}

func (c Color) index() int {
	if c == White {
		return 1
	}
	return 0
}

func (c Color) String() string {
	switch c {
	case Black:
		return "BLACK"
	case White:
		return "WHITE"
	default:
		return ""
	}
}

// MarshalText encodes the color as BLACK or WHITE.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes BLACK or WHITE. An empty value leaves the zero color.
func (c *Color) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*c = 0
		return nil
	}
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseColor parses BLACK or WHITE, ignoring case.
func ParseColor(s string) (Color, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BLACK":
		return Black, nil
	case "WHITE":
		return White, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidColor, s)
}

// Move is a square addressed by column x and row y.
type Move struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// NoMove is returned when a side has nothing to play.
var NoMove = Move{X: -1, Y: -1}

// IsNone reports whether m is the NoMove sentinel.
func (m Move) IsNone() bool {
	return m == NoMove
}

func (m Move) String() string {
	return fmt.Sprintf("(%d,%d)", m.X, m.Y)
}

// Board is an 8x8 grid indexed [y][x]. The zero value is an empty board.
// Boards are plain values, so assigning or cloning one never aliases cells.
type Board struct {
	cells [Size][Size]Cell
}

// NewBoard returns a board in the starting position.
func NewBoard() *Board {
	b := &Board{}
	b.Initialize()
	return b
}

// Initialize resets the board to the starting position and drops all markers.
func (b *Board) Initialize() {
	b.cells = [Size][Size]Cell{}
	mid := Size / 2
	b.cells[mid-1][mid-1], b.cells[mid][mid] = CellWhite, CellWhite
	b.cells[mid-1][mid], b.cells[mid][mid-1] = CellBlack, CellBlack
}

// InBounds reports whether (x, y) is on the board.
func InBounds(x, y int) bool {
	return x >= 0 && x < Size && y >= 0 && y < Size
}

// At returns the cell at (x, y). Off-board squares read as empty.
func (b *Board) At(x, y int) Cell {
	if !InBounds(x, y) {
		return CellEmpty
	}
	return b.cells[y][x]
}

// Set overwrites the cell at (x, y). It panics when (x, y) is off the board.
func (b *Board) Set(x, y int, c Cell) {
	if !InBounds(x, y) {
		panic(fmt.Sprintf("game: square (%d,%d) is off the board", x, y))
	}
	b.cells[y][x] = c
}

// Clone returns an independent copy of the board.
func (b *Board) Clone() *Board {
	c := *b
	return &c
}

// ClearMarkers turns every legal-move marker back into an empty square.
func (b *Board) ClearMarkers() {
	for y := range b.cells {
		for x := range b.cells[y] {
			if b.cells[y][x] == CellLegal {
				b.cells[y][x] = CellEmpty
			}
		}
	}
}

// Count returns the number of discs of the given color.
func (b *Board) Count(c Color) int {
	n := 0
	for y := range b.cells {
		for x := range b.cells[y] {
			if b.cells[y][x] == c.Cell() {
				n++
			}
		}
	}
	return n
}

// Score returns the disc count for both sides.
func (b *Board) Score() (black, white int) {
	return b.Count(Black), b.Count(White)
}

// Full reports whether every square holds a disc.
func (b *Board) Full() bool {
	for y := range b.cells {
		for x := range b.cells[y] {
			if c := b.cells[y][x]; c == CellEmpty || c == CellLegal {
				return false
			}
		}
	}
	return true
}

// String renders the board one row per line.
func (b *Board) String() string {
	var sb strings.Builder
	for y := range b.cells {
		for x := range b.cells[y] {
			sb.WriteString(b.cells[y][x].String())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
