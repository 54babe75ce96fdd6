package game

import (
	"fmt"
	"strings"
)

// EncodedLen is the length of a board encoded by Encode.
const EncodedLen = Size * Size

const (
	codeEmpty = '.'
	codeBlack = 'B'
	codeWhite = 'W'
)

// Encode writes the board row-major, one character per square: B for black,
// W for white and '.' for everything else. Markers are not encoded.
func (b *Board) Encode() string {
	var sb strings.Builder
	sb.Grow(EncodedLen)
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			switch b.cells[y][x] {
			case CellBlack:
				sb.WriteByte(codeBlack)
			case CellWhite:
				sb.WriteByte(codeWhite)
			default:
				sb.WriteByte(codeEmpty)
			}
		}
	}
	return sb.String()
}

// DecodeBoard parses a string produced by Encode. Any character other than B
// or W decodes as an empty square, so peers may use their own empty code.
func DecodeBoard(s string) (*Board, error) {
	if len(s) != EncodedLen {
		return nil, fmt.Errorf("%w: got %d", ErrEncodedLength, len(s))
	}
	b := &Board{}
	for i := 0; i < EncodedLen; i++ {
		switch s[i] {
		case codeBlack:
			b.cells[i/Size][i%Size] = CellBlack
		case codeWhite:
			b.cells[i/Size][i%Size] = CellWhite
		}
	}
	return b, nil
}
