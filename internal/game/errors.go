package game

import "errors"

var (
	ErrIllegalMove     = errors.New("illegal move")
	ErrGameOver        = errors.New("game is already over")
	ErrNotAITurn       = errors.New("it is not the computer's turn")
	ErrNothingToUndo   = errors.New("no move to undo")
	ErrInvalidColor    = errors.New("invalid color")
	ErrEncodedLength   = errors.New("encoded board must be 64 squares")
	ErrInvalidResult   = errors.New("invalid game result")
	ErrInvalidSnapshot = errors.New("invalid game snapshot")
)
