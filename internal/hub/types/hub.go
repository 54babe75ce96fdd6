package types

import (
	"context"
	"ctchen222/reversi/internal/player"
)

// RegistrationRequest represents a request to register a player.
type RegistrationRequest struct {
	Player     *player.Player
	Mode       string // "human" or "bot"
	Difficulty string // "easy", "medium", "hard"
	Ctx        context.Context
}

// PlayerMove is a line received from a player, queued for the room loop.
type PlayerMove struct {
	Player *player.Player
	Line   string
}
