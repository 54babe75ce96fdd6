package player

import (
	"ctchen222/reversi/internal/game"
	"ctchen222/reversi/internal/transport"
	"time"
)

// PlayerStatus is the connection state of a player.
type PlayerStatus string

const (
	StatusConnected    PlayerStatus = "connected"
	StatusDisconnected PlayerStatus = "disconnected"
)

// Player represents a player in a room.
type Player struct {
	ID       string
	Conn     transport.Conn
	Color    game.Color
	Status   PlayerStatus
	LastSeen time.Time
	IsBot    bool
}

// NewPlayer creates a connected player.
func NewPlayer(id string, conn transport.Conn) *Player {
	return &Player{
		ID:       id,
		Conn:     conn,
		Status:   StatusConnected,
		LastSeen: time.Now(),
	}
}

// Send writes a line to a connected player.
func (p *Player) Send(line string) error {
	if p.Conn == nil || p.Status != StatusConnected {
		return transport.ErrClosed
	}
	return p.Conn.Send(line)
}
