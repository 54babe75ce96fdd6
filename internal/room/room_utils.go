package room

import (
	"ctchen222/reversi/internal/hub/types"
	"ctchen222/reversi/internal/player"
)

// AddPlayer adds a player to the room.
func (r *Room) AddPlayer(p *player.Player) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Players = append(r.Players, p)
}

// RemovePlayer drops a player from the room and reports whether any human
// player is left.
func (r *Room) RemovePlayer(playerID string) (humansLeft bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.Players[:0]
	for _, p := range r.Players {
		if p.ID == playerID {
			continue
		}
		kept = append(kept, p)
		if !p.IsBot {
			humansLeft = true
		}
	}
	r.Players = kept
	return humansLeft
}

// IncomingMoves returns the channel for incoming player moves.
func (r *Room) IncomingMoves() chan<- *types.PlayerMove {
	return r.incomingMoves
}

func (r *Room) playerFor(id string) *player.Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}
