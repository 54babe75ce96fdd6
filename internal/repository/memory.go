package repository

import (
	"context"
	"ctchen222/reversi/internal/game"
	"ctchen222/reversi/internal/player"
	"fmt"
	"sync"
)

// memoryGameRepository keeps matches in process memory, for a single node
// running without Redis.
type memoryGameRepository struct {
	mu      sync.Mutex
	matches map[string]MatchState
}

// NewMemoryGameRepository creates an in-process GameRepository.
func NewMemoryGameRepository() GameRepository {
	return &memoryGameRepository{matches: make(map[string]MatchState)}
}

func (r *memoryGameRepository) Create(_ context.Context, roomID, blackID, whiteID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matches[roomID] = MatchState{
		RoomID:   roomID,
		BlackID:  blackID,
		WhiteID:  whiteID,
		Status:   StatusInProgress,
		Snapshot: game.NewGame(game.Settings{Names: [2]string{blackID, whiteID}}).Snapshot(),
	}
	return nil
}

func (r *memoryGameRepository) FindByID(_ context.Context, id string) (*MatchState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.matches[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return &state, nil
}

func (r *memoryGameRepository) Update(_ context.Context, id string, c game.Color, move game.Move) (*MatchState, error) {
	return r.mutate(id, func(g *game.Game) error {
		if g.Over() {
			return game.ErrGameOver
		}
		if g.Turn() != c {
			return ErrNotYourTurn
		}
		return g.Play(move.X, move.Y)
	})
}

func (r *memoryGameRepository) Forfeit(_ context.Context, id string, loser game.Color) (*MatchState, error) {
	return r.mutate(id, func(g *game.Game) error {
		return g.Forfeit(loser)
	})
}

func (r *memoryGameRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.matches, id)
	return nil
}

func (r *memoryGameRepository) mutate(id string, fn func(*game.Game) error) (*MatchState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.matches[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	g, err := state.Game()
	if err != nil {
		return nil, err
	}
	if err := fn(g); err != nil {
		return nil, err
	}
	state.Snapshot = g.Snapshot()
	if g.Over() {
		state.Status = StatusFinished
	}
	r.matches[id] = state
	return &state, nil
}

// memoryPlayerRepository keeps presence in process memory.
type memoryPlayerRepository struct {
	mu      sync.Mutex
	players map[string]Presence
}

// NewMemoryPlayerRepository creates an in-process PlayerRepository.
func NewMemoryPlayerRepository() PlayerRepository {
	return &memoryPlayerRepository{players: make(map[string]Presence)}
}

func (r *memoryPlayerRepository) Find(_ context.Context, id string) (Presence, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.players[id], nil
}

func (r *memoryPlayerRepository) UpdateConnectionStatus(_ context.Context, id string, status player.PlayerStatus) error {
	r.update(id, func(p *Presence) { p.ConnectionStatus = status })
	return nil
}

func (r *memoryPlayerRepository) SetInitialState(_ context.Context, id, serverID string) error {
	r.update(id, func(p *Presence) {
		p.ServerID = serverID
		p.Status = PresenceWaiting
		p.ConnectionStatus = player.StatusConnected
	})
	return nil
}

func (r *memoryPlayerRepository) UpdateForMatch(_ context.Context, id, roomID string) error {
	r.update(id, func(p *Presence) {
		p.RoomID = roomID
		p.Status = PresenceInGame
		p.ConnectionStatus = player.StatusConnected
	})
	return nil
}

func (r *memoryPlayerRepository) SetOffline(_ context.Context, id string) error {
	r.update(id, func(p *Presence) {
		p.Status = PresenceOffline
		p.ConnectionStatus = player.StatusDisconnected
	})
	return nil
}

func (r *memoryPlayerRepository) update(id string, fn func(*Presence)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.players[id]
	fn(&p)
	r.players[id] = p
}
