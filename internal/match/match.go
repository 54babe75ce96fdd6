package match

import (
	"context"
	"ctchen222/reversi/internal/player"
	"log/slog"
	"sync"
)

// MatchManager pairs waiting players in arrival order. The first player of
// each pair plays Black.
type MatchManager struct {
	mu              sync.Mutex
	waitingPlayers  []*player.Player
	wake            chan struct{}
	matchedPairChan chan [2]*player.Player
}

func NewMatchManager() *MatchManager {
	return &MatchManager{
		waitingPlayers:  make([]*player.Player, 0),
		wake:            make(chan struct{}, 1),
		matchedPairChan: make(chan [2]*player.Player, 1),
	}
}

// Run hands out pairs until ctx is done.
func (m *MatchManager) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.wake:
			m.tryMatchPlayers(ctx)
		}
	}
}

// AddPlayer queues p. It never blocks.
func (m *MatchManager) AddPlayer(p *player.Player) {
	m.mu.Lock()
	m.waitingPlayers = append(m.waitingPlayers, p)
	m.mu.Unlock()

	select {
	case m.wake <- struct{}{}:
	default:
	}
}

// RemovePlayer drops a waiting player and reports whether it was queued.
func (m *MatchManager) RemovePlayer(playerID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.waitingPlayers {
		if p.ID == playerID {
			m.waitingPlayers = append(m.waitingPlayers[:i], m.waitingPlayers[i+1:]...)
			slog.Info("Matchmaker: player removed from waiting list", "player.id", playerID)
			return true
		}
	}
	return false
}

func (m *MatchManager) MatchedPair() <-chan [2]*player.Player {
	return m.matchedPairChan
}

// Waiting returns the number of players in the queue.
func (m *MatchManager) Waiting() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.waitingPlayers)
}

func (m *MatchManager) tryMatchPlayers(ctx context.Context) {
	for {
		m.mu.Lock()
		if len(m.waitingPlayers) < 2 {
			m.mu.Unlock()
			return
		}
		pair := [2]*player.Player{m.waitingPlayers[0], m.waitingPlayers[1]}
		m.waitingPlayers = m.waitingPlayers[2:]
		m.mu.Unlock()

		select {
		case m.matchedPairChan <- pair:
			slog.InfoContext(ctx, "Matchmaker: matched players", "black.id", pair[0].ID, "white.id", pair[1].ID)
		case <-ctx.Done():
			return
		}
	}
}
