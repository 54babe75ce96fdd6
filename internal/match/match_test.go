package match

import (
	"context"
	"ctchen222/reversi/internal/player"
	"testing"
	"time"
)

func startManager(t *testing.T) *MatchManager {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	mm := NewMatchManager()
	go mm.Run(ctx)
	return mm
}

func TestMatchManager_AddThreePlayers(t *testing.T) {
	mm := startManager(t)

	mm.AddPlayer(&player.Player{ID: "player1"})
	mm.AddPlayer(&player.Player{ID: "player2"})
	mm.AddPlayer(&player.Player{ID: "player3"})

	// The first two players are paired in arrival order.
	select {
	case pair := <-mm.MatchedPair():
		if pair[0].ID != "player1" || pair[1].ID != "player2" {
			t.Errorf("Expected players 'player1' and 'player2' in order, got '%s' and '%s'", pair[0].ID, pair[1].ID)
		}
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for players to be matched")
	}

	time.Sleep(10 * time.Millisecond) // allow time for the slice to be updated
	mm.mu.Lock()
	defer mm.mu.Unlock()
	if len(mm.waitingPlayers) != 1 {
		t.Fatalf("Expected 1 waiting player, got %d", len(mm.waitingPlayers))
	}
	if mm.waitingPlayers[0].ID != "player3" {
		t.Errorf("Expected player with ID 'player3', got '%s'", mm.waitingPlayers[0].ID)
	}
}

func TestMatchManager_MatchPlayers(t *testing.T) {
	mm := startManager(t)

	mm.AddPlayer(&player.Player{ID: "player1"})
	mm.AddPlayer(&player.Player{ID: "player2"})

	select {
	case pair := <-mm.MatchedPair():
		if pair[0].ID != "player1" || pair[1].ID != "player2" {
			t.Errorf("Expected players 'player1' and 'player2', got '%s' and '%s'", pair[0].ID, pair[1].ID)
		}
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for players to be matched")
	}

	if n := mm.Waiting(); n != 0 {
		t.Errorf("Expected 0 waiting players after matching, got %d", n)
	}
}

func TestMatchManager_RemovePlayerFromSingleList(t *testing.T) {
	mm := startManager(t)

	mm.AddPlayer(&player.Player{ID: "player1"})

	if !mm.RemovePlayer("player1") {
		t.Error("Expected player1 to be removed")
	}
	if n := mm.Waiting(); n != 0 {
		t.Errorf("Expected 0 waiting players, got %d", n)
	}
}

func TestMatchManager_RemoveNonExistentPlayer(t *testing.T) {
	mm := startManager(t)

	mm.AddPlayer(&player.Player{ID: "player1"})

	if mm.RemovePlayer("player2") {
		t.Error("Expected removal of an unknown player to report false")
	}

	mm.mu.Lock()
	defer mm.mu.Unlock()
	if len(mm.waitingPlayers) != 1 {
		t.Fatalf("Expected 1 waiting player, got %d", len(mm.waitingPlayers))
	}
	if mm.waitingPlayers[0].ID != "player1" {
		t.Errorf("Expected player with ID 'player1', got '%s'", mm.waitingPlayers[0].ID)
	}
}

func TestMatchManager_RemovedPlayerIsNotMatched(t *testing.T) {
	mm := startManager(t)

	mm.AddPlayer(&player.Player{ID: "player1"})
	mm.RemovePlayer("player1")
	mm.AddPlayer(&player.Player{ID: "player2"})
	mm.AddPlayer(&player.Player{ID: "player3"})

	select {
	case pair := <-mm.MatchedPair():
		if pair[0].ID != "player2" || pair[1].ID != "player3" {
			t.Errorf("Expected 'player2' and 'player3', got '%s' and '%s'", pair[0].ID, pair[1].ID)
		}
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for players to be matched")
	}
}
