package repository

import (
	"context"
	"ctchen222/reversi/internal/game"
	"ctchen222/reversi/internal/player"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGameRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryGameRepository()

	_, err := repo.FindByID(ctx, "r1")
	assert.ErrorIs(t, err, ErrNotFound)

	// Given: a new match
	require.NoError(t, repo.Create(ctx, "r1", "alice", "bob"))

	// When: White tries to move first
	_, err = repo.Update(ctx, "r1", game.White, game.Move{X: 4, Y: 2})

	// Then: it is refused until Black has moved
	assert.ErrorIs(t, err, ErrNotYourTurn)

	_, err = repo.Update(ctx, "r1", game.Black, game.Move{X: 7, Y: 7})
	assert.ErrorIs(t, err, game.ErrIllegalMove)

	state, err := repo.Update(ctx, "r1", game.Black, game.Move{X: 2, Y: 3})
	require.NoError(t, err)
	assert.Equal(t, game.White, state.Snapshot.Turn)

	board, err := game.DecodeBoard(state.Snapshot.Board)
	require.NoError(t, err)
	black, white := board.Score()
	assert.Equal(t, 4, black)
	assert.Equal(t, 1, white)

	state, err = repo.Forfeit(ctx, "r1", game.White)
	require.NoError(t, err)
	assert.Equal(t, StatusFinished, state.Status)
	assert.Equal(t, game.ResultBlackWins, state.Snapshot.Result)

	_, err = repo.Forfeit(ctx, "r1", game.Black)
	assert.ErrorIs(t, err, game.ErrGameOver)

	require.NoError(t, repo.Delete(ctx, "r1"))
	_, err = repo.FindByID(ctx, "r1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryPlayerRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPlayerRepository()

	require.NoError(t, repo.SetInitialState(ctx, "alice", "node-1"))
	require.NoError(t, repo.UpdateForMatch(ctx, "alice", "r1"))

	presence, err := repo.Find(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, Presence{
		ServerID:         "node-1",
		RoomID:           "r1",
		Status:           PresenceInGame,
		ConnectionStatus: player.StatusConnected,
	}, presence)

	require.NoError(t, repo.UpdateConnectionStatus(ctx, "alice", player.StatusDisconnected))
	presence, _ = repo.Find(ctx, "alice")
	assert.False(t, presence.InGame())

	require.NoError(t, repo.SetOffline(ctx, "alice"))
	presence, _ = repo.Find(ctx, "alice")
	assert.Equal(t, PresenceOffline, presence.Status)
}
