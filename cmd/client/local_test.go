package main

import (
	"bytes"
	"context"
	"ctchen222/reversi/internal/bot"
	"ctchen222/reversi/internal/config"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func localConfig(limit time.Duration, chances int) *config.Config {
	return &config.Config{
		Client: config.Client{Name: "alice"},
		Game:   config.Game{TurnTimeLimit: limit, Chances: chances},
	}
}

func TestPlayLocal_Resign(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader("9,9\n2,3\nundo\n2,3\nquit\n")

	err := playLocal(context.Background(), localConfig(time.Minute, 3), bot.NewEngine(bot.Easy), in, &out)

	require.NoError(t, err)
	assert.Contains(t, out.String(), "Invalid move! Please try again.")
	assert.Equal(t, 2, strings.Count(out.String(), "computer plays"))
	assert.Contains(t, out.String(), "Game over: WHITE_WINS")
}

func TestPlayLocal_TimeoutForfeits(t *testing.T) {
	var out bytes.Buffer
	in, w := io.Pipe()
	defer w.Close()

	// Given: one chance and no input at all
	err := playLocal(context.Background(), localConfig(10*time.Millisecond, 1), bot.NewEngine(bot.Easy), in, &out)

	// Then: the clock runs out and Black forfeits
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Time's up! 0 chances left")
	assert.Contains(t, out.String(), "Game over: WHITE_WINS")
}

func TestPlayLocal_EndOfInput(t *testing.T) {
	var out bytes.Buffer

	err := playLocal(context.Background(), localConfig(time.Minute, 3), bot.NewEngine(bot.Easy), strings.NewReader(""), &out)

	require.NoError(t, err)
	assert.NotContains(t, out.String(), "Game over")
}
