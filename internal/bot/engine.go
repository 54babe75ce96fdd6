package bot

import (
	"context"
	"ctchen222/reversi/internal/game"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("bot")
	meter  = otel.Meter("bot")

	searchNodes    metric.Int64Counter
	searchDuration metric.Float64Histogram
)

func init() {
	var err error
	searchNodes, err = meter.Int64Counter("reversi.search.nodes",
		metric.WithDescription("Positions visited by the move search"),
	)
	if err != nil {
		otel.Handle(err)
	}
	searchDuration, err = meter.Float64Histogram("reversi.search.duration",
		metric.WithDescription("Wall time of one move search"),
		metric.WithUnit("s"),
	)
	if err != nil {
		otel.Handle(err)
	}
}

// Engine picks moves for a computer player at a configurable difficulty.
// It is safe for concurrent use; each NextMove call searches independently.
type Engine struct {
	mu         sync.RWMutex
	difficulty Difficulty
}

// NewEngine creates an engine at the given difficulty.
func NewEngine(d Difficulty) *Engine {
	return &Engine{difficulty: d}
}

// Difficulty returns the current difficulty.
func (e *Engine) Difficulty() Difficulty {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.difficulty
}

// SetDifficulty changes the difficulty used by later searches.
func (e *Engine) SetDifficulty(d Difficulty) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.difficulty = d
}

// NextMove searches for c's move on b. The context is used for tracing only;
// a search always runs to completion.
func (e *Engine) NextMove(ctx context.Context, b *game.Board, c game.Color) game.Move {
	d := e.Difficulty()
	ctx, span := tracer.Start(ctx, "bot.NextMove", trace.WithAttributes(
		attribute.String("bot.difficulty", d.String()),
		attribute.String("bot.color", c.String()),
		attribute.Int("bot.depth", d.Depth()),
	))
	defer span.End()

	start := time.Now()
	s := &search{}
	move := s.selectMove(b, c, d.Depth())
	elapsed := time.Since(start)

	attrs := metric.WithAttributes(attribute.String("bot.difficulty", d.String()))
	if searchNodes != nil {
		searchNodes.Add(ctx, s.nodes, attrs)
	}
	if searchDuration != nil {
		searchDuration.Record(ctx, elapsed.Seconds(), attrs)
	}
	span.SetAttributes(
		attribute.Int64("bot.nodes", s.nodes),
		attribute.String("bot.move", move.String()),
	)
	return move
}

// BotMoveCalculator computes moves on behalf of players, e.g. when a player
// runs out of time.
type BotMoveCalculator struct{}

// CalculateNextMove returns the move an engine at the named difficulty would
// play for color. Unknown names fall back to the default difficulty.
func (BotMoveCalculator) CalculateNextMove(ctx context.Context, board *game.Board, color game.Color, difficulty string) game.Move {
	d, err := ParseDifficulty(difficulty)
	if err != nil {
		d = DefaultDifficulty
	}
	return NewEngine(d).NextMove(ctx, board, color)
}
