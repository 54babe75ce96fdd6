package repository

import (
	"context"
	"ctchen222/reversi/internal/game"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrNotFound    = errors.New("match not found")
	ErrNotYourTurn = errors.New("not player's turn")
)

// Hash fields of a match.
const (
	fieldSnapshot = "snapshot"
	fieldBlack    = "black_id"
	fieldWhite    = "white_id"
	fieldStatus   = "status"
)

const (
	StatusInProgress = "in_progress"
	StatusFinished   = "finished"
)

const (
	matchTTL       = 24 * time.Hour
	maxTxnAttempts = 3
)

// MatchState is a live match as stored in Redis.
type MatchState struct {
	RoomID   string
	BlackID  string
	WhiteID  string
	Status   string
	Snapshot game.Snapshot
}

// ColorOf returns the color played by playerID.
func (m *MatchState) ColorOf(playerID string) (game.Color, bool) {
	switch playerID {
	case m.BlackID:
		return game.Black, true
	case m.WhiteID:
		return game.White, true
	}
	return 0, false
}

// PlayerID returns the id of the player holding color c.
func (m *MatchState) PlayerID(c game.Color) string {
	if c == game.White {
		return m.WhiteID
	}
	return m.BlackID
}

// Game rebuilds the game so moves can be checked against it.
func (m *MatchState) Game() (*game.Game, error) {
	return game.Restore(m.Snapshot)
}

// GameRepository defines the interface for live match operations.
type GameRepository interface {
	Create(ctx context.Context, roomID, blackID, whiteID string) error
	FindByID(ctx context.Context, id string) (*MatchState, error)
	Update(ctx context.Context, id string, c game.Color, move game.Move) (*MatchState, error)
	Forfeit(ctx context.Context, id string, loser game.Color) (*MatchState, error)
	Delete(ctx context.Context, id string) error
}

type redisGameRepository struct {
	rdb *redis.Client
}

// NewGameRepository creates a new Redis-based GameRepository.
func NewGameRepository(rdb *redis.Client) GameRepository {
	return &redisGameRepository{rdb: rdb}
}

func roomKey(id string) string {
	return fmt.Sprintf("room:%s", id)
}

// Create stores a new game with Black to move.
func (r *redisGameRepository) Create(ctx context.Context, roomID, blackID, whiteID string) error {
	ctx, span := tracer.Start(ctx, "GameRepository.Create", trace.WithAttributes(
		attribute.String("room.id", roomID),
	))
	defer span.End()

	snapshot, err := json.Marshal(game.NewGame(game.Settings{Names: [2]string{blackID, whiteID}}).Snapshot())
	if err != nil {
		return fmt.Errorf("failed to marshal initial game: %w", err)
	}

	key := roomKey(roomID)
	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, key,
		fieldSnapshot, snapshot,
		fieldBlack, blackID,
		fieldWhite, whiteID,
		fieldStatus, StatusInProgress,
	)
	pipe.Expire(ctx, key, matchTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create game")
		return fmt.Errorf("failed to create game in redis: %w", err)
	}
	return nil
}

// FindByID retrieves the current match from Redis.
func (r *redisGameRepository) FindByID(ctx context.Context, id string) (*MatchState, error) {
	ctx, span := tracer.Start(ctx, "GameRepository.FindByID", trace.WithAttributes(
		attribute.String("room.id", id),
	))
	defer span.End()

	data, err := r.rdb.HGetAll(ctx, roomKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get game state from redis: %w", err)
	}
	return decodeMatch(id, data)
}

// Update plays a move for color c inside a WATCH transaction.
func (r *redisGameRepository) Update(ctx context.Context, id string, c game.Color, move game.Move) (*MatchState, error) {
	ctx, span := tracer.Start(ctx, "GameRepository.Update", trace.WithAttributes(
		attribute.String("room.id", id),
		attribute.String("player.color", c.String()),
		attribute.Int("move.x", move.X),
		attribute.Int("move.y", move.Y),
	))
	defer span.End()

	state, err := r.mutate(ctx, id, func(state *MatchState, g *game.Game) error {
		if g.Over() {
			return game.ErrGameOver
		}
		if g.Turn() != c {
			return ErrNotYourTurn
		}
		return g.Play(move.X, move.Y)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Move rejected")
		return nil, err
	}
	return state, nil
}

// Forfeit ends the match in favor of the opponent of loser.
func (r *redisGameRepository) Forfeit(ctx context.Context, id string, loser game.Color) (*MatchState, error) {
	ctx, span := tracer.Start(ctx, "GameRepository.Forfeit", trace.WithAttributes(
		attribute.String("room.id", id),
		attribute.String("player.color", loser.String()),
	))
	defer span.End()

	state, err := r.mutate(ctx, id, func(_ *MatchState, g *game.Game) error {
		return g.Forfeit(loser)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Forfeit failed")
		return nil, err
	}
	return state, nil
}

// Delete removes a match.
func (r *redisGameRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "GameRepository.Delete", trace.WithAttributes(
		attribute.String("room.id", id),
	))
	defer span.End()

	return r.rdb.Del(ctx, roomKey(id)).Err()
}

// mutate loads the match, applies fn to its game and writes the result back,
// retrying when another writer touched the key first.
func (r *redisGameRepository) mutate(ctx context.Context, id string, fn func(*MatchState, *game.Game) error) (*MatchState, error) {
	key := roomKey(id)
	var updated *MatchState

	txf := func(tx *redis.Tx) error {
		data, err := tx.HGetAll(ctx, key).Result()
		if err != nil {
			return err
		}
		state, err := decodeMatch(id, data)
		if err != nil {
			return err
		}
		g, err := state.Game()
		if err != nil {
			return err
		}
		if err := fn(state, g); err != nil {
			return err
		}

		state.Snapshot = g.Snapshot()
		state.Status = StatusInProgress
		if g.Over() {
			state.Status = StatusFinished
		}
		snapshot, err := json.Marshal(state.Snapshot)
		if err != nil {
			return fmt.Errorf("failed to marshal updated game: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, fieldSnapshot, snapshot, fieldStatus, state.Status)
			return nil
		})
		if err == nil {
			updated = state
		}
		return err
	}

	for attempt := 0; attempt < maxTxnAttempts; attempt++ {
		err := r.rdb.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, fmt.Errorf("update of %s kept conflicting: %w", key, redis.TxFailedErr)
}

func decodeMatch(id string, data map[string]string) (*MatchState, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	var snapshot game.Snapshot
	if err := json.Unmarshal([]byte(data[fieldSnapshot]), &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game: %w", err)
	}
	return &MatchState{
		RoomID:   id,
		BlackID:  data[fieldBlack],
		WhiteID:  data[fieldWhite],
		Status:   data[fieldStatus],
		Snapshot: snapshot,
	}, nil
}
