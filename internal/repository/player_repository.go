package repository

import (
	"context"
	"ctchen222/reversi/internal/player"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("repository")

// Presence states of a player.
const (
	PresenceWaiting = "waiting"
	PresenceInGame  = "in_game"
	PresenceOffline = "offline"
)

// Presence is what the authority knows about a player.
type Presence struct {
	ServerID         string
	RoomID           string
	Status           string
	ConnectionStatus player.PlayerStatus
}

// InGame reports whether the player is connected to a running match.
func (p Presence) InGame() bool {
	return p.Status == PresenceInGame && p.ConnectionStatus == player.StatusConnected
}

// PlayerRepository defines the interface for player presence operations.
type PlayerRepository interface {
	Find(ctx context.Context, id string) (Presence, error)
	UpdateConnectionStatus(ctx context.Context, id string, status player.PlayerStatus) error
	SetInitialState(ctx context.Context, id, serverID string) error
	UpdateForMatch(ctx context.Context, id, roomID string) error
	SetOffline(ctx context.Context, id string) error
}

type redisPlayerRepository struct {
	rdb *redis.Client
}

// NewPlayerRepository creates a new Redis-based PlayerRepository.
func NewPlayerRepository(rdb *redis.Client) PlayerRepository {
	return &redisPlayerRepository{
		rdb: rdb,
	}
}

func playerKey(id string) string {
	return fmt.Sprintf("player:%s", id)
}

// Find returns the stored presence of a player. An unknown player has the
// zero Presence.
func (r *redisPlayerRepository) Find(ctx context.Context, id string) (Presence, error) {
	ctx, span := tracer.Start(ctx, "PlayerRepository.Find")
	defer span.End()

	data, err := r.rdb.HGetAll(ctx, playerKey(id)).Result()
	if err != nil {
		return Presence{}, err
	}
	return Presence{
		ServerID:         data["server_id"],
		RoomID:           data["room_id"],
		Status:           data["status"],
		ConnectionStatus: player.PlayerStatus(data["connection_status"]),
	}, nil
}

// UpdateConnectionStatus updates only the connection status of a player.
func (r *redisPlayerRepository) UpdateConnectionStatus(ctx context.Context, id string, status player.PlayerStatus) error {
	ctx, span := tracer.Start(ctx, "PlayerRepository.UpdateConnectionStatus")
	defer span.End()

	return r.rdb.HSet(ctx, playerKey(id), "connection_status", string(status)).Err()
}

// SetInitialState records a newly registered player as waiting on serverID.
func (r *redisPlayerRepository) SetInitialState(ctx context.Context, id, serverID string) error {
	ctx, span := tracer.Start(ctx, "PlayerRepository.SetInitialState")
	defer span.End()

	return r.rdb.HSet(ctx, playerKey(id),
		"server_id", serverID,
		"status", PresenceWaiting,
		"connection_status", string(player.StatusConnected),
	).Err()
}

// UpdateForMatch records the room a player was put into.
func (r *redisPlayerRepository) UpdateForMatch(ctx context.Context, id, roomID string) error {
	ctx, span := tracer.Start(ctx, "PlayerRepository.UpdateForMatch")
	defer span.End()

	return r.rdb.HSet(ctx, playerKey(id),
		"room_id", roomID,
		"status", PresenceInGame,
		"connection_status", string(player.StatusConnected),
	).Err()
}

// SetOffline marks a player as offline, typically during unregistration.
func (r *redisPlayerRepository) SetOffline(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "PlayerRepository.SetOffline")
	defer span.End()

	return r.rdb.HSet(ctx, playerKey(id),
		"status", PresenceOffline,
		"connection_status", string(player.StatusDisconnected),
	).Err()
}
