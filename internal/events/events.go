package events

import (
	"encoding/json"
	"fmt"
)

// Pub/Sub channel constants
const (
	EventsChannel = "channel:events"
)

// Event types.
const (
	TypeMatchMade          = "match_made"
	TypePlayerDisconnected = "player_disconnected"
)

// Event represents a global message published via Pub/Sub.
type Event struct {
	Type    string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// New wraps payload in an event of the given type.
func New(eventType string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return Event{Type: eventType, Payload: data}, nil
}

// Decode unmarshals the payload into v.
func (e Event) Decode(v any) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("could not unmarshal %s payload: %w", e.Type, err)
	}
	return nil
}

// MatchMadePayload is the payload for the "match_made" event. PlayerIDs
// lists Black first.
type MatchMadePayload struct {
	RoomID    string   `json:"room_id"`
	PlayerIDs []string `json:"player_ids"`
}

// PlayerDisconnectedPayload is the payload for the "player_disconnected" event.
type PlayerDisconnectedPayload struct {
	RoomID   string `json:"room_id"`
	PlayerID string `json:"player_id"`
}
