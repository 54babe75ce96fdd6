package models

import (
	"ctchen222/reversi/internal/game"
	"time"
)

// Save is a stored game snapshot owned by a user.
type Save struct {
	ID        string    `db:"id"`
	UserID    int64     `db:"user_id"`
	Name      string    `db:"name"`
	Snapshot  string    `db:"snapshot"`
	CreatedAt time.Time `db:"created_at"`
}

// CreateSaveRequest stores the given game under a name.
type CreateSaveRequest struct {
	Name     string         `json:"name" binding:"required,max=50"`
	Snapshot *game.Snapshot `json:"snapshot" binding:"required"`
}

// SaveResponse describes a save slot. Snapshot is only set when a single
// save is fetched.
type SaveResponse struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	Snapshot  *game.Snapshot `json:"snapshot,omitempty"`
}
