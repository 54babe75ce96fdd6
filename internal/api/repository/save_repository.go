package repository

import (
	"context"
	"ctchen222/reversi/internal/api/models"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ErrSaveNotFound is returned when a save does not exist or belongs to
// another user.
var ErrSaveNotFound = errors.New("save not found")

// SaveRepository stores game snapshots per user.
type SaveRepository interface {
	Create(ctx context.Context, save *models.Save) error
	ListByUser(ctx context.Context, userID int64) ([]models.Save, error)
	Get(ctx context.Context, userID int64, id string) (*models.Save, error)
	Delete(ctx context.Context, userID int64, id string) error
}

type sqliteSaveRepository struct {
	db *sqlx.DB
}

// NewSaveRepository creates a new SQLite-based SaveRepository.
func NewSaveRepository(db *sqlx.DB) SaveRepository {
	return &sqliteSaveRepository{db: db}
}

func (r *sqliteSaveRepository) Create(ctx context.Context, save *models.Save) error {
	query := `INSERT INTO saves (id, user_id, name, snapshot, created_at) VALUES (:id, :user_id, :name, :snapshot, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, save); err != nil {
		return fmt.Errorf("failed to create save: %w", err)
	}
	return nil
}

// ListByUser returns a user's saves, newest first.
func (r *sqliteSaveRepository) ListByUser(ctx context.Context, userID int64) ([]models.Save, error) {
	saves := []models.Save{}
	query := `SELECT id, user_id, name, snapshot, created_at FROM saves WHERE user_id = ? ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &saves, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list saves: %w", err)
	}
	return saves, nil
}

func (r *sqliteSaveRepository) Get(ctx context.Context, userID int64, id string) (*models.Save, error) {
	var save models.Save
	query := `SELECT id, user_id, name, snapshot, created_at FROM saves WHERE id = ? AND user_id = ?`
	if err := r.db.GetContext(ctx, &save, query, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSaveNotFound
		}
		return nil, fmt.Errorf("failed to get save: %w", err)
	}
	return &save, nil
}

func (r *sqliteSaveRepository) Delete(ctx context.Context, userID int64, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM saves WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete save: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete save: %w", err)
	}
	if n == 0 {
		return ErrSaveNotFound
	}
	return nil
}
