package repository

import (
	"context"
	"ctchen222/reversi/internal/api/models"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository stores accounts. Passwords arrive already hashed.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

type sqliteUserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new SQLite-based UserRepository.
func NewUserRepository(db *sqlx.DB) UserRepository {
	return &sqliteUserRepository{db: db}
}

// Create inserts the user and fills in its id.
func (r *sqliteUserRepository) Create(ctx context.Context, user *models.User) error {
	res, err := r.db.NamedExecContext(ctx, `INSERT INTO users (username, password_hash) VALUES (:username, :password_hash)`, user)
	if err != nil {
		return fmt.Errorf("failed to create user %q: %w", user.Username, err)
	}
	if user.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("failed to read user id: %w", err)
	}
	return nil
}

func (r *sqliteUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT id, username, password_hash FROM users WHERE username = ?`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user %q: %w", username, err)
	}
	return &user, nil
}
