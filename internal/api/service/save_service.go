package service

import (
	"context"
	"ctchen222/reversi/internal/api/models"
	"ctchen222/reversi/internal/api/repository"
	"ctchen222/reversi/internal/game"
	"ctchen222/reversi/internal/validator"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SaveService manages a user's save slots.
type SaveService interface {
	Create(ctx context.Context, userID int64, req *models.CreateSaveRequest) (*models.SaveResponse, error)
	List(ctx context.Context, userID int64) ([]models.SaveResponse, error)
	Get(ctx context.Context, userID int64, id string) (*models.SaveResponse, error)
	Delete(ctx context.Context, userID int64, id string) error
}

type saveService struct {
	saveRepo repository.SaveRepository
	now      func() time.Time
}

// NewSaveService creates a new SaveService.
func NewSaveService(saveRepo repository.SaveRepository) SaveService {
	return &saveService{saveRepo: saveRepo, now: time.Now}
}

// Create checks that the snapshot restores to a game before storing it.
func (s *saveService) Create(ctx context.Context, userID int64, req *models.CreateSaveRequest) (*models.SaveResponse, error) {
	if err := validator.GetValidator().Struct(req.Snapshot); err != nil {
		return nil, fmt.Errorf("%w: %w", game.ErrInvalidSnapshot, err)
	}
	if _, err := game.Restore(*req.Snapshot); err != nil {
		return nil, err
	}

	data, err := json.Marshal(req.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	save := &models.Save{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      req.Name,
		Snapshot:  string(data),
		CreatedAt: s.now().UTC(),
	}
	if err := s.saveRepo.Create(ctx, save); err != nil {
		return nil, err
	}
	return &models.SaveResponse{ID: save.ID, Name: save.Name, CreatedAt: save.CreatedAt}, nil
}

func (s *saveService) List(ctx context.Context, userID int64) ([]models.SaveResponse, error) {
	saves, err := s.saveRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	list := make([]models.SaveResponse, 0, len(saves))
	for _, save := range saves {
		list = append(list, models.SaveResponse{ID: save.ID, Name: save.Name, CreatedAt: save.CreatedAt})
	}
	return list, nil
}

func (s *saveService) Get(ctx context.Context, userID int64, id string) (*models.SaveResponse, error) {
	save, err := s.saveRepo.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	var snapshot game.Snapshot
	if err := json.Unmarshal([]byte(save.Snapshot), &snapshot); err != nil {
		return nil, fmt.Errorf("stored snapshot %s is corrupt: %w", save.ID, err)
	}
	return &models.SaveResponse{ID: save.ID, Name: save.Name, CreatedAt: save.CreatedAt, Snapshot: &snapshot}, nil
}

func (s *saveService) Delete(ctx context.Context, userID int64, id string) error {
	return s.saveRepo.Delete(ctx, userID, id)
}
