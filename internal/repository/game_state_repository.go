package repository

import (
	"errors"

	"gorm.io/gorm"

	"spygame_web/internal/models"
	"spygame_web/internal/storage"
)

type GameStateRepository interface {
	EnsureExists() error
	Get() (*models.GameState, error)
	Update(updates map[string]interface{}) error
}

type gameStateRepository struct {
	db *storage.DB
}

func NewGameStateRepository(db *storage.DB) GameStateRepository {
	return &gameStateRepository{db: db}
}

// EnsureExists 確保單例紀錄存在，啟動時呼叫一次
func (r *gameStateRepository) EnsureExists() error {
	var state models.GameState
	err := r.db.First(&state, models.GameStateID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.Create(&models.GameState{
			ID:     models.GameStateID,
			Status: models.StatusLobby,
		}).Error
	}
	return err
}

func (r *gameStateRepository) Get() (*models.GameState, error) {
	var state models.GameState
	err := r.db.First(&state, models.GameStateID).Error
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// Update 只更新指定的欄位，用 map 避免 gorm 忽略零值
func (r *gameStateRepository) Update(updates map[string]interface{}) error {
	return r.db.Model(&models.GameState{}).
		Where("id = ?", models.GameStateID).
		Updates(updates).Error
}
