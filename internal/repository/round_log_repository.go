package repository

import (
	"gorm.io/gorm/clause"

	"spygame_web/internal/models"
	"spygame_web/internal/storage"
)

type RoundLogRepository interface {
	Record(name string, action models.RoundAction, content string) error
	CountOf(action models.RoundAction) (int64, error)
	EntriesOf(action models.RoundAction) ([]models.RoundLog, error)
	Clear() error
}

type roundLogRepository struct {
	db *storage.DB
}

func NewRoundLogRepository(db *storage.DB) RoundLogRepository {
	return &roundLogRepository{db: db}
}

// Record 寫入一筆回合紀錄
// 同一位玩家重複提交同一種動作時覆蓋舊的內容，確保每人每回合最多一筆
func (r *roundLogRepository) Record(name string, action models.RoundAction, content string) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "player_name"}, {Name: "action_type"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"content": content,
		}),
	}).Create(&models.RoundLog{
		PlayerName: name,
		ActionType: action,
		Content:    content,
	}).Error
}

func (r *roundLogRepository) CountOf(action models.RoundAction) (int64, error) {
	var count int64
	err := r.db.Model(&models.RoundLog{}).
		Where("action_type = ?", action).
		Count(&count).Error
	return count, err
}

// EntriesOf 依照寫入順序取出某種動作的所有紀錄
func (r *roundLogRepository) EntriesOf(action models.RoundAction) ([]models.RoundLog, error) {
	var logs []models.RoundLog
	err := r.db.Where("action_type = ?", action).
		Order("id ASC").
		Find(&logs).Error
	return logs, err
}

func (r *roundLogRepository) Clear() error {
	return r.db.Unscoped().
		Where("1 = 1").
		Delete(&models.RoundLog{}).Error
}
