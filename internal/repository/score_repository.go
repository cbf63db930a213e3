package repository

import (
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"spygame_web/internal/models"
	"spygame_web/internal/storage"
)

// scoreWriteRetries 寫入失敗時的重試次數，避免暫時性的資料庫問題弄丟分數或臥底次數
const scoreWriteRetries = 3

type ScoreRepository interface {
	EnsurePlayer(name string) error
	AddScore(name string, delta int) error
	IncrementTimesSpy(names []string) error
	TimesSpyByName(names []string) (map[string]int, error)
	FindAll() ([]models.PlayerScore, error)
	Purge() error
}

type scoreRepository struct {
	db *storage.DB
}

func NewScoreRepository(db *storage.DB) ScoreRepository {
	return &scoreRepository{db: db}
}

// EnsurePlayer 在玩家第一次登入時建立一筆零分紀錄，已存在時不做任何事
func (r *scoreRepository) EnsurePlayer(name string) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "player_name"}},
		DoNothing: true,
	}).Create(&models.PlayerScore{PlayerName: name}).Error
}

// AddScore 用原子性的 upsert 累加分數
// 不能用先讀再寫的方式，否則並發寫入會互相蓋掉
func (r *scoreRepository) AddScore(name string, delta int) error {
	var err error
	for attempt := 1; attempt <= scoreWriteRetries; attempt++ {
		err = r.db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "player_name"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"score": gorm.Expr("player_scores.score + ?", delta),
			}),
		}).Create(&models.PlayerScore{PlayerName: name, Score: delta}).Error
		if err == nil {
			return nil
		}
		log.Printf("score upsert failed for %s (attempt %d/%d): %v", name, attempt, scoreWriteRetries, err)
	}
	return err
}

// IncrementTimesSpy 把這回合當臥底的玩家的臥底次數加一。
// 這份紀錄決定之後的選角公平性，和分數一樣寫入失敗要重試
func (r *scoreRepository) IncrementTimesSpy(names []string) error {
	if len(names) == 0 {
		return nil
	}

	var err error
	for attempt := 1; attempt <= scoreWriteRetries; attempt++ {
		err = r.db.Model(&models.PlayerScore{}).
			Where("player_name IN ?", names).
			Update("times_spy", gorm.Expr("times_spy + 1")).Error
		if err == nil {
			return nil
		}
		log.Printf("times_spy update failed (attempt %d/%d): %v", attempt, scoreWriteRetries, err)
	}
	return err
}

// TimesSpyByName 查出指定玩家們當過臥底的次數，沒有紀錄的玩家不會出現在結果中
func (r *scoreRepository) TimesSpyByName(names []string) (map[string]int, error) {
	if len(names) == 0 {
		return map[string]int{}, nil
	}

	var scores []models.PlayerScore
	err := r.db.Where("player_name IN ?", names).Find(&scores).Error
	if err != nil {
		return nil, err
	}

	result := make(map[string]int, len(scores))
	for _, s := range scores {
		result[s.PlayerName] = s.TimesSpy
	}
	return result, nil
}

func (r *scoreRepository) FindAll() ([]models.PlayerScore, error) {
	var scores []models.PlayerScore
	err := r.db.Order("score DESC").Find(&scores).Error
	return scores, err
}

func (r *scoreRepository) Purge() error {
	return r.db.Unscoped().
		Where("1 = 1").
		Delete(&models.PlayerScore{}).Error
}
