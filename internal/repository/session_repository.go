package repository

import (
	"time"

	"gorm.io/gorm"

	"spygame_web/internal/models"
	"spygame_web/internal/storage"
)

type SessionRepository interface {
	Create(session *models.PlayerSession) error
	FindByName(name string) (*models.PlayerSession, error)
	FindByToken(token string) (*models.PlayerSession, error)
	FindAll() ([]models.PlayerSession, error)
	UpdateConnection(name, connectionID string) error
	TouchLastActive(name string) error
	SetRoleAll(role models.PlayerRole) error
	SetRoleByNames(names []string, role models.PlayerRole) error
	DeleteByName(name string) error
	Count() (int64, error)
	Purge() error
}

type sessionRepository struct {
	db *storage.DB
}

func NewSessionRepository(db *storage.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(session *models.PlayerSession) error {
	return r.db.Create(session).Error
}

func (r *sessionRepository) FindByName(name string) (*models.PlayerSession, error) {
	var session models.PlayerSession
	err := r.db.Where("player_name = ?", name).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) FindByToken(token string) (*models.PlayerSession, error) {
	var session models.PlayerSession
	err := r.db.Where("token = ?", token).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// FindAll 查詢所有會話，最近活躍的排前面
func (r *sessionRepository) FindAll() ([]models.PlayerSession, error) {
	var sessions []models.PlayerSession
	err := r.db.Order("last_active_at DESC").Find(&sessions).Error
	return sessions, err
}

// UpdateConnection 把會話換綁到新的連線
// 會話不存在（已被踢出）時回傳 ErrRecordNotFound
func (r *sessionRepository) UpdateConnection(name, connectionID string) error {
	result := r.db.Model(&models.PlayerSession{}).
		Where("player_name = ?", name).
		Updates(map[string]interface{}{
			"connection_id":  connectionID,
			"last_active_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *sessionRepository) TouchLastActive(name string) error {
	return r.db.Model(&models.PlayerSession{}).
		Where("player_name = ?", name).
		Update("last_active_at", time.Now()).Error
}

func (r *sessionRepository) SetRoleAll(role models.PlayerRole) error {
	return r.db.Model(&models.PlayerSession{}).
		Where("1 = 1").
		Update("role", role).Error
}

func (r *sessionRepository) SetRoleByNames(names []string, role models.PlayerRole) error {
	if len(names) == 0 {
		return nil
	}
	return r.db.Model(&models.PlayerSession{}).
		Where("player_name IN ?", names).
		Update("role", role).Error
}

func (r *sessionRepository) DeleteByName(name string) error {
	return r.db.Unscoped().
		Where("player_name = ?", name).
		Delete(&models.PlayerSession{}).Error
}

func (r *sessionRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.PlayerSession{}).Count(&count).Error
	return count, err
}

// Purge 刪除所有會話，只在整局重置時使用
func (r *sessionRepository) Purge() error {
	return r.db.Unscoped().
		Where("1 = 1").
		Delete(&models.PlayerSession{}).Error
}
