package models

import (
	"time"

	"gorm.io/gorm"
)

// PlayerSession 表示一位玩家的遊戲會話
// 同一個名字最多只會有一筆存活的會話
type PlayerSession struct {
	gorm.Model
	PlayerName   string     `gorm:"uniqueIndex;not null" json:"player_name"`
	Token        string     `gorm:"uniqueIndex;not null" json:"-"` // 會話憑證，json 序列化時會被忽略
	ConnectionID string     `json:"connection_id"`                 // 目前的連線編號，斷線期間為空字串
	Role         PlayerRole `gorm:"not null;default:general" json:"role"`
	LastActiveAt time.Time  `json:"last_active_at"`
}

// PlayerRole 定義玩家在回合中的角色
type PlayerRole string

const (
	RoleGeneral PlayerRole = "general" // 多數派，拿到一般題目
	RoleSpy     PlayerRole = "spy"     // 少數派，拿到臥底題目
)
