package models

import (
	"gorm.io/gorm"
)

// PlayerScore 表示玩家的累計分數與當臥底的次數
// 分數只會用累加的方式更新，不會被整筆覆寫
type PlayerScore struct {
	gorm.Model
	PlayerName string `gorm:"uniqueIndex;not null" json:"player_name"`
	Score      int    `gorm:"not null;default:0" json:"score"`
	TimesSpy   int    `gorm:"not null;default:0" json:"times_spy"`
}
