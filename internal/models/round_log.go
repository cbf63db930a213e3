package models

import (
	"gorm.io/gorm"
)

// RoundLog 表示一筆本回合的玩家動作紀錄（答案或投票）
// 每位玩家每種動作最多一筆，重複提交會覆蓋前一筆
type RoundLog struct {
	gorm.Model
	PlayerName string      `gorm:"uniqueIndex:idx_round_logs_player_action;not null" json:"player_name"`
	ActionType RoundAction `gorm:"uniqueIndex:idx_round_logs_player_action;not null" json:"action_type"`
	Content    string      `gorm:"type:text" json:"content"`
}

// RoundAction 定義回合紀錄的動作種類
type RoundAction string

const (
	ActionAnswer RoundAction = "answer" // 題目的文字答案
	ActionVote   RoundAction = "vote"   // 被投票玩家的名字
)
