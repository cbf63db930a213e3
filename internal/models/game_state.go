package models

import (
	"time"
)

// GameState 表示全域唯一的遊戲狀態，資料庫中只有 ID=1 這一筆
// 只允許 GameService 的狀態轉移來修改
type GameState struct {
	ID              uint       `gorm:"primarykey" json:"id"`
	Status          GameStatus `gorm:"not null;default:lobby" json:"status"`
	RoundIndex      int        `gorm:"not null;default:0" json:"round_index"`
	Deadline        *time.Time `json:"deadline"` // 回合截止時間，僅供前端倒數顯示
	SpyQuestion     string     `json:"spy_question"`
	GeneralQuestion string     `json:"general_question"`
	SpyCount        int        `gorm:"not null;default:0" json:"spy_count"`
	AnswersRevealed bool       `gorm:"not null;default:false" json:"answers_revealed"`
}

// GameStateID 是單例紀錄的固定主鍵
const GameStateID uint = 1

// GameStatus 定義遊戲狀態的類型
type GameStatus string

const (
	StatusLobby       GameStatus = "lobby"       // 等待開始
	StatusPlaying     GameStatus = "playing"     // 回答題目中
	StatusVoting      GameStatus = "voting"      // 答案已公開，投票中
	StatusResult      GameStatus = "result"      // 臥底已揭曉
	StatusLeaderboard GameStatus = "leaderboard" // 排行榜頁面
)
