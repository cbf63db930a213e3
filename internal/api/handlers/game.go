package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"spygame_web/internal/service"
)

// GameHandler 處理遊戲狀態的 HTTP 查詢
type GameHandler struct {
	gameService    *service.GameService
	sessionService *service.SessionService
}

// NewGameHandler 創建一個新的 GameHandler 實例
func NewGameHandler(gameService *service.GameService, sessionService *service.SessionService) *GameHandler {
	return &GameHandler{
		gameService:    gameService,
		sessionService: sessionService,
	}
}

// Leaderboard 回傳所有玩家的累計分數和臥底次數
func (h *GameHandler) Leaderboard(c *gin.Context) {
	scores, times := h.gameService.LeaderboardScores()
	c.JSON(http.StatusOK, gin.H{
		"scores": scores,
		"times":  times,
	})
}

// Players 回傳目前的玩家名單，給管理頁面使用
func (h *GameHandler) Players(c *gin.Context) {
	sessions, err := h.sessionService.Roster()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "無法查詢玩家名單"})
		return
	}
	c.JSON(http.StatusOK, sessions)
}
