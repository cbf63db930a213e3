package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"spygame_web/internal/api/handlers"
	"spygame_web/internal/middleware"
	"spygame_web/internal/service"
	"spygame_web/pkg/config"
)

func SetupRoutes(r *gin.Engine, services *service.Services, cfg *config.Config) {
	// 初始化 handlers
	authHandler := handlers.NewAuthHandler(services.Session, cfg.Admin.PasswordHash)
	gameHandler := handlers.NewGameHandler(services.Game, services.Session)
	wsHandler := handlers.NewWebSocketHandler(services.WebSocket, services.Session, services.Game)

	// API 路由群組
	api := r.Group("/api")

	// 處理 404 錯誤
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "找不到該路徑",
		})
	})

	// 公開路由
	{
		// 玩家與管理員登入
		api.POST("/login", authHandler.Login)
		api.POST("/admin/login", authHandler.AdminLogin)

		// 排行榜（重連後的狀態恢復也會用到）
		api.GET("/leaderboard", gameHandler.Leaderboard)

		// 基本的健康檢查
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status": "ok",
			})
		})
	}

	// 需要管理員驗證的路由
	admin := api.Group("/admin")
	admin.Use(middleware.AdminAuthMiddleware())
	{
		admin.GET("/players", gameHandler.Players) // 目前的玩家名單
	}

	// WebSocket 連接點，驗證在 handler 內完成
	r.GET("/ws", wsHandler.HandleWebSocket)
}
