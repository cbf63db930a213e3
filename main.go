package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"spygame_web/internal/api"
	"spygame_web/internal/models"
	"spygame_web/internal/repository"
	"spygame_web/internal/service"
	"spygame_web/internal/storage"
	"spygame_web/internal/utils"
	"spygame_web/pkg/config"
)

func main() {
	// 載入應用程式配置
	// 從配置文件中讀取設置，如數據庫連接信息和服務器地址等
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	utils.SetJWTSecret(cfg.Admin.TokenSecret)

	// 初始化資料庫連接
	// 使用配置中的信息建立到 PostgreSQL 數據庫的連接
	db, err := storage.NewPostgresDB(cfg.DB.Host, cfg.DB.User, cfg.DB.Password, cfg.DB.Name, cfg.DB.Port)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	// 確保在程序結束時關閉數據庫連接
	defer db.Close()

	// 自動遷移資料庫結構
	// 根據定義的模型自動創建或更新數據庫表結構
	if err := db.AutoMigrate(
		&models.PlayerSession{},
		&models.PlayerScore{},
		&models.RoundLog{},
		&models.GameState{},
	); err != nil {
		log.Fatalf("Failed to auto migrate database: %v", err)
	}

	// 初始化 repositories
	repos := repository.NewRepositories(db)

	// 確保遊戲狀態的單例紀錄存在
	if err := repos.GameState.EnsureExists(); err != nil {
		log.Fatalf("Failed to initialize game state: %v", err)
	}

	// 初始化 services
	services := service.NewServices(repos, cfg)

	// 設置 Gin 路由
	r := gin.Default()
	api.SetupRoutes(r, services, cfg)

	// 啟動伺服器
	// 使用配置中指定的地址啟動 HTTP 服務器
	if err := r.Run(cfg.Server.Address); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
