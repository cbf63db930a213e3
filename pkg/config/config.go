package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig
	DB     DBConfig
	Game   GameConfig
	Admin  AdminConfig
}

type ServerConfig struct {
	Address string
}

type DBConfig struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     int
}

// GameConfig 遊戲流程相關的時間設定（皆以秒為單位）
type GameConfig struct {
	DisconnectGraceSeconds int
	AnswerPhaseSeconds     int
	VotePhaseSeconds       int
}

type AdminConfig struct {
	PasswordHash string // bcrypt 雜湊後的管理員密碼
	TokenSecret  string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./pkg/config")

	// 允許用環境變數覆蓋設定，例如 SPY_DB_PASSWORD
	viper.SetEnvPrefix("SPY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("game.disconnectgraceseconds", 10)
	viper.SetDefault("game.answerphaseseconds", 30)
	viper.SetDefault("game.votephaseseconds", 45)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
