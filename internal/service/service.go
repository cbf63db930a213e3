package service

import (
	"time"

	"spygame_web/internal/repository"
	"spygame_web/pkg/config"
)

type Services struct {
	Session   *SessionService
	Game      *GameService
	WebSocket *WebSocketManager
}

func NewServices(repos *repository.Repositories, cfg *config.Config) *Services {
	wsManager := NewWebSocketManager()

	sessionService := NewSessionService(
		repos.Session,
		repos.Score,
		wsManager,
		time.Duration(cfg.Game.DisconnectGraceSeconds)*time.Second,
	)
	gameService := NewGameService(
		repos,
		wsManager,
		sessionService,
		time.Duration(cfg.Game.AnswerPhaseSeconds)*time.Second,
		time.Duration(cfg.Game.VotePhaseSeconds)*time.Second,
	)

	return &Services{
		Session:   sessionService,
		Game:      gameService,
		WebSocket: wsManager,
	}
}
