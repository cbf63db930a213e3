package repository

import "spygame_web/internal/storage"

type Repositories struct {
	Session   SessionRepository
	Score     ScoreRepository
	RoundLog  RoundLogRepository
	GameState GameStateRepository
}

func NewRepositories(db *storage.DB) *Repositories {
	return &Repositories{
		Session:   NewSessionRepository(db),
		Score:     NewScoreRepository(db),
		RoundLog:  NewRoundLogRepository(db),
		GameState: NewGameStateRepository(db),
	}
}
