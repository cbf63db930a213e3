package service

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"spygame_web/internal/models"
	"spygame_web/internal/repository"
)

// SessionService 管理玩家會話的生命週期：
// 登入時建立或接續會話，斷線後保留一段寬限期等玩家重連，
// 寬限期內沒回來才把會話移除並更新大廳名單。
type SessionService struct {
	sessionRepo repository.SessionRepository
	scoreRepo   repository.ScoreRepository
	wsManager   *WebSocketManager
	gracePeriod time.Duration

	timersMux      sync.Mutex
	evictionTimers map[string]*time.Timer // 玩家名字 -> 待觸發的踢出計時器
}

func NewSessionService(sessionRepo repository.SessionRepository, scoreRepo repository.ScoreRepository, wsManager *WebSocketManager, gracePeriod time.Duration) *SessionService {
	return &SessionService{
		sessionRepo:    sessionRepo,
		scoreRepo:      scoreRepo,
		wsManager:      wsManager,
		gracePeriod:    gracePeriod,
		evictionTimers: make(map[string]*time.Timer),
	}
}

// Join 為這個名字建立新會話，或在憑證相符時接續舊會話。
// 名字已被另一個會話綁定時回傳 ErrNameReserved。
func (s *SessionService) Join(name, presentedToken string) (*models.PlayerSession, error) {
	existing, err := s.sessionRepo.FindByName(name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if existing != nil {
		// 同一位玩家拿舊憑證回來，接續原本的會話
		if existing.Token == presentedToken && presentedToken != "" {
			if err := s.sessionRepo.TouchLastActive(name); err != nil {
				log.Printf("touch last active failed for %s: %v", name, err)
			}
			return existing, nil
		}
		return nil, ErrNameReserved
	}

	session := &models.PlayerSession{
		PlayerName:   name,
		Token:        uuid.NewString(),
		Role:         models.RoleGeneral,
		LastActiveAt: time.Now(),
	}
	if err := s.sessionRepo.Create(session); err != nil {
		return nil, err
	}

	// 第一次登入順便建立零分紀錄，排行榜查詢才不會缺人
	if err := s.scoreRepo.EnsurePlayer(name); err != nil {
		log.Printf("ensure score row failed for %s: %v", name, err)
	}

	return session, nil
}

// ResolveByToken 用會話憑證找出對應的會話，找不到時回傳 ErrAuthRequired
func (s *SessionService) ResolveByToken(token string) (*models.PlayerSession, error) {
	if token == "" {
		return nil, ErrAuthRequired
	}
	session, err := s.sessionRepo.FindByToken(token)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAuthRequired
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

// AttachConnection 把會話綁上新的連線，並取消還沒觸發的踢出計時器。
// 綁定連線和踢出持同一把鎖，先搶到鎖的重連一定能保住會話；
// 會話已經被移除時（更新不到任何列）回傳錯誤，呼叫端要當成重連失敗。
func (s *SessionService) AttachConnection(session *models.PlayerSession, connectionID string) error {
	s.timersMux.Lock()
	defer s.timersMux.Unlock()

	if timer, ok := s.evictionTimers[session.PlayerName]; ok {
		timer.Stop()
		delete(s.evictionTimers, session.PlayerName)
		log.Printf("[session] %s reconnected, cancelling eviction timer", session.PlayerName)
	}

	return s.sessionRepo.UpdateConnection(session.PlayerName, connectionID)
}

// ScheduleEviction 在玩家斷線後啟動寬限期計時器。
// 斷掉的若是舊連線（玩家已經用新分頁重連）就直接忽略，不排程也不廣播。
func (s *SessionService) ScheduleEviction(playerName, connectionID string) {
	session, err := s.sessionRepo.FindByName(playerName)
	if err != nil {
		return
	}
	if session.ConnectionID != connectionID {
		log.Printf("[session] stale connection disconnected for %s, ignoring", playerName)
		return
	}

	log.Printf("[session] %s disconnected, waiting %s before eviction", playerName, s.gracePeriod)

	s.timersMux.Lock()
	defer s.timersMux.Unlock()

	// 同一位玩家不會同時有兩個計時器
	if timer, ok := s.evictionTimers[playerName]; ok {
		timer.Stop()
	}
	s.evictionTimers[playerName] = time.AfterFunc(s.gracePeriod, func() {
		s.evict(playerName, connectionID)
	})
}

// evict 寬限期到了還沒重連，移除會話並通知所有人名單更新。
// 從確認連線到刪除都持著 timersMux，重連進不來，
// 不會發生重連成功之後會話才被這裡刪掉的情況
func (s *SessionService) evict(playerName, connectionID string) {
	s.timersMux.Lock()
	defer s.timersMux.Unlock()

	if _, ok := s.evictionTimers[playerName]; !ok {
		// 計時器已被重連取消，這裡是 Stop 之前就觸發的殘留呼叫
		return
	}
	delete(s.evictionTimers, playerName)

	// 再確認一次連線沒有換過，換過代表玩家其實回來了
	session, err := s.sessionRepo.FindByName(playerName)
	if err != nil || session.ConnectionID != connectionID {
		return
	}

	log.Printf("[session] %s timed out, removing session", playerName)
	if err := s.sessionRepo.DeleteByName(playerName); err != nil {
		log.Printf("session delete failed for %s: %v", playerName, err)
		return
	}

	s.BroadcastRoster()
}

// IsStaleDisconnect 判斷斷掉的連線是否已經不是玩家目前的連線
func (s *SessionService) IsStaleDisconnect(playerName, connectionID string) bool {
	session, err := s.sessionRepo.FindByName(playerName)
	if err != nil {
		return true
	}
	return session.ConnectionID != connectionID
}

// BroadcastRoster 把目前的玩家名單和人數廣播給所有連接
func (s *SessionService) BroadcastRoster() {
	sessions, err := s.sessionRepo.FindAll()
	if err != nil {
		log.Printf("roster query failed: %v", err)
		return
	}

	type rosterEntry struct {
		ID   string            `json:"id"`
		Name string            `json:"name"`
		Role models.PlayerRole `json:"role"`
	}
	roster := make([]rosterEntry, 0, len(sessions))
	for _, session := range sessions {
		roster = append(roster, rosterEntry{
			ID:   session.ConnectionID,
			Name: session.PlayerName,
			Role: session.Role,
		})
	}

	s.wsManager.ToAll(EventUpdatePlayerList, roster)
	s.wsManager.ToAll(EventUpdatePlayerCount, len(roster))
}

// Roster 回傳目前所有玩家的會話資料
func (s *SessionService) Roster() ([]models.PlayerSession, error) {
	return s.sessionRepo.FindAll()
}

// CancelAllEvictions 停掉所有待觸發的計時器，整局重置時使用
func (s *SessionService) CancelAllEvictions() {
	s.timersMux.Lock()
	defer s.timersMux.Unlock()

	for name, timer := range s.evictionTimers {
		timer.Stop()
		delete(s.evictionTimers, name)
	}
}

// Purge 移除所有會話
func (s *SessionService) Purge() error {
	s.CancelAllEvictions()
	return s.sessionRepo.Purge()
}
