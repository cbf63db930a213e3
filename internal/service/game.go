package service

import (
	"log"
	"math/rand"
	"sync"
	"time"

	"spygame_web/internal/models"
	"spygame_web/internal/repository"
)

// GameService 是唯一可以改動遊戲狀態的地方。
// 所有狀態轉移和玩家提交都在同一把鎖底下執行，
// 並發的管理指令或提交不會交錯弄壞計數或重複套用轉移。
type GameService struct {
	stateRepo    repository.GameStateRepository
	sessionRepo  repository.SessionRepository
	scoreRepo    repository.ScoreRepository
	roundLogRepo repository.RoundLogRepository
	wsManager    *WebSocketManager
	sessions     *SessionService

	questions   []QuestionPair
	answerPhase time.Duration
	votePhase   time.Duration

	mu sync.Mutex // 狀態轉移的單一寫入者鎖
}

func NewGameService(repos *repository.Repositories, wsManager *WebSocketManager, sessions *SessionService, answerPhase, votePhase time.Duration) *GameService {
	return &GameService{
		stateRepo:    repos.GameState,
		sessionRepo:  repos.Session,
		scoreRepo:    repos.Score,
		roundLogRepo: repos.RoundLog,
		wsManager:    wsManager,
		sessions:     sessions,
		questions:    defaultQuestionPool,
		answerPhase:  answerPhase,
		votePhase:    votePhase,
	}
}

// 推送給客戶端的事件內容

type questionPayload struct {
	Question string            `json:"question"`
	Role     models.PlayerRole `json:"role"`
}

type answerEntry struct {
	Name   string            `json:"name"`
	Answer string            `json:"answer"`
	Role   models.PlayerRole `json:"role"`
}

type revealAnswersPayload struct {
	Answers         []answerEntry `json:"answers"`
	SpyQuestion     string        `json:"spyQuestion"`
	GeneralQuestion string        `json:"generalQuestion"`
}

type spyRevealEntry struct {
	Name   string `json:"name"`
	Answer string `json:"answer"`
	Votes  int    `json:"votes"`
	Earned int    `json:"earned"`
}

type finalRevealPayload struct {
	Spies       []spyRevealEntry `json:"spies"`
	SpyQuestion string           `json:"spyQuestion"`
	Scores      map[string]int   `json:"scores"`
	TotalVotes  int              `json:"totalVotes"`
}

type leaderboardPayload struct {
	Scores map[string]int `json:"scores"`
	Times  map[string]int `json:"times"`
}

// StartGame 開始新回合：大廳 -> 作答中。
// 清掉上一回合的紀錄、挑臥底、抽題目、設定作答截止時間，
// 然後把各自的題目發給每位玩家。
func (s *GameService) StartGame(roundIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.stateRepo.Get()
	if err != nil {
		return err
	}
	if state.Status != models.StatusLobby {
		log.Printf("[game] ignoring start_game in status %s", state.Status)
		return ErrInvalidTransition
	}

	players, err := s.sessionRepo.FindAll()
	if err != nil {
		return err
	}
	if len(players) < 1 {
		log.Printf("[game] ignoring start_game with no players")
		return ErrInvalidTransition
	}

	if err := s.roundLogRepo.Clear(); err != nil {
		return err
	}

	names := make([]string, 0, len(players))
	for _, p := range players {
		names = append(names, p.PlayerName)
	}

	spyCount := spyCountFor(len(players))

	// 臥底歷史查不到就全部當零次，公平性退化但遊戲照常進行
	history, err := s.scoreRepo.TimesSpyByName(names)
	if err != nil {
		log.Printf("[game] spy history unavailable, assuming zero: %v", err)
		history = map[string]int{}
	}

	spyNames := pickSpies(names, history, spyCount)
	isSpy := make(map[string]bool, len(spyNames))
	for _, name := range spyNames {
		isSpy[name] = true
	}

	if err := s.sessionRepo.SetRoleAll(models.RoleGeneral); err != nil {
		return err
	}
	if err := s.sessionRepo.SetRoleByNames(spyNames, models.RoleSpy); err != nil {
		return err
	}
	if err := s.scoreRepo.IncrementTimesSpy(spyNames); err != nil {
		log.Printf("[game] times_spy increment failed: %v", err)
	}

	// 抽一組題目並隨機決定哪題給臥底
	if roundIndex < 0 {
		roundIndex = 0
	}
	pair := s.questions[roundIndex%len(s.questions)]
	spyQuestion, generalQuestion := pair.Q1, pair.Q2
	if rand.Intn(2) == 0 {
		spyQuestion, generalQuestion = pair.Q2, pair.Q1
	}

	deadline := time.Now().Add(s.answerPhase)
	err = s.stateRepo.Update(map[string]interface{}{
		"status":           models.StatusPlaying,
		"round_index":      roundIndex,
		"deadline":         deadline,
		"spy_count":        spyCount,
		"spy_question":     spyQuestion,
		"general_question": generalQuestion,
		"answers_revealed": false,
	})
	if err != nil {
		return err
	}

	for _, name := range names {
		role, question := models.RoleGeneral, generalQuestion
		if isSpy[name] {
			role, question = models.RoleSpy, spyQuestion
		}
		s.wsManager.ToPlayer(name, EventReceiveQuestion, questionPayload{Question: question, Role: role})
	}

	s.wsManager.ToAll(EventGameStartedDisplay, nil)
	s.wsManager.ToAll(EventRevealSpyCountForVoting, spyCount)
	s.wsManager.ToAll(EventStartCountdown, deadline.UnixMilli())

	log.Printf("[game] round %d started: %d players, %d spies", roundIndex, len(players), spyCount)
	return nil
}

// SubmitAnswer 記錄玩家的答案並廣播目前的提交數
// 重複提交會覆蓋前一筆，計數因此等於已作答的人數
func (s *GameService) SubmitAnswer(playerName, answer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.roundLogRepo.Record(playerName, models.ActionAnswer, answer); err != nil {
		return err
	}
	return s.broadcastActionCount(models.ActionAnswer)
}

// SubmitVote 記錄玩家的投票，計數沿用同一個提交數事件
func (s *GameService) SubmitVote(playerName, votedName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.roundLogRepo.Record(playerName, models.ActionVote, votedName); err != nil {
		return err
	}
	log.Printf("[game] vote received from %s against %s", playerName, votedName)
	return s.broadcastActionCount(models.ActionVote)
}

// RevealAnswers 公佈答案：作答中 -> 投票中。
// 把所有答案連同兩道題目廣播出去，並重設投票的倒數
func (s *GameService) RevealAnswers() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.stateRepo.Get()
	if err != nil {
		return err
	}
	if state.Status != models.StatusPlaying {
		log.Printf("[game] ignoring reveal_answers in status %s", state.Status)
		return ErrInvalidTransition
	}

	deadline := time.Now().Add(s.votePhase)
	err = s.stateRepo.Update(map[string]interface{}{
		"status":           models.StatusVoting,
		"answers_revealed": true,
		"deadline":         deadline,
	})
	if err != nil {
		return err
	}

	payload, err := s.buildRevealAnswersPayload(state.SpyQuestion, state.GeneralQuestion)
	if err != nil {
		return err
	}

	s.wsManager.ToAll(EventRevealAllAnswers, payload)
	s.wsManager.ToAll(EventStartCountdown, deadline.UnixMilli())
	s.wsManager.ToAll(EventAnswerReceivedCount, 0)
	return nil
}

// ShowSpies 結算回合：投票中 -> 揭曉。
// 投中臥底的人加一分，臥底依得票數扣分後入帳，最後廣播結果
func (s *GameService) ShowSpies() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.stateRepo.Get()
	if err != nil {
		return err
	}
	if state.Status != models.StatusVoting {
		log.Printf("[game] ignoring show_spies in status %s", state.Status)
		return ErrInvalidTransition
	}

	err = s.stateRepo.Update(map[string]interface{}{
		"status":   models.StatusResult,
		"deadline": nil,
	})
	if err != nil {
		return err
	}

	players, err := s.sessionRepo.FindAll()
	if err != nil {
		return err
	}

	spyNames := make([]string, 0)
	citizenCount := 0
	isSpy := make(map[string]bool)
	for _, p := range players {
		if p.Role == models.RoleSpy {
			spyNames = append(spyNames, p.PlayerName)
			isSpy[p.PlayerName] = true
		} else {
			citizenCount++
		}
	}

	votes, err := s.roundLogRepo.EntriesOf(models.ActionVote)
	if err != nil {
		return err
	}

	// 投中臥底的每一票加一分
	voteTargets := make([]string, 0, len(votes))
	for _, vote := range votes {
		voteTargets = append(voteTargets, vote.Content)
		if isSpy[vote.Content] {
			if err := s.scoreRepo.AddScore(vote.PlayerName, 1); err != nil {
				log.Printf("[game] voter score lost for %s: %v", vote.PlayerName, err)
			}
		}
	}

	results := scoreSpies(spyNames, citizenCount, voteTargets)
	for _, result := range results {
		if err := s.scoreRepo.AddScore(result.Name, result.Earned); err != nil {
			log.Printf("[game] spy score lost for %s: %v", result.Name, err)
		}
	}

	answers, err := s.roundLogRepo.EntriesOf(models.ActionAnswer)
	if err != nil {
		return err
	}
	answerByName := make(map[string]string, len(answers))
	for _, a := range answers {
		answerByName[a.PlayerName] = a.Content
	}

	scoreMap, _ := s.loadScoreMaps()

	spies := make([]spyRevealEntry, 0, len(results))
	for _, result := range results {
		answer, ok := answerByName[result.Name]
		if !ok {
			answer = "（沒有作答）"
		}
		spies = append(spies, spyRevealEntry{
			Name:   result.Name,
			Answer: answer,
			Votes:  result.VotesAgainst,
			Earned: result.Earned,
		})
	}

	s.wsManager.ToAll(EventFinalSpyReveal, finalRevealPayload{
		Spies:       spies,
		SpyQuestion: state.SpyQuestion,
		Scores:      scoreMap,
		TotalVotes:  citizenCount,
	})
	return nil
}

// NextRound 回到大廳，任何狀態都可以執行，重複執行結果相同。
// 清掉回合欄位和紀錄，所有人的角色恢復成一般玩家
func (s *GameService) NextRound() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.stateRepo.Update(map[string]interface{}{
		"status":           models.StatusLobby,
		"answers_revealed": false,
		"deadline":         nil,
		"spy_question":     "",
		"general_question": "",
	})
	if err != nil {
		return err
	}

	if err := s.sessionRepo.SetRoleAll(models.RoleGeneral); err != nil {
		return err
	}
	if err := s.roundLogRepo.Clear(); err != nil {
		return err
	}

	s.wsManager.ToAll(EventBackToLobby, nil)
	s.wsManager.ToAll(EventAnswerReceivedCount, 0)
	return nil
}

// GoToLeaderboard 揭曉 -> 排行榜，通知所有連接換頁
func (s *GameService) GoToLeaderboard() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.stateRepo.Get()
	if err != nil {
		return err
	}
	if state.Status != models.StatusResult {
		log.Printf("[game] ignoring go_to_leaderboard in status %s", state.Status)
		return ErrInvalidTransition
	}

	err = s.stateRepo.Update(map[string]interface{}{
		"status": models.StatusLeaderboard,
	})
	if err != nil {
		return err
	}

	s.wsManager.ToAll(EventNavToLeaderboard, nil)
	return nil
}

// FullReset 整局重置：清空分數、回合紀錄和所有會話，
// 並強制所有連上的客戶端重新登入
func (s *GameService) FullReset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.scoreRepo.Purge(); err != nil {
		return err
	}
	if err := s.roundLogRepo.Clear(); err != nil {
		return err
	}
	if err := s.sessions.Purge(); err != nil {
		return err
	}

	err := s.stateRepo.Update(map[string]interface{}{
		"status":           models.StatusLobby,
		"round_index":      0,
		"answers_revealed": false,
		"deadline":         nil,
		"spy_question":     "",
		"general_question": "",
		"spy_count":        0,
	})
	if err != nil {
		return err
	}

	log.Printf("[game] full reset completed")
	s.wsManager.ToAll(EventForceLogout, nil)
	return nil
}

// SendLeaderboard 把目前的分數和臥底次數回給發出請求的那個連接
func (s *GameService) SendLeaderboard(client *Client) {
	scoreMap, timesMap := s.loadScoreMaps()
	s.wsManager.ToClient(client, EventUpdateLeaderboard, leaderboardPayload{
		Scores: scoreMap,
		Times:  timesMap,
	})
}

// LeaderboardScores 供 HTTP 查詢使用
func (s *GameService) LeaderboardScores() (map[string]int, map[string]int) {
	return s.loadScoreMaps()
}

// SyncClient 在連接建立（或重連）後補送目前回合的狀態：
// 倒數、自己角色的題目、提交數，投票階段還會補上已公開的答案。
// 斷線期間錯過的事件就是靠這裡恢復的。
func (s *GameService) SyncClient(client *Client, session *models.PlayerSession) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.stateRepo.Get()
	if err != nil {
		log.Printf("[game] state unavailable during sync: %v", err)
		return
	}

	if state.Deadline != nil && state.Deadline.After(time.Now()) {
		s.wsManager.ToClient(client, EventStartCountdown, state.Deadline.UnixMilli())
	}

	if session == nil {
		return
	}

	inRound := state.Status == models.StatusPlaying ||
		state.Status == models.StatusVoting ||
		state.Status == models.StatusResult
	if !inRound {
		return
	}

	// 角色可能在斷線期間被改掉，重新讀一次再決定題目
	role := session.Role
	if fresh, err := s.sessionRepo.FindByName(session.PlayerName); err == nil {
		role = fresh.Role
	}
	question := state.GeneralQuestion
	if role == models.RoleSpy {
		question = state.SpyQuestion
	}
	s.wsManager.ToClient(client, EventReceiveQuestion, questionPayload{Question: question, Role: role})

	if count, err := s.roundLogRepo.CountOf(models.ActionAnswer); err == nil {
		s.wsManager.ToClient(client, EventAnswerReceivedCount, count)
	}

	if state.Status == models.StatusVoting && state.AnswersRevealed {
		payload, err := s.buildRevealAnswersPayload(state.SpyQuestion, state.GeneralQuestion)
		if err != nil {
			log.Printf("[game] reveal payload unavailable during sync: %v", err)
			return
		}
		s.wsManager.ToClient(client, EventRevealAllAnswers, payload)
		s.wsManager.ToClient(client, EventRevealSpyCountForVoting, state.SpyCount)
	}
}

// broadcastActionCount 廣播某種動作目前的提交數
func (s *GameService) broadcastActionCount(action models.RoundAction) error {
	count, err := s.roundLogRepo.CountOf(action)
	if err != nil {
		return err
	}
	s.wsManager.ToAll(EventAnswerReceivedCount, count)
	return nil
}

// buildRevealAnswersPayload 把答案連同提交者的角色組成公佈用的內容
func (s *GameService) buildRevealAnswersPayload(spyQuestion, generalQuestion string) (revealAnswersPayload, error) {
	entries, err := s.roundLogRepo.EntriesOf(models.ActionAnswer)
	if err != nil {
		return revealAnswersPayload{}, err
	}

	roleByName := make(map[string]models.PlayerRole)
	if players, err := s.sessionRepo.FindAll(); err == nil {
		for _, p := range players {
			roleByName[p.PlayerName] = p.Role
		}
	}

	answers := make([]answerEntry, 0, len(entries))
	for _, entry := range entries {
		role, ok := roleByName[entry.PlayerName]
		if !ok {
			role = models.RoleGeneral
		}
		answers = append(answers, answerEntry{
			Name:   entry.PlayerName,
			Answer: entry.Content,
			Role:   role,
		})
	}

	return revealAnswersPayload{
		Answers:         answers,
		SpyQuestion:     spyQuestion,
		GeneralQuestion: generalQuestion,
	}, nil
}

// loadScoreMaps 讀出所有人的分數和臥底次數，讀不到時退回空結果
func (s *GameService) loadScoreMaps() (map[string]int, map[string]int) {
	scores, err := s.scoreRepo.FindAll()
	if err != nil {
		log.Printf("[game] scores unavailable: %v", err)
		return map[string]int{}, map[string]int{}
	}

	scoreMap := make(map[string]int, len(scores))
	timesMap := make(map[string]int, len(scores))
	for _, score := range scores {
		scoreMap[score.PlayerName] = score.Score
		timesMap[score.PlayerName] = score.TimesSpy
	}
	return scoreMap, timesMap
}
