package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spygame_web/internal/models"
)

func TestStartGameNeedsPlayers(t *testing.T) {
	services, repos := newTestEnv(t)

	assert.ErrorIs(t, services.Game.StartGame(0), ErrInvalidTransition)

	state, err := repos.GameState.Get()
	require.NoError(t, err)
	assert.Equal(t, models.StatusLobby, state.Status)
}

func TestStartGameAssignsRolesAndQuestions(t *testing.T) {
	services, repos := newTestEnv(t)
	for i := 0; i < 4; i++ {
		joinAndConnect(t, services, fmt.Sprintf("玩家%d", i), fmt.Sprintf("conn-%d", i))
	}

	require.NoError(t, services.Game.StartGame(0))

	state, err := repos.GameState.Get()
	require.NoError(t, err)
	assert.Equal(t, models.StatusPlaying, state.Status)
	assert.Equal(t, 1, state.SpyCount)
	assert.NotEmpty(t, state.SpyQuestion)
	assert.NotEmpty(t, state.GeneralQuestion)
	assert.NotEqual(t, state.SpyQuestion, state.GeneralQuestion)
	assert.NotNil(t, state.Deadline)
	assert.False(t, state.AnswersRevealed)

	// 四個人只有一位臥底
	sessions, err := repos.Session.FindAll()
	require.NoError(t, err)
	spies := 0
	var spyName string
	for _, s := range sessions {
		if s.Role == models.RoleSpy {
			spies++
			spyName = s.PlayerName
		}
	}
	assert.Equal(t, 1, spies)

	// 被選上的臥底歷史次數要加一
	times, err := repos.Score.TimesSpyByName([]string{spyName})
	require.NoError(t, err)
	assert.Equal(t, 1, times[spyName])

	// 回合進行中不能重複開局
	assert.ErrorIs(t, services.Game.StartGame(1), ErrInvalidTransition)
}

func TestInvalidTransitionsAreNoOps(t *testing.T) {
	services, repos := newTestEnv(t)
	joinAndConnect(t, services, "小明", "conn-a")

	// 大廳狀態下公佈答案和結算都不該動到狀態
	assert.ErrorIs(t, services.Game.RevealAnswers(), ErrInvalidTransition)
	assert.ErrorIs(t, services.Game.ShowSpies(), ErrInvalidTransition)
	assert.ErrorIs(t, services.Game.GoToLeaderboard(), ErrInvalidTransition)

	state, err := repos.GameState.Get()
	require.NoError(t, err)
	assert.Equal(t, models.StatusLobby, state.Status)
}

func TestDuplicateSubmissionOverwrites(t *testing.T) {
	services, repos := newTestEnv(t)
	joinAndConnect(t, services, "小明", "conn-a")
	require.NoError(t, services.Game.StartGame(0))

	require.NoError(t, services.Game.SubmitAnswer("小明", "第一個答案"))
	require.NoError(t, services.Game.SubmitAnswer("小明", "改過的答案"))

	count, err := repos.RoundLog.CountOf(models.ActionAnswer)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	entries, err := repos.RoundLog.EntriesOf(models.ActionAnswer)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "改過的答案", entries[0].Content)
}

// 完整跑一回合：開局、作答、公佈、投票、結算，驗證每個人入帳的分數
func TestFullRoundScoring(t *testing.T) {
	services, repos := newTestEnv(t)
	names := []string{"甲", "乙", "丙", "丁"}
	for i, name := range names {
		joinAndConnect(t, services, name, fmt.Sprintf("conn-%d", i))
	}

	require.NoError(t, services.Game.StartGame(0))

	// 找出這回合的臥底和平民
	sessions, err := repos.Session.FindAll()
	require.NoError(t, err)
	var spy string
	citizens := make([]string, 0, 3)
	for _, s := range sessions {
		if s.Role == models.RoleSpy {
			spy = s.PlayerName
		} else {
			citizens = append(citizens, s.PlayerName)
		}
	}
	require.NotEmpty(t, spy)
	require.Len(t, citizens, 3)

	for _, name := range names {
		require.NoError(t, services.Game.SubmitAnswer(name, "答案-"+name))
	}

	require.NoError(t, services.Game.RevealAnswers())
	state, err := repos.GameState.Get()
	require.NoError(t, err)
	assert.Equal(t, models.StatusVoting, state.Status)
	assert.True(t, state.AnswersRevealed)

	// 三位平民都投中臥底，臥底投給別人
	for _, citizen := range citizens {
		require.NoError(t, services.Game.SubmitVote(citizen, spy))
	}
	require.NoError(t, services.Game.SubmitVote(spy, citizens[0]))

	require.NoError(t, services.Game.ShowSpies())
	state, err = repos.GameState.Get()
	require.NoError(t, err)
	assert.Equal(t, models.StatusResult, state.Status)
	assert.Nil(t, state.Deadline)

	// 平民 3 人、臥底 1 人：groupSize=3、門檻=1。
	// 臥底被投 3 票：扣 1 + ⌊(3-1)/3⌋ = 1，得 0 分；投中的平民各得 1 分
	scores, _ := services.Game.LeaderboardScores()
	for _, citizen := range citizens {
		assert.Equal(t, 1, scores[citizen], "citizen %s", citizen)
	}
	assert.Equal(t, 0, scores[spy])

	require.NoError(t, services.Game.GoToLeaderboard())
	state, err = repos.GameState.Get()
	require.NoError(t, err)
	assert.Equal(t, models.StatusLeaderboard, state.Status)
}

func TestNextRoundIsIdempotent(t *testing.T) {
	services, repos := newTestEnv(t)
	joinAndConnect(t, services, "小明", "conn-a")
	require.NoError(t, services.Game.StartGame(0))
	require.NoError(t, services.Game.SubmitAnswer("小明", "答案"))

	require.NoError(t, services.Game.NextRound())
	first, err := repos.GameState.Get()
	require.NoError(t, err)

	// 從大廳再執行一次，可觀察的狀態要完全相同
	require.NoError(t, services.Game.NextRound())
	second, err := repos.GameState.Get()
	require.NoError(t, err)

	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.SpyQuestion, second.SpyQuestion)
	assert.Equal(t, first.GeneralQuestion, second.GeneralQuestion)
	assert.Equal(t, first.AnswersRevealed, second.AnswersRevealed)
	assert.Nil(t, second.Deadline)

	// 回合紀錄清空、角色全部恢復成一般玩家
	count, err := repos.RoundLog.CountOf(models.ActionAnswer)
	require.NoError(t, err)
	assert.Zero(t, count)

	sessions, err := repos.Session.FindAll()
	require.NoError(t, err)
	for _, s := range sessions {
		assert.Equal(t, models.RoleGeneral, s.Role)
	}
}

func TestFullResetClearsEverything(t *testing.T) {
	services, repos := newTestEnv(t)
	joinAndConnect(t, services, "小明", "conn-a")
	joinAndConnect(t, services, "小華", "conn-b")
	require.NoError(t, services.Game.StartGame(2))
	require.NoError(t, services.Game.SubmitAnswer("小明", "答案"))

	require.NoError(t, services.Game.FullReset())

	state, err := repos.GameState.Get()
	require.NoError(t, err)
	assert.Equal(t, models.StatusLobby, state.Status)
	assert.Zero(t, state.RoundIndex)
	assert.Zero(t, state.SpyCount)
	assert.Empty(t, state.SpyQuestion)

	sessionCount, err := repos.Session.Count()
	require.NoError(t, err)
	assert.Zero(t, sessionCount)

	scores, err := repos.Score.FindAll()
	require.NoError(t, err)
	assert.Empty(t, scores)

	logCount, err := repos.RoundLog.CountOf(models.ActionAnswer)
	require.NoError(t, err)
	assert.Zero(t, logCount)

	// 重置後所有名字都能重新登入
	_, err = services.Session.Join("小明", "")
	assert.NoError(t, err)
}
