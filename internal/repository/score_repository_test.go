package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"spygame_web/internal/models"
	"spygame_web/internal/storage"
)

func newTestRepos(t *testing.T) (*Repositories, *storage.DB) {
	t.Helper()

	db, err := storage.NewMemoryDB()
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.PlayerSession{},
		&models.PlayerScore{},
		&models.RoundLog{},
		&models.GameState{},
	)
	require.NoError(t, err)

	return NewRepositories(db), db
}

func TestAddScoreAccumulates(t *testing.T) {
	repos, _ := newTestRepos(t)

	// 對還沒有紀錄的玩家累加會直接建立
	require.NoError(t, repos.Score.AddScore("小明", 2))
	require.NoError(t, repos.Score.AddScore("小明", 3))
	require.NoError(t, repos.Score.AddScore("小明", 0))

	scores, err := repos.Score.FindAll()
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, 5, scores[0].Score)
}

func TestEnsurePlayerDoesNotOverwrite(t *testing.T) {
	repos, _ := newTestRepos(t)

	require.NoError(t, repos.Score.AddScore("小明", 7))
	// 已有分數的玩家再登入一次，分數不能被歸零
	require.NoError(t, repos.Score.EnsurePlayer("小明"))

	scores, err := repos.Score.FindAll()
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, 7, scores[0].Score)
}

func TestIncrementTimesSpy(t *testing.T) {
	repos, _ := newTestRepos(t)

	require.NoError(t, repos.Score.EnsurePlayer("小明"))
	require.NoError(t, repos.Score.EnsurePlayer("小華"))

	require.NoError(t, repos.Score.IncrementTimesSpy([]string{"小明"}))
	require.NoError(t, repos.Score.IncrementTimesSpy([]string{"小明", "小華"}))
	require.NoError(t, repos.Score.IncrementTimesSpy(nil))

	times, err := repos.Score.TimesSpyByName([]string{"小明", "小華", "路人"})
	require.NoError(t, err)
	assert.Equal(t, 2, times["小明"])
	assert.Equal(t, 1, times["小華"])
	// 沒有紀錄的名字不會出現在結果裡
	_, ok := times["路人"]
	assert.False(t, ok)
}

func TestIncrementTimesSpySurfacesFailure(t *testing.T) {
	repos, db := newTestRepos(t)
	require.NoError(t, repos.Score.EnsurePlayer("小明"))

	// 把資料表弄不見模擬持續性的寫入失敗，重試用盡後錯誤要回報給呼叫端
	require.NoError(t, db.Exec("DROP TABLE player_scores").Error)
	assert.Error(t, repos.Score.IncrementTimesSpy([]string{"小明"}))
}

func TestUpdateConnectionMissingSession(t *testing.T) {
	repos, _ := newTestRepos(t)

	// 會話已被移除時換綁連線要失敗，不能默默成功
	err := repos.Session.UpdateConnection("不存在的玩家", "conn-x")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRoundLogUpsertAndClear(t *testing.T) {
	repos, _ := newTestRepos(t)

	require.NoError(t, repos.RoundLog.Record("小明", models.ActionAnswer, "第一版"))
	require.NoError(t, repos.RoundLog.Record("小明", models.ActionAnswer, "第二版"))
	require.NoError(t, repos.RoundLog.Record("小明", models.ActionVote, "小華"))

	// 答案被覆蓋成最新的那筆，投票是另一種動作互不影響
	answers, err := repos.RoundLog.EntriesOf(models.ActionAnswer)
	require.NoError(t, err)
	require.Len(t, answers, 1)
	assert.Equal(t, "第二版", answers[0].Content)

	voteCount, err := repos.RoundLog.CountOf(models.ActionVote)
	require.NoError(t, err)
	assert.EqualValues(t, 1, voteCount)

	require.NoError(t, repos.RoundLog.Clear())

	// 清掉之後同一位玩家要能再寫入
	require.NoError(t, repos.RoundLog.Record("小明", models.ActionAnswer, "新回合"))
	count, err := repos.RoundLog.CountOf(models.ActionAnswer)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestGameStateSingleton(t *testing.T) {
	repos, _ := newTestRepos(t)

	require.NoError(t, repos.GameState.EnsureExists())
	// 再呼叫一次不能建立第二筆
	require.NoError(t, repos.GameState.EnsureExists())

	state, err := repos.GameState.Get()
	require.NoError(t, err)
	assert.Equal(t, models.GameStateID, state.ID)
	assert.Equal(t, models.StatusLobby, state.Status)

	require.NoError(t, repos.GameState.Update(map[string]interface{}{
		"status":    models.StatusPlaying,
		"spy_count": 2,
	}))

	state, err = repos.GameState.Get()
	require.NoError(t, err)
	assert.Equal(t, models.StatusPlaying, state.Status)
	assert.Equal(t, 2, state.SpyCount)
}
