package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"spygame_web/internal/models"
	"spygame_web/internal/repository"
	"spygame_web/internal/storage"
	"spygame_web/pkg/config"
)

// newTestEnv 在記憶體 SQLite 上建好整套 repositories 和 services
// 斷線寬限期設成 1 秒讓踢出相關的測試跑得動
func newTestEnv(t *testing.T) (*Services, *repository.Repositories) {
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

	repos := repository.NewRepositories(db)
	require.NoError(t, repos.GameState.EnsureExists())

	cfg := &config.Config{
		Game: config.GameConfig{
			DisconnectGraceSeconds: 1,
			AnswerPhaseSeconds:     30,
			VotePhaseSeconds:       45,
		},
	}

	return NewServices(repos, cfg), repos
}

// newWatcherClient 註冊一個只收事件的連接，用來驗證廣播行為
func newWatcherClient(services *Services) *Client {
	client := &Client{
		ID:       "觀察者",
		Kind:     ClientDisplay,
		SendChan: make(chan Event, 64),
	}
	services.WebSocket.Register(client)
	return client
}

// receivedEvents 把通道裡累積的事件名稱全部倒出來
func receivedEvents(client *Client) []string {
	events := make([]string, 0)
	for {
		select {
		case event := <-client.SendChan:
			events = append(events, event.Event)
		default:
			return events
		}
	}
}

// joinAndConnect 建立會話並綁上一個連線編號
func joinAndConnect(t *testing.T, services *Services, name, connID string) *models.PlayerSession {
	t.Helper()

	session, err := services.Session.Join(name, "")
	require.NoError(t, err)
	require.NoError(t, services.Session.AttachConnection(session, connID))
	return session
}
