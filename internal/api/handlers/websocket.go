package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"spygame_web/internal/models"
	"spygame_web/internal/service"
	"spygame_web/internal/utils"
)

// 定義 WebSocket 升級器
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // 注意：在生產環境中，應該檢查 origin
	},
}

// 客戶端送上來的事件名稱
const (
	eventAdminStartGame     = "admin_start_game"
	eventSubmitAnswer       = "submit_answer"
	eventAdminRevealAnswers = "admin_reveal_answers"
	eventSubmitVote         = "submit_vote"
	eventAdminShowSpies     = "admin_show_spies"
	eventAdminNextRound     = "admin_next_round"
	eventAdminGoLeaderboard = "admin_go_to_leaderboard"
	eventAdminFullReset     = "admin_full_reset"
	eventRequestLeaderboard = "request_leaderboard"
)

// WebSocketHandler 處理 WebSocket 連接
type WebSocketHandler struct {
	wsManager      *service.WebSocketManager
	sessionService *service.SessionService
	gameService    *service.GameService
}

// NewWebSocketHandler 創建一個新的 WebSocketHandler 實例
func NewWebSocketHandler(wsManager *service.WebSocketManager, sessionService *service.SessionService, gameService *service.GameService) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager:      wsManager,
		sessionService: sessionService,
		gameService:    gameService,
	}
}

// HandleWebSocket 處理 WebSocket 連接請求。
// 玩家端要帶會話憑證；display 和 admin 端沒有玩家會話，
// admin 另外用 JWT 驗證。驗證都在升級之前完成。
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	var session *models.PlayerSession
	kind := service.ClientPlayer

	switch c.Query("client") {
	case "display":
		kind = service.ClientDisplay
	case "admin":
		claims, err := utils.ParseToken(c.Query("token"))
		if err != nil || claims.ClientKind != "admin" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		kind = service.ClientAdmin
	default:
		var err error
		session, err = h.sessionService.ResolveByToken(c.Query("token"))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "需要有效的會話憑證"})
			return
		}
	}

	// 升級 HTTP 連接為 WebSocket 連接
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "升級WebSocket失敗"})
		return
	}

	client := &service.Client{
		Conn:     conn,
		ID:       uuid.NewString(),
		Kind:     kind,
		SendChan: make(chan service.Event, 256), // 設置緩衝大小為 256 的消息通道
	}
	if session != nil {
		client.PlayerName = session.PlayerName
	}

	if session != nil {
		// 綁定新連線，若是寬限期內的重連會順便取消踢出計時器。
		// 綁定失敗代表會話在驗證之後被踢掉了，要求客戶端重新登入
		if err := h.sessionService.AttachConnection(session, client.ID); err != nil {
			log.Printf("attach connection failed for %s: %v", session.PlayerName, err)
			conn.Close()
			return
		}
	}

	// 先註冊再同步，初期的廣播才不會漏掉這個連接
	h.wsManager.Register(client)

	// 補送目前回合的狀態，並讓所有人看到最新名單
	h.gameService.SyncClient(client, session)
	h.sessionService.BroadcastRoster()

	// 讀取迴圈會一直跑到連接關閉
	h.wsManager.Serve(client, h.dispatch)

	// 斷線後啟動寬限期，玩家及時重連就不會被踢掉
	if session != nil {
		h.sessionService.ScheduleEviction(session.PlayerName, client.ID)
	}
}

// dispatch 把客戶端事件轉成對應的服務呼叫。
// 格式不對或狀態不允許的指令一律記錄後略過，不會中斷連接。
func (h *WebSocketHandler) dispatch(client *service.Client, event service.InboundEvent) {
	// admin_ 開頭的事件只接受管理端連接
	if client.Kind != service.ClientAdmin {
		switch event.Event {
		case eventAdminStartGame, eventAdminRevealAnswers, eventAdminShowSpies,
			eventAdminNextRound, eventAdminGoLeaderboard, eventAdminFullReset:
			log.Printf("[ws] non-admin client sent %s, ignoring", event.Event)
			return
		}
	}

	switch event.Event {
	case eventAdminStartGame:
		var data struct {
			RoundIndex int `json:"roundIndex"`
		}
		if err := json.Unmarshal(event.Data, &data); err != nil {
			log.Printf("[ws] bad %s payload: %v", event.Event, err)
			return
		}
		h.logTransition(h.gameService.StartGame(data.RoundIndex))

	case eventSubmitAnswer:
		if client.PlayerName == "" {
			return
		}
		var data struct {
			Answer string `json:"answer"`
		}
		if err := json.Unmarshal(event.Data, &data); err != nil {
			log.Printf("[ws] bad %s payload: %v", event.Event, err)
			return
		}
		if err := h.gameService.SubmitAnswer(client.PlayerName, data.Answer); err != nil {
			log.Printf("[ws] submit answer failed for %s: %v", client.PlayerName, err)
		}

	case eventSubmitVote:
		if client.PlayerName == "" {
			return
		}
		var data struct {
			VotedName string `json:"votedName"`
		}
		if err := json.Unmarshal(event.Data, &data); err != nil {
			log.Printf("[ws] bad %s payload: %v", event.Event, err)
			return
		}
		if err := h.gameService.SubmitVote(client.PlayerName, data.VotedName); err != nil {
			log.Printf("[ws] submit vote failed for %s: %v", client.PlayerName, err)
		}

	case eventAdminRevealAnswers:
		h.logTransition(h.gameService.RevealAnswers())

	case eventAdminShowSpies:
		h.logTransition(h.gameService.ShowSpies())

	case eventAdminNextRound:
		h.logTransition(h.gameService.NextRound())

	case eventAdminGoLeaderboard:
		h.logTransition(h.gameService.GoToLeaderboard())

	case eventAdminFullReset:
		h.logTransition(h.gameService.FullReset())

	case eventRequestLeaderboard:
		h.gameService.SendLeaderboard(client)

	default:
		log.Printf("[ws] unknown event %q", event.Event)
	}
}

// logTransition 狀態轉移的錯誤只記錄，指令對客戶端永遠是 fire-and-forget
func (h *WebSocketHandler) logTransition(err error) {
	if err != nil {
		log.Printf("[ws] transition skipped: %v", err)
	}
}
