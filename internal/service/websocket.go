package service

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// 伺服器推送給客戶端的事件名稱
const (
	EventUpdatePlayerList        = "update_player_list"
	EventUpdatePlayerCount       = "update_player_count"
	EventReceiveQuestion         = "receive_question"
	EventAnswerReceivedCount     = "answer_received_count"
	EventRevealAllAnswers        = "reveal_all_answers"
	EventRevealSpyCountForVoting = "reveal_spy_count_for_voting"
	EventStartCountdown          = "start_countdown"
	EventGameStartedDisplay      = "game_started_display"
	EventFinalSpyReveal          = "final_spy_reveal"
	EventBackToLobby             = "back_to_lobby"
	EventNavToLeaderboard        = "nav_to_leaderboard"
	EventForceLogout             = "force_logout"
	EventUpdateLeaderboard       = "update_leaderboard"
)

// ClientKind 區分連上來的客戶端類型
type ClientKind string

const (
	ClientPlayer  ClientKind = "player"  // 一般玩家，必須持有會話憑證
	ClientDisplay ClientKind = "display" // 大螢幕顯示端，不需要會話
	ClientAdmin   ClientKind = "admin"   // 管理端，用管理員 token 驗證
)

// Event 代表一則推送給客戶端的事件
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// InboundEvent 代表客戶端送上來的事件
// 先保留原始 JSON，由各個處理函式再解析出固定的結構
type InboundEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Client 代表一個 WebSocket 客戶端連接
type Client struct {
	Conn       *websocket.Conn // WebSocket 連接
	ID         string          // 連線編號，每次連線都不同
	PlayerName string          // 玩家名字，display/admin 端為空字串
	Kind       ClientKind
	SendChan   chan Event // 消息發送通道，用於異步傳送消息
}

// WebSocketManager 管理所有的 WebSocket 連接和消息傳遞
// 投遞是 fire-and-forget：斷線的玩家收不到事件，要靠重連後的狀態同步補齊
type WebSocketManager struct {
	clients    map[*Client]bool   // 所有存活的連接
	byName     map[string]*Client // 玩家名字 -> 目前的連接
	clientsMux sync.RWMutex       // 用於保護兩個 map 的讀寫鎖
}

// NewWebSocketManager 創建並初始化新的 WebSocket 管理器
func NewWebSocketManager() *WebSocketManager {
	return &WebSocketManager{
		clients: make(map[*Client]bool),
		byName:  make(map[string]*Client),
	}
}

// Register 把連接加入管理器，之後的廣播才會送到這個客戶端
// 要在 Serve 之前呼叫，連接建立初期的狀態同步才不會漏掉廣播
func (m *WebSocketManager) Register(client *Client) {
	m.addClient(client)
}

// Serve 啟動讀寫處理，dispatch 會在讀取迴圈中同步被呼叫
// 連接關閉時函式才返回
func (m *WebSocketManager) Serve(client *Client, dispatch func(*Client, InboundEvent)) {
	// 確保連接關閉時清理資源
	defer func() {
		m.removeClient(client)
		client.Conn.Close()
	}()

	go m.writePump(client)
	m.readPump(client, dispatch)
}

// readPump 持續監聽並處理從客戶端接收的消息
func (m *WebSocketManager) readPump(client *Client, dispatch func(*Client, InboundEvent)) {
	client.Conn.SetReadLimit(4096) // 設置最大消息大小為 4KB
	client.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket unexpected close error: %v", err)
			}
			break
		}

		// 解析接收到的事件，格式不對就略過，不中斷連接
		var event InboundEvent
		if err := json.Unmarshal(message, &event); err != nil {
			log.Printf("event parse error: %v", err)
			continue
		}
		if event.Event == "" {
			continue
		}

		dispatch(client, event)
	}
}

// writePump 處理向客戶端發送消息的邏輯
func (m *WebSocketManager) writePump(client *Client) {
	// 設置心跳檢查計時器
	ticker := time.NewTicker(54 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-client.SendChan:
			// 設置寫入超時
			client.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			messageBytes, err := json.Marshal(event)
			if err != nil {
				log.Printf("event encoding error: %v", err)
				continue
			}

			if err := client.Conn.WriteMessage(websocket.TextMessage, messageBytes); err != nil {
				return
			}

		case <-ticker.C:
			// 發送心跳包
			client.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ToAll 向所有存活的連接廣播事件
func (m *WebSocketManager) ToAll(event string, data interface{}) {
	m.clientsMux.RLock()
	clients := make([]*Client, 0, len(m.clients))
	for client := range m.clients {
		clients = append(clients, client)
	}
	m.clientsMux.RUnlock()

	for _, client := range clients {
		m.send(client, Event{Event: event, Data: data})
	}
}

// ToPlayer 只發送給指定玩家，玩家不在線時默默略過
func (m *WebSocketManager) ToPlayer(name string, event string, data interface{}) {
	m.clientsMux.RLock()
	client, ok := m.byName[name]
	m.clientsMux.RUnlock()

	if !ok {
		return
	}
	m.send(client, Event{Event: event, Data: data})
}

// ToClient 發送給某個特定連接，用於回應單一連接的請求
func (m *WebSocketManager) ToClient(client *Client, event string, data interface{}) {
	m.send(client, Event{Event: event, Data: data})
}

func (m *WebSocketManager) send(client *Client, event Event) {
	select {
	case client.SendChan <- event:
		// 事件成功加入發送隊列
	default:
		// 客戶端消息隊列已滿，關閉連接
		m.removeClient(client)
		client.Conn.Close()
	}
}

// addClient 安全地添加新的客戶端連接
func (m *WebSocketManager) addClient(client *Client) {
	m.clientsMux.Lock()
	defer m.clientsMux.Unlock()

	m.clients[client] = true
	if client.PlayerName != "" {
		m.byName[client.PlayerName] = client
	}
}

// removeClient 安全地移除客戶端連接
func (m *WebSocketManager) removeClient(client *Client) {
	m.clientsMux.Lock()
	defer m.clientsMux.Unlock()

	if _, ok := m.clients[client]; !ok {
		return
	}
	delete(m.clients, client)

	// 發送通道不關閉，writePump 會在連接關閉後自行結束，
	// 避免廣播端寫入已關閉的通道
	// 玩家可能已經用新連接蓋掉這個名字，只在還指向自己時才移除
	if client.PlayerName != "" && m.byName[client.PlayerName] == client {
		delete(m.byName, client.PlayerName)
	}
}

// ClientCount 獲取目前在線的連接數量
func (m *WebSocketManager) ClientCount() int {
	m.clientsMux.RLock()
	defer m.clientsMux.RUnlock()

	return len(m.clients)
}
