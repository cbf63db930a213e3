// Package api 處理 HTTP 請求路由和處理。
//
// 這個包包含了所有的 HTTP 處理器（handlers），也包含 WebSocket 的連接點。
// 它負責將 HTTP 請求和客戶端事件轉換為適當的服務調用。
package api
