// Package middleware 提供了 HTTP 請求處理的中間件。
//
// 目前只有管理端的身份驗證：驗證 Authorization 頭裡的 JWT token，
// 沒有通過驗證的請求不會進到後面的處理器。
package middleware
