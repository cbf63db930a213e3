package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"spygame_web/internal/service"
	"spygame_web/internal/utils"
)

// AuthHandler 處理玩家登入與管理員登入
type AuthHandler struct {
	sessionService    *service.SessionService
	adminPasswordHash string
}

// NewAuthHandler 創建一個新的 AuthHandler 實例
func NewAuthHandler(sessionService *service.SessionService, adminPasswordHash string) *AuthHandler {
	return &AuthHandler{
		sessionService:    sessionService,
		adminPasswordHash: adminPasswordHash,
	}
}

// LoginInput 定義玩家登入請求的結構
type LoginInput struct {
	Name string `json:"name" binding:"required"`
}

// AdminLoginInput 定義管理員登入請求的結構
type AdminLoginInput struct {
	Password string `json:"password" binding:"required"`
}

// Login 處理玩家登入，成功時回傳會話憑證。
// 瀏覽器重整時會帶上舊憑證（X-Session-Token），同名且憑證相符就接續舊會話
func (h *AuthHandler) Login(c *gin.Context) {
	var input LoginInput
	// 解析並驗證請求體
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	name := strings.TrimSpace(input.Name)
	if len([]rune(name)) < 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "名字至少要兩個字"})
		return
	}

	session, err := h.sessionService.Join(name, c.GetHeader("X-Session-Token"))
	if err != nil {
		if errors.Is(err, service.ErrNameReserved) {
			c.JSON(http.StatusConflict, gin.H{"error": "此名稱已被其他玩家使用 ⛔"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "登入失敗"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": session.Token,
		"name":  session.PlayerName,
	})
}

// AdminLogin 驗證管理員密碼並發放 JWT token
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var input AdminLoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 驗證密碼
	if err := bcrypt.CompareHashAndPassword([]byte(h.adminPasswordHash), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "密碼錯誤"})
		return
	}

	// 生成 JWT token
	token, err := utils.GenerateAdminToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "獲取token失敗"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}
