package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"investment-research/auth"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password required"})
		return
	}

	user, err := auth.Authenticate(c.Request.Context(), h.store, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.logger.Warn().Str("username", req.Username).Msg("Login rejected")
			c.Header("WWW-Authenticate", "Bearer")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect username or password"})
			return
		}
		h.fail(c, err, "")
		return
	}

	token, expires, err := h.tokens.Issue(user.ID, user.Username, user.Role)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	h.logger.Info().Str("username", user.Username).Msg("User logged in")
	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
		"expires_at":   expires.UTC().Format(time.RFC3339),
		"user":         user,
	})
}

// Me returns the stored profile of the authenticated user.
func (h *Handler) Me(c *gin.Context) {
	claims := auth.CurrentUser(c)
	user, err := h.store.User(c.Request.Context(), claims.Subject)
	if err != nil {
		h.fail(c, err, "User not found")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "online",
		"services": gin.H{
			"data_collector": "ready",
			"data_cleaner":   "ready",
			"llm_analysis":   "ready",
			"pdf_generator":  "ready",
		},
		"version": h.version,
	})
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now().UTC().Format(time.RFC3339)})
}

// Models describes the configured narrative backend.
func (h *Handler) Models(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"api": gin.H{
			"available": h.provider.Name() != "none",
			"provider":  h.provider.Name(),
			"model":     h.provider.Model(),
		},
	})
}
