package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/stockcentral/internal/service"
	"github.com/GTDGit/stockcentral/internal/session"
	"github.com/GTDGit/stockcentral/internal/utils"
)

// LoginRecorder counts login attempts by result.
type LoginRecorder interface {
	ObserveLogin(result string)
}

// CookieOptions configures the admin token cookie.
type CookieOptions struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

type AuthHandler struct {
	authService *service.AdminAuthService
	sessions    *session.Manager
	cookie      CookieOptions
	recorder    LoginRecorder
}

func NewAuthHandler(authService *service.AdminAuthService, sessions *session.Manager, cookie CookieOptions, recorder LoginRecorder) *AuthHandler {
	return &AuthHandler{authService: authService, sessions: sessions, cookie: cookie, recorder: recorder}
}

// Login handles POST /admin/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		h.observe("invalid_request")
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	token, user, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, utils.ErrAccountInactive) {
			h.observe("inactive")
			utils.Error(c, 403, "ACCOUNT_INACTIVE", "Account is inactive")
			return
		}
		if errors.Is(err, utils.ErrInvalidCredentials) {
			h.observe("invalid_credentials")
			utils.Error(c, 401, "INVALID_CREDENTIALS", "Invalid email or password")
			return
		}
		h.observe("error")
		log.Error().Err(err).Msg("login failed")
		utils.Error(c, 500, "INTERNAL_ERROR", "Login failed")
		return
	}

	h.observe("success")
	h.setCookie(c, token, int(h.cookie.TTL.Seconds()))
	utils.Success(c, 200, "Login successful", gin.H{
		"token":     token,
		"expiresIn": int(h.cookie.TTL.Seconds()),
		"user":      user,
	})
}

// Logout handles POST /admin/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.sessions.Destroy(c); err != nil {
		log.Warn().Err(err).Msg("failed to destroy session")
	}
	h.setCookie(c, "", -1)
	utils.Success(c, 200, "Logout successful", nil)
}

func (h *AuthHandler) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, value, maxAge, "/", "", h.cookie.Secure, true)
}

func (h *AuthHandler) observe(result string) {
	if h.recorder != nil {
		h.recorder.ObserveLogin(result)
	}
}
