package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lunchbox/internal/auth"
	"lunchbox/internal/config"
	"lunchbox/internal/domain"
	"lunchbox/internal/service"
)

// AuthHandler expone los flujos OAuth y el estado de la sesion.
type AuthHandler struct {
	logger *zap.Logger
	bridge *auth.Bridge
	chat   *service.ChatService
	cfg    *config.Config
}

func NewAuthHandler(logger *zap.Logger, bridge *auth.Bridge, chat *service.ChatService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{logger: logger, bridge: bridge, chat: chat, cfg: cfg}
}

// Login maneja GET /auth/login/:provider.
func (h *AuthHandler) Login(c *gin.Context) {
	provider, err := auth.ParseProvider(c.Param("provider"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown provider"})
		return
	}
	h.startSignIn(c, provider, false)
}

// DiscordDirect maneja GET /auth/discord-direct.
func (h *AuthHandler) DiscordDirect(c *gin.Context) {
	h.startSignIn(c, domain.ProviderDiscord, true)
}

func (h *AuthHandler) startSignIn(c *gin.Context, provider domain.Provider, direct bool) {
	clientID, ok := mustClientID(c)
	if !ok {
		return
	}

	var (
		target string
		err    error
	)
	if direct {
		target, err = h.bridge.SignInDirect(c.Request.Context(), clientID, provider)
	} else {
		target, err = h.bridge.SignIn(c.Request.Context(), clientID, provider)
	}
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrProviderNotConfigured):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "provider not configured"})
		case errors.Is(err, auth.ErrUnknownProvider):
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown provider"})
		default:
			h.logger.Error("sign in failed", zap.String("provider", string(provider)), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not start sign in"})
		}
		return
	}
	c.Redirect(http.StatusFound, target)
}

// Callback atiende todas las rutas de callback. provider vacio significa que sale de la sesion pendiente.
func (h *AuthHandler) Callback(provider domain.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID, ok := mustClientID(c)
		if !ok {
			return
		}
		target := h.bridge.HandleCallback(c.Request.Context(), clientID, auth.CallbackParams{
			Provider: provider,
			Code:     c.Query("code"),
			State:    c.Query("state"),
			Error:    c.Query("error"),
		})
		c.Redirect(http.StatusFound, target)
	}
}

// Status maneja GET /auth/status.
func (h *AuthHandler) Status(c *gin.Context) {
	clientID, ok := mustClientID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.bridge.Status(c.Request.Context(), clientID))
}

// Logout maneja POST /auth/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	clientID, ok := mustClientID(c)
	if !ok {
		return
	}
	if err := h.bridge.SignOut(c.Request.Context(), clientID); err != nil {
		h.logger.Error("sign out failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not sign out"})
		return
	}
	h.chat.Reset(clientID)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Config maneja GET /auth/config.
func (h *AuthHandler) Config(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"redirectUrl": h.cfg.IdentityRedirectURL()})
}

// Check maneja GET /auth/check. No expone secretos.
func (h *AuthHandler) Check(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"appUrl":              h.cfg.PublicBaseURL,
		"environment":         h.cfg.AppEnv,
		"supabaseUrl":         h.cfg.SupabaseURL,
		"identityRedirectUri": h.cfg.IdentityRedirectURL(),
		"spotifyRedirectUri":  h.cfg.MusicRedirectURL(),
		"hasGoogleClientId":   h.cfg.GoogleClientID != "",
		"hasDiscordClientId":  h.cfg.DiscordClientID != "",
		"hasSpotifyClientId":  h.cfg.SpotifyClientID != "",
	})
}
