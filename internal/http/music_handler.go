package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lunchbox/internal/auth"
	"lunchbox/internal/domain"
	"lunchbox/internal/music"
)

// MusicHandler expone busqueda, playlists y playback de Spotify.
type MusicHandler struct {
	logger *zap.Logger
	music  *music.Client
	bridge *auth.Bridge
}

func NewMusicHandler(logger *zap.Logger, client *music.Client, bridge *auth.Bridge) *MusicHandler {
	return &MusicHandler{logger: logger, music: client, bridge: bridge}
}

// Suggestions maneja POST /music/suggestions.
func (h *MusicHandler) Suggestions(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid music suggestion request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	tok, ok := h.musicToken(c)
	if !ok {
		return
	}

	tracks, err := h.music.Suggest(c.Request.Context(), tok, req.Text)
	if err != nil {
		if writeMusicAuthError(c, err) {
			return
		}
		h.logger.Warn("music suggestions failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not get suggestions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"query": music.QueryFor(req.Text), "tracks": tracks})
}

// CreatePlaylist maneja POST /music/playlists. Cualquier falla del proveedor responde url null.
func (h *MusicHandler) CreatePlaylist(c *gin.Context) {
	var req struct {
		Name   string         `json:"name" binding:"required"`
		Tracks []domain.Track `json:"tracks"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create playlist request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	tok, ok := h.musicToken(c)
	if !ok {
		return
	}

	url, err := h.music.CreatePlaylist(c.Request.Context(), tok, req.Name, req.Tracks)
	if err != nil {
		if writeMusicAuthError(c, err) {
			return
		}
		h.logger.Warn("create playlist failed", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"url": nil})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url})
}

// Play maneja POST /music/play.
func (h *MusicHandler) Play(c *gin.Context) {
	var req struct {
		TrackID string `json:"track_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid play request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	tok, ok := h.musicToken(c)
	if !ok {
		return
	}

	played, err := h.music.PlayTrack(c.Request.Context(), tok, req.TrackID)
	if err != nil {
		if writeMusicAuthError(c, err) {
			return
		}
		h.logger.Warn("play track failed", zap.Error(err))
		played = false
	}
	c.JSON(http.StatusOK, gin.H{"ok": played})
}

func (h *MusicHandler) musicToken(c *gin.Context) (domain.ProviderToken, bool) {
	clientID, ok := mustClientID(c)
	if !ok {
		return domain.ProviderToken{}, false
	}
	tok, err := h.bridge.MusicToken(c.Request.Context(), clientID)
	if err != nil {
		if !writeMusicAuthError(c, err) {
			h.logger.Error("load music token failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load music token"})
		}
		return domain.ProviderToken{}, false
	}
	return tok, true
}

// writeMusicAuthError responde 401/409 para errores de autenticacion y devuelve false para el resto.
func writeMusicAuthError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, domain.ErrWrongProviderToken):
		c.JSON(http.StatusConflict, gin.H{"error": "wrong provider token"})
		return true
	case errors.Is(err, domain.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "spotify not connected"})
		return true
	default:
		return false
	}
}
