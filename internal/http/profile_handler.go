package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lunchbox/internal/service"
)

type ProfileHandler struct {
	logger   *zap.Logger
	profiles *service.ProfileService
}

func NewProfileHandler(logger *zap.Logger, profiles *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{logger: logger, profiles: profiles}
}

// GetProfile maneja GET /profile.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	clientID, ok := mustClientID(c)
	if !ok {
		return
	}
	profile := h.profiles.Load(c.Request.Context(), clientID)
	if profile == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// ClearProfile maneja DELETE /profile.
func (h *ProfileHandler) ClearProfile(c *gin.Context) {
	clientID, ok := mustClientID(c)
	if !ok {
		return
	}
	if err := h.profiles.Clear(c.Request.Context(), clientID); err != nil {
		h.logger.Error("clear profile failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not clear profile"})
		return
	}
	c.Status(http.StatusNoContent)
}
