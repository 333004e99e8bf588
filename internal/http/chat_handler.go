package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lunchbox/internal/service"
)

// ChatHandler expone la conversacion del cliente.
type ChatHandler struct {
	logger *zap.Logger
	chat   *service.ChatService
}

func NewChatHandler(logger *zap.Logger, chat *service.ChatService) *ChatHandler {
	return &ChatHandler{logger: logger, chat: chat}
}

type textRequest struct {
	Text string `json:"text" binding:"required"`
}

// Start maneja POST /chat/start.
func (h *ChatHandler) Start(c *gin.Context) {
	clientID, ok := mustClientID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": h.chat.Start(c.Request.Context(), clientID)})
}

// PostMessage maneja POST /chat/message.
func (h *ChatHandler) PostMessage(c *gin.Context) {
	clientID, ok := mustClientID(c)
	if !ok {
		return
	}
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid chat message request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	added, err := h.chat.Send(c.Request.Context(), clientID, req.Text)
	if err != nil {
		if errors.Is(err, service.ErrEmptyMessage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "message text is empty"})
			return
		}
		h.logger.Error("chat turn failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not process message"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": added})
}

// ListMessages maneja GET /chat/messages.
func (h *ChatHandler) ListMessages(c *gin.Context) {
	clientID, ok := mustClientID(c)
	if !ok {
		return
	}
	msgs, typing := h.chat.Messages(clientID)
	step, interests := h.chat.OnboardingState(clientID)
	c.JSON(http.StatusOK, gin.H{
		"messages":        msgs,
		"typing":          typing,
		"onboarding_step": step.String(),
		"interests":       interests,
	})
}

// SuggestTasks maneja POST /chat/tasks.
func (h *ChatHandler) SuggestTasks(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid task suggestion request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": h.chat.SuggestTasks(c.Request.Context(), req.Text)})
}
