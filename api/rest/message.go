package rest

import (
	"net/http"

	"github.com/anonto42/React-native-social-media-app/server/messaging"
	mw "github.com/anonto42/React-native-social-media-app/server/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MessageHandler handles direct message endpoints.
type MessageHandler struct {
	messages *messaging.Service
	logger   *zap.Logger
}

// NewMessageHandler creates a MessageHandler.
func NewMessageHandler(messages *messaging.Service, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{messages: messages, logger: logger}
}

// Send handles POST /api/messages.
func (h *MessageHandler) Send(c *gin.Context) {
	var req struct {
		ReceiverID string `json:"receiver_id" binding:"required"`
		Body       string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	receiver, err := uuid.Parse(req.ReceiverID)
	if err != nil {
		badRequest(c, "invalid receiver_id")
		return
	}
	msg, err := h.messages.Send(c.Request.Context(), mw.GetProfileID(c), receiver, req.Body)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

// Conversation handles GET /api/messages/:profile_id?before=&limit=.
func (h *MessageHandler) Conversation(c *gin.Context) {
	other, ok := paramUUID(c, "profile_id")
	if !ok {
		return
	}
	msgs, err := h.messages.Conversation(c.Request.Context(), mw.GetProfileID(c), other,
		queryInt64(c, "before"), queryInt(c, "limit", 0))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// MarkRead handles POST /api/messages/:id/read.
func (h *MessageHandler) MarkRead(c *gin.Context) {
	id, ok := paramInt64(c, "id")
	if !ok {
		return
	}
	if err := h.messages.MarkRead(c.Request.Context(), id, mw.GetProfileID(c)); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"read": true})
}

// Unread handles GET /api/messages/unread.
func (h *MessageHandler) Unread(c *gin.Context) {
	n, err := h.messages.UnreadCount(c.Request.Context(), mw.GetProfileID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": n})
}
