package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/thereayou/roomly/internal/middleware"
	"github.com/thereayou/roomly/internal/services"
)

const defaultHistorySize = 30

type ChatHandler struct {
	chat *services.ChatService
}

func NewChatHandler(chat *services.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// GetMessageHistory pages the room history, newest first.
func (h *ChatHandler) GetMessageHistory(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apiResponse{Status: "ERROR", Message: "invalid room id"})
		return
	}
	page, size := pageParams(c, defaultHistorySize)

	result, err := h.chat.GetMessageHistory(c.Request.Context(), userID, roomID, page, size)
	if err != nil {
		respondErr(c, err)
		return
	}

	respondOK(c, "Messages fetched successfully", result)
}

// DeleteMessage removes a message; room creator only.
func (h *ChatHandler) DeleteMessage(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apiResponse{Status: "ERROR", Message: "invalid room id"})
		return
	}
	messageID, err := uuid.Parse(c.Param("messageId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apiResponse{Status: "ERROR", Message: "invalid message id"})
		return
	}

	if err := h.chat.DeleteMessage(c.Request.Context(), userID, roomID, messageID); err != nil {
		respondErr(c, err)
		return
	}

	respondOK(c, "Message deleted successfully", nil)
}
