package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bakaydmytro/team-seeker-be/internal/chat"
	"github.com/bakaydmytro/team-seeker-be/internal/http/middleware"
)

type ChatHandler struct {
	Chats *chat.Service
}

type createChatReq struct {
	RecipientID uint `json:"recipientId" binding:"required"`
}

// CreateChat returns the existing direct chat with the recipient or creates
// one on first contact. Calling it from either side yields the same chat.
func (h *ChatHandler) CreateChat(c *gin.Context) {
	userID := middleware.MustUserID(c)

	var req createChatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Recipient ID is required."})
		return
	}

	conv, err := h.Chats.CreateOrGetChat(c.Request.Context(), userID, req.RecipientID)
	if errors.Is(err, chat.ErrSelfChat) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot make chat with yourself."})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to create or retrieve chat."})
		return
	}

	c.JSON(http.StatusOK, conv)
}

// GetMessages returns an ascending page of chat history. Viewing history marks
// everyone else's unread messages in the chat as read.
func (h *ChatHandler) GetMessages(c *gin.Context) {
	userID := middleware.MustUserID(c)

	chatID64, err := strconv.ParseUint(c.Param("chat_id"), 10, 32)
	if err != nil || chatID64 == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid chat ID."})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "30"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pagination parameters."})
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pagination parameters."})
		return
	}

	msgs, err := h.Chats.History(c.Request.Context(), uint(chatID64), userID, limit, offset)
	if errors.Is(err, chat.ErrNotMember) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Chat not found or access denied."})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to fetch messages."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": msgs})
}
