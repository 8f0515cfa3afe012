package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/socialchat/backend/internal/middleware"
	"github.com/socialchat/backend/internal/service"
)

// MessageHandler exposes message creation, update and conversation reads.
type MessageHandler struct {
	messages *service.MessageService
}

// NewMessageHandler creates a new MessageHandler instance
func NewMessageHandler(messages *service.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

// RegisterRoutes registers the message API routes behind the auth gate
func (h *MessageHandler) RegisterRoutes(router *gin.RouterGroup) {
	message := router.Group("/message")
	{
		message.POST("", h.Create)
		message.PATCH("/:id", h.Update)
		message.GET("", h.ListConversation)
	}
}

func (h *MessageHandler) Create(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req service.CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	message, err := h.messages.Create(c.Request.Context(), user.ID, &req)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, message)
}

func (h *MessageHandler) Update(c *gin.Context) {
	messageID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid message id")
		return
	}

	var req service.UpdateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	message, err := h.messages.Update(uint(messageID), &req)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, message)
}

func (h *MessageHandler) ListConversation(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	otherID, err := strconv.ParseUint(c.Query("user_id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid user_id")
		return
	}

	messages, err := h.messages.ListConversation(user.ID, uint(otherID))
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": messages})
}
