package messages

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Macwinner1/Xecret/models"
	"github.com/Macwinner1/Xecret/services/messaging"
	"github.com/Macwinner1/Xecret/utils"
)

type Handler struct {
	messages *messaging.Service
}

func New(s *messaging.Service) *Handler {
	return &Handler{messages: s}
}

func messageError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, messaging.ErrMessageTextRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message text required"})
	case errors.Is(err, messaging.ErrRecipientNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipient not found"})
	case errors.Is(err, messaging.ErrSelfMessage):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot message yourself"})
	case errors.Is(err, messaging.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	default:
		return false
	}
	return true
}

// Send godoc
// @Summary Send a direct message
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body models.MessageCreate true "Message"
// @Success 200 {object} map[string]interface{} "message_id, message"
// @Failure 400 {object} map[string]interface{} "error: Message text required"
// @Failure 404 {object} map[string]interface{} "error: Recipient not found"
// @Router /messages/send [post]
func (h *Handler) Send(c *gin.Context) {
	var req models.MessageCreate
	if !utils.ValidateRequestBody(c, &req) {
		return
	}

	msg, err := h.messages.Send(c.Request.Context(), c.GetString("user_id"), req)
	if err != nil {
		if !messageError(c, err) {
			utils.SendInternalError(c, err, "Error sending message")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message_id": msg.ID,
		"message":    msg,
	})
}

// Conversation godoc
// @Summary Messages exchanged with a user
// @Description Oldest first. Messages received from that user are marked read.
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param username path string true "Username"
// @Success 200 {object} map[string]interface{} "messages"
// @Failure 404 {object} map[string]interface{} "error: User not found"
// @Router /messages/conversation/{username} [get]
func (h *Handler) Conversation(c *gin.Context) {
	msgs, err := h.messages.Conversation(c.Request.Context(), c.GetString("user_id"), c.Param("username"))
	if err != nil {
		if !messageError(c, err) {
			utils.SendInternalError(c, err, "Error retrieving conversation")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// Conversations godoc
// @Summary Conversation list of the caller
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "conversations"
// @Router /messages/conversations [get]
func (h *Handler) Conversations(c *gin.Context) {
	convs, err := h.messages.Conversations(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		utils.SendInternalError(c, err, "Error retrieving conversations")
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": convs})
}

// UnreadCount godoc
// @Summary Number of unread messages
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "unread_count"
// @Router /messages/unread-count [get]
func (h *Handler) UnreadCount(c *gin.Context) {
	n, err := h.messages.UnreadCount(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		utils.SendInternalError(c, err, "Error counting unread messages")
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread_count": n})
}
