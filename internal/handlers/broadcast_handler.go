package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/arcadehub/backend/internal/models"
	"github.com/arcadehub/backend/internal/repository"
)

type BroadcastHandler struct {
	broadcasts repository.BroadcastStore
}

func NewBroadcastHandler(broadcasts repository.BroadcastStore) *BroadcastHandler {
	return &BroadcastHandler{broadcasts: broadcasts}
}

// List returns all broadcasts, or only the caller's unread ones with
// ?unread=true.
func (h *BroadcastHandler) List(c *gin.Context) {
	if c.Query("unread") == "true" {
		userID, _ := c.Get("user_id")
		uid := userID.(uuid.UUID)

		messages, err := h.broadcasts.UnreadFor(uid, time.Now())
		if err != nil {
			ErrorResponse(c, http.StatusInternalServerError, "Failed to get unread messages")
			return
		}
		c.JSON(http.StatusOK, messages)
		return
	}

	messages, err := h.broadcasts.List()
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to get messages")
		return
	}
	c.JSON(http.StatusOK, messages)
}

// Create creates a broadcast message (admin only at the route layer).
func (h *BroadcastHandler) Create(c *gin.Context) {
	var req models.CreateBroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	userID, _ := c.Get("user_id")
	uid := userID.(uuid.UUID)

	priority := req.Priority
	if priority == "" {
		priority = "normal"
	}

	msg := &models.BroadcastMessage{
		ID:        uuid.New(),
		Title:     req.Title,
		Body:      req.Body,
		Priority:  priority,
		CreatedBy: uid,
		CreatedAt: time.Now(),
		ExpiresAt: req.ExpiresAt,
	}

	if err := h.broadcasts.Create(msg); err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to create message")
		return
	}

	c.JSON(http.StatusCreated, msg)
}

// MarkRead records that the caller has seen a message; idempotent.
func (h *BroadcastHandler) MarkRead(c *gin.Context) {
	messageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid message ID")
		return
	}

	userID, _ := c.Get("user_id")
	uid := userID.(uuid.UUID)

	msg, err := h.broadcasts.GetByID(messageID)
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, "Message not found")
		return
	}

	if err := h.broadcasts.MarkRead(msg.ID, uid); err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to mark message as read")
		return
	}

	c.JSON(http.StatusOK, msg)
}

// Delete hard-deletes a broadcast and its read records (admin only).
func (h *BroadcastHandler) Delete(c *gin.Context) {
	messageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid message ID")
		return
	}

	if err := h.broadcasts.Delete(messageID); err != nil {
		if err == repository.ErrNotFound {
			ErrorResponse(c, http.StatusNotFound, "Message not found")
			return
		}
		ErrorResponse(c, http.StatusInternalServerError, "Failed to delete message")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Message deleted"})
}
