package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arcadehub/backend/internal/appstate"
	"github.com/arcadehub/backend/internal/cache"
	"github.com/arcadehub/backend/internal/logging"
	"github.com/arcadehub/backend/internal/models"
	"github.com/arcadehub/backend/internal/moderation"
	"github.com/arcadehub/backend/internal/repository"
)

type ChatHandler struct {
	chat        repository.ChatStore
	users       repository.UserStore
	modLogs     repository.ModerationLogStore
	strikes     repository.StrikeStore
	engine      *moderation.Engine
	redis       *cache.RedisClient // nil when Redis is unavailable
	state       *appstate.State
	strikeLimit int
}

func NewChatHandler(
	chat repository.ChatStore,
	users repository.UserStore,
	modLogs repository.ModerationLogStore,
	strikes repository.StrikeStore,
	engine *moderation.Engine,
	redis *cache.RedisClient,
	state *appstate.State,
	strikeLimit int,
) *ChatHandler {
	return &ChatHandler{
		chat:        chat,
		users:       users,
		modLogs:     modLogs,
		strikes:     strikes,
		engine:      engine,
		redis:       redis,
		state:       state,
		strikeLimit: strikeLimit,
	}
}

// GetChat returns messages in ascending timestamp order. Admins may pass
// include_deleted=true to see soft-deleted rows.
func (h *ChatHandler) GetChat(c *gin.Context) {
	limit := 0
	if l := c.Query("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 0 {
			ErrorResponse(c, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = parsed
	}

	includeDeleted := false
	if c.Query("include_deleted") == "true" {
		isAdmin, _ := c.Get("is_admin")
		includeDeleted = isAdmin == true
	}

	messages, err := h.chat.List(limit, includeDeleted)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to get messages")
		return
	}

	c.JSON(http.StatusOK, messages)
}

// PostChat moderates and persists a message. Violations still post in
// redacted form, but are logged with the original text and count a strike.
func (h *ChatHandler) PostChat(c *gin.Context) {
	var req models.PostChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	userID, _ := c.Get("user_id")
	uid := userID.(uuid.UUID)
	username := c.GetString("username")

	if h.state.IsLocked() {
		ErrorResponse(c, http.StatusForbidden, "Screen is locked")
		return
	}

	restricted, err := h.strikes.IsRestricted(uid)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to check chat restriction")
		return
	}
	if restricted {
		ErrorResponse(c, http.StatusForbidden, "You are restricted from chat")
		return
	}

	result := h.engine.Moderate(req.Content)
	if !result.Allowed {
		entry := &models.ModerationLog{
			ID:              uuid.New(),
			UserID:          uid,
			Username:        username,
			OriginalMessage: req.Content,
			Reason:          result.Reason,
			ModerationType:  result.Type,
			CreatedAt:       time.Now(),
		}
		if err := h.modLogs.Add(entry); err != nil {
			ErrorResponse(c, http.StatusInternalServerError, "Failed to record violation")
			return
		}

		if _, err := h.strikes.Increment(uid, username, h.strikeLimit); err != nil {
			ErrorResponse(c, http.StatusInternalServerError, "Failed to record strike")
			return
		}
	}

	message := &models.ChatMessage{
		ID:        uuid.New(),
		UserID:    uid,
		Content:   result.Moderated,
		CreatedAt: time.Now(),
	}

	if err := h.chat.Create(message); err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to send message")
		return
	}

	if user, err := h.users.GetByID(uid); err == nil {
		profile := user.Public()
		message.User = &profile
	}

	if h.redis != nil {
		if err := h.redis.PublishChatMessage(message); err != nil {
			logging.L().Warn("failed to publish chat message", zap.Error(err))
		}
	}

	c.JSON(http.StatusCreated, message)
}

// DeleteChat soft-deletes a message. Owners may delete their own; admins any.
func (h *ChatHandler) DeleteChat(c *gin.Context) {
	messageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid message ID")
		return
	}

	userID, _ := c.Get("user_id")
	uid := userID.(uuid.UUID)
	isAdmin, _ := c.Get("is_admin")

	message, err := h.chat.GetByID(messageID)
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, "Message not found")
		return
	}

	if message.UserID != uid && isAdmin != true {
		ErrorResponse(c, http.StatusForbidden, "Access denied")
		return
	}

	deleted, err := h.chat.SoftDelete(messageID)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to delete message")
		return
	}

	if sender, err := h.users.GetByID(deleted.UserID); err == nil {
		profile := sender.Public()
		deleted.User = &profile
	}

	c.JSON(http.StatusOK, deleted)
}

// GetLockStatus lets polling clients discover the screen lock.
func (h *ChatHandler) GetLockStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.state.Status())
}
