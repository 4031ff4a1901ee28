package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/arcadehub/backend/internal/appstate"
	"github.com/arcadehub/backend/internal/repository"
)

// AdminHandler serves the moderation panel and the screen lock controls.
// Every route here sits behind the admin middleware.
type AdminHandler struct {
	strikes repository.StrikeStore
	modLogs repository.ModerationLogStore
	state   *appstate.State
}

func NewAdminHandler(strikes repository.StrikeStore, modLogs repository.ModerationLogStore, state *appstate.State) *AdminHandler {
	return &AdminHandler{
		strikes: strikes,
		modLogs: modLogs,
		state:   state,
	}
}

// ListStrikes returns all strike records, worst offenders first.
func (h *AdminHandler) ListStrikes(c *gin.Context) {
	strikes, err := h.strikes.List()
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to list strikes")
		return
	}
	c.JSON(http.StatusOK, strikes)
}

// ResetStrikes zeroes a user's count and lifts the chat restriction.
func (h *AdminHandler) ResetStrikes(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid user ID")
		return
	}

	strike, err := h.strikes.Reset(userID)
	if err != nil {
		if err == repository.ErrNotFound {
			ErrorResponse(c, http.StatusNotFound, "No strike record for user")
			return
		}
		ErrorResponse(c, http.StatusInternalServerError, "Failed to reset strikes")
		return
	}

	c.JSON(http.StatusOK, strike)
}

// ListModerationLogs returns recent violations, newest first.
func (h *AdminHandler) ListModerationLogs(c *gin.Context) {
	limit := 50
	if l := c.Query("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 1 {
			ErrorResponse(c, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = parsed
	}

	logs, err := h.modLogs.List(limit)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to list moderation logs")
		return
	}
	c.JSON(http.StatusOK, logs)
}

// DeleteModerationLog removes one violation record.
func (h *AdminHandler) DeleteModerationLog(c *gin.Context) {
	logID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid log ID")
		return
	}

	if err := h.modLogs.Delete(logID); err != nil {
		if err == repository.ErrNotFound {
			ErrorResponse(c, http.StatusNotFound, "Log entry not found")
			return
		}
		ErrorResponse(c, http.StatusInternalServerError, "Failed to delete log entry")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Log entry deleted"})
}

type lockRequest struct {
	Reason string `json:"reason" binding:"required,max=255"`
}

// LockScreen engages the screen lock for all users.
func (h *AdminHandler) LockScreen(c *gin.Context) {
	var req lockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	h.state.Lock(req.Reason)
	c.JSON(http.StatusOK, h.state.Status())
}

// UnlockScreen clears the screen lock for all users.
func (h *AdminHandler) UnlockScreen(c *gin.Context) {
	h.state.Unlock()
	c.JSON(http.StatusOK, h.state.Status())
}
