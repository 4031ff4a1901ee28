package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arcadehub/backend/internal/cache"
	"github.com/arcadehub/backend/internal/logging"
	"github.com/arcadehub/backend/internal/models"
	"github.com/arcadehub/backend/internal/repository"
)

type GameHandler struct {
	games repository.GameStore
	users repository.UserStore
	redis *cache.RedisClient // nil when Redis is unavailable
}

func NewGameHandler(games repository.GameStore, users repository.UserStore, redis *cache.RedisClient) *GameHandler {
	return &GameHandler{
		games: games,
		users: users,
		redis: redis,
	}
}

// GetGameData returns the caller's saved state for one game.
func (h *GameHandler) GetGameData(c *gin.Context) {
	userID, _ := c.Get("user_id")
	uid := userID.(uuid.UUID)
	gameType := c.Param("gameType")

	entry, err := h.games.Get(uid, gameType)
	if err != nil {
		if err == repository.ErrNotFound {
			ErrorResponse(c, http.StatusNotFound, "No saved data for this game")
			return
		}
		ErrorResponse(c, http.StatusInternalServerError, "Failed to get game data")
		return
	}

	c.JSON(http.StatusOK, entry)
}

// SaveGameData overwrites the caller's state; the high score only rises.
func (h *GameHandler) SaveGameData(c *gin.Context) {
	var req models.SaveGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	userID, _ := c.Get("user_id")
	uid := userID.(uuid.UUID)
	gameType := c.Param("gameType")

	entry, err := h.games.Save(uid, gameType, req.Data, req.HighScore)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to save game data")
		return
	}

	if h.redis != nil {
		if err := h.redis.InvalidateLeaderboard(gameType); err != nil {
			logging.L().Warn("failed to invalidate leaderboard cache",
				zap.String("game_type", gameType), zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, entry)
}

// Leaderboard is public: ranked, user-enriched entries for a game.
func (h *GameHandler) Leaderboard(c *gin.Context) {
	gameType := c.Param("gameType")

	limit := 10
	if l := c.Query("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 1 {
			ErrorResponse(c, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = parsed
	}

	if h.redis != nil {
		if cached, err := h.redis.GetCachedLeaderboard(gameType, limit); err == nil && cached != nil {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	entries, err := h.games.Leaderboard(gameType, limit)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to get leaderboard")
		return
	}

	if h.redis != nil {
		if err := h.redis.CacheLeaderboard(gameType, limit, entries); err != nil {
			logging.L().Warn("failed to cache leaderboard",
				zap.String("game_type", gameType), zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, entries)
}

// GiftCookies is an admin grant to a named user's cookie counter. The store
// applies it additively, so it cannot clobber the player's concurrent saves.
func (h *GameHandler) GiftCookies(c *gin.Context) {
	var req models.GiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.users.GetByUsername(req.Username)
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, "User not found")
		return
	}

	entry, err := h.games.GrantCookies(user.ID, req.Amount)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to grant cookies")
		return
	}

	c.JSON(http.StatusOK, entry)
}
