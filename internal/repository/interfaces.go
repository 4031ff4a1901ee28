package repository

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/arcadehub/backend/internal/models"
)

// ErrNotFound is returned by every store when the requested record does not
// exist, regardless of backend.
var ErrNotFound = errors.New("not found")

// UserStore manages user accounts.
type UserStore interface {
	Create(user *models.User) error
	GetByID(id uuid.UUID) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
}

// ChatStore is the ordered message list. Content arrives already moderated;
// deletion is always soft.
type ChatStore interface {
	Create(message *models.ChatMessage) error
	GetByID(id uuid.UUID) (*models.ChatMessage, error)
	// List returns messages in ascending created_at order, enriched with the
	// sender's public profile. includeDeleted keeps soft-deleted rows visible.
	List(limit int, includeDeleted bool) ([]models.ChatMessage, error)
	SoftDelete(id uuid.UUID) (*models.ChatMessage, error)
}

// ModerationLogStore is the append-only violation record.
type ModerationLogStore interface {
	Add(entry *models.ModerationLog) error
	List(limit int) ([]models.ModerationLog, error)
	Delete(id uuid.UUID) error
}

// StrikeStore is the per-user violation counter. Increment must be atomic:
// concurrent violations by the same user must all be counted.
type StrikeStore interface {
	// Increment lazily creates the record at count 1, otherwise adds 1, and
	// recomputes the restriction flag against limit in the same write.
	Increment(userID uuid.UUID, username string, limit int) (*models.UserStrike, error)
	// Reset zeroes the count and clears the flag. Unknown users yield ErrNotFound.
	Reset(userID uuid.UUID) (*models.UserStrike, error)
	// IsRestricted is false for users with no strike record.
	IsRestricted(userID uuid.UUID) (bool, error)
	List() ([]models.UserStrike, error)
}

// BroadcastStore holds admin announcements and their per-user read sets.
type BroadcastStore interface {
	Create(msg *models.BroadcastMessage) error
	GetByID(id uuid.UUID) (*models.BroadcastMessage, error)
	List() ([]models.BroadcastMessage, error)
	// UnreadFor returns non-expired messages the user has not read,
	// newest first.
	UnreadFor(userID uuid.UUID, now time.Time) ([]models.BroadcastMessage, error)
	// MarkRead is idempotent; re-reading an already read message is a no-op.
	MarkRead(messageID, userID uuid.UUID) error
	Delete(id uuid.UUID) error
}

// GameStore is one record per (user, game) with grant semantics for the
// cookie-clicker counters.
type GameStore interface {
	Get(userID uuid.UUID, gameType string) (*models.GameData, error)
	// Save overwrites the opaque state and raises high_score only when the
	// new value is greater than the stored one.
	Save(userID uuid.UUID, gameType string, data json.RawMessage, highScore int64) (*models.GameData, error)
	// GrantCookies adds amount to the cookies counter atomically, creating
	// the record with cookies = amount when absent. It must not be
	// implemented as read-then-write in application code.
	GrantCookies(userID uuid.UUID, amount int64) (*models.GameData, error)
	HighScores(gameType string, limit int) ([]models.GameData, error)
	// Leaderboard joins high scores with public profiles, dropping entries
	// whose user no longer exists. Ties order by earliest last_played.
	Leaderboard(gameType string, limit int) ([]models.LeaderboardEntry, error)
}

// Stores bundles one backend's implementations for wiring.
type Stores struct {
	Users      UserStore
	Chat       ChatStore
	ModLogs    ModerationLogStore
	Strikes    StrikeStore
	Broadcasts BroadcastStore
	Games      GameStore
}
