package models

import (
	"time"

	"github.com/google/uuid"
)

// ModerationLog records one detected violation. It holds the unredacted
// original message for admin review and is never mutated afterwards.
type ModerationLog struct {
	ID              uuid.UUID `json:"id" db:"id"`
	UserID          uuid.UUID `json:"user_id" db:"user_id"`
	Username        string    `json:"username" db:"username"`
	OriginalMessage string    `json:"original_message" db:"original_message"`
	Reason          string    `json:"reason" db:"reason"`
	ModerationType  string    `json:"moderation_type" db:"moderation_type"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// UserStrike is the per-user violation counter. The restriction flag is
// recomputed in the same write that increments the count.
type UserStrike struct {
	ID               uuid.UUID `json:"id" db:"id"`
	UserID           uuid.UUID `json:"user_id" db:"user_id"`
	Username         string    `json:"username" db:"username"`
	StrikesCount     int       `json:"strikes_count" db:"strikes_count"`
	IsChatRestricted bool      `json:"is_chat_restricted" db:"is_chat_restricted"`
	LastStrikeAt     time.Time `json:"last_strike_at" db:"last_strike_at"`
}
