package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage stores the moderated text, never the raw original of a
// violating message. Deletion is a soft flag so the audit trail survives.
type ChatMessage struct {
	ID        uuid.UUID      `json:"id" db:"id"`
	UserID    uuid.UUID      `json:"user_id" db:"user_id"`
	Content   string         `json:"content" db:"content"`
	IsDeleted bool           `json:"is_deleted" db:"is_deleted"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
	User      *PublicProfile `json:"user,omitempty"`
}

type PostChatRequest struct {
	Content string `json:"content" binding:"required,max=2000"`
}

// ChatEvent is what gets published to Redis when a message is posted.
type ChatEvent struct {
	Event   string       `json:"event"`
	Message *ChatMessage `json:"message"`
}

const EventChatMessage = "chat.message"
