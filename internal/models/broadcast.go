package models

import (
	"time"

	"github.com/google/uuid"
)

// BroadcastMessage is an admin-authored announcement. Read state is tracked
// per user in broadcast_reads; the read set only grows.
type BroadcastMessage struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Title     string     `json:"title" db:"title"`
	Body      string     `json:"body" db:"body"`
	Priority  string     `json:"priority" db:"priority"`
	CreatedBy uuid.UUID  `json:"created_by" db:"created_by"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" db:"expires_at"`
}

type CreateBroadcastRequest struct {
	Title     string     `json:"title" binding:"required,max=255"`
	Body      string     `json:"body" binding:"required,max=5000"`
	Priority  string     `json:"priority" binding:"omitempty,oneof=normal high urgent"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}
