package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/arcadehub/backend/internal/database"
	"github.com/arcadehub/backend/internal/models"
)

type BroadcastRepository struct {
	db *database.DB
}

func NewBroadcastRepository(db *database.DB) *BroadcastRepository {
	return &BroadcastRepository{db: db}
}

// Create creates a new broadcast message
func (r *BroadcastRepository) Create(msg *models.BroadcastMessage) error {
	query := `
		INSERT INTO broadcast_messages (id, title, body, priority, created_by, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(
		query,
		msg.ID,
		msg.Title,
		msg.Body,
		msg.Priority,
		msg.CreatedBy,
		msg.CreatedAt,
		msg.ExpiresAt,
	).Scan(&msg.ID, &msg.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create broadcast message: %w", err)
	}

	return nil
}

// GetByID retrieves a broadcast message by ID
func (r *BroadcastRepository) GetByID(id uuid.UUID) (*models.BroadcastMessage, error) {
	query := `
		SELECT id, title, body, priority, created_by, created_at, expires_at
		FROM broadcast_messages
		WHERE id = $1
	`

	msg := &models.BroadcastMessage{}
	err := r.db.QueryRow(query, id).Scan(
		&msg.ID,
		&msg.Title,
		&msg.Body,
		&msg.Priority,
		&msg.CreatedBy,
		&msg.CreatedAt,
		&msg.ExpiresAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get broadcast message: %w", err)
	}

	return msg, nil
}

// List returns all broadcast messages, newest first.
func (r *BroadcastRepository) List() ([]models.BroadcastMessage, error) {
	query := `
		SELECT id, title, body, priority, created_by, created_at, expires_at
		FROM broadcast_messages
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list broadcast messages: %w", err)
	}
	defer rows.Close()

	return scanBroadcasts(rows)
}

// UnreadFor returns non-expired messages the user has not marked read.
func (r *BroadcastRepository) UnreadFor(userID uuid.UUID, now time.Time) ([]models.BroadcastMessage, error) {
	query := `
		SELECT b.id, b.title, b.body, b.priority, b.created_by, b.created_at, b.expires_at
		FROM broadcast_messages b
		LEFT JOIN broadcast_reads r ON b.id = r.message_id AND r.user_id = $1
		WHERE r.id IS NULL
		AND (b.expires_at IS NULL OR b.expires_at > $2)
		ORDER BY b.created_at DESC
	`

	rows, err := r.db.Query(query, userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list unread broadcasts: %w", err)
	}
	defer rows.Close()

	return scanBroadcasts(rows)
}

// MarkRead records that a user has seen a message; repeat calls are no-ops.
func (r *BroadcastRepository) MarkRead(messageID, userID uuid.UUID) error {
	query := `
		INSERT INTO broadcast_reads (id, message_id, user_id, read_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (message_id, user_id) DO NOTHING
	`

	_, err := r.db.Exec(query, uuid.New(), messageID, userID)
	if err != nil {
		return fmt.Errorf("failed to mark broadcast as read: %w", err)
	}

	return nil
}

// Delete removes a broadcast message and, via cascade, its read records.
func (r *BroadcastRepository) Delete(id uuid.UUID) error {
	result, err := r.db.Exec(`DELETE FROM broadcast_messages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete broadcast message: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

func scanBroadcasts(rows *sql.Rows) ([]models.BroadcastMessage, error) {
	messages := []models.BroadcastMessage{}
	for rows.Next() {
		var msg models.BroadcastMessage
		err := rows.Scan(
			&msg.ID,
			&msg.Title,
			&msg.Body,
			&msg.Priority,
			&msg.CreatedBy,
			&msg.CreatedAt,
			&msg.ExpiresAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan broadcast message: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}
