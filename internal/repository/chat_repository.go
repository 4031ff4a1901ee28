package repository

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/arcadehub/backend/internal/database"
	"github.com/arcadehub/backend/internal/models"
)

type ChatRepository struct {
	db *database.DB
}

func NewChatRepository(db *database.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// Create persists a message. The caller has already run moderation, so
// content is the redacted text when a violation occurred.
func (r *ChatRepository) Create(message *models.ChatMessage) error {
	query := `
		INSERT INTO chat_messages (id, user_id, content, is_deleted, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(
		query,
		message.ID,
		message.UserID,
		message.Content,
		message.IsDeleted,
		message.CreatedAt,
	).Scan(&message.ID, &message.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create chat message: %w", err)
	}

	return nil
}

// GetByID retrieves a message by ID
func (r *ChatRepository) GetByID(id uuid.UUID) (*models.ChatMessage, error) {
	query := `
		SELECT id, user_id, content, is_deleted, created_at
		FROM chat_messages
		WHERE id = $1
	`

	message := &models.ChatMessage{}
	err := r.db.QueryRow(query, id).Scan(
		&message.ID,
		&message.UserID,
		&message.Content,
		&message.IsDeleted,
		&message.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chat message: %w", err)
	}

	return message, nil
}

// List returns the newest messages in ascending created_at order (ties broken
// by id for deterministic rendering), each enriched with the sender's public
// profile. The limit window anchors at the newest message, so polling clients
// keep seeing new activity once the room outgrows the limit.
func (r *ChatRepository) List(limit int, includeDeleted bool) ([]models.ChatMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	if limit > 500 {
		limit = 500
	}

	query := `
		SELECT m.id, m.user_id, m.content, m.is_deleted, m.created_at,
		       u.id, u.username, u.full_name
		FROM chat_messages m
		INNER JOIN users u ON m.user_id = u.id
		WHERE ($2 OR m.is_deleted = false)
		ORDER BY m.created_at DESC, m.id DESC
		LIMIT $1
	`

	rows, err := r.db.Query(query, limit, includeDeleted)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	defer rows.Close()

	messages := []models.ChatMessage{}
	for rows.Next() {
		var msg models.ChatMessage
		var sender models.PublicProfile

		err := rows.Scan(
			&msg.ID,
			&msg.UserID,
			&msg.Content,
			&msg.IsDeleted,
			&msg.CreatedAt,
			&sender.ID,
			&sender.Username,
			&sender.FullName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}

		msg.User = &sender
		messages = append(messages, msg)
	}

	// Rows arrive newest-first; flip back to chronological order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

// SoftDelete flags a message invisible without removing the row.
func (r *ChatRepository) SoftDelete(id uuid.UUID) (*models.ChatMessage, error) {
	query := `
		UPDATE chat_messages
		SET is_deleted = true
		WHERE id = $1
		RETURNING id, user_id, content, is_deleted, created_at
	`

	message := &models.ChatMessage{}
	err := r.db.QueryRow(query, id).Scan(
		&message.ID,
		&message.UserID,
		&message.Content,
		&message.IsDeleted,
		&message.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to soft delete chat message: %w", err)
	}

	return message, nil
}
