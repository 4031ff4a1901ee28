package repository

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/arcadehub/backend/internal/database"
	"github.com/arcadehub/backend/internal/models"
)

type ModerationLogRepository struct {
	db *database.DB
}

func NewModerationLogRepository(db *database.DB) *ModerationLogRepository {
	return &ModerationLogRepository{db: db}
}

// Add records one violation with the unredacted original message.
func (r *ModerationLogRepository) Add(entry *models.ModerationLog) error {
	query := `
		INSERT INTO moderation_logs (id, user_id, username, original_message, reason, moderation_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(
		query,
		entry.ID,
		entry.UserID,
		entry.Username,
		entry.OriginalMessage,
		entry.Reason,
		entry.ModerationType,
		entry.CreatedAt,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to insert moderation log: %w", err)
	}

	return nil
}

// List returns the most recent violations first.
func (r *ModerationLogRepository) List(limit int) ([]models.ModerationLog, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, user_id, username, original_message, reason, moderation_type, created_at
		FROM moderation_logs
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query moderation logs: %w", err)
	}
	defer rows.Close()

	logs := []models.ModerationLog{}
	for rows.Next() {
		var entry models.ModerationLog
		err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.Username,
			&entry.OriginalMessage,
			&entry.Reason,
			&entry.ModerationType,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan moderation log: %w", err)
		}
		logs = append(logs, entry)
	}

	return logs, nil
}

// Delete removes a log entry (admin only at the route layer).
func (r *ModerationLogRepository) Delete(id uuid.UUID) error {
	result, err := r.db.Exec(`DELETE FROM moderation_logs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete moderation log: %w", err)
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

type StrikeRepository struct {
	db *database.DB
}

func NewStrikeRepository(db *database.DB) *StrikeRepository {
	return &StrikeRepository{db: db}
}

// Increment bumps the user's strike count in a single upsert so concurrent
// violations cannot lose updates, and recomputes the restriction flag in the
// same statement so count and flag are never observed torn.
func (r *StrikeRepository) Increment(userID uuid.UUID, username string, limit int) (*models.UserStrike, error) {
	query := `
		INSERT INTO user_strikes (id, user_id, username, strikes_count, is_chat_restricted, last_strike_at)
		VALUES ($1, $2, $3, 1, 1 >= $4, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET strikes_count = user_strikes.strikes_count + 1,
		    is_chat_restricted = user_strikes.strikes_count + 1 >= $4,
		    username = EXCLUDED.username,
		    last_strike_at = NOW()
		RETURNING id, user_id, username, strikes_count, is_chat_restricted, last_strike_at
	`

	strike := &models.UserStrike{}
	err := r.db.QueryRow(query, uuid.New(), userID, username, limit).Scan(
		&strike.ID,
		&strike.UserID,
		&strike.Username,
		&strike.StrikesCount,
		&strike.IsChatRestricted,
		&strike.LastStrikeAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to increment strikes: %w", err)
	}

	return strike, nil
}

// Reset zeroes the count and clears the restriction flag.
func (r *StrikeRepository) Reset(userID uuid.UUID) (*models.UserStrike, error) {
	query := `
		UPDATE user_strikes
		SET strikes_count = 0, is_chat_restricted = false
		WHERE user_id = $1
		RETURNING id, user_id, username, strikes_count, is_chat_restricted, last_strike_at
	`

	strike := &models.UserStrike{}
	err := r.db.QueryRow(query, userID).Scan(
		&strike.ID,
		&strike.UserID,
		&strike.Username,
		&strike.StrikesCount,
		&strike.IsChatRestricted,
		&strike.LastStrikeAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to reset strikes: %w", err)
	}

	return strike, nil
}

// IsRestricted is false for users who have never triggered moderation.
func (r *StrikeRepository) IsRestricted(userID uuid.UUID) (bool, error) {
	var restricted bool
	err := r.db.QueryRow(
		`SELECT is_chat_restricted FROM user_strikes WHERE user_id = $1`,
		userID,
	).Scan(&restricted)

	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check chat restriction: %w", err)
	}

	return restricted, nil
}

// List returns all strike records for the admin panel, worst offenders first.
func (r *StrikeRepository) List() ([]models.UserStrike, error) {
	query := `
		SELECT id, user_id, username, strikes_count, is_chat_restricted, last_strike_at
		FROM user_strikes
		ORDER BY strikes_count DESC, last_strike_at DESC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list strikes: %w", err)
	}
	defer rows.Close()

	strikes := []models.UserStrike{}
	for rows.Next() {
		var strike models.UserStrike
		err := rows.Scan(
			&strike.ID,
			&strike.UserID,
			&strike.Username,
			&strike.StrikesCount,
			&strike.IsChatRestricted,
			&strike.LastStrikeAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan strike: %w", err)
		}
		strikes = append(strikes, strike)
	}

	return strikes, nil
}
