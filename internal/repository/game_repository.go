package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/arcadehub/backend/internal/database"
	"github.com/arcadehub/backend/internal/models"
)

type GameRepository struct {
	db *database.DB
}

func NewGameRepository(db *database.DB) *GameRepository {
	return &GameRepository{db: db}
}

// Get retrieves a user's saved state for one game
func (r *GameRepository) Get(userID uuid.UUID, gameType string) (*models.GameData, error) {
	query := `
		SELECT id, user_id, game_type, data, high_score, last_played
		FROM game_data
		WHERE user_id = $1 AND game_type = $2
	`

	entry := &models.GameData{}
	var raw []byte
	err := r.db.QueryRow(query, userID, gameType).Scan(
		&entry.ID,
		&entry.UserID,
		&entry.GameType,
		&raw,
		&entry.HighScore,
		&entry.LastPlayed,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game data: %w", err)
	}

	entry.Data = json.RawMessage(raw)
	return entry, nil
}

// Save overwrites the opaque state blob. The stored high score only moves
// upward; a save reporting a lower score keeps the existing record.
func (r *GameRepository) Save(userID uuid.UUID, gameType string, data json.RawMessage, highScore int64) (*models.GameData, error) {
	query := `
		INSERT INTO game_data (id, user_id, game_type, data, high_score, last_played)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (user_id, game_type) DO UPDATE
		SET data = EXCLUDED.data,
		    high_score = GREATEST(game_data.high_score, EXCLUDED.high_score),
		    last_played = NOW()
		RETURNING id, user_id, game_type, data, high_score, last_played
	`

	entry := &models.GameData{}
	var raw []byte
	err := r.db.QueryRow(query, uuid.New(), userID, gameType, []byte(data), highScore).Scan(
		&entry.ID,
		&entry.UserID,
		&entry.GameType,
		&raw,
		&entry.HighScore,
		&entry.LastPlayed,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save game data: %w", err)
	}

	entry.Data = json.RawMessage(raw)
	return entry, nil
}

// GrantCookies adds to the cookies counter inside the JSONB state in a single
// statement, so an admin gift racing a player's auto-save cannot lose either
// update. A missing record is created with cookies = amount; a counter that is
// not a JSON number restarts from zero, matching the memory backend.
func (r *GameRepository) GrantCookies(userID uuid.UUID, amount int64) (*models.GameData, error) {
	query := `
		INSERT INTO game_data (id, user_id, game_type, data, high_score, last_played)
		VALUES ($1, $2, $3, jsonb_build_object('cookies', $4::bigint), 0, NOW())
		ON CONFLICT (user_id, game_type) DO UPDATE
		SET data = jsonb_set(
		        COALESCE(game_data.data, '{}'::jsonb),
		        '{cookies}',
		        to_jsonb(
		            CASE WHEN jsonb_typeof(game_data.data->'cookies') = 'number'
		                 THEN (game_data.data->>'cookies')::bigint
		                 ELSE 0
		            END + $4::bigint
		        )
		    ),
		    last_played = NOW()
		RETURNING id, user_id, game_type, data, high_score, last_played
	`

	entry := &models.GameData{}
	var raw []byte
	err := r.db.QueryRow(query, uuid.New(), userID, models.GameCookieClicker, amount).Scan(
		&entry.ID,
		&entry.UserID,
		&entry.GameType,
		&raw,
		&entry.HighScore,
		&entry.LastPlayed,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to grant cookies: %w", err)
	}

	entry.Data = json.RawMessage(raw)
	return entry, nil
}

// HighScores returns raw score records for a game, best first. Equal scores
// order by earliest last_played, then id, so ranking is deterministic.
func (r *GameRepository) HighScores(gameType string, limit int) ([]models.GameData, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	query := `
		SELECT id, user_id, game_type, data, high_score, last_played
		FROM game_data
		WHERE game_type = $1
		ORDER BY high_score DESC, last_played ASC, id ASC
		LIMIT $2
	`

	rows, err := r.db.Query(query, gameType, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query high scores: %w", err)
	}
	defer rows.Close()

	entries := []models.GameData{}
	for rows.Next() {
		var entry models.GameData
		var raw []byte
		err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.GameType,
			&raw,
			&entry.HighScore,
			&entry.LastPlayed,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game data: %w", err)
		}
		entry.Data = json.RawMessage(raw)
		entries = append(entries, entry)
	}

	return entries, nil
}

// Leaderboard joins high scores with user profiles. The inner join silently
// drops entries whose user record no longer exists.
func (r *GameRepository) Leaderboard(gameType string, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	query := `
		SELECT g.user_id, u.username, u.full_name, g.high_score, g.last_played
		FROM game_data g
		INNER JOIN users u ON g.user_id = u.id
		WHERE g.game_type = $1
		ORDER BY g.high_score DESC, g.last_played ASC, g.id ASC
		LIMIT $2
	`

	rows, err := r.db.Query(query, gameType, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	entries := []models.LeaderboardEntry{}
	rank := 0
	for rows.Next() {
		var entry models.LeaderboardEntry
		err := rows.Scan(
			&entry.UserID,
			&entry.Username,
			&entry.FullName,
			&entry.HighScore,
			&entry.LastPlayed,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		rank++
		entry.Rank = rank
		entries = append(entries, entry)
	}

	return entries, nil
}
