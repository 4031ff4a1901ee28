package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// GameType values the clients currently save under.
const (
	GameCookieClicker = "cookie-clicker"
	GameWordScramble  = "word-scramble"
)

// GameData is one record per (user, game). Data is opaque to the server
// except for the cookie-clicker counters touched by grants.
type GameData struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	UserID     uuid.UUID       `json:"user_id" db:"user_id"`
	GameType   string          `json:"game_type" db:"game_type"`
	Data       json.RawMessage `json:"data" db:"data"`
	HighScore  int64           `json:"high_score" db:"high_score"`
	LastPlayed time.Time       `json:"last_played" db:"last_played"`
}

// LeaderboardEntry is a high score joined with the owner's public profile.
type LeaderboardEntry struct {
	Rank       int       `json:"rank"`
	UserID     uuid.UUID `json:"user_id"`
	Username   string    `json:"username"`
	FullName   string    `json:"full_name"`
	HighScore  int64     `json:"high_score"`
	LastPlayed time.Time `json:"last_played"`
}

type SaveGameRequest struct {
	Data      json.RawMessage `json:"data" binding:"required"`
	HighScore int64           `json:"high_score" binding:"omitempty,gte=0"`
}

type GiftRequest struct {
	Username string `json:"username" binding:"required"`
	Amount   int64  `json:"amount" binding:"required,gt=0"`
}
