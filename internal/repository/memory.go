package repository

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/arcadehub/backend/internal/models"
)

// NewMemoryStores returns a full set of mutex-guarded in-memory stores.
// Development only: state is process-local and lost on restart. Atomicity of
// increments comes from doing the read-modify-write under the store mutex.
func NewMemoryStores() *Stores {
	users := &memUserStore{
		byID:       make(map[uuid.UUID]*models.User),
		byUsername: make(map[string]*models.User),
	}
	return &Stores{
		Users: users,
		Chat: &memChatStore{
			byID:  make(map[uuid.UUID]*models.ChatMessage),
			users: users,
		},
		ModLogs: &memModLogStore{},
		Strikes: &memStrikeStore{
			byUser: make(map[uuid.UUID]*models.UserStrike),
		},
		Broadcasts: &memBroadcastStore{
			byID:  make(map[uuid.UUID]*models.BroadcastMessage),
			reads: make(map[uuid.UUID]map[uuid.UUID]bool),
		},
		Games: &memGameStore{
			byKey: make(map[string]*models.GameData),
			users: users,
		},
	}
}

type memUserStore struct {
	mu         sync.RWMutex
	byID       map[uuid.UUID]*models.User
	byUsername map[string]*models.User
}

func (s *memUserStore) Create(user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byUsername[user.Username]; exists {
		return fmt.Errorf("failed to create user: username %q already taken", user.Username)
	}

	cp := *user
	s.byID[cp.ID] = &cp
	s.byUsername[cp.Username] = &cp
	return nil
}

func (s *memUserStore) GetByID(id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *user
	return &cp, nil
}

func (s *memUserStore) GetByUsername(username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.byUsername[username]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *user
	return &cp, nil
}

type memChatStore struct {
	mu       sync.RWMutex
	byID     map[uuid.UUID]*models.ChatMessage
	messages []*models.ChatMessage // insertion order, created_at ascending
	users    *memUserStore
}

func (s *memChatStore) Create(message *models.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *message
	cp.User = nil
	s.byID[cp.ID] = &cp
	s.messages = append(s.messages, &cp)
	return nil
}

func (s *memChatStore) GetByID(id uuid.UUID) (*models.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msg, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *msg
	return &cp, nil
}

func (s *memChatStore) List(limit int, includeDeleted bool) ([]models.ChatMessage, error) {
	if limit <= 0 {
		limit = 100
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	// Walk newest-first so the limit window anchors at the latest message,
	// then flip back to chronological order.
	out := []models.ChatMessage{}
	for i := len(s.messages) - 1; i >= 0 && len(out) < limit; i-- {
		msg := s.messages[i]
		if msg.IsDeleted && !includeDeleted {
			continue
		}
		cp := *msg
		if user, err := s.users.GetByID(cp.UserID); err == nil {
			profile := user.Public()
			cp.User = &profile
		} else {
			continue // sender deleted, drop like the SQL join does
		}
		out = append(out, cp)
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (s *memChatStore) SoftDelete(id uuid.UUID) (*models.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	msg.IsDeleted = true
	cp := *msg
	return &cp, nil
}

type memModLogStore struct {
	mu      sync.RWMutex
	entries []*models.ModerationLog
}

func (s *memModLogStore) Add(entry *models.ModerationLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *entry
	s.entries = append(s.entries, &cp)
	return nil
}

func (s *memModLogStore) List(limit int) ([]models.ModerationLog, error) {
	if limit <= 0 {
		limit = 50
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	// newest first
	out := []models.ModerationLog{}
	for i := len(s.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, *s.entries[i])
	}
	return out, nil
}

func (s *memModLogStore) Delete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, entry := range s.entries {
		if entry.ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

type memStrikeStore struct {
	mu     sync.Mutex
	byUser map[uuid.UUID]*models.UserStrike
}

func (s *memStrikeStore) Increment(userID uuid.UUID, username string, limit int) (*models.UserStrike, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	strike, ok := s.byUser[userID]
	if !ok {
		strike = &models.UserStrike{
			ID:       uuid.New(),
			UserID:   userID,
			Username: username,
		}
		s.byUser[userID] = strike
	}

	strike.StrikesCount++
	strike.Username = username
	strike.IsChatRestricted = strike.StrikesCount >= limit
	strike.LastStrikeAt = time.Now()

	cp := *strike
	return &cp, nil
}

func (s *memStrikeStore) Reset(userID uuid.UUID) (*models.UserStrike, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	strike, ok := s.byUser[userID]
	if !ok {
		return nil, ErrNotFound
	}

	strike.StrikesCount = 0
	strike.IsChatRestricted = false

	cp := *strike
	return &cp, nil
}

func (s *memStrikeStore) IsRestricted(userID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	strike, ok := s.byUser[userID]
	if !ok {
		return false, nil
	}
	return strike.IsChatRestricted, nil
}

func (s *memStrikeStore) List() ([]models.UserStrike, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.UserStrike{}
	for _, strike := range s.byUser {
		out = append(out, *strike)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StrikesCount != out[j].StrikesCount {
			return out[i].StrikesCount > out[j].StrikesCount
		}
		return out[i].LastStrikeAt.After(out[j].LastStrikeAt)
	})
	return out, nil
}

type memBroadcastStore struct {
	mu    sync.RWMutex
	byID  map[uuid.UUID]*models.BroadcastMessage
	order []uuid.UUID // insertion order
	reads map[uuid.UUID]map[uuid.UUID]bool // messageID -> set of userIDs
}

func (s *memBroadcastStore) Create(msg *models.BroadcastMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *msg
	s.byID[cp.ID] = &cp
	s.order = append(s.order, cp.ID)
	return nil
}

func (s *memBroadcastStore) GetByID(id uuid.UUID) (*models.BroadcastMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msg, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *msg
	return &cp, nil
}

func (s *memBroadcastStore) List() ([]models.BroadcastMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.BroadcastMessage{}
	for i := len(s.order) - 1; i >= 0; i-- {
		if msg, ok := s.byID[s.order[i]]; ok {
			out = append(out, *msg)
		}
	}
	return out, nil
}

func (s *memBroadcastStore) UnreadFor(userID uuid.UUID, now time.Time) ([]models.BroadcastMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.BroadcastMessage{}
	for i := len(s.order) - 1; i >= 0; i-- {
		msg, ok := s.byID[s.order[i]]
		if !ok {
			continue
		}
		if msg.ExpiresAt != nil && !msg.ExpiresAt.After(now) {
			continue
		}
		if s.reads[msg.ID][userID] {
			continue
		}
		out = append(out, *msg)
	}
	return out, nil
}

func (s *memBroadcastStore) MarkRead(messageID, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[messageID]; !ok {
		return ErrNotFound
	}
	if s.reads[messageID] == nil {
		s.reads[messageID] = make(map[uuid.UUID]bool)
	}
	s.reads[messageID][userID] = true
	return nil
}

func (s *memBroadcastStore) Delete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return ErrNotFound
	}
	delete(s.byID, id)
	delete(s.reads, id)
	for i, mid := range s.order {
		if mid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

type memGameStore struct {
	mu    sync.Mutex
	byKey map[string]*models.GameData // userID|gameType
	seq   int64                       // insertion order for tie-breaking
	seqs  map[string]int64
	users *memUserStore
}

func gameKey(userID uuid.UUID, gameType string) string {
	return userID.String() + "|" + gameType
}

func (s *memGameStore) Get(userID uuid.UUID, gameType string) (*models.GameData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.byKey[gameKey(userID, gameType)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *entry
	cp.Data = append(json.RawMessage(nil), entry.Data...)
	return &cp, nil
}

func (s *memGameStore) Save(userID uuid.UUID, gameType string, data json.RawMessage, highScore int64) (*models.GameData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := gameKey(userID, gameType)
	entry, ok := s.byKey[key]
	if !ok {
		entry = &models.GameData{
			ID:       uuid.New(),
			UserID:   userID,
			GameType: gameType,
		}
		s.byKey[key] = entry
		s.recordSeq(key)
	}

	entry.Data = append(json.RawMessage(nil), data...)
	if highScore > entry.HighScore {
		entry.HighScore = highScore
	}
	entry.LastPlayed = time.Now()

	cp := *entry
	cp.Data = append(json.RawMessage(nil), entry.Data...)
	return &cp, nil
}

func (s *memGameStore) GrantCookies(userID uuid.UUID, amount int64) (*models.GameData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := gameKey(userID, models.GameCookieClicker)
	entry, ok := s.byKey[key]
	if !ok {
		entry = &models.GameData{
			ID:       uuid.New(),
			UserID:   userID,
			GameType: models.GameCookieClicker,
			Data:     json.RawMessage(`{}`),
		}
		s.byKey[key] = entry
		s.recordSeq(key)
	}

	state := map[string]any{}
	if len(entry.Data) > 0 {
		if err := json.Unmarshal(entry.Data, &state); err != nil {
			return nil, fmt.Errorf("failed to decode game state: %w", err)
		}
	}

	current := int64(0)
	if v, ok := state["cookies"].(float64); ok {
		current = int64(v)
	}
	state["cookies"] = current + amount

	raw, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to encode game state: %w", err)
	}
	entry.Data = raw
	entry.LastPlayed = time.Now()

	cp := *entry
	cp.Data = append(json.RawMessage(nil), entry.Data...)
	return &cp, nil
}

func (s *memGameStore) HighScores(gameType string, limit int) ([]models.GameData, error) {
	if limit <= 0 {
		limit = 10
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := []models.GameData{}
	for _, entry := range s.byKey {
		if entry.GameType != gameType {
			continue
		}
		cp := *entry
		cp.Data = append(json.RawMessage(nil), entry.Data...)
		entries = append(entries, cp)
	}

	s.sortForRanking(entries)

	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (s *memGameStore) Leaderboard(gameType string, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	// Over-fetch so dropped rows (deleted users) still leave a full page.
	scores, err := s.HighScores(gameType, limit+100)
	if err != nil {
		return nil, err
	}

	entries := []models.LeaderboardEntry{}
	for _, score := range scores {
		user, err := s.users.GetByID(score.UserID)
		if err != nil {
			continue // user gone, drop the row
		}
		entries = append(entries, models.LeaderboardEntry{
			Rank:       len(entries) + 1,
			UserID:     score.UserID,
			Username:   user.Username,
			FullName:   user.FullName,
			HighScore:  score.HighScore,
			LastPlayed: score.LastPlayed,
		})
		if len(entries) >= limit {
			break
		}
	}
	return entries, nil
}

// sortForRanking mirrors the SQL ordering: score descending, earliest
// last_played wins ties, insertion order as the final key.
func (s *memGameStore) sortForRanking(entries []models.GameData) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].HighScore != entries[j].HighScore {
			return entries[i].HighScore > entries[j].HighScore
		}
		if !entries[i].LastPlayed.Equal(entries[j].LastPlayed) {
			return entries[i].LastPlayed.Before(entries[j].LastPlayed)
		}
		return s.seqOf(entries[i]) < s.seqOf(entries[j])
	})
}

func (s *memGameStore) recordSeq(key string) {
	if s.seqs == nil {
		s.seqs = make(map[string]int64)
	}
	s.seq++
	s.seqs[key] = s.seq
}

func (s *memGameStore) seqOf(entry models.GameData) int64 {
	return s.seqs[gameKey(entry.UserID, entry.GameType)]
}
