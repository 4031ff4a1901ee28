package repository

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/arcadehub/backend/internal/models"
)

func seedUser(t *testing.T, stores *Stores, username string) *models.User {
	t.Helper()
	user := &models.User{
		ID:        uuid.New(),
		Username:  username,
		FullName:  username + " Test",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := stores.Users.Create(user); err != nil {
		t.Fatalf("Failed to seed user %s: %v", username, err)
	}
	return user
}

func TestStrikes_Monotonicity(t *testing.T) {
	stores := NewMemoryStores()
	userID := uuid.New()

	var last *models.UserStrike
	for i := 1; i <= 7; i++ {
		strike, err := stores.Strikes.Increment(userID, "alice", 5)
		if err != nil {
			t.Fatalf("Increment %d: %v", i, err)
		}
		if strike.StrikesCount != i {
			t.Errorf("After %d violations expected count %d, got %d", i, i, strike.StrikesCount)
		}
		if strike.IsChatRestricted != (i >= 5) {
			t.Errorf("After %d violations expected restricted=%v, got %v", i, i >= 5, strike.IsChatRestricted)
		}
		last = strike
	}

	if !last.IsChatRestricted {
		t.Error("Expected restriction after 7 strikes")
	}
}

func TestStrikes_ThresholdBoundary(t *testing.T) {
	stores := NewMemoryStores()
	userID := uuid.New()

	var strike *models.UserStrike
	var err error
	for i := 0; i < 4; i++ {
		strike, err = stores.Strikes.Increment(userID, "bob", 5)
		if err != nil {
			t.Fatalf("Increment: %v", err)
		}
	}
	if strike.StrikesCount != 4 || strike.IsChatRestricted {
		t.Errorf("Expected count=4 unrestricted, got count=%d restricted=%v", strike.StrikesCount, strike.IsChatRestricted)
	}

	strike, err = stores.Strikes.Increment(userID, "bob", 5)
	if err != nil {
		t.Fatalf("Increment: %v", err)
	}
	if strike.StrikesCount != 5 || !strike.IsChatRestricted {
		t.Errorf("Expected count=5 restricted, got count=%d restricted=%v", strike.StrikesCount, strike.IsChatRestricted)
	}
}

func TestStrikes_ConcurrentIncrementsLoseNothing(t *testing.T) {
	stores := NewMemoryStores()
	userID := uuid.New()

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			if _, err := stores.Strikes.Increment(userID, "carol", 5); err != nil {
				t.Errorf("Increment: %v", err)
			}
		}()
	}
	wg.Wait()

	strikes, err := stores.Strikes.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(strikes) != 1 {
		t.Fatalf("Expected 1 strike record, got %d", len(strikes))
	}
	if strikes[0].StrikesCount != n {
		t.Errorf("Expected %d strikes after %d concurrent violations, got %d", n, n, strikes[0].StrikesCount)
	}
}

func TestStrikes_ResetAndUnknownUsers(t *testing.T) {
	stores := NewMemoryStores()
	userID := uuid.New()

	// Unknown user: never restricted, reset is a not-found.
	restricted, err := stores.Strikes.IsRestricted(userID)
	if err != nil {
		t.Fatalf("IsRestricted: %v", err)
	}
	if restricted {
		t.Error("Expected unknown user to be unrestricted")
	}
	if _, err := stores.Strikes.Reset(userID); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound resetting unknown user, got %v", err)
	}

	for i := 0; i < 6; i++ {
		if _, err := stores.Strikes.Increment(userID, "dave", 5); err != nil {
			t.Fatalf("Increment: %v", err)
		}
	}
	restricted, _ = stores.Strikes.IsRestricted(userID)
	if !restricted {
		t.Fatal("Expected restriction after 6 strikes")
	}

	strike, err := stores.Strikes.Reset(userID)
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if strike.StrikesCount != 0 || strike.IsChatRestricted {
		t.Errorf("Expected zeroed unrestricted record, got count=%d restricted=%v", strike.StrikesCount, strike.IsChatRestricted)
	}
}

func TestChat_SoftDeleteKeepsRecord(t *testing.T) {
	stores := NewMemoryStores()
	user := seedUser(t, stores, "alice")

	msg := &models.ChatMessage{
		ID:        uuid.New(),
		UserID:    user.ID,
		Content:   "hello",
		CreatedAt: time.Now(),
	}
	if err := stores.Chat.Create(msg); err != nil {
		t.Fatalf("Create: %v", err)
	}

	deleted, err := stores.Chat.SoftDelete(msg.ID)
	if err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if !deleted.IsDeleted {
		t.Error("Expected is_deleted=true after soft delete")
	}

	// Record stays visible in the audit listing.
	all, err := stores.Chat.List(0, true)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	found := false
	for _, m := range all {
		if m.ID == msg.ID {
			found = true
			if !m.IsDeleted {
				t.Error("Expected listed record flagged deleted")
			}
		}
	}
	if !found {
		t.Error("Expected soft-deleted message to remain in the audit listing")
	}

	// But hidden from the public listing.
	visible, err := stores.Chat.List(0, false)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for _, m := range visible {
		if m.ID == msg.ID {
			t.Error("Expected soft-deleted message hidden from public listing")
		}
	}
}

func TestChat_ListOrderAndEnrichment(t *testing.T) {
	stores := NewMemoryStores()
	user := seedUser(t, stores, "alice")

	base := time.Now()
	for i := 0; i < 3; i++ {
		msg := &models.ChatMessage{
			ID:        uuid.New(),
			UserID:    user.ID,
			Content:   "msg",
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := stores.Chat.Create(msg); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	messages, err := stores.Chat.List(0, false)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("Expected 3 messages, got %d", len(messages))
	}
	for i := 1; i < len(messages); i++ {
		if messages[i].CreatedAt.Before(messages[i-1].CreatedAt) {
			t.Error("Expected non-decreasing timestamp order")
		}
	}
	for _, m := range messages {
		if m.User == nil || m.User.Username != "alice" {
			t.Error("Expected messages enriched with sender profile")
		}
	}
}

func TestChat_ListWindowAnchorsAtNewest(t *testing.T) {
	stores := NewMemoryStores()
	user := seedUser(t, stores, "alice")

	base := time.Now()
	const total = 120
	var newest uuid.UUID
	for i := 0; i < total; i++ {
		msg := &models.ChatMessage{
			ID:        uuid.New(),
			UserID:    user.ID,
			Content:   "msg",
			CreatedAt: base.Add(time.Duration(i) * time.Millisecond),
		}
		if err := stores.Chat.Create(msg); err != nil {
			t.Fatalf("Create: %v", err)
		}
		newest = msg.ID
	}

	// Default limit: the window must hold the latest messages, not the
	// oldest, or polling clients stop seeing new activity.
	messages, err := stores.Chat.List(0, false)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(messages) != 100 {
		t.Fatalf("Expected default window of 100 messages, got %d", len(messages))
	}
	if messages[len(messages)-1].ID != newest {
		t.Error("Expected newest message at the end of the default listing")
	}
	for i := 1; i < len(messages); i++ {
		if messages[i].CreatedAt.Before(messages[i-1].CreatedAt) {
			t.Fatal("Expected ascending timestamp order")
		}
	}

	// Same anchoring with an explicit limit.
	messages, err = stores.Chat.List(5, false)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(messages) != 5 {
		t.Fatalf("Expected 5 messages, got %d", len(messages))
	}
	if messages[4].ID != newest {
		t.Error("Expected newest message at the end of the limited listing")
	}
}

func TestBroadcast_MarkReadIdempotent(t *testing.T) {
	stores := NewMemoryStores()
	admin := seedUser(t, stores, "admin")
	reader := seedUser(t, stores, "reader")

	msg := &models.BroadcastMessage{
		ID:        uuid.New(),
		Title:     "Maintenance",
		Body:      "Back in an hour",
		Priority:  "normal",
		CreatedBy: admin.ID,
		CreatedAt: time.Now(),
	}
	if err := stores.Broadcasts.Create(msg); err != nil {
		t.Fatalf("Create: %v", err)
	}

	unread, err := stores.Broadcasts.UnreadFor(reader.ID, time.Now())
	if err != nil {
		t.Fatalf("UnreadFor: %v", err)
	}
	if len(unread) != 1 {
		t.Fatalf("Expected 1 unread message, got %d", len(unread))
	}

	if err := stores.Broadcasts.MarkRead(msg.ID, reader.ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if err := stores.Broadcasts.MarkRead(msg.ID, reader.ID); err != nil {
		t.Fatalf("MarkRead (repeat): %v", err)
	}

	unread, err = stores.Broadcasts.UnreadFor(reader.ID, time.Now())
	if err != nil {
		t.Fatalf("UnreadFor: %v", err)
	}
	if len(unread) != 0 {
		t.Errorf("Expected no unread messages after marking read, got %d", len(unread))
	}
}

func TestBroadcast_ExpiredMessagesNotUnread(t *testing.T) {
	stores := NewMemoryStores()
	admin := seedUser(t, stores, "admin")
	reader := seedUser(t, stores, "reader")

	past := time.Now().Add(-time.Hour)
	msg := &models.BroadcastMessage{
		ID:        uuid.New(),
		Title:     "Old news",
		Body:      "Expired",
		Priority:  "normal",
		CreatedBy: admin.ID,
		CreatedAt: time.Now().Add(-2 * time.Hour),
		ExpiresAt: &past,
	}
	if err := stores.Broadcasts.Create(msg); err != nil {
		t.Fatalf("Create: %v", err)
	}

	unread, err := stores.Broadcasts.UnreadFor(reader.ID, time.Now())
	if err != nil {
		t.Fatalf("UnreadFor: %v", err)
	}
	if len(unread) != 0 {
		t.Errorf("Expected expired message excluded from unread, got %d entries", len(unread))
	}
}

func TestGame_GrantAdditivity(t *testing.T) {
	stores := NewMemoryStores()
	userID := uuid.New()

	entry, err := stores.Games.GrantCookies(userID, 100)
	if err != nil {
		t.Fatalf("GrantCookies: %v", err)
	}
	if cookies(t, entry) != 100 {
		t.Errorf("Expected 100 cookies after first grant, got %d", cookies(t, entry))
	}

	entry, err = stores.Games.GrantCookies(userID, 50)
	if err != nil {
		t.Fatalf("GrantCookies: %v", err)
	}
	if cookies(t, entry) != 150 {
		t.Errorf("Expected 150 cookies after second grant, got %d", cookies(t, entry))
	}
}

func TestGame_ConcurrentGrantsLoseNothing(t *testing.T) {
	stores := NewMemoryStores()
	userID := uuid.New()

	const n = 100
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			if _, err := stores.Games.GrantCookies(userID, 1); err != nil {
				t.Errorf("GrantCookies: %v", err)
			}
		}()
	}
	wg.Wait()

	entry, err := stores.Games.Get(userID, models.GameCookieClicker)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if cookies(t, entry) != n {
		t.Errorf("Expected %d cookies after %d concurrent grants, got %d", n, n, cookies(t, entry))
	}
}

func TestGame_GrantPreservesOtherCounters(t *testing.T) {
	stores := NewMemoryStores()
	userID := uuid.New()

	state := json.RawMessage(`{"cookies": 10, "clickPower": 3, "autoClickers": 2}`)
	if _, err := stores.Games.Save(userID, models.GameCookieClicker, state, 0); err != nil {
		t.Fatalf("Save: %v", err)
	}

	entry, err := stores.Games.GrantCookies(userID, 5)
	if err != nil {
		t.Fatalf("GrantCookies: %v", err)
	}

	decoded := map[string]any{}
	if err := json.Unmarshal(entry.Data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded["cookies"].(float64) != 15 {
		t.Errorf("Expected cookies=15, got %v", decoded["cookies"])
	}
	if decoded["clickPower"].(float64) != 3 {
		t.Errorf("Expected clickPower untouched, got %v", decoded["clickPower"])
	}
}

func TestGame_GrantRecoversFromMalformedCounter(t *testing.T) {
	stores := NewMemoryStores()
	userID := uuid.New()

	state := json.RawMessage(`{"cookies": "corrupted", "clickPower": 3}`)
	if _, err := stores.Games.Save(userID, models.GameCookieClicker, state, 0); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// A counter that is not a number restarts from zero instead of erroring.
	entry, err := stores.Games.GrantCookies(userID, 50)
	if err != nil {
		t.Fatalf("GrantCookies: %v", err)
	}
	if cookies(t, entry) != 50 {
		t.Errorf("Expected counter rebuilt at 50, got %d", cookies(t, entry))
	}

	decoded := map[string]any{}
	if err := json.Unmarshal(entry.Data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded["clickPower"].(float64) != 3 {
		t.Errorf("Expected clickPower untouched, got %v", decoded["clickPower"])
	}
}

func TestGame_HighScoreOnlyRises(t *testing.T) {
	stores := NewMemoryStores()
	userID := uuid.New()

	entry, err := stores.Games.Save(userID, "snake", json.RawMessage(`{}`), 90)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if entry.HighScore != 90 {
		t.Errorf("Expected high score 90, got %d", entry.HighScore)
	}

	entry, err = stores.Games.Save(userID, "snake", json.RawMessage(`{}`), 40)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if entry.HighScore != 90 {
		t.Errorf("Expected high score to stay 90 after lower save, got %d", entry.HighScore)
	}
}

func TestGame_LeaderboardRanking(t *testing.T) {
	stores := NewMemoryStores()
	a := seedUser(t, stores, "a_player")
	b := seedUser(t, stores, "b_player")
	c := seedUser(t, stores, "c_player")

	for _, tc := range []struct {
		user  *models.User
		score int64
	}{
		{a, 50}, {b, 90}, {c, 70},
	} {
		if _, err := stores.Games.Save(tc.user.ID, "snake", json.RawMessage(`{}`), tc.score); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	board, err := stores.Games.Leaderboard("snake", 2)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(board) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(board))
	}
	if board[0].Username != "b_player" || board[1].Username != "c_player" {
		t.Errorf("Expected [b_player, c_player], got [%s, %s]", board[0].Username, board[1].Username)
	}
	if board[0].Rank != 1 || board[1].Rank != 2 {
		t.Errorf("Expected ranks 1 and 2, got %d and %d", board[0].Rank, board[1].Rank)
	}
}

func TestGame_LeaderboardTieBreak(t *testing.T) {
	stores := NewMemoryStores()
	early := seedUser(t, stores, "early_bird")
	late := seedUser(t, stores, "late_comer")

	// Same score; the player who reached it first ranks higher.
	if _, err := stores.Games.Save(early.ID, "snake", json.RawMessage(`{}`), 80); err != nil {
		t.Fatalf("Save: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	if _, err := stores.Games.Save(late.ID, "snake", json.RawMessage(`{}`), 80); err != nil {
		t.Fatalf("Save: %v", err)
	}

	board, err := stores.Games.Leaderboard("snake", 10)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(board) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(board))
	}
	if board[0].Username != "early_bird" || board[1].Username != "late_comer" {
		t.Errorf("Expected [early_bird, late_comer], got [%s, %s]", board[0].Username, board[1].Username)
	}
}

func TestGame_LeaderboardDropsMissingUsers(t *testing.T) {
	stores := NewMemoryStores()
	known := seedUser(t, stores, "known")
	ghost := uuid.New() // never registered

	if _, err := stores.Games.Save(known.ID, "snake", json.RawMessage(`{}`), 10); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := stores.Games.Save(ghost, "snake", json.RawMessage(`{}`), 99); err != nil {
		t.Fatalf("Save: %v", err)
	}

	board, err := stores.Games.Leaderboard("snake", 10)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(board) != 1 || board[0].Username != "known" {
		t.Errorf("Expected only the known user on the board, got %v", board)
	}
}

func cookies(t *testing.T, entry *models.GameData) int64 {
	t.Helper()
	state := map[string]any{}
	if err := json.Unmarshal(entry.Data, &state); err != nil {
		t.Fatalf("Failed to decode game state: %v", err)
	}
	v, ok := state["cookies"].(float64)
	if !ok {
		t.Fatalf("Expected cookies counter in state, got %v", state)
	}
	return int64(v)
}
