package cache

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/arcadehub/backend/internal/models"
)

func newTestClient(t *testing.T) (*RedisClient, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}

	client := &RedisClient{
		client: redis.NewClient(&redis.Options{Addr: mr.Addr()}),
		ctx:    context.Background(),
	}
	cleanup := func() {
		client.Close()
		mr.Close()
	}
	return client, cleanup
}

func TestLeaderboardCache_RoundTrip(t *testing.T) {
	client, cleanup := newTestClient(t)
	defer cleanup()

	entries := []models.LeaderboardEntry{
		{Rank: 1, UserID: uuid.New(), Username: "b_player", HighScore: 90},
		{Rank: 2, UserID: uuid.New(), Username: "c_player", HighScore: 70},
	}

	if err := client.CacheLeaderboard("snake", 2, entries); err != nil {
		t.Fatalf("CacheLeaderboard: %v", err)
	}

	got, err := client.GetCachedLeaderboard("snake", 2)
	if err != nil {
		t.Fatalf("GetCachedLeaderboard: %v", err)
	}
	if len(got) != 2 || got[0].Username != "b_player" || got[1].HighScore != 70 {
		t.Errorf("Cached leaderboard mismatch: %+v", got)
	}
}

func TestLeaderboardCache_MissReturnsNil(t *testing.T) {
	client, cleanup := newTestClient(t)
	defer cleanup()

	got, err := client.GetCachedLeaderboard("snake", 5)
	if err != nil {
		t.Fatalf("GetCachedLeaderboard: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil on cache miss, got %+v", got)
	}
}

func TestLeaderboardCache_Invalidate(t *testing.T) {
	client, cleanup := newTestClient(t)
	defer cleanup()

	entries := []models.LeaderboardEntry{{Rank: 1, Username: "b_player", HighScore: 90}}
	if err := client.CacheLeaderboard("snake", 2, entries); err != nil {
		t.Fatalf("CacheLeaderboard: %v", err)
	}
	if err := client.CacheLeaderboard("snake", 10, entries); err != nil {
		t.Fatalf("CacheLeaderboard: %v", err)
	}

	if err := client.InvalidateLeaderboard("snake"); err != nil {
		t.Fatalf("InvalidateLeaderboard: %v", err)
	}

	for _, limit := range []int{2, 10} {
		got, err := client.GetCachedLeaderboard("snake", limit)
		if err != nil {
			t.Fatalf("GetCachedLeaderboard: %v", err)
		}
		if got != nil {
			t.Errorf("Expected limit=%d page invalidated, got %+v", limit, got)
		}
	}
}

func TestAllowAction_BurstThenLimited(t *testing.T) {
	client, cleanup := newTestClient(t)
	defer cleanup()

	userID := uuid.New()
	burst := 3

	for i := 0; i < burst; i++ {
		ok, err := client.AllowAction(userID, "chat", 1, burst)
		if err != nil {
			t.Fatalf("AllowAction: %v", err)
		}
		if !ok {
			t.Fatalf("Expected call %d within burst to be allowed", i+1)
		}
	}

	ok, err := client.AllowAction(userID, "chat", 1, burst)
	if err != nil {
		t.Fatalf("AllowAction: %v", err)
	}
	if ok {
		t.Error("Expected call past burst to be limited")
	}
}
