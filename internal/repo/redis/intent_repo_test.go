package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

func newMiniRedisClient(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	return mr, client
}

func TestIntentRepoRoundTrip(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	repo := NewIntentRepo(client)
	ctx := context.Background()
	userID := uuid.New()

	enabled, err := repo.Get(ctx, userID)
	if err != nil {
		t.Fatalf("get before set: %v", err)
	}
	if enabled {
		t.Fatalf("expected missing intent to read as disabled")
	}

	if err := repo.Set(ctx, userID, true); err != nil {
		t.Fatalf("set enabled: %v", err)
	}
	enabled, err = repo.Get(ctx, userID)
	if err != nil {
		t.Fatalf("get after set: %v", err)
	}
	if !enabled {
		t.Fatalf("expected enabled intent")
	}

	if err := repo.Set(ctx, userID, false); err != nil {
		t.Fatalf("set disabled: %v", err)
	}
	enabled, err = repo.Get(ctx, userID)
	if err != nil {
		t.Fatalf("get after disable: %v", err)
	}
	if enabled {
		t.Fatalf("expected disabled intent")
	}

	if err := repo.Clear(ctx, userID); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if mr.Exists(intentKey(userID)) {
		t.Fatalf("expected intent key removed on clear")
	}
}
