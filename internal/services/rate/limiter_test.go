package rate

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	redrepo "github.com/zenlit/backend/internal/repo/redis"
)

func TestLimiterBlocksOn10SecondWindow(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	repo := redrepo.NewRateRepo(client)
	limiter := NewLimiter(repo, 100, 2)

	ctx := context.Background()
	userID := uuid.New()

	for i := 0; i < 2; i++ {
		retryAfter, allowed, err := limiter.AllowMessage(ctx, userID)
		if err != nil {
			t.Fatalf("allow message #%d: %v", i+1, err)
		}
		if !allowed || retryAfter != 0 {
			t.Fatalf("unexpected result on allow #%d: allowed=%v retry_after=%d", i+1, allowed, retryAfter)
		}
	}

	retryAfter, allowed, err := limiter.AllowMessage(ctx, userID)
	if err != nil {
		t.Fatalf("allow message #3: %v", err)
	}
	if allowed {
		t.Fatalf("expected limiter block on third send in 10s window")
	}
	if retryAfter <= 0 {
		t.Fatalf("expected positive retry_after, got %d", retryAfter)
	}

	currentRetry, err := limiter.RetryAfterMessage(ctx, userID)
	if err != nil {
		t.Fatalf("retry_after state: %v", err)
	}
	if currentRetry <= 0 {
		t.Fatalf("expected positive retry_after state, got %d", currentRetry)
	}

	mr.FastForward(11 * time.Second)

	retryAfter, allowed, err = limiter.AllowMessage(ctx, userID)
	if err != nil {
		t.Fatalf("allow message after 10s window: %v", err)
	}
	if !allowed || retryAfter != 0 {
		t.Fatalf("unexpected result after fast forward: allowed=%v retry_after=%d", allowed, retryAfter)
	}
}

func TestLimiterBlocksOnMinuteWindow(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	repo := redrepo.NewRateRepo(client)
	limiter := NewLimiter(repo, 3, 100)

	ctx := context.Background()
	userID := uuid.New()

	for i := 0; i < 3; i++ {
		if _, allowed, err := limiter.AllowMessage(ctx, userID); err != nil || !allowed {
			t.Fatalf("allow message #%d: allowed=%v err=%v", i+1, allowed, err)
		}
	}

	retryAfter, allowed, err := limiter.AllowMessage(ctx, userID)
	if err != nil {
		t.Fatalf("allow message over minute budget: %v", err)
	}
	if allowed {
		t.Fatalf("expected limiter block over minute budget")
	}
	if retryAfter <= 0 || retryAfter > 60 {
		t.Fatalf("retry_after out of range: %d", retryAfter)
	}
}

func TestLimitersAreIndependentPerUser(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	repo := redrepo.NewRateRepo(client)
	limiter := NewLimiter(repo, 100, 1)

	ctx := context.Background()
	first := uuid.New()
	second := uuid.New()

	if _, allowed, err := limiter.AllowMessage(ctx, first); err != nil || !allowed {
		t.Fatalf("first user initial send: allowed=%v err=%v", allowed, err)
	}
	if _, allowed, err := limiter.AllowMessage(ctx, first); err != nil || allowed {
		t.Fatalf("first user should be blocked: allowed=%v err=%v", allowed, err)
	}

	if _, allowed, err := limiter.AllowMessage(ctx, second); err != nil || !allowed {
		t.Fatalf("second user should not share windows: allowed=%v err=%v", allowed, err)
	}
}

func newMiniRedisClient(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	return mr, client
}
