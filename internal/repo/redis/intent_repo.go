package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const intentPrefix = "location_intent:"

// IntentRepo persists the user's sharing on/off choice, the server-side
// analog of the device-local toggle flag: it survives reloads and is only
// removed explicitly on logout. No TTL; intent does not expire.
type IntentRepo struct {
	client *goredis.Client
}

func NewIntentRepo(client *goredis.Client) *IntentRepo {
	return &IntentRepo{client: client}
}

func (r *IntentRepo) Get(ctx context.Context, userID uuid.UUID) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}

	value, err := r.client.Get(ctx, intentKey(userID)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("get location intent: %w", err)
	}

	return value == "1", nil
}

func (r *IntentRepo) Set(ctx context.Context, userID uuid.UUID, enabled bool) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	value := "0"
	if enabled {
		value = "1"
	}
	if err := r.client.Set(ctx, intentKey(userID), value, 0).Err(); err != nil {
		return fmt.Errorf("set location intent: %w", err)
	}

	return nil
}

func (r *IntentRepo) Clear(ctx context.Context, userID uuid.UUID) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	if err := r.client.Del(ctx, intentKey(userID)).Err(); err != nil {
		return fmt.Errorf("clear location intent: %w", err)
	}

	return nil
}

func intentKey(userID uuid.UUID) string {
	return intentPrefix + userID.String()
}
