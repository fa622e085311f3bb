package waitlist

import (
	"context"
	"fmt"
	"time"

	"github.com/gazon-app/waitlist/pkg/constants"
	"github.com/go-redis/redis/v8"
)

// DefaultRedisKey is the hash holding email -> created_at.
const DefaultRedisKey = "waitlist:entries"

type redisStore struct {
	client *redis.Client
	key    string
	now    func() time.Time
}

// NewRedisStore relies on HSETNX, which Redis executes atomically, so only the first writer of an email sees Inserted.
func NewRedisStore(client *redis.Client, key string) WaitlistStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &redisStore{client: client, key: key, now: time.Now}
}

func (s *redisStore) Insert(ctx context.Context, email string) (InsertOutcome, error) {
	createdAt := s.now().UTC().Format(constants.RFC3339DateTimeFormat)

	added, err := s.client.HSetNX(ctx, s.key, email, createdAt).Result()
	if err != nil {
		return 0, fmt.Errorf("redis waitlist insert: %w", err)
	}
	if !added {
		return OutcomeDuplicate, nil
	}
	return OutcomeInserted, nil
}

func (s *redisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
