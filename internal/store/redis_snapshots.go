package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"social-insights/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultSnapshotTTL = 90 * 24 * time.Hour
	snapshotDateLayout = "2006-01-02"
	// snapshotSearchDays is how many earlier days FollowersAt falls back to.
	snapshotSearchDays = 3
)

// RedisSnapshotStore keeps one follower count per handle per day under
// followers:<handle>:<yyyy-mm-dd>.
type RedisSnapshotStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisSnapshotStore(client redis.Cmdable, ttl time.Duration) *RedisSnapshotStore {
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	return &RedisSnapshotStore{client: client, ttl: ttl}
}

func snapshotKey(handle string, day time.Time) string {
	return fmt.Sprintf("followers:%s:%s", handle, day.UTC().Format(snapshotDateLayout))
}

// Record writes today's follower count for every author in one pipeline.
func (s *RedisSnapshotStore) Record(ctx context.Context, authors []models.AuthorProfile, at time.Time) error {
	if len(authors) == 0 {
		return nil
	}
	pipe := s.client.Pipeline()
	for _, a := range authors {
		if a.Username == "" {
			continue
		}
		pipe.Set(ctx, snapshotKey(a.Username, at), a.Followers, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record follower snapshots: %w", err)
	}
	return nil
}

// FollowersAt returns the snapshot for the day of at, or the nearest of the
// three days before it.
func (s *RedisSnapshotStore) FollowersAt(ctx context.Context, handle string, at time.Time) (int, bool, error) {
	for back := 0; back <= snapshotSearchDays; back++ {
		val, err := s.client.Get(ctx, snapshotKey(handle, at.AddDate(0, 0, -back))).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return 0, false, err
		}
		n, err := strconv.Atoi(val)
		if err != nil {
			return 0, false, fmt.Errorf("snapshot for %s is not a number: %w", handle, err)
		}
		return n, true, nil
	}
	return 0, false, nil
}
