package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"quizzora/internal/app"
	"quizzora/internal/domain"
)

// LeaderboardCache decorates a Store with a short-lived cache of ranked
// snapshots, stored as: SET quiz:leaderboard:{quizID} {json}. The TTL is
// meant to sit below the client poll interval so a snapshot serves every
// viewer polling within the same window. Each recorded submission deletes
// the key, keeping staleness bounded by one poll either way.
type LeaderboardCache struct {
	app.Store
	client *redis.Client
	ttl    time.Duration
}

func NewLeaderboardCache(next app.Store, client *redis.Client, ttl time.Duration) *LeaderboardCache {
	return &LeaderboardCache{Store: next, client: client, ttl: ttl}
}

func (c *LeaderboardCache) QuerySubmissions(ctx context.Context, quizID string) ([]domain.Submission, error) {
	key := c.key(quizID)

	if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var subs []domain.Submission
		if err := json.Unmarshal(raw, &subs); err == nil {
			return subs, nil
		}
	}

	subs, err := c.Store.QuerySubmissions(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(subs); err == nil {
		_ = c.client.Set(ctx, key, raw, c.ttl).Err()
	}
	return subs, nil
}

func (c *LeaderboardCache) InsertSubmission(ctx context.Context, sub domain.Submission) error {
	if err := c.Store.InsertSubmission(ctx, sub); err != nil {
		return err
	}
	_ = c.client.Del(ctx, c.key(sub.QuizID)).Err()
	return nil
}

func (c *LeaderboardCache) DeleteQuiz(ctx context.Context, id string) error {
	if err := c.Store.DeleteQuiz(ctx, id); err != nil {
		return err
	}
	_ = c.client.Del(ctx, c.key(id)).Err()
	return nil
}

func (c *LeaderboardCache) key(quizID string) string {
	return "quiz:leaderboard:" + quizID
}
