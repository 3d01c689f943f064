package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quizzora/internal/app"
	"quizzora/internal/domain"
)

// QuizCache decorates a Store with a Redis read-through cache for quiz
// documents, stored as: SET quiz:doc:{quizID} {json}. Writes and deletes
// invalidate the cached document so a replaced quiz is never graded against
// a stale answer key for longer than one round trip.
type QuizCache struct {
	app.Store
	client *redis.Client
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuizCache(next app.Store, client *redis.Client, ttl time.Duration) *QuizCache {
	return &QuizCache{
		Store:  next,
		client: client,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuizCache) GetQuiz(ctx context.Context, id string) (domain.Quiz, error) {
	key := c.key(id)

	if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var quiz domain.Quiz
		if err := json.Unmarshal(raw, &quiz); err == nil {
			quiz.Normalize()
			return quiz, nil
		}
		// Undecodable payload: fall through and refill.
	}

	result, err, _ := c.sf.Do(id, func() (interface{}, error) {
		// Re-check in case another goroutine filled the key.
		if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
			var quiz domain.Quiz
			if err := json.Unmarshal(raw, &quiz); err == nil {
				quiz.Normalize()
				return quiz, nil
			}
		}

		quiz, err := c.Store.GetQuiz(ctx, id)
		if err != nil {
			return domain.Quiz{}, err
		}
		if raw, err := json.Marshal(quiz); err == nil {
			_ = c.client.Set(ctx, key, raw, c.ttlWithJitter()).Err()
		}
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

func (c *QuizCache) InsertQuiz(ctx context.Context, quiz domain.Quiz) error {
	if err := c.Store.InsertQuiz(ctx, quiz); err != nil {
		return err
	}
	_ = c.client.Del(ctx, c.key(quiz.ID)).Err()
	return nil
}

func (c *QuizCache) ReplaceQuiz(ctx context.Context, quiz domain.Quiz) error {
	if err := c.Store.ReplaceQuiz(ctx, quiz); err != nil {
		return err
	}
	_ = c.client.Del(ctx, c.key(quiz.ID)).Err()
	return nil
}

func (c *QuizCache) DeleteQuiz(ctx context.Context, id string) error {
	if err := c.Store.DeleteQuiz(ctx, id); err != nil {
		return err
	}
	_ = c.client.Del(ctx, c.key(id)).Err()
	return nil
}

func (c *QuizCache) key(quizID string) string {
	return "quiz:doc:" + quizID
}

func (c *QuizCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
