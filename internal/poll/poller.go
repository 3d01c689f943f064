// Package poll provides the client-side half of the leaderboard contract: a
// scheduled task that re-queries on a fixed interval until cancelled. There
// is no push channel; staleness of up to one interval is by contract.
package poll

import (
	"context"
	"time"

	"quizzora/internal/domain"
)

// DefaultInterval matches the leaderboard refresh cadence viewers expect.
const DefaultInterval = 5 * time.Second

// Task is one poll iteration. The context ends when polling is cancelled.
type Task func(ctx context.Context)

// Every runs task immediately and then once per interval until the returned
// stop function is called or ctx ends. Stop is idempotent. Cancellation only
// stops new iterations; an in-flight task sees its context cancelled and is
// expected to return promptly.
func Every(ctx context.Context, interval time.Duration, task Task) (stop func()) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ctx, cancel := context.WithCancel(ctx)

	go func() {
		task(ctx)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				task(ctx)
			}
		}
	}()

	return cancel
}

// Ranker is the slice of the leaderboard service a feed needs.
type Ranker interface {
	Leaderboard(ctx context.Context, quizID string) ([]domain.Submission, error)
}

// Watch polls the ranker for one quiz and hands each fresh snapshot to
// onUpdate; query failures go to onError and polling continues (transient
// store trouble should not kill a viewer's feed). The caller replaces its
// previous list wholesale on every update.
func Watch(ctx context.Context, r Ranker, quizID string, interval time.Duration, onUpdate func([]domain.Submission), onError func(error)) (stop func()) {
	return Every(ctx, interval, func(ctx context.Context) {
		subs, err := r.Leaderboard(ctx, quizID)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onUpdate(subs)
	})
}
