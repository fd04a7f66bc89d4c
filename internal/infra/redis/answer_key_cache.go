package redis

import (
	"context"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"time"

	"quizzy-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const answerKeyHash = "questions:answer-keys"

// QuestionRepository is the backing question bank the cache sits in front of.
type QuestionRepository interface {
	SampleQuestions(ctx context.Context, limit int) ([]domain.QuestionSummary, error)
	AnswerKeys(ctx context.Context, ids []int64) (map[int64]string, error)
}

// AnswerKeyCache keeps correct-option labels in a Redis hash
// (HSET questions:answer-keys {questionID} {label}) so grading does not hit
// the relational store on every submission. Sampling always passes through:
// caching would defeat the per-attempt randomness.
type AnswerKeyCache struct {
	client *redis.Client
	inner  QuestionRepository
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewAnswerKeyCache(client *redis.Client, inner QuestionRepository, ttl time.Duration) *AnswerKeyCache {
	return &AnswerKeyCache{
		client: client,
		inner:  inner,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *AnswerKeyCache) SampleQuestions(ctx context.Context, limit int) ([]domain.QuestionSummary, error) {
	return c.inner.SampleQuestions(ctx, limit)
}

// AnswerKeys serves labels from the hash, backfilling misses from the inner
// repository. A Redis fault degrades to a direct inner lookup.
func (c *AnswerKeyCache) AnswerKeys(ctx context.Context, ids []int64) (map[int64]string, error) {
	fields := make([]string, len(ids))
	for i, id := range ids {
		fields[i] = strconv.FormatInt(id, 10)
	}

	keys := make(map[int64]string, len(ids))
	var missing []int64

	cached, err := c.client.HMGet(ctx, answerKeyHash, fields...).Result()
	if err != nil {
		return c.inner.AnswerKeys(ctx, ids)
	}
	for i, raw := range cached {
		label, ok := raw.(string)
		if ok && label != "" {
			keys[ids[i]] = label
		} else {
			missing = append(missing, ids[i])
		}
	}
	if len(missing) == 0 {
		return keys, nil
	}

	loaded, err := c.loadMissing(ctx, missing)
	if err != nil {
		return nil, err
	}
	for id, label := range loaded {
		keys[id] = label
	}
	return keys, nil
}

// loadMissing collapses concurrent loads of the same id set so a burst of
// submissions after expiry produces one backing query.
func (c *AnswerKeyCache) loadMissing(ctx context.Context, ids []int64) (map[int64]string, error) {
	result, err, _ := c.sf.Do(sfKey(ids), func() (interface{}, error) {
		loaded, err := c.inner.AnswerKeys(ctx, ids)
		if err != nil {
			return nil, err
		}
		if len(loaded) > 0 {
			pipe := c.client.Pipeline()
			for id, label := range loaded {
				pipe.HSet(ctx, answerKeyHash, strconv.FormatInt(id, 10), label)
			}
			if ttl := c.ttlWithJitter(); ttl > 0 {
				pipe.Expire(ctx, answerKeyHash, ttl)
			}
			// Best effort; a write failure just means another cache miss later.
			_, _ = pipe.Exec(ctx)
		}
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(map[int64]string), nil
}

func sfKey(ids []int64) string {
	sorted := make([]int64, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

func (c *AnswerKeyCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
