package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisStream is the stream key used when none is given.
const DefaultRedisStream = "audit:events"

// RedisStreamStorage appends events to a Redis stream. Downstream consumers
// (SIEM forwarders, alerting) read the stream with consumer groups.
type RedisStreamStorage struct {
	client redis.UniversalClient
	stream string
	maxLen int64
}

// NewRedisStreamStorage caps the stream at roughly maxLen entries when
// maxLen is positive.
func NewRedisStreamStorage(client redis.UniversalClient, stream string, maxLen int64) *RedisStreamStorage {
	if stream == "" {
		stream = DefaultRedisStream
	}
	return &RedisStreamStorage{client: client, stream: stream, maxLen: maxLen}
}

func (s *RedisStreamStorage) Store(ctx context.Context, events []Event) error {
	if len(events) == 0 {
		return nil
	}

	pipe := s.client.Pipeline()
	for _, e := range events {
		payload, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("audit: encode event %s: %w", e.ID, err)
		}
		args := &redis.XAddArgs{
			Stream: s.stream,
			Values: map[string]any{
				"id":     e.ID,
				"action": e.Action,
				"result": string(e.Result),
				"event":  payload,
			},
		}
		if s.maxLen > 0 {
			args.MaxLen = s.maxLen
			args.Approx = true
		}
		pipe.XAdd(ctx, args)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Join(ErrStorageNotAvailable, err)
	}
	return nil
}

// Query scans the newest entries of the stream and filters them in memory.
// It looks at no more than MaxQueryLimit*4 entries.
func (s *RedisStreamStorage) Query(ctx context.Context, c Criteria) ([]Event, error) {
	c = c.Normalize()

	msgs, err := s.client.XRevRangeN(ctx, s.stream, "+", "-", int64(MaxQueryLimit*4)).Result()
	if err != nil {
		return nil, errors.Join(ErrStorageNotAvailable, err)
	}

	out := make([]Event, 0, c.Limit)
	skipped := 0
	for _, msg := range msgs {
		raw, ok := msg.Values["event"].(string)
		if !ok {
			continue
		}
		var e Event
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			continue
		}
		if !c.Matches(e) {
			continue
		}
		if skipped < c.Offset {
			skipped++
			continue
		}
		out = append(out, e)
		if len(out) == c.Limit {
			break
		}
	}
	return out, nil
}

// Prune trims entries whose stream id is older than before.
func (s *RedisStreamStorage) Prune(ctx context.Context, before time.Time) (int64, error) {
	minID := fmt.Sprintf("%d-0", before.UnixMilli())
	n, err := s.client.XTrimMinID(ctx, s.stream, minID).Result()
	if err != nil {
		return 0, errors.Join(ErrStorageNotAvailable, err)
	}
	return n, nil
}
